package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// runStatement parses and dispatches a single CLI statement (spec.md
// §6): prints the response envelope as pretty JSON on stdout and
// exits 0 on status=ok, 1 otherwise. Setup failures print to stderr
// with exit 1, same as a business error.
func runStatement(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	statement := strings.Join(args, " ")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	container, err := newContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	env := container.Dispatch(statement)

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if env.Status != "ok" {
		os.Exit(1)
	}
	return nil
}
