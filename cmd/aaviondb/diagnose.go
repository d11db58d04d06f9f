package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Run the diagnose command against the active brain and print the report",
	RunE:  runDiagnose,
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	container, err := newContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	env := container.Registry.Dispatch("diagnose", nil)
	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
