package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aaviondb/aaviondb/pkg/httpapi"
	"github.com/aaviondb/aaviondb/pkg/metrics"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP adapter and the scheduler runner",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("listen", "", "override the configured listen address")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		cfg.ListenAddr = v
	}

	container, err := newContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	metrics.SetVersion(Version)
	container.StartScheduler()

	server := httpapi.NewServer(container)
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.ListenAddr); err != nil {
			errCh <- err
		}
	}()
	fmt.Printf("aaviondb listening on %s\n", cfg.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("shutting down...")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
