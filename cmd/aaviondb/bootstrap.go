package main

import (
	"github.com/aaviondb/aaviondb/pkg/bootstrap"
)

// newContainer wires every subsystem for cfg, shared by the bare
// statement path and the serve/diagnose subcommands.
func newContainer(cfg bootstrap.Config) (*bootstrap.Container, error) {
	return bootstrap.New(cfg)
}
