package commands

import (
	"github.com/aaviondb/aaviondb/pkg/auth"
	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/command"
	"github.com/aaviondb/aaviondb/pkg/events"
	"github.com/aaviondb/aaviondb/pkg/export"
	"github.com/aaviondb/aaviondb/pkg/module"
	"github.com/aaviondb/aaviondb/pkg/resolver"
	"github.com/aaviondb/aaviondb/pkg/security"
	"github.com/rs/zerolog"
)

// Dependencies bundles every subsystem a command handler may need to
// call into. Register takes one of these rather than each subsystem
// individually so the bootstrap composition root has a single value
// to build and pass down.
type Dependencies struct {
	Repo     *brain.Repository
	Registry *command.Registry
	Parser   *command.Parser
	Bus      *events.Bus
	Resolver *resolver.Engine
	Export   *export.Engine
	Auth     *auth.Manager
	Security *security.Manager
	Loader   *module.Loader

	SystemModuleDir string
	UserModuleDir   string

	// APIKeyLength is the default bearer-token length in bytes for
	// auth.token.create, overridable per-call (spec.md §6,
	// "api_key_length").
	APIKeyLength int

	Logger zerolog.Logger
}
