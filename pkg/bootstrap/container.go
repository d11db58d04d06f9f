package bootstrap

import (
	"time"

	"github.com/aaviondb/aaviondb/pkg/auth"
	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/cache"
	"github.com/aaviondb/aaviondb/pkg/command"
	"github.com/aaviondb/aaviondb/pkg/commands"
	"github.com/aaviondb/aaviondb/pkg/events"
	"github.com/aaviondb/aaviondb/pkg/export"
	"github.com/aaviondb/aaviondb/pkg/log"
	"github.com/aaviondb/aaviondb/pkg/module"
	"github.com/aaviondb/aaviondb/pkg/pathlocator"
	"github.com/aaviondb/aaviondb/pkg/resolver"
	"github.com/aaviondb/aaviondb/pkg/scheduler"
	"github.com/aaviondb/aaviondb/pkg/security"
	"github.com/rs/zerolog"
)

// Container is the composition root. New builds every subsystem in
// dependency order: PathLocator -> EventBus -> BrainRepository -> Cache
// -> SecurityManager -> AuthManager -> ResolverEngine -> ExportEngine
// -> CommandRegistry -> CommandParser -> ModuleLoader, registers the
// built-in command handlers, then runs ModuleLoader initialization.
// CanonicalCodec and FilterEngine have no constructor of their own
// (pkg/codec and pkg/filter are package-level functions), so they
// contribute no field here.
type Container struct {
	Config Config

	Locator  *pathlocator.Locator
	Bus      *events.Bus
	Repo     *brain.Repository
	Cache    *cache.Cache
	Security *security.Manager
	Auth     *auth.Manager
	Resolver *resolver.Engine
	Export   *export.Engine
	Loader   *module.Loader
	Parser   *command.Parser
	Registry *command.Registry

	Logger zerolog.Logger

	ModuleResult *module.LoadResult
	Scheduler    *scheduler.Runner
}

// New constructs a fully wired Container from cfg. It does not start
// the HTTP adapter or the scheduler runner; callers that want a
// long-lived process start those separately via StartScheduler (see
// NewServer in pkg/httpapi for the HTTP half).
func New(cfg Config) (*Container, error) {
	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})
	logger := log.WithComponent("bootstrap")

	loc, err := pathlocator.New(cfg.StorageRoot)
	if err != nil {
		return nil, err
	}

	bus := events.New()
	repo := brain.New(loc, bus)
	if err := repo.EnsureSystemBrain(); err != nil {
		return nil, err
	}
	defaultBrain := cfg.DefaultBrain
	if defaultBrain == "" {
		defaultBrain = "default"
	}
	if err := repo.EnsureActiveBrain(defaultBrain); err != nil {
		return nil, err
	}

	if cfg.AdminSecret != "" {
		if err := repo.SetSystemConfigValue("auth.admin_secret", cfg.AdminSecret); err != nil {
			return nil, err
		}
	}

	c := cache.New(loc.CacheDir())
	sec := security.New(repo, c)
	am := auth.New(repo)
	res := resolver.New(repo)
	exp := export.New(repo, res)

	registry := command.NewRegistry(bus)
	parser := command.NewParser(bus, registry)

	loader := module.NewLoader(
		[]string{"storage", "export", "scheduler", "security", "auth"},
		[]string{"export"},
		map[string]interface{}{
			"repo":     repo,
			"registry": registry,
			"resolver": res,
			"export":   exp,
			"bus":      bus,
		},
	)

	container := &Container{
		Config:   cfg,
		Locator:  loc,
		Bus:      bus,
		Repo:     repo,
		Cache:    c,
		Security: sec,
		Auth:     am,
		Resolver: res,
		Export:   exp,
		Loader:   loader,
		Parser:   parser,
		Registry: registry,
		Logger:   logger,
	}

	commands.Register(commands.Dependencies{
		Repo:            repo,
		Registry:        registry,
		Parser:          parser,
		Bus:             bus,
		Resolver:        res,
		Export:          exp,
		Auth:            am,
		Security:        sec,
		Loader:          loader,
		SystemModuleDir: loc.SystemModulesDir(),
		UserModuleDir:   loc.UserModulesDir(),
		APIKeyLength:    cfg.APIKeyLength,
		Logger:          logger,
	})

	result, err := loader.Load(loc.SystemModulesDir(), loc.UserModulesDir())
	if err != nil {
		return nil, err
	}
	container.ModuleResult = result
	for name, reason := range result.Disabled {
		logger.Warn().Str("module", name).Str("reason", reason).Msg("module disabled")
	}
	for name, reason := range result.Failed {
		logger.Error().Str("module", name).Str("reason", reason).Msg("module failed to start")
	}

	return container, nil
}

// StartScheduler starts the internal scheduler runner, which ticks
// over due scheduler_tasks independently of the `cron` action.
func (c *Container) StartScheduler() {
	c.Scheduler = scheduler.NewRunner(c.Repo, c.Registry, time.Second)
	c.Scheduler.Start()
}

// Close stops any background goroutines the Container started.
func (c *Container) Close() {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
}

// Dispatch parses a raw statement (spec.md §6's CLI/REPL command form)
// and runs it through the registry, returning the unified envelope.
func (c *Container) Dispatch(statement string) command.Envelope {
	ctx, err := c.Parser.Parse(statement)
	if err != nil {
		return command.Envelope{
			Status:  "error",
			Action:  "",
			Message: err.Error(),
		}
	}
	return c.Registry.Dispatch(ctx.Action, ctx.Parameters)
}
