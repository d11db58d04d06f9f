package module

import (
	"fmt"
	"sync"

	"github.com/aaviondb/aaviondb/pkg/log"
)

// Initializer is a statically linked module entry point (spec.md §9
// redesign flag). It receives a ModuleContext scoped to exactly the
// services its manifest's capabilities grant.
type Initializer func(ctx *ModuleContext) error

// ModuleContext grants a module access to only the services its
// capabilities permit.
type ModuleContext struct {
	Descriptor   *Descriptor
	Capabilities map[string]bool
	Services     map[string]interface{}
}

// Has reports whether the module was granted capability.
func (c *ModuleContext) Has(capability string) bool { return c.Capabilities[capability] }

// Service fetches a granted service handle by name; ok is false if the
// capability gating the service was never granted.
func (c *ModuleContext) Service(name string) (interface{}, bool) {
	if !c.Capabilities[name] {
		return nil, false
	}
	v, ok := c.Services[name]
	return v, ok
}

var (
	registryMu   sync.Mutex
	initializers = map[string]Initializer{}
)

// RegisterInitializer links name's Initializer in at compile time;
// subsystem packages call this from their own init().
func RegisterInitializer(name string, fn Initializer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	initializers[name] = fn
}

// Loader runs discovered descriptors through resolution and then
// invokes each enabled module's statically registered Initializer in
// dependency order.
type Loader struct {
	systemCapabilities map[string]bool
	userCapabilities   map[string]bool
	services           map[string]interface{}
}

// LoadResult reports per-module outcomes.
type LoadResult struct {
	Started  []string
	Disabled map[string]string
	Failed   map[string]string
}

// NewLoader constructs a Loader with the default capability set each
// scope is granted (system modules receive the broader set).
func NewLoader(systemCapabilities, userCapabilities []string, services map[string]interface{}) *Loader {
	return &Loader{
		systemCapabilities: toSet(systemCapabilities),
		userCapabilities:   toSet(userCapabilities),
		services:           services,
	}
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[i] = true
	}
	return out
}

// Load scans systemDir/userDir, resolves dependencies, checks
// capability grants, and runs every enabled autoload module's
// initializer in order.
func (l *Loader) Load(systemDir, userDir string) (*LoadResult, error) {
	descs, err := Scan(systemDir, userDir)
	if err != nil {
		return nil, err
	}

	resolved := Resolve(descs)
	result := &LoadResult{Disabled: resolved.Disabled, Failed: map[string]string{}}

	for _, d := range resolved.Order {
		if !d.Autoload {
			continue
		}

		allowed := l.systemCapabilities
		if d.Scope == ScopeUser {
			allowed = l.userCapabilities
		}
		for _, capability := range d.Capabilities {
			if !allowed[capability] {
				result.Failed[d.Name] = fmt.Sprintf("capability %q not permitted for scope %s", capability, d.Scope)
				break
			}
		}
		if _, failed := result.Failed[d.Name]; failed {
			continue
		}

		init, ok := initializers[d.Name]
		if !ok {
			result.Failed[d.Name] = "no initializer registered for module " + d.Name
			continue
		}

		ctx := &ModuleContext{
			Descriptor:   d,
			Capabilities: toSet(d.Capabilities),
			Services:     l.services,
		}
		if err := init(ctx); err != nil {
			result.Failed[d.Name] = err.Error()
			log.WithComponent("module").Error().Err(err).Str("module", d.Name).Msg("module initialization failed")
			continue
		}
		result.Started = append(result.Started, d.Name)
	}

	return result, nil
}
