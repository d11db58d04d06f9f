package command

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/events"
	"github.com/aaviondb/aaviondb/pkg/log"
)

// ActionHandler executes one dispatched action and returns the `data`
// portion of the response envelope.
type ActionHandler func(parameters map[string]interface{}) (map[string]interface{}, error)

// ActionMeta describes optional per-command parser wiring, registered
// alongside a handler via RegisterMeta.
type ActionMeta struct {
	ParserHandlers []Handler
}

type entry struct {
	handler ActionHandler
	meta    ActionMeta
}

// Envelope is the unified response shape spec.md §4.5 requires for
// every dispatched action, over both the CLI and the HTTP adapter.
type Envelope struct {
	Status  string                 `json:"status"`
	Action  string                 `json:"action"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// Registry maps normalized action names to their handlers.
type Registry struct {
	bus     *events.Bus
	entries map[string]entry
}

// NewRegistry constructs an empty Registry.
func NewRegistry(bus *events.Bus) *Registry {
	return &Registry{bus: bus, entries: map[string]entry{}}
}

// Register adds a handler for action, normalized to lowercase.
func (r *Registry) Register(action string, handler ActionHandler) {
	r.entries[normalize(action)] = entry{handler: handler}
}

// RegisterMeta registers a handler together with its parser metadata.
func (r *Registry) RegisterMeta(action string, handler ActionHandler, meta ActionMeta) {
	r.entries[normalize(action)] = entry{handler: handler, meta: meta}
}

// ParserHandlers returns the parser-stage handlers registered for
// action, if any.
func (r *Registry) ParserHandlers(action string) []Handler {
	return r.entries[normalize(action)].meta.ParserHandlers
}

// Handler returns the ActionHandler registered for action, if any, so
// a later pass may re-register it alongside parser metadata via
// RegisterMeta without the caller needing to reconstruct the closure.
func (r *Registry) Handler(action string) (ActionHandler, bool) {
	e, ok := r.entries[normalize(action)]
	return e.handler, ok
}

// Actions returns the sorted set of registered action names.
func (r *Registry) Actions() []string {
	out := make([]string, 0, len(r.entries))
	for a := range r.entries {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func normalize(action string) string { return strings.ToLower(strings.TrimSpace(action)) }

// Dispatch invokes the handler registered for action with parameters,
// converting its result (or error) into the canonical envelope and
// emitting command.executed / command.failed with status and duration
// (spec.md §4.5).
func (r *Registry) Dispatch(action string, parameters map[string]interface{}) Envelope {
	action = normalize(action)
	start := time.Now()

	e, ok := r.entries[action]
	if !ok {
		return Envelope{
			Status:  "error",
			Action:  action,
			Message: "unknown action: " + action,
			Meta:    map[string]interface{}{"reason": "command_error"},
		}
	}

	data, err := r.invoke(e.handler, parameters)
	duration := time.Since(start)

	if err == nil {
		if r.bus != nil {
			r.bus.Emit("command.executed", map[string]interface{}{
				"action":      action,
				"status":      "ok",
				"duration_ms": duration.Milliseconds(),
			})
		}
		return Envelope{Status: "ok", Action: action, Data: data}
	}

	env := r.errorEnvelope(action, err)
	if r.bus != nil {
		r.bus.Emit("command.failed", map[string]interface{}{
			"action":      action,
			"status":      "error",
			"duration_ms": duration.Milliseconds(),
			"error":       err.Error(),
		})
	}
	return env
}

func (r *Registry) invoke(handler ActionHandler, parameters map[string]interface{}) (data map[string]interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in action handler: %v", rec)
		}
	}()
	return handler(parameters)
}

func (r *Registry) errorEnvelope(action string, err error) Envelope {
	if appErr, ok := apperr.As(err); ok {
		meta := map[string]interface{}{"reason": appErr.Reason, "kind": string(appErr.Kind)}
		if appErr.RetryAfter > 0 {
			meta["retry_after"] = appErr.RetryAfter
		}
		return Envelope{Status: "error", Action: action, Message: appErr.Message, Meta: meta}
	}

	log.WithComponent("command").Error().Err(err).Str("action", action).Msg("unhandled action error")
	return Envelope{
		Status:  "error",
		Action:  action,
		Message: err.Error(),
		Meta: map[string]interface{}{
			"exception": map[string]interface{}{
				"message": err.Error(),
				"type":    fmt.Sprintf("%T", err),
			},
		},
	}
}
