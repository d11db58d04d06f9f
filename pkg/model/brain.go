package model

import "time"

// Payload is the tagged-variant JSON value AavionDB stores and
// manipulates: null | bool | json.Number | string | []interface{} |
// map[string]interface{}. Entity payloads are always objects at the
// top level, but nested values may be any of these shapes.
type Payload = map[string]interface{}

// Meta identifies a brain document (spec.md §3).
type Meta struct {
	Slug          string    `json:"slug"`
	UUID          string    `json:"uuid"`
	CreatedAt     time.Time `json:"created_at"`
	SchemaVersion int       `json:"schema_version"`
}

// AuthToken is one entry in the system brain's token store.
type AuthToken struct {
	ID         string    `json:"id"`
	HashedKey  string    `json:"hashed_key"`
	Scope      string    `json:"scope"` // "ALL" or a CSV project list
	Projects   []string  `json:"projects"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at,omitempty"`
}

// APIState is the system brain's REST-enablement and bootstrap state.
type APIState struct {
	Enabled      bool   `json:"enabled"`
	BootstrapKey string `json:"bootstrap_key"`
}

// AuthState bundles everything AuthManager and SecurityManager read
// from the system brain.
type AuthState struct {
	API    APIState             `json:"api"`
	Tokens map[string]*AuthToken `json:"tokens"`
}

// SchedulerTask is one entry in the system brain's scheduler_tasks map,
// consumed by the out-of-scope scheduler runner (spec.md §2).
type SchedulerTask struct {
	Slug           string    `json:"slug"`
	Action         string    `json:"action"`
	Parameters     Payload   `json:"parameters"`
	IntervalSecs   int       `json:"interval_seconds"`
	LastRunAt      time.Time `json:"last_run_at,omitempty"`
	Active         bool      `json:"active"`
}

// Brain is the top-level document persisted to a single JSON file
// (spec.md §3). System-only fields are populated only on the system
// brain.
type Brain struct {
	Meta         Meta                    `json:"meta"`
	Config       map[string]interface{}  `json:"config"`
	Projects     map[string]*Project     `json:"projects"`
	CommitIndex  map[string]CommitEntry  `json:"commit_index"`

	// System-brain-only substate.
	Auth            *AuthState                `json:"auth,omitempty"`
	Presets         map[string]Payload        `json:"presets,omitempty"`
	ExportLayouts   map[string]Payload        `json:"export_layouts,omitempty"`
	SchedulerTasks  map[string]*SchedulerTask `json:"scheduler_tasks,omitempty"`
}

// CommitEntry is the O(1) commit-hash lookup index (spec.md §3).
type CommitEntry struct {
	Project string `json:"project"`
	Entity  string `json:"entity"`
	Version int    `json:"version"`
}

// NewBrain constructs an empty brain document for slug.
func NewBrain(slug, uuid string, createdAt time.Time, system bool) *Brain {
	b := &Brain{
		Meta: Meta{
			Slug:          slug,
			UUID:          uuid,
			CreatedAt:     createdAt,
			SchemaVersion: 1,
		},
		Config:      map[string]interface{}{},
		Projects:    map[string]*Project{},
		CommitIndex: map[string]CommitEntry{},
	}
	if system {
		b.Auth = &AuthState{
			API:    APIState{Enabled: true},
			Tokens: map[string]*AuthToken{},
		}
		b.Presets = map[string]Payload{}
		b.ExportLayouts = map[string]Payload{}
		b.SchedulerTasks = map[string]*SchedulerTask{}
	}
	return b
}
