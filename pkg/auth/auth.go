package auth

import (
	"strings"

	"github.com/aaviondb/aaviondb/pkg/brain"
	"github.com/aaviondb/aaviondb/pkg/log"
)

// bypassAction is the sole action permitted to skip authentication
// entirely (scheduled invocations from out-of-band infrastructure);
// it still passes through SecurityManager (spec.md §4.9).
const bypassAction = "cron"

const adminSecretConfigKey = "auth.admin_secret"

// Decision is the result of guardRestAccess: whether the request may
// proceed, the HTTP status to report if not, and (when allowed) the
// scope the caller may act within.
type Decision struct {
	Allowed    bool
	StatusCode int
	Reason     string
	Message    string
	Scope      string   // "ALL" or a CSV/derived project list
	Projects   []string // nil means unrestricted (ALL)
	Mode       string   // "admin_secret", "token", or "cron_bypass"
	TokenID    string
}

func deny(status int, reason, message string) *Decision {
	return &Decision{Allowed: false, StatusCode: status, Reason: reason, Message: message}
}

// Manager resolves bearer tokens and the admin secret into access
// decisions, per spec.md §4.9.
type Manager struct {
	repo *brain.Repository
}

// New constructs a Manager backed by repo's system brain auth state.
func New(repo *brain.Repository) *Manager {
	return &Manager{repo: repo}
}

// GuardRestAccess decides whether token may invoke action.
func (m *Manager) GuardRestAccess(token, action string) (*Decision, error) {
	if action == bypassAction {
		return &Decision{Allowed: true, StatusCode: 200, Scope: "ALL", Mode: "cron_bypass"}, nil
	}

	if token != "" {
		if secret, ok, err := m.repo.SystemConfigValue(adminSecretConfigKey); err == nil && ok {
			if s, ok := secret.(string); ok && isValidAdminSecret(s) && token == s {
				return &Decision{
					Allowed: true, StatusCode: 200,
					Scope: "ALL", Projects: []string{"*"}, Mode: "admin_secret",
				}, nil
			}
		}
	}

	state, err := m.repo.SystemAuthState()
	if err != nil {
		return nil, err
	}
	if !state.API.Enabled {
		return deny(503, "api_disabled", "the REST API is disabled"), nil
	}
	if token == "" {
		return deny(401, "token_missing", "no bearer token supplied"), nil
	}
	if state.API.BootstrapKey != "" && token == state.API.BootstrapKey {
		return deny(403, "bootstrap_forbidden", "the bootstrap key may not authenticate REST requests"), nil
	}

	hashed := brain.HashToken(token)
	tok, found, err := m.repo.LookupToken(hashed)
	if err != nil {
		return nil, err
	}
	if !found {
		return deny(401, "token_invalid", "no such token"), nil
	}
	if !tok.Active {
		return deny(403, "token_inactive", "token has been revoked"), nil
	}

	if err := m.repo.TouchAuthKey(tok.ID); err != nil {
		log.WithComponent("auth").Warn().Err(err).Str("token_id", tok.ID).Msg("failed to record token use")
	}

	return &Decision{
		Allowed:    true,
		StatusCode: 200,
		Scope:      tok.Scope,
		Projects:   brain.ScopeProjects(tok),
		Mode:       "token",
		TokenID:    tok.ID,
	}, nil
}

// isValidAdminSecret enforces the admin secret's shape: it must begin
// with an underscore and be at least 8 characters long, distinguishing
// it from an ordinary bearer token at a glance.
func isValidAdminSecret(s string) bool {
	return strings.HasPrefix(s, "_") && len(s) >= 8
}
