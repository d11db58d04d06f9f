package brain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/model"
	"github.com/google/uuid"
)

// SystemAuthState returns the system brain's auth/API substate.
func (r *Repository) SystemAuthState() (*model.AuthState, error) {
	b, err := r.load(true, "")
	if err != nil {
		return nil, err
	}
	if b.Auth == nil {
		return nil, apperr.New(apperr.KindInternal, "internal", "system brain missing auth state")
	}
	return b.Auth, nil
}

// HashToken returns the storage form of a bearer token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// RegisterAuthToken mints a new token with the given scope ("ALL" or a
// CSV project list) and returns its raw bearer value; only the hash is
// persisted.
func (r *Repository) RegisterAuthToken(scope string, projects []string, keyLength int) (raw string, id string, err error) {
	if keyLength <= 0 {
		keyLength = 32
	}
	raw, err = randomHex(keyLength)
	if err != nil {
		return "", "", apperr.Wrap(apperr.KindInternal, "internal", "generate token", err)
	}
	id = uuid.NewString()
	now := time.Now().UTC()

	_, err = r.mutate(true, "", func(b *model.Brain) error {
		b.Auth.Tokens[id] = &model.AuthToken{
			ID:        id,
			HashedKey: HashToken(raw),
			Scope:     scope,
			Projects:  projects,
			Active:    true,
			CreatedAt: now,
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return raw, id, nil
}

// RevokeAuthToken deactivates a token by id.
func (r *Repository) RevokeAuthToken(id string) error {
	_, err := r.mutate(true, "", func(b *model.Brain) error {
		t, ok := b.Auth.Tokens[id]
		if !ok {
			return apperr.NotFound("not_found", "no such token: "+id)
		}
		t.Active = false
		return nil
	})
	return err
}

// ResetAuthTokens deactivates every token in the system brain.
func (r *Repository) ResetAuthTokens() error {
	_, err := r.mutate(true, "", func(b *model.Brain) error {
		for _, t := range b.Auth.Tokens {
			t.Active = false
		}
		return nil
	})
	return err
}

// SetAPIEnabled toggles whether the HTTP endpoint accepts requests.
func (r *Repository) SetAPIEnabled(enabled bool) error {
	_, err := r.mutate(true, "", func(b *model.Brain) error {
		b.Auth.API.Enabled = enabled
		return nil
	})
	return err
}

// UpdateBootstrapKey rotates the bootstrap key, which must never
// authenticate REST requests (spec.md §4.9).
func (r *Repository) UpdateBootstrapKey(key string) error {
	_, err := r.mutate(true, "", func(b *model.Brain) error {
		b.Auth.API.BootstrapKey = key
		return nil
	})
	return err
}

// TouchAuthKey records a token's last-use timestamp, serialized through
// the brain repository's write lock so last-use timestamps are
// strictly ordered (spec.md §5, "Auth state").
func (r *Repository) TouchAuthKey(id string) error {
	_, err := r.mutate(true, "", func(b *model.Brain) error {
		t, ok := b.Auth.Tokens[id]
		if !ok {
			return apperr.NotFound("not_found", "no such token: "+id)
		}
		t.LastUsedAt = time.Now().UTC()
		return nil
	})
	return err
}

// LookupToken finds a token entry by its hashed key, whether or not it
// is still active; callers check AuthToken.Active themselves.
func (r *Repository) LookupToken(hashedKey string) (*model.AuthToken, bool, error) {
	state, err := r.SystemAuthState()
	if err != nil {
		return nil, false, err
	}
	for _, t := range state.Tokens {
		if subtle.ConstantTimeCompare([]byte(t.HashedKey), []byte(hashedKey)) == 1 {
			return t, true, nil
		}
	}
	return nil, false, nil
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ScopeProjects splits an AuthToken's CSV/slice project scope.
func ScopeProjects(t *model.AuthToken) []string {
	if strings.EqualFold(t.Scope, "ALL") {
		return nil
	}
	if len(t.Projects) > 0 {
		return t.Projects
	}
	var out []string
	for _, p := range strings.Split(t.Scope, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
