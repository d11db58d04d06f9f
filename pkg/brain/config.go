package brain

import (
	"time"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/model"
)

// ListConfig returns the active brain's key/value configuration store.
func (r *Repository) ListConfig() (map[string]interface{}, error) {
	b, err := r.load(false, r.ActiveBrain())
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(b.Config))
	for k, v := range b.Config {
		out[k] = v
	}
	return out, nil
}

// GetConfigValue returns a single config key from the active brain.
func (r *Repository) GetConfigValue(key string) (interface{}, error) {
	b, err := r.load(false, r.ActiveBrain())
	if err != nil {
		return nil, err
	}
	v, ok := b.Config[key]
	if !ok {
		return nil, apperr.NotFound("config_key_not_found", "no such config key: "+key)
	}
	return v, nil
}

// SetConfigValue sets a single config key on the active brain.
func (r *Repository) SetConfigValue(key string, value interface{}) error {
	if key == "" {
		return apperr.InvalidArgument("invalid_argument", "config key must not be empty")
	}
	slug := r.ActiveBrain()
	_, err := r.mutate(false, slug, func(b *model.Brain) error {
		b.Config[key] = value
		return nil
	})
	if err != nil {
		return err
	}
	if r.bus != nil {
		r.bus.Emit("config.updated", map[string]interface{}{
			"brain": slug,
			"key":   key,
			"at":    time.Now().UTC(),
		})
	}
	return nil
}

// DeleteConfigValue removes a config key from the active brain.
func (r *Repository) DeleteConfigValue(key string) error {
	slug := r.ActiveBrain()
	_, err := r.mutate(false, slug, func(b *model.Brain) error {
		if _, ok := b.Config[key]; !ok {
			return apperr.NotFound("config_key_not_found", "no such config key: "+key)
		}
		delete(b.Config, key)
		return nil
	})
	return err
}

// SystemConfigValue returns a config key from the system brain, used by
// components (SecurityManager, AuthManager) whose state is scoped to
// the system brain rather than the active user brain (spec.md §4.8).
func (r *Repository) SystemConfigValue(key string) (interface{}, bool, error) {
	b, err := r.load(true, "")
	if err != nil {
		return nil, false, err
	}
	v, ok := b.Config[key]
	return v, ok, nil
}

// SetSystemConfigValue sets a config key on the system brain.
func (r *Repository) SetSystemConfigValue(key string, value interface{}) error {
	_, err := r.mutate(true, "", func(b *model.Brain) error {
		b.Config[key] = value
		return nil
	})
	return err
}
