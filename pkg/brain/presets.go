package brain

import (
	"sort"
	"time"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/model"
)

// ListPresets returns every export preset slug defined in the system
// brain, sorted.
func (r *Repository) ListPresets() ([]string, error) {
	b, err := r.load(true, "")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(b.Presets))
	for k := range b.Presets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// GetPreset returns one export preset definition by slug (spec.md
// §4.12: "fixed schema of meta/selection/transform/policies/templates").
func (r *Repository) GetPreset(slug string) (model.Payload, error) {
	b, err := r.load(true, "")
	if err != nil {
		return nil, err
	}
	p, ok := b.Presets[slug]
	if !ok {
		return nil, apperr.NotFound("not_found", "no such export preset: "+slug)
	}
	return p, nil
}

// SetPreset creates or replaces an export preset definition.
func (r *Repository) SetPreset(slug string, definition model.Payload) error {
	_, err := r.mutate(true, "", func(b *model.Brain) error {
		b.Presets[slug] = definition
		return nil
	})
	if err != nil {
		return err
	}
	if r.bus != nil {
		r.bus.Emit("export.preset_updated", map[string]interface{}{"slug": slug, "at": time.Now().UTC()})
	}
	return nil
}

// ListLayouts returns every export layout slug defined in the system
// brain, sorted.
func (r *Repository) ListLayouts() ([]string, error) {
	b, err := r.load(true, "")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(b.ExportLayouts))
	for k := range b.ExportLayouts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// GetLayout returns one export layout template by slug.
func (r *Repository) GetLayout(slug string) (model.Payload, bool, error) {
	b, err := r.load(true, "")
	if err != nil {
		return nil, false, err
	}
	l, ok := b.ExportLayouts[slug]
	return l, ok, nil
}

// SetLayout creates or replaces an export layout.
func (r *Repository) SetLayout(slug string, layout model.Payload) error {
	_, err := r.mutate(true, "", func(b *model.Brain) error {
		b.ExportLayouts[slug] = layout
		return nil
	})
	return err
}
