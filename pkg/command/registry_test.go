package command

import (
	"errors"
	"testing"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/events"
	"github.com/stretchr/testify/assert"
)

func TestDispatchUnknownAction(t *testing.T) {
	r := NewRegistry(events.New())
	env := r.Dispatch("nonexistent", nil)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "command_error", env.Meta["reason"])
}

func TestDispatchSuccess(t *testing.T) {
	r := NewRegistry(events.New())
	r.Register("echo", func(parameters map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"echoed": parameters["value"]}, nil
	})

	env := r.Dispatch("ECHO", map[string]interface{}{"value": "hi"})
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, "hi", env.Data["echoed"])
}

func TestDispatchBusinessError(t *testing.T) {
	r := NewRegistry(events.New())
	r.Register("show", func(parameters map[string]interface{}) (map[string]interface{}, error) {
		return nil, apperr.NotFound("not_found", "no such entity")
	})

	env := r.Dispatch("show", nil)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "not_found", env.Meta["reason"])
}

func TestDispatchUnexpectedErrorIncludesException(t *testing.T) {
	r := NewRegistry(events.New())
	r.Register("boom", func(parameters map[string]interface{}) (map[string]interface{}, error) {
		return nil, errors.New("kaboom")
	})

	env := r.Dispatch("boom", nil)
	assert.Equal(t, "error", env.Status)
	exc, ok := env.Meta["exception"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "kaboom", exc["message"])
}

func TestDispatchRecoversPanic(t *testing.T) {
	r := NewRegistry(events.New())
	r.Register("panics", func(parameters map[string]interface{}) (map[string]interface{}, error) {
		panic("unexpected")
	})

	env := r.Dispatch("panics", nil)
	assert.Equal(t, "error", env.Status)
}
