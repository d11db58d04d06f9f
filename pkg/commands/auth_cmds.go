package commands

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/aaviondb/aaviondb/internal/apperr"
)

func registerAuthCommands(deps Dependencies) {
	deps.Registry.Register("auth.token.create", handleAuthTokenCreate(deps))
	deps.Registry.Register("auth.token.revoke", handleAuthTokenRevoke(deps))
	deps.Registry.Register("auth.token.reset", handleAuthTokenReset(deps))
	deps.Registry.Register("auth.bootstrap.rotate", handleAuthBootstrapRotate(deps))
	deps.Registry.Register("api.enable", handleAPIEnable(deps))
	deps.Registry.Register("api.disable", handleAPIDisable(deps))
}

func handleAuthTokenCreate(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		scope := stringParam(params, "scope")
		if scope == "" {
			scope = "ALL"
		}
		projects := stringSliceParam(params, "projects")
		keyLength := intParam(params, "key_length", deps.APIKeyLength)

		raw, id, err := deps.Repo.RegisterAuthToken(scope, projects, keyLength)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"id":     id,
			"token":  raw,
			"scope":  scope,
			"projects": projects,
		}, nil
	}
}

func handleAuthTokenRevoke(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		id, err := requireString(params, "id")
		if err != nil {
			return nil, err
		}
		if err := deps.Repo.RevokeAuthToken(id); err != nil {
			return nil, err
		}
		return map[string]interface{}{"id": id, "revoked": true}, nil
	}
}

func handleAuthTokenReset(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		if err := deps.Repo.ResetAuthTokens(); err != nil {
			return nil, err
		}
		return map[string]interface{}{"reset": true}, nil
	}
}

func handleAuthBootstrapRotate(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		key, err := randomHex(24)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "internal", "generate bootstrap key", err)
		}
		if err := deps.Repo.UpdateBootstrapKey(key); err != nil {
			return nil, err
		}
		return map[string]interface{}{"bootstrap_key": key}, nil
	}
}

func handleAPIEnable(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		if err := deps.Repo.SetAPIEnabled(true); err != nil {
			return nil, err
		}
		return map[string]interface{}{"enabled": true}, nil
	}
}

func handleAPIDisable(deps Dependencies) func(map[string]interface{}) (map[string]interface{}, error) {
	return func(params map[string]interface{}) (map[string]interface{}, error) {
		if err := deps.Repo.SetAPIEnabled(false); err != nil {
			return nil, err
		}
		return map[string]interface{}{"enabled": false}, nil
	}
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
