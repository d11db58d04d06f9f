package httpapi

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/aaviondb/aaviondb/internal/apperr"
	"github.com/aaviondb/aaviondb/pkg/command"
)

const maxBodyBytes = 10 << 20 // 10 MiB, generous for a JSON payload body

// dispatchHandler is the single action-dispatch endpoint spec.md §6
// describes: GET|POST|PUT|PATCH|DELETE plus OPTIONS for CORS preflight.
func (s *Server) dispatchHandler(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	client := clientKey(r)
	logger := s.container.Logger

	if err := s.container.Security.Preflight(client); err != nil {
		writeAppErr(w, err)
		return
	}
	if err := s.container.Security.RegisterAttempt(client); err != nil {
		writeAppErr(w, err)
		return
	}

	token := extractToken(r)
	action, params, statement, err := extractRequest(r)
	if err != nil {
		writeAppErr(w, apperr.InvalidArgument("invalid_body", err.Error()))
		return
	}
	if action == "" && statement == "" {
		writeAppErr(w, apperr.InvalidArgument("action_missing", "no action supplied"))
		return
	}
	if action == "" {
		action = firstToken(statement)
	}

	decision, err := s.container.Auth.GuardRestAccess(token, action)
	if err != nil {
		logger.Error().Err(err).Msg("auth decision failed")
		writeJSON(w, http.StatusInternalServerError, command.Envelope{
			Status:  "error",
			Message: err.Error(),
			Meta:    map[string]interface{}{"exception": map[string]interface{}{"message": err.Error(), "type": "internal"}},
		})
		return
	}
	if !decision.Allowed {
		_ = s.container.Security.RegisterFailure(client)
		writeJSON(w, decision.StatusCode, command.Envelope{
			Status:  "error",
			Action:  action,
			Message: decision.Message,
			Meta:    map[string]interface{}{"reason": decision.Reason},
		})
		return
	}
	s.container.Security.RegisterSuccess(client, decision.Mode)

	var env command.Envelope
	if statement != "" {
		env = s.container.Dispatch(statement)
	} else {
		env = s.container.Registry.Dispatch(action, params)
	}
	writeJSON(w, statusForEnvelope(env), env)
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
}

// clientKey derives the SecurityManager client identifier from the
// request's remote address; normalization (lowercase, empty ->
// "anonymous") and hashing happen inside pkg/security (spec.md §4.8).
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// extractToken reads the bearer token in the order spec.md §6 fixes:
// Authorization: Bearer ..., then X-API-Key, then a token/api_key
// query or form parameter.
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if t := r.URL.Query().Get("api_key"); t != "" {
		return t
	}
	if t := r.FormValue("token"); t != "" {
		return t
	}
	return r.FormValue("api_key")
}

// extractRequest resolves the action and its parameters per spec.md
// §6: action from the query string or JSON body; a raw non-JSON body
// is treated as a full CLI statement and returned as statement, with
// the caller responsible for deriving its action via the parser.
func extractRequest(r *http.Request) (action string, params map[string]interface{}, statement string, err error) {
	params = map[string]interface{}{}
	for key, values := range r.URL.Query() {
		if key == "token" || key == "api_key" || key == "action" || len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}
	action = r.URL.Query().Get("action")

	if r.Body == nil {
		return action, params, "", nil
	}
	body, readErr := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if readErr != nil {
		return "", nil, "", readErr
	}
	body = []byte(strings.TrimSpace(string(body)))
	if len(body) == 0 {
		return action, params, "", nil
	}

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") || body[0] == '{' {
		var decoded map[string]interface{}
		if jsonErr := json.Unmarshal(body, &decoded); jsonErr != nil {
			return "", nil, "", jsonErr
		}
		if raw, ok := decoded["command"].(string); ok {
			return "command", params, raw, nil
		}
		for k, v := range decoded {
			params[k] = v
		}
		if action == "" {
			if a, ok := decoded["action"].(string); ok {
				action = a
			}
		}
		return action, params, "", nil
	}

	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		if formErr := r.ParseForm(); formErr == nil {
			payload := map[string]interface{}{}
			for k, v := range r.PostForm {
				if len(v) > 0 {
					payload[k] = v[0]
				}
			}
			params["payload"] = payload
		}
		return action, params, "", nil
	}

	// Neither JSON nor form: treat the raw body as a full CLI
	// statement, same shape the `aaviondb` binary accepts on argv.
	return "command", params, string(body), nil
}

func firstToken(statement string) string {
	fields := strings.Fields(statement)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

func writeAppErr(w http.ResponseWriter, err error) {
	if appErr, ok := apperr.As(err); ok {
		meta := map[string]interface{}{"reason": appErr.Reason, "kind": string(appErr.Kind)}
		if appErr.RetryAfter > 0 {
			meta["retry_after"] = appErr.RetryAfter
			w.Header().Set("Retry-After", strconv.Itoa(appErr.RetryAfter))
		}
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, command.Envelope{Status: "error", Message: appErr.Message, Meta: meta})
		return
	}
	writeJSON(w, http.StatusInternalServerError, command.Envelope{Status: "error", Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, env command.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// statusForEnvelope maps a dispatched envelope's error kind (recorded
// in Meta by command.Registry.errorEnvelope) to the HTTP status
// spec.md §6/§7 assigns it.
func statusForEnvelope(env command.Envelope) int {
	if env.Status == "ok" {
		return http.StatusOK
	}
	if env.Meta == nil {
		return http.StatusInternalServerError
	}
	kind, _ := env.Meta["kind"].(string)
	switch apperr.Kind(kind) {
	case apperr.KindInvalidArgument, apperr.KindNotFound, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case apperr.KindLockedDown:
		return http.StatusServiceUnavailable
	case apperr.KindStorage, apperr.KindInternal:
		return http.StatusInternalServerError
	default:
		if reason, _ := env.Meta["reason"].(string); reason == "command_error" {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}
}
