package commands

import (
	"strings"

	"github.com/aaviondb/aaviondb/pkg/command"
)

// actionSpec declares how CommandParser should turn a dispatched
// action's tokens/payload into named parameters (spec.md §4.4). It is
// the positional grammar an operator types at the CLI/REPL; the
// equivalent REST/API call supplies the same names directly as a JSON
// object and never touches this file.
type actionSpec struct {
	// positional names the leading non "key=value" tokens fill, in
	// order (e.g. "save <project> <entity>").
	positional []string
	// payloadField, set, stores the statement's trailing JSON payload
	// verbatim under this parameter name - used by actions whose
	// payload is the entity's own data (save) rather than a set of
	// named arguments. Left empty, a payload's keys are merged
	// directly into parameters instead.
	payloadField string
}

var actionSpecs = map[string]actionSpec{
	"save":       {positional: []string{"project", "entity"}, payloadField: "payload"},
	"show":       {positional: []string{"project", "entity", "reference"}},
	"list":       {positional: []string{"project"}},
	"history":    {positional: []string{"project", "entity"}},
	"deactivate": {positional: []string{"project", "entity"}},
	"remove":     {positional: []string{"project", "entity", "reference"}},
	"delete":     {positional: []string{"project", "entity"}},
	"restore":    {positional: []string{"project", "entity", "reference"}},

	"project.create":  {positional: []string{"slug"}},
	"project.archive": {positional: []string{"slug"}},
	"project.delete":  {positional: []string{"slug"}},
	"project.report":  {positional: []string{"slug"}},

	"brain.report": {positional: []string{"slug"}},

	"config.get":    {positional: []string{"key"}},
	"config.set":    {positional: []string{"key", "value"}},
	"config.delete": {positional: []string{"key"}},

	"auth.token.revoke": {positional: []string{"id"}},

	"query": {positional: []string{"project"}},
}

// registerParserHandlers wires deps.Parser (the global chained-action
// rewrite) and deps.Registry's per-action parser metadata (the
// tokens/payload -> parameters translation), so a raw CLI/REPL
// statement reaches the handler with the same named parameters its
// REST/API form would carry (spec.md §4.4's "Handler contract").
// Called once after every registerXCommands has registered its
// handlers, since it needs each action's ActionHandler already present
// in deps.Registry to re-register it alongside parser metadata.
func registerParserHandlers(deps Dependencies) {
	if deps.Parser == nil {
		return
	}

	deps.Parser.Use(100, rewriteChainedAction())

	for action := range catalog {
		handler, ok := deps.Registry.Handler(action)
		if !ok {
			continue
		}
		spec := actionSpecs[action]
		deps.Registry.RegisterMeta(action, handler, command.ActionMeta{
			ParserHandlers: []command.Handler{populateParameters(spec)},
		})
	}
}

// rewriteChainedAction folds a multi-word CLI statement such as
// "project create ..." into its registered dotted action
// ("project.create"), trying the longest dotted join first so actions
// with more than one segment after the leading word (like
// "auth.bootstrap.rotate" or "export.preset.list") still resolve.
func rewriteChainedAction() command.Handler {
	return func(ctx *command.Context) bool {
		maxJoin := len(ctx.Tokens)
		if maxJoin > 3 {
			maxJoin = 3
		}
		for n := maxJoin; n >= 1; n-- {
			candidate := ctx.Action + "." + strings.ToLower(strings.Join(ctx.Tokens[:n], "."))
			if _, ok := catalog[candidate]; !ok {
				continue
			}
			ctx.Action = candidate
			ctx.Tokens = ctx.Tokens[n:]
			return false
		}
		return false
	}
}

// populateParameters consumes ctx.Tokens/ctx.Payload into ctx.Parameters
// per spec: a bare token fills the next unconsumed positional name; a
// "key=value" token sets that key directly; the JSON payload either
// lands under spec.payloadField verbatim or, absent one, has its own
// keys merged into parameters (the shorthand every non-entity action
// uses to accept its whole argument set as one JSON object).
func populateParameters(spec actionSpec) command.Handler {
	return func(ctx *command.Context) bool {
		idx := 0
		for _, tok := range ctx.Tokens {
			if key, value, ok := splitKeyValue(tok); ok {
				ctx.Parameters[key] = value
				continue
			}
			if idx < len(spec.positional) {
				ctx.Parameters[spec.positional[idx]] = tok
				idx++
			}
		}

		if ctx.Payload == nil {
			return false
		}
		if spec.payloadField != "" {
			ctx.Parameters[spec.payloadField] = ctx.Payload
			return false
		}
		if m, ok := ctx.Payload.(map[string]interface{}); ok {
			for k, v := range m {
				ctx.Parameters[k] = v
			}
		}
		return false
	}
}

func splitKeyValue(tok string) (key, value string, ok bool) {
	i := strings.IndexByte(tok, '=')
	if i <= 0 {
		return "", "", false
	}
	return tok[:i], tok[i+1:], true
}
