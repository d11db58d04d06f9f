package command

import (
	"strings"

	"github.com/aaviondb/aaviondb/pkg/codec"
	"github.com/aaviondb/aaviondb/pkg/events"
)

// Context is the mutable state a parser handler operates on. A handler
// may rewrite Action or add to Parameters/Metadata; it may not retain
// the pointer past its own call.
type Context struct {
	Action     string
	Tokens     []string
	Payload    interface{}
	Parameters map[string]interface{}
	Metadata   map[string]interface{}
}

// Handler inspects/mutates ctx. Returning true stops further handler
// propagation for this parse.
type Handler func(ctx *Context) bool

type registration struct {
	priority int
	handler  Handler
}

// Parser tokenizes statements and runs registered handlers over the
// resulting context before CommandRegistry ever sees it.
type Parser struct {
	bus       *events.Bus
	registry  *Registry
	global    []registration
	perAction map[string][]registration
}

// NewParser constructs an empty Parser that emits command.parser.parsed
// on bus after each Parse call. registry may be nil; when set, its
// per-command parser metadata (registered via RegisterMeta) runs
// alongside any handlers registered directly with On (spec.md §4.5).
func NewParser(bus *events.Bus, registry *Registry) *Parser {
	return &Parser{bus: bus, registry: registry, perAction: map[string][]registration{}}
}

// Use registers a global handler that runs before any per-action
// handler, regardless of which action is ultimately dispatched.
func (p *Parser) Use(priority int, h Handler) {
	p.global = append(p.global, registration{priority, h})
	sortDesc(p.global)
}

// On registers a handler scoped to one action, ordered by descending
// priority among handlers for that same action.
func (p *Parser) On(action string, priority int, h Handler) {
	p.perAction[action] = append(p.perAction[action], registration{priority, h})
	sortDesc(p.perAction[action])
}

func sortDesc(regs []registration) {
	for i := 1; i < len(regs); i++ {
		for j := i; j > 0 && regs[j-1].priority < regs[j].priority; j-- {
			regs[j-1], regs[j] = regs[j], regs[j-1]
		}
	}
}

// Parse splits statement into {action, tokens, payload} and runs every
// applicable handler, in the order: global handlers, then the handlers
// registered for whichever action is current, bounded to one visit per
// action name to prevent handler-rewrite cycles (spec.md §4.4).
func (p *Parser) Parse(statement string) (*Context, error) {
	action, remainder := splitAction(statement)
	payload, rest, err := extractJSONPayload(remainder)
	if err != nil {
		return nil, err
	}
	tokens := tokenize(rest)

	ctx := &Context{
		Action:     action,
		Tokens:     tokens,
		Payload:    payload,
		Parameters: map[string]interface{}{},
		Metadata:   map[string]interface{}{},
	}

	visited := map[string]bool{}
	for _, reg := range p.global {
		if reg.handler(ctx) {
			break
		}
	}
	for !visited[ctx.Action] {
		visited[ctx.Action] = true
		for _, reg := range p.perAction[ctx.Action] {
			if reg.handler(ctx) {
				break
			}
		}
		if p.registry != nil {
			for _, h := range p.registry.ParserHandlers(ctx.Action) {
				if h(ctx) {
					break
				}
			}
		}
	}

	if p.bus != nil {
		p.bus.Emit("command.parser.parsed", map[string]interface{}{
			"action": ctx.Action,
		})
	}
	return ctx, nil
}

// splitAction returns the lowercased first whitespace-delimited token
// and the remainder of the statement.
func splitAction(statement string) (action, remainder string) {
	trimmed := strings.TrimSpace(statement)
	idx := strings.IndexFunc(trimmed, func(r rune) bool { return r == ' ' || r == '\t' })
	if idx < 0 {
		return strings.ToLower(trimmed), ""
	}
	return strings.ToLower(trimmed[:idx]), strings.TrimSpace(trimmed[idx+1:])
}

// extractJSONPayload finds the first unquoted '{' or '[' in s, parses
// the JSON value starting there, and returns it along with the text
// before and after it concatenated (so positional tokens surrounding
// an embedded payload are preserved).
func extractJSONPayload(s string) (payload interface{}, rest string, err error) {
	start := findUnquotedJSONStart(s)
	if start < 0 {
		return nil, s, nil
	}

	end, perr := matchJSONSpan(s, start)
	if perr != nil {
		return nil, "", perr
	}

	raw := s[start:end]
	v, derr := codec.Decode([]byte(raw))
	if derr != nil {
		return nil, "", derr
	}

	rest = strings.TrimSpace(s[:start] + " " + s[end:])
	return v, rest, nil
}

func findUnquotedJSONStart(s string) int {
	inQuote := rune(0)
	for i, r := range s {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			}
		case r == '"' || r == '\'':
			inQuote = r
		case r == '{' || r == '[':
			return i
		}
	}
	return -1
}

// matchJSONSpan returns the end offset (exclusive) of the balanced
// JSON value starting at start, honoring quoted strings within it.
func matchJSONSpan(s string, start int) (int, error) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return len(s), errUnterminatedPayload
}

var errUnterminatedPayload = parseError("unterminated JSON payload")

type parseError string

func (e parseError) Error() string { return string(e) }

// tokenize splits s on whitespace, honoring "…" and '…' quoting with
// backslash escapes, per spec.md §4.4.
func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := rune(0)
	escaped := false
	has := false

	flush := func() {
		if has {
			tokens = append(tokens, cur.String())
			cur.Reset()
			has = false
		}
	}

	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
			has = true
		case r == '\\' && inQuote != 0:
			escaped = true
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				cur.WriteRune(r)
				has = true
			}
		case r == '"' || r == '\'':
			inQuote = r
			has = true
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
			has = true
		}
	}
	flush()
	return tokens
}
