// Package command implements the CommandParser and CommandRegistry
// (spec.md §4.4-§4.5): turning a single statement string into
// {action, tokens, payload, parameters}, and dispatching a normalized
// action to its registered handler inside the unified response
// envelope {status, action, message, data, meta}.
package command
