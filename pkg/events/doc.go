// Package events implements AavionDB's EventBus (spec.md §2): a
// synchronous, in-process, named-event fan-out with wildcard suffix
// matching, grounded on the subscriber-map shape of the teacher's
// events.Broker but converted from asynchronous channel delivery to
// synchronous handler invocation — callers need the guarantee that
// command.executed fires only once the underlying write has already
// been durably committed (spec.md §5, "Ordering guarantees").
package events
