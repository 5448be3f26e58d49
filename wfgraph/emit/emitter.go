package emit

import "context"

// Emitter receives observability events from interpreter and backend
// activity.
//
// Implementations should be non-blocking and must never panic; a
// misbehaving emitter should not be able to take down workflow
// execution.
type Emitter interface {
	// Emit sends a single event to the configured backend.
	Emit(event Event)

	// Flush ensures any buffered events are delivered. Safe to call
	// multiple times.
	Flush(ctx context.Context) error
}
