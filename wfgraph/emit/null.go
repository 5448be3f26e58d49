package emit

import "context"

// NullEmitter discards every event. It is the zero-overhead default
// for deployments that don't want observability wiring.
type NullEmitter struct{}

// NewNullEmitter creates a NullEmitter.
func NewNullEmitter() *NullEmitter { return &NullEmitter{} }

// Emit discards event.
func (n *NullEmitter) Emit(Event) {}

// Flush is a no-op.
func (n *NullEmitter) Flush(context.Context) error { return nil }
