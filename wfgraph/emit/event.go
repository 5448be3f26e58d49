// Package emit provides observability event emission for wfgraph
// interpreter and backend activity. It plays no part in interpreter
// control flow: it is additive instrumentation, attached to a
// wfgraph.Observer and threaded through ctx.
package emit

// Event represents one observable moment in interpreter execution: a
// token created or completed, a join firing or parking, a guard
// verdict.
type Event struct {
	// ProcessID identifies the process that produced this event.
	ProcessID string

	// NodeID identifies the node involved, if any. Zero value (0) for
	// process-level events.
	NodeID int

	// Msg is a short, stable event name: "node_token_created",
	// "arc_token_completed", "join_fired", "join_parked",
	// "guard_discard", and similar.
	Msg string

	// Meta carries event-specific structured data, e.g. "token_id",
	// "arc_label", "cohort_size".
	Meta map[string]any
}
