package wfgraph

import "context"

// Engine is the backend contract (spec §4.3). Every persistent state
// transition flows through it; the interpreter never mutates
// persistent state directly. Implementations may back this with
// in-memory maps or a durable store — see package wfstore for both.
//
// The interpreter assumes every Engine call succeeds; a returned error
// aborts the current interpreter invocation (spec §7 "Backend
// failures"). Rollback semantics at the next TransactionBoundary are
// the backend's responsibility, not the interpreter's.
type Engine interface {
	// CreateProcess allocates a new Process bound to graph and
	// registry, carrying the opaque userData payload.
	CreateProcess(ctx context.Context, graph *Graph, registry *Registry, userData any) (*Process, error)

	// CreateNodeToken allocates a new node-token at node, installs it
	// in process, and may initialize its attributes from the parents
	// of incomingArcTokens. Returns the new token.
	CreateNodeToken(ctx context.Context, process *Process, node Node, incomingArcTokens []ArcToken) (NodeToken, error)

	// CreateArcToken allocates a new arc-token traversing arc, produced
	// by parent.
	CreateArcToken(ctx context.Context, process *Process, arc Arc, parent NodeToken) (ArcToken, error)

	// CompleteNodeToken marks a node-token completed, so it no longer
	// counts as live in persisted state.
	CompleteNodeToken(ctx context.Context, process *Process, token NodeToken) error

	// CompleteArcToken marks an arc-token completed, so it no longer
	// counts as live in persisted state.
	CompleteArcToken(ctx context.Context, process *Process, token ArcToken) error

	// TransactionBoundary flushes pending work and commits. Its
	// placement is policy of node-type code, never called by the
	// interpreter itself (spec §4.3, §5).
	TransactionBoundary(ctx context.Context, process *Process) error

	// SetTokenAttr sets key to value for token.
	SetTokenAttr(ctx context.Context, process *Process, token NodeToken, key, value string) error

	// RemoveTokenAttr removes key for token, if present.
	RemoveTokenAttr(ctx context.Context, process *Process, token NodeToken, key string) error
}
