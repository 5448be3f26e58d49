package wfgraph

import (
	"errors"
	"fmt"
)

// Graph errors, surfaced as recoverable failures from Start (spec §7
// "Graph errors").
var (
	// ErrNoStartNode is returned when a graph has no node satisfying
	// the start predicate.
	ErrNoStartNode = errors.New("wfgraph: no start node")

	// ErrMultipleStartNodes is returned when more than one node
	// satisfies the start predicate.
	ErrMultipleStartNodes = errors.New("wfgraph: multiple start nodes")
)

// FatalError wraps an invariant violation discovered during
// interpretation: a node or arc id missing from the graph, or a guard
// verdict outside the known set. A missing node type is reported
// separately, as *MissingNodeTypeError. These are never recoverable;
// the core does not attempt to repair them (spec §7 "Lookup
// failures").
type FatalError struct {
	Msg   string
	Cause error
}

func (e *FatalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("wfgraph: fatal: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("wfgraph: fatal: %s", e.Msg)
}

func (e *FatalError) Unwrap() error { return e.Cause }

func fatalf(cause error, format string, args ...any) error {
	return &FatalError{Msg: fmt.Sprintf(format, args...), Cause: cause}
}
