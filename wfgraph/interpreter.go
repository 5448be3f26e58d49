package wfgraph

import "context"

// Start locates the graph's unique start node, creates a Process via
// engine, parks a node-token on the start node, and invokes
// AcceptWithGuard (spec §4.4).
//
// Start is the one place recoverable errors are surfaced: ErrNoStartNode
// and ErrMultipleStartNodes abort before any Process is created.
// Everything past that point is fatal-or-nothing (spec §7).
func Start(ctx context.Context, engine Engine, registry *Registry, graph *Graph, userData any) (*Process, error) {
	startNode, err := graph.StartNode()
	if err != nil {
		return nil, err
	}

	process, err := engine.CreateProcess(ctx, graph, registry, userData)
	if err != nil {
		return nil, err
	}

	token, err := engine.CreateNodeToken(ctx, process, startNode, nil)
	if err != nil {
		return nil, err
	}
	process.AddNodeToken(token)
	observeNodeToken(ctx, process.ID, startNode.ID, startNode.Type, true)

	if err := AcceptWithGuard(ctx, engine, token, process); err != nil {
		return nil, err
	}
	return process, nil
}

// AcceptWithGuard looks up the node type at token's node, evaluates its
// Guard, and dispatches on the verdict (spec §4.5).
func AcceptWithGuard(ctx context.Context, engine Engine, token NodeToken, process *Process) error {
	node, ok := process.NodeForToken(token)
	if !ok {
		return fatalf(nil, "node %d for token %d not present in graph", token.NodeID, token.ID)
	}

	nodeType, ok := process.Registry.Lookup(node.Type)
	if !ok {
		return &MissingNodeTypeError{TypeName: node.Type, NodeID: node.ID}
	}

	decision := nodeType.Guard(token, process)
	observeGuard(ctx, process.ID, node.ID, decision)
	switch decision.Verdict {
	case GuardAccept:
		return nodeType.Accept(ctx, engine, token, process)
	case GuardDiscard:
		if err := engine.CompleteNodeToken(ctx, process, token); err != nil {
			return err
		}
		process.RemoveNodeToken(token)
		observeNodeToken(ctx, process.ID, node.ID, node.Type, false)
		return nil
	case GuardSkip:
		return CompleteExecution(ctx, engine, token, decision.SkipLabel, process)
	default:
		return fatalf(nil, "guard for node %d returned unknown verdict %d", node.ID, decision.Verdict)
	}
}

// CompleteExecution finishes the node currently holding token and fans
// out along every output arc of its node whose label equals
// outputArcLabel, in the graph's output-arc order, strictly
// depth-first: each arc-token is fully processed (including any joins
// or subsequent fires it transitively causes) before the next output
// arc is started (spec §4.6, §5).
func CompleteExecution(ctx context.Context, engine Engine, token NodeToken, outputArcLabel string, process *Process) error {
	node, ok := process.NodeForToken(token)
	if !ok {
		return fatalf(nil, "node %d for token %d not present in graph", token.NodeID, token.ID)
	}

	if err := engine.CompleteNodeToken(ctx, process, token); err != nil {
		return err
	}
	process.RemoveNodeToken(token)
	observeNodeToken(ctx, process.ID, node.ID, node.Type, false)

	for _, arc := range process.Graph.OutputArcs(node.ID) {
		if arc.Label != outputArcLabel {
			continue
		}

		arcToken, err := engine.CreateArcToken(ctx, process, arc, token)
		if err != nil {
			return err
		}
		observeArcToken(ctx, process.ID, arc.EndNodeID, arc.Label, true)

		if err := AcceptToken(ctx, engine, arcToken, process); err != nil {
			return err
		}
	}
	return nil
}

// CompleteDefaultExecution is CompleteExecution with the empty output
// label (spec §6, §8 "Default execution").
func CompleteDefaultExecution(ctx context.Context, engine Engine, token NodeToken, process *Process) error {
	return CompleteExecution(ctx, engine, token, "", process)
}

// AcceptToken dispatches an arriving arc-token to AcceptSingle or
// AcceptJoin depending on whether its target node is a join (spec
// §4.7).
func AcceptToken(ctx context.Context, engine Engine, arcToken ArcToken, process *Process) error {
	arc, ok := process.ArcForToken(arcToken)
	if !ok {
		return fatalf(nil, "arc %d for arc-token %d not present in graph", arcToken.ArcID, arcToken.ID)
	}
	targetNode, ok := process.Graph.Node(arc.EndNodeID)
	if !ok {
		return fatalf(nil, "arc %d target node %d not present in graph", arc.ID, arc.EndNodeID)
	}

	if targetNode.IsJoin {
		return AcceptJoin(ctx, engine, arcToken, process)
	}
	return AcceptSingle(ctx, engine, arcToken, process)
}

// AcceptSingle handles a non-join target: create a node-token there
// with the single incoming arc-token, complete the arc-token, and
// invoke AcceptWithGuard (spec §4.8).
func AcceptSingle(ctx context.Context, engine Engine, arcToken ArcToken, process *Process) error {
	arc, ok := process.ArcForToken(arcToken)
	if !ok {
		return fatalf(nil, "arc %d for arc-token %d not present in graph", arcToken.ArcID, arcToken.ID)
	}
	targetNode, ok := process.Graph.Node(arc.EndNodeID)
	if !ok {
		return fatalf(nil, "arc %d target node %d not present in graph", arc.ID, arc.EndNodeID)
	}

	newToken, err := engine.CreateNodeToken(ctx, process, targetNode, []ArcToken{arcToken})
	if err != nil {
		return err
	}
	observeNodeToken(ctx, process.ID, targetNode.ID, targetNode.Type, true)

	if err := engine.CompleteArcToken(ctx, process, arcToken); err != nil {
		return err
	}
	process.RemoveArcToken(arcToken)
	observeArcToken(ctx, process.ID, targetNode.ID, arc.Label, false)

	process.AddNodeToken(newToken)

	return AcceptWithGuard(ctx, engine, newToken, process)
}

// AcceptJoin implements the join-completion predicate of spec §4.9.
//
// On arrival of arcToken at a join target: prepend it to the process's
// live arc-token list, then determine, for every input arc of the
// target sharing arcToken's arc label, whether at least one live
// arc-token exists on it (first-seen wins on ties). If every such
// input arc has a contributing token, the join fires: a new node-token
// is created from the collected inputTokens, those arc-tokens are
// removed and completed, and AcceptWithGuard runs on the new
// node-token. Otherwise the arc-token stays parked and nothing else
// changes.
func AcceptJoin(ctx context.Context, engine Engine, arcToken ArcToken, process *Process) error {
	process.AddArcToken(arcToken)

	arc, ok := process.ArcForToken(arcToken)
	if !ok {
		return fatalf(nil, "arc %d for arc-token %d not present in graph", arcToken.ArcID, arcToken.ID)
	}
	targetNode, ok := process.Graph.Node(arc.EndNodeID)
	if !ok {
		return fatalf(nil, "arc %d target node %d not present in graph", arc.ID, arc.EndNodeID)
	}

	var inputArcs []Arc
	for _, ia := range process.Graph.InputArcs(targetNode.ID) {
		if ia.Label == arc.Label {
			inputArcs = append(inputArcs, ia)
		}
	}

	allArcTokens := process.ArcTokens()
	inputTokens := make([]ArcToken, 0, len(inputArcs))
	for _, ia := range inputArcs {
		for _, at := range allArcTokens {
			if at.ArcID == ia.ID {
				inputTokens = append(inputTokens, at)
				break
			}
		}
	}

	if len(inputTokens) != len(inputArcs) {
		// Not every cohort member has arrived yet; stay parked.
		observeJoin(ctx, process.ID, targetNode.ID, false)
		return nil
	}

	newToken, err := engine.CreateNodeToken(ctx, process, targetNode, inputTokens)
	if err != nil {
		return err
	}
	observeNodeToken(ctx, process.ID, targetNode.ID, targetNode.Type, true)

	for _, it := range inputTokens {
		process.RemoveArcToken(it)
	}
	for _, it := range inputTokens {
		if err := engine.CompleteArcToken(ctx, process, it); err != nil {
			return err
		}
		observeArcToken(ctx, process.ID, targetNode.ID, arc.Label, false)
	}

	observeJoin(ctx, process.ID, targetNode.ID, true)
	process.AddNodeToken(newToken)

	return AcceptWithGuard(ctx, engine, newToken, process)
}

// IsComplete reports whether process has no live tokens (spec §4.10).
func IsComplete(process *Process) bool {
	return process.IsComplete()
}
