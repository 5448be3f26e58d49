package wfnode

import (
	"context"
	"fmt"

	"github.com/wfgraph/sarasvati-go/wfgraph"
)

// HumanTypeName is the conventional registry key for NewHumanNodeType.
const HumanTypeName = "human"

// NewHumanNodeType returns a node type whose accept action parks the
// node-token: it neither completes nor fans out. The workflow stalls
// at this node until external code calls Resume with the outcome a
// human operator chose, modeling a task queue entry.
func NewHumanNodeType() wfgraph.NodeType {
	return wfgraph.NodeType{
		Guard: wfgraph.DefaultGuard,
		Accept: func(ctx context.Context, engine wfgraph.Engine, token wfgraph.NodeToken, process *wfgraph.Process) error {
			return nil
		},
	}
}

// Resume completes a parked human-task node-token along outcome,
// firing whichever output arcs carry that label. Callers are
// responsible for locating token (e.g. by scanning process.NodeTokens()
// for nodes of type HumanTypeName) and for any authorization checks
// before calling this.
func Resume(ctx context.Context, engine wfgraph.Engine, process *wfgraph.Process, token wfgraph.NodeToken, outcome string) error {
	if _, ok := process.GetNodeTokenForID(token.ID); !ok {
		return fmt.Errorf("wfnode: human task token %d is not parked in process %s", token.ID, process.ID)
	}
	return wfgraph.CompleteExecution(ctx, engine, token, outcome, process)
}
