package wfstore

import (
	"context"
	"testing"

	"github.com/wfgraph/sarasvati-go/wfgraph"
)

func TestMemoryEngineCreateProcessAssignsID(t *testing.T) {
	eng := NewMemoryEngine()
	g, err := wfgraph.BuildGraph(1, "g", []wfgraph.Node{{ID: 1, Type: "default", Name: "start"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	process, err := eng.CreateProcess(context.Background(), g, wfgraph.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if process.ID == "" {
		t.Fatal("expected a non-empty generated process id")
	}
	got, ok := eng.Process(process.ID)
	if !ok || got != process {
		t.Fatal("expected Process(id) to return the same process CreateProcess returned")
	}
}

func TestMemoryEngineLoadProcessReturnsSameProcess(t *testing.T) {
	eng := NewMemoryEngine()
	g, err := wfgraph.BuildGraph(1, "g", []wfgraph.Node{{ID: 1, Type: "default", Name: "start"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	process, err := eng.CreateProcess(context.Background(), g, wfgraph.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := eng.LoadProcess(context.Background(), process.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != process {
		t.Fatal("expected LoadProcess to return the same process CreateProcess returned")
	}

	if _, err := eng.LoadProcess(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryEngineCompleteUnknownTokenReturnsNotFound(t *testing.T) {
	eng := NewMemoryEngine()
	err := eng.CompleteNodeToken(context.Background(), nil, wfgraph.NodeToken{ID: 999})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	err = eng.CompleteArcToken(context.Background(), nil, wfgraph.ArcToken{ID: 999})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryEngineDrivesLinearWorkflowToCompletion(t *testing.T) {
	nodes := []wfgraph.Node{
		{ID: 1, Type: "default", Name: "start"},
		{ID: 2, Type: "default", Name: "end"},
	}
	arcs := []wfgraph.Arc{{ID: 1, Label: "", StartNodeID: 1, EndNodeID: 2}}
	g, err := wfgraph.BuildGraph(1, "linear", nodes, arcs)
	if err != nil {
		t.Fatal(err)
	}

	eng := NewMemoryEngine()
	process, err := wfgraph.Start(context.Background(), eng, wfgraph.NewRegistry(), g, "payload")
	if err != nil {
		t.Fatal(err)
	}
	if !wfgraph.IsComplete(process) {
		t.Fatal("expected linear workflow to complete")
	}
	if process.UserData != "payload" {
		t.Fatalf("expected UserData to round-trip, got %v", process.UserData)
	}
}

// buildJoinAttrGraph wires two branches through a join: each branch
// node tags its token with a distinct attribute key plus a shared
// "source" key, and the join node captures the resulting node-token's
// attributes before completing normally.
func buildJoinAttrGraph(t *testing.T, captured *wfgraph.NodeToken) (*wfgraph.Graph, *wfgraph.Registry) {
	t.Helper()
	nodes := []wfgraph.Node{
		{ID: 1, Type: "default", Name: "start"},
		{ID: 2, Type: "tag", Name: "left", NodeExtra: "left"},
		{ID: 3, Type: "tag", Name: "right", NodeExtra: "right"},
		{ID: 4, Type: "capture", Name: "join", IsJoin: true},
	}
	arcs := []wfgraph.Arc{
		{ID: 1, Label: "", StartNodeID: 1, EndNodeID: 2},
		{ID: 2, Label: "", StartNodeID: 1, EndNodeID: 3},
		{ID: 3, Label: "", StartNodeID: 2, EndNodeID: 4},
		{ID: 4, Label: "", StartNodeID: 3, EndNodeID: 4},
	}
	g, err := wfgraph.BuildGraph(1, "join-attrs", nodes, arcs)
	if err != nil {
		t.Fatal(err)
	}

	reg := wfgraph.NewRegistry()
	reg.Register("tag", wfgraph.NodeType{
		Guard: wfgraph.DefaultGuard,
		Accept: func(ctx context.Context, engine wfgraph.Engine, token wfgraph.NodeToken, process *wfgraph.Process) error {
			node, _ := process.NodeForToken(token)
			branch := node.NodeExtra.(string)
			if err := engine.SetTokenAttr(ctx, process, token, "source", branch); err != nil {
				return err
			}
			if err := engine.SetTokenAttr(ctx, process, token, branch+"_only", branch+"-value"); err != nil {
				return err
			}
			return wfgraph.CompleteDefaultExecution(ctx, engine, token, process)
		},
	})
	reg.Register("capture", wfgraph.NodeType{
		Guard: wfgraph.DefaultGuard,
		Accept: func(ctx context.Context, engine wfgraph.Engine, token wfgraph.NodeToken, process *wfgraph.Process) error {
			*captured = token
			return wfgraph.CompleteDefaultExecution(ctx, engine, token, process)
		},
	})
	return g, reg
}

func TestMemoryEngineCreateNodeTokenPropagatesJoinAttrs(t *testing.T) {
	var captured wfgraph.NodeToken
	g, reg := buildJoinAttrGraph(t, &captured)
	eng := NewMemoryEngine()

	process, err := wfgraph.Start(context.Background(), eng, reg, g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !wfgraph.IsComplete(process) {
		t.Fatal("expected the workflow to complete")
	}
	if captured.ID == 0 {
		t.Fatal("expected the join node's capture accept to run")
	}

	if v, ok := process.AttrValue(captured, "left_only"); !ok || v != "left-value" {
		t.Fatalf("expected the join token to inherit left's attribute, got %q ok=%v", v, ok)
	}
	if v, ok := process.AttrValue(captured, "right_only"); !ok || v != "right-value" {
		t.Fatalf("expected the join token to inherit right's attribute, got %q ok=%v", v, ok)
	}
	if v, ok := process.AttrValue(captured, "source"); !ok || v != "right" {
		t.Fatalf("expected right to win the shared key as the later parent, got %q ok=%v", v, ok)
	}
}

func TestMemoryEngineSetAndRemoveTokenAttr(t *testing.T) {
	eng := NewMemoryEngine()
	g, err := wfgraph.BuildGraph(1, "g", []wfgraph.Node{{ID: 1, Type: "default", Name: "start"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	process, err := eng.CreateProcess(context.Background(), g, wfgraph.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	tok := wfgraph.NodeToken{ID: 1, NodeID: 1}

	if err := eng.SetTokenAttr(context.Background(), process, tok, "k", "v"); err != nil {
		t.Fatal(err)
	}
	if v, ok := process.AttrValue(tok, "k"); !ok || v != "v" {
		t.Fatalf("expected attr k=v, got %q ok=%v", v, ok)
	}
	if err := eng.RemoveTokenAttr(context.Background(), process, tok, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok := process.AttrValue(tok, "k"); ok {
		t.Fatal("expected attr to be removed")
	}
}
