package wfgraph

import "testing"

func TestBuildGraphIndexesArcs(t *testing.T) {
	nodes := []Node{
		{ID: 1, Type: "default", Name: "start"},
		{ID: 2, Type: "default", Name: "end"},
	}
	arcs := []Arc{
		{ID: 1, Label: "", StartNodeID: 1, EndNodeID: 2},
	}

	g, err := BuildGraph(1, "linear", nodes, arcs)
	if err != nil {
		t.Fatalf("BuildGraph returned error: %v", err)
	}

	out := g.OutputArcs(1)
	if len(out) != 1 || out[0].ID != 1 {
		t.Fatalf("expected node 1 to have one output arc, got %+v", out)
	}
	in := g.InputArcs(2)
	if len(in) != 1 || in[0].ID != 1 {
		t.Fatalf("expected node 2 to have one input arc, got %+v", in)
	}
}

func TestBuildGraphDuplicateNodeID(t *testing.T) {
	nodes := []Node{
		{ID: 1, Type: "default", Name: "start"},
		{ID: 1, Type: "default", Name: "also-one"},
	}
	if _, err := BuildGraph(1, "dup", nodes, nil); err == nil {
		t.Fatal("expected error for duplicate node id")
	}
}

func TestBuildGraphUnknownArcEndpoint(t *testing.T) {
	nodes := []Node{{ID: 1, Type: "default", Name: "start"}}
	arcs := []Arc{{ID: 1, StartNodeID: 1, EndNodeID: 99}}
	if _, err := BuildGraph(1, "bad", nodes, arcs); err == nil {
		t.Fatal("expected error for arc referencing unknown node")
	}
}

func TestStartNodePredicate(t *testing.T) {
	nodes := []Node{
		{ID: 1, Type: "default", Name: "start", Source: NodeSource{Depth: 0}},
		{ID: 2, Type: "default", Name: "end"},
	}
	g, err := BuildGraph(1, "g", nodes, nil)
	if err != nil {
		t.Fatal(err)
	}
	start, err := g.StartNode()
	if err != nil {
		t.Fatalf("StartNode returned error: %v", err)
	}
	if start.ID != 1 {
		t.Fatalf("expected start node id 1, got %d", start.ID)
	}
}

func TestStartNodeMissing(t *testing.T) {
	nodes := []Node{{ID: 1, Type: "default", Name: "not-start"}}
	g, err := BuildGraph(1, "g", nodes, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.StartNode(); err != ErrNoStartNode {
		t.Fatalf("expected ErrNoStartNode, got %v", err)
	}
}

func TestStartNodeMultiple(t *testing.T) {
	nodes := []Node{
		{ID: 1, Type: "default", Name: "start"},
		{ID: 2, Type: "default", Name: "start"},
	}
	g, err := BuildGraph(1, "g", nodes, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.StartNode(); err != ErrMultipleStartNodes {
		t.Fatalf("expected ErrMultipleStartNodes, got %v", err)
	}
}

func TestStartNodeRequiresDepthZero(t *testing.T) {
	nodes := []Node{
		{ID: 1, Type: "default", Name: "start", Source: NodeSource{Depth: 1}},
		{ID: 2, Type: "default", Name: "end"},
	}
	g, err := BuildGraph(1, "g", nodes, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.StartNode(); err != ErrNoStartNode {
		t.Fatalf("expected ErrNoStartNode for depth!=0 start, got %v", err)
	}
}
