package wfgraph

import "testing"

func TestNodeTokenEqual(t *testing.T) {
	a := NodeToken{ID: 1, NodeID: 5}
	b := NodeToken{ID: 1, NodeID: 9} // different node, same identity
	c := NodeToken{ID: 2, NodeID: 5}

	if !a.Equal(b) {
		t.Fatal("expected node-tokens with equal ids to be Equal regardless of NodeID")
	}
	if a.Equal(c) {
		t.Fatal("expected node-tokens with different ids to not be Equal")
	}
}

func TestArcTokenEqual(t *testing.T) {
	a := ArcToken{ID: 1, ArcID: 5, ParentID: 1}
	b := ArcToken{ID: 1, ArcID: 9, ParentID: 2}
	c := ArcToken{ID: 2, ArcID: 5, ParentID: 1}

	if !a.Equal(b) {
		t.Fatal("expected arc-tokens with equal ids to be Equal regardless of ArcID/ParentID")
	}
	if a.Equal(c) {
		t.Fatal("expected arc-tokens with different ids to not be Equal")
	}
}
