package wfstore

import (
	"context"
	"os"
	"testing"

	"github.com/wfgraph/sarasvati-go/wfgraph"
)

// TestMySQLEngineIntegration exercises MySQLEngine against a real
// MySQL/MariaDB server.
//
// Prerequisites:
//   - a MySQL server reachable from this process
//   - TEST_MYSQL_DSN set to a DSN the go-sql-driver/mysql driver accepts,
//     e.g. "user:password@tcp(localhost:3306)/wfgraph_test?parseTime=true"
//
// Run it with:
//
//	TEST_MYSQL_DSN="user:password@tcp(localhost:3306)/wfgraph_test?parseTime=true" \
//		go test -run TestMySQLEngineIntegration ./wfstore
func TestMySQLEngineIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("set TEST_MYSQL_DSN to run the MySQL integration test")
	}

	eng, err := NewMySQLEngine(dsn)
	if err != nil {
		t.Fatalf("NewMySQLEngine: %v", err)
	}
	defer func() { _ = eng.Close() }()

	nodes := []wfgraph.Node{
		{ID: 1, Type: "default", Name: "start"},
		{ID: 2, Type: "default", Name: "end"},
	}
	arcs := []wfgraph.Arc{{ID: 1, Label: "", StartNodeID: 1, EndNodeID: 2}}
	g, err := wfgraph.BuildGraph(1, "linear", nodes, arcs)
	if err != nil {
		t.Fatal(err)
	}

	process, err := wfgraph.Start(context.Background(), eng, wfgraph.NewRegistry(), g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !wfgraph.IsComplete(process) {
		t.Fatal("expected linear workflow to complete against a real MySQL backend")
	}

	if err := eng.SetTokenAttr(context.Background(), process, wfgraph.NodeToken{ID: 1}, "k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := eng.RemoveTokenAttr(context.Background(), process, wfgraph.NodeToken{ID: 1}, "k"); err != nil {
		t.Fatal(err)
	}

	if _, err := eng.LoadProcess(context.Background(), process.ID, g, wfgraph.NewRegistry()); err != nil {
		t.Fatalf("LoadProcess: %v", err)
	}
	if _, err := eng.LoadProcess(context.Background(), "does-not-exist", g, wfgraph.NewRegistry()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestMySQLEngineIntegrationJoinPropagatesAttrs exercises the same
// prerequisites as TestMySQLEngineIntegration; see its doc comment for
// how to run it.
func TestMySQLEngineIntegrationJoinPropagatesAttrs(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("set TEST_MYSQL_DSN to run the MySQL integration test")
	}

	eng, err := NewMySQLEngine(dsn)
	if err != nil {
		t.Fatalf("NewMySQLEngine: %v", err)
	}
	defer func() { _ = eng.Close() }()

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

	var captured wfgraph.NodeToken
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
			captured = token
			return wfgraph.CompleteDefaultExecution(ctx, engine, token, process)
		},
	})

	process, err := wfgraph.Start(context.Background(), eng, reg, g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !wfgraph.IsComplete(process) {
		t.Fatal("expected the workflow to complete")
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
