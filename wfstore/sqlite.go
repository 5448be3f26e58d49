package wfstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/wfgraph/sarasvati-go/wfgraph"
)

// SQLiteEngine is a SQLite-backed wfgraph.Engine. It is a single-file,
// zero-setup durable store suited to development, testing, and
// single-process deployments.
//
// Schema:
//   - processes: one row per process, carrying the owning graph id
//   - node_tokens: lifecycle rows for every node-token ever created
//   - arc_tokens: lifecycle rows for every arc-token ever created
//   - token_attrs: per-node-token key/value attributes
type SQLiteEngine struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteEngine opens (creating if absent) a SQLite database at path
// and ensures its schema exists. Pass ":memory:" for an ephemeral
// database scoped to the returned *sql.DB's single connection.
func NewSQLiteEngine(path string) (*SQLiteEngine, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("wfstore: open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite allows exactly one writer at a time
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("wfstore: %s: %w", pragma, err)
		}
	}

	e := &SQLiteEngine{db: db}
	if err := e.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return e, nil
}

func (e *SQLiteEngine) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS processes (
			id TEXT PRIMARY KEY,
			graph_id INTEGER NOT NULL,
			graph_name TEXT NOT NULL,
			user_data TEXT NOT NULL DEFAULT 'null',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS node_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			process_id TEXT NOT NULL REFERENCES processes(id),
			node_id INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS arc_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			process_id TEXT NOT NULL REFERENCES processes(id),
			arc_id INTEGER NOT NULL,
			parent_node_token_id INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS token_attrs (
			process_id TEXT NOT NULL REFERENCES processes(id),
			node_token_id INTEGER NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (process_id, node_token_id, key)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := e.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("wfstore: create schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (e *SQLiteEngine) Close() error { return e.db.Close() }

func (e *SQLiteEngine) CreateProcess(ctx context.Context, graph *wfgraph.Graph, registry *wfgraph.Registry, userData any) (*wfgraph.Process, error) {
	process := wfgraph.NewProcess(uuid.NewString(), graph, registry, userData)

	userDataJSON, err := json.Marshal(userData)
	if err != nil {
		return nil, fmt.Errorf("wfstore: marshal user data: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.db.ExecContext(ctx,
		`INSERT INTO processes (id, graph_id, graph_name, user_data) VALUES (?, ?, ?, ?)`,
		process.ID, graph.ID(), graph.Name(), string(userDataJSON))
	if err != nil {
		return nil, fmt.Errorf("wfstore: insert process: %w", err)
	}
	return process, nil
}

// LoadProcess resurrects a process previously created by this engine:
// its user payload, live node-tokens, live arc-tokens, and their
// attributes, bound to the graph and registry the caller supplies (the
// schema persists only the originating graph's id and name, not the
// graph definition itself).
func (e *SQLiteEngine) LoadProcess(ctx context.Context, id string, graph *wfgraph.Graph, registry *wfgraph.Registry) (*wfgraph.Process, error) {
	var userDataJSON string
	err := e.db.QueryRowContext(ctx, `SELECT user_data FROM processes WHERE id = ?`, id).Scan(&userDataJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("wfstore: select process: %w", err)
	}

	var userData any
	if err := json.Unmarshal([]byte(userDataJSON), &userData); err != nil {
		return nil, fmt.Errorf("wfstore: unmarshal user data: %w", err)
	}

	process := wfgraph.NewProcess(id, graph, registry, userData)

	nodeRows, err := e.db.QueryContext(ctx,
		`SELECT id, node_id FROM node_tokens WHERE process_id = ? AND completed_at IS NULL`, id)
	if err != nil {
		return nil, fmt.Errorf("wfstore: select node_tokens: %w", err)
	}
	defer nodeRows.Close()
	for nodeRows.Next() {
		var tok wfgraph.NodeToken
		if err := nodeRows.Scan(&tok.ID, &tok.NodeID); err != nil {
			return nil, fmt.Errorf("wfstore: scan node_token: %w", err)
		}
		process.AddNodeToken(tok)
	}
	if err := nodeRows.Err(); err != nil {
		return nil, fmt.Errorf("wfstore: iterate node_tokens: %w", err)
	}

	arcRows, err := e.db.QueryContext(ctx,
		`SELECT id, arc_id, parent_node_token_id FROM arc_tokens WHERE process_id = ? AND completed_at IS NULL`, id)
	if err != nil {
		return nil, fmt.Errorf("wfstore: select arc_tokens: %w", err)
	}
	defer arcRows.Close()
	for arcRows.Next() {
		var tok wfgraph.ArcToken
		if err := arcRows.Scan(&tok.ID, &tok.ArcID, &tok.ParentID); err != nil {
			return nil, fmt.Errorf("wfstore: scan arc_token: %w", err)
		}
		process.AddArcToken(tok)
	}
	if err := arcRows.Err(); err != nil {
		return nil, fmt.Errorf("wfstore: iterate arc_tokens: %w", err)
	}

	attrRows, err := e.db.QueryContext(ctx,
		`SELECT node_token_id, key, value FROM token_attrs WHERE process_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("wfstore: select token_attrs: %w", err)
	}
	defer attrRows.Close()
	byToken := make(map[int][]wfgraph.TokenAttr)
	for attrRows.Next() {
		var nodeTokenID int
		var attr wfgraph.TokenAttr
		if err := attrRows.Scan(&nodeTokenID, &attr.Key, &attr.Value); err != nil {
			return nil, fmt.Errorf("wfstore: scan token_attr: %w", err)
		}
		byToken[nodeTokenID] = append(byToken[nodeTokenID], attr)
	}
	if err := attrRows.Err(); err != nil {
		return nil, fmt.Errorf("wfstore: iterate token_attrs: %w", err)
	}
	for nodeTokenID, attrs := range byToken {
		process.ReplaceTokenAttrs(nodeTokenID, attrs)
	}

	return process, nil
}

func (e *SQLiteEngine) CreateNodeToken(ctx context.Context, process *wfgraph.Process, node wfgraph.Node, incomingArcTokens []wfgraph.ArcToken) (wfgraph.NodeToken, error) {
	e.mu.Lock()
	res, err := e.db.ExecContext(ctx,
		`INSERT INTO node_tokens (process_id, node_id) VALUES (?, ?)`,
		process.ID, node.ID)
	if err != nil {
		e.mu.Unlock()
		return wfgraph.NodeToken{}, fmt.Errorf("wfstore: insert node_token: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		e.mu.Unlock()
		return wfgraph.NodeToken{}, fmt.Errorf("wfstore: last insert id: %w", err)
	}
	e.mu.Unlock()

	token := wfgraph.NodeToken{ID: int(id), NodeID: node.ID}
	// Join attribute-propagation policy (open question (b)): the new
	// node-token inherits every attribute of each arc-token's parent
	// node-token, later parents in incomingArcTokens order overwriting
	// earlier ones on key collision.
	for _, parent := range incomingArcTokens {
		for _, attr := range process.Attrs(parent.ParentID) {
			if err := e.SetTokenAttr(ctx, process, token, attr.Key, attr.Value); err != nil {
				return wfgraph.NodeToken{}, err
			}
		}
	}
	return token, nil
}

func (e *SQLiteEngine) CreateArcToken(ctx context.Context, process *wfgraph.Process, arc wfgraph.Arc, parent wfgraph.NodeToken) (wfgraph.ArcToken, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res, err := e.db.ExecContext(ctx,
		`INSERT INTO arc_tokens (process_id, arc_id, parent_node_token_id) VALUES (?, ?, ?)`,
		process.ID, arc.ID, parent.ID)
	if err != nil {
		return wfgraph.ArcToken{}, fmt.Errorf("wfstore: insert arc_token: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wfgraph.ArcToken{}, fmt.Errorf("wfstore: last insert id: %w", err)
	}
	return wfgraph.ArcToken{ID: int(id), ArcID: arc.ID, ParentID: parent.ID}, nil
}

func (e *SQLiteEngine) CompleteNodeToken(ctx context.Context, _ *wfgraph.Process, token wfgraph.NodeToken) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	res, err := e.db.ExecContext(ctx,
		`UPDATE node_tokens SET completed_at = CURRENT_TIMESTAMP WHERE id = ? AND completed_at IS NULL`,
		token.ID)
	if err != nil {
		return fmt.Errorf("wfstore: complete node_token: %w", err)
	}
	return checkRowsAffected(res)
}

func (e *SQLiteEngine) CompleteArcToken(ctx context.Context, _ *wfgraph.Process, token wfgraph.ArcToken) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	res, err := e.db.ExecContext(ctx,
		`UPDATE arc_tokens SET completed_at = CURRENT_TIMESTAMP WHERE id = ? AND completed_at IS NULL`,
		token.ID)
	if err != nil {
		return fmt.Errorf("wfstore: complete arc_token: %w", err)
	}
	return checkRowsAffected(res)
}

// TransactionBoundary is a no-op: every write above already commits
// immediately. It exists so node-type code can call it uniformly
// across backends that do buffer writes.
func (e *SQLiteEngine) TransactionBoundary(context.Context, *wfgraph.Process) error { return nil }

func (e *SQLiteEngine) SetTokenAttr(ctx context.Context, process *wfgraph.Process, token wfgraph.NodeToken, key, value string) error {
	process.SetAttr(token.ID, key, value)

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO token_attrs (process_id, node_token_id, key, value) VALUES (?, ?, ?, ?)
		 ON CONFLICT(process_id, node_token_id, key) DO UPDATE SET value = excluded.value`,
		process.ID, token.ID, key, value)
	if err != nil {
		return fmt.Errorf("wfstore: set token_attr: %w", err)
	}
	return nil
}

func (e *SQLiteEngine) RemoveTokenAttr(ctx context.Context, process *wfgraph.Process, token wfgraph.NodeToken, key string) error {
	process.RemoveAttr(token.ID, key)

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.db.ExecContext(ctx,
		`DELETE FROM token_attrs WHERE process_id = ? AND node_token_id = ? AND key = ?`,
		process.ID, token.ID, key)
	if err != nil {
		return fmt.Errorf("wfstore: remove token_attr: %w", err)
	}
	return nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("wfstore: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ wfgraph.Engine = (*SQLiteEngine)(nil)
