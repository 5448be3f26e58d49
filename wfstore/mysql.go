package wfstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/wfgraph/sarasvati-go/wfgraph"
)

// MySQLEngine is a MySQL/MariaDB-backed wfgraph.Engine, suited to
// production deployments needing durability across process restarts
// and audit trails of token lifecycle.
//
// The DSN format follows github.com/go-sql-driver/mysql, e.g.
// "user:password@tcp(localhost:3306)/workflows?parseTime=true".
type MySQLEngine struct {
	db *sql.DB
	mu sync.Mutex
}

// NewMySQLEngine opens a connection pool against dsn, verifies it with
// a ping, and ensures the schema exists.
func NewMySQLEngine(dsn string) (*MySQLEngine, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("wfstore: open mysql: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("wfstore: ping mysql: %w", err)
	}

	e := &MySQLEngine{db: db}
	if err := e.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return e, nil
}

func (e *MySQLEngine) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS processes (
			id VARCHAR(64) PRIMARY KEY,
			graph_id BIGINT NOT NULL,
			graph_name VARCHAR(255) NOT NULL,
			user_data TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS node_tokens (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			process_id VARCHAR(64) NOT NULL,
			node_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP NULL,
			INDEX idx_node_tokens_process (process_id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS arc_tokens (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			process_id VARCHAR(64) NOT NULL,
			arc_id BIGINT NOT NULL,
			parent_node_token_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP NULL,
			INDEX idx_arc_tokens_process (process_id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS token_attrs (
			process_id VARCHAR(64) NOT NULL,
			node_token_id BIGINT NOT NULL,
			attr_key VARCHAR(255) NOT NULL,
			attr_value TEXT NOT NULL,
			PRIMARY KEY (process_id, node_token_id, attr_key)
		) ENGINE=InnoDB`,
	}
	for _, stmt := range stmts {
		if _, err := e.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("wfstore: create schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying connection pool.
func (e *MySQLEngine) Close() error { return e.db.Close() }

func (e *MySQLEngine) CreateProcess(ctx context.Context, graph *wfgraph.Graph, registry *wfgraph.Registry, userData any) (*wfgraph.Process, error) {
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

// LoadProcess resurrects a process previously created by this engine.
// See SQLiteEngine.LoadProcess for the resurrection contract; the two
// implementations share the same schema shape and semantics.
func (e *MySQLEngine) LoadProcess(ctx context.Context, id string, graph *wfgraph.Graph, registry *wfgraph.Registry) (*wfgraph.Process, error) {
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
		`SELECT node_token_id, attr_key, attr_value FROM token_attrs WHERE process_id = ?`, id)
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

func (e *MySQLEngine) CreateNodeToken(ctx context.Context, process *wfgraph.Process, node wfgraph.Node, incomingArcTokens []wfgraph.ArcToken) (wfgraph.NodeToken, error) {
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

func (e *MySQLEngine) CreateArcToken(ctx context.Context, process *wfgraph.Process, arc wfgraph.Arc, parent wfgraph.NodeToken) (wfgraph.ArcToken, error) {
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

func (e *MySQLEngine) CompleteNodeToken(ctx context.Context, _ *wfgraph.Process, token wfgraph.NodeToken) error {
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

func (e *MySQLEngine) CompleteArcToken(ctx context.Context, _ *wfgraph.Process, token wfgraph.ArcToken) error {
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
// immediately.
func (e *MySQLEngine) TransactionBoundary(context.Context, *wfgraph.Process) error { return nil }

func (e *MySQLEngine) SetTokenAttr(ctx context.Context, process *wfgraph.Process, token wfgraph.NodeToken, key, value string) error {
	process.SetAttr(token.ID, key, value)

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO token_attrs (process_id, node_token_id, attr_key, attr_value) VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE attr_value = VALUES(attr_value)`,
		process.ID, token.ID, key, value)
	if err != nil {
		return fmt.Errorf("wfstore: set token_attr: %w", err)
	}
	return nil
}

func (e *MySQLEngine) RemoveTokenAttr(ctx context.Context, process *wfgraph.Process, token wfgraph.NodeToken, key string) error {
	process.RemoveAttr(token.ID, key)

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.db.ExecContext(ctx,
		`DELETE FROM token_attrs WHERE process_id = ? AND node_token_id = ? AND attr_key = ?`,
		process.ID, token.ID, key)
	if err != nil {
		return fmt.Errorf("wfstore: remove token_attr: %w", err)
	}
	return nil
}

var _ wfgraph.Engine = (*MySQLEngine)(nil)
