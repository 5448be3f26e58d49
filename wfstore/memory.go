package wfstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wfgraph/sarasvati-go/wfgraph"
)

// tokenRecord is the audit-trail entry MemoryEngine keeps for one
// node-token or arc-token: when it was created, and when (if ever) it
// was completed.
type tokenRecord struct {
	processID   string
	createdAt   time.Time
	completedAt time.Time
	completed   bool
}

// MemoryEngine is an in-process, non-durable wfgraph.Engine backed by
// maps guarded by a single mutex. It is the default choice for tests
// and for workflows that don't need to survive a process restart.
type MemoryEngine struct {
	mu sync.Mutex

	nextNodeTokenID atomic.Int64
	nextArcTokenID  atomic.Int64

	processes  map[string]*wfgraph.Process
	nodeTokens map[int]*tokenRecord
	arcTokens  map[int]*tokenRecord
}

// NewMemoryEngine creates an empty MemoryEngine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		processes:  make(map[string]*wfgraph.Process),
		nodeTokens: make(map[int]*tokenRecord),
		arcTokens:  make(map[int]*tokenRecord),
	}
}

// CreateProcess allocates a fresh random process id and records the
// process.
func (e *MemoryEngine) CreateProcess(_ context.Context, graph *wfgraph.Graph, registry *wfgraph.Registry, userData any) (*wfgraph.Process, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	process := wfgraph.NewProcess(uuid.NewString(), graph, registry, userData)
	e.processes[process.ID] = process
	return process, nil
}

// Process returns the process previously created under id, if still
// tracked by this engine.
func (e *MemoryEngine) Process(id string) (*wfgraph.Process, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.processes[id]
	return p, ok
}

// LoadProcess resurrects a process by id. MemoryEngine keeps the live
// *wfgraph.Process around for as long as the engine is alive, so this
// is equivalent to Process; it exists so MemoryEngine satisfies the
// same resurrection contract the SQL-backed engines implement for
// real, and can stand in for them in tests.
func (e *MemoryEngine) LoadProcess(_ context.Context, id string) (*wfgraph.Process, error) {
	p, ok := e.Process(id)
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (e *MemoryEngine) CreateNodeToken(_ context.Context, process *wfgraph.Process, node wfgraph.Node, incomingArcTokens []wfgraph.ArcToken) (wfgraph.NodeToken, error) {
	id := int(e.nextNodeTokenID.Add(1))
	e.mu.Lock()
	e.nodeTokens[id] = &tokenRecord{processID: process.ID, createdAt: time.Now()}
	e.mu.Unlock()
	token := wfgraph.NodeToken{ID: id, NodeID: node.ID}
	copyParentAttrs(process, token, incomingArcTokens)
	return token, nil
}

// copyParentAttrs implements the join attribute-propagation policy
// (open question (b)): the new node-token inherits every attribute of
// each arc-token's parent node-token, later parents in
// incomingArcTokens order overwriting earlier ones on key collision.
func copyParentAttrs(process *wfgraph.Process, token wfgraph.NodeToken, incomingArcTokens []wfgraph.ArcToken) {
	for _, parent := range incomingArcTokens {
		for _, attr := range process.Attrs(parent.ParentID) {
			process.SetAttr(token.ID, attr.Key, attr.Value)
		}
	}
}

func (e *MemoryEngine) CreateArcToken(_ context.Context, process *wfgraph.Process, arc wfgraph.Arc, parent wfgraph.NodeToken) (wfgraph.ArcToken, error) {
	id := int(e.nextArcTokenID.Add(1))
	e.mu.Lock()
	e.arcTokens[id] = &tokenRecord{processID: process.ID, createdAt: time.Now()}
	e.mu.Unlock()
	return wfgraph.ArcToken{ID: id, ArcID: arc.ID, ParentID: parent.ID}, nil
}

func (e *MemoryEngine) CompleteNodeToken(_ context.Context, _ *wfgraph.Process, token wfgraph.NodeToken) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.nodeTokens[token.ID]
	if !ok {
		return ErrNotFound
	}
	rec.completed = true
	rec.completedAt = time.Now()
	return nil
}

func (e *MemoryEngine) CompleteArcToken(_ context.Context, _ *wfgraph.Process, token wfgraph.ArcToken) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.arcTokens[token.ID]
	if !ok {
		return ErrNotFound
	}
	rec.completed = true
	rec.completedAt = time.Now()
	return nil
}

// TransactionBoundary is a no-op: MemoryEngine has no buffered writes
// to flush.
func (e *MemoryEngine) TransactionBoundary(context.Context, *wfgraph.Process) error { return nil }

func (e *MemoryEngine) SetTokenAttr(_ context.Context, process *wfgraph.Process, token wfgraph.NodeToken, key, value string) error {
	process.SetAttr(token.ID, key, value)
	return nil
}

func (e *MemoryEngine) RemoveTokenAttr(_ context.Context, process *wfgraph.Process, token wfgraph.NodeToken, key string) error {
	process.RemoveAttr(token.ID, key)
	return nil
}

var _ wfgraph.Engine = (*MemoryEngine)(nil)
