package wfgraph

// Process is the mutable state of one running workflow instance: its
// live tokens, their attributes, the user payload, and read-only
// references to the Graph and node-type Registry it is interpreting
// (spec §3 "Process").
//
// A Process is exclusively owned and mutated by the interpreter
// operations in this package, acting on behalf of a single backend
// call at a time; concurrent access to the same Process must be
// serialized by the caller (spec §5).
type Process struct {
	ID       string
	Graph    *Graph
	Registry *Registry
	UserData any

	nodeTokens []NodeToken
	arcTokens  []ArcToken
	attrs      map[int][]TokenAttr // node-token id -> attributes
}

// NewProcess constructs an empty Process bound to the given graph and
// registry. Backends call this from CreateProcess.
func NewProcess(id string, g *Graph, reg *Registry, userData any) *Process {
	return &Process{
		ID:       id,
		Graph:    g,
		Registry: reg,
		UserData: userData,
		attrs:    make(map[int][]TokenAttr),
	}
}

// NodeTokens returns the live node-tokens, in current list order. The
// slice is a copy; mutating it does not affect the Process.
func (p *Process) NodeTokens() []NodeToken {
	out := make([]NodeToken, len(p.nodeTokens))
	copy(out, p.nodeTokens)
	return out
}

// ArcTokens returns the live arc-tokens, in current list order. The
// slice is a copy; mutating it does not affect the Process.
func (p *Process) ArcTokens() []ArcToken {
	out := make([]ArcToken, len(p.arcTokens))
	copy(out, p.arcTokens)
	return out
}

// AddNodeToken prepends t to the live node-token list (spec §4.8,
// §4.9: new node-tokens are prepended).
func (p *Process) AddNodeToken(t NodeToken) {
	p.nodeTokens = append([]NodeToken{t}, p.nodeTokens...)
}

// RemoveNodeToken removes the first node-token equal to t, by identity
// (spec §3 "Equality", §9 open question (a)).
func (p *Process) RemoveNodeToken(t NodeToken) {
	for i, nt := range p.nodeTokens {
		if nt.Equal(t) {
			p.nodeTokens = append(p.nodeTokens[:i], p.nodeTokens[i+1:]...)
			return
		}
	}
}

// AddArcToken prepends t to the live arc-token list (spec §4.9 step 1).
func (p *Process) AddArcToken(t ArcToken) {
	p.arcTokens = append([]ArcToken{t}, p.arcTokens...)
}

// RemoveArcToken removes the first arc-token equal to t, by identity.
func (p *Process) RemoveArcToken(t ArcToken) {
	for i, at := range p.arcTokens {
		if at.Equal(t) {
			p.arcTokens = append(p.arcTokens[:i], p.arcTokens[i+1:]...)
			return
		}
	}
}

// GetNodeTokenForID returns the live node-token with the given id.
func (p *Process) GetNodeTokenForID(id int) (NodeToken, bool) {
	for _, nt := range p.nodeTokens {
		if nt.ID == id {
			return nt, true
		}
	}
	return NodeToken{}, false
}

// NodeForToken resolves the Node a node-token currently sits at.
func (p *Process) NodeForToken(t NodeToken) (Node, bool) {
	return p.Graph.Node(t.NodeID)
}

// ArcForToken resolves the Arc an arc-token is traversing.
func (p *Process) ArcForToken(t ArcToken) (Arc, bool) {
	for _, n := range p.Graph.Nodes() {
		for _, a := range p.Graph.OutputArcs(n.ID) {
			if a.ID == t.ArcID {
				return a, true
			}
		}
	}
	return Arc{}, false
}

// ReplaceTokenAttrs overwrites the full attribute set for a node-token
// id. Backends use this when materializing a node-token from persisted
// state.
func (p *Process) ReplaceTokenAttrs(nodeTokenID int, attrs []TokenAttr) {
	cp := make([]TokenAttr, len(attrs))
	copy(cp, attrs)
	p.attrs[nodeTokenID] = cp
}

// SetAttr sets key to value for the given node-token id, replacing any
// prior value for that key (spec §3 "TokenAttr").
func (p *Process) SetAttr(nodeTokenID int, key, value string) {
	list := p.attrs[nodeTokenID]
	for i, a := range list {
		if a.Key == key {
			list[i].Value = value
			return
		}
	}
	p.attrs[nodeTokenID] = append(list, TokenAttr{Key: key, Value: value})
}

// RemoveAttr removes key for the given node-token id, if present.
func (p *Process) RemoveAttr(nodeTokenID int, key string) {
	list := p.attrs[nodeTokenID]
	for i, a := range list {
		if a.Key == key {
			p.attrs[nodeTokenID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// AttrValue returns the value of key for the given node-token, and
// whether it was present (spec §8 invariant 5).
func (p *Process) AttrValue(t NodeToken, key string) (string, bool) {
	for _, a := range p.attrs[t.ID] {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns a copy of every attribute recorded for a node-token id.
func (p *Process) Attrs(nodeTokenID int) []TokenAttr {
	list := p.attrs[nodeTokenID]
	out := make([]TokenAttr, len(list))
	copy(out, list)
	return out
}

// IsComplete reports whether both live token lists are empty (spec
// §4.10). There is no other terminal condition.
func (p *Process) IsComplete() bool {
	return len(p.nodeTokens) == 0 && len(p.arcTokens) == 0
}
