package wfgraph

// NodeToken is a token parked at a node: executing, or awaiting
// external input. Identity is the ID field; two NodeTokens are equal
// iff their ids are equal (spec §3 "Equality").
type NodeToken struct {
	ID     int
	NodeID int
}

// Equal reports whether t and other refer to the same node-token.
func (t NodeToken) Equal(other NodeToken) bool {
	return t.ID == other.ID
}

// ArcToken is a token in transit along an arc, carrying a back
// reference to the node-token that produced it.
type ArcToken struct {
	ID       int
	ArcID    int
	ParentID int // id of the parent NodeToken that created this arc-token
}

// Equal reports whether t and other refer to the same arc-token.
func (t ArcToken) Equal(other ArcToken) bool {
	return t.ID == other.ID
}

// TokenAttr is a (key, value) pair associated with a node-token.
// Attributes are per node-token; setting a key replaces its prior
// value (spec §3 "TokenAttr").
type TokenAttr struct {
	Key   string
	Value string
}
