// Package wfgraphio loads wfgraph.Graph definitions from YAML documents,
// using gopkg.in/yaml.v3 the way the rest of the corpus serializes
// structured documents. Graph definitions are static and version
// controlled, so YAML is the natural authoring format; nothing in
// wfgraph itself depends on this package.
package wfgraphio

import (
	"fmt"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/wfgraph/sarasvati-go/wfgraph"
)

// NodeExtraFactory returns a fresh pointer to the zero value of a
// node-extra type, used as the decode target for a node's "extra"
// field. Register one per node type name via extraFactories so a
// node's NodeExtra round-trips as the concrete type its node type
// expects (e.g. wfnode.LLMExtra), not a generic map.
type NodeExtraFactory func() any

type yamlNode struct {
	ID     int       `yaml:"id"`
	Type   string    `yaml:"type"`
	Name   string    `yaml:"name"`
	Join   bool      `yaml:"join,omitempty"`
	Extra  yaml.Node `yaml:"extra,omitempty"`
	Source struct {
		WorkflowName string `yaml:"workflow,omitempty"`
		Version      string `yaml:"version,omitempty"`
		Instance     string `yaml:"instance,omitempty"`
		Depth        int    `yaml:"depth,omitempty"`
	} `yaml:"source,omitempty"`
}

type yamlArc struct {
	ID    int    `yaml:"id"`
	Label string `yaml:"label,omitempty"`
	From  int    `yaml:"from"`
	To    int    `yaml:"to"`
}

type yamlGraph struct {
	ID    int        `yaml:"id"`
	Name  string     `yaml:"name"`
	Nodes []yamlNode `yaml:"nodes"`
	Arcs  []yamlArc  `yaml:"arcs"`
}

// LoadGraphFile reads and parses the graph definition at path. See
// LoadGraph for the extraFactories contract.
func LoadGraphFile(path string, extraFactories map[string]NodeExtraFactory) (*wfgraph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wfgraphio: read %s: %w", path, err)
	}
	g, err := LoadGraph(data, extraFactories)
	if err != nil {
		return nil, fmt.Errorf("wfgraphio: %s: %w", path, err)
	}
	return g, nil
}

// LoadGraph parses a YAML graph document into a *wfgraph.Graph.
//
// Each node's optional "extra" field is decoded against the factory
// registered under the node's type name in extraFactories; a node type
// with no registered factory is decoded with NodeExtra left nil. The
// resulting Graph is validated by wfgraph.BuildGraph, so duplicate node
// ids or arcs referencing unknown nodes are reported from there.
func LoadGraph(data []byte, extraFactories map[string]NodeExtraFactory) (*wfgraph.Graph, error) {
	var doc yamlGraph
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("wfgraphio: parse yaml: %w", err)
	}

	nodes := make([]wfgraph.Node, 0, len(doc.Nodes))
	for _, yn := range doc.Nodes {
		extra, err := decodeExtra(yn, extraFactories)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, wfgraph.Node{
			ID:     yn.ID,
			Type:   yn.Type,
			Name:   yn.Name,
			IsJoin: yn.Join,
			Source: wfgraph.NodeSource{
				WorkflowName: yn.Source.WorkflowName,
				Version:      yn.Source.Version,
				Instance:     yn.Source.Instance,
				Depth:        yn.Source.Depth,
			},
			NodeExtra: extra,
		})
	}

	arcs := make([]wfgraph.Arc, 0, len(doc.Arcs))
	for _, ya := range doc.Arcs {
		arcs = append(arcs, wfgraph.Arc{
			ID:          ya.ID,
			Label:       ya.Label,
			StartNodeID: ya.From,
			EndNodeID:   ya.To,
		})
	}

	g, err := wfgraph.BuildGraph(doc.ID, doc.Name, nodes, arcs)
	if err != nil {
		return nil, fmt.Errorf("wfgraphio: build graph: %w", err)
	}
	return g, nil
}

func decodeExtra(yn yamlNode, extraFactories map[string]NodeExtraFactory) (any, error) {
	if yn.Extra.Kind == 0 {
		return nil, nil
	}
	factory, ok := extraFactories[yn.Type]
	if !ok {
		return nil, nil
	}
	target := factory()
	if err := yn.Extra.Decode(target); err != nil {
		return nil, fmt.Errorf("wfgraphio: decode extra for node %d (%s): %w", yn.ID, yn.Type, err)
	}
	return reflect.ValueOf(target).Elem().Interface(), nil
}
