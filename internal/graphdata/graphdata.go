// Package graphdata canonicalizes heterogeneous Cypher result shapes (paths,
// nodes, relationships, lists of any of those) into a single node/edge
// representation suitable for visualization.
package graphdata

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Node is the canonical representation of one graph node.
type Node struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Group      string         `json:"group"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Edge is the canonical representation of one graph relationship.
// ID is derived as from + "-" + to + "-" + type so that the same
// relationship seen through multiple result columns or path segments
// de-duplicates to a single edge.
type Edge struct {
	ID         string         `json:"id"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// GraphData holds the canonical node/edge sets assembled from query results.
// Nodes are unique by ID; edges are unique by ID.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	nodeIndex map[string]int
	edgeIndex map[string]int
}

// New creates an empty GraphData.
func New() *GraphData {
	return &GraphData{
		Nodes:     []Node{},
		Edges:     []Edge{},
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[string]int),
	}
}

// FromRecords assembles GraphData by visiting every column of every record,
// recursively unpacking composite entities. Scalar columns are ignored.
func FromRecords(records []map[string]any) *GraphData {
	g := New()
	for _, record := range records {
		for _, value := range record {
			g.addValue(value)
		}
	}
	return g
}

// Merge adds every node and edge of other into g, preserving id uniqueness.
// The receiver is returned for chaining; other is not modified.
func (g *GraphData) Merge(other *GraphData) *GraphData {
	if other == nil {
		return g
	}
	for _, n := range other.Nodes {
		g.addNode(n)
	}
	for _, e := range other.Edges {
		g.addEdge(e)
	}
	return g
}

// NodeCount returns the number of unique nodes.
func (g *GraphData) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of unique edges.
func (g *GraphData) EdgeCount() int { return len(g.Edges) }

// IsEmpty reports whether the graph has no nodes and no edges.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0 && len(g.Edges) == 0
}

// addValue dispatches on the runtime shape of one result-column value.
func (g *GraphData) addValue(value any) {
	switch v := value.(type) {
	case dbtype.Node:
		g.addDBNode(v)
	case dbtype.Relationship:
		g.addDBRelationship(v)
	case dbtype.Path:
		for _, n := range v.Nodes {
			g.addDBNode(n)
		}
		for _, r := range v.Relationships {
			g.addDBRelationship(r)
		}
	case []any:
		for _, item := range v {
			g.addValue(item)
		}
	}
	// Scalars carry no graph structure and are skipped.
}

func (g *GraphData) addDBNode(n dbtype.Node) {
	group := ""
	if len(n.Labels) > 0 {
		group = n.Labels[0]
	}

	g.addNode(Node{
		ID:         n.GetElementId(),
		Label:      displayName(n.Props),
		Group:      group,
		Properties: n.Props,
	})
}

func (g *GraphData) addDBRelationship(r dbtype.Relationship) {
	from := r.StartElementId
	to := r.EndElementId

	g.addEdge(Edge{
		ID:         fmt.Sprintf("%s-%s-%s", from, to, r.Type),
		From:       from,
		To:         to,
		Label:      r.Type,
		Properties: r.Props,
	})
}

func (g *GraphData) addNode(n Node) {
	if g.nodeIndex == nil {
		g.reindex()
	}
	if _, exists := g.nodeIndex[n.ID]; exists {
		return
	}
	g.nodeIndex[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
}

func (g *GraphData) addEdge(e Edge) {
	if g.edgeIndex == nil {
		g.reindex()
	}
	if _, exists := g.edgeIndex[e.ID]; exists {
		return
	}
	g.edgeIndex[e.ID] = len(g.Edges)
	g.Edges = append(g.Edges, e)
}

// reindex rebuilds the lookup maps, needed after JSON round-trips that leave
// the unexported indexes nil.
func (g *GraphData) reindex() {
	g.nodeIndex = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.nodeIndex[n.ID] = i
	}
	g.edgeIndex = make(map[string]int, len(g.Edges))
	for i, e := range g.Edges {
		g.edgeIndex[e.ID] = i
	}
}

// displayName picks the first available of the name/title properties,
// falling back to "Unnamed".
func displayName(props map[string]any) string {
	for _, key := range []string{"name", "title"} {
		if v, ok := props[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return "Unnamed"
}
