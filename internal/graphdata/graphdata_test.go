package graphdata

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
)

func node(elementID, label, name string) dbtype.Node {
	return dbtype.Node{
		ElementId: elementID,
		Labels:    []string{label},
		Props:     map[string]any{"name": name},
	}
}

func rel(elementID, from, to, relType string) dbtype.Relationship {
	return dbtype.Relationship{
		ElementId:      elementID,
		StartElementId: from,
		EndElementId:   to,
		Type:           relType,
		Props:          map[string]any{},
	}
}

func TestFromRecords_NodesAndRelationships(t *testing.T) {
	records := []map[string]any{
		{
			"i": node("1", "Industry", "Banking"),
			"s": node("2", "Sector", "Retail Banking"),
			"r": rel("10", "1", "2", "HAS_SECTOR"),
		},
	}

	g := FromRecords(records)

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, "1-2-HAS_SECTOR", g.Edges[0].ID)
	assert.Equal(t, "HAS_SECTOR", g.Edges[0].Label)
}

func TestFromRecords_Deduplication(t *testing.T) {
	// The same node and relationship seen through two columns and across
	// two records must collapse to a single entry each.
	n1 := node("1", "Industry", "Banking")
	n2 := node("2", "Sector", "Retail Banking")
	r := rel("10", "1", "2", "HAS_SECTOR")

	records := []map[string]any{
		{"a": n1, "b": n2, "r": r, "again": n1},
		{"a": n1, "b": n2, "r": r},
	}

	g := FromRecords(records)

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
}

func TestFromRecords_PathUnpacking(t *testing.T) {
	p := dbtype.Path{
		Nodes: []dbtype.Node{
			node("1", "Industry", "Banking"),
			node("2", "Sector", "Retail Banking"),
			node("3", "Department", "Lending"),
		},
		Relationships: []dbtype.Relationship{
			rel("10", "1", "2", "HAS_SECTOR"),
			rel("11", "2", "3", "HAS_DEPARTMENT"),
		},
	}

	g := FromRecords([]map[string]any{{"p": p}})

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
}

func TestFromRecords_ListsAndScalars(t *testing.T) {
	records := []map[string]any{
		{
			"nodes": []any{node("1", "Sector", "Retail Banking"), node("2", "Sector", "Commercial Banking")},
			"count": int64(2),
			"name":  "ignored scalar",
		},
	}

	g := FromRecords(records)

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		props    map[string]any
		expected string
	}{
		{"name property", map[string]any{"name": "Banking"}, "Banking"},
		{"title fallback", map[string]any{"title": "Report"}, "Report"},
		{"name preferred over title", map[string]any{"name": "A", "title": "B"}, "A"},
		{"empty name falls through", map[string]any{"name": "", "title": "B"}, "B"},
		{"no usable property", map[string]any{"size": 3}, "Unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, displayName(tt.props))
		})
	}
}

func TestMerge(t *testing.T) {
	g1 := FromRecords([]map[string]any{{
		"i": node("1", "Industry", "Banking"),
		"s": node("2", "Sector", "Retail Banking"),
		"r": rel("10", "1", "2", "HAS_SECTOR"),
	}})
	g2 := FromRecords([]map[string]any{{
		"i": node("1", "Industry", "Banking"),
		"s": node("3", "Sector", "Commercial Banking"),
		"r": rel("11", "1", "3", "HAS_SECTOR"),
	}})

	g1.Merge(g2)

	assert.Equal(t, 3, g1.NodeCount())
	assert.Equal(t, 2, g1.EdgeCount())
	// g2 untouched
	assert.Equal(t, 2, g2.NodeCount())
}
