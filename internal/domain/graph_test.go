package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeNodes(t *testing.T) {
	t.Run("last occurrence wins", func(t *testing.T) {
		nodes := []Node{
			{NodeID: "a", Label: "first", Color: "#111111"},
			{NodeID: "b", Label: "other"},
			{NodeID: "a", Label: "second", Color: "#222222"},
		}

		got := DedupeNodes(nodes)

		assert.Len(t, got, 2)
		assert.Equal(t, "second", got[0].Label)
		assert.Equal(t, "#222222", got[0].Color)
		assert.Equal(t, "b", got[1].NodeID)
	})

	t.Run("falls back to label when nodeId blank", func(t *testing.T) {
		nodes := []Node{
			{Label: "shared"},
			{Label: "shared", Size: 30},
		}

		got := DedupeNodes(nodes)

		assert.Len(t, got, 1)
		assert.Equal(t, 30, got[0].Size)
	})

	t.Run("drops nodes with no identity", func(t *testing.T) {
		nodes := []Node{
			{NodeID: "  ", Label: ""},
			{NodeID: "a", Label: "keep"},
		}

		got := DedupeNodes(nodes)

		assert.Len(t, got, 1)
		assert.Equal(t, "a", got[0].NodeID)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, DedupeNodes(nil))
	})
}

func TestDedupeEdges(t *testing.T) {
	t.Run("directed edges with same endpoints collapse", func(t *testing.T) {
		edges := []Edge{
			{FromNode: "a", ToNode: "b", IsDirected: true, Weight: 1},
			{FromNode: "a", ToNode: "b", IsDirected: true, Weight: 5},
		}

		got := DedupeEdges(edges)

		assert.Len(t, got, 1)
		assert.Equal(t, 5.0, got[0].Weight)
	})

	t.Run("directed edges in opposite directions are distinct", func(t *testing.T) {
		edges := []Edge{
			{FromNode: "a", ToNode: "b", IsDirected: true},
			{FromNode: "b", ToNode: "a", IsDirected: true},
		}

		assert.Len(t, DedupeEdges(edges), 2)
	})

	t.Run("undirected edges are unordered pairs", func(t *testing.T) {
		edges := []Edge{
			{FromNode: "a", ToNode: "b", Weight: 1},
			{FromNode: "b", ToNode: "a", Weight: 9},
		}

		got := DedupeEdges(edges)

		assert.Len(t, got, 1)
		assert.Equal(t, 9.0, got[0].Weight)
		assert.Equal(t, "b", got[0].FromNode)
	})

	t.Run("directed and undirected same pair both survive", func(t *testing.T) {
		edges := []Edge{
			{FromNode: "a", ToNode: "b", IsDirected: true},
			{FromNode: "a", ToNode: "b"},
		}

		assert.Len(t, DedupeEdges(edges), 2)
	})

	t.Run("self loop", func(t *testing.T) {
		edges := []Edge{
			{FromNode: "a", ToNode: "a"},
			{FromNode: "a", ToNode: "a", Weight: 2},
		}

		got := DedupeEdges(edges)

		assert.Len(t, got, 1)
		assert.Equal(t, 2.0, got[0].Weight)
	})
}
