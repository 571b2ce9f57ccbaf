package domain

import (
	"strings"
	"time"
)

// Defaults applied when a client omits optional node or edge attributes.
const (
	DefaultNodeSize   = 20
	DefaultNodeColor  = "#1976d2"
	DefaultEdgeWeight = 1.0
)

// Graph is a stored diagram together with its child collections.
type Graph struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"-"`
	Name          string        `json:"name"`
	Nodes         []Node        `json:"nodes"`
	Edges         []Edge        `json:"edges"`
	LegendEntries []LegendEntry `json:"legendEntries"`
	HasLegend     bool          `json:"hasLegend"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Node is a single vertex in a diagram. NodeID is the client-side
// identifier; ID is the database key.
type Node struct {
	ID        int64   `json:"id"`
	NodeID    string  `json:"nodeId"`
	Label     string  `json:"label"`
	Size      int     `json:"size"`
	Color     string  `json:"color"`
	PositionX float64 `json:"positionX"`
	PositionY float64 `json:"positionY"`
}

// Edge connects two nodes by their client-side identifiers.
type Edge struct {
	ID         int64   `json:"id"`
	EdgeID     string  `json:"edgeId"`
	FromNode   string  `json:"fromNode"`
	ToNode     string  `json:"toNode"`
	Weight     float64 `json:"weight"`
	IsDirected bool    `json:"isDirected"`
	ShowWeight bool    `json:"showWeight"`
}

// LegendEntry maps a color to a descriptive category. The numeric
// attributes are optional and fractional values are accepted.
type LegendEntry struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Color        string   `json:"color"`
	Capacity     *float64 `json:"capacity"`
	Distance     *float64 `json:"distance"`
	UnitDistance *float64 `json:"unitDistance"`
	Size         *float64 `json:"size"`
}

// dedupKey returns the identity of a node for deduplication. Nodes are
// keyed by NodeID, falling back to Label when NodeID is blank. A node
// with neither has no identity and is dropped.
func (n Node) dedupKey() string {
	if k := strings.TrimSpace(n.NodeID); k != "" {
		return k
	}
	return strings.TrimSpace(n.Label)
}

// dedupKey returns the identity of an edge for deduplication. Directed
// edges are keyed by their ordered endpoint pair; undirected edges by
// the unordered pair, so A-B and B-A collapse to one edge. The key is
// prefixed with the directed flag: a directed A->B and an undirected
// A-B are different edges and both survive.
func (e Edge) dedupKey() string {
	from, to := e.FromNode, e.ToNode
	if e.IsDirected {
		return "d:" + from + "->" + to
	}
	if from > to {
		from, to = to, from
	}
	return "u:" + from + "->" + to
}

// DedupeNodes removes duplicate nodes, keeping the attributes of the
// last occurrence at the position of the first. Nodes with a blank
// identity are dropped entirely.
func DedupeNodes(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	index := make(map[string]int, len(nodes))
	for _, n := range nodes {
		key := n.dedupKey()
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			out[i] = n
			continue
		}
		index[key] = len(out)
		out = append(out, n)
	}
	return out
}

// DedupeEdges removes duplicate edges, keeping the attributes of the
// last occurrence at the position of the first.
func DedupeEdges(edges []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	index := make(map[string]int, len(edges))
	for _, e := range edges {
		key := e.dedupKey()
		if i, ok := index[key]; ok {
			out[i] = e
			continue
		}
		index[key] = len(out)
		out = append(out, e)
	}
	return out
}
