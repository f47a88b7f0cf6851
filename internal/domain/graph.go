package domain

import "fmt"

// Graph is the derived view of a bounded expansion for vis-network style
// visualization and DOT export
type Graph struct {
	Seed      string      `json:"seed"`
	BitBound  int         `json:"bit_bound"`
	Nodes     []GraphNode `json:"nodes"`
	Edges     []GraphEdge `json:"edges"`
	Truncated bool        `json:"truncated,omitempty"`
}

// GraphNode represents a value in the visualization
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"` // "<length>\n<value>"
	Group string `json:"group"` // color name
	Title string `json:"title"` // Tooltip content
	Level int    `json:"level"`
	Tuple Tuple  `json:"tuple"`
}

// GraphEdge links a value to one of its predecessors
type GraphEdge struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// NewGraph creates an empty graph for seed under bitBound
func NewGraph(seed string, bitBound int) *Graph {
	return &Graph{
		Seed:     seed,
		BitBound: bitBound,
		Nodes:    make([]GraphNode, 0),
		Edges:    make([]GraphEdge, 0),
	}
}

// AddNode adds a classified value at the given level
func (g *Graph) AddNode(value string, level int, tuple Tuple) {
	g.Nodes = append(g.Nodes, GraphNode{
		ID:    value,
		Label: fmt.Sprintf("%d\n%s", tuple.Length, value),
		Group: tuple.Color.String(),
		Title: buildTooltip(value, level, tuple),
		Level: level,
		Tuple: tuple,
	})
}

// AddEdge links from to its predecessor to
func (g *Graph) AddEdge(from, to string) {
	g.Edges = append(g.Edges, GraphEdge{
		ID:   from + "-" + to,
		From: from,
		To:   to,
	})
}

func buildTooltip(value string, level int, tuple Tuple) string {
	return fmt.Sprintf("%s\nlevel %d\nmod3 %d, length %d\n%s, %s descendants",
		value, level, tuple.Mod3, tuple.Length, tuple.Color, tuple.Parity)
}
