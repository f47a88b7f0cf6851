package codec

import (
	"fmt"
	"io"
	"strings"

	"collatzgraph/internal/domain"
)

// DOTCodec writes expansion graphs in Graphviz DOT syntax
type DOTCodec struct{}

// NewDOTCodec creates a new DOT codec
func NewDOTCodec() *DOTCodec {
	return &DOTCodec{}
}

// Format returns the codec format identifier
func (c *DOTCodec) Format() string {
	return "dot"
}

// ContentType returns the MIME type of exported data
func (c *DOTCodec) ContentType() string {
	return "text/vnd.graphviz"
}

// dotColors maps color classes to fill colors
var dotColors = map[string]string{
	"red":   "#e06c75",
	"green": "#98c379",
	"blue":  "#61afef",
}

// ExportGraph writes g as a directed graph, edges pointing from each value
// to its predecessors
func (c *DOTCodec) ExportGraph(g *domain.Graph, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "digraph %q {\n", fmt.Sprintf("collatz_%s_%d", g.Seed, g.BitBound))
	b.WriteString("  node [shape=box, style=filled];\n")
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "  %q [label=\"%d\\n%s\", fillcolor=%q];\n",
			n.ID, n.Tuple.Length, n.ID, dotColors[n.Group])
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "  %q -> %q;\n", e.From, e.To)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}
