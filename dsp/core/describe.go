package core

import (
	"fmt"
	"strings"

	"github.com/rs/xid"
)

// Node is one processor in a composition graph description. Composite
// units report their children so the full topology can be dumped for
// debugging. IDs are assigned by owners that track their nodes (chains
// tag each appended unit once, so IDs stay stable across dumps); an
// anonymous leaf keeps the zero ID.
type Node struct {
	ID       xid.ID
	Name     string
	Detail   string
	Children []Node
}

// Describer is implemented by processors that can describe their own
// structure. This is a debug capability: it allocates and must not be
// called from the audio thread.
type Describer interface {
	Describe() Node
}

// DescribeAny returns p's self-description when it implements
// Describer, and a node carrying the concrete type name otherwise.
func DescribeAny(p any) Node {
	if d, ok := p.(Describer); ok {
		return d.Describe()
	}
	return Node{Name: fmt.Sprintf("%T", p)}
}

// String renders the node tree as indented text, one node per line.
func (n Node) String() string {
	var b strings.Builder
	n.render(&b, 0)
	return b.String()
}

func (n Node) render(b *strings.Builder, indent int) {
	for i := 0; i < indent; i++ {
		b.WriteByte(' ')
	}
	b.WriteString(n.Name)
	if n.Detail != "" {
		b.WriteString(" [")
		b.WriteString(n.Detail)
		b.WriteByte(']')
	}
	if !n.ID.IsNil() {
		b.WriteString(" #")
		b.WriteString(n.ID.String())
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		c.render(b, indent+2)
	}
}
