package prog

import (
	"vigil/internal/source"
	"vigil/internal/token"
)

// Graph owns every node of one translation unit. Nodes are appended in
// token-stream order; the parser later overlays the expression tree by
// setting Parent/Left/Right on the same records.
type Graph struct {
	nodes   *Arena[Node]
	Strings *source.Interner
	first   NodeID
	last    NodeID
}

// NewGraph creates an empty graph sharing the given string interner.
func NewGraph(strings *source.Interner, capHint uint) *Graph {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Graph{
		nodes:   NewArena[Node](capHint),
		Strings: strings,
	}
}

// NewNode appends a node to the token stream and returns its id.
func (g *Graph) NewNode(tok token.Kind, kind NodeKind, span source.Span, text source.StringID) NodeID {
	id := NodeID(g.nodes.Allocate(Node{
		Tok:  tok,
		Kind: kind,
		Span: span,
		Text: text,
		Prev: g.last,
	}))
	if g.last != NoNodeID {
		g.nodes.Get(uint32(g.last)).Next = id
	} else {
		g.first = id
	}
	g.last = id
	return id
}

// InsertAfter splices a fresh node into the stream after the given one.
// Macro expansion uses this to materialize replacement tokens.
func (g *Graph) InsertAfter(after NodeID, tok token.Kind, kind NodeKind, span source.Span, text source.StringID) NodeID {
	prev := g.Get(after)
	if prev == nil {
		return g.NewNode(tok, kind, span, text)
	}
	id := NodeID(g.nodes.Allocate(Node{
		Tok:  tok,
		Kind: kind,
		Span: span,
		Text: text,
		Prev: after,
		Next: prev.Next,
	}))
	if prev.Next != NoNodeID {
		g.Get(prev.Next).Prev = id
	} else {
		g.last = id
	}
	g.Get(after).Next = id
	return id
}

// Get returns the node record, or nil for NoNodeID.
func (g *Graph) Get(id NodeID) *Node {
	return g.nodes.Get(uint32(id))
}

// First returns the head of the token stream.
func (g *Graph) First() NodeID { return g.first }

// Last returns the tail of the token stream.
func (g *Graph) Last() NodeID { return g.last }

// Len returns the number of nodes.
func (g *Graph) Len() uint32 { return g.nodes.Len() }

// SetUnary makes op the parent of operand with no right child.
func (g *Graph) SetUnary(op, operand NodeID) {
	n := g.Get(op)
	n.Left = operand
	n.Right = NoNodeID
	if c := g.Get(operand); c != nil {
		c.Parent = op
	}
}

// SetBinary makes op the parent of both operands.
func (g *Graph) SetBinary(op, left, right NodeID) {
	n := g.Get(op)
	n.Left = left
	n.Right = right
	if c := g.Get(left); c != nil {
		c.Parent = op
	}
	if c := g.Get(right); c != nil {
		c.Parent = op
	}
}

// SetLink pairs two bracket nodes.
func (g *Graph) SetLink(open, close NodeID) {
	if n := g.Get(open); n != nil {
		n.Link = close
	}
	if n := g.Get(close); n != nil {
		n.Link = open
	}
}

// Root climbs Parent links to the top of the expression containing id.
func (g *Graph) Root(id NodeID) NodeID {
	for {
		n := g.Get(id)
		if n == nil || n.Parent == NoNodeID {
			return id
		}
		id = n.Parent
	}
}

// Text returns the interned spelling of the node, falling back to the token
// kind's fixed spelling for operators and keywords.
func (g *Graph) Text(id NodeID) string {
	n := g.Get(id)
	if n == nil {
		return ""
	}
	if n.Text != source.NoStringID {
		if s, ok := g.Strings.Lookup(n.Text); ok {
			return s
		}
	}
	return n.Tok.String()
}

// Sibling returns the other operand of the node's parent, if the parent is a
// binary operator.
func (g *Graph) Sibling(id NodeID) NodeID {
	n := g.Get(id)
	if n == nil || n.Parent == NoNodeID {
		return NoNodeID
	}
	p := g.Get(n.Parent)
	if p.Left == id {
		return p.Right
	}
	if p.Right == id {
		return p.Left
	}
	return NoNodeID
}
