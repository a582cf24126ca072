package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"vigil/internal/prog"
	"vigil/internal/source"
)

// CheckGraphInvariants runs the structural invariants of an expression graph
// built from a source file:
//  1. the stream is a doubly linked chain: Next/Prev mirror each other and
//     visit every node exactly once
//  2. AST links are consistent: each Left/Right child names the node as its
//     Parent
//  3. bracket links pair up symmetrically
//  4. every span stays inside the file content
func CheckGraphInvariants(g *prog.Graph, sf *source.File) error {
	if g == nil || sf == nil {
		return fmt.Errorf("nil graph or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	seen := make(map[prog.NodeID]bool, g.Len())
	prev := prog.NoNodeID
	for id := g.First(); id != prog.NoNodeID; id = g.Get(id).Next {
		if seen[id] {
			return fmt.Errorf("stream revisits node %d", id)
		}
		seen[id] = true
		n := g.Get(id)
		if n.Prev != prev {
			return fmt.Errorf("node %d: Prev=%d, stream predecessor is %d", id, n.Prev, prev)
		}
		prev = id
	}
	if prev != g.Last() {
		return fmt.Errorf("stream ends at %d, Last() is %d", prev, g.Last())
	}

	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		for _, child := range [2]prog.NodeID{n.Left, n.Right} {
			if child == prog.NoNodeID {
				continue
			}
			c := g.Get(child)
			if c == nil {
				return fmt.Errorf("node %d: dangling child %d", id, child)
			}
			if c.Parent != id {
				return fmt.Errorf("node %d: child %d names parent %d", id, child, c.Parent)
			}
		}
		if n.Link != prog.NoNodeID {
			m := g.Get(n.Link)
			if m == nil || m.Link != id {
				return fmt.Errorf("node %d: bracket link %d is not symmetric", id, n.Link)
			}
		}
		if n.Span.End < n.Span.Start {
			return fmt.Errorf("node %d: inverted span %v", id, n.Span)
		}
		if n.Span.End > lenContent {
			return fmt.Errorf("node %d: span end beyond content: %d > %d", id, n.Span.End, lenContent)
		}
	}
	return nil
}
