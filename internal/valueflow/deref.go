package valueflow

import (
	"vigil/internal/prog"
	"vigil/internal/token"
	"vigil/internal/value"
)

// passDerefs shifts pointer facts through a unary '*': a fact about the
// pointee (Indirect > 0) becomes a fact about the loaded value. Store
// targets are skipped, the store changes the pointee instead of reading it.
func passDerefs(cx *Context) {
	g := cx.Graph
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		if n.Kind != prog.NodeOp || n.Tok != token.Star || !n.IsUnaryOp() {
			continue
		}
		if p := g.Get(n.Parent); p != nil && p.IsAssign() && p.Left == id {
			continue
		}
		for _, f := range cx.Corpus.Facts(n.Left) {
			if f.Indirect <= 0 {
				continue
			}
			v := f
			v.Explanation = value.CombineTrails(f.Explanation, nil)
			v.Indirect--
			v.AddStep(id, "dereferenced")
			cx.Publish(id, v)
		}
	}
}
