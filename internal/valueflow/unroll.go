package valueflow

import (
	"vigil/internal/prog"
	"vigil/internal/token"
	"vigil/internal/value"
)

// passUnrollLoops bounds the control variable of a counted loop: a head of
// the shape for (i = A; i < B; i += S) pins every read of i inside the body
// between the first value and the last value the step can reach.
func passUnrollLoops(cx *Context) {
	g := cx.Graph
	for id := g.First(); id != prog.NoNodeID; id = g.Get(id).Next {
		n := g.Get(id)
		if n.Tok != token.KwFor {
			continue
		}
		lp := n.Next
		if lp == prog.NoNodeID || g.Get(lp).Tok != token.LParen {
			continue
		}
		rp := g.Get(lp).Link
		if rp == prog.NoNodeID {
			continue
		}
		open := g.Get(rp).Next
		if open == prog.NoNodeID || g.Get(open).Tok != token.LBrace {
			continue
		}
		close := g.Get(open).Link
		if close == prog.NoNodeID {
			continue
		}
		ctl, first, last, ok := cx.loopBounds(id, lp, rp)
		if !ok {
			continue
		}
		if last < first {
			first, last = last, first
		}
		start := g.Get(open).Next
		if start == prog.NoNodeID {
			continue
		}
		lo := value.Value{Domain: value.DomainInt, Int: first, Bound: value.BoundLower}
		hi := value.Value{Domain: value.DomainInt, Int: last, Bound: value.BoundUpper}
		lo.AddStep(id, "loop lower bound")
		hi.AddStep(id, "loop upper bound")
		for _, v := range []value.Value{lo, hi} {
			cx.walkForward(newEntityAnalyzer(cx, ctl, v), start, close)
		}
	}
}

// loopBounds decodes the canonical counted-loop head. ctl is the occurrence
// of the control variable in the init clause, first and last the extreme
// values the counter takes inside the body.
func (cx *Context) loopBounds(kw, lp, rp prog.NodeID) (ctl prog.NodeID, first, last int64, ok bool) {
	g := cx.Graph
	initEnd := cx.statementEnd(g.Get(lp).Next)
	if initEnd == prog.NoNodeID || initEnd >= rp {
		return
	}
	v := prog.NoVarID
	prog.EachStream(g, g.Get(lp).Next, initEnd, func(e prog.NodeID) bool {
		en := g.Get(e)
		if en.Kind != prog.NodeOp || en.Tok != token.Assign || !en.IsBinaryOp() {
			return true
		}
		ln := g.Get(en.Left)
		if ln.IsName() && ln.Var != prog.NoVarID {
			if k, kok := cx.Corpus.KnownInt(en.Right); kok {
				ctl, v, first = en.Left, ln.Var, k
			}
		}
		return false
	})
	if v == prog.NoVarID {
		return
	}
	cond := g.Get(kw).Left
	if cond == prog.NoNodeID {
		return
	}
	cn := g.Get(cond)
	if cn.Kind != prog.NodeOp || !cn.IsBinaryOp() {
		return
	}
	if ln := g.Get(cn.Left); !ln.IsName() || ln.Var != v {
		return
	}
	limit, kok := cx.Corpus.KnownInt(cn.Right)
	if !kok {
		return
	}
	stride := cx.loopStride(cond, rp, v)
	if stride == 0 {
		return
	}
	switch cn.Tok {
	case token.Lt:
		if stride <= 0 || first >= limit {
			return
		}
		last = first + (limit-1-first)/stride*stride
	case token.LtEq:
		if stride <= 0 || first > limit {
			return
		}
		last = first + (limit-first)/stride*stride
	case token.Gt:
		if stride >= 0 || first <= limit {
			return
		}
		step := -stride
		last = first - (first-limit-1)/step*step
	case token.GtEq:
		if stride >= 0 || first < limit {
			return
		}
		step := -stride
		last = first - (first-limit)/step*step
	default:
		return
	}
	return ctl, first, last, true
}

// loopStride reads the step clause. Zero means the step is not a recognized
// constant increment of the control variable.
func (cx *Context) loopStride(cond, rp prog.NodeID, v prog.VarID) int64 {
	g := cx.Graph
	condEnd := cx.statementEnd(cond)
	if condEnd == prog.NoNodeID || condEnd >= rp {
		return 0
	}
	stride, writes := int64(0), 0
	prog.EachStream(g, g.Get(condEnd).Next, rp, func(e prog.NodeID) bool {
		en := g.Get(e)
		switch {
		case en.IsIncDec():
			op := g.Get(en.Left)
			if op == nil || !op.IsName() || op.Var != v {
				return true
			}
			writes++
			if en.Tok == token.PlusPlus {
				stride = 1
			} else {
				stride = -1
			}
		case en.IsCompoundAssign():
			ln := g.Get(en.Left)
			if ln == nil || !ln.IsName() || ln.Var != v {
				return true
			}
			writes++
			k, kok := cx.Corpus.KnownInt(en.Right)
			if !kok {
				return true
			}
			switch en.Tok {
			case token.PlusAssign:
				stride = k
			case token.MinusAssign:
				stride = -k
			}
		case en.Kind == prog.NodeOp && en.Tok == token.Assign && en.IsBinaryOp():
			if ln := g.Get(en.Left); ln != nil && ln.IsName() && ln.Var == v {
				// произвольная запись счётчика, шаг не постоянный
				writes++
				stride = 0
			}
		}
		return true
	})
	if writes != 1 {
		return 0
	}
	return stride
}
