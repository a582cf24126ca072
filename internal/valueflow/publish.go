package valueflow

import (
	"vigil/internal/library"
	"vigil/internal/prog"
	"vigil/internal/token"
	"vigil/internal/types"
	"vigil/internal/value"
)

// Publish records a fact on a node and, when the fact is new, recomputes the
// chain of parent expressions that depend on it. Every caller in every pass
// goes through here, so a fact planted on a leaf immediately surfaces on the
// whole expression around it.
func (cx *Context) Publish(id prog.NodeID, v value.Value) bool {
	if id == prog.NoNodeID {
		return false
	}
	if !cx.Corpus.AddFact(id, v) {
		return false
	}
	cx.bubble(id, cx.Budgets.PublishDepth)
	return true
}

// bubble recomputes the parent of a node whose fact set just grew. Statement
// glue stops the climb: keywords, assignments, the comma operator and plain
// calls do not compute a value from their children here.
func (cx *Context) bubble(child prog.NodeID, depth int) {
	pid := cx.node(child).Parent
	if pid == prog.NoNodeID {
		return
	}
	if depth <= 0 {
		cx.Bailout(pid, "expression nesting exceeds publish budget")
		return
	}
	p := cx.node(pid)
	if p.Kind != prog.NodeOp {
		return
	}
	switch {
	case p.Tok == token.Comma, p.IsAssign(), p.IsIncDec():
		return
	case p.IsCast():
		cx.recomputeCast(pid, p, depth)
	case p.IsCall():
		return
	case p.Tok == token.Dot:
		cx.recomputeYield(pid, p, depth)
	case p.IsTernaryHead():
		if p.Left == child {
			cx.selectTernaryBranch(pid, p, depth)
		}
	case p.Tok == token.Colon:
		cx.recomputeTernary(pid, p, depth)
	case p.Tok == token.LBracket && p.IsBinaryOp():
		cx.recomputeIndex(pid, p, depth)
	case p.IsUnaryOp():
		cx.recomputeUnary(pid, p, depth)
	case p.IsBinaryOp():
		cx.recomputeBinary(pid, p, depth)
	}
}

func (cx *Context) recomputeBinary(pid prog.NodeID, p *prog.Node, depth int) {
	lf := cx.Corpus.Facts(p.Left)
	rf := cx.Corpus.Facts(p.Right)
	added := false
	for i := range lf {
		for j := range rf {
			r, ok := cx.combineFacts(p.Tok, p.Type, &lf[i], &rf[j])
			if !ok {
				continue
			}
			if cx.Corpus.AddFact(pid, r) {
				added = true
			}
		}
	}
	// Доминирующий операнд решает && и || в одиночку.
	if p.Tok == token.AndAnd || p.Tok == token.OrOr {
		if cx.addLogicalDominant(pid, p, lf) {
			added = true
		}
		if cx.addLogicalDominant(pid, p, rf) {
			added = true
		}
	}
	if added {
		cx.bubble(pid, depth-1)
	}
}

// addLogicalDominant publishes the short-circuit outcome when one operand
// alone decides the operator: a known zero under &&, a known non-zero
// under ||. Sound for either operand since the value is the same whichever
// side forced it.
func (cx *Context) addLogicalDominant(pid prog.NodeID, p *prog.Node, facts []value.Value) bool {
	added := false
	for i := range facts {
		f := &facts[i]
		if f.Domain != value.DomainInt || f.Bound != value.BoundPoint || !f.IsKnown() {
			continue
		}
		var out int64
		switch {
		case p.Tok == token.AndAnd && f.Int == 0:
			out = 0
		case p.Tok == token.OrOr && f.Int != 0:
			out = 1
		default:
			continue
		}
		r := value.Value{Domain: value.DomainInt, Kind: value.Known, Int: out}
		r.Explanation = value.CombineTrails(f.Explanation, nil)
		r.Condition = f.Condition
		r.Path = f.Path
		if cx.Corpus.AddFact(pid, r) {
			added = true
		}
	}
	return added
}

func (cx *Context) recomputeUnary(pid prog.NodeID, p *prog.Node, depth int) {
	switch p.Tok {
	case token.Minus, token.Bang, token.Tilde, token.Plus:
	default:
		return
	}
	facts := cx.Corpus.Facts(p.Left)
	added := false
	for i := range facts {
		var r value.Value
		var ok bool
		if p.Tok == token.Plus {
			r = facts[i]
			r.Explanation = value.CombineTrails(facts[i].Explanation, nil)
			ok = r.IsNumeric()
		} else {
			r, ok = cx.calcUnary(p.Tok, p.Type, &facts[i])
		}
		if ok && cx.Corpus.AddFact(pid, r) {
			added = true
		}
	}
	if added {
		cx.bubble(pid, depth-1)
	}
}

func (cx *Context) recomputeCast(pid prog.NodeID, p *prog.Node, depth int) {
	dst, ok := cx.typeOf(pid)
	if !ok {
		return
	}
	src, srcOK := cx.typeOf(p.Left)
	facts := cx.Corpus.Facts(p.Left)
	added := false
	for i := range facts {
		r, ok := cx.castFact(src, srcOK, dst, &facts[i])
		if ok && cx.Corpus.AddFact(pid, r) {
			added = true
		}
	}
	if added {
		cx.bubble(pid, depth-1)
	}
}

// recomputeYield translates facts on a container receiver through the
// library yield of the called method: size facts become integers on the call
// node, emptiness collapses to a boolean, buffer yields carry string
// provenance through.
func (cx *Context) recomputeYield(dotID prog.NodeID, dot *prog.Node, depth int) {
	callID := dot.Parent
	if callID == prog.NoNodeID {
		return
	}
	call := cx.node(callID)
	if !call.IsCall() || call.Left != dotID {
		return
	}
	recv := dot.Left
	cont, ok := cx.containerOf(recv)
	if !ok {
		return
	}
	yield := cont.YieldOf(cx.Graph.Text(dot.Right))
	facts := cx.Corpus.Facts(recv)
	added := false
	for i := range facts {
		f := &facts[i]
		var r value.Value
		switch {
		case yield == library.YieldSize && f.Domain == value.DomainContainerSize:
			r = *f
			r.Explanation = value.CombineTrails(f.Explanation, nil)
			r.Domain = value.DomainInt
		case yield == library.YieldEmpty && f.Domain == value.DomainContainerSize && f.Bound == value.BoundPoint:
			if f.IsImpossible() {
				// Размер никогда не ноль: empty() заведомо ложь.
				if f.Int != 0 {
					continue
				}
				r = value.Value{Domain: value.DomainInt, Kind: value.Known, Int: 0}
				r.Explanation = value.CombineTrails(f.Explanation, nil)
				r.Condition = f.Condition
				r.Path = f.Path
			} else {
				r = *f
				r.Explanation = value.CombineTrails(f.Explanation, nil)
				r.Domain = value.DomainInt
				r.Int = boolToInt(f.Int == 0)
			}
		case yield == library.YieldBuffer && f.Domain == value.DomainTokenRef:
			r = *f
			r.Explanation = value.CombineTrails(f.Explanation, nil)
		default:
			continue
		}
		if cx.Corpus.AddFact(callID, r) {
			added = true
		}
	}
	if added {
		cx.bubble(callID, depth-1)
	}
}

// selectTernaryBranch fires when the condition of cond ? a : b gains a known
// integer: the facts of the branch the condition selects become the facts of
// the whole expression at full strength.
func (cx *Context) selectTernaryBranch(qid prog.NodeID, q *prog.Node, depth int) {
	cond, ok := cx.Corpus.KnownInt(q.Left)
	if !ok {
		return
	}
	colon := cx.node(q.Right)
	sel := colon.Left
	if cond == 0 {
		sel = colon.Right
	}
	facts := cx.Corpus.Facts(sel)
	added := false
	for i := range facts {
		r := facts[i]
		r.Explanation = value.CombineTrails(facts[i].Explanation, nil)
		if cx.Corpus.AddFact(qid, r) {
			added = true
		}
	}
	if added {
		cx.bubble(qid, depth-1)
	}
}

// recomputeTernary flows branch facts up through the ':' of a ternary. With
// the condition unresolved the facts survive only in weakened form, and only
// when the condition pivots on a single variable; a multi-variable condition
// is a bailout, not a guess.
func (cx *Context) recomputeTernary(colonID prog.NodeID, colon *prog.Node, depth int) {
	qid := colon.Parent
	if qid == prog.NoNodeID {
		return
	}
	q := cx.node(qid)
	if !q.IsTernaryHead() {
		return
	}
	if cond, ok := cx.Corpus.KnownInt(q.Left); ok {
		sel := colon.Left
		if cond == 0 {
			sel = colon.Right
		}
		facts := cx.Corpus.Facts(sel)
		added := false
		for i := range facts {
			r := facts[i]
			r.Explanation = value.CombineTrails(facts[i].Explanation, nil)
			if cx.Corpus.AddFact(qid, r) {
				added = true
			}
		}
		if added {
			cx.bubble(qid, depth-1)
		}
		return
	}
	if cx.countFreeVars(q.Left) > 1 {
		cx.Bailout(qid, "ternary condition depends on multiple variables")
		return
	}
	added := false
	for _, branch := range [2]prog.NodeID{colon.Left, colon.Right} {
		facts := cx.Corpus.Facts(branch)
		for i := range facts {
			f := &facts[i]
			// Невозможность одной ветви ничего не говорит о всём выражении.
			if f.IsImpossible() {
				continue
			}
			r := *f
			r.Explanation = value.CombineTrails(f.Explanation, nil)
			r.LowerToPossible()
			r.Flags |= value.FlagConditional
			if r.Condition == prog.NoNodeID {
				r.Condition = q.Left
			}
			if cx.Corpus.AddFact(qid, r) {
				added = true
			}
		}
	}
	if added {
		cx.bubble(qid, depth-1)
	}
}

// recomputeIndex resolves s[i] when s carries string-literal provenance and
// i an exact index. The terminating zero at the literal's length counts.
func (cx *Context) recomputeIndex(pid prog.NodeID, p *prog.Node, depth int) {
	bf := cx.Corpus.Facts(p.Left)
	xf := cx.Corpus.Facts(p.Right)
	added := false
	for i := range bf {
		base := &bf[i]
		if base.Domain != value.DomainTokenRef || base.Ref == prog.NoNodeID {
			continue
		}
		lit := cx.node(base.Ref)
		if lit.Kind != prog.NodeString {
			continue
		}
		content, err := types.UnescapeString(cx.Graph.Text(base.Ref))
		if err != nil {
			continue
		}
		for j := range xf {
			idx := &xf[j]
			if idx.Domain != value.DomainInt || idx.Bound != value.BoundPoint || idx.IsImpossible() {
				continue
			}
			if !value.Compatible(base, idx) {
				continue
			}
			if idx.Int < 0 || idx.Int > int64(len(content)) {
				continue
			}
			var ch int64
			if idx.Int < int64(len(content)) {
				ch = int64(content[idx.Int])
			}
			r := value.Combined(base, idx)
			r.Domain = value.DomainInt
			r.Ref, r.RefExpr = prog.NoNodeID, prog.NoExprKey
			r.Int = ch
			if cx.Corpus.AddFact(pid, r) {
				added = true
			}
		}
	}
	if added {
		cx.bubble(pid, depth-1)
	}
}
