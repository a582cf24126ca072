package valueflow

import (
	"math"

	"vigil/internal/library"
	"vigil/internal/prog"
	"vigil/internal/token"
	"vigil/internal/types"
	"vigil/internal/value"
)

// Condition splitting turns one boolean test into facts for the regions it
// dominates. Each atomic comparison contributes a pair of fact sets: what
// holds on the true edge and what holds on the false edge. The routing then
// plants those sets where the corresponding edge leads: branch bodies, the
// untested tail of a && / || chain, loop bodies, the code after a branch
// that cannot fall through, and the code after a loop that cannot break.

const (
	noteTrue  = "condition is true"
	noteFalse = "condition is false"
)

// condEntry is what one atomic condition says about one entity.
type condEntry struct {
	occ       prog.NodeID
	whenTrue  []value.Value
	whenFalse []value.Value
}

func rangeFact(d value.Domain, kind value.Kind, k int64, b value.Bound) value.Value {
	return value.Value{Domain: d, Kind: kind, Int: k, Bound: b}
}

// trackableEntity reports whether facts pinned to this node are worth
// carrying around: a named variable or a keyed compound expression.
// Literals already carry their own value.
func (cx *Context) trackableEntity(id prog.NodeID) bool {
	n := cx.node(id)
	if n == nil || n.IsLiteral() {
		return false
	}
	if n.IsName() {
		return n.Var != prog.NoVarID
	}
	return n.Kind == prog.NodeOp && n.Expr != prog.NoExprKey
}

// symbolicSide peels constant offsets off an expression: x, x+2 and x-3 all
// resolve to base x with a delta. Anything other than a tracked entity under
// the offsets fails.
func (cx *Context) symbolicSide(id prog.NodeID) (base prog.NodeID, delta int64, ok bool) {
	n := cx.node(id)
	if n == nil {
		return prog.NoNodeID, 0, false
	}
	if n.IsBinaryOp() && (n.Tok == token.Plus || n.Tok == token.Minus) {
		if k, kok := cx.Corpus.KnownInt(n.Right); kok {
			if base, delta, ok = cx.symbolicSide(n.Left); ok {
				if n.Tok == token.Minus {
					k = -k
				}
				return base, delta + k, true
			}
		}
		if n.Tok == token.Plus {
			if k, kok := cx.Corpus.KnownInt(n.Left); kok {
				if base, delta, ok = cx.symbolicSide(n.Right); ok {
					return base, delta + k, true
				}
			}
		}
		return prog.NoNodeID, 0, false
	}
	if !cx.trackableEntity(id) {
		return prog.NoNodeID, 0, false
	}
	return id, 0, true
}

// callYield resolves a method call node to its library yield and receiver.
func (cx *Context) callYield(call prog.NodeID) (library.Yield, prog.NodeID, bool) {
	n := cx.node(call)
	if n == nil || !n.IsCall() {
		return library.YieldNone, prog.NoNodeID, false
	}
	dot := cx.node(n.Left)
	if dot == nil || dot.Tok != token.Dot {
		return library.YieldNone, prog.NoNodeID, false
	}
	cont, ok := cx.containerOf(dot.Left)
	if !ok {
		return library.YieldNone, prog.NoNodeID, false
	}
	return cont.YieldOf(cx.Graph.Text(dot.Right)), dot.Left, true
}

// conditionEntries splits one atomic condition into per-entity fact pairs.
func (cx *Context) conditionEntries(cond prog.NodeID) []condEntry {
	if cond == prog.NoNodeID {
		return nil
	}
	n := cx.node(cond)
	if n == nil {
		return nil
	}
	if n.Kind == prog.NodeOp && n.Tok == token.Bang && n.IsUnaryOp() {
		inner := cx.conditionEntries(n.Left)
		for i := range inner {
			inner[i].whenTrue, inner[i].whenFalse = inner[i].whenFalse, inner[i].whenTrue
		}
		return inner
	}
	if n.IsComparison() {
		return cx.comparisonEntries(n)
	}
	if es := cx.emptinessEntries(cond); es != nil {
		return es
	}
	if cx.trackableEntity(cond) {
		// голое булево: истинность исключает ноль, ложность его требует
		return []condEntry{{
			occ:       cond,
			whenTrue:  []value.Value{rangeFact(value.DomainInt, value.Impossible, 0, value.BoundPoint)},
			whenFalse: []value.Value{rangeFact(value.DomainInt, value.Known, 0, value.BoundPoint)},
		}}
	}
	return nil
}

// emptinessEntries recognizes v.empty() in boolean position.
func (cx *Context) emptinessEntries(call prog.NodeID) []condEntry {
	y, recv, ok := cx.callYield(call)
	if !ok || y != library.YieldEmpty {
		return nil
	}
	return []condEntry{{
		occ:       recv,
		whenTrue:  []value.Value{rangeFact(value.DomainContainerSize, value.Known, 0, value.BoundPoint)},
		whenFalse: []value.Value{rangeFact(value.DomainContainerSize, value.Impossible, 0, value.BoundPoint)},
	}}
}

func (cx *Context) comparisonEntries(n *prog.Node) []condEntry {
	l, r := n.Left, n.Right
	op := n.Tok

	if y, recv, ok := cx.callYield(l); ok && y == library.YieldSize {
		if k, kok := cx.Corpus.KnownInt(r); kok {
			return cx.rangeEntries(recv, value.DomainContainerSize, op, k, true)
		}
	}
	if y, recv, ok := cx.callYield(r); ok && y == library.YieldSize {
		if k, kok := cx.Corpus.KnownInt(l); kok {
			return cx.rangeEntries(recv, value.DomainContainerSize, flipCmp(op), k, true)
		}
	}

	if op == token.EqEq || op == token.BangEq {
		if es := cx.iteratorEntries(l, r, op); es != nil {
			return es
		}
		if es := cx.stringEntries(l, r, op); es != nil {
			return es
		}
	}

	if k, ok := cx.Corpus.KnownInt(r); ok && cx.trackableEntity(l) {
		return cx.constEntries(l, op, k)
	}
	if k, ok := cx.Corpus.KnownInt(l); ok && cx.trackableEntity(r) {
		return cx.constEntries(r, flipCmp(op), k)
	}

	if op == token.EqEq || op == token.BangEq {
		return cx.symbolicEntries(l, r, op)
	}
	return nil
}

// constEntries handles entity op K, plus the peeled form (x+d) op K which
// additionally bounds the base at K-d.
func (cx *Context) constEntries(entity prog.NodeID, op token.Kind, k int64) []condEntry {
	es := cx.rangeEntries(entity, value.DomainInt, op, k, cx.isUnsigned(entity))
	base, delta, ok := cx.symbolicSide(entity)
	if !ok || delta == 0 {
		return es
	}
	if (delta > 0 && k < math.MinInt64+delta) || (delta < 0 && k > math.MaxInt64+delta) {
		return es
	}
	return append(es, cx.rangeEntries(base, value.DomainInt, op, k-delta, cx.isUnsigned(base))...)
}

// rangeEntries builds the fact pair for entity op K. Strict inequalities
// normalize to inclusive payloads first; the false edge is the same region
// in the impossible encoding.
func (cx *Context) rangeEntries(occ prog.NodeID, d value.Domain, op token.Kind, k int64, unsigned bool) []condEntry {
	e := condEntry{occ: occ}
	switch op {
	case token.EqEq:
		e.whenTrue = []value.Value{rangeFact(d, value.Known, k, value.BoundPoint)}
		e.whenFalse = []value.Value{rangeFact(d, value.Impossible, k, value.BoundPoint)}
	case token.BangEq:
		e.whenTrue = []value.Value{rangeFact(d, value.Impossible, k, value.BoundPoint)}
		e.whenFalse = []value.Value{rangeFact(d, value.Known, k, value.BoundPoint)}
	case token.Gt:
		if k == math.MaxInt64 {
			return nil
		}
		return cx.rangeEntries(occ, d, token.GtEq, k+1, unsigned)
	case token.Lt:
		if k == math.MinInt64 {
			return nil
		}
		return cx.rangeEntries(occ, d, token.LtEq, k-1, unsigned)
	case token.GtEq:
		if unsigned && k <= 0 {
			// всегда истинно: фактов не даёт
			return nil
		}
		e.whenTrue = []value.Value{rangeFact(d, value.Known, k, value.BoundLower)}
		e.whenFalse = []value.Value{rangeFact(d, value.Impossible, k, value.BoundLower)}
		if unsigned && k == 1 {
			// беззнаковое "меньше единицы" это ровно ноль
			e.whenFalse = append(e.whenFalse, rangeFact(d, value.Known, 0, value.BoundPoint))
		}
	case token.LtEq:
		if unsigned && k < 0 {
			return nil
		}
		if unsigned && k == 0 {
			e.whenTrue = []value.Value{rangeFact(d, value.Known, 0, value.BoundPoint)}
		} else {
			e.whenTrue = []value.Value{rangeFact(d, value.Known, k, value.BoundUpper)}
		}
		e.whenFalse = []value.Value{rangeFact(d, value.Impossible, k, value.BoundUpper)}
	default:
		return nil
	}
	return []condEntry{e}
}

func flipCmp(op token.Kind) token.Kind {
	switch op {
	case token.Lt:
		return token.Gt
	case token.LtEq:
		return token.GtEq
	case token.Gt:
		return token.Lt
	case token.GtEq:
		return token.LtEq
	default:
		return op
	}
}

// iteratorEntries recognizes it == v.end() and it == v.begin().
func (cx *Context) iteratorEntries(l, r prog.NodeID, op token.Kind) []condEntry {
	lhs, rhs := l, r
	y, _, ok := cx.callYield(rhs)
	if !ok || (y != library.YieldEndIterator && y != library.YieldStartIterator) {
		lhs, rhs = r, l
		y, _, ok = cx.callYield(rhs)
	}
	if !ok || (y != library.YieldEndIterator && y != library.YieldStartIterator) {
		return nil
	}
	if !cx.trackableEntity(lhs) {
		return nil
	}
	d := value.DomainIteratorEnd
	if y == library.YieldStartIterator {
		d = value.DomainIteratorStart
	}
	t := rangeFact(d, value.Known, 0, value.BoundPoint)
	f := rangeFact(d, value.Impossible, 0, value.BoundPoint)
	if op == token.BangEq {
		t, f = f, t
	}
	return []condEntry{{occ: lhs, whenTrue: []value.Value{t}, whenFalse: []value.Value{f}}}
}

// stringEntries recognizes s == "literal" for string-like containers:
// equality pins the container's size to the literal's length.
func (cx *Context) stringEntries(l, r prog.NodeID, op token.Kind) []condEntry {
	s, lit := l, r
	if cx.node(lit).Kind != prog.NodeString {
		s, lit = r, l
	}
	if cx.node(lit).Kind != prog.NodeString || !cx.trackableEntity(s) {
		return nil
	}
	cont, ok := cx.containerOf(s)
	if !ok || !cont.StringLike {
		return nil
	}
	content, err := types.UnescapeString(cx.Graph.Text(lit))
	if err != nil {
		return nil
	}
	e := condEntry{occ: s}
	f := rangeFact(value.DomainContainerSize, value.Known, int64(len(content)), value.BoundPoint)
	if op == token.EqEq {
		e.whenTrue = []value.Value{f}
	} else {
		e.whenFalse = []value.Value{f}
	}
	return []condEntry{e}
}

// symbolicEntries ties both sides of x == y to each other when neither
// resolves to a constant. The false edge of == says nothing useful about
// either side, so only equality contributes.
func (cx *Context) symbolicEntries(l, r prog.NodeID, op token.Kind) []condEntry {
	lb, ld, lok := cx.symbolicSide(l)
	rb, rd, rok := cx.symbolicSide(r)
	if !lok || !rok || prog.Identical(cx.Graph, lb, rb) {
		return nil
	}
	mk := func(occ, ref prog.NodeID, delta int64) condEntry {
		v := value.MakeSymbolic(ref, delta)
		v.RefExpr = cx.node(ref).Expr
		v.Kind = value.Known
		e := condEntry{occ: occ}
		if op == token.EqEq {
			e.whenTrue = []value.Value{v}
		} else {
			e.whenFalse = []value.Value{v}
		}
		return e
	}
	// x + ld == y + rd: x равен y + (rd - ld), и наоборот
	return []condEntry{
		mk(lb, rb, rd-ld),
		mk(rb, lb, ld-rd),
	}
}

// flattenCondition splits a && / || chain into its operands. A chain mixing
// both operators without parentheses is refused: the routing would need a
// full truth table. A lone condition comes back as one part with op Invalid.
func (cx *Context) flattenCondition(cond prog.NodeID) (parts []prog.NodeID, op token.Kind, ok bool) {
	n := cx.node(cond)
	if n == nil {
		return nil, token.Invalid, false
	}
	if n.Tok != token.AndAnd && n.Tok != token.OrOr {
		return []prog.NodeID{cond}, token.Invalid, true
	}
	op = n.Tok
	var walk func(id prog.NodeID) bool
	walk = func(id prog.NodeID) bool {
		c := cx.node(id)
		if c != nil && c.Tok == op && c.Kind == prog.NodeOp && !c.Flags.Has(prog.FlagParens) {
			return walk(c.Left) && walk(c.Right)
		}
		if c != nil && (c.Tok == token.AndAnd || c.Tok == token.OrOr) && !c.Flags.Has(prog.FlagParens) {
			return false
		}
		parts = append(parts, id)
		return true
	}
	if !walk(cond) {
		return nil, op, false
	}
	return parts, op, true
}

// injectRegion plants condition facts on entity occurrences inside a stream
// region by walking an analyzer across it.
func (cx *Context) injectRegion(occ prog.NodeID, facts []value.Value, condRoot, from, to prog.NodeID, note string) {
	if occ == prog.NoNodeID || from == prog.NoNodeID {
		return
	}
	for _, f := range facts {
		f.Condition = condRoot
		f.AddStep(condRoot, note)
		ea := newEntityAnalyzer(cx, occ, f)
		cx.walkForward(ea, from, to)
	}
}

// seedBeforeCondition pushes the union of both outcomes, weakened to
// possible, into the code leading up to the condition: whatever the test
// distinguishes may already be there earlier. Conditions spliced together
// by a macro are skipped, the split points would land inside the expansion.
func (cx *Context) seedBeforeCondition(cond prog.NodeID, parts []prog.NodeID, entries [][]condEntry) {
	if cx.node(cond).Flags.Has(prog.FlagFromMacro) {
		return
	}
	for i, es := range entries {
		if cx.node(parts[i]).Flags.Has(prog.FlagFromMacro) {
			continue
		}
		first, _ := cx.subtreeSpan(parts[i])
		if first == prog.NoNodeID {
			continue
		}
		start := cx.node(first).Prev
		if start == prog.NoNodeID {
			continue
		}
		for _, e := range es {
			both := append(append([]value.Value{}, e.whenTrue...), e.whenFalse...)
			for _, f := range both {
				if f.IsImpossible() {
					continue
				}
				f.LowerToPossible()
				f.Flags |= value.FlagConditional
				f.Condition = parts[i]
				f.AddStep(parts[i], "tested by later condition")
				ea := newEntityAnalyzer(cx, e.occ, f)
				cx.walkReverse(ea, start, prog.NoNodeID)
			}
		}
	}
}

// splitCondition is the shared front half of every condition handler:
// flatten the chain, split each operand, seed the code before the test and
// let earlier operands bound the later ones. With && the right operand only
// evaluates when the left was true; with || only when it was false.
func (cx *Context) splitCondition(cond prog.NodeID) (parts []prog.NodeID, op token.Kind, entries [][]condEntry, ok bool) {
	if cond == prog.NoNodeID {
		return nil, token.Invalid, nil, false
	}
	parts, op, ok = cx.flattenCondition(cond)
	if !ok {
		cx.Bailout(cond, "condition mixes && and || without parentheses")
		return nil, op, nil, false
	}
	entries = make([][]condEntry, len(parts))
	for i, p := range parts {
		entries[i] = cx.conditionEntries(p)
	}
	cx.seedBeforeCondition(cond, parts, entries)
	for i, es := range entries {
		for j := i + 1; j < len(parts); j++ {
			from, to := cx.subtreeSpan(parts[j])
			for _, e := range es {
				switch op {
				case token.AndAnd:
					cx.injectRegion(e.occ, e.whenTrue, parts[i], from, to, noteTrue)
				case token.OrOr:
					cx.injectRegion(e.occ, e.whenFalse, parts[i], from, to, noteFalse)
				}
			}
		}
	}
	return parts, op, entries, true
}

// handleCondition routes the controlling condition of an if, while or for
// statement into the regions it dominates.
func (cx *Context) handleCondition(kw prog.NodeID) {
	n := cx.node(kw)
	parts, op, entries, ok := cx.splitCondition(n.Left)
	if !ok {
		return
	}
	switch n.Tok {
	case token.KwIf:
		cx.routeIf(kw, op, parts, entries)
	case token.KwWhile:
		if open, close, bok := cx.branchBody(kw); bok {
			cx.routeLoop(kw, open, close, op, parts, entries)
		} else {
			cx.routeDoTail(kw, op, parts, entries)
		}
	case token.KwFor:
		cx.routeFor(kw, op, parts, entries)
	}
}

func (cx *Context) routeIf(kw prog.NodeID, op token.Kind, parts []prog.NodeID, entries [][]condEntry) {
	open, close, ok := cx.branchBody(kw)
	if !ok {
		return
	}
	resume := cx.resumeAfterChain(close)
	after := cx.node(close).Next
	hasElse := after != prog.NoNodeID && cx.node(after).Tok == token.KwElse

	// границы else: либо прямой блок, либо хвост цепочки else-if
	var elseOpen, elseClose, elseFrom, elseTo prog.NodeID
	chainTail := false
	if hasElse {
		elseNext := cx.node(after).Next
		switch {
		case elseNext == prog.NoNodeID:
			hasElse = false
		case cx.node(elseNext).Tok == token.LBrace:
			elseOpen, elseClose = elseNext, cx.node(elseNext).Link
			elseFrom, elseTo = cx.node(elseNext).Next, elseClose
		default:
			chainTail = true
			elseFrom = elseNext
			if resume != prog.NoNodeID {
				elseTo = cx.node(resume).Prev
			}
		}
	}

	for i, es := range entries {
		for _, e := range es {
			if op != token.OrOr {
				cx.injectRegion(e.occ, e.whenTrue, parts[i], cx.node(open).Next, close, noteTrue)
			}
			if op != token.AndAnd && hasElse {
				cx.injectRegion(e.occ, e.whenFalse, parts[i], elseFrom, elseTo, noteFalse)
			}
		}
	}

	if resume == prog.NoNodeID {
		return
	}
	end := cx.scopeTailEnd(kw)
	thenEsc := cx.regionEscapes(open, close)
	elseEsc := elseOpen != prog.NoNodeID && cx.regionEscapes(elseOpen, elseClose)

	// ветка без провала дарит хвосту функции дополнение условия
	if thenEsc != elseEsc {
		for i, es := range entries {
			for _, e := range es {
				if thenEsc && op != token.AndAnd {
					cx.injectRegion(e.occ, e.whenFalse, parts[i], resume, end, noteFalse)
				}
				if elseEsc && op != token.OrOr {
					cx.injectRegion(e.occ, e.whenTrue, parts[i], resume, end, noteTrue)
				}
			}
		}
		return
	}
	if thenEsc || op != token.Invalid || chainTail {
		return
	}

	// обе ветви проваливаются: после развилки возможны оба исхода, если
	// ни одна ветвь сущность не переписала
	for _, es := range entries {
		for _, e := range es {
			probe := newEntityAnalyzer(cx, e.occ, value.MakeUninit())
			if cx.regionWrites(probe, open, close) {
				continue
			}
			if elseOpen != prog.NoNodeID && cx.regionWrites(probe, elseOpen, elseClose) {
				continue
			}
			var both []value.Value
			for _, f := range append(append([]value.Value{}, e.whenTrue...), e.whenFalse...) {
				if f.IsImpossible() {
					continue
				}
				f.LowerToPossible()
				f.Flags |= value.FlagConditional
				both = append(both, f)
			}
			cx.injectRegion(e.occ, both, parts[0], resume, end, "condition already checked")
		}
	}
}

// routeLoop handles a condition checked before every iteration. The body
// gets the true edge: each pass through the top of the loop re-established
// it, and the walker stops on writes anyway. The code after the loop gets
// the false edge, unless a break can leave with the condition still true.
func (cx *Context) routeLoop(kw, open, close prog.NodeID, op token.Kind, parts []prog.NodeID, entries [][]condEntry) {
	for i, es := range entries {
		for _, e := range es {
			if op != token.OrOr {
				cx.injectRegion(e.occ, e.whenTrue, parts[i], cx.node(open).Next, close, noteTrue)
			}
		}
	}
	if cx.regionBreaks(open, close) {
		return
	}
	after := cx.node(close).Next
	end := cx.scopeTailEnd(kw)
	for i, es := range entries {
		for _, e := range es {
			if op != token.AndAnd {
				cx.injectRegion(e.occ, e.whenFalse, parts[i], after, end, noteFalse)
			}
		}
	}
}

// routeDoTail handles the trailing condition of do-while: the body already
// ran, so only the loop exit contributes facts.
func (cx *Context) routeDoTail(kw prog.NodeID, op token.Kind, parts []prog.NodeID, entries [][]condEntry) {
	bodyClose := cx.node(kw).Prev
	if bodyClose == prog.NoNodeID || cx.node(bodyClose).Tok != token.RBrace {
		return
	}
	bodyOpen := cx.node(bodyClose).Link
	if bodyOpen == prog.NoNodeID || cx.regionBreaks(bodyOpen, bodyClose) {
		return
	}
	semi := cx.statementEnd(kw)
	if semi == prog.NoNodeID {
		return
	}
	after := cx.node(semi).Next
	end := cx.scopeTailEnd(kw)
	for i, es := range entries {
		for _, e := range es {
			if op != token.AndAnd {
				cx.injectRegion(e.occ, e.whenFalse, parts[i], after, end, noteFalse)
			}
		}
	}
}

func (cx *Context) routeFor(kw prog.NodeID, op token.Kind, parts []prog.NodeID, entries [][]condEntry) {
	lp := cx.node(kw).Next
	if lp == prog.NoNodeID || cx.node(lp).Tok != token.LParen {
		return
	}
	rp := cx.node(lp).Link
	if rp == prog.NoNodeID {
		return
	}
	open := cx.node(rp).Next
	if open == prog.NoNodeID || cx.node(open).Tok != token.LBrace {
		return
	}
	close := cx.node(open).Link
	if close == prog.NoNodeID {
		return
	}
	cx.routeLoop(kw, open, close, op, parts, entries)
}

// handleTernary routes the condition of cond ? a : b into its value arms.
func (cx *Context) handleTernary(q prog.NodeID) {
	n := cx.node(q)
	if n.Right == prog.NoNodeID {
		return
	}
	colon := cx.node(n.Right)
	if colon.Tok != token.Colon || colon.Left == prog.NoNodeID || colon.Right == prog.NoNodeID {
		return
	}
	parts, op, entries, ok := cx.splitCondition(n.Left)
	if !ok {
		return
	}
	tFrom, tTo := cx.subtreeSpan(colon.Left)
	fFrom, fTo := cx.subtreeSpan(colon.Right)
	for i, es := range entries {
		for _, e := range es {
			if op != token.OrOr {
				cx.injectRegion(e.occ, e.whenTrue, parts[i], tFrom, tTo, noteTrue)
			}
			if op != token.AndAnd {
				cx.injectRegion(e.occ, e.whenFalse, parts[i], fFrom, fTo, noteFalse)
			}
		}
	}
}

// handleSwitch pins the switch subject inside each case body. The default
// body learns the complement: none of the case values matched. A label that
// control can fall into from the statements above gets nothing, dispatch is
// no longer the only way in.
func (cx *Context) handleSwitch(sw prog.NodeID) {
	n := cx.node(sw)
	subj := n.Left
	if subj == prog.NoNodeID || !cx.trackableEntity(subj) {
		return
	}
	lp := n.Next
	if lp == prog.NoNodeID || cx.node(lp).Tok != token.LParen {
		return
	}
	rp := cx.node(lp).Link
	if rp == prog.NoNodeID {
		return
	}
	open := cx.node(rp).Next
	if open == prog.NoNodeID || cx.node(open).Tok != token.LBrace {
		return
	}
	close := cx.node(open).Link
	if close == prog.NoNodeID {
		return
	}

	var caseNodes, defaultNodes []prog.NodeID
	depth := 0
	prog.EachStream(cx.Graph, cx.node(open).Next, close, func(id prog.NodeID) bool {
		if id == close {
			return false
		}
		switch cx.node(id).Tok {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		case token.KwCase:
			if depth == 0 {
				caseNodes = append(caseNodes, id)
			}
		case token.KwDefault:
			if depth == 0 {
				defaultNodes = append(defaultNodes, id)
			}
		}
		return true
	})

	var caseVals []int64
	for _, cn := range caseNodes {
		k, ok := cx.Corpus.KnownInt(cx.node(cn).Left)
		if !ok {
			continue
		}
		caseVals = append(caseVals, k)
		if cx.fallsInto(cn) {
			continue
		}
		colon := cx.labelColon(cn)
		if colon == prog.NoNodeID {
			continue
		}
		from, to := cx.caseRegion(colon, close)
		f := rangeFact(value.DomainInt, value.Known, k, value.BoundPoint)
		cx.injectRegion(subj, []value.Value{f}, cn, from, to, "matched case label")
	}
	for _, dn := range defaultNodes {
		if len(caseVals) == 0 || cx.fallsInto(dn) {
			continue
		}
		colon := cx.labelColon(dn)
		if colon == prog.NoNodeID {
			continue
		}
		from, to := cx.caseRegion(colon, close)
		facts := make([]value.Value, 0, len(caseVals))
		for _, k := range caseVals {
			facts = append(facts, rangeFact(value.DomainInt, value.Impossible, k, value.BoundPoint))
		}
		cx.injectRegion(subj, facts, dn, from, to, "no case label matched")
	}
}

// labelColon returns the colon node closing a case or default label.
func (cx *Context) labelColon(label prog.NodeID) prog.NodeID {
	n := cx.node(label)
	at := n.Next
	if n.Tok == token.KwCase && n.Left != prog.NoNodeID {
		_, last := cx.subtreeSpan(n.Left)
		if last == prog.NoNodeID {
			return prog.NoNodeID
		}
		at = cx.node(last).Next
	}
	if at != prog.NoNodeID && cx.node(at).Tok == token.Colon {
		return at
	}
	return prog.NoNodeID
}

// caseRegion spans from a label's colon to the end of its statements: the
// next sibling label or the switch's closing brace. An empty span means the
// section immediately falls through to the next label.
func (cx *Context) caseRegion(colon, close prog.NodeID) (from, to prog.NodeID) {
	from = cx.node(colon).Next
	if from == prog.NoNodeID {
		return prog.NoNodeID, prog.NoNodeID
	}
	var last prog.NodeID
	depth := 0
	prog.EachStream(cx.Graph, from, close, func(id prog.NodeID) bool {
		if id == close {
			return false
		}
		switch cx.node(id).Tok {
		case token.KwCase, token.KwDefault:
			if depth == 0 {
				return false
			}
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
		}
		last = id
		return true
	})
	if last == prog.NoNodeID {
		return prog.NoNodeID, prog.NoNodeID
	}
	return from, last
}

// fallsInto reports whether control can reach the label from the statement
// above it instead of arriving only by switch dispatch.
func (cx *Context) fallsInto(label prog.NodeID) bool {
	id := cx.node(label).Prev
	if id == prog.NoNodeID {
		return false
	}
	switch cx.node(id).Tok {
	case token.LBrace:
		// первая метка после открывающей скобки switch
		return false
	case token.Semicolon:
	default:
		// соседняя метка выше: сквозной провал
		return true
	}
	for id = cx.node(id).Prev; id != prog.NoNodeID; id = cx.node(id).Prev {
		switch cx.node(id).Tok {
		case token.KwBreak, token.KwReturn, token.KwContinue, token.KwGoto:
			return false
		case token.Semicolon, token.LBrace, token.RBrace, token.Colon:
			return true
		}
		if cx.node(id).IsCall() && cx.calleeNeverReturns(id) {
			return false
		}
	}
	return true
}

// regionEscapes reports whether a braced block always leaves the statement:
// its top level ends in return, goto, break or continue, or calls something
// that never comes back. Escapes buried in nested branches do not count,
// those paths may still fall through.
func (cx *Context) regionEscapes(open, close prog.NodeID) bool {
	if open == prog.NoNodeID || close == prog.NoNodeID {
		return false
	}
	depth := 0
	esc := false
	prog.EachStream(cx.Graph, cx.node(open).Next, close, func(id prog.NodeID) bool {
		n := cx.node(id)
		switch n.Tok {
		case token.LBrace:
			depth++
		case token.RBrace:
			if id == close {
				return false
			}
			depth--
		case token.KwReturn, token.KwGoto, token.KwBreak, token.KwContinue:
			if depth == 0 {
				esc = true
				return false
			}
		default:
			if depth == 0 && n.IsCall() && cx.calleeNeverReturns(id) {
				esc = true
				return false
			}
		}
		return true
	})
	return esc
}

// scopeTailEnd bounds after-statement injections to the enclosing scope.
func (cx *Context) scopeTailEnd(kw prog.NodeID) prog.NodeID {
	if s := cx.Table.Scopes.Get(cx.node(kw).Scope); s != nil {
		return s.BodyEnd
	}
	return prog.NoNodeID
}
