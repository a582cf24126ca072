package valueflow

import (
	"vigil/internal/prog"
	"vigil/internal/symbols"
	"vigil/internal/token"
)

// walkResult says how a walk over a stream region ended.
type walkResult uint8

const (
	walkDone    walkResult = iota // reached the end of the region
	walkStopped                   // entity lost midway
	walkEscaped                   // control left the region: return, break, goto
)

// walker drives an analyzer along the token stream. The walker owns the
// control flow: it discovers branches structurally from the bracket links,
// forks the analyzer into unresolved branches, and merges what comes back.
// Fuel and fork depth come from the context budgets; running out degrades to
// an early stop, never to wrong facts.
type walker struct {
	cx          *Context
	fuel        int
	depth       int
	switchDepth int
	escaping    bool
	wrote       bool
}

// walkForward moves the analyzer from one stream node to another, inclusive,
// publishing through the analyzer at every occurrence it still trusts.
func (cx *Context) walkForward(a Analyzer, from, to prog.NodeID) walkResult {
	w := &walker{cx: cx, fuel: cx.Budgets.WalkNodes, depth: cx.Budgets.BranchDepth}
	return w.forward(a, from, to)
}

// walkReverse moves the analyzer backward from a stream node, publishing at
// occurrences encountered before the nearest write.
func (cx *Context) walkReverse(a Analyzer, from, to prog.NodeID) walkResult {
	w := &walker{cx: cx, fuel: cx.Budgets.WalkNodes, depth: cx.Budgets.BranchDepth}
	return w.reverse(a, from, to)
}

func (w *walker) forward(a Analyzer, from, to prog.NodeID) walkResult {
	id := from
	for id != prog.NoNodeID {
		if a.Invalid() {
			return walkStopped
		}
		if w.fuel <= 0 {
			w.cx.Bailout(id, "walk exceeds node budget")
			return walkStopped
		}
		w.fuel--
		n := w.cx.node(id)
		advance := n.Next

		switch n.Tok {
		case token.KwIf:
			adv, res, stop := w.stepIf(a, id, n)
			if stop {
				return res
			}
			advance = adv
		case token.KwWhile:
			adv, res, stop := w.stepWhile(a, id, n)
			if stop {
				return res
			}
			advance = adv
		case token.KwDo:
			adv, res, stop := w.stepDo(a, id, n)
			if stop {
				return res
			}
			advance = adv
		case token.KwFor:
			adv, res, stop := w.stepFor(a, id, n)
			if stop {
				return res
			}
			advance = adv
		case token.KwSwitch:
			adv, res, stop := w.stepSwitch(a, id, n)
			if stop {
				return res
			}
			advance = adv
		case token.KwElse:
			// Сюда попадает только поток, выполнивший then-ветвь.
			advance = w.cx.skipElseChain(id)
		case token.KwReturn, token.KwGoto:
			w.escaping = true
		case token.KwBreak:
			if w.switchDepth == 0 {
				return walkEscaped
			}
		case token.KwContinue:
			return walkEscaped
		case token.Semicolon:
			if w.escaping {
				w.escaping = false
				return walkEscaped
			}
		default:
			if w.cx.isLabel(id, n) {
				// goto может привести сюда из любого места
				w.cx.Bailout(id, "control may enter through label")
				return walkStopped
			}
			if n.IsCall() && w.cx.calleeNeverReturns(id) {
				w.escaping = true
			}
			if act := a.Classify(id, Forward); act != ActNone {
				if act.Has(ActInvalidate) || (act.Has(ActWrite) && !act.Has(ActIdempotent)) {
					w.wrote = true
				}
				a.Update(id, act, Forward)
				if a.Invalid() {
					return walkStopped
				}
			}
		}

		if id == to {
			return walkDone
		}
		id = advance
	}
	return walkDone
}

// stepIf handles an if statement. The then and else regions are walked by
// forks carrying the assumed condition; the main analyzer resumes after the
// chain with whatever both branches left standing. A branch that escapes
// gives the main analyzer the complementary condition outright.
func (w *walker) stepIf(a Analyzer, id prog.NodeID, n *prog.Node) (prog.NodeID, walkResult, bool) {
	cond := n.Left
	open, close, ok := w.cx.branchBody(id)
	if !ok {
		return prog.NoNodeID, walkStopped, true
	}
	after := w.cx.node(close).Next
	resume := w.cx.resumeAfterChain(close)

	if x, known := a.Evaluate(cond); known {
		if x != 0 {
			// Then-ветвь исполняется: идём внутрь как по прямой; KwElse
			// в потоке потом перепрыгнет свой блок сам.
			return n.Next, walkDone, false
		}
		if after != prog.NoNodeID && w.cx.node(after).Tok == token.KwElse {
			// Мимо KwElse сразу в тело else.
			return w.cx.node(after).Next, walkDone, false
		}
		return resume, walkDone, false
	}

	if w.depth <= 0 {
		w.cx.Bailout(id, "branch nesting exceeds fork budget")
		a.Lower()
		return resume, walkDone, false
	}
	w.depth--
	defer func() { w.depth++ }()

	ft := a.Fork()
	ft.Assume(cond, true, false)
	var resThen walkResult
	wroteThen := false
	if ft.ShouldDescend(open) {
		resThen, wroteThen = w.sub(ft, w.cx.node(open).Next, close)
	} else {
		wroteThen = true
	}

	hasElse := after != prog.NoNodeID && w.cx.node(after).Tok == token.KwElse
	if !hasElse {
		switch {
		case resThen == walkStopped:
			return prog.NoNodeID, walkStopped, true
		case resThen == walkEscaped:
			// Дальше идут только пути с ложным условием.
			a.Assume(cond, false, false)
		case wroteThen:
			a.Lower()
		}
		return resume, walkDone, false
	}

	fe := a.Fork()
	fe.Assume(cond, false, false)
	var resElse walkResult
	wroteElse := false
	elseNext := w.cx.node(after).Next
	if elseNext == prog.NoNodeID {
		return prog.NoNodeID, walkStopped, true
	}
	if w.cx.node(elseNext).Tok == token.KwIf {
		// Цепочка else-if: весь хвост разбирает форк ложной ветви,
		// останавливаясь на последней закрывающей скобке цепочки.
		chainEnd := prog.NoNodeID
		if resume != prog.NoNodeID {
			chainEnd = w.cx.node(resume).Prev
		}
		resElse, wroteElse = w.sub(fe, elseNext, chainEnd)
	} else {
		elseClose := w.cx.node(elseNext).Link
		if fe.ShouldDescend(elseNext) {
			resElse, wroteElse = w.sub(fe, w.cx.node(elseNext).Next, elseClose)
		} else {
			wroteElse = true
		}
	}

	if resThen == walkStopped || resElse == walkStopped {
		return prog.NoNodeID, walkStopped, true
	}
	switch {
	case resThen == walkEscaped && resElse == walkEscaped:
		return prog.NoNodeID, walkEscaped, true
	case resThen == walkEscaped:
		a.Assume(cond, false, false)
		if wroteElse {
			a.Lower()
		}
	case resElse == walkEscaped:
		a.Assume(cond, true, false)
		if wroteThen {
			a.Lower()
		}
	default:
		if wroteThen && wroteElse {
			return prog.NoNodeID, walkStopped, true
		}
		if wroteThen || wroteElse {
			a.Lower()
		}
	}
	return resume, walkDone, false
}

// stepWhile handles a while loop head. A body that writes the entity makes
// everything after the loop a guess; an untouched body is explored by a fork
// under the assumed condition while the main analyzer steps over.
func (w *walker) stepWhile(a Analyzer, id prog.NodeID, n *prog.Node) (prog.NodeID, walkResult, bool) {
	cond := n.Left
	open, close, ok := w.cx.branchBody(id)
	if !ok {
		// Хвостовой while у do-while: условие читается по прямой.
		return n.Next, walkDone, false
	}
	lp := n.Next
	rp := w.cx.node(lp).Link
	resume := w.cx.node(close).Next

	if x, known := a.Evaluate(cond); known && x == 0 {
		// Тело не исполнится, но условие вычисляется один раз.
		if res, _ := w.sub(a, w.cx.node(lp).Next, rp); res != walkDone || a.Invalid() {
			return prog.NoNodeID, walkStopped, true
		}
		return resume, walkDone, false
	}
	if w.cx.regionWrites(a, lp, close) {
		a.Lower()
		return resume, walkDone, false
	}
	if w.depth > 0 {
		w.depth--
		savedSwitch := w.switchDepth
		w.switchDepth = 0
		ft := a.Fork()
		ft.Assume(cond, true, false)
		w.sub(ft, w.cx.node(lp).Next, close)
		w.switchDepth = savedSwitch
		w.depth++
	}
	if x, known := a.Evaluate(cond); known && x != 0 {
		// Вечный цикл: после него поток идёт только через break.
		if !w.cx.regionBreaks(open, close) {
			return prog.NoNodeID, walkEscaped, true
		}
		return resume, walkDone, false
	}
	if !w.cx.regionBreaks(open, close) {
		a.Assume(cond, false, false)
	}
	return resume, walkDone, false
}

// stepDo handles do-while. The body runs at least once, so a writing body
// ends the walk outright; an untouched body and its trailing condition are
// ordinary straight-line code.
func (w *walker) stepDo(a Analyzer, id prog.NodeID, n *prog.Node) (prog.NodeID, walkResult, bool) {
	open := n.Next
	if open == prog.NoNodeID || w.cx.node(open).Tok != token.LBrace {
		return prog.NoNodeID, walkStopped, true
	}
	close := w.cx.node(open).Link
	if close == prog.NoNodeID {
		return prog.NoNodeID, walkStopped, true
	}
	end := w.cx.statementEnd(close)
	if end == prog.NoNodeID {
		end = close
	}
	if w.cx.regionWrites(a, open, end) {
		// Каждая итерация переписывает сущность заново.
		return prog.NoNodeID, walkStopped, true
	}
	return n.Next, walkDone, false
}

// stepFor handles a for loop. The init clause runs once inline; condition,
// step and body are explored by a fork when nothing in them writes the
// entity.
func (w *walker) stepFor(a Analyzer, id prog.NodeID, n *prog.Node) (prog.NodeID, walkResult, bool) {
	lp := n.Next
	if lp == prog.NoNodeID || w.cx.node(lp).Tok != token.LParen {
		return prog.NoNodeID, walkStopped, true
	}
	rp := w.cx.node(lp).Link
	if rp == prog.NoNodeID {
		// незакрытая скобка заголовка: парсер не спарил её
		return prog.NoNodeID, walkStopped, true
	}
	open := w.cx.node(rp).Next
	if open == prog.NoNodeID || w.cx.node(open).Tok != token.LBrace {
		return prog.NoNodeID, walkStopped, true
	}
	close := w.cx.node(open).Link
	if close == prog.NoNodeID {
		return prog.NoNodeID, walkStopped, true
	}
	resume := w.cx.node(close).Next
	cond := n.Left

	initEnd := w.cx.statementEnd(w.cx.node(lp).Next)
	if initEnd != prog.NoNodeID && initEnd < rp {
		res, _ := w.sub(a, w.cx.node(lp).Next, initEnd)
		if res != walkDone || a.Invalid() {
			return prog.NoNodeID, walkStopped, true
		}
	} else {
		initEnd = lp
	}

	if w.cx.regionWrites(a, w.cx.node(initEnd).Next, close) {
		a.Lower()
		return resume, walkDone, false
	}
	if w.depth > 0 && cond != prog.NoNodeID {
		w.depth--
		savedSwitch := w.switchDepth
		w.switchDepth = 0
		ft := a.Fork()
		ft.Assume(cond, true, false)
		w.sub(ft, w.cx.node(initEnd).Next, close)
		w.switchDepth = savedSwitch
		w.depth++
	}
	if cond == prog.NoNodeID {
		if !w.cx.regionBreaks(open, close) {
			return prog.NoNodeID, walkEscaped, true
		}
		return resume, walkDone, false
	}
	if !w.cx.regionBreaks(open, close) {
		a.Assume(cond, false, false)
	}
	return resume, walkDone, false
}

// stepSwitch handles a switch. The selector runs once inline. Case bodies
// run at most once each, so with the entity untouched a single fork may
// publish into all of them; breaks inside the switch are inert for that
// fork.
func (w *walker) stepSwitch(a Analyzer, id prog.NodeID, n *prog.Node) (prog.NodeID, walkResult, bool) {
	lp := n.Next
	if lp == prog.NoNodeID || w.cx.node(lp).Tok != token.LParen {
		return prog.NoNodeID, walkStopped, true
	}
	rp := w.cx.node(lp).Link
	if rp == prog.NoNodeID {
		return prog.NoNodeID, walkStopped, true
	}
	open := w.cx.node(rp).Next
	if open == prog.NoNodeID || w.cx.node(open).Tok != token.LBrace {
		return prog.NoNodeID, walkStopped, true
	}
	close := w.cx.node(open).Link
	if close == prog.NoNodeID {
		return prog.NoNodeID, walkStopped, true
	}
	resume := w.cx.node(close).Next

	if res, _ := w.sub(a, w.cx.node(lp).Next, rp); res != walkDone || a.Invalid() {
		return prog.NoNodeID, walkStopped, true
	}

	if w.cx.regionWrites(a, open, close) {
		a.Lower()
		return resume, walkDone, false
	}
	if w.depth > 0 {
		w.depth--
		ft := a.Fork()
		w.switchDepth++
		w.sub(ft, w.cx.node(open).Next, close)
		w.switchDepth--
		w.depth++
	}
	return resume, walkDone, false
}

// sub runs a nested region walk tracking whether the entity was written
// inside it. Writes inside nested branches count toward the enclosing
// region.
func (w *walker) sub(a Analyzer, from, to prog.NodeID) (walkResult, bool) {
	saved := w.wrote
	savedEsc := w.escaping
	w.wrote = false
	w.escaping = false
	res := w.forward(a, from, to)
	wrote := w.wrote
	if res == walkStopped {
		wrote = true
	}
	w.wrote = saved || wrote
	w.escaping = savedEsc
	return res, wrote
}

// branchBody finds the body braces of an if/while head: keyword, '(',
// matched ')', then the opening brace the parser guarantees for controlled
// blocks.
func (cx *Context) branchBody(kw prog.NodeID) (open, close prog.NodeID, ok bool) {
	n := cx.node(kw)
	lp := n.Next
	if lp == prog.NoNodeID || cx.node(lp).Tok != token.LParen {
		return 0, 0, false
	}
	rp := cx.node(lp).Link
	if rp == prog.NoNodeID {
		return 0, 0, false
	}
	open = cx.node(rp).Next
	if open == prog.NoNodeID || cx.node(open).Tok != token.LBrace {
		return 0, 0, false
	}
	close = cx.node(open).Link
	if close == prog.NoNodeID {
		return 0, 0, false
	}
	return open, close, true
}

// resumeAfterChain returns the first node after an entire if/else-if/else
// chain, given the closing brace of its first block.
func (cx *Context) resumeAfterChain(close prog.NodeID) prog.NodeID {
	id := cx.node(close).Next
	for id != prog.NoNodeID && cx.node(id).Tok == token.KwElse {
		id = cx.skipElseChain(id)
	}
	return id
}

// skipElseChain jumps from a KwElse node to the first node after the block
// or nested if it introduces.
func (cx *Context) skipElseChain(elseKw prog.NodeID) prog.NodeID {
	next := cx.node(elseKw).Next
	if next == prog.NoNodeID {
		return prog.NoNodeID
	}
	n := cx.node(next)
	switch n.Tok {
	case token.LBrace:
		if n.Link == prog.NoNodeID {
			return prog.NoNodeID
		}
		return cx.node(n.Link).Next
	case token.KwIf:
		_, close, ok := cx.branchBody(next)
		if !ok {
			return prog.NoNodeID
		}
		return cx.node(close).Next
	default:
		return prog.NoNodeID
	}
}

// regionWrites reports whether the analyzer's entity is written anywhere in
// the stream region.
func (cx *Context) regionWrites(a Analyzer, from, to prog.NodeID) bool {
	wrote := false
	prog.EachStream(cx.Graph, from, to, func(id prog.NodeID) bool {
		act := a.Classify(id, Forward)
		if act.Has(ActInvalidate) || (act.Has(ActWrite) && !act.Has(ActIdempotent)) {
			wrote = true
			return false
		}
		return true
	})
	return wrote
}

// regionBreaks reports whether any break occurs in the stream region.
// Breaks of nested constructs count too; callers only lose an after-loop
// refinement to that.
func (cx *Context) regionBreaks(from, to prog.NodeID) bool {
	found := false
	prog.EachStream(cx.Graph, from, to, func(id prog.NodeID) bool {
		if cx.node(id).Tok == token.KwBreak {
			found = true
			return false
		}
		return true
	})
	return found
}

// isLabel reports a goto label: a bare statement-position identifier
// followed by a colon.
func (cx *Context) isLabel(id prog.NodeID, n *prog.Node) bool {
	if !n.IsName() || n.Parent != prog.NoNodeID || n.Var != prog.NoVarID {
		return false
	}
	next := cx.node(n.Next)
	if next == nil || next.Tok != token.Colon || next.Kind == prog.NodeOp {
		return false
	}
	prev := cx.node(n.Prev)
	if prev == nil {
		return true
	}
	switch prev.Tok {
	case token.Semicolon, token.LBrace, token.RBrace, token.Colon:
		return true
	default:
		return false
	}
}

// calleeNeverReturns checks the library and the symbol table for a noreturn
// callee at the call node.
func (cx *Context) calleeNeverReturns(call prog.NodeID) bool {
	name := prog.CalleeName(cx.Graph, call)
	if name == "" {
		return false
	}
	if cx.Library.IsNoReturn(name) {
		return true
	}
	cal := prog.Callee(cx.Graph, call)
	if cal == prog.NoNodeID {
		return false
	}
	if fid := cx.node(cal).Func; fid != prog.NoFuncID {
		if f := cx.Table.Funcs.Get(fid); f != nil && f.Flags&symbols.FuncFlagNoReturn != 0 {
			return true
		}
	}
	return false
}

// reverse walks backward from a node, publishing at entity occurrences until
// a write or a control-flow boundary makes the value unknowable earlier.
func (w *walker) reverse(a Analyzer, from, to prog.NodeID) walkResult {
	id := from
	for id != prog.NoNodeID {
		if a.Invalid() {
			return walkStopped
		}
		if w.fuel <= 0 {
			w.cx.Bailout(id, "walk exceeds node budget")
			return walkStopped
		}
		w.fuel--
		n := w.cx.node(id)
		advance := n.Prev

		switch {
		case n.Tok == token.LBrace:
			// Начало блока: раньше него значение пришло из развилки.
			return walkDone
		case n.Tok == token.RBrace:
			// Целый блок перешагиваем, только если он не трогает сущность.
			if n.Link == prog.NoNodeID || w.cx.regionWrites(a, n.Link, id) {
				return walkDone
			}
			advance = w.cx.node(n.Link).Prev
		case n.Tok == token.Colon && n.Kind != prog.NodeOp:
			// Метка или case: поток мог прийти не только сверху.
			return walkDone
		case n.Tok == token.KwCase || n.Tok == token.KwDefault || n.Tok == token.KwGoto:
			return walkDone
		default:
			if act := a.Classify(id, Reverse); act != ActNone {
				a.Update(id, act, Reverse)
				if a.Invalid() {
					return walkStopped
				}
			}
		}

		if id == to {
			return walkDone
		}
		id = advance
	}
	return walkDone
}
