package valueflow

import "vigil/internal/prog"

// multiAnalyzer drives several entity analyzers through one walk. Injecting
// a call site's arguments into a callee body tracks every parameter at
// once; walking the body once per parameter would multiply the cost and
// lose cross-parameter condition evaluation.
type multiAnalyzer struct {
	cx   *Context
	subs []*entityAnalyzer
}

func newMultiAnalyzer(cx *Context, subs []*entityAnalyzer) *multiAnalyzer {
	return &multiAnalyzer{cx: cx, subs: subs}
}

// Invalid reports whether the walk still serves anyone.
func (m *multiAnalyzer) Invalid() bool {
	for _, s := range m.subs {
		if !s.Invalid() {
			return false
		}
	}
	return true
}

// Classify merges the member verdicts so the walker knows whether the node
// matters at all. Update re-derives the action per member, a node can be a
// read for one parameter and a write for another.
func (m *multiAnalyzer) Classify(id prog.NodeID, dir Direction) Action {
	act := ActNone
	for _, s := range m.subs {
		if !s.Invalid() {
			act |= s.Classify(id, dir)
		}
	}
	return act
}

func (m *multiAnalyzer) Update(id prog.NodeID, _ Action, dir Direction) {
	for _, s := range m.subs {
		if s.Invalid() {
			continue
		}
		if act := s.Classify(id, dir); act != ActNone {
			s.Update(id, act, dir)
		}
	}
}

func (m *multiAnalyzer) Evaluate(id prog.NodeID) (int64, bool) {
	for _, s := range m.subs {
		if s.Invalid() {
			continue
		}
		if x, ok := s.Evaluate(id); ok {
			return x, true
		}
	}
	return 0, false
}

func (m *multiAnalyzer) Assume(cond prog.NodeID, truth, quiet bool) {
	for _, s := range m.subs {
		if !s.Invalid() {
			s.Assume(cond, truth, quiet)
		}
	}
	if !quiet {
		m.adopt(cond, truth)
	}
}

// adopt forks new entities mid-walk: a branch hypothesis that pins a value
// for a variable the batch does not track yet becomes a fresh member, so the
// callee's own tests refine the argument binding they ride in on. New members
// share the batch path tag, их факты не смешиваются с другими вызовами.
func (m *multiAnalyzer) adopt(cond prog.NodeID, truth bool) {
	path := int64(0)
	for _, s := range m.subs {
		if !s.Invalid() {
			path = s.val.Path
			break
		}
	}
	if path == 0 {
		// без общей метки пути новая гипотеза смешалась бы с чужими вызовами
		return
	}
	for _, e := range m.cx.conditionEntries(cond) {
		if m.tracks(e.occ) {
			continue
		}
		facts := e.whenTrue
		note := noteTrue
		if !truth {
			facts = e.whenFalse
			note = noteFalse
		}
		for _, f := range facts {
			f.Path = path
			f.Condition = cond
			f.AddStep(cond, note)
			m.subs = append(m.subs, newEntityAnalyzer(m.cx, e.occ, f))
		}
	}
}

// tracks reports whether some member already follows the entity at occ.
func (m *multiAnalyzer) tracks(occ prog.NodeID) bool {
	n := m.cx.node(occ)
	if n == nil {
		return true
	}
	for _, s := range m.subs {
		if s.v != prog.NoVarID && n.IsName() && s.v == n.Var {
			return true
		}
		if s.v == prog.NoVarID && s.key != prog.NoExprKey && s.key == n.Expr {
			return true
		}
	}
	return false
}

func (m *multiAnalyzer) ShouldDescend(open prog.NodeID) bool {
	for _, s := range m.subs {
		if !s.Invalid() && s.ShouldDescend(open) {
			return true
		}
	}
	return false
}

func (m *multiAnalyzer) Lower() {
	for _, s := range m.subs {
		if !s.Invalid() {
			s.Lower()
		}
	}
}

func (m *multiAnalyzer) Fork() Analyzer {
	subs := make([]*entityAnalyzer, len(m.subs))
	for i, s := range m.subs {
		subs[i] = s.Fork().(*entityAnalyzer)
	}
	return &multiAnalyzer{cx: m.cx, subs: subs}
}
