package value

import "vigil/internal/prog"

// Corpus owns every fact published during one analysis run, keyed by the
// graph node the fact is attached to. Slot 0 stays empty so node ids index
// directly. The whole store is dropped and rebuilt at the start of each run;
// nothing survives across runs.
type Corpus struct {
	facts          [][]Value
	total          int
	contradictions int
}

// NewCorpus creates an empty store. capHint is the expected node count.
func NewCorpus(capHint uint) *Corpus {
	return &Corpus{facts: make([][]Value, 1, capHint+1)}
}

func (c *Corpus) slot(id prog.NodeID) int {
	i := int(id)
	for len(c.facts) <= i {
		c.facts = append(c.facts, nil)
	}
	return i
}

// Facts returns the node's fact list. Возвращаемый slice только для чтения:
// менять факты можно только через методы корпуса.
func (c *Corpus) Facts(id prog.NodeID) []Value {
	if int(id) >= len(c.facts) {
		return nil
	}
	return c.facts[id]
}

// HasFacts reports whether the node carries at least one fact.
func (c *Corpus) HasFacts(id prog.NodeID) bool {
	return int(id) < len(c.facts) && len(c.facts[id]) > 0
}

// Count returns the total number of facts in the store. The fixpoint driver
// compares counts across cycles to detect stabilization.
func (c *Corpus) Count() int { return c.total }

// Contradictions returns how many Known-versus-Known payload clashes the
// store has degraded so far.
func (c *Corpus) Contradictions() int { return c.contradictions }

// AddFact attaches v to the node and reports whether the list changed.
//
// Duplicates of an already-present claim are refused, except that a
// conclusive fact replaces its Inconclusive twin. A Known fact that cannot
// hold together with an existing Known of the same domain signals unsound
// propagation somewhere; both sides degrade to Possible instead of crashing,
// so the store never holds two irreconcilable Known facts of one domain.
func (c *Corpus) AddFact(id prog.NodeID, v Value) bool {
	i := c.slot(id)
	list := c.facts[i]

	if v.IsKnown() {
		for j := range list {
			o := &list[j]
			if o.Domain != v.Domain || !o.IsKnown() {
				continue
			}
			// Разная глубина разыменования описывает разные объекты.
			if o.Indirect != v.Indirect {
				continue
			}
			// Факты разных путей живут в разных вселенных.
			if o.Path != v.Path {
				continue
			}
			if o.EqualPayload(&v) || knownCoexist(o, &v) {
				continue
			}
			o.LowerToPossible()
			v.LowerToPossible()
			c.contradictions++
		}
	}

	if len(list) >= MaxFactsPerNode {
		return false
	}

	for j := range list {
		o := &list[j]
		if o.Domain != v.Domain || o.Path != v.Path {
			continue
		}
		if o.IsImpossible() != v.IsImpossible() {
			continue
		}
		if !o.EqualPayload(&v) {
			continue
		}
		if o.IsInconclusive() && !v.IsInconclusive() && !v.IsImpossible() {
			*o = v
			return true
		}
		// Тот же факт, полученный повторно: сливаем только флаги.
		o.Flags |= v.Flags
		return false
	}

	if v.IsKnown() && v.Domain == DomainInt {
		// Известные целые вперёд: почти все запросы ищут именно их.
		c.facts[i] = append([]Value{v}, list...)
	} else {
		c.facts[i] = append(list, v)
	}
	c.total++
	return true
}

// knownCoexist reports whether two differing Known claims of one domain can
// both hold at once. Relational domains tie the node to another expression
// and any number of ties may be true together. Ranged domains coexist when
// the point sits inside the range or the ranges overlap: condition splitting
// plants a bound next to an exact value all the time.
func knownCoexist(a, b *Value) bool {
	switch a.Domain {
	case DomainSymbolic, DomainTokenRef, DomainLifetime:
		return true
	case DomainInt, DomainContainerSize, DomainBufferSize, DomainIteratorStart, DomainIteratorEnd:
	default:
		return false
	}
	switch {
	case a.Bound == BoundPoint && b.Bound == BoundPoint:
		return false
	case a.Bound == BoundPoint:
		return pointInRange(a.Int, b)
	case b.Bound == BoundPoint:
		return pointInRange(b.Int, a)
	case a.Bound == b.Bound:
		return true
	case a.Bound == BoundLower:
		return a.Int <= b.Int
	default:
		return b.Int <= a.Int
	}
}

func pointInRange(x int64, r *Value) bool {
	if r.Bound == BoundLower {
		return x >= r.Int
	}
	return x <= r.Int
}

// RemoveFacts deletes every fact on the node matching pred and returns how
// many were removed.
func (c *Corpus) RemoveFacts(id prog.NodeID, pred func(*Value) bool) int {
	if int(id) >= len(c.facts) {
		return 0
	}
	list := c.facts[id]
	out := list[:0]
	for j := range list {
		if pred(&list[j]) {
			continue
		}
		out = append(out, list[j])
	}
	removed := len(list) - len(out)
	c.facts[id] = out
	c.total -= removed
	return removed
}

// LowerKnown degrades the node's Known facts to Possible. A negative indirect
// applies to all dereference depths.
func (c *Corpus) LowerKnown(id prog.NodeID, indirect int) {
	if int(id) >= len(c.facts) {
		return
	}
	LowerKnown(c.facts[id], indirect)
}

// ClearFacts drops every fact while keeping the allocated index, ready for
// the next run.
func (c *Corpus) ClearFacts() {
	for i := range c.facts {
		c.facts[i] = nil
	}
	c.total = 0
	c.contradictions = 0
}

// FindInt returns the first non-Impossible Int fact with payload x, or nil.
func (c *Corpus) FindInt(id prog.NodeID, x int64) *Value {
	if int(id) >= len(c.facts) {
		return nil
	}
	list := c.facts[id]
	for j := range list {
		f := &list[j]
		if f.IsIntValue() && !f.IsImpossible() && f.Int == x {
			return f
		}
	}
	return nil
}

// Known returns the node's exact Known fact in the given domain, or nil.
// One-sided Known bounds do not count: callers want the value itself.
func (c *Corpus) Known(id prog.NodeID, d Domain) *Value {
	if int(id) >= len(c.facts) {
		return nil
	}
	list := c.facts[id]
	for j := range list {
		f := &list[j]
		if f.IsKnown() && f.Domain == d && f.Bound == BoundPoint {
			return f
		}
	}
	return nil
}

// KnownInt returns the node's Known integer payload if it has one.
func (c *Corpus) KnownInt(id prog.NodeID) (int64, bool) {
	if f := c.Known(id, DomainInt); f != nil {
		return f.Int, true
	}
	return 0, false
}

// HasKnown reports whether the node carries a Known fact in the domain.
func (c *Corpus) HasKnown(id prog.NodeID, d Domain) bool {
	return c.Known(id, d) != nil
}
