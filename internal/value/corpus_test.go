package value

import (
	"testing"

	"vigil/internal/prog"
)

func TestAddFact(t *testing.T) {
	c := NewCorpus(8)
	n := prog.NodeID(3)

	if !c.AddFact(n, MakeInt(5)) {
		t.Fatal("first fact must be added")
	}
	if c.Count() != 1 || len(c.Facts(n)) != 1 {
		t.Fatalf("count = %d, facts = %d", c.Count(), len(c.Facts(n)))
	}
	// Повтор того же утверждения ничего не меняет.
	if c.AddFact(n, MakeInt(5)) {
		t.Error("duplicate must be refused")
	}
	if c.Count() != 1 {
		t.Errorf("count after duplicate = %d", c.Count())
	}
	if !c.AddFact(n, MakeInt(6)) {
		t.Error("a different payload is a new fact")
	}
}

func TestAddFact_KnownIntGoesFirst(t *testing.T) {
	c := NewCorpus(8)
	n := prog.NodeID(1)
	c.AddFact(n, MakeInt(5))
	c.AddFact(n, MakeKnownInt(7))

	facts := c.Facts(n)
	if len(facts) != 2 {
		t.Fatalf("len = %d", len(facts))
	}
	if !facts[0].IsKnown() || facts[0].Int != 7 {
		t.Errorf("known int must be first, got %s", facts[0])
	}
}

func TestAddFact_ConclusiveReplacesInconclusive(t *testing.T) {
	c := NewCorpus(8)
	n := prog.NodeID(1)

	weak := MakeInt(5)
	weak.Kind = Inconclusive
	c.AddFact(n, weak)

	if !c.AddFact(n, MakeInt(5)) {
		t.Fatal("conclusive twin must replace, which counts as a change")
	}
	facts := c.Facts(n)
	if len(facts) != 1 || facts[0].Kind != Possible {
		t.Errorf("facts = %v", facts)
	}
	if c.Count() != 1 {
		t.Errorf("replacement must not grow the count, got %d", c.Count())
	}
}

func TestAddFact_ImpossibleCoexistsWithPossible(t *testing.T) {
	c := NewCorpus(8)
	n := prog.NodeID(1)
	c.AddFact(n, MakeInt(5))
	if !c.AddFact(n, AsImpossible(MakeInt(5))) {
		t.Error("possible 5 and impossible 5 are different claims")
	}
	if c.Count() != 2 {
		t.Errorf("count = %d", c.Count())
	}
}

func TestAddFact_ContradictionDegrades(t *testing.T) {
	c := NewCorpus(8)
	n := prog.NodeID(1)
	c.AddFact(n, MakeKnownInt(5))
	if !c.AddFact(n, MakeKnownInt(7)) {
		t.Fatal("the clashing fact still lands, just weakened")
	}

	facts := c.Facts(n)
	if len(facts) != 2 {
		t.Fatalf("len = %d", len(facts))
	}
	for _, f := range facts {
		if f.IsKnown() {
			t.Errorf("no fact may stay known after a clash: %s", f)
		}
	}
	if c.Contradictions() != 1 {
		t.Errorf("contradictions = %d", c.Contradictions())
	}
	// Совпадающий повтор противоречием не считается.
	c2 := NewCorpus(8)
	c2.AddFact(n, MakeKnownInt(5))
	c2.AddFact(n, MakeKnownInt(5))
	if c2.Contradictions() != 0 {
		t.Errorf("equal knowns are no contradiction, got %d", c2.Contradictions())
	}
}

func TestAddFact_KnownsAtDifferentDepths(t *testing.T) {
	c := NewCorpus(8)
	n := prog.NodeID(1)
	ptr := MakeKnownInt(0)
	pointee := MakeKnownInt(5)
	pointee.Indirect = 1
	c.AddFact(n, ptr)
	c.AddFact(n, pointee)

	if c.Contradictions() != 0 {
		t.Error("facts at different dereference depths describe different objects")
	}
	for _, f := range c.Facts(n) {
		if !f.IsKnown() {
			t.Errorf("fact degraded without cause: %s", f)
		}
	}
}

func TestAddFact_Cap(t *testing.T) {
	c := NewCorpus(8)
	n := prog.NodeID(2)
	for i := 0; i < MaxFactsPerNode; i++ {
		if !c.AddFact(n, MakeInt(int64(i))) {
			t.Fatalf("fact %d must fit under the cap", i)
		}
	}
	if c.AddFact(n, MakeInt(999)) {
		t.Error("fact beyond the cap must be dropped")
	}
	if c.Count() != MaxFactsPerNode {
		t.Errorf("count = %d", c.Count())
	}
}

func TestRemoveFacts(t *testing.T) {
	c := NewCorpus(8)
	n := prog.NodeID(1)
	c.AddFact(n, MakeInt(1))
	c.AddFact(n, MakeInt(2))
	c.AddFact(n, MakeContainerSize(3))

	removed := c.RemoveFacts(n, func(v *Value) bool { return v.IsIntValue() })
	if removed != 2 {
		t.Errorf("removed = %d", removed)
	}
	if c.Count() != 1 || !c.Facts(n)[0].IsContainerSizeValue() {
		t.Errorf("store left in bad shape: count=%d", c.Count())
	}
}

func TestClearFacts(t *testing.T) {
	c := NewCorpus(8)
	c.AddFact(prog.NodeID(1), MakeKnownInt(1))
	c.AddFact(prog.NodeID(2), MakeKnownInt(2))
	c.AddFact(prog.NodeID(2), MakeKnownInt(3))
	if c.Contradictions() != 1 {
		t.Fatalf("setup: contradictions = %d", c.Contradictions())
	}

	c.ClearFacts()
	if c.Count() != 0 || c.Contradictions() != 0 {
		t.Errorf("clear left count=%d contradictions=%d", c.Count(), c.Contradictions())
	}
	if c.HasFacts(prog.NodeID(1)) {
		t.Error("node 1 still has facts after clear")
	}
}

func TestQueries(t *testing.T) {
	c := NewCorpus(8)
	n := prog.NodeID(4)
	c.AddFact(n, MakeInt(5))
	c.AddFact(n, AsImpossible(MakeInt(6)))
	c.AddFact(n, MakeKnownInt(7))

	if f := c.FindInt(n, 5); f == nil || f.Int != 5 {
		t.Error("FindInt(5) failed")
	}
	// Невозможные значения запросом по значению не находятся.
	if f := c.FindInt(n, 6); f != nil {
		t.Errorf("FindInt(6) must skip impossible, got %s", *f)
	}
	if got, ok := c.KnownInt(n); !ok || got != 7 {
		t.Errorf("KnownInt = %d, %v", got, ok)
	}
	if !c.HasKnown(n, DomainInt) || c.HasKnown(n, DomainFloat) {
		t.Error("HasKnown domain filter broken")
	}
	if c.FindInt(prog.NodeID(99), 1) != nil {
		t.Error("out-of-range node must report no facts")
	}
}

func TestCorpusLowerKnown(t *testing.T) {
	c := NewCorpus(8)
	n := prog.NodeID(1)
	c.AddFact(n, MakeKnownInt(5))
	c.LowerKnown(n, -1)
	if _, ok := c.KnownInt(n); ok {
		t.Error("known fact must have degraded")
	}
	if c.FindInt(n, 5) == nil {
		t.Error("the degraded fact must survive as possible")
	}
}
