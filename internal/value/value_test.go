package value

import (
	"testing"

	"vigil/internal/prog"
)

func TestConstructors(t *testing.T) {
	v := MakeKnownInt(42)
	if v.Domain != DomainInt || v.Kind != Known || v.Int != 42 || v.Bound != BoundPoint {
		t.Errorf("MakeKnownInt(42) = %s", v)
	}
	if p := MakeInt(7); p.Kind != Possible {
		t.Errorf("MakeInt must start possible, got %s", p.Kind)
	}
	s := MakeSymbolic(prog.NodeID(3), 2)
	if s.Domain != DomainSymbolic || s.Ref != 3 || s.Int != 2 {
		t.Errorf("MakeSymbolic = %s", s)
	}
	lt := MakeLifetime(prog.NodeID(9), LifetimeAddress, LifetimeScopeLocal)
	if !lt.IsLifetimeValue() || !lt.IsLocalLifetime() || lt.LifetimeKind != LifetimeAddress {
		t.Errorf("MakeLifetime = %s", lt)
	}
	if m := MakeMoved(Moved); m.MoveKind != Moved || !m.IsMovedValue() {
		t.Errorf("MakeMoved = %s", m)
	}
	if u := MakeUninit(); !u.IsUninitValue() {
		t.Errorf("MakeUninit = %s", u)
	}
}

func TestEqualPayload(t *testing.T) {
	a := MakeInt(5)
	b := MakeKnownInt(5)
	if !a.EqualPayload(&b) {
		t.Error("payload equality must ignore kind")
	}
	cSize := MakeContainerSize(5)
	if a.EqualPayload(&cSize) {
		t.Error("different domains never compare equal")
	}
	c := MakeInt(6)
	if a.EqualPayload(&c) {
		t.Error("5 != 6")
	}

	f1 := MakeFloat(1.5)
	f2 := MakeFloat(1.5)
	f3 := MakeFloat(2.5)
	if !f1.EqualPayload(&f2) || f1.EqualPayload(&f3) {
		t.Error("float payload comparison broken")
	}

	r1 := MakeTokenRef(prog.NodeID(4))
	r2 := MakeTokenRef(prog.NodeID(4))
	r3 := MakeTokenRef(prog.NodeID(5))
	if !r1.EqualPayload(&r2) || r1.EqualPayload(&r3) {
		t.Error("tok payload must compare the referenced node")
	}

	u1, u2 := MakeUninit(), MakeUninit()
	if !u1.EqualPayload(&u2) {
		t.Error("uninit facts carry no payload and always match")
	}

	m1, m2 := MakeMoved(Moved), MakeMoved(Forwarded)
	if m1.EqualPayload(&m2) {
		t.Error("moved и forwarded — разные факты")
	}
}

func TestEqualPayload_Symbolic(t *testing.T) {
	// Один и тот же узел, одна дельта.
	s1 := MakeSymbolic(prog.NodeID(4), 1)
	s2 := MakeSymbolic(prog.NodeID(4), 1)
	if !s1.EqualPayload(&s2) {
		t.Error("same ref, same delta must match")
	}
	s3 := MakeSymbolic(prog.NodeID(4), 2)
	if s1.EqualPayload(&s3) {
		t.Error("different delta must not match")
	}
	// Разные узлы одного выражения сравниваются по структурному ключу.
	s4 := MakeSymbolic(prog.NodeID(7), 1)
	s4.RefExpr = prog.ExprKey(12)
	s5 := MakeSymbolic(prog.NodeID(8), 1)
	s5.RefExpr = prog.ExprKey(12)
	if !s4.EqualPayload(&s5) {
		t.Error("matching expr keys must make symbolic facts equal")
	}
	s6 := MakeSymbolic(prog.NodeID(8), 1)
	s6.RefExpr = prog.ExprKey(13)
	if s4.EqualPayload(&s6) {
		t.Error("different expr keys must not match")
	}
	// Без ключей остаётся только идентичность узла.
	s7 := MakeSymbolic(prog.NodeID(7), 1)
	s8 := MakeSymbolic(prog.NodeID(8), 1)
	if s7.EqualPayload(&s8) {
		t.Error("no keys, different nodes: not equal")
	}
}

func TestInvertRange(t *testing.T) {
	// "может быть <= 10" переворачивается в ">= 11 невозможно".
	v := MakeInt(10)
	v.Bound = BoundUpper
	v.InvertRange()
	if v.Kind != Impossible || v.Bound != BoundLower || v.Int != 11 {
		t.Errorf("invert of possible upper 10 = %s", v)
	}
	v.InvertRange()
	if v.Kind != Possible || v.Bound != BoundUpper || v.Int != 10 {
		t.Errorf("double invert must restore, got %s", v)
	}

	p := MakeInt(5)
	p.InvertRange()
	if p.Kind != Impossible || p.Bound != BoundPoint || p.Int != 5 {
		t.Errorf("invert of point 5 = %s", p)
	}
}

func TestAsImpossible(t *testing.T) {
	// Известное "x >= 11" становится невозможным "x <= 10".
	v := MakeKnownInt(11)
	v.Bound = BoundLower
	imp := AsImpossible(v)
	if imp.Kind != Impossible || imp.Bound != BoundUpper || imp.Int != 10 {
		t.Errorf("AsImpossible(known lower 11) = %s", imp)
	}
	if v.Kind != Known || v.Int != 11 {
		t.Errorf("input must stay untouched, got %s", v)
	}
}

func TestLowerToPossible(t *testing.T) {
	v := MakeKnownInt(1)
	v.LowerToPossible()
	if v.Kind != Possible {
		t.Errorf("known must degrade, got %s", v.Kind)
	}
	imp := AsImpossible(MakeInt(1))
	imp.LowerToPossible()
	if imp.Kind != Impossible {
		t.Errorf("impossible must keep its kind, got %s", imp.Kind)
	}
}

func TestCombined_Kind(t *testing.T) {
	known := MakeKnownInt(1)
	possible := MakeInt(2)
	inconclusive := MakeInt(3)
	inconclusive.Kind = Inconclusive
	impossible := AsImpossible(MakeInt(4))

	cases := []struct {
		name string
		a, b *Value
		want Kind
	}{
		{"known+known", &known, &known, Known},
		{"known+possible", &known, &possible, Possible},
		{"possible+inconclusive", &possible, &inconclusive, Inconclusive},
		{"known+impossible", &known, &impossible, Impossible},
		{"impossible+inconclusive", &impossible, &inconclusive, Impossible},
	}
	for _, tc := range cases {
		if got := Combined(tc.a, tc.b); got.Kind != tc.want {
			t.Errorf("%s: kind = %s, want %s", tc.name, got.Kind, tc.want)
		}
	}
}

func TestCombined_Properties(t *testing.T) {
	a := MakeKnownInt(3)
	a.AddStep(prog.NodeID(1), "assigned 3")
	a.Condition = prog.NodeID(10)
	a.Flags |= FlagSafe
	b := MakeKnownInt(4)
	b.AddStep(prog.NodeID(2), "assigned 4")

	r := Combined(&a, &b)
	if len(r.Explanation) != 2 {
		t.Fatalf("trails must concatenate, got %d steps", len(r.Explanation))
	}
	if r.Explanation[0].Node != 1 || r.Explanation[1].Node != 2 {
		t.Error("trail order must be left then right")
	}
	if r.Condition != 10 {
		t.Errorf("condition backref lost: %d", r.Condition)
	}
	if !r.Flags.Has(FlagSafe) {
		t.Error("safe flag must survive combination")
	}
}

func TestCombined_SymbolicInfects(t *testing.T) {
	sym := MakeSymbolic(prog.NodeID(5), 0)
	num := MakeKnownInt(3)
	r := Combined(&num, &sym)
	if r.Domain != DomainSymbolic || r.Ref != 5 {
		t.Errorf("number + symbol must stay symbolic, got %s", r)
	}
	it := MakeIteratorEnd(0)
	r = Combined(&it, &num)
	if r.Domain != DomainIteratorEnd {
		t.Errorf("iterator + number must stay iterator, got %s", r)
	}
}

func TestCombined_BoundAndPath(t *testing.T) {
	point := MakeKnownInt(1)
	lower := MakeInt(2)
	lower.Bound = BoundLower
	r := Combined(&point, &lower)
	if r.Bound != BoundLower {
		t.Errorf("point+lower = %s bound, want lower", r.Bound)
	}

	p1 := MakeInt(1)
	p1.Path = 3
	p0 := MakeInt(2)
	r = Combined(&p0, &p1)
	if r.Path != 3 {
		t.Errorf("non-zero path must win, got %d", r.Path)
	}
}

func TestCompatible(t *testing.T) {
	a := MakeInt(1)
	b := MakeInt(2)
	if !Compatible(&a, &b) {
		t.Error("plain ints are compatible")
	}
	a.Path, b.Path = 1, 2
	if Compatible(&a, &b) {
		t.Error("different non-zero paths must never combine")
	}
	b.Path = 0
	if !Compatible(&a, &b) {
		t.Error("zero path combines with anything")
	}
	s1 := MakeSymbolic(prog.NodeID(1), 0)
	s2 := MakeSymbolic(prog.NodeID(2), 0)
	if Compatible(&s1, &s2) {
		t.Error("two symbolic operands have no computable result")
	}
	i1 := MakeIteratorStart(0)
	i2 := MakeIteratorEnd(0)
	if Compatible(&i1, &i2) {
		t.Error("two iterator operands must not combine")
	}
}

func TestBulkKindOps(t *testing.T) {
	facts := []Value{MakeKnownInt(1), MakeInt(2), MakeKnownInt(3)}
	facts[2].Indirect = 1

	LowerKnown(facts, 0)
	if facts[0].Kind != Possible {
		t.Error("depth-0 known must degrade")
	}
	if facts[2].Kind != Known {
		t.Error("depth-1 fact must survive a depth-0 lowering")
	}
	LowerKnown(facts, -1)
	if facts[2].Kind != Possible {
		t.Error("negative indirect lowers every depth")
	}

	facts = []Value{MakeInt(4), MakeInt(5)}
	facts[1].Bound = BoundLower
	RaisePossible(facts, -1)
	if facts[0].Kind != Known {
		t.Error("possible point fact must rise to known")
	}
	if facts[1].Kind != Possible {
		t.Error("range facts never rise to known")
	}
}

func TestRemoveImpossible(t *testing.T) {
	facts := []Value{MakeInt(1), AsImpossible(MakeInt(2)), MakeInt(3)}
	facts = RemoveImpossible(facts, -1)
	if len(facts) != 2 || facts[0].Int != 1 || facts[1].Int != 3 {
		t.Errorf("filter broken: %v", facts)
	}
}

func TestAddStep_NoSharedTail(t *testing.T) {
	base := MakeInt(1)
	base.AddStep(prog.NodeID(1), "start")

	left := base
	right := base
	left.AddStep(prog.NodeID(2), "left branch")
	right.AddStep(prog.NodeID(3), "right branch")

	if left.Explanation[1].Text != "left branch" {
		t.Errorf("left trail clobbered: %q", left.Explanation[1].Text)
	}
	if right.Explanation[1].Text != "right branch" {
		t.Errorf("right trail clobbered: %q", right.Explanation[1].Text)
	}
}

func TestValueString(t *testing.T) {
	v := MakeKnownInt(42)
	if got := v.String(); got != "known int 42" {
		t.Errorf("String() = %q", got)
	}
	imp := Value{Domain: DomainInt, Kind: Impossible, Bound: BoundUpper, Int: 10}
	if got := imp.String(); got != "impossible int 10 upper" {
		t.Errorf("String() = %q", got)
	}
	m := MakeMoved(Forwarded)
	if got := m.String(); got != "possible moved forwarded" {
		t.Errorf("String() = %q", got)
	}
}
