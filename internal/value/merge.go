package value

// CombineTrails concatenates two derivation trails into a fresh slice so the
// result never aliases either input.
func CombineTrails(a, b []Step) []Step {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]Step, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Combined merges the bookkeeping of two operand facts into the shell of a
// result fact: the weakest kind wins, trails concatenate, the reference and
// condition come from whichever side carries one. The caller is responsible
// for the payload math and for checking path compatibility beforehand.
func Combined(a, b *Value) Value {
	var r Value
	switch {
	case a.IsKnown() && b.IsKnown():
		r.Kind = Known
	case a.IsImpossible() || b.IsImpossible():
		r.Kind = Impossible
	case a.IsInconclusive() || b.IsInconclusive():
		r.Kind = Inconclusive
	default:
		r.Kind = Possible
	}
	if a.Ref != 0 {
		r.Ref, r.RefExpr = a.Ref, a.RefExpr
	} else if b.Ref != 0 {
		r.Ref, r.RefExpr = b.Ref, b.RefExpr
	}
	// Симболик и итераторные домены заражают результат: число плюс символ
	// остаётся символом, число плюс итератор остаётся итератором.
	if a.IsSymbolicValue() {
		r.Domain = a.Domain
		r.Ref, r.RefExpr = a.Ref, a.RefExpr
	}
	if b.IsSymbolicValue() {
		r.Domain = b.Domain
		r.Ref, r.RefExpr = b.Ref, b.RefExpr
	}
	if a.IsIteratorValue() {
		r.Domain = a.Domain
	}
	if b.IsIteratorValue() {
		r.Domain = b.Domain
	}
	if a.Condition != 0 {
		r.Condition = a.Condition
	} else {
		r.Condition = b.Condition
	}
	r.Explanation = CombineTrails(a.Explanation, b.Explanation)
	if a.Flags.Has(FlagSafe) || b.Flags.Has(FlagSafe) {
		r.Flags |= FlagSafe
	}
	// Точка плюс открытая граница наследует сторону границы. Пары с двумя
	// открытыми границами разрешает арифметика самого оператора.
	if a.Bound == BoundPoint || b.Bound == BoundPoint {
		if a.Bound == BoundUpper || b.Bound == BoundUpper {
			r.Bound = BoundUpper
		}
		if a.Bound == BoundLower || b.Bound == BoundLower {
			r.Bound = BoundLower
		}
	}
	if a.Path == 0 {
		r.Path = b.Path
	} else {
		r.Path = a.Path
	}
	return r
}

// Compatible reports whether two operand facts may be combined at all: facts
// from different non-zero hypothetical contexts must never meet, and two
// symbolic operands have no computable sum.
func Compatible(a, b *Value) bool {
	if a.IsSymbolicValue() && b.IsSymbolicValue() {
		return false
	}
	if a.IsIteratorValue() && b.IsIteratorValue() {
		return false
	}
	if a.Path != 0 && b.Path != 0 && a.Path != b.Path {
		return false
	}
	return true
}

// LowerKnown degrades every Known fact in the list to Possible. A negative
// indirect applies to all dereference depths, otherwise only facts at that
// depth are touched.
func LowerKnown(facts []Value, indirect int) {
	for i := range facts {
		if indirect >= 0 && int(facts[i].Indirect) != indirect {
			continue
		}
		facts[i].LowerToPossible()
	}
}

// RaisePossible upgrades Possible point facts to Known. Range facts keep
// their strength: an open bound is not an exact value even on a dominated
// branch.
func RaisePossible(facts []Value, indirect int) {
	for i := range facts {
		f := &facts[i]
		if indirect >= 0 && int(f.Indirect) != indirect {
			continue
		}
		if !f.IsPossible() || f.Bound != BoundPoint {
			continue
		}
		f.Kind = Known
	}
}

// RemoveImpossible filters Impossible facts out of the list, returning the
// shortened slice.
func RemoveImpossible(facts []Value, indirect int) []Value {
	out := facts[:0]
	for i := range facts {
		f := &facts[i]
		if f.IsImpossible() && (indirect < 0 || int(f.Indirect) == indirect) {
			continue
		}
		out = append(out, *f)
	}
	return out
}
