package valueflow

import (
	"vigil/internal/token"
	"vigil/internal/types"
	"vigil/internal/value"
)

// nonInvertible reports operators whose result cannot be mapped back onto an
// operand range. Comparisons, bitwise operators, shifts and remainder lose
// information, so Impossible operand facts must never flow through them: the
// excluded range of the operand says nothing about the excluded range of the
// result.
func nonInvertible(op token.Kind) bool {
	switch op {
	case token.EqEq, token.BangEq, token.Lt, token.LtEq, token.Gt, token.GtEq,
		token.Amp, token.Pipe, token.Caret, token.Shl, token.Shr, token.Percent,
		token.AndAnd, token.OrOr, token.Bang, token.Tilde:
		return true
	default:
		return false
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// calcInt applies an integer operator to two exact payloads. ok is false for
// division by zero and out-of-range shifts.
func calcInt(op token.Kind, a, b int64) (int64, bool) {
	switch op {
	case token.Plus:
		return a + b, true
	case token.Minus:
		return a - b, true
	case token.Star:
		return a * b, true
	case token.Slash:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case token.Percent:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case token.Amp:
		return a & b, true
	case token.Pipe:
		return a | b, true
	case token.Caret:
		return a ^ b, true
	case token.Shl:
		if b < 0 || b >= 64 {
			return 0, false
		}
		return a << uint(b), true
	case token.Shr:
		if b < 0 || b >= 64 {
			return 0, false
		}
		return a >> uint(b), true
	case token.EqEq:
		return boolToInt(a == b), true
	case token.BangEq:
		return boolToInt(a != b), true
	case token.Lt:
		return boolToInt(a < b), true
	case token.LtEq:
		return boolToInt(a <= b), true
	case token.Gt:
		return boolToInt(a > b), true
	case token.GtEq:
		return boolToInt(a >= b), true
	case token.AndAnd:
		return boolToInt(a != 0 && b != 0), true
	case token.OrOr:
		return boolToInt(a != 0 || b != 0), true
	default:
		return 0, false
	}
}

// fitsType reports whether an exact integer payload is representable in the
// given type. Unrepresentable results are dropped rather than wrapped: a
// wrapped payload here would seed false Known facts downstream.
func (cx *Context) fitsType(x int64, tid types.TypeID) bool {
	if tid == types.NoTypeID {
		return true
	}
	t, ok := cx.Types.Lookup(tid)
	if !ok || !t.IsIntegral() {
		return true
	}
	if min, ok := cx.Platform.MinValue(t); ok && x < min {
		return false
	}
	if max, ok := cx.Platform.MaxValue(t); ok && x > max {
		return false
	}
	return true
}

// combineFacts applies a binary operator to two operand facts, producing the
// fact for the operator node. ok is false whenever no sound result exists:
// incompatible paths, Impossible facts meeting a non-invertible operator,
// range facts under anything but additive operators, payloads the parent type
// cannot represent.
func (cx *Context) combineFacts(op token.Kind, parentType types.TypeID, a, b *value.Value) (value.Value, bool) {
	if !value.Compatible(a, b) {
		return value.Value{}, false
	}
	if a.IsImpossible() || b.IsImpossible() {
		return cx.combineImpossible(op, parentType, a, b)
	}
	if a.Bound != value.BoundPoint || b.Bound != value.BoundPoint {
		return cx.combineRanges(op, parentType, a, b)
	}
	return cx.combinePoints(op, parentType, a, b)
}

// combineImpossible shifts an excluded range through an additive operator.
// Exactly one operand may be Impossible and the other must be an exact
// integer; everything else is unsound to combine.
func (cx *Context) combineImpossible(op token.Kind, parentType types.TypeID, a, b *value.Value) (value.Value, bool) {
	if nonInvertible(op) || (op != token.Plus && op != token.Minus) {
		return value.Value{}, false
	}
	if a.IsImpossible() == b.IsImpossible() {
		return value.Value{}, false
	}
	imp, pt := a, b
	if b.IsImpossible() {
		imp, pt = b, a
	}
	if imp.Domain != value.DomainInt || pt.Domain != value.DomainInt || pt.Bound != value.BoundPoint {
		return value.Value{}, false
	}
	r := value.Combined(a, b)
	r.Bound = imp.Bound
	switch {
	case op == token.Plus:
		r.Int = imp.Int + pt.Int
	case imp == a: // x - k: граница сдвигается вниз, сторона прежняя
		r.Int = imp.Int - pt.Int
	default: // k - x: регион отражается, сторона границы меняется
		r.Int = pt.Int - imp.Int
		r.InvertBound()
	}
	if !cx.fitsType(r.Int, parentType) {
		return value.Value{}, false
	}
	return r, true
}

// combineRanges adds or subtracts open-ended range facts. Multiplicative and
// comparison operators over ranges are deliberately not computed.
func (cx *Context) combineRanges(op token.Kind, parentType types.TypeID, a, b *value.Value) (value.Value, bool) {
	if op != token.Plus && op != token.Minus {
		return value.Value{}, false
	}
	if a.Domain != value.DomainInt || b.Domain != value.DomainInt {
		return value.Value{}, false
	}
	// Вычитание отражает границу правого операнда до сложения сторон.
	bSide := b.Bound
	if op == token.Minus {
		switch bSide {
		case value.BoundUpper:
			bSide = value.BoundLower
		case value.BoundLower:
			bSide = value.BoundUpper
		}
	}
	var side value.Bound
	switch {
	case a.Bound == value.BoundPoint:
		side = bSide
	case bSide == value.BoundPoint:
		side = a.Bound
	case a.Bound == bSide:
		side = a.Bound
	default:
		// x>=A плюс y<=B не даёт односторонней границы
		return value.Value{}, false
	}
	r := value.Combined(a, b)
	if op == token.Plus {
		r.Int = a.Int + b.Int
	} else {
		r.Int = a.Int - b.Int
	}
	r.Bound = side
	if !cx.fitsType(r.Int, parentType) {
		return value.Value{}, false
	}
	return r, true
}

// combinePoints handles exact payloads: plain arithmetic, float promotion,
// symbolic deltas and iterator offsets.
func (cx *Context) combinePoints(op token.Kind, parentType types.TypeID, a, b *value.Value) (value.Value, bool) {
	switch {
	case a.IsSymbolicValue():
		if b.Domain != value.DomainInt || (op != token.Plus && op != token.Minus) {
			return value.Value{}, false
		}
		r := value.Combined(a, b)
		if op == token.Plus {
			r.Int = a.Int + b.Int
		} else {
			r.Int = a.Int - b.Int
		}
		return r, true
	case b.IsSymbolicValue():
		// k - (x+d) не выражается как x+delta
		if a.Domain != value.DomainInt || op != token.Plus {
			return value.Value{}, false
		}
		r := value.Combined(a, b)
		r.Int = a.Int + b.Int
		return r, true
	case a.IsIteratorValue():
		if b.Domain != value.DomainInt || (op != token.Plus && op != token.Minus) {
			return value.Value{}, false
		}
		r := value.Combined(a, b)
		if op == token.Plus {
			r.Int = a.Int + b.Int
		} else {
			r.Int = a.Int - b.Int
		}
		return r, true
	case b.IsIteratorValue():
		if a.Domain != value.DomainInt || op != token.Plus {
			return value.Value{}, false
		}
		r := value.Combined(a, b)
		r.Int = a.Int + b.Int
		return r, true
	}

	if !a.IsNumeric() || !b.IsNumeric() {
		return value.Value{}, false
	}
	if a.IsFloatValue() || b.IsFloatValue() {
		return cx.combineFloats(op, a, b)
	}

	x, ok := calcInt(op, a.Int, b.Int)
	if !ok {
		return value.Value{}, false
	}
	if !cx.fitsType(x, parentType) {
		return value.Value{}, false
	}
	r := value.Combined(a, b)
	r.Domain = value.DomainInt
	r.Int = x
	return r, true
}

// combineFloats promotes mixed operands to float. Comparisons yield integer
// facts, arithmetic yields float facts.
func (cx *Context) combineFloats(op token.Kind, a, b *value.Value) (value.Value, bool) {
	fa, fb := a.Float, b.Float
	if a.IsIntValue() {
		fa = float64(a.Int)
	}
	if b.IsIntValue() {
		fb = float64(b.Int)
	}
	r := value.Combined(a, b)
	switch op {
	case token.Plus:
		r.Domain, r.Float = value.DomainFloat, fa+fb
	case token.Minus:
		r.Domain, r.Float = value.DomainFloat, fa-fb
	case token.Star:
		r.Domain, r.Float = value.DomainFloat, fa*fb
	case token.Slash:
		if fb == 0 {
			return value.Value{}, false
		}
		r.Domain, r.Float = value.DomainFloat, fa/fb
	case token.EqEq:
		r.Domain, r.Int = value.DomainInt, boolToInt(fa == fb)
	case token.BangEq:
		r.Domain, r.Int = value.DomainInt, boolToInt(fa != fb)
	case token.Lt:
		r.Domain, r.Int = value.DomainInt, boolToInt(fa < fb)
	case token.LtEq:
		r.Domain, r.Int = value.DomainInt, boolToInt(fa <= fb)
	case token.Gt:
		r.Domain, r.Int = value.DomainInt, boolToInt(fa > fb)
	case token.GtEq:
		r.Domain, r.Int = value.DomainInt, boolToInt(fa >= fb)
	default:
		return value.Value{}, false
	}
	return r, true
}

// calcUnary applies a prefix operator to a single operand fact. Negation is
// the one operator an excluded range survives: the region mirrors cleanly.
func (cx *Context) calcUnary(op token.Kind, parentType types.TypeID, v *value.Value) (value.Value, bool) {
	switch op {
	case token.Minus:
		switch v.Domain {
		case value.DomainInt:
			r := *v
			r.Explanation = value.CombineTrails(v.Explanation, nil)
			r.Int = -r.Int
			r.InvertBound()
			if !cx.fitsType(r.Int, parentType) {
				return value.Value{}, false
			}
			return r, true
		case value.DomainFloat:
			if v.IsImpossible() {
				return value.Value{}, false
			}
			r := *v
			r.Explanation = value.CombineTrails(v.Explanation, nil)
			r.Float = -r.Float
			return r, true
		}
		return value.Value{}, false
	case token.Bang:
		if v.Domain != value.DomainInt || v.Bound != value.BoundPoint {
			return value.Value{}, false
		}
		if v.IsImpossible() {
			// x никогда не равен нулю: !x всегда ноль
			if v.Int != 0 {
				return value.Value{}, false
			}
			r := value.Value{Domain: value.DomainInt, Kind: value.Known, Int: 0}
			r.Explanation = value.CombineTrails(v.Explanation, nil)
			r.Condition = v.Condition
			r.Path = v.Path
			return r, true
		}
		r := *v
		r.Explanation = value.CombineTrails(v.Explanation, nil)
		r.Int = boolToInt(v.Int == 0)
		return r, true
	case token.Tilde:
		if v.Domain != value.DomainInt || v.Bound != value.BoundPoint || v.IsImpossible() {
			return value.Value{}, false
		}
		r := *v
		r.Explanation = value.CombineTrails(v.Explanation, nil)
		r.Int = ^v.Int
		if !cx.fitsType(r.Int, parentType) {
			return value.Value{}, false
		}
		return r, true
	default:
		return value.Value{}, false
	}
}

// castFact converts a fact across a C cast. Pointer-provenance domains pass
// through untouched; integer facts truncate; excluded ranges survive only
// when every source value is representable in the destination, otherwise the
// range boundary would silently change meaning.
func (cx *Context) castFact(src types.Type, srcOK bool, dst types.Type, v *value.Value) (value.Value, bool) {
	switch v.Domain {
	case value.DomainTokenRef, value.DomainLifetime:
		r := *v
		r.Explanation = value.CombineTrails(v.Explanation, nil)
		return r, true
	case value.DomainFloat:
		if dst.Kind == types.KindFloat {
			r := *v
			r.Explanation = value.CombineTrails(v.Explanation, nil)
			return r, true
		}
		if !dst.IsIntegral() || v.IsImpossible() || v.Bound != value.BoundPoint {
			return value.Value{}, false
		}
		r := *v
		r.Explanation = value.CombineTrails(v.Explanation, nil)
		r.Domain = value.DomainInt
		r.Int = cx.Platform.Truncate(int64(v.Float), dst)
		r.Float = 0
		return r, true
	case value.DomainInt:
		if dst.Kind == types.KindFloat {
			if v.IsImpossible() || v.Bound != value.BoundPoint {
				return value.Value{}, false
			}
			r := *v
			r.Explanation = value.CombineTrails(v.Explanation, nil)
			r.Domain = value.DomainFloat
			r.Float = float64(v.Int)
			r.Int = 0
			return r, true
		}
		if !dst.IsIntegral() && !dst.IsPointerLike() {
			return value.Value{}, false
		}
		if v.IsImpossible() || v.Bound != value.BoundPoint {
			if !srcOK || !cx.rangeFits(src, dst) {
				return value.Value{}, false
			}
			r := *v
			r.Explanation = value.CombineTrails(v.Explanation, nil)
			return r, true
		}
		r := *v
		r.Explanation = value.CombineTrails(v.Explanation, nil)
		if dst.IsIntegral() {
			r.Int = cx.Platform.Truncate(v.Int, dst)
		}
		return r, true
	default:
		return value.Value{}, false
	}
}

// rangeFits reports whether every value of src is representable in dst.
func (cx *Context) rangeFits(src, dst types.Type) bool {
	smin, ok := cx.Platform.MinValue(src)
	if !ok {
		return false
	}
	smax, ok := cx.Platform.MaxValue(src)
	if !ok {
		return false
	}
	dmin, ok := cx.Platform.MinValue(dst)
	if !ok {
		return false
	}
	dmax, ok := cx.Platform.MaxValue(dst)
	if !ok {
		// 64-битный беззнаковый приёмник вмещает любой неотрицательный источник
		return smin >= 0
	}
	return smin >= dmin && smax <= dmax
}
