package value

import (
	"fmt"
	"slices"
	"strings"

	"vigil/internal/prog"
)

// Kind grades how strongly a fact is believed.
type Kind uint8

const (
	// Possible holds on at least one execution path reaching the node.
	Possible Kind = iota
	// Known holds on every path reaching the node; only Known facts may be
	// reported without hedging.
	Known
	// Inconclusive was derived through a step the engine does not fully
	// trust; consumers must opt in to see it.
	Inconclusive
	// Impossible describes a value the node can never take. Импоссибл-факты
	// кодируют исключённый диапазон: kind отрицает утверждение bound+payload.
	Impossible
)

func (k Kind) String() string {
	switch k {
	case Possible:
		return "possible"
	case Known:
		return "known"
	case Inconclusive:
		return "inconclusive"
	case Impossible:
		return "impossible"
	default:
		return "Kind(?)"
	}
}

// Domain names the lattice a fact's payload lives in.
type Domain uint8

const (
	DomainInt Domain = iota
	DomainFloat
	DomainTokenRef
	DomainMoved
	DomainUninit
	DomainContainerSize
	DomainLifetime
	DomainBufferSize
	DomainIteratorStart
	DomainIteratorEnd
	DomainSymbolic
)

func (d Domain) String() string {
	switch d {
	case DomainInt:
		return "int"
	case DomainFloat:
		return "float"
	case DomainTokenRef:
		return "tok"
	case DomainMoved:
		return "moved"
	case DomainUninit:
		return "uninit"
	case DomainContainerSize:
		return "container-size"
	case DomainLifetime:
		return "lifetime"
	case DomainBufferSize:
		return "buffer-size"
	case DomainIteratorStart:
		return "iterator-start"
	case DomainIteratorEnd:
		return "iterator-end"
	case DomainSymbolic:
		return "symbolic"
	default:
		return "Domain(?)"
	}
}

// Bound tells whether a numeric payload is an exact value or one end of an
// open range. For an Impossible fact the pair bound+payload spells the claim
// being denied: Impossible Upper X reads "x <= X never holds", so the node is
// known to be at least X+1.
type Bound uint8

const (
	BoundPoint Bound = iota
	BoundUpper
	BoundLower
)

func (b Bound) String() string {
	switch b {
	case BoundPoint:
		return "point"
	case BoundUpper:
		return "upper"
	case BoundLower:
		return "lower"
	default:
		return "Bound(?)"
	}
}

// Flags carry orthogonal fact properties.
type Flags uint8

const (
	FlagNone Flags = 0
	// FlagSafe marks facts coming from annotated safe ranges.
	FlagSafe Flags = 1 << iota
	// FlagConditional marks facts that only hold под условием, которое сам
	// движок не проверял.
	FlagConditional
	// FlagFromMacro marks facts derived from macro-expanded tokens.
	FlagFromMacro
	// FlagFromDefaultArg marks facts seeded by a default argument value.
	FlagFromDefaultArg
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Strings returns human-readable labels of all set flags.
func (f Flags) Strings() []string {
	var out []string
	if f.Has(FlagSafe) {
		out = append(out, "safe")
	}
	if f.Has(FlagConditional) {
		out = append(out, "conditional")
	}
	if f.Has(FlagFromMacro) {
		out = append(out, "macro")
	}
	if f.Has(FlagFromDefaultArg) {
		out = append(out, "default-arg")
	}
	return out
}

// MaxFactsPerNode caps one node's fact list. Lists at the cap stop absorbing
// new facts; pathological expressions would otherwise balloon the corpus.
const MaxFactsPerNode = 10

// MaxPaths caps how many hypothetical contexts may coexist. Forks beyond the
// cap are silently dropped rather than tracked.
const MaxPaths = 256

// Step is one link in a fact's derivation trail.
type Step struct {
	Node prog.NodeID
	Text string
}

// Value is a single fact about an expression node: a payload in some domain
// together with the strength of the claim. Once attached to a node a fact is
// never edited in place except for Known-to-Possible degradation and flag
// merges.
type Value struct {
	Int   int64   // payload for integer-like domains; delta for DomainSymbolic
	Float float64 // payload for DomainFloat
	Path  int64   // hypothetical-context partition; 0 means unconditional

	Explanation []Step

	Ref       prog.NodeID  // referenced node for TokenRef/Lifetime/Symbolic
	RefExpr   prog.ExprKey // structural identity of Ref when known
	Condition prog.NodeID  // branch condition this fact was derived from

	Domain        Domain
	Kind          Kind
	Bound         Bound
	Flags         Flags
	Indirect      int8 // pointer dereference depth the fact applies at
	MoveKind      MoveKind
	LifetimeKind  LifetimeKind
	LifetimeScope LifetimeScope
}

// MakeInt returns a Possible point fact with integer payload x.
func MakeInt(x int64) Value {
	return Value{Domain: DomainInt, Int: x}
}

// MakeKnownInt returns a Known point fact with integer payload x.
func MakeKnownInt(x int64) Value {
	return Value{Domain: DomainInt, Int: x, Kind: Known}
}

// MakeFloat returns a Possible fact with float payload f.
func MakeFloat(f float64) Value {
	return Value{Domain: DomainFloat, Float: f}
}

// MakeTokenRef returns a fact whose payload is another expression node.
func MakeTokenRef(ref prog.NodeID) Value {
	return Value{Domain: DomainTokenRef, Ref: ref}
}

// MakeSymbolic returns a fact stating the node equals ref plus delta.
func MakeSymbolic(ref prog.NodeID, delta int64) Value {
	return Value{Domain: DomainSymbolic, Ref: ref, Int: delta}
}

// MakeContainerSize returns a fact about a container's element count.
func MakeContainerSize(n int64) Value {
	return Value{Domain: DomainContainerSize, Int: n}
}

// MakeBufferSize returns a fact about an allocation's byte size.
func MakeBufferSize(n int64) Value {
	return Value{Domain: DomainBufferSize, Int: n}
}

// MakeIteratorStart returns a fact placing an iterator at offset off from the
// container's first element.
func MakeIteratorStart(off int64) Value {
	return Value{Domain: DomainIteratorStart, Int: off}
}

// MakeIteratorEnd returns a fact placing an iterator at offset off from the
// container's past-the-end position.
func MakeIteratorEnd(off int64) Value {
	return Value{Domain: DomainIteratorEnd, Int: off}
}

// MakeMoved returns a fact recording that the node's object was moved from.
func MakeMoved(mk MoveKind) Value {
	return Value{Domain: DomainMoved, MoveKind: mk}
}

// MakeUninit returns a fact recording that the node's storage may be
// uninitialized.
func MakeUninit() Value {
	return Value{Domain: DomainUninit}
}

// MakeLifetime returns a fact tying the node's validity to the storage of
// ref.
func MakeLifetime(ref prog.NodeID, lk LifetimeKind, ls LifetimeScope) Value {
	return Value{Domain: DomainLifetime, Ref: ref, LifetimeKind: lk, LifetimeScope: ls}
}

func (v *Value) IsKnown() bool        { return v.Kind == Known }
func (v *Value) IsPossible() bool     { return v.Kind == Possible }
func (v *Value) IsInconclusive() bool { return v.Kind == Inconclusive }
func (v *Value) IsImpossible() bool   { return v.Kind == Impossible }

func (v *Value) IsIntValue() bool           { return v.Domain == DomainInt }
func (v *Value) IsFloatValue() bool         { return v.Domain == DomainFloat }
func (v *Value) IsTokenRefValue() bool      { return v.Domain == DomainTokenRef }
func (v *Value) IsMovedValue() bool         { return v.Domain == DomainMoved }
func (v *Value) IsUninitValue() bool        { return v.Domain == DomainUninit }
func (v *Value) IsContainerSizeValue() bool { return v.Domain == DomainContainerSize }
func (v *Value) IsLifetimeValue() bool      { return v.Domain == DomainLifetime }
func (v *Value) IsBufferSizeValue() bool    { return v.Domain == DomainBufferSize }
func (v *Value) IsSymbolicValue() bool      { return v.Domain == DomainSymbolic }

// IsIteratorValue reports facts in either iterator domain.
func (v *Value) IsIteratorValue() bool {
	return v.Domain == DomainIteratorStart || v.Domain == DomainIteratorEnd
}

// IsNumeric reports facts whose payload is a plain number.
func (v *Value) IsNumeric() bool {
	return v.Domain == DomainInt || v.Domain == DomainFloat
}

// IsLocalLifetime reports lifetime facts tied to local storage.
func (v *Value) IsLocalLifetime() bool {
	return v.Domain == DomainLifetime && v.LifetimeScope == LifetimeScopeLocal
}

// AddStep appends one derivation step to the fact's explanation trail.
func (v *Value) AddStep(at prog.NodeID, text string) {
	// Clip: факты, разошедшиеся из одного родителя, не должны делить хвост.
	v.Explanation = append(slices.Clip(v.Explanation), Step{Node: at, Text: text})
}

// LowerToPossible degrades a Known fact to Possible. Other kinds keep their
// strength.
func (v *Value) LowerToPossible() {
	if v.Kind == Known {
		v.Kind = Possible
	}
}

// InvertBound swaps the open end of a range fact. Point facts are unchanged.
func (v *Value) InvertBound() {
	switch v.Bound {
	case BoundUpper:
		v.Bound = BoundLower
	case BoundLower:
		v.Bound = BoundUpper
	}
}

// InvertRange rewrites the fact to assert the complement of the region it
// described: the kind flips between Possible and Impossible, the bound flips
// side, and the boundary shifts by one so no payload lands in both regions.
func (v *Value) InvertRange() {
	switch v.Kind {
	case Impossible:
		v.Kind = Possible
	case Possible:
		v.Kind = Impossible
	}
	v.InvertBound()
	switch v.Bound {
	case BoundUpper:
		v.Int--
	case BoundLower:
		v.Int++
	}
}

// AsImpossible returns the fact recast as the Impossible form of its
// complement: "maybe at most X" becomes "at least X+1 never holds".
func AsImpossible(v Value) Value {
	v.InvertRange()
	v.Kind = Impossible
	return v
}

// EqualPayload reports whether two facts make the same claim, ignoring kind
// and bookkeeping. The comparison is domain-specific: ranged domains compare
// payload and bound side, reference domains compare the referenced node.
func (v *Value) EqualPayload(o *Value) bool {
	if v.Domain != o.Domain {
		return false
	}
	switch v.Domain {
	case DomainInt, DomainContainerSize, DomainBufferSize, DomainIteratorStart, DomainIteratorEnd:
		return v.Int == o.Int && v.Bound == o.Bound
	case DomainFloat:
		return v.Float == o.Float && v.Bound == o.Bound
	case DomainTokenRef, DomainLifetime:
		return v.Ref == o.Ref
	case DomainSymbolic:
		if v.Int != o.Int {
			return false
		}
		if v.Ref == o.Ref {
			return true
		}
		return v.RefExpr != prog.NoExprKey && v.RefExpr == o.RefExpr
	case DomainMoved:
		return v.MoveKind == o.MoveKind
	case DomainUninit:
		return true
	default:
		return false
	}
}

// Equal reports whether two facts make the same claim with the same strength.
func (v *Value) Equal(o *Value) bool {
	return v.EqualPayload(o) && v.Kind == o.Kind
}

func (v Value) String() string {
	var sb strings.Builder
	sb.WriteString(v.Kind.String())
	sb.WriteByte(' ')
	sb.WriteString(v.Domain.String())
	switch v.Domain {
	case DomainInt, DomainContainerSize, DomainBufferSize, DomainIteratorStart, DomainIteratorEnd:
		fmt.Fprintf(&sb, " %d", v.Int)
	case DomainFloat:
		fmt.Fprintf(&sb, " %g", v.Float)
	case DomainTokenRef:
		fmt.Fprintf(&sb, " @%d", v.Ref)
	case DomainSymbolic:
		fmt.Fprintf(&sb, " @%d", v.Ref)
		if v.Int != 0 {
			fmt.Fprintf(&sb, "%+d", v.Int)
		}
	case DomainMoved:
		sb.WriteByte(' ')
		sb.WriteString(v.MoveKind.String())
	case DomainLifetime:
		fmt.Fprintf(&sb, " @%d %s/%s", v.Ref, v.LifetimeKind, v.LifetimeScope)
	}
	if v.Bound != BoundPoint {
		sb.WriteByte(' ')
		sb.WriteString(v.Bound.String())
	}
	if v.Indirect != 0 {
		fmt.Fprintf(&sb, " indirect=%d", v.Indirect)
	}
	if v.Path != 0 {
		fmt.Fprintf(&sb, " path=%d", v.Path)
	}
	for _, label := range v.Flags.Strings() {
		sb.WriteByte(' ')
		sb.WriteString(label)
	}
	return sb.String()
}
