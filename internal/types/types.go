package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindChar // plain char; signedness comes from the platform
	KindInt  // signed integer of some Rank
	KindUint // unsigned integer of some Rank
	KindFloat
	KindEnum
	KindPointer
	KindArray
	KindStruct
	KindContainer // library container (vector, string, ...)
	KindIterator  // iterator into a container type
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindContainer:
		return "container"
	case KindIterator:
		return "iterator"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Rank is the C conversion rank ladder. Actual bit widths are resolved
// against a Platform, so the same type tree serves any target.
type Rank uint8

const (
	RankNone Rank = iota
	RankBool
	RankChar
	RankShort
	RankInt
	RankLong
	RankLongLong
	RankFloat
	RankDouble
)

func (r Rank) String() string {
	switch r {
	case RankNone:
		return "none"
	case RankBool:
		return "bool"
	case RankChar:
		return "char"
	case RankShort:
		return "short"
	case RankInt:
		return "int"
	case RankLong:
		return "long"
	case RankLongLong:
		return "long long"
	case RankFloat:
		return "float"
	case RankDouble:
		return "double"
	default:
		return fmt.Sprintf("Rank(%d)", r)
	}
}

// ArrayUnknownLength marks arrays whose element count is not a constant.
const ArrayUnknownLength = ^uint32(0)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Rank    Rank   // for numeric primitives
	Elem    TypeID // pointee / element / iterated container
	Count   uint32 // for arrays (ArrayUnknownLength if not constant)
	Payload uint32 // index into kind-specific info tables
	Const   bool   // const-qualified
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given rank.
func MakeInt(rank Rank) Type {
	return Type{Kind: KindInt, Rank: rank}
}

// MakeUint describes an unsigned integer of the given rank.
func MakeUint(rank Rank) Type {
	return Type{Kind: KindUint, Rank: rank}
}

// MakeChar describes plain char (platform decides the sign).
func MakeChar() Type {
	return Type{Kind: KindChar, Rank: RankChar}
}

// MakeFloat describes a floating-point type of the given rank.
func MakeFloat(rank Rank) Type {
	return Type{Kind: KindFloat, Rank: rank}
}

// MakePointer describes a pointer to elem.
func MakePointer(elem TypeID) Type {
	return Type{Kind: KindPointer, Elem: elem}
}

// MakeArray describes an array of elem. Use ArrayUnknownLength when the
// count is not a constant expression.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeIterator describes an iterator into the given container type.
func MakeIterator(container TypeID) Type {
	return Type{Kind: KindIterator, Elem: container}
}

// IsIntegral reports whether the type participates in integer arithmetic.
func (t Type) IsIntegral() bool {
	switch t.Kind {
	case KindBool, KindChar, KindInt, KindUint, KindEnum:
		return true
	default:
		return false
	}
}

// IsArithmetic reports whether the type is integral or floating.
func (t Type) IsArithmetic() bool {
	return t.IsIntegral() || t.Kind == KindFloat
}

// IsPointerLike reports whether the type can dangle: pointers, arrays decayed
// to pointers, and iterators.
func (t Type) IsPointerLike() bool {
	switch t.Kind {
	case KindPointer, KindIterator:
		return true
	default:
		return false
	}
}
