package types

import "math"

// Platform fixes the bit widths and char signedness used for cast and
// truncation math. The type tree itself stores ranks only, so one parse can
// be analyzed against any platform.
type Platform struct {
	Name         string
	CharBits     uint8
	ShortBits    uint8
	IntBits      uint8
	LongBits     uint8
	LongLongBits uint8
	PtrBits      uint8
	CharSigned   bool
}

// PlatformUnix32 is ILP32: 32-bit long and pointers.
func PlatformUnix32() Platform {
	return Platform{Name: "unix32", CharBits: 8, ShortBits: 16, IntBits: 32, LongBits: 32, LongLongBits: 64, PtrBits: 32, CharSigned: true}
}

// PlatformUnix64 is LP64: 64-bit long and pointers.
func PlatformUnix64() Platform {
	return Platform{Name: "unix64", CharBits: 8, ShortBits: 16, IntBits: 32, LongBits: 64, LongLongBits: 64, PtrBits: 64, CharSigned: true}
}

// PlatformWin32 is ILP32 with 32-bit long.
func PlatformWin32() Platform {
	return Platform{Name: "win32", CharBits: 8, ShortBits: 16, IntBits: 32, LongBits: 32, LongLongBits: 64, PtrBits: 32, CharSigned: true}
}

// PlatformWin64 is LLP64: 32-bit long, 64-bit pointers.
func PlatformWin64() Platform {
	return Platform{Name: "win64", CharBits: 8, ShortBits: 16, IntBits: 32, LongBits: 32, LongLongBits: 64, PtrBits: 64, CharSigned: true}
}

// PlatformByName resolves a platform spelled on the command line.
func PlatformByName(name string) (Platform, bool) {
	switch name {
	case "unix32":
		return PlatformUnix32(), true
	case "unix64":
		return PlatformUnix64(), true
	case "win32":
		return PlatformWin32(), true
	case "win64":
		return PlatformWin64(), true
	default:
		return Platform{}, false
	}
}

// Bits returns the value width of a type in bits. ok is false for types
// without a meaningful integer width (structs, containers, void).
func (p Platform) Bits(t Type) (uint8, bool) {
	switch t.Kind {
	case KindBool:
		return 1, true
	case KindChar, KindInt, KindUint, KindEnum, KindFloat:
		switch t.Rank {
		case RankBool:
			return 1, true
		case RankChar:
			return p.CharBits, true
		case RankShort:
			return p.ShortBits, true
		case RankInt, RankFloat:
			return p.IntBits, true
		case RankLong:
			return p.LongBits, true
		case RankLongLong, RankDouble:
			return p.LongLongBits, true
		default:
			return 0, false
		}
	case KindPointer, KindArray, KindIterator:
		return p.PtrBits, true
	default:
		return 0, false
	}
}

// IsSigned reports whether values of the type sign-extend.
func (p Platform) IsSigned(t Type) bool {
	switch t.Kind {
	case KindInt, KindEnum:
		return true
	case KindChar:
		return p.CharSigned
	default:
		return false
	}
}

// Truncate wraps a value into the representable range of the destination
// type: mask to the type's bit width, then sign-extend when signed.
func (p Platform) Truncate(v int64, t Type) int64 {
	bits, ok := p.Bits(t)
	if !ok || bits >= 64 {
		return v
	}
	if t.Kind == KindBool {
		if v != 0 {
			return 1
		}
		return 0
	}
	mask := (int64(1) << bits) - 1
	v &= mask
	if p.IsSigned(t) && v&(int64(1)<<(bits-1)) != 0 {
		v -= int64(1) << bits
	}
	return v
}

// MaxValue returns the largest representable value. ok is false when the
// maximum does not fit an int64 (64-bit unsigned types).
func (p Platform) MaxValue(t Type) (int64, bool) {
	bits, ok := p.Bits(t)
	if !ok {
		return 0, false
	}
	if p.IsSigned(t) {
		if bits >= 64 {
			return math.MaxInt64, true
		}
		return (int64(1) << (bits - 1)) - 1, true
	}
	if bits >= 64 {
		return 0, false
	}
	return (int64(1) << bits) - 1, true
}

// MinValue returns the smallest representable value.
func (p Platform) MinValue(t Type) (int64, bool) {
	if !p.IsSigned(t) {
		if _, ok := p.Bits(t); !ok {
			return 0, false
		}
		return 0, true
	}
	bits, ok := p.Bits(t)
	if !ok {
		return 0, false
	}
	if bits >= 64 {
		return math.MinInt64, true
	}
	return -(int64(1) << (bits - 1)), true
}

// SizeOf returns sizeof in bytes for types whose size the subset defines.
func (p Platform) SizeOf(t Type, in *Interner) (int64, bool) {
	switch t.Kind {
	case KindBool:
		return 1, true
	case KindChar, KindInt, KindUint, KindEnum, KindFloat:
		bits, ok := p.Bits(t)
		if !ok {
			return 0, false
		}
		return int64(bits) / 8, true
	case KindPointer:
		return int64(p.PtrBits) / 8, true
	case KindArray:
		if t.Count == ArrayUnknownLength || in == nil {
			return 0, false
		}
		elem, ok := in.Lookup(t.Elem)
		if !ok {
			return 0, false
		}
		elemSize, ok := p.SizeOf(elem, in)
		if !ok {
			return 0, false
		}
		return elemSize * int64(t.Count), true
	default:
		return 0, false
	}
}
