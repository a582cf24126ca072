package types

import (
	"math"
	"testing"
)

func TestPlatformBits(t *testing.T) {
	tests := []struct {
		name string
		p    Platform
		t    Type
		bits uint8
	}{
		{"unix64 int", PlatformUnix64(), MakeInt(RankInt), 32},
		{"unix64 long", PlatformUnix64(), MakeInt(RankLong), 64},
		{"unix32 long", PlatformUnix32(), MakeInt(RankLong), 32},
		{"win64 long", PlatformWin64(), MakeInt(RankLong), 32},
		{"win64 ptr", PlatformWin64(), MakePointer(NoTypeID), 64},
		{"unix32 ptr", PlatformUnix32(), MakePointer(NoTypeID), 32},
		{"char", PlatformUnix64(), MakeChar(), 8},
		{"short", PlatformUnix64(), MakeUint(RankShort), 16},
		{"bool", PlatformUnix64(), Type{Kind: KindBool, Rank: RankBool}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits, ok := tt.p.Bits(tt.t)
			if !ok || bits != tt.bits {
				t.Errorf("Bits = %d, %v; want %d", bits, ok, tt.bits)
			}
		})
	}

	if _, ok := PlatformUnix64().Bits(Type{Kind: KindVoid}); ok {
		t.Error("void has no width")
	}
}

func TestPlatformByName(t *testing.T) {
	for _, name := range []string{"unix32", "unix64", "win32", "win64"} {
		p, ok := PlatformByName(name)
		if !ok || p.Name != name {
			t.Errorf("PlatformByName(%q) = %+v, %v", name, p, ok)
		}
	}
	if _, ok := PlatformByName("vax"); ok {
		t.Error("unknown platform must fail")
	}
}

func TestTruncate(t *testing.T) {
	p := PlatformUnix64()
	tests := []struct {
		name string
		v    int64
		t    Type
		want int64
	}{
		{"char wrap positive", 300, MakeInt(RankChar), 44},
		{"char wrap negative", 200, MakeInt(RankChar), -56},
		{"uchar keeps 200", 200, MakeUint(RankChar), 200},
		{"uchar wraps 300", 300, MakeUint(RankChar), 44},
		{"short sign extend", 0x8000, MakeInt(RankShort), -32768},
		{"ushort keeps", 0x8000, MakeUint(RankShort), 0x8000},
		{"int wrap", 1 << 40, MakeInt(RankInt), 0},
		{"uint wrap negative", -1, MakeUint(RankInt), math.MaxUint32},
		{"long long passthrough", math.MinInt64, MakeInt(RankLongLong), math.MinInt64},
		{"bool clamps to 1", 42, Type{Kind: KindBool, Rank: RankBool}, 1},
		{"bool keeps 0", 0, Type{Kind: KindBool, Rank: RankBool}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Truncate(tt.v, tt.t); got != tt.want {
				t.Errorf("Truncate(%d) = %d, want %d", tt.v, got, tt.want)
			}
		})
	}
}

func TestMinMaxValue(t *testing.T) {
	p := PlatformUnix64()

	if maxv, ok := p.MaxValue(MakeInt(RankInt)); !ok || maxv != math.MaxInt32 {
		t.Errorf("int max = %d, %v", maxv, ok)
	}
	if minv, ok := p.MinValue(MakeInt(RankInt)); !ok || minv != math.MinInt32 {
		t.Errorf("int min = %d, %v", minv, ok)
	}
	if maxv, ok := p.MaxValue(MakeUint(RankInt)); !ok || maxv != math.MaxUint32 {
		t.Errorf("uint max = %d, %v", maxv, ok)
	}
	if minv, ok := p.MinValue(MakeUint(RankInt)); !ok || minv != 0 {
		t.Errorf("uint min = %d, %v", minv, ok)
	}
	if maxv, ok := p.MaxValue(MakeInt(RankChar)); !ok || maxv != 127 {
		t.Errorf("schar max = %d, %v", maxv, ok)
	}
	// unsigned long long max does not fit int64
	if _, ok := p.MaxValue(MakeUint(RankLongLong)); ok {
		t.Error("ull max must report not representable")
	}
	if maxv, ok := p.MaxValue(MakeInt(RankLongLong)); !ok || maxv != math.MaxInt64 {
		t.Errorf("ll max = %d, %v", maxv, ok)
	}
}

func TestSizeOf(t *testing.T) {
	p := PlatformUnix64()
	in := NewInterner()
	b := in.Builtins()

	cases := []struct {
		name string
		id   TypeID
		want int64
	}{
		{"char", b.Char, 1},
		{"short", b.Short, 2},
		{"int", b.Int, 4},
		{"long", b.Long, 8},
		{"double", b.Double, 8},
		{"float", b.Float, 4},
		{"bool", b.Bool, 1},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.SizeOf(in.MustLookup(tt.id), in)
			if !ok || got != tt.want {
				t.Errorf("SizeOf = %d, %v; want %d", got, ok, tt.want)
			}
		})
	}

	ptr := in.Pointer(b.Char)
	if got, ok := p.SizeOf(in.MustLookup(ptr), in); !ok || got != 8 {
		t.Errorf("sizeof(char*) = %d, %v", got, ok)
	}

	arr := in.Intern(MakeArray(b.Int, 10))
	if got, ok := p.SizeOf(in.MustLookup(arr), in); !ok || got != 40 {
		t.Errorf("sizeof(int[10]) = %d, %v", got, ok)
	}
	open := in.Intern(MakeArray(b.Int, ArrayUnknownLength))
	if _, ok := p.SizeOf(in.MustLookup(open), in); ok {
		t.Error("sizeof of unsized array must fail")
	}
}

func TestIsSigned(t *testing.T) {
	p := PlatformUnix64()
	if !p.IsSigned(MakeInt(RankInt)) {
		t.Error("int is signed")
	}
	if p.IsSigned(MakeUint(RankInt)) {
		t.Error("uint is unsigned")
	}
	if !p.IsSigned(MakeChar()) {
		t.Error("plain char is signed on unix64")
	}
	unsignedChar := PlatformUnix64()
	unsignedChar.CharSigned = false
	if unsignedChar.IsSigned(MakeChar()) {
		t.Error("char signedness must follow the platform flag")
	}
}
