package types

import (
	"testing"
)

func TestParseIntLiteral(t *testing.T) {
	p := PlatformUnix64()
	tests := []struct {
		text string
		val  int64
		kind Kind
		rank Rank
	}{
		{"0", 0, KindInt, RankInt},
		{"123", 123, KindInt, RankInt},
		{"017", 15, KindInt, RankInt},
		{"0x1F", 31, KindInt, RankInt},
		{"0b101", 5, KindInt, RankInt},
		{"42u", 42, KindUint, RankInt},
		{"42l", 42, KindInt, RankLong},
		{"42ul", 42, KindUint, RankLong},
		{"42LL", 42, KindInt, RankLongLong},
		{"2147483647", 2147483647, KindInt, RankInt},
		// does not fit int: decimal promotes to the next signed rung
		{"2147483648", 2147483648, KindInt, RankLong},
		// hex may take the unsigned rung without a suffix
		{"0x80000000", 2147483648, KindUint, RankInt},
		{"0xFFFFFFFFFFFFFFFF", -1, KindUint, RankLong},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			val, typ, err := ParseIntLiteral(tt.text, p)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if val != tt.val {
				t.Errorf("value = %d, want %d", val, tt.val)
			}
			if typ.Kind != tt.kind || typ.Rank != tt.rank {
				t.Errorf("type = %v/%v, want %v/%v", typ.Kind, typ.Rank, tt.kind, tt.rank)
			}
		})
	}
}

func TestParseIntLiteral_PlatformLadder(t *testing.T) {
	// 2^33 skips every 32-bit rung on unix32 and lands on long long,
	// while unix64's 64-bit long takes it directly
	val, typ, err := ParseIntLiteral("0x200000000", PlatformUnix32())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 1<<33 || typ.Kind != KindInt || typ.Rank != RankLongLong {
		t.Errorf("unix32: got %d %v/%v, want long long", val, typ.Kind, typ.Rank)
	}

	_, typ, err = ParseIntLiteral("0x200000000", PlatformUnix64())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ.Kind != KindInt || typ.Rank != RankLong {
		t.Errorf("unix64: got %v/%v, want long", typ.Kind, typ.Rank)
	}
}

func TestParseIntLiteral_Bad(t *testing.T) {
	p := PlatformUnix64()
	for _, text := range []string{"", "u", "0x", "08", "0b102"} {
		if _, _, err := ParseIntLiteral(text, p); err == nil {
			t.Errorf("ParseIntLiteral(%q) should fail", text)
		}
	}
}

func TestParseFloatLiteral(t *testing.T) {
	tests := []struct {
		text string
		val  float64
		rank Rank
	}{
		{"1.0", 1.0, RankDouble},
		{"1.", 1.0, RankDouble},
		{".5", 0.5, RankDouble},
		{"1e3", 1000, RankDouble},
		{"2.5f", 2.5, RankFloat},
		{"3.5L", 3.5, RankDouble},
		{"0x1.8p3", 12, RankDouble},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			val, typ, err := ParseFloatLiteral(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if val != tt.val {
				t.Errorf("value = %g, want %g", val, tt.val)
			}
			if typ.Kind != KindFloat || typ.Rank != tt.rank {
				t.Errorf("type = %v/%v", typ.Kind, typ.Rank)
			}
		})
	}
}

func TestParseCharLiteral(t *testing.T) {
	tests := []struct {
		text string
		val  int64
	}{
		{`'a'`, 97},
		{`'\n'`, 10},
		{`'\0'`, 0},
		{`'\''`, 39},
		{`'\\'`, 92},
		{`'\x41'`, 65},
		{`'\101'`, 65},
		{`'ab'`, 97<<8 | 98},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			val, err := ParseCharLiteral(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if val != tt.val {
				t.Errorf("value = %d, want %d", val, tt.val)
			}
		})
	}

	for _, text := range []string{`''`, `'`, `a`, `'\q'`} {
		if _, err := ParseCharLiteral(text); err == nil {
			t.Errorf("ParseCharLiteral(%q) should fail", text)
		}
	}
}

func TestUnescapeString(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"\x41\x42"`, "AB"},
		{`"q\"q"`, `q"q`},
		{`"\0"`, "\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := UnescapeString(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := UnescapeString(`"open`); err == nil {
		t.Error("malformed quotes must fail")
	}
}
