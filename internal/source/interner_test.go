package source

import "testing"

func TestInternReturnsStableIDs(t *testing.T) {
	in := NewInterner()

	a := in.Intern("size")
	b := in.Intern("empty")
	if a == b {
		t.Fatalf("distinct strings must get distinct ids")
	}
	if in.Intern("size") != a {
		t.Errorf("re-interning must return the original id")
	}
}

func TestInternEmptyStringIsNoStringID(t *testing.T) {
	in := NewInterner()
	if id := in.Intern(""); id != NoStringID {
		t.Errorf("empty string id = %d, want %d", id, NoStringID)
	}
	if in.Len() != 1 {
		t.Errorf("fresh interner Len = %d, want 1", in.Len())
	}
}

func TestLookupUnknownID(t *testing.T) {
	in := NewInterner()
	if _, ok := in.Lookup(StringID(42)); ok {
		t.Error("lookup of unknown id must fail")
	}
}

func TestInternBytesMatchesIntern(t *testing.T) {
	in := NewInterner()
	a := in.Intern("ptr")
	b := in.InternBytes([]byte("ptr"))
	if a != b {
		t.Errorf("InternBytes gave %d, Intern gave %d", b, a)
	}
}
