package token

import "testing"

func TestKindStringCoversAllKinds(t *testing.T) {
	for k := Kind(0); k < kindCount; k++ {
		if k.String() == "Unknown" {
			t.Errorf("kind %d has no name", k)
		}
	}
}

func TestLookupKeyword(t *testing.T) {
	cases := []struct {
		text string
		want Kind
	}{
		{"if", KwIf},
		{"unsigned", KwUnsigned},
		{"sizeof", KwSizeof},
		{"NULL", KwNull},
		{"vector", Ident},
		{"IF", Ident}, // keywords are case-sensitive
	}
	for _, tc := range cases {
		if got := LookupKeyword(tc.text); got != tc.want {
			t.Errorf("LookupKeyword(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestIsAssignOp(t *testing.T) {
	yes := []Kind{Assign, PlusAssign, ShrAssign}
	no := []Kind{EqEq, Plus, PlusPlus}
	for _, k := range yes {
		if !(Token{Kind: k}).IsAssignOp() {
			t.Errorf("%v must be an assign op", k)
		}
	}
	for _, k := range no {
		if (Token{Kind: k}).IsAssignOp() {
			t.Errorf("%v must not be an assign op", k)
		}
	}
}

func TestIsTypeKeyword(t *testing.T) {
	if !IsTypeKeyword(KwUnsigned) || !IsTypeKeyword(KwConst) {
		t.Error("type specifiers must be type keywords")
	}
	if IsTypeKeyword(KwReturn) || IsTypeKeyword(Ident) {
		t.Error("non-type tokens must not be type keywords")
	}
}
