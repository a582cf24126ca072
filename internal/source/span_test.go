package source

import "testing"

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}

	got := a.Cover(b)
	if got.Start != 2 || got.End != 8 {
		t.Errorf("Cover = %v, want 1:2-8", got)
	}
}

func TestSpanCoverDifferentFiles(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 2, Start: 0, End: 100}

	if got := a.Cover(b); got != a {
		t.Errorf("cross-file Cover must be a no-op, got %v", got)
	}
}

func TestSpanContains(t *testing.T) {
	s := Span{File: 0, Start: 3, End: 6}
	for off, want := range map[uint32]bool{2: false, 3: true, 5: true, 6: false} {
		if got := s.Contains(off); got != want {
			t.Errorf("Contains(%d) = %v, want %v", off, got, want)
		}
	}
}

func TestSpanEmptyAndLen(t *testing.T) {
	if !(Span{Start: 5, End: 5}).Empty() {
		t.Error("zero-length span must be empty")
	}
	if (Span{Start: 5, End: 9}).Len() != 4 {
		t.Error("Len of 5..9 must be 4")
	}
}
