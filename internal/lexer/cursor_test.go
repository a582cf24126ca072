package lexer

import (
	"testing"

	"vigil/internal/source"
)

// helper function to create a file
func createFile(content string) *source.File {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte(content))
	return fs.Get(id)
}

// TestSequentialReading проверяет последовательное чтение: "a\nb" → a, \n, b, EOF
func TestSequentialReading(t *testing.T) {
	file := createFile("a\nb")
	cursor := NewCursor(file)

	for _, want := range []byte{'a', '\n', 'b'} {
		if cursor.EOF() {
			t.Fatalf("unexpected EOF before %c", want)
		}
		if got := cursor.Peek(); got != want {
			t.Errorf("Peek: expected %c, got %c", want, got)
		}
		if got := cursor.Bump(); got != want {
			t.Errorf("Bump: expected %c, got %c", want, got)
		}
	}

	if !cursor.EOF() {
		t.Error("Expected EOF at end")
	}
	if cursor.Peek() != 0 {
		t.Errorf("Expected peek 0 at EOF, got %c", cursor.Peek())
	}
	if cursor.Bump() != 0 {
		t.Error("Expected bump 0 at EOF")
	}
}

// TestPeek2 проверяет Peek2 на середине и конце файла
func TestPeek2(t *testing.T) {
	file := createFile("abc")
	cursor := NewCursor(file)

	b0, b1, ok := cursor.Peek2()
	if !ok || b0 != 'a' || b1 != 'b' {
		t.Errorf("Expected Peek2('a','b',true), got (%c,%c,%v)", b0, b1, ok)
	}

	cursor.Bump()
	cursor.Bump()
	// остался один байт — Peek2 должен вернуть false
	if _, _, ok := cursor.Peek2(); ok {
		t.Error("Expected Peek2 to fail with one byte left")
	}
}

// TestPeek3 проверяет Peek3 у конца файла
func TestPeek3(t *testing.T) {
	file := createFile("xyz")
	cursor := NewCursor(file)

	b0, b1, b2, ok := cursor.Peek3()
	if !ok || b0 != 'x' || b1 != 'y' || b2 != 'z' {
		t.Errorf("Expected Peek3('x','y','z',true), got (%c,%c,%c,%v)", b0, b1, b2, ok)
	}

	cursor.Bump()
	if _, _, _, ok := cursor.Peek3(); ok {
		t.Error("Expected Peek3 to fail with two bytes left")
	}
}

// TestMarkSpanReset проверяет Mark/SpanFrom/Reset
func TestMarkSpanReset(t *testing.T) {
	file := createFile("hello")
	cursor := NewCursor(file)

	cursor.Bump() // 'h'
	m := cursor.Mark()
	cursor.Bump() // 'e'
	cursor.Bump() // 'l'

	sp := cursor.SpanFrom(m)
	if sp.Start != 1 || sp.End != 3 {
		t.Errorf("Expected span [1,3), got [%d,%d)", sp.Start, sp.End)
	}
	if sp.File != file.ID {
		t.Errorf("Span file mismatch: %v != %v", sp.File, file.ID)
	}

	cursor.Reset(m)
	if cursor.Peek() != 'e' {
		t.Errorf("After reset expected 'e', got %c", cursor.Peek())
	}
}

// TestEat проверяет условное потребление байта
func TestEat(t *testing.T) {
	file := createFile("ab")
	cursor := NewCursor(file)

	if cursor.Eat('x') {
		t.Error("Eat('x') should fail on 'a'")
	}
	if !cursor.Eat('a') {
		t.Error("Eat('a') should succeed")
	}
	if !cursor.Eat('b') {
		t.Error("Eat('b') should succeed")
	}
	if cursor.Eat('b') {
		t.Error("Eat at EOF should fail")
	}
}
