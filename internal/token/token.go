package token

import (
	"vigil/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is a numeric, character, string or
// boolean literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, CharLit, StringLit, KwTrue, KwFalse, KwNull:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsAssignOp reports whether the token assigns to its left operand,
// including the compound forms.
func (t Token) IsAssignOp() bool { return t.Kind.IsAssignOp() }

// IsComparisonOp reports whether the token compares its operands.
func (t Token) IsComparisonOp() bool { return t.Kind.IsComparisonOp() }
