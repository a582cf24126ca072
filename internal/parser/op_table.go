package parser

import "vigil/internal/token"

// Таблица приоритетов для бинарных операторов
// Чем больше число, тем выше приоритет
const (
	precComma          = 1  // ,
	precAssignment     = 2  // = += -= *= /= %= &= |= ^= <<= >>=
	precTernary        = 3  // ?:
	precLogicalOr      = 4  // ||
	precLogicalAnd     = 5  // &&
	precBitwiseOr      = 6  // |
	precBitwiseXor     = 7  // ^
	precBitwiseAnd     = 8  // &
	precEquality       = 9  // == !=
	precComparison     = 10 // < <= > >=
	precShift          = 11 // << >>
	precAdditive       = 12 // + -
	precMultiplicative = 13 // * / %
)

// binaryOperatorPrec возвращает приоритет и ассоциативность оператора.
// Возвращает (приоритет, правоассоциативный); (-1, false) для не-бинарных.
func binaryOperatorPrec(kind token.Kind) (int, bool) {
	switch kind {
	case token.Comma:
		return precComma, false

	// Присваивание (правоассоциативно)
	case token.Assign, token.PlusAssign, token.MinusAssign, token.StarAssign,
		token.SlashAssign, token.PercentAssign, token.AmpAssign,
		token.PipeAssign, token.CaretAssign, token.ShlAssign, token.ShrAssign:
		return precAssignment, true

	// Тернарный: разбирается отдельно, но в цикл входит через приоритет
	case token.Question:
		return precTernary, true

	// Логические операторы
	case token.OrOr:
		return precLogicalOr, false
	case token.AndAnd:
		return precLogicalAnd, false

	// Битовые операторы
	case token.Pipe:
		return precBitwiseOr, false
	case token.Caret:
		return precBitwiseXor, false
	case token.Amp:
		return precBitwiseAnd, false

	// Операторы равенства
	case token.EqEq, token.BangEq:
		return precEquality, false

	// Операторы сравнения
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison, false

	// Сдвиги
	case token.Shl, token.Shr:
		return precShift, false

	// Арифметические операторы
	case token.Plus, token.Minus:
		return precAdditive, false
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative, false

	default:
		return -1, false // не бинарный оператор
	}
}

// isExprStart отвечает, может ли токен начинать выражение.
func isExprStart(kind token.Kind) bool {
	switch kind {
	case token.Ident, token.IntLit, token.FloatLit, token.CharLit,
		token.StringLit, token.KwTrue, token.KwFalse, token.KwNull,
		token.LParen, token.Plus, token.Minus, token.Bang, token.Tilde,
		token.Star, token.Amp, token.PlusPlus, token.MinusMinus,
		token.KwSizeof:
		return true
	default:
		return false
	}
}
