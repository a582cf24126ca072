package lexer

import (
	"vigil/internal/token"
)

// Поддержка C-форм: 0, 123, 017, 0b101, 0x1F, 1.0, 1e-3, .5, 1.f, 0x1.8p3.
// Суффиксы (u, U, l, L, ll, f, F и их комбинации) остаются в Token.Text;
// Kind ставим как IntLit/FloatLit по форме числа, суффикс f/F форсирует
// FloatLit. Разбор значения и знаковости делает types.ParseIntLiteral.
// Неверные формы — репорт в opts.Reporter, токен по возможности завершаем.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()

	isFloat := false

	// ведущая точка — значит формат ".digits"
	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump() // '.'
		if !isDec(lx.cursor.Peek()) {
			return lx.badNumber(start, "expected digit after '.'")
		}
		isFloat = true
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		if !lx.scanExponent(&isFloat, 'e', 'E') {
			return lx.badNumber(start, "expected digit after exponent")
		}
		return lx.emitNumber(start, isFloat)
	}

	// ведущий 0 и база?
	if lx.cursor.Peek() == '0' {
		lx.cursor.Bump()
		switch lx.cursor.Peek() {
		case 'x', 'X':
			lx.cursor.Bump()
			if !isHex(lx.cursor.Peek()) && lx.cursor.Peek() != '.' {
				return lx.badNumber(start, "expected hex digit after 0x")
			}
			for isHex(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			// шестнадцатеричный float: 0x1.8p3; экспонента p обязательна
			if lx.cursor.Peek() == '.' {
				lx.cursor.Bump()
				isFloat = true
				for isHex(lx.cursor.Peek()) {
					lx.cursor.Bump()
				}
				if lx.cursor.Peek() != 'p' && lx.cursor.Peek() != 'P' {
					return lx.badNumber(start, "hex float requires a p exponent")
				}
			}
			if !lx.scanExponent(&isFloat, 'p', 'P') {
				return lx.badNumber(start, "expected digit after exponent")
			}
			return lx.emitNumber(start, isFloat)

		case 'b', 'B':
			lx.cursor.Bump()
			for {
				b := lx.cursor.Peek()
				if b == '0' || b == '1' {
					lx.cursor.Bump()
				} else {
					break
				}
			}
			return lx.emitNumber(start, false)

		default:
			// восьмеричный "017" либо просто "0" (возможно далее дробь)
			for lx.cursor.Peek() >= '0' && lx.cursor.Peek() <= '7' {
				lx.cursor.Bump()
			}
		}
	}

	// десятичная целая часть
	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}

	// дробная часть: в C точка после числа всегда часть литерала
	// ("1." и "1.f" — валидные float)
	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		isFloat = true
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}

	if !lx.scanExponent(&isFloat, 'e', 'E') {
		return lx.badNumber(start, "expected digit after exponent")
	}
	return lx.emitNumber(start, isFloat)
}

// экспонента [eE|pP][+-]?digits; выставляет isFloat, если встретилась.
// false — после e/E не оказалось цифр.
func (lx *Lexer) scanExponent(isFloat *bool, lo, up byte) bool {
	if lx.cursor.Peek() != lo && lx.cursor.Peek() != up {
		return true
	}
	*isFloat = true
	lx.cursor.Bump()
	if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
		lx.cursor.Bump()
	}
	if !isDec(lx.cursor.Peek()) {
		return false
	}
	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	return true
}

// emitNumber съедает хвостовые суффиксы u/U/l/L/f/F и собирает токен.
func (lx *Lexer) emitNumber(start Mark, isFloat bool) token.Token {
	for {
		b := lx.cursor.Peek()
		if b == 'u' || b == 'U' || b == 'l' || b == 'L' {
			lx.cursor.Bump()
			continue
		}
		if b == 'f' || b == 'F' {
			isFloat = true
			lx.cursor.Bump()
			continue
		}
		break
	}
	kind := token.IntLit
	if isFloat {
		kind = token.FloatLit
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) badNumber(start Mark, msg string) token.Token {
	sp := lx.cursor.SpanFrom(start)
	lx.report("BadNumber", sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
