package lexer

// skipTrivia съедает всё незначимое перед следующим токеном:
//   - пробелы, табы, \r, переводы строки
//   - //... до конца строки
//   - /* ... */ (без вложенности, как в C; незакрытый — репорт и обрезаем на EOF)
//   - #... до конца строки: вход уже препроцессирован, остатки директив игнорируем
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()

		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			lx.cursor.Bump()
			continue
		}

		if b == '#' {
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			continue
		}

		if b == '/' {
			if lx.skipComment() {
				continue
			}
		}

		// нет больше trivia
		break
	}
}

// //... или /*...*/; возвращает false, если это не комментарий (одиночный '/').
func (lx *Lexer) skipComment() bool {
	start := lx.cursor.Mark()
	if !lx.cursor.Eat('/') {
		return false
	}
	switch lx.cursor.Peek() {
	case '/':
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
		return true

	case '*':
		lx.cursor.Bump()
		for !lx.cursor.EOF() {
			if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '*' && b1 == '/' {
				lx.cursor.Bump()
				lx.cursor.Bump()
				return true
			}
			lx.cursor.Bump()
		}
		// EOF без '*/'
		sp := lx.cursor.SpanFrom(start)
		lx.report("UnterminatedComment", sp, "unterminated block comment")
		return true

	default:
		// это не комментарий — вернёмся, пусть сканируется как оператор '/'
		lx.cursor.Reset(start)
		return false
	}
}
