package parser

import (
	"vigil/internal/diag"
	"vigil/internal/prog"
	"vigil/internal/token"
)

// parseExpr разбирает полное выражение, включая оператор запятая.
func (p *Parser) parseExpr() (prog.NodeID, bool) {
	return p.parseBinaryExpr(precComma)
}

// parseAssignExpr разбирает выражение без запятой верхнего уровня: аргументы
// вызовов, инициализаторы.
func (p *Parser) parseAssignExpr() (prog.NodeID, bool) {
	return p.parseBinaryExpr(precAssignment)
}

// parseBinaryExpr — стандартный прецедентный цикл. Узлы операторов уже лежат
// в потоке; дело цикла — навесить на них Left/Right.
func (p *Parser) parseBinaryExpr(minPrec int) (prog.NodeID, bool) {
	if !p.enterExpr() {
		return prog.NoNodeID, false
	}
	defer p.leaveExpr()

	lhs, ok := p.parseUnaryExpr()
	if !ok {
		return prog.NoNodeID, false
	}
	for {
		kind := p.curTok()
		prec, rightAssoc := binaryOperatorPrec(kind)
		if prec < minPrec {
			return lhs, true
		}
		if kind == token.Question {
			lhs, ok = p.parseTernaryTail(lhs)
			if !ok {
				return prog.NoNodeID, false
			}
			continue
		}
		op := p.advance()
		if kind == token.Comma {
			p.nd(op).Kind = prog.NodeOp
		}
		nextMin := prec + 1
		if rightAssoc {
			nextMin = prec
		}
		rhs, ok := p.parseBinaryExpr(nextMin)
		if !ok {
			// оставляем полусобранный узел: lhs уже пристёгнут ниже по
			// потоку, вернуть есть что
			p.g.SetUnary(op, lhs)
			return op, false
		}
		p.g.SetBinary(op, lhs, rhs)
		p.typeBinary(op)
		lhs = op
	}
}

// parseTernaryTail доразбирает cond ? a : b, где cond уже разобран.
// Обе ветви висят под ':', сам ':' — правый операнд '?'.
func (p *Parser) parseTernaryTail(cond prog.NodeID) (prog.NodeID, bool) {
	q := p.advance() // '?'
	thenE, ok := p.parseBinaryExpr(precComma)
	if !ok {
		return prog.NoNodeID, false
	}
	colon, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' in conditional expression")
	if !ok {
		return prog.NoNodeID, false
	}
	p.nd(colon).Kind = prog.NodeOp
	elseE, ok := p.parseBinaryExpr(precTernary)
	if !ok {
		return prog.NoNodeID, false
	}
	p.g.SetBinary(colon, thenE, elseE)
	p.g.SetBinary(q, cond, colon)
	p.typeTernary(q)
	return q, true
}

// parseUnaryExpr разбирает префиксные операторы, касты и sizeof.
func (p *Parser) parseUnaryExpr() (prog.NodeID, bool) {
	if !p.enterExpr() {
		return prog.NoNodeID, false
	}
	defer p.leaveExpr()

	switch p.curTok() {
	case token.Plus, token.Minus, token.Bang, token.Tilde, token.Star,
		token.Amp, token.PlusPlus, token.MinusMinus:
		op := p.advance()
		operand, ok := p.parseUnaryExpr()
		if !ok {
			return prog.NoNodeID, false
		}
		p.g.SetUnary(op, operand)
		p.typeUnary(op)
		return op, true

	case token.KwSizeof:
		return p.parseSizeof()

	case token.LParen:
		if p.castAhead() {
			return p.parseCastExpr()
		}
	}
	base, ok := p.parsePrimaryExpr()
	if !ok {
		return prog.NoNodeID, false
	}
	return p.parsePostfixExpr(base)
}

// parseCastExpr разбирает (тип)операнд. Узел '(' становится оператором каста
// и узнаёт целевой тип; токены имени типа остаются в потоке без AST.
func (p *Parser) parseCastExpr() (prog.NodeID, bool) {
	lp := p.advance()
	n := p.nd(lp)
	n.Kind = prog.NodeOp
	n.Flags |= prog.FlagCast
	ty, ok := p.parseTypeName()
	if !ok {
		p.resyncStmt()
		return prog.NoNodeID, false
	}
	if _, ok := p.expect(token.RParen, diag.SynExpectRParen, "expected ')' after cast type"); !ok {
		return prog.NoNodeID, false
	}
	p.nd(lp).Type = ty
	operand, ok := p.parseUnaryExpr()
	if !ok {
		return prog.NoNodeID, false
	}
	p.g.SetUnary(lp, operand)
	return lp, true
}

// parseSizeof разбирает обе формы: sizeof expr и sizeof(тип). Во второй
// форме операндом становится первый узел имени типа, на нём же оседает
// запрошенный тип.
func (p *Parser) parseSizeof() (prog.NodeID, bool) {
	sz := p.advance()
	if p.at(token.LParen) && p.typeNameAhead(p.peekNode(1)) {
		p.advance() // '(' остаётся пунктуацией
		first := p.cur
		ty, ok := p.parseTypeName()
		if !ok {
			p.resyncStmt()
			return prog.NoNodeID, false
		}
		if _, ok := p.expect(token.RParen, diag.SynExpectRParen, "expected ')' after sizeof type"); !ok {
			return prog.NoNodeID, false
		}
		p.nd(first).Type = ty
		p.g.SetUnary(sz, first)
	} else {
		operand, ok := p.parseUnaryExpr()
		if !ok {
			return prog.NoNodeID, false
		}
		p.g.SetUnary(sz, operand)
	}
	p.nd(sz).Type = p.b.ULong
	return sz, true
}

// parsePostfixExpr навешивает постфиксы: вызовы, индексацию, доступ к членам
// и постфиксные ++/--.
func (p *Parser) parsePostfixExpr(base prog.NodeID) (prog.NodeID, bool) {
	for {
		switch p.curTok() {
		case token.LParen:
			call, ok := p.parseCallTail(base)
			if !ok {
				return prog.NoNodeID, false
			}
			base = call

		case token.LBracket:
			lb := p.advance()
			p.nd(lb).Kind = prog.NodeOp
			idx, ok := p.parseExpr()
			if !ok {
				return prog.NoNodeID, false
			}
			if _, ok := p.expect(token.RBracket, diag.SynExpectRBracket, "expected ']'"); !ok {
				return prog.NoNodeID, false
			}
			p.g.SetBinary(lb, base, idx)
			p.typeIndex(lb)
			base = lb

		case token.Dot, token.Arrow:
			op := p.advance()
			nm, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected member name")
			if !ok {
				return prog.NoNodeID, false
			}
			p.g.SetBinary(op, base, nm)
			p.typeMember(op)
			base = op

		case token.PlusPlus, token.MinusMinus:
			op := p.advance()
			p.nd(op).Flags |= prog.FlagPostfix
			p.g.SetUnary(op, base)
			p.nd(op).Type = p.nd(base).Type
			base = op

		default:
			return base, true
		}
	}
}

// parseCallTail разбирает список аргументов; '(' повышается до оператора
// вызова, аргументы собираются левоассоциативной цепочкой запятых.
func (p *Parser) parseCallTail(base prog.NodeID) (prog.NodeID, bool) {
	lp := p.advance()
	p.nd(lp).Kind = prog.NodeOp
	if p.at(token.RParen) {
		p.advance()
		p.g.SetUnary(lp, base)
		p.typeCall(lp)
		return lp, true
	}
	argsRoot, ok := p.parseAssignExpr()
	if !ok {
		return prog.NoNodeID, false
	}
	for p.at(token.Comma) {
		comma := p.advance()
		p.nd(comma).Kind = prog.NodeOp
		arg, ok := p.parseAssignExpr()
		if !ok {
			return prog.NoNodeID, false
		}
		p.g.SetBinary(comma, argsRoot, arg)
		// разделители аргументов — чистая структура: ключуем, чтобы весь
		// вызов оставался сличимым
		cn := p.nd(comma)
		cn.Type = p.nd(arg).Type
		if lk, rk := p.nd(argsRoot).Expr, p.nd(arg).Expr; lk != prog.NoExprKey && rk != prog.NoExprKey {
			cn.Expr = p.tab.ExprKeyFor(token.Comma, 0, 0, lk, rk)
		}
		argsRoot = comma
	}
	if _, ok := p.expect(token.RParen, diag.SynExpectRParen, "expected ')' after arguments"); !ok {
		return prog.NoNodeID, false
	}
	p.g.SetBinary(lp, base, argsRoot)
	p.typeCall(lp)
	return lp, true
}

// parsePrimaryExpr разбирает листья: имена, литералы и группирующие скобки.
func (p *Parser) parsePrimaryExpr() (prog.NodeID, bool) {
	switch p.curTok() {
	case token.Ident:
		nm := p.advance()
		p.resolveName(nm)
		return nm, true

	case token.IntLit, token.FloatLit, token.CharLit, token.StringLit,
		token.KwTrue, token.KwFalse, token.KwNull:
		lit := p.advance()
		p.typeLiteral(lit)
		return lit, true

	case token.LParen:
		lp := p.advance() // группировка: остаётся пунктуацией
		inner, ok := p.parseExpr()
		if !ok {
			// перепрыгнуть остаток группы, чтобы не зациклиться
			if link := p.nd(lp).Link; link != prog.NoNodeID {
				p.skipTo(link)
				p.advance()
			}
			return prog.NoNodeID, false
		}
		if _, ok := p.expect(token.RParen, diag.SynExpectRParen, "expected ')'"); !ok {
			return prog.NoNodeID, false
		}
		p.nd(inner).Flags |= prog.FlagParens
		return inner, true
	}
	p.err(diag.SynExpectExpression, "expected expression")
	return prog.NoNodeID, false
}

// Depth guard ----------------------------------------------------------------

func (p *Parser) enterExpr() bool {
	if p.depth >= p.opts.MaxDepth {
		p.err(diag.SynTooDeep, "expression nesting too deep")
		return false
	}
	p.depth++
	return true
}

func (p *Parser) leaveExpr() {
	p.depth--
}
