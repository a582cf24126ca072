package parser

import (
	"vigil/internal/diag"
	"vigil/internal/prog"
	"vigil/internal/source"
	"vigil/internal/symbols"
	"vigil/internal/token"
	"vigil/internal/types"
)

// Scopes ---------------------------------------------------------------------

func (p *Parser) pushScope(kind symbols.ScopeKind) prog.ScopeID {
	sc := p.tab.Scopes.New(kind, p.scope, p.fn, p.getDiagnosticSpan())
	p.scope = sc
	return sc
}

func (p *Parser) popScope() {
	if s := p.tab.Scopes.Get(p.scope); s != nil && s.Parent != prog.NoScopeID {
		p.scope = s.Parent
	}
}

// parseBody разбирает '{'...'}' в текущем скоупе и проставляет его границы.
func (p *Parser) parseBody(sc prog.ScopeID) {
	lb, ok := p.expect(token.LBrace, diag.SynExpectLBrace, "expected '{'")
	if !ok {
		p.resyncStmt()
		return
	}
	s := p.tab.Scopes.Get(sc)
	s.BodyStart = lb
	for !p.at(token.RBrace) {
		if p.cur == prog.NoNodeID {
			p.err(diag.SynUnterminatedScope, "missing '}' before end of file")
			// материализуем закрывающую скобку, чтобы скоуп имел конец
			sp := source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
			rb := p.g.InsertAfter(p.g.Last(), token.RBrace, prog.NodePunct, sp, source.NoStringID)
			p.nd(rb).Flags |= prog.FlagImplicit
			p.nd(rb).Scope = sc
			p.g.SetLink(lb, rb)
			s.BodyEnd = rb
			return
		}
		p.parseStmt()
	}
	rb := p.advance()
	s.BodyEnd = rb
	s.Span = p.nd(lb).Span.Cover(p.nd(rb).Span)
}

// parseBlock открывает дочерний скоуп вокруг '{'...'}'.
func (p *Parser) parseBlock(kind symbols.ScopeKind) prog.ScopeID {
	sc := p.pushScope(kind)
	p.parseBody(sc)
	p.popScope()
	return sc
}

// parseControlledBlock разбирает тело управляющей конструкции. Одиночная
// инструкция обрамляется неявными фигурными скобками: каждая ветка владеет
// настоящим скоупом с границами в потоке.
func (p *Parser) parseControlledBlock(kind symbols.ScopeKind) prog.ScopeID {
	if p.at(token.LBrace) {
		return p.parseBlock(kind)
	}
	sc := p.pushScope(kind)
	p.wrapStmtInBraces(sc)
	p.popScope()
	return sc
}

// wrapStmtInBraces вставляет неявные '{' '}' вокруг одной инструкции.
func (p *Parser) wrapStmtInBraces(sc prog.ScopeID) {
	s := p.tab.Scopes.Get(sc)
	sp := p.getDiagnosticSpan()
	open := p.g.InsertAfter(p.last, token.LBrace, prog.NodePunct,
		source.Span{File: sp.File, Start: sp.Start, End: sp.Start}, source.NoStringID)
	p.nd(open).Flags |= prog.FlagImplicit
	p.nd(open).Scope = sc
	s.BodyStart = open

	p.parseStmt()

	end := p.lastSpan
	closing := p.g.InsertAfter(p.last, token.RBrace, prog.NodePunct,
		source.Span{File: end.File, Start: end.End, End: end.End}, source.NoStringID)
	p.nd(closing).Flags |= prog.FlagImplicit
	p.nd(closing).Scope = sc
	p.g.SetLink(open, closing)
	s.BodyEnd = closing
	s.Span = p.nd(open).Span.Cover(p.nd(closing).Span)
	// вложенная конструкция вставляет свою скобку тем же способом: держим
	// last на нашей, чтобы внешние скобки не перекрестились
	p.last = closing
}

// Statements -----------------------------------------------------------------

func (p *Parser) parseStmt() {
	switch p.curTok() {
	case token.LBrace:
		p.parseBlock(symbols.ScopeBlock)
	case token.KwIf:
		p.parseIf()
	case token.KwWhile:
		p.parseWhile()
	case token.KwDo:
		p.parseDo()
	case token.KwFor:
		p.parseFor()
	case token.KwSwitch:
		p.parseSwitch()
	case token.KwReturn:
		p.parseReturn()
	case token.KwBreak, token.KwContinue:
		p.advance()
		p.expectSemi()
	case token.KwGoto:
		p.advance()
		p.expect(token.Ident, diag.SynExpectIdentifier, "expected label after goto")
		p.expectSemi()
	case token.KwCase:
		p.parseCaseLabel()
	case token.KwDefault:
		p.advance()
		p.expect(token.Colon, diag.SynExpectColon, "expected ':' after default")
	case token.KwElse:
		p.err(diag.SynStrayElse, "'else' without matching 'if'")
		p.advance()
	case token.Semicolon:
		p.advance()
	case token.KwStruct:
		if p.peekTok(2) == token.LBrace {
			p.parseStructDef()
			return
		}
		p.parseLocalDecl()
	case token.KwEnum:
		if p.peekTok(1) == token.LBrace || p.peekTok(2) == token.LBrace {
			p.parseEnumDef()
			return
		}
		p.parseLocalDecl()
	default:
		if p.isDeclStart() {
			p.parseLocalDecl()
			return
		}
		if p.at(token.Ident) && p.peekTok(1) == token.Colon {
			// метка: имя и двоеточие остаются в потоке
			p.advance()
			p.advance()
			return
		}
		if _, ok := p.parseExpr(); !ok {
			p.resyncStmt()
			return
		}
		p.expectSemi()
	}
}

func (p *Parser) expectSemi() {
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';'"); !ok {
		p.resyncStmt()
	}
}

// parseLocalDecl разбирает декларацию внутри тела функции.
func (p *Parser) parseLocalDecl() {
	spec := p.parseDeclSpec()
	if spec.ty == types.NoTypeID {
		p.err(diag.SynExpectType, "expected type in declaration")
		p.resyncStmt()
		return
	}
	if p.at(token.Semicolon) {
		p.advance()
		return
	}
	nm, ty, ok := p.parseDeclarator(spec.ty)
	if !ok {
		p.resyncStmt()
		return
	}
	p.parseVarDeclTail(nm, ty, spec, symbols.StorageLocal)
}

// Control flow ---------------------------------------------------------------

// parseCondParen разбирает '(' условие ')' и возвращает корень условия.
func (p *Parser) parseCondParen() (prog.NodeID, bool) {
	lp, ok := p.expect(token.LParen, diag.SynExpectLParen, "expected '('")
	if !ok {
		p.resyncStmt()
		return prog.NoNodeID, false
	}
	cond, ok := p.parseExpr()
	if !ok {
		// перескочить к закрывающей скобке условия
		if link := p.nd(lp).Link; link != prog.NoNodeID {
			p.skipTo(link)
		}
	}
	if _, rok := p.expect(token.RParen, diag.SynExpectRParen, "expected ')'"); !rok {
		p.resyncStmt()
		return cond, false
	}
	return cond, ok
}

// parseIf: условие виснет левым операндом узла 'if', ветки получают
// собственные скоупы, else-if продолжает цепочку без промежуточного скоупа.
func (p *Parser) parseIf() {
	ifID := p.advance()
	cond, ok := p.parseCondParen()
	if cond != prog.NoNodeID {
		p.g.SetUnary(ifID, cond)
	}
	if !ok && !p.at(token.LBrace) {
		return
	}
	p.parseControlledBlock(symbols.ScopeIf)
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			p.parseIf()
			return
		}
		p.parseControlledBlock(symbols.ScopeElse)
	}
}

func (p *Parser) parseWhile() {
	whileID := p.advance()
	cond, ok := p.parseCondParen()
	if cond != prog.NoNodeID {
		p.g.SetUnary(whileID, cond)
	}
	if !ok && !p.at(token.LBrace) {
		return
	}
	p.parseControlledBlock(symbols.ScopeWhile)
}

// parseDo: условие виснет на замыкающем 'while'.
func (p *Parser) parseDo() {
	p.advance() // do
	p.parseControlledBlock(symbols.ScopeDo)
	wk, ok := p.expect(token.KwWhile, diag.SynExpectWhile, "expected 'while' after do-body")
	if !ok {
		p.resyncStmt()
		return
	}
	cond, ok := p.parseCondParen()
	if cond != prog.NoNodeID {
		p.g.SetUnary(wk, cond)
	}
	if ok {
		p.expectSemi()
	}
}

// parseFor: заголовок и тело живут в одном скоупе, чтобы счётчик умирал на
// закрывающей скобке тела. Узел 'for' держит условие слева и шаг справа.
func (p *Parser) parseFor() {
	forID := p.advance()
	sc := p.pushScope(symbols.ScopeFor)
	defer p.popScope()
	if _, ok := p.expect(token.LParen, diag.SynExpectLParen, "expected '(' after for"); !ok {
		p.resyncStmt()
		return
	}
	// инициализация
	switch {
	case p.at(token.Semicolon):
		p.advance()
	case p.isDeclStart():
		p.parseLocalDecl() // сам съедает ';'
	default:
		if _, ok := p.parseExpr(); !ok {
			p.resyncStmt()
			return
		}
		if _, ok := p.expect(token.Semicolon, diag.SynBadForHeader, "expected ';' in for header"); !ok {
			p.resyncStmt()
			return
		}
	}
	// условие
	var cond prog.NodeID
	if !p.at(token.Semicolon) {
		cond, _ = p.parseExpr()
	}
	if _, ok := p.expect(token.Semicolon, diag.SynBadForHeader, "expected ';' in for header"); !ok {
		p.resyncStmt()
		return
	}
	// шаг
	var step prog.NodeID
	if !p.at(token.RParen) {
		step, _ = p.parseExpr()
	}
	if _, ok := p.expect(token.RParen, diag.SynExpectRParen, "expected ')' after for header"); !ok {
		p.resyncStmt()
		return
	}
	switch {
	case cond != prog.NoNodeID && step != prog.NoNodeID:
		p.g.SetBinary(forID, cond, step)
	case cond != prog.NoNodeID:
		p.g.SetUnary(forID, cond)
	case step != prog.NoNodeID:
		p.g.SetBinary(forID, prog.NoNodeID, step)
	}
	if p.at(token.LBrace) {
		p.parseBody(sc)
	} else {
		p.wrapStmtInBraces(sc)
	}
}

func (p *Parser) parseSwitch() {
	sw := p.advance()
	cond, ok := p.parseCondParen()
	if cond != prog.NoNodeID {
		p.g.SetUnary(sw, cond)
	}
	if !ok && !p.at(token.LBrace) {
		return
	}
	p.parseControlledBlock(symbols.ScopeSwitch)
}

func (p *Parser) parseCaseLabel() {
	c := p.advance() // case
	v, ok := p.parseAssignExpr()
	if !ok {
		p.err(diag.SynExpectCaseLabel, "expected constant after case")
		for p.cur != prog.NoNodeID && !p.at_or(token.Colon, token.Semicolon, token.RBrace) {
			p.advance()
		}
	} else {
		p.g.SetUnary(c, v)
	}
	p.expect(token.Colon, diag.SynExpectColon, "expected ':' after case label")
}

func (p *Parser) parseReturn() {
	r := p.advance()
	if !p.at(token.Semicolon) {
		v, ok := p.parseExpr()
		if !ok {
			p.resyncStmt()
			return
		}
		p.g.SetUnary(r, v)
	}
	p.expectSemi()
}
