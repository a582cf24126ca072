package parser

import (
	"vigil/internal/diag"
	"vigil/internal/prog"
	"vigil/internal/symbols"
	"vigil/internal/token"
	"vigil/internal/types"
)

// parseUnit — основной цикл верхнего уровня: пока поток не кончился,
// разбираем внешние конструкции.
func (p *Parser) parseUnit() {
	for p.cur != prog.NoNodeID {
		p.parseExternal()
	}
}

// parseExternal выбирает по первым токенам нужный распознаватель: определение
// структуры или перечисления, функцию либо глобальные переменные.
func (p *Parser) parseExternal() {
	switch {
	case p.at(token.Semicolon):
		p.advance()
	case p.at(token.KwStruct) && p.peekTok(2) == token.LBrace:
		p.parseStructDef()
	case p.at(token.KwEnum) && (p.peekTok(1) == token.LBrace || p.peekTok(2) == token.LBrace):
		p.parseEnumDef()
	case p.isDeclStart():
		p.parseDeclOrFunc()
	default:
		p.err(diag.SynUnexpectedToken, "expected declaration")
		p.resyncTop()
	}
}

// parseDeclOrFunc разбирает спецификаторы и первый декларатор, после чего по
// '(' решает, функция перед нами или переменные.
func (p *Parser) parseDeclOrFunc() {
	spec := p.parseDeclSpec()
	if spec.ty == types.NoTypeID {
		p.err(diag.SynExpectType, "expected type")
		p.resyncTop()
		return
	}
	if p.at(token.Semicolon) {
		// struct S; и подобные форварды
		p.advance()
		return
	}
	nm, ty, ok := p.parseDeclarator(spec.ty)
	if !ok {
		p.resyncTop()
		return
	}
	if p.at(token.LParen) {
		p.parseFuncRest(nm, ty)
		return
	}
	storage := symbols.StorageGlobal
	p.parseVarDeclTail(nm, ty, spec, storage)
}

// parseVarDeclTail дообрабатывает декларацию переменных: инициализаторы и
// дополнительные деклараторы через запятую. Первый декларатор уже разобран.
func (p *Parser) parseVarDeclTail(nm prog.NodeID, ty types.TypeID, spec declSpec, storage symbols.Storage) {
	for {
		p.declareVar(nm, ty, spec, storage)
		if p.at(token.Assign) {
			eq := p.advance()
			if p.at(token.LBrace) {
				// агрегатный инициализатор: группа остаётся потоком без AST,
				// правым операндом '=' служит сама скобка
				lb := p.cur
				p.skipBraceGroup()
				p.g.SetBinary(eq, nm, lb)
			} else {
				rhs, ok := p.parseAssignExpr()
				if !ok {
					p.resyncStmt()
					return
				}
				p.g.SetBinary(eq, nm, rhs)
				p.typeBinary(eq)
			}
		}
		if p.at(token.Comma) {
			p.advance() // разделитель деклараторов: пунктуация
			var ok bool
			nm, ty, ok = p.parseDeclarator(spec.ty)
			if !ok {
				p.resyncStmt()
				return
			}
			continue
		}
		break
	}
	p.expectSemi()
}

// declareVar регистрирует переменную в текущем скоупе и привязывает её к
// узлу имени.
func (p *Parser) declareVar(nm prog.NodeID, ty types.TypeID, spec declSpec, storage symbols.Storage) prog.VarID {
	n := p.nd(nm)
	var flags symbols.VarFlags
	if spec.isConst {
		flags |= symbols.VarFlagConst
	}
	if spec.isStatic {
		storage = symbols.StorageStatic
	}
	if s := p.tab.Scopes.Get(p.scope); s != nil {
		if _, dup := s.Names[n.Text]; dup {
			p.errAt(n.Span, diag.SynDuplicateName, "redeclaration of '"+p.g.Text(nm)+"'")
		}
	}
	id := p.tab.Declare(p.scope, symbols.Variable{
		Name:    n.Text,
		Decl:    nm,
		Type:    ty,
		Storage: storage,
		Flags:   flags,
	})
	n.Var = id
	n.Type = ty
	n.Expr = p.tab.ExprKeyFor(token.Ident, id, 0, 0, 0)
	return id
}

// skipBraceGroup перепрыгивает сбалансированную {..} группу.
func (p *Parser) skipBraceGroup() {
	lb := p.cur
	link := p.nd(lb).Link
	p.advance()
	if link == prog.NoNodeID {
		p.resyncStmt()
		return
	}
	p.skipTo(link)
	p.advance()
}

// Functions ------------------------------------------------------------------

type paramDecl struct {
	nm prog.NodeID
	ty types.TypeID
}

// parseFuncRest разбирает параметры и тело либо прототип; имя и тип
// возврата уже разобраны.
func (p *Parser) parseFuncRest(nm prog.NodeID, ret types.TypeID) {
	p.advance() // '(' списка параметров: пунктуация
	var params []paramDecl
	switch {
	case p.at(token.RParen):
	case p.at(token.KwVoid) && p.peekTok(1) == token.RParen:
		p.advance()
	default:
		for {
			pd, ok := p.parseParam()
			if !ok {
				break
			}
			params = append(params, pd)
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynExpectRParen, "expected ')' after parameters"); !ok {
		p.resyncTop()
		return
	}

	name := p.nd(nm).Text
	var flags symbols.FuncFlags
	if p.opts.Library.IsNoReturn(p.g.Text(nm)) {
		flags |= symbols.FuncFlagNoReturn
	}

	if !p.at(token.LBrace) {
		// прототип
		fid := p.tab.Funcs.New(symbols.Function{Name: name, Def: nm, Ret: ret, Flags: flags})
		p.nd(nm).Func = fid
		p.expectSemi()
		return
	}

	fid := p.tab.Funcs.New(symbols.Function{
		Name:  name,
		Def:   nm,
		Ret:   ret,
		Flags: flags | symbols.FuncFlagDefined,
	})
	p.nd(nm).Func = fid
	prevFn := p.fn
	p.fn = fid
	sc := p.pushScope(symbols.ScopeFunction)
	fn := p.tab.Funcs.Get(fid)
	fn.Body = sc
	for _, pd := range params {
		if pd.nm == prog.NoNodeID {
			fn.Params = append(fn.Params, prog.NoVarID)
			continue
		}
		// имена параметров прошли до открытия скоупа, доштамповываем
		p.nd(pd.nm).Scope = sc
		id := p.declareVar(pd.nm, pd.ty, declSpec{}, symbols.StorageArgument)
		fn.Params = append(fn.Params, id)
	}
	p.parseBody(sc)
	p.fn = prevFn
	p.popScope()
}

// parseParam разбирает один параметр; имя может отсутствовать (прототипы).
func (p *Parser) parseParam() (paramDecl, bool) {
	spec := p.parseDeclSpec()
	if spec.ty == types.NoTypeID {
		p.err(diag.SynExpectType, "expected parameter type")
		return paramDecl{}, false
	}
	ty := spec.ty
	for p.at(token.Star) || p.at(token.KwConst) {
		s := p.advance()
		if p.nd(s).Tok == token.Star {
			p.nd(s).Kind = prog.NodePunct
			ty = p.ti.Pointer(ty)
		}
	}
	var nm prog.NodeID
	if p.at(token.Ident) {
		nm = p.advance()
	}
	// параметр-массив распадается в указатель
	for p.at(token.LBracket) {
		p.advance()
		if !p.at(token.RBracket) {
			if _, ok := p.parseAssignExpr(); !ok {
				break
			}
		}
		if _, ok := p.expect(token.RBracket, diag.SynExpectRBracket, "expected ']'"); !ok {
			break
		}
		ty = p.ti.Pointer(ty)
	}
	return paramDecl{nm: nm, ty: ty}, true
}

// Struct and enum definitions -------------------------------------------------

// parseStructDef разбирает определение структуры и заполняет её поля.
// Узлы полей остаются в потоке, но переменными не становятся: доступ к
// членам разрешается по типу владельца.
func (p *Parser) parseStructDef() {
	p.advance() // struct
	nm, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected struct name")
	if !ok {
		p.resyncTop()
		return
	}
	tid := p.structType(p.nd(nm).Text)
	p.nd(nm).Type = tid
	if _, ok := p.expect(token.LBrace, diag.SynExpectLBrace, "expected '{' in struct definition"); !ok {
		p.resyncTop()
		return
	}
	info, _ := p.ti.StructInfo(tid)
	info.Fields = info.Fields[:0]
	for !p.at(token.RBrace) && p.cur != prog.NoNodeID {
		fs := p.parseDeclSpec()
		if fs.ty == types.NoTypeID {
			p.err(diag.SynExpectType, "expected field type")
			p.resyncStmt()
			continue
		}
		for {
			fn, fty, ok := p.parseDeclarator(fs.ty)
			if !ok {
				p.resyncStmt()
				break
			}
			p.nd(fn).Type = fty
			info.Fields = append(info.Fields, types.StructField{Name: p.nd(fn).Text, Type: fty})
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			p.expectSemi()
			break
		}
	}
	p.expect(token.RBrace, diag.SynExpectRBrace, "expected '}' closing struct")
	p.expectSemi()
}

// parseEnumDef разбирает определение перечисления. Каждый перечислитель
// объявляется const-переменной типа enum; значения вычисляет движок.
func (p *Parser) parseEnumDef() {
	p.advance() // enum
	var tid types.TypeID
	if p.at(token.Ident) {
		nm := p.advance()
		tid = p.enumType(p.nd(nm).Text)
		p.nd(nm).Type = tid
	} else {
		tid = p.ti.NewEnum(types.EnumInfo{})
	}
	if _, ok := p.expect(token.LBrace, diag.SynExpectLBrace, "expected '{' in enum definition"); !ok {
		p.resyncTop()
		return
	}
	for !p.at(token.RBrace) && p.cur != prog.NoNodeID {
		enm, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected enumerator name")
		if !ok {
			// докрутить до запятой или закрывающей скобки
			for p.cur != prog.NoNodeID && !p.at_or(token.Comma, token.RBrace) {
				p.advance()
			}
		} else {
			n := p.nd(enm)
			id := p.tab.Declare(p.scope, symbols.Variable{
				Name:    n.Text,
				Decl:    enm,
				Type:    tid,
				Storage: symbols.StorageGlobal,
				Flags:   symbols.VarFlagConst,
			})
			n.Var = id
			n.Type = tid
			n.Expr = p.tab.ExprKeyFor(token.Ident, id, 0, 0, 0)
			if p.at(token.Assign) {
				eq := p.advance()
				val, ok := p.parseAssignExpr()
				if !ok {
					p.resyncStmt()
					return
				}
				p.g.SetBinary(eq, enm, val)
			}
		}
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBrace, diag.SynExpectRBrace, "expected '}' closing enum")
	p.expectSemi()
}
