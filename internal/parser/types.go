package parser

import (
	"fortio.org/safecast"

	"vigil/internal/diag"
	"vigil/internal/prog"
	"vigil/internal/source"
	"vigil/internal/token"
	"vigil/internal/types"
)

// declSpec — результат разбора спецификаторов: базовый тип плюс класс
// хранения.
type declSpec struct {
	ty       types.TypeID
	isConst  bool
	isStatic bool
	isExtern bool
}

// parseDeclSpec разбирает последовательность спецификаторов типа и класса
// хранения, без звёздочек деклараторов. При отсутствии типа возвращает
// NoTypeID: решать, ошибка ли это, должен вызывающий.
func (p *Parser) parseDeclSpec() declSpec {
	var (
		spec      declSpec
		unsigned  bool
		signedKw  bool
		short     bool
		longCount int
		base      token.Kind
		named     types.TypeID
	)
loop:
	for {
		switch p.curTok() {
		case token.KwConst:
			spec.isConst = true
			p.advance()
		case token.KwStatic:
			spec.isStatic = true
			p.advance()
		case token.KwExtern:
			spec.isExtern = true
			p.advance()
		case token.KwUnsigned:
			unsigned = true
			p.advance()
		case token.KwSigned:
			signedKw = true
			p.advance()
		case token.KwShort:
			short = true
			p.advance()
		case token.KwLong:
			longCount++
			p.advance()
		case token.KwVoid, token.KwBool, token.KwChar, token.KwInt,
			token.KwFloat, token.KwDouble:
			base = p.curTok()
			p.advance()
		case token.KwStruct:
			p.advance()
			nm, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected struct name")
			if !ok {
				break loop
			}
			named = p.structType(p.nd(nm).Text)
			p.nd(nm).Type = named
		case token.KwEnum:
			p.advance()
			nm, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected enum name")
			if !ok {
				break loop
			}
			named = p.enumType(p.nd(nm).Text)
			p.nd(nm).Type = named
		case token.Ident:
			if named == types.NoTypeID && base == 0 && !unsigned && !signedKw &&
				!short && longCount == 0 && p.isContainerNameNode(p.cur) {
				named = p.parseContainerType()
				continue
			}
			break loop
		default:
			break loop
		}
	}

	if named != types.NoTypeID {
		spec.ty = named
		return spec
	}
	switch base {
	case token.KwVoid:
		spec.ty = p.b.Void
	case token.KwBool:
		spec.ty = p.b.Bool
	case token.KwFloat:
		spec.ty = p.b.Float
	case token.KwDouble:
		spec.ty = p.b.Double
	case token.KwChar:
		switch {
		case unsigned:
			spec.ty = p.b.UChar
		case signedKw:
			spec.ty = p.b.SChar
		default:
			spec.ty = p.b.Char
		}
	default:
		// семейство int; голые unsigned/signed/short/long тоже сюда
		intish := base == token.KwInt || unsigned || signedKw || short || longCount > 0
		if !intish {
			return spec // типа не было
		}
		switch {
		case longCount >= 2:
			spec.ty = pick(unsigned, p.b.ULongLong, p.b.LongLong)
		case longCount == 1:
			spec.ty = pick(unsigned, p.b.ULong, p.b.Long)
		case short:
			spec.ty = pick(unsigned, p.b.UShort, p.b.Short)
		default:
			spec.ty = pick(unsigned, p.b.UInt, p.b.Int)
		}
	}
	return spec
}

func pick(cond bool, a, b types.TypeID) types.TypeID {
	if cond {
		return a
	}
	return b
}

// parseTypeName разбирает абстрактное имя типа (для каста и sizeof):
// спецификаторы плюс звёздочки, без имени.
func (p *Parser) parseTypeName() (types.TypeID, bool) {
	spec := p.parseDeclSpec()
	if spec.ty == types.NoTypeID {
		p.err(diag.SynExpectType, "expected type name")
		return types.NoTypeID, false
	}
	ty := spec.ty
	for p.at(token.Star) || p.at(token.KwConst) {
		s := p.advance()
		if p.nd(s).Tok == token.Star {
			p.nd(s).Kind = prog.NodePunct
			ty = p.ti.Pointer(ty)
		}
	}
	return ty, true
}

// parseDeclarator разбирает звёздочки, имя и суффиксы массивов поверх
// базового типа.
func (p *Parser) parseDeclarator(base types.TypeID) (prog.NodeID, types.TypeID, bool) {
	ty := base
	for p.at(token.Star) || p.at(token.KwConst) {
		s := p.advance()
		if p.nd(s).Tok == token.Star {
			p.nd(s).Kind = prog.NodePunct
			ty = p.ti.Pointer(ty)
		}
	}
	nm, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected name in declaration")
	if !ok {
		return prog.NoNodeID, ty, false
	}
	var counts []uint32
	for p.at(token.LBracket) {
		p.advance()
		count := types.ArrayUnknownLength
		if !p.at(token.RBracket) {
			szExpr, ok := p.parseAssignExpr()
			if ok && szExpr != prog.NoNodeID && p.nd(szExpr).Kind == prog.NodeNumber {
				if v, _, err := types.ParseIntLiteral(p.g.Text(szExpr), p.opts.Platform); err == nil && v >= 0 {
					if c, cerr := safecast.Conv[uint32](v); cerr == nil {
						count = c
					}
				}
			}
		}
		if _, ok := p.expect(token.RBracket, diag.SynExpectRBracket, "expected ']' in array declarator"); !ok {
			return nm, ty, false
		}
		counts = append(counts, count)
	}
	// a[2][3] — массив из 2 массивов по 3: сворачиваем справа налево
	for i := len(counts) - 1; i >= 0; i-- {
		ty = p.ti.Intern(types.MakeArray(ty, counts[i]))
	}
	return nm, ty, true
}

// Containers -----------------------------------------------------------------

// isContainerNameNode отвечает, известно ли библиотеке контейнерное имя.
func (p *Parser) isContainerNameNode(id prog.NodeID) bool {
	n := p.nd(id)
	if n == nil || n.Tok != token.Ident {
		return false
	}
	_, ok := p.opts.Library.Container(p.g.Text(id))
	return ok
}

// parseContainerType разбирает vector<int> или голое string. Угловые скобки
// шаблона понижаются до пунктуации, чтобы не путаться со сравнениями.
func (p *Parser) parseContainerType() types.TypeID {
	nm := p.advance()
	name := p.nd(nm).Text
	var args []types.TypeID
	if p.at(token.Lt) {
		lt := p.advance()
		p.nd(lt).Kind = prog.NodePunct
		for {
			at, ok := p.parseTypeName()
			if !ok {
				break
			}
			args = append(args, at)
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		if p.at(token.Gt) {
			gt := p.advance()
			p.nd(gt).Kind = prog.NodePunct
		} else {
			// '>>' двух вложенных шаблонов не поддерживаем: нужен пробел
			p.err(diag.SynUnexpectedToken, "expected '>' closing template arguments")
		}
	}
	info := types.ContainerInfo{Name: name, TypeArgs: args}
	if len(args) > 0 {
		info.Elem = args[0]
	}
	id := p.ti.NewContainer(info)
	p.nd(nm).Type = id
	return id
}

// Lookahead ------------------------------------------------------------------

// typeNameAhead отвечает, начинается ли с узла имя типа.
func (p *Parser) typeNameAhead(id prog.NodeID) bool {
	if id == prog.NoNodeID {
		return false
	}
	n := p.nd(id)
	if n.Tok == token.KwConst {
		return p.typeNameAhead(n.Next)
	}
	if token.IsTypeKeyword(n.Tok) {
		return true
	}
	return n.Tok == token.Ident && p.isContainerNameNode(id)
}

// castAhead отличает (тип)выражение от группирующих скобок: внутри скобок
// только типоподобные токены, следом идёт начало выражения.
func (p *Parser) castAhead() bool {
	if !p.at(token.LParen) {
		return false
	}
	link := p.nd(p.cur).Link
	if link == prog.NoNodeID {
		return false
	}
	first := p.nd(p.cur).Next
	if first == link || !p.typeNameAhead(first) {
		return false
	}
	expectIdent := false
	for id := first; id != link && id != prog.NoNodeID; id = p.nd(id).Next {
		switch p.nd(id).Tok {
		case token.KwConst, token.KwUnsigned, token.KwSigned, token.KwVoid,
			token.KwBool, token.KwChar, token.KwShort, token.KwInt,
			token.KwLong, token.KwFloat, token.KwDouble, token.Star,
			token.Lt, token.Gt, token.Comma:
		case token.KwStruct, token.KwEnum:
			expectIdent = true
		case token.Ident:
			if expectIdent {
				expectIdent = false
			} else if !p.isContainerNameNode(id) {
				return false
			}
		default:
			return false
		}
	}
	after := p.nd(link).Next
	if after == prog.NoNodeID {
		return false
	}
	return isExprStart(p.nd(after).Tok)
}

// isDeclStart отвечает, начинается ли с текущего токена декларация.
// Контейнерное имя считается типом только в типовой позиции и только если
// его не затеняет переменная.
func (p *Parser) isDeclStart() bool {
	k := p.curTok()
	if token.IsTypeKeyword(k) || k == token.KwStatic || k == token.KwExtern {
		return true
	}
	if k != token.Ident || !p.isContainerNameNode(p.cur) {
		return false
	}
	if _, shadowed := p.tab.Resolve(p.scope, p.nd(p.cur).Text); shadowed {
		return false
	}
	nxt := p.peekTok(1)
	return nxt == token.Lt || nxt == token.Ident
}

// Named user types ------------------------------------------------------------

// structType возвращает тип структуры по имени, создавая форварду пустую
// запись: поля дополнит определение, когда встретится.
func (p *Parser) structType(name source.StringID) types.TypeID {
	if id, ok := p.structs[name]; ok {
		return id
	}
	id := p.ti.NewStruct(types.StructInfo{Name: name})
	p.structs[name] = id
	return id
}

// enumType возвращает тип перечисления по имени.
func (p *Parser) enumType(name source.StringID) types.TypeID {
	if id, ok := p.enums[name]; ok {
		return id
	}
	id := p.ti.NewEnum(types.EnumInfo{Name: name})
	p.enums[name] = id
	return id
}
