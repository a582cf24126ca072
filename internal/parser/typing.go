package parser

import (
	"fortio.org/safecast"

	"vigil/internal/library"
	"vigil/internal/prog"
	"vigil/internal/symbols"
	"vigil/internal/token"
	"vigil/internal/types"
)

// Типизация идёт снизу вверх прямо во время разбора: к моменту, когда
// оператор получает операнды, их типы уже посчитаны. Там же выдаются ключи
// структурного равенства; выражения с побочным эффектом ключей не получают.

// resolveName привязывает имя к переменной или функции. Незнакомые имена
// получают ключ по написанию: так движок сможет сличать вызовы одной и той
// же библиотечной функции.
func (p *Parser) resolveName(nm prog.NodeID) {
	n := p.nd(nm)
	if v, ok := p.tab.Resolve(p.scope, n.Text); ok {
		n.Var = v
		n.Type = p.tab.Vars.Get(v).Type
		n.Expr = p.tab.ExprKeyFor(token.Ident, v, 0, 0, 0)
		return
	}
	if f, ok := p.tab.Funcs.Find(n.Text); ok {
		n.Func = f
	}
	n.Expr = p.tab.ExprKeyFor(token.Ident, 0, n.Text, 0, 0)
}

func (p *Parser) typeLiteral(lit prog.NodeID) {
	n := p.nd(lit)
	switch n.Tok {
	case token.IntLit:
		if _, t, err := types.ParseIntLiteral(p.g.Text(lit), p.opts.Platform); err == nil {
			n.Type = p.ti.Intern(t)
		}
	case token.FloatLit:
		if _, t, err := types.ParseFloatLiteral(p.g.Text(lit)); err == nil {
			n.Type = p.ti.Intern(t)
		}
	case token.CharLit:
		// символьный литерал в C имеет тип int
		n.Type = p.b.Int
	case token.StringLit:
		if s, err := types.UnescapeString(p.g.Text(lit)); err == nil {
			if c, cerr := safecast.Conv[uint32](len(s) + 1); cerr == nil {
				n.Type = p.ti.Intern(types.MakeArray(p.b.Char, c))
			}
		}
	case token.KwTrue, token.KwFalse:
		n.Type = p.b.Bool
	case token.KwNull:
		n.Type = p.ti.Pointer(p.b.Void)
	}
	n.Expr = p.tab.ExprKeyFor(n.Tok, 0, n.Text, 0, 0)
}

func (p *Parser) typeUnary(op prog.NodeID) {
	n := p.nd(op)
	operand := p.nd(n.Left)
	if operand == nil {
		return
	}
	switch n.Tok {
	case token.Bang:
		n.Type = p.b.Int
	case token.Tilde:
		n.Type = p.promoteID(operand.Type)
	case token.Plus, token.Minus:
		n.Type = p.promoteArithID(operand.Type)
	case token.Star:
		n.Type = p.elemOf(operand.Type)
	case token.Amp:
		if operand.Type != types.NoTypeID {
			n.Type = p.ti.Pointer(operand.Type)
		}
		if operand.Var != prog.NoVarID {
			if v := p.tab.Vars.Get(operand.Var); v != nil {
				v.Flags |= symbols.VarFlagAddressTaken
			}
		}
	case token.PlusPlus, token.MinusMinus:
		n.Type = operand.Type
		return // мутация: без ключа
	}
	if lk := operand.Expr; lk != prog.NoExprKey {
		n.Expr = p.tab.ExprKeyFor(n.Tok, 0, 0, lk, 0)
	}
}

func (p *Parser) typeBinary(op prog.NodeID) {
	n := p.nd(op)
	l, r := p.nd(n.Left), p.nd(n.Right)
	if l == nil || r == nil {
		return
	}
	switch {
	case n.Tok == token.Comma:
		n.Type = r.Type
		return
	case n.IsAssign():
		n.Type = l.Type
		return
	case n.IsComparison(), n.Tok == token.AndAnd, n.Tok == token.OrOr:
		n.Type = p.b.Int
	case n.Tok == token.Shl, n.Tok == token.Shr:
		n.Type = p.promoteID(l.Type)
	default:
		n.Type = p.usualArith(l.Type, r.Type)
	}
	if l.Expr != prog.NoExprKey && r.Expr != prog.NoExprKey {
		n.Expr = p.tab.ExprKeyFor(n.Tok, 0, 0, l.Expr, r.Expr)
	}
}

func (p *Parser) typeTernary(q prog.NodeID) {
	n := p.nd(q)
	colon := p.nd(n.Right)
	if colon == nil {
		return
	}
	thenN, elseN := p.nd(colon.Left), p.nd(colon.Right)
	if thenN == nil || elseN == nil {
		return
	}
	ct := thenN.Type
	if thenN.Type != elseN.Type {
		ct = p.usualArith(thenN.Type, elseN.Type)
		if ct == types.NoTypeID {
			ct = thenN.Type
		}
	}
	colon.Type = ct
	n.Type = ct
	cond := p.nd(n.Left)
	if cond != nil && cond.Expr != prog.NoExprKey &&
		thenN.Expr != prog.NoExprKey && elseN.Expr != prog.NoExprKey {
		colon.Expr = p.tab.ExprKeyFor(token.Colon, 0, 0, thenN.Expr, elseN.Expr)
		n.Expr = p.tab.ExprKeyFor(token.Question, 0, 0, cond.Expr, colon.Expr)
	}
}

func (p *Parser) typeIndex(lb prog.NodeID) {
	n := p.nd(lb)
	base := p.nd(n.Left)
	idx := p.nd(n.Right)
	if base == nil || idx == nil {
		return
	}
	if t, ok := p.ti.Lookup(base.Type); ok {
		switch t.Kind {
		case types.KindPointer, types.KindArray:
			n.Type = t.Elem
		case types.KindContainer:
			n.Type = p.containerElem(base.Type)
		}
	}
	if base.Expr != prog.NoExprKey && idx.Expr != prog.NoExprKey {
		n.Expr = p.tab.ExprKeyFor(token.LBracket, 0, 0, base.Expr, idx.Expr)
	}
}

// typeMember типизирует a.b и a->b. Поля структур разрешаются по типу
// владельца; методы контейнеров получают тип на узле вызова.
func (p *Parser) typeMember(op prog.NodeID) {
	n := p.nd(op)
	base := p.nd(n.Left)
	member := p.nd(n.Right)
	if base == nil || member == nil {
		return
	}
	member.Expr = p.tab.ExprKeyFor(token.Ident, 0, member.Text, 0, 0)
	owner := base.Type
	if n.Tok == token.Arrow {
		owner = p.elemOf(owner)
	}
	if ft, ok := p.ti.FieldType(owner, member.Text); ok {
		n.Type = ft
		member.Type = ft
	}
	if base.Expr != prog.NoExprKey {
		n.Expr = p.tab.ExprKeyFor(n.Tok, 0, 0, base.Expr, member.Expr)
	}
}

// typeCall выводит тип результата вызова: по записи функции, по формуле
// аллокатора либо по yield-модели контейнерного метода.
func (p *Parser) typeCall(call prog.NodeID) {
	n := p.nd(call)
	callee := p.nd(n.Left)
	if callee == nil {
		return
	}
	switch {
	case callee.Kind == prog.NodeName:
		if callee.Func != prog.NoFuncID {
			n.Type = p.tab.Funcs.Get(callee.Func).Ret
		} else if _, ok := p.opts.Library.Alloc(p.g.Text(n.Left)); ok {
			n.Type = p.ti.Pointer(p.b.Void)
		}
	case callee.Kind == prog.NodeOp && (callee.Tok == token.Dot || callee.Tok == token.Arrow):
		n.Type = p.methodResult(callee)
	}
	rk := prog.NoExprKey
	if r := p.nd(n.Right); r != nil {
		rk = r.Expr
		if n.Right != prog.NoNodeID && rk == prog.NoExprKey {
			// аргумент без ключа: вызов не сличить структурно
			return
		}
	}
	if callee.Expr != prog.NoExprKey {
		n.Expr = p.tab.ExprKeyFor(token.LParen, 0, 0, callee.Expr, rk)
	}
}

// methodResult возвращает тип результата контейнерного метода по его yield.
func (p *Parser) methodResult(member *prog.Node) types.TypeID {
	recv := p.nd(member.Left)
	mname := p.nd(member.Right)
	if recv == nil || mname == nil {
		return types.NoTypeID
	}
	ct := recv.Type
	if member.Tok == token.Arrow {
		ct = p.elemOf(ct)
	}
	info, ok := p.ti.ContainerInfo(ct)
	if !ok {
		return types.NoTypeID
	}
	cname, ok := p.g.Strings.Lookup(info.Name)
	if !ok {
		return types.NoTypeID
	}
	method, ok := p.g.Strings.Lookup(mname.Text)
	if !ok {
		return types.NoTypeID
	}
	yield, ok := p.opts.Library.YieldOf(cname, method)
	if !ok {
		return types.NoTypeID
	}
	switch yield {
	case library.YieldSize:
		return p.b.ULong
	case library.YieldEmpty:
		return p.b.Bool
	case library.YieldItem, library.YieldAtIndex:
		return p.containerElem(ct)
	case library.YieldBuffer:
		return p.ti.Pointer(p.containerElem(ct))
	case library.YieldStartIterator, library.YieldEndIterator:
		return p.ti.Iterator(ct)
	}
	return types.NoTypeID
}

// Helpers --------------------------------------------------------------------

func (p *Parser) elemOf(id types.TypeID) types.TypeID {
	if t, ok := p.ti.Lookup(id); ok {
		switch t.Kind {
		case types.KindPointer, types.KindArray, types.KindIterator:
			return t.Elem
		}
	}
	return types.NoTypeID
}

// containerElem возвращает тип элемента контейнера; строкоподобные отдают
// char.
func (p *Parser) containerElem(id types.TypeID) types.TypeID {
	info, ok := p.ti.ContainerInfo(id)
	if !ok {
		return types.NoTypeID
	}
	if info.Elem != types.NoTypeID {
		return info.Elem
	}
	return p.b.Char
}

// promote повторяет целочисленный промоушен C: всё ниже int становится int.
func (p *Parser) promote(t types.Type) types.Type {
	if t.Kind == types.KindEnum {
		return types.MakeInt(types.RankInt)
	}
	if t.IsIntegral() && t.Rank < types.RankInt {
		return types.MakeInt(types.RankInt)
	}
	return t
}

func (p *Parser) promoteID(id types.TypeID) types.TypeID {
	t, ok := p.ti.Lookup(id)
	if !ok {
		return types.NoTypeID
	}
	if !t.IsIntegral() {
		return types.NoTypeID
	}
	return p.ti.Intern(p.promote(t))
}

func (p *Parser) promoteArithID(id types.TypeID) types.TypeID {
	t, ok := p.ti.Lookup(id)
	if !ok {
		return types.NoTypeID
	}
	if t.Kind == types.KindFloat {
		return id
	}
	if !t.IsIntegral() {
		return types.NoTypeID
	}
	return p.ti.Intern(p.promote(t))
}

// usualArith повторяет обычные арифметические преобразования: указательная
// арифметика, общий float-ранг, целочисленный промоушен и правило «при
// равном ранге беззнаковый побеждает».
func (p *Parser) usualArith(a, b types.TypeID) types.TypeID {
	ta, aok := p.ti.Lookup(a)
	tb, bok := p.ti.Lookup(b)
	if !aok || !bok {
		return types.NoTypeID
	}
	aPtr := ta.IsPointerLike() || ta.Kind == types.KindArray
	bPtr := tb.IsPointerLike() || tb.Kind == types.KindArray
	switch {
	case aPtr && bPtr:
		return p.b.Long // разность указателей
	case aPtr:
		if tb.IsIntegral() {
			return a
		}
		return types.NoTypeID
	case bPtr:
		if ta.IsIntegral() {
			return b
		}
		return types.NoTypeID
	}
	if !ta.IsArithmetic() || !tb.IsArithmetic() {
		return types.NoTypeID
	}
	if ta.Kind == types.KindFloat || tb.Kind == types.KindFloat {
		rank := types.RankFloat
		if ta.Kind == types.KindFloat && ta.Rank > rank {
			rank = ta.Rank
		}
		if tb.Kind == types.KindFloat && tb.Rank > rank {
			rank = tb.Rank
		}
		return p.ti.Intern(types.MakeFloat(rank))
	}
	pa := p.promote(ta)
	pb := p.promote(tb)
	hi := pa
	if pb.Rank > hi.Rank {
		hi = pb
	}
	if pa.Rank == pb.Rank && (pa.Kind == types.KindUint || pb.Kind == types.KindUint) {
		return p.ti.Intern(types.MakeUint(pa.Rank))
	}
	return p.ti.Intern(hi)
}
