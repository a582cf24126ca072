package parser

import (
	"slices"

	"vigil/internal/diag"
	"vigil/internal/lexer"
	"vigil/internal/library"
	"vigil/internal/prog"
	"vigil/internal/source"
	"vigil/internal/symbols"
	"vigil/internal/token"
	"vigil/internal/types"
)

// maxExprDepth bounds expression nesting before the parser refuses to recurse
// further. Deeper input is hostile or generated; either way one diagnostic is
// better than a blown stack.
const maxExprDepth = 200

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	MaxDepth      uint
	Reporter      diag.Reporter
	Platform      types.Platform
	Library       *library.Library
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Graph *prog.Graph
	Table *symbols.Table
	Types *types.Interner
	Bag   *diag.Bag
}

// Parser — состояние парсера на один файл
type Parser struct {
	g    *prog.Graph
	tab  *symbols.Table
	ti   *types.Interner
	lx   *lexer.Lexer
	opts Options

	cur   prog.NodeID // курсор по потоку узлов
	last  prog.NodeID // последний съеденный узел
	scope prog.ScopeID
	fn    prog.FuncID
	depth uint

	structs map[source.StringID]types.TypeID
	enums   map[source.StringID]types.TypeID
	b       types.Builtins

	lastSpan source.Span
}

// ParseFile — входная точка для разбора одного файла. Лексер создаётся
// внутри; его диагностики уходят в тот же Reporter через адаптер.
func ParseFile(file *source.File, opts Options) Result {
	if opts.Platform.Name == "" {
		opts.Platform = types.PlatformUnix64()
	}
	if opts.Library == nil {
		opts.Library = library.Default()
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = maxExprDepth
	}
	strings := source.NewInterner()
	p := Parser{
		g:       prog.NewGraph(strings, uint(len(file.Content)/4+16)),
		tab:     symbols.NewTable(symbols.Hints{Vars: 64, Scopes: 16, Funcs: 8}, strings),
		ti:      types.NewInterner(),
		lx:      lexer.New(file, lexer.Options{Reporter: lexAdapter{r: opts.Reporter}}),
		opts:    opts,
		structs: make(map[source.StringID]types.TypeID),
		enums:   make(map[source.StringID]types.TypeID),
	}
	p.b = p.ti.Builtins()
	p.lastSpan = source.Span{File: file.ID}

	p.tokenize()
	p.cur = p.g.First()
	unit := source.Span{File: file.ID, Start: 0, End: uint32(len(file.Content))}
	p.scope = p.tab.Scopes.New(symbols.ScopeGlobal, prog.NoScopeID, prog.NoFuncID, unit)
	p.parseUnit()

	var bag *diag.Bag
	if br, ok := opts.Reporter.(*diag.BagReporter); ok {
		bag = br.Bag
	}
	return Result{Graph: p.g, Table: p.tab, Types: p.ti, Bag: bag}
}

// lexAdapter переводит строковые виды ошибок лексера в коды диагностики.
type lexAdapter struct {
	r diag.Reporter
}

func (a lexAdapter) Report(kind string, sp source.Span, msg string) {
	if a.r == nil {
		return
	}
	code := diag.LexInfo
	switch kind {
	case "UnknownChar":
		code = diag.LexUnknownChar
	case "UnterminatedString":
		code = diag.LexUnterminatedString
	case "UnterminatedChar":
		code = diag.LexUnterminatedChar
	case "BadNumber":
		code = diag.LexBadNumber
	case "BadCharLiteral":
		code = diag.LexBadCharLiteral
	case "UnterminatedComment":
		code = diag.LexUnterminatedComment
	}
	a.r.Report(code, diag.SevError, sp, msg, nil)
}

// tokenize прогоняет лексер до EOF и материализует поток узлов графа, заодно
// связывая парные скобки. AST на этой фазе ещё не строится.
func (p *Parser) tokenize() {
	type openBracket struct {
		id  prog.NodeID
		tok token.Kind
	}
	var stack []openBracket
	for {
		t := p.lx.Next()
		if t.Kind == token.EOF {
			return
		}
		var text source.StringID
		switch t.Kind {
		case token.Ident, token.IntLit, token.FloatLit, token.CharLit, token.StringLit:
			text = p.g.Strings.Intern(t.Text)
		}
		id := p.g.NewNode(t.Kind, classify(t.Kind), t.Span, text)
		switch t.Kind {
		case token.LParen, token.LBracket, token.LBrace:
			stack = append(stack, openBracket{id: id, tok: t.Kind})
		case token.RParen, token.RBracket, token.RBrace:
			want := token.LParen
			switch t.Kind {
			case token.RBracket:
				want = token.LBracket
			case token.RBrace:
				want = token.LBrace
			}
			// непарные открывающие между вершиной и совпадением отбрасываем
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.tok == want {
					p.g.SetLink(top.id, id)
					break
				}
			}
		}
	}
}

// classify выбирает NodeKind по виду токена. Скобки, запятые и двоеточия
// рождаются пунктуацией; парсер повышает их до операторов, когда навешивает
// AST (вызов, индекс, аргументы, тернарник).
func classify(k token.Kind) prog.NodeKind {
	switch k {
	case token.Ident:
		return prog.NodeName
	case token.IntLit:
		return prog.NodeNumber
	case token.FloatLit:
		return prog.NodeFloat
	case token.StringLit:
		return prog.NodeString
	case token.CharLit:
		return prog.NodeChar
	case token.KwTrue, token.KwFalse:
		return prog.NodeBool
	case token.KwNull:
		return prog.NodeNull
	case token.LParen, token.RParen, token.LBracket, token.RBracket,
		token.LBrace, token.RBrace, token.Semicolon, token.Comma, token.Colon:
		return prog.NodePunct
	case token.KwIf, token.KwElse, token.KwWhile, token.KwDo, token.KwFor,
		token.KwReturn, token.KwBreak, token.KwContinue, token.KwSwitch,
		token.KwCase, token.KwDefault, token.KwGoto, token.KwSizeof,
		token.KwStruct, token.KwEnum, token.KwConst, token.KwStatic,
		token.KwExtern, token.KwUnsigned, token.KwSigned, token.KwVoid,
		token.KwBool, token.KwChar, token.KwShort, token.KwInt, token.KwLong,
		token.KwFloat, token.KwDouble:
		return prog.NodeKeyword
	}
	return prog.NodeOp
}

// Cursor helpers -------------------------------------------------------------

func (p *Parser) nd(id prog.NodeID) *prog.Node {
	return p.g.Get(id)
}

func (p *Parser) curTok() token.Kind {
	if p.cur == prog.NoNodeID {
		return token.EOF
	}
	return p.nd(p.cur).Tok
}

func (p *Parser) at(k token.Kind) bool {
	return p.curTok() == k
}

func (p *Parser) at_or(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.curTok())
}

// peekTok смотрит на ahead-й токен вперёд, не двигая курсор.
func (p *Parser) peekTok(ahead int) token.Kind {
	id := p.peekNode(ahead)
	if id == prog.NoNodeID {
		return token.EOF
	}
	return p.nd(id).Tok
}

func (p *Parser) peekNode(ahead int) prog.NodeID {
	id := p.cur
	for ; ahead > 0 && id != prog.NoNodeID; ahead-- {
		id = p.nd(id).Next
	}
	return id
}

// advance — съедает текущий узел, штампует на нём объемлющий скоуп и
// обновляет lastSpan
func (p *Parser) advance() prog.NodeID {
	id := p.cur
	if id == prog.NoNodeID {
		return prog.NoNodeID
	}
	n := p.nd(id)
	n.Scope = p.scope
	p.lastSpan = n.Span
	p.last = id
	p.cur = n.Next
	return id
}

// expect — ожидаем конкретный токен. Если нет — репортим и возвращаем
// (NoNodeID, false); курсор не двигается.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (prog.NodeID, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.err(code, msg)
	return prog.NoNodeID, false
}

// getDiagnosticSpan — возвращает лучший span для диагностики: на EOF берём
// позицию сразу за последним съеденным токеном.
func (p *Parser) getDiagnosticSpan() source.Span {
	if p.cur == prog.NoNodeID {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return p.nd(p.cur).Span
}

func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) errAt(sp source.Span, code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, sp, msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if p.opts.Reporter == nil {
		return false
	}
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Enough() {
		return false
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil)
	return true
}

// Recovery -------------------------------------------------------------------

// resyncStmt скручивает курсор до границы инструкции: за ближайшую ';' либо
// перед '}'. Связанные скобочные группы перепрыгиваются целиком.
func (p *Parser) resyncStmt() {
	for p.cur != prog.NoNodeID {
		n := p.nd(p.cur)
		switch n.Tok {
		case token.Semicolon:
			p.advance()
			return
		case token.RBrace:
			return
		case token.LParen, token.LBracket, token.LBrace:
			if n.Link != prog.NoNodeID {
				p.advance()
				p.skipTo(n.Link)
				p.advance()
				continue
			}
		}
		p.advance()
	}
}

// resyncTop скручивает курсор до следующей конструкции верхнего уровня.
func (p *Parser) resyncTop() {
	for p.cur != prog.NoNodeID {
		n := p.nd(p.cur)
		switch n.Tok {
		case token.Semicolon, token.RBrace:
			p.advance()
			return
		case token.LBrace:
			if n.Link != prog.NoNodeID {
				p.advance()
				p.skipTo(n.Link)
				p.advance()
				return
			}
		}
		p.advance()
	}
}

// skipTo подводит курсор к узлу target, штампуя скоупы по дороге.
func (p *Parser) skipTo(target prog.NodeID) {
	for p.cur != prog.NoNodeID && p.cur != target {
		p.advance()
	}
}
