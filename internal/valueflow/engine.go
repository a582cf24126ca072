package valueflow

import (
	"strconv"

	"vigil/internal/library"
	"vigil/internal/prog"
	"vigil/internal/symbols"
	"vigil/internal/token"
	"vigil/internal/trace"
	"vigil/internal/types"
	"vigil/internal/value"
)

// pass is one named step of the pipeline. Every pass must be idempotent: the
// corpus refuses duplicate claims, so re-running a pass only adds what newly
// published facts enable.
type pass struct {
	name string
	run  func(*Context)
}

// pipeline returns the pass list in dependency order: leaves first, then the
// walking passes that consume them, lifetimes last because they read the
// call-argument facts planted before.
func pipeline() []pass {
	return []pass{
		{"literals", passLiterals},
		{"enums", passEnums},
		{"constants", passConstants},
		{"sizeof", passSizeof},
		{"same-expression", passSameExpressions},
		{"allocations", passAllocations},
		{"container-init", passContainerInit},
		{"uninit", passUninit},
		{"assignments", passAssignments},
		{"unroll", passUnrollLoops},
		{"bitand", passBitAnd},
		{"conditions", passConditions},
		{"moves", passMoves},
		{"function-return", passFunctionReturns},
		{"subfunction", passSubFunctions},
		{"safe-arguments", passSafeArguments},
		{"derefs", passDerefs},
		{"lifetimes", passLifetimes},
	}
}

// Analyze fills the context corpus by repeating the pass pipeline until it
// stops producing facts or the cycle budget runs out. The corpus only ever
// grows, so a cycle that added nothing proves the fixpoint.
func Analyze(cx *Context) {
	passes := pipeline()
	for cycle := 1; cycle <= cx.Budgets.Cycles; cycle++ {
		before := cx.Corpus.Count()
		sp := trace.Begin(cx.Tracer, trace.ScopePass, "valueflow", 0)
		for _, p := range passes {
			ps := trace.Begin(cx.Tracer, trace.ScopeModule, "valueflow:"+p.name, sp.ID())
			p.run(cx)
			ps.End("facts=" + strconv.Itoa(cx.Corpus.Count()))
		}
		sp.WithExtra("cycle", strconv.Itoa(cycle)).End("")
		if cx.Corpus.Count() == before {
			return
		}
	}
}

// Leaf passes -----------------------------------------------------------------

// passLiterals publishes the self-evident facts: every literal knows its own
// value. A string literal carries two facts, its own identity for provenance
// tracking and the byte size of the array it denotes, terminator included.
func passLiterals(cx *Context) {
	g := cx.Graph
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		var flags value.Flags
		if n.Flags.Has(prog.FlagFromMacro) {
			flags = value.FlagFromMacro
		}
		switch n.Kind {
		case prog.NodeNumber:
			x, _, err := types.ParseIntLiteral(g.Text(id), cx.Platform)
			if err != nil {
				continue
			}
			v := value.MakeKnownInt(x)
			v.Flags = flags
			cx.Publish(id, v)
		case prog.NodeFloat:
			f, _, err := types.ParseFloatLiteral(g.Text(id))
			if err != nil {
				continue
			}
			v := value.MakeFloat(f)
			v.Kind = value.Known
			v.Flags = flags
			cx.Publish(id, v)
		case prog.NodeChar:
			x, err := types.ParseCharLiteral(g.Text(id))
			if err != nil {
				continue
			}
			v := value.MakeKnownInt(x)
			v.Flags = flags
			cx.Publish(id, v)
		case prog.NodeBool:
			v := value.MakeKnownInt(boolToInt(n.Tok == token.KwTrue))
			v.Flags = flags
			cx.Publish(id, v)
		case prog.NodeNull:
			v := value.MakeKnownInt(0)
			v.Flags = flags
			cx.Publish(id, v)
		case prog.NodeString:
			content, err := types.UnescapeString(g.Text(id))
			if err != nil {
				continue
			}
			tok := value.MakeTokenRef(id)
			tok.Kind = value.Known
			tok.Flags = flags
			cx.Publish(id, tok)
			buf := value.MakeBufferSize(int64(len(content)) + 1)
			buf.Kind = value.Known
			buf.Flags = flags
			cx.Publish(id, buf)
		}
	}
}

// passEnums folds enumerator values: an explicit initializer resets the
// counter, everything after it counts up by one. An initializer the corpus
// cannot resolve yet poisons the counter until the next explicit one; a later
// cycle picks the rest up once the initializer's own facts exist.
func passEnums(cx *Context) {
	g := cx.Graph
	for id := g.First(); id != prog.NoNodeID; id = g.Get(id).Next {
		if g.Get(id).Tok != token.KwEnum {
			continue
		}
		lb := g.Get(id).Next
		if lb != prog.NoNodeID && g.Get(lb).Tok == token.Ident {
			lb = g.Get(lb).Next
		}
		if lb == prog.NoNodeID || g.Get(lb).Tok != token.LBrace || g.Get(lb).Link == prog.NoNodeID {
			continue
		}
		counter := int64(0)
		haveCounter := true
		prog.EachStream(g, g.Get(lb).Next, g.Get(lb).Link, func(e prog.NodeID) bool {
			en := g.Get(e)
			if !en.IsName() || en.Var == prog.NoVarID {
				return true
			}
			vr := cx.Table.Vars.Get(en.Var)
			if vr == nil || vr.Decl != e {
				// имя внутри инициализатора, не перечислитель
				return true
			}
			if p := g.Get(en.Parent); p != nil && p.Tok == token.Assign && p.Left == e {
				if k, ok := cx.Corpus.KnownInt(p.Right); ok {
					counter, haveCounter = k, true
				} else {
					haveCounter = false
				}
			}
			if haveCounter {
				v := value.MakeKnownInt(counter)
				v.AddStep(e, "enumerator value")
				cx.Publish(e, v)
				counter++
			}
			return true
		})
	}
}

// passConstants resolves const initializers onto their declarations and then
// spreads each const declaration's exact value to every use of the name.
func passConstants(cx *Context) {
	g := cx.Graph
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		if n.Kind == prog.NodeOp && n.Tok == token.Assign && n.IsBinaryOp() {
			ln := g.Get(n.Left)
			if ln == nil || !ln.IsName() || ln.Var == prog.NoVarID {
				continue
			}
			vr := cx.Table.Vars.Get(ln.Var)
			if vr == nil || vr.Decl != n.Left || vr.Flags&symbols.VarFlagConst == 0 {
				continue
			}
			if k, ok := cx.Corpus.KnownInt(n.Right); ok {
				v := value.MakeKnownInt(k)
				v.AddStep(id, "const initialized")
				cx.Publish(n.Left, v)
			}
			continue
		}
		if !n.IsName() || n.Var == prog.NoVarID {
			continue
		}
		vr := cx.Table.Vars.Get(n.Var)
		if vr == nil || vr.Flags&symbols.VarFlagConst == 0 || vr.Decl == id {
			continue
		}
		if f := cx.Corpus.Known(vr.Decl, value.DomainInt); f != nil {
			v := *f
			v.Explanation = value.CombineTrails(f.Explanation, nil)
			v.AddStep(id, "'"+g.Text(id)+"' is constant")
			cx.Publish(id, v)
		}
	}
}

// passSizeof folds sizeof to an exact byte count wherever the platform
// defines one. Both forms land here: the operand node carries the requested
// type either way.
func passSizeof(cx *Context) {
	g := cx.Graph
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		if n.Tok != token.KwSizeof || n.Left == prog.NoNodeID {
			continue
		}
		t, ok := cx.typeOf(n.Left)
		if !ok {
			continue
		}
		size, ok := cx.Platform.SizeOf(t, cx.Types)
		if !ok {
			continue
		}
		v := value.MakeKnownInt(size)
		v.AddStep(id, "sizeof folded")
		cx.Publish(id, v)
	}
}

// passAllocations derives buffer-size facts on calls to known allocation
// functions from the size formula the library records for them.
func passAllocations(cx *Context) {
	g := cx.Graph
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		if !n.IsCall() {
			continue
		}
		name := prog.CalleeName(g, id)
		if name == "" {
			continue
		}
		ai, ok := cx.Library.Alloc(name)
		if !ok {
			continue
		}
		args := prog.CallArgs(g, id)
		arg := func(pos int) (prog.NodeID, bool) {
			if pos < 1 || pos > len(args) {
				return prog.NoNodeID, false
			}
			return args[pos-1], true
		}
		switch ai.Size {
		case library.AllocArg:
			a, ok := arg(ai.Arg)
			if !ok {
				continue
			}
			for _, f := range cx.Corpus.Facts(a) {
				if !f.IsIntValue() || f.Bound != value.BoundPoint || f.IsImpossible() || f.Int < 0 {
					continue
				}
				r := f
				r.Explanation = value.CombineTrails(f.Explanation, nil)
				r.Domain = value.DomainBufferSize
				r.AddStep(id, name+" allocates "+strconv.FormatInt(f.Int, 10)+" bytes")
				cx.Publish(id, r)
			}
		case library.AllocArgProduct:
			a, aok := arg(ai.Arg)
			b, bok := arg(ai.Arg2)
			if !aok || !bok {
				continue
			}
			fa := cx.Corpus.Facts(a)
			fb := cx.Corpus.Facts(b)
			for i := range fa {
				for j := range fb {
					x, y := &fa[i], &fb[j]
					if !x.IsIntValue() || !y.IsIntValue() ||
						x.Bound != value.BoundPoint || y.Bound != value.BoundPoint ||
						x.IsImpossible() || y.IsImpossible() ||
						x.Int < 0 || y.Int < 0 || !value.Compatible(x, y) {
						continue
					}
					r := value.Combined(x, y)
					r.Domain = value.DomainBufferSize
					r.Int = x.Int * y.Int
					r.AddStep(id, name+" allocates "+strconv.FormatInt(r.Int, 10)+" bytes")
					cx.Publish(id, r)
				}
			}
		case library.AllocStrDup:
			a, ok := arg(ai.Arg)
			if !ok {
				continue
			}
			for _, f := range cx.Corpus.Facts(a) {
				if f.Domain != value.DomainTokenRef || f.Ref == prog.NoNodeID {
					continue
				}
				if g.Get(f.Ref).Kind != prog.NodeString {
					continue
				}
				content, err := types.UnescapeString(g.Text(f.Ref))
				if err != nil {
					continue
				}
				r := f
				r.Explanation = value.CombineTrails(f.Explanation, nil)
				r.Domain = value.DomainBufferSize
				r.Ref, r.RefExpr = prog.NoNodeID, prog.NoExprKey
				r.Int = int64(len(content)) + 1
				r.AddStep(id, name+" copies the string")
				cx.Publish(id, r)
			}
		}
	}
}

// declInitializer returns the '=' node of a declaration, or NoNodeID for a
// bare declaration.
func (cx *Context) declInitializer(decl prog.NodeID) prog.NodeID {
	p := cx.node(cx.node(decl).Parent)
	if p != nil && p.Tok == token.Assign && p.Kind == prog.NodeOp && p.Left == decl {
		return cx.node(decl).Parent
	}
	return prog.NoNodeID
}

// passContainerInit seeds a fresh local container with its one certain fact:
// it starts out holding nothing.
func passContainerInit(cx *Context) {
	for i := uint32(1); i <= cx.Table.Vars.Len(); i++ {
		vid := prog.VarID(i)
		vr := cx.Table.Vars.Get(vid)
		if vr == nil || vr.Storage != symbols.StorageLocal || vr.Decl == prog.NoNodeID {
			continue
		}
		t, ok := cx.typeOf(vr.Decl)
		if !ok || t.Kind != types.KindContainer {
			continue
		}
		if cx.declInitializer(vr.Decl) != prog.NoNodeID {
			continue
		}
		v := value.MakeContainerSize(0)
		v.Kind = value.Known
		v.AddStep(vr.Decl, "'"+cx.Graph.Text(vr.Decl)+"' starts empty")
		cx.Publish(vr.Decl, v)
		cx.walkFromDecl(vr.Decl, vid, v)
	}
}

// passUninit tracks local scalars declared without an initializer: every read
// reached before the first write sees possibly-uninitialized storage.
func passUninit(cx *Context) {
	for i := uint32(1); i <= cx.Table.Vars.Len(); i++ {
		vid := prog.VarID(i)
		vr := cx.Table.Vars.Get(vid)
		if vr == nil || vr.Storage != symbols.StorageLocal || vr.Decl == prog.NoNodeID {
			continue
		}
		t, ok := cx.typeOf(vr.Decl)
		if !ok || !(t.IsArithmetic() || t.Kind == types.KindPointer) {
			continue
		}
		if cx.declInitializer(vr.Decl) != prog.NoNodeID {
			continue
		}
		v := value.MakeUninit()
		v.Kind = value.Known
		v.AddStep(vr.Decl, "declared without initializer")
		cx.walkFromDecl(vr.Decl, vid, v)
	}
}

// walkFromDecl carries a declaration-time fact from the end of the declaring
// statement to the end of the variable's scope.
func (cx *Context) walkFromDecl(decl prog.NodeID, vid prog.VarID, v value.Value) {
	semi := cx.statementEnd(decl)
	if semi == prog.NoNodeID {
		return
	}
	start := cx.node(semi).Next
	if start == prog.NoNodeID {
		return
	}
	end := cx.Table.ScopeEndOf(vid)
	ea := newEntityAnalyzer(cx, decl, v)
	cx.walkForward(ea, start, end)
}

// passAssignments pushes the right side's facts through every plain
// assignment into the code the assignment dominates. Initializers share the
// same node shape and ride the same walk.
func passAssignments(cx *Context) {
	g := cx.Graph
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		if n.Kind != prog.NodeOp || n.Tok != token.Assign || !n.IsBinaryOp() {
			continue
		}
		if !cx.trackableEntity(n.Left) {
			continue
		}
		facts := cx.Corpus.Facts(n.Right)
		if len(facts) == 0 {
			continue
		}
		semi := cx.statementEnd(id)
		if semi == prog.NoNodeID {
			continue
		}
		start := cx.node(semi).Next
		if start == prog.NoNodeID {
			continue
		}
		end := cx.assignEnd(id, n.Left)
		for _, f := range facts {
			switch f.Domain {
			case value.DomainLifetime, value.DomainUninit:
				// lifetime facts идут своим проходом; присваивание инициализирует
				continue
			}
			v := f
			v.Explanation = value.CombineTrails(f.Explanation, nil)
			v.AddStep(id, "assigned to '"+g.Text(n.Left)+"'")
			ea := newEntityAnalyzer(cx, n.Left, v)
			cx.walkForward(ea, start, end)
		}
	}
}

// assignEnd bounds an assignment walk: the variable's own scope when the
// target is a plain variable, the enclosing function otherwise.
func (cx *Context) assignEnd(at, lhs prog.NodeID) prog.NodeID {
	ln := cx.node(lhs)
	if ln.IsName() && ln.Var != prog.NoVarID {
		if end := cx.Table.ScopeEndOf(ln.Var); end != prog.NoNodeID {
			return end
		}
	}
	return cx.enclosingFunctionEnd(at)
}

// passBitAnd narrows x & mask when only the mask is known: with a contiguous
// low-bit mask the result is somewhere between zero and the mask itself.
func passBitAnd(cx *Context) {
	g := cx.Graph
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		if n.Kind != prog.NodeOp || n.Tok != token.Amp || !n.IsBinaryOp() {
			continue
		}
		mask, side := int64(0), prog.NoNodeID
		if k, ok := cx.Corpus.KnownInt(n.Right); ok {
			mask, side = k, n.Left
		} else if k, ok := cx.Corpus.KnownInt(n.Left); ok {
			mask, side = k, n.Right
		}
		if side == prog.NoNodeID || mask <= 0 || mask&(mask+1) != 0 {
			continue
		}
		if _, ok := cx.Corpus.KnownInt(side); ok {
			// обе стороны известны: точное значение уже вычислено
			continue
		}
		lo := value.Value{Domain: value.DomainInt, Int: 0, Bound: value.BoundLower}
		hi := value.Value{Domain: value.DomainInt, Int: mask, Bound: value.BoundUpper}
		lo.AddStep(id, "masked to low bits")
		hi.AddStep(id, "masked to low bits")
		cx.Publish(id, lo)
		cx.Publish(id, hi)
	}
}

// passConditions runs the condition framework over every branching construct.
func passConditions(cx *Context) {
	g := cx.Graph
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		switch {
		case n.Tok == token.KwIf || n.Tok == token.KwWhile || n.Tok == token.KwFor:
			if n.Left != prog.NoNodeID {
				cx.handleCondition(id)
			}
		case n.IsTernaryHead() && n.IsBinaryOp():
			cx.handleTernary(id)
		case n.Tok == token.KwSwitch:
			cx.handleSwitch(id)
		}
	}
}

// passMoves marks a variable hollowed out by an ownership transfer: after
// move(x) every use of x until the next write sees a moved-from object.
func passMoves(cx *Context) {
	g := cx.Graph
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		if !n.IsCall() {
			continue
		}
		var mk value.MoveKind
		switch prog.CalleeName(g, id) {
		case "move":
			mk = value.Moved
		case "forward":
			mk = value.Forwarded
		default:
			continue
		}
		args := prog.CallArgs(g, id)
		if len(args) != 1 {
			continue
		}
		an := g.Get(args[0])
		if !an.IsName() || an.Var == prog.NoVarID {
			continue
		}
		semi := cx.statementEnd(id)
		if semi == prog.NoNodeID {
			continue
		}
		start := cx.node(semi).Next
		if start == prog.NoNodeID {
			continue
		}
		v := value.MakeMoved(mk)
		v.Kind = value.Known
		v.AddStep(id, "'"+g.Text(args[0])+"' moved from")
		ea := newEntityAnalyzer(cx, args[0], v)
		cx.walkForward(ea, start, cx.Table.ScopeEndOf(an.Var))
	}
}

// passFunctionReturns folds a defined callee that returns the same exact
// integer on every path into a fact on each of its call sites.
func passFunctionReturns(cx *Context) {
	cx.Table.Funcs.Each(func(fid prog.FuncID, f *symbols.Function) bool {
		ret, ok := cx.constantReturn(f)
		if !ok {
			return true
		}
		g := cx.Graph
		for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
			n := g.Get(id)
			if !n.IsCall() {
				continue
			}
			cal := prog.Callee(g, id)
			if cal == prog.NoNodeID || g.Get(cal).Func != fid {
				continue
			}
			v := value.MakeKnownInt(ret)
			v.AddStep(id, "'"+g.Text(cal)+"' always returns "+strconv.FormatInt(ret, 10))
			cx.Publish(id, v)
		}
		return true
	})
}

// constantReturn reports the single exact integer a function returns, when
// every return statement resolves to the same unconditional Known value.
func (cx *Context) constantReturn(f *symbols.Function) (int64, bool) {
	if f == nil || f.Flags&symbols.FuncFlagDefined == 0 {
		return 0, false
	}
	body := cx.Table.Scopes.Get(f.Body)
	if body == nil || body.BodyStart == prog.NoNodeID || body.BodyEnd == prog.NoNodeID {
		return 0, false
	}
	var ret int64
	seen := false
	ok := true
	prog.EachStream(cx.Graph, body.BodyStart, body.BodyEnd, func(id prog.NodeID) bool {
		n := cx.node(id)
		if n.Tok != token.KwReturn {
			return true
		}
		if n.Left == prog.NoNodeID {
			ok = false
			return false
		}
		f := cx.Corpus.Known(n.Left, value.DomainInt)
		if f == nil || f.Path != 0 || (seen && f.Int != ret) {
			ok = false
			return false
		}
		ret, seen = f.Int, true
		return true
	})
	return ret, ok && seen
}

// passSubFunctions injects call-site argument values into defined callees.
// All parameters of one call travel together under a single fresh path tag:
// facts from different call sites must never combine inside the body.
func passSubFunctions(cx *Context) {
	g := cx.Graph
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		n := g.Get(id)
		if !n.IsCall() {
			continue
		}
		cal := prog.Callee(g, id)
		if cal == prog.NoNodeID {
			continue
		}
		fid := g.Get(cal).Func
		if fid == prog.NoFuncID {
			continue
		}
		f := cx.Table.Funcs.Get(fid)
		if f == nil || f.Flags&symbols.FuncFlagDefined == 0 {
			continue
		}
		body := cx.Table.Scopes.Get(f.Body)
		if body == nil || body.BodyStart == prog.NoNodeID || body.BodyEnd == prog.NoNodeID {
			continue
		}
		args := prog.CallArgs(g, id)
		subs := cx.argumentAnalyzers(id, f, args)
		if len(subs) == 0 {
			continue
		}
		start := g.Get(body.BodyStart).Next
		if start == prog.NoNodeID {
			continue
		}
		if len(subs) == 1 {
			cx.walkForward(subs[0], start, body.BodyEnd)
			continue
		}
		cx.walkForward(newMultiAnalyzer(cx, subs), start, body.BodyEnd)
	}
}

// argumentAnalyzers builds one entity analyzer per parameter that receives a
// usable fact at the call site.
func (cx *Context) argumentAnalyzers(call prog.NodeID, f *symbols.Function, args []prog.NodeID) []*entityAnalyzer {
	var subs []*entityAnalyzer
	path := int64(0)
	for i, pv := range f.Params {
		if pv == prog.NoVarID || i >= len(args) {
			continue
		}
		decl := cx.Table.Vars.Get(pv).Decl
		if decl == prog.NoNodeID {
			continue
		}
		for _, fact := range cx.Corpus.Facts(args[i]) {
			switch fact.Domain {
			case value.DomainInt, value.DomainFloat, value.DomainContainerSize, value.DomainBufferSize:
			default:
				continue
			}
			if fact.IsImpossible() || fact.Path != 0 {
				continue
			}
			if path == 0 {
				if path = cx.NewPath(); path == 0 {
					cx.Bailout(call, "hypothetical path tags exhausted")
					return subs
				}
			}
			v := fact
			v.Explanation = value.CombineTrails(fact.Explanation, nil)
			v.LowerToPossible()
			v.Path = path
			v.AddStep(call, "passed to '"+cx.Graph.Text(decl)+"'")
			subs = append(subs, newEntityAnalyzer(cx, decl, v))
		}
	}
	return subs
}
