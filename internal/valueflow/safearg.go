package valueflow

import (
	"vigil/internal/prog"
	"vigil/internal/symbols"
	"vigil/internal/types"
	"vigil/internal/value"
)

// passSafeArguments covers the parameters nobody constrains: a defined
// function with no call site in the translation unit is an entry point, its
// arguments arrive from the outside and may hold anything the type admits.
// The representable range is published as safe facts; a claim that holds
// against them holds for every caller. Pointer parameters get the pointee
// range one dereference deep.
func passSafeArguments(cx *Context) {
	g := cx.Graph
	called := make(map[prog.FuncID]bool)
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		if !g.Get(id).IsCall() {
			continue
		}
		if cal := prog.Callee(g, id); cal != prog.NoNodeID {
			called[g.Get(cal).Func] = true
		}
	}
	cx.Table.Funcs.Each(func(fid prog.FuncID, f *symbols.Function) bool {
		if f.Flags&symbols.FuncFlagDefined == 0 || called[fid] {
			return true
		}
		body := cx.Table.Scopes.Get(f.Body)
		if body == nil || body.BodyStart == prog.NoNodeID || body.BodyEnd == prog.NoNodeID {
			return true
		}
		start := g.Get(body.BodyStart).Next
		if start == prog.NoNodeID {
			return true
		}
		for _, pv := range f.Params {
			if pv == prog.NoVarID {
				continue
			}
			decl := cx.Table.Vars.Get(pv).Decl
			if decl == prog.NoNodeID {
				continue
			}
			t, ok := cx.typeOf(decl)
			if !ok {
				continue
			}
			indirect := int8(0)
			if t.Kind == types.KindPointer {
				et, eok := cx.Types.Lookup(t.Elem)
				if !eok {
					continue
				}
				t, indirect = et, 1
			}
			if !t.IsIntegral() {
				continue
			}
			lo, okLo := cx.Platform.MinValue(t)
			hi, okHi := cx.Platform.MaxValue(t)
			if !okLo || !okHi {
				continue
			}
			for _, v := range []value.Value{
				{Domain: value.DomainInt, Int: lo, Bound: value.BoundLower, Flags: value.FlagSafe, Indirect: indirect},
				{Domain: value.DomainInt, Int: hi, Bound: value.BoundUpper, Flags: value.FlagSafe, Indirect: indirect},
			} {
				v.AddStep(decl, "entry point argument")
				cx.walkForward(newEntityAnalyzer(cx, decl, v), start, body.BodyEnd)
			}
		}
		return true
	})
}
