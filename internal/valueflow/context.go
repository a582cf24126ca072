package valueflow

import (
	"strconv"
	"time"

	"vigil/internal/library"
	"vigil/internal/prog"
	"vigil/internal/symbols"
	"vigil/internal/token"
	"vigil/internal/trace"
	"vigil/internal/types"
	"vigil/internal/value"
)

// Budgets bound every recursion and repetition inside the engine. Hitting a
// budget degrades to "no fact published"; nothing in the engine errors out.
type Budgets struct {
	Cycles        int // full pass-pipeline repetitions
	PublishDepth  int // parent recursion per published fact
	LifetimeDepth int // provenance hops per lifetime resolution
	BranchDepth   int // nested conditional forks per walk
	WalkNodes     int // stream nodes visited per walk
}

// DefaultBudgets returns the bounds the analysis is tuned for. Generated and
// adversarial inputs terminate under these regardless of shape.
func DefaultBudgets() Budgets {
	return Budgets{
		Cycles:        4,
		PublishDepth:  20,
		LifetimeDepth: 10,
		BranchDepth:   8,
		WalkNodes:     1 << 16,
	}
}

// Context carries one analysis run: the graph under analysis with its symbol
// and type tables, the platform and library models (all read-only), and the
// fact corpus the run fills. Runs are single-threaded by design; facts are
// read while being written by the same pass, so nothing here is shared.
type Context struct {
	Graph    *prog.Graph
	Table    *symbols.Table
	Types    *types.Interner
	Library  *library.Library
	Platform types.Platform
	Corpus   *value.Corpus
	Tracer   trace.Tracer
	Budgets  Budgets

	nextPath int64
	bailouts int
}

// NewContext wires a context over a parsed translation unit with a fresh
// corpus and default budgets. The tracer defaults to trace.Nop.
func NewContext(g *prog.Graph, tab *symbols.Table, ti *types.Interner, lib *library.Library, platform types.Platform) *Context {
	if lib == nil {
		lib = library.Default()
	}
	return &Context{
		Graph:    g,
		Table:    tab,
		Types:    ti,
		Library:  lib,
		Platform: platform,
		Corpus:   value.NewCorpus(uint(g.Len())),
		Tracer:   trace.Nop,
		Budgets:  DefaultBudgets(),
	}
}

// NewPath allocates a fresh hypothetical-context tag. Once value.MaxPaths
// tags are out, it returns 0 and the caller must drop the fork instead of
// reusing a tag: два разных контекста под одним тегом дали бы ложные слияния.
func (cx *Context) NewPath() int64 {
	if cx.nextPath >= value.MaxPaths {
		return 0
	}
	cx.nextPath++
	return cx.nextPath
}

// Bailouts returns how many facts the run declined to derive.
func (cx *Context) Bailouts() int { return cx.bailouts }

// Bailout records that a fact was deliberately not derived at the given node.
// The report is a debug side channel through the tracer; analysis outcome
// never depends on it.
func (cx *Context) Bailout(at prog.NodeID, reason string) {
	cx.bailouts++
	t := cx.Tracer
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(trace.ScopeNode) {
		return
	}
	extra := map[string]string{"node": strconv.FormatUint(uint64(at), 10)}
	if n := cx.Graph.Get(at); n != nil {
		extra["tok"] = cx.Graph.Text(at)
		extra["offset"] = strconv.FormatUint(uint64(n.Span.Start), 10)
	}
	t.Emit(&trace.Event{
		Time:   time.Now(),
		Seq:    trace.NextSeq(),
		Kind:   trace.KindPoint,
		Scope:  trace.ScopeNode,
		Name:   "bailout",
		Detail: reason,
		Extra:  extra,
	})
}

// Graph helpers ---------------------------------------------------------------

func (cx *Context) node(id prog.NodeID) *prog.Node { return cx.Graph.Get(id) }

// typeOf resolves the node's computed type.
func (cx *Context) typeOf(id prog.NodeID) (types.Type, bool) {
	n := cx.Graph.Get(id)
	if n == nil || n.Type == types.NoTypeID {
		return types.Type{}, false
	}
	return cx.Types.Lookup(n.Type)
}

// isUnsigned reports whether the node's computed type is an unsigned integer.
func (cx *Context) isUnsigned(id prog.NodeID) bool {
	t, ok := cx.typeOf(id)
	return ok && t.IsIntegral() && !cx.Platform.IsSigned(t)
}

// containerOf resolves the library container record behind the node's type.
func (cx *Context) containerOf(id prog.NodeID) (library.Container, bool) {
	t, ok := cx.typeOf(id)
	if !ok || t.Kind != types.KindContainer {
		return library.Container{}, false
	}
	n := cx.Graph.Get(id)
	info, ok := cx.Types.ContainerInfo(n.Type)
	if !ok {
		return library.Container{}, false
	}
	name, ok := cx.Table.Strings.Lookup(info.Name)
	if !ok {
		return library.Container{}, false
	}
	return cx.Library.Container(name)
}

// scopeOpenedBy returns the scope record whose body starts at the given brace
// node, or nil when the brace is not a body delimiter (initializer lists).
func (cx *Context) scopeOpenedBy(id prog.NodeID) (prog.ScopeID, *symbols.Scope) {
	n := cx.Graph.Get(id)
	if n == nil || n.Tok != token.LBrace {
		return prog.NoScopeID, nil
	}
	sc := cx.Table.Scopes.Get(n.Scope)
	if sc == nil || sc.BodyStart != id {
		return prog.NoScopeID, nil
	}
	return n.Scope, sc
}

// statementEnd returns the next ';' in stream order from id inclusive.
func (cx *Context) statementEnd(id prog.NodeID) prog.NodeID {
	for ; id != prog.NoNodeID; id = cx.Graph.Get(id).Next {
		if cx.Graph.Get(id).Tok == token.Semicolon {
			return id
		}
	}
	return prog.NoNodeID
}

// subtreeSpan returns the leftmost and rightmost stream nodes of the
// expression subtree under root. Expression nodes come straight from the
// tokenizer, so their ids are monotonic in stream order; implicit nodes are
// only ever braces and never occur inside expressions.
func (cx *Context) subtreeSpan(root prog.NodeID) (first, last prog.NodeID) {
	first, last = root, root
	prog.Visit(cx.Graph, root, func(id prog.NodeID) bool {
		if id < first {
			first = id
		}
		if id > last {
			last = id
		}
		return true
	})
	return first, last
}

// countFreeVars counts distinct variables mentioned under root.
func (cx *Context) countFreeVars(root prog.NodeID) int {
	seen := make(map[prog.VarID]struct{}, 4)
	prog.Visit(cx.Graph, root, func(id prog.NodeID) bool {
		if v := cx.Graph.Get(id).Var; v != prog.NoVarID {
			seen[v] = struct{}{}
		}
		return true
	})
	return len(seen)
}

// variableOf returns the symbol record behind a name node.
func (cx *Context) variableOf(id prog.NodeID) (prog.VarID, *symbols.Variable) {
	n := cx.Graph.Get(id)
	if n == nil || n.Var == prog.NoVarID {
		return prog.NoVarID, nil
	}
	return n.Var, cx.Table.Vars.Get(n.Var)
}

// enclosingFunctionEnd returns the closing brace of the function body the
// node belongs to, or NoNodeID at file scope.
func (cx *Context) enclosingFunctionEnd(id prog.NodeID) prog.NodeID {
	n := cx.Graph.Get(id)
	if n == nil {
		return prog.NoNodeID
	}
	for sid := n.Scope; sid != prog.NoScopeID; {
		s := cx.Table.Scopes.Get(sid)
		if s == nil {
			return prog.NoNodeID
		}
		if s.Kind == symbols.ScopeFunction {
			return s.BodyEnd
		}
		sid = s.Parent
	}
	return prog.NoNodeID
}
