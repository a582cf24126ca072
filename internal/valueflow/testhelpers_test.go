package valueflow

import (
	"fmt"
	"strings"
	"testing"

	"vigil/internal/diag"
	"vigil/internal/parser"
	"vigil/internal/prog"
	"vigil/internal/source"
	"vigil/internal/token"
	"vigil/internal/types"
	"vigil/internal/value"
)

// analyzeSource разбирает исходник и прогоняет полный конвейер фактов.
func analyzeSource(t *testing.T, src string) (*Context, parser.Result) {
	t.Helper()
	fs := source.NewFileSet()
	fid := fs.AddVirtual("test.c", []byte(src))
	bag := diag.NewBag(100)
	res := parser.ParseFile(fs.Get(fid), parser.Options{
		MaxErrors: 100,
		Reporter:  &diag.BagReporter{Bag: bag},
	})
	if res.Bag.Len() != 0 {
		var lines []string
		for _, d := range res.Bag.Items() {
			lines = append(lines, fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message))
		}
		t.Fatalf("unexpected diagnostics: %s", strings.Join(lines, "; "))
	}
	cx := NewContext(res.Graph, res.Table, res.Types, nil, types.PlatformUnix64())
	Analyze(cx)
	return cx, res
}

// findStream возвращает n-й (с единицы) узел потока с данным токеном и
// текстом; text == "" принимает любой.
func findStream(g *prog.Graph, tok token.Kind, text string, nth int) prog.NodeID {
	for id := g.First(); id != prog.NoNodeID; id = g.Get(id).Next {
		n := g.Get(id)
		if n.Tok != tok {
			continue
		}
		if text != "" && g.Text(id) != text {
			continue
		}
		nth--
		if nth == 0 {
			return id
		}
	}
	return prog.NoNodeID
}

func mustStream(t *testing.T, g *prog.Graph, tok token.Kind, text string, nth int) prog.NodeID {
	t.Helper()
	id := findStream(g, tok, text, nth)
	if id == prog.NoNodeID {
		t.Fatalf("node #%d %v %q not found in stream", nth, tok, text)
	}
	return id
}

// mustCall ищет вызов по имени вызываемой функции.
func mustCall(t *testing.T, g *prog.Graph, name string) prog.NodeID {
	t.Helper()
	for id := g.First(); id != prog.NoNodeID; id = g.Get(id).Next {
		if g.Get(id).IsCall() && prog.CalleeName(g, id) == name {
			return id
		}
	}
	t.Fatalf("call to %q not found", name)
	return prog.NoNodeID
}

func mustVar(t *testing.T, res parser.Result, name string) prog.VarID {
	t.Helper()
	sid := res.Graph.Strings.Intern(name)
	for i := uint32(1); i <= res.Table.Vars.Len(); i++ {
		id := prog.VarID(i)
		if res.Table.Vars.Get(id).Name == sid {
			return id
		}
	}
	t.Fatalf("variable %q not declared", name)
	return prog.NoVarID
}

// mustKnownInt требует точный Known-факт на узле.
func mustKnownInt(t *testing.T, cx *Context, id prog.NodeID) int64 {
	t.Helper()
	x, ok := cx.Corpus.KnownInt(id)
	if !ok {
		t.Fatalf("node %d (%q): no known int, facts: %s", id, cx.Graph.Text(id), factDump(cx, id))
	}
	return x
}

// findFact ищет на узле первый факт, удовлетворяющий предикату.
func findFact(cx *Context, id prog.NodeID, pred func(*value.Value) bool) *value.Value {
	facts := cx.Corpus.Facts(id)
	for i := range facts {
		if pred(&facts[i]) {
			return &facts[i]
		}
	}
	return nil
}

func factDump(cx *Context, id prog.NodeID) string {
	facts := cx.Corpus.Facts(id)
	if len(facts) == 0 {
		return "<none>"
	}
	parts := make([]string, len(facts))
	for i := range facts {
		parts[i] = facts[i].String()
	}
	return strings.Join(parts, "; ")
}
