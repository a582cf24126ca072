package parser

import (
	"fmt"
	"strings"
	"testing"

	"vigil/internal/diag"
	"vigil/internal/prog"
	"vigil/internal/source"
	"vigil/internal/token"
)

// parseSource прогоняет исходник через ParseFile с bag-репортером.
func parseSource(t *testing.T, src string) Result {
	t.Helper()
	fs := source.NewFileSet()
	fid := fs.AddVirtual("test.c", []byte(src))
	bag := diag.NewBag(100)
	res := ParseFile(fs.Get(fid), Options{
		MaxErrors: 100,
		Reporter:  &diag.BagReporter{Bag: bag},
	})
	if res.Graph == nil || res.Table == nil || res.Types == nil {
		t.Fatal("ParseFile returned incomplete result")
	}
	return res
}

// mustParse требует разбора без единой диагностики.
func mustParse(t *testing.T, src string) Result {
	t.Helper()
	res := parseSource(t, src)
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(res.Bag))
	}
	return res
}

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

// findNode возвращает первый узел потока с данным токеном; text == ""
// принимает любой текст.
func findNode(g *prog.Graph, tok token.Kind, text string) prog.NodeID {
	for id := g.First(); id != prog.NoNodeID; id = g.Get(id).Next {
		n := g.Get(id)
		if n.Tok != tok {
			continue
		}
		if text == "" || g.Text(id) == text {
			return id
		}
	}
	return prog.NoNodeID
}

// mustFindNode как findNode, но падает при промахе.
func mustFindNode(t *testing.T, g *prog.Graph, tok token.Kind, text string) prog.NodeID {
	t.Helper()
	id := findNode(g, tok, text)
	if id == prog.NoNodeID {
		t.Fatalf("node %v %q not found in stream", tok, text)
	}
	return id
}

// findVar ищет переменную по имени во всём аренном массиве, независимо от
// скоупа.
func findVar(t *testing.T, res Result, name string) prog.VarID {
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
