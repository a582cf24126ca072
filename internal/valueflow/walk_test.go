package valueflow

import (
	"testing"

	"vigil/internal/diag"
	"vigil/internal/parser"
	"vigil/internal/source"
	"vigil/internal/types"
)

// analyzeBroken прогоняет движок по исходнику с ошибками разбора: парсер
// восстанавливается как умеет, а движок обязан пережить результат.
func analyzeBroken(t *testing.T, src string) *Context {
	t.Helper()
	fs := source.NewFileSet()
	fid := fs.AddVirtual("broken.c", []byte(src))
	bag := diag.NewBag(100)
	res := parser.ParseFile(fs.Get(fid), parser.Options{
		MaxErrors: 100,
		Reporter:  &diag.BagReporter{Bag: bag},
	})
	cx := NewContext(res.Graph, res.Table, res.Types, nil, types.PlatformUnix64())
	Analyze(cx)
	return cx
}

// Оборванный исходник оставляет скобки без пары, и обход ветвлений обязан
// останавливаться вместо разыменования несуществующего узла.
func TestTruncatedSourceSurvivesWalk(t *testing.T) {
	sources := []string{
		"void f() { int x = 1; for (",
		"void f() { int x = 1; for (;;",
		"void f() { int x = 1; for (;;) {",
		"void f() { int x = 1; switch (",
		"void f() { int x = 1; switch (x) {",
		"void f() { int x = 1; do {",
		"void f() { int x = 1; while (x",
		"void f() { int x = 1; while (x) {",
		"void f() { int x = 1; if (x) { } else {",
	}
	for _, src := range sources {
		analyzeBroken(t, src)
	}
}
