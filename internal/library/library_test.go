package library

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	l := Default()

	if !l.IsNoReturn("exit") || !l.IsNoReturn("abort") {
		t.Error("exit/abort must be noreturn")
	}
	if l.IsNoReturn("sqrt") {
		t.Error("sqrt is not noreturn")
	}
	if !l.IsPure("strlen") || !l.IsPure("sqrt") {
		t.Error("strlen/sqrt must be pure")
	}
	if l.IsPure("malloc") || l.IsPure("unknown_fn") {
		t.Error("malloc and unknown functions are not pure")
	}
}

func TestDefault_Alloc(t *testing.T) {
	l := Default()

	m, ok := l.Alloc("malloc")
	if !ok || m.Size != AllocArg || m.Arg != 1 {
		t.Errorf("malloc alloc = %+v, %v", m, ok)
	}
	c, ok := l.Alloc("calloc")
	if !ok || c.Size != AllocArgProduct || c.Arg != 1 || c.Arg2 != 2 {
		t.Errorf("calloc alloc = %+v, %v", c, ok)
	}
	r, ok := l.Alloc("realloc")
	if !ok || r.Arg != 2 {
		t.Errorf("realloc must size from its second argument, got %+v", r)
	}
	if _, ok := l.Alloc("strlen"); ok {
		t.Error("strlen does not allocate")
	}
}

func TestDefault_Containers(t *testing.T) {
	l := Default()

	if y, ok := l.YieldOf("vector", "size"); !ok || y != YieldSize {
		t.Errorf("vector.size yield = %s, %v", y, ok)
	}
	if y, ok := l.YieldOf("vector", "empty"); !ok || y != YieldEmpty {
		t.Errorf("vector.empty yield = %s, %v", y, ok)
	}
	if y, ok := l.YieldOf("string", "length"); !ok || y != YieldSize {
		t.Errorf("string.length yield = %s, %v", y, ok)
	}
	if a, ok := l.ActionOf("vector", "push_back"); !ok || a != ActionPush {
		t.Errorf("vector.push_back action = %s, %v", a, ok)
	}
	if a, ok := l.ActionOf("vector", "clear"); !ok || a != ActionClear {
		t.Errorf("vector.clear action = %s, %v", a, ok)
	}
	// Неизвестный метод известного контейнера — не то же, что известный.
	if _, ok := l.YieldOf("vector", "mystery"); ok {
		t.Error("unknown method must not yield")
	}
	if l.KnowsMethod("vector", "mystery") {
		t.Error("mystery is not described")
	}
	if !l.KnowsMethod("vector", "front") || !l.KnowsMethod("vector", "erase") {
		t.Error("front and erase are described for vector")
	}
	if _, ok := l.Container("deque"); ok {
		t.Error("deque is not in the default KB")
	}
}

func TestLoadFile_MergeAndOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.yaml")
	content := `version: 1
functions:
  - name: my_exit
    noreturn: true
  - name: strlen
    pure: false
containers:
  - name: deque
    yields:
      size: size
    actions:
      push_front: push
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	l := Default()
	if err := l.AddFile(path); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if !l.IsNoReturn("my_exit") {
		t.Error("merged function missing")
	}
	// Поздний файл перекрывает ранний.
	if l.IsPure("strlen") {
		t.Error("override must win")
	}
	if a, ok := l.ActionOf("deque", "push_front"); !ok || a != ActionPush {
		t.Errorf("deque.push_front = %s, %v", a, ok)
	}
	// Старые записи не задеты.
	if !l.IsNoReturn("exit") {
		t.Error("default entries must survive a merge")
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad_version.yaml")
	os.WriteFile(bad, []byte("version: 99\n"), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("wrong schema version must fail")
	}

	badYield := filepath.Join(dir, "bad_yield.yaml")
	os.WriteFile(badYield, []byte(`version: 1
containers:
  - name: x
    yields:
      f: banana
`), 0o644)
	if _, err := Load(badYield); err == nil {
		t.Error("unknown yield must fail")
	}

	noName := filepath.Join(dir, "no_name.yaml")
	os.WriteFile(noName, []byte(`version: 1
functions:
  - pure: true
`), 0o644)
	if _, err := Load(noName); err == nil {
		t.Error("nameless function must fail")
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file must fail")
	}
}
