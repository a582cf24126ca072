package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addLanguageSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.c файлы
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".c" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
	if err != nil {
		return
	}
}

// addLanguageSeeds держит в корпусе минимальный набор конструкций, которые
// движок должен переваривать: условия, циклы, указатели, вызовы.
func addLanguageSeeds(f *testing.F) {
	seeds := []string{
		"",
		"int x = 1 + 2;\n",
		"void f() { int x = 3; int y = x * x; }\n",
		"void f(int a) { if (a > 10) { a = a - 1; } else { a = 0; } }\n",
		"int g(int n) { while (n > 0) { n = n / 2; } return n; }\n",
		"void f() { for (int i = 0; i < 8; i++) { int j = i % 3; } }\n",
		"void f() { int x = 5; int *p = &x; int y = *p; }\n",
		"int h(int k) { switch (k) { case 1: return 2; default: return 0; } }\n",
		"void f() { char s[4] = \"abc\"; char c = s[0]; }\n",
		"void f(int a, int b) { int c = a && b ? a : b; }\n",
	}
	for _, s := range seeds {
		f.Add([]byte(s))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
