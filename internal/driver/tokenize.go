package driver

import (
	"vigil/internal/diag"
	"vigil/internal/lexer"
	"vigil/internal/source"
	"vigil/internal/token"
)

// TokenizeResult carries the raw token stream of one file.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Bag     *diag.Bag
}

// lexReporter переводит строковые виды ошибок лексера в диагностики.
type lexReporter struct {
	bag *diag.Bag
}

func (r lexReporter) Report(kind string, sp source.Span, msg string) {
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
	r.bag.Add(diag.NewError(code, sp, msg))
}

// Tokenize lexes one file to EOF, collecting lexical diagnostics.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fid, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fid)

	bag := diag.NewBag(maxDiagnostics)
	lx := lexer.New(file, lexer.Options{Reporter: lexReporter{bag: bag}})

	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
		Bag:     bag,
	}, nil
}
