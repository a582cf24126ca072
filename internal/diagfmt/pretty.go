package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"vigil/internal/diag"
	"vigil/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	codeColor    = color.New(color.Bold)
	noteColor    = color.New(color.FgHiBlack)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> [<CODE>]: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeHeading(w, fs, d.Primary, d.Severity, d.Code.ID(), d.Message, opts)
		if opts.ShowSource {
			writeUnderline(w, fs, d.Primary, opts)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			msg := "note: " + n.Msg
			if opts.Color {
				msg = noteColor.Sprint(msg)
			}
			fmt.Fprintf(w, "  %s: %s\n", locString(fs, n.Span), msg)
			if opts.ShowSource {
				writeUnderline(w, fs, n.Span, opts)
			}
		}
	}
}

func writeHeading(w io.Writer, fs *source.FileSet, sp source.Span, sev diag.Severity, code, msg string, opts PrettyOpts) {
	sevText := sev.String()
	codeText := "[" + code + "]"
	if opts.Color {
		switch sev {
		case diag.SevError:
			sevText = errorColor.Sprint(sevText)
		case diag.SevWarning:
			sevText = warningColor.Sprint(sevText)
		default:
			sevText = infoColor.Sprint(sevText)
		}
		codeText = codeColor.Sprint(codeText)
	}
	fmt.Fprintf(w, "%s: %s %s: %s\n", locString(fs, sp), sevText, codeText, msg)
}

func locString(fs *source.FileSet, sp source.Span) string {
	f := fs.Get(sp.File)
	if f == nil {
		return "<unknown>"
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
}

// writeUnderline печатает строку исходника и каретку ^~~~ под спаном.
// Ширина отступа и маркера считается через runewidth: широкие символы не
// сдвигают подчёркивание.
func writeUnderline(w io.Writer, fs *source.FileSet, sp source.Span, opts PrettyOpts) {
	f := fs.Get(sp.File)
	if f == nil || sp.Empty() {
		return
	}
	start, end := fs.Resolve(sp)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	if opts.Width > 0 && runewidth.StringWidth(line) > int(opts.Width) {
		line = runewidth.Truncate(line, int(opts.Width), "…")
	}
	fmt.Fprintf(w, "    %s\n", line)

	prefix := lineSlice(line, 0, int(start.Col)-1)
	pad := strings.Repeat(" ", runewidth.StringWidth(prefix))
	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		width = runewidth.StringWidth(lineSlice(line, int(start.Col)-1, int(end.Col)-1))
	}
	if width < 1 {
		width = 1
	}
	marker := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		marker = errorColor.Sprint(marker)
	}
	fmt.Fprintf(w, "    %s%s\n", pad, marker)
}

// lineSlice вырезает [from, to) в байтах (Resolve даёт байтовые колонки),
// терпимо к выходу за границы.
func lineSlice(line string, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(line) {
		to = len(line)
	}
	if from >= to {
		return ""
	}
	return line[from:to]
}
