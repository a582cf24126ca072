package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"vigil/internal/prog"
	"vigil/internal/source"
	"vigil/internal/value"
)

// NodeFacts группирует факты одного узла графа для вывода; собирается
// драйвером из корпуса.
type NodeFacts struct {
	ID    prog.NodeID
	Text  string
	Span  source.Span
	Facts []value.Value
}

var (
	knownColor        = color.New(color.FgGreen)
	impossibleColor   = color.New(color.FgRed)
	possibleColor     = color.New(color.FgYellow)
	inconclusiveColor = color.New(color.FgHiBlack)
)

// FactsPretty печатает корпус фактов по узлам:
// <path>:<line>:<col>: `text`
//
//	<fact>
//	<fact>
func FactsPretty(w io.Writer, fs *source.FileSet, groups []NodeFacts, opts PrettyOpts) {
	for _, g := range groups {
		if len(g.Facts) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s: `%s`\n", locString(fs, g.Span), g.Text)
		for i := range g.Facts {
			f := &g.Facts[i]
			s := f.String()
			if opts.Color {
				switch f.Kind {
				case value.Known:
					s = knownColor.Sprint(s)
				case value.Impossible:
					s = impossibleColor.Sprint(s)
				case value.Inconclusive:
					s = inconclusiveColor.Sprint(s)
				default:
					s = possibleColor.Sprint(s)
				}
			}
			fmt.Fprintf(w, "    %s\n", s)
		}
		if opts.ShowSource {
			writeUnderline(w, fs, g.Span, opts)
		}
	}
}

// FactJSON представляет один факт в JSON формате
type FactJSON struct {
	Display     string   `json:"display"`
	Domain      string   `json:"domain"`
	Kind        string   `json:"kind"`
	Bound       string   `json:"bound,omitempty"`
	Int         int64    `json:"int,omitempty"`
	Float       float64  `json:"float,omitempty"`
	Path        int64    `json:"path,omitempty"`
	Conditional bool     `json:"conditional,omitempty"`
	Trail       []string `json:"trail,omitempty"`
}

// NodeFactsJSON представляет факты одного узла в JSON формате
type NodeFactsJSON struct {
	Node     uint32       `json:"node"`
	Text     string       `json:"text"`
	Location LocationJSON `json:"location"`
	Facts    []FactJSON   `json:"facts"`
}

// FactsOutput представляет корневую структуру JSON вывода корпуса
type FactsOutput struct {
	Nodes []NodeFactsJSON `json:"nodes"`
	Count int             `json:"count"`
}

// BuildFactsOutput формирует структуру JSON-вывода корпуса без сериализации.
func BuildFactsOutput(fs *source.FileSet, groups []NodeFacts, opts JSONOpts) FactsOutput {
	out := FactsOutput{Nodes: make([]NodeFactsJSON, 0, len(groups))}
	for _, g := range groups {
		if len(g.Facts) == 0 {
			continue
		}
		nj := NodeFactsJSON{
			Node:     uint32(g.ID),
			Text:     g.Text,
			Location: makeLocation(g.Span, fs, opts.IncludePositions),
			Facts:    make([]FactJSON, 0, len(g.Facts)),
		}
		for i := range g.Facts {
			f := &g.Facts[i]
			fj := FactJSON{
				Display:     f.String(),
				Domain:      f.Domain.String(),
				Kind:        f.Kind.String(),
				Path:        f.Path,
				Conditional: f.Flags.Has(value.FlagConditional),
			}
			if f.Bound != value.BoundPoint {
				fj.Bound = f.Bound.String()
			}
			if f.IsFloatValue() {
				fj.Float = f.Float
			} else {
				fj.Int = f.Int
			}
			if opts.IncludeTrails {
				for _, st := range f.Explanation {
					fj.Trail = append(fj.Trail, st.Text)
				}
			}
			nj.Facts = append(nj.Facts, fj)
			out.Count++
		}
		out.Nodes = append(out.Nodes, nj)
	}
	return out
}

// FactsJSON форматирует корпус фактов в JSON формат.
func FactsJSON(w io.Writer, fs *source.FileSet, groups []NodeFacts, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildFactsOutput(fs, groups, opts))
}
