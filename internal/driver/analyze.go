package driver

import (
	"sort"
	"strconv"

	"fortio.org/safecast"

	"vigil/internal/diag"
	"vigil/internal/diagfmt"
	"vigil/internal/observ"
	"vigil/internal/parser"
	"vigil/internal/prog"
	"vigil/internal/source"
	"vigil/internal/trace"
	"vigil/internal/valueflow"
)

// FileResult carries everything one analyzed file produced: the parsed
// translation unit, the filled fact corpus and the run's diagnostics and
// timings.
type FileResult struct {
	FileSet *source.FileSet
	File    *source.File
	Parse   parser.Result
	Context *valueflow.Context
	Bag     *diag.Bag
	Timer   *observ.Timer
}

// Facts returns how many facts the run published.
func (r *FileResult) Facts() int { return r.Context.Corpus.Count() }

// AnalyzeFile runs the whole pipeline on one file: load, parse, value-flow
// fixpoint. Parse errors do not stop the run; the engine analyzes whatever
// graph the parser recovered.
func AnalyzeFile(path string, opts Options) (*FileResult, error) {
	opts = opts.withDefaults()
	fs := source.NewFileSet()
	fid, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return analyze(fs, fid, opts), nil
}

// AnalyzeSource runs the pipeline on in-memory content (stdin, tests).
func AnalyzeSource(name string, content []byte, opts Options) *FileResult {
	opts = opts.withDefaults()
	fs := source.NewFileSet()
	fid := fs.AddVirtual(name, content)
	return analyze(fs, fid, opts)
}

func analyze(fs *source.FileSet, fid source.FileID, opts Options) *FileResult {
	file := fs.Get(fid)
	timer := observ.NewTimer()
	bag := diag.NewBag(opts.MaxDiagnostics)

	sp := trace.Begin(opts.Tracer, trace.ScopeDriver, "analyze:"+file.Path, 0)

	maxErrors, err := safecast.Conv[uint](opts.MaxDiagnostics)
	if err != nil {
		maxErrors = 100
	}
	ph := timer.Begin("parse")
	res := parser.ParseFile(file, parser.Options{
		MaxErrors: maxErrors,
		Reporter:  &diag.BagReporter{Bag: bag},
		Platform:  opts.Platform,
		Library:   opts.Library,
	})
	timer.End(ph, strconv.FormatUint(uint64(res.Graph.Len()), 10)+" nodes")

	cx := valueflow.NewContext(res.Graph, res.Table, res.Types, opts.Library, opts.Platform)
	cx.Tracer = opts.Tracer
	cx.Budgets = opts.Budgets

	ph = timer.Begin("valueflow")
	valueflow.Analyze(cx)
	timer.End(ph, strconv.Itoa(cx.Corpus.Count())+" facts")

	sp.End(strconv.Itoa(cx.Corpus.Count()) + " facts, " + strconv.Itoa(cx.Bailouts()) + " bailouts")

	return &FileResult{
		FileSet: fs,
		File:    file,
		Parse:   res,
		Context: cx,
		Bag:     bag,
		Timer:   timer,
	}
}

// CollectFacts groups the published corpus by node for rendering, ordered by
// source position.
func CollectFacts(r *FileResult) []diagfmt.NodeFacts {
	g := r.Parse.Graph
	corpus := r.Context.Corpus
	var out []diagfmt.NodeFacts
	for id := prog.NodeID(1); uint32(id) <= g.Len(); id++ {
		facts := corpus.Facts(id)
		if len(facts) == 0 {
			continue
		}
		n := g.Get(id)
		out = append(out, diagfmt.NodeFacts{
			ID:    id,
			Text:  g.Text(id),
			Span:  n.Span,
			Facts: facts,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Span.Start != out[j].Span.Start {
			return out[i].Span.Start < out[j].Span.Start
		}
		return out[i].ID < out[j].ID
	})
	return out
}
