package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"vigil/internal/diag"
	"vigil/internal/pipeline"
	"vigil/internal/source"
)

// FileSummary is the directory-mode outcome for one file.
type FileSummary struct {
	Path       string
	Facts      int
	Bailouts   int
	Errors     int
	Warnings   int
	Cached     bool
	Duration   time.Duration
	Timings    pipeline.Timings // пусто для кэшированных файлов
	Err        error
	Result     *FileResult // nil для кэшированных и упавших файлов
}

// AnalyzeDir analyzes every .c file under dir. Files run in parallel on up
// to opts.Jobs workers; each file's engine run stays single-threaded. A
// non-nil cache skips files whose content digest is already recorded. Sink
// receives progress events from worker goroutines.
func AnalyzeDir(ctx context.Context, dir string, opts Options, sink pipeline.ProgressSink) ([]FileSummary, error) {
	opts = opts.withDefaults()
	if sink == nil {
		sink = pipeline.NopSink{}
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".c" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	summaries := make([]FileSummary, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageParse, Status: pipeline.StatusQueued})
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := analyzeOne(path, opts, sink)
			mu.Lock()
			summaries[i] = s
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func analyzeOne(path string, opts Options, sink pipeline.ProgressSink) FileSummary {
	started := time.Now()
	sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageParse, Status: pipeline.StatusWorking})

	if opts.Cache != nil {
		if s, ok := cachedSummary(path, opts.Cache); ok {
			sink.OnEvent(pipeline.Event{
				File: path, Stage: pipeline.StageAnalyze, Status: pipeline.StatusCached,
				Facts: s.Facts, Elapsed: time.Since(started),
			})
			return s
		}
	}

	res, err := AnalyzeFile(path, opts)
	if err != nil {
		sink.OnEvent(pipeline.Event{File: path, Stage: pipeline.StageParse, Status: pipeline.StatusError, Err: err})
		return FileSummary{Path: path, Err: err}
	}

	s := FileSummary{
		Path:     path,
		Facts:    res.Facts(),
		Bailouts: res.Context.Bailouts(),
		Errors:   res.Bag.CountBySeverity(diag.SevError),
		Warnings: res.Bag.CountBySeverity(diag.SevWarning),
		Duration: time.Since(started),
		Timings:  stageTimings(res),
		Result:   res,
	}
	if opts.Cache != nil {
		_ = opts.Cache.Put(res.File.Hash, &CachePayload{
			Schema:     diskCacheSchemaVersion,
			Path:       path,
			Facts:      s.Facts,
			Bailouts:   s.Bailouts,
			Errors:     s.Errors,
			Warnings:   s.Warnings,
			DurationMS: float64(s.Duration) / float64(time.Millisecond),
		})
	}
	sink.OnEvent(pipeline.Event{
		File: path, Stage: pipeline.StageAnalyze, Status: pipeline.StatusDone,
		Facts: s.Facts, Elapsed: s.Duration,
	})
	return s
}

// stageTimings maps the run's timer phases onto pipeline stages.
func stageTimings(res *FileResult) pipeline.Timings {
	var tm pipeline.Timings
	for _, p := range res.Timer.Report().Phases {
		d := time.Duration(p.DurationMS * float64(time.Millisecond))
		switch p.Name {
		case "parse":
			tm.Set(pipeline.StageParse, d)
		case "valueflow":
			tm.Set(pipeline.StageAnalyze, d)
		}
	}
	return tm
}

// cachedSummary hashes the file the same way FileSet.Load does and asks the
// cache for an earlier run.
func cachedSummary(path string, cache *DiskCache) (FileSummary, bool) {
	digest, err := hashFile(path)
	if err != nil {
		return FileSummary{}, false
	}
	return lookupSummary(path, digest, cache)
}

// hashFile loads through a throwaway FileSet so BOM/CRLF normalization
// matches what the analysis itself would hash.
func hashFile(path string) (source.Digest, error) {
	fs := source.NewFileSet()
	fid, err := fs.Load(path)
	if err != nil {
		return source.Digest{}, err
	}
	return fs.Get(fid).Hash, nil
}

func lookupSummary(path string, digest source.Digest, cache *DiskCache) (FileSummary, bool) {
	var payload CachePayload
	ok, err := cache.Get(digest, &payload)
	if err != nil || !ok {
		return FileSummary{}, false
	}
	return FileSummary{
		Path:     path,
		Facts:    payload.Facts,
		Bailouts: payload.Bailouts,
		Errors:   payload.Errors,
		Warnings: payload.Warnings,
		Cached:   true,
		Duration: time.Duration(payload.DurationMS * float64(time.Millisecond)),
	}, true
}
