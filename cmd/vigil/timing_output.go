package main

import (
	"fmt"
	"io"
	"time"

	"vigil/internal/driver"
	"vigil/internal/pipeline"
)

// printDirTimings агрегирует фазовые тайминги по всем файлам каталога.
func printDirTimings(out io.Writer, summaries []driver.FileSummary) {
	if out == nil {
		return
	}
	var parse, analyze time.Duration
	analyzed := 0
	for _, s := range summaries {
		if s.Cached || s.Err != nil {
			continue
		}
		parse += s.Timings.Duration(pipeline.StageParse)
		analyze += s.Timings.Duration(pipeline.StageAnalyze)
		analyzed++
	}
	if analyzed == 0 {
		return
	}
	fmt.Fprintf(out, "parsed %.1f ms\n", toMillis(parse))
	fmt.Fprintf(out, "analyzed %.1f ms\n", toMillis(analyze))
	fmt.Fprintf(out, "total %.1f ms across %d files\n",
		toMillis(parse+analyze), analyzed)
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
