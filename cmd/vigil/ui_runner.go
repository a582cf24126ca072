package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"vigil/internal/driver"
	"vigil/internal/pipeline"
	"vigil/internal/ui"
)

type analyzeOutcome struct {
	summaries []driver.FileSummary
	err       error
}

// runAnalyzeDirWithUI прогоняет каталожный анализ на фоне, рисуя прогресс
// через Bubble Tea.
func runAnalyzeDirWithUI(ctx context.Context, title string, files []string, dir string, opts driver.Options) ([]driver.FileSummary, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		summaries, err := driver.AnalyzeDir(ctx, dir, opts, pipeline.ChannelSink{Ch: events})
		outcomeCh <- analyzeOutcome{summaries: summaries, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.summaries, uiErr
	}
	return outcome.summaries, outcome.err
}
