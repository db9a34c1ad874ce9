package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"attrsync/internal/driver"
	"attrsync/internal/ui"
)

type runOutcome struct {
	results []*driver.FileResult
	summary driver.Summary
	err     error
}

// runWithUI runs the driver while a Bubble Tea program renders its events
// on stderr.
func runWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]*driver.FileResult, driver.Summary, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		results, sum, err := driver.Run(ctx, files, optsCopy)
		outcomeCh <- runOutcome{results: results, summary: sum, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// the program may quit early; keep the producer from blocking
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.results, outcome.summary, uiErr
	}
	return outcome.results, outcome.summary, outcome.err
}
