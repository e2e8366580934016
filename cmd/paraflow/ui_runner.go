package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"paraflow/internal/driver"
	"paraflow/internal/ui"
)

type checkOutcome struct {
	report *driver.Report
	err    error
}

// runCheckWithUI runs driver.Check while a progress view renders its events.
func runCheckWithUI(ctx context.Context, title string, files []string, opts driver.CheckOptions) (*driver.Report, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		report, err := driver.Check(ctx, files, opts)
		outcomeCh <- checkOutcome{report: report, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// view is gone: keep the checker from blocking on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
