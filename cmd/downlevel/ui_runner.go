package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"downlevel/internal/driver"
	"downlevel/internal/ui"
)

type lowerOutcome struct {
	result *driver.Result
	err    error
}

// runLowerWithUI runs the driver while a Bubble Tea program renders its
// progress events.
func runLowerWithUI(ctx context.Context, title string, files []string, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan lowerOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Run(ctx, files, opts)
		outcomeCh <- lowerOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// the program may quit early; keep the driver from blocking on sends
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
