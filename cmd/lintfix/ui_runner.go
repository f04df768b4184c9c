package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"lintfix/internal/ui"
)

// runWithUI runs work while a progress view renders the events it emits.
func runWithUI(title string, files []string, work func(sink ui.Sink) error) error {
	events := make(chan ui.Event, 256)
	outcome := make(chan error, 1)

	go func() {
		err := work(ui.ChannelSink{Ch: events})
		close(events)
		outcome <- err
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	err := <-outcome
	if uiErr != nil {
		return uiErr
	}
	return err
}
