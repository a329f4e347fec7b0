package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

type TUI struct {
	ctx      context.Context
	eventsCh <-chan Event
	cancel   context.CancelFunc
}

// New builds a TUI reading eventsCh. cancel is called when the user stops the run.
func New(ctx context.Context, eventsCh <-chan Event, cancel context.CancelFunc) *TUI {
	return &TUI{ctx, eventsCh, cancel}
}

// Run blocks until the event channel is closed, the context ends or the
// user quits.
func (t *TUI) Run() error {
	widget := NewWidget()
	p := tea.NewProgram(widget)

	// forward events from the core into the bubbletea loop
	go func() {
		for {
			select {
			case <-t.ctx.Done():
				p.Quit()
				return
			case event, ok := <-t.eventsCh:
				if !ok {
					p.Send(doneMsg{})
					return
				}
				p.Send(event)
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if widget.Aborted && t.cancel != nil {
		t.cancel()
	}
	return nil
}
