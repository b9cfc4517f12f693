package tui

import (
	"context"

	"articledash/internal/controller"

	tea "github.com/charmbracelet/bubbletea"
)

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctrl *controller.Controller, canImport bool) error {
	m := New(ctx, ctrl, canImport)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// The hook can fire from inside Update, where a blocking Send would
	// deadlock the event loop.
	ctrl.OnChange(func() { go p.Send(stateChangedMsg{}) })
	defer ctrl.OnChange(nil)

	_, err := p.Run()
	return err
}
