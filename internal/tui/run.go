package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the chat client on the terminal and blocks until the user quits or ctx is done.
func Run(ctx context.Context, service ChatService) error {
	p := tea.NewProgram(New(ctx, service), tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run chat ui: %w", err)
	}

	return nil
}
