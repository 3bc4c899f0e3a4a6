package ui

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/recera/zoom/cmd/zoom/internal/config"
)

// ErrCancelled is returned when the wizard is quit before confirming
var ErrCancelled = errors.New("init cancelled")

// Run starts the wizard prefilled from cfg and returns the confirmed
// configuration
func Run(cfg *config.Config) (*config.Config, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, fmt.Errorf("not running in a terminal, use --no-interactive flag")
	}

	finalModel, err := tea.NewProgram(NewModel(cfg)).Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	m := finalModel.(Model)
	if m.Cancelled() {
		return nil, ErrCancelled
	}
	return m.Config()
}
