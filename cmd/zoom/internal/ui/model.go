// Package ui is the interactive zoom.yaml wizard run by zoom init
package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recera/zoom/cmd/zoom/internal/config"
)

// Step represents the current step in the wizard
type Step int

const (
	StepFields Step = iota
	StepSummary
	StepComplete
)

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Toggle key.Binding
	Back   key.Binding
	Quit   key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "shift+tab"),
		key.WithHelp("↑/shift+tab", "previous"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "tab"),
		key.WithHelp("↓/tab", "next"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "toggle compiler"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// field is one editable setting
type field struct {
	label string
	get   func(*config.Config) string
	set   func(*config.Config, string) error
}

var fields = []field{
	{
		label: "Image directory",
		get:   func(c *config.Config) string { return c.Gallery.Dir },
		set: func(c *config.Config, v string) error {
			if v == "" {
				return errors.New("image directory is required")
			}
			c.Gallery.Dir = v
			return nil
		},
	},
	{
		label: "Gallery title",
		get:   func(c *config.Config) string { return c.Gallery.Title },
		set:   func(c *config.Config, v string) error { c.Gallery.Title = v; return nil },
	},
	{
		label: "Port",
		get:   func(c *config.Config) string { return strconv.Itoa(c.Server.Port) },
		set:   intSetter("port", func(c *config.Config) *int { return &c.Server.Port }),
	},
	{
		label: "Display width",
		get:   func(c *config.Config) string { return strconv.Itoa(c.Gallery.DisplayWidth) },
		set:   intSetter("display width", func(c *config.Config) *int { return &c.Gallery.DisplayWidth }),
	},
	{
		label: "Zoom offset",
		get:   func(c *config.Config) string { return formatFloat(c.Zoom.Offset) },
		set:   floatSetter("offset", func(c *config.Config) *float64 { return &c.Zoom.Offset }),
	},
	{
		label: "Scroll threshold",
		get:   func(c *config.Config) string { return formatFloat(c.Zoom.ScrollThreshold) },
		set:   floatSetter("scroll threshold", func(c *config.Config) *float64 { return &c.Zoom.ScrollThreshold }),
	},
	{
		label: "Touch threshold",
		get:   func(c *config.Config) string { return formatFloat(c.Zoom.TouchThreshold) },
		set:   floatSetter("touch threshold", func(c *config.Config) *float64 { return &c.Zoom.TouchThreshold }),
	},
}

// Model represents the wizard state
type Model struct {
	width int

	step    Step
	base    config.Config
	inputs  []textinput.Model
	current int

	errorMessage string
	quitting     bool
}

// NewModel creates a wizard prefilled from cfg
func NewModel(cfg *config.Config) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.CharLimit = 120
		in.Width = 40
		in.Prompt = ""
		in.SetValue(f.get(cfg))
		inputs[i] = in
	}
	inputs[0].Focus()

	return Model{
		step:   StepFields,
		base:   *cfg,
		inputs: inputs,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.step {
		case StepFields:
			if cmd, handled := m.handleFieldKeys(msg); handled {
				return m, cmd
			}

		case StepSummary:
			switch {
			case key.Matches(msg, DefaultKeyMap.Enter):
				m.step = StepComplete
				return m, tea.Quit
			case key.Matches(msg, DefaultKeyMap.Back):
				m.step = StepFields
				m.inputs[m.current].Focus()
				return m, nil
			}
			return m, nil
		}
	}

	if m.step == StepFields {
		var cmd tea.Cmd
		m.inputs[m.current], cmd = m.inputs[m.current].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleFieldKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Down):
		m.focus(m.current + 1)
		return nil, true

	case key.Matches(msg, DefaultKeyMap.Up):
		m.focus(m.current - 1)
		return nil, true

	case key.Matches(msg, DefaultKeyMap.Toggle):
		if m.base.Build.Compiler == "tinygo" {
			m.base.Build.Compiler = "go"
		} else {
			m.base.Build.Compiler = "tinygo"
		}
		return nil, true

	case key.Matches(msg, DefaultKeyMap.Enter):
		if _, err := m.Config(); err != nil {
			m.errorMessage = err.Error()
			return nil, true
		}
		m.errorMessage = ""
		m.inputs[m.current].Blur()
		m.step = StepSummary
		return nil, true

	case key.Matches(msg, DefaultKeyMap.Back):
		m.quitting = true
		return tea.Quit, true
	}
	return nil, false
}

// focus moves to input i, wrapping around
func (m *Model) focus(i int) {
	m.inputs[m.current].Blur()
	n := len(m.inputs)
	m.current = (i%n + n) % n
	m.inputs[m.current].Focus()
}

// Step returns the current step
func (m Model) Step() Step { return m.step }

// Cancelled reports whether the user quit before confirming
func (m Model) Cancelled() bool { return m.quitting && m.step != StepComplete }

// Config applies the inputs to a copy of the starting configuration and
// validates the result
func (m Model) Config() (*config.Config, error) {
	cfg := m.base
	for i, f := range fields {
		if err := f.set(&cfg, strings.TrimSpace(m.inputs[i].Value())); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Width(18).Foreground(lipgloss.Color("245"))
	focusedStyle = lipgloss.NewStyle().Width(18).Foreground(lipgloss.Color("205")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 2)
)

// View renders the UI
func (m Model) View() string {
	var b strings.Builder
	switch m.step {
	case StepFields:
		b.WriteString(titleStyle.Render("zoom init"))
		b.WriteString("\n")
		for i, f := range fields {
			style := labelStyle
			if i == m.current {
				style = focusedStyle
			}
			b.WriteString(style.Render(f.label) + m.inputs[i].View() + "\n")
		}
		b.WriteString(labelStyle.Render("Compiler") + m.base.Build.Compiler + "\n")
		if m.errorMessage != "" {
			b.WriteString("\n" + errorStyle.Render("✗ "+m.errorMessage) + "\n")
		}
		b.WriteString(helpStyle.Render(help(DefaultKeyMap.Down, DefaultKeyMap.Up, DefaultKeyMap.Toggle, DefaultKeyMap.Enter, DefaultKeyMap.Quit)))

	case StepSummary:
		cfg, _ := m.Config()
		b.WriteString(titleStyle.Render("Write " + config.FileName + "?"))
		b.WriteString("\n")
		b.WriteString(boxStyle.Render(summary(cfg)))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(help(DefaultKeyMap.Enter, DefaultKeyMap.Back, DefaultKeyMap.Quit)))

	case StepComplete:
		b.WriteString("✓ Configuration confirmed\n")
	}
	return b.String()
}

func summary(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	lines := []string{
		fmt.Sprintf("Gallery   %s (%q, %dpx wide)", cfg.Gallery.Dir, cfg.Gallery.Title, cfg.Gallery.DisplayWidth),
		fmt.Sprintf("Server    %s", cfg.Addr()),
		fmt.Sprintf("Zoom      offset %s, scroll %s, touch %s",
			formatFloat(cfg.Zoom.Offset), formatFloat(cfg.Zoom.ScrollThreshold), formatFloat(cfg.Zoom.TouchThreshold)),
		fmt.Sprintf("Compiler  %s", cfg.Build.Compiler),
	}
	return strings.Join(lines, "\n")
}

func help(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

func intSetter(name string, target func(*config.Config) *int) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a whole number", name)
		}
		*target(c) = n
		return nil
	}
}

func floatSetter(name string, target func(*config.Config) *float64) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number", name)
		}
		*target(c) = f
		return nil
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
