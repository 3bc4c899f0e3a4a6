package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recera/zoom/cmd/zoom/internal/config"
)

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

var (
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	enter    = tea.KeyMsg{Type: tea.KeyEnter}
	esc      = tea.KeyMsg{Type: tea.KeyEsc}
	ctrlT    = tea.KeyMsg{Type: tea.KeyCtrlT}
	ctrlC    = tea.KeyMsg{Type: tea.KeyCtrlC}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPrefilledFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Zoom.Offset = 12.5
	m := NewModel(cfg)

	got, err := m.Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if *got != *cfg {
		t.Errorf("unedited wizard changed the config:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestNavigationWraps(t *testing.T) {
	m := NewModel(nil)
	m = press(t, m, shiftTab)
	if m.current != len(fields)-1 {
		t.Errorf("shift+tab from first field: current = %d", m.current)
	}
	m = press(t, m, tab)
	if m.current != 0 {
		t.Errorf("tab from last field: current = %d", m.current)
	}
	if !m.inputs[0].Focused() || m.inputs[len(fields)-1].Focused() {
		t.Error("focus not moved")
	}
}

func TestTypingEditsFocusedField(t *testing.T) {
	m := NewModel(nil)
	m.inputs[2].SetValue("")
	m = press(t, m, tab, tab, runes("9090"), enter)

	if m.Step() != StepSummary {
		t.Fatalf("step = %v, want summary (error %q)", m.Step(), m.errorMessage)
	}
	cfg, err := m.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if !strings.Contains(m.View(), "localhost:9090") {
		t.Error("summary does not show the address")
	}
}

func TestInvalidInputStaysOnFields(t *testing.T) {
	m := NewModel(nil)
	m.inputs[3].SetValue("wide")
	m = press(t, m, enter)
	if m.Step() != StepFields {
		t.Fatalf("step = %v, want fields", m.Step())
	}
	if m.errorMessage != "display width must be a whole number" {
		t.Errorf("error = %q", m.errorMessage)
	}

	m.inputs[3].SetValue("640")
	m.inputs[5].SetValue("-1")
	m = press(t, m, enter)
	if !strings.Contains(m.errorMessage, "must not be negative") {
		t.Errorf("validation error = %q", m.errorMessage)
	}
	if !strings.Contains(m.View(), m.errorMessage) {
		t.Error("error not rendered")
	}
}

func TestToggleCompiler(t *testing.T) {
	m := press(t, NewModel(nil), ctrlT)
	cfg, err := m.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Build.Compiler != "tinygo" {
		t.Errorf("compiler = %q", cfg.Build.Compiler)
	}
	m = press(t, m, ctrlT)
	cfg, _ = m.Config()
	if cfg.Build.Compiler != "go" {
		t.Errorf("compiler = %q after second toggle", cfg.Build.Compiler)
	}
}

func TestConfirmAndCancel(t *testing.T) {
	m := press(t, NewModel(nil), enter, esc)
	if m.Step() != StepFields {
		t.Fatalf("esc on summary should go back, step = %v", m.Step())
	}

	m = press(t, m, enter, enter)
	if m.Step() != StepComplete || m.Cancelled() {
		t.Errorf("step = %v cancelled = %v", m.Step(), m.Cancelled())
	}

	m = press(t, NewModel(nil), ctrlC)
	if !m.Cancelled() {
		t.Error("ctrl+c should cancel")
	}
	m = press(t, NewModel(nil), esc)
	if !m.Cancelled() {
		t.Error("esc on the first step should cancel")
	}
}
