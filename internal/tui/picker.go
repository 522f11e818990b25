// Package tui provides the interactive upgrade picker.
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reqpin/reqpin/internal/tui/components"
	"github.com/reqpin/reqpin/internal/tui/styles"
)

// pickerPhase tracks which screen the picker shows.
type pickerPhase int

const (
	phaseChecking pickerPhase = iota
	phasePicking
)

// itemsLoadedMsg carries the upgrade candidates once the registry
// check finishes.
type itemsLoadedMsg struct {
	items []components.ChecklistItem
}

// PickerModel is the bubbletea model for the upgrade picker. It shows
// a spinner while the registry check runs, then a checklist of
// upgrade candidates.
type PickerModel struct {
	fetch     func() []components.ChecklistItem
	spinner   *components.Spinner
	checklist *components.Checklist
	phase     pickerPhase
	confirmed bool
	cancelled bool
	width     int
	height    int
}

// NewPicker creates a picker that obtains its candidates from fetch.
// All candidates start checked.
func NewPicker(fetch func() []components.ChecklistItem) *PickerModel {
	spinner := components.NewSpinner()
	spinner.SetStatusText("Checking the package registry...")
	spinner.Start()
	return &PickerModel{
		fetch:   fetch,
		spinner: spinner,
		phase:   phaseChecking,
	}
}

// Confirmed reports whether the user accepted the selection.
func (m *PickerModel) Confirmed() bool {
	return m.confirmed
}

// Selection returns the checked candidates in list order.
func (m *PickerModel) Selection() []components.ChecklistItem {
	if m.checklist == nil {
		return nil
	}
	return m.checklist.Checked()
}

// Init implements tea.Model.
func (m *PickerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), func() tea.Msg {
		return itemsLoadedMsg{items: m.fetch()}
	})
}

// Update implements tea.Model.
func (m *PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.checklist != nil {
			m.checklist.SetSize(msg.Width-4, msg.Height-4)
		}
		return m, nil

	case itemsLoadedMsg:
		m.checklist = components.NewChecklist(msg.items)
		if m.width > 0 {
			m.checklist.SetSize(m.width-4, m.height-4)
		}
		m.phase = phasePicking
		// Nothing to pick: confirm the empty selection and leave.
		if len(msg.items) == 0 {
			m.confirmed = true
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if m.phase == phasePicking {
				m.confirmed = true
				return m, tea.Quit
			}
			return m, nil
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		default:
			if m.phase == phasePicking {
				m.checklist.Update(msg)
			}
			return m, nil
		}
	}

	if m.phase == phaseChecking {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *PickerModel) View() string {
	if m.confirmed || m.cancelled {
		return ""
	}
	if m.phase == phaseChecking {
		return m.spinner.View() + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Select upgrades"))
	b.WriteString("\n\n")
	b.WriteString(m.checklist.View())
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render(
		"j/k: navigate  space: toggle  a: all  n: none  Enter: apply  q: cancel"))

	return styles.FocusedBoxStyle.Render(b.String())
}

// Run shows the picker and blocks until the user confirms or cancels.
// fetch runs off the UI goroutine; a spinner shows until it returns.
// The checked candidates are returned along with whether the user
// confirmed (an empty candidate set counts as confirmed).
func Run(fetch func() []components.ChecklistItem) ([]components.ChecklistItem, bool, error) {
	model := NewPicker(fetch)
	program := tea.NewProgram(model)
	final, err := program.Run()
	if err != nil {
		return nil, false, err
	}

	picker := final.(*PickerModel)
	if !picker.Confirmed() {
		return nil, false, nil
	}
	return picker.Selection(), true, nil
}
