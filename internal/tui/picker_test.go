package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reqpin/reqpin/internal/tui/components"
)

func testItems() []components.ChecklistItem {
	return []components.ChecklistItem{
		{Name: "numpy", Current: "1.26.4", Latest: "2.0.0"},
		{Name: "scipy", Current: "1.12.0", Latest: "1.13.0"},
		{Name: "cdflib", Current: "1.2.0", Latest: "1.2.6"},
	}
}

// loadedPicker returns a picker that has already received its candidates.
func loadedPicker(items []components.ChecklistItem) *PickerModel {
	picker := NewPicker(func() []components.ChecklistItem { return items })
	model, _ := picker.Update(itemsLoadedMsg{items: items})
	return model.(*PickerModel)
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func send(m *PickerModel, keys ...string) (tea.Model, tea.Cmd) {
	var model tea.Model = m
	var cmd tea.Cmd
	for _, k := range keys {
		model, cmd = model.Update(key(k))
	}
	return model, cmd
}

func TestPicker_SpinnerWhileChecking(t *testing.T) {
	picker := NewPicker(testItems)
	view := picker.View()
	if !strings.Contains(view, "Checking the package registry...") {
		t.Errorf("checking View() = %q", view)
	}

	// Enter does nothing until candidates arrive.
	model, cmd := send(picker, "enter")
	if cmd != nil {
		t.Error("enter should be ignored while checking")
	}
	if model.(*PickerModel).Confirmed() {
		t.Error("Confirmed() = true before candidates loaded")
	}
}

func TestPicker_CancelWhileChecking(t *testing.T) {
	picker := NewPicker(testItems)
	model, cmd := send(picker, "q")
	if cmd == nil {
		t.Error("q should quit during the check")
	}
	if model.(*PickerModel).Confirmed() {
		t.Error("Confirmed() = true after cancel")
	}
}

func TestPicker_EmptyCandidatesConfirm(t *testing.T) {
	picker := NewPicker(func() []components.ChecklistItem { return nil })
	model, cmd := picker.Update(itemsLoadedMsg{})
	if cmd == nil {
		t.Error("empty candidate set should quit immediately")
	}
	final := model.(*PickerModel)
	if !final.Confirmed() {
		t.Error("empty candidate set should count as confirmed")
	}
	if len(final.Selection()) != 0 {
		t.Errorf("Selection() = %v, want empty", final.Selection())
	}
}

func TestPicker_AllCheckedByDefault(t *testing.T) {
	picker := loadedPicker(testItems())
	if got := len(picker.Selection()); got != 3 {
		t.Errorf("initial selection = %d items, want 3", got)
	}
}

func TestPicker_ToggleAndConfirm(t *testing.T) {
	picker := loadedPicker(testItems())

	// Uncheck scipy, confirm.
	model, cmd := send(picker, "j", " ", "enter")
	if cmd == nil {
		t.Fatal("enter should produce tea.Quit")
	}

	final := model.(*PickerModel)
	if !final.Confirmed() {
		t.Error("Confirmed() = false after enter")
	}
	selection := final.Selection()
	if len(selection) != 2 {
		t.Fatalf("selection = %d items, want 2", len(selection))
	}
	if selection[0].Name != "numpy" || selection[1].Name != "cdflib" {
		t.Errorf("selection = %v", selection)
	}
}

func TestPicker_Cancel(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		picker := loadedPicker(testItems())
		model, cmd := send(picker, k)
		if cmd == nil {
			t.Errorf("%s should produce tea.Quit", k)
		}
		if model.(*PickerModel).Confirmed() {
			t.Errorf("Confirmed() = true after %s", k)
		}
	}
}

func TestPicker_AllNone(t *testing.T) {
	picker := loadedPicker(testItems())

	model, _ := send(picker, "n")
	if got := len(model.(*PickerModel).Selection()); got != 0 {
		t.Errorf("selection after n = %d items, want 0", got)
	}

	model, _ = send(picker, "a")
	if got := len(model.(*PickerModel).Selection()); got != 3 {
		t.Errorf("selection after a = %d items, want 3", got)
	}
}

func TestPicker_CursorBounds(t *testing.T) {
	picker := loadedPicker(testItems())

	// Down past the end, then toggle: the last item flips.
	model, _ := send(picker, "j", "j", "j", "j", " ")
	for _, item := range model.(*PickerModel).Selection() {
		if item.Name == "cdflib" {
			t.Errorf("cdflib still selected after toggling at the bottom")
		}
	}

	// Up past the top, then toggle: the first item flips.
	picker = loadedPicker(testItems())
	model, _ = send(picker, "k", "k", " ")
	for _, item := range model.(*PickerModel).Selection() {
		if item.Name == "numpy" {
			t.Errorf("numpy still selected after toggling at the top")
		}
	}
}

func TestPicker_View(t *testing.T) {
	picker := loadedPicker(testItems())
	view := picker.View()

	for _, want := range []string{"numpy", "1.26.4 -> 2.0.0", "Select upgrades", "space: toggle"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestPicker_ViewEmptyList(t *testing.T) {
	picker := NewPicker(func() []components.ChecklistItem { return nil })
	picker.checklist = components.NewChecklist(nil)
	picker.phase = phasePicking
	if !strings.Contains(picker.View(), "Nothing to upgrade") {
		t.Errorf("empty View() = %q", picker.View())
	}
}
