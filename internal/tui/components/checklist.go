// Package components provides reusable TUI components for reqpin.
package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reqpin/reqpin/internal/tui/styles"
)

// ChecklistItem is one selectable upgrade candidate.
type ChecklistItem struct {
	// Name is the package name.
	Name string
	// Current is the version pinned in the manifest.
	Current string
	// Latest is the newest registry release.
	Latest string
	// Checked marks the item for upgrade.
	Checked bool
}

// Checklist is a multi-select list of upgrade candidates.
type Checklist struct {
	items       []ChecklistItem
	cursor      int
	width       int
	height      int
	scrollStart int
}

// NewChecklist creates a checklist with all items pre-checked.
func NewChecklist(items []ChecklistItem) *Checklist {
	list := make([]ChecklistItem, len(items))
	copy(list, items)
	for i := range list {
		list[i].Checked = true
	}
	return &Checklist{
		items:  list,
		width:  60,
		height: 14,
	}
}

// SetSize sets the checklist dimensions.
func (c *Checklist) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// Items returns all items with their current checked state.
func (c *Checklist) Items() []ChecklistItem {
	return c.items
}

// Checked returns the checked items in list order.
func (c *Checklist) Checked() []ChecklistItem {
	var out []ChecklistItem
	for _, item := range c.items {
		if item.Checked {
			out = append(out, item)
		}
	}
	return out
}

// MoveUp moves the cursor up.
func (c *Checklist) MoveUp() {
	if c.cursor > 0 {
		c.cursor--
		c.ensureVisible()
	}
}

// MoveDown moves the cursor down.
func (c *Checklist) MoveDown() {
	if c.cursor < len(c.items)-1 {
		c.cursor++
		c.ensureVisible()
	}
}

// Toggle flips the checked state under the cursor.
func (c *Checklist) Toggle() {
	if len(c.items) > 0 {
		c.items[c.cursor].Checked = !c.items[c.cursor].Checked
	}
}

// CheckAll checks every item.
func (c *Checklist) CheckAll() {
	for i := range c.items {
		c.items[i].Checked = true
	}
}

// CheckNone unchecks every item.
func (c *Checklist) CheckNone() {
	for i := range c.items {
		c.items[i].Checked = false
	}
}

// ensureVisible keeps the cursor inside the scroll window.
func (c *Checklist) ensureVisible() {
	visibleHeight := c.visibleHeight()
	if c.cursor < c.scrollStart {
		c.scrollStart = c.cursor
	} else if c.cursor >= c.scrollStart+visibleHeight {
		c.scrollStart = c.cursor - visibleHeight + 1
	}
}

func (c *Checklist) visibleHeight() int {
	h := c.height - 4 // title, help, borders
	if h < 1 {
		h = 5
	}
	return h
}

// Update handles key messages.
func (c *Checklist) Update(msg tea.Msg) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return
	}
	switch keyMsg.String() {
	case "up", "k":
		c.MoveUp()
	case "down", "j":
		c.MoveDown()
	case " ":
		c.Toggle()
	case "a":
		c.CheckAll()
	case "n":
		c.CheckNone()
	}
}

// View renders the checklist.
func (c *Checklist) View() string {
	var b strings.Builder

	if len(c.items) == 0 {
		b.WriteString(styles.MutedTextStyle.Render("  Nothing to upgrade"))
		b.WriteString("\n")
		return b.String()
	}

	visibleHeight := c.visibleHeight()
	endIdx := c.scrollStart + visibleHeight
	if endIdx > len(c.items) {
		endIdx = len(c.items)
	}

	if c.scrollStart > 0 {
		b.WriteString(styles.MutedTextStyle.Render("  ↑ more above"))
		b.WriteString("\n")
	}

	for i := c.scrollStart; i < endIdx; i++ {
		b.WriteString(c.renderItem(c.items[i], i == c.cursor))
		b.WriteString("\n")
	}

	if endIdx < len(c.items) {
		b.WriteString(styles.MutedTextStyle.Render("  ↓ more below"))
		b.WriteString("\n")
	}

	return b.String()
}

// renderItem renders one candidate line.
func (c *Checklist) renderItem(item ChecklistItem, underCursor bool) string {
	cursor := "  "
	if underCursor {
		cursor = styles.CursorStyle.Render("▶ ")
	}

	box := styles.CheckboxUncheckedStyle.Render("[ ]")
	if item.Checked {
		box = styles.CheckboxCheckedStyle.Render("[x]")
	}

	nameStyle := lipgloss.NewStyle().Foreground(styles.Foreground)
	if underCursor {
		nameStyle = nameStyle.Bold(true)
	}

	versions := styles.MutedTextStyle.Render(
		fmt.Sprintf("%s -> %s", item.Current, item.Latest))

	return fmt.Sprintf("%s%s %s %s", cursor, box, nameStyle.Render(item.Name), versions)
}
