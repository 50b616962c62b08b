package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Options menu choices, in display order.
const (
	menuEdit = iota
	menuCancel
	menuChoices
)

var menuLabels = [menuChoices]string{"Edit", "Cancel"}

// optionsMenu is the per-row menu opened with the options key.
type optionsMenu struct {
	taskID   string
	selected int
}

func newOptionsMenu(taskID string) *optionsMenu {
	return &optionsMenu{taskID: taskID, selected: menuEdit}
}

func (m *optionsMenu) next() {
	m.selected = (m.selected + 1) % menuChoices
}

func (m *optionsMenu) prev() {
	m.selected = (m.selected - 1 + menuChoices) % menuChoices
}

func (m *optionsMenu) View() string {
	buttons := make([]string, menuChoices)
	for i, label := range menuLabels {
		style := menuButtonStyle
		if i == m.selected {
			style = menuSelectedStyle
		}
		buttons[i] = style.Render(label)
	}

	var b strings.Builder
	b.WriteString(menuTitleStyle.Render("Task Options"))
	b.WriteString("\n")
	b.WriteString("What would you like to do?")
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	return menuStyle.Render(b.String())
}
