package tui

import "github.com/charmbracelet/lipgloss"

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeInputStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)

	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	emptyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)

	menuStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2)

	menuTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	menuButtonStyle   = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("245"))
	menuSelectedStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Bold(true).
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62"))
)

// fadeRamp steps a row's foreground from nearly invisible to its resting
// color.
var fadeRamp = []lipgloss.Color{"235", "237", "239", "241", "244", "247", "250", "252"}

// fadeColor picks the ramp entry for a visibility in [0, 1].
func fadeColor(visibility float64) lipgloss.Color {
	i := int(visibility * float64(len(fadeRamp)-1))
	if i < 0 {
		i = 0
	}
	if i >= len(fadeRamp) {
		i = len(fadeRamp) - 1
	}
	return fadeRamp[i]
}
