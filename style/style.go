// Package style renders terminal color/text decoration for run output and
// the execution tree. It replaces the teacher's colors package — absent
// from the retrieved source tree — with the same function surface built
// on charm.land/lipgloss/v2, the terminal styling library the teacher
// already depends on for its other ANSI output.
package style

import (
	"charm.land/lipgloss/v2"
)

var (
	styleGray        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleWhite       = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	styleBrightWhite = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	styleGreen       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleBrightGreen = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	styleRed         = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleBrightRed   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	styleYellow      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleBrightYellow = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	styleBrightOrange = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	styleBrightCyan   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
)

// Enabled controls whether styling is applied at all. Nothing in this
// module sets it to false, and no command-line flag controls it.
var Enabled = true

func render(s lipgloss.Style, text string) string {
	if !Enabled {
		return text
	}
	return s.Render(text)
}

func Gray(s string) string          { return render(styleGray, s) }
func White(s string) string         { return render(styleWhite, s) }
func BrightWhite(s string) string   { return render(styleBrightWhite, s) }
func Green(s string) string         { return render(styleGreen, s) }
func BrightGreen(s string) string   { return render(styleBrightGreen, s) }
func Red(s string) string           { return render(styleRed, s) }
func BrightRed(s string) string     { return render(styleBrightRed, s) }
func Yellow(s string) string        { return render(styleYellow, s) }
func BrightYellow(s string) string  { return render(styleBrightYellow, s) }
func BrightOrange(s string) string  { return render(styleBrightOrange, s) }
func BrightCyan(s string) string    { return render(styleBrightCyan, s) }

// VisualLength returns the rendered width of s, ignoring ANSI escape
// sequences, so callers can align boxes drawn around colored text.
func VisualLength(s string) int {
	return lipgloss.Width(s)
}
