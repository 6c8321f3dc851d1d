// Package theme is feelio's palette and the shared styles built on it. The
// palette is dark-background with saturated accents that stay readable for
// young eyes; every style degrades to plain text on a colorless terminal.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	Primary   = lipgloss.Color("#8B5CF6") // purple: titles, cursor
	Secondary = lipgloss.Color("#14B8A6") // teal: meters, links
	Accent    = lipgloss.Color("#F97316") // orange: score, celebrations
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")

	Text    = lipgloss.Color("#F8FAFC")
	TextDim = lipgloss.Color("#94A3B8")
	BgDark  = lipgloss.Color("#0F172A")
	BgCard  = lipgloss.Color("#1E293B")
	Border  = lipgloss.Color("#334155")
)

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Primary).Align(lipgloss.Center)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim).Align(lipgloss.Center)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	// Card frames a story, a tile or a stats block.
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Selected  = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Correct   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect = lipgloss.NewStyle().Foreground(Error).Bold(true)

	MeterFill  = lipgloss.NewStyle().Foreground(Secondary)
	MeterTrack = lipgloss.NewStyle().Foreground(Border)

	// ButtonActive is the chosen option of a Choice.
	ButtonActive = lipgloss.NewStyle().Background(Primary).Foreground(Text).Bold(true).Padding(0, 2)

	// Banner marks a caregiver acting as a child.
	Banner = lipgloss.NewStyle().Background(Accent).Foreground(BgDark).Bold(true).Padding(0, 1)

	// Toast is the celebration and notice box.
	Toast = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Accent).
		Foreground(Accent).
		Bold(true).
		Padding(0, 2)
)

var emotionColors = map[string]color.Color{
	"happy":       lipgloss.Color("#FACC15"),
	"sad":         lipgloss.Color("#60A5FA"),
	"angry":       lipgloss.Color("#EF4444"),
	"envy":        lipgloss.Color("#22C55E"),
	"embarrassed": lipgloss.Color("#F472B6"),
	"fear":        lipgloss.Color("#A78BFA"),
}

// EmotionColor returns the color for an emotion tag, TextDim for tags
// outside the vocabulary.
func EmotionColor(tag string) color.Color {
	if c, ok := emotionColors[tag]; ok {
		return c
	}
	return TextDim
}
