package components

import (
	"image/color"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/theme"
)

const minBarWidth = 4

// ProgressBar is a one-line meter: optional label, bar, optional percentage.
// The bar is drawn with block glyphs so it stays readable without colors.
type ProgressBar struct {
	Label       string
	Percent     float64 // 0..1, clamped when drawn
	ShowPercent bool
	Width       int         // whole line, label and percentage included
	Color       color.Color // nil uses the theme's secondary color
}

// NewProgressBar creates a progress bar in the default color.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, ShowPercent: showPercent, Width: width}
}

// Tinted returns a copy drawn in c.
func (p ProgressBar) Tinted(c color.Color) ProgressBar {
	p.Color = c
	return p
}

func (p ProgressBar) ratio() float64 {
	return min(max(p.Percent, 0), 1)
}

func (p ProgressBar) View() string {
	var b strings.Builder
	if p.Label != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label))
		b.WriteString("  ")
	}

	suffix := ""
	if p.ShowPercent {
		suffix = "  " + strconv.Itoa(int(p.ratio()*100+0.5)) + "%"
	}

	width := max(p.Width-lipgloss.Width(b.String())-lipgloss.Width(suffix), minBarWidth)
	filled := int(float64(width)*p.ratio() + 0.5)

	fill := theme.MeterFill
	if p.Color != nil {
		fill = fill.Foreground(p.Color)
	}
	b.WriteString(fill.Render(strings.Repeat("█", filled)))
	b.WriteString(theme.MeterTrack.Render(strings.Repeat("░", width-filled)))
	if suffix != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix))
	}
	return b.String()
}
