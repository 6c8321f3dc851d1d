// Package layout draws the chrome around every screen: the header bar with
// the signed-in name and score, the key-hint footer and the frame that
// stacks them around the active screen.
package layout

import (
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	HeaderHeight = 3
	FooterHeight = 3

	CompactWidthThreshold  = 100
	CompactHeightThreshold = 30
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool   { return width < CompactWidthThreshold }
func IsCompactHeight(height int) bool { return height < CompactHeightThreshold }

// IsTooSmall reports whether the terminal is below the minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage centers msg in the whole terminal.
func RenderMinSizeMessage(msg string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

// HeaderInfo is the status shown on the right of the header bar.
type HeaderInfo struct {
	Name  string
	Score int

	// ShowScore is false before the score has loaded or for caregivers.
	ShowScore bool

	// Banner is shown above the bar while a caregiver acts as a child.
	// Empty hides it.
	Banner string
}

var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// RenderHeader renders the app name on the left, the screen title centered
// and the identity on the right.
func RenderHeader(appName, title string, info HeaderInfo, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(" " + appName)
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)

	var right []string
	if info.Name != "" {
		right = append(right, lipgloss.NewStyle().Foreground(theme.TextDim).Render(info.Name))
	}
	if info.ShowScore {
		right = append(right, lipgloss.NewStyle().Foreground(theme.Accent).Render("★ "+strconv.Itoa(info.Score)))
	}

	inner := max(width-bar.GetHorizontalFrameSize(), 0)
	box := bar.Width(width).Render(spread(left, center, strings.Join(right, "   ")+" ", inner))
	if info.Banner == "" {
		return box
	}
	banner := lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Banner.Render(info.Banner))
	return lipgloss.JoinVertical(lipgloss.Left, banner, box)
}

// spread places center in the middle of width, pushed aside when left is
// too wide, with right flush against the end.
func spread(left, center, right string, width int) string {
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	gapL := max((width-cw)/2-lw, 1)
	gapR := max(width-lw-gapL-cw-rw, 1)
	return left + strings.Repeat(" ", gapL) + center + strings.Repeat(" ", gapR) + right
}

// RenderFooter renders the key hints. Hints that do not fit on one line are
// dropped from the end.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	room := width - bar.GetHorizontalFrameSize() - 2
	line := ""
	for _, h := range hints {
		part := keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
		next := part
		if line != "" {
			next = line + "   " + part
		}
		if lipgloss.Width(next) > room {
			break
		}
		line = next
	}
	return bar.Width(width).Render("  " + line)
}

// RenderFrame stacks header, content and footer, giving content whatever
// height is left.
func RenderFrame(header, content, footer string, width, height int) string {
	h := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(h).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
