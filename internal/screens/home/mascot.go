package home

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default purple
	MascotWaving                           // Nothing answered yet
	MascotCelebrating                      // At least one playground cat earned
)

const mascotIdle = `╭─────╮
│ ◠ ◠ │
│  ‿  │
╰─────╯`

const mascotWaving = `╭─────╮  /
│ ◠ ◠ │ /
│  ▽  │/
╰─────╯`

const mascotCelebrating = `╭─────╮
│ ★ ★ │
│  ▽  │
╰┬───┬╯
 ╰═══╯`

// catScore is the score that earns a playground companion.
const catScore = 50

// variantFor picks the mascot for a learner's totals.
func variantFor(score, responses int) MascotVariant {
	switch {
	case responses == 0:
		return MascotWaving
	case score >= catScore:
		return MascotCelebrating
	}
	return MascotIdle
}

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art := mascotIdle
	var fg color.Color = theme.Primary

	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.Accent
	case MascotWaving:
		art = mascotWaving
		fg = theme.Secondary
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
