// Package screen defines what the router stacks. The optional interfaces
// let a screen opt into footer hints, refocus, escape handling and cleanup.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feelio/internal/ui/layout"
)

// Screen is one page of the app, drawn between the header and the footer.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View draws the body into width x height cells.
	View(width, height int) string

	// Title is shown centered in the header.
	Title() string
}

// KeyHintProvider replaces the app's default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Focuser is told when the screen above it was popped, so it can reload
// data the other screen may have changed.
type Focuser interface {
	Focus() tea.Cmd
}

// EscapeHandler keeps esc for the screen while HandlesEscape is true, e.g.
// while a modal is open, instead of letting the app pop it.
type EscapeHandler interface {
	HandlesEscape() bool
}

// Closer releases what the screen holds, such as a running recorder, when
// it leaves the stack.
type Closer interface {
	Close() tea.Cmd
}
