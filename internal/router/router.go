// Package router keeps the stack of screens behind the app frame. Screens
// navigate by returning the commands below; only the app model touches the
// Router itself.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feelio/internal/screen"
)

// Op is a stack operation.
type Op int

const (
	OpPush    Op = iota // add on top
	OpPop               // drop the top, never the last screen
	OpReplace           // swap the top, same depth
	OpReset             // make Screen the only one
)

func (o Op) String() string {
	switch o {
	case OpPush:
		return "push"
	case OpPop:
		return "pop"
	case OpReplace:
		return "replace"
	case OpReset:
		return "reset"
	}
	return "unknown"
}

// NavigateMsg asks the router to change the stack. Screen is unused for
// OpPop.
type NavigateMsg struct {
	Op     Op
	Screen screen.Screen
}

func navigate(op Op, s screen.Screen) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Op: op, Screen: s} }
}

// Push opens s above the current screen.
func Push(s screen.Screen) tea.Cmd { return navigate(OpPush, s) }

// Replace swaps the current screen for s.
func Replace(s screen.Screen) tea.Cmd { return navigate(OpReplace, s) }

// Reset restarts navigation from s. Used on login, logout and when a
// caregiver switches to or from a child.
func Reset(s screen.Screen) tea.Cmd { return navigate(OpReset, s) }

// Pop returns to the previous screen.
func Pop() tea.Msg { return NavigateMsg{Op: OpPop} }

// Router is a stack of screens; the top one is active.
type Router struct {
	stack []screen.Screen
}

func New(initial screen.Screen) *Router {
	return &Router{stack: []screen.Screen{initial}}
}

func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int { return len(r.stack) }

// Apply performs one stack operation. Screens that leave the stack are
// closed; a screen uncovered by a pop is focused; an entering screen is
// initialized.
func (r *Router) Apply(op Op, s screen.Screen) tea.Cmd {
	var gone []screen.Screen
	var cmds []tea.Cmd

	switch op {
	case OpPush:
		r.stack = append(r.stack, s)
	case OpPop:
		if len(r.stack) <= 1 {
			return nil
		}
		gone = r.stack[len(r.stack)-1:]
		r.stack = r.stack[:len(r.stack)-1]
	case OpReplace:
		gone = []screen.Screen{r.Active()}
		r.stack[len(r.stack)-1] = s
	case OpReset:
		gone = r.stack
		r.stack = []screen.Screen{s}
	}

	for _, g := range gone {
		if c, ok := g.(screen.Closer); ok {
			cmds = append(cmds, c.Close())
		}
	}
	if op == OpPop {
		if f, ok := r.Active().(screen.Focuser); ok {
			cmds = append(cmds, f.Focus())
		}
	} else {
		cmds = append(cmds, s.Init())
	}
	return tea.Batch(cmds...)
}

// Update applies navigation messages and hands everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	if nav, ok := msg.(NavigateMsg); ok {
		return r.Apply(nav.Op, nav.Screen)
	}
	active := r.Active()
	if active == nil {
		return nil
	}
	next, cmd := active.Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	if active := r.Active(); active != nil {
		return active.View(width, height)
	}
	return ""
}
