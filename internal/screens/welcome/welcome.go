// Package welcome is the splash shown at startup. It hands over to the
// landing screen for the stored session: login, the caregiver dashboard or
// a child's home.
package welcome

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/feelio/internal/i18n"
	"github.com/abhisek/feelio/internal/router"
	"github.com/abhisek/feelio/internal/screen"
	"github.com/abhisek/feelio/internal/ui/theme"
)

const (
	frame = 100 * time.Millisecond

	// The splash reveals the mascot, then the banner, then the tagline,
	// and leaves on its own at splashLength.
	bannerAt     = 400 * time.Millisecond
	taglineAt    = 1200 * time.Millisecond
	splashLength = 3 * time.Second

	faceEvery = 4 * frame
)

// One face per emotion, cycled while the splash runs.
var faces = []string{"◠‿◠", "︶︿︶", "ಠ益ಠ", "¬_¬", "⁄•⁄ω⁄•⁄", "ʘ︿ʘ"}

var mascot = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Primary).
	Foreground(theme.Primary).
	Padding(1, 2).
	Width(15).
	Align(lipgloss.Center)

type frameMsg struct{}

// WelcomeScreen replaces itself with next() when the splash ends or on
// any key.
type WelcomeScreen struct {
	next    func() screen.Screen
	t       *i18n.Translator
	elapsed time.Duration
	done    bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

func New(next func() screen.Screen, t *i18n.Translator) *WelcomeScreen {
	return &WelcomeScreen{next: next, t: t}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return nextFrame() }

func nextFrame() tea.Cmd {
	return tea.Tick(frame, func(time.Time) tea.Msg { return frameMsg{} })
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case frameMsg:
		if w.done {
			return w, nil
		}
		w.elapsed = min(w.elapsed+frame, splashLength)
		if w.elapsed == splashLength {
			return w, w.leave()
		}
		return w, nextFrame()
	case tea.KeyPressMsg:
		return w, w.leave()
	}
	return w, nil
}

// leave builds the next screen once, however many keys arrive.
func (w *WelcomeScreen) leave() tea.Cmd {
	if w.done {
		return nil
	}
	w.done = true
	return router.Replace(w.next())
}

func (w *WelcomeScreen) View(width, height int) string {
	face := faces[int(w.elapsed/faceEvery)%len(faces)]
	parts := []string{mascot.Render(face)}
	if w.elapsed >= bannerAt {
		parts = append(parts, "", RenderBanner(width))
	}
	if w.elapsed >= taglineAt {
		parts = append(parts,
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(w.t.T("welcome.tagline")),
			"",
			theme.Hint.Render(w.t.T("welcome.continue")),
		)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, parts...))
}
