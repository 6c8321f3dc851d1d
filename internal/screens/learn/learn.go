// Package learn is the learning screen: a story, the child's answer, the
// scored result with feedback and, for older children, the follow-up
// question. The flow itself lives in the learn controller; this screen
// runs its blocking steps as commands and renders its state.
package learn

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/feelio/internal/auth"
	"github.com/abhisek/feelio/internal/learn"
	"github.com/abhisek/feelio/internal/screen"
	"github.com/abhisek/feelio/internal/screens/nav"
	"github.com/abhisek/feelio/internal/ui/components"
	"github.com/abhisek/feelio/internal/ui/layout"
)

// LearnScreen hosts one learning visit.
type LearnScreen struct {
	deps    nav.Deps
	ctrl    *learn.Controller
	input   components.TextInput
	loading components.Loading

	showGuide bool
	recording bool
	notice    string
	errMsg    string
	md        *markdown
}

var _ screen.Screen = (*LearnScreen)(nil)

// New starts a visit for learner.
func New(deps nav.Deps, learner auth.Identity, opts ...learn.Option) *LearnScreen {
	opts = append([]learn.Option{
		learn.WithJournal(deps.Journal),
		learn.WithLogger(deps.Log),
	}, opts...)
	return &LearnScreen{
		deps:    deps,
		ctrl:    learn.New(deps.API, learner, deps.Feedback, opts...),
		input:   components.NewTextInput("", deps.T.T("learn.prompt"), 500),
		loading: components.NewLoading(deps.T.T("app.loading")),
		md:      newMarkdown(),
	}
}

func (s *LearnScreen) Init() tea.Cmd {
	return tea.Batch(s.loading.Tick(), s.run(func(ctx context.Context) tea.Msg {
		return loadedMsg{Err: s.ctrl.Load(ctx)}
	}))
}

// run executes a blocking controller step off the UI loop.
func (s *LearnScreen) run(step func(ctx context.Context) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return step(context.Background())
	}
}

func (s *LearnScreen) Title() string {
	return s.deps.T.T("learn.title")
}

func (s *LearnScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s, s.afterStep(msg.Err, false)

	case nextMsg:
		return s, s.afterStep(msg.Err, false)

	case submittedMsg:
		return s, s.afterStep(msg.Err, true)

	case followupDoneMsg:
		return s, s.afterStep(msg.Err, true)

	case flaggedMsg:
		if msg.Err == nil {
			s.notice = s.deps.T.T("learn.flagged")
		}
		return s, s.afterStep(msg.Err, false)

	case dictationStartedMsg:
		if msg.Err != nil {
			s.recording = false
			s.errMsg = nav.ErrorText(s.deps.T, msg.Err)
		}
		return s, nil

	case transcriptMsg:
		s.recording = false
		if msg.Err != nil {
			s.errMsg = nav.ErrorText(s.deps.T, msg.Err)
			return s, nil
		}
		if msg.Text != "" {
			s.input.SetValue(msg.Text)
			s.syncDraft()
		}
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.loading, cmd = s.loading.Update(msg)
	return s, cmd
}

// afterStep refreshes the screen after a controller step finished. Errors
// are already recorded by the controller and rendered from its view.
func (s *LearnScreen) afterStep(err error, scoreChanged bool) tea.Cmd {
	s.errMsg = ""
	if err != nil {
		s.deps.Log.Debug("learn step failed", "phase", s.ctrl.Phase().String(), "error", err)
		return nil
	}
	v := s.ctrl.View()
	switch v.Phase {
	case learn.PhasePresenting, learn.PhaseAwaitingFollowup:
		s.input.Reset()
		s.input.Model.Placeholder = s.deps.T.T("learn.prompt")
		if v.Phase == learn.PhaseAwaitingFollowup {
			s.input.Model.Placeholder = s.deps.T.T("learn.followup_placeholder")
		}
		s.notice = ""
	}
	if scoreChanged {
		return func() tea.Msg { return nav.RefreshScoreMsg{} }
	}
	return nil
}

func (s *LearnScreen) editing(p learn.Phase) bool {
	return p == learn.PhasePresenting || p == learn.PhaseAnswering || p == learn.PhaseAwaitingFollowup
}

func (s *LearnScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	v := s.ctrl.View()
	key := msg.String()

	// A badge toast swallows the first key.
	if v.Celebration != nil {
		s.ctrl.DismissCelebration()
		return s, nil
	}

	switch key {
	case "ctrl+g":
		s.showGuide = !s.showGuide
		return s, nil
	case "ctrl+r":
		if s.editing(v.Phase) {
			return s, s.toggleDictation()
		}
		return s, nil
	}

	// A follow-up or flag is still being saved.
	if v.Busy {
		return s, nil
	}

	switch v.Phase {
	case learn.PhaseLoading:
		if v.Err != nil && key == "r" {
			return s, s.run(func(ctx context.Context) tea.Msg {
				return loadedMsg{Err: s.ctrl.Load(ctx)}
			})
		}

	case learn.PhasePresenting, learn.PhaseAnswering:
		if key == "enter" {
			if s.recording {
				return s, nil
			}
			s.syncDraft()
			s.ctrl.ClearError()
			return s, tea.Batch(s.loading.Tick(), s.run(func(ctx context.Context) tea.Msg {
				_, err := s.ctrl.Submit(ctx)
				return submittedMsg{Err: err}
			}))
		}
		return s, s.edit(msg)

	case learn.PhaseAwaitingFollowup:
		if key == "enter" {
			if s.recording {
				return s, nil
			}
			s.syncDraft()
			s.ctrl.ClearError()
			return s, tea.Batch(s.loading.Tick(), s.run(func(ctx context.Context) tea.Msg {
				_, err := s.ctrl.SubmitFollowup(ctx)
				return followupDoneMsg{Err: err}
			}))
		}
		return s, s.edit(msg)

	case learn.PhaseReviewing:
		switch key {
		case "enter":
			if v.AwaitsFollowup {
				if err := s.ctrl.StartFollowup(); err != nil {
					s.errMsg = nav.ErrorText(s.deps.T, err)
					return s, nil
				}
				return s, s.afterStep(nil, false)
			}
			return s, s.next()
		case "n":
			if !v.AwaitsFollowup {
				return s, s.next()
			}
		}

	case learn.PhaseFollowupReviewed:
		switch key {
		case "f":
			if !v.Flagged {
				return s, s.run(func(ctx context.Context) tea.Msg {
					return flaggedMsg{Err: s.ctrl.Flag(ctx)}
				})
			}
		case "enter", "n":
			return s, s.next()
		}
	}
	return s, nil
}

func (s *LearnScreen) next() tea.Cmd {
	s.notice = ""
	return tea.Batch(s.loading.Tick(), s.run(func(ctx context.Context) tea.Msg {
		return nextMsg{Err: s.ctrl.Next(ctx)}
	}))
}

// edit forwards a key to the answer input and mirrors it into the draft.
func (s *LearnScreen) edit(msg tea.KeyPressMsg) tea.Cmd {
	if s.recording {
		return nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.syncDraft()
	return cmd
}

func (s *LearnScreen) syncDraft() {
	if err := s.ctrl.SetDraft(s.input.Model.Value()); err != nil {
		s.deps.Log.Debug("draft ignored", "error", err)
	}
}

func (s *LearnScreen) toggleDictation() tea.Cmd {
	rec := s.deps.Speech
	s.errMsg = ""
	if s.recording {
		return func() tea.Msg {
			text, err := rec.Stop(context.Background())
			return transcriptMsg{Text: text, Err: err}
		}
	}
	s.recording = true
	return func() tea.Msg {
		return dictationStartedMsg{Err: rec.Start(context.Background())}
	}
}

// Close stops a dictation still running when the screen is left. The
// transcript is dropped.
func (s *LearnScreen) Close() tea.Cmd {
	if !s.recording {
		return nil
	}
	s.recording = false
	rec, log := s.deps.Speech, s.deps.Log
	return func() tea.Msg {
		if _, err := rec.Stop(context.Background()); err != nil {
			log.Debug("stop dictation on close", "error", err)
		}
		return nil
	}
}

// errorText renders the controller's last failure.
func (s *LearnScreen) errorText(err error) string {
	if errors.Is(err, learn.ErrEmptyAnswer) {
		return s.deps.T.T("learn.empty")
	}
	return s.deps.T.T("learn.failed") + " " + nav.ErrorText(s.deps.T, err)
}

func (s *LearnScreen) KeyHints() []layout.KeyHint {
	t := s.deps.T
	v := s.ctrl.View()
	hints := []layout.KeyHint{{Key: "Esc", Description: t.T("hint.back")}}
	switch v.Phase {
	case learn.PhasePresenting, learn.PhaseAnswering, learn.PhaseAwaitingFollowup:
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: t.T("learn.submit")},
			layout.KeyHint{Key: "Ctrl+R", Description: t.T("hint.dictate")},
		)
	case learn.PhaseReviewing:
		if v.AwaitsFollowup {
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: t.T("learn.followup_start")})
		} else {
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: t.T("learn.next")})
		}
	case learn.PhaseFollowupReviewed:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: t.T("learn.next")})
		if !v.Flagged {
			hints = append(hints, layout.KeyHint{Key: "f", Description: t.T("learn.flag")})
		}
	case learn.PhaseLoading:
		if v.Err != nil {
			hints = append(hints, layout.KeyHint{Key: "r", Description: t.T("hint.retry")})
		}
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+G", Description: t.T("hint.toggle_guide")})
}
