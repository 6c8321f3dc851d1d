// Package nav carries the services every screen shares and the messages
// screens send to the root model when the signed-in identity changes.
package nav

import (
	"errors"

	"github.com/abhisek/feelio/internal/api"
	"github.com/abhisek/feelio/internal/auth"
	"github.com/abhisek/feelio/internal/feedback"
	"github.com/abhisek/feelio/internal/i18n"
	"github.com/abhisek/feelio/internal/logger"
	"github.com/abhisek/feelio/internal/speech"
	"github.com/abhisek/feelio/internal/store"
)

// Deps are the services handed to every screen.
type Deps struct {
	Auth     *auth.Store
	API      *api.Client
	Feedback feedback.Source
	Speech   speech.Recognizer
	Journal  store.ActivityRepo
	T        *i18n.Translator
	Log      *logger.Logger
}

// IdentityChangedMsg tells the root model the active identity changed:
// after login, logout, impersonation or return to the caregiver. The root
// model rebuilds the screen stack for the new identity.
type IdentityChangedMsg struct{}

// RefreshScoreMsg asks the root model to reload the header score.
type RefreshScoreMsg struct{}

// ScoreMsg carries a freshly loaded score for the header.
type ScoreMsg struct {
	UserID int
	Score  int
	Err    error
}

// ErrorText turns a failure into something a child or caregiver can read.
func ErrorText(t *i18n.Translator, err error) string {
	switch {
	case err == nil:
		return ""
	case api.IsTransport(err):
		return t.T("app.offline")
	case errors.Is(err, speech.ErrUnavailable):
		return t.T("learn.speech_unavailable")
	}
	if msg := api.Message(err); msg != "" {
		return msg
	}
	var fe *auth.FormError
	if errors.As(err, &fe) {
		return t.T("signup.invalid", fe.Field, fe.Reason)
	}
	return t.T("app.error", err.Error())
}
