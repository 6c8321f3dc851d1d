package home

import "github.com/abhisek/feelio/internal/api"

// summaryLoadedMsg carries the learner's score line.
type summaryLoadedMsg struct {
	Summary *api.Summary
	Err     error
}

// sessionChangedMsg is sent after logout or return to the caregiver.
type sessionChangedMsg struct {
	Err error
}
