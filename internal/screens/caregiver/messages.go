package caregiver

import "github.com/abhisek/feelio/internal/api"

// childrenLoadedMsg carries the caregiver's child accounts.
type childrenLoadedMsg struct {
	Children []api.Child
	Err      error
}

// childAddedMsg is sent when a child account was created.
type childAddedMsg struct {
	Name string
	Err  error
}

// sessionChangedMsg is sent after impersonating a child or logging out.
type sessionChangedMsg struct {
	Err error
}
