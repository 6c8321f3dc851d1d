package login

import "github.com/abhisek/feelio/internal/auth"

// loginResultMsg is sent when the login request completes.
type loginResultMsg struct {
	Identity auth.Identity
	Err      error
}
