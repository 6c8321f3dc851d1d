package signup

// signupResultMsg is sent when the signup request completes.
type signupResultMsg struct {
	Email string
	Err   error
}

// CreatedMsg is sent to the screen below after an account was created, so
// the login form can be prefilled.
type CreatedMsg struct {
	Email string
}
