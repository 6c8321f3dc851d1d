package learn

// loadedMsg is sent when the first story has been selected.
type loadedMsg struct {
	Err error
}

// submittedMsg is sent when an answer has been scored and stored.
type submittedMsg struct {
	Err error
}

// followupDoneMsg is sent when the follow-up answer has been stored.
type followupDoneMsg struct {
	Err error
}

// flaggedMsg is sent when the model's answer has been flagged for review.
type flaggedMsg struct {
	Err error
}

// nextMsg is sent when the next story has been selected.
type nextMsg struct {
	Err error
}

// dictationStartedMsg is sent once recording began, or failed to.
type dictationStartedMsg struct {
	Err error
}

// transcriptMsg carries the final dictation transcript.
type transcriptMsg struct {
	Text string
	Err  error
}
