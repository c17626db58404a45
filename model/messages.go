package model

// ResponseMsg carries a completed reply back to the event loop.
type ResponseMsg struct {
	SessionID string
	RequestID string
	Content   string
}

// ResponseErrorMsg reports a failed request. The surface is left as it was.
type ResponseErrorMsg struct {
	SessionID string
	RequestID string
	Err       error
}
