package model

import "errors"

var (
	// ErrNoConversation is returned when continuing a session that was never
	// started, or whose surface is not in conversation mode.
	ErrNoConversation = errors.New("no conversation in progress")

	// ErrEmptyConversation is returned when there are no turns to send.
	ErrEmptyConversation = errors.New("conversation has no messages")

	// ErrRequestInFlight is returned when a session already awaits a reply.
	ErrRequestInFlight = errors.New("a request is already in flight")

	// ErrStaleResponse is returned for replies to a replaced session or to a
	// request that is no longer pending.
	ErrStaleResponse = errors.New("stale response")
)
