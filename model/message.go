package model

import "chatbuf/buffer"

// Role is the author of a turn.
type Role = buffer.Role

const (
	RoleUser      = buffer.RoleUser
	RoleAssistant = buffer.RoleAssistant
)

// Message is one turn replayed to the chat endpoint. Messages are rebuilt
// from the buffer on every send and never stored.
type Message struct {
	Role    Role
	Content string
}
