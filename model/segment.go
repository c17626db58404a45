package model

import (
	"slices"

	"chatbuf/buffer"
)

// SplitByRole rebuilds the conversation from the role spans in b, oldest
// turn first. Untagged text (markers, separators) and empty spans are not
// part of any turn.
func SplitByRole(b *buffer.Buffer) []Message {
	var messages []Message
	for span := range b.SpansBackward() {
		if span.Len() == 0 {
			continue
		}
		messages = append(messages, Message{
			Role:    span.Role,
			Content: b.Substring(span.Begin, span.End),
		})
	}
	slices.Reverse(messages)
	return messages
}
