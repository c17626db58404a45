package testutil

import (
	"encoding/json"

	"chatbuf/model"
)

// TestMessages returns a sample conversation for testing
func TestMessages() []model.Message {
	return []model.Message{
		{Role: model.RoleUser, Content: "Hello"},
		{Role: model.RoleAssistant, Content: "Hi there"},
		{Role: model.RoleUser, Content: "How are you?"},
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{
		{Role: model.RoleUser, Content: content},
	}
}

// CompletionJSON returns a minimal chat completions response body whose
// first choice carries content.
func CompletionJSON(content string) string {
	return `{
  "id": "chatcmpl-test",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o",
  "choices": [
    {
      "index": 0,
      "message": {"role": "assistant", "content": ` + quote(content) + `},
      "finish_reason": "stop"
    }
  ]
}`
}

// NoChoicesJSON is a well-formed completion with an empty choices array.
const NoChoicesJSON = `{"id":"chatcmpl-test","object":"chat.completion","created":1700000000,"model":"gpt-4o","choices":[]}`

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
