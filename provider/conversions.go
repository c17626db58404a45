package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"chatbuf/model"
)

// ConvertToOpenAIMessages converts conversation turns to OpenAI message params.
//
// Example:
//
//	msgs := ConvertToOpenAIMessages([]model.Message{
//	    {Role: model.RoleUser, Content: "Hello"},
//	    {Role: model.RoleAssistant, Content: "Hi there"},
//	})
func ConvertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case model.RoleAssistant:
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}
	return result
}

// ConvertToOllamaMessages converts conversation turns to Ollama api.Message.
// Both types carry the same role strings.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return result
}

// ConvertFromOllamaMessages converts Ollama api.Message to conversation turns.
// Messages with roles other than user and assistant are dropped.
func ConvertFromOllamaMessages(messages []api.Message) []model.Message {
	result := make([]model.Message, 0, len(messages))
	for _, msg := range messages {
		role := model.Role(msg.Role)
		if role != model.RoleUser && role != model.RoleAssistant {
			continue
		}
		result = append(result, model.Message{Role: role, Content: msg.Content})
	}
	return result
}

// ConvertToAnthropicMessages converts conversation turns to Anthropic message
// params. Anthropic rejects two consecutive messages with the same role, so
// such runs are joined into one message.
func ConvertToAnthropicMessages(messages []model.Message) []anthropic.MessageParam {
	var merged []model.Message
	for _, msg := range messages {
		if msg.Role != model.RoleAssistant {
			msg.Role = model.RoleUser
		}
		if n := len(merged); n > 0 && merged[n-1].Role == msg.Role {
			merged[n-1].Content += "\n\n" + msg.Content
			continue
		}
		merged = append(merged, msg)
	}

	result := make([]anthropic.MessageParam, 0, len(merged))
	for _, msg := range merged {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == model.RoleAssistant {
			result = append(result, anthropic.NewAssistantMessage(block))
		} else {
			result = append(result, anthropic.NewUserMessage(block))
		}
	}
	return result
}
