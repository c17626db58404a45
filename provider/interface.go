// Package provider implements model.Provider for the supported chat backends.
//
// Every backend takes the whole conversation as a list of role/content
// messages and answers with one complete assistant reply; nothing is
// streamed. The API key travels with each request (model.ChatRequest.APIKey)
// rather than being baked into the client, so a key provisioned after startup
// is picked up on the next send.
//
// # Architecture
//
//   - model.Provider defines the contract (interface)
//   - provider.OpenAIProvider talks to OpenAI and OpenAI-compatible endpoints
//     such as OpenRouter
//   - provider.OllamaProvider wraps the local ollama.Client
//   - provider.AnthropicProvider uses the Anthropic Messages API
//   - provider.NewProvider() creates providers from a Config
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:  provider.ProviderTypeOpenAI,
//	    Model: "gpt-4o",
//	})
//	if err != nil {
//	    // handle error
//	}
//	reply, err := p.Complete(ctx, model.ChatRequest{
//	    Model:    p.GetModel(),
//	    Messages: []model.Message{{Role: model.RoleUser, Content: "Hello"}},
//	    APIKey:   key,
//	})
package provider

import "errors"

// Note: The Provider interface is defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
}

// ErrNoChoices is returned when a completion response carries no choices.
var ErrNoChoices = errors.New("response contained no choices")
