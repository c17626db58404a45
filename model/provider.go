package model

import "context"

// ChatRequest is a single non-streaming completion request.
type ChatRequest struct {
	Model    string
	Messages []Message
	APIKey   string
}

// Provider abstracts the chat-completion backends (OpenAI, Ollama, Anthropic).
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations import model, and model uses the
// Provider interface without importing the provider package.
type Provider interface {
	// Complete sends the whole conversation and returns the assistant reply.
	Complete(ctx context.Context, req ChatRequest) (string, error)

	// Name is the provider ID and the credential service name ("openai").
	Name() string

	// RequiresAPIKey reports whether Complete needs ChatRequest.APIKey.
	RequiresAPIKey() bool

	GetModel() string
	SetModel(model string)
}

// CredentialSource hands out API keys by service name. config.CredentialStore
// implements it.
type CredentialSource interface {
	Lookup(service string) (string, error)
}
