package provider

import (
	"context"
	"fmt"
	"strings"

	"chatbuf/model"
	"chatbuf/ollama"
)

// OllamaProvider wraps ollama.Client to implement model.Provider. Ollama runs
// locally and needs no API key.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL. Defaults to "http://localhost:11434".
//   - model: The model name to use. Defaults to "llama3.1:latest".
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Complete implements model.Provider.Complete.
func (p *OllamaProvider) Complete(ctx context.Context, req model.ChatRequest) (string, error) {
	reply, err := p.client.Chat(ctx, req.Model, ConvertToOllamaMessages(req.Messages))
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	return strings.ToValidUTF8(reply, "\uFFFD"), nil
}

// Name implements model.Provider.Name.
func (p *OllamaProvider) Name() string {
	return string(ProviderTypeOllama)
}

// RequiresAPIKey implements model.Provider.RequiresAPIKey.
func (p *OllamaProvider) RequiresAPIKey() bool {
	return false
}

// GetModel implements model.Provider.GetModel.
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// SetModel implements model.Provider.SetModel.
func (p *OllamaProvider) SetModel(model string) {
	p.client.SetModel(model)
}
