package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"chatbuf/model"
)

const (
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultAnthropicModel   = "claude-sonnet-4-5-20250929"

	// anthropicMaxTokens is required by the Messages API.
	anthropicMaxTokens = 4096
)

// AnthropicProvider implements model.Provider using Anthropic's official API.
type AnthropicProvider struct {
	client  anthropic.Client
	model   anthropic.Model
	baseURL string
}

// NewAnthropicProvider creates a new Anthropic provider instance.
//
// Parameters:
//   - baseURL: Anthropic API base URL (default: "https://api.anthropic.com")
//   - model: Initial model to use (default: "claude-sonnet-4-5-20250929")
func NewAnthropicProvider(baseURL, model string) *AnthropicProvider {
	if baseURL == "" {
		baseURL = DefaultAnthropicBaseURL
	}
	if model == "" {
		model = DefaultAnthropicModel
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)

	return &AnthropicProvider{
		client:  client,
		model:   anthropic.Model(model),
		baseURL: baseURL,
	}
}

// Complete implements model.Provider.Complete. Text blocks of the reply are
// concatenated.
func (p *AnthropicProvider) Complete(ctx context.Context, req model.ChatRequest) (string, error) {
	modelName := p.model
	if req.Model != "" {
		modelName = anthropic.Model(req.Model)
	}

	params := anthropic.MessageNewParams{
		Model:     modelName,
		Messages:  ConvertToAnthropicMessages(req.Messages),
		MaxTokens: anthropicMaxTokens,
	}

	var opts []option.RequestOption
	if req.APIKey != "" {
		opts = append(opts, option.WithAPIKey(req.APIKey))
	}

	msg, err := p.client.Messages.New(ctx, params, opts...)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var reply strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			reply.WriteString(text.Text)
		}
	}
	return strings.ToValidUTF8(reply.String(), "\uFFFD"), nil
}

// Name implements model.Provider.Name.
func (p *AnthropicProvider) Name() string {
	return string(ProviderTypeAnthropic)
}

// RequiresAPIKey implements model.Provider.RequiresAPIKey.
func (p *AnthropicProvider) RequiresAPIKey() bool {
	return true
}

// GetModel implements model.Provider.GetModel.
func (p *AnthropicProvider) GetModel() string {
	return string(p.model)
}

// SetModel implements model.Provider.SetModel.
func (p *AnthropicProvider) SetModel(model string) {
	p.model = anthropic.Model(model)
}
