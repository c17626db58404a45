package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"chatbuf/config"
	"chatbuf/model"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o"
)

// OpenAIProvider implements model.Provider against the chat completions
// endpoint using the official OpenAI Go SDK. It also serves any
// OpenAI-compatible endpoint under a different credential service name.
type OpenAIProvider struct {
	client  openai.Client
	name    string
	model   string
	baseURL string
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - model: Initial model to use (default: "gpt-4o")
func NewOpenAIProvider(baseURL, model string) *OpenAIProvider {
	return newOpenAICompatible(string(ProviderTypeOpenAI), baseURL, model, DefaultOpenAIBaseURL, DefaultOpenAIModel)
}

func newOpenAICompatible(name, baseURL, model, defaultBaseURL, defaultModel string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}

	// Retries are off: a failed send is reported once and the user decides.
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)

	return &OpenAIProvider{
		client:  client,
		name:    name,
		model:   model,
		baseURL: baseURL,
	}
}

// Complete implements model.Provider.Complete.
func (p *OpenAIProvider) Complete(ctx context.Context, req model.ChatRequest) (string, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = p.model
	}

	params := openai.ChatCompletionNewParams{
		Messages: ConvertToOpenAIMessages(req.Messages),
		Model:    openai.ChatModel(modelName),
	}

	var opts []option.RequestOption
	if req.APIKey != "" {
		opts = append(opts, option.WithAPIKey(req.APIKey))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		config.DebugLog.Debug().Str("provider", p.name).Str("id", resp.ID).Msg("completion without choices")
		return "", ErrNoChoices
	}

	return strings.ToValidUTF8(resp.Choices[0].Message.Content, "\uFFFD"), nil
}

// Name implements model.Provider.Name.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// RequiresAPIKey implements model.Provider.RequiresAPIKey.
func (p *OpenAIProvider) RequiresAPIKey() bool {
	return true
}

// GetModel implements model.Provider.GetModel.
func (p *OpenAIProvider) GetModel() string {
	return p.model
}

// SetModel implements model.Provider.SetModel.
func (p *OpenAIProvider) SetModel(model string) {
	p.model = model
}

// BaseURL returns the endpoint requests are sent to.
func (p *OpenAIProvider) BaseURL() string {
	return p.baseURL
}
