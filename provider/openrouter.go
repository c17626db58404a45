package provider

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel   = "openai/gpt-4o"
)

// NewOpenRouterProvider returns an OpenAIProvider pointed at OpenRouter,
// which is OpenAI-compatible. Its key is stored under "openrouter".
func NewOpenRouterProvider(baseURL, model string) *OpenAIProvider {
	return newOpenAICompatible(string(ProviderTypeOpenRouter), baseURL, model, DefaultOpenRouterBaseURL, DefaultOpenRouterModel)
}
