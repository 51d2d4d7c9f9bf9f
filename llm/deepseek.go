// DeepSeek Provider implementation using go-openai library.
//
// Information Hiding:
// - Uses OpenAI-compatible API with different base URL
// - Supports deepseek-chat and deepseek-reasoner models

package llm

const deepseekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekProvider implements the Provider interface for DeepSeek.
// The wire protocol is OpenAI's, so the OpenAI provider does the work.
type DeepSeekProvider struct {
	*OpenAIProvider
}

// NewDeepSeekProvider creates a new DeepSeek provider.
func NewDeepSeekProvider(apiKey, model string, maxTokens uint32, temperature float32) *DeepSeekProvider {
	return NewDeepSeekProviderWithBaseURL(apiKey, "", model, maxTokens, temperature)
}

// NewDeepSeekProviderWithBaseURL creates a DeepSeek provider talking to a
// custom endpoint. An empty baseURL uses api.deepseek.com.
func NewDeepSeekProviderWithBaseURL(apiKey, baseURL, model string, maxTokens uint32, temperature float32) *DeepSeekProvider {
	if baseURL == "" {
		baseURL = deepseekBaseURL
	}
	inner := NewOpenAIProviderWithBaseURL(apiKey, baseURL, model, maxTokens, temperature)
	inner.name = "deepseek"
	return &DeepSeekProvider{OpenAIProvider: inner}
}

// Verify DeepSeekProvider implements Provider
var _ Provider = (*DeepSeekProvider)(nil)
