// DeepSeek Provider - OpenAI-compatible API with a different base URL.

package llm

import (
	openai "github.com/sashabaranov/go-openai"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// NewDeepSeekProvider creates a new DeepSeek provider.
func NewDeepSeekProvider(apiKey string, opts Options) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = deepseekBaseURL
	return newOpenAICompatible("deepseek", config, opts)
}
