// LLM Provider Factory - builder-first API for creating LLM providers.
//
// Quick Start:
//
//	// Defaults (Meta-Llama-3.1-70B-Instruct)
//	llama, err := llm.ProviderSambaNova.APIKey(key)
//
//	// Full configuration
//	custom, err := llm.ProviderSambaNova.
//	    Model(llm.ModelSambaNovaLlama31_70B).
//	    MaxTokens(2048).
//	    Temperature(0.1).
//	    TopK(1).
//	    TopP(0.95).
//	    APIKey(key)

package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Generation defaults.
const (
	DefaultContextWindow uint32  = 10000
	DefaultMaxTokens     uint32  = 2048
	DefaultTemperature   float32 = 0.1
	DefaultTopK          int32   = 1
	DefaultTopP          float32 = 0.95
)

// ErrMissingAPIKey is returned when a provider is built without a credential.
var ErrMissingAPIKey = errors.New("missing API key")

// ProviderType represents supported LLM providers.
type ProviderType int

const (
	// ProviderSambaNova is SambaNova Cloud (Llama models).
	ProviderSambaNova ProviderType = iota
	// ProviderOpenAI is the OpenAI provider (GPT models).
	ProviderOpenAI
	// ProviderAnthropic is the Anthropic provider (Claude models).
	ProviderAnthropic
	// ProviderDeepSeek is the DeepSeek provider.
	ProviderDeepSeek
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini
)

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	switch p {
	case ProviderSambaNova:
		return "sambanova"
	case ProviderOpenAI:
		return "openai"
	case ProviderAnthropic:
		return "anthropic"
	case ProviderDeepSeek:
		return "deepseek"
	case ProviderGemini:
		return "gemini"
	default:
		return "unknown"
	}
}

// DefaultModel returns the default model for this provider.
func (p ProviderType) DefaultModel() string {
	switch p {
	case ProviderSambaNova:
		return ModelSambaNovaLlama31_70B
	case ProviderOpenAI:
		return ModelOpenAIGPT4o
	case ProviderAnthropic:
		return ModelAnthropicClaudeSonnet4
	case ProviderDeepSeek:
		return ModelDeepSeekV32
	case ProviderGemini:
		return ModelGeminiFlash2
	default:
		return ""
	}
}

// ParseProviderType parses a provider from string (case-insensitive).
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sambanova", "samba":
		return ProviderSambaNova, nil
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "deepseek":
		return ProviderDeepSeek, nil
	case "gemini", "google":
		return ProviderGemini, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", s)
	}
}

// Model starts configuring this provider with a specific model.
func (p ProviderType) Model(model string) *ProviderBuilder {
	return NewProviderBuilder(p).Model(model)
}

// APIKey creates a provider with an explicit API key (uses defaults for everything else).
func (p ProviderType) APIKey(key string) (Provider, error) {
	return NewProviderBuilder(p).APIKey(key)
}

// ProviderBuilder is a builder for configuring LLM providers.
type ProviderBuilder struct {
	providerType   ProviderType
	model          string
	contextWindow  uint32
	maxTokens      uint32
	temperature    *float32
	topK           *int32
	topP           *float32
	returnRaw      bool
	formatResponse bool
}

// NewProviderBuilder creates a new builder for the given provider.
// Raw output is on and response formatting off unless changed.
func NewProviderBuilder(providerType ProviderType) *ProviderBuilder {
	return &ProviderBuilder{
		providerType: providerType,
		returnRaw:    true,
	}
}

// Model sets the model to use.
func (b *ProviderBuilder) Model(model string) *ProviderBuilder {
	b.model = model
	return b
}

// ContextWindow sets the model's context size in tokens.
func (b *ProviderBuilder) ContextWindow(tokens uint32) *ProviderBuilder {
	b.contextWindow = tokens
	return b
}

// MaxTokens sets maximum tokens for responses.
func (b *ProviderBuilder) MaxTokens(tokens uint32) *ProviderBuilder {
	b.maxTokens = tokens
	return b
}

// Temperature sets temperature (0.0 = deterministic, 1.0 = creative).
func (b *ProviderBuilder) Temperature(temp float32) *ProviderBuilder {
	b.temperature = &temp
	return b
}

// TopK limits sampling to the k most likely tokens.
func (b *ProviderBuilder) TopK(k int32) *ProviderBuilder {
	b.topK = &k
	return b
}

// TopP sets nucleus sampling probability mass.
func (b *ProviderBuilder) TopP(p float32) *ProviderBuilder {
	b.topP = &p
	return b
}

// RawOutput toggles returning the unparsed completion.
func (b *ProviderBuilder) RawOutput(raw bool) *ProviderBuilder {
	b.returnRaw = raw
	return b
}

// FormatResponse toggles provider-side response formatting.
func (b *ProviderBuilder) FormatResponse(format bool) *ProviderBuilder {
	b.formatResponse = format
	return b
}

// APIKey builds the provider with an explicit API key.
func (b *ProviderBuilder) APIKey(key string) (Provider, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%s: %w", b.providerType, ErrMissingAPIKey)
	}
	return b.build(key)
}

// Options resolves the builder's settings, filling defaults.
func (b *ProviderBuilder) Options() Options {
	opts := Options{
		Model:          b.model,
		ContextWindow:  b.contextWindow,
		MaxTokens:      b.maxTokens,
		Temperature:    DefaultTemperature,
		TopK:           DefaultTopK,
		TopP:           DefaultTopP,
		ReturnRaw:      b.returnRaw,
		FormatResponse: b.formatResponse,
	}
	if opts.Model == "" {
		opts.Model = b.providerType.DefaultModel()
	}
	if opts.ContextWindow == 0 {
		opts.ContextWindow = DefaultContextWindow
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if b.temperature != nil {
		opts.Temperature = *b.temperature
	}
	if b.topK != nil {
		opts.TopK = *b.topK
	}
	if b.topP != nil {
		opts.TopP = *b.topP
	}
	return opts
}

func (b *ProviderBuilder) build(apiKey string) (Provider, error) {
	opts := b.Options()

	switch b.providerType {
	case ProviderSambaNova:
		return NewSambaNovaProvider(apiKey, opts), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, opts), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, opts), nil
	case ProviderDeepSeek:
		return NewDeepSeekProvider(apiKey, opts), nil
	case ProviderGemini:
		return NewGeminiProvider(apiKey, opts), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %v", b.providerType)
	}
}

// Model identifier constants for all supported providers.

// SambaNova Cloud model identifiers
const (
	// ModelSambaNovaLlama31_70B is Llama 3.1 70B Instruct.
	ModelSambaNovaLlama31_70B = "Meta-Llama-3.1-70B-Instruct"
	// ModelSambaNovaLlama31_8B is Llama 3.1 8B Instruct.
	ModelSambaNovaLlama31_8B = "Meta-Llama-3.1-8B-Instruct"
	// ModelSambaNovaLlama31_405B is Llama 3.1 405B Instruct.
	ModelSambaNovaLlama31_405B = "Meta-Llama-3.1-405B-Instruct"
)

// OpenAI model identifiers
const (
	ModelOpenAIGPT4o     = "gpt-4o"
	ModelOpenAIGPT4oMini = "gpt-4o-mini"
)

// Anthropic model identifiers
const (
	ModelAnthropicClaudeSonnet4 = "claude-sonnet-4-20250514"
	ModelAnthropicClaudeHaiku4  = "claude-haiku-4-20250514"
)

// DeepSeek model identifiers
const (
	ModelDeepSeekV32 = "deepseek-v3.2"
)

// Gemini model identifiers
const (
	ModelGeminiFlash2 = "gemini-2.0-flash"
)
