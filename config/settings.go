// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultProvider is used when LLM_PROVIDER is unset.
const DefaultProvider = "sambanova"

// Settings holds all application configuration.
type Settings struct {
	LLM     LLMConfig
	Agent   AgentConfig
	Search  SearchConfig
	Logging LoggingConfig
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider       string
	Model          string
	ContextWindow  uint32
	MaxTokens      uint32
	Temperature    float64
	TopK           int
	TopP           float64
	ReturnRaw      bool
	FormatResponse bool
}

// AgentConfig holds tree search configuration.
type AgentConfig struct {
	NumExpansions int
	MaxRollouts   int
	MaxDepth      int

	// BranchSelector names the fallback extraction strategy.
	BranchSelector string
	// Verbose logs every candidate and evaluation at debug level.
	Verbose bool
}

// SearchConfig holds web search configuration.
// An empty CachePath disables the result cache; "memory" keeps it in process.
type SearchConfig struct {
	MaxResults int
	CachePath  string
	CacheTTL   time.Duration
	Timeout    time.Duration
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"sambanova": {"SAMBANOVA_MODEL", "Meta-Llama-3.1-70B-Instruct", "SAMBANOVA_API_KEY"},
	"openai":    {"OPENAI_MODEL", "gpt-4o", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
	"deepseek":  {"DEEPSEEK_MODEL", "deepseek-chat", "DEEPSEEK_API_KEY"},
	"gemini":    {"GEMINI_MODEL", "gemini-2.0-flash", "GEMINI_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"samba":  "sambanova",
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// ProviderFromEnv returns LLM_PROVIDER or the default provider.
func ProviderFromEnv() string {
	if p := os.Getenv("LLM_PROVIDER"); p != "" {
		return p
	}
	return DefaultProvider
}

// New creates settings for the specified provider, loading values from environment variables.
// Returns an error if the provider is unknown or environment variables contain invalid values.
func New(provider string) (Settings, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	llmCfg, err := loadLLM(provider, info)
	if err != nil {
		return Settings{}, err
	}
	agentCfg, err := loadAgent()
	if err != nil {
		return Settings{}, err
	}
	searchCfg, err := loadSearch()
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		LLM:    llmCfg,
		Agent:  agentCfg,
		Search: searchCfg,
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "console"),
			File:   os.Getenv("LOG_FILE"),
		},
	}, nil
}

func loadLLM(provider string, info providerInfo) (LLMConfig, error) {
	contextWindow, err := getEnvUint32("LLM_CONTEXT_WINDOW", 10000)
	if err != nil {
		return LLMConfig{}, err
	}
	maxTokens, err := getEnvUint32("LLM_MAX_TOKENS", 2048)
	if err != nil {
		return LLMConfig{}, err
	}
	temperature, err := getEnvFloat64("LLM_TEMPERATURE", 0.1)
	if err != nil {
		return LLMConfig{}, err
	}
	topK, err := getEnvInt("LLM_TOP_K", 1)
	if err != nil {
		return LLMConfig{}, err
	}
	topP, err := getEnvFloat64("LLM_TOP_P", 0.95)
	if err != nil {
		return LLMConfig{}, err
	}
	returnRaw, err := getEnvBool("LLM_RETURN_RAW", true)
	if err != nil {
		return LLMConfig{}, err
	}
	formatResponse, err := getEnvBool("LLM_FORMAT_RESPONSE", false)
	if err != nil {
		return LLMConfig{}, err
	}

	if maxTokens >= contextWindow {
		return LLMConfig{}, fmt.Errorf("LLM_MAX_TOKENS (%d) must be smaller than LLM_CONTEXT_WINDOW (%d)", maxTokens, contextWindow)
	}
	if topP < 0 || topP > 1 {
		return LLMConfig{}, fmt.Errorf("invalid value for LLM_TOP_P: %v: must be within [0, 1]", topP)
	}

	return LLMConfig{
		Provider:       provider,
		Model:          getEnvString(info.modelEnv, info.defaultModel),
		ContextWindow:  contextWindow,
		MaxTokens:      maxTokens,
		Temperature:    temperature,
		TopK:           topK,
		TopP:           topP,
		ReturnRaw:      returnRaw,
		FormatResponse: formatResponse,
	}, nil
}

func loadAgent() (AgentConfig, error) {
	numExpansions, err := getEnvPositiveInt("AGENT_NUM_EXPANSIONS", 2)
	if err != nil {
		return AgentConfig{}, err
	}
	maxRollouts, err := getEnvPositiveInt("AGENT_MAX_ROLLOUTS", 2)
	if err != nil {
		return AgentConfig{}, err
	}
	maxDepth, err := getEnvPositiveInt("AGENT_MAX_DEPTH", 3)
	if err != nil {
		return AgentConfig{}, err
	}
	verbose, err := getEnvBool("AGENT_VERBOSE", false)
	if err != nil {
		return AgentConfig{}, err
	}
	return AgentConfig{
		NumExpansions:  numExpansions,
		MaxRollouts:    maxRollouts,
		MaxDepth:       maxDepth,
		BranchSelector: getEnvString("AGENT_BRANCH_SELECTOR", "first-child"),
		Verbose:        verbose,
	}, nil
}

func loadSearch() (SearchConfig, error) {
	maxResults, err := getEnvPositiveInt("SEARCH_MAX_RESULTS", 4)
	if err != nil {
		return SearchConfig{}, err
	}
	ttl, err := getEnvDuration("SEARCH_CACHE_TTL", 6*time.Hour)
	if err != nil {
		return SearchConfig{}, err
	}
	timeout, err := getEnvDuration("SEARCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return SearchConfig{}, err
	}
	if timeout < time.Second {
		return SearchConfig{}, fmt.Errorf("SEARCH_TIMEOUT must be at least 1s, got %v", timeout)
	}
	return SearchConfig{
		MaxResults: maxResults,
		CachePath:  os.Getenv("SEARCH_CACHE_PATH"),
		CacheTTL:   ttl,
		Timeout:    timeout,
	}, nil
}

// MustNew creates settings for the specified provider.
// Panics if the provider is unknown or environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew(provider string) Settings {
	settings, err := New(provider)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// ModelFor returns the model for a provider, checking environment first.
func ModelFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	return getEnvString(info.modelEnv, info.defaultModel), nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvPositiveInt(key string, defaultVal int) (int, error) {
	i, err := getEnvInt(key, defaultVal)
	if err != nil {
		return 0, err
	}
	if i < 1 {
		return 0, fmt.Errorf("invalid value for %s: %d: must be at least 1", key, i)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return d, nil
}
