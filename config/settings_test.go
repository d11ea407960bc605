package config

import (
	"os"
	"testing"
	"time"
)

func TestNewValidProvider(t *testing.T) {
	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", settings.LLM.Provider)
	}
}

func TestNewDefaults(t *testing.T) {
	for _, key := range []string{
		"SAMBANOVA_MODEL", "LLM_CONTEXT_WINDOW", "LLM_MAX_TOKENS", "LLM_TEMPERATURE",
		"LLM_TOP_K", "LLM_TOP_P", "LLM_RETURN_RAW", "LLM_FORMAT_RESPONSE",
		"AGENT_NUM_EXPANSIONS", "AGENT_MAX_ROLLOUTS", "AGENT_MAX_DEPTH", "AGENT_BRANCH_SELECTOR",
		"SEARCH_MAX_RESULTS", "SEARCH_CACHE_PATH", "SEARCH_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}

	settings, err := New(DefaultProvider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	llm := settings.LLM
	if llm.Model != "Meta-Llama-3.1-70B-Instruct" {
		t.Errorf("unexpected model %q", llm.Model)
	}
	if llm.ContextWindow != 10000 || llm.MaxTokens != 2048 {
		t.Errorf("unexpected token limits: %+v", llm)
	}
	if llm.Temperature != 0.1 || llm.TopK != 1 || llm.TopP != 0.95 {
		t.Errorf("unexpected sampling settings: %+v", llm)
	}
	if !llm.ReturnRaw || llm.FormatResponse {
		t.Errorf("unexpected output flags: %+v", llm)
	}

	if settings.Agent != (AgentConfig{NumExpansions: 2, MaxRollouts: 2, MaxDepth: 3, BranchSelector: "first-child"}) {
		t.Errorf("unexpected agent config: %+v", settings.Agent)
	}
	if settings.Search.MaxResults != 4 || settings.Search.CachePath != "" || settings.Search.CacheTTL != 6*time.Hour {
		t.Errorf("unexpected search config: %+v", settings.Search)
	}
}

func TestNewWithAlias(t *testing.T) {
	settings, err := New("claude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic' (normalized from 'claude'), got %q", settings.LLM.Provider)
	}

	settings, err = New("Samba")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "sambanova" {
		t.Errorf("expected provider 'sambanova', got %q", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("unknown_provider")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestProviderFromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	if got := ProviderFromEnv(); got != DefaultProvider {
		t.Errorf("expected default provider, got %q", got)
	}
	t.Setenv("LLM_PROVIDER", "gemini")
	if got := ProviderFromEnv(); got != "gemini" {
		t.Errorf("expected gemini, got %q", got)
	}
}

func TestAPIKeyForValidProvider(t *testing.T) {
	t.Setenv("SAMBANOVA_API_KEY", "test-key")

	key, err := APIKeyFor("sambanova")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "test-key" {
		t.Errorf("expected 'test-key', got %q", key)
	}
}

func TestAPIKeyForMissing(t *testing.T) {
	original, had := os.LookupEnv("OPENAI_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")
	if had {
		defer os.Setenv("OPENAI_API_KEY", original)
	}

	_, err := APIKeyFor("openai")
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestAPIKeyForUnknownProvider(t *testing.T) {
	_, err := APIKeyFor("unknown")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestModelFor(t *testing.T) {
	t.Setenv("SAMBANOVA_MODEL", "Meta-Llama-3.1-8B-Instruct")
	model, err := ModelFor("sambanova")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model != "Meta-Llama-3.1-8B-Instruct" {
		t.Errorf("expected env override, got %q", model)
	}
}

func TestNewWithInvalidEnvVar(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"LLM_MAX_TOKENS", "not-a-number"},
		{"LLM_TOP_P", "1.5"},
		{"LLM_RETURN_RAW", "maybe"},
		{"AGENT_NUM_EXPANSIONS", "0"},
		{"AGENT_MAX_ROLLOUTS", "-1"},
		{"AGENT_VERBOSE", "loud"},
		{"SEARCH_CACHE_TTL", "forever"},
		{"SEARCH_TIMEOUT", "10ms"},
		{"LLM_CONTEXT_WINDOW", "1024"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := New("sambanova"); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestAgentVerboseFromEnv(t *testing.T) {
	t.Setenv("AGENT_VERBOSE", "true")

	settings, err := New("sambanova")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !settings.Agent.Verbose {
		t.Error("expected AGENT_VERBOSE to enable agent tracing")
	}
}

func TestSearchCacheSettings(t *testing.T) {
	t.Setenv("SEARCH_CACHE_PATH", "/tmp/shopwise/cache.db")
	t.Setenv("SEARCH_CACHE_TTL", "30m")

	settings, err := New("sambanova")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Search.CachePath != "/tmp/shopwise/cache.db" {
		t.Errorf("unexpected cache path %q", settings.Search.CachePath)
	}
	if settings.Search.CacheTTL != 30*time.Minute {
		t.Errorf("unexpected cache ttl %v", settings.Search.CacheTTL)
	}
	if settings.Search.Timeout != 30*time.Second {
		t.Errorf("unexpected search timeout %v", settings.Search.Timeout)
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown provider")
		}
	}()
	MustNew("unknown_provider")
}

func TestSupportedProviders(t *testing.T) {
	providers := SupportedProviders()
	if len(providers) != 5 {
		t.Errorf("expected 5 supported providers, got %d", len(providers))
	}
}
