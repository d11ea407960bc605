package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/richinex/shopwise/agent"
	"github.com/richinex/shopwise/config"
	"github.com/richinex/shopwise/extract"
	"github.com/richinex/shopwise/llm"
	"github.com/richinex/shopwise/search"
	"github.com/richinex/shopwise/storage"
	"github.com/richinex/shopwise/tools"
)

// memoryCachePath selects the in-process search cache.
const memoryCachePath = "memory"

// Setup builds the LLM provider from settings and apiKey, then delegates to
// SetupWithProvider. A nil searchProvider uses DuckDuckGo.
func Setup(ctx context.Context, settings config.Settings, apiKey string, searchProvider search.Provider, logger *zap.Logger) (*Service, error) {
	provider, err := NewLLMProvider(settings.LLM, apiKey)
	if err != nil {
		return nil, newError(KindSetupFailure, "setup", err)
	}
	return SetupWithProvider(ctx, settings, provider, searchProvider, logger)
}

// NewLLMProvider builds a provider from LLM settings.
func NewLLMProvider(cfg config.LLMConfig, apiKey string) (llm.Provider, error) {
	providerType, err := llm.ParseProviderType(cfg.Provider)
	if err != nil {
		return nil, err
	}
	builder := llm.NewProviderBuilder(providerType).
		Model(cfg.Model).
		ContextWindow(cfg.ContextWindow).
		MaxTokens(cfg.MaxTokens).
		Temperature(float32(cfg.Temperature)).
		TopK(int32(cfg.TopK)).
		TopP(float32(cfg.TopP)).
		RawOutput(cfg.ReturnRaw).
		FormatResponse(cfg.FormatResponse)
	return builder.APIKey(apiKey)
}

// SetupWithProvider wires search, tools, the agent session and the extractor
// around an already constructed provider. Every failure is a SetupFailure.
func SetupWithProvider(ctx context.Context, settings config.Settings, provider llm.Provider, searchProvider search.Provider, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fail := func(err error) (*Service, error) {
		return nil, newError(KindSetupFailure, "setup", err)
	}

	selector, err := extract.SelectorByName(settings.Agent.BranchSelector)
	if err != nil {
		return fail(err)
	}

	if searchProvider == nil {
		searchProvider = search.NewDuckDuckGo()
	}
	var closers []func() error
	cache, err := openCache(ctx, settings.Search, logger)
	if err != nil {
		return fail(err)
	}
	if cache != nil {
		closers = append(closers, cache.Close)
		searchProvider = search.NewCachedProvider(searchProvider, cache, logger.Named("cache"))
	}
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	adapter := search.NewAdapter(searchProvider, logger.Named("search")).
		WithMaxResults(settings.Search.MaxResults)
	registry, err := tools.WithTools(tools.NewSearchTool(adapter))
	if err != nil {
		closeAll()
		return fail(err)
	}

	agentConfig, err := agent.NewBuilder().
		NumExpansions(settings.Agent.NumExpansions).
		MaxRollouts(settings.Agent.MaxRollouts).
		MaxDepth(settings.Agent.MaxDepth).
		TokenBudget(int(settings.LLM.ContextWindow), int(settings.LLM.MaxTokens)).
		Verbose(settings.Agent.Verbose).
		Build()
	if err != nil {
		closeAll()
		return fail(err)
	}

	session, err := agent.NewSession(ctx, provider, registry, agentConfig, logger.Named("agent"))
	if err != nil {
		closeAll()
		return fail(err)
	}

	session.WithToolConfig(tools.ToolConfig{TimeoutSecs: timeoutSecs(settings.Search.Timeout)})

	svc := NewService(session, extract.New(selector), logger)
	svc.closers = closers
	return svc, nil
}

// timeoutSecs rounds d up to whole seconds. Zero keeps the executor default.
func timeoutSecs(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64((d + time.Second - 1) / time.Second)
}

// openCache opens the configured cache and drops entries that expired
// while the process was down.
func openCache(ctx context.Context, cfg config.SearchConfig, logger *zap.Logger) (storage.SearchCache, error) {
	var cache storage.SearchCache
	switch path := strings.TrimSpace(cfg.CachePath); path {
	case "":
		return nil, nil
	case memoryCachePath:
		cache = storage.NewInMemoryCache(cfg.CacheTTL)
	default:
		sqlite, err := storage.OpenSqlite(path, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("search cache: %w", err)
		}
		cache = sqlite
	}

	removed, err := cache.Purge(ctx)
	if err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("search cache: %w", err)
	}
	if removed > 0 {
		logger.Info("purged expired search results", zap.Int("removed", removed))
	}
	return cache, nil
}
