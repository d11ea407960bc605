package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// FailurePrefix starts every degraded observation returned by Adapter.Search.
const FailurePrefix = "Search failed: "

// Adapter turns a Provider into the string-in, string-out search the agent
// calls as a tool. It never returns an error: failures become an inline
// "Search failed: ..." string so the reasoning loop keeps going.
type Adapter struct {
	provider   Provider
	maxResults int
	logger     *zap.Logger
}

// NewAdapter creates an adapter requesting MaxResults documents per call.
func NewAdapter(provider Provider, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		provider:   provider,
		maxResults: MaxResults,
		logger:     logger,
	}
}

// WithMaxResults overrides the per-call result limit. Values outside
// 1..MaxResults are clamped.
func (a *Adapter) WithMaxResults(n int) *Adapter {
	switch {
	case n <= 0:
		n = 1
	case n > MaxResults:
		n = MaxResults
	}
	a.maxResults = n
	return a
}

// Search runs query and concatenates the result bodies with no separator.
func (a *Adapter) Search(ctx context.Context, query string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("search provider panicked", zap.String("query", query), zap.Any("panic", r))
			result = fmt.Sprintf("%s%v", FailurePrefix, r)
		}
	}()

	if strings.TrimSpace(query) == "" {
		return FailurePrefix + "query is empty"
	}
	if a.provider == nil {
		return FailurePrefix + "no search provider configured"
	}

	docs, err := a.provider.Text(ctx, query, a.maxResults)
	if err != nil {
		a.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		return FailurePrefix + err.Error()
	}

	if len(docs) > a.maxResults {
		docs = docs[:a.maxResults]
	}

	var b strings.Builder
	for _, doc := range docs {
		b.WriteString(doc.Body)
	}
	a.logger.Debug("search completed",
		zap.String("query", query),
		zap.Int("documents", len(docs)),
		zap.Int("bytes", b.Len()))
	return b.String()
}

// IsFailure reports whether an observation is a degraded search result.
func IsFailure(observation string) bool {
	return strings.HasPrefix(observation, FailurePrefix)
}
