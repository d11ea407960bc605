// Package search wraps the external web search provider.
//
// Information Hiding:
// - Provider transport (HTML scraping, rate limiting) hidden behind Provider
// - Result flattening and failure absorption hidden in Adapter
// - Optional caching layered on as a Provider decorator

package search

import (
	"context"

	"github.com/richinex/shopwise/model"
)

// MaxResults is the number of documents requested per search.
const MaxResults = 4

// Provider executes a text query and returns result documents in rank order.
type Provider interface {
	Text(ctx context.Context, query string, maxResults int) ([]model.Document, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, query string, maxResults int) ([]model.Document, error)

// Text calls f.
func (f ProviderFunc) Text(ctx context.Context, query string, maxResults int) ([]model.Document, error) {
	return f(ctx, query, maxResults)
}
