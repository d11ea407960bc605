package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/richinex/shopwise/model"
)

type fakeProvider struct {
	docs     []model.Document
	err      error
	calls    int
	lastMax  int
	panicMsg string
}

func (f *fakeProvider) Text(_ context.Context, _ string, maxResults int) ([]model.Document, error) {
	f.calls++
	f.lastMax = maxResults
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.docs, f.err
}

func bodies(n int) []model.Document {
	docs := make([]model.Document, n)
	for i := range docs {
		docs[i] = model.Document{Body: string(rune('a' + i))}
	}
	return docs
}

func TestAdapterConcatenatesBodies(t *testing.T) {
	provider := &fakeProvider{docs: []model.Document{
		{Body: "Lenovo is good."},
		{Body: "Dell lasts long."},
	}}
	got := NewAdapter(provider, nil).Search(context.Background(), "laptops")
	if got != "Lenovo is good.Dell lasts long." {
		t.Errorf("unexpected concatenation: %q", got)
	}
	if provider.lastMax != MaxResults {
		t.Errorf("expected provider asked for %d results, got %d", MaxResults, provider.lastMax)
	}
}

func TestAdapterTruncatesToFour(t *testing.T) {
	provider := &fakeProvider{docs: bodies(7)}
	got := NewAdapter(provider, nil).Search(context.Background(), "phones")
	if got != "abcd" {
		t.Errorf("expected first four bodies, got %q", got)
	}
}

func TestAdapterConvertsErrors(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection reset")}
	got := NewAdapter(provider, nil).Search(context.Background(), "cameras")
	if got != "Search failed: connection reset" {
		t.Errorf("unexpected failure string: %q", got)
	}
	if !IsFailure(got) {
		t.Error("expected IsFailure to recognize the string")
	}
}

func TestAdapterRecoversPanics(t *testing.T) {
	provider := &fakeProvider{panicMsg: "boom"}
	got := NewAdapter(provider, nil).Search(context.Background(), "cameras")
	if !strings.HasPrefix(got, FailurePrefix) || !strings.Contains(got, "boom") {
		t.Errorf("expected degraded observation, got %q", got)
	}
}

func TestAdapterEmptyQuery(t *testing.T) {
	provider := &fakeProvider{}
	got := NewAdapter(provider, nil).Search(context.Background(), "   ")
	if !IsFailure(got) {
		t.Errorf("expected failure string, got %q", got)
	}
	if provider.calls != 0 {
		t.Error("provider should not be called for an empty query")
	}
}

func TestAdapterNoRetry(t *testing.T) {
	provider := &fakeProvider{err: errors.New("timeout")}
	NewAdapter(provider, nil).Search(context.Background(), "laptops")
	if provider.calls != 1 {
		t.Errorf("expected exactly one provider call, got %d", provider.calls)
	}
}

func TestAdapterWithMaxResultsClamps(t *testing.T) {
	provider := &fakeProvider{docs: bodies(6)}
	a := NewAdapter(provider, nil).WithMaxResults(10)
	if got := a.Search(context.Background(), "x"); got != "abcd" {
		t.Errorf("expected clamp to 4, got %q", got)
	}
	a.WithMaxResults(2)
	if got := a.Search(context.Background(), "x"); got != "ab" {
		t.Errorf("expected 2 results, got %q", got)
	}
}
