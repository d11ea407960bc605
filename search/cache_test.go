package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/richinex/shopwise/model"
	"github.com/richinex/shopwise/storage"
)

func TestCachedProviderServesRepeats(t *testing.T) {
	inner := &fakeProvider{docs: []model.Document{{Body: "cached body"}}}
	p := NewCachedProvider(inner, storage.NewInMemoryCache(time.Hour), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		docs, err := p.Text(ctx, "Best Laptop", 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 1 || docs[0].Body != "cached body" {
			t.Fatalf("unexpected documents: %+v", docs)
		}
	}
	if inner.calls != 1 {
		t.Errorf("expected one upstream call, got %d", inner.calls)
	}
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	inner := &fakeProvider{err: errors.New("down")}
	p := NewCachedProvider(inner, storage.NewInMemoryCache(time.Hour), nil)
	ctx := context.Background()

	if _, err := p.Text(ctx, "q", 4); err == nil {
		t.Fatal("expected error")
	}
	inner.err = nil
	inner.docs = []model.Document{{Body: "recovered"}}
	docs, err := p.Text(ctx, "q", 4)
	if err != nil || len(docs) != 1 {
		t.Fatalf("expected fresh result after failure, got %v %v", docs, err)
	}
	if inner.calls != 2 {
		t.Errorf("expected two upstream calls, got %d", inner.calls)
	}
}
