package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

const litePage = `<html><body><table>
<tr><td><a rel="nofollow" href="https://example.com/one" class='result-link'>Best Laptops 2024</a></td></tr>
<tr><td class='result-snippet'>The <b>MacBook Air</b> has &amp; long battery life.</td></tr>
<tr><td><a rel="nofollow" href="https://example.com/two" class='result-link'>Budget Picks</a></td></tr>
<tr><td class='result-snippet'>Acer Swift Go under $1000.</td></tr>
<tr><td><a rel="nofollow" href="https://example.com/three" class='result-link'>Third</a></td></tr>
<tr><td class='result-snippet'>Third snippet.</td></tr>
</table></body></html>`

func TestParseLiteResults(t *testing.T) {
	docs, err := parseLiteResults(litePage, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if docs[0].URL != "https://example.com/one" || docs[0].Title != "Best Laptops 2024" {
		t.Errorf("unexpected first document: %+v", docs[0])
	}
	if docs[0].Body != "The MacBook Air has & long battery life." {
		t.Errorf("unexpected snippet: %q", docs[0].Body)
	}
	if docs[1].Body != "Acer Swift Go under $1000." {
		t.Errorf("unexpected snippet: %q", docs[1].Body)
	}
}

func TestParseLiteResultsLimit(t *testing.T) {
	docs, err := parseLiteResults(litePage, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("expected limit of 2, got %d", len(docs))
	}
}

const irregularPage = `<html><body><table>
<tr><td>1.</td><td><a rel="nofollow" href="https://example.com/one" class="result-link"><b>Dell XPS</b> laptop review</a></td></tr>
<tr><td></td><td class="result-snippet">Twelve hours of battery.</td></tr>
<tr><td>2.</td><td><a rel="nofollow" href="https://example.com/two" class="result-link">No snippet here</a></td></tr>
<tr><td>3.</td><td><a rel="nofollow" href="https://example.com/three" class="result-link">Lenovo Yoga</a></td></tr>
<tr><td></td><td class="result-snippet">Great <em>OLED</em> screen.</td></tr>
</table></body></html>`

func TestParseLiteResultsKeepsSnippetsWithTheirResult(t *testing.T) {
	docs, err := parseLiteResults(irregularPage, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d: %+v", len(docs), docs)
	}

	want := []struct{ title, url, body string }{
		{"Dell XPS laptop review", "https://example.com/one", "Twelve hours of battery."},
		{"No snippet here", "https://example.com/two", ""},
		{"Lenovo Yoga", "https://example.com/three", "Great OLED screen."},
	}
	for i, w := range want {
		if docs[i].Title != w.title || docs[i].URL != w.url || docs[i].Body != w.body {
			t.Errorf("document %d = %+v, want %+v", i, docs[i], w)
		}
	}
}

func TestDuckDuckGoText(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		gotQuery = r.PostForm.Get("q")
		_, _ = w.Write([]byte(litePage))
	}))
	defer server.Close()

	d := NewDuckDuckGoWithClient(server.Client())
	d.endpoint = server.URL
	d.limiter = rate.NewLimiter(rate.Inf, 1)

	docs, err := d.Text(context.Background(), "best laptop", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "best laptop" {
		t.Errorf("expected query to be posted, got %q", gotQuery)
	}
	if len(docs) != 3 {
		t.Errorf("expected 3 documents, got %d", len(docs))
	}
}

func TestDuckDuckGoHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	d := NewDuckDuckGoWithClient(server.Client())
	d.endpoint = server.URL
	d.limiter = rate.NewLimiter(rate.Inf, 1)

	if _, err := d.Text(context.Background(), "anything", 4); err == nil {
		t.Fatal("expected error for HTTP 429")
	}

	// Through the adapter the error becomes an observation string.
	got := NewAdapter(d, nil).Search(context.Background(), "anything")
	if got != "Search failed: duckduckgo http 429" {
		t.Errorf("unexpected observation: %q", got)
	}
}

func TestDuckDuckGoEmptyQuery(t *testing.T) {
	if _, err := NewDuckDuckGo().Text(context.Background(), "", 4); err == nil {
		t.Error("expected error for empty query")
	}
}
