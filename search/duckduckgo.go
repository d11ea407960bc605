package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/richinex/shopwise/model"
)

const duckDuckGoLiteURL = "https://lite.duckduckgo.com/lite/"

// ddgLimiter is shared by every DuckDuckGo instance: one query per second
// for the whole process.
var ddgLimiter = rate.NewLimiter(rate.Every(time.Second), 1)

// DuckDuckGo queries DuckDuckGo's HTML lite interface.
type DuckDuckGo struct {
	client   *http.Client
	endpoint string
	limiter  *rate.Limiter
}

// NewDuckDuckGo creates a DuckDuckGo provider with a modest timeout.
func NewDuckDuckGo() *DuckDuckGo {
	return NewDuckDuckGoWithClient(&http.Client{Timeout: 15 * time.Second})
}

// NewDuckDuckGoWithClient creates a DuckDuckGo provider using the supplied HTTP client.
func NewDuckDuckGoWithClient(client *http.Client) *DuckDuckGo {
	return &DuckDuckGo{
		client:   client,
		endpoint: duckDuckGoLiteURL,
		limiter:  ddgLimiter,
	}
}

// Text posts the query to the lite endpoint and parses up to maxResults hits.
func (d *DuckDuckGo) Text(ctx context.Context, query string, maxResults int) ([]model.Document, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}
	if maxResults <= 0 {
		maxResults = MaxResults
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return parseLiteResults(string(body), maxResults)
}

// parseLiteResults walks the lite page in document order. Each result-link
// anchor opens a result; the first result-snippet cell before the next
// anchor is its body. A result with no snippet keeps an empty body.
func parseLiteResults(page string, limit int) ([]model.Document, error) {
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var docs []model.Document
	var current *model.Document
	flush := func() {
		if current != nil && current.URL != "" && current.Title != "" {
			docs = append(docs, *current)
		}
		current = nil
	}

	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result-link"):
				flush()
				if len(docs) >= limit {
					return false
				}
				current = &model.Document{
					Title: nodeText(n),
					URL:   strings.TrimSpace(attr(n, "href")),
				}
				return true
			case n.Data == "td" && hasClass(n, "result-snippet"):
				if current != nil && current.Body == "" {
					current.Body = nodeText(n)
				}
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
	if len(docs) < limit {
		flush()
	}
	return docs, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// nodeText joins the text beneath n with whitespace runs collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// Verify DuckDuckGo implements Provider
var _ Provider = (*DuckDuckGo)(nil)
