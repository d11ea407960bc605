// Web Search Tool.
//
// Information Hiding:
// - Search provider and result flattening hidden behind search.Adapter
// - Argument decoding tolerant of bare-string input from weaker models

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/richinex/shopwise/search"
)

// SearchToolName is the name the agent uses to call web search.
const SearchToolName = "search"

// SearchTool exposes search.Adapter to the agent. It always succeeds:
// a failed search comes back as a "Search failed: ..." observation.
type SearchTool struct {
	adapter *search.Adapter
}

// NewSearchTool creates a search tool backed by adapter.
func NewSearchTool(adapter *search.Adapter) *SearchTool {
	return &SearchTool{adapter: adapter}
}

// Metadata returns the tool metadata.
func (t *SearchTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        SearchToolName,
		Description: "Search for product information and reviews",
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "The web search query", Required: true},
		},
	}
}

type searchArgs struct {
	Query string `json:"query"`
}

// parseSearchArgs accepts {"query": "..."} or a bare JSON string.
func parseSearchArgs(args json.RawMessage) (string, error) {
	var a searchArgs
	if err := json.Unmarshal(args, &a); err == nil {
		return a.Query, nil
	}
	var s string
	if err := json.Unmarshal(args, &s); err == nil {
		return s, nil
	}
	return "", fmt.Errorf("invalid arguments: expected {\"query\": string}")
}

// Validate validates the arguments.
func (t *SearchTool) Validate(args json.RawMessage) error {
	q, err := parseSearchArgs(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(q) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}

// Execute runs the search.
func (t *SearchTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	q, err := parseSearchArgs(args)
	if err != nil {
		return SuccessResult(search.FailurePrefix + err.Error()), nil
	}
	return SuccessResult(t.adapter.Search(ctx, q)), nil
}

// Verify SearchTool implements Tool
var _ Tool = (*SearchTool)(nil)
