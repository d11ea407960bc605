// Agent configuration types.
//
// Information Hiding:
// - Configuration validation logic hidden
// - Default values hidden

package agent

import (
	"errors"
	"fmt"
)

const (
	// DefaultNumExpansions is the number of candidates generated per node.
	DefaultNumExpansions = 2
	// DefaultMaxRollouts bounds select/expand/evaluate iterations per query.
	DefaultMaxRollouts = 2
	// DefaultMaxDepth bounds reasoning steps along one branch.
	DefaultMaxDepth = 3
	// DefaultExploration weights unvisited branches in UCT selection.
	DefaultExploration = 1.0
	// DefaultPromptBudget is the token budget for a single prompt.
	DefaultPromptBudget = 10000 - 2048

	maxScore = 10.0
)

// DefaultSystemPrompt frames the model as a shopping assistant.
const DefaultSystemPrompt = `You are a product recommendation assistant. ` +
	`Use web search to find current products, prices and reviews that match the user's request, ` +
	`then recommend specific products with a short justification for each. ` +
	`Stay within the stated budget and prefer products that have the requested features.`

// Config holds agent configuration.
type Config struct {
	// NumExpansions is the number of candidate next steps per expansion.
	NumExpansions int

	// MaxRollouts bounds the number of select/expand/evaluate iterations.
	MaxRollouts int

	// MaxDepth bounds the reasoning steps along one branch.
	MaxDepth int

	// Exploration is the UCT exploration constant.
	Exploration float64

	// PromptBudget is the token budget for one prompt (context window minus
	// the response reservation). Long observations are clipped to fit.
	PromptBudget int

	// SystemPrompt guides the agent's behavior.
	SystemPrompt string

	// Verbose logs every candidate and evaluation at debug level.
	Verbose bool
}

// DefaultConfig returns the configuration used for product recommendations.
func DefaultConfig() Config {
	return Config{
		NumExpansions: DefaultNumExpansions,
		MaxRollouts:   DefaultMaxRollouts,
		MaxDepth:      DefaultMaxDepth,
		Exploration:   DefaultExploration,
		PromptBudget:  DefaultPromptBudget,
		SystemPrompt:  DefaultSystemPrompt,
	}
}

// Validate checks the search bounds.
func (c Config) Validate() error {
	var errs []error
	if c.NumExpansions < 1 {
		errs = append(errs, fmt.Errorf("num expansions must be at least 1, got %d", c.NumExpansions))
	}
	if c.MaxRollouts < 1 {
		errs = append(errs, fmt.Errorf("max rollouts must be at least 1, got %d", c.MaxRollouts))
	}
	if c.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("max depth must be at least 1, got %d", c.MaxDepth))
	}
	if c.Exploration < 0 {
		errs = append(errs, fmt.Errorf("exploration must not be negative, got %v", c.Exploration))
	}
	return errors.Join(errs...)
}

// withDefaults fills zero-valued optional fields.
func (c Config) withDefaults() Config {
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.PromptBudget <= 0 {
		c.PromptBudget = DefaultPromptBudget
	}
	return c
}
