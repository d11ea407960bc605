// Agent builder for fluent configuration.
//
// Information Hiding:
// - Builder state management hidden
// - Default value application hidden

package agent

// Builder provides fluent configuration for the tree search.
// Usage: agent.NewBuilder().NumExpansions(3).Build()
type Builder struct {
	config Config
}

// NewBuilder creates a builder seeded with DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// NumExpansions sets the candidates generated per node.
func (b *Builder) NumExpansions(n int) *Builder {
	b.config.NumExpansions = n
	return b
}

// MaxRollouts sets the rollout budget.
func (b *Builder) MaxRollouts(n int) *Builder {
	b.config.MaxRollouts = n
	return b
}

// MaxDepth sets the reasoning depth per branch.
func (b *Builder) MaxDepth(n int) *Builder {
	b.config.MaxDepth = n
	return b
}

// Exploration sets the UCT exploration constant.
func (b *Builder) Exploration(c float64) *Builder {
	b.config.Exploration = c
	return b
}

// TokenBudget derives the prompt budget from the model's context window and
// the tokens reserved for its response.
func (b *Builder) TokenBudget(contextWindow, maxTokens int) *Builder {
	if contextWindow > maxTokens {
		b.config.PromptBudget = contextWindow - maxTokens
	}
	return b
}

// SystemPrompt sets the agent's system prompt.
func (b *Builder) SystemPrompt(prompt string) *Builder {
	b.config.SystemPrompt = prompt
	return b
}

// Verbose enables debug logging of candidates and evaluations.
func (b *Builder) Verbose(enabled bool) *Builder {
	b.config.Verbose = enabled
	return b
}

// Build validates and returns the configuration.
func (b *Builder) Build() (Config, error) {
	cfg := b.config.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
