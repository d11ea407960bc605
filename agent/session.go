// Agent session: one configured LLM, one tool registry, a growing task history.
//
// Information Hiding:
// - Credential handshake at construction
// - Serialization of concurrent Chat calls
// - Token accounting across tasks

package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/richinex/shopwise/llm"
	"github.com/richinex/shopwise/tools"
)

// ErrEmptyQuery is returned by Chat for a blank query.
var ErrEmptyQuery = errors.New("query is empty")

// SetupError reports that a session could not be constructed.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("agent setup failed: %v", e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Session runs tree searches against one provider and keeps every task.
// Sessions are only obtainable through NewSession.
type Session struct {
	mu       sync.Mutex
	client   *llm.Client
	registry *tools.Registry
	executor *tools.Executor
	config   Config
	logger   *zap.Logger
	tasks    []*Task
	usage    llm.TokenUsage
}

// NewSession validates config, confirms the provider accepts the credential,
// and returns a ready session. Any failure is a *SetupError and no session.
func NewSession(ctx context.Context, provider llm.Provider, registry *tools.Registry, config Config, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if provider == nil {
		return nil, &SetupError{Err: errors.New("no LLM provider configured")}
	}
	if registry == nil {
		registry = tools.NewRegistry()
	}

	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, &SetupError{Err: err}
	}

	client := llm.NewClient(provider)
	if err := client.Ping(ctx); err != nil {
		return nil, &SetupError{Err: err}
	}

	logger.Info("agent session ready",
		zap.String("provider", provider.Name()),
		zap.String("model", provider.Model()),
		zap.Strings("tools", registry.Names()),
		zap.Int("num_expansions", config.NumExpansions),
		zap.Int("max_rollouts", config.MaxRollouts))

	return &Session{
		client:   client,
		registry: registry,
		executor: tools.NewDefaultExecutor(),
		config:   config,
		logger:   logger,
	}, nil
}

// WithToolConfig overrides the tool execution configuration.
func (s *Session) WithToolConfig(config tools.ToolConfig) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executor = tools.NewExecutor(config)
	return s
}

// Chat runs one tree search for query. It returns the best answer found, or
// StillThinking when no branch finished. The task is recorded either way.
// An error means the search itself failed; the session stays usable.
func (s *Session) Chat(ctx context.Context, query string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	task := &Task{
		ID:        uuid.New(),
		Input:     query,
		Root:      newRoot(),
		CreatedAt: start,
	}
	s.tasks = append(s.tasks, task)
	defer func() {
		task.Duration = time.Since(start)
		s.usage.Add(&task.Usage)
	}()

	log := s.logger.With(zap.String("task_id", task.ID.String()))

	if strings.TrimSpace(query) == "" {
		task.Err = ErrEmptyQuery.Error()
		return "", ErrEmptyQuery
	}

	log.Info("tree search started", zap.String("query", query))

	if err := s.run(ctx, task); err != nil {
		task.Err = err.Error()
		log.Warn("tree search failed", zap.Error(err), zap.Int("rollouts", task.Rollouts))
		return "", fmt.Errorf("reasoning failed: %w", err)
	}

	if best := bestSolution(task.Root); best != nil {
		task.Response = best.Answer
	} else {
		task.Response = StillThinking
	}

	log.Info("tree search finished",
		zap.Bool("answered", task.Response != StillThinking),
		zap.Int("rollouts", task.Rollouts),
		zap.Int("llm_calls", task.LLMCalls),
		zap.Int("tool_failures", task.ToolFailures),
		zap.Uint32("total_tokens", task.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)))

	return task.Response, nil
}

// Tasks returns the recorded tasks, oldest first.
func (s *Session) Tasks() []*Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// LastTask returns the most recent task.
func (s *Session) LastTask() (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return nil, false
	}
	return s.tasks[len(s.tasks)-1], true
}

// Usage returns token usage accumulated over every task.
func (s *Session) Usage() llm.TokenUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// Config returns the session's search configuration.
func (s *Session) Config() Config {
	return s.config
}
