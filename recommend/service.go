// Recommendation pipeline: validate, build the query, run the agent, recover.
//
// Information Hiding:
// - Query phrasing hidden behind query.Build
// - Fallback extraction when the agent has not finished
// - Failure classification into Kind

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/richinex/shopwise/extract"
	"github.com/richinex/shopwise/query"
	"github.com/richinex/shopwise/search"
)

// Session is the agent surface the pipeline needs.
type Session interface {
	Chat(ctx context.Context, query string) (string, error)
	extract.TaskLister
}

// Result is one recommendation.
type Result struct {
	Query        string `json:"query"`
	Text         string `json:"recommendation"`
	Incomplete   bool   `json:"incomplete"`
	TaskID       string `json:"task_id,omitempty"`
	ToolFailures int    `json:"tool_failures"`
}

// Service answers recommendation requests one at a time.
type Service struct {
	mu        sync.Mutex
	session   Session
	extractor *extract.Extractor
	logger    *zap.Logger
	closers   []func() error
}

// NewService wires a session and an extractor. A nil extractor uses the
// default selector.
func NewService(session Session, extractor *extract.Extractor, logger *zap.Logger) *Service {
	if extractor == nil {
		extractor = extract.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{session: session, extractor: extractor, logger: logger}
}

// Recommend runs the full pipeline for req.
func (s *Service) Recommend(ctx context.Context, req Request) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return Result{}, newError(KindQueryFailure, "validate", err)
	}

	q, err := query.Build(req.Category, req.Budget, req.Features, req.FreeText)
	if err != nil {
		return Result{}, newError(KindQueryFailure, "build query", fmt.Errorf("%w: %w", ErrInvalidRequest, err))
	}
	result := Result{Query: q.String()}

	log := s.logger.With(zap.String("category", req.Category), zap.Float64("budget", req.Budget))
	log.Info("recommendation requested", zap.String("query", result.Query))

	response, err := s.session.Chat(ctx, result.Query)
	s.describeTask(&result)
	if err != nil {
		log.Warn("agent failed", zap.Error(err))
		return result, newError(KindQueryFailure, "chat", err)
	}

	if !extract.IsIncomplete(response) {
		result.Text = response
		return result, nil
	}

	result.Incomplete = true
	text, err := s.extractor.Extract(response, s.session)
	if err != nil {
		log.Warn("fallback extraction failed",
			zap.String("selector", s.extractor.Selector().Name()), zap.Error(err))
		return result, newError(KindExtractionFailure, "extract", err)
	}
	if search.IsFailure(text) {
		log.Warn("fallback observation is a failed search", zap.String("observation", text))
		return result, newError(KindToolFailure, "search", errors.New(text))
	}

	log.Info("recovered partial recommendation",
		zap.String("selector", s.extractor.Selector().Name()),
		zap.Int("tool_failures", result.ToolFailures))
	result.Text = text
	return result, nil
}

func (s *Service) describeTask(result *Result) {
	task, ok := s.session.LastTask()
	if !ok || task == nil {
		return
	}
	result.TaskID = task.ID.String()
	result.ToolFailures = task.ToolFailures
}

// Close releases resources acquired by Setup.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closers[i]())
	}
	s.closers = nil
	return err
}
