// Tool Executor with optional retry.
//
// Information Hiding:
// - Argument validation before execution hidden
// - Per-call timeout and backoff hidden
// - Error classification logic hidden

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Executor runs tools with validation, a per-call timeout, and an optional
// retry budget. The default budget is a single attempt.
type Executor struct {
	config ToolConfig
}

// NewExecutor creates a new tool executor with the given configuration.
func NewExecutor(config ToolConfig) *Executor {
	return &Executor{config: config}
}

// NewDefaultExecutor creates an executor with default configuration.
func NewDefaultExecutor() *Executor {
	return &Executor{config: DefaultToolConfig()}
}

// Execute validates args and runs the tool, retrying retryable failures
// while attempts remain.
func (e *Executor) Execute(ctx context.Context, tool Tool, args json.RawMessage) (ToolResult, error) {
	toolName := tool.Metadata().Name

	if err := tool.Validate(args); err != nil {
		return FailureResult(fmt.Errorf("validation failed: %w", err)), nil
	}

	timeout := time.Duration(e.config.Timeout()) * time.Second
	maxAttempts := e.config.Retries()

	var lastErr error
	for attempt := uint32(0); attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ToolResult{}, ctx.Err()
			case <-time.After(e.calculateBackoff(attempt)):
			}
		}

		result, err := e.executeOnce(ctx, tool, args, timeout)
		if err != nil {
			lastErr = err
			continue
		}
		if result.Success() || !e.shouldRetry(result) {
			return result, nil
		}
		lastErr = result.Error
	}

	errMsg := "unknown error"
	if lastErr != nil {
		errMsg = lastErr.Error()
	}
	if maxAttempts == 1 {
		return FailureResultf("tool '%s' failed: %s", toolName, errMsg), nil
	}
	return FailureResultf("tool '%s' failed after %d attempts: %s", toolName, maxAttempts, errMsg), nil
}

func (e *Executor) executeOnce(ctx context.Context, tool Tool, args json.RawMessage, timeout time.Duration) (ToolResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return tool.Execute(ctx, args)
}

// calculateBackoff returns the backoff duration for the given attempt.
func (e *Executor) calculateBackoff(attempt uint32) time.Duration {
	const (
		baseDelay = 100 * time.Millisecond
		maxDelay  = 5 * time.Second
	)

	delay := baseDelay * time.Duration(1<<attempt)
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// shouldRetry determines if an error is retryable.
func (e *Executor) shouldRetry(result ToolResult) bool {
	if result.Error == nil {
		return true
	}

	errLower := strings.ToLower(result.Error.Error())

	// Don't retry validation errors or permission issues
	nonRetryable := []string{"validation", "not allowed", "permission", "empty"}
	for _, s := range nonRetryable {
		if strings.Contains(errLower, s) {
			return false
		}
	}

	return true
}
