package recommend

import (
	"errors"
	"fmt"
)

// Kind classifies a recommendation failure.
type Kind int

const (
	// KindUnknown is reported for errors not produced by this package.
	KindUnknown Kind = iota
	// KindSetupFailure means the LLM session could not be constructed.
	KindSetupFailure
	// KindToolFailure means the only recoverable content was a failed search.
	KindToolFailure
	// KindExtractionFailure means the fallback could not read the tree.
	// An unfinished search that the fallback recovers is not an error; it is
	// reported through Result.Incomplete.
	KindExtractionFailure
	// KindQueryFailure covers invalid requests and per-query agent errors.
	KindQueryFailure
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSetupFailure:
		return "setup_failure"
	case KindToolFailure:
		return "tool_failure"
	case KindExtractionFailure:
		return "extraction_failure"
	case KindQueryFailure:
		return "query_failure"
	default:
		return "unknown"
	}
}

// ErrInvalidRequest marks failures caused by the caller's input.
var ErrInvalidRequest = errors.New("invalid request")

// Error is a classified failure. Op names the pipeline stage.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsInvalidRequest reports whether err was caused by bad input.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

// Message renders err for display to an end user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if KindOf(err) == KindSetupFailure {
		return fmt.Sprintf("Agent setup failed: %v", err)
	}
	return fmt.Sprintf("An error occurred while processing your request: %v", err)
}
