// Package extract turns an agent response into user-facing text.
//
// A conclusive response passes through untouched. A response carrying the
// StillThinking sentinel is replaced by the last observation of a branch
// chosen by a BranchSelector from the most recent task's tree.
//
// Information Hiding:
// - Sentinel detection
// - Branch selection policy behind BranchSelector
// - Structural checks on the tree, reported as typed errors
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/richinex/shopwise/agent"
)

var (
	// ErrNoTasks means the session has no recorded task to fall back on.
	ErrNoTasks = errors.New("no task recorded")
	// ErrMissingBranch means the tree lacks the branch the selector expects.
	ErrMissingBranch = errors.New("reasoning tree is missing the expected branch")
	// ErrEmptyTrace means the selected node has no reasoning steps.
	ErrEmptyTrace = errors.New("selected node has an empty reasoning trace")
)

// TaskLister exposes the most recent task. *agent.Session satisfies it.
type TaskLister interface {
	LastTask() (*agent.Task, bool)
}

// Extractor recovers answers from incomplete agent runs.
type Extractor struct {
	selector BranchSelector
}

// New creates an extractor using selector. A nil selector means
// DefaultSelector.
func New(selector BranchSelector) *Extractor {
	if selector == nil {
		selector = DefaultSelector()
	}
	return &Extractor{selector: selector}
}

// Selector returns the branch selection policy in use.
func (e *Extractor) Selector() BranchSelector {
	return e.selector
}

// IsIncomplete reports whether response carries the sentinel phrase.
func IsIncomplete(response string) bool {
	return strings.Contains(response, agent.StillThinking)
}

// Extract returns response unchanged unless it contains the sentinel. In that
// case it returns the last observation of the selected branch of the latest
// task, or an error when the tree does not have the expected shape.
func (e *Extractor) Extract(response string, tasks TaskLister) (string, error) {
	if !IsIncomplete(response) {
		return response, nil
	}

	if tasks == nil {
		return "", ErrNoTasks
	}
	task, ok := tasks.LastTask()
	if !ok || task == nil || task.Root == nil {
		return "", ErrNoTasks
	}

	node, err := e.selector.Select(task.Root)
	if err != nil {
		return "", fmt.Errorf("%s selector: %w", e.selector.Name(), err)
	}

	step, ok := node.LastStep()
	if !ok {
		return "", fmt.Errorf("%s selector: %w", e.selector.Name(), ErrEmptyTrace)
	}
	return step.Observation, nil
}
