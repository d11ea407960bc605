package extract

import (
	"fmt"
	"strings"

	"github.com/richinex/shopwise/agent"
)

// BranchSelector picks the node whose trace supplies the fallback answer.
type BranchSelector interface {
	Name() string
	Select(root *agent.Node) (*agent.Node, error)
}

// DefaultSelector descends two levels along the first child.
func DefaultSelector() BranchSelector {
	return FirstChild{Depth: 2}
}

// FirstChild follows child 0 for Depth levels. A missing child is an error,
// never a shallower node.
type FirstChild struct {
	Depth int
}

// Name returns "first-child".
func (FirstChild) Name() string { return "first-child" }

// Select walks the first-child spine.
func (f FirstChild) Select(root *agent.Node) (*agent.Node, error) {
	if root == nil {
		return nil, ErrMissingBranch
	}
	node := root
	for level := 1; level <= f.Depth; level++ {
		child, ok := node.Child(0)
		if !ok {
			return nil, fmt.Errorf("%w: no first child at depth %d", ErrMissingBranch, level)
		}
		node = child
	}
	return node, nil
}

// HighestScore picks the non-root node with the best score, preferring
// shallower nodes and then earlier siblings on ties.
type HighestScore struct{}

// Name returns "highest-score".
func (HighestScore) Name() string { return "highest-score" }

// Select returns the best scored node with a non-empty trace.
func (HighestScore) Select(root *agent.Node) (*agent.Node, error) {
	if root == nil {
		return nil, ErrMissingBranch
	}
	var best *agent.Node
	root.Walk(func(n *agent.Node) bool {
		if n == root || len(n.Reasoning) == 0 {
			return true
		}
		if best == nil || n.Score > best.Score {
			best = n
		}
		return true
	})
	if best == nil {
		return nil, fmt.Errorf("%w: tree has no expanded nodes", ErrMissingBranch)
	}
	return best, nil
}

// DeepestTrace picks the deepest node whose last observation is non-empty,
// earliest in breadth-first order on ties.
type DeepestTrace struct{}

// Name returns "deepest-trace".
func (DeepestTrace) Name() string { return "deepest-trace" }

// Select returns the deepest node with a usable observation.
func (DeepestTrace) Select(root *agent.Node) (*agent.Node, error) {
	if root == nil {
		return nil, ErrMissingBranch
	}
	var best *agent.Node
	root.Walk(func(n *agent.Node) bool {
		step, ok := n.LastStep()
		if !ok || strings.TrimSpace(step.Observation) == "" {
			return true
		}
		if best == nil || n.Depth > best.Depth {
			best = n
		}
		return true
	})
	if best == nil {
		return nil, fmt.Errorf("%w: no node has an observation", ErrMissingBranch)
	}
	return best, nil
}

// SelectorByName returns the named selector.
func SelectorByName(name string) (BranchSelector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "first-child":
		return DefaultSelector(), nil
	case "highest-score":
		return HighestScore{}, nil
	case "deepest-trace":
		return DeepestTrace{}, nil
	default:
		return nil, fmt.Errorf("unknown branch selector: %q", name)
	}
}

// Verify selectors implement BranchSelector
var (
	_ BranchSelector = FirstChild{}
	_ BranchSelector = HighestScore{}
	_ BranchSelector = DeepestTrace{}
)
