// Package agent provides the tree-search reasoning agent.
//
// Contains the search tree, the per-query task record, and the JSON
// shapes the model answers with.
package agent

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/richinex/shopwise/llm"
	"github.com/richinex/shopwise/model"
)

// StillThinking is the response returned when no branch reached an answer.
const StillThinking = "I am still thinking."

// NodeState tracks a branch through the search.
type NodeState int

const (
	// StateExpanding marks an open node that may receive children.
	StateExpanding NodeState = iota
	// StateEvaluating marks a node awaiting its score.
	StateEvaluating
	// StateSuccess marks a branch that produced a final answer.
	StateSuccess
	// StateExhausted marks a branch that hit the depth limit without an answer.
	StateExhausted
)

// String returns the state name.
func (s NodeState) String() string {
	switch s {
	case StateExpanding:
		return "expanding"
	case StateEvaluating:
		return "evaluating"
	case StateSuccess:
		return "terminal-success"
	case StateExhausted:
		return "terminal-exhausted"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state by name.
func (s NodeState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Node is one vertex of the reasoning tree. Reasoning is the full trace
// from the root to this node, so the last step is this node's own.
type Node struct {
	Parent    *Node        `json:"-"`
	Children  []*Node      `json:"children,omitempty"`
	Reasoning []model.Step `json:"reasoning"`
	State     NodeState    `json:"state"`
	Score     float64      `json:"score"`
	Visits    int          `json:"visits"`
	Depth     int          `json:"depth"`
	Answer    string       `json:"answer,omitempty"`
}

func newRoot() *Node {
	return &Node{State: StateExpanding}
}

// newChild creates a child carrying the parent's trace plus step.
func (n *Node) newChild(step model.Step) *Node {
	reasoning := make([]model.Step, len(n.Reasoning), len(n.Reasoning)+1)
	copy(reasoning, n.Reasoning)
	return &Node{
		Parent:    n,
		Reasoning: append(reasoning, step),
		State:     StateEvaluating,
		Depth:     n.Depth + 1,
	}
}

// IsTerminal reports whether the node can no longer be expanded.
func (n *Node) IsTerminal() bool {
	return n.State == StateSuccess || n.State == StateExhausted
}

// Child returns the i-th child.
func (n *Node) Child(i int) (*Node, bool) {
	if i < 0 || i >= len(n.Children) {
		return nil, false
	}
	return n.Children[i], true
}

// LastStep returns the final step of the trace.
func (n *Node) LastStep() (model.Step, bool) {
	if len(n.Reasoning) == 0 {
		return model.Step{}, false
	}
	return n.Reasoning[len(n.Reasoning)-1], true
}

// Walk visits the subtree in breadth-first order until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	queue := []*Node{n}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if !fn(node) {
			return
		}
		queue = append(queue, node.Children...)
	}
}

// uct is the upper confidence bound used during selection.
// Unvisited nodes are always preferred.
func (n *Node) uct(exploration float64) float64 {
	if n.Visits == 0 {
		return math.Inf(1)
	}
	parentVisits := 1
	if n.Parent != nil && n.Parent.Visits > 0 {
		parentVisits = n.Parent.Visits
	}
	exploit := n.Score / maxScore
	explore := exploration * math.Sqrt(math.Log(float64(parentVisits))/float64(n.Visits))
	return exploit + explore
}

// Task records one Chat call: the query, the tree explored, and the outcome.
type Task struct {
	ID           uuid.UUID        `json:"id"`
	Input        string           `json:"input"`
	Root         *Node            `json:"root"`
	Response     string           `json:"response"`
	CreatedAt    time.Time        `json:"created_at"`
	Duration     time.Duration    `json:"duration"`
	Usage        llm.TokenUsage   `json:"usage"`
	LLMCalls     int              `json:"llm_calls"`
	ToolCalls    []model.ToolCall `json:"tool_calls,omitempty"`
	ToolFailures int              `json:"tool_failures"`
	Rollouts     int              `json:"rollouts"`
	Err          string           `json:"error,omitempty"`
}

// Candidate is one proposed next step as returned by the model.
type Candidate struct {
	Thought     string
	Action      string
	ActionInput json.RawMessage
	IsDone      bool
	Answer      string
}

// UnmarshalJSON accepts answer as a string or any JSON value, and
// action_input as a string or an object.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var aux struct {
		Thought     string          `json:"thought"`
		Action      string          `json:"action"`
		ActionInput json.RawMessage `json:"action_input"`
		IsDone      bool            `json:"is_done"`
		Answer      json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.Thought = aux.Thought
	c.Action = aux.Action
	c.IsDone = aux.IsDone
	if len(aux.ActionInput) > 0 && string(aux.ActionInput) != "null" {
		c.ActionInput = aux.ActionInput
	}

	if len(aux.Answer) > 0 && string(aux.Answer) != "null" {
		var s string
		if err := json.Unmarshal(aux.Answer, &s); err == nil {
			c.Answer = s
		} else {
			var v any
			if err := json.Unmarshal(aux.Answer, &v); err == nil {
				if pretty, err := json.MarshalIndent(v, "", "  "); err == nil {
					c.Answer = string(pretty)
				}
			}
		}
	}
	return nil
}

// actionInputText renders ActionInput for the trace: the bare string when
// the model sent one, the raw JSON otherwise.
func (c Candidate) actionInputText() string {
	if len(c.ActionInput) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(c.ActionInput, &s); err == nil {
		return s
	}
	var obj struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(c.ActionInput, &obj); err == nil && obj.Query != "" {
		return obj.Query
	}
	return string(c.ActionInput)
}

// Evaluation is the model's judgement of a branch.
type Evaluation struct {
	Score     float64 `json:"score"`
	IsDone    bool    `json:"is_done"`
	Reasoning string  `json:"reasoning"`
}
