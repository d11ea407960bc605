// Language agent tree search.
//
// Each rollout selects the most promising open leaf by UCT, expands it into
// candidate steps (running any tool a candidate asks for), scores the new
// children, and backpropagates the scores to the root.
//
// Information Hiding:
// - Selection, expansion, evaluation and backpropagation
// - Concurrent candidate generation with deterministic child order
// - Tool dispatch and failure accounting

package agent

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	jsonutil "github.com/richinex/shopwise/internal/json"
	"github.com/richinex/shopwise/llm"
	"github.com/richinex/shopwise/model"
	"github.com/richinex/shopwise/search"
)

func (s *Session) run(ctx context.Context, task *Task) error {
	for rollout := 0; rollout < s.config.MaxRollouts; rollout++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		leaf := selectLeaf(task.Root, s.config.Exploration)
		if leaf == nil {
			s.logger.Debug("no open branches left", zap.Int("rollout", rollout))
			return nil
		}
		task.Rollouts++

		children, err := s.expand(ctx, task, leaf)
		if err != nil {
			return fmt.Errorf("expand: %w", err)
		}
		if err := s.evaluate(ctx, task, children); err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}
		for _, child := range children {
			backpropagate(child, child.Score)
		}

		if bestSolution(task.Root) != nil {
			return nil
		}
	}
	return nil
}

// selectLeaf descends by highest UCT and returns the first open leaf.
// Equal bounds keep child order, so the first child wins ties.
func selectLeaf(node *Node, exploration float64) *Node {
	if node.IsTerminal() {
		return nil
	}
	if len(node.Children) == 0 {
		return node
	}

	open := make([]*Node, 0, len(node.Children))
	for _, child := range node.Children {
		if !child.IsTerminal() {
			open = append(open, child)
		}
	}
	slices.SortStableFunc(open, func(a, b *Node) int {
		return cmp.Compare(b.uct(exploration), a.uct(exploration))
	})

	for _, child := range open {
		if leaf := selectLeaf(child, exploration); leaf != nil {
			return leaf
		}
	}
	return nil
}

// backpropagate folds reward into the running mean of node and its ancestors.
func backpropagate(node *Node, reward float64) {
	for n := node; n != nil; n = n.Parent {
		n.Visits++
		n.Score += (reward - n.Score) / float64(n.Visits)
	}
}

// bestSolution returns the highest scored successful node, first found on ties.
func bestSolution(root *Node) *Node {
	var best *Node
	root.Walk(func(n *Node) bool {
		if n.State == StateSuccess && (best == nil || n.Score > best.Score) {
			best = n
		}
		return true
	})
	return best
}

// candidateResult is what one expansion goroutine produces.
type candidateResult struct {
	node     *Node
	usage    *llm.TokenUsage
	called   bool
	toolCall *model.ToolCall
	failed   bool
}

// expand generates NumExpansions children of leaf concurrently. Children are
// attached in candidate order once all succeed.
func (s *Session) expand(ctx context.Context, task *Task, leaf *Node) ([]*Node, error) {
	leaf.State = StateExpanding
	results := make([]candidateResult, s.config.NumExpansions)

	g, gctx := errgroup.WithContext(ctx)
	for i := range results {
		g.Go(func() error {
			cand, usage, err := s.propose(gctx, task.Input, leaf)
			results[i].called = true
			results[i].usage = usage
			if err != nil {
				return fmt.Errorf("candidate %d: %w", i, err)
			}

			step, call, failed := s.act(gctx, cand)
			results[i].toolCall = call
			results[i].failed = failed
			results[i].node = s.candidateNode(leaf, cand, step)
			return nil
		})
	}
	err := g.Wait()

	children := make([]*Node, 0, len(results))
	for _, r := range results {
		if r.called {
			task.LLMCalls++
		}
		task.Usage.Add(r.usage)
		if r.toolCall != nil {
			task.ToolCalls = append(task.ToolCalls, *r.toolCall)
		}
		if r.failed {
			task.ToolFailures++
		}
		if r.node != nil {
			children = append(children, r.node)
		}
	}
	if err != nil {
		return nil, err
	}

	leaf.Children = append(leaf.Children, children...)
	return children, nil
}

// propose asks the model for one next step. Unparsable output becomes a
// thought with no action.
func (s *Session) propose(ctx context.Context, query string, leaf *Node) (Candidate, *llm.TokenUsage, error) {
	content, usage, err := s.client.ChatWithUsage(ctx, s.expandMessages(query, leaf))
	if err != nil {
		return Candidate{}, usage, err
	}

	cand, err := jsonutil.ExtractJSONFromResponse[Candidate](content)
	if err != nil {
		s.logger.Debug("candidate was not JSON", zap.Error(err))
		cand = Candidate{Thought: strings.TrimSpace(content)}
	}
	if s.config.Verbose {
		s.logger.Debug("candidate",
			zap.Int("depth", leaf.Depth+1),
			zap.String("thought", cand.Thought),
			zap.String("action", cand.Action),
			zap.Bool("is_done", cand.IsDone))
	}
	return cand, usage, nil
}

// act turns a candidate into a reasoning step, running its tool if it names one.
func (s *Session) act(ctx context.Context, cand Candidate) (model.Step, *model.ToolCall, bool) {
	step := model.Step{
		Thought:     cand.Thought,
		Action:      cand.Action,
		ActionInput: cand.actionInputText(),
		IsDone:      cand.IsDone,
	}

	if cand.IsDone && cand.Answer != "" {
		step.Action, step.ActionInput = "", ""
		step.Observation = cand.Answer
		return step, nil, false
	}
	if cand.Action == "" {
		step.Observation = cand.Answer
		if step.Observation == "" {
			step.Observation = cand.Thought
		}
		return step, nil, false
	}

	observation, call, failed := s.runTool(ctx, cand.Action, cand.ActionInput)
	step.Observation = observation
	return step, call, failed
}

func (s *Session) runTool(ctx context.Context, name string, args json.RawMessage) (string, *model.ToolCall, bool) {
	tool, ok := s.registry.Get(name)
	if !ok {
		return fmt.Sprintf("Tool '%s' not found. Available tools: %s", name, strings.Join(s.registry.Names(), ", ")), nil, true
	}
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	start := time.Now()
	result, err := s.executor.Execute(ctx, tool, args)
	if err != nil {
		result.Error = err
	}

	observation := result.Output
	if !result.Success() {
		observation = fmt.Sprintf("Tool failed: %v", result.Error)
	}
	failed := !result.Success() || search.IsFailure(observation)

	call := &model.ToolCall{
		Name:       name,
		InputSize:  len(args),
		OutputSize: len(observation),
		DurationMs: uint64(time.Since(start).Milliseconds()),
		Success:    !failed,
	}
	if failed {
		s.logger.Warn("tool failure absorbed into observation",
			zap.String("tool", name),
			zap.String("observation", clip(observation, 200)))
	}
	return observation, call, failed
}

func (s *Session) candidateNode(leaf *Node, cand Candidate, step model.Step) *Node {
	child := leaf.newChild(step)
	switch {
	case cand.IsDone && cand.Answer != "":
		child.State = StateSuccess
		child.Answer = cand.Answer
	case child.Depth >= s.config.MaxDepth:
		child.State = StateExhausted
	}
	return child
}

// evaluate scores children concurrently. Unparsable scores count as 0.
func (s *Session) evaluate(ctx context.Context, task *Task, children []*Node) error {
	usages := make([]*llm.TokenUsage, len(children))
	called := make([]bool, len(children))

	g, gctx := errgroup.WithContext(ctx)
	for i, child := range children {
		g.Go(func() error {
			content, usage, err := s.client.ChatWithUsage(gctx, s.evaluateMessages(task.Input, child))
			called[i] = true
			usages[i] = usage
			if err != nil {
				return fmt.Errorf("child %d: %w", i, err)
			}

			eval, err := jsonutil.ExtractJSONFromResponse[Evaluation](content)
			if err != nil {
				s.logger.Debug("evaluation was not JSON", zap.Error(err))
				eval = Evaluation{}
			}
			child.Score = min(max(eval.Score, 0), maxScore)
			if child.State == StateEvaluating {
				child.State = StateExpanding
			}
			if s.config.Verbose {
				s.logger.Debug("evaluation",
					zap.Int("depth", child.Depth),
					zap.Float64("score", child.Score),
					zap.String("state", child.State.String()),
					zap.String("reasoning", eval.Reasoning))
			}
			return nil
		})
	}
	err := g.Wait()

	for i := range children {
		if called[i] {
			task.LLMCalls++
		}
		task.Usage.Add(usages[i])
	}
	return err
}
