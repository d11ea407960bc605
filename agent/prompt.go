// Prompt construction for expansion and evaluation.
//
// Information Hiding:
// - Prompt wording and JSON response formats
// - Observation clipping to the prompt token budget

package agent

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/richinex/shopwise/llm"
	"github.com/richinex/shopwise/model"
)

// bytesPerToken approximates token counts from byte lengths.
const bytesPerToken = 4

const expandFormat = `%s

Available Tools:
%s

Think step by step. Propose exactly ONE next step and respond in this JSON format:
{
  "thought": "your reasoning for this step",
  "action": "tool name, or empty when no tool is needed",
  "action_input": {"query": "search terms"},
  "is_done": false,
  "answer": null
}

When you have enough information to recommend products: set is_done=true,
leave action empty, and put the complete recommendation in "answer".
You have at most %d steps; this is step %d.`

const evaluateFormat = `You evaluate partial reasoning of a product recommendation assistant.
Judge how well the trajectory below answers the user's request: relevance of the
products found, fit with budget and features, and how grounded it is in the search
observations.

Respond in this JSON format:
{
  "reasoning": "short justification",
  "score": 1-10,
  "is_done": true if the trajectory already contains a complete answer
}`

func (s *Session) expandMessages(query string, node *Node) []llm.ChatMessage {
	system := fmt.Sprintf(expandFormat,
		s.config.SystemPrompt,
		s.registry.Description(),
		s.config.MaxDepth,
		node.Depth+1,
	)
	user := fmt.Sprintf("Request: %s\n\n%s\n\nPropose the next step.",
		query, s.renderTrajectory(node.Reasoning, len(system)+len(query)))

	return []llm.ChatMessage{llm.SystemMessage(system), llm.UserMessage(user)}
}

func (s *Session) evaluateMessages(query string, node *Node) []llm.ChatMessage {
	user := fmt.Sprintf("Request: %s\n\n%s",
		query, s.renderTrajectory(node.Reasoning, len(evaluateFormat)+len(query)))

	return []llm.ChatMessage{llm.SystemMessage(evaluateFormat), llm.UserMessage(user)}
}

// renderTrajectory prints the steps so far, clipping observations so the
// whole prompt stays inside the budget. used is the byte size of the rest
// of the prompt.
func (s *Session) renderTrajectory(steps []model.Step, used int) string {
	if len(steps) == 0 {
		return "Reasoning so far: (none)"
	}

	available := s.config.PromptBudget*bytesPerToken - used
	perObservation := available / len(steps)
	if perObservation < 200 {
		perObservation = 200
	}

	var b strings.Builder
	b.WriteString("Reasoning so far:")
	for i, step := range steps {
		fmt.Fprintf(&b, "\nStep %d\nThought: %s", i+1, step.Thought)
		if step.HasAction() {
			fmt.Fprintf(&b, "\nAction: %s", step.Action)
			if step.ActionInput != "" {
				fmt.Fprintf(&b, "\nAction Input: %s", step.ActionInput)
			}
		}
		if step.Observation != "" {
			fmt.Fprintf(&b, "\nObservation: %s", clip(step.Observation, perObservation))
		}
	}
	return b.String()
}

// clip shortens s to at most n bytes without splitting a UTF-8 sequence.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	const marker = " ...[truncated]"
	cut := n - len(marker)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + marker
}
