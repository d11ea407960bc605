// Package model provides domain types shared across packages.
package model

// Document is a single search hit. Body is the only field the agent sees;
// Title and URL are kept for logging and the API.
type Document struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}

// Step is one reasoning step recorded on a node of the search tree.
// Observation holds whatever the step produced: a tool result, or the
// model's own answer text when no tool was called.
type Step struct {
	Thought     string `json:"thought"`
	Action      string `json:"action,omitempty"`
	ActionInput string `json:"action_input,omitempty"`
	Observation string `json:"observation"`
	IsDone      bool   `json:"is_done"`
}

// HasAction reports whether the step called a tool.
func (s Step) HasAction() bool {
	return s.Action != ""
}

// ToolCall contains metrics about a tool invocation.
type ToolCall struct {
	Name       string `json:"name"`
	InputSize  int    `json:"input_size"`
	OutputSize int    `json:"output_size"`
	DurationMs uint64 `json:"duration_ms"`
	Success    bool   `json:"success"`
}
