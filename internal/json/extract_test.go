package json

import (
	"errors"
	"testing"
)

type step struct {
	Thought string `json:"thought"`
	Action  string `json:"action"`
	IsDone  bool   `json:"is_done"`
}

func TestExtractJSONFromResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     step
	}{
		{"pure", `{"thought": "look up reviews", "action": "search"}`, step{Thought: "look up reviews", Action: "search"}},
		{"prefix", `Here you go: {"thought": "t", "action": "search"}`, step{Thought: "t", Action: "search"}},
		{"suffix", `{"thought": "t", "is_done": true} Hope that helps.`, step{Thought: "t", IsDone: true}},
		{"fenced", "```json\n{\"thought\": \"t\"}\n```", step{Thought: "t"}},
		{"bare fence", "```\n{\"action\": \"search\"}\n```", step{Action: "search"}},
		{"braces in string", `Note: {"thought": "use {curly} and } stray", "action": "search"} end`, step{Thought: "use {curly} and } stray", Action: "search"}},
		{"escaped quote", `{"thought": "a \"quoted\" } brace"}`, step{Thought: `a "quoted" } brace`}},
		{"two objects takes first", `{"thought": "first"} then {"thought": "second"}`, step{Thought: "first"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONFromResponse[step](tt.response)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractArray(t *testing.T) {
	response := `Candidates:
[{"thought": "a"}, {"thought": "b"}]
Pick one.`
	got, err := ExtractJSONFromResponse[[]step](response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Thought != "a" || got[1].Thought != "b" {
		t.Errorf("unexpected candidates: %+v", got)
	}
}

func TestSkipsInvalidLeadingBrackets(t *testing.T) {
	response := `[citation needed] {"thought": "ok"}`
	got, err := ExtractJSONFromResponse[step](response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Thought != "ok" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestNoJSON(t *testing.T) {
	_, err := ExtractJSON("This is just plain text without any JSON")
	if !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON, got %v", err)
	}
}

func TestUnterminatedJSON(t *testing.T) {
	_, err := ExtractJSON(`{"thought": "never closed"`)
	if !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON, got %v", err)
	}
}

func TestTypeMismatch(t *testing.T) {
	_, err := ExtractJSONFromResponse[step](`{"thought": 12}`)
	if err == nil {
		t.Error("expected unmarshal error for mismatched type")
	}
}
