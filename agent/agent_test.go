package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/richinex/shopwise/llm"
	"github.com/richinex/shopwise/model"
	"github.com/richinex/shopwise/search"
	"github.com/richinex/shopwise/tools"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	searchStep = `{"thought": "I should look up reviews", "action": "search", "action_input": {"query": "best laptop battery life"}, "is_done": false}`
	answerStep = `{"thought": "I have enough", "is_done": true, "answer": "Recommend X"}`
)

// scriptedProvider answers pings, expansions and evaluations by inspecting
// the prompt, so concurrent calls get deterministic replies.
type scriptedProvider struct {
	mu        sync.Mutex
	pingErr   error
	expand    func(depth int) (string, error)
	evaluate  func() (string, error)
	calls     int
	evalCalls int
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted-1" }

func (p *scriptedProvider) Chat(ctx context.Context, messages []llm.ChatMessage) (llm.LLMResponse, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	usage := &llm.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}

	if len(messages) == 1 {
		if p.pingErr != nil {
			return llm.LLMResponse{}, p.pingErr
		}
		return llm.LLMResponse{Content: "OK"}, nil
	}

	if messages[0].Content == evaluateFormat {
		p.mu.Lock()
		p.evalCalls++
		p.mu.Unlock()
		if p.evaluate == nil {
			return llm.LLMResponse{Content: `{"score": 7, "is_done": false, "reasoning": "ok"}`, Usage: usage}, nil
		}
		content, err := p.evaluate()
		return llm.LLMResponse{Content: content, Usage: usage}, err
	}

	depth := 0
	for d := 1; d <= 10; d++ {
		if strings.Contains(messages[0].Content, "this is step "+itoa(d)+".") {
			depth = d
			break
		}
	}
	content, err := p.expand(depth)
	return llm.LLMResponse{Content: content, Usage: usage}, err
}

func itoa(i int) string {
	return string(rune('0' + i))
}

func searchRegistry(t *testing.T, provider search.Provider) *tools.Registry {
	t.Helper()
	registry, err := tools.WithTools(tools.NewSearchTool(search.NewAdapter(provider, nil)))
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return registry
}

func staticSearch(body string) search.Provider {
	return search.ProviderFunc(func(ctx context.Context, query string, maxResults int) ([]model.Document, error) {
		return []model.Document{{Title: "t", URL: "https://example.com", Body: body}}, nil
	})
}

func newTestSession(t *testing.T, provider llm.Provider, registry *tools.Registry) *Session {
	t.Helper()
	session, err := NewSession(context.Background(), provider, registry, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return session
}

func TestChatReturnsAnswer(t *testing.T) {
	provider := &scriptedProvider{
		expand: func(depth int) (string, error) {
			if depth >= 2 {
				return answerStep, nil
			}
			return searchStep, nil
		},
	}
	session := newTestSession(t, provider, searchRegistry(t, staticSearch("Laptop A lasts 20 hours.")))

	response, err := session.Chat(context.Background(), "Looking for a laptops under $1000 with Long Battery Life")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if response != "Recommend X" {
		t.Errorf("expected 'Recommend X', got %q", response)
	}

	task, ok := session.LastTask()
	if !ok {
		t.Fatal("expected recorded task")
	}
	if task.Response != "Recommend X" {
		t.Errorf("task response mismatch: %q", task.Response)
	}
	if task.Rollouts != 2 {
		t.Errorf("expected 2 rollouts, got %d", task.Rollouts)
	}

	first, ok := task.Root.Child(0)
	if !ok {
		t.Fatal("root has no children")
	}
	if len(task.Root.Children) != 2 {
		t.Errorf("expected 2 expansions at root, got %d", len(task.Root.Children))
	}
	step, _ := first.LastStep()
	if step.Observation != "Laptop A lasts 20 hours." {
		t.Errorf("expected search observation on first child, got %q", step.Observation)
	}

	grandchild, ok := first.Child(0)
	if !ok {
		t.Fatal("first child was not expanded")
	}
	if grandchild.State != StateSuccess {
		t.Errorf("expected terminal-success, got %s", grandchild.State)
	}
	if len(grandchild.Reasoning) != 2 {
		t.Errorf("expected cumulative trace of 2 steps, got %d", len(grandchild.Reasoning))
	}
	if last, _ := grandchild.LastStep(); last.Observation != "Recommend X" {
		t.Errorf("expected answer as last observation, got %q", last.Observation)
	}
	if task.Usage.TotalTokens == 0 || task.LLMCalls != 8 {
		t.Errorf("unexpected accounting: calls=%d usage=%+v", task.LLMCalls, task.Usage)
	}
	if len(task.ToolCalls) != 2 {
		t.Errorf("expected 2 tool calls, got %d", len(task.ToolCalls))
	}
}

func TestChatStopsEarlyOnSuccess(t *testing.T) {
	provider := &scriptedProvider{
		expand: func(int) (string, error) { return answerStep, nil },
	}
	session := newTestSession(t, provider, searchRegistry(t, staticSearch("x")))

	response, err := session.Chat(context.Background(), "q")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if response != "Recommend X" {
		t.Errorf("unexpected response %q", response)
	}
	task, _ := session.LastTask()
	if task.Rollouts != 1 {
		t.Errorf("expected early stop after 1 rollout, got %d", task.Rollouts)
	}
}

func TestChatStillThinking(t *testing.T) {
	provider := &scriptedProvider{
		expand: func(int) (string, error) { return searchStep, nil },
	}
	session := newTestSession(t, provider, searchRegistry(t, staticSearch("partial findings")))

	response, err := session.Chat(context.Background(), "q")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if response != StillThinking {
		t.Fatalf("expected sentinel, got %q", response)
	}

	task, _ := session.LastTask()
	child, ok := task.Root.Child(0)
	if !ok {
		t.Fatal("missing first child")
	}
	grandchild, ok := child.Child(0)
	if !ok {
		t.Fatal("missing first grandchild")
	}
	if last, _ := grandchild.LastStep(); last.Observation != "partial findings" {
		t.Errorf("unexpected observation %q", last.Observation)
	}
}

func TestChatAbsorbsSearchFailure(t *testing.T) {
	failing := search.ProviderFunc(func(ctx context.Context, query string, maxResults int) ([]model.Document, error) {
		return nil, errors.New("ratelimit")
	})
	provider := &scriptedProvider{
		expand: func(int) (string, error) { return searchStep, nil },
	}
	session := newTestSession(t, provider, searchRegistry(t, failing))

	response, err := session.Chat(context.Background(), "q")
	if err != nil {
		t.Fatalf("search failure must not abort the loop: %v", err)
	}
	if response != StillThinking {
		t.Errorf("unexpected response %q", response)
	}

	task, _ := session.LastTask()
	if task.ToolFailures != 4 {
		t.Errorf("expected 4 absorbed tool failures, got %d", task.ToolFailures)
	}
	child, _ := task.Root.Child(0)
	if last, _ := child.LastStep(); last.Observation != "Search failed: ratelimit" {
		t.Errorf("unexpected observation %q", last.Observation)
	}
}

func TestChatUnknownTool(t *testing.T) {
	provider := &scriptedProvider{
		expand: func(int) (string, error) {
			return `{"thought": "t", "action": "calculator", "action_input": "2+2"}`, nil
		},
	}
	session := newTestSession(t, provider, searchRegistry(t, staticSearch("x")))

	if _, err := session.Chat(context.Background(), "q"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	task, _ := session.LastTask()
	child, _ := task.Root.Child(0)
	last, _ := child.LastStep()
	if !strings.Contains(last.Observation, "Tool 'calculator' not found") {
		t.Errorf("unexpected observation %q", last.Observation)
	}
}

func TestChatLLMFailureKeepsSessionUsable(t *testing.T) {
	var fail sync.Mutex
	failing := true
	provider := &scriptedProvider{
		expand: func(int) (string, error) { return answerStep, nil },
		evaluate: func() (string, error) {
			fail.Lock()
			defer fail.Unlock()
			if failing {
				return "", errors.New("upstream 503")
			}
			return `{"score": 9}`, nil
		},
	}
	session := newTestSession(t, provider, searchRegistry(t, staticSearch("x")))

	_, err := session.Chat(context.Background(), "first")
	if err == nil || !strings.Contains(err.Error(), "upstream 503") {
		t.Fatalf("expected wrapped LLM error, got %v", err)
	}
	task, _ := session.LastTask()
	if task.Err == "" {
		t.Error("expected failure recorded on task")
	}

	fail.Lock()
	failing = false
	fail.Unlock()

	response, err := session.Chat(context.Background(), "second")
	if err != nil {
		t.Fatalf("session should remain usable: %v", err)
	}
	if response != "Recommend X" {
		t.Errorf("unexpected response %q", response)
	}
	if n := len(session.Tasks()); n != 2 {
		t.Errorf("expected 2 tasks in history, got %d", n)
	}
}

func TestChatExpansionFailure(t *testing.T) {
	provider := &scriptedProvider{
		expand: func(int) (string, error) { return "", errors.New("bad gateway") },
	}
	session := newTestSession(t, provider, nil)

	if _, err := session.Chat(context.Background(), "q"); err == nil {
		t.Fatal("expected error")
	}
	task, _ := session.LastTask()
	if len(task.Root.Children) != 0 {
		t.Error("failed expansion must not attach children")
	}
}

func TestUnparsableEvaluationScoresZero(t *testing.T) {
	provider := &scriptedProvider{
		expand:   func(int) (string, error) { return searchStep, nil },
		evaluate: func() (string, error) { return "looks fine to me", nil },
	}
	session := newTestSession(t, provider, searchRegistry(t, staticSearch("x")))

	if _, err := session.Chat(context.Background(), "q"); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	task, _ := session.LastTask()
	for _, child := range task.Root.Children {
		if child.Score != 0 {
			t.Errorf("expected score 0, got %v", child.Score)
		}
	}
}

func TestChatEmptyQuery(t *testing.T) {
	session := newTestSession(t, &scriptedProvider{}, nil)
	if _, err := session.Chat(context.Background(), "  "); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if len(session.Tasks()) != 1 {
		t.Error("empty query should still be recorded")
	}
}

func TestUsageAccumulatesAcrossTasks(t *testing.T) {
	provider := &scriptedProvider{
		expand: func(int) (string, error) { return answerStep, nil },
	}
	session := newTestSession(t, provider, nil)

	_, _ = session.Chat(context.Background(), "a")
	first := session.Usage().TotalTokens
	_, _ = session.Chat(context.Background(), "b")
	if session.Usage().TotalTokens != 2*first || first == 0 {
		t.Errorf("expected usage to accumulate, got %d after first %d", session.Usage().TotalTokens, first)
	}
}

func TestNewSessionSetupFailure(t *testing.T) {
	provider := &scriptedProvider{pingErr: errors.New("401 invalid api key")}
	session, err := NewSession(context.Background(), provider, nil, DefaultConfig(), nil)
	if session != nil {
		t.Error("expected nil session on setup failure")
	}
	var setupErr *SetupError
	if !errors.As(err, &setupErr) {
		t.Fatalf("expected *SetupError, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("expected only the handshake call, got %d", provider.calls)
	}
}

func TestNewSessionRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRollouts = 0
	_, err := NewSession(context.Background(), &scriptedProvider{}, nil, cfg, nil)
	var setupErr *SetupError
	if !errors.As(err, &setupErr) {
		t.Errorf("expected *SetupError, got %v", err)
	}

	if _, err := NewSession(context.Background(), nil, nil, DefaultConfig(), nil); !errors.As(err, &setupErr) {
		t.Errorf("expected *SetupError for nil provider, got %v", err)
	}
}
