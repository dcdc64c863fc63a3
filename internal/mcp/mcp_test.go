package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/cardsmith/internal/errors"
	"github.com/hpungsan/cardsmith/internal/llm"
	"github.com/hpungsan/cardsmith/internal/prompts"
	"github.com/hpungsan/cardsmith/internal/session"
)

const testMarkup = `<svg width="400" height="200"></svg>`

// capture records the prompts a generation was called with.
type capture struct {
	system string
	input  string
	calls  int
}

func testSetup(t *testing.T, res llm.Result) (*Handlers, *capture) {
	t.Helper()
	c := &capture{}
	gen := llm.GeneratorFunc(func(_ context.Context, systemPrompt, userInput string) llm.Result {
		c.system, c.input = systemPrompt, userInput
		c.calls++
		return res
	})
	catalog := prompts.NewCatalog(
		prompts.Style{Name: "style-A", Prompt: "prompt A"},
		prompts.Style{Name: "style-B", Prompt: "prompt B"},
	)
	return NewHandlers(session.New("test"), catalog, gen), c
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestHandleStyles(t *testing.T) {
	h, _ := testSetup(t, llm.Success(testMarkup))

	result, err := h.HandleStyles(context.Background(), makeRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := parseOutput(t, result)
	styles := out["styles"].([]any)
	if len(styles) != 2 {
		t.Fatalf("styles = %d, want 2", len(styles))
	}
	first := styles[0].(map[string]any)
	if first["name"] != "style-A" || first["prompt"] != "prompt A" {
		t.Errorf("first style = %v", first)
	}
}

func TestHandleGenerate(t *testing.T) {
	tests := []struct {
		name       string
		args       map[string]any
		res        llm.Result
		wantCode   string
		wantSystem string
		wantStyle  string
	}{
		{
			name:       "preset style",
			args:       map[string]any{"style": "style-B", "user_input": "Hello"},
			res:        llm.Success(testMarkup),
			wantSystem: "prompt B",
			wantStyle:  "style-B",
		},
		{
			name:       "defaults to first style",
			args:       map[string]any{"user_input": "Hello"},
			res:        llm.Success(testMarkup),
			wantSystem: "prompt A",
			wantStyle:  "style-A",
		},
		{
			name:       "custom prompt wins",
			args:       map[string]any{"style": "style-B", "custom_prompt": "my prompt", "user_input": "Hello"},
			res:        llm.Success(testMarkup),
			wantSystem: "my prompt",
			wantStyle:  prompts.CustomStyle,
		},
		{
			name:     "unknown style",
			args:     map[string]any{"style": "nope", "user_input": "Hello"},
			res:      llm.Success(testMarkup),
			wantCode: string(errors.ErrUnknownStyle),
		},
		{
			name:     "missing user input",
			args:     map[string]any{"style": "style-A"},
			res:      llm.Success(testMarkup),
			wantCode: string(errors.ErrInvalidRequest),
		},
		{
			name:     "wrong argument type",
			args:     map[string]any{"user_input": 42},
			res:      llm.Success(testMarkup),
			wantCode: string(errors.ErrInvalidRequest),
		},
		{
			name:     "generation failure",
			args:     map[string]any{"user_input": "Hello"},
			res:      llm.Failure("rate limited"),
			wantCode: string(errors.ErrGenerationFailed),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, c := testSetup(t, tt.res)
			result, err := h.HandleGenerate(context.Background(), makeRequest(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantCode != "" {
				if !result.IsError {
					t.Fatal("expected error result")
				}
				assertErrorCode(t, result, tt.wantCode)
				if len(h.sess.Snapshot().History) != 0 {
					t.Error("failed call must not add history")
				}
				return
			}

			out := parseOutput(t, result)
			if c.system != tt.wantSystem {
				t.Errorf("system prompt = %q, want %q", c.system, tt.wantSystem)
			}
			if out["style"] != tt.wantStyle {
				t.Errorf("style = %v, want %q", out["style"], tt.wantStyle)
			}
			if out["markup"] != testMarkup {
				t.Errorf("markup = %v", out["markup"])
			}
			if out["display_height"] != float64(250) {
				t.Errorf("display_height = %v, want 250", out["display_height"])
			}
			if out["number"] != float64(1) {
				t.Errorf("number = %v, want 1", out["number"])
			}
		})
	}
}

func TestHandleGenerate_FailureMessageSurfaced(t *testing.T) {
	h, _ := testSetup(t, llm.Failure("rate limited"))
	result, _ := h.HandleGenerate(context.Background(), makeRequest(map[string]any{"user_input": "x"}))

	msg := extractErrorMessage(result)
	var payload map[string]map[string]any
	if err := json.Unmarshal([]byte(msg), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload["error"]["message"] != "generation failed: rate limited" {
		t.Errorf("message = %v", payload["error"]["message"])
	}
	if h.sess.Snapshot().LastError != "rate limited" {
		t.Errorf("session error = %q", h.sess.Snapshot().LastError)
	}
}

func TestHandleGenerate_NumbersComeFromCommit(t *testing.T) {
	h, _ := testSetup(t, llm.Success(testMarkup))
	ctx := context.Background()

	const calls = 6
	var wg sync.WaitGroup
	numbers := make(chan float64, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				r, _ := h.HandleGenerate(ctx, makeRequest(map[string]any{"user_input": "x"}))
				if !r.IsError {
					var out map[string]any
					if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &out); err != nil {
						t.Error(err)
						return
					}
					numbers <- out["number"].(float64)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[float64]bool{}
	for n := range numbers {
		if seen[n] {
			t.Errorf("number %v returned twice", n)
		}
		seen[n] = true
	}
	for i := 1; i <= calls; i++ {
		if !seen[float64(i)] {
			t.Errorf("number %d never returned", i)
		}
	}
}

func TestHandleHistory(t *testing.T) {
	h, _ := testSetup(t, llm.Success(testMarkup))
	ctx := context.Background()

	result, _ := h.HandleHistory(ctx, makeRequest(nil))
	out := parseOutput(t, result)
	if out["total"] != float64(0) || len(out["items"].([]any)) != 0 {
		t.Fatalf("empty history = %v", out)
	}

	for i := 0; i < 4; i++ {
		r, _ := h.HandleGenerate(ctx, makeRequest(map[string]any{"user_input": fmt.Sprintf("in-%d", i)}))
		parseOutput(t, r)
	}

	result, _ = h.HandleHistory(ctx, makeRequest(map[string]any{"limit": 2}))
	out = parseOutput(t, result)
	items := out["items"].([]any)
	if out["total"] != float64(4) || len(items) != 2 {
		t.Fatalf("history = %v", out)
	}
	newest := items[0].(map[string]any)
	if newest["user_input"] != "in-3" || newest["number"] != float64(4) {
		t.Errorf("newest = %v", newest)
	}
	if _, ok := newest["markup"]; ok {
		t.Error("history items should omit markup")
	}

	result, _ = h.HandleHistory(ctx, makeRequest(map[string]any{"limit": 0}))
	if n := len(parseOutput(t, result)["items"].([]any)); n != 4 {
		t.Errorf("limit 0 returned %d items, want 4", n)
	}

	result, _ = h.HandleHistory(ctx, makeRequest(map[string]any{"limit": -1}))
	assertErrorCode(t, result, string(errors.ErrInvalidRequest))
}

func TestHandleCurrent(t *testing.T) {
	h, _ := testSetup(t, llm.Success(testMarkup))
	ctx := context.Background()

	result, _ := h.HandleCurrent(ctx, makeRequest(nil))
	assertErrorCode(t, result, string(errors.ErrNotFound))

	r, _ := h.HandleGenerate(ctx, makeRequest(map[string]any{"user_input": "first"}))
	first := parseOutput(t, r)
	r, _ = h.HandleGenerate(ctx, makeRequest(map[string]any{"user_input": "second"}))
	parseOutput(t, r)

	result, _ = h.HandleCurrent(ctx, makeRequest(nil))
	out := parseOutput(t, result)
	if out["user_input"] != "second" || out["markup"] != testMarkup {
		t.Errorf("current = %v", out)
	}

	result, _ = h.HandleCurrent(ctx, makeRequest(map[string]any{"id": first["id"]}))
	out = parseOutput(t, result)
	if out["user_input"] != "first" || out["number"] != float64(1) {
		t.Errorf("record = %v", out)
	}

	result, _ = h.HandleCurrent(ctx, makeRequest(map[string]any{"id": "missing"}))
	assertErrorCode(t, result, string(errors.ErrNotFound))
}

func TestServerRegistration(t *testing.T) {
	s := NewServer(Deps{
		Catalog:   prompts.Default(),
		Generator: llm.Mock{},
		Version:   "test",
	})
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{"card_styles", "card_generate", "card_history", "card_current"}
	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}
	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
	if len(AllToolNames()) != len(expectedTools) {
		t.Errorf("AllToolNames() = %v", AllToolNames())
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("open /etc/secret: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}
	assertErrorCode(t, r, string(errors.ErrInternal))

	var payload map[string]map[string]any
	if err := json.Unmarshal([]byte(extractErrorMessage(r)), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	if payload["error"]["message"] != "an internal error occurred" {
		t.Errorf("message = %v", payload["error"]["message"])
	}
}

func TestErrorResult_WrappedCardError(t *testing.T) {
	r := errorResult(fmt.Errorf("tool call: %w", errors.NewUnknownStyle("nope")))
	assertErrorCode(t, r, string(errors.ErrUnknownStyle))
}

func TestErrorResult_PlainErrorIsInternal(t *testing.T) {
	r := errorResult(fmt.Errorf("boom"))
	assertErrorCode(t, r, string(errors.ErrInternal))
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected IsError=true")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(extractErrorMessage(result)), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	if code, _ := errorObj["code"].(string); code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}
	return text.Text
}
