package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type capturedRequest struct {
	Model          string                   `json:"model"`
	Messages       []map[string]interface{} `json:"messages"`
	Tools          []map[string]interface{} `json:"tools"`
	ToolChoice     interface{}              `json:"tool_choice"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func newChatServer(t *testing.T, reply string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
}

func TestOpenAIChatWithToolsParsesToolCalls(t *testing.T) {
	var captured capturedRequest
	srv := newChatServer(t, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"choices": [{
			"index": 0,
			"finish_reason": "tool_calls",
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [
					{"id": "call_1", "type": "function", "function": {"name": "search_web", "arguments": "{\"query\":\"solar\"}"}},
					{"id": "call_2", "type": "function", "function": {"name": "search_images", "arguments": "{\"query\":\"wind farm\"}"}}
				]
			}
		}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`, &captured)
	defer srv.Close()

	provider := NewOpenAIProviderWithBaseURL("sk-test", srv.URL+"/v1", "gpt-test", 256, 0)
	tools := []ToolDefinition{{
		Name:        "search_web",
		Description: "search",
		Parameters:  map[string]interface{}{"type": "object"},
	}}

	resp, err := provider.ChatWithTools(context.Background(), []ChatMessage{
		SystemMessage("system"),
		UserMessage("renewable energy"),
	}, tools, ToolChoiceAuto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.HasToolCalls() || len(resp.ToolCalls) != 2 {
		t.Fatalf("expected 2 tool calls, got %+v", resp.ToolCalls)
	}
	if resp.ToolCalls[0].ID != "call_1" || resp.ToolCalls[0].Name != "search_web" {
		t.Errorf("unexpected first call: %+v", resp.ToolCalls[0])
	}
	if string(resp.ToolCalls[1].Arguments) != `{"query":"wind farm"}` {
		t.Errorf("unexpected arguments: %s", resp.ToolCalls[1].Arguments)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}

	if captured.Model != "gpt-test" {
		t.Errorf("expected model gpt-test, got %q", captured.Model)
	}
	if captured.ToolChoice != "auto" {
		t.Errorf("expected tool_choice auto, got %v", captured.ToolChoice)
	}
	if len(captured.Tools) != 1 {
		t.Errorf("expected 1 tool sent, got %d", len(captured.Tools))
	}
	if captured.ResponseFormat != nil {
		t.Errorf("expected no response_format on tool round, got %+v", captured.ResponseFormat)
	}
}

func TestOpenAIChatWithFormatSendsToolHistory(t *testing.T) {
	var captured capturedRequest
	srv := newChatServer(t, `{
		"id": "chatcmpl-2",
		"object": "chat.completion",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"slides\":[]}"}}]
	}`, &captured)
	defer srv.Close()

	provider := NewOpenAIProviderWithBaseURL("sk-test", srv.URL+"/v1", "gpt-test", 256, 0)
	messages := []ChatMessage{
		SystemMessage("system"),
		UserMessage("prompt"),
		AssistantToolCallMessage("", []ToolCall{{ID: "call_1", Name: "search_web", Arguments: json.RawMessage(`{"query":"q"}`)}}),
		ToolResultMessage("call_1", "search_web", "No search results found."),
	}

	resp, err := provider.ChatWithFormat(context.Background(), messages, NewJSONObjectFormat())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != `{"slides":[]}` {
		t.Errorf("unexpected content %q", resp.Content)
	}

	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Errorf("expected json_object response format, got %+v", captured.ResponseFormat)
	}
	if len(captured.Tools) != 0 {
		t.Errorf("expected no tools on final round, got %d", len(captured.Tools))
	}
	if len(captured.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[2]["tool_calls"] == nil {
		t.Error("expected assistant tool_calls to be forwarded")
	}
	if captured.Messages[3]["tool_call_id"] != "call_1" {
		t.Errorf("expected tool_call_id call_1, got %v", captured.Messages[3]["tool_call_id"])
	}
}

func TestOpenAIChatPropagatesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	provider := NewOpenAIProviderWithBaseURL("sk-test", srv.URL+"/v1", "gpt-test", 256, 0)
	_, err := provider.Chat(context.Background(), []ChatMessage{UserMessage("hi")})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestDeepSeekProviderName(t *testing.T) {
	provider := NewDeepSeekProvider("sk-test", ModelDeepSeekChat, 100, 0)
	if provider.Name() != "deepseek" {
		t.Errorf("expected name deepseek, got %q", provider.Name())
	}
	if provider.Model() != ModelDeepSeekChat {
		t.Errorf("expected model %q, got %q", ModelDeepSeekChat, provider.Model())
	}
}
