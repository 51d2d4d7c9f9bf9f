// Security tests for LLM providers to ensure error messages don't leak API keys.
package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
)

// authRejector answers every request with 401 and records the credential
// header it was sent.
type authRejector struct {
	header string
	got    string
	body   string
}

func (a *authRejector) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.got = r.Header.Get(a.header)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(a.body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const openAIUnauthorized = `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`

func assertNoKeyLeak(t *testing.T, err error, key string, headers ...string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error for a rejected API key")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "401") {
		t.Errorf("expected status code in error, got: %v", errStr)
	}
	if strings.Contains(errStr, key) {
		t.Errorf("error message leaked API key: %v", errStr)
	}
	for _, h := range headers {
		if strings.Contains(errStr, h) {
			t.Errorf("error exposed %s header: %v", h, errStr)
		}
	}
}

func chatOnce(t *testing.T, p Provider) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := p.Chat(ctx, []ChatMessage{UserMessage("test")})
	return err
}

func TestOpenAIErrorNoAPIKeyLeak(t *testing.T) {
	testKey := "sk-test-invalid-key-12345xyz"
	rejector := &authRejector{header: "Authorization", body: openAIUnauthorized}
	srv := rejector.start(t)

	provider := NewOpenAIProviderWithBaseURL(testKey, srv.URL+"/v1", "gpt-test", 100, 0.7)
	err := chatOnce(t, provider)

	assertNoKeyLeak(t, err, testKey, "Authorization:", "Bearer ")
	if rejector.got != "Bearer "+testKey {
		t.Errorf("expected bearer credential to reach the server, got %q", rejector.got)
	}
}

func TestAnthropicErrorNoAPIKeyLeak(t *testing.T) {
	testKey := "sk-ant-REDACTED"
	rejector := &authRejector{
		header: "X-Api-Key",
		body:   `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
	}
	srv := rejector.start(t)

	provider := NewAnthropicProviderWithOptions(testKey, "claude-test", 100, 0.7,
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	err := chatOnce(t, provider)

	assertNoKeyLeak(t, err, testKey, "x-api-key:", "X-Api-Key:")
	if rejector.got != testKey {
		t.Errorf("expected x-api-key to reach the server, got %q", rejector.got)
	}
}

func TestDeepSeekErrorNoAPIKeyLeak(t *testing.T) {
	testKey := "sk-test-invalid-key-12345xyz"
	rejector := &authRejector{header: "Authorization", body: openAIUnauthorized}
	srv := rejector.start(t)

	provider := NewDeepSeekProviderWithBaseURL(testKey, srv.URL+"/v1", "deepseek-chat", 100, 0.7)
	if provider.Name() != "deepseek" {
		t.Errorf("expected deepseek name, got %q", provider.Name())
	}
	err := chatOnce(t, provider)

	assertNoKeyLeak(t, err, testKey, "Authorization:")
}

func TestGeminiErrorNoAPIKeyLeak(t *testing.T) {
	testKey := "test-invalid-key-12345xyz"
	rejector := &authRejector{
		header: "X-Goog-Api-Key",
		body:   `{"error":{"code":401,"message":"API key not valid","status":"UNAUTHENTICATED"}}`,
	}
	srv := rejector.start(t)

	provider := NewGeminiProviderWithBaseURL(testKey, srv.URL+"/", "gemini-test", 100, 0.7)
	err := chatOnce(t, provider)

	assertNoKeyLeak(t, err, testKey, "x-goog-api-key:")
	if rejector.got != testKey {
		t.Errorf("expected x-goog-api-key to reach the server, got %q", rejector.got)
	}
}

// TestGeminiInitErrorPreserved verifies Gemini returns initialization errors
func TestGeminiInitErrorPreserved(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	provider := NewGeminiProvider("", "gemini-2.5-flash", 100, 0.7)

	err := chatOnce(t, provider)
	if err == nil {
		t.Fatal("Expected initialization error to be returned, got nil")
	}
	if !strings.Contains(err.Error(), "failed to initialize") {
		t.Errorf("Expected initialization error, got: %v", err)
	}
}

// TestToolCallErrorNoAPIKeyLeak verifies tool call errors don't leak API keys
func TestToolCallErrorNoAPIKeyLeak(t *testing.T) {
	testKey := "sk-test-invalid-key-12345xyz"
	rejector := &authRejector{header: "Authorization", body: openAIUnauthorized}
	srv := rejector.start(t)

	provider := NewOpenAIProviderWithBaseURL(testKey, srv.URL+"/v1", "gpt-test", 100, 0.7)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tools := []ToolDefinition{{
		Name:        "search_web",
		Description: "Search the web",
		Parameters:  map[string]interface{}{"type": "object"},
	}}
	_, err := provider.ChatWithTools(ctx, []ChatMessage{UserMessage("test")}, tools, ToolChoiceAuto)

	assertNoKeyLeak(t, err, testKey)
}

func TestBuilderBaseURLReachesProvider(t *testing.T) {
	testKey := "sk-test-invalid-key-12345xyz"
	rejector := &authRejector{header: "Authorization", body: openAIUnauthorized}
	srv := rejector.start(t)

	provider, err := NewProviderBuilder(ProviderDeepSeek).BaseURL(srv.URL + "/v1").APIKey(testKey)
	if err != nil {
		t.Fatal(err)
	}
	assertNoKeyLeak(t, chatOnce(t, provider), testKey)
	if rejector.got == "" {
		t.Error("expected the request to hit the configured base URL")
	}
}
