package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/richinex/slidesmith/config"
	"github.com/richinex/slidesmith/generation"
	"github.com/richinex/slidesmith/llm"
)

func testSettings() config.Settings {
	settings := config.Defaults()
	settings.LLM.Model = "gpt-5.1"
	return settings
}

func TestBuild_NoCredentials(t *testing.T) {
	app, err := Build(testSettings(), nil)
	require.NoError(t, err)

	assert.Nil(t, app.Provider)
	assert.Equal(t, []string{"search_images", "search_web"}, app.Registry.Names())
	assert.NotNil(t, app.Generator)
	assert.NotNil(t, app.Limiter)
}

func TestBuild_WithProviderKey(t *testing.T) {
	settings := testSettings()
	settings.LLM.APIKey = "sk-test"

	app, err := Build(settings, nil)
	require.NoError(t, err)
	require.NotNil(t, app.Provider)
	assert.Equal(t, "openai", app.Provider.Name())
	assert.Equal(t, "gpt-5.1", app.Provider.Model())
}

func TestCreateProvider_MissingKey(t *testing.T) {
	_, err := createProvider(testSettings())
	assert.ErrorIs(t, err, generation.ErrNoProvider)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestGenerate_NoProviderPrintsErrorEvent(t *testing.T) {
	app, err := Build(testSettings(), nil)
	require.NoError(t, err)

	var out bytes.Buffer
	err = Generate(context.Background(), app, "renewable energy", &out)

	assert.True(t, errors.Is(err, ErrGenerationFailed))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)

	var ev generation.Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, generation.Failure(generation.MsgNoProvider), ev)
}

// directProvider answers with a deck without calling tools.
type directProvider struct{}

func (directProvider) Name() string  { return "direct" }
func (directProvider) Model() string { return "direct-1" }

func (directProvider) Chat(ctx context.Context, _ []llm.ChatMessage) (llm.LLMResponse, error) {
	return llm.LLMResponse{Content: `{"slides":[{"type":"title","title":"T"}]}`}, nil
}

func (p directProvider) ChatWithFormat(ctx context.Context, msgs []llm.ChatMessage, _ *llm.ResponseFormat) (llm.LLMResponse, error) {
	return p.Chat(ctx, msgs)
}

func (p directProvider) ChatWithTools(ctx context.Context, msgs []llm.ChatMessage, _ []llm.ToolDefinition, _ llm.ToolChoice) (llm.LLMResponse, error) {
	return p.Chat(ctx, msgs)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestGenerate_WriteFailureStopsGeneration(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	app, err := Build(testSettings(), nil)
	require.NoError(t, err)
	app.Generator = generation.New(directProvider{}, app.Registry, nil, nil)

	err = Generate(context.Background(), app, "renewable energy", failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdout closed")
	assert.False(t, errors.Is(err, ErrGenerationFailed))
}

func TestListTools(t *testing.T) {
	app, err := Build(testSettings(), nil)
	require.NoError(t, err)

	var out bytes.Buffer
	ListTools(&out, app.Registry, true)

	text := out.String()
	assert.Contains(t, text, "search_web")
	assert.Contains(t, text, "search_images")
	assert.Contains(t, text, "query*: string")
	assert.Contains(t, text, "max_results: integer")
}

func TestOptionsApply(t *testing.T) {
	t.Setenv("MODEL_NAME", "")
	t.Setenv("DEEPSEEK_MODEL", "")
	t.Setenv("DEEPSEEK_API_KEY", "ds")

	settings, err := Options{Provider: "deepseek", Verbose: true}.Apply(testSettings())
	require.NoError(t, err)
	assert.Equal(t, "deepseek", settings.LLM.Provider)
	assert.Equal(t, "deepseek-chat", settings.LLM.Model)
	assert.Equal(t, "ds", settings.LLM.APIKey)
	assert.Equal(t, "debug", settings.Log.Level)

	settings, err = Options{Model: "gpt-4o"}.Apply(testSettings())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", settings.LLM.Model)

	_, err = Options{Provider: "mystery"}.Apply(testSettings())
	assert.Error(t, err)
}
