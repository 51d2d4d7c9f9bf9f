package llm

import (
	"os"
	"testing"
)

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		input   string
		want    ProviderType
		wantErr bool
	}{
		{input: "openai", want: ProviderOpenAI},
		{input: "GPT", want: ProviderOpenAI},
		{input: "claude", want: ProviderAnthropic},
		{input: " anthropic ", want: ProviderAnthropic},
		{input: "deepseek", want: ProviderDeepSeek},
		{input: "google", want: ProviderGemini},
		{input: "llama", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProviderType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseProviderType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseProviderType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuilderDefaultsModel(t *testing.T) {
	provider, err := ProviderOpenAI.APIKey("sk-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Model() != ModelOpenAIGPT51 {
		t.Errorf("expected default model %q, got %q", ModelOpenAIGPT51, provider.Model())
	}
	if provider.Name() != "openai" {
		t.Errorf("expected openai, got %q", provider.Name())
	}
}

func TestBuilderCustomModel(t *testing.T) {
	provider, err := ProviderAnthropic.Model(ModelAnthropicClaudeSonnet4).APIKey("sk-ant-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Model() != ModelAnthropicClaudeSonnet4 {
		t.Errorf("expected %q, got %q", ModelAnthropicClaudeSonnet4, provider.Model())
	}
}

func TestBuilderRejectsEmptyKey(t *testing.T) {
	if _, err := ProviderOpenAI.APIKey(""); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestFromEnvMissingKey(t *testing.T) {
	original := os.Getenv("DEEPSEEK_API_KEY")
	os.Unsetenv("DEEPSEEK_API_KEY")
	defer os.Setenv("DEEPSEEK_API_KEY", original)

	if _, err := ProviderDeepSeek.FromEnv(); err == nil {
		t.Error("expected error when DEEPSEEK_API_KEY is unset")
	}
}
