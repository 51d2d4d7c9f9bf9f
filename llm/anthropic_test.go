package llm

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func toolHistory() []ChatMessage {
	return []ChatMessage{
		SystemMessage("be helpful"),
		UserMessage("make slides"),
		AssistantToolCallMessage("", []ToolCall{
			{ID: "toolu_1", Name: "search_web", Arguments: json.RawMessage(`{"query":"solar"}`)},
			{ID: "toolu_2", Name: "search_images", Arguments: json.RawMessage(`{"query":"sun"}`)},
		}),
		ToolResultMessage("toolu_1", "search_web", "1. Solar"),
		ToolResultMessage("toolu_2", "search_images", `["https://img/1"]`),
	}
}

func TestConvertToAnthropicMessagesMergesToolResults(t *testing.T) {
	messages, system := convertToAnthropicMessages(toolHistory(), true)

	if system != "be helpful" {
		t.Errorf("expected system prompt to be extracted, got %q", system)
	}
	if len(messages) != 3 {
		t.Fatalf("expected user/assistant/user turns, got %d", len(messages))
	}
	if messages[1].Role != anthropic.MessageParamRoleAssistant || len(messages[1].Content) != 2 {
		t.Errorf("expected assistant turn with 2 tool_use blocks, got %+v", messages[1])
	}
	if messages[2].Role != anthropic.MessageParamRoleUser || len(messages[2].Content) != 2 {
		t.Fatalf("expected both tool results in one user turn, got %+v", messages[2])
	}
	if messages[2].Content[0].OfToolResult == nil {
		t.Error("expected tool_result block")
	}
}

func TestConvertToAnthropicMessagesFlattensWithoutTools(t *testing.T) {
	messages, _ := convertToAnthropicMessages(toolHistory(), false)

	for _, msg := range messages {
		for _, block := range msg.Content {
			if block.OfToolUse != nil || block.OfToolResult != nil {
				t.Fatalf("expected only text blocks, got %+v", block)
			}
		}
	}
	if len(messages) != 3 {
		t.Errorf("expected 3 alternating turns, got %d", len(messages))
	}
}

func TestConvertToAnthropicToolChoice(t *testing.T) {
	if convertToAnthropicToolChoice(ToolChoiceAuto).OfAuto == nil {
		t.Error("expected auto tool choice")
	}
	if convertToAnthropicToolChoice(ToolChoiceRequired).OfAny == nil {
		t.Error("expected any tool choice for required")
	}
}

func TestConvertToAnthropicToolsKeepsRequired(t *testing.T) {
	tests := []struct {
		name     string
		required interface{}
	}{
		{"generic slice", []interface{}{"query"}},
		{"string slice", []string{"query"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := []ToolDefinition{{
				Name:        "search_web",
				Description: "search",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"query": map[string]interface{}{"type": "string"},
					},
					"required": tt.required,
				},
			}}

			converted := convertToAnthropicTools(defs)
			if len(converted) != 1 || converted[0].OfTool == nil {
				t.Fatalf("expected one tool, got %+v", converted)
			}
			got := converted[0].OfTool.InputSchema.Required
			if len(got) != 1 || got[0] != "query" {
				t.Errorf("expected required [query], got %v", got)
			}
			if _, ok := converted[0].OfTool.InputSchema.Properties.(map[string]interface{})["query"]; !ok {
				t.Error("expected query property to survive conversion")
			}
		})
	}
}

func TestSchemaRequiredIgnoresOtherShapes(t *testing.T) {
	if got := schemaRequired(nil); got != nil {
		t.Errorf("expected nil for missing required, got %v", got)
	}
	if got := schemaRequired([]interface{}{"query", 3}); len(got) != 1 || got[0] != "query" {
		t.Errorf("expected non-string entries to be dropped, got %v", got)
	}
}
