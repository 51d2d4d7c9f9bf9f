// Package tools declares the callable tools handed to the model and runs
// the calls it requests.
//
// Information Hiding:
// - Argument decoding and validation hidden behind ParseCall
// - Adapter wiring hidden inside each tool
// - Concurrency of a dispatch round hidden in Executor
package tools

import (
	"context"
	"fmt"

	"github.com/richinex/slidesmith/llm"
)

// ToolParameter defines a parameter schema for a tool.
type ToolParameter struct {
	Name        string      `json:"name"`
	ParamType   string      `json:"param_type"`
	Description string      `json:"description"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
}

// ToolMetadata describes what a tool does and how to use it.
type ToolMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// Definition converts the metadata to the JSON-schema form providers expect.
func (m ToolMetadata) Definition() llm.ToolDefinition {
	properties := make(map[string]interface{}, len(m.Parameters))
	required := make([]interface{}, 0, len(m.Parameters))

	for _, p := range m.Parameters {
		prop := map[string]interface{}{
			"type":        p.ParamType,
			"description": p.Description,
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return llm.ToolDefinition{
		Name:        m.Name,
		Description: m.Description,
		Parameters: map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

// ToolResult represents the result of a tool execution.
// Success is determined by whether Error is nil.
type ToolResult struct {
	Output string `json:"output"`
	Error  error  `json:"-"`
}

// Success reports whether the tool produced output.
func (t ToolResult) Success() bool {
	return t.Error == nil
}

// Content is what goes back to the model in the tool-result message.
func (t ToolResult) Content() string {
	if t.Error != nil {
		return "Error: " + t.Error.Error()
	}
	return t.Output
}

func SuccessResult(output string) ToolResult {
	return ToolResult{Output: output}
}

func FailureResult(err error) ToolResult {
	return ToolResult{Error: err}
}

// Tool is the interface that all tools must implement.
type Tool interface {
	// Metadata returns tool metadata (name, description, parameters).
	Metadata() ToolMetadata

	// Execute runs a call already decoded by ParseCall.
	Execute(ctx context.Context, call Call) ToolResult
}
