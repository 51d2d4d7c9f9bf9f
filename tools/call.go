package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	SearchWebName    = "search_web"
	SearchImagesName = "search_images"

	DefaultSearchResults = 5
	DefaultImageResults  = 3

	// maxResultsCap bounds what the model may ask for in one call.
	maxResultsCap = 10
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid arguments")
)

// CallError is a rejected tool call. It wraps ErrUnknownTool or
// ErrInvalidArguments.
type CallError struct {
	Tool   string
	Err    error
	Detail string
}

func (e *CallError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Tool)
	}
	return fmt.Sprintf("%v for %s: %s", e.Err, e.Tool, e.Detail)
}

func (e *CallError) Unwrap() error { return e.Err }

// Call is a decoded, validated tool call. The concrete type identifies the
// tool: SearchWebCall or SearchImagesCall.
type Call interface {
	ToolName() string
	QueryText() string
}

type SearchWebCall struct {
	Query      string `mapstructure:"query"`
	MaxResults int    `mapstructure:"max_results"`
}

func (c SearchWebCall) ToolName() string  { return SearchWebName }
func (c SearchWebCall) QueryText() string { return c.Query }

type SearchImagesCall struct {
	Query      string `mapstructure:"query"`
	MaxResults int    `mapstructure:"max_results"`
}

func (c SearchImagesCall) ToolName() string  { return SearchImagesName }
func (c SearchImagesCall) QueryText() string { return c.Query }

// ParseCall decodes raw model arguments into the variant for name.
func ParseCall(name string, arguments json.RawMessage) (Call, error) {
	switch name {
	case SearchWebName:
		var c SearchWebCall
		if err := decodeArgs(name, arguments, &c); err != nil {
			return nil, err
		}
		q, n, err := validateQuery(name, c.Query, c.MaxResults, DefaultSearchResults)
		if err != nil {
			return nil, err
		}
		c.Query, c.MaxResults = q, n
		return c, nil

	case SearchImagesName:
		var c SearchImagesCall
		if err := decodeArgs(name, arguments, &c); err != nil {
			return nil, err
		}
		q, n, err := validateQuery(name, c.Query, c.MaxResults, DefaultImageResults)
		if err != nil {
			return nil, err
		}
		c.Query, c.MaxResults = q, n
		return c, nil

	default:
		return nil, &CallError{Tool: name, Err: ErrUnknownTool}
	}
}

func decodeArgs(name string, arguments json.RawMessage, out interface{}) error {
	raw := map[string]interface{}{}
	if len(strings.TrimSpace(string(arguments))) > 0 {
		if err := json.Unmarshal(arguments, &raw); err != nil {
			return &CallError{Tool: name, Err: ErrInvalidArguments, Detail: "arguments are not a JSON object"}
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return &CallError{Tool: name, Err: ErrInvalidArguments, Detail: err.Error()}
	}
	return nil
}

func validateQuery(name, query string, maxResults, def int) (string, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", 0, &CallError{Tool: name, Err: ErrInvalidArguments, Detail: "query is required"}
	}
	if maxResults < 0 {
		return "", 0, &CallError{Tool: name, Err: ErrInvalidArguments, Detail: "max_results must be positive"}
	}
	if maxResults == 0 {
		maxResults = def
	}
	if maxResults > maxResultsCap {
		maxResults = maxResultsCap
	}
	return query, maxResults, nil
}
