package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/richinex/slidesmith/search"
)

// WebSearcher is satisfied by *search.Searcher.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) []search.Result
}

// ImageFinder is satisfied by *images.Finder.
type ImageFinder interface {
	Find(ctx context.Context, query string, maxResults int) []string
}

// SearchWebTool answers with the formatted result listing.
type SearchWebTool struct {
	searcher WebSearcher
}

func NewSearchWebTool(searcher WebSearcher) *SearchWebTool {
	return &SearchWebTool{searcher: searcher}
}

func (t *SearchWebTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        SearchWebName,
		Description: "Search the web for information about a topic. Use this to find facts, statistics, and current information.",
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "The search query", Required: true},
			{Name: "max_results", ParamType: "integer", Description: "Maximum number of results to return (default 5)", Default: DefaultSearchResults},
		},
	}
}

func (t *SearchWebTool) Execute(ctx context.Context, call Call) ToolResult {
	c, ok := call.(SearchWebCall)
	if !ok {
		return FailureResult(&CallError{Tool: SearchWebName, Err: ErrInvalidArguments, Detail: fmt.Sprintf("unexpected call %T", call)})
	}
	return SuccessResult(search.Format(t.searcher.Search(ctx, c.Query, c.MaxResults)))
}

// SearchImagesTool answers with the URL list as a JSON array.
type SearchImagesTool struct {
	finder ImageFinder
}

func NewSearchImagesTool(finder ImageFinder) *SearchImagesTool {
	return &SearchImagesTool{finder: finder}
}

func (t *SearchImagesTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        SearchImagesName,
		Description: "Search for relevant images for a slide. Returns image URLs.",
		Parameters: []ToolParameter{
			{Name: "query", ParamType: "string", Description: "Description of the image needed", Required: true},
			{Name: "max_results", ParamType: "integer", Description: "Number of images to return (default 3)", Default: DefaultImageResults},
		},
	}
}

func (t *SearchImagesTool) Execute(ctx context.Context, call Call) ToolResult {
	c, ok := call.(SearchImagesCall)
	if !ok {
		return FailureResult(&CallError{Tool: SearchImagesName, Err: ErrInvalidArguments, Detail: fmt.Sprintf("unexpected call %T", call)})
	}
	urls := t.finder.Find(ctx, c.Query, c.MaxResults)
	if urls == nil {
		urls = []string{}
	}
	out, err := json.Marshal(urls)
	if err != nil {
		return FailureResult(err)
	}
	return SuccessResult(string(out))
}

var (
	_ Tool = (*SearchWebTool)(nil)
	_ Tool = (*SearchImagesTool)(nil)
)
