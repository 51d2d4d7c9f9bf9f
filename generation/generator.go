// Package generation turns a prompt into a slide deck by running one bounded
// tool-calling conversation with the model and reporting progress as events.
//
// A request moves through: analyze, first completion, at most one tool
// round, final JSON completion, parse. Every path ends in exactly one
// terminal event: Complete after Slides, or Error.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/richinex/slidesmith/deck"
	"github.com/richinex/slidesmith/internal/logger"
	"github.com/richinex/slidesmith/llm"
	"github.com/richinex/slidesmith/tools"
)

// Client-facing messages.
const (
	StepAnalyzing    = "Analyzing request..."
	StepSynthesizing = "Synthesizing information..."
	StepDesigning    = "Designing slides..."

	MsgNoProvider  = "No LLM provider configured"
	MsgParseFailed = "Failed to parse LLM response"
)

var (
	ErrNoProvider = errors.New("no LLM provider configured")
	ErrParse      = errors.New("failed to parse LLM response")
)

// Generator runs generations. It holds only read-only collaborators and is
// safe for concurrent use; each Generate call owns its own conversation.
type Generator struct {
	provider llm.Provider
	registry *tools.Registry
	executor *tools.Executor
	logger   *logger.Logger
}

// New creates a generator. provider may be nil; every request then fails
// with MsgNoProvider.
func New(provider llm.Provider, registry *tools.Registry, executor *tools.Executor, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{
		provider: provider,
		registry: registry,
		executor: executor,
		logger:   log,
	}
}

// Generate starts a generation and returns its events. The channel is
// closed after the terminal event, or early once ctx is done. Callers must
// drain it or cancel ctx.
func (g *Generator) Generate(ctx context.Context, prompt string) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		r := &run{
			Generator: g,
			ctx:       ctx,
			events:    events,
			log:       g.logger.With("request_id", uuid.NewString()),
		}
		r.execute(prompt)
	}()
	return events
}

// run is the state of one generation.
type run struct {
	*Generator
	ctx    context.Context
	events chan<- Event
	log    *logger.Logger
}

// emit delivers ev unless the consumer went away.
func (r *run) emit(ev Event) bool {
	select {
	case r.events <- ev:
		return true
	case <-r.ctx.Done():
		return false
	}
}

func (r *run) fail(err error, message string) {
	r.log.Error("generation failed", "error", err)
	r.emit(Failure(message))
}

func (r *run) execute(prompt string) {
	start := time.Now()

	if r.provider == nil {
		r.fail(ErrNoProvider, MsgNoProvider)
		return
	}
	if !r.emit(Thinking(StepAnalyzing)) {
		return
	}

	messages := []llm.ChatMessage{
		llm.SystemMessage(SystemPrompt),
		llm.UserMessage(prompt),
	}

	first, err := r.provider.ChatWithTools(r.ctx, messages, r.registry.Definitions(), llm.ToolChoiceAuto)
	if err != nil {
		r.fail(err, err.Error())
		return
	}

	content := first.Content
	if first.HasToolCalls() {
		messages, err = r.dispatch(messages, first)
		if err != nil {
			// Only a cancelled context stops a tool round; nobody is listening.
			r.log.Warn("tool round abandoned", "error", err)
			return
		}
		if !r.emit(Thinking(StepDesigning)) {
			return
		}

		final, err := r.provider.ChatWithFormat(r.ctx, messages, llm.NewJSONObjectFormat())
		if err != nil {
			r.fail(err, err.Error())
			return
		}
		if final.HasToolCalls() {
			r.log.Warn("ignoring tool calls in final completion", "count", len(final.ToolCalls))
		}
		content = final.Content
	}

	slides, err := deck.Parse(content)
	if err != nil {
		r.fail(fmt.Errorf("%w: %v", ErrParse, err), MsgParseFailed)
		return
	}
	if !deck.InTargetRange(slides) {
		r.log.Warn("deck size outside target",
			"slides", len(slides),
			"min", deck.MinSlides,
			"max", deck.MaxSlides,
		)
	}
	for i, slide := range slides {
		if !slide.Type.Known() {
			r.log.Warn("unknown slide type", "index", i, "type", slide.Type)
		}
	}

	if !r.emit(Slides(slides)) {
		return
	}
	if r.emit(Complete()) {
		r.log.Info("generation complete",
			"slides", len(slides),
			"provider", r.provider.Name(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// dispatch runs the single tool round and returns the conversation with the
// assistant turn and one result per requested call appended.
func (r *run) dispatch(messages []llm.ChatMessage, resp llm.LLMResponse) ([]llm.ChatMessage, error) {
	outcomes := r.executor.Prepare(resp.ToolCalls)

	searched := false
	for _, o := range outcomes {
		switch c := o.Call.(type) {
		case tools.SearchWebCall:
			searched = true
			if !r.emit(Thinking(fmt.Sprintf("Searching: %s...", c.Query))) {
				return nil, r.ctx.Err()
			}
		case tools.SearchImagesCall:
			if !r.emit(Thinking(fmt.Sprintf("Finding images: %s...", c.Query))) {
				return nil, r.ctx.Err()
			}
		default:
			r.log.Warn("rejected tool call",
				"tool", o.Request.Name,
				"call_id", o.Request.ID,
				"error", o.Result.Error,
			)
		}
	}

	if err := r.executor.Run(r.ctx, outcomes); err != nil {
		return nil, err
	}

	messages = append(messages, llm.AssistantToolCallMessage(resp.Content, resp.ToolCalls))
	for _, o := range outcomes {
		if o.Call != nil && !o.Result.Success() {
			r.log.Warn("tool call failed",
				"tool", o.Request.Name,
				"call_id", o.Request.ID,
				"error", o.Result.Error,
			)
		}
		messages = append(messages, o.Message())
	}

	if searched && !r.emit(Thinking(StepSynthesizing)) {
		return nil, r.ctx.Err()
	}
	return messages, nil
}
