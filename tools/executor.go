// Tool executor for one dispatch round.
//
// Information Hiding:
// - Concurrency of independent calls hidden
// - Per-call timeout hidden
// - Rejection of bad calls folded into ordinary results

package tools

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/richinex/slidesmith/llm"
)

// DefaultCallTimeout bounds one tool call end to end. It must leave room
// for the adapters' own per-backend timeouts across their fallback tiers.
const DefaultCallTimeout = 30 * time.Second

// Outcome pairs a requested call with what it produced. Call is nil when
// the request was rejected, in which case Result carries a *CallError.
type Outcome struct {
	Request llm.ToolCall
	Call    Call
	Result  ToolResult
}

// Message is the tool-result message appended to the conversation.
func (o Outcome) Message() llm.ChatMessage {
	return llm.ToolResultMessage(o.Request.ID, o.Request.Name, o.Result.Content())
}

// Executor runs the calls of one tool round concurrently while keeping
// results in request order.
type Executor struct {
	registry    *Registry
	timeout     time.Duration
	concurrency int
}

// NewExecutor creates an executor. A concurrency of zero or less means no
// limit beyond the number of calls.
func NewExecutor(registry *Registry, timeout time.Duration, concurrency int) *Executor {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Executor{
		registry:    registry,
		timeout:     timeout,
		concurrency: concurrency,
	}
}

// Prepare decodes every request up front. Rejected requests get a failed
// Outcome without a Call.
func (e *Executor) Prepare(requests []llm.ToolCall) []Outcome {
	outcomes := make([]Outcome, len(requests))
	for i, req := range requests {
		outcomes[i].Request = req

		if !e.registry.Has(req.Name) {
			outcomes[i].Result = FailureResult(&CallError{Tool: req.Name, Err: ErrUnknownTool})
			continue
		}
		call, err := ParseCall(req.Name, req.Arguments)
		if err != nil {
			outcomes[i].Result = FailureResult(err)
			continue
		}
		outcomes[i].Call = call
	}
	return outcomes
}

// Run executes every prepared call and fills in its Result. Tools absorb
// their own failures, so Run only returns when ctx is done first.
func (e *Executor) Run(ctx context.Context, outcomes []Outcome) error {
	g, gctx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}

	for i := range outcomes {
		if outcomes[i].Call == nil {
			continue
		}
		i := i
		g.Go(func() error {
			tool, _ := e.registry.Get(outcomes[i].Request.Name)
			outcomes[i].Result = e.execute(gctx, tool, outcomes[i].Call)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (e *Executor) execute(ctx context.Context, tool Tool, call Call) ToolResult {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	return tool.Execute(ctx, call)
}
