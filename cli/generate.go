package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/richinex/slidesmith/generation"
)

// ErrGenerationFailed is returned when the run ended with an error event.
var ErrGenerationFailed = errors.New("generation failed")

// Generate runs one generation locally and writes each event to out as a
// JSON line, the same frames a WebSocket client receives.
func Generate(ctx context.Context, app *App, prompt string, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	enc := json.NewEncoder(out)

	var failure string
	for ev := range app.Generator.Generate(ctx, prompt) {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
		if ev.Type == generation.EventError {
			failure = ev.Message
		}
	}

	if failure != "" {
		return fmt.Errorf("%w: %s", ErrGenerationFailed, failure)
	}
	return ctx.Err()
}
