package generation

import (
	"encoding/json"
	"fmt"

	"github.com/richinex/slidesmith/deck"
)

// EventType tags a progress event on the wire.
type EventType string

const (
	EventThinking EventType = "thinking"
	EventSlides   EventType = "slides"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one progress event. Only the field matching Type is set.
type Event struct {
	Type    EventType
	Step    string
	Slides  []deck.Slide
	Message string
}

func Thinking(step string) Event { return Event{Type: EventThinking, Step: step} }

func Slides(slides []deck.Slide) Event {
	if slides == nil {
		slides = []deck.Slide{}
	}
	return Event{Type: EventSlides, Slides: slides}
}

func Complete() Event { return Event{Type: EventComplete} }

func Failure(message string) Event { return Event{Type: EventError, Message: message} }

// Terminal reports whether no event can follow this one.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventThinking:
		return json.Marshal(struct {
			Type EventType `json:"type"`
			Step string    `json:"step"`
		}{e.Type, e.Step})
	case EventSlides:
		slides := e.Slides
		if slides == nil {
			slides = []deck.Slide{}
		}
		return json.Marshal(struct {
			Type   EventType    `json:"type"`
			Slides []deck.Slide `json:"slides"`
		}{e.Type, slides})
	case EventComplete:
		return json.Marshal(struct {
			Type EventType `json:"type"`
		}{e.Type})
	case EventError:
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Message string    `json:"message"`
		}{e.Type, e.Message})
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var wire struct {
		Type    EventType    `json:"type"`
		Step    string       `json:"step"`
		Slides  []deck.Slide `json:"slides"`
		Message string       `json:"message"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch wire.Type {
	case EventThinking, EventSlides, EventComplete, EventError:
	default:
		return fmt.Errorf("unknown event type %q", wire.Type)
	}
	*e = Event{Type: wire.Type, Step: wire.Step, Slides: wire.Slides, Message: wire.Message}
	return nil
}
