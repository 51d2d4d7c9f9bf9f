// Package deck defines the slide model returned to clients and parses it
// out of the model's final answer.
package deck

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonutil "github.com/richinex/slidesmith/internal/json"
)

// SlideType tags a slide layout.
type SlideType string

const (
	TypeTitle   SlideType = "title"
	TypeBullet  SlideType = "bullet"
	TypeSplit   SlideType = "split"
	TypeBigData SlideType = "bigdata"
	TypeQuote   SlideType = "quote"
)

// Known reports whether t is one of the layouts the renderer understands.
func (t SlideType) Known() bool {
	switch t {
	case TypeTitle, TypeBullet, TypeSplit, TypeBigData, TypeQuote:
		return true
	}
	return false
}

// Target deck size the model is asked for. Not enforced.
const (
	MinSlides = 4
	MaxSlides = 6
)

// Slide is one slide. Which optional fields are meaningful depends on Type.
type Slide struct {
	Type  SlideType `json:"type"`
	Title Scalar    `json:"title"`

	// title
	Subtitle        Scalar `json:"subtitle,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`

	// bullet
	Items Bullets `json:"items,omitempty"`

	// split
	Text     Scalar `json:"text,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`

	// bigdata
	Number  Scalar `json:"number,omitempty"`
	Caption Scalar `json:"caption,omitempty"`

	// quote
	Quote  Scalar `json:"quote,omitempty"`
	Author Scalar `json:"author,omitempty"`
}

// Scalar is a display string that models also send as a bare number or
// boolean ("number": 73, "title": 2024). It always marshals as a string.
type Scalar string

func (s *Scalar) UnmarshalJSON(data []byte) error {
	v, err := decodeScalar(data)
	if err != nil {
		return err
	}
	*s = Scalar(v)
	return nil
}

func decodeScalar(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		return "", nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		return string(data), nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", fmt.Errorf("expected a string or a number, got %.20s", data)
	}
	return n.String(), nil
}

// Bullets are the items of a bullet slide. A single string is accepted as a
// one-item list.
type Bullets []string

func (b *Bullets) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		v, err := decodeScalar(data)
		if err != nil {
			return err
		}
		if v == "" {
			*b = nil
		} else {
			*b = Bullets{v}
		}
		return nil
	}

	var raw []Scalar
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	items := make(Bullets, len(raw))
	for i, r := range raw {
		items[i] = string(r)
	}
	*b = items
	return nil
}

type answer struct {
	Slides []Slide `json:"slides"`
}

// Parse extracts the deck from the model's final answer. A JSON object
// without a "slides" key is an empty deck, not an error.
func Parse(content string) ([]Slide, error) {
	parsed, err := jsonutil.ExtractJSONFromResponse[answer](content)
	if err != nil {
		return nil, err
	}
	if parsed.Slides == nil {
		return []Slide{}, nil
	}
	return parsed.Slides, nil
}

// InTargetRange reports whether the deck size is within MinSlides..MaxSlides.
func InTargetRange(slides []Slide) bool {
	return len(slides) >= MinSlides && len(slides) <= MaxSlides
}
