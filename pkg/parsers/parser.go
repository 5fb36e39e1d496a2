package parsers

import (
	"strings"
)

// Markers are the structural tokens of the reasoning/answer grammar
type Markers struct {
	OpenReasoning  string `mapstructure:"open_reasoning" yaml:"open_reasoning" json:"open_reasoning"`
	CloseReasoning string `mapstructure:"close_reasoning" yaml:"close_reasoning" json:"close_reasoning"`
	OpenAnswer     string `mapstructure:"open_answer" yaml:"open_answer" json:"open_answer"`
	CloseAnswer    string `mapstructure:"close_answer" yaml:"close_answer" json:"close_answer"`
	// Boxed is the token marking the literal final answer
	Boxed string `mapstructure:"boxed" yaml:"boxed" json:"boxed"`
}

// DefaultMarkers returns the think/solution grammar used by the system prompt
func DefaultMarkers() Markers {
	return Markers{
		OpenReasoning:  "<think>",
		CloseReasoning: "</think>",
		OpenAnswer:     "<solution>",
		CloseAnswer:    "</solution>",
		Boxed:          "boxed",
	}
}

// Segments holds the reasoning and answer parts of a completion.
// A nil field means the marker delimiting it was not found.
type Segments struct {
	Reasoning *string
	Answer    *string
}

// HasReasoning reports whether the close-reasoning marker was found
func (s Segments) HasReasoning() bool {
	return s.Reasoning != nil
}

// HasAnswer reports whether the open-answer marker was found
func (s Segments) HasAnswer() bool {
	return s.Answer != nil
}

// SplitFirst splits text on the first occurrence of marker. It returns one
// part when the marker is absent (or empty) and two parts otherwise.
func SplitFirst(text, marker string) []string {
	if marker == "" {
		return []string{text}
	}
	return strings.SplitN(text, marker, 2)
}

// ParseSegments extracts the reasoning and answer segments. The reasoning is
// everything before the first close-reasoning marker; the answer is everything
// after the first open-answer marker, up to the next close-answer marker.
func ParseSegments(text string, markers Markers) Segments {
	var segs Segments

	if parts := SplitFirst(text, markers.CloseReasoning); len(parts) == 2 {
		reasoning := parts[0]
		segs.Reasoning = &reasoning
	}

	if parts := SplitFirst(text, markers.OpenAnswer); len(parts) == 2 {
		answer := SplitFirst(parts[1], markers.CloseAnswer)[0]
		segs.Answer = &answer
	}

	return segs
}

// CountWords returns the number of whitespace-separated words in text
func CountWords(text string) int {
	return len(strings.Fields(text))
}
