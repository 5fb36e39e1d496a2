package parsers

import (
	"context"
	"fmt"
	"strings"
)

// ThinkParser reads completions written in the think/solution grammar
type ThinkParser struct {
	markers Markers
}

// NewThinkParser creates a think parser for the default markers
func NewThinkParser() *ThinkParser {
	return NewThinkParserWithMarkers(DefaultMarkers())
}

// NewThinkParserWithMarkers creates a think parser for custom markers
func NewThinkParserWithMarkers(markers Markers) *ThinkParser {
	return &ThinkParser{markers: markers}
}

// Markers returns the markers the parser splits on
func (p *ThinkParser) Markers() Markers {
	return p.markers
}

// Parse returns the trimmed answer segment, or the trimmed text after the
// close-reasoning marker when no answer marker is present.
func (p *ThinkParser) Parse(ctx context.Context, response string) (string, error) {
	segs := p.Segments(response)
	if segs.HasAnswer() {
		return strings.TrimSpace(*segs.Answer), nil
	}

	parts := SplitFirst(response, p.markers.CloseReasoning)
	return strings.TrimSpace(parts[len(parts)-1]), nil
}

// Segments splits the response into reasoning and answer segments
func (p *ThinkParser) Segments(response string) Segments {
	return ParseSegments(response, p.markers)
}

// FollowsFormat reports whether text contains exactly one close-reasoning,
// one open-answer and one close-answer marker, in that order.
func (p *ThinkParser) FollowsFormat(text string) bool {
	m := p.markers
	if strings.Count(text, m.CloseReasoning) != 1 ||
		strings.Count(text, m.OpenAnswer) != 1 ||
		strings.Count(text, m.CloseAnswer) != 1 {
		return false
	}

	closeReasoning := strings.Index(text, m.CloseReasoning)
	openAnswer := strings.Index(text, m.OpenAnswer)
	closeAnswer := strings.Index(text, m.CloseAnswer)

	return closeReasoning < openAnswer && openAnswer < closeAnswer
}

// FollowsTemplate is stricter than FollowsFormat: the response must also
// open with the reasoning marker and carry a non-empty answer.
func (p *ThinkParser) FollowsTemplate(text string) bool {
	if !p.FollowsFormat(text) {
		return false
	}
	if !strings.HasPrefix(strings.TrimSpace(text), p.markers.OpenReasoning) {
		return false
	}
	if strings.Count(text, p.markers.OpenReasoning) != 1 {
		return false
	}

	segs := p.Segments(text)
	return segs.HasAnswer() && strings.TrimSpace(*segs.Answer) != ""
}

// FormatStr returns the expected format
func (p *ThinkParser) FormatStr() string {
	m := p.markers
	return fmt.Sprintf(`%s
...reasoning...
%s
%s
...answer... \%s{...}
%s`, m.OpenReasoning, m.CloseReasoning, m.OpenAnswer, m.Boxed, m.CloseAnswer)
}
