package rubrics

import (
	"context"
	"strings"

	"github.com/rizome-dev/go-rewards/pkg/parsers"
	"github.com/rizome-dev/go-rewards/pkg/types"
)

// FormatScorer is a binary gate on the think/solution grammar
type FormatScorer struct {
	parser *parsers.ThinkParser
}

// NewFormatScorer creates a format scorer for the given markers
func NewFormatScorer(markers parsers.Markers) *FormatScorer {
	return &FormatScorer{parser: parsers.NewThinkParserWithMarkers(markers)}
}

// Name returns the scorer name
func (s *FormatScorer) Name() string {
	return NameFormat
}

// Score returns 1.0 when each marker appears exactly once and in order
func (s *FormatScorer) Score(ctx context.Context, sample types.Sample) (float64, error) {
	if s.parser.FollowsFormat(sample.Completion) {
		return 1.0, nil
	}
	return 0.0, nil
}

// BoxedScorer rewards one boxed answer on each side of the answer marker
type BoxedScorer struct {
	markers parsers.Markers
}

// NewBoxedScorer creates a boxed-notation scorer
func NewBoxedScorer(markers parsers.Markers) *BoxedScorer {
	return &BoxedScorer{markers: markers}
}

// Name returns the scorer name
func (s *BoxedScorer) Name() string {
	return NameBoxed
}

// Score awards 0.5 for exactly one boxed token before the answer marker and
// 0.5 for exactly one after it. Without the marker the score is 0.
func (s *BoxedScorer) Score(ctx context.Context, sample types.Sample) (float64, error) {
	parts := parsers.SplitFirst(sample.Completion, s.markers.OpenAnswer)
	if len(parts) < 2 {
		return 0.0, nil
	}

	score := 0.0
	if strings.Count(parts[0], s.markers.Boxed) == 1 {
		score += 0.5
	}
	if strings.Count(parts[1], s.markers.Boxed) == 1 {
		score += 0.5
	}
	return score, nil
}
