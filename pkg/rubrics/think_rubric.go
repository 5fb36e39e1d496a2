package rubrics

import (
	"context"

	"github.com/rizome-dev/go-rewards/pkg/parsers"
	"github.com/rizome-dev/go-rewards/pkg/types"
)

const (
	// ThinkRatioPenalty applies when the reasoning marker is missing or the
	// reasoning is not longer than the answer
	ThinkRatioPenalty = -0.5
	// ThinkRatioReward applies when the reasoning outweighs the answer
	ThinkRatioReward = 1.0
)

// ThinkRatioScorer rewards reasoning that is longer than the answer
type ThinkRatioScorer struct {
	markers parsers.Markers
}

// NewThinkRatioScorer creates a think/solution length-ratio scorer
func NewThinkRatioScorer(markers parsers.Markers) *ThinkRatioScorer {
	return &ThinkRatioScorer{markers: markers}
}

// Name returns the scorer name
func (s *ThinkRatioScorer) Name() string {
	return NameThinkRatio
}

// Score compares word counts on either side of the close-reasoning marker.
// A missing marker is penalised once and nothing else is evaluated.
func (s *ThinkRatioScorer) Score(ctx context.Context, sample types.Sample) (float64, error) {
	parts := parsers.SplitFirst(sample.Completion, s.markers.CloseReasoning)
	if len(parts) < 2 {
		return ThinkRatioPenalty, nil
	}

	if parsers.CountWords(parts[0]) <= parsers.CountWords(parts[1]) {
		return ThinkRatioPenalty, nil
	}
	return ThinkRatioReward, nil
}
