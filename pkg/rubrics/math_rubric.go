package rubrics

import (
	"context"
	"fmt"
	"strings"

	"github.com/rizome-dev/go-rewards/pkg/mathverify"
	"github.com/rizome-dev/go-rewards/pkg/parsers"
	"github.com/rizome-dev/go-rewards/pkg/types"
)

// AccuracyScorer checks the completion's answer against the reference
type AccuracyScorer struct {
	verifier mathverify.Verifier
	markers  parsers.Markers
}

// NewAccuracyScorer creates an accuracy scorer backed by verifier
func NewAccuracyScorer(verifier mathverify.Verifier, markers parsers.Markers) *AccuracyScorer {
	return &AccuracyScorer{verifier: verifier, markers: markers}
}

// Name returns the scorer name
func (s *AccuracyScorer) Name() string {
	return NameAccuracy
}

// goldContains reports whether gold literally contains any form of any answer
func goldContains(gold string, answers []mathverify.Answer) bool {
	for _, a := range answers {
		for _, form := range a.Forms() {
			if strings.Contains(gold, form) {
				return true
			}
		}
	}
	return false
}

// Score starts at -1 and adds 1 for each piece of evidence: the verifier
// finds an equivalent answer, the gold text contains a candidate, and the
// completion uses the boxed token. The whole completion is searched, not just
// the answer segment, so a correct answer outside the grammar still counts.
func (s *AccuracyScorer) Score(ctx context.Context, sample types.Sample) (float64, error) {
	score := -1.0

	answers, err := s.verifier.Parse(sample.Completion)
	if err != nil {
		return 0, fmt.Errorf("failed to parse completion: %w", err)
	}

	ok, err := s.verifier.Verify(sample.Gold, answers)
	if err != nil {
		return 0, fmt.Errorf("failed to verify answer: %w", err)
	}
	if ok {
		score += 1.0
	}

	if goldContains(sample.Gold, answers) {
		score += 1.0
	}

	if strings.Contains(sample.Completion, s.markers.Boxed) {
		score += 1.0
	}

	return score, nil
}
