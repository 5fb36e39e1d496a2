package rubrics

import (
	"context"
	"fmt"
	"strings"

	"github.com/rizome-dev/go-rewards/pkg/langid"
	"github.com/rizome-dev/go-rewards/pkg/parsers"
	"github.com/rizome-dev/go-rewards/pkg/types"
)

// LanguageScorer checks that the answer segment is written in the expected language
type LanguageScorer struct {
	classifier langid.Classifier
	markers    parsers.Markers
}

// NewLanguageScorer creates a language-match scorer
func NewLanguageScorer(classifier langid.Classifier, markers parsers.Markers) *LanguageScorer {
	return &LanguageScorer{classifier: classifier, markers: markers}
}

// Name returns the scorer name
func (s *LanguageScorer) Name() string {
	return NameLanguage
}

// Score classifies everything after the open-answer marker, including any
// text past the close marker, with math notation stripped. It returns 1.0 on
// an exact code match. Without the marker it is 0.
func (s *LanguageScorer) Score(ctx context.Context, sample types.Sample) (float64, error) {
	parts := parsers.SplitFirst(sample.Completion, s.markers.OpenAnswer)
	if len(parts) < 2 {
		return 0.0, nil
	}

	clean := parsers.StripNoise(strings.TrimSpace(parts[1]))

	code, err := s.classifier.Detect(ctx, clean)
	if err != nil {
		return 0, fmt.Errorf("failed to detect language: %w", err)
	}

	if code == sample.Language {
		return 1.0, nil
	}
	return 0.0, nil
}
