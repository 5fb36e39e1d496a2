package rubrics

import (
	"context"
	"fmt"

	"github.com/rizome-dev/go-rewards/pkg/langid"
	"github.com/rizome-dev/go-rewards/pkg/mathverify"
	"github.com/rizome-dev/go-rewards/pkg/parsers"
	"github.com/rizome-dev/go-rewards/pkg/types"
)

// DefaultOrder is the order of the built-in scorers
var DefaultOrder = []string{NameFormat, NameBoxed, NameAccuracy, NameThinkRatio, NameLanguage}

// RewardSet is an ordered collection of named, weighted scorers
type RewardSet struct {
	scorers []Scorer
	weights []float64
	index   map[string]int
}

// NewRewardSet creates an empty reward set
func NewRewardSet() *RewardSet {
	return &RewardSet{
		index: make(map[string]int),
	}
}

// NewDefaultRewardSet builds the five built-in scorers in DefaultOrder.
// Weights missing from the map default to 1.0.
func NewDefaultRewardSet(verifier mathverify.Verifier, classifier langid.Classifier, markers parsers.Markers, weights map[string]float64) *RewardSet {
	set := NewRewardSet()

	scorers := []Scorer{
		NewFormatScorer(markers),
		NewBoxedScorer(markers),
		NewAccuracyScorer(verifier, markers),
		NewThinkRatioScorer(markers),
		NewLanguageScorer(classifier, markers),
	}
	for _, s := range scorers {
		weight := 1.0
		if w, ok := weights[s.Name()]; ok {
			weight = w
		}
		// names are unique by construction
		_ = set.AddScorer(s, weight)
	}

	return set
}

// AddScorer appends a scorer. Names must be unique.
func (r *RewardSet) AddScorer(scorer Scorer, weight float64) error {
	name := scorer.Name()
	if _, exists := r.index[name]; exists {
		return fmt.Errorf("duplicate scorer name: %s", name)
	}

	r.index[name] = len(r.scorers)
	r.scorers = append(r.scorers, scorer)
	r.weights = append(r.weights, weight)
	return nil
}

// Names returns the scorer names in order
func (r *RewardSet) Names() []string {
	names := make([]string, len(r.scorers))
	for i, s := range r.scorers {
		names[i] = s.Name()
	}
	return names
}

// Weights returns the scorer weights in order
func (r *RewardSet) Weights() []float64 {
	weights := make([]float64, len(r.weights))
	copy(weights, r.weights)
	return weights
}

// Len returns the number of scorers
func (r *RewardSet) Len() int {
	return len(r.scorers)
}

// Get returns a scorer by name
func (r *RewardSet) Get(name string) (Scorer, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.scorers[i], true
}

// Select returns a new set holding only the named scorers, in the given order
func (r *RewardSet) Select(names []string) (*RewardSet, error) {
	subset := NewRewardSet()
	for _, name := range names {
		i, ok := r.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownScorer, name)
		}
		if err := subset.AddScorer(r.scorers[i], r.weights[i]); err != nil {
			return nil, err
		}
	}
	return subset, nil
}

// RewardFuncs exposes the scorers as plain reward functions for training
// loops that take a list of callables. The functions never return an error.
func (r *RewardSet) RewardFuncs() []types.RewardFunc {
	funcs := make([]types.RewardFunc, len(r.scorers))
	for i, s := range r.scorers {
		scorer := s
		funcs[i] = func(ctx context.Context, sample types.Sample) (float64, error) {
			return Evaluate(ctx, scorer, sample).Reward(), nil
		}
	}
	return funcs
}

// ScoreSample runs every scorer on one sample, isolating each one
func (r *RewardSet) ScoreSample(ctx context.Context, sample types.Sample) []Outcome {
	outcomes := make([]Outcome, len(r.scorers))
	for i, s := range r.scorers {
		outcomes[i] = Evaluate(ctx, s, sample)
	}
	return outcomes
}

// DefaultAll returns a defaulted outcome for every scorer
func (r *RewardSet) DefaultAll(reason error) []Outcome {
	outcomes := make([]Outcome, len(r.scorers))
	for i, s := range r.scorers {
		outcomes[i] = Defaulted(s.Name(), reason)
	}
	return outcomes
}

// Total is the weighted sum of the outcomes' rewards. outcomes must be in
// the set's order.
func (r *RewardSet) Total(outcomes []Outcome) float64 {
	total := 0.0
	for i, o := range outcomes {
		weight := 1.0
		if i < len(r.weights) {
			weight = r.weights[i]
		}
		total += o.Reward() * weight
	}
	return total
}
