package rubrics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rizome-dev/go-rewards/pkg/types"
)

// Scorer names
const (
	NameFormat     = "format"
	NameBoxed      = "boxed"
	NameAccuracy   = "accuracy"
	NameThinkRatio = "think_ratio"
	NameLanguage   = "language"
)

// DefaultReward is substituted for any scorer that fails
const DefaultReward = 0.0

var (
	// ErrScorerPanic wraps a panic recovered while scoring
	ErrScorerPanic = errors.New("scorer panicked")
	// ErrUnknownScorer is returned when a scorer name is not registered
	ErrUnknownScorer = errors.New("unknown scorer")
)

// Range is the closed interval a scorer's value lies in
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp limits v to the range
func (r Range) Clamp(v float64) float64 {
	return math.Min(r.Max, math.Max(r.Min, v))
}

// ScorerRanges are the documented bounds of the built-in scorers
var ScorerRanges = map[string]Range{
	NameFormat:     {Min: 0, Max: 1},
	NameBoxed:      {Min: 0, Max: 1},
	NameAccuracy:   {Min: -1, Max: 2},
	NameThinkRatio: {Min: -0.5, Max: 1},
	NameLanguage:   {Min: 0, Max: 1},
}

// Scorer computes one reward dimension for a sample
type Scorer interface {
	Name() string
	Score(ctx context.Context, sample types.Sample) (float64, error)
}

// FuncScorer adapts a RewardFunc to the Scorer interface
type FuncScorer struct {
	name string
	fn   types.RewardFunc
}

// NewFuncScorer creates a named scorer from fn
func NewFuncScorer(name string, fn types.RewardFunc) *FuncScorer {
	return &FuncScorer{name: name, fn: fn}
}

// Name returns the scorer name
func (s *FuncScorer) Name() string {
	return s.name
}

// Score calls the wrapped function
func (s *FuncScorer) Score(ctx context.Context, sample types.Sample) (float64, error) {
	return s.fn(ctx, sample)
}

// Outcome is the typed result of running one scorer on one sample. A
// defaulted outcome carries the reason and reports DefaultReward.
type Outcome struct {
	Scorer    string  `json:"scorer"`
	Value     float64 `json:"value"`
	Defaulted bool    `json:"defaulted,omitempty"`
	Reason    error   `json:"-"`
}

// Scored creates an outcome for a successfully computed value
func Scored(scorer string, value float64) Outcome {
	return Outcome{Scorer: scorer, Value: value}
}

// Defaulted creates an outcome for a failed scorer
func Defaulted(scorer string, reason error) Outcome {
	return Outcome{Scorer: scorer, Value: DefaultReward, Defaulted: true, Reason: reason}
}

// Reward returns the number handed to the training loop
func (o Outcome) Reward() float64 {
	if o.Defaulted {
		return DefaultReward
	}
	return o.Value
}

func (o Outcome) String() string {
	if o.Defaulted {
		return fmt.Sprintf("%s=default(%v)", o.Scorer, o.Reason)
	}
	return fmt.Sprintf("%s=%g", o.Scorer, o.Value)
}

// Evaluate runs scorer on sample and never fails: errors, panics and a done
// context all become a defaulted outcome. Values of built-in scorers are
// clamped to their documented range.
func Evaluate(ctx context.Context, scorer Scorer, sample types.Sample) (out Outcome) {
	name := scorer.Name()

	defer func() {
		if r := recover(); r != nil {
			out = Defaulted(name, fmt.Errorf("%w: %v", ErrScorerPanic, r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return Defaulted(name, err)
	}

	value, err := scorer.Score(ctx, sample)
	if err != nil {
		return Defaulted(name, err)
	}
	if math.IsNaN(value) {
		return Defaulted(name, fmt.Errorf("scorer returned NaN"))
	}

	if r, ok := ScorerRanges[name]; ok {
		value = r.Clamp(value)
	}
	return Scored(name, value)
}
