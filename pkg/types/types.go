package types

import (
	"context"
	"errors"
	"fmt"
)

// ErrMisalignedBatch is returned when the completions, golds and languages
// of a batch do not have the same length.
var ErrMisalignedBatch = errors.New("batch sequences are not aligned")

// Sample is one row of a reward batch
type Sample struct {
	// Completion is the text produced by the model under evaluation
	Completion string `json:"completion"`
	// Gold is the reference answer, always carried as text
	Gold string `json:"gold"`
	// Language is the expected ISO 639-1 code of the answer segment
	Language string `json:"language"`
}

// RewardFunc scores a single sample
type RewardFunc func(context.Context, Sample) (float64, error)

// Batch holds three index-aligned sequences as sent by a training loop
type Batch struct {
	Completions []string `json:"completions"`
	Golds       []string `json:"golds"`
	Languages   []string `json:"languages"`
}

// NewBatch builds a batch from samples
func NewBatch(samples []Sample) Batch {
	b := Batch{
		Completions: make([]string, len(samples)),
		Golds:       make([]string, len(samples)),
		Languages:   make([]string, len(samples)),
	}
	for i, s := range samples {
		b.Completions[i] = s.Completion
		b.Golds[i] = s.Gold
		b.Languages[i] = s.Language
	}
	return b
}

// Len returns the number of completions in the batch
func (b Batch) Len() int {
	return len(b.Completions)
}

// Validate checks that all sequences have the same length
func (b Batch) Validate() error {
	n := len(b.Completions)
	if len(b.Golds) != n || len(b.Languages) != n {
		return fmt.Errorf("%w: %d completions, %d golds, %d languages",
			ErrMisalignedBatch, n, len(b.Golds), len(b.Languages))
	}
	return nil
}

// Sample returns row i of the batch
func (b Batch) Sample(i int) Sample {
	return Sample{
		Completion: b.Completions[i],
		Gold:       b.Golds[i],
		Language:   b.Languages[i],
	}
}

// Samples returns all rows of the batch
func (b Batch) Samples() []Sample {
	samples := make([]Sample, b.Len())
	for i := range samples {
		samples[i] = b.Sample(i)
	}
	return samples
}
