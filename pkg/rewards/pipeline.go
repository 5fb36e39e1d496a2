// Package rewards applies a reward set to aligned batches of completions.
package rewards

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rizome-dev/go-rewards/pkg/rubrics"
	"github.com/rizome-dev/go-rewards/pkg/types"
	"github.com/rizome-dev/go-rewards/pkg/utils"
)

// DefaultConcurrency bounds the number of samples scored at once
const DefaultConcurrency = 32

// Pipeline scores batches with a reward set. It holds no per-batch state
// and is safe for concurrent use.
type Pipeline struct {
	set         *rubrics.RewardSet
	concurrency int
	logger      *slog.Logger
	metrics     *Metrics
	progress    func(completed, total int)
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithConcurrency sets how many samples are scored in parallel
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the logger used for defaulted outcomes
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records outcomes in m
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithProgress reports the number of scored samples after each one
func WithProgress(fn func(completed, total int)) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// New creates a pipeline over set
func New(set *rubrics.RewardSet, opts ...Option) *Pipeline {
	p := &Pipeline{
		set:         set,
		concurrency: DefaultConcurrency,
		logger:      slog.Default().With("component", "rewards"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RewardSet returns the scorers the pipeline runs
func (p *Pipeline) RewardSet() *rubrics.RewardSet {
	return p.set
}

// Run scores every sample of batch with every scorer. The only error is a
// misaligned batch; scorer failures become defaulted outcomes and every
// reward array has exactly batch.Len() entries in input order.
func (p *Pipeline) Run(ctx context.Context, batch types.Batch) (*rubrics.Result, error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	samples := batch.Samples()
	result := rubrics.NewResult(p.set.Names(), len(samples))

	processor := utils.NewBatchProcessor[types.Sample, []rubrics.Outcome](p.concurrency)
	processed := processor.ProcessWithProgress(ctx, samples, func(ctx context.Context, s types.Sample) ([]rubrics.Outcome, error) {
		return p.set.ScoreSample(ctx, s), nil
	}, p.progress)

	for _, pr := range processed {
		outcomes := pr.Result
		if pr.Error != nil {
			outcomes = p.set.DefaultAll(pr.Error)
		}

		for _, o := range outcomes {
			if o.Defaulted {
				p.logger.Debug("reward defaulted",
					"index", pr.Index,
					"scorer", o.Scorer,
					"reason", o.Reason)
			}
		}
		p.metrics.observe(outcomes)

		result.Set(pr.Index, outcomes, p.set.Total(outcomes))
	}

	p.metrics.observeBatch(len(samples), time.Since(start))
	return result, nil
}

// RunScorer scores the batch with a single named scorer
func (p *Pipeline) RunScorer(ctx context.Context, name string, batch types.Batch) ([]float64, error) {
	subset, err := p.set.Select([]string{name})
	if err != nil {
		return nil, err
	}

	sub := *p
	sub.set = subset
	result, err := sub.Run(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to score %s: %w", name, err)
	}
	return result.Rewards[name], nil
}

// Select returns a pipeline restricted to the named scorers
func (p *Pipeline) Select(names []string) (*Pipeline, error) {
	if len(names) == 0 {
		return p, nil
	}
	subset, err := p.set.Select(names)
	if err != nil {
		return nil, err
	}
	sub := *p
	sub.set = subset
	return &sub, nil
}
