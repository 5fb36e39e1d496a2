package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rizome-dev/go-rewards/pkg/rewards"
	"github.com/rizome-dev/go-rewards/pkg/types"
)

// scoreOutput is written by the score command
type scoreOutput struct {
	Scorers   []string             `json:"scorers"`
	Rewards   map[string][]float64 `json:"rewards"`
	Total     []float64            `json:"total"`
	Defaulted map[string][]int     `json:"defaulted,omitempty"`
}

func newScoreCommand(a *app) *cobra.Command {
	var (
		input   string
		output  string
		scorers []string
		indent  bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a JSONL batch",
		Long: `Score reads one JSON object per line with "completion", "gold" (or
"answer") and "language" fields and writes one reward array per scorer.`,
		Example: `  rewardctl score --input batch.jsonl
  rewardctl score -i batch.jsonl --scorers format,accuracy -o rewards.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer closeIn()

			batch, err := types.LoadJSONL(in)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", input, err)
			}

			pipeline, err := a.pipeline(nil)
			if err != nil {
				return err
			}
			if pipeline, err = pipeline.Select(scorers); err != nil {
				return err
			}

			result, err := pipeline.Run(cmd.Context(), batch)
			if err != nil {
				return err
			}

			defaulted := result.Defaulted()
			for name, idx := range defaulted {
				a.logger.Warn("rewards defaulted", "scorer", name, "count", len(idx))
			}

			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()

			enc := json.NewEncoder(out)
			if indent {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(scoreOutput{
				Scorers:   result.Names,
				Rewards:   result.Rewards,
				Total:     result.Total,
				Defaulted: defaulted,
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "JSONL batch file, - for stdin")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringSliceVarP(&scorers, "scorers", "s", nil, "Scorers to run (default: configured scorers)")
	cmd.Flags().BoolVar(&indent, "indent", false, "Indent the JSON output")

	return cmd
}

// pipeline builds the configured reward pipeline
func (a *app) pipeline(metrics *rewards.Metrics) (*rewards.Pipeline, error) {
	set, err := a.cfg.NewRewardSet()
	if err != nil {
		return nil, err
	}
	return rewards.New(set,
		rewards.WithConcurrency(a.cfg.Concurrency),
		rewards.WithLogger(a.logger.With("component", "rewards")),
		rewards.WithMetrics(metrics),
	), nil
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
