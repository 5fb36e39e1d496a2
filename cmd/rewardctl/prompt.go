package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rizome-dev/go-rewards/pkg/prompts"
)

func newPromptCommand() *cobra.Command {
	var (
		question string
		fewShot  bool
	)

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt",
		Long: `Prompt prints the instruction template. With --question it prints the
chat messages for that question as JSON instead.`,
		// the prompt needs no configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if question == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), prompts.SystemPrompt)
				return err
			}

			var shots []prompts.Message
			if fewShot {
				shots = prompts.MathFewShot
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(prompts.FormatPrompt(prompts.SystemPrompt, shots, question))
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "Question to format as chat messages")
	cmd.Flags().BoolVar(&fewShot, "few-shot", false, "Include the few-shot examples")
	return cmd
}
