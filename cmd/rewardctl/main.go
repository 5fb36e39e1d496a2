package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rizome-dev/go-rewards/pkg/config"
)

// app carries state shared by all subcommands
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	v          *viper.Viper
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "rewardctl",
		Short: "Score reasoning-format completions",
		Long: `rewardctl computes format, boxed, accuracy, think-ratio and language
rewards for completions written as

  <think> reasoning </think> <solution> answer \boxed{...} </solution>

Configuration is read from defaults, an optional YAML file (--config) and
REWARDS_* environment variables, in increasing order of precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")
	flags.Int("concurrency", 0, "Samples scored in parallel")

	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("concurrency", flags.Lookup("concurrency"))

	rootCmd.AddCommand(newScoreCommand(a))
	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newPromptCommand())
	rootCmd.AddCommand(newConfigCommand(a))

	return rootCmd
}

// initialize loads the configuration and builds the logger. Flags that were
// not set on the command line do not override file or env values.
func (a *app) initialize(cmd *cobra.Command) error {
	cfg, err := config.LoadWith(a.v, a.configPath)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}
