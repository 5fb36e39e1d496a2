// Package config loads reward settings from defaults, an optional YAML file
// and REWARDS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rizome-dev/go-rewards/pkg/langid"
	"github.com/rizome-dev/go-rewards/pkg/mathverify"
	"github.com/rizome-dev/go-rewards/pkg/parsers"
	"github.com/rizome-dev/go-rewards/pkg/rewards"
	"github.com/rizome-dev/go-rewards/pkg/rubrics"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "REWARDS"

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid config")

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig configures the HTTP reward service
type ServerConfig struct {
	Addr         string `mapstructure:"addr" yaml:"addr"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

// Config is the full runtime configuration
type Config struct {
	Markers     parsers.Markers    `mapstructure:"markers" yaml:"markers"`
	Scorers     []string           `mapstructure:"scorers" yaml:"scorers"`
	Weights     map[string]float64 `mapstructure:"weights" yaml:"weights"`
	Concurrency int                `mapstructure:"concurrency" yaml:"concurrency"`
	Math        mathverify.Options `mapstructure:"math" yaml:"math"`
	Language    langid.Options     `mapstructure:"language" yaml:"language"`
	Log         LogConfig          `mapstructure:"log" yaml:"log"`
	Server      ServerConfig       `mapstructure:"server" yaml:"server"`
}

// Default returns the built-in configuration
func Default() Config {
	weights := make(map[string]float64, len(rubrics.DefaultOrder))
	for _, name := range rubrics.DefaultOrder {
		weights[name] = 1.0
	}

	return Config{
		Markers:     parsers.DefaultMarkers(),
		Scorers:     append([]string(nil), rubrics.DefaultOrder...),
		Weights:     weights,
		Concurrency: rewards.DefaultConcurrency,
		Math: mathverify.Options{
			Tolerance:      mathverify.DefaultTolerance,
			MaxInputLength: mathverify.DefaultMaxInputLength,
		},
		Language: langid.Options{
			MinLetters: langid.DefaultMinLetters,
			CacheSize:  4096,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 32 << 20,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("markers.open_reasoning", d.Markers.OpenReasoning)
	v.SetDefault("markers.close_reasoning", d.Markers.CloseReasoning)
	v.SetDefault("markers.open_answer", d.Markers.OpenAnswer)
	v.SetDefault("markers.close_answer", d.Markers.CloseAnswer)
	v.SetDefault("markers.boxed", d.Markers.Boxed)

	v.SetDefault("scorers", d.Scorers)
	for name, w := range d.Weights {
		v.SetDefault("weights."+name, w)
	}
	v.SetDefault("concurrency", d.Concurrency)

	v.SetDefault("math.tolerance", d.Math.Tolerance)
	v.SetDefault("math.max_input_length", d.Math.MaxInputLength)

	v.SetDefault("language.languages", d.Language.Languages)
	v.SetDefault("language.min_letters", d.Language.MinLetters)
	v.SetDefault("language.low_accuracy", d.Language.LowAccuracy)
	v.SetDefault("language.preload", d.Language.Preload)
	v.SetDefault("language.cache_size", d.Language.CacheSize)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith is Load on a caller-supplied viper instance, so that command line
// flags bound to v take part in resolution.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values no component can run with
func (c *Config) Validate() error {
	var errs []error

	m := c.Markers
	if m.CloseReasoning == "" || m.OpenAnswer == "" || m.CloseAnswer == "" || m.Boxed == "" {
		errs = append(errs, errors.New("markers must not be empty"))
	}

	known := make(map[string]bool, len(rubrics.DefaultOrder))
	for _, name := range rubrics.DefaultOrder {
		known[name] = true
	}
	if len(c.Scorers) == 0 {
		errs = append(errs, errors.New("at least one scorer is required"))
	}
	for _, name := range c.Scorers {
		if !known[name] {
			errs = append(errs, fmt.Errorf("%w: %s", rubrics.ErrUnknownScorer, name))
		}
	}
	for name, w := range c.Weights {
		if !known[name] {
			errs = append(errs, fmt.Errorf("weight for %w: %s", rubrics.ErrUnknownScorer, name))
		}
		if w < 0 {
			errs = append(errs, fmt.Errorf("weight for %s is negative: %g", name, w))
		}
	}

	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.Math.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("math tolerance must not be negative, got %g", c.Math.Tolerance))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.Log.Format))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server max body bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Dump renders the configuration as YAML
func (c *Config) Dump() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return out, nil
}

// NewRewardSet builds the configured scorers with their collaborators
func (c *Config) NewRewardSet() (*rubrics.RewardSet, error) {
	classifier, err := langid.New(c.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to create language classifier: %w", err)
	}
	verifier := mathverify.New(c.Math)

	set := rubrics.NewDefaultRewardSet(verifier, classifier, c.Markers, c.Weights)
	return set.Select(c.Scorers)
}
