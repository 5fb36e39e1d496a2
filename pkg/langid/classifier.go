// Package langid identifies the natural language of a text segment.
package langid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/pemistahl/lingua-go"
)

const DefaultMinLetters = 1

var (
	// ErrTooShort is returned when a text has too few letters to classify
	ErrTooShort = errors.New("text too short to identify language")
	// ErrUndetermined is returned when the detector cannot decide
	ErrUndetermined = errors.New("language could not be determined")
	// ErrUnknownLanguage is returned for configured codes lingua does not know
	ErrUnknownLanguage = errors.New("unknown ISO 639-1 language code")
)

// Classifier returns the lowercase ISO 639-1 code of the language of text
type Classifier interface {
	Detect(ctx context.Context, text string) (string, error)
}

// ClassifierFunc adapts a function to the Classifier interface
type ClassifierFunc func(ctx context.Context, text string) (string, error)

// Detect calls f
func (f ClassifierFunc) Detect(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Options configures the lingua-backed classifier
type Options struct {
	// Languages restricts detection to these ISO 639-1 codes; empty means all
	Languages []string `mapstructure:"languages" yaml:"languages"`
	// MinLetters is the minimum number of letters required to classify
	MinLetters int `mapstructure:"min_letters" yaml:"min_letters"`
	// LowAccuracy trades accuracy on short texts for speed and memory
	LowAccuracy bool `mapstructure:"low_accuracy" yaml:"low_accuracy"`
	// Preload loads all language models up front instead of lazily
	Preload bool `mapstructure:"preload" yaml:"preload"`
	// CacheSize enables an LRU cache of results when positive
	CacheSize int `mapstructure:"cache_size" yaml:"cache_size"`
}

// LinguaClassifier detects languages with lingua's offline n-gram models
type LinguaClassifier struct {
	detector   lingua.LanguageDetector
	minLetters int
}

// NewLinguaClassifier builds a detector for the configured languages
func NewLinguaClassifier(opts Options) (*LinguaClassifier, error) {
	builder := lingua.NewLanguageDetectorBuilder()

	var configured lingua.LanguageDetectorBuilder
	if len(opts.Languages) == 0 {
		configured = builder.FromAllLanguages()
	} else {
		codes, err := parseCodes(opts.Languages)
		if err != nil {
			return nil, err
		}
		if len(codes) < 2 {
			return nil, fmt.Errorf("at least 2 languages are required, got %d", len(codes))
		}
		configured = builder.FromIsoCodes639_1(codes...)
	}

	if opts.LowAccuracy {
		configured = configured.WithLowAccuracyMode()
	}
	if opts.Preload {
		configured = configured.WithPreloadedLanguageModels()
	}

	minLetters := opts.MinLetters
	if minLetters <= 0 {
		minLetters = DefaultMinLetters
	}

	return &LinguaClassifier{
		detector:   configured.Build(),
		minLetters: minLetters,
	}, nil
}

// Detect returns the most likely ISO 639-1 code for text
func (c *LinguaClassifier) Detect(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if letters := countLetters(text); letters < c.minLetters {
		return "", fmt.Errorf("%w: %d letters, need %d", ErrTooShort, letters, c.minLetters)
	}

	language, ok := c.detector.DetectLanguageOf(text)
	if !ok {
		return "", ErrUndetermined
	}

	return strings.ToLower(language.IsoCode639_1().String()), nil
}

// New builds the classifier described by opts, wrapped in a cache when
// opts.CacheSize is positive.
func New(opts Options) (Classifier, error) {
	lc, err := NewLinguaClassifier(opts)
	if err != nil {
		return nil, err
	}
	if opts.CacheSize <= 0 {
		return lc, nil
	}
	cached, err := NewCachedClassifier(lc, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

func parseCodes(languages []string) ([]lingua.IsoCode639_1, error) {
	seen := make(map[lingua.IsoCode639_1]bool)
	codes := make([]lingua.IsoCode639_1, 0, len(languages))
	for _, l := range languages {
		code := lingua.GetIsoCode639_1FromValue(strings.TrimSpace(l))
		if code == lingua.UnknownIsoCode639_1 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, l)
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}

func countLetters(text string) int {
	n := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
