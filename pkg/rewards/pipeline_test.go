package rewards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizome-dev/go-rewards/pkg/langid"
	"github.com/rizome-dev/go-rewards/pkg/mathverify"
	"github.com/rizome-dev/go-rewards/pkg/parsers"
	"github.com/rizome-dev/go-rewards/pkg/rubrics"
	"github.com/rizome-dev/go-rewards/pkg/types"
)

const roundTrip = `<think>
The question is written in English and asks for the sum of two and two.
Two plus two is four. Let me double check by counting: one, two, three, four.
</think>
<solution>The answer is \boxed{4}</solution>`

func fakeClassifier(code string) langid.Classifier {
	return langid.ClassifierFunc(func(ctx context.Context, text string) (string, error) {
		if text == "" {
			return "", langid.ErrTooShort
		}
		return code, nil
	})
}

func newPipeline(t *testing.T, classifier langid.Classifier, opts ...Option) *Pipeline {
	t.Helper()
	set := rubrics.NewDefaultRewardSet(mathverify.New(mathverify.Options{}), classifier, parsers.DefaultMarkers(), nil)
	return New(set, opts...)
}

func TestPipeline_RoundTrip(t *testing.T) {
	classifier, err := langid.NewLinguaClassifier(langid.Options{Languages: []string{"en", "de"}})
	require.NoError(t, err)

	p := newPipeline(t, classifier)
	batch := types.NewBatch([]types.Sample{{Completion: roundTrip, Gold: "4", Language: "en"}})

	result, err := p.Run(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.Rewards[rubrics.NameFormat][0])
	assert.Equal(t, 0.5, result.Rewards[rubrics.NameBoxed][0])
	assert.Equal(t, 2.0, result.Rewards[rubrics.NameAccuracy][0])
	assert.Equal(t, 1.0, result.Rewards[rubrics.NameThinkRatio][0])
	assert.Equal(t, 1.0, result.Rewards[rubrics.NameLanguage][0])
	assert.Equal(t, 5.5, result.Total[0])
}

func TestPipeline_RoundTripBothSidesBoxed(t *testing.T) {
	p := newPipeline(t, fakeClassifier("en"))
	completion := `<think>Two plus two is four, so I will write \boxed{4} below.</think><solution>The answer is \boxed{4}</solution>`

	result, err := p.Run(context.Background(), types.NewBatch([]types.Sample{{Completion: completion, Gold: "4", Language: "en"}}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Rewards[rubrics.NameBoxed][0])
}

func TestPipeline_PreservesOrderAndLength(t *testing.T) {
	p := newPipeline(t, fakeClassifier("en"), WithConcurrency(3))

	var samples []types.Sample
	for i := 0; i < 50; i++ {
		samples = append(samples, types.Sample{
			Completion: fmt.Sprintf(`<think>a b c d e f</think><solution>The answer is \boxed{%d}</solution>`, i),
			Gold:       fmt.Sprintf("%d", i),
			Language:   "en",
		})
	}

	result, err := p.Run(context.Background(), types.NewBatch(samples))
	require.NoError(t, err)

	for _, name := range p.RewardSet().Names() {
		assert.Len(t, result.Rewards[name], len(samples), name)
	}
	// every item is correct only against its own gold answer
	for i := range samples {
		assert.Equal(t, 2.0, result.Rewards[rubrics.NameAccuracy][i], "item %d", i)
	}
}

func TestPipeline_IsolatesFailures(t *testing.T) {
	classifier := langid.ClassifierFunc(func(ctx context.Context, text string) (string, error) {
		if strings.HasPrefix(text, "explode") {
			panic("classifier bug")
		}
		return "en", nil
	})
	p := newPipeline(t, classifier)

	batch := types.NewBatch([]types.Sample{
		{Completion: "a b c</think><solution>explode</solution>", Gold: "4", Language: "en"},
		{Completion: "a b c</think><solution>fine</solution>", Gold: "4", Language: "en"},
	})

	result, err := p.Run(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Rewards[rubrics.NameLanguage][0])
	assert.True(t, result.Outcomes[rubrics.NameLanguage][0].Defaulted)
	assert.ErrorIs(t, result.Outcomes[rubrics.NameLanguage][0].Reason, rubrics.ErrScorerPanic)

	// other scorers on the same item and the same scorer on other items are unaffected
	assert.Equal(t, 1.0, result.Rewards[rubrics.NameFormat][0])
	assert.False(t, result.Outcomes[rubrics.NameLanguage][1].Defaulted)
	assert.Equal(t, 1.0, result.Rewards[rubrics.NameLanguage][1])

	assert.Equal(t, map[string][]int{rubrics.NameLanguage: {0}}, result.Defaulted())
}

func TestPipeline_MisalignedBatch(t *testing.T) {
	p := newPipeline(t, fakeClassifier("en"))

	_, err := p.Run(context.Background(), types.Batch{
		Completions: []string{"a", "b"},
		Golds:       []string{"1"},
		Languages:   []string{"en", "en"},
	})
	assert.True(t, errors.Is(err, types.ErrMisalignedBatch))
}

func TestPipeline_EmptyBatch(t *testing.T) {
	p := newPipeline(t, fakeClassifier("en"))

	result, err := p.Run(context.Background(), types.Batch{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
	for _, name := range p.RewardSet().Names() {
		assert.Empty(t, result.Rewards[name])
	}
}

func TestPipeline_CancelledContext(t *testing.T) {
	p := newPipeline(t, fakeClassifier("en"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := types.NewBatch([]types.Sample{{Completion: roundTrip, Gold: "4", Language: "en"}})
	result, err := p.Run(ctx, batch)
	require.NoError(t, err)

	for _, name := range p.RewardSet().Names() {
		require.Len(t, result.Rewards[name], 1)
		assert.Equal(t, 0.0, result.Rewards[name][0])
		assert.ErrorIs(t, result.Outcomes[name][0].Reason, context.Canceled)
	}
}

func TestPipeline_RunScorer(t *testing.T) {
	p := newPipeline(t, fakeClassifier("en"))
	batch := types.NewBatch([]types.Sample{
		{Completion: roundTrip, Gold: "4", Language: "en"},
		{Completion: "no markers", Gold: "4", Language: "en"},
	})

	rewards, err := p.RunScorer(context.Background(), rubrics.NameFormat, batch)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 0.0}, rewards)

	_, err = p.RunScorer(context.Background(), "nope", batch)
	assert.ErrorIs(t, err, rubrics.ErrUnknownScorer)
}

func TestPipeline_Select(t *testing.T) {
	p := newPipeline(t, fakeClassifier("en"))

	sub, err := p.Select([]string{rubrics.NameThinkRatio})
	require.NoError(t, err)
	assert.Equal(t, []string{rubrics.NameThinkRatio}, sub.RewardSet().Names())
	assert.Equal(t, 5, p.RewardSet().Len(), "selecting must not modify the original pipeline")

	same, err := p.Select(nil)
	require.NoError(t, err)
	assert.Same(t, p, same)
}

func TestPipeline_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	p := newPipeline(t, fakeClassifier("en"), WithMetrics(m))
	batch := types.NewBatch([]types.Sample{
		{Completion: roundTrip, Gold: "4", Language: "en"},
		// nothing after the answer marker makes the fake classifier fail
		{Completion: "</think><solution>", Gold: "4", Language: "en"},
	})

	_, err = p.Run(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues(rubrics.NameFormat, "scored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues(rubrics.NameLanguage, "scored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues(rubrics.NameLanguage, "defaulted")))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestPipeline_Progress(t *testing.T) {
	var calls int
	p := newPipeline(t, fakeClassifier("en"), WithProgress(func(completed, total int) {
		calls++
		assert.Equal(t, 3, total)
	}))

	samples := []types.Sample{{Completion: "a"}, {Completion: "b"}, {Completion: "c"}}
	_, err := p.Run(context.Background(), types.NewBatch(samples))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
