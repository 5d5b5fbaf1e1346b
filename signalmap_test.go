package signalmap_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/signalmap"
	"github.com/agentstation/signalmap/pkg/assess"
	"github.com/agentstation/signalmap/pkg/eligibility"
	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/items"
	"github.com/agentstation/signalmap/pkg/logging"
	"github.com/agentstation/signalmap/pkg/matcher"
	"github.com/agentstation/signalmap/pkg/profile"
	"github.com/agentstation/signalmap/pkg/quality"
)

func scenarioA() []items.RawItem {
	return []items.RawItem{
		{Title: "Acme", Source: "github", URL: "https://github.com/acme/acme-core", Tags: []string{"devtools"}},
		{Title: "Acme", Source: "techcrunch", URL: "https://techcrunch.com/2024/05/02/acme-seed", Description: "Acme raised $4.2M seed"},
		{Title: "Acme.io", Source: "producthunt", URL: "https://acme.io"},
	}
}

func mixedBatch() []items.RawItem {
	founded := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	size := 6
	batch := scenarioA()
	return append(batch,
		items.RawItem{Title: "Labs", Source: "producthunt", Tags: []string{"ai", "devtools"}},
		items.RawItem{Title: "Labs", Source: "betalist", Tags: []string{"ai", "devtools"}},
		items.RawItem{Title: "Nimbus", Source: "producthunt", URL: "https://nimbus.dev", Metadata: items.Metadata{Metrics: map[string]float64{"upvotes": 10}}},
		items.RawItem{Title: "Nimbus Cloud", Source: "betalist", URL: "https://www.nimbus.dev/", Metadata: items.Metadata{Metrics: map[string]float64{"upvotes": 45}}},
		items.RawItem{Title: "", Source: "rss"},
		items.RawItem{
			Title: "Chainpilot", Source: "ycombinator", URL: "https://chainpilot.xyz",
			Description: "Chainpilot automates DeFi treasury operations for DAOs.",
			Tags:        []string{"web3", "defi"},
			Metadata: items.Metadata{
				Batch: "W24", Stage: "Pre-Seed", FoundedAt: &founded, TeamSize: &size,
				Founders: []string{"Ada Park"}, Metrics: map[string]float64{"tvl": 1_500_000},
			},
		},
		items.RawItem{Title: "Chainpilot", Source: "defillama", URL: "https://defillama.com/protocol/chainpilot", Metadata: items.Metadata{Metrics: map[string]float64{"tvl": 2_100_000}}},
		items.RawItem{Title: "ChainPilot", Source: "twitter", URL: "https://x.com/chainpilot", Description: "Launching on mainnet"},
	)
}

func newEngine(t *testing.T, opts ...signalmap.Option) *signalmap.Engine {
	t.Helper()
	e, err := signalmap.New(opts...)
	require.NoError(t, err)
	return e
}

func TestScenarioA(t *testing.T) {
	res, err := newEngine(t).Aggregate(context.Background(), scenarioA())
	require.NoError(t, err)
	require.Len(t, res.Profiles, 1)

	p := res.Profiles[0].Profile
	assert.Equal(t, []int{0, 1, 2}, p.Metadata.Items)
	require.NotNil(t, p.Funding.TotalRaised)
	assert.Equal(t, 4_200_000.0, *p.Funding.TotalRaised)
	assert.Equal(t, "acme.io", p.Identifiers.Domain)
	assert.Equal(t, "acme", p.Identifiers.CodeHostHandle)
	assert.Equal(t, quality.LevelVerified, res.Profiles[0].Quality.VerificationLevel)
	assert.Equal(t, 85.0, res.Profiles[0].Quality.Confidence)
}

func TestScenarioB(t *testing.T) {
	batch := []items.RawItem{
		{Title: "Labs", Source: "producthunt", Tags: []string{"ai", "devtools"}},
		{Title: "Labs", Source: "betalist", Tags: []string{"ai", "devtools"}},
	}
	res, err := newEngine(t).Aggregate(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, res.Profiles, 2)
	assert.Equal(t, []int{0}, res.Profiles[0].Profile.Metadata.Items)
	assert.Equal(t, []int{1}, res.Profiles[1].Profile.Metadata.Items)
}

func TestScenarioC(t *testing.T) {
	batch := []items.RawItem{{Title: "Solo", Source: "producthunt", URL: "https://solo.dev"}}
	res, err := newEngine(t).Aggregate(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, res.Profiles, 1)

	sp := res.Profiles[0]
	assert.Equal(t, quality.LevelNone, sp.Quality.VerificationLevel)
	assert.Equal(t, 60.0, sp.Quality.Confidence)
	assert.False(t, sp.Eligibility.Eligible)
	assert.Equal(t, eligibility.Reject, sp.Eligibility.Recommendation)
}

func TestAggregatePartition(t *testing.T) {
	batch := mixedBatch()
	res, err := newEngine(t).Aggregate(context.Background(), batch)
	require.NoError(t, err)

	seen := make(map[int]int)
	for _, sp := range res.Profiles {
		for _, idx := range sp.Profile.Metadata.Items {
			seen[idx]++
		}
	}
	for _, s := range res.Skipped {
		seen[s.Index]++
	}
	for i := range batch {
		assert.Equal(t, 1, seen[i], "item %d", i)
	}

	assert.Equal(t, len(batch), res.Stats.Items)
	assert.Equal(t, 1, res.Stats.Skipped)
	assert.Equal(t, len(batch)-1, res.Stats.Accepted)
	assert.Equal(t, len(res.Profiles), res.Stats.Groups)
}

func TestAggregateSkipsInvalidItems(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	res, err := newEngine(t).Aggregate(ctx, []items.RawItem{{Title: "  ", Source: "rss"}, {Title: "Orbit", Source: "github"}})
	require.NoError(t, err)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 0, res.Skipped[0].Index)
	assert.Contains(t, res.Skipped[0].Reason, "title")
	require.Len(t, res.Profiles, 1)
	assert.Equal(t, []int{1}, res.Profiles[0].Profile.Metadata.Items)
	tl.AssertContains(t, "Skipping item")
}

func TestAggregateEmptyBatch(t *testing.T) {
	res, err := newEngine(t).Aggregate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Profiles)
	assert.NotNil(t, res.Profiles)
}

func TestAggregateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newEngine(t).Aggregate(ctx, mixedBatch())
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.IsCanceled(err))
}

func TestAggregateIdempotent(t *testing.T) {
	e := newEngine(t)
	first, err := e.Aggregate(context.Background(), mixedBatch())
	require.NoError(t, err)
	second, err := e.Aggregate(context.Background(), mixedBatch())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Aggregate() not idempotent (-first +second):\n%s", diff)
	}
}

func TestAggregateMonotonicMetrics(t *testing.T) {
	res, err := newEngine(t).Aggregate(context.Background(), mixedBatch())
	require.NoError(t, err)

	byName := make(map[string]signalmap.ScoredProfile)
	for _, sp := range res.Profiles {
		byName[strings.ToLower(sp.Profile.Identifiers.Domain)] = sp
	}
	require.Contains(t, byName, "nimbus.dev")
	assert.Equal(t, 45.0, byName["nimbus.dev"].Profile.Metrics["upvotes"])
	require.Contains(t, byName, "chainpilot.xyz")
	assert.Equal(t, 2_100_000.0, byName["chainpilot.xyz"].Profile.Metrics["tvl"])
}

func TestAggregateScoreBounds(t *testing.T) {
	res, err := newEngine(t).Aggregate(context.Background(), mixedBatch())
	require.NoError(t, err)
	for _, sp := range res.Profiles {
		assert.GreaterOrEqual(t, sp.Quality.Completeness, 0.0)
		assert.LessOrEqual(t, sp.Quality.Completeness, 100.0)
		assert.GreaterOrEqual(t, sp.Quality.Confidence, 0.0)
		assert.LessOrEqual(t, sp.Quality.Confidence, 100.0)
		assert.GreaterOrEqual(t, sp.Eligibility.Score, 0)
		assert.LessOrEqual(t, sp.Eligibility.Score, 100)
	}
}

func TestIdentifierMatchSoundness(t *testing.T) {
	m := matcher.Default()
	pairs := [][2]items.RawItem{
		{{Title: "Nimbus", Source: "producthunt", URL: "https://nimbus.dev"}, {Title: "Totally Different", Source: "ycombinator", URL: "http://www.NIMBUS.dev/about"}},
		{{Title: "Ab", Source: "github", URL: "https://ab.io"}, {Title: "Xy", Source: "betalist", URL: "https://ab.io/pricing"}},
	}
	for _, p := range pairs {
		assert.True(t, m.Matches(p[0], p[1]), "%s / %s", p[0].Title, p[1].Title)
		assert.True(t, m.Matches(p[1], p[0]), "%s / %s", p[1].Title, p[0].Title)
	}
}

func TestNameThresholdProperty(t *testing.T) {
	m := matcher.Default()
	a := items.RawItem{Title: "Stripe", Source: "producthunt"}
	b := items.RawItem{Title: "Stripy", Source: "betalist"}
	assert.False(t, m.Matches(a, b))
}

func TestEligibleProfile(t *testing.T) {
	res, err := newEngine(t).Aggregate(context.Background(), mixedBatch())
	require.NoError(t, err)

	var found bool
	for _, sp := range res.Profiles {
		if sp.Profile.Identifiers.Domain != "chainpilot.xyz" {
			continue
		}
		found = true
		assert.Len(t, sp.Profile.Metadata.Items, 3)
		c := sp.Eligibility.Criteria
		assert.True(t, c.IsEarlyStage)
		assert.True(t, c.HasDomainFocus)
		assert.True(t, c.SmallTeam)
		assert.True(t, c.LaunchedAfterCutoff)
		assert.True(t, c.MultiSource)
		assert.True(t, sp.Eligibility.Eligible)
		assert.Equal(t, eligibility.Feature, sp.Eligibility.Recommendation)
	}
	assert.True(t, found)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	_, err := signalmap.New(nil)
	assert.True(t, errors.IsValidationError(err))

	bad := matcher.DefaultConfig()
	bad.NameThreshold = 2
	_, err = signalmap.New(signalmap.WithMatcherConfig(bad))
	assert.True(t, errors.IsValidationError(err))

	_, err = signalmap.New(signalmap.WithBlocking(-1, 4))
	assert.Error(t, err)
}

func TestBlockingKeepsPartition(t *testing.T) {
	batch := mixedBatch()
	full, err := newEngine(t).Aggregate(context.Background(), batch)
	require.NoError(t, err)
	blocked, err := newEngine(t, signalmap.WithBlocking(1, 4)).Aggregate(context.Background(), batch)
	require.NoError(t, err)

	assert.True(t, blocked.Stats.Blocked)
	require.Len(t, blocked.Profiles, len(full.Profiles))
	for i := range full.Profiles {
		assert.Equal(t, full.Profiles[i].Profile.Metadata.Items, blocked.Profiles[i].Profile.Metadata.Items)
	}
}

func TestAssess(t *testing.T) {
	res, err := newEngine(t).Aggregate(context.Background(), mixedBatch())
	require.NoError(t, err)
	before := make([]eligibility.Result, len(res.Profiles))
	for i, sp := range res.Profiles {
		before[i] = sp.Eligibility
	}

	a := assess.Func(func(_ context.Context, s assess.Summary) (assess.Assessment, error) {
		if s.Name == "Labs" {
			return assess.Assessment{}, errors.NewAPIError("fake", 503, "unavailable")
		}
		return assess.Assessment{Score: 99, Recommendation: "feature"}, nil
	})
	require.NoError(t, signalmap.Assess(context.Background(), res, a))

	for i, sp := range res.Profiles {
		assert.Equal(t, before[i], sp.Eligibility)
		if sp.Profile.CanonicalName == "Labs" {
			assert.Nil(t, sp.Assessment)
			assert.Contains(t, sp.AssessmentError, "unavailable")
			continue
		}
		require.NotNil(t, sp.Assessment)
		assert.Equal(t, 99, sp.Assessment.Score)
	}
}

func TestAssessCanceled(t *testing.T) {
	res, err := newEngine(t).Aggregate(context.Background(), mixedBatch())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	a := assess.Func(func(context.Context, assess.Summary) (assess.Assessment, error) {
		calls++
		return assess.Assessment{Score: 50, Recommendation: "review"}, nil
	})
	err = signalmap.Assess(ctx, res, a)
	assert.True(t, errors.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestAssessLogsRateLimit(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"quota", 429, `"rate_limited":true`},
		{"outage", 503, `"rate_limited":false`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := logging.NewTestLogger(t)
			ctx := logging.WithLogger(context.Background(), tl.Logger)
			res := &signalmap.Result{Profiles: []signalmap.ScoredProfile{{Profile: &profile.Profile{CanonicalName: "Acme"}}}}
			a := assess.Func(func(context.Context, assess.Summary) (assess.Assessment, error) {
				return assess.Assessment{}, errors.NewAPIError("fake", tt.status, "busy")
			})

			require.NoError(t, signalmap.Assess(ctx, res, a))
			assert.Nil(t, res.Profiles[0].Assessment)
			assert.Contains(t, res.Profiles[0].AssessmentError, "busy")
			tl.AssertContains(t, tt.want)
		})
	}
}

func TestAssessNilAssessor(t *testing.T) {
	res := &signalmap.Result{Profiles: []signalmap.ScoredProfile{{}}}
	assert.True(t, errors.IsValidationError(signalmap.Assess(context.Background(), res, nil)))
}
