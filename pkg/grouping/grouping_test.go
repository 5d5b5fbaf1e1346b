package grouping

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/signalmap/pkg/items"
	"github.com/agentstation/signalmap/pkg/logging"
	"github.com/agentstation/signalmap/pkg/matcher"
)

func candidates(its ...items.RawItem) []*matcher.Candidate {
	out := make([]*matcher.Candidate, len(its))
	for i, it := range its {
		out[i] = matcher.NewCandidate(it)
	}
	return out
}

func indexes(groups []Group) [][]int {
	out := make([][]int, len(groups))
	for i, g := range groups {
		out[i] = memberIndexes(g)
	}
	return out
}

func memberIndexes(g Group) []int {
	out := make([]int, len(g.Members))
	for i, m := range g.Members {
		out[i] = m.Index
	}
	return out
}

func sampleBatch() []items.RawItem {
	return []items.RawItem{
		{Title: "Acme", Source: "github", URL: "https://github.com/acme/acme-core", Tags: []string{"devtools", "ai"}},
		{Title: "Labs", Source: "news", Tags: []string{"ai"}},
		{Title: "Acme", Source: "techcrunch", Description: "Acme raised $4.2M seed", Tags: []string{"devtools", "ai"}},
		{Title: "Beta Robotics", Source: "producthunt", URL: "https://betarobotics.com"},
		{Title: "Acme.io", Source: "producthunt", URL: "https://acme.io"},
		{Title: "Labs", Source: "blog", Tags: []string{"ai"}},
		{Title: "Beta Robotics Inc", Source: "registry", URL: "https://www.betarobotics.com/"},
		{Title: "x", Source: "twitter"},
	}
}

func TestGroupSeedScan(t *testing.T) {
	groups, stats, err := New(nil).Group(context.Background(), candidates(sampleBatch()...))
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 2, 4}, {1}, {3, 6}, {5}, {7}}, indexes(groups))
	assert.Equal(t, 8, stats.Items)
	assert.Equal(t, 5, stats.Groups)
	assert.False(t, stats.Blocked)

	acme := groups[0]
	assert.Equal(t, 0, acme.Members[0].Index)
	assert.True(t, acme.Members[0].Seed)
	assert.Equal(t, SeedSignal, acme.Members[0].Signal())
	assert.Equal(t, "name+context", acme.Members[1].Signal())
	assert.Equal(t, "name+context", acme.Members[2].Signal())
	assert.Equal(t, "identifier:domain", groups[2].Members[1].Signal())
}

func TestGroupPartition(t *testing.T) {
	batch := sampleBatch()
	for i := range 40 {
		batch = append(batch, items.RawItem{
			Title:  fmt.Sprintf("Company %c%c", 'a'+i%7, 'a'+i%5),
			Source: []string{"github", "news", "producthunt"}[i%3],
			Tags:   []string{"t1", fmt.Sprintf("t%d", i%4)},
		})
	}

	for _, threshold := range []int{0, 1} {
		groups, _, err := New(nil, WithBlockingThreshold(threshold)).Group(context.Background(), candidates(batch...))
		require.NoError(t, err)

		seen := make(map[int]int)
		for _, g := range groups {
			for _, idx := range memberIndexes(g) {
				seen[idx]++
			}
		}
		require.Len(t, seen, len(batch))
		for idx, n := range seen {
			assert.Equal(t, 1, n, "item %d appears in %d groups", idx, n)
		}
	}
}

func TestGroupBlockingMatchesFullScan(t *testing.T) {
	cands := candidates(sampleBatch()...)

	full, fullStats, err := New(nil, WithBlockingThreshold(0)).Group(context.Background(), cands)
	require.NoError(t, err)
	blocked, blockedStats, err := New(nil, WithBlockingThreshold(1)).Group(context.Background(), cands)
	require.NoError(t, err)

	assert.Equal(t, indexes(full), indexes(blocked))
	assert.True(t, blockedStats.Blocked)
	assert.Positive(t, blockedStats.Keys)
	assert.Less(t, blockedStats.Comparisons, fullStats.Comparisons)
}

func TestGroupOrderDependence(t *testing.T) {
	a := items.RawItem{Title: "Rocketship", Source: "news", Tags: []string{"a", "b"}}
	b := items.RawItem{Title: "Rocketship", Source: "blog", Tags: []string{"a", "b", "c", "d"}}
	c := items.RawItem{Title: "Rocketship", Source: "social", Tags: []string{"c", "d"}}

	groups, _, err := New(nil).Group(context.Background(), candidates(a, b, c))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}, {2}}, indexes(groups))

	groups, _, err = New(nil).Group(context.Background(), candidates(b, a, c))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2}}, indexes(groups))
}

func TestGroupShortNamesStaySingletons(t *testing.T) {
	groups, _, err := New(nil).Group(context.Background(), candidates(
		items.RawItem{Title: "Labs", Source: "news", Tags: []string{"ai", "ml"}},
		items.RawItem{Title: "Labs", Source: "news", Tags: []string{"ai", "ml"}},
	))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}, {1}}, indexes(groups))
}

func TestGroupEmptyBatch(t *testing.T) {
	groups, stats, err := New(nil).Group(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.Equal(t, 0, stats.Groups)
}

func TestGroupCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := New(nil).Group(ctx, candidates(sampleBatch()...))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGroupLogs(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	_, _, err := New(nil).Group(ctx, candidates(sampleBatch()...))
	require.NoError(t, err)
	tl.AssertContains(t, "Grouped batch")
	tl.AssertContains(t, `"groups":5`)
}

func TestBlockingKeys(t *testing.T) {
	e := New(nil)
	keys := e.BlockingKeys(matcher.NewCandidate(items.RawItem{Title: "Acme.io", Source: "producthunt", URL: "https://acme.io"}))
	assert.Equal(t, []string{"domain:acme.io", "name:acme"}, keys)

	keys = e.BlockingKeys(matcher.NewCandidate(items.RawItem{Title: "Labs", Source: "news"}))
	assert.Empty(t, keys)
}
