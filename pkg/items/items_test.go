package items

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/signalmap/pkg/errors"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$4.2M", 4_200_000, true},
		{"500k", 500_000, true},
		{"1,200,000", 1_200_000, true},
		{"1.5 billion", 1_500_000_000, true},
		{"$3 million USD", 3_000_000, true},
		{"€2.5mm", 2_500_000, true},
		{"42", 42, true},
		{"undisclosed", 0, false},
		{"", 0, false},
		{"$4.2M and more", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRawItemValidate(t *testing.T) {
	it := RawItem{Title: "  "}
	err := it.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	it.Title = "Acme"
	assert.NoError(t, it.Validate())
}

func TestRawItemTagSet(t *testing.T) {
	it := RawItem{Tags: []string{"AI", " ai ", "DevTools", ""}}
	assert.Equal(t, map[string]bool{"ai": true, "devtools": true}, it.TagSet())
}

func TestFromMap(t *testing.T) {
	rec := map[string]any{
		"title":       "Acme",
		"description": "Rockets for everyone",
		"url":         "https://acme.io",
		"source":      "ycombinator",
		"published":   "2024-03-01T10:00:00Z",
		"tags":        []any{"space", "hardware"},
		"metadata": map[string]any{
			"yc_batch":      "W24",
			"hq":            "San Francisco, CA",
			"industry":      "Aerospace, Hardware",
			"funding_stage": "Seed",
			"year_founded":  2023,
			"founders":      []any{"Ada", "Grace"},
			"team_size":     "7",
			"funding":       "$4.2M",
			"github":        "acme",
			"twitter":       "@acmehq",
			"stars":         120,
			"metrics":       map[string]any{"Followers": 900},
			"rounds": []any{
				map[string]any{"stage": "seed", "amount": 4200000, "date": "2024-02"},
				"garbage",
			},
			"logo_color": "red",
		},
	}

	it, err := FromMap(rec)
	require.NoError(t, err)

	assert.Equal(t, "Acme", it.Title)
	assert.Equal(t, "ycombinator", it.Source)
	require.NotNil(t, it.Published)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), *it.Published)
	assert.Equal(t, []string{"space", "hardware"}, it.Tags)

	md := it.Metadata
	assert.Equal(t, "W24", md.Batch)
	assert.Equal(t, "San Francisco, CA", md.Location)
	assert.Equal(t, []string{"Aerospace", "Hardware"}, md.Industries)
	assert.Equal(t, "Seed", md.Stage)
	require.NotNil(t, md.FoundedAt)
	assert.Equal(t, 2023, md.FoundedAt.Year())
	assert.Equal(t, []string{"Ada", "Grace"}, md.Founders)
	require.NotNil(t, md.TeamSize)
	assert.Equal(t, 7, *md.TeamSize)
	require.NotNil(t, md.TotalRaised)
	assert.Equal(t, 4_200_000.0, *md.TotalRaised)
	assert.Equal(t, "acme", md.CodeHostHandle)
	assert.Equal(t, "@acmehq", md.SocialHandle)
	assert.Equal(t, map[string]float64{"stars": 120, "followers": 900}, md.Metrics)
	require.Len(t, md.Rounds, 1)
	assert.Equal(t, "seed", md.Rounds[0].Stage)
	assert.Equal(t, map[string]any{"logo_color": "red"}, md.Extra)
}

func TestFromMapDuplicateMetricsKeepLargest(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]any
		want map[string]float64
	}{
		{"nested larger", map[string]any{"stars": 10, "metrics": map[string]any{"stars": 500}}, map[string]float64{"stars": 500}},
		{"top level larger", map[string]any{"stars": 900, "metrics": map[string]any{"stars": 500}}, map[string]float64{"stars": 900}},
		{"nested case variants", map[string]any{"metrics": map[string]any{"TVL": 2, "tvl": 7}}, map[string]float64{"tvl": 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := FromMap(map[string]any{"title": "Acme", "metadata": tt.meta})
			require.NoError(t, err)
			assert.Equal(t, tt.want, it.Metadata.Metrics)
		})
	}
}

func TestFromMapMissingTitle(t *testing.T) {
	_, err := FromMap(map[string]any{"url": "https://acme.io"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestFromMapMalformedMetadata(t *testing.T) {
	it, err := FromMap(map[string]any{
		"title":    "Acme",
		"metadata": map[string]any{"team_size": "a few", "total_raised": -5, "founded": "someday"},
	})
	require.NoError(t, err)
	assert.Nil(t, it.Metadata.TeamSize)
	assert.Nil(t, it.Metadata.TotalRaised)
	assert.Nil(t, it.Metadata.FoundedAt)
}

func TestDecodeJSON(t *testing.T) {
	data := []byte(`[
		{"title": "Acme", "source": "github", "metadata": {"stars": 10}},
		{"title": "", "source": "news"},
		42,
		{"name": "Beta", "source": "producthunt"}
	]`)

	batch, err := DecodeJSON(data)
	require.NoError(t, err)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, "Acme", batch.Items[0].Title)
	assert.Equal(t, 10.0, batch.Items[0].Metadata.Metrics["stars"])
	assert.Equal(t, "Beta", batch.Items[1].Title)

	require.Len(t, batch.Skipped, 2)
	assert.Equal(t, 1, batch.Skipped[0].Index)
	assert.Equal(t, 2, batch.Skipped[1].Index)
}

func TestDecodeJSONInvalid(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"title": "not a list"`))
	require.Error(t, err)
	var perr *errors.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestDecodeYAML(t *testing.T) {
	data := []byte(`
- title: Acme
  source: producthunt
  tags: [devtools, ai]
  metadata:
    upvotes: 310
    batch: W24
- title: Beta
  source: github
`)
	batch, err := DecodeYAML(data)
	require.NoError(t, err)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, []string{"devtools", "ai"}, batch.Items[0].Tags)
	assert.Equal(t, "W24", batch.Items[0].Metadata.Batch)
	assert.Equal(t, 310.0, batch.Items[0].Metadata.Metrics["upvotes"])
	assert.Empty(t, batch.Skipped)
}
