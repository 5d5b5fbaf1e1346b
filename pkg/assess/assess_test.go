package assess

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/signalmap/pkg/identity"
	"github.com/agentstation/signalmap/pkg/profile"
)

func TestAssessmentValidate(t *testing.T) {
	assert.NoError(t, Assessment{Score: 70, Recommendation: "approve"}.Validate())
	assert.Error(t, Assessment{Score: 101, Recommendation: "approve"}.Validate())
	assert.Error(t, Assessment{Score: -1, Recommendation: "approve"}.Validate())
	assert.Error(t, Assessment{Score: 50, Recommendation: "maybe"}.Validate())
}

func TestSummarize(t *testing.T) {
	total := 4_200_000.0
	p := &profile.Profile{
		CanonicalName: "Acme",
		Description:   "Rockets for everyone",
		Identifiers:   identity.Identifiers{Domain: "acme.io"},
		Company:       profile.Company{Tags: []string{"space"}},
		Funding:       profile.Funding{Stage: "seed", TotalRaised: &total},
		Content: profile.Content{
			NewsArticles: []profile.Mention{{Title: "Acme raises", Source: "techcrunch"}},
			Launches:     []profile.Mention{{Title: "Acme", Source: "producthunt"}},
		},
		Metadata: profile.Metadata{Sources: []string{"techcrunch", "producthunt"}},
	}

	s := Summarize(p)
	assert.Equal(t, "Acme", s.Name)
	assert.Equal(t, "Acme: Rockets for everyone\n- Acme raises (techcrunch)\n- Acme (producthunt)", s.Text)
	assert.Equal(t, "seed", s.Fields["stage"])
	assert.Equal(t, total, s.Fields["total_raised"])
	assert.NotContains(t, s.Fields, "team_size")
}

func TestFunc(t *testing.T) {
	var got Summary
	a := Func(func(_ context.Context, s Summary) (Assessment, error) {
		got = s
		return Assessment{Score: 10, Recommendation: "reject"}, nil
	})
	res, err := a.Assess(context.Background(), Summary{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, 10, res.Score)
}
