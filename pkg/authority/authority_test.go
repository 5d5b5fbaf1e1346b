package authority

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/signalmap/pkg/errors"
)

func TestDefaultPriorities(t *testing.T) {
	a := New()

	assert.Equal(t, 100, a.Priority("canonical_name", "ycombinator"))
	assert.Equal(t, 50, a.Priority("canonical_name", "producthunt"))
	assert.Equal(t, 0, a.Priority("canonical_name", "techcrunch"))
	assert.Equal(t, 0, a.Priority("description", "ycombinator"))
}

func TestFromLabels(t *testing.T) {
	a := FromLabels("canonical_name", "crunchbase", "git*")

	assert.Equal(t, 100, a.Priority("canonical_name", "Crunchbase"))
	assert.Equal(t, 99, a.Priority("canonical_name", "github"))
	assert.Equal(t, 0, a.Priority("canonical_name", "twitter"))
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{"canonical_name", "canonical_name", true},
		{"company.location", "company.*", true},
		{"company.location", "company.l?cation", true},
		{"team.size", "company.*", false},
		{"x", "[", false},
	}

	for _, tt := range tests {
		t.Run(tt.path+"~"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesPattern(tt.path, tt.pattern))
		})
	}
}

func TestValidateSource(t *testing.T) {
	tests := []struct {
		pattern string
		ok      bool
	}{
		{"techcrunch", true},
		{"news-*", true},
		{"category:registry", true},
		{"Category:Launch_Board", true},
		{"category:rumor", false},
		{"", false},
		{"news-[", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			err := ValidateSource(tt.pattern)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.IsValidationError(err))
		})
	}
}
