package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme", "acme"},
		{"Acme, Inc.", "acme"},
		{"Acme.io", "acme"},
		{"ACME Technologies LLC", "acme"},
		{"Acme Labs", "acme"},
		{"Labs", ""},
		{"Acme - Deploy in seconds", "acme"},
		{"Acme: the missing toolkit", "acme"},
		{"Show HN: Acme – deploy from your phone", "acme"},
		{"Café Über", "cafeuber"},
		{"Open-Source Robotics Co", "opensourcerobotics"},
		{"Data(AI)", "dataai"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Acme", DisplayName("  Acme  "))
	assert.Equal(t, "Acme", DisplayName("Show HN: Acme - tiny deploys"))
	assert.Equal(t, "Acme Robotics", DisplayName("Acme Robotics | Home"))
	assert.Equal(t, "", DisplayName(""))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("acme", "acme"))
	assert.Equal(t, 0.0, Similarity("", "acme"))
	assert.Equal(t, 0.0, Similarity("", ""))
	assert.InDelta(t, 0.75, Similarity("acme", "acne"), 1e-9)
	assert.InDelta(t, 0.8, Similarity("acmes", "acme"), 1e-9)
	assert.InDelta(t, 1-1.0/9, Similarity("streamlit", "streamlyt"), 1e-9)

	// symmetric
	assert.Equal(t, Similarity("rocketship", "rockship"), Similarity("rockship", "rocketship"))
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "san francisco", NormalizeLocation("San Francisco, CA"))
	assert.Equal(t, "sao paulo", NormalizeLocation("  São   Paulo / Brazil"))
	assert.Equal(t, "", NormalizeLocation(""))
}

func TestNormalizeBatch(t *testing.T) {
	for _, in := range []string{"W24", "w 24", "Winter 2024", "winter 24", " w-24 "} {
		assert.Equal(t, "w24", NormalizeBatch(in), in)
	}
	assert.Equal(t, "s23", NormalizeBatch("Summer 2023"))
	assert.Equal(t, "", NormalizeBatch(""))
}
