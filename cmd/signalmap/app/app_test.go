package app

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/signalmap/pkg/eligibility"
	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/logging"
)

func newTestApp(t *testing.T, stdin string) (*App, *bytes.Buffer) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("SIGNALMAP_GEMINI_API_KEY", "")

	out := &bytes.Buffer{}
	a, err := New("1.2.3", "abc123", "2026-01-01", "test",
		WithIO(strings.NewReader(stdin), out),
		WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	a.config.LogOutput = "discard"
	return a, out
}

type resolveOutput struct {
	Profiles []struct {
		Profile struct {
			CanonicalName string `json:"canonical_name"`
			Funding       struct {
				TotalRaised float64 `json:"total_raised"`
			} `json:"funding"`
			Metadata struct {
				Items []int `json:"items"`
			} `json:"metadata"`
		} `json:"profile"`
		Eligibility struct {
			Recommendation string `json:"recommendation"`
		} `json:"eligibility"`
	} `json:"profiles"`
	Skipped []struct {
		Index int `json:"index"`
	} `json:"skipped"`
	Stats struct {
		Items   int `json:"items"`
		Skipped int `json:"skipped"`
	} `json:"stats"`
}

func TestResolveJSON(t *testing.T) {
	a, out := newTestApp(t, "")
	require.NoError(t, a.Execute(context.Background(), []string{"resolve", "testdata/batch.json", "-o", "json"}))

	var got resolveOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got.Profiles, 1)
	assert.Equal(t, []int{0, 1, 2}, got.Profiles[0].Profile.Metadata.Items)
	assert.Equal(t, 4_200_000.0, got.Profiles[0].Profile.Funding.TotalRaised)
	assert.Equal(t, 3, got.Stats.Items)
	assert.Equal(t, 0, got.Stats.Skipped)
	assert.Empty(t, got.Skipped)
}

func TestResolveYAMLBatch(t *testing.T) {
	a, out := newTestApp(t, "")
	require.NoError(t, a.Execute(context.Background(), []string{"resolve", "testdata/batch.yaml", "-o", "json"}))

	var got resolveOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Len(t, got.Profiles, 2)
}

func TestResolveStdinTable(t *testing.T) {
	a, out := newTestApp(t, `[{"title": "Orbit", "source": "github", "url": "https://github.com/orbit/orbit"}, 42]`)
	require.NoError(t, a.Execute(context.Background(), []string{"resolve", "-", "-o", "wide", "--skipped"}))

	assert.Contains(t, out.String(), "Orbit")
	assert.Contains(t, out.String(), "code=orbit")
	assert.Contains(t, out.String(), "object")
}

func TestResolveErrors(t *testing.T) {
	a, _ := newTestApp(t, "{not json")
	err := a.Execute(context.Background(), []string{"resolve", "-"})
	var parseErr *errors.ParseError
	assert.True(t, errors.As(err, &parseErr))

	a, _ = newTestApp(t, "")
	err = a.Execute(context.Background(), []string{"resolve", "testdata/missing.json"})
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, 2, ExitCode(err))

	a, _ = newTestApp(t, "")
	err = a.Execute(context.Background(), []string{"resolve", "testdata"})
	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))
	assert.Equal(t, 1, ExitCode(err))

	a, _ = newTestApp(t, "")
	err = a.Execute(context.Background(), []string{"resolve", "testdata/batch.json", "-o", "xml"})
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, 2, ExitCode(err))

	a, _ = newTestApp(t, "")
	err = a.Execute(context.Background(), []string{"resolve", "testdata/batch.json", "--assess"})
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
}

func TestPolicyCommand(t *testing.T) {
	a, out := newTestApp(t, "")
	require.NoError(t, a.Execute(context.Background(), []string{"policy", "-o", "yaml"}))

	policy, err := eligibility.ParsePolicy(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, eligibility.DefaultPolicy(), policy)
}

func TestVersionCommand(t *testing.T) {
	a, out := newTestApp(t, "")
	require.NoError(t, a.Execute(context.Background(), []string{"version"}))
	assert.Contains(t, out.String(), "signalmap version 1.2.3")
	assert.Contains(t, out.String(), "commit: abc123")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"canceled", errors.WrapCanceled(context.Canceled), 130},
		{"missing file", errors.NewNotFoundError("batch file", "x.json"), 2},
		{"invalid input", errors.NewValidationError("format", "xml", "unsupported"), 2},
		{"other", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
