package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/agentstation/signalmap/pkg/assess"
	"github.com/agentstation/signalmap/pkg/constants"
	"github.com/agentstation/signalmap/pkg/errors"
)

type fakeModels struct {
	reply  string
	err    error
	model  string
	prompt string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(f.reply, genai.RoleModel),
		}},
	}, nil
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), "")
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, errors.ErrAPIKeyRequired)
}

func TestAssess(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    assess.Assessment
		wantErr bool
	}{
		{
			name:  "plain json",
			reply: `{"score": 72, "flags": ["no team size"], "recommendation": "Approve", "rationale": "Young seed company."}`,
			want: assess.Assessment{
				Score:          72,
				Flags:          []string{"no team size"},
				Recommendation: "approve",
				Rationale:      "Young seed company.",
				Assessor:       "gemini/" + constants.DefaultAssessmentModel,
			},
		},
		{
			name:  "fenced json",
			reply: "```json\n{\"score\": 10, \"recommendation\": \"reject\"}\n```",
			want:  assess.Assessment{Score: 10, Recommendation: "reject", Assessor: "gemini/" + constants.DefaultAssessmentModel},
		},
		{name: "out of range", reply: `{"score": 120, "recommendation": "feature"}`, wantErr: true},
		{name: "not json", reply: "looks great", wantErr: true},
		{name: "empty", reply: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeModels{reply: tt.reply}
			a := newAssessor(fake)
			got, err := a.Assess(context.Background(), assess.Summary{Name: "Acme", Text: "Acme: rockets", Fields: map[string]any{"stage": "seed"}})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, constants.DefaultAssessmentModel, fake.model)
			assert.Contains(t, fake.prompt, "Acme: rockets")
			assert.Contains(t, fake.prompt, `"stage":"seed"`)
		})
	}
}

func TestAssessWrapsServiceErrors(t *testing.T) {
	fake := &fakeModels{err: genai.APIError{Code: 429, Message: "quota"}}
	a := newAssessor(fake, WithModel("gemini-test"))
	_, err := a.Assess(context.Background(), assess.Summary{Name: "Acme"})
	require.Error(t, err)
	assert.True(t, errors.IsRateLimited(err))
	assert.Equal(t, "gemini-test", fake.model)
}
