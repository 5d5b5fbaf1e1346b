// Package assess defines the contract of an external qualitative assessment
// service, such as an LLM asked for a secondary opinion on a profile. An
// assessment is advisory: it never feeds the deterministic eligibility
// score.
package assess

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/profile"
)

// Summary is what an assessor sees of a profile: readable text plus
// structured fields.
type Summary struct {
	Name   string         `json:"name"`
	Text   string         `json:"text"`
	Fields map[string]any `json:"fields"`
}

// Assessment is the assessor's score, flags and recommendation.
type Assessment struct {
	Score          int      `json:"score" yaml:"score"`
	Flags          []string `json:"flags,omitempty" yaml:"flags,omitempty"`
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
	Rationale      string   `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	Assessor       string   `json:"assessor,omitempty" yaml:"assessor,omitempty"`
}

// Recommendations an assessor may return.
var Recommendations = []string{"feature", "approve", "review", "reject"}

// Validate checks the assessment is within the contract.
func (a Assessment) Validate() error {
	if a.Score < 0 || a.Score > 100 {
		return errors.NewValidationError("score", a.Score, "must be between 0 and 100")
	}
	if !slices.Contains(Recommendations, a.Recommendation) {
		return errors.NewValidationError("recommendation", a.Recommendation, fmt.Sprintf("must be one of %s", strings.Join(Recommendations, ", ")))
	}
	return nil
}

// Assessor produces a qualitative assessment of a profile summary.
type Assessor interface {
	Assess(ctx context.Context, s Summary) (Assessment, error)
}

// Func adapts a function to the Assessor interface.
type Func func(ctx context.Context, s Summary) (Assessment, error)

// Assess calls f.
func (f Func) Assess(ctx context.Context, s Summary) (Assessment, error) {
	return f(ctx, s)
}

// Summarize renders a profile for an assessor.
func Summarize(p *profile.Profile) Summary {
	fields := map[string]any{
		"name":    p.CanonicalName,
		"sources": p.Metadata.Sources,
	}
	if len(p.Aliases) > 0 {
		fields["aliases"] = p.Aliases
	}
	if !p.Identifiers.IsEmpty() {
		fields["identifiers"] = p.Identifiers
	}
	if len(p.Company.Tags) > 0 {
		fields["tags"] = p.Company.Tags
	}
	if len(p.Company.Industries) > 0 {
		fields["industries"] = p.Company.Industries
	}
	if p.Company.FoundedAt != nil {
		fields["founded"] = p.Company.FoundedAt.Format(time.DateOnly)
	}
	if p.Company.Location != "" {
		fields["location"] = p.Company.Location
	}
	if p.Funding.Stage != "" {
		fields["stage"] = p.Funding.Stage
	}
	if p.Funding.TotalRaised != nil {
		fields["total_raised"] = *p.Funding.TotalRaised
	}
	if p.Team.Size != nil {
		fields["team_size"] = *p.Team.Size
	}
	if len(p.Team.Founders) > 0 {
		fields["founders"] = p.Team.Founders
	}
	if len(p.Metrics) > 0 {
		fields["metrics"] = p.Metrics
	}

	var sb strings.Builder
	sb.WriteString(p.CanonicalName)
	if p.Description != "" {
		sb.WriteString(": ")
		sb.WriteString(p.Description)
	}
	for _, bucket := range [][]profile.Mention{p.Content.NewsArticles, p.Content.Launches, p.Content.BlogPosts, p.Content.SocialPosts} {
		for _, m := range bucket {
			sb.WriteString(fmt.Sprintf("\n- %s (%s)", m.Title, m.Source))
		}
	}
	return Summary{Name: p.CanonicalName, Text: sb.String(), Fields: fields}
}
