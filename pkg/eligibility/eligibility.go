// Package eligibility applies an acceptance policy to a unified profile and
// produces a deterministic score and recommendation tier.
//
// The score starts at the policy's base and adds one independent bonus per
// criterion met, plus a completeness bonus, clamped to [0,100]. A criterion
// on an absent field is not met.
package eligibility

import (
	"math"
	"slices"
	"strings"

	"github.com/agentstation/signalmap/pkg/identity"
	"github.com/agentstation/signalmap/pkg/profile"
)

// Recommendation is the review tier of a profile.
type Recommendation string

// Recommendation tiers.
const (
	Feature Recommendation = "feature"
	Approve Recommendation = "approve"
	Review  Recommendation = "review"
	Reject  Recommendation = "reject"
)

// Criteria flags which acceptance criteria a profile meets.
type Criteria struct {
	IsEarlyStage        bool `json:"is_early_stage" yaml:"is_early_stage"`
	HasDomainFocus      bool `json:"has_domain_focus" yaml:"has_domain_focus"`
	UnderFundingCeiling bool `json:"under_funding_ceiling" yaml:"under_funding_ceiling"`
	SmallTeam           bool `json:"small_team" yaml:"small_team"`
	LaunchedAfterCutoff bool `json:"launched_after_cutoff" yaml:"launched_after_cutoff"`
	MultiSource         bool `json:"multi_source" yaml:"multi_source"`
}

// Result is the eligibility part of a profile's score.
type Result struct {
	Score           int            `json:"eligibility_score" yaml:"eligibility_score"`
	Eligible        bool           `json:"eligible" yaml:"eligible"`
	Recommendation  Recommendation `json:"recommendation" yaml:"recommendation"`
	Criteria        Criteria       `json:"criteria_met" yaml:"criteria_met"`
	CompletenessPts int            `json:"completeness_bonus" yaml:"completeness_bonus"`
}

// Scorer scores profiles against a policy.
type Scorer struct {
	policy      Policy
	earlyStages []string
	keywords    map[string]bool
	metrics     []string
}

// NewScorer creates a Scorer. An invalid policy is an error.
func NewScorer(p Policy) (*Scorer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Scorer{policy: p, keywords: make(map[string]bool)}
	for _, stage := range p.EarlyStages {
		s.earlyStages = append(s.earlyStages, identity.NormalizeStage(stage))
	}
	for _, kw := range p.FocusKeywords {
		s.keywords[strings.ToLower(strings.TrimSpace(kw))] = true
	}
	for _, m := range p.FocusMetrics {
		s.metrics = append(s.metrics, strings.ToLower(strings.TrimSpace(m)))
	}
	return s, nil
}

// Default returns a Scorer with the default policy.
func Default() *Scorer {
	s, _ := NewScorer(DefaultPolicy())
	return s
}

// Policy returns the scorer's policy.
func (s *Scorer) Policy() Policy {
	return s.policy
}

// Evaluate computes which criteria a profile meets.
func (s *Scorer) Evaluate(p *profile.Profile) Criteria {
	return Criteria{
		IsEarlyStage:        s.isEarlyStage(p),
		HasDomainFocus:      s.hasDomainFocus(p),
		UnderFundingCeiling: p.Funding.TotalRaised != nil && *p.Funding.TotalRaised < s.policy.FundingCeiling,
		SmallTeam:           p.Team.Size != nil && *p.Team.Size <= s.policy.MaxTeamSize,
		LaunchedAfterCutoff: p.Company.FoundedAt != nil && p.Company.FoundedAt.Year() >= s.policy.CutoffYear,
		MultiSource:         p.SourceCount() >= s.policy.MultiSourceCount,
	}
}

// Score scores a profile given its completeness in [0,100].
func (s *Scorer) Score(p *profile.Profile, completeness float64) Result {
	c := s.Evaluate(p)
	b := s.policy.Bonuses

	score := s.policy.BaseScore
	for _, bonus := range []struct {
		met    bool
		points int
	}{
		{c.IsEarlyStage, b.EarlyStage},
		{c.HasDomainFocus, b.DomainFocus},
		{c.UnderFundingCeiling, b.UnderFundingCeiling},
		{c.SmallTeam, b.SmallTeam},
		{c.LaunchedAfterCutoff, b.LaunchedAfterCutoff},
		{c.MultiSource, b.MultiSource},
	} {
		if bonus.met {
			score += bonus.points
		}
	}
	completenessPts := int(math.Round(math.Max(0, completeness) * s.policy.CompletenessFactor))
	score = min(100, max(0, score+completenessPts))

	return Result{
		Score:           score,
		Eligible:        score >= s.policy.Thresholds.Approve,
		Recommendation:  s.Recommend(score),
		Criteria:        c,
		CompletenessPts: completenessPts,
	}
}

// Recommend maps a score to its tier.
func (s *Scorer) Recommend(score int) Recommendation {
	t := s.policy.Thresholds
	switch {
	case score >= t.Feature:
		return Feature
	case score >= t.Approve:
		return Approve
	case score >= t.Review:
		return Review
	default:
		return Reject
	}
}

func (s *Scorer) isEarlyStage(p *profile.Profile) bool {
	if p.Funding.Stage != "" && slices.Contains(s.earlyStages, identity.NormalizeStage(p.Funding.Stage)) {
		return true
	}
	return p.Funding.TotalRaised != nil && *p.Funding.TotalRaised < s.policy.EarlyStageCeiling
}

func (s *Scorer) hasDomainFocus(p *profile.Profile) bool {
	for _, list := range [][]string{p.Company.Tags, p.Company.Industries} {
		for _, tag := range list {
			if s.keywords[strings.ToLower(strings.TrimSpace(tag))] {
				return true
			}
		}
	}
	for _, m := range s.metrics {
		if _, ok := p.Metrics[m]; ok {
			return true
		}
	}
	return false
}
