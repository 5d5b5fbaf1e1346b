// Package quality measures how complete and how corroborated a unified
// profile is. Scores depend only on which fields are present and how many
// distinct sources contributed, never on field values.
package quality

import (
	"math"

	"github.com/agentstation/signalmap/pkg/constants"
	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/profile"
)

// Level is how many independent sources corroborate a profile.
type Level string

// Verification levels.
const (
	LevelNone     Level = "none"
	LevelPartial  Level = "partial"
	LevelVerified Level = "verified"
)

// Score is the data-quality part of a profile's score.
type Score struct {
	Completeness      float64  `json:"completeness" yaml:"completeness"`
	Confidence        float64  `json:"confidence" yaml:"confidence"`
	VerificationLevel Level    `json:"verification_level" yaml:"verification_level"`
	VerifiedFields    []string `json:"verified_fields" yaml:"verified_fields"`
	MissingFields     []string `json:"missing_fields" yaml:"missing_fields"`
}

// Tier groups fields by weight.
type Tier string

// Field tiers.
const (
	TierRequired  Tier = "required"
	TierImportant Tier = "important"
)

// Check is one field counted towards completeness.
type Check struct {
	Name    string
	Tier    Tier
	Present func(p *profile.Profile) bool
}

// Checks returns the fields counted towards completeness, in report order.
func Checks() []Check {
	return []Check{
		{"name", TierRequired, func(p *profile.Profile) bool { return p.CanonicalName != "" }},
		{"description", TierRequired, func(p *profile.Profile) bool { return p.Description != "" }},
		{"identifier", TierRequired, func(p *profile.Profile) bool { return !p.Identifiers.IsEmpty() }},
		{"founding_date", TierRequired, func(p *profile.Profile) bool { return p.Company.FoundedAt != nil }},
		{"team_size", TierRequired, func(p *profile.Profile) bool { return p.Team.Size != nil }},
		{"founders", TierRequired, func(p *profile.Profile) bool { return len(p.Team.Founders) > 0 }},
		{"funding_total", TierImportant, func(p *profile.Profile) bool { return p.Funding.TotalRaised != nil }},
		{"metrics", TierImportant, func(p *profile.Profile) bool { return p.HasMetrics() }},
		{"content", TierImportant, func(p *profile.Profile) bool { return p.Content.Len() > 0 }},
	}
}

// Config holds weights and levels.
type Config struct {
	RequiredWeight         int     `mapstructure:"required_weight" yaml:"required_weight" json:"required_weight"`
	ImportantWeight        int     `mapstructure:"important_weight" yaml:"important_weight" json:"important_weight"`
	MultiSourceConfidence  float64 `mapstructure:"multi_source_confidence" yaml:"multi_source_confidence" json:"multi_source_confidence"`
	SingleSourceConfidence float64 `mapstructure:"single_source_confidence" yaml:"single_source_confidence" json:"single_source_confidence"`
	PartialSources         int     `mapstructure:"partial_sources" yaml:"partial_sources" json:"partial_sources"`
	VerifiedSources        int     `mapstructure:"verified_sources" yaml:"verified_sources" json:"verified_sources"`
}

// DefaultConfig returns the default weights and levels.
func DefaultConfig() Config {
	return Config{
		RequiredWeight:         constants.RequiredFieldWeight,
		ImportantWeight:        constants.ImportantFieldWeight,
		MultiSourceConfidence:  constants.MultiSourceConfidence,
		SingleSourceConfidence: constants.SingleSourceConfidence,
		PartialSources:         constants.PartialSourceCount,
		VerifiedSources:        constants.VerifiedSourceCount,
	}
}

// Validate checks that weights are positive, confidences lie in [0,100]
// and the verified level needs more sources than the partial one.
func (c Config) Validate() error {
	if c.RequiredWeight <= 0 || c.ImportantWeight <= 0 {
		return errors.NewValidationError("weights", []int{c.RequiredWeight, c.ImportantWeight}, "must be positive")
	}
	for _, v := range []float64{c.MultiSourceConfidence, c.SingleSourceConfidence} {
		if v < 0 || v > 100 {
			return errors.NewValidationError("confidence", v, "must be between 0 and 100")
		}
	}
	if c.PartialSources < 1 || c.VerifiedSources < c.PartialSources {
		return errors.NewValidationError("verified_sources", c.VerifiedSources, "must be at least partial_sources, which must be at least 1")
	}
	return nil
}

// Scorer computes quality scores.
type Scorer struct {
	cfg    Config
	checks []Check
}

// NewScorer creates a Scorer. An invalid configuration is an error.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg, checks: Checks()}, nil
}

// Default returns a Scorer with the default configuration.
func Default() *Scorer {
	return &Scorer{cfg: DefaultConfig(), checks: Checks()}
}

// Score computes completeness, confidence and verification level.
func (s *Scorer) Score(p *profile.Profile) Score {
	score := Score{
		VerifiedFields: []string{},
		MissingFields:  []string{},
	}

	achieved, possible := 0, 0
	for _, c := range s.checks {
		w := s.weight(c.Tier)
		possible += w
		if c.Present(p) {
			achieved += w
			score.VerifiedFields = append(score.VerifiedFields, c.Name)
		} else {
			score.MissingFields = append(score.MissingFields, c.Name)
		}
	}
	if possible > 0 {
		score.Completeness = clamp(math.Round(10000*float64(achieved)/float64(possible)) / 100)
	}

	sources := p.SourceCount()
	score.Confidence = s.cfg.SingleSourceConfidence
	if sources >= s.cfg.PartialSources {
		score.Confidence = s.cfg.MultiSourceConfidence
	}
	score.Confidence = clamp(score.Confidence)

	switch {
	case sources >= s.cfg.VerifiedSources:
		score.VerificationLevel = LevelVerified
	case sources >= s.cfg.PartialSources:
		score.VerificationLevel = LevelPartial
	default:
		score.VerificationLevel = LevelNone
	}
	return score
}

func (s *Scorer) weight(t Tier) int {
	if t == TierRequired {
		return s.cfg.RequiredWeight
	}
	return s.cfg.ImportantWeight
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
