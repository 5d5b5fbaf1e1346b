// Package matcher decides whether two raw items plausibly describe the same
// entity. Rules are evaluated in a fixed order and the first satisfied one
// wins:
//
//  1. identifier equality (domain, code-host handle, social handle)
//  2. fuzzy name similarity above the name threshold with shared context
//  3. weak cohort match: same batch label and similarity above the cohort
//     threshold
//
// The matcher prefers precision over recall. Ambiguous pairs do not match.
package matcher

import (
	"fmt"
	"strings"

	"github.com/agentstation/signalmap/pkg/constants"
	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/identity"
	"github.com/agentstation/signalmap/pkg/items"
)

// Rule names the rule that produced a match.
type Rule string

// Match rules.
const (
	RuleNone        Rule = ""
	RuleIdentifier  Rule = "identifier"
	RuleNameContext Rule = "name+context"
	RuleCohort      Rule = "cohort"
)

// Decision is the outcome of comparing two items.
type Decision struct {
	Matched bool
	Rule    Rule
	// Kind is the identifier kind that matched, for RuleIdentifier.
	Kind identity.Kind
	// Similarity is the normalized-name similarity of the pair.
	Similarity float64
}

// Signal renders the decision as a match signal label, e.g.
// "identifier:domain" or "name+context".
func (d Decision) Signal() string {
	if d.Rule == RuleIdentifier {
		return fmt.Sprintf("%s:%s", d.Rule, d.Kind)
	}
	return string(d.Rule)
}

// Config holds matcher thresholds.
type Config struct {
	NameThreshold   float64 `mapstructure:"name_threshold" yaml:"name_threshold" json:"name_threshold"`
	CohortThreshold float64 `mapstructure:"cohort_threshold" yaml:"cohort_threshold" json:"cohort_threshold"`
	MinNameLength   int     `mapstructure:"min_name_length" yaml:"min_name_length" json:"min_name_length"`
	MinSharedTags   int     `mapstructure:"min_shared_tags" yaml:"min_shared_tags" json:"min_shared_tags"`
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		NameThreshold:   constants.NameSimilarityThreshold,
		CohortThreshold: constants.CohortSimilarityThreshold,
		MinNameLength:   constants.MinNameLength,
		MinSharedTags:   constants.MinSharedTags,
	}
}

// Validate checks that thresholds are in range.
func (c Config) Validate() error {
	if c.NameThreshold < 0 || c.NameThreshold > 1 {
		return errors.NewValidationError("name_threshold", c.NameThreshold, "must be between 0 and 1")
	}
	if c.CohortThreshold < 0 || c.CohortThreshold > 1 {
		return errors.NewValidationError("cohort_threshold", c.CohortThreshold, "must be between 0 and 1")
	}
	if c.MinNameLength < 1 {
		return errors.NewValidationError("min_name_length", c.MinNameLength, "must be at least 1")
	}
	if c.MinSharedTags < 1 {
		return errors.NewValidationError("min_shared_tags", c.MinSharedTags, "must be at least 1")
	}
	return nil
}

// Matcher compares items. It holds no state beyond its configuration and
// is safe for concurrent use.
type Matcher struct {
	cfg Config
}

// New creates a Matcher. An invalid configuration is an error.
func New(cfg Config) (*Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{cfg: cfg}, nil
}

// Default returns a Matcher with the default thresholds.
func Default() *Matcher {
	return &Matcher{cfg: DefaultConfig()}
}

// Config returns the matcher's thresholds.
func (m *Matcher) Config() Config {
	return m.cfg
}

// Matches reports whether two items plausibly describe the same entity.
func (m *Matcher) Matches(a, b items.RawItem) bool {
	return m.Decide(NewCandidate(a), NewCandidate(b)).Matched
}

// Decide compares two candidates. It is symmetric in its arguments.
func (m *Matcher) Decide(a, b *Candidate) Decision {
	for _, kind := range identity.MatchKinds {
		va, vb := a.IDs.Get(kind), b.IDs.Get(kind)
		if va != "" && strings.EqualFold(va, vb) {
			return Decision{Matched: true, Rule: RuleIdentifier, Kind: kind, Similarity: identity.Similarity(a.Name, b.Name)}
		}
	}

	if a.NameLength() < m.cfg.MinNameLength || b.NameLength() < m.cfg.MinNameLength {
		return Decision{}
	}

	sim := identity.Similarity(a.Name, b.Name)
	if sim > m.cfg.NameThreshold && m.SharedContext(a, b) {
		return Decision{Matched: true, Rule: RuleNameContext, Similarity: sim}
	}
	if a.Batch != "" && a.Batch == b.Batch && sim > m.cfg.CohortThreshold {
		return Decision{Matched: true, Rule: RuleCohort, Similarity: sim}
	}
	return Decision{Similarity: sim}
}

// SharedContext reports whether two items corroborate each other beyond
// their names: the same batch label, the same coarse location, enough
// identical tags, or an identifier of one spelling the other's name.
func (m *Matcher) SharedContext(a, b *Candidate) bool {
	if a.Batch != "" && a.Batch == b.Batch {
		return true
	}
	if a.Location != "" && a.Location == b.Location {
		return true
	}
	if sharedTags(a.Tags, b.Tags) >= m.cfg.MinSharedTags {
		return true
	}
	return a.echoesName(b.Name) || b.echoesName(a.Name)
}

func sharedTags(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tag := range a {
		if b[tag] {
			n++
		}
	}
	return n
}
