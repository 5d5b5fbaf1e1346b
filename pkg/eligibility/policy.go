package eligibility

import (
	"io/fs"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/signalmap/pkg/constants"
	"github.com/agentstation/signalmap/pkg/errors"
)

// Policy is an acceptance policy: the bonuses, ceilings and thresholds the
// scorer applies. Different policies serve different programs with the
// same engine.
type Policy struct {
	BaseScore int `mapstructure:"base_score" yaml:"base_score" json:"base_score"`

	// EarlyStages are funding stages that count as early, compared after
	// stage normalization ("Pre Seed" matches "pre-seed").
	EarlyStages []string `mapstructure:"early_stages" yaml:"early_stages" json:"early_stages"`
	// EarlyStageCeiling is the total raised below which a company counts
	// as early stage.
	EarlyStageCeiling float64 `mapstructure:"early_stage_ceiling" yaml:"early_stage_ceiling" json:"early_stage_ceiling"`
	// FundingCeiling is the hard funding ceiling.
	FundingCeiling float64 `mapstructure:"funding_ceiling" yaml:"funding_ceiling" json:"funding_ceiling"`
	MaxTeamSize    int     `mapstructure:"max_team_size" yaml:"max_team_size" json:"max_team_size"`
	CutoffYear     int     `mapstructure:"cutoff_year" yaml:"cutoff_year" json:"cutoff_year"`

	// FocusKeywords are matched case-insensitively against profile tags
	// and industries.
	FocusKeywords []string `mapstructure:"focus_keywords" yaml:"focus_keywords" json:"focus_keywords"`
	// FocusMetrics are metrics whose presence alone shows domain focus.
	FocusMetrics []string `mapstructure:"focus_metrics" yaml:"focus_metrics" json:"focus_metrics"`

	// MultiSourceCount is the distinct source count earning the multi-source bonus.
	MultiSourceCount int `mapstructure:"multi_source_count" yaml:"multi_source_count" json:"multi_source_count"`
	// CompletenessFactor scales completeness into a bonus.
	CompletenessFactor float64 `mapstructure:"completeness_factor" yaml:"completeness_factor" json:"completeness_factor"`

	Bonuses    Bonuses    `mapstructure:"bonuses" yaml:"bonuses" json:"bonuses"`
	Thresholds Thresholds `mapstructure:"thresholds" yaml:"thresholds" json:"thresholds"`
}

// Bonuses are the points each criterion adds.
type Bonuses struct {
	EarlyStage          int `mapstructure:"early_stage" yaml:"early_stage" json:"early_stage"`
	DomainFocus         int `mapstructure:"domain_focus" yaml:"domain_focus" json:"domain_focus"`
	UnderFundingCeiling int `mapstructure:"under_funding_ceiling" yaml:"under_funding_ceiling" json:"under_funding_ceiling"`
	SmallTeam           int `mapstructure:"small_team" yaml:"small_team" json:"small_team"`
	LaunchedAfterCutoff int `mapstructure:"launched_after_cutoff" yaml:"launched_after_cutoff" json:"launched_after_cutoff"`
	MultiSource         int `mapstructure:"multi_source" yaml:"multi_source" json:"multi_source"`
}

// Thresholds are the minimum scores of each recommendation tier.
type Thresholds struct {
	Feature int `mapstructure:"feature" yaml:"feature" json:"feature"`
	Approve int `mapstructure:"approve" yaml:"approve" json:"approve"`
	Review  int `mapstructure:"review" yaml:"review" json:"review"`
}

// DefaultPolicy returns the default acceptance policy.
func DefaultPolicy() Policy {
	return Policy{
		BaseScore:          constants.EligibilityBaseScore,
		EarlyStages:        []string{"pre-seed", "seed"},
		EarlyStageCeiling:  constants.EarlyStageFundingCeiling,
		FundingCeiling:     constants.HardFundingCeiling,
		MaxTeamSize:        constants.MaxTeamSize,
		CutoffYear:         constants.LaunchCutoffYear,
		FocusKeywords:      []string{"web3", "crypto", "blockchain", "defi", "ethereum", "solana", "onchain", "on-chain", "dao", "nft", "zk", "layer2"},
		FocusMetrics:       []string{"tvl", "volume_24h", "holders", "transactions"},
		MultiSourceCount:   constants.VerifiedSourceCount,
		CompletenessFactor: constants.CompletenessBonusFactor,
		Bonuses: Bonuses{
			EarlyStage:          constants.EarlyStageBonus,
			DomainFocus:         constants.DomainFocusBonus,
			UnderFundingCeiling: constants.FundingCeilingBonus,
			SmallTeam:           constants.SmallTeamBonus,
			LaunchedAfterCutoff: constants.RecentLaunchBonus,
			MultiSource:         constants.MultiSourceBonus,
		},
		Thresholds: Thresholds{
			Feature: constants.FeatureThreshold,
			Approve: constants.ApproveThreshold,
			Review:  constants.ReviewThreshold,
		},
	}
}

// Validate checks the policy for values the scorer cannot use.
func (p Policy) Validate() error {
	if p.EarlyStageCeiling < 0 || p.FundingCeiling < 0 {
		return errors.NewValidationError("funding_ceiling", p.FundingCeiling, "ceilings cannot be negative")
	}
	if p.MaxTeamSize < 0 {
		return errors.NewValidationError("max_team_size", p.MaxTeamSize, "cannot be negative")
	}
	if p.CompletenessFactor < 0 {
		return errors.NewValidationError("completeness_factor", p.CompletenessFactor, "cannot be negative")
	}
	t := p.Thresholds
	if t.Review < 0 || t.Feature > 100 || t.Review > t.Approve || t.Approve > t.Feature {
		return errors.NewValidationError("thresholds", t, "must satisfy 0 <= review <= approve <= feature <= 100")
	}
	return nil
}

// ParsePolicy decodes a YAML (or JSON) policy. Keys not present keep their
// default values.
func ParsePolicy(data []byte) (Policy, error) {
	p := DefaultPolicy()
	if strings.TrimSpace(string(data)) == "" {
		return p, nil
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, errors.WrapParse("yaml", "", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// LoadPolicy reads a policy file.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator supplied
	if errors.Is(err, fs.ErrNotExist) {
		return Policy{}, errors.NewNotFoundError("policy file", path)
	}
	if err != nil {
		return Policy{}, errors.WrapIO("read", path, err)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		var perr *errors.ParseError
		if errors.As(err, &perr) {
			perr.File = path
		}
		return Policy{}, err
	}
	return p, nil
}

// Marshal renders the policy as YAML.
func (p Policy) Marshal() ([]byte, error) {
	return yaml.MarshalWithOptions(p, yaml.Indent(2), yaml.IndentSequence(true))
}
