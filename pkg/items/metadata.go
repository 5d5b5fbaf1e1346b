package items

import "time"

// Metadata is the typed record of source-specific facts about an item.
// Every field is optional; absence means the source did not report it.
type Metadata struct {
	// Batch is an accelerator batch or cohort label, e.g. "W24".
	Batch string `json:"batch,omitempty" yaml:"batch,omitempty"`

	Location   string     `json:"location,omitempty" yaml:"location,omitempty"`
	Industries []string   `json:"industries,omitempty" yaml:"industries,omitempty"`
	Stage      string     `json:"stage,omitempty" yaml:"stage,omitempty"`
	FoundedAt  *time.Time `json:"founded_at,omitempty" yaml:"founded_at,omitempty"`

	Founders []string `json:"founders,omitempty" yaml:"founders,omitempty"`
	TeamSize *int     `json:"team_size,omitempty" yaml:"team_size,omitempty"`

	TotalRaised *float64       `json:"total_raised,omitempty" yaml:"total_raised,omitempty"`
	Rounds      []FundingRound `json:"rounds,omitempty" yaml:"rounds,omitempty"`
	Investors   []string       `json:"investors,omitempty" yaml:"investors,omitempty"`

	// Metrics holds numeric signals keyed by lower-case name
	// (stars, forks, followers, tvl, upvotes, ...).
	Metrics map[string]float64 `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	CodeHostHandle string `json:"code_host_handle,omitempty" yaml:"code_host_handle,omitempty"`
	SocialHandle   string `json:"social_handle,omitempty" yaml:"social_handle,omitempty"`
	PlatformSlug   string `json:"platform_slug,omitempty" yaml:"platform_slug,omitempty"`

	// Extra holds keys the engine does not interpret.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// FundingRound is one reported financing event.
type FundingRound struct {
	Stage     string     `json:"stage,omitempty" yaml:"stage,omitempty"`
	Amount    *float64   `json:"amount,omitempty" yaml:"amount,omitempty"`
	Date      *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	Investors []string   `json:"investors,omitempty" yaml:"investors,omitempty"`
}
