// Package constants provides shared constants used throughout signalmap.
// Thresholds here are defaults only; every scoring threshold can be
// overridden through configuration.
package constants

import "time"

// Matcher defaults
const (
	// NameSimilarityThreshold is the normalized-name similarity that must be
	// exceeded (together with shared context) for a fuzzy name match.
	NameSimilarityThreshold = 0.85

	// CohortSimilarityThreshold is the looser similarity accepted when both
	// items carry the same batch/cohort label.
	CohortSimilarityThreshold = 0.70

	// MinNameLength is the shortest normalized name that may match on name.
	MinNameLength = 4

	// MinSharedTags is how many identical tags count as shared context.
	MinSharedTags = 2
)

// Grouping defaults
const (
	// BlockingThreshold is the batch size above which grouping switches
	// from the all-pairs seed scan to blocked buckets.
	BlockingThreshold = 5000

	// BlockingPrefixLength is the normalized-name prefix used as a blocking key.
	BlockingPrefixLength = 4
)

// Profile builder defaults
const (
	// MinDescriptionLength is the length a description must exceed to be
	// preferred over shorter candidates.
	MinDescriptionLength = 20
)

// Quality scoring weights and levels
const (
	RequiredFieldWeight  = 3
	ImportantFieldWeight = 2

	MultiSourceConfidence  = 85
	SingleSourceConfidence = 60

	PartialSourceCount  = 2
	VerifiedSourceCount = 3
)

// Eligibility defaults
const (
	EligibilityBaseScore = 30

	EarlyStageBonus     = 20
	DomainFocusBonus    = 15
	FundingCeilingBonus = 20
	SmallTeamBonus      = 15
	RecentLaunchBonus   = 20
	MultiSourceBonus    = 10

	// CompletenessBonusFactor scales completeness into the eligibility bonus.
	CompletenessBonusFactor = 0.2

	// EarlyStageFundingCeiling is the total raised below which a company
	// counts as early stage when no stage is known.
	EarlyStageFundingCeiling = 2_000_000

	// HardFundingCeiling is the total raised below which the
	// under-funding-ceiling criterion holds.
	HardFundingCeiling = 10_000_000

	MaxTeamSize = 10

	// LaunchCutoffYear is the earliest founding year that counts as recent.
	LaunchCutoffYear = 2023

	FeatureThreshold = 80
	ApproveThreshold = 60
	ReviewThreshold  = 40
)

// Assessment defaults
const (
	// DefaultAssessmentModel is the Gemini model used for secondary opinions.
	DefaultAssessmentModel = "gemini-2.0-flash"

	// AssessmentTimeout bounds one call to the assessment service.
	AssessmentTimeout = 30 * time.Second

	// AssessmentConcurrency is how many profiles are assessed at once.
	AssessmentConcurrency = 4
)

// File permission constants
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)
