// Package profile fuses the items of one entity group into a unified
// profile. Each profile field is produced by its own selection strategy,
// composed by the Builder from an explicit table, so that conflicting
// values are always resolved without manual intervention.
package profile

import (
	"time"

	"github.com/agentstation/signalmap/pkg/identity"
	"github.com/agentstation/signalmap/pkg/items"
	"github.com/agentstation/signalmap/pkg/provenance"
)

// Profile is the fused record of one entity across all matched sources.
// It is a pure function of its group and holds no references into the
// batch, so it can be serialized on its own.
type Profile struct {
	CanonicalName string               `json:"canonical_name" yaml:"canonical_name"`
	Aliases       []string             `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Description   string               `json:"description,omitempty" yaml:"description,omitempty"`
	Identifiers   identity.Identifiers `json:"identifiers" yaml:"identifiers"`
	Company       Company              `json:"company" yaml:"company"`
	Team          Team                 `json:"team" yaml:"team"`
	Funding       Funding              `json:"funding" yaml:"funding"`
	Metrics       map[string]float64   `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Content       Content              `json:"content" yaml:"content"`
	Metadata      Metadata             `json:"metadata" yaml:"metadata"`
}

// Company holds company facts.
type Company struct {
	FoundedAt  *time.Time `json:"founded_at,omitempty" yaml:"founded_at,omitempty"`
	Location   string     `json:"location,omitempty" yaml:"location,omitempty"`
	Industries []string   `json:"industries,omitempty" yaml:"industries,omitempty"`
	Tags       []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Batch      string     `json:"batch,omitempty" yaml:"batch,omitempty"`
}

// Team holds team facts.
type Team struct {
	Founders   []string `json:"founders,omitempty" yaml:"founders,omitempty"`
	Size       *int     `json:"size,omitempty" yaml:"size,omitempty"`
	SizeBucket string   `json:"size_bucket,omitempty" yaml:"size_bucket,omitempty"`
}

// Funding holds financing facts.
type Funding struct {
	TotalRaised *float64             `json:"total_raised,omitempty" yaml:"total_raised,omitempty"`
	Stage       string               `json:"stage,omitempty" yaml:"stage,omitempty"`
	Rounds      []items.FundingRound `json:"rounds,omitempty" yaml:"rounds,omitempty"`
	Investors   []string             `json:"investors,omitempty" yaml:"investors,omitempty"`
}

// Content holds every item of the group, filed by source kind.
type Content struct {
	NewsArticles []Mention `json:"news_articles,omitempty" yaml:"news_articles,omitempty"`
	Launches     []Mention `json:"launches,omitempty" yaml:"launches,omitempty"`
	BlogPosts    []Mention `json:"blog_posts,omitempty" yaml:"blog_posts,omitempty"`
	SocialPosts  []Mention `json:"social_posts,omitempty" yaml:"social_posts,omitempty"`
}

// Len returns the number of mentions across all buckets.
func (c Content) Len() int {
	return len(c.NewsArticles) + len(c.Launches) + len(c.BlogPosts) + len(c.SocialPosts)
}

// Mention is one item as it appears in a content bucket.
type Mention struct {
	Item      int        `json:"item" yaml:"item"`
	Title     string     `json:"title" yaml:"title"`
	URL       string     `json:"url,omitempty" yaml:"url,omitempty"`
	Source    string     `json:"source" yaml:"source"`
	Author    string     `json:"author,omitempty" yaml:"author,omitempty"`
	Published *time.Time `json:"published,omitempty" yaml:"published,omitempty"`
}

// Metadata describes where the profile came from.
type Metadata struct {
	// Sources are the distinct source labels of the group, first-seen order.
	Sources []string `json:"sources" yaml:"sources"`
	// Items are the batch positions of the group's members, seed first.
	Items        []int          `json:"items" yaml:"items"`
	Provenance   provenance.Map `json:"provenance,omitempty" yaml:"provenance,omitempty"`
	MatchSignals []MatchSignal  `json:"match_signals" yaml:"match_signals"`
}

// MatchSignal records how one member joined the group.
type MatchSignal struct {
	Item       int     `json:"item" yaml:"item"`
	Source     string  `json:"source" yaml:"source"`
	Signal     string  `json:"signal" yaml:"signal"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// SourceCount returns the number of distinct sources.
func (p *Profile) SourceCount() int {
	return len(p.Metadata.Sources)
}

// HasMetrics reports whether any numeric metric was observed.
func (p *Profile) HasMetrics() bool {
	return len(p.Metrics) > 0
}

// SizeBucket maps a team size to its bucket label.
func SizeBucket(size int) string {
	switch {
	case size <= 0:
		return ""
	case size == 1:
		return "1"
	case size <= 10:
		return "2-10"
	case size <= 50:
		return "11-50"
	case size <= 200:
		return "51-200"
	default:
		return "201+"
	}
}
