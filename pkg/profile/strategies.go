package profile

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agentstation/signalmap/pkg/identity"
	"github.com/agentstation/signalmap/pkg/items"
	"github.com/agentstation/signalmap/pkg/provenance"
	"github.com/agentstation/signalmap/pkg/sources"
)

// Field names of the strategy table.
const (
	fieldCanonicalName = "canonical_name"
	fieldAliases       = "aliases"
	fieldDescription   = "description"
	fieldIdentifiers   = "identifiers"
	fieldFoundedAt     = "company.founded_at"
	fieldLocation      = "company.location"
	fieldIndustries    = "company.industries"
	fieldTags          = "company.tags"
	fieldBatch         = "company.batch"
	fieldFounders      = "team.founders"
	fieldTeamSize      = "team.size"
	fieldSizeBucket    = "team.size_bucket"
	fieldTotalRaised   = "funding.total_raised"
	fieldStage         = "funding.stage"
	fieldRounds        = "funding.rounds"
	fieldInvestors     = "funding.investors"
	fieldMetrics       = "metrics"
	fieldContent       = "content"
)

// DefaultFields returns the default strategy table. Aliases must follow the
// canonical name, which they exclude.
func DefaultFields() []Field {
	return []Field{
		{fieldCanonicalName, CanonicalName},
		{fieldAliases, Aliases},
		{fieldDescription, Description},
		{fieldIdentifiers, MergeIdentifiers},
		{fieldFoundedAt, FoundedAt},
		{fieldLocation, Location},
		{fieldIndustries, Industries},
		{fieldTags, Tags},
		{fieldBatch, Batch},
		{fieldFounders, Founders},
		{fieldTeamSize, TeamSize},
		{fieldTotalRaised, TotalRaised},
		{fieldStage, Stage},
		{fieldRounds, Rounds},
		{fieldInvestors, Investors},
		{fieldMetrics, Metrics},
		{fieldContent, ContentBuckets},
	}
}

// CanonicalName prefers the title from the most authoritative source, then
// the longest display name, then the first in group order.
func CanonicalName(g *Group, p *Profile, t provenance.Tracker) {
	best, bestPriority, bestLen := -1, 0, 0
	var names []string
	for i, m := range g.Members {
		name := displayTitle(m.Item)
		names = append(names, name)
		priority := g.Authority.Priority(fieldCanonicalName, m.Item.Source)
		length := utf8.RuneCountInString(name)
		if best < 0 || priority > bestPriority || (priority == bestPriority && length > bestLen) {
			best, bestPriority, bestLen = i, priority, length
		}
	}
	if best < 0 {
		return
	}
	p.CanonicalName = names[best]

	reason := "longest title"
	if bestPriority > 0 {
		reason = fmt.Sprintf("authority priority %d", bestPriority)
	}
	t.Track(winner(fieldCanonicalName, provenance.StrategyAuthority, g.Members[best], reason, g.Members, distinctFold(names) > 1))
}

// Aliases lists every distinct display name other than the canonical name.
func Aliases(g *Group, p *Profile, t provenance.Tracker) {
	var names []string
	for _, m := range g.Members {
		if name := displayTitle(m.Item); !strings.EqualFold(name, p.CanonicalName) {
			names = append(names, name)
		}
	}
	p.Aliases = union(names)
	if len(p.Aliases) > 0 {
		t.Track(provenance.Provenance{Field: fieldAliases, Item: -1, Strategy: provenance.StrategyUnion, Candidates: len(p.Aliases)})
	}
}

// Description takes the longest description exceeding the minimum length,
// else the shortest available one. HTML is reduced to text.
func Description(g *Group, p *Profile, t provenance.Tracker) {
	texts := make([]string, len(g.Members))
	var offering []Member
	for i, m := range g.Members {
		texts[i] = identity.PlainText(m.Item.Description)
		if texts[i] != "" {
			offering = append(offering, m)
		}
	}

	longest, shortest := -1, -1
	for i, text := range texts {
		n := utf8.RuneCountInString(text)
		if n == 0 {
			continue
		}
		if n > g.MinDescriptionLength && (longest < 0 || n > utf8.RuneCountInString(texts[longest])) {
			longest = i
		}
		if shortest < 0 || n < utf8.RuneCountInString(texts[shortest]) {
			shortest = i
		}
	}

	pick, strategy, reason := longest, provenance.StrategyLongest, "longest qualifying description"
	if pick < 0 {
		pick, strategy, reason = shortest, provenance.StrategyShortest, fmt.Sprintf("no description exceeds %d characters", g.MinDescriptionLength)
	}
	if pick < 0 {
		return
	}
	p.Description = texts[pick]
	t.Track(winner(fieldDescription, strategy, g.Members[pick], reason, offering, distinctFold(texts) > 1))
}

// MergeIdentifiers unions identifiers across members. The first member to
// offer a kind wins it; later disagreeing values are dropped.
func MergeIdentifiers(g *Group, p *Profile, t provenance.Tracker) {
	for _, kind := range []identity.Kind{identity.KindDomain, identity.KindCodeHost, identity.KindSocial, identity.KindPlatformSlug} {
		first := -1
		var offering []Member
		var values []string
		for i, m := range g.Members {
			v := m.IDs.Get(kind)
			if v == "" {
				continue
			}
			offering = append(offering, m)
			values = append(values, v)
			if first < 0 {
				first = i
			}
		}
		if first < 0 {
			continue
		}
		value := g.Members[first].IDs.Get(kind)
		switch kind {
		case identity.KindDomain:
			p.Identifiers.Domain = value
		case identity.KindCodeHost:
			p.Identifiers.CodeHostHandle = value
		case identity.KindSocial:
			p.Identifiers.SocialHandle = value
		case identity.KindPlatformSlug:
			p.Identifiers.PlatformSlug = value
		}
		t.Track(winner(fieldIdentifiers+"."+string(kind), provenance.StrategyFirst, g.Members[first], "first seen", offering, distinctFold(values) > 1))
	}
}

// FoundedAt takes the first founding date in group order.
func FoundedAt(g *Group, p *Profile, t provenance.Tracker) {
	i, offering := firstOf(g, func(m Member) bool { return m.Item.Metadata.FoundedAt != nil })
	if i < 0 {
		return
	}
	founded := *g.Members[i].Item.Metadata.FoundedAt
	p.Company.FoundedAt = &founded

	var dates []string
	for _, m := range offering {
		dates = append(dates, m.Item.Metadata.FoundedAt.Format(time.DateOnly))
	}
	t.Track(winner(fieldFoundedAt, provenance.StrategyFirst, g.Members[i], "first non-null", offering, distinctFold(dates) > 1))
}

// Location takes the first location in group order.
func Location(g *Group, p *Profile, t provenance.Tracker) {
	p.Company.Location = firstString(g, fieldLocation, t, func(m Member) string { return m.Item.Metadata.Location })
}

// Batch takes the first batch label in group order.
func Batch(g *Group, p *Profile, t provenance.Tracker) {
	p.Company.Batch = firstString(g, fieldBatch, t, func(m Member) string { return m.Item.Metadata.Batch })
}

// Industries unions industry labels.
func Industries(g *Group, p *Profile, t provenance.Tracker) {
	p.Company.Industries = unionField(g, fieldIndustries, t, func(m Member) []string { return m.Item.Metadata.Industries })
}

// Tags unions item tags.
func Tags(g *Group, p *Profile, t provenance.Tracker) {
	p.Company.Tags = unionField(g, fieldTags, t, func(m Member) []string { return m.Item.Tags })
}

// Founders unions founder names.
func Founders(g *Group, p *Profile, t provenance.Tracker) {
	p.Team.Founders = unionField(g, fieldFounders, t, func(m Member) []string { return m.Item.Metadata.Founders })
}

// Investors unions investors reported directly and on rounds.
func Investors(g *Group, p *Profile, t provenance.Tracker) {
	p.Funding.Investors = unionField(g, fieldInvestors, t, func(m Member) []string {
		out := append([]string(nil), m.Item.Metadata.Investors...)
		for _, r := range m.Item.Metadata.Rounds {
			out = append(out, r.Investors...)
		}
		return out
	})
}

// TeamSize takes the largest reported team size and derives its bucket.
func TeamSize(g *Group, p *Profile, t provenance.Tracker) {
	best, bestSize := -1, 0
	var offering []Member
	sizes := map[int]bool{}
	for i, m := range g.Members {
		if m.Item.Metadata.TeamSize == nil {
			continue
		}
		size := *m.Item.Metadata.TeamSize
		offering = append(offering, m)
		sizes[size] = true
		if best < 0 || size > bestSize {
			best, bestSize = i, size
		}
	}
	if best < 0 {
		return
	}
	p.Team.Size = &bestSize
	p.Team.SizeBucket = SizeBucket(bestSize)
	t.Track(winner(fieldTeamSize, provenance.StrategyMax, g.Members[best], "largest reported", offering, len(sizes) > 1))
	t.Track(provenance.Provenance{Field: fieldSizeBucket, Item: -1, Strategy: provenance.StrategyDerived, Reason: "bucket of " + fieldTeamSize})
}

// TotalRaised takes the largest total reported in metadata or stated in the
// item's text.
func TotalRaised(g *Group, p *Profile, t provenance.Tracker) {
	best := -1
	var bestAmount float64
	var reason string
	var offering []Member
	amounts := map[float64]bool{}
	for i, m := range g.Members {
		offered := false
		if v := m.Item.Metadata.TotalRaised; v != nil {
			offered = true
			amounts[*v] = true
			if best < 0 || *v > bestAmount {
				best, bestAmount, reason = i, *v, "largest reported total"
			}
		}
		if f, ok := identity.ItemFunding(m.Item); ok && f.Amount > 0 {
			offered = true
			amounts[f.Amount] = true
			if best < 0 || f.Amount > bestAmount {
				best, bestAmount, reason = i, f.Amount, "largest total stated in text"
			}
		}
		if offered {
			offering = append(offering, m)
		}
	}
	if best < 0 {
		return
	}
	p.Funding.TotalRaised = &bestAmount
	t.Track(winner(fieldTotalRaised, provenance.StrategyMax, g.Members[best], reason, offering, len(amounts) > 1))
}

// Stage takes the first funding stage in group order: reported stages
// first, then stages stated in text.
func Stage(g *Group, p *Profile, t provenance.Tracker) {
	stage := firstString(g, fieldStage, t, func(m Member) string { return identity.NormalizeStage(m.Item.Metadata.Stage) })
	if stage == "" {
		stage = firstString(g, fieldStage, t, func(m Member) string {
			f, _ := identity.ItemFunding(m.Item)
			return f.Stage
		})
	}
	p.Funding.Stage = stage
}

// Rounds unions financing rounds, dropping repeats of the same stage,
// amount and date.
func Rounds(g *Group, p *Profile, t provenance.Tracker) {
	seen := map[string]bool{}
	candidates := 0
	for _, m := range g.Members {
		for _, r := range m.Item.Metadata.Rounds {
			candidates++
			key := roundKey(r)
			if seen[key] {
				continue
			}
			seen[key] = true
			p.Funding.Rounds = append(p.Funding.Rounds, cloneRound(r))
		}
	}
	if candidates > 0 {
		t.Track(provenance.Provenance{Field: fieldRounds, Item: -1, Strategy: provenance.StrategyUnion, Candidates: candidates})
	}
}

func roundKey(r items.FundingRound) string {
	var amount, date string
	if r.Amount != nil {
		amount = fmt.Sprintf("%.0f", *r.Amount)
	}
	if r.Date != nil {
		date = r.Date.Format(time.DateOnly)
	}
	return identity.NormalizeStage(r.Stage) + "|" + amount + "|" + date
}

// Metrics takes the element-wise maximum of every numeric metric.
func Metrics(g *Group, p *Profile, t provenance.Tracker) {
	type best struct {
		member   int
		value    float64
		offering []Member
		values   map[float64]bool
	}
	byKey := map[string]*best{}
	for i, m := range g.Members {
		for key, v := range m.Item.Metadata.Metrics {
			b, ok := byKey[key]
			if !ok {
				b = &best{member: i, value: v, values: map[float64]bool{}}
				byKey[key] = b
			} else if v > b.value {
				b.member, b.value = i, v
			}
			b.offering = append(b.offering, m)
			b.values[v] = true
		}
	}
	if len(byKey) == 0 {
		return
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	p.Metrics = make(map[string]float64, len(byKey))
	for _, key := range keys {
		b := byKey[key]
		p.Metrics[key] = b.value
		t.Track(winner(fieldMetrics+"."+key, provenance.StrategyMax, g.Members[b.member], "largest observed", b.offering, len(b.values) > 1))
	}
}

// ContentBuckets files every member into exactly one bucket by its source.
// Mentions are appended in group order, never merged.
func ContentBuckets(g *Group, p *Profile, t provenance.Tracker) {
	for _, m := range g.Members {
		mention := Mention{
			Item:      m.Index,
			Title:     m.Item.Title,
			URL:       m.Item.URL,
			Source:    m.Item.Source,
			Author:    m.Item.Author,
			Published: cloneTime(m.Item.Published),
		}
		switch sources.BucketFor(m.Item.Source) {
		case sources.BucketLaunches:
			p.Content.Launches = append(p.Content.Launches, mention)
		case sources.BucketBlog:
			p.Content.BlogPosts = append(p.Content.BlogPosts, mention)
		case sources.BucketSocial:
			p.Content.SocialPosts = append(p.Content.SocialPosts, mention)
		default:
			p.Content.NewsArticles = append(p.Content.NewsArticles, mention)
		}
	}
	t.Track(provenance.Provenance{Field: fieldContent, Item: -1, Strategy: provenance.StrategyAppend, Candidates: len(g.Members)})
}

func cloneRound(r items.FundingRound) items.FundingRound {
	out := items.FundingRound{Stage: r.Stage, Date: cloneTime(r.Date)}
	if r.Amount != nil {
		amount := *r.Amount
		out.Amount = &amount
	}
	out.Investors = append([]string(nil), r.Investors...)
	return out
}

func cloneTime(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	out := *ts
	return &out
}

// displayTitle is the item's display name, or its trimmed title when the
// display name is empty.
func displayTitle(it items.RawItem) string {
	if name := identity.DisplayName(it.Title); name != "" {
		return name
	}
	return strings.TrimSpace(it.Title)
}

func firstOf(g *Group, has func(Member) bool) (int, []Member) {
	first := -1
	var offering []Member
	for i, m := range g.Members {
		if !has(m) {
			continue
		}
		offering = append(offering, m)
		if first < 0 {
			first = i
		}
	}
	return first, offering
}

func firstString(g *Group, field string, t provenance.Tracker, get func(Member) string) string {
	var values []string
	i, offering := firstOf(g, func(m Member) bool {
		v := strings.TrimSpace(get(m))
		if v != "" {
			values = append(values, v)
		}
		return v != ""
	})
	if i < 0 {
		return ""
	}
	t.Track(winner(field, provenance.StrategyFirst, g.Members[i], "first non-empty", offering, distinctFold(values) > 1))
	return values[0]
}

func unionField(g *Group, field string, t provenance.Tracker, get func(Member) []string) []string {
	var all []string
	var offering []Member
	for _, m := range g.Members {
		values := get(m)
		if len(values) == 0 {
			continue
		}
		offering = append(offering, m)
		all = append(all, values...)
	}
	out := union(all)
	if len(out) > 0 {
		t.Track(provenance.Provenance{
			Field:      field,
			Item:       -1,
			Strategy:   provenance.StrategyUnion,
			Sources:    memberSources(offering),
			Candidates: len(offering),
		})
	}
	return out
}

// union de-duplicates case-insensitively, keeping the first casing.
func union(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func distinctFold(values []string) int {
	return len(union(values))
}

func memberSources(members []Member) []string {
	labels := make([]string, len(members))
	for i, m := range members {
		labels[i] = m.Item.Source
	}
	return sources.Distinct(labels)
}

func winner(field string, strategy provenance.Strategy, m Member, reason string, offering []Member, conflict bool) provenance.Provenance {
	return provenance.Provenance{
		Field:      field,
		Source:     m.Item.Source,
		Item:       m.Index,
		Strategy:   strategy,
		Reason:     reason,
		Sources:    memberSources(offering),
		Candidates: len(offering),
		Conflict:   conflict,
	}
}
