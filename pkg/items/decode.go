package items

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/signalmap/pkg/errors"
)

// Batch is the outcome of decoding a batch: the items that satisfied the
// ingestion contract, and the ones that were skipped.
type Batch struct {
	Items   []RawItem `json:"items"`
	Skipped []Skipped `json:"skipped,omitempty"`
}

// Skipped records an input record that could not be used.
type Skipped struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// metadata key aliases, as emitted by the different ingestion clients.
var (
	batchKeys       = []string{"batch", "yc_batch", "cohort", "launch_batch"}
	locationKeys    = []string{"location", "hq", "city", "country"}
	industryKeys    = []string{"industries", "industry", "sector", "sectors"}
	stageKeys       = []string{"stage", "funding_stage"}
	foundedKeys     = []string{"founded_at", "founded", "founding_date", "year_founded", "launch_date", "launched_at"}
	founderKeys     = []string{"founders", "founder"}
	teamSizeKeys    = []string{"team_size", "employees", "headcount"}
	raisedKeys      = []string{"total_raised", "funding_total", "amount_raised", "funding", "raised"}
	investorKeys    = []string{"investors", "backers"}
	codeHostKeys    = []string{"code_host_handle", "github", "github_handle", "gitlab", "github_org"}
	socialKeys      = []string{"social_handle", "twitter", "twitter_handle", "x_handle", "farcaster"}
	platformKeys    = []string{"platform_slug", "producthunt_slug", "slug"}
	metricKeys      = []string{"stars", "forks", "watchers", "followers", "subscribers", "tvl", "upvotes", "votes", "comments", "users", "downloads", "volume_24h", "holders", "transactions"}
	consumedMapKeys = []string{"metrics", "rounds"}
)

// FromMap decodes one untyped record into a RawItem. Unknown or malformed
// metadata values are dropped or kept in Extra; only a missing title is an
// error.
func FromMap(m map[string]any) (RawItem, error) {
	var it RawItem
	it.Title, _ = toString(first(m, "title", "name"))
	it.Description, _ = toString(first(m, "description", "summary", "body"))
	it.URL, _ = toString(first(m, "url", "link", "website"))
	it.Source, _ = toString(m["source"])
	it.Author, _ = toString(m["author"])
	if ts, ok := toTime(first(m, "published", "published_at", "date")); ok {
		it.Published = &ts
	}
	it.Tags = toStrings(m["tags"])

	if raw, ok := asMap(m["metadata"]); ok {
		it.Metadata = decodeMetadata(raw)
	}

	if err := it.Validate(); err != nil {
		return RawItem{}, err
	}
	return it, nil
}

// Decode converts a list of untyped records. Records that are not objects
// or that violate the ingestion contract are skipped and counted.
func Decode(records []any) Batch {
	batch := Batch{Items: make([]RawItem, 0, len(records))}
	for i, rec := range records {
		m, ok := asMap(rec)
		if !ok {
			batch.Skipped = append(batch.Skipped, Skipped{Index: i, Reason: fmt.Sprintf("record is %T, not an object", rec)})
			continue
		}
		it, err := FromMap(m)
		if err != nil {
			batch.Skipped = append(batch.Skipped, Skipped{Index: i, Reason: err.Error()})
			continue
		}
		batch.Items = append(batch.Items, it)
	}
	return batch
}

// DecodeJSON decodes a JSON array of item records.
func DecodeJSON(data []byte) (Batch, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []any
	if err := dec.Decode(&records); err != nil {
		return Batch{}, errors.WrapParse("json", "", err)
	}
	return Decode(records), nil
}

// DecodeYAML decodes a YAML sequence of item records.
func DecodeYAML(data []byte) (Batch, error) {
	var records []any
	if err := yaml.Unmarshal(data, &records); err != nil {
		return Batch{}, errors.WrapParse("yaml", "", err)
	}
	return Decode(records), nil
}

func decodeMetadata(raw map[string]any) Metadata {
	var md Metadata
	consumed := make(map[string]bool)
	take := func(keys []string) any {
		for _, k := range keys {
			if v, ok := raw[k]; ok && v != nil {
				consumed[k] = true
				return v
			}
		}
		return nil
	}

	md.Batch, _ = toString(take(batchKeys))
	md.Location, _ = toString(take(locationKeys))
	md.Industries = toStrings(take(industryKeys))
	md.Stage, _ = toString(take(stageKeys))
	if ts, ok := toTime(take(foundedKeys)); ok {
		md.FoundedAt = &ts
	}
	md.Founders = toStrings(take(founderKeys))
	if n, ok := toInt(take(teamSizeKeys)); ok && n > 0 {
		md.TeamSize = &n
	}
	if f, ok := toFloat(take(raisedKeys)); ok && f >= 0 {
		md.TotalRaised = &f
	}
	md.Investors = toStrings(take(investorKeys))
	md.CodeHostHandle, _ = toString(take(codeHostKeys))
	md.SocialHandle, _ = toString(take(socialKeys))
	md.PlatformSlug, _ = toString(take(platformKeys))
	md.Rounds = decodeRounds(raw["rounds"])
	md.Metrics = decodeMetrics(raw)

	for _, k := range metricKeys {
		if _, ok := raw[k]; ok {
			consumed[k] = true
		}
	}
	for _, k := range consumedMapKeys {
		consumed[k] = true
	}
	for k, v := range raw {
		if consumed[k] {
			continue
		}
		if md.Extra == nil {
			md.Extra = make(map[string]any)
		}
		md.Extra[k] = v
	}
	return md
}

// decodeMetrics collects nested and top-level metrics. A metric given more
// than once keeps its largest value.
func decodeMetrics(raw map[string]any) map[string]float64 {
	metrics := make(map[string]float64)
	keep := func(k string, f float64) {
		if cur, ok := metrics[k]; !ok || f > cur {
			metrics[k] = f
		}
	}
	if nested, ok := asMap(raw["metrics"]); ok {
		for k, v := range nested {
			if f, ok := toFloat(v); ok {
				keep(strings.ToLower(strings.TrimSpace(k)), f)
			}
		}
	}
	for _, k := range metricKeys {
		if f, ok := toFloat(raw[k]); ok {
			keep(k, f)
		}
	}
	if len(metrics) == 0 {
		return nil
	}
	return metrics
}

func decodeRounds(v any) []FundingRound {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var rounds []FundingRound
	for _, e := range list {
		m, ok := asMap(e)
		if !ok {
			continue
		}
		var r FundingRound
		r.Stage, _ = toString(first(m, "stage", "round", "type"))
		if f, ok := toFloat(first(m, "amount", "raised")); ok {
			r.Amount = &f
		}
		if ts, ok := toTime(first(m, "date", "announced_at")); ok {
			r.Date = &ts
		}
		r.Investors = toStrings(m["investors"])
		if r.Stage == "" && r.Amount == nil {
			continue
		}
		rounds = append(rounds, r)
	}
	return rounds
}

// asMap accepts both string-keyed and any-keyed maps.
func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = val
		}
		return m, true
	default:
		return nil, false
	}
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
