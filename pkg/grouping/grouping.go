// Package grouping partitions a batch of raw items into entity groups.
//
// Items are processed in input order. Each item not yet assigned becomes
// the seed of a new group, and every later unassigned item the matcher
// accepts against that seed joins it. Comparison is against the seed only,
// so the partition depends on input order: a different order may pick a
// different seed and accept different borderline matches.
//
// Above a configurable batch size the scan is blocked: an inverted index
// from cheap keys (identifiers, normalized-name prefix) to items limits
// each seed's comparisons to items sharing a key. Items without any key
// are compared against every unassigned item.
package grouping

import (
	"context"
	"fmt"
	"slices"

	"github.com/agentstation/signalmap/pkg/constants"
	"github.com/agentstation/signalmap/pkg/identity"
	"github.com/agentstation/signalmap/pkg/logging"
	"github.com/agentstation/signalmap/pkg/matcher"
)

// SeedSignal is the match signal recorded for a group's seed.
const SeedSignal = "seed"

// Member is one item of a group, identified by its batch position.
type Member struct {
	Index int
	// Decision is how the member matched the seed. It is zero for the seed.
	Decision matcher.Decision
	Seed     bool
}

// Signal returns the match signal that admitted the member.
func (m Member) Signal() string {
	if m.Seed {
		return SeedSignal
	}
	return m.Decision.Signal()
}

// Group is a set of batch positions believed to denote one entity. The
// seed is always the first member.
type Group struct {
	Members []Member
}

// Stats describes one grouping pass.
type Stats struct {
	Items       int  `json:"items"`
	Groups      int  `json:"groups"`
	Comparisons int  `json:"comparisons"`
	Blocked     bool `json:"blocked"`
	Keys        int  `json:"blocking_keys,omitempty"`
}

// Engine groups candidates with a matcher.
type Engine struct {
	matcher           *matcher.Matcher
	blockingThreshold int
	prefixLength      int
}

// Option configures an Engine.
type Option func(*Engine)

// WithBlockingThreshold sets the batch size above which blocking is used.
// Zero or less disables blocking.
func WithBlockingThreshold(n int) Option {
	return func(e *Engine) {
		e.blockingThreshold = n
	}
}

// WithPrefixLength sets the normalized-name prefix length used as a key.
func WithPrefixLength(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.prefixLength = n
		}
	}
}

// New creates an Engine. A nil matcher uses the default thresholds.
func New(m *matcher.Matcher, opts ...Option) *Engine {
	if m == nil {
		m = matcher.Default()
	}
	e := &Engine{
		matcher:           m,
		blockingThreshold: constants.BlockingThreshold,
		prefixLength:      constants.BlockingPrefixLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Group partitions the candidates. Every candidate appears in exactly one
// group; groups are ordered by the batch position of their seed. Group only
// fails when ctx is done.
func (e *Engine) Group(ctx context.Context, cands []*matcher.Candidate) ([]Group, Stats, error) {
	stats := Stats{Items: len(cands)}
	blocked := e.blockingThreshold > 0 && len(cands) > e.blockingThreshold

	var index *blockIndex
	if blocked {
		index = e.buildIndex(cands)
		stats.Blocked = true
		stats.Keys = len(index.byKey)
	}

	assigned := make([]bool, len(cands))
	var groups []Group
	for seed := range cands {
		if assigned[seed] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		assigned[seed] = true
		group := Group{Members: []Member{{Index: seed, Seed: true}}}

		for _, other := range e.rest(index, seed, len(cands)) {
			if assigned[other] {
				continue
			}
			stats.Comparisons++
			d := e.matcher.Decide(cands[seed], cands[other])
			if !d.Matched {
				continue
			}
			assigned[other] = true
			group.Members = append(group.Members, Member{Index: other, Decision: d})
		}
		groups = append(groups, group)
	}
	stats.Groups = len(groups)

	logging.FromContext(ctx).Debug().
		Int("items", stats.Items).
		Int("groups", stats.Groups).
		Int("comparisons", stats.Comparisons).
		Bool("blocked", stats.Blocked).
		Msg("Grouped batch")

	return groups, stats, nil
}

// rest returns the batch positions after seed that are compared with it.
func (e *Engine) rest(index *blockIndex, seed, n int) []int {
	if index == nil || len(index.keys[seed]) == 0 {
		out := make([]int, 0, n-seed-1)
		for i := seed + 1; i < n; i++ {
			out = append(out, i)
		}
		return out
	}
	var out []int
	for _, key := range index.keys[seed] {
		for _, i := range index.byKey[key] {
			if i > seed {
				out = append(out, i)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// blockIndex maps blocking keys to batch positions in ascending order.
type blockIndex struct {
	keys  [][]string
	byKey map[string][]int
}

func (e *Engine) buildIndex(cands []*matcher.Candidate) *blockIndex {
	idx := &blockIndex{
		keys:  make([][]string, len(cands)),
		byKey: make(map[string][]int),
	}
	for i, c := range cands {
		idx.keys[i] = e.BlockingKeys(c)
		for _, key := range idx.keys[i] {
			idx.byKey[key] = append(idx.byKey[key], i)
		}
	}
	return idx
}

// BlockingKeys returns the cheap keys under which a candidate is indexed:
// each matchable identifier, and the name prefix of its normalized name and
// of any name its identifiers spell.
func (e *Engine) BlockingKeys(c *matcher.Candidate) []string {
	var keys []string
	for _, kind := range identity.MatchKinds {
		if v := c.IDs.Get(kind); v != "" {
			keys = append(keys, fmt.Sprintf("%s:%s", kind, v))
		}
	}
	minLen := e.matcher.Config().MinNameLength
	addPrefix := func(name string) {
		r := []rune(name)
		if len(r) < minLen || len(r) == 0 {
			return
		}
		key := "name:" + string(r[:min(len(r), e.prefixLength)])
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	addPrefix(c.Name)
	addPrefix(identity.NormalizeName(identity.DomainStem(c.IDs.Domain)))
	addPrefix(identity.NormalizeName(c.IDs.CodeHostHandle))
	return keys
}
