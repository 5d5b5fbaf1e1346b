// Package signalmap resolves raw startup signals from heterogeneous sources
// into unified, scored entity profiles.
//
// A batch of raw items flows through six stages: identifier extraction,
// pairwise matching, grouping, profile building, quality scoring and
// eligibility scoring. The engine is a pure function of its batch. It holds
// no state between calls and assigns no identity across runs; callers that
// persist profiles key them with their own stable IDs.
//
// Example usage:
//
//	engine, err := signalmap.New(
//	    signalmap.WithPolicy(policy),
//	    signalmap.WithBlocking(5000, 4),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	batch, err := items.DecodeJSON(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := engine.Aggregate(ctx, batch.Items)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, sp := range result.Profiles {
//	    fmt.Printf("%s: %d (%s)\n", sp.Profile.CanonicalName, sp.Eligibility.Score, sp.Eligibility.Recommendation)
//	}
package signalmap

import (
	"context"

	"github.com/agentstation/signalmap/pkg/assess"
	"github.com/agentstation/signalmap/pkg/eligibility"
	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/grouping"
	"github.com/agentstation/signalmap/pkg/items"
	"github.com/agentstation/signalmap/pkg/logging"
	"github.com/agentstation/signalmap/pkg/matcher"
	"github.com/agentstation/signalmap/pkg/profile"
	"github.com/agentstation/signalmap/pkg/quality"
)

// ScoredProfile is a unified profile with its deterministic scores and an
// optional secondary assessment.
type ScoredProfile struct {
	Profile     *profile.Profile   `json:"profile" yaml:"profile"`
	Quality     quality.Score      `json:"quality" yaml:"quality"`
	Eligibility eligibility.Result `json:"eligibility" yaml:"eligibility"`

	Assessment      *assess.Assessment `json:"assessment,omitempty" yaml:"assessment,omitempty"`
	AssessmentError string             `json:"assessment_error,omitempty" yaml:"assessment_error,omitempty"`
}

// Stats summarizes one aggregation run.
type Stats struct {
	Items       int  `json:"items" yaml:"items"`
	Accepted    int  `json:"accepted" yaml:"accepted"`
	Skipped     int  `json:"skipped" yaml:"skipped"`
	Groups      int  `json:"groups" yaml:"groups"`
	Comparisons int  `json:"comparisons" yaml:"comparisons"`
	Blocked     bool `json:"blocked" yaml:"blocked"`
}

// Result is the output of one aggregation run. Profiles are ordered by the
// batch position of their group's seed item.
type Result struct {
	Profiles []ScoredProfile `json:"profiles" yaml:"profiles"`
	Skipped  []items.Skipped `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Stats    Stats           `json:"stats" yaml:"stats"`
}

// Engine runs the resolution pipeline. It is safe for concurrent use; each
// call works on its own batch.
type Engine struct {
	matcher     *matcher.Matcher
	grouper     *grouping.Engine
	builder     *profile.Builder
	quality     *quality.Scorer
	eligibility *eligibility.Scorer
}

// New creates an Engine with the default thresholds and policy, adjusted
// by opts.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			return nil, errors.NewValidationError("option", nil, "cannot be nil")
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	m, err := matcher.New(cfg.matcher)
	if err != nil {
		return nil, err
	}
	q, err := quality.NewScorer(cfg.quality)
	if err != nil {
		return nil, err
	}
	el, err := eligibility.NewScorer(cfg.policy)
	if err != nil {
		return nil, err
	}

	return &Engine{
		matcher:     m,
		grouper:     grouping.New(m, cfg.grouping...),
		builder:     profile.NewBuilder(cfg.builder...),
		quality:     q,
		eligibility: el,
	}, nil
}

// Matcher returns the engine's pairwise matcher.
func (e *Engine) Matcher() *matcher.Matcher { return e.matcher }

// Policy returns the engine's eligibility policy.
func (e *Engine) Policy() eligibility.Policy { return e.eligibility.Policy() }

// Aggregate resolves a batch into scored profiles. Items that fail
// validation are skipped and reported in Result.Skipped; the rest of the
// batch is always processed. An empty result is valid. Aggregate only
// fails when ctx is done.
func (e *Engine) Aggregate(ctx context.Context, batch []items.RawItem) (*Result, error) {
	logger := logging.FromContext(ctx)
	res := &Result{
		Profiles: []ScoredProfile{},
		Stats:    Stats{Items: len(batch)},
	}

	cands := make([]*matcher.Candidate, 0, len(batch))
	positions := make([]int, 0, len(batch))
	for i := range batch {
		it := batch[i]
		if err := it.Validate(); err != nil {
			res.Skipped = append(res.Skipped, items.Skipped{Index: i, Reason: err.Error()})
			logger.Warn().
				Int("index", i).
				Str("source", it.Source).
				Err(err).
				Msg("Skipping item")
			continue
		}
		cands = append(cands, matcher.NewCandidate(it))
		positions = append(positions, i)
	}
	res.Stats.Accepted = len(cands)
	res.Stats.Skipped = len(res.Skipped)

	groups, gstats, err := e.grouper.Group(logging.WithStage(ctx, "group"), cands)
	if err != nil {
		return nil, errors.WrapCanceled(err)
	}
	res.Stats.Groups = gstats.Groups
	res.Stats.Comparisons = gstats.Comparisons
	res.Stats.Blocked = gstats.Blocked

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapCanceled(err)
		}
		members := make([]profile.Member, len(g.Members))
		for j, m := range g.Members {
			c := cands[m.Index]
			members[j] = profile.Member{
				Index:      positions[m.Index],
				Item:       c.Item,
				IDs:        c.IDs,
				Signal:     m.Signal(),
				Similarity: m.Decision.Similarity,
			}
		}
		p, err := e.builder.Build(members)
		if err != nil {
			return nil, err
		}
		res.Profiles = append(res.Profiles, e.Score(p))
	}

	logger.Debug().
		Int("items", res.Stats.Items).
		Int("accepted", res.Stats.Accepted).
		Int("skipped", res.Stats.Skipped).
		Int("profiles", len(res.Profiles)).
		Msg("Aggregated batch")

	return res, nil
}

// Score computes the quality and eligibility scores of a profile.
func (e *Engine) Score(p *profile.Profile) ScoredProfile {
	q := e.quality.Score(p)
	return ScoredProfile{
		Profile:     p,
		Quality:     q,
		Eligibility: e.eligibility.Score(p, q.Completeness),
	}
}
