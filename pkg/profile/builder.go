package profile

import (
	"github.com/agentstation/signalmap/pkg/authority"
	"github.com/agentstation/signalmap/pkg/constants"
	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/identity"
	"github.com/agentstation/signalmap/pkg/items"
	"github.com/agentstation/signalmap/pkg/provenance"
	"github.com/agentstation/signalmap/pkg/sources"
)

// Member is one item of an entity group as the builder sees it.
type Member struct {
	// Index is the item's position in the batch.
	Index      int
	Item       items.RawItem
	IDs        identity.Identifiers
	Signal     string
	Similarity float64
}

// MembersOf wraps items as a group in the given order, the first acting
// as seed. Batch positions are the slice positions.
func MembersOf(its ...items.RawItem) []Member {
	members := make([]Member, len(its))
	for i, it := range its {
		members[i] = Member{Index: i, Item: it, IDs: identity.Extract(it)}
		if i == 0 {
			members[i].Signal = "seed"
		}
	}
	return members
}

// Group is the input every field strategy reads.
type Group struct {
	Members              []Member
	Authority            authority.Authority
	MinDescriptionLength int
}

// FieldFunc sets one profile field from the group and records how the
// value was chosen. It must not read fields set by later strategies.
type FieldFunc func(g *Group, p *Profile, t provenance.Tracker)

// Field is one entry of the strategy table.
type Field struct {
	Name  string
	Apply FieldFunc
}

// Config holds builder settings.
type Config struct {
	MinDescriptionLength int `mapstructure:"min_description_length" yaml:"min_description_length" json:"min_description_length"`
	// AuthoritativeSources ranks source label patterns for the canonical
	// name, most authoritative first. Empty keeps the category defaults.
	AuthoritativeSources []string `mapstructure:"authoritative_sources" yaml:"authoritative_sources" json:"authoritative_sources"`
	Provenance           bool     `mapstructure:"provenance" yaml:"provenance" json:"provenance"`
}

// DefaultConfig returns the default builder settings.
func DefaultConfig() Config {
	return Config{
		MinDescriptionLength: constants.MinDescriptionLength,
		Provenance:           true,
	}
}

// Validate checks the builder settings.
func (c Config) Validate() error {
	if c.MinDescriptionLength < 0 {
		return errors.NewValidationError("builder.min_description_length", c.MinDescriptionLength, "must not be negative")
	}
	for _, s := range c.AuthoritativeSources {
		if err := authority.ValidateSource(s); err != nil {
			return err
		}
	}
	return nil
}

// Builder fuses groups into profiles. It holds no per-build state and is
// safe for concurrent use.
type Builder struct {
	fields               []Field
	authority            authority.Authority
	minDescriptionLength int
	provenance           bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithAuthority sets the source authority used for the canonical name.
func WithAuthority(a authority.Authority) Option {
	return func(b *Builder) {
		if a != nil {
			b.authority = a
		}
	}
}

// WithMinDescriptionLength sets the length a description must exceed to be
// preferred.
func WithMinDescriptionLength(n int) Option {
	return func(b *Builder) {
		if n >= 0 {
			b.minDescriptionLength = n
		}
	}
}

// WithProvenance enables or disables the per-field provenance record.
func WithProvenance(enabled bool) Option {
	return func(b *Builder) {
		b.provenance = enabled
	}
}

// WithField replaces the strategy for a named field, or appends it when the
// table has no such field.
func WithField(f Field) Option {
	return func(b *Builder) {
		for i := range b.fields {
			if b.fields[i].Name == f.Name {
				b.fields[i] = f
				return
			}
		}
		b.fields = append(b.fields, f)
	}
}

// FromConfig converts a Config into builder options.
func FromConfig(cfg Config) []Option {
	opts := []Option{
		WithMinDescriptionLength(cfg.MinDescriptionLength),
		WithProvenance(cfg.Provenance),
	}
	if len(cfg.AuthoritativeSources) > 0 {
		opts = append(opts, WithAuthority(authority.FromLabels(fieldCanonicalName, cfg.AuthoritativeSources...)))
	}
	return opts
}

// NewBuilder creates a Builder with the default strategy table.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		fields:               DefaultFields(),
		authority:            authority.New(),
		minDescriptionLength: constants.MinDescriptionLength,
		provenance:           true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Fields returns the names of the strategy table in application order.
func (b *Builder) Fields() []string {
	names := make([]string, len(b.fields))
	for i, f := range b.fields {
		names[i] = f.Name
	}
	return names
}

// Build fuses a group into a profile. Missing or malformed item fields
// become absent profile fields; only an empty group is an error.
func (b *Builder) Build(members []Member) (*Profile, error) {
	if len(members) == 0 {
		return nil, errors.NewValidationError("group", 0, "must contain at least one item")
	}

	g := &Group{
		Members:              members,
		Authority:            b.authority,
		MinDescriptionLength: b.minDescriptionLength,
	}
	p := &Profile{}
	tracker := provenance.NewTracker(b.provenance)
	for _, f := range b.fields {
		f.Apply(g, p, tracker)
	}

	labels := make([]string, len(members))
	p.Metadata.Items = make([]int, len(members))
	p.Metadata.MatchSignals = make([]MatchSignal, len(members))
	for i, m := range members {
		labels[i] = m.Item.Source
		p.Metadata.Items[i] = m.Index
		p.Metadata.MatchSignals[i] = MatchSignal{
			Item:       m.Index,
			Source:     m.Item.Source,
			Signal:     m.Signal,
			Similarity: m.Similarity,
		}
	}
	p.Metadata.Sources = sources.Distinct(labels)
	p.Metadata.Provenance = tracker.Map()
	return p, nil
}
