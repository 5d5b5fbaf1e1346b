// Package provenance records, per profile field, which source supplied the
// fused value, how it was selected and whether the group's items disagreed.
// It is the data-quality record attached to every unified profile.
package provenance

import (
	"fmt"
	"sort"
	"strings"
)

// Strategy names how a field's value was selected.
type Strategy string

// Selection strategies.
const (
	StrategyAuthority Strategy = "authority" // highest authority, then longest
	StrategyLongest   Strategy = "longest"   // longest qualifying candidate
	StrategyShortest  Strategy = "shortest"  // fallback when none qualify
	StrategyFirst     Strategy = "first"     // first non-empty in group order
	StrategyMax       Strategy = "max"       // element-wise maximum
	StrategyUnion     Strategy = "union"     // case-insensitive set union
	StrategyAppend    Strategy = "append"    // every item appended
	StrategyDerived   Strategy = "derived"   // computed from other fields
)

// Provenance tracks the origin of one field value.
type Provenance struct {
	Field      string   `json:"field" yaml:"field"`
	Source     string   `json:"source,omitempty" yaml:"source,omitempty"`     // source label of the winning item
	Item       int      `json:"item" yaml:"item"`                             // batch position of the winning item, -1 if none
	Strategy   Strategy `json:"strategy" yaml:"strategy"`                     // how the value was selected
	Reason     string   `json:"reason,omitempty" yaml:"reason,omitempty"`     // why this candidate won
	Sources    []string `json:"sources,omitempty" yaml:"sources,omitempty"`   // every source that offered a value
	Candidates int      `json:"candidates" yaml:"candidates"`                 // number of items offering a value
	Conflict   bool     `json:"conflict,omitempty" yaml:"conflict,omitempty"` // candidates disagreed
}

// Map holds provenance keyed by field path.
type Map map[string]Provenance

// Fields returns the tracked field paths in sorted order.
func (m Map) Fields() []string {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Conflicts returns the sorted field paths whose candidates disagreed.
func (m Map) Conflicts() []string {
	var out []string
	for _, f := range m.Fields() {
		if m[f].Conflict {
			out = append(out, f)
		}
	}
	return out
}

// Tracker collects provenance while a profile is built.
type Tracker interface {
	// Track records provenance for a field, replacing earlier records.
	Track(p Provenance)

	// Map returns a copy of everything tracked.
	Map() Map
}

// tracker is the default implementation.
type tracker struct {
	provenance Map
	enabled    bool
}

// NewTracker creates a new provenance tracker. A disabled tracker records
// nothing.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
	}
}

// Track records provenance for a field.
func (p *tracker) Track(prov Provenance) {
	if !p.enabled || prov.Field == "" {
		return
	}
	p.provenance[prov.Field] = prov
}

// Map returns the complete provenance map.
func (p *tracker) Map() Map {
	if !p.enabled {
		return nil
	}

	// Return a copy to prevent external modification
	result := make(Map, len(p.provenance))
	for k, v := range p.provenance {
		v.Sources = append([]string(nil), v.Sources...)
		result[k] = v
	}
	return result
}

// String renders the map as a human-readable report, fields sorted.
func (m Map) String() string {
	var sb strings.Builder
	for _, field := range m.Fields() {
		prov := m[field]
		sb.WriteString(fmt.Sprintf("%s: %s", field, prov.Strategy))
		if prov.Source != "" {
			sb.WriteString(fmt.Sprintf(" from %s", prov.Source))
		}
		sb.WriteString(fmt.Sprintf(" (%d candidates", prov.Candidates))
		if prov.Conflict {
			sb.WriteString(", conflict")
		}
		sb.WriteString(")")
		if prov.Reason != "" {
			sb.WriteString(": " + prov.Reason)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
