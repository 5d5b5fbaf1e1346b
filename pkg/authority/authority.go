// Package authority decides which sources are authoritative for a profile
// field. The profile builder consults it when several items in a group
// offer competing values, e.g. for the canonical name, where a
// registry-like source (an accelerator directory) outranks a news headline.
package authority

import (
	"path/filepath"
	"strings"

	"github.com/agentstation/signalmap/pkg/errors"
	"github.com/agentstation/signalmap/pkg/sources"
)

// categoryPrefix marks a Field.Source that names a source category rather
// than a label pattern.
const categoryPrefix = "category:"

// Authority determines which source is authoritative for each field
type Authority interface {
	// Priority returns the authority of a source label for a field path.
	// Zero means the source holds no authority for the field.
	Priority(fieldPath, source string) int
}

// Field defines source priority for a specific field
type Field struct {
	Path     string `json:"path" yaml:"path"`         // e.g., "canonical_name", "company.*"
	Source   string `json:"source" yaml:"source"`     // label glob ("yc*") or "category:registry"
	Priority int    `json:"priority" yaml:"priority"` // higher = more authoritative
}

type authorities struct {
	fields []Field
}

// New creates an Authority from the given fields. With no fields the
// default table is used.
func New(fields ...Field) Authority {
	if len(fields) == 0 {
		fields = defaultAuthorities()
	}
	return &authorities{fields: fields}
}

// FromLabels builds an Authority that ranks the given source label
// patterns for a field, earlier labels ranking higher.
func FromLabels(fieldPath string, labels ...string) Authority {
	fields := make([]Field, 0, len(labels))
	for i, label := range labels {
		fields = append(fields, Field{Path: fieldPath, Source: label, Priority: 100 - i})
	}
	return &authorities{fields: fields}
}

// Priority returns the highest priority of any authority matching both the
// field path and the source label.
func (a *authorities) Priority(fieldPath, source string) int {
	best := 0
	for _, f := range a.fields {
		if !MatchesPattern(fieldPath, f.Path) || !matchesSource(source, f.Source) {
			continue
		}
		if f.Priority > best {
			best = f.Priority
		}
	}
	return best
}

// MatchesPattern checks if a field path matches a pattern (supports * wildcards)
func MatchesPattern(fieldPath, pattern string) bool {
	if fieldPath == pattern {
		return true
	}

	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return strings.HasPrefix(fieldPath, prefix)
	}

	matched, err := filepath.Match(pattern, fieldPath)
	if err != nil {
		return false
	}
	return matched
}

// ValidateSource checks a source pattern as accepted by Field.Source: a
// well-formed label glob, or a category reference naming a known category.
func ValidateSource(pattern string) error {
	p := strings.ToLower(strings.TrimSpace(pattern))
	if p == "" {
		return errors.NewValidationError("source", pattern, "cannot be empty")
	}
	if category, ok := strings.CutPrefix(p, categoryPrefix); ok {
		if !sources.Category(category).IsValid() {
			return errors.NewValidationError("source", pattern, "unknown source category "+category)
		}
		return nil
	}
	if _, err := filepath.Match(p, ""); err != nil {
		return errors.NewValidationError("source", pattern, "malformed pattern: "+err.Error())
	}
	return nil
}

// matchesSource compares a source label against a label glob or a
// category reference, case-insensitively.
func matchesSource(label, pattern string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if category, ok := strings.CutPrefix(pattern, categoryPrefix); ok {
		return sources.Classify(label) == sources.Category(category)
	}
	return MatchesPattern(label, pattern)
}

// defaultAuthorities returns the default field authorities
func defaultAuthorities() []Field {
	return []Field{
		// Registry-like directories carry the legal/preferred company name
		{Path: "canonical_name", Source: categoryPrefix + string(sources.CategoryRegistry), Priority: 100},
		{Path: "canonical_name", Source: categoryPrefix + string(sources.CategoryLaunchBoard), Priority: 50},
	}
}
