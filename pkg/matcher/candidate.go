package matcher

import (
	"unicode/utf8"

	"github.com/agentstation/signalmap/pkg/identity"
	"github.com/agentstation/signalmap/pkg/items"
)

// Candidate is an item with the signals the matcher compares, derived once
// so that each pairwise comparison only reads.
type Candidate struct {
	Item     items.RawItem
	IDs      identity.Identifiers
	Name     string
	Batch    string
	Location string
	Tags     map[string]bool

	// echoes are normalized forms of the item's own identifiers
	// (domain stem, code-host handle) that may repeat another item's name.
	echoes []string
}

// NewCandidate derives the comparable signals of an item.
func NewCandidate(it items.RawItem) *Candidate {
	c := &Candidate{
		Item:     it,
		IDs:      identity.Extract(it),
		Name:     identity.NormalizeName(it.Title),
		Batch:    identity.NormalizeBatch(it.Metadata.Batch),
		Location: identity.NormalizeLocation(it.Metadata.Location),
		Tags:     it.TagSet(),
	}
	for _, v := range []string{identity.DomainStem(c.IDs.Domain), c.IDs.CodeHostHandle, c.IDs.SocialHandle} {
		if n := identity.NormalizeName(v); n != "" {
			c.echoes = append(c.echoes, n)
		}
	}
	return c
}

// NameLength is the length of the normalized name in runes.
func (c *Candidate) NameLength() int {
	return utf8.RuneCountInString(c.Name)
}

// echoesName reports whether one of c's identifiers spells name.
func (c *Candidate) echoesName(name string) bool {
	if name == "" {
		return false
	}
	for _, e := range c.echoes {
		if e == name {
			return true
		}
	}
	return false
}
