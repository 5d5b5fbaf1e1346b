// Package items defines RawItem, one observation of a candidate entity from
// one external source, and decodes batches of them from the untyped records
// produced by the ingestion layer.
//
// Source-specific metadata is decoded into a typed Metadata record. Keys the
// core logic never reads are kept verbatim in Metadata.Extra.
package items

import (
	"strings"
	"time"

	"github.com/agentstation/signalmap/pkg/errors"
)

// RawItem is one source's observation of a candidate entity.
// It is treated as immutable once decoded.
type RawItem struct {
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string     `json:"url,omitempty" yaml:"url,omitempty"`
	Source      string     `json:"source" yaml:"source"`
	Author      string     `json:"author,omitempty" yaml:"author,omitempty"`
	Published   *time.Time `json:"published,omitempty" yaml:"published,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Metadata    Metadata   `json:"metadata" yaml:"metadata"`
}

// Validate checks the ingestion contract the engine relies on.
func (it *RawItem) Validate() error {
	if strings.TrimSpace(it.Title) == "" {
		return errors.NewValidationError("title", it.Title, "cannot be empty")
	}
	return nil
}

// TagSet returns the item's tags lower-cased and de-duplicated.
func (it *RawItem) TagSet() map[string]bool {
	set := make(map[string]bool, len(it.Tags))
	for _, tag := range it.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			set[tag] = true
		}
	}
	return set
}
