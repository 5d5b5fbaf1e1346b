// Package identity derives weak identity signals from raw items: the
// entity's own domain, code-host and social handles, other platform slugs,
// and a normalized form of its name. Extraction is purely syntactic: no
// network access, and malformed input yields absent values, never errors.
package identity

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/agentstation/signalmap/pkg/items"
	"github.com/agentstation/signalmap/pkg/sources"
)

// Kind names an identifier type.
type Kind string

// Identifier kinds.
const (
	KindDomain       Kind = "domain"
	KindCodeHost     Kind = "code_host_handle"
	KindSocial       Kind = "social_handle"
	KindPlatformSlug Kind = "other_platform_slug"
	kindNone         Kind = ""
)

// Identifiers is the set of identity signals derived from one item.
// Any field may be empty. They are advisory and never globally unique.
type Identifiers struct {
	Domain         string `json:"domain,omitempty" yaml:"domain,omitempty"`
	CodeHostHandle string `json:"code_host_handle,omitempty" yaml:"code_host_handle,omitempty"`
	SocialHandle   string `json:"social_handle,omitempty" yaml:"social_handle,omitempty"`
	PlatformSlug   string `json:"other_platform_slug,omitempty" yaml:"other_platform_slug,omitempty"`
}

// IsEmpty reports whether no identifier is present.
func (ids Identifiers) IsEmpty() bool {
	return ids == Identifiers{}
}

// Get returns the identifier of the given kind.
func (ids Identifiers) Get(kind Kind) string {
	switch kind {
	case KindDomain:
		return ids.Domain
	case KindCodeHost:
		return ids.CodeHostHandle
	case KindSocial:
		return ids.SocialHandle
	case KindPlatformSlug:
		return ids.PlatformSlug
	default:
		return ""
	}
}

// set fills the identifier of the given kind if it is still empty.
func (ids *Identifiers) set(kind Kind, value string) {
	if value == "" {
		return
	}
	switch kind {
	case KindDomain:
		if ids.Domain == "" {
			ids.Domain = value
		}
	case KindCodeHost:
		if ids.CodeHostHandle == "" {
			ids.CodeHostHandle = value
		}
	case KindSocial:
		if ids.SocialHandle == "" {
			ids.SocialHandle = value
		}
	case KindPlatformSlug:
		if ids.PlatformSlug == "" {
			ids.PlatformSlug = value
		}
	}
}

// MatchKinds are the identifier kinds whose equality means two items
// describe the same entity, in the order they are checked.
var MatchKinds = []Kind{KindDomain, KindCodeHost, KindSocial}

var (
	urlPattern     = regexp.MustCompile(`https?://[^\s"'<>()\[\]]+`)
	mentionPattern = regexp.MustCompile(`(?:^|[^\w@./])@([A-Za-z0-9_]{2,30})\b`)
)

// Extract derives identifiers from an item. Handles explicitly provided in
// metadata win over ones parsed from the URL, which win over ones found in
// the description.
func Extract(it items.RawItem) Identifiers {
	var ids Identifiers
	ids.set(KindCodeHost, cleanHandle(it.Metadata.CodeHostHandle, platforms["github.com"]))
	ids.set(KindSocial, cleanHandle(it.Metadata.SocialHandle, platforms["x.com"]))
	ids.set(KindPlatformSlug, cleanHandle(it.Metadata.PlatformSlug, hostRule{kind: KindPlatformSlug}))

	if kind, value := classifyURL(it.URL); kind != kindNone {
		if kind != KindDomain || ownsDomain(it) {
			ids.set(kind, value)
		}
	}

	// Handles mentioned in the text. Only code-host and social handles
	// that echo the item's own name are taken: an article links investors,
	// dependencies and competitors too.
	name := NormalizeName(it.Title)
	text := it.Description
	links := urlPattern.FindAllString(text, -1)
	links = append(links, Links(text)...)
	for _, link := range links {
		kind, value := classifyURL(strings.TrimRight(link, ".,;:!?"))
		if (kind == KindCodeHost || kind == KindSocial) && echoesName(value, name) {
			ids.set(kind, value)
		}
	}
	if ids.SocialHandle == "" {
		for _, m := range mentionPattern.FindAllStringSubmatch(PlainText(text), -1) {
			if handle := cleanHandle(m[1], platforms["x.com"]); echoesName(handle, name) {
				ids.set(KindSocial, handle)
				break
			}
		}
	}
	return ids
}

// echoesName reports whether a handle is the normalized name, optionally
// followed by a short qualifier ("acmehq", "acme_xyz").
func echoesName(handle, name string) bool {
	if len(name) < 2 {
		return false
	}
	h := NormalizeName(handle)
	return strings.HasPrefix(h, name) && len(h)-len(name) <= 4
}

// ownsDomain reports whether an item's URL can name the entity's own site.
// Articles and posts hosted by a publisher carry the publisher's domain.
func ownsDomain(it items.RawItem) bool {
	switch sources.Classify(it.Source) {
	case sources.CategoryNews, sources.CategoryBlog, sources.CategorySocial:
		u, err := parseURL(it.URL)
		if err != nil {
			return false
		}
		return strings.Trim(u.Path, "/") == ""
	default:
		return true
	}
}

// Domain returns the lower-cased hostname of raw without "www." and port,
// or "" when raw is not a usable URL.
func Domain(raw string) string {
	u, err := parseURL(raw)
	if err != nil {
		return ""
	}
	return hostOf(u)
}

// DomainStem returns the registrable label of a domain: "acme" for
// "acme.io", "app.acme.co.uk" and "acme.com".
func DomainStem(domain string) string {
	labels := strings.Split(strings.Trim(domain, "."), ".")
	if len(labels) < 2 {
		return ""
	}
	i := len(labels) - 2
	if i > 0 && secondLevel[labels[i]] {
		i--
	}
	return labels[i]
}

var secondLevel = map[string]bool{"co": true, "com": true, "org": true, "net": true, "ac": true, "gov": true, "edu": true}

func parseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.User != nil {
		return nil, errInvalidURL
	}
	if hostOf(u) == "" {
		return nil, errInvalidURL
	}
	return u, nil
}

func hostOf(u *url.URL) string {
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	host = strings.TrimPrefix(host, "www.")
	if !strings.Contains(host, ".") || strings.ContainsAny(host, " _") {
		return ""
	}
	return host
}

// cleanHandle lower-cases a handle and strips a leading "@" and any URL
// wrapping. A bare path such as "acme/acme-core" is read the way the
// platform's URLs are, so it names the same account as the full URL.
func cleanHandle(h string, rule hostRule) string {
	h = strings.TrimSpace(h)
	if strings.Contains(h, "/") {
		if _, value := classifyURL(h); value != "" {
			return value
		}
		_, value := accountFromPath(rule, h)
		return value
	}
	h = strings.TrimPrefix(h, "@")
	return strings.ToLower(strings.TrimSpace(h))
}
