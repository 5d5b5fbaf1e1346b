package identity

import (
	"errors"
	"slices"
	"strings"
)

var errInvalidURL = errors.New("invalid url")

// hostRule describes how a platform host names accounts.
type hostRule struct {
	kind Kind
	// skip lists leading path segments that precede the account segment.
	skip []string
	// ignore lists first segments that never name an account.
	ignore []string
	// sub means the account is the subdomain (acme.github.io).
	sub bool
}

// platforms maps shared hosts to the identifier their URLs carry. A URL on
// one of these hosts never yields a domain: the host is shared by all of
// its users.
var platforms = map[string]hostRule{
	// code hosts
	"github.com":      {kind: KindCodeHost, skip: []string{"orgs", "users"}, ignore: codeHostPages},
	"gitlab.com":      {kind: KindCodeHost, skip: []string{"groups", "users"}, ignore: codeHostPages},
	"bitbucket.org":   {kind: KindCodeHost, ignore: codeHostPages},
	"codeberg.org":    {kind: KindCodeHost, ignore: codeHostPages},
	"huggingface.co":  {kind: KindCodeHost, skip: []string{"spaces", "datasets"}, ignore: codeHostPages},
	"github.io":       {kind: KindCodeHost, sub: true},
	"gitlab.io":       {kind: KindCodeHost, sub: true},
	"raw.github.com":  {kind: kindNone},
	"gist.github.com": {kind: kindNone},

	// social platforms
	"twitter.com":        {kind: KindSocial, ignore: socialPages},
	"x.com":              {kind: KindSocial, ignore: socialPages},
	"mobile.twitter.com": {kind: KindSocial, ignore: socialPages},
	"warpcast.com":       {kind: KindSocial, ignore: socialPages},
	"threads.net":        {kind: KindSocial, ignore: socialPages},
	"instagram.com":      {kind: KindSocial, ignore: socialPages},
	"bsky.app":           {kind: KindSocial, skip: []string{"profile"}, ignore: socialPages},
	"t.me":               {kind: KindSocial, ignore: socialPages},

	// other platforms with per-entity pages
	"producthunt.com": {kind: KindPlatformSlug, skip: []string{"posts", "products"}, ignore: []string{"topics", "search", "leaderboard", "newsletters", "stories"}},
	"ycombinator.com": {kind: KindPlatformSlug, skip: []string{"companies"}, ignore: []string{"launches", "blog", "apply", "library", "jobs"}},
	"crunchbase.com":  {kind: KindPlatformSlug, skip: []string{"organization"}, ignore: []string{"discover", "hub", "person"}},
	"linkedin.com":    {kind: KindPlatformSlug, skip: []string{"company"}, ignore: []string{"in", "feed", "pulse", "posts", "jobs"}},
	"devpost.com":     {kind: KindPlatformSlug, skip: []string{"software"}},
	"medium.com":      {kind: KindPlatformSlug, sub: true},
	"substack.com":    {kind: KindPlatformSlug, sub: true},
	"mirror.xyz":      {kind: KindPlatformSlug},
	"dev.to":          {kind: KindPlatformSlug},
	"linktr.ee":       {kind: KindPlatformSlug},
	"notion.site":     {kind: KindPlatformSlug, sub: true},
	"vercel.app":      {kind: KindPlatformSlug, sub: true},
	"netlify.app":     {kind: KindPlatformSlug, sub: true},

	// shared hosts that carry no per-entity identifier
	"news.ycombinator.com": {kind: kindNone},
	"reddit.com":           {kind: kindNone},
	"youtube.com":          {kind: kindNone},
	"youtu.be":             {kind: kindNone},
	"t.co":                 {kind: kindNone},
	"bit.ly":               {kind: kindNone},
	"docs.google.com":      {kind: kindNone},
	"apps.apple.com":       {kind: kindNone},
	"play.google.com":      {kind: kindNone},
	"techcrunch.com":       {kind: kindNone},
	"venturebeat.com":      {kind: kindNone},
	"coindesk.com":         {kind: kindNone},
	"theblock.co":          {kind: kindNone},
	"decrypt.co":           {kind: kindNone},
	"etherscan.io":         {kind: kindNone},
	"defillama.com":        {kind: kindNone},
	"dune.com":             {kind: kindNone},
}

var codeHostPages = []string{
	"about", "apps", "collections", "enterprise", "events", "explore",
	"features", "login", "marketplace", "pricing", "search", "settings",
	"sponsors", "topics", "trending", "signup", "models",
}

var socialPages = []string{
	"home", "i", "intent", "share", "search", "hashtag", "explore",
	"settings", "login", "notifications", "messages", "channel",
}

// lookupPlatform finds the rule for host, returning the subdomain in front
// of the platform host for subdomain rules.
func lookupPlatform(host string) (hostRule, string, bool) {
	if rule, ok := platforms[host]; ok {
		return rule, "", true
	}
	for {
		dot := strings.IndexByte(host, '.')
		if dot < 0 {
			return hostRule{}, "", false
		}
		label, parent := host[:dot], host[dot+1:]
		if rule, ok := platforms[parent]; ok {
			if rule.sub {
				return rule, label, true
			}
			return hostRule{kind: kindNone}, "", true
		}
		host = parent
	}
}

// classifyURL returns the identifier a URL carries: the domain of an
// entity's own site, or the account on a platform host.
func classifyURL(raw string) (Kind, string) {
	u, err := parseURL(raw)
	if err != nil {
		return kindNone, ""
	}
	host := hostOf(u)
	rule, subdomain, ok := lookupPlatform(host)
	if !ok {
		return KindDomain, host
	}
	if rule.sub {
		if subdomain == "" || subdomain == "www" {
			return accountFromPath(rule, u.Path)
		}
		return rule.kind, strings.ToLower(subdomain)
	}
	return accountFromPath(rule, u.Path)
}

func accountFromPath(rule hostRule, path string) (Kind, string) {
	if rule.kind == kindNone {
		return kindNone, ""
	}
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) > 1 && slices.Contains(rule.skip, strings.ToLower(segments[0])) {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return kindNone, ""
	}
	account := strings.ToLower(strings.TrimPrefix(segments[0], "@"))
	if account == "" || slices.Contains(rule.ignore, account) || slices.Contains(rule.skip, account) {
		return kindNone, ""
	}
	return rule.kind, account
}
