// Package sources classifies the free-form source labels carried by raw
// items (e.g. "github", "ProductHunt", "techcrunch-rss") into coarse
// categories, and maps each category to the content bucket its items are
// filed under in a unified profile.
//
// Classification is a fixed heuristic table: the first rule whose keyword
// appears in the lower-cased label wins.
package sources

import (
	"slices"
	"strings"
)

// Category is the coarse class of a source.
type Category string

// Source categories.
const (
	CategoryCodeHost    Category = "code_host"
	CategoryLaunchBoard Category = "launch_board"
	CategoryNews        Category = "news"
	CategoryBlog        Category = "blog"
	CategorySocial      Category = "social"
	CategoryOnChain     Category = "on_chain"
	CategoryRegistry    Category = "registry"
	CategoryUnknown     Category = "unknown"
)

// String returns the string representation of a category.
func (c Category) String() string {
	return string(c)
}

// Categories returns all known categories, unknown last.
func Categories() []Category {
	return []Category{
		CategoryCodeHost,
		CategoryLaunchBoard,
		CategoryNews,
		CategoryBlog,
		CategorySocial,
		CategoryOnChain,
		CategoryRegistry,
		CategoryUnknown,
	}
}

// IsValid returns true if the category is one of the defined constants.
func (c Category) IsValid() bool {
	return slices.Contains(Categories(), c)
}

type rule struct {
	category Category
	keywords []string
}

// rules is ordered: more specific labels come first. "ycombinator" must be
// checked before "hackernews" style launch boards, and "hacker news" show
// posts are launches rather than news.
var rules = []rule{
	{CategoryRegistry, []string{"ycombinator", "yc-", "crunchbase", "registry", "accelerator", "techstars", "a16z-crypto-startup"}},
	{CategoryCodeHost, []string{"github", "gitlab", "bitbucket", "codeberg", "huggingface"}},
	{CategoryLaunchBoard, []string{"producthunt", "product hunt", "product-hunt", "hackernews", "hacker news", "show hn", "betalist", "indiehackers", "launch", "devpost"}},
	{CategoryOnChain, []string{"defillama", "dune", "etherscan", "solscan", "onchain", "on-chain", "chain", "dappradar", "tokenterminal"}},
	{CategorySocial, []string{"twitter", "x.com", "reddit", "farcaster", "warpcast", "bluesky", "mastodon", "linkedin", "discord", "telegram", "social"}},
	{CategoryBlog, []string{"blog", "medium", "substack", "mirror", "dev.to", "devto", "hashnode", "ghost"}},
	{CategoryNews, []string{"news", "techcrunch", "rss", "coindesk", "theblock", "decrypt", "venturebeat", "press", "wire"}},
}

// Classify returns the category of a source label.
func Classify(label string) Category {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return CategoryUnknown
	}
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(l, kw) {
				return r.category
			}
		}
	}
	return CategoryUnknown
}

// Distinct returns the distinct source labels in first-seen order,
// compared case-insensitively with surrounding space removed.
func Distinct(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		key := strings.ToLower(strings.TrimSpace(label))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(label))
	}
	return out
}
