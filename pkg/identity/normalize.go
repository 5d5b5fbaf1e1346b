package identity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// corporateSuffixes are trailing words that carry no identity.
var corporateSuffixes = map[string]bool{
	"inc": true, "incorporated": true, "llc": true, "ltd": true, "limited": true,
	"corp": true, "corporation": true, "co": true, "company": true,
	"labs": true, "lab": true, "technologies": true, "technology": true,
	"gmbh": true, "plc": true, "sa": true, "ag": true, "bv": true, "hq": true,
	"protocol": true, "foundation": true,
}

// domainSuffixes are TLD-style endings product names often carry ("Acme.io").
var domainSuffixes = []string{
	".io", ".ai", ".xyz", ".com", ".co", ".so", ".dev", ".app", ".org",
	".net", ".sh", ".gg", ".fi", ".finance", ".tech", ".build",
}

// nameSeparators split a display name from its tagline
// ("Acme - Deploy in seconds").
var nameSeparators = []string{" - ", " – ", " — ", " | ", ": "}

// launchPrefixes introduce launch-board posts ("Show HN: Acme").
var launchPrefixes = []string{"show hn:", "launch hn:", "ask hn:", "tell hn:"}

// DisplayName returns the name part of a title: launch-board prefixes and
// taglines removed, surrounding space trimmed.
func DisplayName(title string) string {
	title = strings.TrimSpace(title)
	lower := strings.ToLower(title)
	for _, prefix := range launchPrefixes {
		if strings.HasPrefix(lower, prefix) {
			title = strings.TrimSpace(title[len(prefix):])
			break
		}
	}
	for _, sep := range nameSeparators {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
		}
	}
	return strings.TrimSpace(title)
}

// NormalizeName reduces a title to the comparable core of an entity name:
// display name only, diacritics folded, lower-cased, corporate and domain
// suffixes stripped, non-alphanumerics dropped.
func NormalizeName(title string) string {
	title = strings.ToLower(foldDiacritics(DisplayName(title)))

	words := strings.FieldsFunc(title, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '(' || r == ')'
	})
	for len(words) > 0 {
		last := strings.Trim(words[len(words)-1], ".")
		if stripped, ok := trimDomainSuffix(last); ok {
			words[len(words)-1] = stripped
			continue
		}
		if corporateSuffixes[last] || last == "" {
			words = words[:len(words)-1]
			continue
		}
		break
	}

	var b strings.Builder
	for _, w := range words {
		for _, r := range w {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func trimDomainSuffix(word string) (string, bool) {
	for _, suffix := range domainSuffixes {
		if stem, ok := strings.CutSuffix(word, suffix); ok && stem != "" {
			return stem, true
		}
	}
	return word, false
}

// foldDiacritics maps "Café Über" to "Cafe Uber".
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Similarity returns 1 - levenshtein(a, b) / max(len(a), len(b)) over runes
// of two already-normalized names. Empty names have similarity 0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// NormalizeLocation reduces a location to its first component
// ("San Francisco, CA" to "san francisco").
func NormalizeLocation(loc string) string {
	loc = strings.ToLower(foldDiacritics(loc))
	if i := strings.IndexAny(loc, ",/;("); i >= 0 {
		loc = loc[:i]
	}
	return strings.Join(strings.Fields(loc), " ")
}

// NormalizeBatch canonicalizes a batch or cohort label ("W 24", "w24",
// "Winter 2024" all become "w24").
func NormalizeBatch(batch string) string {
	b := strings.ToLower(strings.TrimSpace(batch))
	for season, letter := range seasons {
		if rest, ok := strings.CutPrefix(b, season); ok {
			rest = strings.TrimSpace(rest)
			if len(rest) == 4 && strings.HasPrefix(rest, "20") {
				rest = rest[2:]
			}
			b = letter + rest
			break
		}
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, b)
}

var seasons = map[string]string{
	"winter": "w",
	"summer": "s",
	"fall":   "f",
	"autumn": "f",
	"spring": "x",
}
