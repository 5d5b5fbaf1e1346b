package identity

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/agentstation/signalmap/pkg/items"
)

// Funding is a financing fact found in free text.
type Funding struct {
	Amount float64
	Stage  string
}

const (
	moneyExpr = `(?:us\$|\$|€|£)\s?([0-9][0-9,]*(?:\.[0-9]+)?)\s*(million|billion|thousand|mm|mn|bn|k|m|b)?\b`
	stageExpr = `(pre-seed|pre seed|preseed|seed|angel|series\s+[a-f])`
)

var (
	// "raised $4.2M", "secures a $500k pre-seed round"
	raisedPattern = regexp.MustCompile(`(?i)\b(?:rais(?:e|es|ed|ing)|secur(?:e|es|ed|ing)|clos(?:e|es|ed|ing)|land(?:s|ed)?|bag(?:s|ged)?|nab(?:s|bed)?|gets?|got)\b[^.$€£]{0,40}?` + moneyExpr + `(?:\s+(?:in\s+)?(?:a\s+|an\s+)?(?:new\s+)?` + stageExpr + `\b)?`)
	// "$4.2M seed round"
	stagedMoneyPattern = regexp.MustCompile(`(?i)` + moneyExpr + `\s+(?:in\s+)?(?:a\s+|an\s+)?` + stageExpr + `\b`)
	// "seed round", "Series A funding"
	stageRoundPattern = regexp.MustCompile(`(?i)\b` + stageExpr + `\s+(?:round|funding|financing|raise)\b`)
)

// sentenceEnd splits plain text into sentences. Decimal points are not
// followed by space and so never split.
var sentenceEnd = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

// FundingFromText finds the financing fact the text states about the named
// entity. name is a normalized name as returned by NormalizeName; an empty
// name accepts every sentence. The largest amount in sentences that mention
// the name wins, with the stage named alongside it. When no such sentence
// states an amount, the first sentence that does is used. Amounts not tied
// to a financing verb or stage are ignored.
func FundingFromText(text, name string) (Funding, bool) {
	return fundingFor(sentences(text), name)
}

// ItemFunding returns the financing fact an item states about itself. The
// title and each sentence of the description are read separately.
func ItemFunding(it items.RawItem) (Funding, bool) {
	ss := append([]string{PlainText(it.Title)}, sentences(it.Description)...)
	return fundingFor(ss, NormalizeName(it.Title))
}

func fundingFor(ss []string, name string) (Funding, bool) {
	var named []string
	for _, s := range ss {
		if mentions(s, name) {
			named = append(named, s)
		}
	}
	f, ok := fundingIn(named)
	if f.Amount > 0 {
		return f, true
	}
	for _, s := range ss {
		if lead, _ := fundingIn([]string{s}); lead.Amount > 0 {
			if lead.Stage == "" {
				lead.Stage = f.Stage
			}
			return lead, true
		}
	}
	return f, ok
}

// fundingIn returns the largest amount raised across the sentences. The
// stage comes from the sentence that states the winning amount, or from
// any round named in the sentences when that one names none.
func fundingIn(ss []string) (Funding, bool) {
	var f Funding
	found := false
	for _, s := range ss {
		consider := func(num, suffix, stage string) {
			amount, ok := items.ParseAmount(num + suffix)
			if !ok || amount <= 0 {
				return
			}
			if !found || amount > f.Amount {
				f = Funding{Amount: amount, Stage: NormalizeStage(stage)}
				found = true
			} else if amount == f.Amount && f.Stage == "" {
				f.Stage = NormalizeStage(stage)
			}
		}
		for _, m := range raisedPattern.FindAllStringSubmatch(s, -1) {
			consider(m[1], m[2], m[3])
		}
		for _, m := range stagedMoneyPattern.FindAllStringSubmatch(s, -1) {
			consider(m[1], m[2], m[3])
		}
	}
	if f.Stage == "" {
		for _, s := range ss {
			if m := stageRoundPattern.FindStringSubmatch(s); m != nil {
				f.Stage = NormalizeStage(m[1])
				break
			}
		}
	}
	return f, found || f.Stage != ""
}

// sentences splits text into plain-text sentences. Line breaks in plain
// text end a sentence too.
func sentences(text string) []string {
	var lines []string
	if looksLikeHTML(text) {
		lines = []string{PlainText(text)}
	} else {
		lines = strings.Split(text, "\n")
	}
	var out []string
	for _, line := range lines {
		for _, s := range sentenceEnd.Split(PlainText(line), -1) {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// mentions reports whether a sentence names the entity. Names shorter than
// two characters cannot be told apart from ordinary words and match every
// sentence.
func mentions(sentence, name string) bool {
	if len(name) < 2 {
		return true
	}
	var b strings.Builder
	for _, r := range strings.ToLower(foldDiacritics(sentence)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return strings.Contains(b.String(), name)
}

// NormalizeStage canonicalizes a funding stage label: "Pre Seed",
// "preseed" and "pre_seed" become "pre-seed", "Series  A" becomes "series-a".
func NormalizeStage(stage string) string {
	s := strings.ToLower(strings.Join(strings.Fields(stage), " "))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	if s == "preseed" {
		s = "pre-seed"
	}
	return s
}
