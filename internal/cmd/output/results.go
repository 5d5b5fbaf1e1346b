package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/signalmap"
	"github.com/agentstation/signalmap/pkg/items"
)

// ResultTable lays out scored profiles one per row. Wide tables add
// identifiers, match signals, conflicting fields and the assessment.
func ResultTable(res *signalmap.Result, wide bool) Data {
	headers := []string{"name", "sources", "completeness", "confidence", "verification", "score", "recommendation"}
	align := []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignLeft, AlignRight, AlignLeft}
	if wide {
		headers = append(headers, "identifiers", "signals", "conflicts", "assessment")
		align = append(align, AlignLeft, AlignLeft, AlignLeft, AlignLeft)
	}

	data := Data{ColumnAlignment: align}
	for _, h := range headers {
		data.Headers = append(data.Headers, Header(h))
	}

	for _, sp := range res.Profiles {
		p := sp.Profile
		row := []string{
			p.CanonicalName,
			strconv.Itoa(p.SourceCount()),
			strconv.FormatFloat(sp.Quality.Completeness, 'f', 2, 64),
			strconv.FormatFloat(sp.Quality.Confidence, 'f', 0, 64),
			string(sp.Quality.VerificationLevel),
			strconv.Itoa(sp.Eligibility.Score),
			string(sp.Eligibility.Recommendation),
		}
		if wide {
			row = append(row, identifiers(sp), signals(sp), strings.Join(p.Metadata.Provenance.Conflicts(), ","), assessment(sp))
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// SkippedTable lays out skipped records or items.
func SkippedTable(skipped []items.Skipped) Data {
	data := Data{
		Headers:         []string{Header("index"), Header("reason")},
		ColumnAlignment: []Align{AlignRight, AlignLeft},
	}
	for _, s := range skipped {
		data.Rows = append(data.Rows, []string{strconv.Itoa(s.Index), s.Reason})
	}
	return data
}

func identifiers(sp signalmap.ScoredProfile) string {
	ids := sp.Profile.Identifiers
	var parts []string
	for _, kv := range [][2]string{
		{"domain", ids.Domain},
		{"code", ids.CodeHostHandle},
		{"social", ids.SocialHandle},
		{"slug", ids.PlatformSlug},
	} {
		if kv[1] != "" {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	return strings.Join(parts, " ")
}

func signals(sp signalmap.ScoredProfile) string {
	parts := make([]string, 0, len(sp.Profile.Metadata.MatchSignals))
	for _, s := range sp.Profile.Metadata.MatchSignals {
		parts = append(parts, fmt.Sprintf("%d:%s", s.Item, s.Signal))
	}
	return strings.Join(parts, " ")
}

func assessment(sp signalmap.ScoredProfile) string {
	switch {
	case sp.Assessment != nil:
		return fmt.Sprintf("%d %s", sp.Assessment.Score, sp.Assessment.Recommendation)
	case sp.AssessmentError != "":
		return "error"
	default:
		return ""
	}
}
