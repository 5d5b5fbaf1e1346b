package items

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var amountPattern = regexp.MustCompile(`(?i)^\s*(?:usd|us\$|\$|€|£)?\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(k|thousand|mm|mn|m|million|bn|b|billion)?\s*(?:usd|dollars)?\s*$`)

// ParseAmount parses a money amount such as "$4.2M", "500k", "1,200,000"
// or "1.5 billion" into whole currency units.
func ParseAmount(s string) (float64, bool) {
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return math.Round(v * multiplier(m[2])), true
}

// multiplier returns the scale of an amount suffix.
func multiplier(suffix string) float64 {
	switch strings.ToLower(suffix) {
	case "k", "thousand":
		return 1e3
	case "m", "mm", "mn", "million":
		return 1e6
	case "b", "bn", "billion":
		return 1e9
	default:
		return 1
	}
}

// toString converts scalar values to a trimmed string.
func toString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case fmt.Stringer:
		s := strings.TrimSpace(t.String())
		return s, s != ""
	case json.Number:
		return t.String(), true
	case int, int64, uint64, float64:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}

// toStrings accepts a list or a comma separated string.
func toStrings(v any) []string {
	var out []string
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range t {
			if s, ok := toString(e); ok {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// toFloat converts numbers and numeric strings, including money amounts.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return ParseAmount(t)
	default:
		return 0, false
	}
}

// toInt converts to a non-negative integer.
func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f < 0 {
		return 0, false
	}
	return int(math.Round(f)), true
}

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
	"Jan 2006",
	"January 2006",
}

// toTime converts timestamps, date strings, years and unix seconds to UTC.
func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return t.UTC(), !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
		return time.Time{}, false
	default:
		f, ok := toFloat(v)
		if !ok {
			return time.Time{}, false
		}
		n := int64(f)
		if n >= 1900 && n <= 2200 {
			return time.Date(int(n), time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
		if n <= 0 {
			return time.Time{}, false
		}
		return time.Unix(n, 0).UTC(), true
	}
}
