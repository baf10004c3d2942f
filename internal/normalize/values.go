package normalize

import (
	"encoding/json"
	"html"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"flixlist/internal/catalog"
)

// epochMillisThreshold separates epoch milliseconds from epoch seconds.
const epochMillisThreshold = 1_000_000_000_000

// dateLayouts are tried in order; the first match wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
}

var lower = cases.Lower(language.Und)

// Rating coerces value to a score. Non-numeric and non-positive values are absent.
func Rating(value any) catalog.Rating {
	f, ok := number(value)
	if !ok || f <= 0 {
		return catalog.Rating{}
	}
	return catalog.NewRating(f)
}

// Date coerces value to a calendar date in UTC. All-digit strings are epoch
// milliseconds above 10^12 and epoch seconds otherwise.
func Date(value any) (time.Time, bool) {
	raw := text(value)
	if raw == "" {
		return time.Time{}, false
	}
	if isDigits(raw) {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return time.Time{}, false
		}
		var t time.Time
		if n > epochMillisThreshold {
			t = time.UnixMilli(n)
		} else {
			t = time.Unix(n, 0)
		}
		return truncateDay(t), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

// Year turns a four-digit year into January 1st of that year.
func Year(value any) (time.Time, bool) {
	raw := text(value)
	if len(raw) != 4 || !isDigits(raw) {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(raw)
	if year < 1870 {
		return time.Time{}, false
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
}

// Title unescapes HTML entities, applies NFC and collapses whitespace.
func Title(value any) string {
	raw := text(value)
	if raw == "" {
		return ""
	}
	raw = html.UnescapeString(raw)
	raw = norm.NFC.String(raw)
	return strings.Join(strings.Fields(raw), " ")
}

// ExternalID coerces value to a positive integer id, or 0.
func ExternalID(value any) int64 {
	f, ok := number(value)
	if !ok || f <= 0 || f != math.Trunc(f) {
		return 0
	}
	return int64(f)
}

// MediaType parses catalog or override spellings of the media type.
func MediaType(value any) (catalog.MediaType, bool) {
	mt, err := catalog.ParseMediaType(lower.String(text(value)))
	if err != nil {
		return "", false
	}
	return mt, true
}

func number(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
