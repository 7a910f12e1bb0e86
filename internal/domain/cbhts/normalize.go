package cbhts

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abt/cbhts-integration/internal/domain/catalog"
)

const (
	dateLayout = "2006-01-02"

	// Timestamps above this magnitude are milliseconds.
	maxEpochSeconds = 9_999_999_999
)

var integerPattern = regexp.MustCompile(`^-?\d+$`)

var localLayouts = []string{
	dateLayout,
	"02-01-2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z07",
	"2006-01-02T15:04:05.000Z07",
}

// NormalizeDate reduces an epoch, a calendar date or a date-time to
// yyyy-MM-dd. Offset date-times keep the calendar date of their own offset.
// Blank input yields "" and unparseable input is returned trimmed.
func NormalizeDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if integerPattern.MatchString(trimmed) {
		if epoch, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return time.Unix(ToEpochSeconds(epoch), 0).UTC().Format(dateLayout)
		}
		return trimmed
	}

	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(dateLayout)
		}
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(dateLayout)
		}
	}
	return trimmed
}

// ToEpochSeconds converts a timestamp stored in seconds or milliseconds to
// seconds.
func ToEpochSeconds(v int64) int64 {
	if v > maxEpochSeconds || v < -maxEpochSeconds {
		return v / 1000
	}
	return v
}

// NormalizePhone strips whitespace and a leading +, and rewrites a national
// trunk prefix 0 to the 255 country code.
func NormalizePhone(raw string) string {
	value := strings.Join(strings.Fields(raw), "")
	if value == "" {
		return ""
	}
	value = strings.TrimPrefix(value, "+")
	if strings.HasPrefix(value, "0") && len(value) >= 10 {
		return "255" + value[1:]
	}
	return value
}

// ParseBool recognises affirmative and negative tokens, including the
// Swahili N(diyo) and H(apana) initials. ok is false when raw is blank or
// matches neither set.
func ParseBool(raw string) (value, ok bool) {
	switch catalog.Normalize(raw) {
	case "YES", "TRUE", "1", "N":
		return true, true
	case "NO", "FALSE", "0", "H":
		return false, true
	}
	return false, false
}

// ParseEligibility reads cbhts_enrollment.eligibility_for_testing. Blank and
// unrecognised values are eligible.
func ParseEligibility(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	token := strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(raw))
	switch strings.ToUpper(token) {
	case "YES", "TRUE", "1", "N", "Y", "NDIYO":
		return true
	case "NO", "FALSE", "0", "H", "HAPANA":
		return false
	}
	return true
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}

// splitValues parses a comma separated multi-select into sorted distinct
// trimmed values.
func splitValues(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		v := strings.TrimSpace(part)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
