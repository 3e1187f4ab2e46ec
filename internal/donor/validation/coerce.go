package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayouts are the accepted textual date forms: ISO, the Brazilian form used by
// the bulk import files, and RFC 3339.
var DateLayouts = []string{"2006-01-02", "02/01/2006", time.RFC3339}

// IsEmpty reports whether v carries no value: nil, a blank string, or a nil pointer.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case *string:
		return t == nil || strings.TrimSpace(*t) == ""
	case *int:
		return t == nil
	case *time.Time:
		return t == nil || t.IsZero()
	case time.Time:
		return t.IsZero()
	default:
		return false
	}
}

// AsString returns the trimmed string form of v.
func AsString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case *string:
		if t == nil {
			return "", false
		}
		return strings.TrimSpace(*t), true
	default:
		return "", false
	}
}

// AsInt converts the numeric forms a form layer or JSON decoder may hand over.
func AsInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case *int:
		if t == nil {
			return 0, false
		}
		return *t, true
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || math.IsNaN(t) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}

// AsDate parses v as a calendar date in UTC.
func AsDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return dateOnly(t), !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return dateOnly(*t), true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range DateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return dateOnly(d), true
			}
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AgeAt returns completed years between birth and now.
func AgeAt(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}
