package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxFileSize is the largest accepted upload (5 MiB).
const MaxFileSize = 5 << 20

// DateLayout is the calendar-date layout used by form inputs.
const DateLayout = "2006-01-02"

var (
	phonePattern = regexp.MustCompile(`^[+]?[\d\s-]{10,15}$`)
	// single-@ pattern only, no RFC 5322 edge cases
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// FileInfo describes an uploaded file without its content.
type FileInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"type"`
	Size        int64  `json:"size"`
}

// IsValidName reports whether the trimmed name is 2 to 50 characters long.
func IsValidName(s string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= 2 && n <= 50
}

func IsValidPhone(s string) bool { return phonePattern.MatchString(s) }

func IsValidEmail(s string) bool { return emailPattern.MatchString(s) }

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns the
// calendar day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.In(loc)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsFutureDate reports whether s parses to a day on or after today.
// Today itself counts as valid.
func IsFutureDate(s string, now time.Time) bool {
	d, ok := ParseDate(s, now.Location())
	if !ok {
		return false
	}
	return !d.Before(StartOfDay(now))
}

// IsValidDate is an alias kept for the delivery-date call sites.
func IsValidDate(s string, now time.Time) bool { return IsFutureDate(s, now) }

// IsNotFutureDate reports whether s parses to a day on or before today.
func IsNotFutureDate(s string, now time.Time) bool {
	d, ok := ParseDate(s, now.Location())
	if !ok {
		return false
	}
	return !d.After(StartOfDay(now))
}

// ToNumber coerces form input to a float. Blank strings and NaN are not numbers.
func ToNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func IsPositiveNumber(v any) bool {
	f, ok := ToNumber(v)
	return ok && f > 0
}

func IsNonNegativeNumber(v any) bool {
	f, ok := ToNumber(v)
	return ok && f >= 0
}

func IsPositiveInteger(v any) bool {
	f, ok := ToNumber(v)
	return ok && f > 0 && f == math.Trunc(f)
}

// MaxQuantity bounds a line item's quantity so it always fits the wire int.
const MaxQuantity = 10000

// IsWithinMaxQuantity reports whether v is a number no larger than MaxQuantity.
func IsWithinMaxQuantity(v any) bool {
	f, ok := ToNumber(v)
	return ok && f <= MaxQuantity
}

func IsValidImageFile(f FileInfo) bool {
	return imageTypes[strings.ToLower(f.ContentType)]
}

func IsValidFileSize(f FileInfo) bool { return f.Size <= MaxFileSize }
