// Package dates turns customer due-date phrases into ISO calendar dates.
package dates

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TodaySource reports the current civil date, usually from a remote time
// service.
type TodaySource interface {
	Today(ctx context.Context) (time.Time, error)
}

// HolidayValidator checks a date against an external calendar.
type HolidayValidator interface {
	Validate(ctx context.Context, date time.Time) Verdict
}

// Resolver resolves friendly date phrases ("tomorrow", "next friday",
// "3rd March") into ISO dates. Resolution soft-fails: text that cannot be
// understood is passed through or rejected, never guessed.
type Resolver struct {
	today    TodaySource
	override string
	now      func() time.Time
}

// NewResolver creates a resolver. override, when set to an ISO date, pins the
// reference "today" for reproducible runs; otherwise the source is consulted
// and the local clock is the last resort.
func NewResolver(today TodaySource, override string) *Resolver {
	return &Resolver{
		today:    today,
		override: strings.TrimSpace(override),
		now:      time.Now,
	}
}

var (
	isoFullRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoSearchRe  = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashRe      = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	dayFirstRe   = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+([a-zA-Z]+)(?:\s+(\d{2,4}))?\b`)
	monthFirstRe = regexp.MustCompile(`\b([a-zA-Z]+)\s+(\d{1,2})(?:st|nd|rd|th)?(?:\s+(\d{2,4}))?\b`)
	weekdayRe    = regexp.MustCompile(`(next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)
)

var weekdayIndex = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

var monthIndex = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// ReferenceToday picks the reference date for resolution: the configured
// override, then the time service, then the local clock.
func (r *Resolver) ReferenceToday(ctx context.Context) time.Time {
	if r.override != "" {
		if t, err := time.Parse("2006-01-02", r.override); err == nil {
			return t
		}
	}
	if r.today != nil {
		if t, err := r.today.Today(ctx); err == nil {
			return t
		}
	}
	n := r.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Resolve turns relative phrases into ISO dates when possible. ISO input is
// passed through untouched; text that resolution cannot handle, or any
// failure to learn today's date, returns the original text unchanged.
func (r *Resolver) Resolve(ctx context.Context, text string) string {
	if text == "" {
		return text
	}
	lowered := strings.ToLower(strings.TrimSpace(text))
	if isoFullRe.MatchString(lowered) {
		return lowered
	}
	if r.today == nil {
		return text
	}
	today, err := r.today.Today(ctx)
	if err != nil {
		return text
	}
	if out, ok := resolveRelative(lowered, today); ok {
		return out
	}
	return text
}

// Normalize parses free-form date text into an ISO date using the given
// reference day. It returns false when the text matches no supported shape
// or names an impossible calendar date.
func (r *Resolver) Normalize(text string, today time.Time) (string, bool) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return "", false
	}
	lowered := strings.ToLower(cleaned)

	if !isoFullRe.MatchString(lowered) {
		if out, ok := resolveRelative(lowered, today); ok {
			return out, true
		}
	}

	if m := isoSearchRe.FindStringSubmatch(cleaned); m != nil {
		return makeISO(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}

	if m := slashRe.FindStringSubmatch(cleaned); m != nil {
		day, month := atoi(m[1]), atoi(m[2])
		year := expandYear(m[3], today)
		return makeISO(year, month, day)
	}

	if m := dayFirstRe.FindStringSubmatch(lowered); m != nil {
		if month, ok := lookupMonth(m[2]); ok {
			year := expandYear(m[3], today)
			return makeISO(year, month, atoi(m[1]))
		}
	}

	if m := monthFirstRe.FindStringSubmatch(lowered); m != nil {
		if month, ok := lookupMonth(m[1]); ok {
			year := expandYear(m[3], today)
			return makeISO(year, month, atoi(m[2]))
		}
	}

	return "", false
}

// resolveRelative handles today/tomorrow/weekday phrases against a known
// reference day. A bare weekday naming the reference day itself, or any
// weekday prefixed with "next" that lands on it, jumps a full week forward.
func resolveRelative(lowered string, today time.Time) (string, bool) {
	if strings.Contains(lowered, "today") {
		return today.Format("2006-01-02"), true
	}
	if strings.Contains(lowered, "tomorrow") {
		return today.AddDate(0, 0, 1).Format("2006-01-02"), true
	}
	if m := weekdayRe.FindStringSubmatch(lowered); m != nil {
		target := weekdayIndex[m[2]]
		daysAhead := (target - mondayWeekday(today) + 7) % 7
		if daysAhead == 0 {
			daysAhead = 7
		}
		return today.AddDate(0, 0, daysAhead).Format("2006-01-02"), true
	}
	return "", false
}

// mondayWeekday maps time.Weekday (Sunday=0) to a Monday=0 index.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func lookupMonth(word string) (int, bool) {
	if len(word) >= 3 {
		if m, ok := monthIndex[word[:3]]; ok {
			return m, true
		}
	}
	m, ok := monthIndex[word]
	return m, ok
}

// expandYear defaults a missing year to the reference year and normalizes
// two-digit years into the 2000s.
func expandYear(raw string, today time.Time) int {
	if raw == "" {
		return today.Year()
	}
	year := atoi(raw)
	if year < 100 {
		year += 2000
	}
	return year
}

// makeISO builds an ISO date, rejecting values the calendar does not have
// (time.Date would silently roll February 30th into March).
func makeISO(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
