// Package duedate turns due-date phrases into concrete calendar dates.
//
// Two strategies live here. Resolver handles phrases produced by
// ExtractDuePhrase and answers with an ISO date. FreeText scans arbitrary
// text the way the dispatch path needs it and answers with a start instant.
// They overlap but are not identical: only FreeText knows "next week", and
// only Resolver distinguishes "by/on X" from "next X".
package duedate

import (
	"regexp"
	"strings"
	"time"
)

// ISODateLayout is the strict YYYY-MM-DD layout
const ISODateLayout = "2006-01-02"

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	byOnWeekdayPattern = regexp.MustCompile(`(?:by|on)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)
	nextWeekdayPattern = regexp.MustCompile(`next\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)
	weekdayPattern     = regexp.MustCompile(`(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`)
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// IsISODate reports whether s is exactly YYYY-MM-DD
func IsISODate(s string) bool {
	return isoDatePattern.MatchString(s)
}

// Resolver converts phrases into ISO dates in a fixed local zone
type Resolver struct {
	loc *time.Location
}

// NewResolver creates a Resolver for the given zone. A nil zone means UTC.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc}
}

// Location returns the zone relative phrases are resolved in
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// rule is one entry of the ordered phrase grammar. The first rule that
// matches wins.
type rule func(p string, today time.Time) (time.Time, bool)

var rules = []rule{
	func(p string, today time.Time) (time.Time, bool) {
		return today, strings.Contains(p, "today")
	},
	func(p string, today time.Time) (time.Time, bool) {
		return today.AddDate(0, 0, 1), strings.Contains(p, "tomorrow")
	},
	weekdayRule(byOnWeekdayPattern),
	weekdayRule(nextWeekdayPattern),
	weekdayRule(weekdayPattern),
}

func weekdayRule(re *regexp.Regexp) rule {
	return func(p string, today time.Time) (time.Time, bool) {
		m := re.FindStringSubmatch(p)
		if m == nil {
			return time.Time{}, false
		}
		return nextWeekday(today, weekdays[m[1]]), true
	}
}

// Resolve returns the ISO date for phrase relative to now. Strict ISO input
// is returned unchanged. The second return value is false when nothing in
// the phrase names a date; that is not an error.
func (r *Resolver) Resolve(phrase string, now time.Time) (string, bool) {
	if IsISODate(phrase) {
		return phrase, true
	}
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return "", false
	}

	local := now.In(r.loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.loc)
	for _, match := range rules {
		if d, ok := match(p, today); ok {
			return d.Format(ISODateLayout), true
		}
	}
	return "", false
}

// nextWeekday returns the next occurrence of target after base. A base
// already on target yields base+7, never base itself.
func nextWeekday(base time.Time, target time.Weekday) time.Time {
	delta := (int(target) - int(base.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return base.AddDate(0, 0, delta)
}

var (
	extractByPattern   = regexp.MustCompile(`\bby\s+(next\s+\w+day|\w+day)\b`)
	extractNextPattern = regexp.MustCompile(`\bnext\s+(\w+day)\b`)
	extractOnPattern   = regexp.MustCompile(`\bon\s+(\w+day)\b`)
)

// ExtractDuePhrase picks the due-date phrase out of free text, lower-cased.
// It returns "" when the text holds none.
func ExtractDuePhrase(s string) string {
	low := strings.ToLower(s)
	for _, re := range []*regexp.Regexp{extractByPattern, extractNextPattern, extractOnPattern} {
		if m := re.FindString(low); m != "" {
			return m
		}
	}
	if strings.Contains(low, "tomorrow") {
		return "tomorrow"
	}
	if strings.Contains(low, "today") {
		return "today"
	}
	return ""
}
