package duedate

import (
	"fmt"
	"strings"
	"time"
)

// DefaultStartHour is the wall-clock hour events are anchored to
const DefaultStartHour = 9

// scan order for bare weekday names
var weekdayOrder = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// FreeText is the looser strategy used on raw due or details text. It
// yields an event start at DefaultStartHour in its zone.
type FreeText struct {
	loc *time.Location
}

// NewFreeText creates a FreeText parser for the given zone. A nil zone means UTC.
func NewFreeText(loc *time.Location) *FreeText {
	if loc == nil {
		loc = time.UTC
	}
	return &FreeText{loc: loc}
}

// Parse scans text for today, tomorrow, "next week" or a weekday name, in
// that order. A weekday equal to today's yields a week out.
func (f *FreeText) Parse(text string, now time.Time) (time.Time, bool) {
	t := strings.ToLower(text)
	local := now.In(f.loc)
	anchor := time.Date(local.Year(), local.Month(), local.Day(), DefaultStartHour, 0, 0, 0, f.loc)

	switch {
	case strings.Contains(t, "today"):
		return anchor, true
	case strings.Contains(t, "tomorrow"):
		return anchor.AddDate(0, 0, 1), true
	case strings.Contains(t, "next week"):
		return anchor.AddDate(0, 0, 7), true
	}
	for _, name := range weekdayOrder {
		if strings.Contains(t, name) {
			return nextWeekday(anchor, weekdays[name]), true
		}
	}
	return time.Time{}, false
}

// AtStartHour parses a strict ISO date into an instant at DefaultStartHour
// in the parser's zone.
func (f *FreeText) AtStartHour(iso string) (time.Time, error) {
	if !IsISODate(iso) {
		return time.Time{}, fmt.Errorf("not an ISO date: %q", iso)
	}
	d, err := time.ParseInLocation(ISODateLayout, iso, f.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", iso, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), DefaultStartHour, 0, 0, 0, f.loc), nil
}
