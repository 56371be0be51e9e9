package calendar

import (
	"time"

	"github.com/nuvl/nuvlworld/world"
)

// DaySpan returns the first and last calendar days in loc that iv
// overlaps.
//
// When the end is not after the start, only the start day is used, whatever
// the end value is. An end exactly at local midnight closes the previous
// day, so an interval ending at 00:00:00 does not occupy the day it ends
// on. Milliseconds are ignored for the midnight test.
func DaySpan(iv EventTimeInterval, loc *time.Location) (first, last world.Date) {
	first = world.DateOfMillis(iv.StartMillis, loc)
	if iv.EndMillis <= iv.StartMillis {
		return first, first
	}

	end := time.UnixMilli(iv.EndMillis).In(loc)
	last = world.DateOf(end)
	if isMidnight(end) {
		last = last.AddDays(-1)
	}
	if last.Before(first) {
		last = first
	}
	return first, last
}

// Days returns every calendar day from DaySpan, in order
func Days(iv EventTimeInterval, loc *time.Location) []world.Date {
	first, last := DaySpan(iv, loc)
	var out []world.Date
	for d := first; !d.After(last); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}
