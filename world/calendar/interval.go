// Package calendar derives event time intervals from loaded facts and
// places them on calendar days in a time zone.
package calendar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/nuvl/nuvlworld/world"
)

// Predicates that carry event times
const (
	IntervalPredicate  = "subAttrOf" // (subAttrOf EVENT (TimeIntervalFn START END))
	StartTimePredicate = "startTime" // (startTime EVENT MILLIS)
	EndTimePredicate   = "endTime"   // (endTime EVENT MILLIS)
)

const intervalFnPrefix = "(TimeIntervalFn "

// intervalPattern decomposes an interval fact into event, start and end
var intervalPattern = world.Patterns.MustCompile(
	`^\(` + IntervalPredicate + ` (` + world.Term + `) \(TimeIntervalFn (` +
		world.Integer + `) (` + world.Integer + `)\)\)$`)

// FactSource is the part of the store the calendar reads
type FactSource interface {
	EachFact(predicate string, fn func(world.Fact) bool)
	Generation() uint64
}

// EventTimeInterval is an event and the instants it starts and ends, in
// milliseconds since the Unix epoch. Intervals compare by value.
type EventTimeInterval struct {
	Event       string
	StartMillis int64
	EndMillis   int64
}

// IsPoint reports whether the interval has zero length
func (iv EventTimeInterval) IsPoint() bool {
	return iv.StartMillis == iv.EndMillis
}

func (iv EventTimeInterval) String() string {
	return fmt.Sprintf("%s[%d,%d]", iv.Event, iv.StartMillis, iv.EndMillis)
}

// less orders intervals by start, then end, then event
func (iv EventTimeInterval) less(other EventTimeInterval) bool {
	if iv.StartMillis != other.StartMillis {
		return iv.StartMillis < other.StartMillis
	}
	if iv.EndMillis != other.EndMillis {
		return iv.EndMillis < other.EndMillis
	}
	return iv.Event < other.Event
}

// SortIntervals sorts by start, then end, then event
func SortIntervals(ivs []EventTimeInterval) {
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].less(ivs[j]) })
}

// SkipFunc is told about each fact that could not be turned into an
// interval; err wraps world.ErrMalformedReference
type SkipFunc func(f world.Fact, err error)

// DeriveIntervals collects every distinct interval encoded in src.
//
// Intervals come from (subAttrOf EVENT (TimeIntervalFn START END)) facts
// and from (startTime EVENT MILLIS) facts. A start time is paired with the
// smallest (endTime EVENT MILLIS) that is not before it, or is a point
// event when there is none. Facts that do not decompose are reported to
// skip, which may be nil, and left out.
func DeriveIntervals(src FactSource, skip SkipFunc) []EventTimeInterval {
	if skip == nil {
		skip = func(world.Fact, error) {}
	}
	seen := make(map[EventTimeInterval]struct{})
	var out []EventTimeInterval
	add := func(iv EventTimeInterval) {
		if _, dup := seen[iv]; dup {
			return
		}
		seen[iv] = struct{}{}
		out = append(out, iv)
	}

	src.EachFact(IntervalPredicate, func(f world.Fact) bool {
		m := intervalPattern.FindStringSubmatch(f.Text)
		if m == nil {
			// subAttrOf also relates attributes that are not times
			if strings.HasPrefix(f.Value, intervalFnPrefix) {
				skip(f, errors.Mark(errors.Newf("%s is not (TimeIntervalFn START END)", f.Value),
					world.ErrMalformedReference))
			}
			return true
		}
		start, err1 := parseMillis(m[2])
		end, err2 := parseMillis(m[3])
		if err := errors.CombineErrors(err1, err2); err != nil {
			skip(f, err)
			return true
		}
		add(EventTimeInterval{Event: m[1], StartMillis: start, EndMillis: end})
		return true
	})

	ends := make(map[string][]int64)
	src.EachFact(EndTimePredicate, func(f world.Fact) bool {
		end, err := integerValue(f)
		if err != nil {
			skip(f, err)
			return true
		}
		ends[f.Arg2] = append(ends[f.Arg2], end)
		return true
	})

	src.EachFact(StartTimePredicate, func(f world.Fact) bool {
		start, err := integerValue(f)
		if err != nil {
			skip(f, err)
			return true
		}
		add(EventTimeInterval{Event: f.Arg2, StartMillis: start, EndMillis: pickEnd(start, ends[f.Arg2])})
		return true
	})

	return out
}

// pickEnd returns the smallest candidate not before start, or start
func pickEnd(start int64, candidates []int64) int64 {
	end, found := start, false
	for _, c := range candidates {
		if c >= start && (!found || c < end) {
			end, found = c, true
		}
	}
	return end
}

func integerValue(f world.Fact) (int64, error) {
	if f.Shape != world.ShapeInteger {
		return 0, errors.Mark(errors.Newf("%s value %q is not an integer", f.Predicate, f.Value),
			world.ErrMalformedReference)
	}
	return parseMillis(f.Value)
}

func parseMillis(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "millis %q", s), world.ErrMalformedReference)
	}
	return n, nil
}
