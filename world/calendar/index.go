package calendar

import (
	"time"

	"github.com/nuvl/nuvlworld/world"
	"github.com/nuvl/nuvlworld/world/annotations"
	"github.com/nuvl/nuvlworld/world/logger"
)

// zoneKey identifies a time zone by value. Two *time.Location values with
// the same name and the same offset at the epoch are the same zone, even
// when they were loaded separately.
type zoneKey struct {
	name   string
	offset int
}

func keyOf(loc *time.Location) zoneKey {
	_, offset := time.Unix(0, 0).In(loc).Zone()
	return zoneKey{name: loc.String(), offset: offset}
}

type indexState uint8

const (
	stateStale indexState = iota // nothing cached
	stateBuilt                   // days holds the placement for zone at generation
)

// DateIndex maps calendar days to the intervals that overlap them, for one
// time zone at a time. It is built on the first query and rebuilt from
// scratch whenever a query names a different zone or the facts have
// changed since the last build. Only one zone is ever cached.
//
// A DateIndex is not safe for concurrent use.
type DateIndex struct {
	source    FactSource
	collector *annotations.Collector

	state      indexState
	zone       zoneKey
	generation uint64
	days       map[world.Date][]EventTimeInterval
	intervals  int
	rebuilds   int
}

// NewDateIndex creates a stale index over source
func NewDateIndex(source FactSource) *DateIndex {
	return NewDateIndexWithHandler(source, nil)
}

// NewDateIndexWithHandler creates a stale index that reports rebuilds and
// skipped facts to handler
func NewDateIndexWithHandler(source FactSource, handler annotations.Handler) *DateIndex {
	return &DateIndex{
		source:    source,
		collector: annotations.NewCollector(handler),
	}
}

// OverlapsDate returns the intervals that overlap date in loc, sorted by
// start, end and event. The result is empty, never nil, for a day with no
// intervals. A nil loc means UTC.
func (x *DateIndex) OverlapsDate(date world.Date, loc *time.Location) []EventTimeInterval {
	if loc == nil {
		loc = time.UTC
	}
	key := keyOf(loc)
	if x.needsRebuild(key) {
		x.rebuild(loc, key)
	}
	ivs := x.days[date]
	out := make([]EventTimeInterval, len(ivs))
	copy(out, ivs)
	return out
}

// needsRebuild is the only transition out of stateBuilt: a different zone
// or a changed fact source sends the index back through a full rebuild
func (x *DateIndex) needsRebuild(key zoneKey) bool {
	switch x.state {
	case stateBuilt:
		return x.zone != key || x.generation != x.source.Generation()
	default:
		return true
	}
}

// Invalidate drops the cache; the next query rebuilds
func (x *DateIndex) Invalidate() {
	x.state = stateStale
	x.days = nil
	x.intervals = 0
}

// Zone returns the name of the zone the index is built for
func (x *DateIndex) Zone() (string, bool) {
	if x.state != stateBuilt {
		return "", false
	}
	return x.zone.name, true
}

// Rebuilds returns how many times the index has been built
func (x *DateIndex) Rebuilds() int {
	return x.rebuilds
}

// Intervals returns how many distinct intervals the current build placed
func (x *DateIndex) Intervals() int {
	return x.intervals
}

func (x *DateIndex) rebuild(loc *time.Location, key zoneKey) {
	start := time.Now()
	x.Invalidate()

	intervals := DeriveIntervals(x.source, func(f world.Fact, err error) {
		logger.Logger.Debugw("skipping interval fact", "fact", f.Text, "error", err)
		x.collector.Add(annotations.Event{
			Name: annotations.IntervalSkipped,
			Data: map[string]interface{}{"fact": f.Text, "error": err.Error()},
		})
	})

	days := make(map[world.Date][]EventTimeInterval)
	for _, iv := range intervals {
		first, last := DaySpan(iv, loc)
		for d := first; !d.After(last); d = d.AddDays(1) {
			days[d] = append(days[d], iv)
		}
	}
	for _, ivs := range days {
		SortIntervals(ivs)
	}

	x.days = days
	x.intervals = len(intervals)
	x.zone = key
	x.generation = x.source.Generation()
	x.state = stateBuilt
	x.rebuilds++

	logger.Logger.Debugw("date index rebuilt",
		"zone", key.name,
		"intervals", len(intervals),
		"days", len(days),
		"elapsed", time.Since(start))
	x.collector.AddTiming(annotations.IndexRebuilt, start, map[string]interface{}{
		"zone":      key.name,
		"intervals": len(intervals),
		"days":      len(days),
	})
}
