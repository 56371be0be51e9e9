package calendar

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nuvl/nuvlworld/world"
	"github.com/nuvl/nuvlworld/world/annotations"
	"github.com/nuvl/nuvlworld/world/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func millis(year int, month time.Month, day, hour, min int, loc *time.Location) int64 {
	return time.Date(year, month, day, hour, min, 0, 0, loc).UnixMilli()
}

func newStore(t *testing.T, lines ...string) *store.Store {
	t.Helper()
	s := store.New()
	require.NoError(t, s.LoadFacts(strings.NewReader(strings.Join(lines, "\n")), "test.scm"))
	return s
}

func intervalFact(event string, start, end int64) string {
	return "(subAttrOf " + event + " (TimeIntervalFn " + itoa(start) + " " + itoa(end) + "))"
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func TestOverlapsDateStartEndFacts(t *testing.T) {
	s := newStore(t, "(startTime e1 1000)", "(endTime e1 1000)")
	x := NewDateIndex(s)

	got := x.OverlapsDate(world.NewDate(1970, 1, 1), time.UTC)
	assert.Equal(t, []EventTimeInterval{{Event: "e1", StartMillis: 1000, EndMillis: 1000}}, got)

	got = x.OverlapsDate(world.NewDate(1970, 1, 2), time.UTC)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestOverlapsDateEndAtMidnight(t *testing.T) {
	start := millis(2024, 1, 1, 23, 30, time.UTC)
	end := millis(2024, 1, 2, 0, 0, time.UTC)
	x := NewDateIndex(newStore(t, intervalFact("late", start, end)))

	assert.Len(t, x.OverlapsDate(world.NewDate(2024, 1, 1), time.UTC), 1)
	assert.Empty(t, x.OverlapsDate(world.NewDate(2024, 1, 2), time.UTC))
}

func TestOverlapsDatePointEvent(t *testing.T) {
	at := millis(2024, 3, 10, 0, 0, time.UTC)
	x := NewDateIndex(newStore(t, intervalFact("p", at, at)))

	assert.Empty(t, x.OverlapsDate(world.NewDate(2024, 3, 9), time.UTC))
	assert.Len(t, x.OverlapsDate(world.NewDate(2024, 3, 10), time.UTC), 1,
		"a point event at midnight belongs to the day it starts")
	assert.Empty(t, x.OverlapsDate(world.NewDate(2024, 3, 11), time.UTC))
}

func TestOverlapsDateMultiDay(t *testing.T) {
	start := millis(2024, 5, 1, 9, 0, time.UTC)
	end := millis(2024, 5, 4, 12, 0, time.UTC)
	x := NewDateIndex(newStore(t, intervalFact("trip", start, end)))

	for day := 1; day <= 4; day++ {
		got := x.OverlapsDate(world.NewDate(2024, 5, day), time.UTC)
		require.Len(t, got, 1, "day %d", day)
		assert.Equal(t, "trip", got[0].Event)
	}
	assert.Empty(t, x.OverlapsDate(world.NewDate(2024, 4, 30), time.UTC))
	assert.Empty(t, x.OverlapsDate(world.NewDate(2024, 5, 5), time.UTC))
	assert.Equal(t, 1, x.Rebuilds())
}

func TestOverlapsDateEndBeforeStart(t *testing.T) {
	start := millis(2024, 5, 3, 9, 0, time.UTC)
	end := millis(2024, 5, 1, 9, 0, time.UTC)
	x := NewDateIndex(newStore(t, intervalFact("backwards", start, end)))

	assert.Len(t, x.OverlapsDate(world.NewDate(2024, 5, 3), time.UTC), 1)
	assert.Empty(t, x.OverlapsDate(world.NewDate(2024, 5, 1), time.UTC))
	assert.Empty(t, x.OverlapsDate(world.NewDate(2024, 5, 2), time.UTC))
}

func TestOverlapsDateDependsOnZone(t *testing.T) {
	at := millis(2024, 1, 1, 23, 30, time.UTC)
	x := NewDateIndex(newStore(t, intervalFact("e", at, at)))
	east := time.FixedZone("UTC+1", 3600)

	assert.Len(t, x.OverlapsDate(world.NewDate(2024, 1, 1), time.UTC), 1)
	assert.Empty(t, x.OverlapsDate(world.NewDate(2024, 1, 2), time.UTC))

	assert.Empty(t, x.OverlapsDate(world.NewDate(2024, 1, 1), east))
	assert.Len(t, x.OverlapsDate(world.NewDate(2024, 1, 2), east), 1)
}

func TestZoneSwitchRebuilds(t *testing.T) {
	x := NewDateIndex(newStore(t, "(startTime e1 1000)"))
	d := world.NewDate(1970, 1, 1)
	zoneA := time.FixedZone("A", 3600)
	zoneB := time.FixedZone("B", -3600)

	_, built := x.Zone()
	assert.False(t, built)
	assert.Equal(t, 0, x.Rebuilds())

	x.OverlapsDate(d, zoneA)
	x.OverlapsDate(d.AddDays(1), zoneA)
	assert.Equal(t, 1, x.Rebuilds(), "same zone reuses the cache")

	x.OverlapsDate(d, zoneB)
	assert.Equal(t, 2, x.Rebuilds())
	name, built := x.Zone()
	assert.True(t, built)
	assert.Equal(t, "B", name)

	x.OverlapsDate(d, zoneA)
	assert.Equal(t, 3, x.Rebuilds(), "only one zone is retained")
}

func TestEqualZonesShareCache(t *testing.T) {
	x := NewDateIndex(newStore(t, "(startTime e1 1000)"))
	d := world.NewDate(1970, 1, 1)

	x.OverlapsDate(d, time.FixedZone("Z", 7200))
	x.OverlapsDate(d, time.FixedZone("Z", 7200))
	assert.Equal(t, 1, x.Rebuilds(), "distinct but equal zones compare by value")

	x.OverlapsDate(d, time.FixedZone("Z", 3600))
	assert.Equal(t, 2, x.Rebuilds(), "same name with another offset is another zone")

	x.OverlapsDate(d, nil)
	x.OverlapsDate(d, time.UTC)
	assert.Equal(t, 3, x.Rebuilds(), "nil means UTC")
}

func TestNewFactsTriggerRebuild(t *testing.T) {
	s := newStore(t, "(startTime e1 1000)")
	x := NewDateIndex(s)
	d := world.NewDate(1970, 1, 1)

	assert.Len(t, x.OverlapsDate(d, time.UTC), 1)
	require.NoError(t, s.Add("(startTime e2 2000)"))
	assert.Len(t, x.OverlapsDate(d, time.UTC), 2)
	assert.Equal(t, 2, x.Rebuilds())

	require.NoError(t, s.Add("(startTime e2 2000)"))
	x.OverlapsDate(d, time.UTC)
	assert.Equal(t, 2, x.Rebuilds(), "a duplicate fact changes nothing")

	x.Invalidate()
	x.OverlapsDate(d, time.UTC)
	assert.Equal(t, 3, x.Rebuilds())
}

func TestOverlapsDateSortedAndIndependent(t *testing.T) {
	day := world.NewDate(2024, 6, 1)
	x := NewDateIndex(newStore(t,
		intervalFact("b", millis(2024, 6, 1, 10, 0, time.UTC), millis(2024, 6, 1, 11, 0, time.UTC)),
		intervalFact("a", millis(2024, 6, 1, 10, 0, time.UTC), millis(2024, 6, 1, 11, 0, time.UTC)),
		intervalFact("c", millis(2024, 6, 1, 8, 0, time.UTC), millis(2024, 6, 1, 9, 0, time.UTC)),
	))

	got := x.OverlapsDate(day, time.UTC)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].Event, got[1].Event, got[2].Event})

	got[0].Event = "mutated"
	assert.Equal(t, "c", x.OverlapsDate(day, time.UTC)[0].Event)
}

func TestMalformedIntervalFactsAreSkipped(t *testing.T) {
	var skipped []string
	s := newStore(t,
		"(subAttrOf e1 (TimeIntervalFn a 3))",
		"(subAttrOf e2 (TimeIntervalFn 1 99999999999999999999))",
		"(subAttrOf e3 Q5)",
		"(startTime e4 noon)",
		"(subAttrOf ok (TimeIntervalFn 1000 2000))",
	)
	x := NewDateIndexWithHandler(s, func(e annotations.Event) {
		if e.Name == annotations.IntervalSkipped {
			skipped = append(skipped, e.Data["fact"].(string))
		}
	})

	got := x.OverlapsDate(world.NewDate(1970, 1, 1), time.UTC)
	assert.Equal(t, []EventTimeInterval{{Event: "ok", StartMillis: 1000, EndMillis: 2000}}, got)
	assert.Equal(t, []string{
		"(subAttrOf e1 (TimeIntervalFn a 3))",
		"(subAttrOf e2 (TimeIntervalFn 1 99999999999999999999))",
		"(startTime e4 noon)",
	}, skipped)
	assert.Equal(t, 1, x.Intervals())
}

func TestDeriveIntervals(t *testing.T) {
	s := newStore(t,
		intervalFact("x", 10, 20),
		"(startTime y 100)",
		"(endTime y 50)",
		"(endTime y 300)",
		"(endTime y 200)",
		"(startTime z 7)",
		"(startTime y 400)",
	)

	got := DeriveIntervals(s, nil)
	SortIntervals(got)
	assert.Equal(t, []EventTimeInterval{
		{Event: "z", StartMillis: 7, EndMillis: 7},
		{Event: "x", StartMillis: 10, EndMillis: 20},
		{Event: "y", StartMillis: 100, EndMillis: 200},
		{Event: "y", StartMillis: 400, EndMillis: 400},
	}, got)
}

func TestDeriveIntervalsDeduplicates(t *testing.T) {
	s := newStore(t, intervalFact("e", 1000, 1000), "(startTime e 1000)")
	assert.Len(t, DeriveIntervals(s, nil), 1)
}
