// Package synth writes synthetic fact and description files for load and
// index profiling.
package synth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nuvl/nuvlworld/world"
)

// Config describes a generated calendar
type Config struct {
	NumEvents    int       // events spread evenly over NumDays
	NumDays      int       // days covered, starting at StartDate
	MultiDayEach int       // every Nth event spans three days; 0 disables
	ExtraLabels  int       // description rows for subjects no fact references
	OutputDir    string    // where events.scm and labels.tsv are written
	StartDate    time.Time // first day, in UTC
}

// File names inside OutputDir
const (
	FactsFile        = "events.scm"
	DescriptionsFile = "labels.tsv"
)

// DefaultConfig is a month of hourly events
func DefaultConfig() Config {
	return Config{
		NumEvents:    720,
		NumDays:      30,
		MultiDayEach: 50,
		ExtraLabels:  1000,
		OutputDir:    "testdata/small",
		StartDate:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

// MediumConfig is a year with a few dozen events a day
func MediumConfig() Config {
	return Config{
		NumEvents:    10000,
		NumDays:      365,
		MultiDayEach: 100,
		ExtraLabels:  100000,
		OutputDir:    "testdata/medium",
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// LargeConfig approaches the size of a wikidata label dump
func LargeConfig() Config {
	return Config{
		NumEvents:    1000000,
		NumDays:      3650,
		MultiDayEach: 1000,
		ExtraLabels:  10000000,
		OutputDir:    "testdata/large",
		StartDate:    time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Stats counts what Write produced
type Stats struct {
	Facts        int
	Descriptions int
	Intervals    int
}

// Build writes FactsFile and DescriptionsFile into cfg.OutputDir,
// replacing any earlier files
func Build(cfg Config) (Stats, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Stats{}, errors.Wrap(err, "create output directory")
	}
	facts, err := os.Create(filepath.Join(cfg.OutputDir, FactsFile))
	if err != nil {
		return Stats{}, errors.Wrap(err, "create facts file")
	}
	defer facts.Close()
	labels, err := os.Create(filepath.Join(cfg.OutputDir, DescriptionsFile))
	if err != nil {
		return Stats{}, errors.Wrap(err, "create descriptions file")
	}
	defer labels.Close()

	st, err := Write(cfg, facts, labels)
	if err != nil {
		return st, err
	}
	return st, errors.CombineErrors(facts.Close(), labels.Close())
}

// Write generates the calendar into facts and descriptions.
//
// Event i is Q<i+1>. Even events use (subAttrOf Q (TimeIntervalFn S E));
// odd events use startTime and endTime facts, and every fifth of those has
// no end and is a point event. Each event also gets an instanceOf fact so
// its description is admitted.
func Write(cfg Config, facts, descriptions io.Writer) (Stats, error) {
	fw := bufio.NewWriter(facts)
	dw := bufio.NewWriter(descriptions)
	var st Stats

	fact := func(format string, args ...interface{}) {
		fmt.Fprintf(fw, format+"\n", args...)
		st.Facts++
	}
	label := func(id int, text string) {
		fmt.Fprintf(dw, "%d\t%s\n", id, world.Escape(text))
		st.Descriptions++
	}

	fmt.Fprintf(fw, "; generated %d events over %d days\n", cfg.NumEvents, cfg.NumDays)
	span := time.Duration(cfg.NumDays) * 24 * time.Hour
	for i := 0; i < cfg.NumEvents; i++ {
		id := i + 1
		subject := fmt.Sprintf("Q%d", id)
		offset := time.Duration(0)
		if cfg.NumEvents > 0 {
			offset = span / time.Duration(cfg.NumEvents) * time.Duration(i)
		}
		start := cfg.StartDate.Add(offset)
		length := time.Hour
		if cfg.MultiDayEach > 0 && i%cfg.MultiDayEach == 0 {
			length = 50 * time.Hour
		}
		end := start.Add(length)

		fact("(instanceOf %s Event)", subject)
		switch {
		case i%2 == 0:
			fact("(subAttrOf %s (TimeIntervalFn %d %d))", subject, start.UnixMilli(), end.UnixMilli())
		case i%10 == 1:
			fact("(startTime %s %d)", subject, start.UnixMilli())
		default:
			fact("(startTime %s %d)", subject, start.UnixMilli())
			fact("(endTime %s %d)", subject, end.UnixMilli())
		}
		st.Intervals++
		label(id, fmt.Sprintf("Event %d \"%s\"", id, start.Format(time.RFC3339)))
	}
	for j := 0; j < cfg.ExtraLabels; j++ {
		label(cfg.NumEvents+j+1, fmt.Sprintf("Unreferenced item %d", j))
	}

	if err := fw.Flush(); err != nil {
		return st, errors.Wrap(err, "write facts")
	}
	if err := dw.Flush(); err != nil {
		return st, errors.Wrap(err, "write descriptions")
	}
	return st, nil
}
