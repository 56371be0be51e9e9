package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nuvl/nuvlworld/world"
	"github.com/nuvl/nuvlworld/world/annotations"
	"github.com/nuvl/nuvlworld/world/calendar"
	"github.com/nuvl/nuvlworld/world/store"
	"github.com/nuvl/nuvlworld/world/synth"
)

func main() {
	configType := flag.String("config", "default", "Config type: default, medium, or large")
	out := flag.String("out", "", "output directory (default: the preset's)")
	badgerDir := flag.String("badger", "", "load descriptions into a badger scratch directory instead of memory")
	verbose := flag.Bool("verbose", false, "print load events")
	flag.Parse()

	var config synth.Config
	switch *configType {
	case "default":
		config = synth.DefaultConfig()
	case "medium":
		config = synth.MediumConfig()
	case "large":
		config = synth.LargeConfig()
	default:
		fmt.Fprintf(os.Stderr, "Unknown config type: %s (use 'default', 'medium', or 'large')\n", *configType)
		os.Exit(1)
	}
	if *out != "" {
		config.OutputDir = *out
	}

	fmt.Printf("Building test data: %s\n", config.OutputDir)
	fmt.Printf("  Events: %s\n", humanize.Comma(int64(config.NumEvents)))
	fmt.Printf("  Days: %d from %s\n", config.NumDays, config.StartDate.Format(world.DateLayout))
	fmt.Printf("  Extra labels: %s\n", humanize.Comma(int64(config.ExtraLabels)))
	fmt.Println()

	stats, err := synth.Build(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build test data: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s facts and %s description rows\n",
		humanize.Comma(int64(stats.Facts)), humanize.Comma(int64(stats.Descriptions)))

	opts := store.Options{}
	if *verbose {
		opts.Handler = annotations.ConsoleHandler()
	}
	if *badgerDir != "" {
		table, err := store.OpenBadgerDescriptions(*badgerDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open badger: %v\n", err)
			os.Exit(1)
		}
		opts.Descriptions = table
	}
	s := store.NewWithOptions(opts)
	defer s.Close()

	start := time.Now()
	err = s.LoadSources(
		[]string{filepath.Join(config.OutputDir, synth.FactsFile)},
		filepath.Join(config.OutputDir, synth.DescriptionsFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load test data: %v\n", err)
		os.Exit(1)
	}
	loaded := time.Since(start)

	start = time.Now()
	index := calendar.NewDateIndex(s)
	first := world.DateOf(config.StartDate)
	busiest := 0
	for d := first; d.Before(first.AddDays(config.NumDays)); d = d.AddDays(1) {
		if n := len(index.OverlapsDate(d, time.UTC)); n > busiest {
			busiest = n
		}
	}

	fmt.Printf("\nLoaded %s facts, %s descriptions in %v\n",
		humanize.Comma(int64(s.Len())), humanize.Comma(int64(s.DescriptionCount())), loaded)
	fmt.Printf("Indexed %s intervals in %v, busiest day has %d\n",
		humanize.Comma(int64(index.Intervals())), time.Since(start), busiest)
}
