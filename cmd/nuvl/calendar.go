package main

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nuvl/nuvlworld/world"
	"github.com/nuvl/nuvlworld/world/annotations"
	"github.com/nuvl/nuvlworld/world/calendar"
	"github.com/nuvl/nuvlworld/world/format"
	"github.com/spf13/cobra"
)

var dayCmd = &cobra.Command{
	Use:   "day [YYYY-MM-DD]...",
	Short: "List the events on one or more days (default: today)",
	RunE: func(cmd *cobra.Command, args []string) error {
		dates, err := parseDates(args)
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}

		index := newDateIndex(s)
		tf := format.NewTableFormatter()
		for i, d := range dates {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprint(cmd.OutOrStdout(), tf.FormatDay(d, loc, index.OverlapsDate(d, loc), s))
		}
		return nil
	},
}

var monthCmd = &cobra.Command{
	Use:   "month [YYYY-MM]",
	Short: "Show a month grid with the number of events on each day",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, month := today().Year, today().Month
		if len(args) == 1 {
			t, err := time.Parse("2006-01", args[0])
			if err != nil {
				return errors.Wrapf(err, "month %q", args[0])
			}
			year, month = t.Year(), t.Month()
		}
		start, err := cfg.Weekday()
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}

		out := format.NewTableFormatter().FormatMonth(year, month, loc, newDateIndex(s), start)
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func newDateIndex(src calendar.FactSource) *calendar.DateIndex {
	if flagVerbose {
		return calendar.NewDateIndexWithHandler(src, annotations.ConsoleHandler())
	}
	return calendar.NewDateIndex(src)
}

func today() world.Date {
	return world.DateOf(time.Now().In(loc))
}

func parseDates(args []string) ([]world.Date, error) {
	if len(args) == 0 {
		return []world.Date{today()}, nil
	}
	dates := make([]world.Date, len(args))
	for i, a := range args {
		d, err := world.ParseDate(a)
		if err != nil {
			return nil, err
		}
		dates[i] = d
	}
	return dates, nil
}
