package main

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/nuvl/nuvlworld/world"
	"github.com/nuvl/nuvlworld/world/calendar"
	"github.com/nuvl/nuvlworld/world/format"
	"github.com/spf13/cobra"
)

var factsCmd = &cobra.Command{
	Use:   "facts [PREDICATE]",
	Short: "List the facts of a predicate, or every predicate with its count",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, p := range s.Predicates() {
				fmt.Fprintf(out, "%-24s %s\n", p, humanize.Comma(int64(s.CountByPredicate(p))))
			}
			return nil
		}
		fmt.Fprint(out, format.NewTableFormatter().FormatFacts(s.FactsByPredicate(args[0])))
		return nil
	},
}

var (
	flagFindGroup int
	flagFindValue string
)

var findCmd = &cobra.Command{
	Use:   "find PREDICATE PATTERN",
	Short: "Print the capture groups of the first fact whose group matches a value",
	Long: `find scans the facts of PREDICATE in load order and prints the capture
groups of the first one that PATTERN matches with group --group equal to
--value. Without --value, the first match of PATTERN is printed.`,
	Example: `  nuvl find locationIanaTimeZone '^\(locationIanaTimeZone (\w+) (\w+)\)$' --group 1 --value Q84`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern, err := world.Patterns.Compile(args[1])
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}

		var groups []string
		var ok bool
		if cmd.Flags().Changed("value") {
			groups, ok = s.FindFirstMatching(args[0], pattern, flagFindGroup, flagFindValue)
		} else {
			s.EachFact(args[0], func(f world.Fact) bool {
				groups = pattern.FindStringSubmatch(f.Text)
				ok = groups != nil
				return !ok
			})
		}
		if !ok {
			return errors.Newf("no %s fact matches", args[0])
		}
		for i, g := range groups {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i, g)
		}
		return nil
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe SUBJECT...",
	Short: "Print the description of each subject",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		missing := color.New(color.Faint).SprintFunc()
		for _, subject := range args {
			if text, ok := s.Description(subject); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", subject, text)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", subject, missing("(no description)"))
			}
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load every configured source and report what was found",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}

		var skipped []string
		intervals := calendar.DeriveIntervals(s, func(f world.Fact, err error) {
			skipped = append(skipped, fmt.Sprintf("%s: %v", f.Text, err))
		})

		out := cmd.OutOrStdout()
		ok := color.New(color.FgGreen).SprintFunc()
		warn := color.New(color.FgYellow).SprintFunc()
		fmt.Fprintf(out, "%s %s facts, %s predicates, %s descriptions\n", ok("loaded"),
			humanize.Comma(int64(s.Len())),
			humanize.Comma(int64(len(s.Predicates()))),
			humanize.Comma(int64(s.DescriptionCount())))
		fmt.Fprintf(out, "%s %s event intervals\n", ok("derived"), humanize.Comma(int64(len(intervals))))
		if len(skipped) > 0 {
			fmt.Fprintf(out, "%s %s malformed interval facts:\n  %s\n", warn("skipped"),
				humanize.Comma(int64(len(skipped))), strings.Join(skipped, "\n  "))
		}
		return nil
	},
}

func init() {
	findCmd.Flags().IntVar(&flagFindGroup, "group", 1, "capture group compared with --value")
	findCmd.Flags().StringVar(&flagFindValue, "value", "", "required text of the capture group")
}
