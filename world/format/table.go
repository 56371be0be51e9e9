// Package format renders facts, days, months and frameworks as markdown
// tables.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nuvl/nuvlworld/world"
	"github.com/nuvl/nuvlworld/world/argue"
	"github.com/nuvl/nuvlworld/world/calendar"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Titler supplies display text for an event, usually Store.Title
type Titler interface {
	Title(subject string) string
}

// DayIndex is the part of calendar.DateIndex a month view needs
type DayIndex interface {
	OverlapsDate(date world.Date, loc *time.Location) []calendar.EventTimeInterval
}

// TableFormatter renders markdown tables
type TableFormatter struct {
	// MaxWidth is the maximum width for a column, 0 for no limit
	MaxWidth int
	// TruncateString is appended when a cell is cut
	TruncateString string
}

// NewTableFormatter creates a formatter with default settings
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		MaxWidth:       60,
		TruncateString: "...",
	}
}

// FormatDay lists the intervals of one day with their time labels and
// titles. ivs is normally the result of DateIndex.OverlapsDate for date.
func (tf *TableFormatter) FormatDay(date world.Date, loc *time.Location, ivs []calendar.EventTimeInterval, titles Titler) string {
	header := fmt.Sprintf("**%s %s**\n\n", date.Weekday(), date)
	if len(ivs) == 0 {
		return header + "_No events_\n"
	}
	rows := make([][]string, len(ivs))
	for i, iv := range ivs {
		title := iv.Event
		if titles != nil {
			title = titles.Title(iv.Event)
		}
		rows[i] = []string{calendar.DayLabel(iv, date, loc), iv.Event, title}
	}
	return header + tf.formatTable([]string{"Time", "Event", "Title"}, rows, "events")
}

// FormatMonth draws a week-per-row grid for month, starting each week on
// startOfWeek. Each day shows its number and, when it has any, the count of
// overlapping intervals in parentheses.
func (tf *TableFormatter) FormatMonth(year int, month time.Month, loc *time.Location, index DayIndex, startOfWeek time.Weekday) string {
	headers := make([]string, 7)
	for i := range headers {
		headers[i] = time.Weekday((int(startOfWeek) + i) % 7).String()[:3]
	}

	first := world.NewDate(year, month, 1)
	lead := (int(first.Weekday()) - int(startOfWeek) + 7) % 7

	var rows [][]string
	week := make([]string, 7)
	col := lead
	for d := first; d.Month == month; d = d.AddDays(1) {
		cell := strconv.Itoa(d.Day)
		if n := len(index.OverlapsDate(d, loc)); n > 0 {
			cell += " (" + humanize.Comma(int64(n)) + ")"
		}
		week[col] = cell
		col++
		if col == 7 {
			rows = append(rows, week)
			week = make([]string, 7)
			col = 0
		}
	}
	if col > 0 {
		rows = append(rows, week)
	}

	header := fmt.Sprintf("**%s %d**\n\n", month, year)
	return header + tf.formatTable(headers, rows, "weeks")
}

// FormatFacts lists facts with their decomposed fields
func (tf *TableFormatter) FormatFacts(facts []world.Fact) string {
	if len(facts) == 0 {
		return "_No facts_\n"
	}
	rows := make([][]string, len(facts))
	for i, f := range facts {
		rows[i] = []string{f.Shape.String(), f.Predicate, f.Arg2, f.Qualifier, f.Value}
	}
	return tf.formatTable([]string{"Shape", "Predicate", "Arg2", "Qualifier", "Value"}, rows, "facts")
}

// FormatFramework lists the assumptions and rules of fw
func (tf *TableFormatter) FormatFramework(fw argue.Framework) string {
	var b strings.Builder
	if len(fw.Assumptions) == 0 {
		b.WriteString("_No assumptions_\n")
	} else {
		rows := make([][]string, len(fw.Assumptions))
		for i, a := range fw.Assumptions {
			rows[i] = []string{a.String()}
		}
		b.WriteString(tf.formatTable([]string{"Assumption"}, rows, "assumptions"))
	}
	b.WriteString("\n")
	if len(fw.Rules) == 0 {
		b.WriteString("_No rules_\n")
	} else {
		rows := make([][]string, len(fw.Rules))
		for i, r := range fw.Rules {
			rows[i] = []string{r.Antecedent.String(), r.Consequent.String()}
		}
		b.WriteString(tf.formatTable([]string{"If", "Then"}, rows, "rules"))
	}
	return b.String()
}

// formatTable renders headers and rows as a markdown table followed by a
// count line naming what the rows are
func (tf *TableFormatter) formatTable(headers []string, rows [][]string, noun string) string {
	tableString := &strings.Builder{}

	alignment := make([]tw.Align, len(headers))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(headers)

	for _, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = tf.truncate(cell)
		}
		table.Append(cells)
	}
	table.Render()

	tableString.WriteString(fmt.Sprintf("\n_%s %s_\n", humanize.Comma(int64(len(rows))), noun))
	return tableString.String()
}

func (tf *TableFormatter) truncate(s string) string {
	if tf.MaxWidth <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= tf.MaxWidth {
		return s
	}
	keep := tf.MaxWidth - len([]rune(tf.TruncateString))
	if keep < 0 {
		keep = 0
	}
	return string(r[:keep]) + tf.TruncateString
}
