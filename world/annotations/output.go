package annotations

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// OutputFormatter formats events for human-readable display.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter with color support detection.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}

	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &OutputFormatter{
		useColor: useColor,
		writer:   w,
	}
}

// Handle implements the Handler interface - prints events as they occur
func (f *OutputFormatter) Handle(event Event) {
	output := f.Format(event)
	if output != "" {
		fmt.Fprintln(f.writer, output)
	}
}

// Format converts an event to a human-readable string.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)

	switch event.Name {
	case LoadBegin:
		return fmt.Sprintf("%s %s Loading %s (%s)",
			latency,
			f.colorize("===", color.FgYellow),
			event.Data["source"],
			event.Data["kind"])

	case LoadProgress:
		return fmt.Sprintf("%s Loading %s, line %s",
			latency,
			event.Data["source"],
			humanize.Comma(int64(intData(event, "lines"))))

	case LoadComplete:
		return fmt.Sprintf("%s %s Loaded %s: %s, %s",
			latency,
			f.colorize("===", color.FgGreen),
			event.Data["source"],
			f.colorizeCount("lines", intData(event, "lines")),
			f.colorizeCount("added", intData(event, "added")))

	case IndexRebuilt:
		return fmt.Sprintf("%s %s Date index rebuilt for %s: %s over %s",
			latency,
			f.colorize("===", color.FgCyan),
			event.Data["zone"],
			f.colorizeCount("intervals", intData(event, "intervals")),
			f.colorizeCount("days", intData(event, "days")))

	case IntervalSkipped:
		return fmt.Sprintf("%s %s Skipped %v: %v",
			latency,
			f.colorize("!", color.FgYellow),
			event.Data["fact"],
			event.Data["error"])

	case ErrorSyntax, ErrorIO:
		return fmt.Sprintf("%s %s %v",
			latency,
			f.colorize("✗", color.FgRed),
			event.Data["error"])

	default:
		return fmt.Sprintf("%s %s %v", latency, event.Name, event.Data)
	}
}

// formatLatency renders d, colored by magnitude.
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		s := fmt.Sprintf("[%dµs]", d.Microseconds())
		if !f.useColor {
			return s
		}
		return color.GreenString(s)
	}

	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("[%.1fms]", ms)
	if !f.useColor {
		return s
	}

	switch {
	case ms < 500:
		return color.GreenString(s)
	case ms < 5000:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

// colorizeCount formats a count with a label, using color based on the label type.
func (f *OutputFormatter) colorizeCount(label string, count int) string {
	text := fmt.Sprintf("%s %s", humanize.Comma(int64(count)), label)

	if !f.useColor {
		return text
	}

	switch label {
	case "lines":
		return color.BlueString(text)
	case "added", "intervals":
		return color.MagentaString(text)
	case "days":
		return color.CyanString(text)
	default:
		return text
	}
}

// colorize applies color if enabled.
func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

func intData(event Event, key string) int {
	switch v := event.Data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	default:
		return 0
	}
}

// ConsoleHandler creates a handler that prints formatted events to stderr.
func ConsoleHandler() Handler {
	return NewOutputFormatter(os.Stderr).Handle
}
