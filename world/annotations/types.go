// Package annotations provides a low-overhead event system for tracking
// fact loading and date index rebuilds.
package annotations

import (
	"time"
)

// Event name constants following hierarchical naming pattern
const (
	// Load lifecycle
	LoadBegin    = "load/begin"
	LoadProgress = "load/progress"
	LoadComplete = "load/completed"

	// Date index
	IndexRebuilt    = "index/rebuilt"
	IntervalSkipped = "index/interval.skipped"

	// Errors
	ErrorSyntax = "error/syntax"
	ErrorIO     = "error/io"
)

// Event represents a single annotation event.
type Event struct {
	Name    string                 // Event name using hierarchical constants above
	Start   time.Time              // Start timestamp
	End     time.Time              // End timestamp
	Latency time.Duration          // Duration (End - Start)
	Data    map[string]interface{} // Event-specific data
}

// Handler processes annotation events as they occur.
type Handler func(event Event)

// Collector accumulates events and forwards them to a handler.
// A nil *Collector is valid and records nothing.
type Collector struct {
	handler Handler
	events  []Event
	keep    bool
}

// NewCollector creates a collector that forwards to handler without
// retaining events.
func NewCollector(handler Handler) *Collector {
	return &Collector{handler: handler}
}

// NewRecordingCollector creates a collector that also retains every event,
// for inspection with Events.
func NewRecordingCollector(handler Handler) *Collector {
	return &Collector{handler: handler, keep: true}
}

// Enabled reports whether events are observed at all
func (c *Collector) Enabled() bool {
	return c != nil && (c.handler != nil || c.keep)
}

// Add records a new event.
func (c *Collector) Add(event Event) {
	if !c.Enabled() {
		return
	}
	if c.keep {
		c.events = append(c.events, event)
	}
	if c.handler != nil {
		c.handler(event)
	}
}

// AddTiming records an event that started at start and ends now.
func (c *Collector) AddTiming(name string, start time.Time, data map[string]interface{}) {
	if !c.Enabled() {
		return
	}

	end := time.Now()
	c.Add(Event{
		Name:    name,
		Start:   start,
		End:     end,
		Latency: end.Sub(start),
		Data:    data,
	})
}

// Events returns a copy of the retained events.
func (c *Collector) Events() []Event {
	if c == nil {
		return nil
	}
	eventsCopy := make([]Event, len(c.events))
	copy(eventsCopy, c.events)
	return eventsCopy
}

// Named returns the retained events with the given name.
func (c *Collector) Named(name string) []Event {
	var out []Event
	for _, e := range c.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears the retained events.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.events = c.events[:0]
}
