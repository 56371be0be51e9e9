package annotations

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	var seen []string
	c := NewRecordingCollector(func(e Event) { seen = append(seen, e.Name) })

	c.AddTiming(LoadBegin, time.Now(), map[string]interface{}{"source": "a.scm"})
	c.Add(Event{Name: LoadComplete})
	c.Add(Event{Name: LoadComplete})

	assert.Equal(t, []string{LoadBegin, LoadComplete, LoadComplete}, seen)
	assert.Len(t, c.Events(), 3)
	assert.Len(t, c.Named(LoadComplete), 2)

	c.Reset()
	assert.Empty(t, c.Events())
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.False(t, c.Enabled())
	c.Add(Event{Name: LoadBegin})
	c.AddTiming(LoadBegin, time.Now(), nil)
	c.Reset()
	assert.Nil(t, c.Events())

	assert.False(t, NewCollector(nil).Enabled())
}

func TestOutputFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewOutputFormatter(&buf)

	t.Run("LoadComplete", func(t *testing.T) {
		out := f.Format(Event{
			Name:    LoadComplete,
			Latency: 1500 * time.Microsecond,
			Data:    map[string]interface{}{"source": "facts.scm", "lines": 1234567, "added": 42},
		})
		assert.Equal(t, "[1.5ms] === Loaded facts.scm: 1,234,567 lines, 42 added", out)
	})

	t.Run("IndexRebuilt", func(t *testing.T) {
		out := f.Format(Event{
			Name:    IndexRebuilt,
			Latency: 10 * time.Microsecond,
			Data:    map[string]interface{}{"zone": "UTC", "intervals": 3, "days": 5},
		})
		assert.Equal(t, "[10µs] === Date index rebuilt for UTC: 3 intervals over 5 days", out)
	})

	t.Run("Handle", func(t *testing.T) {
		buf.Reset()
		f.Handle(Event{Name: ErrorSyntax, Data: map[string]interface{}{"error": "bad line"}})
		require.True(t, strings.HasSuffix(buf.String(), "\n"))
		assert.Contains(t, buf.String(), "bad line")
	})
}
