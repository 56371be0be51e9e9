package store

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/nuvl/nuvlworld/world"
	"github.com/nuvl/nuvlworld/world/annotations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFacts = `; sample calendar
(instanceOf Q42 Q5)
(subAttrOf e1 (TimeIntervalFn 1000 2000))
(subAttrOf e2 (TimeIntervalFn 5000 5000))
(valueIn Q1 Q2 (YearFn 2017))
(startTime e3 1000)

(label Q42 "Douglas Adams")
`

func loadString(t *testing.T, s *Store, text string) {
	t.Helper()
	require.NoError(t, s.LoadFacts(strings.NewReader(text), "test.scm"))
}

func texts(facts []world.Fact) []string {
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = f.Text
	}
	return out
}

func TestLoadFactsIndexes(t *testing.T) {
	s := New()
	loadString(t, s, sampleFacts)

	assert.Equal(t, 6, s.Len())
	assert.Equal(t, []string{
		"(subAttrOf e1 (TimeIntervalFn 1000 2000))",
		"(subAttrOf e2 (TimeIntervalFn 5000 5000))",
	}, texts(s.FactsByPredicate("subAttrOf")))
	assert.Equal(t, []string{"instanceOf", "label", "startTime", "subAttrOf", "valueIn"}, s.Predicates())
	assert.Equal(t, 2, s.CountByPredicate("subAttrOf"))

	for _, term := range []string{"Q42", "e1", "e2", "e3", "Q1"} {
		assert.True(t, s.IsReferenced(term), term)
	}
	assert.False(t, s.IsReferenced("Q5"), "third positions are not indexed")
	assert.False(t, s.IsReferenced("Q2"), "qualifiers are not indexed")

	f, ok := s.Fact(0)
	require.True(t, ok)
	assert.Equal(t, "(instanceOf Q42 Q5)", f.Text)
	assert.Equal(t, world.ShapeTerm, f.Shape)
	_, ok = s.Fact(99)
	assert.False(t, ok)
	assert.True(t, s.Contains("(startTime e3 1000)"))
}

func TestFactsByPredicateUnknownIsEmpty(t *testing.T) {
	s := New()
	got := s.FactsByPredicate("nothing")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	called := false
	s.EachFact("nothing", func(world.Fact) bool { called = true; return true })
	assert.False(t, called)
}

func TestLoadFactsTwiceIsIdempotent(t *testing.T) {
	s := New()
	loadString(t, s, sampleFacts)
	before := s.FactsByPredicate("subAttrOf")
	gen := s.Generation()

	loadString(t, s, sampleFacts)
	assert.Equal(t, before, s.FactsByPredicate("subAttrOf"))
	assert.Equal(t, 6, s.Len())
	assert.Equal(t, gen, s.Generation(), "duplicates do not change the store")
}

func TestLoadFactsSyntaxErrorKeepsEarlierLines(t *testing.T) {
	s := New()
	err := s.LoadFacts(strings.NewReader("(a b c)\n(d e f)\nnot a fact\n(g h i)\n"), "bad.scm")
	require.Error(t, err)

	var se *world.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "bad.scm", se.Source)
	assert.Equal(t, 3, se.Line)
	assert.Equal(t, "not a fact", se.Text)
	assert.Contains(t, err.Error(), "bad.scm:3")

	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Contains("(g h i)"))
}

func TestLoadFactsCRLF(t *testing.T) {
	s := New()
	loadString(t, s, "(a b c)\r\n(d e 5)\r\n")
	assert.True(t, s.Contains("(a b c)"))
	assert.True(t, s.Contains("(d e 5)"))
}

func TestLoadFactsReadError(t *testing.T) {
	s := New()
	err := s.LoadFacts(iotest.ErrReader(os.ErrClosed), "broken")
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "broken", le.Source)
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.False(t, world.IsSyntaxError(err))
}

func TestLoadFactsFileMissing(t *testing.T) {
	s := New()
	err := s.LoadFactsFile(filepath.Join(t.TempDir(), "missing.scm"))
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDescriptionFactAdmission(t *testing.T) {
	s := New()
	loadString(t, s, `(description Q42 "too early")
(instanceOf Q42 Q5)
(description Q42 "Douglas \"DNA\" Adams")
(description Q99 "never referenced")
`)

	text, ok := s.Description("Q42")
	require.True(t, ok)
	assert.Equal(t, `Douglas "DNA" Adams`, text)

	_, ok = s.Description("Q99")
	assert.False(t, ok)
	assert.Equal(t, "Q99", s.Title("Q99"))
	assert.Equal(t, `Douglas "DNA" Adams`, s.Title("Q42"))

	assert.Zero(t, s.CountByPredicate("description"), "descriptions never enter the indices")
	assert.False(t, s.IsReferenced("Q99"), "descriptions never create index entries")
	assert.Equal(t, 1, s.DescriptionCount())
}

func TestDescriptionDroppedBeforeReferenceStaysDropped(t *testing.T) {
	s := New()
	loadString(t, s, `(description Q7 "first")`)
	loadString(t, s, `(instanceOf Q7 Q5)`)

	_, ok := s.Description("Q7")
	assert.False(t, ok)
}

func TestDescriptionFactBadEscapeIsSyntaxError(t *testing.T) {
	s := New()
	err := s.LoadFacts(strings.NewReader("(instanceOf Q1 Q5)\n(description Q1 \"bad \\q\")\n"), "d.scm")
	var se *world.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Line)
}

func TestLoadDescriptions(t *testing.T) {
	s := New()
	loadString(t, s, "(instanceOf Q42 Q5)\n(instanceOf Q64 Q515)\n")

	tsv := "42\t\"Douglas Adams\"\n64\tBerlin \\u00e9\n1\t\"Universe\"\n\n"
	require.NoError(t, s.LoadDescriptions(strings.NewReader(tsv), "labels.tsv"))

	text, ok := s.Description("Q42")
	require.True(t, ok)
	assert.Equal(t, "Douglas Adams", text)

	text, ok = s.Description("Q64")
	require.True(t, ok)
	assert.Equal(t, "Berlin é", text)

	_, ok = s.Description("Q1")
	assert.False(t, ok, "Q1 is not referenced by any fact")
	assert.Equal(t, 2, s.DescriptionCount())
}

func TestLoadDescriptionsMissingTab(t *testing.T) {
	s := New()
	err := s.LoadDescriptions(strings.NewReader("42\tok\nno tab here\n"), "labels.tsv")
	var se *world.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 2, se.Line)
}

func TestLoadSourcesOrder(t *testing.T) {
	dir := t.TempDir()
	facts := filepath.Join(dir, "facts.scm")
	labels := filepath.Join(dir, "labels.tsv")
	require.NoError(t, os.WriteFile(facts, []byte("(instanceOf Q42 Q5)\n"), 0o644))
	require.NoError(t, os.WriteFile(labels, []byte("42\tDouglas Adams\n"), 0o644))

	s := New()
	require.NoError(t, s.LoadSources([]string{facts}, labels))
	assert.Equal(t, "Douglas Adams", s.Title("Q42"))

	// Loading descriptions first drops them all.
	s2 := New()
	require.NoError(t, s2.LoadDescriptionsFile(labels))
	require.NoError(t, s2.LoadFactsFile(facts))
	assert.Equal(t, "Q42", s2.Title("Q42"))
}

func TestFindFirstMatching(t *testing.T) {
	s := New()
	loadString(t, s, sampleFacts)

	pattern := regexp.MustCompile(`^\(subAttrOf (` + world.Term + `) \(TimeIntervalFn (` + world.Integer + `) (` + world.Integer + `)\)\)$`)

	m, ok := s.FindFirstMatching("subAttrOf", pattern, 1, "e2")
	require.True(t, ok)
	assert.Equal(t, []string{"(subAttrOf e2 (TimeIntervalFn 5000 5000))", "e2", "5000", "5000"}, m)

	_, ok = s.FindFirstMatching("subAttrOf", pattern, 1, "e9")
	assert.False(t, ok)
	_, ok = s.FindFirstMatching("instanceOf", pattern, 1, "e1")
	assert.False(t, ok)
	_, ok = s.FindFirstMatching("subAttrOf", pattern, 7, "e1")
	assert.False(t, ok, "group out of range")
	_, ok = s.FindFirstMatching("subAttrOf", nil, 0, "")
	assert.False(t, ok)
}

func TestAdd(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("(instanceOf Q1 Q5)"))
	require.NoError(t, s.Add("; comment"))
	require.NoError(t, s.Add(`(description Q1 "One")`))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "One", s.Title("Q1"))

	assert.True(t, world.IsSyntaxError(s.Add("(broken")))
}

func TestLoadEvents(t *testing.T) {
	c := annotations.NewRecordingCollector(nil)
	s := NewWithOptions(Options{FactProgress: 2})
	s.collector = c

	loadString(t, s, "(a b c)\n(a b c)\n(d e f)\n(g h i)\n")

	assert.Len(t, c.Named(annotations.LoadBegin), 1)
	assert.Len(t, c.Named(annotations.LoadProgress), 2)

	done := c.Named(annotations.LoadComplete)
	require.Len(t, done, 1)
	assert.Equal(t, 4, done[0].Data["lines"])
	assert.Equal(t, 3, done[0].Data["added"])
	assert.Equal(t, 1, done[0].Data["duplicates"])

	err := s.LoadFacts(strings.NewReader("oops\n"), "bad.scm")
	require.Error(t, err)
	assert.Len(t, c.Named(annotations.ErrorSyntax), 1)
}

func TestHandlerOption(t *testing.T) {
	var names []string
	s := NewWithOptions(Options{Handler: func(e annotations.Event) { names = append(names, e.Name) }})
	loadString(t, s, "(a b c)\n")
	assert.Equal(t, []string{annotations.LoadBegin, annotations.LoadComplete}, names)
}
