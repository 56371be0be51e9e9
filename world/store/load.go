package store

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nuvl/nuvlworld/world"
	"github.com/nuvl/nuvlworld/world/annotations"
	"github.com/nuvl/nuvlworld/world/logger"
)

// Description ids in bulk tables are numeric; the subject is the id with
// this prefix, matching wikidata item names used by fact files
const descriptionSubjectPrefix = "Q"

// loadStats counts what one load call did
type loadStats struct {
	lines      int
	added      int
	duplicates int
	described  int
	dropped    int
}

func (st loadStats) data(source, kind string) map[string]interface{} {
	return map[string]interface{}{
		"source":     source,
		"kind":       kind,
		"lines":      st.lines,
		"added":      st.added,
		"duplicates": st.duplicates,
		"described":  st.described,
		"dropped":    st.dropped,
	}
}

// LoadSources loads every fact file in order and then the description
// table, if descriptionFile is not empty. Descriptions are only admitted
// for subjects the facts already reference, so facts must come first.
func (s *Store) LoadSources(factFiles []string, descriptionFile string) error {
	for _, path := range factFiles {
		if err := s.LoadFactsFile(path); err != nil {
			return err
		}
	}
	if descriptionFile == "" {
		return nil
	}
	return s.LoadDescriptionsFile(descriptionFile)
}

// LoadFactsFile opens path and loads it with LoadFacts
func (s *Store) LoadFactsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return s.ioFailure(path, err)
	}
	defer f.Close()
	return s.LoadFacts(f, path)
}

// LoadFacts reads one fact per line from r and indexes each by predicate
// and by second argument. name identifies the source in errors and events.
//
// A description fact is not indexed: its text goes to the description
// table, and only when its subject is already some fact's second argument.
//
// The first unrecognized line aborts the load with a *world.SyntaxError;
// facts from earlier lines stay loaded. Read failures are returned as a
// *LoadError.
func (s *Store) LoadFacts(r io.Reader, name string) error {
	start := time.Now()
	s.collector.Add(annotations.Event{
		Name:  annotations.LoadBegin,
		Start: start,
		Data:  map[string]interface{}{"source": name, "kind": "facts"},
	})

	var st loadStats
	err := eachLine(r, func(line string) error {
		st.lines++
		if s.factProgress > 0 && st.lines%s.factProgress == 0 {
			s.progress(name, st.lines, start)
		}

		c, ok, err := world.Classify(line)
		if err != nil {
			return s.syntaxFailure(name, st.lines, line)
		}
		if !ok {
			return nil
		}

		if c.IsDescription() {
			admitted, err := s.admitDescription(c.Arg2, c.Value)
			if err != nil {
				if errors.Is(err, errUnescape) {
					return s.syntaxFailure(name, st.lines, line)
				}
				return s.ioFailure(name, err)
			}
			if admitted {
				st.described++
			} else {
				st.dropped++
			}
			return nil
		}

		if s.insert(c.Fact(line)) {
			st.added++
		} else {
			st.duplicates++
		}
		return nil
	})
	if err != nil {
		var le *LoadError
		if !world.IsSyntaxError(err) && !errors.As(err, &le) {
			err = s.ioFailure(name, err)
		}
		return err
	}

	s.finish(name, "facts", st, start)
	return nil
}

// LoadDescriptionsFile opens path and loads it with LoadDescriptions
func (s *Store) LoadDescriptionsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return s.ioFailure(path, err)
	}
	defer f.Close()
	return s.LoadDescriptions(f, path)
}

// LoadDescriptions reads "id<TAB>text" rows from r. The subject of a row is
// "Q" followed by id, and the row is kept only when that subject is already
// the second argument of a loaded fact. text is JSON-escaped, with or
// without surrounding quotes, and is stored unescaped.
func (s *Store) LoadDescriptions(r io.Reader, name string) error {
	start := time.Now()
	s.collector.Add(annotations.Event{
		Name:  annotations.LoadBegin,
		Start: start,
		Data:  map[string]interface{}{"source": name, "kind": "descriptions"},
	})

	var st loadStats
	err := eachLine(r, func(line string) error {
		st.lines++
		if s.descriptionProgress > 0 && st.lines%s.descriptionProgress == 0 {
			s.progress(name, st.lines, start)
		}
		if line == "" {
			return nil
		}

		tab := strings.IndexByte(line, '\t')
		if tab <= 0 {
			return s.syntaxFailure(name, st.lines, line)
		}
		subject := descriptionSubjectPrefix + line[:tab]
		text := line[tab+1:]
		if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
			text = `"` + text + `"`
		}

		admitted, err := s.admitDescription(subject, text)
		if err != nil {
			if errors.Is(err, errUnescape) {
				return s.syntaxFailure(name, st.lines, line)
			}
			return s.ioFailure(name, err)
		}
		if admitted {
			st.described++
		} else {
			st.dropped++
		}
		return nil
	})
	if err != nil {
		var le *LoadError
		if !world.IsSyntaxError(err) && !errors.As(err, &le) {
			err = s.ioFailure(name, err)
		}
		return err
	}

	s.finish(name, "descriptions", st, start)
	return nil
}

var errUnescape = errors.New("unescape description")

// admitDescription stores the unescaped quoted text for subject when
// subject is referenced. The check comes first so descriptions never
// create index entries of their own.
func (s *Store) admitDescription(subject, quoted string) (bool, error) {
	if !s.IsReferenced(subject) {
		return false, nil
	}
	text, err := world.Unescape(quoted)
	if err != nil {
		return false, errors.Mark(err, errUnescape)
	}
	if err := s.descriptions.Put(subject, text); err != nil {
		return false, errors.Wrapf(err, "store description for %s", subject)
	}
	return true, nil
}

func (s *Store) progress(name string, lines int, start time.Time) {
	logger.Logger.Infow("loading", "source", name, "line", lines)
	s.collector.AddTiming(annotations.LoadProgress, start, map[string]interface{}{
		"source": name,
		"lines":  lines,
	})
}

func (s *Store) finish(name, kind string, st loadStats, start time.Time) {
	logger.Logger.Infow("loaded "+kind,
		"source", name,
		"lines", st.lines,
		"added", st.added,
		"duplicates", st.duplicates,
		"described", st.described,
		"dropped", st.dropped,
		"elapsed", time.Since(start))
	s.collector.AddTiming(annotations.LoadComplete, start, st.data(name, kind))
}

func (s *Store) syntaxFailure(name string, line int, text string) error {
	err := &world.SyntaxError{Source: name, Line: line, Text: text}
	s.collector.Add(annotations.Event{
		Name: annotations.ErrorSyntax,
		Data: map[string]interface{}{"source": name, "line": line, "error": err.Error()},
	})
	return err
}

func (s *Store) ioFailure(name string, cause error) error {
	err := &LoadError{Source: name, Err: cause}
	s.collector.Add(annotations.Event{
		Name: annotations.ErrorIO,
		Data: map[string]interface{}{"source": name, "error": err.Error()},
	})
	return err
}

// eachLine calls fn with every line of r, without the line terminator.
// Lines may be arbitrarily long.
func eachLine(r io.Reader, fn func(line string) error) error {
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if ferr := fn(line); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read line")
		}
	}
}
