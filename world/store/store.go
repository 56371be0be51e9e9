// Package store holds loaded facts, their predicate and secondary-argument
// indices, and the description table.
//
// A Store is not safe for concurrent use. Loads must complete before
// queries run, and loads must not overlap each other.
package store

import (
	"regexp"
	"sort"

	"github.com/nuvl/nuvlworld/world"
	"github.com/nuvl/nuvlworld/world/annotations"
	"github.com/nuvl/nuvlworld/world/logger"
)

// Default progress intervals, in lines
const (
	DefaultFactProgress        = 1000000
	DefaultDescriptionProgress = 10000000
)

// Options configures a Store
type Options struct {
	// Descriptions backs the description table; nil means an in-memory map
	Descriptions DescriptionTable
	// Handler receives load annotation events; nil disables them
	Handler annotations.Handler
	// FactProgress and DescriptionProgress set how often a progress event
	// is emitted while loading; zero means the defaults, negative disables
	FactProgress        int
	DescriptionProgress int
}

// Store owns every loaded fact exactly once, in an arena indexed by FactID.
// The predicate and secondary-argument indices hold FactIDs in insertion
// order; a fact whose text is already in the arena is never added again,
// which gives both indices set semantics.
type Store struct {
	facts  []world.Fact
	byText map[string]world.FactID

	byPredicate map[string][]world.FactID
	byArg2      map[string][]world.FactID

	descriptions DescriptionTable
	collector    *annotations.Collector

	factProgress        int
	descriptionProgress int

	generation uint64
}

// New creates an empty store with an in-memory description table
func New() *Store {
	return NewWithOptions(Options{})
}

// NewWithOptions creates an empty store
func NewWithOptions(opts Options) *Store {
	if opts.Descriptions == nil {
		opts.Descriptions = NewMemoryDescriptions()
	}
	if opts.FactProgress == 0 {
		opts.FactProgress = DefaultFactProgress
	}
	if opts.DescriptionProgress == 0 {
		opts.DescriptionProgress = DefaultDescriptionProgress
	}

	return &Store{
		byText:              make(map[string]world.FactID),
		byPredicate:         make(map[string][]world.FactID),
		byArg2:              make(map[string][]world.FactID),
		descriptions:        opts.Descriptions,
		collector:           annotations.NewCollector(opts.Handler),
		factProgress:        opts.FactProgress,
		descriptionProgress: opts.DescriptionProgress,
	}
}

// insert adds f to the arena and both indices.
// It returns false when a fact with the same text is already present.
func (s *Store) insert(f world.Fact) bool {
	if _, exists := s.byText[f.Text]; exists {
		return false
	}

	id := world.FactID(len(s.facts))
	s.facts = append(s.facts, f)
	s.byText[f.Text] = id
	s.byPredicate[f.Predicate] = append(s.byPredicate[f.Predicate], id)
	s.byArg2[f.Arg2] = append(s.byArg2[f.Arg2], id)
	s.generation++
	return true
}

// Add classifies text and inserts it as a fact. Description facts go to the
// description table under the same admission rule as LoadFacts.
func (s *Store) Add(text string) error {
	c, ok, err := world.Classify(text)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if c.IsDescription() {
		_, err := s.admitDescription(c.Arg2, c.Value)
		return err
	}
	s.insert(c.Fact(text))
	return nil
}

// Len returns the number of distinct facts
func (s *Store) Len() int {
	return len(s.facts)
}

// Generation changes every time a fact is inserted. Derived indices compare
// it to decide whether they are out of date.
func (s *Store) Generation() uint64 {
	return s.generation
}

// Fact returns the fact with the given id
func (s *Store) Fact(id world.FactID) (world.Fact, bool) {
	if int(id) >= len(s.facts) {
		return world.Fact{}, false
	}
	return s.facts[id], true
}

// Contains reports whether a fact with exactly this text is loaded
func (s *Store) Contains(text string) bool {
	_, ok := s.byText[text]
	return ok
}

// FactsByPredicate returns the facts whose predicate is predicate.
// The result is a fresh slice, empty but never nil for an unknown predicate.
func (s *Store) FactsByPredicate(predicate string) []world.Fact {
	ids := s.byPredicate[predicate]
	out := make([]world.Fact, len(ids))
	for i, id := range ids {
		out[i] = s.facts[id]
	}
	return out
}

// EachFact calls fn for every fact with the given predicate until fn
// returns false
func (s *Store) EachFact(predicate string, fn func(world.Fact) bool) {
	for _, id := range s.byPredicate[predicate] {
		if !fn(s.facts[id]) {
			return
		}
	}
}

// CountByPredicate returns how many facts have the given predicate
func (s *Store) CountByPredicate(predicate string) int {
	return len(s.byPredicate[predicate])
}

// Predicates returns every indexed predicate, sorted
func (s *Store) Predicates() []string {
	out := make([]string, 0, len(s.byPredicate))
	for p := range s.byPredicate {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// IsReferenced reports whether term is the second argument of any loaded
// fact
func (s *Store) IsReferenced(term string) bool {
	_, ok := s.byArg2[term]
	return ok
}

// FindFirstMatching scans the facts under predicate and returns the
// submatches of the first fact whose text matches pattern with submatch
// group equal to expected. Facts are scanned in load order, but callers
// should treat this as "find one": when several facts qualify, which one
// is returned is not part of the contract.
func (s *Store) FindFirstMatching(predicate string, pattern *regexp.Regexp, group int, expected string) ([]string, bool) {
	if pattern == nil || group < 0 || group > pattern.NumSubexp() {
		return nil, false
	}
	for _, id := range s.byPredicate[predicate] {
		m := pattern.FindStringSubmatch(s.facts[id].Text)
		if m != nil && m[group] == expected {
			return m, true
		}
	}
	return nil, false
}

// Description returns the display text stored for subject
func (s *Store) Description(subject string) (string, bool) {
	text, ok, err := s.descriptions.Get(subject)
	if err != nil {
		logger.Logger.Warnw("description lookup failed", "subject", subject, "error", err)
		return "", false
	}
	return text, ok
}

// Title returns the description of subject, or subject itself when there
// is none
func (s *Store) Title(subject string) string {
	if text, ok := s.Description(subject); ok {
		return text
	}
	return subject
}

// DescriptionCount returns the number of stored descriptions
func (s *Store) DescriptionCount() int {
	return s.descriptions.Len()
}

// Close releases the description table
func (s *Store) Close() error {
	return s.descriptions.Close()
}
