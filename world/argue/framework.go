// Package argue turns task and attribute facts into the assumptions and
// rules of an assumption-based argumentation framework. Computing
// extensions is left to an Engine supplied by the caller.
package argue

import (
	"sort"

	"github.com/nuvl/nuvlworld/world"
	"github.com/nuvl/nuvlworld/world/logger"
)

// Predicates read by BuildFramework
const (
	ImpliesPredicate  = "implies"       // (implies TASK ATTR)
	DisjointPredicate = "disjointAttrs" // (disjointAttrs ATTR OTHER)
)

var (
	impliesPattern  = world.Patterns.MustCompile(`^\(` + ImpliesPredicate + ` (` + world.Term + `) (` + world.Term + `)\)$`)
	disjointPattern = world.Patterns.MustCompile(`^\(` + DisjointPredicate + ` (` + world.Term + `) (` + world.Term + `)\)$`)
	attrPattern     = world.Patterns.MustCompile(`^\(attr (` + world.Term + `)\)$`)
)

// Sentence is a ground atom such as "(task Shop)". A contrary sentence
// stands for the negation of Symbol.
type Sentence struct {
	Symbol   string `yaml:"symbol"`
	Contrary bool   `yaml:"contrary,omitempty"`
}

// Task is the assumable sentence for task
func Task(task string) Sentence {
	return Sentence{Symbol: "(task " + task + ")"}
}

// Attr is the sentence asserting attribute attr
func Attr(attr string) Sentence {
	return Sentence{Symbol: "(attr " + attr + ")"}
}

// Not returns the contrary of s
func (s Sentence) Not() Sentence {
	return Sentence{Symbol: s.Symbol, Contrary: !s.Contrary}
}

func (s Sentence) String() string {
	if s.Contrary {
		return "!" + s.Symbol
	}
	return s.Symbol
}

func (s Sentence) less(o Sentence) bool {
	if s.Symbol != o.Symbol {
		return s.Symbol < o.Symbol
	}
	return !s.Contrary && o.Contrary
}

// AttrName returns ATTR for a non-contrary (attr ATTR) sentence
func AttrName(s Sentence) (string, bool) {
	if s.Contrary {
		return "", false
	}
	m := attrPattern.FindStringSubmatch(s.Symbol)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Rule derives Consequent from Antecedent
type Rule struct {
	Antecedent Sentence `yaml:"antecedent"`
	Consequent Sentence `yaml:"consequent"`
}

func (r Rule) String() string {
	return r.Antecedent.String() + " -> " + r.Consequent.String()
}

// Framework is the input to an Engine. Assumptions and Rules are free of
// duplicates and sorted.
type Framework struct {
	Assumptions []Sentence `yaml:"assumptions"`
	Rules       []Rule     `yaml:"rules"`
}

// FactSource is the part of the store BuildFramework reads
type FactSource interface {
	EachFact(predicate string, fn func(world.Fact) bool)
}

// BuildFramework reads implies and disjointAttrs facts from src.
//
// Each (implies TASK ATTR) makes (task TASK) an assumption with the rules
// (task TASK) -> (attr TASK) and (task TASK) -> (attr ATTR). Each
// (disjointAttrs A B) adds (attr A) -> !(attr B). Facts of either predicate
// in any other form are ignored.
func BuildFramework(src FactSource) Framework {
	assumptions := make(map[Sentence]struct{})
	rules := make(map[Rule]struct{})

	src.EachFact(ImpliesPredicate, func(f world.Fact) bool {
		m := impliesPattern.FindStringSubmatch(f.Text)
		if m == nil {
			logger.Logger.Debugw("ignoring implies fact", "fact", f.Text)
			return true
		}
		task := Task(m[1])
		assumptions[task] = struct{}{}
		rules[Rule{Antecedent: task, Consequent: Attr(m[1])}] = struct{}{}
		rules[Rule{Antecedent: task, Consequent: Attr(m[2])}] = struct{}{}
		return true
	})

	src.EachFact(DisjointPredicate, func(f world.Fact) bool {
		m := disjointPattern.FindStringSubmatch(f.Text)
		if m == nil {
			logger.Logger.Debugw("ignoring disjointAttrs fact", "fact", f.Text)
			return true
		}
		rules[Rule{Antecedent: Attr(m[1]), Consequent: Attr(m[2]).Not()}] = struct{}{}
		return true
	})

	fw := Framework{
		Assumptions: make([]Sentence, 0, len(assumptions)),
		Rules:       make([]Rule, 0, len(rules)),
	}
	for s := range assumptions {
		fw.Assumptions = append(fw.Assumptions, s)
	}
	for r := range rules {
		fw.Rules = append(fw.Rules, r)
	}
	sort.Slice(fw.Assumptions, func(i, j int) bool { return fw.Assumptions[i].less(fw.Assumptions[j]) })
	sort.Slice(fw.Rules, func(i, j int) bool {
		a, b := fw.Rules[i], fw.Rules[j]
		if a.Antecedent != b.Antecedent {
			return a.Antecedent.less(b.Antecedent)
		}
		return a.Consequent.less(b.Consequent)
	})
	return fw
}

// Engine computes extensions of a framework. No implementation ships
// with this module.
type Engine interface {
	GroundedExtension(fw Framework) ([]Sentence, error)
	PreferredExtensions(fw Framework) ([][]Sentence, error)
	// Deductions returns every sentence derivable from assumptions
	Deductions(fw Framework, assumptions []Sentence) ([]Sentence, error)
}

// Attrs collects the attribute names among sentences, skipping contraries
func Attrs(sentences []Sentence) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range sentences {
		if name, ok := AttrName(s); ok {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}
