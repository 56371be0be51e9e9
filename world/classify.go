package world

import (
	"regexp"
	"strings"
)

// Grammar fragments shared by the line shapes and by callers that build
// their own patterns over fact text (see calendar and argue).
const (
	Term        = `[a-zA-Z_]\w*`
	Integer     = `-?\d+`
	termOrInt   = `(?:` + Term + `|` + Integer + `)`
	UnaryFn     = `\(` + Term + `Fn ` + termOrInt + `\)`
	BinaryFn    = `\(` + Term + `Fn ` + termOrInt + ` ` + termOrInt + `\)`
	termValue   = `(` + Term + `|` + UnaryFn + `|` + BinaryFn + `)`
	CommentMark = ";"

	// DescriptionPredicate marks facts that feed the description table
	// instead of the indices.
	DescriptionPredicate = "description"
)

// Classification is the result of matching one line against the fact shapes
type Classification struct {
	Shape     Shape
	Predicate string
	Arg2      string
	Qualifier string
	Value     string
}

// Fact builds the fact for the classified text
func (c Classification) Fact(text string) Fact {
	return Fact{
		Text:      text,
		Shape:     c.Shape,
		Predicate: c.Predicate,
		Arg2:      c.Arg2,
		Qualifier: c.Qualifier,
		Value:     c.Value,
	}
}

// IsDescription reports whether the line is a description fact, which only
// ever feeds the description table
func (c Classification) IsDescription() bool {
	return c.Shape == ShapeString && c.Predicate == DescriptionPredicate
}

// shapeParser matches one of the fact grammars
type shapeParser struct {
	shape   Shape
	pattern *regexp.Regexp
}

func (p shapeParser) parse(line string) (Classification, bool) {
	m := p.pattern.FindStringSubmatch(line)
	if m == nil {
		return Classification{}, false
	}
	c := Classification{Shape: p.shape, Predicate: m[1], Arg2: m[2]}
	if p.shape == ShapeQualified {
		c.Qualifier = m[3]
		c.Value = m[4]
	} else {
		c.Value = m[3]
	}
	return c, true
}

// shapeParsers are tried in this order and the first match wins. A bare term
// value and an integer value share a prefix, so the order is part of the
// grammar.
var shapeParsers = []shapeParser{
	{ShapeTerm, regexp.MustCompile(`^\((` + Term + `) (` + Term + `) ` + termValue + `\)$`)},
	{ShapeQualified, regexp.MustCompile(`^\((` + Term + `) (` + Term + `) (` + Term + `) ` + termValue + `\)$`)},
	{ShapeInteger, regexp.MustCompile(`^\((` + Term + `) (` + Term + `) (` + Integer + `)\)$`)},
	{ShapeString, regexp.MustCompile(`^\((` + Term + `) (` + Term + `) (".*")\)$`)},
}

// IsSkippable reports whether a line carries no fact: empty or a comment
func IsSkippable(line string) bool {
	return line == "" || strings.HasPrefix(line, CommentMark)
}

// Classify decides which fact shape line has.
// ok is false for blank and comment lines. A line that is neither skippable
// nor matches any shape returns a *SyntaxError. Classify has no side effects.
func Classify(line string) (c Classification, ok bool, err error) {
	if IsSkippable(line) {
		return Classification{}, false, nil
	}
	for _, p := range shapeParsers {
		if c, matched := p.parse(line); matched {
			return c, true, nil
		}
	}
	return Classification{}, false, &SyntaxError{Text: line}
}
