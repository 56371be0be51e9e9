package world

import (
	"fmt"
)

// Shape identifies which of the four fact line grammars a line matched
type Shape uint8

const (
	ShapeNone      Shape = iota
	ShapeTerm            // (PRED ARG2 VALUE), VALUE a term or function call
	ShapeQualified       // (PRED ARG2 ARG3 VALUE)
	ShapeInteger         // (PRED ARG2 INTEGER)
	ShapeString          // (PRED ARG2 "STRING")
)

// String returns the shape name
func (s Shape) String() string {
	switch s {
	case ShapeTerm:
		return "term"
	case ShapeQualified:
		return "qualified"
	case ShapeInteger:
		return "integer"
	case ShapeString:
		return "string"
	default:
		return "none"
	}
}

// FactID is the position of a fact in a store's arena
type FactID uint32

// Fact is the fundamental unit of data in the world store.
// It is a parenthesized triple (or quad) taken verbatim from one input line.
// Two facts are the same fact exactly when their Text is equal; the other
// fields are derived from Text by the classifier.
type Fact struct {
	Text      string // Canonical text, e.g. "(subAttrOf e1 (TimeIntervalFn 0 1))"
	Shape     Shape
	Predicate string // First term, the primary index key
	Arg2      string // Second term, the secondary index key
	Qualifier string // Third term of a ShapeQualified fact, empty otherwise
	Value     string // Raw value: term, integer, quoted string or function call
}

// NewFact classifies text and returns the resulting fact.
// It returns a *SyntaxError when the text is not a single recognized fact.
func NewFact(text string) (Fact, error) {
	c, ok, err := Classify(text)
	if err != nil {
		return Fact{}, err
	}
	if !ok {
		return Fact{}, &SyntaxError{Line: 1, Text: text}
	}
	return c.Fact(text), nil
}

// Equal reports whether two facts have the same canonical text
func (f Fact) Equal(other Fact) bool {
	return f.Text == other.Text
}

// String returns the canonical text
func (f Fact) String() string {
	return f.Text
}

// GoString is used by %#v and shows the decomposition
func (f Fact) GoString() string {
	return fmt.Sprintf("world.Fact{%s pred=%s arg2=%s value=%s}", f.Shape, f.Predicate, f.Arg2, f.Value)
}
