package world

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrMalformedReference marks a fact that passed the line grammar but does
// not decompose into the nested shape a consumer expected
var ErrMalformedReference = errors.New("malformed reference")

// SyntaxError reports a fact line that matches none of the fact shapes.
// Source and Line are filled in by loaders; Classify leaves them empty.
type SyntaxError struct {
	Source string
	Line   int
	Text   string
}

func (e *SyntaxError) Error() string {
	if e.Source == "" && e.Line == 0 {
		return fmt.Sprintf("unrecognized fact syntax: %q", e.Text)
	}
	return fmt.Sprintf("%s:%d: unrecognized fact syntax: %q", e.Source, e.Line, e.Text)
}

// IsSyntaxError reports whether err is or wraps a *SyntaxError
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}
