package store

import (
	"fmt"
)

// LoadError reports a source that could not be opened or read.
// It is fatal to the load call that returned it.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
