package world

import (
	"regexp"

	"github.com/cockroachdb/errors"
	gocache "github.com/patrickmn/go-cache"
)

// PatternCache compiles fact patterns once and hands out the compiled form.
// Patterns over fact text are usually built from the grammar constants and
// reused for every lookup against a predicate.
type PatternCache struct {
	cache *gocache.Cache
}

// NewPatternCache creates an empty cache whose entries never expire
func NewPatternCache() *PatternCache {
	return &PatternCache{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Compile returns the compiled pattern for expr
func (c *PatternCache) Compile(expr string) (*regexp.Regexp, error) {
	if val, found := c.cache.Get(expr); found {
		return val.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "compile pattern %q", expr)
	}
	c.cache.SetDefault(expr, re)
	return re, nil
}

// MustCompile is Compile for patterns known to be valid
func (c *PatternCache) MustCompile(expr string) *regexp.Regexp {
	re, err := c.Compile(expr)
	if err != nil {
		panic(err)
	}
	return re
}

// Len returns the number of cached patterns
func (c *PatternCache) Len() int {
	return c.cache.ItemCount()
}

// Patterns is the process-wide pattern cache
var Patterns = NewPatternCache()
