package world

import (
	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.Config{
	EscapeHTML:             false,
	ValidateJsonRawMessage: true,
}.Froze()

// Unescape decodes a JSON string literal, surrounding quotes included, into
// its display text. Description values in fact files and description tables
// are stored this way.
func Unescape(quoted string) (string, error) {
	var s string
	if err := jsonAPI.UnmarshalFromString(quoted, &s); err != nil {
		return "", errors.Wrapf(err, "invalid escaped string %q", quoted)
	}
	return s, nil
}

// Escape is the inverse of Unescape
func Escape(s string) string {
	out, err := jsonAPI.MarshalToString(s)
	if err != nil {
		// Marshaling a string cannot fail
		panic(err)
	}
	return out
}
