// Package randstr generates random strings over a charset. Handy for test
// fixtures and throwaway identifiers; the output is NOT cryptographically
// secure, it comes from math/rand.
package randstr

import (
	"math/rand/v2"
	"strings"

	"github.com/nobletooth/pomelo/pkg/utils"
)

// Charset is the alphabet candidate characters are drawn from.
type Charset string

const (
	Alphabetic   Charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	Numeric      Charset = "0123456789"
	Alphanumeric Charset = Alphabetic + Numeric
	Hex          Charset = "0123456789abcdef"
)

// String draws an alphanumeric string of `length` characters.
func String(length int) string {
	return StringFrom(Alphanumeric, length)
}

// StringFrom draws `length` characters uniformly from `charset`. An empty
// charset or negative length is a programming error; it raises an invariant
// and returns the empty string.
func StringFrom(charset Charset, length int) string {
	if len(charset) == 0 || length < 0 {
		utils.RaiseInvariant("randstr", "bad_generation_request",
			"Random string requested with an empty charset or negative length.",
			"charsetLen", len(charset), "length", length)
		return ""
	}
	var builder strings.Builder
	builder.Grow(length)
	for range length {
		builder.WriteByte(charset[rand.IntN(len(charset))])
	}
	return builder.String()
}
