package randstr

import (
	"strings"
	"testing"

	"github.com/nobletooth/pomelo/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringFrom_LengthAndMembership(t *testing.T) {
	for _, charset := range []Charset{Alphabetic, Numeric, Alphanumeric, Hex} {
		got := StringFrom(charset, 512)
		require.Lenf(t, got, 512, "Expected a string of the requested length from charset %q.", charset)
		for _, char := range got {
			assert.Truef(t, strings.ContainsRune(string(charset), char),
				"Character %q fell outside charset %q.", char, charset)
		}
	}
}

func TestString_IsAlphanumeric(t *testing.T) {
	got := String(256)
	require.Len(t, got, 256)
	for _, char := range got {
		assert.Truef(t, strings.ContainsRune(string(Alphanumeric), char),
			"Character %q is not alphanumeric.", char)
	}
}

func TestStringFrom_ZeroLength(t *testing.T) {
	assert.Empty(t, StringFrom(Alphanumeric, 0), "Zero length must yield the empty string without raising.")
}

func TestStringFrom_BadRequestsRaiseInvariant(t *testing.T) {
	violationsBefore := utils.GetMetricValue("randstr" /*module*/, "bad_generation_request" /*invariantType*/)
	assert.Empty(t, StringFrom("", 10))
	assert.Empty(t, StringFrom(Alphanumeric, -1))
	assert.Equal(t, violationsBefore+2, utils.GetMetricValue("randstr", "bad_generation_request"))
}
