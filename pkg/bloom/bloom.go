// Package bloom implements a bloom filter: a compact, probabilistic membership
// sketch. Added items are always reported present (no false negatives); absent
// items are occasionally reported present with a tunable false-positive rate.
// Items cannot be removed, which is exactly why the filter stays sound as a
// negative-lookup guard in front of an exact structure.
//
// Bits live in a bitset.BitSet; the k probe positions per item come from
// double hashing over two xxhash sums, so adding and probing cost two hash
// passes regardless of k.
package bloom

import (
	"errors"
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"
)

// ErrInvalidParameter rejects bad construction inputs; it is never returned
// once a filter is built.
var ErrInvalidParameter = errors.New("invalid parameter")

const (
	// DefaultBits is the bit capacity used when sizing is not worth tuning.
	DefaultBits = 10_240
	// DefaultHashes is the probe count paired with DefaultBits.
	DefaultHashes = 2
)

// doubleHashSalt prefixes the second hash pass so the two per-item sums stay
// independent while reusing one hash function.
var doubleHashSalt = []byte{0x9e, 0x37, 0x79, 0xb9}

// Filter is a fixed-size bloom filter. Not safe for concurrent use.
type Filter struct {
	bits *bitset.BitSet
	m    uint64 // Bit capacity.
	k    int    // Probes per item.
}

// New builds a filter with `bits` bits probed `hashes` times per item.
func New(bits, hashes int) (*Filter, error) {
	if bits <= 0 {
		return nil, fmt.Errorf("%w: bit capacity must be positive, got %d", ErrInvalidParameter, bits)
	}
	if hashes <= 0 {
		return nil, fmt.Errorf("%w: hash count must be positive, got %d", ErrInvalidParameter, hashes)
	}
	return &Filter{bits: bitset.New(uint(bits)), m: uint64(bits), k: hashes}, nil
}

// NewWithEstimates sizes a filter for `expectedItems` insertions at the target
// false-positive rate, using the standard m = -n*ln(p)/ln(2)^2 and
// k = (m/n)*ln(2) estimates.
func NewWithEstimates(expectedItems int, fpRate float64) (*Filter, error) {
	if expectedItems <= 0 {
		return nil, fmt.Errorf("%w: expected items must be positive, got %d", ErrInvalidParameter, expectedItems)
	}
	if fpRate <= 0 || fpRate >= 1 {
		return nil, fmt.Errorf("%w: false positive rate %v must be inside (0,1)", ErrInvalidParameter, fpRate)
	}
	n := float64(expectedItems)
	bits := int(math.Ceil(-n * math.Log(fpRate) / (math.Ln2 * math.Ln2)))
	hashes := max(1, int(math.Round(float64(bits)/n*math.Ln2)))
	return New(bits, hashes)
}

// positions derives the two base sums for double hashing: probe i tests bit
// (h1 + i*h2) mod m. The second sum is forced odd so probes cycle through the
// whole bit array even when m is a power of two.
func positions(item []byte) (h1, h2 uint64) {
	h1 = xxhash.Sum64(item)
	digest := xxhash.New()
	_, _ = digest.Write(doubleHashSalt) // Writing to a hash digest never fails.
	_, _ = digest.Write(item)
	return h1, digest.Sum64() | 1
}

// stringPositions is positions for string items, avoiding a byte-slice copy.
func stringPositions(item string) (h1, h2 uint64) {
	h1 = xxhash.Sum64String(item)
	digest := xxhash.New()
	_, _ = digest.Write(doubleHashSalt)
	_, _ = digest.WriteString(item)
	return h1, digest.Sum64() | 1
}

// set marks the k probe positions derived from the two base sums.
func (f *Filter) set(h1, h2 uint64) {
	for i := range uint64(f.k) {
		f.bits.Set(uint((h1 + i*h2) % f.m))
	}
}

// test reports whether all k probe positions are set.
func (f *Filter) test(h1, h2 uint64) bool {
	for i := range uint64(f.k) {
		if !f.bits.Test(uint((h1 + i*h2) % f.m)) {
			return false
		}
	}
	return true
}

// Add records `item` in the filter.
func (f *Filter) Add(item []byte) {
	h1, h2 := positions(item)
	f.set(h1, h2)
}

// AddString records a string item.
func (f *Filter) AddString(item string) {
	h1, h2 := stringPositions(item)
	f.set(h1, h2)
}

// MightContain reports whether `item` may have been added. False means
// definitely absent; true means present unless this is one of the filter's
// false positives.
func (f *Filter) MightContain(item []byte) bool {
	h1, h2 := positions(item)
	return f.test(h1, h2)
}

// MightContainString is MightContain for string items.
func (f *Filter) MightContainString(item string) bool {
	h1, h2 := stringPositions(item)
	return f.test(h1, h2)
}

// Cap returns the filter's bit capacity.
func (f *Filter) Cap() int {
	return int(f.m)
}

// K returns the number of probes per item.
func (f *Filter) K() int {
	return f.k
}

// Len estimates how many distinct items have been added, using the standard
// n = -(m/k)*ln(1 - X/m) fill-ratio estimate where X is the number of set
// bits. The estimate diverges once every bit is set, so a saturated filter
// reports its bit capacity.
func (f *Filter) Len() int {
	setBits := uint64(f.bits.Count())
	if setBits == f.m {
		return int(f.m)
	}
	fillRatio := float64(setBits) / float64(f.m)
	return int(math.Round(-float64(f.m) / float64(f.k) * math.Log(1-fillRatio)))
}

// Clear forgets every recorded item.
func (f *Filter) Clear() {
	f.bits.ClearAll()
}
