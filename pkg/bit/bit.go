// Package bit collects small two's-complement identities. None of them beat
// the obvious operators in speed or clarity; they are kept in executable form
// so the identities stay documented by their own tests.
package bit

// Integer covers the fixed-size kinds XOR swapping works on.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Signed covers the two's-complement kinds where ^x == -x-1.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// SwapXor exchanges the two pointees without a temporary. The pointers must
// refer to distinct variables; aliasing them zeroes the value.
func SwapXor[T Integer](x, y *T) {
	*x ^= *y
	*y ^= *x
	*x ^= *y
}

// AddOne computes x+1 as -^x.
func AddOne[T Signed](x T) T {
	return -^x
}

// SubOne computes x-1 as ^-x.
func SubOne[T Signed](x T) T {
	return ^-x
}

// Neg computes -x as ^x+1.
func Neg[T Signed](x T) T {
	return ^x + 1
}
