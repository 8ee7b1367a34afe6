package utils

// CompareFn defines a three-way comparison for keys of type T.
// It must return a negative value if x < y, 0 if x == y, and a positive value if x > y.
// Containers taking a CompareFn require a total order (anti-symmetric, transitive);
// handing them a broken order makes traversal results undefined, not detectable.
type CompareFn[T any] func(x, y T) int

// Reverse returns a comparison function with the order of `compare` flipped.
func Reverse[T any](compare CompareFn[T]) CompareFn[T] {
	return func(x, y T) int { return compare(y, x) }
}

// IsZero checks if a value is the zero value for its type
func IsZero[T any](v T, compare CompareFn[T]) bool {
	var zero T
	return compare(v, zero) == 0
}
