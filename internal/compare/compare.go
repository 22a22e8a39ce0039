// Package compare provides composable three-way comparison functions.
//
// A Comparer returns a negative number when a sorts before b, zero when they
// are equal and a positive number when a sorts after b. The combinators in
// this package preserve strict weak ordering, so their results can be fed to
// slices.SortFunc directly.
package compare

import (
	"github.com/fentz26/recur/internal/optional"
)

// Comparer is a three-way comparison over T.
type Comparer[T any] func(a, b T) int

// By compares elements by a projected key.
func By[T, K any](extract func(T) K, inner Comparer[K]) Comparer[T] {
	return func(a, b T) int {
		return inner(extract(a), extract(b))
	}
}

// Ordered chains comparers lexicographically. The first non-zero result wins;
// later comparers are not evaluated once a result is found.
func Ordered[T any](comparers ...Comparer[T]) Comparer[T] {
	return func(a, b T) int {
		for _, c := range comparers {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// Invert reverses the direction of c. Ties stay ties.
func Invert[T any](c Comparer[T]) Comparer[T] {
	return func(a, b T) int {
		return -c(a, b)
	}
}

// Options controls how IfDefined orders absent values.
type Options struct {
	// UndefinedIsLarger sorts absent values after every present value.
	// When false they sort before.
	UndefinedIsLarger bool
}

// IfDefined lifts c to optional values. Two absent values are equal; an
// absent value is placed according to opts; two present values are compared
// by c.
func IfDefined[T any](c Comparer[T], opts Options) Comparer[optional.Value[T]] {
	return func(a, b optional.Value[T]) int {
		av, aok := a.Get()
		bv, bok := b.Get()
		switch {
		case aok && bok:
			return c(av, bv)
		case !aok && !bok:
			return 0
		case aok:
			// b is absent.
			if opts.UndefinedIsLarger {
				return -1
			}
			return 1
		default:
			if opts.UndefinedIsLarger {
				return 1
			}
			return -1
		}
	}
}
