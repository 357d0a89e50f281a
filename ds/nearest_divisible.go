package ds

import (
	"golang.org/x/exp/constraints"
)

// NearestDivisibleByM returns the smallest value that is >= n and divisible by m.
// It is what every "align to m bytes" in the bundle format boils down to.
//
//	NearestDivisibleByM(5, 4) == 8
//	NearestDivisibleByM(8, 4) == 8
func NearestDivisibleByM[T constraints.Integer](n T, m T) T {
	if m <= 1 {
		return n
	}
	remainder := n % m
	if remainder == 0 {
		return n
	}
	return n + (m - remainder)
}

// PaddingToM returns how many bytes are needed to move n to the next multiple of m.
func PaddingToM[T constraints.Integer](n T, m T) T {
	return NearestDivisibleByM(n, m) - n
}
