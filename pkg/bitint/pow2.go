// SPDX-License-Identifier: MIT
//
// Package bitint provides power-of-two helpers for FFT and buffer sizing.
// All operations are O(1), allocation-free, and safe to call from the
// real-time processing path.
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
// The size-1 subtraction keeps exact powers of two unchanged:
// bits.Len64(8-1) = 3, 1<<3 = 8, while bits.Len64(8) = 4 would double it.
//
// Examples:
//
//	Input  Output
//	4      4      Already a power of 2 (preserved)
//	5      8      Next power after 5
//	0      1      Zero and negatives map to 1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return int(1 << (bits.Len64(uint64(size - 1))))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
// Powers of 2 have exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
