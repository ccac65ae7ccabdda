package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Wrap01 folds v into [0,1). Negative values wrap from the top.
func Wrap01(v float64) float64 {
	v = math.Mod(v, 1)
	if v < 0 {
		v += 1
	}
	if v >= 1 {
		v = 0
	}
	return v
}

// Slot splits a cyclic scalar in [0,1) into n equal slots and returns the
// slot index and the progress through it in [0,1).
func Slot(t float64, n int) (int, float64) {
	if n <= 0 {
		return 0, 0
	}
	index := int(float64(n) * t)
	if index >= n {
		index = n - 1
	}
	if index < 0 {
		index = 0
	}
	fraction := 1.0 / float64(n)
	remainder := t - fraction*float64(index)
	return index, remainder / fraction
}
