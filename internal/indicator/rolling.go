package indicator

import "math"

// RollingMax returns the maximum of each trailing window. The first window-1
// bars are NaN.
func RollingMax(values []float64, window int) []float64 {
	return rolling(values, window, math.Max)
}

// RollingMin returns the minimum of each trailing window. The first window-1
// bars are NaN.
func RollingMin(values []float64, window int) []float64 {
	return rolling(values, window, math.Min)
}

func rolling(values []float64, window int, pick func(a, b float64) float64) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		acc := values[i-window+1]
		for _, v := range values[i-window+2 : i+1] {
			acc = pick(acc, v)
		}

		out[i] = acc
	}

	return out
}
