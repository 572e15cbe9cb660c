package engine

import "math"

// sigmoid is the numerically stable logistic function. Splitting on the sign
// keeps the exp argument non-positive, so it never overflows for
// large-magnitude inputs of either sign.
func sigmoid(x float32) float32 {
	if x >= 0 {
		z := float32(math.Exp(float64(-x)))
		return 1 / (1 + z)
	}
	z := float32(math.Exp(float64(x)))
	return z / (1 + z)
}

func tanh(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}
