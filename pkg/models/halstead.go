package models

import "math"

// NewHalsteadMetrics computes Halstead software science metrics from raw
// operator/operand counts: n1/n2 distinct operators/operands, N1/N2 total
// operators/operands.
func NewHalsteadMetrics(n1, n2, N1, N2 uint32) *HalsteadMetrics {
	h := &HalsteadMetrics{
		OperatorsUnique: n1,
		OperandsUnique:  n2,
		OperatorsTotal:  N1,
		OperandsTotal:   N2,
	}

	if n1 == 0 || n2 == 0 {
		return h
	}

	h.Vocabulary = n1 + n2
	h.Length = N1 + N2
	h.Volume = float64(h.Length) * log2(float64(h.Vocabulary))
	h.Difficulty = (float64(n1) / 2.0) * (float64(N2) / float64(n2))
	h.Effort = h.Difficulty * h.Volume
	h.Time = h.Effort / 18.0
	h.Bugs = pow(h.Effort, 2.0/3.0) / 3000.0

	return h
}

// log2 returns the base-2 logarithm, treating non-positive inputs as 0
// rather than propagating -Inf/NaN into derived metrics.
func log2(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Log2(x)
}

// pow returns x**y, treating a negative base as 0 since Halstead's effort
// term is never negative in practice and derived metrics must stay finite.
func pow(x, y float64) float64 {
	if x < 0 {
		return 0
	}
	return math.Pow(x, y)
}
