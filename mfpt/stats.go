package mfpt

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// StepTime is the time attributed to one accepted move of size sigma.
func StepTime(sigma float64) float64 { return sigma * sigma / 2 }

// SampleStats returns the sample mean and unbiased variance of xs.  With no
// samples both are NaN; a single sample has zero variance.
func SampleStats(xs []float64) (mean, variance float64) {
	switch len(xs) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return xs[0], 0
	}
	return stat.MeanVariance(xs, nil)
}

// MinVarEstimate combines independent estimates of one mean, weighting each
// by its inverse variance, and returns the combined mean and its variance.
// Pairs whose variance is not finite and positive carry no usable weight and
// are skipped.  If none remain the result is NaN.
func MinVarEstimate(means, variances []float64) (mean, variance float64) {
	if len(means) != len(variances) {
		panic("means and variances are not same length")
	}

	var s, m float64
	for i, v := range variances {
		if !(v > 0) || math.IsInf(v, 1) || math.IsNaN(means[i]) {
			continue
		}
		s += 1 / v
		m += means[i] / v
	}
	if s == 0 {
		return math.NaN(), math.NaN()
	}
	return m / s, 1 / s
}

// finite drops NaN entries.
func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}
