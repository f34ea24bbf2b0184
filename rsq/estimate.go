// Package rsq re-estimates the Minimac-style imputation Rsq of every variant
// from the haploid dosages of a (possibly reduced) set of samples.
package rsq

import (
	"gonum.org/v1/gonum/mat"
)

// Placeholder is written wherever a value could not be computed or was not
// present in the input.
const Placeholder = "-"

// Estimate is one output row of the quality table. Rsq is only valid when
// Monomorphic is false; RsqRef and Er2 are passed through untouched.
type Estimate struct {
	ID          string
	AAF         float64
	Rsq         float64
	Monomorphic bool
	RsqRef      string
	Er2         string
}

// Term1 is the per-cohort constant 1/(2N) for N samples.
func Term1(samples int) float64 {
	return 1 / (2 * float64(samples))
}

// AlleleFreq is the alternate allele frequency of an N x 2 dosage matrix.
func AlleleFreq(d mat.Matrix) float64 {
	r, _ := d.Dims()
	return mat.Sum(d) / (2 * float64(r))
}

// IsMonomorphic reports whether pHat leaves no variation to measure.
func IsMonomorphic(pHat float64) bool {
	return !(pHat > 0 && pHat < 1)
}

// Calculate returns term1 * sum((d - pHat)^2) / (pHat * (1 - pHat)).
// pHat must be strictly between 0 and 1; the result is not clamped.
func Calculate(d mat.Matrix, pHat float64, term1 float64) float64 {
	r, c := d.Dims()
	var term2, diff float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			diff = d.At(i, j) - pHat
			term2 += diff * diff
		}
	}
	term3 := pHat * (1 - pHat)
	return (term1 * term2) / term3
}

// Evaluate classifies the variant and, when it is polymorphic, re-estimates
// its Rsq. Monomorphic variants never reach Calculate.
func Evaluate(id string, d mat.Matrix, rsqRef, er2 string, term1 float64) Estimate {
	ans := Estimate{ID: id, RsqRef: rsqRef, Er2: er2}
	p := AlleleFreq(d)
	if IsMonomorphic(p) {
		ans.Monomorphic = true
		return ans
	}
	ans.AAF = p
	ans.Rsq = Calculate(d, p, term1)
	return ans
}
