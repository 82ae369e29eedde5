// Package fit provides the least-squares polynomial fit used to build
// coupling closures from sampled truth-run diagnostics.
package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Polynomial fits a degree-d polynomial to the sample pairs (xs, ys)
// by least squares over the Vandermonde matrix, solved via QR.
// Coefficients are returned highest degree first, ready for
// closure.NewPolynomial.
func Polynomial(xs, ys []float64, degree int) ([]float64, error) {
	if degree < 0 {
		return nil, fmt.Errorf("fit: degree must be non-negative, got %d", degree)
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("fit: sample length mismatch: %d vs %d", len(xs), len(ys))
	}
	m := degree + 1
	if len(xs) < m {
		return nil, fmt.Errorf("fit: need at least %d samples for degree %d, got %d", m, degree, len(xs))
	}

	a := mat.NewDense(len(xs), m, nil)
	for i, x := range xs {
		p := 1.0
		for j := m - 1; j >= 0; j-- {
			a.Set(i, j, p)
			p *= x
		}
	}

	b := mat.NewVecDense(len(ys), nil)
	for i, y := range ys {
		b.SetVec(i, y)
	}

	var qr mat.QR
	qr.Factorize(a)

	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, b); err != nil {
		return nil, fmt.Errorf("fit: least-squares solve failed: %w", err)
	}

	coeffs := make([]float64, m)
	for j := 0; j < m; j++ {
		coeffs[j] = sol.AtVec(j)
	}
	return coeffs, nil
}

// RMSE is the root-mean-square residual of the fitted coefficients
// over the sample set.
func RMSE(coeffs, xs, ys []float64) float64 {
	if len(xs) == 0 || len(xs) != len(ys) {
		return 0
	}
	sum := 0.0
	for i, x := range xs {
		v := 0.0
		for _, c := range coeffs {
			v = v*x + c
		}
		r := v - ys[i]
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(xs)))
}
