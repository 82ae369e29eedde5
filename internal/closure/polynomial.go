package closure

import "fmt"

// Polynomial evaluates a fitted polynomial parameterization P(X_k)
// elementwise. Coefficients are ordered highest degree first, matching
// the fit package's output. An empty or all-zero coefficient slice is
// exactly equivalent to the Zero closure.
type Polynomial struct {
	coeffs []float64
}

func NewPolynomial(coeffs []float64) *Polynomial {
	c := make([]float64, len(coeffs))
	copy(c, coeffs)
	return &Polynomial{coeffs: c}
}

func (p *Polynomial) Name() string {
	return fmt.Sprintf("poly%d", p.Degree())
}

func (p *Polynomial) Degree() int {
	if len(p.coeffs) == 0 {
		return 0
	}
	return len(p.coeffs) - 1
}

func (p *Polynomial) Coeffs() []float64 {
	c := make([]float64, len(p.coeffs))
	copy(c, p.coeffs)
	return c
}

// Eval computes P(x) by Horner's rule.
func (p *Polynomial) Eval(x float64) float64 {
	v := 0.0
	for _, c := range p.coeffs {
		v = v*x + c
	}
	return v
}

func (p *Polynomial) Terms(x []float64, _ float64) []float64 {
	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = p.Eval(xi)
	}
	return out
}
