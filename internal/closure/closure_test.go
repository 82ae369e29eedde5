package closure

import (
	"math"
	"math/rand"
	"testing"
)

func TestZeroTerms(t *testing.T) {
	z := Zero{}
	terms := z.Terms([]float64{1, 2, 3}, 0)
	if len(terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(terms))
	}
	for i, v := range terms {
		if v != 0 {
			t.Errorf("term %d = %f, want 0", i, v)
		}
	}
}

func TestConstantTerms(t *testing.T) {
	c := NewConstant(-1.5)
	terms := c.Terms(make([]float64, 4), 0)
	for i, v := range terms {
		if v != -1.5 {
			t.Errorf("term %d = %f, want -1.5", i, v)
		}
	}
}

func TestPolynomialHorner(t *testing.T) {
	// P(x) = 2x^2 - 3x + 1
	p := NewPolynomial([]float64{2, -3, 1})

	tests := []struct{ x, want float64 }{
		{0, 1},
		{1, 0},
		{2, 3},
		{-1, 6},
	}
	for _, tt := range tests {
		if got := p.Eval(tt.x); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("P(%f) = %f, want %f", tt.x, got, tt.want)
		}
	}

	if p.Degree() != 2 {
		t.Errorf("Degree() = %d, want 2", p.Degree())
	}
}

func TestPolynomialEmptyIsZero(t *testing.T) {
	p := NewPolynomial(nil)
	if p.Eval(42.0) != 0 {
		t.Error("empty polynomial must evaluate to zero")
	}
}

func TestPolynomialTermsElementwise(t *testing.T) {
	p := NewPolynomial([]float64{1, 0}) // P(x) = x
	terms := p.Terms([]float64{3, -4, 0.5}, 0)
	want := []float64{3, -4, 0.5}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("term %d = %f, want %f", i, terms[i], want[i])
		}
	}
}

func TestPolynomialCoeffsCopied(t *testing.T) {
	src := []float64{1, 2, 3}
	p := NewPolynomial(src)
	src[0] = 99
	if p.Coeffs()[0] != 1 {
		t.Error("constructor must copy coefficients")
	}

	out := p.Coeffs()
	out[1] = 99
	if p.Coeffs()[1] != 2 {
		t.Error("accessor must return a copy")
	}
}

func TestStochasticDeterminism(t *testing.T) {
	x := []float64{1, 2, 3, 4}

	run := func(seed int64) []float64 {
		s := NewStochastic(Zero{}, 0.9, 0.5, rand.New(rand.NewSource(seed)))
		var last []float64
		for i := 0; i < 10; i++ {
			last = s.Terms(x, float64(i))
		}
		return last
	}

	a, b := run(7), run(7)
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same seed must reproduce the noise sequence")
		}
	}

	c := run(8)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
		}
	}
	if same {
		t.Error("different seeds should differ")
	}
}

func TestStochasticWrapsBase(t *testing.T) {
	base := NewConstant(2.0)
	s := NewStochastic(base, 0, 0, rand.New(rand.NewSource(1)))

	terms := s.Terms([]float64{0, 0}, 0)
	for _, v := range terms {
		if math.Abs(v-2.0) > 1e-12 {
			t.Errorf("sigma=0 stochastic must equal its base, got %f", v)
		}
	}
}
