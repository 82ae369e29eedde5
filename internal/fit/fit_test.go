package fit_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/l96lab/internal/fit"
)

func poly(coeffs []float64, x float64) float64 {
	v := 0.0
	for _, c := range coeffs {
		v = v*x + c
	}
	return v
}

var _ = Describe("Polynomial", func() {
	It("recovers a linear fit exactly", func() {
		want := []float64{2.5, -1.0}
		xs := make([]float64, 50)
		ys := make([]float64, 50)
		for i := range xs {
			xs[i] = -5 + 0.2*float64(i)
			ys[i] = poly(want, xs[i])
		}

		got, err := fit.Polynomial(xs, ys, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(2))
		for i := range want {
			Expect(got[i]).To(BeNumerically("~", want[i], 1e-9))
		}
		Expect(fit.RMSE(got, xs, ys)).To(BeNumerically("<", 1e-9))
	})

	It("recovers a quartic fit from noisy-free samples", func() {
		want := []float64{0.001, -0.02, 0.3, 1.5, -4.0}
		rng := rand.New(rand.NewSource(7))
		xs := make([]float64, 200)
		ys := make([]float64, 200)
		for i := range xs {
			xs[i] = -10 + 20*rng.Float64()
			ys[i] = poly(want, xs[i])
		}

		got, err := fit.Polynomial(xs, ys, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(5))
		for i := range want {
			Expect(got[i]).To(BeNumerically("~", want[i], 1e-6))
		}
	})

	It("rejects mismatched sample lengths", func() {
		_, err := fit.Polynomial([]float64{1, 2, 3}, []float64{1, 2}, 1)
		Expect(err).To(HaveOccurred())
	})

	It("rejects degrees the sample count cannot support", func() {
		_, err := fit.Polynomial([]float64{1, 2}, []float64{1, 2}, 4)
		Expect(err).To(HaveOccurred())
	})

	It("rejects negative degrees", func() {
		_, err := fit.Polynomial([]float64{1, 2}, []float64{1, 2}, -1)
		Expect(err).To(HaveOccurred())
	})
})
