package integrators

import (
	"testing"

	"github.com/san-kum/l96lab/internal/model"
)

func BenchmarkEuler_SingleScale(b *testing.B) {
	p := model.DefaultParams()
	sys := model.NewSingleScale(p, nil)
	integ := NewEuler()
	x := sys.DefaultState()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(sys, x, 0, 0.01)
	}
}

func BenchmarkRK4_SingleScale(b *testing.B) {
	p := model.DefaultParams()
	sys := model.NewSingleScale(p, nil)
	integ := NewRK4()
	x := sys.DefaultState()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(sys, x, 0, 0.01)
	}
}

func BenchmarkRK4_TwoScale(b *testing.B) {
	p := model.DefaultParams()
	sys := model.NewTwoScale(p)
	integ := NewRK4()
	x := sys.DefaultState()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(sys, x, 0, 0.005)
	}
}

func BenchmarkRK45_TwoScale(b *testing.B) {
	p := model.DefaultParams()
	sys := model.NewTwoScale(p)
	integ := NewRK45()
	x := sys.DefaultState()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(sys, x, 0, 0.005)
	}
}
