package metrics

import "github.com/san-kum/l96lab/internal/dynamo"

// Energy tracks the time-mean slow-variable energy proxy sum(X^2)/2.
type Energy struct {
	name    string
	slowDim int
	total   float64
	samples int
}

func NewEnergy(slowDim int) *Energy {
	return &Energy{name: "energy", slowDim: slowDim}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x dynamo.State, t float64) {
	n := e.slowDim
	if n <= 0 || n > len(x) {
		n = len(x)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += 0.5 * x[i] * x[i]
	}
	e.total += sum
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}
