package metrics

import (
	"math"

	"github.com/san-kum/l96lab/internal/dynamo"
)

// couplingSource is satisfied by model.TwoScale.
type couplingSource interface {
	CouplingTerms(s dynamo.State) []float64
}

// CouplingMagnitude tracks the time-mean |C_k| of the fast-to-slow
// coupling, a quick read on how much work a closure has to do.
type CouplingMagnitude struct {
	name    string
	src     couplingSource
	sum     float64
	samples int
}

func NewCouplingMagnitude(src couplingSource) *CouplingMagnitude {
	return &CouplingMagnitude{name: "coupling", src: src}
}

func (c *CouplingMagnitude) Name() string { return c.name }

func (c *CouplingMagnitude) Observe(x dynamo.State, t float64) {
	terms := c.src.CouplingTerms(x)
	if len(terms) == 0 {
		return
	}
	sum := 0.0
	for _, v := range terms {
		sum += math.Abs(v)
	}
	c.sum += sum / float64(len(terms))
	c.samples++
}

func (c *CouplingMagnitude) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *CouplingMagnitude) Reset() {
	c.sum = 0
	c.samples = 0
}
