package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/l96lab/internal/dynamo"
)

// Stats summarizes pointwise error between a truth trajectory and a
// reduced reenactment of it, over their common valid prefix and all
// recorded slow components.
type Stats struct {
	RMSE float64
	Bias float64
	Corr float64
	N    int
}

// Compare computes error statistics of gcm against truth. Both runs
// must share the same sample grid over the compared prefix.
func Compare(truth, gcm *dynamo.Trajectory) (Stats, error) {
	n := truth.Valid
	if gcm.Valid < n {
		n = gcm.Valid
	}
	if n == 0 {
		return Stats{}, fmt.Errorf("analysis: no valid samples to compare")
	}
	if len(truth.X[0]) != len(gcm.X[0]) {
		return Stats{}, fmt.Errorf("analysis: slow dimensions differ: %d vs %d",
			len(truth.X[0]), len(gcm.X[0]))
	}

	k := len(truth.X[0])
	a := make([]float64, 0, n*k)
	b := make([]float64, 0, n*k)
	for i := 0; i < n; i++ {
		a = append(a, truth.X[i]...)
		b = append(b, gcm.X[i]...)
	}

	var sq, bias float64
	for i := range a {
		d := b[i] - a[i]
		sq += d * d
		bias += d
	}

	return Stats{
		RMSE: math.Sqrt(sq / float64(len(a))),
		Bias: bias / float64(len(a)),
		Corr: stat.Correlation(a, b, nil),
		N:    n,
	}, nil
}

// ErrorGrowth returns the per-sample RMSE over slow components, the
// curve that shows when a reduced run loses the truth.
func ErrorGrowth(truth, gcm *dynamo.Trajectory) []float64 {
	n := truth.Valid
	if gcm.Valid < n {
		n = gcm.Valid
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		k := len(truth.X[i])
		if len(gcm.X[i]) < k {
			k = len(gcm.X[i])
		}
		if k == 0 {
			continue
		}
		sq := 0.0
		for c := 0; c < k; c++ {
			d := gcm.X[i][c] - truth.X[i][c]
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(k))
	}
	return out
}
