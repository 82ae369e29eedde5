package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// MaxAbs returns the largest absolute component, the quantity the
// divergence guard inspects.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// System is an ODE dX/dt = f(X, t) over a flat state vector.
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

// Partitioned marks systems whose leading SlowDim components are the
// slow (resolved) variables. Trajectory snapshots and the divergence
// guard cover only that prefix; the remainder is the fast subgrid.
type Partitioned interface {
	SlowDim() int
}

// Hamiltonian reports a scalar energy proxy for drift monitoring.
type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

// Configurable exposes named scalar parameters for sweeps.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// DivergenceThreshold is the default magnitude bound on slow
// variables. Config.Threshold overrides it per run.
const DivergenceThreshold = 1000.0

type Config struct {
	Dt          float64
	Duration    float64
	SampleEvery float64
	Threshold   float64
	RecordFast  bool
	Seed        int64
}

func DefaultConfig() Config {
	return Config{
		Dt:          0.005,
		Duration:    10.0,
		SampleEvery: 0.01,
		Threshold:   DivergenceThreshold,
	}
}

// Trajectory is the recorded output of a run. All slices have length
// floor(Duration/SampleEvery); samples land at t = i*SampleEvery for
// i = 1..n. Entries past Valid stay NaN-filled when the divergence
// guard trips mid-run.
type Trajectory struct {
	Times []float64
	X     []State
	Y     []State // nil unless fast recording was requested

	Valid    int
	Diverged bool
	LastTime float64

	Metrics    map[string]float64
	StepsTaken int
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Series extracts slow component k across the valid samples.
func (tr *Trajectory) Series(k int) []float64 {
	out := make([]float64, 0, tr.Valid)
	for i := 0; i < tr.Valid; i++ {
		if k < len(tr.X[i]) {
			out = append(out, tr.X[i][k])
		}
	}
	return out
}

// ValidTimes returns the sample times of the valid prefix.
func (tr *Trajectory) ValidTimes() []float64 {
	return tr.Times[:tr.Valid]
}
