package sim

import (
	"context"
	"math/rand"
	"sync"

	"github.com/san-kum/l96lab/internal/dynamo"
)

// Ensemble computes independent trajectories in parallel. Each member
// gets its own Runner from the factory (integrator scratch buffers are
// not shareable) and its own perturbed copy of x0, drawn from an rng
// seeded seedStart+i so the ensemble is reproducible member by member.
type Ensemble struct {
	factory   func() *Runner
	members   int
	seedStart int64
	spread    float64
}

func NewEnsemble(factory func() *Runner, members int, seedStart int64, spread float64) *Ensemble {
	return &Ensemble{factory: factory, members: members, seedStart: seedStart, spread: spread}
}

func (e *Ensemble) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) ([]*dynamo.Trajectory, error) {
	results := make([]*dynamo.Trajectory, e.members)
	errs := make([]error, e.members)

	pool := NewStatePool(len(x0))

	var wg sync.WaitGroup
	for i := 0; i < e.members; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(e.seedStart + int64(idx)))

			xi := pool.GetAndCopy(x0)
			defer pool.Put(xi)
			for j := range xi {
				xi[j] += e.spread * rng.NormFloat64()
			}

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			results[idx], errs[idx] = e.factory().Run(ctx, xi, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
