// Package optim provides a small exhaustive grid search used to tune
// closure parameters against a reference trajectory.
package optim

import (
	"context"
	"math"
)

// Objective scores one parameter combination. Lower is better. An
// error marks the combination as unusable without aborting the search.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// GridSearch enumerates the cartesian product of per-parameter value
// lists and keeps the combination with the smallest objective.
type GridSearch struct {
	names  []string
	ranges [][]float64
}

func NewGridSearch(names []string, ranges [][]float64) *GridSearch {
	return &GridSearch{names: names, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Search evaluates every combination and returns the best parameters
// and their score. If no combination evaluates cleanly the returned
// params are nil and the score is +Inf.
func (g *GridSearch) Search(ctx context.Context, obj Objective) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), obj, &best, &bestParams)
	if err != nil {
		return nil, best, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	obj Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if depth == len(g.names) {
		score, err := obj(ctx, current)
		if err != nil {
			return nil
		}
		if score < *best {
			*best = score
			copied := make(map[string]float64, len(current))
			for k, v := range current {
				copied[k] = v
			}
			*bestParams = copied
		}
		return nil
	}

	name := g.names[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		if err := g.searchRecursive(ctx, depth+1, current, obj, best, bestParams); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}
