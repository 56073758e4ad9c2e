package advisor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/HendryAvila/hdrive/internal/geometry"
	"github.com/HendryAvila/hdrive/internal/harmonic"
	"github.com/HendryAvila/hdrive/internal/params"
)

// DefaultWorkers bounds Sweep when the caller passes a non-positive count.
const DefaultWorkers = 4

// Evaluation is the outcome of one sweep candidate. Err is set, and the
// computed fields are zero, when the candidate fails construction.
type Evaluation struct {
	Input   params.Input
	Params  params.Params
	Err     error
	Summary geometry.Summary
	Mesh    harmonic.MeshReport
}

// Feasible reports whether the candidate constructed, passed the summary
// checks and meshes.
func (e Evaluation) Feasible() bool {
	return e.Err == nil && e.Summary.IsValid && e.Mesh.OverallValid
}

// Evaluate builds and analyses one candidate.
func Evaluate(in params.Input) Evaluation {
	ev := Evaluation{Input: in}
	p, err := params.FromInput(in)
	if err != nil {
		ev.Err = err
		return ev
	}
	ev.Params = p
	ev.Summary = geometry.NewCalculator(p).Summary()
	ev.Mesh = harmonic.New(p).ValidateMeshing()
	return ev
}

// Sweep evaluates every input with at most workers goroutines and returns
// the evaluations in input order. Candidate failures are recorded per
// evaluation; the only error Sweep returns is the context's.
func Sweep(ctx context.Context, inputs []params.Input, workers int) ([]Evaluation, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]Evaluation, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Evaluate(in)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("advisor: sweep: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("advisor: sweep: %w", err)
	}
	return results, nil
}

// SweepRange builds the candidate grid of every even tooth count in
// [teethMin, teethMax] crossed with every module, teeth-major. A nil
// pressureAngle leaves the default in place.
func SweepRange(teethMin, teethMax int, modules []float64, pressureAngle *float64, material params.Material) []params.Input {
	if teethMin%2 != 0 {
		teethMin++
	}
	var inputs []params.Input
	for teeth := teethMin; teeth <= teethMax; teeth += 2 {
		for _, m := range modules {
			inputs = append(inputs, params.Input{
				TeethCS:       teeth,
				Module:        m,
				PressureAngle: pressureAngle,
				Material:      material,
			})
		}
	}
	return inputs
}

// Feasible filters evaluations down to the feasible ones, keeping order.
func Feasible(evals []Evaluation) []Evaluation {
	var out []Evaluation
	for _, e := range evals {
		if e.Feasible() {
			out = append(out, e)
		}
	}
	return out
}
