package symdiff

import (
	"context"
	"math"
	"runtime"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"golang.org/x/sync/errgroup"
)

// ============================================================
// Sampling for plotting
// ============================================================

// Point is one sample of an expression. Y is NaN where the curve breaks.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SampleOptions tunes Sample. Zero values select defaults.
type SampleOptions struct {
	Workers   int // concurrent evaluators, default GOMAXPROCS
	ChunkSize int // samples per task, default 64
}

// MaxSamples bounds the number of points one Sample or verify call evaluates.
const MaxSamples = 10000

// Sample evaluates e at n evenly spaced points of [from, to]. Evaluation is
// split across workers; the returned points are sorted by X.
func Sample(ctx context.Context, e Expr, v string, from, to float64, n int, opts SampleOptions) ([]Point, error) {
	if n < 2 {
		return nil, errors.Errorf("sample: need at least 2 points, got %d", n)
	}
	if n > MaxSamples {
		return nil, errors.Errorf("sample: at most %d points, got %d", MaxSamples, n)
	}
	if math.IsNaN(from) || math.IsNaN(to) || from >= to {
		return nil, errors.Errorf("sample: invalid interval [%g, %g]", from, to)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = 64
	}

	xs := floats.Span(make([]float64, n), from, to)
	points := make([]Point, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		lo, hi := start, min(start+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				points[i] = Point{X: xs[i], Y: Evaluate(e, v, xs[i])}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "sample")
	}
	sort.Slice(points, func(i, j int) bool { return points[i].X < points[j].X })
	return points, nil
}

// ============================================================
// Numeric verification
// ============================================================

// DerivativeCheck summarizes the agreement between a symbolic derivative
// and a central finite difference.
type DerivativeCheck struct {
	Samples   int     `json:"samples"`
	Skipped   int     `json:"skipped"`
	MaxError  float64 `json:"max_error"`
	MeanError float64 `json:"mean_error"`
}

// CheckDerivative compares df against the central difference of f at xs.
// Errors are relative for values larger than 1. Points where either side is
// NaN are skipped.
func CheckDerivative(f, df Expr, v string, xs []float64) DerivativeCheck {
	fn := func(x float64) float64 { return Evaluate(f, v, x) }
	settings := &fd.Settings{Formula: fd.Central, Step: 1e-6}

	var check DerivativeCheck
	var errs []float64
	for _, x := range xs {
		want := fd.Derivative(fn, x, settings)
		got := Evaluate(df, v, x)
		if math.IsNaN(want) || math.IsNaN(got) || math.IsInf(want, 0) {
			check.Skipped++
			continue
		}
		errs = append(errs, math.Abs(got-want)/math.Max(1, math.Abs(want)))
	}
	check.Samples = len(errs)
	if len(errs) > 0 {
		check.MaxError = floats.Max(errs)
		check.MeanError = stat.Mean(errs, nil)
	}
	return check
}
