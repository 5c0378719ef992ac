package symdiff_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symdiff"
)

// ============================================================
// Evaluate
// ============================================================

func TestEvaluate(t *testing.T) {
	tests := []struct {
		in   string
		at   float64
		want float64
	}{
		{"x^2", 3, 9},
		{"2x+1", 4, 9},
		{"sin(x)", 0, 0},
		{"cos(x)", 0, 1},
		{"ln(e)", 0, 1},
		{"log(100)", 0, 2},
		{"sqrt(x)", 16, 4},
		{"abs(x)", -3, 3},
		{"exp(0)", 0, 1},
		{"π", 0, math.Pi},
		{"arctan(1)*4", 0, math.Pi},
		{"x/2", 5, 2.5},
	}
	for _, tc := range tests {
		got := symdiff.Evaluate(symdiff.MustParse(tc.in), "x", tc.at)
		assert.InDelta(t, tc.want, got, 1e-12, "%s at %g", tc.in, tc.at)
	}
}

func TestEvaluate_DomainViolationsAreNaN(t *testing.T) {
	tests := []struct {
		in string
		at float64
	}{
		{"1/x", 0},
		{"ln(x)", -1},
		{"ln(x)", 0},
		{"log(x)", -2},
		{"sqrt(x)", -1},
		{"arcsin(x)", 2},
		{"arccos(x)", -1.5},
		{"tan(x)", math.Pi / 2},
		{"cot(x)", 0},
		{"csc(x)", 0},
		{"x^0.5", -4},
		{"ln(x)+1", -1},
	}
	for _, tc := range tests {
		got := symdiff.Evaluate(symdiff.MustParse(tc.in), "x", tc.at)
		if !math.IsNaN(got) {
			t.Errorf("%s at %g: want NaN, got %g", tc.in, tc.at, got)
		}
	}
}

func TestEvaluate_OtherSymbols(t *testing.T) {
	assert.Equal(t, 0.0, symdiff.Evaluate(symdiff.S("y"), "x", 5))
	assert.Equal(t, math.Pi, symdiff.Evaluate(symdiff.S("pi"), "x", 5))
}

func TestEvaluateAll(t *testing.T) {
	got := symdiff.EvaluateAll(symdiff.MustParse("x^2"), "x", []float64{1, 2, 3})
	assert.Equal(t, []float64{1, 4, 9}, got)
}

// ============================================================
// Sample
// ============================================================

func TestSample(t *testing.T) {
	points, err := symdiff.Sample(context.Background(), symdiff.MustParse("x^2"), "x", -1, 1, 5, symdiff.SampleOptions{})
	require.NoError(t, err)
	want := []symdiff.Point{{X: -1, Y: 1}, {X: -0.5, Y: 0.25}, {X: 0, Y: 0}, {X: 0.5, Y: 0.25}, {X: 1, Y: 1}}
	require.Len(t, points, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, points[i].X, 1e-12)
		assert.InDelta(t, want[i].Y, points[i].Y, 1e-12)
	}
}

func TestSample_ManyChunksStaySorted(t *testing.T) {
	opts := symdiff.SampleOptions{Workers: 4, ChunkSize: 7}
	points, err := symdiff.Sample(context.Background(), symdiff.MustParse("1/x"), "x", -2, 2, 101, opts)
	require.NoError(t, err)
	require.Len(t, points, 101)
	for i := 1; i < len(points); i++ {
		assert.Less(t, points[i-1].X, points[i].X)
	}
	assert.True(t, math.IsNaN(points[50].Y), "1/x at 0 should break the curve")
}

func TestSample_Errors(t *testing.T) {
	e := symdiff.S("x")
	_, err := symdiff.Sample(context.Background(), e, "x", 0, 1, 1, symdiff.SampleOptions{})
	assert.Error(t, err)
	_, err = symdiff.Sample(context.Background(), e, "x", 1, 1, 10, symdiff.SampleOptions{})
	assert.Error(t, err)
	_, err = symdiff.Sample(context.Background(), e, "x", math.NaN(), 1, 10, symdiff.SampleOptions{})
	assert.Error(t, err)
	_, err = symdiff.Sample(context.Background(), e, "x", 0, 1, symdiff.MaxSamples+1, symdiff.SampleOptions{})
	assert.ErrorContains(t, err, "at most")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = symdiff.Sample(ctx, e, "x", 0, 1, 10, symdiff.SampleOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

// ============================================================
// CheckDerivative
// ============================================================

func TestCheckDerivative(t *testing.T) {
	f := symdiff.MustParse("sin(x)^2")
	df, err := symdiff.Differentiate(f, "x")
	require.NoError(t, err)

	check := symdiff.CheckDerivative(f, df, "x", []float64{-2, -1, 0.5, 1, 2})
	assert.Equal(t, 5, check.Samples)
	assert.Less(t, check.MaxError, 1e-6)
	assert.LessOrEqual(t, check.MeanError, check.MaxError)
}

func TestCheckDerivative_DetectsWrongDerivative(t *testing.T) {
	f := symdiff.MustParse("x^3")
	check := symdiff.CheckDerivative(f, symdiff.MustParse("2*x^2"), "x", []float64{1, 2})
	assert.Greater(t, check.MaxError, 0.1)
}

func TestCheckDerivative_SkipsNaN(t *testing.T) {
	f := symdiff.MustParse("ln(x)")
	check := symdiff.CheckDerivative(f, symdiff.MustParse("1/x"), "x", []float64{-1, 1, 2})
	assert.Equal(t, 1, check.Skipped)
	assert.Equal(t, 2, check.Samples)
}
