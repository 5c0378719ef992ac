package symdiff_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symdiff"
)

// ============================================================
// Tokenizer
// ============================================================

func TestTokenize_ImplicitMultiplicationMatchesExplicit(t *testing.T) {
	implicit, err := symdiff.Tokenize("3x")
	require.NoError(t, err)
	explicit, err := symdiff.Tokenize("3×x")
	require.NoError(t, err)

	if diff := cmp.Diff(explicit, implicit, cmpopts.IgnoreFields(symdiff.Token{}, "Pos")); diff != "" {
		t.Errorf("3x vs 3×x tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_ImplicitMultiplication(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3x", "3 × x"},
		{"2(x+1)", "2 × ( x + 1 )"},
		{"x(x)", "x × ( x )"},
		{"(x+1)(x-1)", "( x + 1 ) × ( x - 1 )"},
		{"(x)2", "( x ) × 2"},
		{"(x)y", "( x ) × y"},
		{"2sin(x)", "2 × sin ( x )"},
		{"2 x", "2 × x"},
		{"x*y", "x × y"},
		{"x÷y", "x / y"},
	}
	for _, tc := range tests {
		toks, err := symdiff.Tokenize(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, symdiff.TokensString(toks), tc.in)
	}
}

func TestTokenize_Constants(t *testing.T) {
	toks, err := symdiff.Tokenize("π")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, symdiff.TokNumber, toks[0].Kind)
	assert.Equal(t, math.Pi, toks[0].Value)

	toks, err = symdiff.Tokenize("e")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, math.E, toks[0].Value)

	// e inside a longer identifier is not the constant.
	toks, err = symdiff.Tokenize("ex")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, symdiff.TokVariable, toks[0].Kind)
	assert.Equal(t, "ex", toks[0].Text)
}

func TestTokenize_FunctionsAndVariables(t *testing.T) {
	toks, err := symdiff.Tokenize("arctan(y)")
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, symdiff.TokFunction, toks[0].Kind)
	assert.Equal(t, "arctan", toks[0].Text)
	assert.Equal(t, symdiff.TokVariable, toks[2].Kind)
}

func TestTokenize_UnexpectedCharacter(t *testing.T) {
	_, err := symdiff.Tokenize("2 $ 3")
	require.Error(t, err)
	assert.True(t, symdiff.IsParseError(err))
	assert.True(t, errors.Is(err, symdiff.ErrMalformedInput))

	var pe *symdiff.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Pos)
}

// ============================================================
// Parser
// ============================================================

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "   ", "sin 1", "(1+2", "1+2)", "*3", "2+", "x^", "sin", "()"} {
		_, err := symdiff.Parse(in)
		if !symdiff.IsParseError(err) {
			t.Errorf("Parse(%q): want ParseError, got %v", in, err)
		}
	}
}

func TestParse_PowerIsLeftAssociative(t *testing.T) {
	got := symdiff.MustParse("2^3^2")
	want := symdiff.PowOf(symdiff.PowOf(symdiff.N(2), symdiff.N(3)), symdiff.N(2))
	assert.True(t, symdiff.Equal(want, got), "got %s", got)
	assert.Equal(t, 64.0, symdiff.Evaluate(got, "x", 0))
}

func TestParse_Precedence(t *testing.T) {
	x, y := symdiff.S("x"), symdiff.S("y")
	tests := []struct {
		in   string
		want symdiff.Expr
	}{
		{"x+y*2", symdiff.AddOf(x, symdiff.MulOf(y, symdiff.N(2)))},
		{"x-y-2", symdiff.SubOf(symdiff.SubOf(x, y), symdiff.N(2))},
		{"x/y/2", symdiff.DivOf(symdiff.DivOf(x, y), symdiff.N(2))},
		{"2x^2", symdiff.MulOf(symdiff.N(2), symdiff.PowOf(x, symdiff.N(2)))},
		{"sin(x)^2", symdiff.PowOf(symdiff.SinOf(x), symdiff.N(2))},
		{"(x+y)^2", symdiff.PowOf(symdiff.AddOf(x, y), symdiff.N(2))},
	}
	for _, tc := range tests {
		got, err := symdiff.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.True(t, symdiff.Equal(tc.want, got), "%s: want %s, got %s", tc.in, tc.want, got)
	}
}

func TestParse_UnaryMinus(t *testing.T) {
	x := symdiff.S("x")

	got := symdiff.MustParse("-2")
	assert.True(t, symdiff.Equal(symdiff.N(-2), got), "got %s", got)

	got = symdiff.MustParse("-x^2")
	assert.True(t, symdiff.Equal(symdiff.Neg(symdiff.PowOf(x, symdiff.N(2))), got), "got %s", got)
	assert.Equal(t, -9.0, symdiff.Evaluate(got, "x", 3))

	got = symdiff.MustParse("x^-1")
	assert.True(t, symdiff.Equal(symdiff.PowOf(x, symdiff.N(-1)), got), "got %s", got)

	got = symdiff.MustParse("+x")
	assert.True(t, symdiff.Equal(x, got), "got %s", got)
}

func TestParse_StringRoundTrip(t *testing.T) {
	for _, in := range []string{
		"x-(y+z)",
		"a/(b*c)",
		"(x+1)^2",
		"sin(x)^2",
		"-x^2",
		"2^3^2",
		"2^(3^2)",
		"x*(y-z)",
		"ln(x^2+1)/x",
		"(-x)^2",
	} {
		e := symdiff.MustParse(in)
		again, err := symdiff.Parse(e.String())
		require.NoError(t, err, "%s rendered as %s", in, e)
		assert.True(t, symdiff.Equal(e, again), "%s: rendered %s reparsed as %s", in, e, again)
	}
}

// ============================================================
// Serialization
// ============================================================

func TestString_ReadabilityRules(t *testing.T) {
	x, y := symdiff.S("x"), symdiff.S("y")
	tests := []struct {
		e    symdiff.Expr
		want string
	}{
		{symdiff.Neg(x), "-x"},
		{symdiff.MulOf(symdiff.N(1), x), "x"},
		{symdiff.AddOf(x, symdiff.Neg(y)), "x-y"},
		{symdiff.SubOf(symdiff.N(0), x), "-x"},
		{symdiff.SubOf(x, symdiff.AddOf(y, symdiff.N(1))), "x-(y+1)"},
		{symdiff.DivOf(x, symdiff.MulOf(y, symdiff.N(2))), "x/(y*2)"},
		{symdiff.MulOf(symdiff.N(3), symdiff.PowOf(x, symdiff.N(2))), "3*x^2"},
		{symdiff.PowOf(symdiff.Neg(x), symdiff.N(2)), "(-x)^2"},
	}
	for _, tc := range tests {
		if got := tc.e.String(); got != tc.want {
			t.Errorf("want %s, got %s", tc.want, got)
		}
	}
}

func TestString_NearIntegersPrintAsIntegers(t *testing.T) {
	assert.Equal(t, "2", symdiff.N(2.00000000001).String())
	assert.Equal(t, "2.5", symdiff.N(2.5).String())
	assert.True(t, symdiff.Equal(symdiff.N(2), symdiff.MustParse(symdiff.N(2.00000000001).String())))
}

func TestLaTeX(t *testing.T) {
	e := symdiff.MustParse("sqrt(x)/2")
	assert.Equal(t, `\frac{\sqrt{x}}{2}`, symdiff.LaTeX(e))
}
