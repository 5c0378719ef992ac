package symdiff

import "math"

// ============================================================
// Numeric evaluation
// ============================================================

// Evaluate computes e at v = x. It never fails: any domain violation
// yields NaN, which callers treat as a break in a sampled curve. Symbols
// other than v evaluate to 0, except π, pi and e.
func Evaluate(e Expr, v string, x float64) float64 {
	switch n := e.(type) {
	case Num:
		return n.Value
	case Sym:
		return symbolValue(n.Name, v, x)
	case Func:
		return applyFunc(n.Name, Evaluate(n.Arg, v, x))
	case BinOp:
		l := Evaluate(n.Left, v, x)
		if math.IsNaN(l) {
			return math.NaN()
		}
		r := Evaluate(n.Right, v, x)
		if math.IsNaN(r) {
			return math.NaN()
		}
		return applyOp(n.Op, l, r)
	}
	return math.NaN()
}

// EvaluateAll evaluates e at each of xs.
func EvaluateAll(e Expr, v string, xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = Evaluate(e, v, x)
	}
	return out
}

func symbolValue(name, v string, x float64) float64 {
	switch name {
	case v:
		return x
	case "π", "pi":
		return math.Pi
	case "e":
		return math.E
	}
	return 0
}

func applyOp(op Operator, l, r float64) float64 {
	switch op {
	case OpAdd:
		return l + r
	case OpSub:
		return l - r
	case OpMul:
		return l * r
	case OpDiv:
		if isZero(r) {
			return math.NaN()
		}
		return l / r
	case OpPow:
		return finite(math.Pow(l, r))
	}
	return math.NaN()
}

// applyFunc evaluates a named function at a, NaN outside its domain.
func applyFunc(name string, a float64) float64 {
	if math.IsNaN(a) {
		return math.NaN()
	}
	switch name {
	case "sin":
		return math.Sin(a)
	case "cos":
		return math.Cos(a)
	case "tan":
		c := math.Cos(a)
		if isZero(c) {
			return math.NaN()
		}
		return finite(math.Sin(a) / c)
	case "cot":
		return reciprocal(math.Tan(a))
	case "sec":
		return reciprocal(math.Cos(a))
	case "csc":
		return reciprocal(math.Sin(a))
	case "arcsin":
		return math.Asin(a)
	case "arccos":
		return math.Acos(a)
	case "arctan":
		return math.Atan(a)
	case "arccot":
		return math.Pi/2 - math.Atan(a)
	case "arcsec":
		if math.Abs(a) < 1 {
			return math.NaN()
		}
		return math.Acos(1 / a)
	case "arccsc":
		if math.Abs(a) < 1 {
			return math.NaN()
		}
		return math.Asin(1 / a)
	case "ln":
		if a <= 0 {
			return math.NaN()
		}
		return math.Log(a)
	case "log":
		if a <= 0 {
			return math.NaN()
		}
		return math.Log10(a)
	case "sqrt":
		if a < 0 {
			return math.NaN()
		}
		return math.Sqrt(a)
	case "exp":
		return finite(math.Exp(a))
	case "abs":
		return math.Abs(a)
	}
	return math.NaN()
}

func reciprocal(d float64) float64 {
	if isZero(d) {
		return math.NaN()
	}
	return finite(1 / d)
}

func finite(v float64) float64 {
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
