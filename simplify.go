package symdiff

import "math"

// ============================================================
// Simplification
// ============================================================

// MaxPasses bounds every fixed-point loop in the simplifier. It is a safety
// valve for inputs that would otherwise oscillate between equal-cost forms.
const MaxPasses = 20

// Simplifier runs the cleanup and canonicalization passes. The zero value
// uses MaxPasses.
type Simplifier struct {
	MaxPasses int
}

func (s Simplifier) passes() int {
	if s.MaxPasses <= 0 {
		return MaxPasses
	}
	return s.MaxPasses
}

var defaultSimplifier Simplifier

// Clean applies local identities bottom-up until nothing changes.
func Clean(e Expr) Expr { return defaultSimplifier.Clean(e) }

// Simplify returns the fixed point of Canonicalize(Clean(e)).
func Simplify(e Expr) Expr { return defaultSimplifier.Simplify(e) }

func (s Simplifier) Clean(e Expr) Expr {
	cur := e
	for i := 0; i < s.passes(); i++ {
		next := cleanOnce(cur)
		if Equal(next, cur) {
			return next
		}
		cur = next
	}
	return cur
}

func (s Simplifier) Simplify(e Expr) Expr {
	cur := s.Clean(e)
	text := cur.String()
	for i := 0; i < s.passes(); i++ {
		next := s.Clean(Canonicalize(cur))
		nextText := next.String()
		if nextText == text {
			return next
		}
		cur, text = next, nextText
	}
	return cur
}

func cleanOnce(e Expr) Expr {
	switch x := e.(type) {
	case Num, Sym:
		return e
	case Func:
		return cleanFunc(x.Name, cleanOnce(x.Arg))
	case BinOp:
		return cleanBinOp(x.Op, cleanOnce(x.Left), cleanOnce(x.Right))
	}
	panic(unknownNode(e))
}

// cleanFunc folds a function of a number only when the result is integral,
// so sin(0) becomes 0 while ln(2) stays symbolic.
func cleanFunc(name string, arg Expr) Expr {
	if a, ok := numValue(arg); ok {
		if v := applyFunc(name, a); isIntegral(v) {
			return N(math.Round(v))
		}
	}
	if inner, ok := arg.(Func); ok {
		switch {
		case name == "ln" && inner.Name == "exp":
			return inner.Arg
		case name == "abs" && inner.Name == "abs":
			return inner
		}
	}
	return Func{Name: name, Arg: arg}
}

func cleanBinOp(op Operator, l, r Expr) Expr {
	lv, lnum := numValue(l)
	rv, rnum := numValue(r)
	if lnum && rnum {
		if v, ok := fold(op, lv, rv); ok {
			return N(v)
		}
	}
	switch op {
	case OpAdd:
		if lnum && isZero(lv) {
			return r
		}
		if rnum && isZero(rv) {
			return l
		}
	case OpSub:
		if rnum && isZero(rv) {
			return l
		}
		if lnum && isZero(lv) {
			return negate(r)
		}
		if Equal(l, r) {
			return N(0)
		}
	case OpMul:
		if (lnum && isZero(lv)) || (rnum && isZero(rv)) {
			return N(0)
		}
		if lnum && isOne(lv) {
			return r
		}
		if rnum && isOne(rv) {
			return l
		}
		if rnum && !lnum {
			return cleanBinOp(OpMul, r, l)
		}
		if lnum && !rnum {
			if inner, ok := asBinOp(r, OpMul); ok {
				if c, ok := numValue(inner.Left); ok && isFinite(lv*c) {
					return cleanBinOp(OpMul, N(lv*c), inner.Right)
				}
			}
		}
	case OpDiv:
		divisorZero := rnum && isZero(rv)
		if rnum && isOne(rv) {
			return l
		}
		if lnum && isZero(lv) && !divisorZero {
			return N(0)
		}
		if Equal(l, r) && !divisorZero {
			return N(1)
		}
		if rnum && isNegOne(rv) {
			return negate(l)
		}
	case OpPow:
		if rnum && isZero(rv) {
			return N(1)
		}
		if rnum && isOne(rv) {
			return l
		}
		if lnum && isOne(lv) {
			return N(1)
		}
		if inner, ok := asBinOp(l, OpPow); ok {
			return PowOf(inner.Left, cleanBinOp(OpMul, inner.Right, r))
		}
	}
	return BinOp{Op: op, Left: l, Right: r}
}

// fold evaluates a numeric BinOp, refusing results that are not finite.
func fold(op Operator, a, b float64) (float64, bool) {
	if op == OpDiv && isZero(b) {
		return 0, false
	}
	v := applyOp(op, a, b)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
