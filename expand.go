package symdiff

import "math"

// MaxExpandPower is the largest integer power of a sum Expand multiplies out.
const MaxExpandPower = 12

// MaxExpandTerms bounds the number of terms any single product or power may
// expand into. Past it Expand gives up and returns its input simplified.
const MaxExpandTerms = 512

// Expand distributes products over sums, multiplies out small integer
// powers of sums and splits a sum over a common denominator. The result is
// simplified.
func Expand(e Expr) Expr { return defaultSimplifier.Expand(e) }

func (s Simplifier) Expand(e Expr) Expr {
	if out, ok := s.tryExpand(e); ok {
		return out
	}
	return s.Simplify(e)
}

// tryExpand is Expand that reports false instead of exceeding MaxExpandTerms.
func (s Simplifier) tryExpand(e Expr) (Expr, bool) {
	var x expander
	out := x.expand(s.Clean(e))
	if x.exceeded {
		return nil, false
	}
	return s.Simplify(out), true
}

type expander struct {
	exceeded bool
}

func (x *expander) expand(e Expr) Expr {
	if x.exceeded {
		return e
	}
	switch n := e.(type) {
	case Num, Sym:
		return e
	case Func:
		return Func{Name: n.Name, Arg: x.expand(n.Arg)}
	case BinOp:
		l, r := x.expand(n.Left), x.expand(n.Right)
		switch n.Op {
		case OpMul:
			return x.distribute(l, r)
		case OpDiv:
			return splitQuotient(l, r)
		case OpPow:
			return x.expandPower(l, r)
		default:
			return BinOp{Op: n.Op, Left: l, Right: r}
		}
	}
	panic(unknownNode(e))
}

func isSum(e Expr) bool {
	b, ok := e.(BinOp)
	return ok && (b.Op == OpAdd || b.Op == OpSub)
}

// distribute multiplies every term of l by every term of r.
func (x *expander) distribute(l, r Expr) Expr {
	if x.exceeded || (!isSum(l) && !isSum(r)) {
		return MulOf(l, r)
	}
	ls, rs := flattenSum(l, 1, nil), flattenSum(r, 1, nil)
	if len(ls)*len(rs) > MaxExpandTerms {
		x.exceeded = true
		return MulOf(l, r)
	}
	out := make([]signedExpr, 0, len(ls)*len(rs))
	for _, a := range ls {
		for _, b := range rs {
			out = append(out, signedExpr{sign: a.sign * b.sign, expr: MulOf(a.expr, b.expr)})
		}
	}
	return joinSum(out)
}

func splitQuotient(l, r Expr) Expr {
	if !isSum(l) {
		return DivOf(l, r)
	}
	terms := flattenSum(l, 1, nil)
	for i := range terms {
		terms[i].expr = DivOf(terms[i].expr, r)
	}
	return joinSum(terms)
}

func (x *expander) expandPower(base, exp Expr) Expr {
	n, ok := numValue(exp)
	if !ok || !isIntegral(n) || n < 2 || n > MaxExpandPower {
		return PowOf(base, exp)
	}
	if b, ok := asBinOp(base, OpMul); ok {
		return x.distribute(x.expandPower(b.Left, exp), x.expandPower(b.Right, exp))
	}
	if !isSum(base) {
		return PowOf(base, exp)
	}
	result := base
	for i := 1; i < int(math.Round(n)); i++ {
		result = Canonicalize(x.distribute(result, base))
		if x.exceeded {
			return PowOf(base, exp)
		}
	}
	return result
}

func joinSum(terms []signedExpr) Expr {
	var acc Expr
	for _, t := range terms {
		switch {
		case acc == nil && t.sign < 0:
			acc = Neg(t.expr)
		case acc == nil:
			acc = t.expr
		case t.sign < 0:
			acc = SubOf(acc, t.expr)
		default:
			acc = AddOf(acc, t.expr)
		}
	}
	if acc == nil {
		return N(0)
	}
	return acc
}
