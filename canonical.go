package symdiff

import (
	"math"
	"sort"
)

// ============================================================
// Canonicalization
// ============================================================

// Canonicalize rewrites e bottom-up into canonical order: like terms of
// every sum are merged, products are flattened with their exponents
// combined, and quotients are cancelled.
func Canonicalize(e Expr) Expr {
	switch x := e.(type) {
	case Num, Sym:
		return e
	case Func:
		return Func{Name: x.Name, Arg: Canonicalize(x.Arg)}
	case BinOp:
		switch x.Op {
		case OpAdd, OpSub:
			// Collect the whole chain once, not at every level.
			parts := flattenSum(x, 1, nil)
			for i := range parts {
				parts[i].expr = Canonicalize(parts[i].expr)
			}
			return collectSum(joinSum(parts))
		case OpMul:
			factors := flattenProduct(x, nil)
			for i := range factors {
				factors[i] = Canonicalize(factors[i])
			}
			return termExpr(product(factors))
		case OpDiv:
			return cancelQuotient(Canonicalize(x.Left), Canonicalize(x.Right))
		default:
			return termExpr(BinOp{Op: x.Op, Left: Canonicalize(x.Left), Right: Canonicalize(x.Right)})
		}
	}
	panic(unknownNode(e))
}

// termExpr rebuilds e as one MathTerm. e is kept as is when the combined
// coefficient overflows.
func termExpr(e Expr) Expr {
	t := ExtractTerm(e)
	if !isFinite(t.Coefficient) {
		return e
	}
	return t.Expr()
}

// flattenProduct appends the operands of a * chain to out.
func flattenProduct(e Expr, out []Expr) []Expr {
	if b, ok := asBinOp(e, OpMul); ok {
		out = flattenProduct(b.Left, out)
		return flattenProduct(b.Right, out)
	}
	return append(out, e)
}

// signedExpr is one operand of a flattened +/- chain.
type signedExpr struct {
	sign float64
	expr Expr
}

func flattenSum(e Expr, sign float64, out []signedExpr) []signedExpr {
	if b, ok := e.(BinOp); ok {
		switch b.Op {
		case OpAdd:
			out = flattenSum(b.Left, sign, out)
			return flattenSum(b.Right, sign, out)
		case OpSub:
			out = flattenSum(b.Left, sign, out)
			return flattenSum(b.Right, -sign, out)
		}
	}
	return append(out, signedExpr{sign: sign, expr: e})
}

type sumTerm struct {
	term     *MathTerm
	key      string
	degree   float64
	constant bool
}

// collectSum merges like terms of a +/- chain and rebuilds it in order:
// higher degree first, constants last, then by base key.
func collectSum(e Expr) Expr {
	groups := map[string]*MathTerm{}
	var order []string
	for _, se := range flattenSum(e, 1, nil) {
		t := ExtractTerm(se.expr)
		t.Coefficient *= se.sign
		sig := t.Signature()
		if g, ok := groups[sig]; ok {
			g.Merge(t)
			continue
		}
		groups[sig] = t
		order = append(order, sig)
	}
	for _, g := range groups {
		if !isFinite(g.Coefficient) {
			return e
		}
	}

	terms := make([]sumTerm, 0, len(order))
	for _, sig := range order {
		t := groups[sig]
		if isZero(t.Coefficient) {
			continue
		}
		terms = append(terms, sumTerm{
			term:     t,
			key:      BaseKey(t.WithCoefficient(1).Expr()) + "|" + sig,
			degree:   t.Degree(),
			constant: t.IsConstant(),
		})
	}
	sort.SliceStable(terms, func(i, j int) bool {
		a, b := terms[i], terms[j]
		if a.constant != b.constant {
			return !a.constant
		}
		if a.degree != b.degree {
			return a.degree > b.degree
		}
		return a.key < b.key
	})

	var acc Expr
	for _, st := range terms {
		c := st.term.Coefficient
		switch {
		case acc == nil:
			acc = st.term.Expr()
		case c < 0:
			acc = SubOf(acc, st.term.WithCoefficient(-c).Expr())
		default:
			acc = AddOf(acc, st.term.Expr())
		}
	}
	if acc == nil {
		return N(0)
	}
	return acc
}

// cancelQuotient merges numerator and denominator into one term. Integral
// coefficients are reduced by their greatest common divisor.
func cancelQuotient(l, r Expr) Expr {
	num, den := ExtractTerm(l), ExtractTerm(r)
	if isZero(den.Coefficient) {
		return DivOf(l, r)
	}
	if isZero(num.Coefficient) {
		return N(0)
	}
	for name, exp := range den.Variables {
		num.Variables[name] -= exp
	}
	for key, f := range den.Functions {
		cur, ok := num.Functions[key]
		if !ok {
			cur = PowerFactor{Base: f.Base}
		}
		cur.Exp -= f.Exp
		num.Functions[key] = cur
	}
	for key, f := range den.Nested {
		cur, ok := num.Nested[key]
		if !ok {
			cur = PowerFactor{Base: f.Base}
		}
		cur.Exp -= f.Exp
		num.Nested[key] = cur
	}

	nc, dc := num.Coefficient, den.Coefficient
	if !isFinite(nc) || !isFinite(dc) || !isFinite(nc/dc) {
		return DivOf(l, r)
	}
	if num.IsConstant() {
		return N(nc / dc)
	}
	if p, q, ok := reduceRatio(nc, dc); ok {
		return num.build(p, q)
	}
	num.Coefficient = nc / dc
	return num.Expr()
}

// reduceRatio divides two integral values by their gcd and moves the sign
// to the numerator.
func reduceRatio(n, d float64) (p, q float64, ok bool) {
	if !isIntegral(n) || !isIntegral(d) || math.Abs(n) > 1e15 || math.Abs(d) > 1e15 {
		return 0, 0, false
	}
	a, b := int64(math.Round(n)), int64(math.Round(d))
	if b < 0 {
		a, b = -a, -b
	}
	g := gcd(abs64(a), b)
	if g == 0 {
		return 0, 0, false
	}
	return float64(a / g), float64(b / g), true
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
