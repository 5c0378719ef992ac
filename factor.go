package symdiff

import "math"

// Factor pulls the common monomial out of a sum: the gcd of integral
// coefficients times every variable, function and nested factor shared by
// all terms at its smallest exponent. Non-sums are returned simplified.
func Factor(e Expr) Expr { return defaultSimplifier.Factor(e) }

func (s Simplifier) Factor(e Expr) Expr {
	simplified := s.Simplify(e)
	if !isSum(simplified) {
		return simplified
	}
	parts := flattenSum(simplified, 1, nil)
	terms := make([]*MathTerm, len(parts))
	for i, p := range parts {
		terms[i] = ExtractTerm(p.expr)
		terms[i].Coefficient *= p.sign
	}

	common := commonFactor(terms)
	if common.IsConstant() && isOne(common.Coefficient) {
		return simplified
	}
	inner := make([]signedExpr, len(terms))
	for i, t := range terms {
		inner[i] = signedExpr{sign: 1, expr: divideTerm(t, common).Expr()}
	}
	return s.Simplify(MulOf(common.Expr(), collectSum(joinSum(inner))))
}

func commonFactor(terms []*MathTerm) *MathTerm {
	common := newMathTerm()
	common.Coefficient = coefficientGCD(terms)

	first := terms[0]
	for name, exp := range first.Variables {
		m, shared := exp, true
		for _, t := range terms[1:] {
			other, ok := t.Variables[name]
			if !ok {
				shared = false
				break
			}
			m = math.Min(m, other)
		}
		if shared && m > 0 {
			common.Variables[name] = m
		}
	}
	for key, f := range first.Functions {
		if m, ok := sharedExponent(f.Exp, terms[1:], func(t *MathTerm) (PowerFactor, bool) {
			g, ok := t.Functions[key]
			return g, ok
		}); ok {
			common.Functions[key] = PowerFactor{Base: f.Base, Exp: m}
		}
	}
	for key, f := range first.Nested {
		if m, ok := sharedExponent(f.Exp, terms[1:], func(t *MathTerm) (PowerFactor, bool) {
			g, ok := t.Nested[key]
			return g, ok
		}); ok {
			common.Nested[key] = PowerFactor{Base: f.Base, Exp: m}
		}
	}
	return common
}

func sharedExponent(exp float64, rest []*MathTerm, lookup func(*MathTerm) (PowerFactor, bool)) (float64, bool) {
	m := exp
	for _, t := range rest {
		f, ok := lookup(t)
		if !ok {
			return 0, false
		}
		m = math.Min(m, f.Exp)
	}
	return m, m > 0
}

// coefficientGCD is the gcd of all coefficients when they are integral, or 1.
func coefficientGCD(terms []*MathTerm) float64 {
	var g int64
	for _, t := range terms {
		c := t.Coefficient
		if !isIntegral(c) || math.Abs(c) > 1e15 {
			return 1
		}
		g = gcd(g, abs64(int64(math.Round(c))))
	}
	if g == 0 {
		return 1
	}
	return float64(g)
}

func divideTerm(t, by *MathTerm) *MathTerm {
	out := newMathTerm()
	out.Coefficient = t.Coefficient / by.Coefficient
	for name, exp := range t.Variables {
		out.Variables[name] = exp - by.Variables[name]
	}
	for key, f := range t.Functions {
		out.Functions[key] = PowerFactor{Base: f.Base, Exp: f.Exp - by.Functions[key].Exp}
	}
	for key, f := range t.Nested {
		out.Nested[key] = PowerFactor{Base: f.Base, Exp: f.Exp - by.Nested[key].Exp}
	}
	return out
}
