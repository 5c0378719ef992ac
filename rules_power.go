package symdiff

// Power-family rules. All three check which side of the power contains the
// target variable.

func powerRules() []Rule {
	return []Rule{
		{
			// x^n → n·x^(n-1)
			Name:     "power",
			Priority: 100,
			Match: func(e Expr, v string) bool {
				b, ok := asBinOp(e, OpPow)
				return ok && isSym(b.Left, v) && !ContainsVar(b.Right, v)
			},
			Apply: func(e Expr, _ string, _ *Engine) (Expr, error) {
				b := e.(BinOp)
				return MulOf(b.Right, PowOf(b.Left, decrement(b.Right))), nil
			},
		},
		{
			// u^n → n·u^(n-1)·u'
			Name:     "composite power",
			Priority: 98,
			Match: func(e Expr, v string) bool {
				b, ok := asBinOp(e, OpPow)
				return ok && ContainsVar(b.Left, v) && !isSym(b.Left, v) && !ContainsVar(b.Right, v)
			},
			Apply: func(e Expr, v string, eng *Engine) (Expr, error) {
				b := e.(BinOp)
				du, err := eng.derive(b.Left, v)
				if err != nil {
					return nil, err
				}
				return MulOf(MulOf(b.Right, PowOf(b.Left, decrement(b.Right))), du), nil
			},
		},
		{
			// u^v → u^v·(v'·ln(u) + v·u'/u)
			Name:     "general power",
			Priority: 95,
			Match: func(e Expr, v string) bool {
				b, ok := asBinOp(e, OpPow)
				return ok && ContainsVar(b.Right, v)
			},
			Apply: func(e Expr, v string, eng *Engine) (Expr, error) {
				b := e.(BinOp)
				du, dv, err := operands(b, v, eng)
				if err != nil {
					return nil, err
				}
				logTerm := MulOf(dv, LnOf(b.Left))
				ratioTerm := DivOf(MulOf(b.Right, du), b.Left)
				return MulOf(e, AddOf(logTerm, ratioTerm)), nil
			},
		},
	}
}

// decrement returns n-1, folded when n is a literal.
func decrement(n Expr) Expr {
	if v, ok := numValue(n); ok {
		return N(v - 1)
	}
	return SubOf(n, N(1))
}
