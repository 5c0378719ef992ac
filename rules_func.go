package symdiff

func elementaryRules() []Rule {
	return []Rule{
		funcRule("exp", 65, func(u Expr) Expr { return ExpOf(u) }),
		quotientFuncRule("ln", 65, false, func(u Expr) Expr { return u }),
		quotientFuncRule("log", 65, false, func(u Expr) Expr { return MulOf(u, LnOf(N(10))) }),
		quotientFuncRule("sqrt", 65, false, func(u Expr) Expr { return MulOf(N(2), SqrtOf(u)) }),
		// Undefined at u = 0.
		funcRule("abs", 65, func(u Expr) Expr { return DivOf(u, AbsOf(u)) }),
	}
}

// Differentiate returns the simplified derivative of e with respect to v
// using the default engine.
func Differentiate(e Expr, v string) (Expr, error) {
	d, err := DefaultEngine().Differentiate(e, v)
	if err != nil {
		return nil, err
	}
	return Simplify(d), nil
}

// DiffN returns the simplified n-th derivative, simplifying between passes.
func DiffN(e Expr, v string, n int) (Expr, error) {
	result := e
	for i := 0; i < n; i++ {
		d, err := Differentiate(result, v)
		if err != nil {
			return nil, err
		}
		result = d
	}
	return result, nil
}
