package symdiff

// funcRule builds a chain-rule rule for the named function: the result is
// outer(u)·u', or outer(u) alone when u' is the literal 1.
func funcRule(name string, priority int, outer func(u Expr) Expr) Rule {
	return Rule{
		Name:     name,
		Priority: priority,
		Match: func(e Expr, _ string) bool {
			f, ok := e.(Func)
			return ok && f.Name == name
		},
		Apply: func(e Expr, v string, eng *Engine) (Expr, error) {
			f := e.(Func)
			du, err := eng.derive(f.Arg, v)
			if err != nil {
				return nil, err
			}
			return chain(outer(f.Arg), du), nil
		},
	}
}

// quotientFuncRule builds a rule of the form u'/denominator(u), negated
// when negative is set.
func quotientFuncRule(name string, priority int, negative bool, denominator func(u Expr) Expr) Rule {
	return Rule{
		Name:     name,
		Priority: priority,
		Match: func(e Expr, _ string) bool {
			f, ok := e.(Func)
			return ok && f.Name == name
		},
		Apply: func(e Expr, v string, eng *Engine) (Expr, error) {
			f := e.(Func)
			du, err := eng.derive(f.Arg, v)
			if err != nil {
				return nil, err
			}
			if negative {
				du = Neg(du)
			}
			return DivOf(du, denominator(f.Arg)), nil
		},
	}
}

func chain(outer, du Expr) Expr {
	if isNum(du, 1) {
		return outer
	}
	return MulOf(outer, du)
}

func square(e Expr) Expr { return PowOf(e, N(2)) }

func trigRules() []Rule {
	return []Rule{
		funcRule("sin", 70, func(u Expr) Expr { return CosOf(u) }),
		funcRule("cos", 70, func(u Expr) Expr { return Neg(SinOf(u)) }),
		quotientFuncRule("tan", 70, false, func(u Expr) Expr { return square(CosOf(u)) }),
		quotientFuncRule("cot", 70, true, func(u Expr) Expr { return square(SinOf(u)) }),
		funcRule("sec", 70, func(u Expr) Expr { return DivOf(SinOf(u), square(CosOf(u))) }),
		funcRule("csc", 70, func(u Expr) Expr { return Neg(DivOf(CosOf(u), square(SinOf(u)))) }),
	}
}

// inverseTrigRules omit the |u| factor of arcsec and arccsc; the results
// have the wrong sign for u < 0.
func inverseTrigRules() []Rule {
	oneMinusSquare := func(u Expr) Expr { return SqrtOf(SubOf(N(1), square(u))) }
	onePlusSquare := func(u Expr) Expr { return AddOf(N(1), square(u)) }
	secantDenominator := func(u Expr) Expr { return MulOf(u, SqrtOf(SubOf(square(u), N(1)))) }
	return []Rule{
		quotientFuncRule("arcsin", 70, false, oneMinusSquare),
		quotientFuncRule("arccos", 70, true, oneMinusSquare),
		quotientFuncRule("arctan", 70, false, onePlusSquare),
		quotientFuncRule("arccot", 70, true, onePlusSquare),
		quotientFuncRule("arcsec", 70, false, secantDenominator),
		quotientFuncRule("arccsc", 70, true, secantDenominator),
	}
}
