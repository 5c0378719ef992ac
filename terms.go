package symdiff

import (
	"math"
	"sort"
	"strings"
)

// ============================================================
// Structural keys
// ============================================================

// BaseKey returns the coefficient-blind signature of e: every number maps
// to CONST, multiplication is commutative, everything else is ordered.
func BaseKey(e Expr) string { return structKey(e, false) }

// StructuralKey is BaseKey with numeric values kept. Two subtrees with the
// same StructuralKey are the same expression up to the order of factors.
func StructuralKey(e Expr) string { return structKey(e, true) }

func structKey(e Expr, exact bool) string {
	switch x := e.(type) {
	case Num:
		if exact {
			return "NUM:" + canonicalNumber(x.Value)
		}
		return "CONST"
	case Sym:
		return "VAR:" + x.Name
	case Func:
		return "FUNC:" + x.Name + ":" + structKey(x.Arg, exact)
	case BinOp:
		l, r := structKey(x.Left, exact), structKey(x.Right, exact)
		switch x.Op {
		case OpPow:
			return "POW:" + l + ":" + r
		case OpMul:
			if r < l {
				l, r = r, l
			}
			return "MUL:" + l + ":" + r
		case OpAdd:
			return "ADD:" + l + ":" + r
		case OpSub:
			return "SUB:" + l + ":" + r
		case OpDiv:
			return "DIV:" + l + ":" + r
		}
	}
	panic(unknownNode(e))
}

// ============================================================
// MathTerm — coefficient times a product of powers
// ============================================================

// FunctionKey identifies a function application independent of where it
// appears: the function name plus the structural key of its argument.
type FunctionKey struct {
	Name string
	Arg  string
}

func (k FunctionKey) String() string { return k.Name + "(" + k.Arg + ")" }

// PowerFactor is a base raised to a numeric exponent inside a MathTerm.
type PowerFactor struct {
	Base Expr
	Exp  float64
}

// MathTerm is the transient like-term representation of a product:
// Coefficient · Π var^exp · Π func^exp · Π nested^exp.
type MathTerm struct {
	Coefficient float64
	Variables   map[string]float64
	Functions   map[FunctionKey]PowerFactor
	Nested      map[string]PowerFactor // keyed by StructuralKey of the base
}

func newMathTerm() *MathTerm {
	return &MathTerm{
		Coefficient: 1,
		Variables:   map[string]float64{},
		Functions:   map[FunctionKey]PowerFactor{},
		Nested:      map[string]PowerFactor{},
	}
}

// ExtractTerm flattens products, quotients and numeric powers of e into a
// MathTerm. Sums and symbolic powers become nested factors.
func ExtractTerm(e Expr) *MathTerm {
	t := newMathTerm()
	t.absorb(e, 1)
	return t
}

func (t *MathTerm) absorb(e Expr, exp float64) {
	switch x := e.(type) {
	case Num:
		if exp < 0 && isZero(x.Value) {
			t.addNested(x, exp)
			return
		}
		t.Coefficient *= math.Pow(x.Value, exp)
	case Sym:
		t.Variables[x.Name] += exp
	case Func:
		t.addFunction(x, exp)
	case BinOp:
		switch x.Op {
		case OpMul:
			t.absorb(x.Left, exp)
			t.absorb(x.Right, exp)
		case OpDiv:
			t.absorb(x.Left, exp)
			t.absorb(x.Right, -exp)
		case OpPow:
			t.absorbPower(x, exp)
		default:
			t.addNested(x, exp)
		}
	default:
		panic(unknownNode(e))
	}
}

func (t *MathTerm) absorbPower(p BinOp, exp float64) {
	n, ok := numValue(p.Right)
	if !ok {
		t.addNested(p, exp)
		return
	}
	switch base := p.Left.(type) {
	case Sym:
		t.Variables[base.Name] += n * exp
		return
	case Func:
		t.addFunction(base, n*exp)
		return
	case Num:
		v := math.Pow(base.Value, n*exp)
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			t.Coefficient *= v
			return
		}
	case BinOp:
		if (base.Op == OpMul || base.Op == OpDiv) && isIntegral(n) {
			t.absorb(base, n*exp)
			return
		}
		t.addNested(base, n*exp)
		return
	}
	t.addNested(p, exp)
}

func (t *MathTerm) addFunction(f Func, exp float64) {
	key := FunctionKey{Name: f.Name, Arg: StructuralKey(f.Arg)}
	cur, ok := t.Functions[key]
	if !ok {
		cur = PowerFactor{Base: f}
	}
	cur.Exp += exp
	t.Functions[key] = cur
}

func (t *MathTerm) addNested(base Expr, exp float64) {
	key := StructuralKey(base)
	cur, ok := t.Nested[key]
	if !ok {
		cur = PowerFactor{Base: base}
	}
	cur.Exp += exp
	t.Nested[key] = cur
}

// Degree is the total exponent of the plain variables.
func (t *MathTerm) Degree() float64 {
	d := 0.0
	for _, exp := range t.Variables {
		d += exp
	}
	return d
}

// IsConstant reports whether the term has no factor with a non-zero exponent.
func (t *MathTerm) IsConstant() bool { return len(t.factors()) == 0 }

// Signature identifies like terms: equal signatures differ only in coefficient.
func (t *MathTerm) Signature() string {
	parts := make([]string, 0, len(t.Variables)+len(t.Functions)+len(t.Nested))
	for _, f := range t.factors() {
		parts = append(parts, f.key+"^"+canonicalNumber(f.Exp))
	}
	return strings.Join(parts, "|")
}

// Merge adds the coefficient of a like term.
func (t *MathTerm) Merge(other *MathTerm) { t.Coefficient += other.Coefficient }

// WithCoefficient returns a copy of t carrying coefficient c.
func (t *MathTerm) WithCoefficient(c float64) *MathTerm {
	cp := *t
	cp.Coefficient = c
	return &cp
}

type orderedFactor struct {
	PowerFactor
	rank int
	key  string
}

// factors returns the non-trivial factors in display order: variables,
// symbolic powers, functions, then other nested subexpressions.
func (t *MathTerm) factors() []orderedFactor {
	out := make([]orderedFactor, 0, len(t.Variables)+len(t.Functions)+len(t.Nested))
	for name, exp := range t.Variables {
		if !isZero(exp) {
			out = append(out, orderedFactor{PowerFactor: PowerFactor{Base: S(name), Exp: exp}, rank: 0, key: "VAR:" + name})
		}
	}
	for key, f := range t.Functions {
		if !isZero(f.Exp) {
			out = append(out, orderedFactor{PowerFactor: f, rank: 2, key: "FUNC:" + key.String()})
		}
	}
	for key, f := range t.Nested {
		if isZero(f.Exp) {
			continue
		}
		rank := 3
		if _, ok := asBinOp(f.Base, OpPow); ok {
			rank = 1
		}
		out = append(out, orderedFactor{PowerFactor: f, rank: rank, key: key})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].rank != out[j].rank {
			return out[i].rank < out[j].rank
		}
		return out[i].key < out[j].key
	})
	return out
}

// Expr rebuilds the term. Negative exponents move to a denominator and a
// rational coefficient p/q is written as p·…/q.
func (t *MathTerm) Expr() Expr {
	c := t.Coefficient
	if isZero(c) {
		return N(0)
	}
	if t.IsConstant() {
		return N(c)
	}
	p, q := rationalize(c)
	return t.build(p, q)
}

func (t *MathTerm) build(p, q float64) Expr {
	if isZero(p) {
		return N(0)
	}
	var num, den []Expr
	for _, f := range t.factors() {
		if f.Exp > 0 {
			num = append(num, raise(f.Base, f.Exp))
		} else {
			den = append(den, raise(f.Base, -f.Exp))
		}
	}
	numerator := product(num)
	switch {
	case numerator == nil:
		numerator = N(p)
	case isNegOne(p):
		numerator = Neg(numerator)
	case !isOne(p):
		numerator = MulOf(N(p), numerator)
	}
	denominator := product(den)
	if !isOne(q) {
		if denominator == nil {
			denominator = N(q)
		} else {
			denominator = MulOf(N(q), denominator)
		}
	}
	if denominator == nil {
		return numerator
	}
	return DivOf(numerator, denominator)
}

func raise(base Expr, exp float64) Expr {
	if isOne(exp) {
		return base
	}
	return PowOf(base, N(exp))
}

// product folds factors into a left-associated product, nil when empty.
func product(factors []Expr) Expr {
	var acc Expr
	for _, f := range factors {
		if acc == nil {
			acc = f
		} else {
			acc = MulOf(acc, f)
		}
	}
	return acc
}

// maxDenominator bounds the search for a rational form of a coefficient.
const maxDenominator = 1000

// rationalize returns p, q with c = p/q and q a small positive integer, or
// (c, 1) when no such q exists.
func rationalize(c float64) (p, q float64) {
	if isIntegral(c) {
		return math.Round(c), 1
	}
	for d := 2; d <= maxDenominator; d++ {
		scaled := c * float64(d)
		if math.Abs(scaled-math.Round(scaled)) < 1e-9 {
			return math.Round(scaled), float64(d)
		}
	}
	return c, 1
}

// gcd returns the greatest common divisor of two non-negative integers.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
