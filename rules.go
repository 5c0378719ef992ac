package symdiff

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ============================================================
// Rule engine
// ============================================================

// Rule is a stateless differentiation rewrite. Match selects the nodes the
// rule handles; Apply builds the derivative, calling back into the engine
// for the derivatives of subexpressions.
type Rule struct {
	Name     string
	Priority int
	Match    func(e Expr, v string) bool
	Apply    func(e Expr, v string, eng *Engine) (Expr, error)
}

// Engine dispatches nodes to the highest-priority matching rule. An Engine
// is immutable after construction and safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine over rules sorted by descending priority.
// Rules of equal priority keep their registration order.
func NewEngine(rules ...Rule) *Engine {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })
	return &Engine{rules: sorted}
}

// Rules returns the rules in dispatch order.
func (eng *Engine) Rules() []Rule {
	out := make([]Rule, len(eng.rules))
	copy(out, eng.rules)
	return out
}

// With returns a new engine with extra rules registered after the existing ones.
func (eng *Engine) With(rules ...Rule) *Engine {
	return NewEngine(append(eng.Rules(), rules...)...)
}

// Differentiate returns the raw (unsimplified) derivative of e with respect to v.
func (eng *Engine) Differentiate(e Expr, v string) (Expr, error) {
	for _, r := range eng.rules {
		if r.Match(e, v) {
			d, err := r.Apply(e, v, eng)
			if err != nil {
				return nil, err
			}
			return d, nil
		}
	}
	return nil, &CalculationError{Node: e.String(), Msg: "no differentiation rule matches"}
}

// derive is the recursive entry used by rules for u' and v'.
func (eng *Engine) derive(e Expr, v string) (Expr, error) {
	d, err := eng.Differentiate(e, v)
	if err != nil {
		var ce *CalculationError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "differentiate %s", e)
	}
	return d, nil
}

var (
	defaultEngineOnce sync.Once
	defaultEngine     *Engine
)

// DefaultEngine returns the shared engine holding the full rule table.
func DefaultEngine() *Engine {
	defaultEngineOnce.Do(func() {
		var rules []Rule
		rules = append(rules, basicRules()...)
		rules = append(rules, powerRules()...)
		rules = append(rules, arithmeticRules()...)
		rules = append(rules, trigRules()...)
		rules = append(rules, inverseTrigRules()...)
		rules = append(rules, elementaryRules()...)
		defaultEngine = NewEngine(rules...)
	})
	return defaultEngine
}

// ============================================================
// Constant, variable, sum, product and quotient rules
// ============================================================

func basicRules() []Rule {
	return []Rule{
		{
			// Any subtree free of the variable: numbers, other variables and
			// constant compounds alike.
			Name:     "constant",
			Priority: 200,
			Match:    func(e Expr, v string) bool { return !ContainsVar(e, v) },
			Apply:    func(Expr, string, *Engine) (Expr, error) { return N(0), nil },
		},
		{
			Name:     "variable",
			Priority: 150,
			Match:    func(e Expr, v string) bool { return isSym(e, v) },
			Apply:    func(Expr, string, *Engine) (Expr, error) { return N(1), nil },
		},
	}
}

func isBinOp(op Operator) func(Expr, string) bool {
	return func(e Expr, _ string) bool {
		_, ok := asBinOp(e, op)
		return ok
	}
}

// operands differentiates both sides of a binary node.
func operands(b BinOp, v string, eng *Engine) (du, dv Expr, err error) {
	if du, err = eng.derive(b.Left, v); err != nil {
		return nil, nil, err
	}
	if dv, err = eng.derive(b.Right, v); err != nil {
		return nil, nil, err
	}
	return du, dv, nil
}

func arithmeticRules() []Rule {
	return []Rule{
		{
			Name:     "sum",
			Priority: 90,
			Match: func(e Expr, _ string) bool {
				b, ok := e.(BinOp)
				return ok && (b.Op == OpAdd || b.Op == OpSub)
			},
			Apply: func(e Expr, v string, eng *Engine) (Expr, error) {
				b := e.(BinOp)
				du, dv, err := operands(b, v, eng)
				if err != nil {
					return nil, err
				}
				return BinOp{Op: b.Op, Left: du, Right: dv}, nil
			},
		},
		{
			// (u/v)' = (u'v - uv')/v²
			Name:     "quotient",
			Priority: 85,
			Match:    isBinOp(OpDiv),
			Apply: func(e Expr, v string, eng *Engine) (Expr, error) {
				b := e.(BinOp)
				du, dv, err := operands(b, v, eng)
				if err != nil {
					return nil, err
				}
				num := SubOf(MulOf(du, b.Right), MulOf(b.Left, dv))
				return DivOf(num, PowOf(b.Right, N(2))), nil
			},
		},
		{
			// (uv)' = u'v + uv'
			Name:     "product",
			Priority: 80,
			Match:    isBinOp(OpMul),
			Apply: func(e Expr, v string, eng *Engine) (Expr, error) {
				b := e.(BinOp)
				du, dv, err := operands(b, v, eng)
				if err != nil {
					return nil, err
				}
				return AddOf(MulOf(du, b.Right), MulOf(b.Left, dv)), nil
			},
		},
	}
}
