package symdiff

import (
	"fmt"
	"math"
	"sort"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable expression tree node. The set of implementations is
// closed: Num, Sym, BinOp and Func. Rewrites always build new trees.
type Expr interface {
	String() string
	LaTeX() string
	isExpr()
}

// Operator is the operator of a BinOp node.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

// Symbol returns the canonical text symbol of the operator.
func (op Operator) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	}
	return "?"
}

func (op Operator) String() string { return op.Symbol() }

// OperatorFromSymbol maps an operator token back to its Operator.
func OperatorFromSymbol(sym string) (Operator, bool) {
	switch sym {
	case "+":
		return OpAdd, true
	case "-":
		return OpSub, true
	case "*", "×":
		return OpMul, true
	case "/", "÷":
		return OpDiv, true
	case "^":
		return OpPow, true
	}
	return 0, false
}

// Epsilon is the tolerance used when treating floats as exactly 0, 1 or -1.
const Epsilon = 1e-10

func isZero(v float64) bool   { return math.Abs(v) < Epsilon }
func isOne(v float64) bool    { return math.Abs(v-1) < Epsilon }
func isNegOne(v float64) bool { return math.Abs(v+1) < Epsilon }

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func isIntegral(v float64) bool {
	if !isFinite(v) {
		return false
	}
	return math.Abs(v-math.Round(v)) < Epsilon
}

// ============================================================
// Num — float64 constant
// ============================================================

type Num struct{ Value float64 }

func N(v float64) Expr { return Num{Value: v} }

func (Num) isExpr() {}

func (n Num) IsZero() bool   { return isZero(n.Value) }
func (n Num) IsOne() bool    { return isOne(n.Value) }
func (n Num) IsNegOne() bool { return isNegOne(n.Value) }

// ============================================================
// Sym — variable
// ============================================================

type Sym struct{ Name string }

func S(name string) Expr { return Sym{Name: name} }

func (Sym) isExpr() {}

// ============================================================
// BinOp — binary operation
// ============================================================

type BinOp struct {
	Op          Operator
	Left, Right Expr
}

func (BinOp) isExpr() {}

func AddOf(l, r Expr) Expr { return BinOp{Op: OpAdd, Left: l, Right: r} }
func SubOf(l, r Expr) Expr { return BinOp{Op: OpSub, Left: l, Right: r} }
func MulOf(l, r Expr) Expr { return BinOp{Op: OpMul, Left: l, Right: r} }
func DivOf(l, r Expr) Expr { return BinOp{Op: OpDiv, Left: l, Right: r} }
func PowOf(l, r Expr) Expr { return BinOp{Op: OpPow, Left: l, Right: r} }

// Neg builds (-1)*e, which serializes as -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// ============================================================
// Func — named function application
// ============================================================

type Func struct {
	Name string
	Arg  Expr
}

func (Func) isExpr() {}

func FuncOf(name string, arg Expr) Expr { return Func{Name: name, Arg: arg} }

func SinOf(arg Expr) Expr  { return FuncOf("sin", arg) }
func CosOf(arg Expr) Expr  { return FuncOf("cos", arg) }
func LnOf(arg Expr) Expr   { return FuncOf("ln", arg) }
func ExpOf(arg Expr) Expr  { return FuncOf("exp", arg) }
func SqrtOf(arg Expr) Expr { return FuncOf("sqrt", arg) }
func AbsOf(arg Expr) Expr  { return FuncOf("abs", arg) }

// functionNames is the reserved set of function identifiers.
var functionNames = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"arcsin": true, "arccos": true, "arctan": true, "arccot": true, "arcsec": true, "arccsc": true,
	"ln": true, "log": true, "sqrt": true, "exp": true, "abs": true,
}

// IsFunctionName reports whether name is a reserved function identifier.
func IsFunctionName(name string) bool { return functionNames[name] }

// ============================================================
// Structural queries
// ============================================================

// Equal reports whether a and b are structurally identical trees.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case Num:
		y, ok := b.(Num)
		return ok && x.Value == y.Value
	case Sym:
		y, ok := b.(Sym)
		return ok && x.Name == y.Name
	case BinOp:
		y, ok := b.(BinOp)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case Func:
		y, ok := b.(Func)
		return ok && x.Name == y.Name && Equal(x.Arg, y.Arg)
	case nil:
		return b == nil
	}
	panic(unknownNode(a))
}

// ContainsVar reports whether the subtree references the variable v.
func ContainsVar(e Expr, v string) bool {
	switch x := e.(type) {
	case Num:
		return false
	case Sym:
		return x.Name == v
	case BinOp:
		return ContainsVar(x.Left, v) || ContainsVar(x.Right, v)
	case Func:
		return ContainsVar(x.Arg, v)
	}
	panic(unknownNode(e))
}

// NodeCount returns the number of nodes in the tree.
func NodeCount(e Expr) int {
	switch x := e.(type) {
	case Num, Sym:
		return 1
	case BinOp:
		return 1 + NodeCount(x.Left) + NodeCount(x.Right)
	case Func:
		return 1 + NodeCount(x.Arg)
	}
	panic(unknownNode(e))
}

// FreeSymbols returns the sorted variable names referenced by e.
func FreeSymbols(e Expr) []string {
	seen := map[string]struct{}{}
	collectSymbols(e, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch x := e.(type) {
	case Sym:
		out[x.Name] = struct{}{}
	case BinOp:
		collectSymbols(x.Left, out)
		collectSymbols(x.Right, out)
	case Func:
		collectSymbols(x.Arg, out)
	}
}

// Substitute replaces every occurrence of variable v with value.
func Substitute(e Expr, v string, value Expr) Expr {
	switch x := e.(type) {
	case Num:
		return x
	case Sym:
		if x.Name == v {
			return value
		}
		return x
	case BinOp:
		return BinOp{Op: x.Op, Left: Substitute(x.Left, v, value), Right: Substitute(x.Right, v, value)}
	case Func:
		return Func{Name: x.Name, Arg: Substitute(x.Arg, v, value)}
	}
	panic(unknownNode(e))
}

func unknownNode(e Expr) string {
	return fmt.Sprintf("symdiff: unknown expression node %T", e)
}

// numValue returns the value of e when it is a Num.
func numValue(e Expr) (float64, bool) {
	n, ok := e.(Num)
	return n.Value, ok
}

func isNum(e Expr, v float64) bool {
	n, ok := e.(Num)
	return ok && math.Abs(n.Value-v) < Epsilon
}

func isSym(e Expr, name string) bool {
	s, ok := e.(Sym)
	return ok && s.Name == name
}

func asBinOp(e Expr, op Operator) (BinOp, bool) {
	b, ok := e.(BinOp)
	return b, ok && b.Op == op
}
