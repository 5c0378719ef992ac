package symdiff

import (
	"math"
	"strconv"
	"strings"
)

// Printing precedence. Unary minus binds like multiplication.
const (
	precAdd = iota + 1
	precMul
	precPow
	precAtom
)

func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case v == math.Pi:
		return "π"
	case v == -math.Pi:
		return "-π"
	case v == math.E:
		return "e"
	case v == -math.E:
		return "-e"
	case isIntegral(v) && math.Abs(v) < 1e15:
		// Within Epsilon of an integer prints as that integer, so the text
		// re-parses to a value up to Epsilon away.
		r := math.Round(v)
		if r == 0 {
			return "0"
		}
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func precedence(e Expr) int {
	switch x := e.(type) {
	case Num, Sym, Func:
		return precAtom
	case BinOp:
		switch x.Op {
		case OpAdd:
			return precAdd
		case OpSub:
			if isNum(x.Left, 0) {
				return precMul
			}
			return precAdd
		case OpMul:
			if isNum(x.Left, 1) {
				return precedence(x.Right)
			}
			return precMul
		case OpDiv:
			return precMul
		case OpPow:
			return precPow
		}
	}
	panic(unknownNode(e))
}

// negated returns the positive counterpart of an expression that prints with
// a leading minus sign.
func negated(e Expr) (Expr, bool) {
	switch x := e.(type) {
	case Num:
		if x.Value < 0 {
			return Num{Value: -x.Value}, true
		}
	case BinOp:
		switch x.Op {
		case OpMul:
			if c, ok := numValue(x.Left); ok && c < 0 {
				if isNegOne(c) {
					return x.Right, true
				}
				return MulOf(N(-c), x.Right), true
			}
			if l, ok := negated(x.Left); ok {
				return MulOf(l, x.Right), true
			}
		case OpDiv:
			if l, ok := negated(x.Left); ok {
				return DivOf(l, x.Right), true
			}
		}
	}
	return nil, false
}

func paren(s string) string { return "(" + s + ")" }

func wrapLeft(child Expr, parent int) string {
	s := child.String()
	if precedence(child) < parent {
		return paren(s)
	}
	return s
}

func wrapRight(child Expr, parent int, strict bool) string {
	s := child.String()
	p := precedence(child)
	if p < parent || (strict && p == parent) || strings.HasPrefix(s, "-") {
		return paren(s)
	}
	return s
}

func (n Num) String() string { return formatNumber(n.Value) }

func (s Sym) String() string { return s.Name }

func (f Func) String() string { return f.Name + "(" + f.Arg.String() + ")" }

func (b BinOp) String() string {
	switch b.Op {
	case OpAdd:
		if pos, ok := negated(b.Right); ok {
			return wrapLeft(b.Left, precAdd) + "-" + wrapRight(pos, precAdd, true)
		}
		return wrapLeft(b.Left, precAdd) + "+" + wrapRight(b.Right, precAdd, false)
	case OpSub:
		if isNum(b.Left, 0) {
			return "-" + wrapRight(b.Right, precMul, false)
		}
		return wrapLeft(b.Left, precAdd) + "-" + wrapRight(b.Right, precAdd, true)
	case OpMul:
		if isNum(b.Left, -1) {
			return "-" + wrapRight(b.Right, precMul, false)
		}
		if isNum(b.Left, 1) {
			return b.Right.String()
		}
		return wrapLeft(b.Left, precMul) + "*" + wrapRight(b.Right, precMul, false)
	case OpDiv:
		return wrapLeft(b.Left, precMul) + "/" + wrapRight(b.Right, precMul, true)
	case OpPow:
		base := b.Left.String()
		if precedence(b.Left) < precPow || strings.HasPrefix(base, "-") {
			base = paren(base)
		}
		return base + "^" + wrapRight(b.Right, precPow, true)
	}
	return "?"
}

// ============================================================
// Canonical strings
// ============================================================

// CanonicalString renders e fully parenthesized with a fixed operator map and
// normalized numbers. Two trees with the same canonical string display the
// same expression.
func CanonicalString(e Expr) string {
	var sb strings.Builder
	writeCanonical(&sb, e)
	return sb.String()
}

func writeCanonical(sb *strings.Builder, e Expr) {
	switch x := e.(type) {
	case Num:
		sb.WriteString(canonicalNumber(x.Value))
	case Sym:
		sb.WriteString(x.Name)
	case BinOp:
		sb.WriteByte('(')
		writeCanonical(sb, x.Left)
		sb.WriteString(x.Op.Symbol())
		writeCanonical(sb, x.Right)
		sb.WriteByte(')')
	case Func:
		sb.WriteString(x.Name)
		sb.WriteByte('(')
		writeCanonical(sb, x.Arg)
		sb.WriteByte(')')
	default:
		panic(unknownNode(e))
	}
}

func canonicalNumber(v float64) string {
	if isIntegral(v) && math.Abs(v) < 1e15 {
		r := math.Round(v)
		if r == 0 {
			return "0"
		}
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', 12, 64)
}

// ============================================================
// LaTeX
// ============================================================

func latexNumber(v float64) string {
	switch v {
	case math.Pi:
		return `\pi`
	case -math.Pi:
		return `-\pi`
	}
	return formatNumber(v)
}

func (n Num) LaTeX() string { return latexNumber(n.Value) }

func (s Sym) LaTeX() string {
	if s.Name == "π" || s.Name == "pi" {
		return `\pi`
	}
	return s.Name
}

func latexWrap(child Expr, parent int) string {
	s := child.LaTeX()
	if precedence(child) < parent {
		return `\left(` + s + `\right)`
	}
	return s
}

func (b BinOp) LaTeX() string {
	switch b.Op {
	case OpAdd:
		if pos, ok := negated(b.Right); ok {
			return b.Left.LaTeX() + " - " + latexWrap(pos, precMul)
		}
		return b.Left.LaTeX() + " + " + b.Right.LaTeX()
	case OpSub:
		if isNum(b.Left, 0) {
			return "-" + latexWrap(b.Right, precMul)
		}
		return b.Left.LaTeX() + " - " + latexWrap(b.Right, precMul)
	case OpMul:
		if isNum(b.Left, -1) {
			return "-" + latexWrap(b.Right, precMul)
		}
		if isNum(b.Left, 1) {
			return b.Right.LaTeX()
		}
		return latexWrap(b.Left, precMul) + ` \cdot ` + latexWrap(b.Right, precMul)
	case OpDiv:
		return `\frac{` + b.Left.LaTeX() + `}{` + b.Right.LaTeX() + `}`
	case OpPow:
		base := b.Left.LaTeX()
		if precedence(b.Left) <= precPow || strings.HasPrefix(base, "-") {
			if _, isFunc := b.Left.(Func); !isFunc {
				base = `\left(` + base + `\right)`
			}
		}
		return base + "^{" + b.Right.LaTeX() + "}"
	}
	return "?"
}

func (f Func) LaTeX() string {
	arg := f.Arg.LaTeX()
	switch f.Name {
	case "sqrt":
		return `\sqrt{` + arg + `}`
	case "abs":
		return `\left|` + arg + `\right|`
	case "exp":
		return `e^{` + arg + `}`
	case "log":
		return `\log_{10}\left(` + arg + `\right)`
	case "sin", "cos", "tan", "cot", "sec", "csc", "ln", "arcsin", "arccos", "arctan":
		return `\` + f.Name + `\left(` + arg + `\right)`
	}
	return `\operatorname{` + f.Name + `}\left(` + arg + `\right)`
}
