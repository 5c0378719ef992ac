// Package symdiff provides a symbolic differentiation core for Go.
//
// Design goals:
//   - Text in, derivative forms out: tokenize, parse, differentiate,
//     simplify and pick the most readable form
//   - Immutable expression trees; every rewrite builds a new tree
//   - Prioritized rule table, stateless and shareable across goroutines
//   - Deterministic canonical output that re-parses with the same grammar
//   - Numeric evaluation that returns NaN instead of failing
//   - JSON, LaTeX and MCP-ready tool APIs
package symdiff

// ============================================================
// Convenience API
// ============================================================

func String(e Expr) string { return e.String() }

func LaTeX(e Expr) string { return e.LaTeX() }

// Diff2 returns the simplified second derivative of e with respect to v.
func Diff2(e Expr, v string) (Expr, error) { return DiffN(e, v, 2) }

// SimplifyText parses text and returns its simplified serialization.
func SimplifyText(text string) (string, error) {
	e, err := Parse(text)
	if err != nil {
		return "", err
	}
	return Simplify(e).String(), nil
}
