package symdiff

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Toolbox dispatches tool calls to a shared Deriver.
type Toolbox struct {
	deriver *Deriver
	sample  SampleOptions
}

func NewToolbox(d *Deriver, sample SampleOptions) *Toolbox {
	if d == nil {
		d = NewDeriver()
	}
	return &Toolbox{deriver: d, sample: sample}
}

// HandleToolCall runs req against a default Toolbox.
func HandleToolCall(req ToolRequest) ToolResponse {
	return NewToolbox(nil, SampleOptions{}).Handle(context.Background(), req)
}

// Handle runs one tool call. Failures are reported in ToolResponse.Error.
func (tb *Toolbox) Handle(ctx context.Context, req ToolRequest) ToolResponse {
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }
	simp := tb.deriver.Simplifier()

	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, errors.Errorf("missing param: %s", key)
		}
		switch val := v.(type) {
		case string:
			return Parse(val)
		case map[string]interface{}:
			return FromMap(val)
		}
		return nil, errors.Errorf("param %s must be an expression string or object", key)
	}
	getVar := func() (string, error) {
		v, ok := req.Params["var"]
		if !ok {
			return DefaultVariable, nil
		}
		s, ok := v.(string)
		if !ok {
			return "", errors.New("param var must be a string")
		}
		if s == "" {
			s = DefaultVariable
		}
		return s, ValidateVariable(s)
	}
	getNumber := func(key string, def float64) (float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return def, nil
		}
		f, ok := v.(float64)
		if !ok {
			return 0, errors.Errorf("param %s must be a number", key)
		}
		return f, nil
	}
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: ToMap(e), LaTeX: e.LaTeX(), String: e.String()}
	}
	exprTool := func(transform func(Expr) Expr) ToolResponse {
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(transform(e))
	}

	switch req.Tool {
	case "parse":
		return exprTool(func(e Expr) Expr { return e })

	case "simplify":
		return exprTool(simp.Simplify)

	case "expand":
		return exprTool(simp.Expand)

	case "factor":
		return exprTool(simp.Factor)

	case "to_latex":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: e.LaTeX(), LaTeX: e.LaTeX(), String: e.String()}

	case "free_symbols":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		syms := FreeSymbols(e)
		return ToolResponse{Result: syms, String: strings.Join(syms, ", ")}

	case "derive":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getVar()
		if err != nil {
			return fail(err)
		}
		d := tb.deriver
		if second, _ := req.Params["second"].(bool); second && !d.second {
			cp := *d
			cp.second = true
			d = &cp
		}
		res := d.DeriveExpr(e, v)
		if !res.OK() {
			return ToolResponse{Error: res.Message()}
		}
		out := map[string]interface{}{"variable": v, "first": res.First}
		if res.Second != nil {
			out["second"] = res.Second
		}
		return ToolResponse{Result: out, LaTeX: res.First.Best.LaTeX, String: res.First.Best.Text}

	case "derive_batch":
		raw, ok := req.Params["items"].([]interface{})
		if !ok {
			return ToolResponse{Error: "param items must be an array"}
		}
		items := make([]BatchItem, len(raw))
		for i, r := range raw {
			switch it := r.(type) {
			case string:
				items[i] = BatchItem{Expr: it}
			case map[string]interface{}:
				items[i].Expr, _ = it["expr"].(string)
				items[i].Variable, _ = it["variable"].(string)
			default:
				return ToolResponse{Error: fmt.Sprintf("param items[%d] must be a string or object", i)}
			}
		}
		results, err := tb.deriver.DeriveBatch(items)
		out := make([]map[string]interface{}, len(results))
		lines := make([]string, len(results))
		for i, r := range results {
			out[i] = map[string]interface{}{"input": r.Input, "variable": r.Variable, "ok": r.OK(), "message": r.Message()}
			lines[i] = r.Message()
		}
		resp := ToolResponse{Result: out, String: strings.Join(lines, "\n")}
		if err != nil {
			resp.Error = err.Error()
		}
		return resp

	case "evaluate":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getVar()
		if err != nil {
			return fail(err)
		}
		at, ok := req.Params["at"].(float64)
		if !ok {
			return ToolResponse{Error: "param at must be a number"}
		}
		y := Evaluate(e, v, at)
		return ToolResponse{Result: jsonFloat(y), String: fmt.Sprintf("%.10g", y)}

	case "sample":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getVar()
		if err != nil {
			return fail(err)
		}
		from, to, n, err := sampleRange(getNumber)
		if err != nil {
			return fail(err)
		}
		points, err := Sample(ctx, e, v, from, to, n, tb.sample)
		if err != nil {
			return fail(err)
		}
		out := make([]map[string]interface{}, len(points))
		for i, p := range points {
			out[i] = map[string]interface{}{"x": p.X, "y": jsonFloat(p.Y)}
		}
		return ToolResponse{Result: out, String: fmt.Sprintf("%d points on [%g, %g]", n, from, to)}

	case "verify":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getVar()
		if err != nil {
			return fail(err)
		}
		var df Expr
		if _, given := req.Params["derivative"]; given {
			if df, err = getExpr("derivative"); err != nil {
				return fail(err)
			}
		} else {
			res := tb.deriver.DeriveExpr(e, v)
			if !res.OK() {
				return ToolResponse{Error: res.Message()}
			}
			df = res.First.Best.Expr
		}
		from, to, n, err := sampleRange(getNumber)
		if err != nil {
			return fail(err)
		}
		if n < 2 || from >= to {
			return ToolResponse{Error: "verify: need n >= 2 and from < to"}
		}
		xs := floats.Span(make([]float64, n), from, to)
		check := CheckDerivative(e, df, v, xs)
		return ToolResponse{Result: check, String: fmt.Sprintf("max error %.3g over %d samples", check.MaxError, check.Samples)}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func sampleRange(getNumber func(string, float64) (float64, error)) (from, to float64, n int, err error) {
	if from, err = getNumber("from", -10); err != nil {
		return
	}
	if to, err = getNumber("to", 10); err != nil {
		return
	}
	count, err := getNumber("n", 201)
	if err != nil {
		return
	}
	if math.IsNaN(count) || count > MaxSamples {
		return 0, 0, 0, errors.Errorf("param n must be at most %d", MaxSamples)
	}
	return from, to, int(count), nil
}

// jsonFloat maps NaN and infinities to null, which JSON cannot carry.
func jsonFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	expr := map[string]string{"expr": "string|object"}
	exprVar := map[string]string{"expr": "string|object", "var": "string"}
	sampled := withProps(exprVar, map[string]string{"from": "number", "to": "number", "n": "integer"})
	verify := withProps(sampled, map[string]string{"derivative": "string|object"})
	tools := []map[string]interface{}{
		ts("parse", "Parse expression text into a tree", []string{"expr"}, expr),
		ts("derive", "Derivative forms d/dvar; optional second (bool) adds d²/dvar²", []string{"expr"}, withProps(exprVar, map[string]string{"second": "boolean"})),
		ts("derive_batch", "Derive many inputs. items = [expr | {expr, variable}]", []string{"items"}, map[string]string{"items": "array"}),
		ts("simplify", "Clean and canonicalize an expression", []string{"expr"}, expr),
		ts("expand", "Distribute products and integer powers of sums", []string{"expr"}, expr),
		ts("factor", "Pull the common monomial out of a sum", []string{"expr"}, expr),
		ts("evaluate", "Evaluate at var = at; null outside the domain", []string{"expr", "at"}, withProps(exprVar, map[string]string{"at": "number"})),
		ts("sample", "Sample n points on [from, to] for plotting", []string{"expr"}, sampled),
		ts("verify", "Compare a derivative against finite differences", []string{"expr"}, verify),
		ts("to_latex", "Convert to LaTeX", []string{"expr"}, expr),
		ts("free_symbols", "Return free symbol names", []string{"expr"}, expr),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := sonic.ConfigStd.MarshalIndent(spec, "", "  ")
	return string(b)
}

// withProps returns a copy of base with extra merged in.
func withProps(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
