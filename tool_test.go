package symdiff_test

import (
	"context"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symdiff"
)

func call(tool string, params map[string]interface{}) symdiff.ToolResponse {
	return symdiff.HandleToolCall(symdiff.ToolRequest{Tool: tool, Params: params})
}

// ============================================================
// Expression tools
// ============================================================

func TestTool_Parse(t *testing.T) {
	resp := call("parse", map[string]interface{}{"expr": "3x^2"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "3*x^2", resp.String)
	assert.Equal(t, "binop", resp.Result.(map[string]interface{})["type"])
}

func TestTool_ParseError(t *testing.T) {
	resp := call("parse", map[string]interface{}{"expr": "(1+2"})
	assert.Contains(t, resp.Error, "unmatched")
}

func TestTool_Simplify(t *testing.T) {
	resp := call("simplify", map[string]interface{}{"expr": "2x+3x"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "5*x", resp.String)
	assert.Equal(t, `5 \cdot x`, resp.LaTeX)
}

func TestTool_ExpandAndFactor(t *testing.T) {
	resp := call("expand", map[string]interface{}{"expr": "(x+1)^2"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "x^2+2*x+1", resp.String)

	resp = call("factor", map[string]interface{}{"expr": "x^2+x"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "x*(x+1)", resp.String)
}

func TestTool_AcceptsExpressionObjects(t *testing.T) {
	expr := symdiff.ToMap(symdiff.MustParse("x^3"))
	resp := call("derive", map[string]interface{}{"expr": expr})
	require.Empty(t, resp.Error)
	assert.Equal(t, "3*x^2", resp.String)
}

func TestTool_FreeSymbols(t *testing.T) {
	resp := call("free_symbols", map[string]interface{}{"expr": "x*y+z"})
	require.Empty(t, resp.Error)
	assert.Equal(t, []string{"x", "y", "z"}, resp.Result)
	assert.Equal(t, "x, y, z", resp.String)
}

func TestTool_ToLaTeX(t *testing.T) {
	resp := call("to_latex", map[string]interface{}{"expr": "sqrt(x)"})
	require.Empty(t, resp.Error)
	assert.Equal(t, `\sqrt{x}`, resp.Result)
}

// ============================================================
// Derivative tools
// ============================================================

func TestTool_Derive(t *testing.T) {
	resp := call("derive", map[string]interface{}{"expr": "x^3", "var": "x"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "3*x^2", resp.String)
	assert.Equal(t, `3 \cdot x^{2}`, resp.LaTeX)

	out := resp.Result.(map[string]interface{})
	assert.NotContains(t, out, "second")
}

func TestTool_DeriveSecond(t *testing.T) {
	resp := call("derive", map[string]interface{}{"expr": "x^3", "second": true})
	require.Empty(t, resp.Error)
	second := resp.Result.(map[string]interface{})["second"].(*symdiff.Forms)
	assert.Equal(t, "6*x", second.Best.Text)
}

func TestTool_DeriveErrors(t *testing.T) {
	resp := call("derive", map[string]interface{}{"expr": "sin 1"})
	assert.True(t, strings.HasPrefix(resp.Error, "parse error"), resp.Error)

	resp = call("derive", map[string]interface{}{"expr": "x", "var": "xy"})
	assert.NotEmpty(t, resp.Error)

	resp = call("derive", map[string]interface{}{"expr": "x", "var": 3.0})
	assert.Equal(t, "param var must be a string", resp.Error)

	resp = call("derive", map[string]interface{}{})
	assert.Equal(t, "missing param: expr", resp.Error)
}

func TestTool_DeriveBatch(t *testing.T) {
	resp := call("derive_batch", map[string]interface{}{
		"items": []interface{}{
			"x^2",
			map[string]interface{}{"expr": "sin(t)", "variable": "t"},
			"(",
		},
	})
	assert.Contains(t, resp.Error, "item 2")
	assert.Equal(t, "2*x\ncos(t)\nMalformed input: unexpected end of expression", resp.String)

	resp = call("derive_batch", map[string]interface{}{"items": "x"})
	assert.Equal(t, "param items must be an array", resp.Error)
}

// ============================================================
// Numeric tools
// ============================================================

func TestTool_Evaluate(t *testing.T) {
	resp := call("evaluate", map[string]interface{}{"expr": "x^2", "at": 3.0})
	require.Empty(t, resp.Error)
	assert.Equal(t, 9.0, resp.Result)
	assert.Equal(t, "9", resp.String)

	resp = call("evaluate", map[string]interface{}{"expr": "ln(x)", "at": -1.0})
	require.Empty(t, resp.Error)
	assert.Nil(t, resp.Result)
	assert.Equal(t, "NaN", resp.String)

	resp = call("evaluate", map[string]interface{}{"expr": "x"})
	assert.Equal(t, "param at must be a number", resp.Error)
}

func TestTool_Sample(t *testing.T) {
	resp := call("sample", map[string]interface{}{"expr": "1/x", "from": -1.0, "to": 1.0, "n": 3.0})
	require.Empty(t, resp.Error)
	points := resp.Result.([]map[string]interface{})
	require.Len(t, points, 3)
	assert.Equal(t, -1.0, points[0]["y"])
	assert.Nil(t, points[1]["y"])
	assert.Equal(t, 1.0, points[2]["y"])

	resp = call("sample", map[string]interface{}{"expr": "x", "from": 1.0, "to": -1.0})
	assert.NotEmpty(t, resp.Error)
}

func TestTool_SampleCountIsBounded(t *testing.T) {
	for _, tool := range []string{"sample", "verify"} {
		resp := call(tool, map[string]interface{}{"expr": "x^2", "from": 0.0, "to": 1.0, "n": 2e9})
		assert.Equal(t, "param n must be at most 10000", resp.Error, tool)
		assert.Nil(t, resp.Result, tool)
	}

	resp := call("sample", map[string]interface{}{"expr": "x", "from": 0.0, "to": 1.0, "n": float64(symdiff.MaxSamples)})
	require.Empty(t, resp.Error)
	assert.Len(t, resp.Result.([]map[string]interface{}), symdiff.MaxSamples)
}

func TestTool_Verify(t *testing.T) {
	resp := call("verify", map[string]interface{}{"expr": "x*sin(x)", "from": 0.5, "to": 2.0, "n": 10.0})
	require.Empty(t, resp.Error)
	check := resp.Result.(symdiff.DerivativeCheck)
	assert.Equal(t, 10, check.Samples)
	assert.Less(t, check.MaxError, 1e-6)

	resp = call("verify", map[string]interface{}{"expr": "x^2", "derivative": "3x", "from": 1.0, "to": 2.0, "n": 5.0})
	require.Empty(t, resp.Error)
	assert.Greater(t, resp.Result.(symdiff.DerivativeCheck).MaxError, 0.1)
}

// ============================================================
// Schema and dispatch
// ============================================================

func TestTool_Unknown(t *testing.T) {
	resp := call("integrate", nil)
	assert.Equal(t, "unknown tool: integrate", resp.Error)
}

func TestMCPToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name        string `json:"name"`
			InputSchema struct {
				Properties map[string]interface{} `json:"properties"`
				Required   []string               `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, sonic.Unmarshal([]byte(symdiff.MCPToolSpec()), &spec))

	props := map[string]map[string]interface{}{}
	for _, tool := range spec.Tools {
		props[tool.Name] = tool.InputSchema.Properties
	}
	for _, want := range []string{"parse", "derive", "derive_batch", "simplify", "expand", "factor", "evaluate", "sample", "verify", "to_latex", "free_symbols", "mcp_spec"} {
		assert.Contains(t, props, want, "missing tool %s", want)
	}

	for tool, keys := range map[string][]string{
		"derive":   {"expr", "var", "second"},
		"evaluate": {"expr", "var", "at"},
		"sample":   {"expr", "var", "from", "to", "n"},
		"verify":   {"expr", "var", "from", "to", "n", "derivative"},
	} {
		assert.Len(t, props[tool], len(keys), tool)
		for _, k := range keys {
			assert.Contains(t, props[tool], k, tool)
		}
	}
}

func TestToolbox_UsesDeriverSettings(t *testing.T) {
	tb := symdiff.NewToolbox(symdiff.NewDeriver(symdiff.WithSecondDerivative(true)), symdiff.SampleOptions{Workers: 2})
	resp := tb.Handle(context.Background(), symdiff.ToolRequest{Tool: "derive", Params: map[string]interface{}{"expr": "x^3"}})
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.Result.(map[string]interface{}), "second")
}
