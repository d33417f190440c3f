package gosymint_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosymint"
)

// exprParam marshals an expression to the wire shape tool params use.
func exprParam(t *testing.T, e gosymint.Expr) map[string]interface{} {
	t.Helper()
	s, err := gosymint.ToJSON(e)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &m))
	return m
}

// ============================================================
// Tool dispatch
// ============================================================

func TestHandleToolCall_Simplify(t *testing.T) {
	x := gosymint.S("x")
	e := gosymint.AddOf(x, x, x)
	resp := gosymint.HandleToolCall(gosymint.ToolRequest{
		Tool:   "simplify",
		Params: map[string]interface{}{"expr": exprParam(t, e)},
	})
	assert.Empty(t, resp.Error)
	assert.Equal(t, "3*x", resp.String)
}

func TestHandleToolCall_Integrate(t *testing.T) {
	x := gosymint.S("x")
	resp := gosymint.HandleToolCall(gosymint.ToolRequest{
		Tool: "integrate",
		Params: map[string]interface{}{
			"expr": exprParam(t, gosymint.PowOf(x, gosymint.N(2))),
			"var":  "x",
		},
	})
	assert.Empty(t, resp.Error)
	assert.Equal(t, "1/3*x^3", resp.String)
	assert.Equal(t, "resolved", resp.Status)
}

func TestHandleToolCall_IntegrateUnresolved(t *testing.T) {
	x := gosymint.S("x")
	resp := gosymint.HandleToolCall(gosymint.ToolRequest{
		Tool: "integrate",
		Params: map[string]interface{}{
			"expr": exprParam(t, gosymint.ExpOf(gosymint.PowOf(x, gosymint.N(2)))),
			"var":  "x",
		},
	})
	assert.Empty(t, resp.Error)
	assert.Equal(t, "unresolved", resp.Status)
	assert.Equal(t, "integrate(exp(x^2), x)", resp.String)
}

func TestHandleToolCall_IntegrateWithMaxDepth(t *testing.T) {
	x := gosymint.S("x")
	tan25 := exprParam(t, gosymint.PowOf(gosymint.TanOf(x), gosymint.N(25)))

	resp := gosymint.HandleToolCall(gosymint.ToolRequest{
		Tool:   "integrate",
		Params: map[string]interface{}{"expr": tan25, "var": "x"},
	})
	assert.Equal(t, "budget-exceeded", resp.Status)

	resp = gosymint.HandleToolCall(gosymint.ToolRequest{
		Tool: "integrate",
		Params: map[string]interface{}{
			"expr": tan25, "var": "x", "max_depth": float64(30),
		},
	})
	assert.Equal(t, "resolved", resp.Status)
}

func TestHandleToolCall_DefiniteIntegrate(t *testing.T) {
	x := gosymint.S("x")
	resp := gosymint.HandleToolCall(gosymint.ToolRequest{
		Tool: "definite_integrate",
		Params: map[string]interface{}{
			"expr": exprParam(t, gosymint.PowOf(x, gosymint.N(2))),
			"var":  "x",
			"lo":   exprParam(t, gosymint.N(0)),
			"hi":   exprParam(t, gosymint.N(1)),
		},
	})
	assert.Empty(t, resp.Error)
	assert.Equal(t, "1/3", resp.String)
}

func TestHandleToolCall_DefiniteIntegrateDivergent(t *testing.T) {
	x := gosymint.S("x")
	resp := gosymint.HandleToolCall(gosymint.ToolRequest{
		Tool: "definite_integrate",
		Params: map[string]interface{}{
			"expr": exprParam(t, gosymint.PowOf(x, gosymint.N(-1))),
			"var":  "x",
			"lo":   exprParam(t, gosymint.N(-1)),
			"hi":   exprParam(t, gosymint.N(1)),
		},
	})
	assert.Contains(t, resp.Error, "not integrable")
}

func TestHandleToolCall_IntegrateMulti(t *testing.T) {
	x, y := gosymint.S("x"), gosymint.S("y")
	resp := gosymint.HandleToolCall(gosymint.ToolRequest{
		Tool: "integrate_multi",
		Params: map[string]interface{}{
			"expr": exprParam(t, gosymint.MulOf(x, y)),
			"vars": []interface{}{"x", "y"},
		},
	})
	assert.Empty(t, resp.Error)
	assert.Equal(t, "1/4*x^2*y^2", resp.String)
}

func TestHandleToolCall_Substitute(t *testing.T) {
	x := gosymint.S("x")
	resp := gosymint.HandleToolCall(gosymint.ToolRequest{
		Tool: "substitute",
		Params: map[string]interface{}{
			"expr":  exprParam(t, gosymint.PowOf(x, gosymint.N(2))),
			"var":   "x",
			"value": exprParam(t, gosymint.N(4)),
		},
	})
	assert.Empty(t, resp.Error)
	assert.Equal(t, "16", resp.String)
}

func TestHandleToolCall_Diff(t *testing.T) {
	x := gosymint.S("x")
	resp := gosymint.HandleToolCall(gosymint.ToolRequest{
		Tool: "diff",
		Params: map[string]interface{}{
			"expr": exprParam(t, gosymint.SinOf(x)),
			"var":  "x",
		},
	})
	assert.Empty(t, resp.Error)
	assert.Equal(t, "cos(x)", resp.String)
}

func TestHandleToolCall_PolyCoeffs(t *testing.T) {
	x := gosymint.S("x")
	poly := gosymint.AddOf(
		gosymint.MulOf(gosymint.N(3), gosymint.PowOf(x, gosymint.N(2))),
		gosymint.N(1),
	)
	resp := gosymint.HandleToolCall(gosymint.ToolRequest{
		Tool: "poly_coeffs",
		Params: map[string]interface{}{
			"expr": exprParam(t, poly),
			"var":  "x",
		},
	})
	assert.Empty(t, resp.Error)
	assert.Equal(t, "1, 0, 3", resp.String)
}

// ============================================================
// Error paths
// ============================================================

func TestHandleToolCall_UnknownTool(t *testing.T) {
	resp := gosymint.HandleToolCall(gosymint.ToolRequest{Tool: "nope"})
	assert.Contains(t, resp.Error, "unknown tool")
}

func TestHandleToolCall_MissingParam(t *testing.T) {
	resp := gosymint.HandleToolCall(gosymint.ToolRequest{
		Tool:   "integrate",
		Params: map[string]interface{}{"var": "x"},
	})
	assert.Contains(t, resp.Error, "missing param")
}

func TestMCPToolSpec_ListsTools(t *testing.T) {
	spec := gosymint.MCPToolSpec()
	assert.Contains(t, spec, "integrate")
	assert.Contains(t, spec, "definite_integrate")
}
