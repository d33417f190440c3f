package gosymint

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// ============================================================
// JSON Serialization
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return m, nil
	}

	subObjArray := func(field string) ([]map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]map[string]interface{}, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			out[i] = m
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	subExprs := func(field string) ([]Expr, error) {
		objs, err := subObjArray(field)
		if err != nil {
			return nil, err
		}
		out := make([]Expr, len(objs))
		for i, o := range objs {
			e, err := FromJSON(o)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = e
		}
		return out, nil
	}

	switch typ {
	case "num":
		valAny, ok := data["value"]
		if !ok {
			return nil, fmt.Errorf("num: missing 'value'")
		}
		val, ok := valAny.(string)
		if !ok || val == "" {
			return nil, fmt.Errorf("num: 'value' must be a non-empty string")
		}
		r := new(big.Rat)
		if _, ok := r.SetString(val); !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		return &Num{val: r}, nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "inf":
		sign, ok := data["sign"].(float64)
		if !ok {
			return nil, fmt.Errorf("inf: 'sign' must be a number")
		}
		if sign < 0 {
			return NegInf(), nil
		}
		return PosInf(), nil

	case "add":
		terms, err := subExprs("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subExprs("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		baseM, err := subObj("base")
		if err != nil {
			return nil, err
		}
		expM, err := subObj("exp")
		if err != nil {
			return nil, err
		}
		base, err := FromJSON(baseM)
		if err != nil {
			return nil, fmt.Errorf("pow: base: %w", err)
		}
		exp, err := FromJSON(expM)
		if err != nil {
			return nil, fmt.Errorf("pow: exp: %w", err)
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		args, err := subExprs("args")
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("func: %s needs at least one argument", name)
		}
		return funcOf(name, args...).Simplify(), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

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
	Status string      `json:"status,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func HandleToolCall(req ToolRequest) ToolResponse {
	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return FromJSON(val)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getStrings := func(key string) ([]string, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]string, len(raw))
		for i, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be string", key, i)
			}
			result[i] = s
		}
		return result, nil
	}
	intOpts := func() []Option {
		opts := []Option{}
		if d, ok := req.Params["max_depth"].(float64); ok && d > 0 {
			opts = append(opts, WithMaxDepth(int(d)))
		}
		if q, ok := req.Params["quiet"].(bool); ok {
			opts = append(opts, WithQuiet(q))
		}
		return opts
	}
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: e.toJSON(), LaTeX: LaTeX(e), String: String(e)}
	}
	respondResult := func(res Result) ToolResponse {
		return ToolResponse{
			Result: res.Expr.toJSON(),
			LaTeX:  LaTeX(res.Expr),
			String: String(res.Expr),
			Status: res.Status.String(),
		}
	}

	switch req.Tool {
	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Simplify(e))

	case "deep_simplify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(DeepSimplify(e))

	case "trig_simplify":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(TrigSimplify(e))

	case "expand":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Expand(e))

	case "together":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Together(e))

	case "substitute":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		val, err := getExpr("value")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Sub(e, v, val))

	case "to_latex":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{LaTeX: LaTeX(e), String: String(e)}

	case "free_symbols":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		names := []string{}
		for name := range FreeSymbols(e) {
			names = append(names, name)
		}
		return ToolResponse{Result: names}

	case "diff":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respond(Diff(e, v))

	case "diffn":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		nF, ok := req.Params["n"].(float64)
		if !ok {
			return ToolResponse{Error: "param n must be a number"}
		}
		if nF < 0 {
			return ToolResponse{Error: "param n must be >= 0"}
		}
		return respond(DiffN(e, v, int(nF)))

	case "degree":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return ToolResponse{Result: Degree(e, v)}

	case "poly_coeffs":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		coeffs, ok := PolyCoeffs(e, v)
		if !ok {
			return ToolResponse{Error: "not a univariate polynomial with numeric coefficients"}
		}
		strs := make([]string, len(coeffs))
		for i, c := range coeffs {
			strs[i] = c.String()
		}
		return ToolResponse{Result: strs, String: strings.Join(strs, ", ")}

	case "integrate":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		return respondResult(Integrate(e, v, intOpts()...))

	case "integrate_multi":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		vars, err := getStrings("vars")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		if len(vars) == 0 {
			return ToolResponse{Error: "param vars must not be empty"}
		}
		return respondResult(IntegrateMulti(e, vars, intOpts()...))

	case "definite_integrate":
		e, err := getExpr("expr")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v, err := getString("var")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		lo, err := getExpr("lo")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		hi, err := getExpr("hi")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		res, derr := Definite(e, v, lo, hi, intOpts()...)
		if derr != nil {
			return ToolResponse{Error: derr.Error(), Status: res.Status.String()}
		}
		return respondResult(res)

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec(), String: "MCP tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ============================================================
// Pretty-print and MCP spec
// ============================================================

func PrettyPrint(e Expr) string { return "  " + e.String() + "\n" }

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("simplify", "Simplify a symbolic expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("deep_simplify", "Apply multiple simplification passes including trig identities", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("trig_simplify", "Apply trig identities (sin²+cos²=1, exp(ln(x))=x, etc.)", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("expand", "Algebraically expand expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("together", "Combine a sum of fractions over a common denominator", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("substitute", "Substitute var with value", []string{"expr", "var", "value"}, map[string]string{"expr": "object", "var": "string", "value": "object"}),
		ts("to_latex", "Convert to LaTeX", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("free_symbols", "Return free symbol names", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("diff", "First derivative d/dx", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("diffn", "nth derivative. Requires n (int)", []string{"expr", "var", "n"}, map[string]string{"expr": "object", "var": "string", "n": "integer"}),
		ts("degree", "Polynomial degree in variable", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("poly_coeffs", "Extract polynomial coefficients by degree", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("integrate", "Symbolic antiderivative (rule-based). Optional: max_depth, quiet", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string"}),
		ts("integrate_multi", "Iterated antiderivative over several variables", []string{"expr", "vars"}, map[string]string{"expr": "object", "vars": "array"}),
		ts("definite_integrate", "Symbolic ∫_lo^hi. Bounds are expressions; use type 'inf' for infinite bounds", []string{"expr", "var", "lo", "hi"}, map[string]string{"expr": "object", "var": "string", "lo": "object", "hi": "object"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
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
