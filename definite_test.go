package gosymint_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosymint"
)

// ============================================================
// Finite bounds
// ============================================================

func TestDefinite_PowerRule(t *testing.T) {
	x := gosymint.S("x")
	res, err := gosymint.Definite(gosymint.PowOf(x, gosymint.N(2)), "x",
		gosymint.N(0), gosymint.N(1))
	require.NoError(t, err)
	require.True(t, res.Resolved())
	assert.Equal(t, "1/3", res.Expr.String())
}

func TestDefinite_LinearIntegrand(t *testing.T) {
	x := gosymint.S("x")
	res, err := gosymint.Definite(gosymint.MulOf(gosymint.N(2), x), "x",
		gosymint.N(1), gosymint.N(3))
	require.NoError(t, err)
	require.True(t, res.Resolved())
	assert.Equal(t, "8", res.Expr.String())
}

func TestDefinite_SymbolicBounds(t *testing.T) {
	x := gosymint.S("x")
	a, b := gosymint.S("a"), gosymint.S("b")
	res, err := gosymint.Definite(gosymint.PowOf(x, gosymint.N(2)), "x", a, b)
	require.NoError(t, err)
	require.True(t, res.Resolved())
	// combined over the shared denominator: (b^3 - a^3)/3
	want := gosymint.MulOf(gosymint.F(1, 3), gosymint.AddOf(
		gosymint.PowOf(b, gosymint.N(3)),
		gosymint.MulOf(gosymint.N(-1), gosymint.PowOf(a, gosymint.N(3))),
	))
	assert.True(t, res.Expr.Equal(want),
		"got %s want %s", res.Expr.String(), want.String())
}

func TestDefinite_ExpressionBounds(t *testing.T) {
	x := gosymint.S("x")
	// bounds simplify before substitution: [1+1, 2*2]
	res, err := gosymint.Definite(x, "x",
		gosymint.AddOf(gosymint.N(1), gosymint.N(1)),
		gosymint.MulOf(gosymint.N(2), gosymint.N(2)))
	require.NoError(t, err)
	require.True(t, res.Resolved())
	assert.Equal(t, "6", res.Expr.String())
}

// ============================================================
// Infinite bounds
// ============================================================

func TestDefinite_DecayingExponential(t *testing.T) {
	x := gosymint.S("x")
	f := gosymint.ExpOf(gosymint.MulOf(gosymint.N(-1), x))
	res, err := gosymint.Definite(f, "x", gosymint.N(0), gosymint.PosInf())
	require.NoError(t, err)
	require.True(t, res.Resolved())
	assert.Equal(t, "1", res.Expr.String())
}

func TestDefinite_DivergesAtInfinity(t *testing.T) {
	x := gosymint.S("x")
	res, err := gosymint.Definite(x, "x", gosymint.N(0), gosymint.PosInf())
	require.Error(t, err)
	var nie *gosymint.NotIntegrableError
	require.True(t, errors.As(err, &nie))
	assert.Contains(t, nie.Reason, "diverges")
	assert.False(t, res.Resolved())
}

// ============================================================
// Divergence inside the interval
// ============================================================

func TestDefinite_DivergesAcrossSingularity(t *testing.T) {
	x := gosymint.S("x")
	// 1/x over [-1, 1]: ln(-1) never folds, so the bound value is
	// indeterminate rather than silently wrong
	res, err := gosymint.Definite(gosymint.PowOf(x, gosymint.N(-1)), "x",
		gosymint.N(-1), gosymint.N(1))
	require.Error(t, err)
	var nie *gosymint.NotIntegrableError
	require.True(t, errors.As(err, &nie))
	assert.Equal(t, "x", nie.VarName)
	assert.False(t, res.Resolved())
}

func TestNotIntegrableError_Message(t *testing.T) {
	x := gosymint.S("x")
	_, err := gosymint.Definite(gosymint.PowOf(x, gosymint.N(-1)), "x",
		gosymint.N(-1), gosymint.N(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not integrable")
}

// ============================================================
// Unresolved integrands
// ============================================================

func TestDefinite_UnresolvedKeepsForm(t *testing.T) {
	x := gosymint.S("x")
	f := gosymint.ExpOf(gosymint.PowOf(x, gosymint.N(2)))
	res, err := gosymint.Definite(f, "x", gosymint.N(0), gosymint.N(1))
	require.NoError(t, err)
	assert.Equal(t, gosymint.StatusUnresolved, res.Status)
	assert.Equal(t, "integrate(exp(x^2), {x, 0, 1})", res.Expr.String())
}

// ============================================================
// Together
// ============================================================

func TestTogether_SharedDenominator(t *testing.T) {
	a, b := gosymint.S("a"), gosymint.S("b")
	e := gosymint.AddOf(
		gosymint.MulOf(gosymint.F(1, 3), gosymint.PowOf(b, gosymint.N(3))),
		gosymint.MulOf(gosymint.F(-1, 3), gosymint.PowOf(a, gosymint.N(3))),
	)
	got := gosymint.Together(e)
	want := gosymint.MulOf(gosymint.F(1, 3), gosymint.AddOf(
		gosymint.PowOf(b, gosymint.N(3)),
		gosymint.MulOf(gosymint.N(-1), gosymint.PowOf(a, gosymint.N(3))),
	))
	assert.True(t, got.Equal(want), "got %s want %s", got.String(), want.String())
}

func TestTogether_DistinctDenominators(t *testing.T) {
	x := gosymint.S("x")
	// 1/x + 1/(x+1) -> (2x+1) / (x*(x+1))
	e := gosymint.AddOf(
		gosymint.PowOf(x, gosymint.N(-1)),
		gosymint.PowOf(gosymint.AddOf(x, gosymint.N(1)), gosymint.N(-1)),
	)
	got := gosymint.Together(e)
	num := gosymint.AddOf(gosymint.MulOf(gosymint.N(2), x), gosymint.N(1))
	den := gosymint.MulOf(x, gosymint.AddOf(x, gosymint.N(1)))
	want := gosymint.MulOf(num, gosymint.PowOf(den, gosymint.N(-1)))
	assert.True(t, got.Equal(want), "got %s want %s", got.String(), want.String())
}

func TestTogether_NoDenominatorPassesThrough(t *testing.T) {
	x := gosymint.S("x")
	e := gosymint.AddOf(x, gosymint.N(3))
	assert.True(t, gosymint.Together(e).Equal(e))
}
