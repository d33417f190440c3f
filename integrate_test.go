package gosymint_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosymint"
)

// ============================================================
// Power rule
// ============================================================

func TestIntegrate_PowerRule(t *testing.T) {
	x := gosymint.S("x")
	cases := []struct {
		integrand gosymint.Expr
		want      string
	}{
		{gosymint.PowOf(x, gosymint.N(2)), "1/3*x^3"},
		{gosymint.PowOf(x, gosymint.N(5)), "1/6*x^6"},
		{gosymint.PowOf(x, gosymint.N(-2)), "-1*x^(-1)"},
		{gosymint.SqrtOf(x), "2/3*x^(3/2)"},
		{gosymint.PowOf(x, gosymint.F(3, 2)), "2/5*x^(5/2)"},
		{x, "1/2*x^2"},
	}
	for _, c := range cases {
		res := gosymint.Integrate(c.integrand, "x")
		require.True(t, res.Resolved(), "integrand %s", c.integrand.String())
		assert.Equal(t, c.want, res.Expr.String())
	}
}

func TestIntegrate_ReciprocalIsLog(t *testing.T) {
	res := gosymint.Integrate(gosymint.PowOf(gosymint.S("x"), gosymint.N(-1)), "x")
	require.True(t, res.Resolved())
	assert.Equal(t, "ln(x)", res.Expr.String())
}

func TestIntegrate_Constant(t *testing.T) {
	res := gosymint.Integrate(gosymint.N(7), "x")
	require.True(t, res.Resolved())
	assert.Equal(t, "7*x", res.Expr.String())

	// symbolic constants count too
	res = gosymint.Integrate(gosymint.S("a"), "x")
	require.True(t, res.Resolved())
	assert.Equal(t, "a*x", res.Expr.String())
}

// ============================================================
// Linearity
// ============================================================

func TestIntegrate_ConstantFactorPullsOut(t *testing.T) {
	x := gosymint.S("x")
	f := gosymint.SinOf(x)

	scaled := gosymint.Integrate(gosymint.MulOf(gosymint.N(5), f), "x")
	plain := gosymint.Integrate(f, "x")
	require.True(t, scaled.Resolved())
	require.True(t, plain.Resolved())
	want := gosymint.MulOf(gosymint.N(5), plain.Expr).Simplify()
	assert.True(t, scaled.Expr.Equal(want),
		"got %s want %s", scaled.Expr.String(), want.String())
}

func TestIntegrate_Additivity(t *testing.T) {
	x := gosymint.S("x")
	f := gosymint.PowOf(x, gosymint.N(2))
	g := gosymint.CosOf(x)

	sum := gosymint.Integrate(gosymint.AddOf(f, g), "x")
	fr := gosymint.Integrate(f, "x")
	gr := gosymint.Integrate(g, "x")
	require.True(t, sum.Resolved())
	want := gosymint.AddOf(fr.Expr, gr.Expr).Simplify()
	assert.True(t, sum.Expr.Equal(want),
		"got %s want %s", sum.Expr.String(), want.String())
}

func TestIntegrate_Polynomial(t *testing.T) {
	x := gosymint.S("x")
	// 3x^2 - 2x + 7
	f := gosymint.AddOf(
		gosymint.MulOf(gosymint.N(3), gosymint.PowOf(x, gosymint.N(2))),
		gosymint.MulOf(gosymint.N(-2), x),
		gosymint.N(7),
	)
	res := gosymint.Integrate(f, "x")
	require.True(t, res.Resolved())
	want := gosymint.AddOf(
		gosymint.PowOf(x, gosymint.N(3)),
		gosymint.MulOf(gosymint.N(-1), gosymint.PowOf(x, gosymint.N(2))),
		gosymint.MulOf(gosymint.N(7), x),
	)
	assert.True(t, res.Expr.Equal(want),
		"got %s want %s", res.Expr.String(), want.String())
}

// ============================================================
// Rule corpus: trig, exponentials, logs
// ============================================================

func TestIntegrate_LinearArguments(t *testing.T) {
	x := gosymint.S("x")
	twoX := gosymint.MulOf(gosymint.N(2), x)
	cases := []struct {
		integrand gosymint.Expr
		want      string
	}{
		{gosymint.SinOf(x), "-1*cos(x)"},
		{gosymint.SinOf(twoX), "-1/2*cos(2*x)"},
		{gosymint.CosOf(twoX), "1/2*sin(2*x)"},
		{gosymint.ExpOf(gosymint.MulOf(gosymint.N(3), x)), "1/3*exp(3*x)"},
		{gosymint.ExpOf(gosymint.MulOf(gosymint.N(-1), x)), "-1*exp(-1*x)"},
		{gosymint.SinhOf(x), "cosh(x)"},
		{gosymint.CoshOf(x), "sinh(x)"},
		{gosymint.PowOf(gosymint.CosOf(x), gosymint.N(-2)), "tan(x)"},
		{gosymint.PowOf(gosymint.SinOf(x), gosymint.N(-2)), "-1*cot(x)"},
	}
	for _, c := range cases {
		res := gosymint.Integrate(c.integrand, "x")
		require.True(t, res.Resolved(), "integrand %s", c.integrand.String())
		assert.Equal(t, c.want, res.Expr.String(), "integrand %s", c.integrand.String())
	}
}

func TestIntegrate_GaussianKernel(t *testing.T) {
	x := gosymint.S("x")
	// x*e^(x^2) -> e^(x^2)/2
	f := gosymint.MulOf(x, gosymint.ExpOf(gosymint.PowOf(x, gosymint.N(2))))
	res := gosymint.Integrate(f, "x")
	require.True(t, res.Resolved())
	want := gosymint.MulOf(gosymint.F(1, 2), gosymint.ExpOf(gosymint.PowOf(x, gosymint.N(2))))
	assert.True(t, res.Expr.Equal(want),
		"got %s want %s", res.Expr.String(), want.String())
}

func TestIntegrate_SymbolicBaseExponential(t *testing.T) {
	x := gosymint.S("x")
	// e written as a symbol base rather than exp()
	res := gosymint.Integrate(gosymint.PowOf(gosymint.S("e"), x), "x")
	require.True(t, res.Resolved())
	assert.Equal(t, "e^x", res.Expr.String())
}

func TestIntegrate_SymbolicBasePower(t *testing.T) {
	x, a := gosymint.S("x"), gosymint.S("a")

	// a^x -> a^x/ln(a) for any base free of the variable
	res := gosymint.Integrate(gosymint.PowOf(a, x), "x")
	require.True(t, res.Resolved())
	want := gosymint.MulOf(gosymint.PowOf(a, x),
		gosymint.PowOf(gosymint.LnOf(a), gosymint.N(-1))).Simplify()
	assert.True(t, res.Expr.Equal(want),
		"got %s want %s", res.Expr.String(), want.String())

	// a numeric base still goes through the same form
	res = gosymint.Integrate(gosymint.PowOf(gosymint.N(2), x), "x")
	require.True(t, res.Resolved())

	// a negative numeric base has no real logarithm
	res = gosymint.Integrate(gosymint.PowOf(gosymint.N(-2), x), "x")
	assert.Equal(t, gosymint.StatusUnresolved, res.Status)
}

func TestIntegrate_ShiftedLinearArgument(t *testing.T) {
	// sin(2x+1) matches the same rule as sin(x) via default bindings
	x := gosymint.S("x")
	arg := gosymint.AddOf(gosymint.MulOf(gosymint.N(2), x), gosymint.N(1))
	res := gosymint.Integrate(gosymint.SinOf(arg), "x")
	require.True(t, res.Resolved())
	want := gosymint.MulOf(gosymint.F(-1, 2), gosymint.CosOf(arg))
	assert.True(t, res.Expr.Equal(want),
		"got %s want %s", res.Expr.String(), want.String())
}

func TestIntegrate_TanPowerReduction(t *testing.T) {
	x := gosymint.S("x")
	res := gosymint.Integrate(gosymint.PowOf(gosymint.TanOf(x), gosymint.N(5)), "x")
	require.True(t, res.Resolved())
	// tan^4/4 - tan^2/2 - ln(cos x)
	assert.Equal(t, "-1*ln(cos(x)) + -1/2*tan(x)^2 + 1/4*tan(x)^4", res.Expr.String())
}

func TestIntegrate_Log(t *testing.T) {
	x := gosymint.S("x")
	res := gosymint.Integrate(gosymint.LnOf(x), "x")
	require.True(t, res.Resolved())
	want := gosymint.AddOf(gosymint.MulOf(x, gosymint.LnOf(x)), gosymint.MulOf(gosymint.N(-1), x))
	assert.True(t, res.Expr.Equal(want),
		"got %s want %s", res.Expr.String(), want.String())
}

func TestIntegrate_InverseTrig(t *testing.T) {
	x := gosymint.S("x")
	res := gosymint.Integrate(gosymint.AtanOf(x), "x")
	require.True(t, res.Resolved())
	d := gosymint.Diff(res.Expr, "x").Simplify()
	assert.True(t, d.Equal(gosymint.AtanOf(x)),
		"d/dx of %s = %s", res.Expr.String(), d.String())
}

// ============================================================
// Rational functions
// ============================================================

func TestIntegrate_PartialFractions(t *testing.T) {
	x := gosymint.S("x")
	// 1/(x^2 - x) = 1/x(x-1) -> ln(x-1) - ln(x)
	den := gosymint.AddOf(gosymint.PowOf(x, gosymint.N(2)), gosymint.MulOf(gosymint.N(-1), x))
	res := gosymint.Integrate(gosymint.PowOf(den, gosymint.N(-1)), "x")
	require.True(t, res.Resolved())
	want := gosymint.AddOf(
		gosymint.LnOf(gosymint.AddOf(x, gosymint.N(-1))),
		gosymint.MulOf(gosymint.N(-1), gosymint.LnOf(x)),
	)
	assert.True(t, res.Expr.Equal(want),
		"got %s want %s", res.Expr.String(), want.String())
}

func TestIntegrate_ArcTangentForm(t *testing.T) {
	x := gosymint.S("x")
	// 1/(1 + x^2) -> atan(x)
	f := gosymint.PowOf(gosymint.AddOf(gosymint.N(1), gosymint.PowOf(x, gosymint.N(2))), gosymint.N(-1))
	res := gosymint.Integrate(f, "x")
	require.True(t, res.Resolved())
	assert.Equal(t, "atan(x)", res.Expr.String())
}

func TestIntegrate_RepeatedQuadraticFactor(t *testing.T) {
	x := gosymint.S("x")
	// 1/(x^2+1)^2 -> x/(2(x^2+1)) + atan(x)/2
	q := gosymint.AddOf(gosymint.PowOf(x, gosymint.N(2)), gosymint.N(1))
	res := gosymint.Integrate(gosymint.PowOf(q, gosymint.N(-2)), "x")
	require.True(t, res.Resolved())
	want := gosymint.AddOf(
		gosymint.MulOf(gosymint.F(1, 2), x, gosymint.PowOf(q, gosymint.N(-1))),
		gosymint.MulOf(gosymint.F(1, 2), gosymint.AtanOf(x)),
	)
	assert.True(t, res.Expr.Equal(want),
		"got %s want %s", res.Expr.String(), want.String())
}

func TestIntegrate_ImproperRational(t *testing.T) {
	x := gosymint.S("x")
	// (x^2 + 1)/x = x + 1/x -> x^2/2 + ln(x)
	f := gosymint.MulOf(
		gosymint.AddOf(gosymint.PowOf(x, gosymint.N(2)), gosymint.N(1)),
		gosymint.PowOf(x, gosymint.N(-1)),
	)
	res := gosymint.Integrate(f, "x")
	require.True(t, res.Resolved())
	want := gosymint.AddOf(
		gosymint.MulOf(gosymint.F(1, 2), gosymint.PowOf(x, gosymint.N(2))),
		gosymint.LnOf(x),
	)
	assert.True(t, res.Expr.Equal(want),
		"got %s want %s", res.Expr.String(), want.String())
}

// ============================================================
// Integration by parts
// ============================================================

func TestIntegrate_ByParts(t *testing.T) {
	x := gosymint.S("x")

	// x*e^x -> x*e^x - e^x
	res := gosymint.Integrate(gosymint.MulOf(x, gosymint.ExpOf(x)), "x")
	require.True(t, res.Resolved())
	want := gosymint.AddOf(
		gosymint.MulOf(x, gosymint.ExpOf(x)),
		gosymint.MulOf(gosymint.N(-1), gosymint.ExpOf(x)),
	)
	assert.True(t, res.Expr.Equal(want),
		"got %s want %s", res.Expr.String(), want.String())
}

func TestIntegrate_ByPartsTwice(t *testing.T) {
	x := gosymint.S("x")

	// x^2*sin(x) -> -x^2*cos(x) + 2x*sin(x) + 2cos(x)
	res := gosymint.Integrate(gosymint.MulOf(gosymint.PowOf(x, gosymint.N(2)), gosymint.SinOf(x)), "x")
	require.True(t, res.Resolved())
	want := gosymint.AddOf(
		gosymint.MulOf(gosymint.N(-1), gosymint.PowOf(x, gosymint.N(2)), gosymint.CosOf(x)),
		gosymint.MulOf(gosymint.N(2), x, gosymint.SinOf(x)),
		gosymint.MulOf(gosymint.N(2), gosymint.CosOf(x)),
	)
	assert.True(t, res.Expr.Equal(want),
		"got %s want %s", res.Expr.String(), want.String())
}

// ============================================================
// Differentiation round trips
// ============================================================

func TestIntegrate_DiffRoundTrip(t *testing.T) {
	x := gosymint.S("x")
	integrands := []gosymint.Expr{
		gosymint.PowOf(x, gosymint.N(2)),
		gosymint.PowOf(x, gosymint.N(5)),
		gosymint.SqrtOf(x),
		gosymint.SinOf(gosymint.MulOf(gosymint.N(2), x)),
		gosymint.CosOf(x),
		gosymint.ExpOf(gosymint.MulOf(gosymint.N(3), x)),
		gosymint.LnOf(x),
		gosymint.MulOf(x, gosymint.ExpOf(x)),
		gosymint.PowOf(gosymint.AddOf(gosymint.N(1), gosymint.PowOf(x, gosymint.N(2))), gosymint.N(-1)),
	}
	for _, f := range integrands {
		res := gosymint.Integrate(f, "x")
		require.True(t, res.Resolved(), "integrand %s", f.String())
		d := gosymint.Diff(res.Expr, "x").Simplify()
		assert.True(t, d.Equal(f.Simplify()),
			"d/dx(%s) = %s, want %s", res.Expr.String(), d.String(), f.String())
	}
}

// ============================================================
// Unresolved, budget, cancellation
// ============================================================

func TestIntegrate_UnresolvedKeepsForm(t *testing.T) {
	x := gosymint.S("x")
	f := gosymint.ExpOf(gosymint.PowOf(x, gosymint.N(2)))
	res := gosymint.Integrate(f, "x")
	assert.Equal(t, gosymint.StatusUnresolved, res.Status)
	assert.Equal(t, "integrate(exp(x^2), x)", res.Expr.String())
}

func TestIntegrate_BudgetExceeded(t *testing.T) {
	x := gosymint.S("x")
	f := gosymint.PowOf(gosymint.TanOf(x), gosymint.N(25))

	res := gosymint.Integrate(f, "x")
	assert.Equal(t, gosymint.StatusBudgetExceeded, res.Status)

	// a wider budget finds the reduction chain
	res = gosymint.Integrate(f, "x", gosymint.WithMaxDepth(30))
	require.True(t, res.Resolved())
	d := gosymint.Diff(res.Expr, "x")
	assert.NotNil(t, d)
}

func TestIntegrate_CancelledContext(t *testing.T) {
	goCtx, cancel := context.WithCancel(context.Background())
	cancel()
	x := gosymint.S("x")
	res := gosymint.IntegrateContext(goCtx, gosymint.PowOf(x, gosymint.N(2)), "x")
	assert.Equal(t, gosymint.StatusAborted, res.Status)
	assert.Equal(t, "integrate(x^2, x)", res.Expr.String())
}

func TestIntegrate_InfiniteIntegrandUnresolved(t *testing.T) {
	res := gosymint.Integrate(gosymint.PosInf(), "x")
	assert.Equal(t, gosymint.StatusUnresolved, res.Status)
}

// ============================================================
// Multi-variable and call forms
// ============================================================

func TestIntegrateMulti_Iterated(t *testing.T) {
	x, y := gosymint.S("x"), gosymint.S("y")
	res := gosymint.IntegrateMulti(gosymint.MulOf(x, y), []string{"x", "y"})
	require.True(t, res.Resolved())
	assert.Equal(t, "1/4*x^2*y^2", res.Expr.String())
}

// The variable list folds right to left: the last variable is integrated
// first. With an integrand only the last variable can stop on, the failure
// must surface before the first variable is touched.
func TestIntegrateMulti_LastVariableFirst(t *testing.T) {
	y := gosymint.S("y")
	hard := gosymint.ExpOf(gosymint.PowOf(y, gosymint.N(2)))

	res := gosymint.IntegrateMulti(hard, []string{"x", "y"})
	assert.Equal(t, gosymint.StatusUnresolved, res.Status)
	assert.Equal(t, "integrate(exp(y^2), y)", res.Expr.String())

	res, err := gosymint.IntegrateWith(hard,
		gosymint.ListOf(gosymint.S("x"), y))
	require.NoError(t, err)
	assert.Equal(t, gosymint.StatusUnresolved, res.Status)
	assert.Equal(t, "integrate(exp(y^2), y)", res.Expr.String())
}

func TestIntegrateWith_Forms(t *testing.T) {
	x := gosymint.S("x")
	f := gosymint.PowOf(x, gosymint.N(2))

	// bare symbol: indefinite
	res, err := gosymint.IntegrateWith(f, x)
	require.NoError(t, err)
	assert.Equal(t, "1/3*x^3", res.Expr.String())

	// {x, 0, 1}: definite
	res, err = gosymint.IntegrateWith(f, gosymint.ListOf(x, gosymint.N(0), gosymint.N(1)))
	require.NoError(t, err)
	assert.Equal(t, "1/3", res.Expr.String())

	// {x, y}: iterated
	res, err = gosymint.IntegrateWith(gosymint.MulOf(x, gosymint.S("y")),
		gosymint.ListOf(x, gosymint.S("y")))
	require.NoError(t, err)
	assert.Equal(t, "1/4*x^2*y^2", res.Expr.String())
}

func TestIntegrateWith_RejectsBadSpec(t *testing.T) {
	f := gosymint.PowOf(gosymint.S("x"), gosymint.N(2))
	_, err := gosymint.IntegrateWith(f, gosymint.N(3))
	assert.Error(t, err)

	_, err = gosymint.IntegrateWith(f, gosymint.ListOf(gosymint.N(0), gosymint.N(1)))
	assert.Error(t, err)
}

func TestIntegrate_VectorIntegrand(t *testing.T) {
	x := gosymint.S("x")
	res := gosymint.Integrate(gosymint.ListOf(x, gosymint.CosOf(x)), "x")
	require.True(t, res.Resolved())
	assert.Equal(t, "{1/2*x^2, sin(x)}", res.Expr.String())
}

// ============================================================
// Concurrency
// ============================================================

func TestIntegrate_ConcurrentCallsAreIndependent(t *testing.T) {
	x := gosymint.S("x")
	integrands := []gosymint.Expr{
		gosymint.PowOf(x, gosymint.N(2)),
		gosymint.SinOf(x),
		gosymint.MulOf(x, gosymint.ExpOf(x)),
		gosymint.PowOf(gosymint.TanOf(x), gosymint.N(5)),
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		for _, f := range integrands {
			wg.Add(1)
			go func(f gosymint.Expr) {
				defer wg.Done()
				res := gosymint.Integrate(f, "x")
				if !res.Resolved() {
					t.Errorf("expected %s to resolve, got %v", f.String(), res.Status)
				}
			}(f)
		}
	}
	wg.Wait()
}

// ============================================================
// Status
// ============================================================

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "resolved", gosymint.StatusResolved.String())
	assert.Equal(t, "unresolved", gosymint.StatusUnresolved.String())
	assert.Equal(t, "budget-exceeded", gosymint.StatusBudgetExceeded.String())
	assert.Equal(t, "aborted", fmt.Sprint(gosymint.StatusAborted))
}
