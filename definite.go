package gosymint

import (
	"context"
	"fmt"
)

// ============================================================
// Definite Integration
// ============================================================

// NotIntegrableError reports that a definite integral has no finite value
// over the requested interval: the antiderivative diverges or takes an
// indeterminate form at a bound.
type NotIntegrableError struct {
	Integrand Expr
	VarName   string
	Lo, Hi    Expr
	Reason    string
}

func (e *NotIntegrableError) Error() string {
	return fmt.Sprintf("integral of %s for %s from %s to %s is not integrable: %s",
		e.Integrand.String(), e.VarName, e.Lo.String(), e.Hi.String(), e.Reason)
}

// DefiniteIntegralOf builds the unevaluated definite integral call form.
func DefiniteIntegralOf(f Expr, varName string, lo, hi Expr) Expr {
	return &Func{name: "integrate", args: []Expr{f, ListOf(S(varName), lo, hi)}}
}

// Definite evaluates the integral of f over [lo, hi]. Bounds may be
// numbers, symbols, expressions or signed infinities. When no
// antiderivative is found the Result carries the unevaluated form and a
// non-resolved status with a nil error; a divergent or indeterminate
// integral yields a NotIntegrableError.
func Definite(f Expr, varName string, lo, hi Expr, opts ...Option) (Result, error) {
	return DefiniteContext(context.Background(), f, varName, lo, hi, opts...)
}

// DefiniteContext is Definite with caller-controlled cancellation.
func DefiniteContext(goCtx context.Context, f Expr, varName string, lo, hi Expr, opts ...Option) (Result, error) {
	ctx := newRecCtx(opts...)
	ctx.goCtx = goCtx
	lo = lo.Simplify()
	hi = hi.Simplify()

	anti := integrateRec(f, varName, ctx)
	if anti.Status != StatusResolved {
		return Result{Expr: DefiniteIntegralOf(f, varName, lo, hi), Status: anti.Status}, nil
	}

	hiVal, hiKind := boundValue(anti.Expr, varName, hi)
	loVal, loKind := boundValue(anti.Expr, varName, lo)

	if err := checkBound(f, varName, lo, hi, hiKind, "upper"); err != nil {
		return Result{Expr: DefiniteIntegralOf(f, varName, lo, hi), Status: StatusUnresolved}, err
	}
	if err := checkBound(f, varName, lo, hi, loKind, "lower"); err != nil {
		return Result{Expr: DefiniteIntegralOf(f, varName, lo, hi), Status: StatusUnresolved}, err
	}
	if hiKind == boundUnknown || loKind == boundUnknown {
		return Result{Expr: DefiniteIntegralOf(f, varName, lo, hi), Status: StatusUnresolved}, nil
	}

	diff := AddOf(hiVal, MulOf(N(-1), loVal)).Simplify()
	if k := classifyValue(diff); k == boundIndeterminate {
		return Result{Expr: DefiniteIntegralOf(f, varName, lo, hi), Status: StatusUnresolved},
			&NotIntegrableError{Integrand: f, VarName: varName, Lo: lo, Hi: hi,
				Reason: "indeterminate value after combining bounds"}
	}
	return Result{Expr: Together(diff), Status: StatusResolved}, nil
}

func checkBound(f Expr, varName string, lo, hi Expr, kind boundKind, which string) error {
	switch kind {
	case boundPosInf, boundNegInf:
		return &NotIntegrableError{Integrand: f, VarName: varName, Lo: lo, Hi: hi,
			Reason: "antiderivative diverges at the " + which + " bound"}
	case boundIndeterminate:
		return &NotIntegrableError{Integrand: f, VarName: varName, Lo: lo, Hi: hi,
			Reason: "antiderivative is indeterminate at the " + which + " bound"}
	}
	return nil
}

// ============================================================
// Common-Denominator Combination
// ============================================================

// Together combines a sum of fractions over a common denominator. Terms
// that carry no denominator pass through untouched; the combination never
// expands the denominators it collects.
func Together(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	type frac struct {
		num, den Expr
	}
	fracs := make([]frac, len(add.terms))
	anyDen := false
	for i, t := range add.terms {
		n, d := splitRational(t)
		fracs[i] = frac{num: n, den: d}
		if !isNumEqual(d.Simplify(), 1) {
			anyDen = true
		}
	}
	if !anyDen {
		return e
	}
	// F(b) and F(a) usually share one denominator; keep it intact
	shared := true
	for _, fr := range fracs[1:] {
		if fr.den.String() != fracs[0].den.String() {
			shared = false
			break
		}
	}
	if shared {
		nums := make([]Expr, len(fracs))
		for i, fr := range fracs {
			nums[i] = fr.num
		}
		return MulOf(AddOf(nums...), PowOf(fracs[0].den, N(-1))).Simplify()
	}
	den := Expr(N(1))
	for _, fr := range fracs {
		den = MulOf(den, fr.den)
	}
	terms := make([]Expr, len(fracs))
	for i, fr := range fracs {
		others := Expr(N(1))
		for j, other := range fracs {
			if j != i {
				others = MulOf(others, other.den)
			}
		}
		terms[i] = MulOf(fr.num, others)
	}
	num := Expand(AddOf(terms...))
	return MulOf(num, PowOf(den, N(-1))).Simplify()
}
