package gosymint

import (
	"context"
	"fmt"
)

// ============================================================
// Integration API
// ============================================================

// Status reports how an integration attempt ended. There is no error-based
// control flow in the engine: "no antiderivative found" is an ordinary
// outcome, not an error.
type Status int

const (
	// StatusResolved: a closed-form antiderivative was found.
	StatusResolved Status = iota
	// StatusUnresolved: the engine gave up; Result.Expr holds the
	// unevaluated integral form.
	StatusUnresolved
	// StatusBudgetExceeded: the recursion budget cut the search short; a
	// larger budget (WithMaxDepth) might still succeed.
	StatusBudgetExceeded
	// StatusAborted: the caller's context was cancelled.
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusUnresolved:
		return "unresolved"
	case StatusBudgetExceeded:
		return "budget-exceeded"
	case StatusAborted:
		return "aborted"
	}
	return "unknown"
}

// Result is the outcome of one integration. Expr is always non-nil: the
// antiderivative when resolved, the unevaluated integral form otherwise.
type Result struct {
	Expr   Expr
	Status Status
}

func (r Result) Resolved() bool { return r.Status == StatusResolved }

// Integrate computes an antiderivative of f with respect to varName. The
// constant of integration is omitted. Each call gets a fresh recursion
// context and memo cache, so concurrent calls are independent.
func Integrate(f Expr, varName string, opts ...Option) Result {
	return IntegrateContext(context.Background(), f, varName, opts...)
}

// IntegrateContext is Integrate with caller-controlled cancellation. A
// cancelled context stops the search at the next recursion step and yields
// StatusAborted.
func IntegrateContext(goCtx context.Context, f Expr, varName string, opts ...Option) Result {
	ctx := newRecCtx(opts...)
	ctx.goCtx = goCtx
	return integrateRec(f, varName, ctx)
}

// IntegrateMulti folds the variable list right to left, the way the call
// form integrate(f, {x, y}) does: the last variable is integrated first, so
// IntegrateMulti(f, "x", "y") is Integrate(Integrate(f, y), x). A failure
// surfaces the unresolved integral of the variable it stopped on.
func IntegrateMulti(f Expr, varNames []string, opts ...Option) Result {
	ctx := newRecCtx(opts...)
	cur := f
	for i := len(varNames) - 1; i >= 0; i-- {
		ctx.budgetHit = false
		res := integrateRec(cur, varNames[i], ctx)
		if res.Status != StatusResolved {
			return res
		}
		cur = res.Expr
	}
	return Result{Expr: cur, Status: StatusResolved}
}

// IntegrateWith interprets spec the way the call form does: a bare symbol
// for an indefinite integral, a 3-element list {x, lo, hi} whose first
// element is a symbol for a definite one, and a list of symbols for an
// iterated one. Only definite integrals can produce a non-nil error.
func IntegrateWith(f Expr, spec Expr, opts ...Option) (Result, error) {
	switch s := spec.(type) {
	case *Sym:
		return Integrate(f, s.name, opts...), nil
	case *Func:
		if s.name != "list" || len(s.args) == 0 {
			break
		}
		first, ok := s.args[0].(*Sym)
		if !ok {
			break
		}
		if len(s.args) == 3 {
			return Definite(f, first.name, s.args[1], s.args[2], opts...)
		}
		vars := make([]string, len(s.args))
		for i, a := range s.args {
			v, ok2 := a.(*Sym)
			if !ok2 {
				return Result{Expr: f, Status: StatusUnresolved},
					fmt.Errorf("integration spec list must hold symbols, got %s", a.String())
			}
			vars[i] = v.name
		}
		return IntegrateMulti(f, vars, opts...), nil
	}
	return Result{Expr: f, Status: StatusUnresolved},
		fmt.Errorf("invalid integration spec: %s", spec.String())
}

// ============================================================
// Dispatcher
// ============================================================

// integrateRec is the structural dispatcher. Cheap shape-directed cases go
// first; the rule engine and decomposition strategies run last, behind the
// memo cache and recursion budget.
func integrateRec(f Expr, varName string, ctx *RecCtx) Result {
	if ctx.aborted() {
		return Result{Expr: IntegralOf(f, varName), Status: StatusAborted}
	}
	f = f.Simplify()

	// an integrand with no value has no antiderivative
	if classifyValue(f) != boundFinite {
		return Result{Expr: IntegralOf(f, varName), Status: StatusUnresolved}
	}

	// integration distributes over vectors
	if l, ok := f.(*Func); ok && l.name == "list" {
		items := make([]Expr, len(l.args))
		for i, item := range l.args {
			res := integrateRec(item, varName, ctx)
			if res.Status == StatusAborted {
				return res
			}
			items[i] = res.Expr
		}
		return Result{Expr: ListOf(items...), Status: StatusResolved}
	}

	// constants: c -> c*x
	if FreeOf(f, varName) {
		return resolved(MulOf(f, S(varName)))
	}

	// x -> x^2/2
	if s, ok := f.(*Sym); ok && s.name == varName {
		return resolved(MulOf(F(1, 2), PowOf(S(varName), N(2))))
	}

	// linearity over sums: every term must resolve
	if a, ok := f.(*Add); ok {
		parts := make([]Expr, len(a.terms))
		for i, t := range a.terms {
			res := integrateRec(t, varName, ctx)
			if res.Status != StatusResolved {
				return giveUp(f, varName, ctx)
			}
			parts[i] = res.Expr
		}
		return resolved(AddOf(parts...))
	}

	// pull constant factors out of products
	if m, ok := f.(*Mul); ok {
		var free, dep []Expr
		for _, fac := range m.factors {
			if FreeOf(fac, varName) {
				free = append(free, fac)
			} else {
				dep = append(dep, fac)
			}
		}
		if len(free) > 0 && len(dep) > 0 {
			res := integrateRec(MulOf(dep...), varName, ctx)
			if res.Status != StatusResolved {
				return giveUp(f, varName, ctx)
			}
			return resolved(MulOf(append(free, res.Expr)...))
		}
	}

	// power rule fast path: x^n
	if p, ok := f.(*Pow); ok {
		if base, ok2 := p.base.(*Sym); ok2 && base.name == varName {
			if n, ok3 := p.exp.(*Num); ok3 {
				if n.IsNegOne() {
					return resolved(LnOf(S(varName)))
				}
				np1 := numAdd(n, N(1))
				return resolved(MulOf(numRecip(np1), PowOf(S(varName), np1)))
			}
		}
	}

	if out, ok := integrateByRules(f, varName, ctx); ok {
		return resolved(out)
	}
	return giveUp(f, varName, ctx)
}

func resolved(e Expr) Result {
	return Result{Expr: e.Simplify(), Status: StatusResolved}
}

func giveUp(f Expr, varName string, ctx *RecCtx) Result {
	status := StatusUnresolved
	if ctx.budgetHit {
		status = StatusBudgetExceeded
	}
	if ctx.aborted() {
		status = StatusAborted
	}
	return Result{Expr: IntegralOf(f, varName), Status: status}
}
