package gosymint

// ============================================================
// Rewrite Rules
// ============================================================

// Cond is a side condition evaluated against the bindings of a matched
// rule before its right-hand side is used.
type Cond func(env Env, varName string) bool

// Rule is one conditional rewrite: when lhs matches the integrand and cond
// holds, the antiderivative is the instantiated rhs. An rhs may embed
// IntegralOf nodes; those are resolved recursively and the rule fails if
// any of them cannot be resolved.
type Rule struct {
	name  string
	lhs   Expr
	rhs   Expr
	rhsFn func(env Env, varName string) (Expr, bool)
	cond  Cond
}

// varP is the distinguished placeholder for the integration variable. It
// is pre-bound before matching, so it matches only the actual variable.
func varP() *Pat { return PSym("x") }

func newRule(name string, lhs, rhs Expr, cond Cond) Rule {
	return Rule{name: name, lhs: lhs, rhs: rhs, cond: cond}
}

// ------------------------------------------------------------
// Condition combinators
// ------------------------------------------------------------

func And(conds ...Cond) Cond {
	return func(env Env, varName string) bool {
		for _, c := range conds {
			if !c(env, varName) {
				return false
			}
		}
		return true
	}
}

func Or(conds ...Cond) Cond {
	return func(env Env, varName string) bool {
		for _, c := range conds {
			if c(env, varName) {
				return true
			}
		}
		return false
	}
}

func Not(c Cond) Cond {
	return func(env Env, varName string) bool { return !c(env, varName) }
}

// FreeQ holds when the binding of name does not contain the variable.
func FreeQ(name string) Cond {
	return func(env Env, varName string) bool {
		b, ok := env[name]
		return ok && FreeOf(b, varName)
	}
}

// IntegerQ holds when the binding of name is an integer.
func IntegerQ(name string) Cond {
	return func(env Env, varName string) bool {
		n, ok := env[name].(*Num)
		return ok && n.IsInteger()
	}
}

// NeQ holds when the binding of name differs from the literal v.
func NeQ(name string, v int64) Cond {
	return func(env Env, varName string) bool {
		b, ok := env[name]
		return ok && !b.Equal(N(v))
	}
}

// EqQ holds when the binding of name equals the literal v.
func EqQ(name string, v int64) Cond {
	return func(env Env, varName string) bool {
		b, ok := env[name]
		return ok && b.Equal(N(v))
	}
}

// NumberQ holds when the binding of name is a literal number.
func NumberQ(name string) Cond {
	return func(env Env, varName string) bool {
		_, ok := env[name].(*Num)
		return ok
	}
}

// GtQ holds when the binding of name is a number greater than v.
func GtQ(name string, v int64) Cond {
	return func(env Env, varName string) bool {
		n, ok := env[name].(*Num)
		return ok && numCmp(n, N(v)) > 0
	}
}

// LtQ holds when the binding of name is a number less than v.
func LtQ(name string, v int64) Cond {
	return func(env Env, varName string) bool {
		n, ok := env[name].(*Num)
		return ok && numCmp(n, N(v)) < 0
	}
}

// ============================================================
// Rule Engine
// ============================================================

// applyRule attempts one rule against one integrand. The returned
// expression has every embedded IntegralOf resolved.
func applyRule(r Rule, e Expr, varName string, ctx *RecCtx) (Expr, bool) {
	env := Env{"x": S(varName)}
	env, ok := Match(r.lhs, e, varName, env)
	if !ok {
		return nil, false
	}
	if r.cond != nil && !r.cond(env, varName) {
		return nil, false
	}
	var out Expr
	if r.rhsFn != nil {
		out, ok = r.rhsFn(env, varName)
		if !ok {
			return nil, false
		}
		out = out.Simplify()
	} else {
		out = Instantiate(r.rhs, env)
	}
	out, ok = resolveNestedIntegrals(out, varName, ctx)
	if !ok {
		return nil, false
	}
	if !ctx.quiet {
		ctx.log.Debug().Str("rule", r.name).Str("expr", e.String()).Msg("rule applied")
	}
	return out, true
}

// resolveNestedIntegrals integrates every IntegralOf node embedded in e.
// Fails if any sub-integral does not resolve, so a rule whose right-hand
// side leaves residual integrals counts as not matching.
func resolveNestedIntegrals(e Expr, varName string, ctx *RecCtx) (Expr, bool) {
	if !ContainsFunc(e, "integrate") {
		return e, true
	}
	out, ok := mapIntegralNodes(e, varName, ctx)
	if !ok {
		return nil, false
	}
	out = out.Simplify()
	if ContainsFunc(out, "integrate") {
		return nil, false
	}
	return out, true
}

func mapIntegralNodes(e Expr, varName string, ctx *RecCtx) (Expr, bool) {
	switch v := e.(type) {
	case *Func:
		if v.name == "integrate" && len(v.args) == 2 {
			sym, ok := v.args[1].(*Sym)
			if !ok || sym.name != varName {
				return nil, false
			}
			res := integrateRec(v.args[0], varName, ctx)
			if res.Status != StatusResolved {
				return nil, false
			}
			return res.Expr, true
		}
		args := make([]Expr, len(v.args))
		for i, a := range v.args {
			na, ok := mapIntegralNodes(a, varName, ctx)
			if !ok {
				return nil, false
			}
			args[i] = na
		}
		return funcOf(v.name, args...), true
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			nt, ok := mapIntegralNodes(t, varName, ctx)
			if !ok {
				return nil, false
			}
			terms[i] = nt
		}
		return &Add{terms: terms}, true
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			nf, ok := mapIntegralNodes(f, varName, ctx)
			if !ok {
				return nil, false
			}
			factors[i] = nf
		}
		return &Mul{factors: factors}, true
	case *Pow:
		nb, ok := mapIntegralNodes(v.base, varName, ctx)
		if !ok {
			return nil, false
		}
		ne, ok := mapIntegralNodes(v.exp, varName, ctx)
		if !ok {
			return nil, false
		}
		return &Pow{base: nb, exp: ne}, true
	}
	return e, true
}

// applyRuleSet walks the corpus in order and returns the first successful
// rewrite. Rule order is significant: specific forms precede general ones,
// so the first match is the intended one.
func applyRuleSet(rules []Rule, e Expr, varName string, ctx *RecCtx) (Expr, bool) {
	for _, r := range rules {
		if out, ok := applyRule(r, e, varName, ctx); ok {
			return out, true
		}
	}
	return nil, false
}

// integrateByRules is the cached core of the engine: the rule corpus first,
// then the decomposition strategies.
func integrateByRules(e Expr, varName string, ctx *RecCtx) (Expr, bool) {
	return integrateWithRules(e, varName, ctx, integrationRules())
}

// integrateWithRules runs the engine against an explicit rule corpus. The
// memo cache doubles as a cycle guard — a pending entry means this exact
// integrand is already being integrated further up the stack, and
// recursing into it again would loop.
func integrateWithRules(e Expr, varName string, ctx *RecCtx, rules []Rule) (Expr, bool) {
	key := e.String() + "|" + varName
	state, cached, cachedOK := ctx.cache.lookup(key)
	switch state {
	case cachePending:
		ctx.debugf("cycle detected, pruning branch", e)
		return nil, false
	case cacheResolved:
		return cached, cachedOK
	}
	if ctx.aborted() {
		return nil, false
	}
	if !ctx.enter() {
		return nil, false
	}
	ctx.cache.markPending(key)
	out, ok := applyRuleSet(rules, e, varName, ctx)
	if !ok {
		out, ok = restIntegrate(e, varName, ctx)
	}
	if !ok && ctx.budgetHit {
		// an inner attempt ran out of budget; a wider budget might still
		// resolve this integrand, so do not cache the failure
		ctx.cache.clearPending(key)
		ctx.leave()
		return nil, false
	}
	ctx.cache.resolve(key, out, ok)
	ctx.leave()
	return out, ok
}
