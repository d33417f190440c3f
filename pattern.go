package gosymint

// ============================================================
// Pattern Matching
// ============================================================

// Env binds pattern names to matched sub-expressions.
type Env map[string]Expr

func (e Env) clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// PatKind constrains what a placeholder may bind.
type PatKind int

const (
	PatAny PatKind = iota
	PatSymbol
	PatInteger
	PatRational
)

// Pat is a placeholder appearing in rule templates. It participates in the
// Expr interface so patterns can be written with the ordinary constructors,
// but it must never survive into a result expression.
type Pat struct {
	name        string
	kind        PatKind
	def         Expr // substituted when the slot is structurally absent
	freeOfVar   bool // binding must not contain the integration variable
	mustHaveVar bool // binding must contain the integration variable
}

func P(name string) *Pat        { return &Pat{name: name} }
func PSym(name string) *Pat     { return &Pat{name: name, kind: PatSymbol} }
func PInt(name string) *Pat     { return &Pat{name: name, kind: PatInteger} }
func PRat(name string) *Pat     { return &Pat{name: name, kind: PatRational} }

// PConst matches only expressions free of the integration variable and
// defaults to def when the slot is absent (e.g. an implicit coefficient 1).
func PConst(name string, def Expr) *Pat {
	return &Pat{name: name, def: def, freeOfVar: true}
}

// PVarDep matches only expressions that contain the integration variable.
func PVarDep(name string) *Pat { return &Pat{name: name, mustHaveVar: true} }

func (p *Pat) Simplify() Expr        { return p }
func (p *Pat) String() string        { return p.name + "_" }
func (p *Pat) LaTeX() string         { return p.name + "\\_" }
func (p *Pat) Sub(string, Expr) Expr { return p }
func (p *Pat) Diff(string) Expr      { return p }
func (p *Pat) Eval() (*Num, bool)    { return nil, false }
func (p *Pat) Equal(other Expr) bool {
	o, ok := other.(*Pat)
	return ok && o.name == p.name && o.kind == p.kind
}
func (p *Pat) exprType() string { return "pat" }
func (p *Pat) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pat", "name": p.name}
}

func (p *Pat) admits(e Expr, varName string) bool {
	switch p.kind {
	case PatSymbol:
		if _, ok := e.(*Sym); !ok {
			return false
		}
	case PatInteger:
		n, ok := e.(*Num)
		if !ok || !n.IsInteger() {
			return false
		}
	case PatRational:
		if _, ok := e.(*Num); !ok {
			return false
		}
	}
	if p.freeOfVar && !FreeOf(e, varName) {
		return false
	}
	if p.mustHaveVar && FreeOf(e, varName) {
		return false
	}
	return true
}

// Match attempts to unify target against pattern. varName is the
// integration variable; env comes pre-seeded with its binding so
// occurrences of the variable symbol in patterns match literally.
func Match(pattern, target Expr, varName string, env Env) (Env, bool) {
	return matchExpr(pattern, target, varName, env)
}

func matchExpr(pattern, target Expr, varName string, env Env) (Env, bool) {
	switch p := pattern.(type) {
	case *Pat:
		if !p.admits(target, varName) {
			return nil, false
		}
		if bound, ok := env[p.name]; ok {
			if bound.Equal(target) {
				return env, true
			}
			return nil, false
		}
		out := env.clone()
		out[p.name] = target
		return out, true
	case *Num:
		if target.Equal(p) {
			return env, true
		}
		return nil, false
	case *Sym:
		if target.Equal(p) {
			return env, true
		}
		return nil, false
	case *Pow:
		t, ok := target.(*Pow)
		if !ok {
			// x matched against pattern x^n with integer default n=1
			if dp, isDef := p.exp.(*Pat); isDef && dp.def != nil {
				env2, ok2 := matchExpr(p.base, target, varName, env)
				if !ok2 {
					return nil, false
				}
				return bindDefault(dp, env2)
			}
			return nil, false
		}
		env2, ok := matchExpr(p.base, t.base, varName, env)
		if !ok {
			return nil, false
		}
		return matchExpr(p.exp, t.exp, varName, env2)
	case *Func:
		t, ok := target.(*Func)
		if !ok || t.name != p.name || len(t.args) != len(p.args) {
			return nil, false
		}
		cur := env
		for i := range p.args {
			cur, ok = matchExpr(p.args[i], t.args[i], varName, cur)
			if !ok {
				return nil, false
			}
		}
		return cur, true
	case *Add:
		return matchOrderless(p.terms, addendsOf(target), varName, env, true)
	case *Mul:
		return matchOrderless(p.factors, factorsOf(target), varName, env, false)
	}
	return nil, false
}

func addendsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

func factorsOf(e Expr) []Expr {
	if m, ok := e.(*Mul); ok {
		return m.factors
	}
	return []Expr{e}
}

func bindDefault(p *Pat, env Env) (Env, bool) {
	if bound, ok := env[p.name]; ok {
		if bound.Equal(p.def) {
			return env, true
		}
		return nil, false
	}
	out := env.clone()
	out[p.name] = p.def
	return out, true
}

// matchOrderless matches a commutative pattern element list against a
// commutative target element list with backtracking. Pattern slots with a
// default (typically a coefficient) may bind to their default value when
// nothing in the target fits them. In a sum (isAdd), leftover target terms
// fail the match; in a product the constraint is the same — a pattern slot
// must absorb everything, so a trailing catch-all placeholder in the
// pattern collects the residue.
func matchOrderless(pats []Expr, targets []Expr, varName string, env Env, isAdd bool) (Env, bool) {
	// concrete pattern elements first (they prune fastest), then
	// constrained placeholders, then unconstrained ones so a trailing
	// catch-all can absorb the residue, defaulted slots last
	var concrete, constrained, loose, defaulted []Expr
	for _, p := range pats {
		pp, isPat := p.(*Pat)
		switch {
		case !isPat:
			concrete = append(concrete, p)
		case pp.def != nil:
			defaulted = append(defaulted, p)
		case pp.kind != PatAny || pp.freeOfVar || pp.mustHaveVar:
			constrained = append(constrained, p)
		default:
			loose = append(loose, p)
		}
	}
	ordered := append(concrete, constrained...)
	ordered = append(ordered, loose...)
	ordered = append(ordered, defaulted...)
	return matchOrderlessRec(ordered, targets, varName, env, isAdd)
}

func matchOrderlessRec(pats []Expr, targets []Expr, varName string, env Env, isAdd bool) (Env, bool) {
	if len(pats) == 0 {
		if len(targets) == 0 {
			return env, true
		}
		return nil, false
	}
	p := pats[0]
	rest := pats[1:]

	// last placeholder absorbs the remaining elements as a group
	if pp, ok := p.(*Pat); ok && len(rest) == 0 && len(targets) != 1 {
		var grouped Expr
		if len(targets) == 0 {
			if pp.def == nil {
				return nil, false
			}
			return bindDefault(pp, env)
		}
		if isAdd {
			grouped = AddOf(cloneExprs(targets)...)
		} else {
			grouped = MulOf(cloneExprs(targets)...)
		}
		return matchExpr(pp, grouped, varName, env)
	}

	for i, t := range targets {
		env2, ok := matchExpr(p, t, varName, env)
		if !ok {
			continue
		}
		remaining := make([]Expr, 0, len(targets)-1)
		remaining = append(remaining, targets[:i]...)
		remaining = append(remaining, targets[i+1:]...)
		if env3, ok2 := matchOrderlessRec(rest, remaining, varName, env2, isAdd); ok2 {
			return env3, true
		}
	}

	// placeholder with a default may step aside without consuming anything
	if pp, ok := p.(*Pat); ok && pp.def != nil {
		if env2, ok2 := bindDefault(pp, env); ok2 {
			return matchOrderlessRec(rest, targets, varName, env2, isAdd)
		}
	}
	return nil, false
}

func cloneExprs(es []Expr) []Expr {
	out := make([]Expr, len(es))
	copy(out, es)
	return out
}

// Instantiate replaces every placeholder in template with its binding from
// env, simplifying as structure collapses. Placeholders with no binding
// fall back to their default; a defaultless unbound placeholder is a rule
// authoring error and panics.
func Instantiate(template Expr, env Env) Expr {
	return instantiateExpr(template, env).Simplify()
}

func instantiateExpr(template Expr, env Env) Expr {
	switch t := template.(type) {
	case *Pat:
		if bound, ok := env[t.name]; ok {
			return bound
		}
		if t.def != nil {
			return t.def
		}
		panic("gosymint: unbound pattern " + t.name)
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, x := range t.terms {
			terms[i] = instantiateExpr(x, env)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(t.factors))
		for i, x := range t.factors {
			factors[i] = instantiateExpr(x, env)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(instantiateExpr(t.base, env), instantiateExpr(t.exp, env))
	case *Func:
		args := make([]Expr, len(t.args))
		for i, x := range t.args {
			args[i] = instantiateExpr(x, env)
		}
		if isHeldFunc(t.name) {
			return &Func{name: t.name, args: args}
		}
		return funcOf(t.name, args...).Simplify()
	}
	return template
}
