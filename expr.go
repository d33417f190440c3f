// Package gosymint is a rule-based symbolic integration engine for Go.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Deterministic simplification and stable output
//   - Closed-form antiderivatives via an ordered, conditional rule corpus
//   - A "give up" convention: when no closed form is found, the original
//     integral is returned as an unevaluated call form, never an error
package gosymint

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num — exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("gosymint: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}
func NFloat(f float64) *Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic("gosymint: NFloat of non-finite value")
	}
	return &Num{val: new(big.Rat).SetFloat64(f)}
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(ratNegOne) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

var (
	ratOne    = new(big.Rat).SetInt64(1)
	ratNegOne = new(big.Rat).SetInt64(-1)
	bigTwo    = big.NewInt(2)
)

// ratSqrt returns the exact square root of a positive rational, when both
// numerator and denominator are perfect squares.
func ratSqrt(r *big.Rat) (*big.Rat, bool) {
	nr := new(big.Int).Sqrt(r.Num())
	if new(big.Int).Mul(nr, nr).Cmp(r.Num()) != 0 {
		return nil, false
	}
	dr := new(big.Int).Sqrt(r.Denom())
	if new(big.Int).Mul(dr, dr).Cmp(r.Denom()) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(nr, dr), true
}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("gosymint: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }
func numCmp(a, b *Num) int  { return a.val.Cmp(b.val) }

// ============================================================
// Sym — symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string  { return s.name }
func (s *Sym) Eval() (*Num, bool) {
	return nil, false
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// E is the natural-exponential base. Powers with this base integrate to
// themselves; see the power-form path of the dispatcher.
func E() *Sym { return S("e") }

// ============================================================
// Inf — signed infinity (appears in definite-integral bound values)
// ============================================================

type Inf struct{ sign int }

func PosInf() *Inf { return &Inf{sign: 1} }
func NegInf() *Inf { return &Inf{sign: -1} }

func (i *Inf) Simplify() Expr { return i }
func (i *Inf) String() string {
	if i.sign < 0 {
		return "-inf"
	}
	return "inf"
}
func (i *Inf) LaTeX() string {
	if i.sign < 0 {
		return "-\\infty"
	}
	return "\\infty"
}
func (i *Inf) Sub(string, Expr) Expr { return i }
func (i *Inf) Diff(string) Expr      { return N(0) }
func (i *Inf) Eval() (*Num, bool)    { return nil, false }
func (i *Inf) Equal(other Expr) bool {
	o, ok := other.(*Inf)
	return ok && o.sign == i.sign
}
func (i *Inf) exprType() string { return "inf" }
func (i *Inf) Sign() int        { return i.sign }
func (i *Inf) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "inf", "sign": i.sign}
}

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	type group struct {
		core  Expr
		coeff *Num
	}
	groups := map[string]*group{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, core := splitCoeff(t)
		key := core.String()
		g, seen := groups[key]
		if !seen {
			g = &group{core: core, coeff: N(0)}
			groups[key] = g
			order = append(order, key)
		}
		g.coeff = numAdd(g.coeff, coeff)
	}
	sort.Strings(order)
	result := []Expr{}
	for _, key := range order {
		g := groups[key]
		if g.coeff.IsZero() {
			continue
		}
		if g.coeff.IsOne() {
			result = append(result, g.core)
		} else {
			result = append(result, MulOf(g.coeff, g.core))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) LaTeX() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.LaTeX()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// splitCoeff separates a leading numeric coefficient from the rest of a term.
func splitCoeff(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	type group struct {
		base Expr
		exp  Expr
	}
	groups := map[string]*group{}
	order := []string{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := asPow(f)
		key := base.String()
		if g, seen := groups[key]; seen {
			g.exp = AddOf(g.exp, exp)
			continue
		}
		groups[key] = &group{base: base, exp: exp}
		order = append(order, key)
	}
	if coeff.IsZero() {
		return N(0)
	}
	sort.Strings(order)
	others := []Expr{}
	for _, key := range order {
		g := groups[key]
		exp := g.exp.Simplify()
		if n, ok := exp.(*Num); ok {
			if n.IsZero() {
				continue
			}
			if n.IsOne() {
				others = append(others, g.base)
				continue
			}
		}
		p := PowOf(g.base, exp)
		if n, ok := p.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		others = append(others, p)
	}
	if len(others) == 0 {
		return coeff
	}
	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

// asPow views any factor as base^exp.
func asPow(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

func (m *Mul) LaTeX() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		if _, isAdd := f.(*Add); isAdd {
			parts[i] = "\\left(" + f.LaTeX() + "\\right)"
		} else {
			parts[i] = f.LaTeX()
		}
	}
	return strings.Join(parts, " ")
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok && en.IsZero() {
		return N(1)
	}
	if en, ok := exp.(*Num); ok && en.IsOne() {
		return base
	}

	// 0^0 and 0^negative stay unevaluated; they classify as indeterminate
	// and infinite respectively during bound evaluation.
	if bn, ok := base.(*Num); ok && bn.IsZero() {
		if en, ok2 := exp.(*Num); ok2 {
			if en.IsZero() || en.IsNegative() {
				return &Pow{base: base, exp: exp}
			}
		}
		return N(0)
	}

	if bn, ok := base.(*Num); ok && bn.IsOne() {
		return N(1)
	}
	if bn, ok := base.(*Num); ok {
		// exact square roots: 4^(1/2) -> 2, (9/4)^(-1/2) -> 2/3
		if en, ok2 := exp.(*Num); ok2 && !en.IsInteger() && bn.IsPositive() {
			if en.val.Denom().Cmp(bigTwo) == 0 {
				if root, exact := ratSqrt(bn.val); exact {
					return PowOf(&Num{val: root}, &Num{val: new(big.Rat).SetInt(en.val.Num())})
				}
			}
		}
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() {
			e := en.val.Num().Int64()
			if e >= 0 && e <= 20 {
				result := N(1)
				for i := int64(0); i < e; i++ {
					result = numMul(result, bn)
				}
				return result
			}
			if e < 0 && e >= -20 {
				result := N(1)
				for i := int64(0); i < -e; i++ {
					result = numMul(result, bn)
				}
				return numRecip(result)
			}
		}
	}
	if inner, ok := base.(*Pow); ok {
		return PowOf(inner.base, MulOf(inner.exp, exp).Simplify())
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	expStr := p.exp.String()
	switch p.base.(type) {
	case *Add, *Mul:
		baseStr = "(" + baseStr + ")"
	}
	switch e := p.exp.(type) {
	case *Add, *Mul:
		expStr = "(" + expStr + ")"
	case *Num:
		if !e.IsInteger() || e.IsNegative() {
			expStr = "(" + expStr + ")"
		}
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if _, expIsNum := p.exp.(*Num); expIsNum {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	if _, baseIsNum := p.base.(*Num); baseIsNum {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if e.IsInteger() {
		ei := e.val.Num().Int64()
		if ei >= -64 && ei <= 64 {
			if b.IsZero() && ei <= 0 {
				return nil, false
			}
			result := N(1)
			neg := ei < 0
			if neg {
				ei = -ei
			}
			for i := int64(0); i < ei; i++ {
				result = numMul(result, b)
			}
			if neg {
				result = numRecip(result)
			}
			return result, true
		}
	}
	bf := b.Float64()
	ef := e.Float64()
	pf := math.Pow(bf, ef)
	if math.IsNaN(pf) || math.IsInf(pf, 0) {
		return nil, false
	}
	return NFloat(pf), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Func — named function applications (n-ary)
// ============================================================

type Func struct {
	name string
	args []Expr
}

func funcOf(name string, args ...Expr) *Func { return &Func{name: name, args: args} }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func CotOf(arg Expr) Expr  { return funcOf("cot", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr   { return funcOf("ln", arg).Simplify() }
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr  { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr { return funcOf("tanh", arg).Simplify() }

// IntegralOf builds the unevaluated integral call form. The dispatcher
// returns this when no closed form is found, and rule templates embed it to
// request recursive integration of a sub-expression.
func IntegralOf(f Expr, varName string) Expr {
	return &Func{name: "integrate", args: []Expr{f, S(varName)}}
}

// ListOf builds a vector of expressions; integration distributes over it.
func ListOf(items ...Expr) Expr {
	return &Func{name: "list", args: items}
}

// heldFuncs do not fold their arguments numerically.
func isHeldFunc(name string) bool { return name == "integrate" || name == "list" }

func (f *Func) Simplify() Expr {
	args := make([]Expr, len(f.args))
	for i, a := range f.args {
		args[i] = a.Simplify()
	}
	if len(f.args) != 1 || isHeldFunc(f.name) {
		return &Func{name: f.name, args: args}
	}
	arg := args[0]
	if n, ok := arg.(*Num); ok {
		if folded, ok2 := foldUnary(f.name, n); ok2 {
			return folded
		}
	}
	switch f.name {
	case "sin", "tan":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cos":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "ln":
		if n2, ok := arg.(*Num); ok && n2.IsOne() {
			return N(0)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" && len(inner.args) == 1 {
			return inner.args[0]
		}
	case "exp":
		if n2, ok := arg.(*Num); ok && n2.IsZero() {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" && len(inner.args) == 1 {
			return inner.args[0]
		}
	case "abs":
		if n2, ok := arg.(*Num); ok {
			if n2.IsNegative() {
				return numNeg(n2)
			}
			return n2
		}
		if m, ok := arg.(*Mul); ok && len(m.factors) >= 1 {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegOne() {
				inner := m.factors[1:]
				if len(inner) == 1 {
					return AbsOf(inner[0])
				}
				return AbsOf(MulOf(inner...))
			}
		}
	}
	return &Func{name: f.name, args: []Expr{arg}}
}

// foldUnary evaluates a unary function at an exact rational point. Functions
// whose value at the point is undefined or irrational in a way that matters
// for bound classification (ln of a non-positive number) refuse to fold.
func foldUnary(name string, n *Num) (Expr, bool) {
	v := n.Float64()
	switch name {
	case "sin":
		return NFloat(math.Sin(v)), true
	case "cos":
		return NFloat(math.Cos(v)), true
	case "tan":
		c := math.Cos(v)
		if c == 0 {
			return nil, false
		}
		return NFloat(math.Tan(v)), true
	case "exp":
		return NFloat(math.Exp(v)), true
	case "ln":
		if n.IsPositive() {
			return NFloat(math.Log(v)), true
		}
		return nil, false
	case "abs":
		return NFloat(math.Abs(v)), true
	case "asin":
		if v >= -1 && v <= 1 {
			return NFloat(math.Asin(v)), true
		}
		return nil, false
	case "acos":
		if v >= -1 && v <= 1 {
			return NFloat(math.Acos(v)), true
		}
		return nil, false
	case "atan":
		return NFloat(math.Atan(v)), true
	case "sinh":
		return NFloat(math.Sinh(v)), true
	case "cosh":
		return NFloat(math.Cosh(v)), true
	case "tanh":
		return NFloat(math.Tanh(v)), true
	}
	return nil, false
}

func (f *Func) String() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.String()
	}
	if f.name == "list" {
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return f.name + "(" + strings.Join(parts, ", ") + ")"
}

func (f *Func) LaTeX() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.LaTeX()
	}
	switch f.name {
	case "sin", "cos", "tan", "cot", "exp", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + parts[0] + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + parts[0] + "\\right)"
	case "acos":
		return "\\arccos\\left(" + parts[0] + "\\right)"
	case "atan":
		return "\\arctan\\left(" + parts[0] + "\\right)"
	case "abs":
		return "\\left|" + parts[0] + "\\right|"
	case "integrate":
		if len(f.args) == 2 {
			return "\\int " + parts[0] + "\\, d" + parts[1]
		}
	case "list":
		return "\\left\\{" + strings.Join(parts, ", ") + "\\right\\}"
	}
	return "\\operatorname{" + f.name + "}\\left(" + strings.Join(parts, ", ") + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	args := make([]Expr, len(f.args))
	for i, a := range f.args {
		args[i] = a.Sub(varName, value)
	}
	return funcOf(f.name, args...).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	switch f.name {
	case "integrate":
		// d/dx integrate(f, x) = f
		if len(f.args) == 2 {
			if v, ok := f.args[1].(*Sym); ok && v.name == varName {
				return f.args[0]
			}
		}
		return funcOf("D["+f.name+"]", f.args...)
	case "list":
		items := make([]Expr, len(f.args))
		for i, a := range f.args {
			items[i] = a.Diff(varName)
		}
		return ListOf(items...)
	}
	if len(f.args) != 1 {
		return funcOf("D["+f.name+"]", f.args...)
	}
	u := f.args[0]
	du := u.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(u)
	case "cos":
		outer = MulOf(N(-1), SinOf(u))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(u), N(2)))
	case "cot":
		outer = MulOf(N(-1), AddOf(N(1), PowOf(CotOf(u), N(2))))
	case "exp":
		outer = ExpOf(u)
	case "ln", "abs":
		// d/dx ln|x| = 1/x, sign factors cancel
		outer = PowOf(u, N(-1))
		if f.name == "abs" {
			outer = signMarker(u)
		}
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(u)
	case "cosh":
		outer = SinhOf(u)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(u), N(2))))
	default:
		return MulOf(funcOf("D["+f.name+"]", u), du)
	}
	return MulOf(outer, du).Simplify()
}

func signMarker(u Expr) Expr { return funcOf("sign", u) }

func (f *Func) Eval() (*Num, bool) {
	if len(f.args) != 1 || isHeldFunc(f.name) {
		return nil, false
	}
	n, ok := f.args[0].Eval()
	if !ok {
		return nil, false
	}
	folded, ok := foldUnary(f.name, n)
	if !ok {
		return nil, false
	}
	fn, ok := folded.(*Num)
	return fn, ok
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	if !ok || f.name != o.name || len(f.args) != len(o.args) {
		return false
	}
	for i := range f.args {
		if !f.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	as := make([]map[string]interface{}, len(f.args))
	for i, a := range f.args {
		as[i] = a.toJSON()
	}
	return map[string]interface{}{"type": "func", "name": f.name, "args": as}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Args() []Expr     { return f.args }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func DiffN(expr Expr, varName string, n int) Expr {
	result := expr
	for i := 0; i < n; i++ {
		result = Diff(result, varName)
	}
	return result
}

func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return expandExpr(AddOf(terms...))
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			exp := n.val.Num().Int64()
			if exp >= 0 && exp <= 10 {
				result := Expr(N(1))
				base := expandExpr(v.base)
				for i := int64(0); i < exp; i++ {
					result = expandExpr(MulOf(result, base))
				}
				return result
			}
		}
		return &Pow{base: expandExpr(v.base), exp: expandExpr(v.exp)}
	}
	return e
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		for _, a := range v.args {
			collectSymbols(a, out)
		}
	}
}

// FreeOf reports whether varName does not occur in e.
func FreeOf(e Expr, varName string) bool {
	_, has := FreeSymbols(e)[varName]
	return !has
}

// ContainsFunc reports whether a function application named name occurs
// anywhere in e. ContainsFunc(e, "integrate") detects unresolved integrals.
func ContainsFunc(e Expr, name string) bool {
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			if ContainsFunc(t, name) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if ContainsFunc(f, name) {
				return true
			}
		}
	case *Pow:
		return ContainsFunc(v.base, name) || ContainsFunc(v.exp, name)
	case *Func:
		if v.name == name {
			return true
		}
		for _, a := range v.args {
			if ContainsFunc(a, name) {
				return true
			}
		}
	}
	return false
}

// containsTrig reports whether e mentions a circular trig function.
func containsTrig(e Expr) bool {
	for _, name := range []string{"sin", "cos", "tan", "cot"} {
		if ContainsFunc(e, name) {
			return true
		}
	}
	return false
}

// ============================================================
// Trig identity cleanup
// ============================================================

// TrigSimplify applies sin²+cos²=1, exp(ln(x))=x, ln(exp(x))=x.
func TrigSimplify(e Expr) Expr {
	return trigSimplifyExpr(e.Simplify()).Simplify()
}

func trigSimplifyExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = trigSimplifyExpr(t)
		}
		return trigFindPythagorean(AddOf(newTerms...))
	case *Mul:
		newFactors := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			newFactors[i] = trigSimplifyExpr(f)
		}
		return MulOf(newFactors...)
	case *Pow:
		return PowOf(trigSimplifyExpr(v.base), v.exp)
	case *Func:
		args := make([]Expr, len(v.args))
		for i, a := range v.args {
			args[i] = trigSimplifyExpr(a)
		}
		return funcOf(v.name, args...).Simplify()
	}
	return e
}

func trigFindPythagorean(e Expr) Expr {
	add, ok := e.(*Add)
	if !ok {
		return e
	}
	type trigTerm struct {
		funcName string
		argStr   string
		coeff    *Num
		idx      int
	}
	var trigTerms []trigTerm
	for idx, t := range add.terms {
		coeff, inner := splitCoeff(t)
		if p, ok2 := inner.(*Pow); ok2 {
			if fn, ok3 := p.base.(*Func); ok3 && len(fn.args) == 1 {
				if en, ok4 := p.exp.(*Num); ok4 && en.IsInteger() && en.val.Num().Int64() == 2 {
					if fn.name == "sin" || fn.name == "cos" {
						trigTerms = append(trigTerms, trigTerm{fn.name, fn.args[0].String(), coeff, idx})
					}
				}
			}
		}
	}
	for i := 0; i < len(trigTerms); i++ {
		for j := i + 1; j < len(trigTerms); j++ {
			ti, tj := trigTerms[i], trigTerms[j]
			if ti.argStr == tj.argStr && ti.funcName != tj.funcName && numCmp(ti.coeff, tj.coeff) == 0 {
				newTerms := []Expr{}
				for idx, t := range add.terms {
					if idx != ti.idx && idx != tj.idx {
						newTerms = append(newTerms, t)
					}
				}
				newTerms = append(newTerms, ti.coeff)
				return AddOf(newTerms...).Simplify()
			}
		}
	}
	return e
}

// DeepSimplify applies repeated simplification+trig passes until stable.
func DeepSimplify(e Expr) Expr {
	prev := ""
	curr := e.Simplify()
	for i := 0; i < 10; i++ {
		str := curr.String()
		if str == prev {
			break
		}
		prev = str
		curr = TrigSimplify(curr).Simplify()
	}
	return curr
}
