package gosymint

// ============================================================
// Bound Evaluation
// ============================================================

// boundKind classifies the value of an antiderivative at one bound.
type boundKind int

const (
	// boundFinite: a finite number or a symbolic expression in other
	// variables.
	boundFinite boundKind = iota
	// boundPosInf / boundNegInf: the value grows without bound.
	boundPosInf
	boundNegInf
	// boundIndeterminate: the substitution produced a form with no value,
	// such as ln(-1), 0^0 or inf - inf.
	boundIndeterminate
	// boundUnknown: the engine cannot classify the value (for instance a
	// transcendental function at infinity with no rational closed form).
	boundUnknown
)

// boundValue evaluates antiderivative F at a bound, classifying the
// outcome. Finite and symbolic bounds go through plain substitution;
// infinite bounds through a structural limit evaluation.
func boundValue(F Expr, varName string, bound Expr) (Expr, boundKind) {
	if inf, ok := bound.(*Inf); ok {
		return limitAtInf(F, varName, inf.sign)
	}
	v := F.Sub(varName, bound).Simplify()
	return v, classifyValue(v)
}

// classifyValue inspects a substituted value for forms with no finite
// interpretation.
func classifyValue(v Expr) boundKind {
	if k := scanIndeterminate(v); k != boundFinite {
		return k
	}
	return boundFinite
}

func scanIndeterminate(v Expr) boundKind {
	switch e := v.(type) {
	case *Inf:
		if e.sign > 0 {
			return boundPosInf
		}
		return boundNegInf
	case *Func:
		// ln of a non-positive number never folded, so its presence after
		// substitution means the bound left the domain
		if e.name == "ln" && len(e.args) == 1 {
			if n, ok := e.args[0].(*Num); ok && !n.IsPositive() {
				return boundIndeterminate
			}
		}
		for _, a := range e.args {
			if k := scanIndeterminate(a); k != boundFinite {
				return k
			}
		}
	case *Pow:
		if bn, ok := e.base.(*Num); ok && bn.IsZero() {
			if en, ok2 := e.exp.(*Num); ok2 {
				if en.IsZero() {
					return boundIndeterminate
				}
				if en.IsNegative() {
					return boundPosInf
				}
			}
		}
		if k := scanIndeterminate(e.base); k != boundFinite {
			return k
		}
		return scanIndeterminate(e.exp)
	case *Add:
		pos, neg := false, false
		for _, t := range e.terms {
			switch scanIndeterminate(t) {
			case boundIndeterminate:
				return boundIndeterminate
			case boundPosInf:
				pos = true
			case boundNegInf:
				neg = true
			}
		}
		if pos && neg {
			return boundIndeterminate
		}
		if pos {
			return boundPosInf
		}
		if neg {
			return boundNegInf
		}
	case *Mul:
		for _, f := range e.factors {
			if k := scanIndeterminate(f); k != boundFinite {
				return k
			}
		}
	}
	return boundFinite
}

// ============================================================
// Structural Limits at Infinity
// ============================================================

// limitAtInf computes the limit of e as the variable tends to signed
// infinity, by structural recursion. It handles the shapes that appear in
// the antiderivatives this engine produces: polynomials, powers,
// exponentials and logarithms. Anything else classifies as unknown and the
// definite evaluator gives up rather than guessing.
func limitAtInf(e Expr, varName string, sign int) (Expr, boundKind) {
	switch v := e.(type) {
	case *Num:
		return v, boundFinite
	case *Inf:
		if v.sign > 0 {
			return v, boundPosInf
		}
		return v, boundNegInf
	case *Sym:
		if v.name == varName {
			if sign > 0 {
				return PosInf(), boundPosInf
			}
			return NegInf(), boundNegInf
		}
		return v, boundFinite
	case *Add:
		return limitOfSum(v, varName, sign)
	case *Mul:
		return limitOfProduct(v, varName, sign)
	case *Pow:
		return limitOfPower(v, varName, sign)
	case *Func:
		return limitOfFunc(v, varName, sign)
	}
	return nil, boundUnknown
}

func limitOfSum(a *Add, varName string, sign int) (Expr, boundKind) {
	finite := []Expr{}
	pos, neg := false, false
	for _, t := range a.terms {
		val, k := limitAtInf(t, varName, sign)
		switch k {
		case boundFinite:
			finite = append(finite, val)
		case boundPosInf:
			pos = true
		case boundNegInf:
			neg = true
		default:
			return nil, k
		}
	}
	if pos && neg {
		return nil, boundIndeterminate
	}
	if pos {
		return PosInf(), boundPosInf
	}
	if neg {
		return NegInf(), boundNegInf
	}
	if len(finite) == 0 {
		return N(0), boundFinite
	}
	return AddOf(finite...), boundFinite
}

func limitOfProduct(m *Mul, varName string, sign int) (Expr, boundKind) {
	finite := []Expr{}
	infSign := 0
	for _, f := range m.factors {
		val, k := limitAtInf(f, varName, sign)
		switch k {
		case boundFinite:
			// zero times infinity needs care
			if n, ok := val.(*Num); ok && n.IsZero() {
				if infSign != 0 {
					return nil, boundIndeterminate
				}
				return N(0), boundFinite
			}
			finite = append(finite, val)
		case boundPosInf:
			if infSign == 0 {
				infSign = 1
			}
		case boundNegInf:
			if infSign == 0 {
				infSign = -1
			} else {
				infSign = -infSign
			}
		default:
			return nil, k
		}
	}
	if infSign != 0 {
		// sign of the finite part flips the infinity when it is a
		// negative number; a symbolic finite part has unknown sign
		for _, f := range finite {
			n, ok := f.(*Num)
			if !ok {
				return nil, boundUnknown
			}
			if n.IsZero() {
				return nil, boundIndeterminate
			}
			if n.IsNegative() {
				infSign = -infSign
			}
		}
		if infSign > 0 {
			return PosInf(), boundPosInf
		}
		return NegInf(), boundNegInf
	}
	return MulOf(finite...), boundFinite
}

func limitOfPower(p *Pow, varName string, sign int) (Expr, boundKind) {
	bv, bk := limitAtInf(p.base, varName, sign)
	ev, ek := limitAtInf(p.exp, varName, sign)
	if ek == boundFinite {
		en, isNum := ev.(*Num)
		switch bk {
		case boundFinite:
			return PowOf(bv, ev), boundFinite
		case boundPosInf:
			if !isNum {
				return nil, boundUnknown
			}
			if en.IsZero() {
				return nil, boundIndeterminate
			}
			if en.IsNegative() {
				return N(0), boundFinite
			}
			return PosInf(), boundPosInf
		case boundNegInf:
			if !isNum || !en.IsInteger() {
				return nil, boundUnknown
			}
			if en.IsZero() {
				return nil, boundIndeterminate
			}
			if en.IsNegative() {
				return N(0), boundFinite
			}
			if en.val.Num().Bit(0) == 0 {
				return PosInf(), boundPosInf
			}
			return NegInf(), boundNegInf
		}
		return nil, bk
	}
	// exponential growth/decay: b^x with numeric b
	if bk == boundFinite {
		if bn, ok := bv.(*Num); ok && bn.IsPositive() {
			up := numCmp(bn, N(1)) > 0
			if ek == boundNegInf {
				up = !up
			}
			if ek == boundPosInf {
				// keep direction
			} else if ek != boundNegInf {
				return nil, ek
			}
			if numCmp(bn, N(1)) == 0 {
				return N(1), boundFinite
			}
			if up {
				return PosInf(), boundPosInf
			}
			return N(0), boundFinite
		}
	}
	return nil, boundUnknown
}

func limitOfFunc(f *Func, varName string, sign int) (Expr, boundKind) {
	if len(f.args) != 1 {
		return nil, boundUnknown
	}
	av, ak := limitAtInf(f.args[0], varName, sign)
	switch f.name {
	case "exp":
		switch ak {
		case boundPosInf:
			return PosInf(), boundPosInf
		case boundNegInf:
			return N(0), boundFinite
		case boundFinite:
			return ExpOf(av), boundFinite
		}
	case "ln":
		switch ak {
		case boundPosInf:
			return PosInf(), boundPosInf
		case boundNegInf:
			return nil, boundIndeterminate
		case boundFinite:
			if n, ok := av.(*Num); ok {
				if !n.IsPositive() {
					return nil, boundIndeterminate
				}
			}
			return LnOf(av), boundFinite
		}
	case "tanh":
		switch ak {
		case boundPosInf:
			return N(1), boundFinite
		case boundNegInf:
			return N(-1), boundFinite
		case boundFinite:
			return TanhOf(av), boundFinite
		}
	case "sinh", "cosh":
		switch ak {
		case boundPosInf:
			return PosInf(), boundPosInf
		case boundNegInf:
			if f.name == "cosh" {
				return PosInf(), boundPosInf
			}
			return NegInf(), boundNegInf
		case boundFinite:
			return funcOf(f.name, av).Simplify(), boundFinite
		}
	default:
		if ak == boundFinite {
			return funcOf(f.name, av).Simplify(), boundFinite
		}
	}
	return nil, boundUnknown
}
