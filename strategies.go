package gosymint

// ============================================================
// Decomposition Strategies
// ============================================================

// restIntegrate runs after the rule corpus fails, trying the structural
// decomposition strategies in a fixed order: expansion, partial fractions,
// integration by parts, trig-to-exponential rewriting. The first strategy
// producing a fully resolved antiderivative wins.
func restIntegrate(e Expr, varName string, ctx *RecCtx) (Expr, bool) {
	if out, ok := expandAndMap(e, varName, ctx); ok {
		return out, true
	}
	if !ctx.inApart && isRationalFunction(e, varName) {
		if out, ok := apartIntegrate(e, varName, ctx); ok {
			return out, true
		}
	}
	if out, ok := integrateByParts(e, varName, ctx); ok {
		return out, true
	}
	if !ctx.inTrigExp && containsTrig(e) {
		if out, ok := trigExpIntegrate(e, varName, ctx); ok {
			return out, true
		}
	}
	return nil, false
}

// ------------------------------------------------------------
// Strategy 1: expand, then integrate term-wise
// ------------------------------------------------------------

func expandAndMap(e Expr, varName string, ctx *RecCtx) (Expr, bool) {
	expanded := Expand(e)
	if expanded.String() == e.String() {
		return nil, false
	}
	add, ok := expanded.(*Add)
	if !ok {
		res := integrateRec(expanded, varName, ctx)
		if !res.Resolved() {
			return nil, false
		}
		return res.Expr, true
	}
	parts := make([]Expr, len(add.terms))
	for i, t := range add.terms {
		res := integrateRec(t, varName, ctx)
		if !res.Resolved() {
			return nil, false
		}
		parts[i] = res.Expr
	}
	return AddOf(parts...), true
}

// ------------------------------------------------------------
// Strategy 2: partial-fraction decomposition
// ------------------------------------------------------------

// apartIntegrate decomposes a rational function with rational-number
// coefficients and integrates the pieces in closed form. Linear factors
// are found by the rational-root theorem with deflation for multiplicity;
// an irreducible quadratic remainder, possibly a perfect power, goes
// through the discriminant closed forms and the power-reduction
// recurrence. Any other remainder defeats the strategy.
func apartIntegrate(e Expr, varName string, ctx *RecCtx) (Expr, bool) {
	restore := func() { ctx.inApart = false }
	ctx.inApart = true
	defer restore()

	numE, denE := splitRational(e)
	numC, ok := PolyCoeffs(numE, varName)
	if !ok {
		return nil, false
	}
	denC, ok := PolyCoeffs(denE, varName)
	if !ok || len(denC) < 2 {
		return nil, false
	}

	pieces := []Expr{}

	// improper fraction: divide out the polynomial part
	if len(numC) >= len(denC) {
		quot, rem := polyDivide(numC, denC)
		qRes := integrateRec(polyFromCoeffs(quot, varName), varName, ctx)
		if !qRes.Resolved() {
			return nil, false
		}
		pieces = append(pieces, qRes.Expr)
		numC = rem
		if len(numC) == 1 && numC[0].IsZero() {
			return AddOf(pieces...), true
		}
	}

	lead, factors := factorRationalRoots(denC)
	var quad []*Num
	qmult := 0
	for _, f := range factors {
		if !f.linear {
			if len(f.rem) == 3 {
				quad, qmult = f.rem, 1
				continue
			}
			if q, k, ok2 := perfectQuadPower(f.rem); ok2 {
				quad, qmult = q, k
				continue
			}
			return nil, false
		}
	}

	coeffs, ok := solveDecomposition(numC, lead, factors, quad, qmult)
	if !ok {
		return nil, false
	}

	// integrate each decomposed piece in closed form
	idx := 0
	for _, f := range factors {
		if !f.linear {
			continue
		}
		for k := 1; k <= f.mult; k++ {
			c := coeffs[idx]
			idx++
			if c.IsZero() {
				continue
			}
			linear := AddOf(S(varName), numNeg(f.root)) // x - r
			if k == 1 {
				pieces = append(pieces, MulOf(c, LnOf(linear)))
			} else {
				pieces = append(pieces, MulOf(
					numDiv(c, N(int64(1-k))),
					PowOf(linear, N(int64(1-k)))))
			}
		}
	}
	if quad != nil {
		// numerators B_j*x + C_j over ascending powers of the quadratic
		for j := 1; j <= qmult; j++ {
			cC := coeffs[idx]
			bC := coeffs[idx+1]
			idx += 2
			if cC.IsZero() && bC.IsZero() {
				continue
			}
			piece, ok2 := integrateOverQuadratic(bC, cC, quad, varName, j)
			if !ok2 {
				return nil, false
			}
			pieces = append(pieces, piece)
		}
	}
	return AddOf(pieces...).Simplify(), true
}

// solveDecomposition determines the unknown numerator constants by
// sampling the polynomial identity num/lead = sum(c_u * basis_u) at
// distinct rational points and solving the resulting linear system.
func solveDecomposition(numC []*Num, lead *Num, factors []polyFactor, quad []*Num, qmult int) ([]*Num, bool) {
	var mq []*Num
	if quad != nil {
		mq = monicOf(quad)
	}
	var basis [][]*Num
	for i, f := range factors {
		if !f.linear {
			continue
		}
		for k := 1; k <= f.mult; k++ {
			b := []*Num{N(1)}
			for j, g := range factors {
				if !g.linear {
					continue
				}
				pow := g.mult
				if j == i {
					pow = f.mult - k
				}
				for p := 0; p < pow; p++ {
					b = polyMul(b, []*Num{numNeg(g.root), N(1)})
				}
			}
			for p := 0; p < qmult; p++ {
				b = polyMul(b, mq)
			}
			basis = append(basis, b)
		}
	}
	if quad != nil {
		all := []*Num{N(1)}
		for _, g := range factors {
			if !g.linear {
				continue
			}
			for p := 0; p < g.mult; p++ {
				all = polyMul(all, []*Num{numNeg(g.root), N(1)})
			}
		}
		// constant then linear numerator term over each quadratic power
		for j := 1; j <= qmult; j++ {
			b := all
			for p := 0; p < qmult-j; p++ {
				b = polyMul(b, mq)
			}
			basis = append(basis, b)
			basis = append(basis, polyMul(b, []*Num{N(0), N(1)}))
		}
	}
	n := len(basis)
	if n == 0 {
		return nil, false
	}
	target := make([]*Num, len(numC))
	for i, c := range numC {
		target[i] = numDiv(c, lead)
	}
	a := make([][]*Num, n)
	bvec := make([]*Num, n)
	for row := 0; row < n; row++ {
		pt := samplePoint(row)
		a[row] = make([]*Num, n)
		for col := 0; col < n; col++ {
			a[row][col] = polyEvalAt(basis[col], pt)
		}
		bvec[row] = polyEvalAt(target, pt)
	}
	return solveLinearSystem(a, bvec)
}

func samplePoint(i int) *Num {
	// 0, 1, -1, 2, -2, ...
	if i == 0 {
		return N(0)
	}
	k := int64((i + 1) / 2)
	if i%2 == 1 {
		return N(k)
	}
	return N(-k)
}

func monicOf(p []*Num) []*Num {
	lead := p[len(p)-1]
	out := make([]*Num, len(p))
	for i, c := range p {
		out[i] = numDiv(c, lead)
	}
	return out
}

func polyMul(p, q []*Num) []*Num {
	out := make([]*Num, len(p)+len(q)-1)
	for i := range out {
		out[i] = N(0)
	}
	for i, pc := range p {
		for j, qc := range q {
			out[i+j] = numAdd(out[i+j], numMul(pc, qc))
		}
	}
	return out
}

// integrateOverQuadratic computes the closed form of
// (B*x + C) / (a*x^2 + b*x + c)^pow dx. The B*x part integrates against
// the derivative of the quadratic; the residue falls to quadRecipIntegral.
func integrateOverQuadratic(B, C *Num, quad []*Num, varName string, pow int) (Expr, bool) {
	c, b, a := quad[0], quad[1], quad[2]
	if a.IsZero() {
		return nil, false
	}
	x := S(varName)
	quadE := AddOf(MulOf(a, PowOf(x, N(2))), MulOf(b, x), c).Simplify()
	pieces := []Expr{}
	resC := C
	if !B.IsZero() {
		if pow == 1 {
			pieces = append(pieces, MulOf(numDiv(B, numMul(N(2), a)), LnOf(quadE)))
		} else {
			pieces = append(pieces, MulOf(
				numDiv(B, numMul(numMul(N(2), a), N(int64(1-pow)))),
				PowOf(quadE, N(int64(1-pow)))))
		}
		resC = numSub(C, numDiv(numMul(B, b), numMul(N(2), a)))
	}
	if !resC.IsZero() {
		rec, ok := quadRecipIntegral(quad, varName, pow)
		if !ok {
			return nil, false
		}
		pieces = append(pieces, MulOf(resC, rec))
	}
	if len(pieces) == 0 {
		return N(0), true
	}
	return AddOf(pieces...).Simplify(), true
}

// quadRecipIntegral integrates 1/(a*x^2+b*x+c)^pow: the discriminant
// split at pow 1, the standard reduction recurrence above it.
func quadRecipIntegral(quad []*Num, varName string, pow int) (Expr, bool) {
	c, b, a := quad[0], quad[1], quad[2]
	x := S(varName)
	quadE := AddOf(MulOf(a, PowOf(x, N(2))), MulOf(b, x), c).Simplify()
	deriv := AddOf(MulOf(numMul(N(2), a), x), b).Simplify() // 2a*x + b
	disc := numSub(numMul(b, b), numMul(N(4), numMul(a, c)))

	if disc.IsZero() {
		if pow == 1 {
			return MulOf(N(-2), PowOf(deriv, N(-1))), true
		}
		// quad = a*(x + b/2a)^2, so the power rule applies directly
		shift := AddOf(x, numDiv(b, numMul(N(2), a))).Simplify()
		aPow := N(1)
		for i := 0; i < pow; i++ {
			aPow = numMul(aPow, a)
		}
		coeff := numDiv(N(1), numMul(aPow, N(int64(1-2*pow))))
		return MulOf(coeff, PowOf(shift, N(int64(1-2*pow)))), true
	}
	if pow == 1 {
		if disc.IsNegative() {
			sqrtD := SqrtOf(numNeg(disc))
			return MulOf(
				N(2), PowOf(sqrtD, N(-1)),
				AtanOf(MulOf(deriv, PowOf(sqrtD, N(-1))))), true
		}
		// irrational real roots (a rational root would have factored out)
		sqrtD := SqrtOf(disc)
		return MulOf(
			PowOf(sqrtD, N(-1)),
			LnOf(MulOf(
				AddOf(deriv, MulOf(N(-1), sqrtD)),
				PowOf(AddOf(deriv, sqrtD), N(-1))))), true
	}
	prev, ok := quadRecipIntegral(quad, varName, pow-1)
	if !ok {
		return nil, false
	}
	negD := numNeg(disc) // 4ac - b^2
	denom := numMul(N(int64(pow-1)), negD)
	k1 := numDiv(N(1), denom)
	k2 := numDiv(numMul(N(int64(2*(2*pow-3))), a), denom)
	return AddOf(
		MulOf(k1, deriv, PowOf(quadE, N(int64(1-pow)))),
		MulOf(k2, prev)).Simplify(), true
}

// ------------------------------------------------------------
// Strategy 3: integration by parts
// ------------------------------------------------------------

// integrateByParts splits a product into a polynomial part u and a
// transcendental part dv and applies u*v - Integral(v*du). Both v and the
// residual integral must resolve, otherwise the strategy reports failure.
// Nested attempts draw on their own budget so that repeated differentiation
// of the polynomial part terminates.
func integrateByParts(e Expr, varName string, ctx *RecCtx) (Expr, bool) {
	m, ok := e.(*Mul)
	if !ok {
		return nil, false
	}
	var polyPart, restPart []Expr
	for _, f := range m.factors {
		if IsPolynomial(f, varName) {
			polyPart = append(polyPart, f)
		} else {
			restPart = append(restPart, f)
		}
	}
	if len(polyPart) == 0 || len(restPart) == 0 {
		return nil, false
	}
	if ctx.partsDepth >= ctx.maxParts {
		ctx.budgetHit = true
		return nil, false
	}
	ctx.partsDepth++
	defer func() { ctx.partsDepth-- }()

	u := MulOf(polyPart...)
	dv := MulOf(restPart...)
	vRes := integrateRec(dv, varName, ctx)
	if !vRes.Resolved() {
		return nil, false
	}
	du := Diff(u, varName)
	rest := integrateRec(MulOf(vRes.Expr, du), varName, ctx)
	if !rest.Resolved() {
		return nil, false
	}
	return Expand(AddOf(MulOf(u, vRes.Expr), MulOf(N(-1), rest.Expr))), true
}

// ------------------------------------------------------------
// Strategy 4: trig-to-exponential fallback
// ------------------------------------------------------------

// trigExpIntegrate rewrites circular trig functions in terms of complex
// exponentials over the formal symbol i and retries. The result is a valid
// antiderivative in exponential form; no attempt is made to fold it back
// into trig functions.
func trigExpIntegrate(e Expr, varName string, ctx *RecCtx) (Expr, bool) {
	if !FreeOf(e, "i") {
		// integrand already uses the formal imaginary unit; rewriting
		// would conflate the two
		return nil, false
	}
	converted := trigToExp(e).Simplify()
	if converted.String() == e.String() {
		return nil, false
	}
	// the rewrite is speculative: run it quietly and never let it burn
	// more than the stock budget, restoring both on every exit path
	defer ctx.setQuiet(true)()
	if ctx.maxDepth > DefaultMaxDepth {
		defer ctx.overrideDepth(DefaultMaxDepth)()
	}
	ctx.inTrigExp = true
	defer func() { ctx.inTrigExp = false }()
	res := integrateRec(converted, varName, ctx)
	if !res.Resolved() {
		return nil, false
	}
	return res.Expr, true
}

// trigToExp rewrites sin, cos, tan, cot via Euler's formula.
func trigToExp(e Expr) Expr {
	i := S("i")
	expPair := func(u Expr) (Expr, Expr) {
		return ExpOf(MulOf(i, u)), ExpOf(MulOf(N(-1), i, u))
	}
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for k, t := range v.terms {
			terms[k] = trigToExp(t)
		}
		return AddOf(terms...)
	case *Mul:
		factors := make([]Expr, len(v.factors))
		for k, f := range v.factors {
			factors[k] = trigToExp(f)
		}
		return MulOf(factors...)
	case *Pow:
		return PowOf(trigToExp(v.base), trigToExp(v.exp))
	case *Func:
		if len(v.args) == 1 {
			u := trigToExp(v.args[0])
			pos, neg := expPair(u)
			switch v.name {
			case "sin":
				return MulOf(F(-1, 2), i, AddOf(pos, MulOf(N(-1), neg)))
			case "cos":
				return MulOf(F(1, 2), AddOf(pos, neg))
			case "tan":
				return MulOf(F(-1, 2), i, AddOf(pos, MulOf(N(-1), neg)),
					PowOf(MulOf(F(1, 2), AddOf(pos, neg)), N(-1)))
			case "cot":
				return MulOf(F(1, 2), AddOf(pos, neg),
					PowOf(MulOf(F(-1, 2), i, AddOf(pos, MulOf(N(-1), neg))), N(-1)))
			}
		}
		args := make([]Expr, len(v.args))
		for k, a := range v.args {
			args[k] = trigToExp(a)
		}
		return funcOf(v.name, args...)
	}
	return e
}
