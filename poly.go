package gosymint

import "math/big"

// ============================================================
// Polynomial Utilities
// ============================================================

// IsPolynomial reports whether e is a polynomial in varName: sums and
// products of non-negative integer powers of the variable, with
// coefficients free of the variable.
func IsPolynomial(e Expr, varName string) bool {
	switch v := e.(type) {
	case *Num:
		return true
	case *Sym:
		return true
	case *Inf:
		return false
	case *Add:
		for _, t := range v.terms {
			if !IsPolynomial(t, varName) {
				return false
			}
		}
		return true
	case *Mul:
		for _, f := range v.factors {
			if !IsPolynomial(f, varName) {
				return false
			}
		}
		return true
	case *Pow:
		if FreeOf(v, varName) {
			return true
		}
		n, ok := v.exp.(*Num)
		if !ok || !n.IsInteger() || n.IsNegative() {
			return false
		}
		return IsPolynomial(v.base, varName)
	case *Func:
		return FreeOf(v, varName)
	}
	return false
}

// Degree returns the degree of a polynomial in varName, or -1 if the
// expression is not polynomial in varName.
func Degree(e Expr, varName string) int {
	if !IsPolynomial(e, varName) {
		return -1
	}
	coeffs, ok := PolyCoeffs(e, varName)
	if !ok {
		return -1
	}
	return len(coeffs) - 1
}

// PolyCoeffs extracts numeric coefficients [c0, c1, ..., cn] of a
// univariate polynomial with rational coefficients, lowest degree first.
// Returns false if the expression is not such a polynomial.
func PolyCoeffs(e Expr, varName string) ([]*Num, bool) {
	expanded := Expand(e.Simplify())
	terms := []Expr{expanded}
	if a, ok := expanded.(*Add); ok {
		terms = a.terms
	}
	coeffMap := map[int]*Num{}
	maxDeg := 0
	for _, t := range terms {
		deg, coeff, ok := monomialParts(t, varName)
		if !ok {
			return nil, false
		}
		if prev, exists := coeffMap[deg]; exists {
			coeffMap[deg] = numAdd(prev, coeff)
		} else {
			coeffMap[deg] = coeff
		}
		if deg > maxDeg {
			maxDeg = deg
		}
	}
	coeffs := make([]*Num, maxDeg+1)
	for i := range coeffs {
		if c, ok := coeffMap[i]; ok {
			coeffs[i] = c
		} else {
			coeffs[i] = N(0)
		}
	}
	for len(coeffs) > 1 && coeffs[len(coeffs)-1].IsZero() {
		coeffs = coeffs[:len(coeffs)-1]
	}
	return coeffs, true
}

// monomialParts decomposes c*x^d with numeric c.
func monomialParts(t Expr, varName string) (int, *Num, bool) {
	switch v := t.(type) {
	case *Num:
		return 0, v, true
	case *Sym:
		if v.name == varName {
			return 1, N(1), true
		}
		return 0, nil, false
	case *Pow:
		base, ok := v.base.(*Sym)
		if !ok || base.name != varName {
			return 0, nil, false
		}
		n, ok := v.exp.(*Num)
		if !ok || !n.IsInteger() || n.IsNegative() {
			return 0, nil, false
		}
		return int(n.val.Num().Int64()), N(1), true
	case *Mul:
		coeff := N(1)
		deg := 0
		for _, f := range v.factors {
			fd, fc, ok := monomialParts(f, varName)
			if !ok {
				return 0, nil, false
			}
			deg += fd
			coeff = numMul(coeff, fc)
		}
		return deg, coeff, true
	}
	return 0, nil, false
}

// polyFromCoeffs rebuilds sum(coeffs[i]*x^i) as an expression.
func polyFromCoeffs(coeffs []*Num, varName string) Expr {
	terms := []Expr{}
	for i, c := range coeffs {
		if c.IsZero() {
			continue
		}
		switch i {
		case 0:
			terms = append(terms, c)
		case 1:
			terms = append(terms, MulOf(c, S(varName)))
		default:
			terms = append(terms, MulOf(c, PowOf(S(varName), N(int64(i)))))
		}
	}
	if len(terms) == 0 {
		return N(0)
	}
	return AddOf(terms...)
}

// polyDivide performs polynomial long division: num = quot*den + rem with
// deg(rem) < deg(den). Coefficients lowest degree first.
func polyDivide(num, den []*Num) (quot, rem []*Num) {
	rem = make([]*Num, len(num))
	copy(rem, num)
	dd := len(den) - 1
	for len(den) > 1 && den[len(den)-1].IsZero() {
		den = den[:len(den)-1]
		dd = len(den) - 1
	}
	if len(rem) <= dd {
		return []*Num{N(0)}, rem
	}
	quot = make([]*Num, len(rem)-dd)
	for i := range quot {
		quot[i] = N(0)
	}
	lead := den[dd]
	for len(rem)-1 >= dd {
		rd := len(rem) - 1
		if rem[rd].IsZero() {
			if rd == 0 {
				break
			}
			rem = rem[:rd]
			continue
		}
		c := numDiv(rem[rd], lead)
		shift := rd - dd
		quot[shift] = numAdd(quot[shift], c)
		for i := 0; i <= dd; i++ {
			rem[shift+i] = numSub(rem[shift+i], numMul(c, den[i]))
		}
		rem = rem[:rd]
		if len(rem) == 0 {
			rem = []*Num{N(0)}
			break
		}
	}
	for len(rem) > 1 && rem[len(rem)-1].IsZero() {
		rem = rem[:len(rem)-1]
	}
	return quot, rem
}

// polyEvalAt evaluates a coefficient vector at a rational point.
func polyEvalAt(coeffs []*Num, x *Num) *Num {
	acc := N(0)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = numAdd(numMul(acc, x), coeffs[i])
	}
	return acc
}

// ============================================================
// Rational-Root Factoring
// ============================================================

// polyFactor is one factor of a denominator: either a linear factor
// (x - root)^mult, or an irreducible (over the rationals' root search)
// remainder polynomial of degree >= 2 with multiplicity 1.
type polyFactor struct {
	root   *Num   // set for linear factors
	rem    []*Num // set for the non-linear remainder, lowest degree first
	mult   int
	linear bool
}

// factorRationalRoots splits a polynomial into linear factors found by the
// rational-root theorem (with deflation for repeated roots) plus an
// optional remainder polynomial carrying whatever did not split. The
// leading coefficient is returned separately so the product of the factors
// is monic.
func factorRationalRoots(coeffs []*Num) (lead *Num, factors []polyFactor) {
	work := make([]*Num, len(coeffs))
	copy(work, coeffs)
	for len(work) > 1 && work[len(work)-1].IsZero() {
		work = work[:len(work)-1]
	}
	lead = work[len(work)-1]
	for i := range work {
		work[i] = numDiv(work[i], lead)
	}
	roots := map[string]*polyFactor{}
	order := []*polyFactor{}
	for len(work) > 1 {
		r, found := findRationalRoot(work)
		if !found {
			break
		}
		key := r.String()
		if f, seen := roots[key]; seen {
			f.mult++
		} else {
			f := &polyFactor{root: r, mult: 1, linear: true}
			roots[key] = f
			order = append(order, f)
		}
		work = deflate(work, r)
	}
	for _, f := range order {
		factors = append(factors, *f)
	}
	if len(work) > 1 {
		factors = append(factors, polyFactor{rem: work, mult: 1})
	}
	return lead, factors
}

// findRationalRoot searches candidates p/q with p | constant term and
// q | leading coefficient.
func findRationalRoot(coeffs []*Num) (*Num, bool) {
	// common denominator -> integer coefficients
	lcm := big.NewInt(1)
	for _, c := range coeffs {
		d := c.val.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Div(new(big.Int).Mul(lcm, d), g)
	}
	ints := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		scaled := new(big.Rat).Mul(c.val, new(big.Rat).SetInt(lcm))
		ints[i] = new(big.Int).Set(scaled.Num())
	}
	lo := 0
	for lo < len(ints) && ints[lo].Sign() == 0 {
		lo++
	}
	if lo > 0 {
		// x = 0 is a root
		return N(0), true
	}
	c0 := new(big.Int).Abs(ints[0])
	cn := new(big.Int).Abs(ints[len(ints)-1])
	for _, p := range divisorsUpTo(c0, 1000) {
		for _, q := range divisorsUpTo(cn, 1000) {
			for _, sign := range []int64{1, -1} {
				cand := &Num{val: new(big.Rat).SetFrac(new(big.Int).Mul(p, big.NewInt(sign)), q)}
				if polyEvalAt(coeffs, cand).IsZero() {
					return cand, true
				}
			}
		}
	}
	return nil, false
}

func divisorsUpTo(n *big.Int, limit int64) []*big.Int {
	out := []*big.Int{}
	if n.Sign() == 0 {
		return []*big.Int{big.NewInt(1)}
	}
	for d := int64(1); d <= limit; d++ {
		bd := big.NewInt(d)
		if new(big.Int).Mod(n, bd).Sign() == 0 {
			out = append(out, bd)
		}
		if bd.Cmp(n) >= 0 {
			break
		}
	}
	return out
}

// deflate divides by (x - r), assuming r is a root.
func deflate(coeffs []*Num, r *Num) []*Num {
	n := len(coeffs) - 1
	out := make([]*Num, n)
	carry := coeffs[n]
	for i := n - 1; i >= 0; i-- {
		out[i] = carry
		carry = numAdd(coeffs[i], numMul(carry, r))
	}
	return out
}

// ============================================================
// Rational Linear Algebra
// ============================================================

// solveLinearSystem solves A·x = b over the rationals by Gaussian
// elimination with partial pivoting. Returns false for singular or
// inconsistent systems.
func solveLinearSystem(a [][]*Num, b []*Num) ([]*Num, bool) {
	n := len(a)
	if n == 0 || len(b) != n {
		return nil, false
	}
	m := make([][]*Num, n)
	for i := range m {
		if len(a[i]) != n {
			return nil, false
		}
		m[i] = make([]*Num, n+1)
		copy(m[i], a[i])
		m[i][n] = b[i]
	}
	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if !m[row][col].IsZero() {
				pivot = row
				break
			}
		}
		if pivot < 0 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		inv := numRecip(m[col][col])
		for j := col; j <= n; j++ {
			m[col][j] = numMul(m[col][j], inv)
		}
		for row := 0; row < n; row++ {
			if row == col || m[row][col].IsZero() {
				continue
			}
			factor := m[row][col]
			for j := col; j <= n; j++ {
				m[row][j] = numSub(m[row][j], numMul(factor, m[col][j]))
			}
		}
	}
	x := make([]*Num, n)
	for i := range x {
		x[i] = m[i][n]
	}
	return x, true
}

// ============================================================
// Rational-Function Decomposition Helpers
// ============================================================

// splitRational separates e into numerator and denominator expressions by
// collecting negative-power factors. Returns den = 1 when e has no
// denominator part.
func splitRational(e Expr) (num, den Expr) {
	numFactors := []Expr{}
	denFactors := []Expr{}
	factors := []Expr{e}
	if m, ok := e.(*Mul); ok {
		factors = m.factors
	}
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if n, ok2 := p.exp.(*Num); ok2 && n.IsNegative() {
				denFactors = append(denFactors, PowOf(p.base, MulOf(N(-1), p.exp)))
				continue
			}
		}
		if n, ok := f.(*Num); ok && !n.val.IsInt() {
			numFactors = append(numFactors, &Num{val: new(big.Rat).SetInt(n.val.Num())})
			denFactors = append(denFactors, &Num{val: new(big.Rat).SetInt(n.val.Denom())})
			continue
		}
		numFactors = append(numFactors, f)
	}
	if len(numFactors) == 0 {
		num = N(1)
	} else {
		num = MulOf(numFactors...)
	}
	if len(denFactors) == 0 {
		den = N(1)
	} else {
		den = MulOf(denFactors...)
	}
	return num, den
}

// perfectQuadPower reports whether the monic polynomial p is q^k for a
// monic quadratic q, returning q (lowest degree first) and k. The two
// coefficients below the leading term pin q down; one multiplication
// verifies the guess.
func perfectQuadPower(p []*Num) ([]*Num, int, bool) {
	d := len(p) - 1
	if d < 4 || d%2 != 0 {
		return nil, 0, false
	}
	k := d / 2
	u := numDiv(p[d-1], N(int64(k)))
	v := numDiv(numSub(p[d-2], numMul(N(int64(k*(k-1)/2)), numMul(u, u))), N(int64(k)))
	q := []*Num{v, u, N(1)}
	check := []*Num{N(1)}
	for i := 0; i < k; i++ {
		check = polyMul(check, q)
	}
	if len(check) != len(p) {
		return nil, 0, false
	}
	for i := range p {
		if numCmp(check[i], p[i]) != 0 {
			return nil, 0, false
		}
	}
	return q, k, true
}

// isRationalFunction reports whether e is a ratio of polynomials in
// varName with a non-trivial denominator.
func isRationalFunction(e Expr, varName string) bool {
	num, den := splitRational(e)
	if isNumEqual(den.Simplify(), 1) {
		return false
	}
	return IsPolynomial(num, varName) && IsPolynomial(den, varName)
}
