package gosymint

import "sync"

// ============================================================
// Integration Rule Corpus
// ============================================================
//
// The corpus is ordered most-specific-first and scanned linearly; the
// first rule whose pattern matches, whose condition holds, and whose
// right-hand side fully resolves wins. Patterns are written against a
// distinguished variable placeholder that is pre-bound to the actual
// integration variable, and linear inner arguments a*x+b carry defaults
// a=1, b=0 so sin(x), sin(2*x) and sin(2*x+1) all match one rule.

var (
	rulesOnce  sync.Once
	ruleCorpus []Rule
)

func integrationRules() []Rule {
	rulesOnce.Do(func() { ruleCorpus = buildRules() })
	return ruleCorpus
}

// intHold embeds a recursive integration request in a rule template.
func intHold(f Expr) Expr {
	return &Func{name: "integrate", args: []Expr{f, varP()}}
}

func buildRules() []Rule {
	x := varP()
	lin := AddOf(MulOf(PConst("a", N(1)), x), PConst("b", N(0)))
	linR := AddOf(MulOf(P("a"), x), P("b"))
	invA := PowOf(P("a"), N(-1))
	nInt := PInt("n")
	nFree := &Pat{name: "n", freeOfVar: true}
	cReq := &Pat{name: "c", freeOfVar: true}

	nMinus1 := AddOf(P("n"), N(-1))
	nPlus1 := AddOf(P("n"), N(1))

	rules := []Rule{
		// ----- exponentials -----
		newRule("e-power-linear",
			PowOf(S("e"), lin),
			MulOf(invA, PowOf(S("e"), linR)),
			nil),
		newRule("exp-linear",
			ExpOf(lin),
			MulOf(invA, ExpOf(linR)),
			nil),
		newRule("gaussian-like",
			MulOf(x, ExpOf(MulOf(PConst("a", N(1)), PowOf(x, N(2))))),
			MulOf(F(1, 2), invA, ExpOf(MulOf(P("a"), PowOf(x, N(2))))),
			nil),
		// any base free of the variable: c^(a*x+b) -> c^(a*x+b)/(a*ln(c)).
		// A numeric base must be positive so ln(c) exists; a symbolic one
		// stays under the formal ln. Base e is caught by the rules above.
		newRule("const-power-linear",
			PowOf(cReq, lin),
			MulOf(invA, PowOf(LnOf(P("c")), N(-1)), PowOf(P("c"), linR)),
			And(NeQ("c", 1), Or(Not(NumberQ("c")), GtQ("c", 0)))),

		// ----- trig powers (reduction formulas), before plain trig -----
		newRule("sin-power-reduce",
			PowOf(SinOf(lin), nInt),
			AddOf(
				MulOf(N(-1), invA, PowOf(P("n"), N(-1)),
					PowOf(SinOf(linR), nMinus1), CosOf(linR)),
				MulOf(nMinus1, PowOf(P("n"), N(-1)),
					intHold(PowOf(SinOf(linR), AddOf(P("n"), N(-2)))))),
			GtQ("n", 1)),
		newRule("cos-power-reduce",
			PowOf(CosOf(lin), nInt),
			AddOf(
				MulOf(invA, PowOf(P("n"), N(-1)),
					PowOf(CosOf(linR), nMinus1), SinOf(linR)),
				MulOf(nMinus1, PowOf(P("n"), N(-1)),
					intHold(PowOf(CosOf(linR), AddOf(P("n"), N(-2)))))),
			GtQ("n", 1)),
		newRule("tan-power-reduce",
			PowOf(TanOf(lin), nInt),
			AddOf(
				MulOf(invA, PowOf(nMinus1, N(-1)), PowOf(TanOf(linR), nMinus1)),
				MulOf(N(-1),
					intHold(PowOf(TanOf(linR), AddOf(P("n"), N(-2)))))),
			GtQ("n", 1)),
		newRule("cot-power-reduce",
			PowOf(CotOf(lin), nInt),
			AddOf(
				MulOf(N(-1), invA, PowOf(nMinus1, N(-1)), PowOf(CotOf(linR), nMinus1)),
				MulOf(N(-1),
					intHold(PowOf(CotOf(linR), AddOf(P("n"), N(-2)))))),
			GtQ("n", 1)),

		// ----- trig with linear argument -----
		newRule("sec2-linear",
			PowOf(CosOf(lin), N(-2)),
			MulOf(invA, TanOf(linR)),
			nil),
		newRule("csc2-linear",
			PowOf(SinOf(lin), N(-2)),
			MulOf(N(-1), invA, CotOf(linR)),
			nil),
		newRule("sin-linear",
			SinOf(lin),
			MulOf(N(-1), invA, CosOf(linR)),
			nil),
		newRule("cos-linear",
			CosOf(lin),
			MulOf(invA, SinOf(linR)),
			nil),
		newRule("tan-linear",
			TanOf(lin),
			MulOf(N(-1), invA, LnOf(CosOf(linR))),
			nil),
		newRule("cot-linear",
			CotOf(lin),
			MulOf(invA, LnOf(SinOf(linR))),
			nil),

		// ----- hyperbolics -----
		newRule("sinh-linear",
			SinhOf(lin),
			MulOf(invA, CoshOf(linR)),
			nil),
		newRule("cosh-linear",
			CoshOf(lin),
			MulOf(invA, SinhOf(linR)),
			nil),
		newRule("tanh-linear",
			TanhOf(lin),
			MulOf(invA, LnOf(CoshOf(linR))),
			nil),

		// ----- logs and inverse trig -----
		newRule("ln-linear",
			LnOf(lin),
			MulOf(invA, AddOf(MulOf(linR, LnOf(linR)), MulOf(N(-1), linR))),
			nil),
		newRule("asin-linear",
			AsinOf(lin),
			MulOf(invA, AddOf(
				MulOf(linR, AsinOf(linR)),
				SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(linR, N(2))))))),
			nil),
		newRule("acos-linear",
			AcosOf(lin),
			MulOf(invA, AddOf(
				MulOf(linR, AcosOf(linR)),
				MulOf(N(-1), SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(linR, N(2)))))))),
			nil),
		newRule("atan-linear",
			AtanOf(lin),
			MulOf(invA, AddOf(
				MulOf(linR, AtanOf(linR)),
				MulOf(F(-1, 2), LnOf(AddOf(N(1), PowOf(linR, N(2))))))),
			nil),

		// ----- algebraic forms -----
		newRule("inv-sqrt-c-minus-x2",
			PowOf(AddOf(cReq, MulOf(N(-1), PowOf(x, N(2)))), F(-1, 2)),
			AsinOf(MulOf(x, PowOf(P("c"), F(-1, 2)))),
			GtQ("c", 0)),
		newRule("recip-linear",
			PowOf(lin, N(-1)),
			MulOf(invA, LnOf(linR)),
			nil),
		newRule("linear-power",
			PowOf(lin, nFree),
			MulOf(invA, PowOf(nPlus1, N(-1)), PowOf(linR, nPlus1)),
			NeQ("n", -1)),
	}
	return rules
}
