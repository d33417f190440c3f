package gosymint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriCache_LRUEviction(t *testing.T) {
	c := newTriCache(3)
	c.resolve("a", N(1), true)
	c.resolve("b", N(2), true)
	c.resolve("c", N(3), true)
	require.Equal(t, 3, c.len())

	// touch "a" so "b" becomes the eviction victim
	_, _, _ = c.lookup("a")
	c.resolve("d", N(4), true)

	state, _, _ := c.lookup("b")
	assert.Equal(t, cacheAbsent, state)
	state, v, ok := c.lookup("a")
	assert.Equal(t, cacheResolved, state)
	assert.True(t, ok)
	assert.True(t, v.Equal(N(1)))
}

func TestTriCache_FailedResultsAreCached(t *testing.T) {
	c := newTriCache(10)
	c.resolve("k", nil, false)
	state, v, ok := c.lookup("k")
	assert.Equal(t, cacheResolved, state)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestTriCache_PendingEntriesSurviveEviction(t *testing.T) {
	c := newTriCache(3)
	c.markPending("guard")
	c.resolve("a", N(1), true)
	c.resolve("b", N(2), true)
	c.resolve("c", N(3), true)

	// over capacity: the oldest resolved entry goes, the guard stays
	state, _, _ := c.lookup("guard")
	assert.Equal(t, cachePending, state)
	state, _, _ = c.lookup("a")
	assert.Equal(t, cacheAbsent, state)

	// a cache full of live guards grows rather than dropping one
	c2 := newTriCache(2)
	c2.markPending("p1")
	c2.markPending("p2")
	c2.markPending("p3")
	require.Equal(t, 3, c2.len())
}

func TestTriCache_ClearPendingOnlyRemovesPending(t *testing.T) {
	c := newTriCache(10)
	c.markPending("p")
	c.resolve("r", N(1), true)
	c.clearPending("p")
	c.clearPending("r")
	state, _, _ := c.lookup("p")
	assert.Equal(t, cacheAbsent, state)
	state, _, _ = c.lookup("r")
	assert.Equal(t, cacheResolved, state)
}

func TestEngine_PendingEntryBreaksCycle(t *testing.T) {
	ctx := newRecCtx()
	e := PowOf(S("x"), N(2))
	key := e.String() + "|x"
	ctx.cache.markPending(key)

	_, ok := integrateByRules(e, "x", ctx)
	assert.False(t, ok, "a pending integrand must not be re-entered")
}

// A rule whose replacement re-requests the integral it came from must
// terminate with no result instead of looping.
func TestEngine_SelfReferentialRuleTerminates(t *testing.T) {
	ctx := newRecCtx()
	mystery := funcOf("mystery", S("x"))
	adversarial := []Rule{
		newRule("self-loop",
			funcOf("mystery", varP()),
			intHold(funcOf("mystery", varP())),
			nil),
	}
	out, ok := integrateWithRules(mystery, "x", ctx, adversarial)
	assert.False(t, ok)
	assert.Nil(t, out)
	assert.Zero(t, ctx.depth, "depth budget must be restored on the failure path")
}

func TestEngine_DepthRestoredAfterSuccess(t *testing.T) {
	ctx := newRecCtx()
	res := integrateRec(PowOf(TanOf(S("x")), N(5)), "x", ctx)
	require.Equal(t, StatusResolved, res.Status)
	assert.Zero(t, ctx.depth)
}

func TestEngine_BudgetFailureNotCached(t *testing.T) {
	ctx := newRecCtx(WithMaxDepth(2))
	e := PowOf(TanOf(S("x")), N(9))
	_, ok := integrateByRules(e, "x", ctx)
	require.False(t, ok)

	// the same expression must still be retryable with a wider budget
	state, _, _ := ctx.cache.lookup(e.String() + "|x")
	assert.NotEqual(t, cacheResolved, state)
}

func TestRecCtx_SaveRestore(t *testing.T) {
	ctx := newRecCtx(WithMaxDepth(40))
	restore := ctx.overrideDepth(5)
	assert.Equal(t, 5, ctx.maxDepth)
	restore()
	assert.Equal(t, 40, ctx.maxDepth)

	restoreQ := ctx.setQuiet(false)
	assert.False(t, ctx.quiet)
	restoreQ()
	assert.True(t, ctx.quiet)
}

func TestRuleOrder_FirstMatchWins(t *testing.T) {
	ctx := newRecCtx()
	target := funcOf("mystery", S("x"))
	rules := []Rule{
		newRule("specific", funcOf("mystery", varP()), SinOf(varP()), nil),
		newRule("general", funcOf("mystery", P("u")), CosOf(P("u")), nil),
	}
	out, ok := integrateWithRules(target, "x", ctx, rules)
	require.True(t, ok)
	assert.Equal(t, "sin(x)", out.String())
}

func TestRuleCondition_GatesReplacement(t *testing.T) {
	ctx := newRecCtx()
	rules := []Rule{
		newRule("even-only",
			PowOf(funcOf("mystery", varP()), PInt("n")),
			varP(),
			EqQ("n", 2)),
	}
	_, ok := integrateWithRules(PowOf(funcOf("mystery", S("x")), N(3)), "x", ctx, rules)
	assert.False(t, ok)

	ctx2 := newRecCtx()
	out, ok := integrateWithRules(PowOf(funcOf("mystery", S("x")), N(2)), "x", ctx2, rules)
	require.True(t, ok)
	assert.Equal(t, "x", out.String())
}

// A rule that leaves a residual integral in its replacement counts as
// failed, and the engine moves on.
func TestRule_ResidualIntegralFailsRule(t *testing.T) {
	ctx := newRecCtx()
	rules := []Rule{
		newRule("leaves-residue",
			funcOf("mystery", varP()),
			intHold(funcOf("hopeless", varP())),
			nil),
	}
	_, ok := integrateWithRules(funcOf("mystery", S("x")), "x", ctx, rules)
	assert.False(t, ok)
}
