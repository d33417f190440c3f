package gosymint

import (
	"container/list"
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// ============================================================
// Recursion Context
// ============================================================

const (
	// DefaultMaxDepth bounds recursive rule application per Integrate call.
	DefaultMaxDepth = 10
	// DefaultPartsDepth bounds nested integration-by-parts attempts.
	DefaultPartsDepth = 10
	// DefaultCacheSize caps the per-call memo cache.
	DefaultCacheSize = 50
)

// RecCtx carries the per-call state of one Integrate invocation: the depth
// budget, the quiet flag governing diagnostics, strategy re-entry flags,
// and the memo cache. It is created at the API boundary and threaded
// explicitly through every recursive step; nothing about it is global, so
// concurrent Integrate calls never interact.
type RecCtx struct {
	depth      int
	maxDepth   int
	partsDepth int
	maxParts   int
	quiet      bool
	inApart    bool // inside a partial-fraction decomposition
	inTrigExp  bool // inside the trig-to-exponential fallback
	budgetHit  bool // some attempt was cut short by the depth budget
	goCtx      context.Context
	cache      *triCache
	log        zerolog.Logger
}

// Option configures a RecCtx at the API boundary.
type Option func(*RecCtx)

// WithMaxDepth overrides the recursion budget.
func WithMaxDepth(n int) Option {
	return func(c *RecCtx) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithPartsDepth overrides the integration-by-parts budget.
func WithPartsDepth(n int) Option {
	return func(c *RecCtx) {
		if n > 0 {
			c.maxParts = n
		}
	}
}

// WithQuiet suppresses diagnostic log output for this call.
func WithQuiet(quiet bool) Option {
	return func(c *RecCtx) { c.quiet = quiet }
}

// WithLogger routes diagnostics to the given logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *RecCtx) { c.log = log }
}

// WithLogWriter routes diagnostics to an arbitrary writer.
func WithLogWriter(w io.Writer) Option {
	return func(c *RecCtx) { c.log = zerolog.New(w).With().Timestamp().Logger() }
}

// WithCacheSize overrides the memo-cache capacity.
func WithCacheSize(n int) Option {
	return func(c *RecCtx) {
		if n > 0 {
			c.cache = newTriCache(n)
		}
	}
}

func newRecCtx(opts ...Option) *RecCtx {
	c := &RecCtx{
		maxDepth: DefaultMaxDepth,
		maxParts: DefaultPartsDepth,
		quiet:    true,
		goCtx:    context.Background(),
		cache:    newTriCache(DefaultCacheSize),
		log:      zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// aborted reports whether the caller has cancelled the computation.
func (c *RecCtx) aborted() bool { return c.goCtx.Err() != nil }

// enter consumes one unit of depth budget. The caller must pair it with
// leave on every exit path.
func (c *RecCtx) enter() bool {
	if c.depth >= c.maxDepth {
		c.budgetHit = true
		if !c.quiet {
			c.log.Warn().Int("max_depth", c.maxDepth).Msg("recursion budget exceeded")
		}
		return false
	}
	c.depth++
	return true
}

func (c *RecCtx) leave() { c.depth-- }

// overrideDepth temporarily replaces the budget for a sub-computation and
// returns a restore function. Both the limit and the spent depth are
// restored, so a sub-call cannot leak budget.
func (c *RecCtx) overrideDepth(newMax int) func() {
	oldMax, oldDepth := c.maxDepth, c.depth
	c.maxDepth = newMax
	return func() {
		c.maxDepth = oldMax
		c.depth = oldDepth
	}
}

// setQuiet flips the quiet flag and returns a restore function.
func (c *RecCtx) setQuiet(q bool) func() {
	old := c.quiet
	c.quiet = q
	return func() { c.quiet = old }
}

func (c *RecCtx) debugf(msg string, e Expr) {
	if !c.quiet {
		c.log.Debug().Str("expr", e.String()).Msg(msg)
	}
}

// ============================================================
// Tri-State Memo Cache
// ============================================================

// cacheState distinguishes a finished entry from one whose computation is
// still on the call stack. A pending hit means the engine has recursed
// into an expression it is already integrating, i.e. a rewrite cycle.
type cacheState int

const (
	cacheAbsent cacheState = iota
	cachePending
	cacheResolved
)

type cacheEntry struct {
	key   string
	state cacheState
	value Expr // nil while pending, or when resolution failed
	ok    bool
}

// triCache is a small LRU keyed by the canonical string form of the
// integrand. It is owned by exactly one RecCtx, so no locking.
type triCache struct {
	cap   int
	order *list.List
	items map[string]*list.Element
}

func newTriCache(capacity int) *triCache {
	return &triCache{
		cap:   capacity,
		order: list.New(),
		items: make(map[string]*list.Element, capacity),
	}
}

func (c *triCache) lookup(key string) (cacheState, Expr, bool) {
	el, ok := c.items[key]
	if !ok {
		return cacheAbsent, nil, false
	}
	c.order.MoveToFront(el)
	e := el.Value.(*cacheEntry)
	return e.state, e.value, e.ok
}

// markPending records that key is being computed. Pending entries are
// pinned: eviction skips them, so a deep chain of resolved sub-results
// can never drop a live cycle guard.
func (c *triCache) markPending(key string) {
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*cacheEntry).state = cachePending
		return
	}
	c.insert(&cacheEntry{key: key, state: cachePending})
}

// resolve finalizes the entry for key. A failed attempt (ok=false) is
// cached too, so repeated failures short-circuit.
func (c *triCache) resolve(key string, value Expr, ok bool) {
	if el, exists := c.items[key]; exists {
		c.order.MoveToFront(el)
		e := el.Value.(*cacheEntry)
		e.state = cacheResolved
		e.value = value
		e.ok = ok
		return
	}
	c.insert(&cacheEntry{key: key, state: cacheResolved, value: value, ok: ok})
}

// clearPending removes a pending marker without recording a result, used
// when the attempt was abandoned for budget reasons rather than failure.
func (c *triCache) clearPending(key string) {
	el, ok := c.items[key]
	if !ok {
		return
	}
	if el.Value.(*cacheEntry).state == cachePending {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

func (c *triCache) insert(e *cacheEntry) {
	el := c.order.PushFront(e)
	c.items[e.key] = el
	for c.order.Len() > c.cap {
		// evict the least recent resolved entry; pending entries are
		// live cycle guards and must survive
		var victim *list.Element
		for el := c.order.Back(); el != nil; el = el.Prev() {
			if el.Value.(*cacheEntry).state != cachePending {
				victim = el
				break
			}
		}
		if victim == nil {
			break
		}
		delete(c.items, victim.Value.(*cacheEntry).key)
		c.order.Remove(victim)
	}
}

func (c *triCache) len() int { return c.order.Len() }
