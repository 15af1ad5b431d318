// Package querycache memoizes the two hot, pure queries that the solver
// core (internal/evaluator, internal/subtype) recomputes over and over
// while checking a single session: "what does T evaluate to" and "is S a
// subtype of T". Grounded on original_source/src/solver/salsa_db.rs's
// SolverDatabase query group (evaluate_type/is_subtype_of as memoized
// queries over a shared interner), reshaped from Salsa's automatic
// incremental-recomputation machinery into a plain in-memory memo table:
// nothing in this session's pipeline re-interns or re-defines a TypeID once
// assigned, so there is no invalidation to track, only first-computation
// caching.
//
// A session's in-memory Cache is always safe to use and is not the concern
// this package adds on top of salsa_db.rs: the additional piece, grounded
// on internal/driver/dcache.go's DiskCache, is an optional on-disk snapshot
// of those same memo tables keyed by a caller-supplied content digest, so a
// second run over unchanged sources can skip recomputing them entirely.
// That snapshot is strictly additive and off by default; deleting it only
// costs the next run some recomputation, never correctness.
package querycache

import (
	"sync"

	"tschecker/internal/types"
)

// SubtypePair is the memo key for an is-subtype-of query.
type SubtypePair struct {
	Source types.TypeID
	Target types.TypeID
}

// Cache memoizes evaluate_type and is_subtype_of results for one checking
// session. Safe for concurrent use: internal/driver's CheckDir shares one
// Cache across the worker pool the same way it shares one types.Interner,
// since both queries are pure functions of already-interned TypeIDs.
type Cache struct {
	mu      sync.RWMutex
	eval    map[types.TypeID]types.TypeID
	subtype map[SubtypePair]bool

	hits   uint64
	misses uint64
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		eval:    make(map[types.TypeID]types.TypeID),
		subtype: make(map[SubtypePair]bool),
	}
}

// Evaluate returns the memoized result of evaluating id, calling compute
// and storing its result on a miss. compute is expected to be
// (*evaluator.Evaluator).EvaluateType, left as a callback so this package
// never imports internal/evaluator.
func (c *Cache) Evaluate(id types.TypeID, compute func(types.TypeID) types.TypeID) types.TypeID {
	c.mu.RLock()
	if v, ok := c.eval[id]; ok {
		c.mu.RUnlock()
		c.recordHit()
		return v
	}
	c.mu.RUnlock()

	v := compute(id)

	c.mu.Lock()
	c.eval[id] = v
	c.mu.Unlock()
	c.recordMiss()
	return v
}

// IsSubtype returns the memoized result of checking source ≤ target,
// calling compute and storing its result on a miss. compute is expected to
// be (*subtype.Checker).IsSubtype.
func (c *Cache) IsSubtype(source, target types.TypeID, compute func(types.TypeID, types.TypeID) bool) bool {
	key := SubtypePair{Source: source, Target: target}

	c.mu.RLock()
	if v, ok := c.subtype[key]; ok {
		c.mu.RUnlock()
		c.recordHit()
		return v
	}
	c.mu.RUnlock()

	v := compute(source, target)

	c.mu.Lock()
	c.subtype[key] = v
	c.mu.Unlock()
	c.recordMiss()
	return v
}

func (c *Cache) recordHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

// Stats reports how effective the memo tables have been so far. Not used
// to gate any behavior.
type Stats struct {
	Hits, Misses           uint64
	EvalEntries, SubEntries int
}

// Stats snapshots the cache's current hit/miss counters and table sizes.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		EvalEntries: len(c.eval),
		SubEntries:  len(c.subtype),
	}
}

// Clear drops every memoized entry, mirroring salsa_db.rs's
// SalsaDatabase::clear (there: re-created against a fresh interner when the
// session's types are rebuilt from scratch; here, a session never rebuilds
// its interner mid-run, so Clear exists for test isolation and for
// snapshot loading, which replaces rather than merges).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eval = make(map[types.TypeID]types.TypeID)
	c.subtype = make(map[SubtypePair]bool)
	c.hits = 0
	c.misses = 0
}

// Snapshot extracts the cache's current contents for on-disk persistence.
// Taking a snapshot does not itself touch the live maps beyond a read
// lock, so it can run concurrently with ongoing Evaluate/IsSubtype calls.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Eval: make([]EvalEntry, 0, len(c.eval)),
		Sub:  make([]SubtypeEntry, 0, len(c.subtype)),
	}
	for k, v := range c.eval {
		s.Eval = append(s.Eval, EvalEntry{Type: k, Result: v})
	}
	for k, v := range c.subtype {
		s.Sub = append(s.Sub, SubtypeEntry{Source: k.Source, Target: k.Target, Result: v})
	}
	return s
}

// Load replaces the cache's contents with a previously taken Snapshot,
// e.g. one just read back from disk by a DiskCache. TypeIDs in a snapshot
// are only meaningful when replayed into a session whose interner assigned
// them in the exact same order (see DiskCache's doc comment); the caller
// is responsible for that precondition, this method only performs the
// mechanical load.
func (c *Cache) Load(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eval = make(map[types.TypeID]types.TypeID, len(s.Eval))
	for _, e := range s.Eval {
		c.eval[e.Type] = e.Result
	}
	c.subtype = make(map[SubtypePair]bool, len(s.Sub))
	for _, e := range s.Sub {
		c.subtype[SubtypePair{Source: e.Source, Target: e.Target}] = e.Result
	}
}
