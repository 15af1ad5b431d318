// Package atom interns identifier and property-name strings into dense u32
// handles (Atom), sharded for concurrent insertion from many checker workers.
package atom

import (
	"hash/fnv"
	"sync"
)

// Atom is an interned string handle. Cheap to copy, comparable with ==.
type Atom uint32

// NONE is the sentinel for no atom / the empty string.
const NONE Atom = 0

// IsNone reports whether a is the empty/none atom.
func (a Atom) IsNone() bool {
	return a == NONE
}

const (
	shardBits  = 6
	shardCount = 1 << shardBits
	shardMask  = shardCount - 1
)

type shardState struct {
	byLocal []string
	index   map[string]Atom
}

type shard struct {
	mu    sync.RWMutex
	state shardState
}

// Interner deduplicates strings across shardCount buckets, keyed by an FNV
// hash of the string. Each shard owns an append-only slice and a map, so
// reads under RLock never block other shards.
type Interner struct {
	shards [shardCount]*shard
}

// New creates an Interner with the empty string pre-interned as NONE.
func New() *Interner {
	in := &Interner{}
	for i := range in.shards {
		in.shards[i] = &shard{
			state: shardState{
				index: make(map[string]Atom),
			},
		}
	}
	// NONE lives in shard 0, local index 0.
	s := in.shards[0]
	s.state.byLocal = append(s.state.byLocal, "")
	s.state.index[""] = NONE
	return in
}

func shardFor(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32()) & shardMask
}

func makeAtom(localIndex int, shardIdx int) Atom {
	return Atom(uint32(localIndex)<<shardBits | uint32(shardIdx)&shardMask)
}

func splitAtom(a Atom) (shardIdx, localIndex int) {
	if a == NONE {
		return 0, 0
	}
	raw := uint32(a)
	shardIdx = int(raw & shardMask)
	localIndex = int(raw >> shardBits)
	return shardIdx, localIndex
}

// Intern inserts s if not already present and returns its Atom. Safe for
// concurrent use.
func (in *Interner) Intern(s string) Atom {
	if s == "" {
		return NONE
	}

	idx := shardFor(s)
	sh := in.shards[idx]

	sh.mu.RLock()
	if a, ok := sh.state.index[s]; ok {
		sh.mu.RUnlock()
		return a
	}
	sh.mu.RUnlock()

	// Own copy, independent of the caller's buffer.
	cpy := string([]byte(s))

	sh.mu.Lock()
	defer sh.mu.Unlock()
	// Double-check: another goroutine may have inserted it between the
	// RUnlock above and this Lock.
	if a, ok := sh.state.index[cpy]; ok {
		return a
	}
	local := len(sh.state.byLocal)
	a := makeAtom(local, idx)
	sh.state.byLocal = append(sh.state.byLocal, cpy)
	sh.state.index[cpy] = a
	return a
}

// Resolve returns the string for a, or "" if a is out of range.
func (in *Interner) Resolve(a Atom) string {
	s, _ := in.TryResolve(a)
	return s
}

// TryResolve returns the string for a and whether it was found.
func (in *Interner) TryResolve(a Atom) (string, bool) {
	shardIdx, localIndex := splitAtom(a)
	if shardIdx < 0 || shardIdx >= shardCount {
		return "", false
	}
	sh := in.shards[shardIdx]
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if localIndex < 0 || localIndex >= len(sh.state.byLocal) {
		return "", false
	}
	return sh.state.byLocal[localIndex], true
}

// Len returns the total number of interned strings across all shards.
func (in *Interner) Len() int {
	total := 0
	for _, sh := range in.shards {
		sh.mu.RLock()
		total += len(sh.state.byLocal)
		sh.mu.RUnlock()
	}
	return total
}

// InternCommon pre-interns the fixed keyword/identifier set returned by
// CommonStrings, improving shard cache locality for the names every checked
// file is certain to use.
func (in *Interner) InternCommon() {
	for _, s := range CommonStrings {
		in.Intern(s)
	}
}
