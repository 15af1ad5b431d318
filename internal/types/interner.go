package types

import (
	"fmt"
	"sync"
)

// Interner allocates dense TypeIDs for canonical TypeKeys and owns the side
// tables composite variants point into. Hash-consing for the TypeKey itself
// is exact (TypeKey has no slice fields, so it is comparable and usable
// directly as a map key); hash-consing for variable-length payloads (type
// lists, tuple lists, object/function/callable shapes, ...) goes through a
// canonical string key built from the payload, one dedup map per side
// table. Each side table has its own RWMutex so that, e.g., interning two
// unrelated object shapes from different goroutines never contends on the
// same lock — a coarser-grained analogue of the original sharded-map
// posture (see internal/atom), appropriate here because the dominant
// concern is per-kind contention, not per-string contention.
type Interner struct {
	mu    sync.RWMutex
	keys  []TypeKey // keys[id - firstUserTypeID] is the TypeKey for id
	index map[TypeKey]TypeID

	typeLists   arenaTable[[]TypeID]
	tupleLists  arenaTable[[]TupleElement]
	objShapes   arenaTable[ObjectShape]
	funcShapes  arenaTable[FunctionShape]
	callShapes  arenaTable[CallableShape]
	conditionals arenaTable[ConditionalType]
	mappeds     arenaTable[MappedType]
	templates   arenaTable[[]TemplateSpan]
	applications arenaTable[TypeApplication]

	// propIndexThreshold is the ObjectShape property-count above which a
	// (shape, name) -> index lookup cache is populated lazily.
	propIndexThreshold int
	propIndexMu        sync.RWMutex
	propIndex          map[ObjectShapeID]map[uint32]int // name atom -> index
}

// arenaTable is an append-only store plus a dedup map keyed by a canonical
// string form of T, guarded by its own lock.
type arenaTable[T any] struct {
	mu    sync.RWMutex
	data  []T
	index map[string]uint32
}

func newArenaTable[T any]() arenaTable[T] {
	return arenaTable[T]{index: make(map[string]uint32)}
}

func (a *arenaTable[T]) intern(key string, value T) uint32 {
	a.mu.RLock()
	if id, ok := a.index[key]; ok {
		a.mu.RUnlock()
		return id
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.index[key]; ok {
		return id
	}
	id := uint32(len(a.data))
	a.data = append(a.data, value)
	a.index[key] = id
	return id
}

func (a *arenaTable[T]) get(id uint32) (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var zero T
	if int(id) >= len(a.data) {
		return zero, false
	}
	return a.data[id], true
}

// New creates an Interner. Intrinsic TypeIDs (< firstUserTypeID) are
// implicit and require no entry in keys.
func New() *Interner {
	return &Interner{
		index:              make(map[TypeKey]TypeID),
		typeLists:          newArenaTable[[]TypeID](),
		tupleLists:         newArenaTable[[]TupleElement](),
		objShapes:          newArenaTable[ObjectShape](),
		funcShapes:         newArenaTable[FunctionShape](),
		callShapes:         newArenaTable[CallableShape](),
		conditionals:       newArenaTable[ConditionalType](),
		mappeds:            newArenaTable[MappedType](),
		templates:          newArenaTable[[]TemplateSpan](),
		applications:       newArenaTable[TypeApplication](),
		propIndexThreshold: 8,
		propIndex:          make(map[ObjectShapeID]map[uint32]int),
	}
}

// intern hash-conses key, returning its existing TypeID if key was already
// seen, allocating a new one otherwise.
func (in *Interner) intern(key TypeKey) TypeID {
	in.mu.RLock()
	if id, ok := in.index[key]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[key]; ok {
		return id
	}
	id := TypeID(uint32(len(in.keys)) + uint32(firstUserTypeID))
	in.keys = append(in.keys, key)
	in.index[key] = id
	return id
}

// Lookup returns the TypeKey for id, or the zero TypeKey and false if id is
// intrinsic or out of range.
func (in *Interner) Lookup(id TypeID) (TypeKey, bool) {
	if IsIntrinsic(id) {
		return TypeKey{}, false
	}
	idx := int(id) - int(firstUserTypeID)
	in.mu.RLock()
	defer in.mu.RUnlock()
	if idx < 0 || idx >= len(in.keys) {
		return TypeKey{}, false
	}
	return in.keys[idx], true
}

// Len returns the number of non-intrinsic TypeIDs allocated so far.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.keys)
}

// TypeList resolves a TypeListID to its member slice.
func (in *Interner) TypeList(id TypeListID) []TypeID {
	v, _ := in.typeLists.get(uint32(id))
	return v
}

// TupleList resolves a TupleListID to its element slice.
func (in *Interner) TupleList(id TupleListID) []TupleElement {
	v, _ := in.tupleLists.get(uint32(id))
	return v
}

// ObjectShapeByID resolves an ObjectShapeID to its shape.
func (in *Interner) ObjectShapeByID(id ObjectShapeID) (ObjectShape, bool) {
	return in.objShapes.get(uint32(id))
}

// FunctionShapeByID resolves a FunctionShapeID to its shape.
func (in *Interner) FunctionShapeByID(id FunctionShapeID) (FunctionShape, bool) {
	return in.funcShapes.get(uint32(id))
}

// CallableShapeByID resolves a CallableShapeID to its shape.
func (in *Interner) CallableShapeByID(id CallableShapeID) (CallableShape, bool) {
	return in.callShapes.get(uint32(id))
}

// ConditionalByID resolves a ConditionalID to its payload.
func (in *Interner) ConditionalByID(id ConditionalID) (ConditionalType, bool) {
	return in.conditionals.get(uint32(id))
}

// MappedByID resolves a MappedID to its payload.
func (in *Interner) MappedByID(id MappedID) (MappedType, bool) {
	return in.mappeds.get(uint32(id))
}

// TemplateByID resolves a TemplateLiteralID to its span slice.
func (in *Interner) TemplateByID(id TemplateLiteralID) []TemplateSpan {
	v, _ := in.templates.get(uint32(id))
	return v
}

// ApplicationByID resolves an ApplicationID to its payload.
func (in *Interner) ApplicationByID(id ApplicationID) (TypeApplication, bool) {
	return in.applications.get(uint32(id))
}

// PropertyIndex returns the index of the property named by atom value
// `name` within shape id's property list, populating the lazy lookup cache
// for shapes at or above propIndexThreshold properties (spec.md §3.3,
// "property index cache").
func (in *Interner) PropertyIndex(id ObjectShapeID, name uint32) (int, bool) {
	shape, ok := in.ObjectShapeByID(id)
	if !ok {
		return 0, false
	}
	if len(shape.Properties) < in.propIndexThreshold {
		for i, p := range shape.Properties {
			if uint32(p.Name) == name {
				return i, true
			}
		}
		return 0, false
	}

	in.propIndexMu.RLock()
	m, ok := in.propIndex[id]
	in.propIndexMu.RUnlock()
	if !ok {
		m = make(map[uint32]int, len(shape.Properties))
		for i, p := range shape.Properties {
			m[uint32(p.Name)] = i
		}
		in.propIndexMu.Lock()
		in.propIndex[id] = m
		in.propIndexMu.Unlock()
	}
	idx, found := m[name]
	return idx, found
}

// keyOf builds a deterministic string key for dedup tables from a value
// that has no natural comparable form (slices of structs). fmt.Sprintf on a
// fixed field order is adequate here: side-table payloads are small and
// this path is only hit once per distinct shape, not per lookup.
func keyOf(v any) string {
	return fmt.Sprintf("%+v", v)
}
