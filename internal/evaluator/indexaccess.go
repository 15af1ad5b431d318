package evaluator

import (
	"math"

	"tschecker/internal/types"
)

// EvaluateIndexAccess resolves `Container[Index]`. Unions distribute over
// both the container and index positions à la TypeScript's own indexed
// access evaluation (a case spec.md §4.3 leaves implicit in "resolves T[K]
// by indexing into objects/tuples/arrays/strings"); genuinely unresolvable
// cases (an object shape lacking the named property, for instance) return
// a deferred IndexAccess rather than ERROR, since a later instantiation of
// a still-abstract container could make it resolvable.
func (e *Evaluator) EvaluateIndexAccess(container, index types.TypeID) types.TypeID {
	if container == types.Error || index == types.Error {
		return types.Error
	}

	if key, ok := e.interner.Lookup(index); ok && key.Kind == types.KindUnion {
		members := e.interner.TypeList(key.TypeList)
		results := make([]types.TypeID, len(members))
		for i, m := range members {
			results[i] = e.EvaluateIndexAccess(container, m)
		}
		return e.interner.Union(results)
	}

	switch container {
	case types.String:
		if index == types.Number {
			return types.String
		}
	}

	key, ok := e.interner.Lookup(container)
	if !ok {
		return e.interner.IndexAccess(container, index)
	}

	switch key.Kind {
	case types.KindObject, types.KindObjectWithIndex:
		shape, _ := e.interner.ObjectShapeByID(key.ObjectShape)
		return e.indexObjectShape(key.ObjectShape, shape, container, index)

	case types.KindArray:
		if index == types.Number {
			return e.maybeUndefinedForIndexSignature(key.Elem)
		}
		if litKey, ok := e.interner.Lookup(index); ok && litKey.Kind == types.KindLiteralNumber {
			return e.maybeUndefinedForIndexSignature(key.Elem)
		}

	case types.KindTuple:
		elems := e.interner.TupleList(key.TupleList)
		if litKey, ok := e.interner.Lookup(index); ok && litKey.Kind == types.KindLiteralNumber {
			n := int(math.Float64frombits(litKey.LitNumberBits))
			if n >= 0 && n < len(elems) {
				return elems[n].Type
			}
			return types.Error
		}
		if index == types.Number {
			members := make([]types.TypeID, len(elems))
			for i, el := range elems {
				members[i] = el.Type
			}
			return e.interner.Union(members)
		}

	case types.KindIntersection:
		members := e.interner.TypeList(key.TypeList)
		results := make([]types.TypeID, 0, len(members))
		for _, m := range members {
			results = append(results, e.EvaluateIndexAccess(m, index))
		}
		return e.interner.Intersection(results)
	}

	return e.interner.IndexAccess(container, index)
}

func (e *Evaluator) indexObjectShape(shapeID types.ObjectShapeID, shape types.ObjectShape, container, index types.TypeID) types.TypeID {
	if litKey, ok := e.interner.Lookup(index); ok && litKey.Kind == types.KindLiteralString {
		if idx, ok := e.interner.PropertyIndex(shapeID, uint32(litKey.LitString)); ok {
			return shape.Properties[idx].ReadType
		}
		if shape.StringIndex != nil {
			return e.maybeUndefinedForIndexSignature(shape.StringIndex.ValueType)
		}
		return e.interner.IndexAccess(container, index)
	}
	if index == types.String && shape.StringIndex != nil {
		return e.maybeUndefinedForIndexSignature(shape.StringIndex.ValueType)
	}
	if index == types.Number && shape.NumberIndex != nil {
		return e.maybeUndefinedForIndexSignature(shape.NumberIndex.ValueType)
	}
	return e.interner.IndexAccess(container, index)
}

// maybeUndefinedForIndexSignature adds `| undefined` to a value resolved
// through an index signature when noUncheckedIndexedAccess is set (spec.md
// §4.3).
func (e *Evaluator) maybeUndefinedForIndexSignature(valueType types.TypeID) types.TypeID {
	if !e.opts.NoUncheckedIndexedAccess {
		return valueType
	}
	return e.interner.Union([]types.TypeID{valueType, types.Undefined})
}
