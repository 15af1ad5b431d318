package evaluator

import (
	"strconv"

	"tschecker/internal/types"
)

// EvaluateKeyOf implements `keyof T` for every case spec.md §4.3 names.
func (e *Evaluator) EvaluateKeyOf(t types.TypeID) types.TypeID {
	switch t {
	case types.Any:
		return e.interner.Union([]types.TypeID{types.String, types.Number, types.SymbolIntrinsic})
	case types.Unknown, types.Never, types.Void, types.Null, types.Undefined, types.Object, types.FunctionIntrinsic:
		return types.Never
	case types.String, types.Number, types.Boolean, types.SymbolIntrinsic, types.BigInt:
		if shape, ok := e.apparent.ShapeFor(t); ok {
			return e.keyofObjectShape(shape)
		}
		return types.Never
	}

	key, ok := e.interner.Lookup(t)
	if !ok {
		return types.Never
	}

	switch key.Kind {
	case types.KindObject, types.KindObjectWithIndex:
		shape, _ := e.interner.ObjectShapeByID(key.ObjectShape)
		return e.keyofObjectShape(shape)

	case types.KindArray:
		return e.keyofArray()

	case types.KindTuple:
		return e.keyofTuple(key.TupleList)

	case types.KindUnion:
		members := e.interner.TypeList(key.TypeList)
		acc := make([]types.TypeID, len(members))
		for i, m := range members {
			acc[i] = e.EvaluateKeyOf(m)
		}
		return e.intersectAll(acc)

	case types.KindIntersection:
		members := e.interner.TypeList(key.TypeList)
		acc := make([]types.TypeID, len(members))
		for i, m := range members {
			acc[i] = e.EvaluateKeyOf(m)
		}
		return e.interner.Union(acc)

	case types.KindTypeParameter:
		// keyof of a bare type parameter is preserved (deferred) when its
		// constraint is itself abstract; this evaluator has no constraint
		// table of its own (constraints live in the declaration the type
		// parameter came from, owned by the external symbol table), so it
		// conservatively defers rather than guessing.
		return e.interner.KeyOf(t)

	case types.KindCallable:
		shape, _ := e.interner.CallableShapeByID(key.CallableSig)
		return e.keyofObjectShape(types.ObjectShape{Properties: shape.Properties, StringIndex: shape.StringIndex, NumberIndex: shape.NumberIndex})

	default:
		return types.Never
	}
}

func (e *Evaluator) keyofObjectShape(shape types.ObjectShape) types.TypeID {
	members := make([]types.TypeID, 0, len(shape.Properties)+2)
	for _, p := range shape.Properties {
		members = append(members, e.interner.LiteralString(p.Name))
	}
	if shape.StringIndex != nil {
		members = append(members, types.String, types.Number)
	} else if shape.NumberIndex != nil {
		members = append(members, types.Number)
	}
	return e.interner.Union(members)
}

func (e *Evaluator) keyofArray() types.TypeID {
	members := make([]types.TypeID, 0, len(arrayMethodNames)+1)
	for _, name := range arrayMethodNames {
		members = append(members, e.interner.LiteralString(e.atoms.Intern(name)))
	}
	members = append(members, types.Number)
	return e.interner.Union(members)
}

func (e *Evaluator) keyofTuple(list types.TupleListID) types.TypeID {
	elems := e.interner.TupleList(list)
	members := make([]types.TypeID, 0, len(elems)+len(arrayMethodNames)+1)
	for i := range elems {
		members = append(members, e.interner.LiteralString(e.atoms.Intern(strconv.Itoa(i))))
	}
	for _, name := range arrayMethodNames {
		members = append(members, e.interner.LiteralString(e.atoms.Intern(name)))
	}
	members = append(members, types.Number)
	return e.interner.Union(members)
}

// intersectAll folds keyof-of-union's per-member results (spec.md §4.3:
// "for unions, the intersection of members' keyof"). A zero-length operand
// list (the union had no members, shouldn't happen for a canonical Union)
// falls back to Never.
func (e *Evaluator) intersectAll(ids []types.TypeID) types.TypeID {
	if len(ids) == 0 {
		return types.Never
	}
	return e.interner.Intersection(ids)
}
