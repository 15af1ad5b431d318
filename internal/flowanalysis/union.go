package flowanalysis

import (
	"tschecker/internal/atom"
	"tschecker/internal/types"
)

// unionMembers returns base's constituent members if it is a union,
// otherwise the single-element slice [base]. Mirrors how the rest of this
// package treats a non-union type as a trivial one-member union throughout
// narrowing.
func (a *Analyzer) unionMembers(base types.TypeID) []types.TypeID {
	key, ok := a.interner.Lookup(base)
	if !ok || key.Kind != types.KindUnion {
		return []types.TypeID{base}
	}
	return a.interner.TypeList(key.TypeList)
}

// narrowToSubtypeTarget narrows base to the types it shares with target.
// For a union base this keeps only members assignable to target (or target
// itself extended with any union member that target is assignable to, for
// nominal-vs-structural direction); for a non-union base it falls back to a
// direct three-way subtype comparison rather than a generic keep-predicate,
// since e.g. narrowing `unknown` by `typeof x === "string"` must yield
// `string`, not Never — `unknown` is not a subtype of `string`, but `string`
// is a subtype of `unknown`, and that direction is the one that matters when
// base isn't itself a union of narrower candidates.
func (a *Analyzer) narrowToSubtypeTarget(base, target types.TypeID) types.TypeID {
	members := a.unionMembers(base)
	if len(members) > 1 {
		var kept []types.TypeID
		for _, m := range members {
			if a.isSub(m, target) {
				kept = append(kept, m)
			}
		}
		if len(kept) > 0 {
			return a.interner.Union(kept)
		}
		// No union member narrows to target; fall through to the
		// non-union three-way comparison against base itself, e.g. an
		// enum member type being compared against a structurally
		// compatible but not-listed literal.
	}
	if a.isSub(target, base) {
		return target
	}
	if a.isSub(base, target) {
		return base
	}
	return types.Never
}

// narrowExcludingSubtypeTarget removes from base whatever narrowToSubtypeTarget
// would have kept.
func (a *Analyzer) narrowExcludingSubtypeTarget(base, target types.TypeID) types.TypeID {
	members := a.unionMembers(base)
	if len(members) > 1 {
		var kept []types.TypeID
		for _, m := range members {
			if !a.isSub(m, target) {
				kept = append(kept, m)
			}
		}
		return a.interner.Union(kept)
	}
	if a.isSub(base, target) {
		return types.Never
	}
	return base
}

// filterUnionByPredicate narrows base (union or not) to the members for
// which keep returns want. Used for structural (discriminant/`in`/truthy)
// predicates that don't reduce to a single "target type" comparison.
func (a *Analyzer) filterUnionByPredicate(base types.TypeID, want bool, keep func(types.TypeID) bool) types.TypeID {
	members := a.unionMembers(base)
	if len(members) == 1 {
		if keep(base) == want {
			return base
		}
		return types.Never
	}
	var kept []types.TypeID
	for _, m := range members {
		if keep(m) == want {
			kept = append(kept, m)
		}
	}
	return a.interner.Union(kept)
}

// typeHasProperty reports whether ty (an object/primitive apparent type)
// has a property named by the atom value propName.
func (a *Analyzer) typeHasProperty(ty types.TypeID, propName uint32) bool {
	if shape, ok := a.apparent.ShapeFor(ty); ok {
		_, found := findPropertyByName(shape, propName)
		return found
	}
	key, ok := a.interner.Lookup(ty)
	if !ok || (key.Kind != types.KindObject && key.Kind != types.KindObjectWithIndex) {
		return false
	}
	_, found := a.interner.PropertyIndex(key.ObjectShape, propName)
	return found
}

// propertyTypeOf returns the read type of the property named by propName on
// ty, if ty is an object shape carrying it.
func (a *Analyzer) propertyTypeOf(ty types.TypeID, propName uint32) (types.TypeID, bool) {
	key, ok := a.interner.Lookup(ty)
	if !ok || (key.Kind != types.KindObject && key.Kind != types.KindObjectWithIndex) {
		return types.Never, false
	}
	shape, ok := a.interner.ObjectShapeByID(key.ObjectShape)
	if !ok {
		return types.Never, false
	}
	idx, found := findPropertyByName(shape, propName)
	if !found {
		return types.Never, false
	}
	return shape.Properties[idx].ReadType, true
}

func findPropertyByName(shape types.ObjectShape, propName uint32) (int, bool) {
	for i, p := range shape.Properties {
		if uint32(p.Name) == propName {
			return i, true
		}
	}
	return 0, false
}

// truthiness classifies ty as always falsy, always truthy, or neither
// decidable from the type alone (a wide String/Number/Boolean/BigInt, or
// anything this analyzer doesn't recognize).
type truthiness uint8

const (
	truthinessUnknown truthiness = iota
	alwaysFalsy
	alwaysTruthy
)

func (a *Analyzer) classifyTruthiness(ty types.TypeID) truthiness {
	switch ty {
	case types.Null, types.Undefined, types.Void, types.False:
		return alwaysFalsy
	case types.True, types.FunctionIntrinsic:
		return alwaysTruthy
	}
	if key, ok := a.interner.Lookup(ty); ok {
		switch key.Kind {
		case types.KindLiteralString:
			if key.LitString == 0 {
				return alwaysFalsy
			}
			return alwaysTruthy
		case types.KindLiteralNumber:
			if key.LitNumberBits == 0 {
				return alwaysFalsy
			}
			return alwaysTruthy
		case types.KindLiteralBoolean:
			if key.LitBool {
				return alwaysTruthy
			}
			return alwaysFalsy
		case types.KindFunction, types.KindCallable, types.KindObject, types.KindObjectWithIndex, types.KindArray, types.KindTuple:
			return alwaysTruthy
		}
	}
	return truthinessUnknown
}

// filterByTruthiness narrows base against a bare `if (x)` guard: members
// known to be always falsy are dropped from the true branch (kept in the
// false branch); members known to be always truthy are dropped from the
// false branch; anything indeterminate (wide string/number/boolean/bigint)
// is kept in both branches untouched, since this package has no "non-empty
// string"-style exclusion type to narrow down to.
func (a *Analyzer) filterByTruthiness(base types.TypeID, positive bool) types.TypeID {
	members := a.unionMembers(base)
	var kept []types.TypeID
	for _, m := range members {
		switch a.classifyTruthiness(m) {
		case alwaysFalsy:
			if !positive {
				kept = append(kept, m)
			}
		case alwaysTruthy:
			if positive {
				kept = append(kept, m)
			}
		default:
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return types.Never
	}
	if len(kept) == len(members) {
		return base
	}
	return a.interner.Union(kept)
}

// typeofTargetType maps a `typeof x === "..."` tag to the intrinsic type it
// names, so the guard can go through narrowToSubtypeTarget/
// narrowExcludingSubtypeTarget exactly like an instanceof or literal-equality
// guard: this correctly narrows a wide base (Any/Unknown) down to, say,
// String, which a per-member tag-equality filter would get wrong (a wide
// base has no fixed tag of its own to compare against).
func (a *Analyzer) typeofTargetType(tag atom.Atom) (types.TypeID, bool) {
	switch a.atoms.Resolve(tag) {
	case "string":
		return types.String, true
	case "number":
		return types.Number, true
	case "boolean":
		return types.Boolean, true
	case "bigint":
		return types.BigInt, true
	case "symbol":
		return types.SymbolIntrinsic, true
	case "undefined":
		return types.Undefined, true
	case "function":
		return types.FunctionIntrinsic, true
	case "object":
		return types.Object, true
	default:
		return types.Never, false
	}
}
