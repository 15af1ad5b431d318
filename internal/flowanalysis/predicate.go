package flowanalysis

import (
	"tschecker/internal/extcore"
	"tschecker/internal/types"
)

// applyPredicate narrows base by the guard expression guard, given whether
// the branch being computed is the guard's true or false outcome. Ported
// from spec.md §4.8's narrowing-guard enumeration; original_source/src/
// solver/narrowing.rs (which would otherwise ground this dispatch) was
// confirmed absent from the pack, so every case below is built from the
// spec's prose directly rather than a Rust port.
func (a *Analyzer) applyPredicate(sym extcore.SymbolID, base types.TypeID, guard extcore.NodeID, positive bool) types.TypeID {
	switch a.ast.Kind(guard) {
	case extcore.KindLogicalExpr:
		op, left, right := a.flow.LogicalParts(guard)
		return a.applyLogical(sym, base, op, left, right, positive)

	case extcore.KindUnaryExpr:
		op, operand := a.flow.UnaryParts(guard)
		if op == "!" {
			return a.applyPredicate(sym, base, operand, !positive)
		}
		return base

	case extcore.KindBinaryExpr:
		return a.applyBinary(sym, base, guard, positive)

	case extcore.KindInstanceofExpr:
		left, right := a.flow.InstanceofParts(guard)
		leftSym, ok := a.referenceTarget(left)
		if !ok || leftSym != sym {
			return base
		}
		target := a.exprType(right)
		if positive {
			return a.narrowToSubtypeTarget(base, target)
		}
		return a.narrowExcludingSubtypeTarget(base, target)

	case extcore.KindInExpr:
		prop, object := a.flow.InParts(guard)
		objSym, ok := a.referenceTarget(object)
		if !ok || objSym != sym {
			return base
		}
		lit, ok := a.flow.LiteralValueOf(prop)
		if !ok || lit.Kind != extcore.LiteralStringKind {
			return base
		}
		propName := uint32(lit.Str)
		return a.filterUnionByPredicate(base, positive, func(member types.TypeID) bool {
			return a.typeHasProperty(member, propName)
		})

	case extcore.KindCallExpr:
		return a.applyCallPredicate(sym, base, guard, positive)

	default:
		// A bare truthiness guard (`if (x)`) on the reference itself: TS
		// narrows by excluding/including falsy members. Anything else
		// (unrelated expression) leaves base untouched.
		if ref, ok := a.referenceTarget(guard); ok && ref == sym {
			return a.filterByTruthiness(base, positive)
		}
		return base
	}
}

func (a *Analyzer) applyLogical(sym extcore.SymbolID, base types.TypeID, op string, left, right extcore.NodeID, positive bool) types.TypeID {
	switch {
	case op == "&&" && positive:
		// (A && B) is true only when both are true: narrow by both, in order.
		mid := a.applyPredicate(sym, base, left, true)
		return a.applyPredicate(sym, mid, right, true)
	case op == "||" && !positive:
		// (A || B) is false only when both are false: narrow by both.
		mid := a.applyPredicate(sym, base, left, false)
		return a.applyPredicate(sym, mid, right, false)
	default:
		// (A && B) false, or (A || B) true: which branch was responsible
		// isn't decidable from one flow edge alone. Conservatively apply
		// no narrowing rather than guessing.
		return base
	}
}

// applyBinary handles `===`/`!==`/`==`/`!=`, including the `typeof x ===
// "..."` and `x.tag === <literal>` discriminant forms.
func (a *Analyzer) applyBinary(sym extcore.SymbolID, base types.TypeID, guard extcore.NodeID, positive bool) types.TypeID {
	op, left, right := a.flow.BinaryParts(guard)
	switch op {
	case "===", "!==", "==", "!=":
		eq := op == "===" || op == "=="
		want := positive == eq
		return a.applyEquality(sym, base, left, right, want)
	default:
		return base
	}
}

// applyEquality handles `x === <literal>`, `typeof x === "..."`, and
// `x.tag === <literal>` regardless of operand order.
func (a *Analyzer) applyEquality(sym extcore.SymbolID, base types.TypeID, left, right extcore.NodeID, want bool) types.TypeID {
	if ty, ok := a.tryEqualityOperand(sym, base, left, right, want); ok {
		return ty
	}
	if ty, ok := a.tryEqualityOperand(sym, base, right, left, want); ok {
		return ty
	}
	return base
}

// tryEqualityOperand treats guarded as the side that names (directly, via
// typeof, or via a member access) sym, and literalSide as the comparison
// value; returns (narrowed, true) on the first recognized shape.
func (a *Analyzer) tryEqualityOperand(sym extcore.SymbolID, base types.TypeID, guarded, literalSide extcore.NodeID, want bool) (types.TypeID, bool) {
	if refSym, ok := a.referenceTarget(guarded); ok && refSym == sym {
		litType := a.exprType(literalSide)
		if want {
			return a.narrowToSubtypeTarget(base, litType), true
		}
		return a.narrowExcludingSubtypeTarget(base, litType), true
	}

	if a.ast.Kind(guarded) == extcore.KindTypeofExpr {
		operand := a.flow.TypeofParts(guarded)
		refSym, ok := a.referenceTarget(operand)
		if !ok || refSym != sym {
			return types.Never, false
		}
		lit, ok := a.flow.LiteralValueOf(literalSide)
		if !ok || lit.Kind != extcore.LiteralStringKind {
			return types.Never, false
		}
		target, ok := a.typeofTargetType(lit.Str)
		if !ok {
			return types.Never, false
		}
		if want {
			return a.narrowToSubtypeTarget(base, target), true
		}
		return a.narrowExcludingSubtypeTarget(base, target), true
	}

	if a.ast.Kind(guarded) == extcore.KindMemberExpr {
		object, property, optional := a.flow.MemberParts(guarded)
		if optional {
			return types.Never, false
		}
		objSym, ok := a.referenceTarget(object)
		if !ok || objSym != sym {
			return types.Never, false
		}
		litType := a.exprType(literalSide)
		propName := uint32(property)
		return a.filterUnionByPredicate(base, want, func(member types.TypeID) bool {
			propType, ok := a.propertyTypeOf(member, propName)
			return ok && propType == litType
		}), true
	}

	return types.Never, false
}

// applyCallPredicate recognizes a user-defined type predicate call
// `guard(x)` whose declared return type is `x is T` / `asserts x is T`.
func (a *Analyzer) applyCallPredicate(sym extcore.SymbolID, base types.TypeID, call extcore.NodeID, positive bool) types.TypeID {
	callee, args := a.flow.CallParts(call)
	fnType := a.exprType(callee)
	shape, ok := a.functionShapeOf(fnType)
	if !ok || shape.Predicate.Kind == types.NoPredicate {
		return base
	}
	idx := -1
	for i, p := range shape.Params {
		if p.Name == shape.Predicate.ParamName {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(args) {
		return base
	}
	refSym, ok := a.referenceTarget(args[idx])
	if !ok || refSym != sym {
		return base
	}
	if shape.Predicate.Kind == types.AssertsPredicate && !positive {
		// `asserts x is T` only constrains the path following a
		// non-throwing call; the false/never-returned edge carries no
		// extra information.
		return base
	}
	if positive {
		return a.narrowToSubtypeTarget(base, shape.Predicate.AssertedType)
	}
	return a.narrowExcludingSubtypeTarget(base, shape.Predicate.AssertedType)
}

func (a *Analyzer) functionShapeOf(ty types.TypeID) (types.FunctionShape, bool) {
	key, ok := a.interner.Lookup(ty)
	if !ok || key.Kind != types.KindFunction {
		return types.FunctionShape{}, false
	}
	return a.interner.FunctionShapeByID(key.FunctionSig)
}
