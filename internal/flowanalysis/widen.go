package flowanalysis

import (
	"tschecker/internal/extcore"
	"tschecker/internal/types"
)

// widenForAssignment computes the type an ASSIGNMENT flow node contributes
// for target, given valueType (the statically computed type of the
// right-hand expression). A literal assigned to a mutable (var/let)
// binding widens to its base primitive; a const binding, or a value wrapped
// in `as const`, keeps the literal. Mirrors spec.md §4.8's widening rule;
// re-implements infer.Context.baseType's switch independently rather than
// sharing it, keeping flowanalysis decoupled from internal/infer the same
// way it's decoupled from internal/subtype.
func (a *Analyzer) widenForAssignment(target, valueNode extcore.NodeID, valueType types.TypeID) types.TypeID {
	if !a.flow.IsMutableBinding(target) {
		return valueType
	}
	if a.isAsConstValue(valueNode) {
		return valueType
	}
	return a.widenLiteral(valueType)
}

// widenLiteral strips a literal type down to its base primitive
// (KindLiteralString -> String, True/False -> Boolean, and so on); any
// other type passes through unchanged.
func (a *Analyzer) widenLiteral(ty types.TypeID) types.TypeID {
	if ty == types.True || ty == types.False {
		return types.Boolean
	}
	key, ok := a.interner.Lookup(ty)
	if !ok {
		return ty
	}
	switch key.Kind {
	case types.KindLiteralString:
		return types.String
	case types.KindLiteralNumber:
		return types.Number
	case types.KindLiteralBoolean:
		return types.Boolean
	case types.KindLiteralBigInt:
		return types.BigInt
	case types.KindUnion:
		members := a.interner.TypeList(key.TypeList)
		widened := make([]types.TypeID, len(members))
		for i, m := range members {
			widened[i] = a.widenLiteral(m)
		}
		return a.interner.Union(widened)
	default:
		return ty
	}
}

// isAsConstValue reports whether value is an `expr as const` expression,
// whose assigned-from literal must stay frozen even on a mutable binding.
func (a *Analyzer) isAsConstValue(value extcore.NodeID) bool {
	if a.ast.Kind(value) != extcore.KindAsExpr {
		return false
	}
	_, isConst := a.flow.AsConstTarget(value)
	return isConst
}
