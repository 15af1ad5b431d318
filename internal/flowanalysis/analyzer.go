package flowanalysis

import (
	"tschecker/internal/atom"
	"tschecker/internal/extcore"
	"tschecker/internal/flowgraph"
	"tschecker/internal/types"
)

// ExprTypeFunc returns the statically computed (unnarrowed) type of an
// expression node; the analyzer needs this to read an assignment's
// right-hand type and to evaluate literal/predicate guard operands. The
// checker passes its Session.TypeOf (see checker.NewFunctionChecker); the
// same decoupling as infer.SubtypeFunc / evaluator.WithSubtypeDecider.
type ExprTypeFunc func(node extcore.NodeID) types.TypeID

// SubtypeFunc mirrors infer.SubtypeFunc's decoupling so this package never
// imports internal/subtype directly.
type SubtypeFunc func(source, target types.TypeID) bool

// Analyzer answers narrowed-type queries over a single flowgraph.Graph.
// Mirrors flow_analysis.rs's FlowTypeEvaluator.
type Analyzer struct {
	ast      extcore.ASTArena
	flow     extcore.FlowArena
	syms     extcore.SymbolTable
	graph    *flowgraph.Graph
	interner *types.Interner
	atoms    *atom.Interner
	apparent *types.ApparentTypes
	exprType ExprTypeFunc
	isSub    SubtypeFunc
}

// New creates an analyzer over graph, resolving references through syms and
// computing expression/subtype facts via the given callbacks.
func New(ast extcore.ASTArena, flow extcore.FlowArena, syms extcore.SymbolTable, graph *flowgraph.Graph, interner *types.Interner, atoms *atom.Interner, apparent *types.ApparentTypes, exprType ExprTypeFunc, isSub SubtypeFunc) *Analyzer {
	return &Analyzer{ast: ast, flow: flow, syms: syms, graph: graph, interner: interner, atoms: atoms, apparent: apparent, exprType: exprType, isSub: isSub}
}

// NarrowedTypeOf computes ref's type at flow node at, given its declared
// (unnarrowed) type. Mirrors compute_narrowed_type / spec.md §4.8.
func (a *Analyzer) NarrowedTypeOf(ref extcore.NodeID, declared types.TypeID, at flowgraph.NodeID) types.TypeID {
	sym, ok := a.syms.ResolveValue(ref)
	if !ok {
		return declared
	}
	memo := make(map[flowgraph.NodeID]types.TypeID)
	inProgress := make(map[flowgraph.NodeID]bool)
	return a.narrow(sym, declared, at, memo, inProgress)
}

func (a *Analyzer) narrow(sym extcore.SymbolID, declared types.TypeID, node flowgraph.NodeID, memo map[flowgraph.NodeID]types.TypeID, inProgress map[flowgraph.NodeID]bool) types.TypeID {
	if a.graph.IsUnreachable(node) {
		return types.Never
	}
	if ty, ok := memo[node]; ok {
		return ty
	}
	if inProgress[node] {
		// A LOOP_LABEL back edge (or any other cycle): returning the
		// declared type is a safe, conservative placeholder rather than
		// attempting full dataflow fixpoint iteration — it can only widen
		// the eventual union, never hide a real narrowing. spec.md §4.8
		// notes termination is guaranteed "via interning (finite number of
		// possible narrowed types per reference)"; this substitutes a
		// one-pass approximation for that fixpoint, documented in
		// DESIGN.md.
		return declared
	}
	inProgress[node] = true
	result := a.narrowNode(sym, declared, node, memo, inProgress)
	inProgress[node] = false
	memo[node] = result
	return result
}

func (a *Analyzer) narrowNode(sym extcore.SymbolID, declared types.TypeID, node flowgraph.NodeID, memo map[flowgraph.NodeID]types.TypeID, inProgress map[flowgraph.NodeID]bool) types.TypeID {
	n := a.graph.Node(node)
	recurseSingle := func() types.TypeID {
		if len(n.Antecedents) == 0 {
			return declared
		}
		return a.narrow(sym, declared, n.Antecedents[0], memo, inProgress)
	}

	switch {
	case n.Flags&flowgraph.FlagStart != 0:
		return declared

	case n.Flags&flowgraph.FlagAssignment != 0:
		if targetSym, ok := a.syms.ResolveValue(n.Target); ok && targetSym == sym {
			if !n.ASTNode.IsValid() {
				return declared
			}
			return a.widenForAssignment(n.Target, n.ASTNode, a.exprType(n.ASTNode))
		}
		return recurseSingle()

	case n.Flags&(flowgraph.FlagTrueCondition|flowgraph.FlagFalseCondition) != 0:
		base := recurseSingle()
		positive := n.Flags&flowgraph.FlagTrueCondition != 0
		if !n.ASTNode.IsValid() {
			return base
		}
		return a.applyPredicate(sym, base, n.ASTNode, positive)

	case n.Flags&flowgraph.FlagSwitchClause != 0:
		return a.narrowSwitchClause(sym, declared, n, memo, inProgress)

	case n.Flags&(flowgraph.FlagBranchLabel|flowgraph.FlagLoopLabel) != 0:
		if len(n.Antecedents) == 0 {
			return declared
		}
		parts := make([]types.TypeID, 0, len(n.Antecedents))
		for _, ant := range n.Antecedents {
			parts = append(parts, a.narrow(sym, declared, ant, memo, inProgress))
		}
		return a.interner.Union(parts)

	case n.Flags&(flowgraph.FlagArrayMutation|flowgraph.FlagAwaitPoint|flowgraph.FlagYieldPoint) != 0:
		// Event that can invalidate a narrowing that isn't re-established
		// by a subsequent assignment: conservatively fall back to the
		// declared type rather than tracking precisely which narrowings
		// survive a given mutation/suspension (documented simplification).
		return declared

	default:
		return recurseSingle()
	}
}

// narrowSwitchClause computes a SWITCH_CLAUSE node's type. A clause has the
// pre-switch flow as one antecedent and, when it can fall through from a
// preceding clause, that clause's own post-flow as a second antecedent.
// An antecedent that is itself a SWITCH_CLAUSE node (a preceding clause
// with an empty body) passes its narrowed type through unchanged. Any
// other antecedent is narrowed to the case expression's type only when
// that case expression is itself a reference to sym; a case expression
// such as a literal leaves the type unnarrowed, and a default clause takes
// the antecedent types as they are, without excluding the earlier cases.
func (a *Analyzer) narrowSwitchClause(sym extcore.SymbolID, declared types.TypeID, n flowgraph.Node, memo map[flowgraph.NodeID]types.TypeID, inProgress map[flowgraph.NodeID]bool) types.TypeID {
	test, isDefault, _ := a.flow.SwitchClauseParts(n.ASTNode)
	var parts []types.TypeID
	for _, ant := range n.Antecedents {
		antNode := a.graph.Node(ant)
		if antNode.Flags&flowgraph.FlagSwitchClause != 0 {
			// Fallthrough predecessor: reuse its narrowed type as-is.
			parts = append(parts, a.narrow(sym, declared, ant, memo, inProgress))
			continue
		}
		base := a.narrow(sym, declared, ant, memo, inProgress)
		if isDefault || !test.IsValid() {
			parts = append(parts, base)
			continue
		}
		if ref, ok := a.referenceTarget(test); ok && ref == sym {
			parts = append(parts, a.narrowToSubtypeTarget(base, a.exprType(test)))
			continue
		}
		parts = append(parts, base)
	}
	if len(parts) == 0 {
		return declared
	}
	return a.interner.Union(parts)
}

// referenceTarget reports the symbol a bare identifier expression resolves
// to, used to test "is this guard operand our reference".
func (a *Analyzer) referenceTarget(node extcore.NodeID) (extcore.SymbolID, bool) {
	if !node.IsValid() || a.ast.Kind(node) != extcore.KindIdentifier {
		return extcore.NoSymbolID, false
	}
	return a.syms.ResolveValue(node)
}
