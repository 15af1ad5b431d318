package flowanalysis

import (
	"tschecker/internal/extcore"
	"tschecker/internal/flowgraph"
)

// IsDefinitelyAssigned reports whether every path from the function's entry
// to flow position at has already assigned sym — the graph-reachability
// half of spec.md §4.8's definite-assignment/TDZ rule. The remaining half
// ("and that assignment's declaration textually precedes at") is left to
// the symbol-table/span-comparison layer above this package, since
// extcore.SymbolTable exposes no symbol-to-declaration-node mapping this
// package could use to decide it alone.
func (a *Analyzer) IsDefinitelyAssigned(sym extcore.SymbolID, at flowgraph.NodeID) bool {
	memo := make(map[flowgraph.NodeID]bool)
	inProgress := make(map[flowgraph.NodeID]bool)
	return a.assignedOnEveryPath(sym, at, memo, inProgress)
}

// AnyPathAssigns reports whether some path from entry to at has already
// assigned sym, i.e. whether a TDZ violation is merely possible (as opposed
// to guaranteed) at at. Used to distinguish "definitely used before
// assignment" from "possibly used before assignment on some paths" when a
// caller wants to downgrade the latter to a weaker diagnostic.
func (a *Analyzer) AnyPathAssigns(sym extcore.SymbolID, at flowgraph.NodeID) bool {
	memo := make(map[flowgraph.NodeID]bool)
	inProgress := make(map[flowgraph.NodeID]bool)
	return a.assignedOnSomePath(sym, at, memo, inProgress)
}

func (a *Analyzer) assignedOnEveryPath(sym extcore.SymbolID, node flowgraph.NodeID, memo, inProgress map[flowgraph.NodeID]bool) bool {
	if a.graph.IsUnreachable(node) {
		// Dead code imposes no obligation.
		return true
	}
	if v, ok := memo[node]; ok {
		return v
	}
	if inProgress[node] {
		// Loop back edge: assume not-yet-assigned rather than attempting a
		// fixpoint. This can only make the merge conservative (fewer
		// definite-assignment claims), never unsafely optimistic.
		return false
	}
	inProgress[node] = true
	result := a.definiteAssignedStep(sym, node, true, memo, inProgress)
	inProgress[node] = false
	memo[node] = result
	return result
}

func (a *Analyzer) assignedOnSomePath(sym extcore.SymbolID, node flowgraph.NodeID, memo, inProgress map[flowgraph.NodeID]bool) bool {
	if a.graph.IsUnreachable(node) {
		return false
	}
	if v, ok := memo[node]; ok {
		return v
	}
	if inProgress[node] {
		return false
	}
	inProgress[node] = true
	result := a.definiteAssignedStep(sym, node, false, memo, inProgress)
	inProgress[node] = false
	memo[node] = result
	return result
}

// definiteAssignedStep implements one node's contribution to either query;
// requireAll selects AND-over-antecedents (definite) vs OR-over-antecedents
// (possible) at merge points.
func (a *Analyzer) definiteAssignedStep(sym extcore.SymbolID, node flowgraph.NodeID, requireAll bool, memo, inProgress map[flowgraph.NodeID]bool) bool {
	n := a.graph.Node(node)

	if n.Flags&flowgraph.FlagStart != 0 {
		return false
	}

	if n.Flags&flowgraph.FlagAssignment != 0 {
		if targetSym, ok := a.syms.ResolveValue(n.Target); ok && targetSym == sym {
			return true
		}
	}

	if len(n.Antecedents) == 0 {
		return false
	}

	if len(n.Antecedents) == 1 {
		return a.recurseAssigned(sym, n.Antecedents[0], requireAll, memo, inProgress)
	}

	if requireAll {
		for _, ant := range n.Antecedents {
			if !a.recurseAssigned(sym, ant, requireAll, memo, inProgress) {
				return false
			}
		}
		return true
	}
	for _, ant := range n.Antecedents {
		if a.recurseAssigned(sym, ant, requireAll, memo, inProgress) {
			return true
		}
	}
	return false
}

func (a *Analyzer) recurseAssigned(sym extcore.SymbolID, node flowgraph.NodeID, requireAll bool, memo, inProgress map[flowgraph.NodeID]bool) bool {
	if requireAll {
		return a.assignedOnEveryPath(sym, node, memo, inProgress)
	}
	return a.assignedOnSomePath(sym, node, memo, inProgress)
}
