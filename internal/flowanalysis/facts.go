// Package flowanalysis answers "what is this reference's type right here"
// by walking a flowgraph.Graph backward from a use site to its flow
// antecedents, applying narrowing, widening, and assignment-state rules.
//
// Grounded on spec.md §4.8 for the narrowing/widening/definite-assignment/
// TDZ rules themselves (the Rust NarrowingContext that would normally
// ground the actual predicate-derivation logic, in
// original_source/src/solver/narrowing.rs, was never retrieved into this
// pack — confirmed absent by a direct search — so those rules are built
// from spec.md's prose directly) and on
// original_source/src/solver/flow_analysis.rs for the FlowFacts/
// FlowTypeEvaluator shape (facts snapshot plus an on-demand query object).
package flowanalysis

import (
	"tschecker/internal/extcore"
	"tschecker/internal/types"
)

// Facts is a point-in-time snapshot of narrowing/assignment state for a set
// of references, as opposed to Analyzer's on-demand recomputation from the
// graph. Mirrors flow_analysis.rs's FlowFacts.
type Facts struct {
	narrowings          map[extcore.SymbolID]types.TypeID
	definiteAssignments map[extcore.SymbolID]bool
	tdzViolations       map[extcore.SymbolID]bool
}

// NewFacts creates an empty facts snapshot.
func NewFacts() *Facts {
	return &Facts{
		narrowings:          make(map[extcore.SymbolID]types.TypeID),
		definiteAssignments: make(map[extcore.SymbolID]bool),
		tdzViolations:       make(map[extcore.SymbolID]bool),
	}
}

// AddNarrowing records sym's narrowed type.
func (f *Facts) AddNarrowing(sym extcore.SymbolID, ty types.TypeID) {
	f.narrowings[sym] = ty
}

// MarkDefinitelyAssigned records that sym is definitely assigned at this
// snapshot's point.
func (f *Facts) MarkDefinitelyAssigned(sym extcore.SymbolID) {
	f.definiteAssignments[sym] = true
}

// MarkTDZViolation records a TDZ violation for sym.
func (f *Facts) MarkTDZViolation(sym extcore.SymbolID) {
	f.tdzViolations[sym] = true
}

// IsDefinitelyAssigned reports whether sym was marked definitely assigned.
func (f *Facts) IsDefinitelyAssigned(sym extcore.SymbolID) bool {
	return f.definiteAssignments[sym]
}

// HasTDZViolation reports whether sym was marked as a TDZ violation.
func (f *Facts) HasTDZViolation(sym extcore.SymbolID) bool {
	return f.tdzViolations[sym]
}

// GetNarrowedType returns sym's recorded narrowed type, if any.
func (f *Facts) GetNarrowedType(sym extcore.SymbolID) (types.TypeID, bool) {
	ty, ok := f.narrowings[sym]
	return ty, ok
}

// Merge joins two facts snapshots at a control-flow merge point: a
// narrowing survives only if both sides narrow to the identical type (an
// actual common-supertype union is a stronger statement this join doesn't
// attempt, mirroring flow_analysis.rs's merge which uses plain equality);
// definite assignment requires both sides to have it; a TDZ violation on
// either side carries through. Mirrors flow_analysis.rs's FlowFacts::merge.
func (f *Facts) Merge(other *Facts) *Facts {
	out := NewFacts()
	for sym, ty := range f.narrowings {
		if otherTy, ok := other.narrowings[sym]; ok && otherTy == ty {
			out.narrowings[sym] = ty
		}
	}
	for sym := range f.definiteAssignments {
		if other.definiteAssignments[sym] {
			out.definiteAssignments[sym] = true
		}
	}
	for sym := range f.tdzViolations {
		out.tdzViolations[sym] = true
	}
	for sym := range other.tdzViolations {
		out.tdzViolations[sym] = true
	}
	return out
}
