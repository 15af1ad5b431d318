package checker

import (
	"tschecker/internal/extcore"
	"tschecker/internal/flowanalysis"
	"tschecker/internal/flowgraph"
	"tschecker/internal/types"
)

// FunctionChecker scopes a built flow graph and its analyzer to one
// function/program body, so narrowing, definite-assignment, and
// unreachability queries against every reference inside that body share
// one graph instead of rebuilding it per call — grounded on
// internal/flowanalysis.Analyzer's own doc comment that a caller builds one
// Analyzer per function body over the flowgraph.Builder output.
type FunctionChecker struct {
	session  *Session
	graph    *flowgraph.Graph
	analyzer *flowanalysis.Analyzer
}

// NewFunctionChecker builds body's control-flow graph and an analyzer over
// it. isAsync/isGenerator control how the builder treats await/yield
// suspension points, matching flowgraph.Builder.BuildFunctionBody.
func (s *Session) NewFunctionChecker(body extcore.NodeID, isAsync, isGenerator bool) *FunctionChecker {
	graph := flowgraph.NewBuilder(s.AST, s.Flow).BuildFunctionBody(body, isAsync, isGenerator)
	analyzer := flowanalysis.New(
		s.AST, s.Flow, s.Syms, graph, s.Interner, s.Atoms, s.Apparent,
		flowanalysis.ExprTypeFunc(s.TypeOf),
		flowanalysis.SubtypeFunc(s.IsSubtypeOf),
	)
	return &FunctionChecker{session: s, graph: graph, analyzer: analyzer}
}

// Graph returns the built flow graph, for callers that need direct access
// (e.g. to walk every recorded flow position).
func (fc *FunctionChecker) Graph() *flowgraph.Graph { return fc.graph }

// NarrowedTypeOf returns ref's narrowed type at its own flow position. ref
// must be a reference (Identifier) node that resolves to a value symbol;
// any other node falls back to Session.TypeOf.
func (fc *FunctionChecker) NarrowedTypeOf(ref extcore.NodeID) types.TypeID {
	sym, ok := fc.session.Syms.ResolveValue(ref)
	if !ok {
		return fc.session.TypeOf(ref)
	}
	declared := fc.session.Syms.DeclaredTypeOf(sym)
	at, ok := fc.graph.FlowAt(ref)
	if !ok {
		return declared
	}
	return fc.analyzer.NarrowedTypeOf(ref, declared, at)
}

// IsDefinitelyAssigned reports whether ref's symbol is assigned on every
// path reaching ref's flow position. References with no recorded flow
// position (a node the builder never visited, e.g. inside an unreachable
// branch it pruned) are treated as assigned: there is nothing left to
// flag.
func (fc *FunctionChecker) IsDefinitelyAssigned(ref extcore.NodeID) bool {
	sym, ok := fc.session.Syms.ResolveValue(ref)
	if !ok {
		return true
	}
	at, ok := fc.graph.FlowAt(ref)
	if !ok {
		return true
	}
	return fc.analyzer.IsDefinitelyAssigned(sym, at)
}

// IsUnreachable reports whether node's own flow position was marked
// unreachable by the builder (spec.md §4.7's dead-code detection: a
// statement following an unconditional return/throw/break/continue). The
// builder does not evaluate conditions, so a branch guarded by an
// always-false condition stays reachable.
func (fc *FunctionChecker) IsUnreachable(node extcore.NodeID) bool {
	at, ok := fc.graph.FlowAt(node)
	if !ok {
		return false
	}
	return fc.graph.IsUnreachable(at)
}
