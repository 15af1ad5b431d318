// Package checker is the driver tying the three solver cores (evaluator,
// subtype, infer) and the two analysis passes (typelower, flowanalysis)
// together into the session-level operations spec.md §6 names:
// type_of/narrowed_type_of/is_subtype_of/instantiate/resolve_property/
// check_source_file. Grounded on internal/sema/check.go's Options/Result
// shape (a per-file driver that constructs one checker instance over a
// shared type interner and reports through a diag.Reporter), adapted to
// this repo's cores since the original's typeChecker walks a concrete
// Surge AST directly rather than going through extcore's capability
// interfaces.
package checker

import (
	"tschecker/internal/atom"
	"tschecker/internal/diag"
	"tschecker/internal/evaluator"
	"tschecker/internal/extcore"
	"tschecker/internal/flowanalysis"
	"tschecker/internal/flowgraph"
	"tschecker/internal/instantiate"
	"tschecker/internal/querycache"
	"tschecker/internal/subtype"
	"tschecker/internal/typelower"
	"tschecker/internal/types"
)

// ExprTypeFunc resolves an expression node's statically computed
// (unnarrowed) type, supplied by the caller rather than imported directly
// — the same decoupling flowanalysis.ExprTypeFunc already uses, since a
// fixture-built program has no separate inference pass of its own
// (internal/fixture.Arena.ExprType is the concrete instance a caller
// plugs in here).
type ExprTypeFunc func(node extcore.NodeID) types.TypeID

// Session is one semantic-analysis session over a single external AST,
// symbol table, and inheritance graph, matching internal/sema.Options'
// role of bundling the shared interner/reporter/symbol-table for one
// Check call. Not safe for concurrent use by multiple goroutines: the
// evaluator and subtype checker it owns carry per-instance recursion
// counters, exactly like internal/typelower.Lowering and
// internal/evaluator.Evaluator document of themselves — a parallel driver
// creates one Session per worker over the same read-only Interner/atoms.
type Session struct {
	Interner *types.Interner
	Atoms    *atom.Interner
	Apparent *types.ApparentTypes
	Options  extcore.CheckerOptions

	AST   extcore.ASTArena
	Flow  extcore.FlowArena
	Syms  extcore.SymbolTable
	Graph extcore.InheritanceGraph

	Cache *querycache.Cache
	Bag   *diag.Bag

	exprType ExprTypeFunc

	eval     *evaluator.Evaluator
	sub      *subtype.Checker
	lowering *typelower.Lowering
	reporter diag.Reporter
}

// NewSession wires the cores together: the evaluator is constructed first
// (without a subtype decider), then the subtype checker (which needs the
// evaluator for apparent-type reduction), then the evaluator is handed the
// subtype checker's IsSubtype back through WithSubtypeDecider — the same
// two-phase wiring internal/subtype's own tests use, with internal/
// querycache.Cache interposed on both directions so a session never
// recomputes the same (evaluate, id) or (is_subtype, source, target) query
// twice.
func NewSession(
	interner *types.Interner,
	atoms *atom.Interner,
	apparent *types.ApparentTypes,
	opts extcore.CheckerOptions,
	ast extcore.ASTArena,
	flow extcore.FlowArena,
	syms extcore.SymbolTable,
	graph extcore.InheritanceGraph,
	exprType ExprTypeFunc,
	cache *querycache.Cache,
	bag *diag.Bag,
) *Session {
	if cache == nil {
		cache = querycache.New()
	}
	eval := evaluator.New(interner, atoms, apparent, opts)
	sub := subtype.New(interner, atoms, apparent, eval, opts, graph)
	eval.WithSubtypeDecider(func(source, target types.TypeID) bool {
		return cache.IsSubtype(source, target, sub.IsSubtype)
	})

	// Every report goes through one DedupReporter per session, wrapping the
	// Bag: checking the same file can walk into the same assignability or
	// definite-assignment failure from more than one node (e.g. two
	// references to the same never-assigned binding), and a session-scoped
	// dedup window is cheap since a session covers exactly one file.
	reporter := diag.NewDedupReporter(&diag.BagReporter{Bag: bag})

	s := &Session{
		Interner: interner,
		Atoms:    atoms,
		Apparent: apparent,
		Options:  opts,
		AST:      ast,
		Flow:     flow,
		Syms:     syms,
		Graph:    graph,
		Cache:    cache,
		Bag:      bag,
		exprType: exprType,
		eval:     eval,
		sub:      sub,
		reporter: reporter,
	}
	s.lowering = typelower.New(ast, syms, interner, atoms, reporter)
	return s
}

// EvaluateType reduces a deferred TypeID (conditional/keyof/mapped/indexed
// access) to a concrete one, memoized per session.
func (s *Session) EvaluateType(t types.TypeID) types.TypeID {
	return s.Cache.Evaluate(t, s.eval.EvaluateType)
}

// IsSubtypeOf answers the assignability query, memoized per session.
func (s *Session) IsSubtypeOf(source, target types.TypeID) bool {
	return s.Cache.IsSubtype(source, target, s.sub.IsSubtype)
}

// CheckAssignability is IsSubtypeOf plus the FailureReason detail the
// subtype checker's Check entry point produces, for diagnostic reporting.
// Not cached: a FailureReason is only needed on the (rare) failing path,
// so there is no reuse to be had from memoizing it.
func (s *Session) CheckAssignability(source, target types.TypeID) (bool, *subtype.FailureReason) {
	return s.sub.Check(source, target)
}

// LowerType lowers a type-position syntax node to a TypeID.
func (s *Session) LowerType(node extcore.NodeID) types.TypeID {
	return s.lowering.LowerType(node)
}

// TypeOf returns a value-position node's declared (unnarrowed) static
// type: an identifier resolves through the symbol table's declared type,
// any other expression form defers to the session's ExprTypeFunc (the
// statically computed type a real inference pass, or a fixture builder,
// already assigned it).
func (s *Session) TypeOf(node extcore.NodeID) types.TypeID {
	if !node.IsValid() {
		return types.Error
	}
	if s.AST.Kind(node) == extcore.KindIdentifier {
		if sym, ok := s.Syms.ResolveValue(node); ok {
			return s.Syms.DeclaredTypeOf(sym)
		}
	}
	if s.exprType != nil {
		return s.exprType(node)
	}
	return types.Any
}

// NarrowedTypeOf returns ref's flow-narrowed type at its own flow position
// within body's control-flow graph (spec.md §4.8). body is the nearest
// enclosing function/program body; callers building one flow graph per
// body (the common case) should prefer FunctionChecker, which caches the
// graph and analyzer across every reference inside one body instead of
// rebuilding them per call.
func (s *Session) NarrowedTypeOf(body, ref extcore.NodeID) types.TypeID {
	fc := s.NewFunctionChecker(body, false, false)
	return fc.NarrowedTypeOf(ref)
}

// Instantiate substitutes sub's bindings through t (spec.md §5).
func (s *Session) Instantiate(t types.TypeID, sub *instantiate.Substitution) types.TypeID {
	return instantiate.InstantiateType(s.Interner, s.eval, t, sub)
}

// ResolveProperty looks up name on objType's apparent shape: an object
// type's own shape directly, or a primitive's boxed prototype shape via
// ApparentTypes, matching the same apparent-type reduction
// internal/subtype's property-compatibility checks perform before
// comparing a source and target property. Returns false if objType has no
// property of that name under either path.
func (s *Session) ResolveProperty(objType types.TypeID, name atom.Atom) (types.PropertyInfo, bool) {
	evaluated := s.EvaluateType(objType)
	key, ok := s.Interner.Lookup(evaluated)
	if ok && (key.Kind == types.KindObject || key.Kind == types.KindObjectWithIndex) {
		shape, shapeOK := s.Interner.ObjectShapeByID(key.ObjectShape)
		if shapeOK {
			if idx, found := s.Interner.PropertyIndex(key.ObjectShape, uint32(name)); found {
				return shape.Properties[idx], true
			}
		}
	}
	if shape, ok := s.Apparent.ShapeFor(evaluated); ok {
		for _, p := range shape.Properties {
			if p.Name == name {
				return p, true
			}
		}
	}
	return types.PropertyInfo{}, false
}

// report emits one diagnostic into the session's bag, through the
// session's DedupReporter so a repeated (code, span, message) triple is
// only recorded once.
func (s *Session) report(code diag.Code, primary extcore.NodeID, msg string) {
	diag.ReportError(s.reporter, code, s.AST.Span(primary), msg).Emit()
}

// reportWithFix emits one diagnostic carrying a single quick fix, for the
// handful of assignability failures (MissingProperty,
// OptionalPropertyRequired) specific enough about what's wrong that
// internal/fix has something concrete to apply.
func (s *Session) reportWithFix(code diag.Code, primary extcore.NodeID, msg, fixTitle string, edits ...diag.FixEdit) {
	diag.ReportError(s.reporter, code, s.AST.Span(primary), msg).WithFix(fixTitle, edits...).Emit()
}
