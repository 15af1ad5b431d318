// Package evaluator reduces deferred type forms (conditional, keyof, indexed
// access, mapped) to concrete TypeIDs. Grounded on
// original_source/src/solver/evaluate_rules/{keyof,mapped}.rs for the
// case-by-case keyof/mapped rules and spec.md §4.3 for the conditional and
// indexed-access contracts, which the retrieved evaluate_rules/ files did
// not themselves include.
package evaluator

import (
	"tschecker/internal/atom"
	"tschecker/internal/extcore"
	"tschecker/internal/types"
)

// MaxEvaluationDepth bounds evaluate_type's recursion (spec.md §4.3,
// "default 50").
const MaxEvaluationDepth = 50

// MaxMappedKeySet bounds the number of keys evaluate_mapped will expand
// before giving up and returning ERROR. spec.md does not name an exact
// figure for this cap ("a key-set size ceiling prevents OOM"); 10,000 is
// chosen to match the order of magnitude of the subtype checker's
// MAX_IN_PROGRESS_PAIRS budget (internal/subtype), since both exist to stop
// the same class of adversarial-generic-expansion blowup.
const MaxMappedKeySet = 10_000

// arrayMethodNames are the Array.prototype member names `keyof T[]`
// includes alongside the numeric index, mirroring how the apparent-type
// table enumerates String.prototype members (internal/types/apparent.go).
var arrayMethodNames = []string{
	"length", "push", "pop", "shift", "unshift", "slice", "splice",
	"concat", "join", "reverse", "sort", "indexOf", "lastIndexOf",
	"forEach", "map", "filter", "reduce", "reduceRight", "some", "every",
	"find", "findIndex", "includes", "flat", "flatMap", "fill",
	"copyWithin", "keys", "values", "entries", "toString", "toLocaleString",
}

// Evaluator reduces deferred TypeIDs to concrete ones. Not safe for
// concurrent use by multiple goroutines against the same instance (the
// depth counter is instance state); the driver creates one per worker,
// mirroring internal/typelower.Lowering.
type Evaluator struct {
	interner *types.Interner
	atoms    *atom.Interner
	apparent *types.ApparentTypes
	opts     extcore.CheckerOptions

	depth         int
	depthExceeded bool

	// decideSubtype plugs the subtype checker's check ≤ extends decision
	// into conditional-type evaluation without this package importing
	// internal/subtype, which itself calls back into the evaluator to
	// force deferred operands before comparing them (an import cycle
	// otherwise). Left nil, an undecidable conditional stays deferred.
	decideSubtype func(source, target types.TypeID) bool
}

// New creates an Evaluator bound to a shared interner/atom store/apparent
// table and a session's immutable checker options.
func New(interner *types.Interner, atoms *atom.Interner, apparent *types.ApparentTypes, opts extcore.CheckerOptions) *Evaluator {
	return &Evaluator{interner: interner, atoms: atoms, apparent: apparent, opts: opts}
}

// WithSubtypeDecider wires the subtype checker's is_subtype_of decision
// into conditional-type evaluation; internal/checker calls this once
// during setup, after constructing both the Evaluator and the subtype
// checker (whichever is built second wires the other in).
func (e *Evaluator) WithSubtypeDecider(decide func(source, target types.TypeID) bool) {
	e.decideSubtype = decide
}

// DepthExceeded reports whether the recursion cap was hit at any point
// during this Evaluator's lifetime.
func (e *Evaluator) DepthExceeded() bool { return e.depthExceeded }

// EvaluateType reduces T to a concrete shape, recursing into deferred
// Conditional/Mapped/IndexAccess/KeyOf nodes it finds along the way.
// Idempotent: calling it again on an already-concrete T returns T
// unchanged.
func (e *Evaluator) EvaluateType(t types.TypeID) types.TypeID {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > MaxEvaluationDepth {
		e.depthExceeded = true
		return types.Error
	}

	key, ok := e.interner.Lookup(t)
	if !ok {
		return t // intrinsic, or Error: already concrete
	}

	switch key.Kind {
	case types.KindConditional:
		return e.EvaluateConditional(t)
	case types.KindMapped:
		return e.EvaluateMapped(t)
	case types.KindIndexAccess:
		return e.EvaluateIndexAccess(key.Elem, key.Elem2)
	case types.KindKeyOf:
		return e.EvaluateKeyOf(key.Elem)
	default:
		return t
	}
}

// EvaluateConditional computes `Check extends Extends ? True : False`. When
// Check is a naked type parameter and evaluates against a union Extends
// distributes over, it distributes: each union member of Check is checked
// independently and the results unioned (spec.md §4.3).
func (e *Evaluator) EvaluateConditional(t types.TypeID) types.TypeID {
	key, ok := e.interner.Lookup(t)
	if !ok || key.Kind != types.KindConditional {
		return t
	}
	cond, ok := e.interner.ConditionalByID(key.Conditional)
	if !ok {
		return types.Error
	}

	if cond.Check == types.Never {
		return types.Never
	}
	if cond.Check == types.Any {
		return e.interner.Union([]types.TypeID{cond.True, cond.False})
	}

	// Distribution applies only when Check names a bare type parameter
	// (checked structurally: KindTypeParameter) and the thing substituted
	// for it at this call site is itself a union. Since TypeID identity
	// already carries substitution results by the time evaluate_conditional
	// runs (instantiate_type_with_infer resolves the parameter first), the
	// distributive case in this evaluator shows up as cond.Check itself
	// being a Union: a prior instantiation step already replaced the naked
	// parameter with its substituted union.
	if checkKey, ok := e.interner.Lookup(cond.Check); ok && checkKey.Kind == types.KindUnion {
		members := e.interner.TypeList(checkKey.TypeList)
		results := make([]types.TypeID, len(members))
		for i, m := range members {
			results[i] = e.evaluateConditionalBranch(m, cond)
		}
		return e.interner.Union(results)
	}

	return e.evaluateConditionalBranch(cond.Check, cond)
}

// evaluateConditionalBranch decides one (non-distributed) check value
// against Extends, returning True/False or the conditional unchanged if
// Check is abstract (a bare type parameter whose relationship to Extends
// can't be decided without more context than the evaluator owns).
func (e *Evaluator) evaluateConditionalBranch(check types.TypeID, cond types.ConditionalType) types.TypeID {
	if checkKey, ok := e.interner.Lookup(check); ok && checkKey.Kind == types.KindTypeParameter {
		return e.interner.Conditional(types.ConditionalType{
			Check: check, Extends: cond.Extends, True: cond.True, False: cond.False, InferParams: cond.InferParams,
		})
	}
	if check == types.Never {
		return types.Never
	}
	// The actual check ≤ extends decision is the subtype checker's
	// responsibility; the evaluator calls through a narrow seam so this
	// package never needs to import internal/subtype (which itself calls
	// back into the evaluator to force deferred operands first — importing
	// it here would cycle). Callers that need full conditional evaluation
	// construct the Evaluator with a DecideSubtype callback via
	// WithSubtypeDecider; without one, an undecided check is conservative
	// and defers.
	if e.decideSubtype == nil {
		return e.interner.Conditional(types.ConditionalType{
			Check: check, Extends: cond.Extends, True: cond.True, False: cond.False, InferParams: cond.InferParams,
		})
	}
	if e.decideSubtype(check, cond.Extends) {
		return e.EvaluateType(cond.True)
	}
	return e.EvaluateType(cond.False)
}
