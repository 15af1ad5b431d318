// Package infer implements generic type-parameter inference: a union-find
// over inference variables, constraint collection from structural type
// comparisons, and bounds-driven resolution. Grounded on
// original_source/src/solver/infer.rs, which builds the same algorithm atop
// the ena crate's InPlaceUnificationTable. No example repo in the retrieval
// pack pulls in a union-find library, so the table here is a hand-rolled
// parent-array with path compression and union by rank instead of an
// imported dependency (see DESIGN.md).
package infer

import (
	"fmt"

	"tschecker/internal/atom"
	"tschecker/internal/diag"
	"tschecker/internal/types"
)

// Var names an inference variable. Fresh vars are handed out in order
// starting at 0; Var(0) is valid once at least one has been created.
type Var uint32

// value is an inference variable's current unification slot: either
// unresolved, or unified down to a concrete TypeID.
type value struct {
	resolved bool
	ty       types.TypeID
}

// unifyValues mirrors InferenceValue::unify_values: keep whichever side is
// already resolved, and when both are, arbitrarily keep the left one (the
// caller who wants conflicts reported compares the two beforehand).
func unifyValues(a, b value) value {
	switch {
	case !a.resolved && !b.resolved:
		return value{}
	case a.resolved && !b.resolved:
		return a
	case !a.resolved && b.resolved:
		return b
	default:
		return a
	}
}

type entry struct {
	parent Var
	rank   uint8
	value  value
}

// ConstraintSet tracks the lower bounds (types that must flow into a
// variable) and upper bounds (types a variable must flow into) collected
// for one inference variable.
type ConstraintSet struct {
	Lower []types.TypeID
	Upper []types.TypeID
}

func (s *ConstraintSet) addLower(ty types.TypeID) {
	for _, t := range s.Lower {
		if t == ty {
			return
		}
	}
	s.Lower = append(s.Lower, ty)
}

func (s *ConstraintSet) addUpper(ty types.TypeID) {
	for _, t := range s.Upper {
		if t == ty {
			return
		}
	}
	s.Upper = append(s.Upper, ty)
}

// IsEmpty reports whether no bound has been recorded at all.
func (s ConstraintSet) IsEmpty() bool { return len(s.Lower) == 0 && len(s.Upper) == 0 }

func (s *ConstraintSet) mergeFrom(other ConstraintSet) {
	for _, ty := range other.Lower {
		s.addLower(ty)
	}
	for _, ty := range other.Upper {
		s.addUpper(ty)
	}
}

func (s ConstraintSet) clone() ConstraintSet {
	out := ConstraintSet{Lower: make([]types.TypeID, len(s.Lower)), Upper: make([]types.TypeID, len(s.Upper))}
	copy(out.Lower, s.Lower)
	copy(out.Upper, s.Upper)
	return out
}

// Error reports an inference failure. Code distinguishes which
// InferenceError variant this is; only the fields that variant uses are
// meaningful (mirrors the diag.FailureReason idiom used by internal/subtype:
// one tagged struct rather than a Go sum type).
type Error struct {
	Code             diag.Code
	Var              Var
	Type             types.TypeID
	Lower            types.TypeID
	Upper            types.TypeID
	ExpectedVariance string
}

func (e *Error) Error() string {
	switch e.Code {
	case diag.InferenceConflict:
		return fmt.Sprintf("%s: var %d already resolved incompatibly (type %d)", e.Code, e.Var, e.Type)
	case diag.InferenceUnresolved:
		return fmt.Sprintf("%s: var %d", e.Code, e.Var)
	case diag.OccursCheck:
		return fmt.Sprintf("%s: var %d occurs within type %d", e.Code, e.Var, e.Type)
	case diag.BoundsViolation:
		return fmt.Sprintf("%s: var %d's inferred lower bound %d is not assignable to upper bound %d", e.Code, e.Var, e.Lower, e.Upper)
	case diag.VarianceViolation:
		return fmt.Sprintf("%s: var %d expected %s at position %d", e.Code, e.Var, e.ExpectedVariance, e.Type)
	default:
		return e.Code.String()
	}
}

type typeParamBinding struct {
	name atom.Atom
	v    Var
}

// Context is a type-inference session for a single generic call or
// instantiation: one union-find table plus the constraint sets accumulated
// against each of its roots. Grounded on infer.rs's InferenceContext.
type Context struct {
	interner    *types.Interner
	entries     []entry
	typeParams  []typeParamBinding
	constraints []ConstraintSet
}

// New creates an empty inference context over interner.
func New(interner *types.Interner) *Context {
	return &Context{interner: interner}
}

// FreshVar allocates a new, unconstrained inference variable.
func (c *Context) FreshVar() Var {
	v := Var(len(c.entries))
	c.entries = append(c.entries, entry{parent: v, rank: 0, value: value{}})
	c.constraints = append(c.constraints, ConstraintSet{})
	return v
}

// FreshTypeParam allocates a variable and registers it as the
// representative of the type parameter name.
func (c *Context) FreshTypeParam(name atom.Atom) Var {
	v := c.FreshVar()
	c.typeParams = append(c.typeParams, typeParamBinding{name: name, v: v})
	return v
}

// RegisterTypeParam records that an already-allocated variable represents
// the named type parameter, for callers that allocate the variable (to
// compute a placeholder TypeID from it) before they know its name.
func (c *Context) RegisterTypeParam(name atom.Atom, v Var) {
	c.typeParams = append(c.typeParams, typeParamBinding{name: name, v: v})
}

// FindTypeParam looks up the inference variable standing for a type
// parameter name, if one was registered.
func (c *Context) FindTypeParam(name atom.Atom) (Var, bool) {
	for _, b := range c.typeParams {
		if b.name == name {
			return b.v, true
		}
	}
	return 0, false
}

// find returns the union-find root of v, compressing the path as it goes.
func (c *Context) find(v Var) Var {
	root := v
	for c.entries[root].parent != root {
		root = c.entries[root].parent
	}
	for c.entries[v].parent != root {
		next := c.entries[v].parent
		c.entries[v].parent = root
		v = next
	}
	return root
}

// Probe reports the concrete type, if any, that v has been unified to.
func (c *Context) Probe(v Var) (types.TypeID, bool) {
	root := c.find(v)
	val := c.entries[root].value
	return val.ty, val.resolved
}

// UnifyVarType unifies var with a concrete type, after an occurs check.
// Mirrors infer.rs's unify_var_type.
func (c *Context) UnifyVarType(v Var, ty types.TypeID) error {
	root := c.find(v)
	if c.occursIn(root, ty) {
		return &Error{Code: diag.OccursCheck, Var: root, Type: ty}
	}
	cur := c.entries[root].value
	if !cur.resolved {
		c.entries[root].value = value{resolved: true, ty: ty}
		return nil
	}
	if cur.ty == ty || typesCompatible(cur.ty, ty) {
		return nil
	}
	return &Error{Code: diag.InferenceConflict, Var: root, Type: ty}
}

// UnifyVars unifies two inference variables with each other, merging their
// constraint sets into whichever root the union-find keeps. Mirrors
// infer.rs's unify_vars.
func (c *Context) UnifyVars(a, b Var) error {
	rootA, rootB := c.find(a), c.find(b)
	if rootA == rootB {
		return nil
	}
	valA, valB := c.entries[rootA].value, c.entries[rootB].value
	if valA.resolved && valB.resolved && valA.ty != valB.ty && !typesCompatible(valA.ty, valB.ty) {
		return &Error{Code: diag.InferenceConflict, Var: rootA, Type: valB.ty}
	}

	var newRoot, oldRoot Var
	switch {
	case c.entries[rootA].rank < c.entries[rootB].rank:
		newRoot, oldRoot = rootB, rootA
	case c.entries[rootA].rank > c.entries[rootB].rank:
		newRoot, oldRoot = rootA, rootB
	default:
		newRoot, oldRoot = rootA, rootB
		c.entries[newRoot].rank++
	}
	c.entries[oldRoot].parent = newRoot
	c.entries[newRoot].value = unifyValues(valA, valB)

	merged := c.constraints[rootA].clone()
	merged.mergeFrom(c.constraints[rootB])
	c.constraints[newRoot] = merged
	if oldRoot != newRoot {
		c.constraints[oldRoot] = ConstraintSet{}
	}
	return nil
}

// typesCompatible is a fast, permissive sanity check used only at
// unify-time: Any/Unknown/Never absorb any pairing. It is deliberately not
// the full subtype lattice (that's internal/subtype's job); resolution
// against real upper bounds happens later, via the caller-supplied subtype
// decider passed to ResolveWithConstraints.
func typesCompatible(a, b types.TypeID) bool {
	if a == b {
		return true
	}
	for _, t := range [2]types.TypeID{a, b} {
		if t == types.Any || t == types.Unknown || t == types.Never {
			return true
		}
	}
	return false
}

// AddLowerBound records ty as a lower bound (ty <: v) on v's root.
func (c *Context) AddLowerBound(v Var, ty types.TypeID) {
	root := c.find(v)
	c.constraints[root].addLower(ty)
}

// AddUpperBound records ty as an upper bound (v <: ty) on v's root.
func (c *Context) AddUpperBound(v Var, ty types.TypeID) {
	root := c.find(v)
	c.constraints[root].addUpper(ty)
}

// GetConstraints returns v's collected constraints, or false if none have
// been recorded.
func (c *Context) GetConstraints(v Var) (ConstraintSet, bool) {
	root := c.find(v)
	cs := c.constraints[root]
	if cs.IsEmpty() {
		return ConstraintSet{}, false
	}
	return cs, true
}

// ResolveAll resolves every registered type parameter to the concrete type
// it was directly unified with, failing if any remain unresolved. Mirrors
// infer.rs's resolve_all (the simple path, for callers who unify type
// parameters directly rather than accumulate bounds).
func (c *Context) ResolveAll() ([]TypeParamResult, error) {
	results := make([]TypeParamResult, 0, len(c.typeParams))
	for _, b := range c.typeParams {
		ty, ok := c.Probe(b.v)
		if !ok {
			return nil, &Error{Code: diag.InferenceUnresolved, Var: c.find(b.v)}
		}
		results = append(results, TypeParamResult{Name: b.name, Var: b.v, Type: ty})
	}
	return results, nil
}

// TypeParamResult pairs a resolved type parameter with its name and
// variable.
type TypeParamResult struct {
	Name atom.Atom
	Var  Var
	Type types.TypeID
}
