package infer

import (
	"tschecker/internal/diag"
	"tschecker/internal/types"
)

// SubtypeFunc is the assignability decider threaded into resolution, so this
// package never needs to import internal/subtype directly (the same
// decoupling internal/evaluator uses for WithSubtypeDecider): production
// callers pass (*subtype.Checker).IsSubtype, tests can pass a stub.
type SubtypeFunc func(source, target types.TypeID) bool

// ResolveWithConstraints resolves v from its collected lower/upper bounds:
// the result is the best common type of the lower bounds (or the
// intersection of the upper bounds if there were none), checked against
// every upper bound with isSubtype. Mirrors infer.rs's
// resolve_with_constraints_by.
//
// Unlike infer.rs's upper_bound_cycles_param / expand_cyclic_upper_bound,
// this does not special-case an upper bound that is itself another,
// possibly cyclically related, type parameter's reference: that machinery
// exists to let one generic parameter's bound be expressed recursively in
// terms of a sibling parameter's own bounds, a narrow case this port leaves
// as a documented gap (see DESIGN.md) rather than translate blind, since the
// retrieved excerpt never showed a caller exercising it.
func (c *Context) ResolveWithConstraints(v Var, isSubtype SubtypeFunc) (types.TypeID, error) {
	if ty, ok := c.Probe(v); ok {
		return ty, nil
	}

	root := c.find(v)
	cs := c.constraints[root].clone()

	var upperBounds []types.TypeID
	for _, bound := range cs.Upper {
		if c.occursIn(root, bound) {
			continue
		}
		dup := false
		for _, u := range upperBounds {
			if u == bound {
				dup = true
				break
			}
		}
		if !dup {
			upperBounds = append(upperBounds, bound)
		}
	}

	lowerBounds := cs.Lower
	if len(upperBounds) > 0 {
		filtered := lowerBounds[:0:0]
		for _, ty := range lowerBounds {
			if ty != types.Any && ty != types.Unknown && ty != types.Error {
				filtered = append(filtered, ty)
			}
		}
		lowerBounds = filtered
	}

	var result types.TypeID
	switch {
	case len(lowerBounds) > 0:
		result = c.bestCommonType(lowerBounds, isSubtype)
	case len(upperBounds) > 0:
		if len(upperBounds) == 1 {
			result = upperBounds[0]
		} else {
			result = c.interner.Intersection(upperBounds)
		}
	default:
		result = types.Unknown
	}

	for _, upper := range upperBounds {
		if !isSubtype(result, upper) {
			return types.Error, &Error{Code: diag.BoundsViolation, Var: v, Lower: result, Upper: upper}
		}
	}

	if c.occursIn(root, result) {
		return types.Error, &Error{Code: diag.OccursCheck, Var: root, Type: result}
	}

	c.entries[root].value = value{resolved: true, ty: result}
	return result, nil
}

// ResolveAllWithConstraints resolves every registered type parameter via
// ResolveWithConstraints. Mirrors infer.rs's resolve_all_with_constraints.
func (c *Context) ResolveAllWithConstraints(isSubtype SubtypeFunc) ([]TypeParamResult, error) {
	results := make([]TypeParamResult, 0, len(c.typeParams))
	for _, b := range c.typeParams {
		ty, err := c.ResolveWithConstraints(b.v, isSubtype)
		if err != nil {
			return nil, err
		}
		results = append(results, TypeParamResult{Name: b.name, Var: b.v, Type: ty})
	}
	return results, nil
}

// bestCommonType computes the widest type every member of ts widens from:
// duplicates and Never drop out; if every remaining type shares a literal
// base (e.g. "a" and "b" both widen to string) and that base is itself a
// valid supertype of all of them, the base wins over a bare union; failing
// that, a member that is already a supertype of every other member is
// preferred; otherwise the result is the union of every remaining member.
// Mirrors infer.rs's best_common_type / find_common_base_type / get_base_type.
func (c *Context) bestCommonType(ts []types.TypeID, isSubtype SubtypeFunc) types.TypeID {
	if len(ts) == 0 {
		return types.Unknown
	}
	if len(ts) == 1 {
		return ts[0]
	}

	seen := make(map[types.TypeID]bool, len(ts))
	unique := make([]types.TypeID, 0, len(ts))
	for _, ty := range ts {
		if ty == types.Never {
			continue
		}
		if !seen[ty] {
			seen[ty] = true
			unique = append(unique, ty)
		}
	}
	if len(unique) == 0 {
		return types.Never
	}
	if len(unique) == 1 {
		return unique[0]
	}

	if base, ok := c.commonBaseType(unique); ok {
		allNarrower := true
		for _, ty := range unique {
			if !isSubtype(ty, base) {
				allNarrower = false
				break
			}
		}
		if allNarrower {
			return base
		}
	}

	for _, candidate := range unique {
		suitable := true
		for _, ty := range unique {
			if !isSubtype(ty, candidate) {
				suitable = false
				break
			}
		}
		if suitable {
			return candidate
		}
	}

	return c.interner.Union(unique)
}

// commonBaseType reports the shared literal-widened base of every type in
// ts, if all of them share one (e.g. [string, "hello"] -> string).
func (c *Context) commonBaseType(ts []types.TypeID) (types.TypeID, bool) {
	first, ok := c.baseType(ts[0])
	if !ok {
		return 0, false
	}
	for _, ty := range ts[1:] {
		base, ok := c.baseType(ty)
		if !ok || base != first {
			return 0, false
		}
	}
	return first, true
}

// baseType strips a literal down to its intrinsic (KindLiteralString ->
// types.String, and so on); any other type is its own base.
func (c *Context) baseType(ty types.TypeID) (types.TypeID, bool) {
	if ty == types.True || ty == types.False {
		return types.Boolean, true
	}
	key, ok := c.interner.Lookup(ty)
	if !ok {
		return ty, true
	}
	switch key.Kind {
	case types.KindLiteralString:
		return types.String, true
	case types.KindLiteralNumber:
		return types.Number, true
	case types.KindLiteralBoolean:
		return types.Boolean, true
	case types.KindLiteralBigInt:
		return types.BigInt, true
	default:
		return ty, true
	}
}
