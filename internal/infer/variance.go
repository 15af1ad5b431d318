package infer

import (
	"tschecker/internal/atom"
	"tschecker/internal/types"
)

// VarianceCounts tallies how a type parameter occurs within a type: in
// covariant (read/return/array-element), contravariant (parameter), or
// invariant/bivariant position. Mirrors infer.rs's compute_variance 4-tuple.
type VarianceCounts struct {
	Covariant     uint32
	Contravariant uint32
	Invariant     uint32
	Bivariant     uint32
}

// ComputeVariance walks ty and counts every occurrence of targetParam by
// the polarity of the position it appears in. Mirrors infer.rs's
// compute_variance / compute_variance_helper: array/tuple/union/intersection
// elements keep the incoming polarity, a property's read type keeps it while
// its write type (when distinct and mutable) flips it, a function
// parameter flips it and its return type keeps it, a conditional type's
// check/extends clauses are always treated as invariant (via a fixed
// contravariant recursion matching the Rust source) while its branches keep
// the incoming polarity, and a generic application's arguments are assumed
// covariant for lack of the application's own declared variance.
func (c *Context) ComputeVariance(ty types.TypeID, targetParam atom.Atom) VarianceCounts {
	var counts VarianceCounts
	c.varianceHelper(ty, targetParam, true, &counts, map[types.TypeID]uint8{})
	return counts
}

func (c *Context) varianceHelper(ty types.TypeID, targetParam atom.Atom, covariant bool, counts *VarianceCounts, visited map[types.TypeID]uint8) {
	// Each type is walked at most once per polarity: enough to stop cycles
	// without dropping a type that recurs in the opposite polarity.
	bit := uint8(1)
	if !covariant {
		bit = 2
	}
	if visited[ty]&bit != 0 {
		return
	}
	visited[ty] |= bit

	key, ok := c.interner.Lookup(ty)
	if !ok {
		return
	}
	switch key.Kind {
	case types.KindTypeParameter, types.KindInfer:
		if key.Param.Name != targetParam {
			return
		}
		if covariant {
			counts.Covariant++
		} else {
			counts.Contravariant++
		}
	case types.KindArray:
		c.varianceHelper(key.Elem, targetParam, covariant, counts, visited)
	case types.KindTuple:
		for _, e := range c.interner.TupleList(key.TupleList) {
			c.varianceHelper(e.Type, targetParam, covariant, counts, visited)
		}
	case types.KindUnion, types.KindIntersection:
		for _, m := range c.interner.TypeList(key.TypeList) {
			c.varianceHelper(m, targetParam, covariant, counts, visited)
		}
	case types.KindObject, types.KindObjectWithIndex:
		shape, ok := c.interner.ObjectShapeByID(key.ObjectShape)
		if !ok {
			return
		}
		for _, p := range shape.Properties {
			c.varianceHelper(p.ReadType, targetParam, covariant, counts, visited)
			if p.WriteType != p.ReadType && !p.Readonly {
				c.varianceHelper(p.WriteType, targetParam, !covariant, counts, visited)
			}
		}
		if shape.StringIndex != nil {
			c.varianceHelper(shape.StringIndex.ValueType, targetParam, covariant, counts, visited)
		}
		if shape.NumberIndex != nil {
			c.varianceHelper(shape.NumberIndex.ValueType, targetParam, covariant, counts, visited)
		}
	case types.KindApplication:
		app, ok := c.interner.ApplicationByID(key.Application)
		if !ok {
			return
		}
		for _, a := range app.Args {
			c.varianceHelper(a, targetParam, covariant, counts, visited)
		}
	case types.KindFunction:
		shape, ok := c.interner.FunctionShapeByID(key.FunctionSig)
		if !ok {
			return
		}
		for _, p := range shape.Params {
			c.varianceHelper(p.Type, targetParam, !covariant, counts, visited)
		}
		c.varianceHelper(shape.Return, targetParam, covariant, counts, visited)
	case types.KindConditional:
		cond, ok := c.interner.ConditionalByID(key.Conditional)
		if !ok {
			return
		}
		c.varianceHelper(cond.Check, targetParam, false, counts, visited)
		c.varianceHelper(cond.Extends, targetParam, false, counts, visited)
		c.varianceHelper(cond.True, targetParam, covariant, counts, visited)
		c.varianceHelper(cond.False, targetParam, covariant, counts, visited)
	}
}

// IsInvariantPosition reports whether targetParam occurs invariantly in ty:
// in both a covariant and a contravariant position (e.g. the read type and
// the distinct write type of a mutable property), as GetVariance decides.
func (c *Context) IsInvariantPosition(ty types.TypeID, targetParam atom.Atom) bool {
	return c.GetVariance(ty, targetParam) == "invariant"
}

// IsBivariantPosition reports whether ComputeVariance's Bivariant tally for
// targetParam is non-zero. varianceHelper does not tell method parameters
// apart from other parameters and never increments that tally, so this
// reports false for every ty.
func (c *Context) IsBivariantPosition(ty types.TypeID, targetParam atom.Atom) bool {
	return c.ComputeVariance(ty, targetParam).Bivariant > 0
}

// GetVariance summarizes targetParam's overall variance within ty as one of
// "invariant", "bivariant", "covariant", "contravariant", or "unused".
// Mirrors infer.rs's get_variance; note the Invariant tally above is never
// actually incremented by varianceHelper (no position in this port's
// structural walk sets it directly, matching the Rust source, which only
// derives "invariant" here from covariant-and-contravariant both firing),
// so Invariant > 0 can only happen if a caller seeds VarianceCounts by hand.
func (c *Context) GetVariance(ty types.TypeID, targetParam atom.Atom) string {
	counts := c.ComputeVariance(ty, targetParam)
	switch {
	case counts.Invariant > 0:
		return "invariant"
	case counts.Bivariant > 0:
		return "bivariant"
	case counts.Covariant > 0 && counts.Contravariant > 0:
		return "invariant"
	case counts.Covariant > 0:
		return "covariant"
	case counts.Contravariant > 0:
		return "contravariant"
	default:
		return "unused"
	}
}
