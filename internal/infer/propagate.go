package infer

import (
	"tschecker/internal/atom"
	"tschecker/internal/diag"
	"tschecker/internal/types"
)

// StrengthenConstraints propagates bound relationships between type
// parameters: if T's upper bound names another type parameter U, then
// whatever lower bounds U has collected are also lower bounds for T (and
// symmetrically for lower bounds naming a parameter and that parameter's
// upper bounds). Iterates once per registered type parameter to let a
// chain of several such references settle. Mirrors infer.rs's
// strengthen_constraints / propagate_lower_bound / propagate_upper_bound.
func (c *Context) StrengthenConstraints() {
	for range c.typeParams {
		for _, b := range c.typeParams {
			root := c.find(b.v)
			cs := c.constraints[root].clone()
			for _, lower := range cs.Lower {
				c.propagateLowerBound(root, lower, b.name)
			}
			for _, upper := range cs.Upper {
				c.propagateUpperBound(root, upper, b.name)
			}
		}
	}
}

func (c *Context) propagateLowerBound(v Var, lower types.TypeID, exclude atom.Atom) {
	key, ok := c.interner.Lookup(lower)
	if !ok || key.Kind != types.KindTypeParameter || key.Param.Name == exclude {
		return
	}
	lowerVar, ok := c.FindTypeParam(key.Param.Name)
	if !ok {
		return
	}
	lowerRoot := c.find(lowerVar)
	for _, upper := range c.constraints[lowerRoot].Upper {
		c.AddUpperBound(v, upper)
	}
}

func (c *Context) propagateUpperBound(v Var, upper types.TypeID, exclude atom.Atom) {
	key, ok := c.interner.Lookup(upper)
	if !ok || key.Kind != types.KindTypeParameter || key.Param.Name == exclude {
		return
	}
	upperVar, ok := c.FindTypeParam(key.Param.Name)
	if !ok {
		return
	}
	upperRoot := c.find(upperVar)
	for _, lower := range c.constraints[upperRoot].Lower {
		c.AddLowerBound(v, lower)
	}
}

// ValidateVariance runs a final occurs-check sweep over every resolved type
// parameter, rejecting a solution where a parameter ended up referring to
// itself. Mirrors infer.rs's validate_variance, which (despite the name) is
// itself only this occurs-check sweep in the retrieved source; declared
// per-parameter variance isn't tracked by this type representation, so
// there is nothing further for this port to check either.
func (c *Context) ValidateVariance() error {
	for _, b := range c.typeParams {
		resolved, ok := c.Probe(b.v)
		if !ok {
			continue
		}
		root := c.find(b.v)
		if c.occursIn(root, resolved) {
			return &Error{Code: diag.OccursCheck, Var: root, Type: resolved}
		}
	}
	return nil
}
