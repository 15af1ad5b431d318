package infer

import "tschecker/internal/types"

// occursIn reports whether ty structurally contains a type parameter whose
// own inference variable shares root's equivalence class. Mirrors infer.rs's
// occurs_in / contains_inference_var (collapsed into one function here,
// since contains_inference_var always gets called with the var's root
// already known to the caller in this port).
func (c *Context) occursIn(root Var, ty types.TypeID) bool {
	return c.containsVar(ty, root, map[types.TypeID]bool{})
}

func (c *Context) containsVar(ty types.TypeID, root Var, visited map[types.TypeID]bool) bool {
	if visited[ty] {
		return false
	}
	visited[ty] = true

	key, ok := c.interner.Lookup(ty)
	if !ok {
		return false
	}
	switch key.Kind {
	case types.KindTypeParameter, types.KindInfer:
		if v, ok := c.FindTypeParam(key.Param.Name); ok {
			return c.find(v) == root
		}
		return false
	case types.KindArray:
		return c.containsVar(key.Elem, root, visited)
	case types.KindTuple:
		for _, e := range c.interner.TupleList(key.TupleList) {
			if c.containsVar(e.Type, root, visited) {
				return true
			}
		}
		return false
	case types.KindUnion, types.KindIntersection:
		for _, m := range c.interner.TypeList(key.TypeList) {
			if c.containsVar(m, root, visited) {
				return true
			}
		}
		return false
	case types.KindObject:
		shape, ok := c.interner.ObjectShapeByID(key.ObjectShape)
		if !ok {
			return false
		}
		for _, p := range shape.Properties {
			if c.containsVar(p.ReadType, root, visited) {
				return true
			}
		}
		return false
	case types.KindObjectWithIndex:
		shape, ok := c.interner.ObjectShapeByID(key.ObjectShape)
		if !ok {
			return false
		}
		for _, p := range shape.Properties {
			if c.containsVar(p.ReadType, root, visited) {
				return true
			}
		}
		if shape.StringIndex != nil && (c.containsVar(shape.StringIndex.KeyType, root, visited) || c.containsVar(shape.StringIndex.ValueType, root, visited)) {
			return true
		}
		if shape.NumberIndex != nil && (c.containsVar(shape.NumberIndex.KeyType, root, visited) || c.containsVar(shape.NumberIndex.ValueType, root, visited)) {
			return true
		}
		return false
	case types.KindApplication:
		app, ok := c.interner.ApplicationByID(key.Application)
		if !ok {
			return false
		}
		if c.containsVar(app.Base, root, visited) {
			return true
		}
		for _, a := range app.Args {
			if c.containsVar(a, root, visited) {
				return true
			}
		}
		return false
	case types.KindFunction:
		shape, ok := c.interner.FunctionShapeByID(key.FunctionSig)
		if !ok {
			return false
		}
		for _, p := range shape.Params {
			if c.containsVar(p.Type, root, visited) {
				return true
			}
		}
		if shape.HasThis && c.containsVar(shape.This, root, visited) {
			return true
		}
		return c.containsVar(shape.Return, root, visited)
	case types.KindConditional:
		cond, ok := c.interner.ConditionalByID(key.Conditional)
		if !ok {
			return false
		}
		return c.containsVar(cond.Check, root, visited) ||
			c.containsVar(cond.Extends, root, visited) ||
			c.containsVar(cond.True, root, visited) ||
			c.containsVar(cond.False, root, visited)
	default:
		return false
	}
}

// InferFromType walks ty's structure wherever the variable's own type
// parameter appears (array element, tuple slot, union member, property read
// type, index signature, function parameter/this/return, application base
// and argument, conditional branch). Mirrors infer.rs's infer_from_type
// walk. ty is walked on its own, with no argument type paired against it,
// so no occurrence is recorded as a lower bound; the only bound added on the
// way is InferFromConditional's upper bound for a conditional whose check
// type is the variable itself.
//
// TypeParamInfo here carries no inherent `extends` clause (unlike infer.rs's
// TypeKey::TypeParameter(info), whose info.constraint is read directly off
// the type); callers that need a type parameter's declared constraint fed in
// as an upper bound call AddUpperBound explicitly before inference runs.
func (c *Context) InferFromType(v Var, ty types.TypeID) {
	root := c.find(v)
	if !c.occursIn(root, ty) {
		return
	}

	key, ok := c.interner.Lookup(ty)
	if !ok {
		return
	}
	switch key.Kind {
	case types.KindTypeParameter, types.KindInfer:
		// The bare variable itself; no per-occurrence bound to add here
		// (see the doc comment above).
	case types.KindArray:
		c.InferFromType(v, key.Elem)
	case types.KindTuple:
		for _, e := range c.interner.TupleList(key.TupleList) {
			c.InferFromType(v, e.Type)
		}
	case types.KindUnion, types.KindIntersection:
		for _, m := range c.interner.TypeList(key.TypeList) {
			c.InferFromType(v, m)
		}
	case types.KindObject:
		if shape, ok := c.interner.ObjectShapeByID(key.ObjectShape); ok {
			for _, p := range shape.Properties {
				c.InferFromType(v, p.ReadType)
			}
		}
	case types.KindObjectWithIndex:
		if shape, ok := c.interner.ObjectShapeByID(key.ObjectShape); ok {
			for _, p := range shape.Properties {
				c.InferFromType(v, p.ReadType)
			}
			if shape.StringIndex != nil {
				c.InferFromType(v, shape.StringIndex.KeyType)
				c.InferFromType(v, shape.StringIndex.ValueType)
			}
			if shape.NumberIndex != nil {
				c.InferFromType(v, shape.NumberIndex.KeyType)
				c.InferFromType(v, shape.NumberIndex.ValueType)
			}
		}
	case types.KindApplication:
		if app, ok := c.interner.ApplicationByID(key.Application); ok {
			c.InferFromType(v, app.Base)
			for _, a := range app.Args {
				c.InferFromType(v, a)
			}
		}
	case types.KindFunction:
		if shape, ok := c.interner.FunctionShapeByID(key.FunctionSig); ok {
			for _, p := range shape.Params {
				c.InferFromType(v, p.Type)
			}
			if shape.HasThis {
				c.InferFromType(v, shape.This)
			}
			c.InferFromType(v, shape.Return)
		}
	case types.KindConditional:
		if cond, ok := c.interner.ConditionalByID(key.Conditional); ok {
			c.InferFromConditional(v, cond.Check, cond.Extends, cond.True, cond.False)
		}
	}
}

// InferFromConditional infers bounds from `check extends extends ? t : f`:
// when check is itself the variable being solved, extends becomes an upper
// bound (the `infer`-clause case is handled by the caller registering the
// infer binding as its own type parameter before this runs); both branches
// are then walked recursively regardless, since either may mention the
// variable structurally. Mirrors infer.rs's infer_from_conditional.
func (c *Context) InferFromConditional(v Var, check, extends, trueType, falseType types.TypeID) {
	if key, ok := c.interner.Lookup(check); ok && key.Kind == types.KindTypeParameter {
		if checkVar, ok := c.FindTypeParam(key.Param.Name); ok && c.find(checkVar) == c.find(v) {
			c.AddUpperBound(v, extends)
		}
	}
	c.InferFromType(v, trueType)
	c.InferFromType(v, falseType)
}
