package evaluator

import "tschecker/internal/types"

// substituteSingle replaces every occurrence of paramID within t with
// replacement, rebuilding composite types bottom-up through the interner so
// the result is itself hash-consed. This is a narrower tool than a general
// instantiate_type (internal/instantiate substitutes a whole parameter list
// with shadowing-aware scoping for generics); evaluate_mapped only ever
// needs to swap a single iteration variable for one concrete key at a time,
// so it carries its own minimal version rather than depending on that
// package (which itself depends on this one for post-substitution
// conditional-distribution evaluation, and a reverse import would cycle).
func (e *Evaluator) substituteSingle(t, paramID, replacement types.TypeID) types.TypeID {
	if t == 0 {
		return 0
	}
	return e.substituteSingleMemo(t, paramID, replacement, make(map[types.TypeID]types.TypeID))
}

func (e *Evaluator) substituteSingleMemo(t, paramID, replacement types.TypeID, memo map[types.TypeID]types.TypeID) types.TypeID {
	if t == paramID {
		return replacement
	}
	if types.IsIntrinsic(t) {
		return t
	}
	if cached, ok := memo[t]; ok {
		return cached
	}
	key, ok := e.interner.Lookup(t)
	if !ok {
		return t
	}

	sub := func(id types.TypeID) types.TypeID {
		if id == 0 {
			return 0
		}
		return e.substituteSingleMemo(id, paramID, replacement, memo)
	}

	var result types.TypeID
	switch key.Kind {
	case types.KindUnion:
		members := e.interner.TypeList(key.TypeList)
		out := make([]types.TypeID, len(members))
		for i, m := range members {
			out[i] = sub(m)
		}
		result = e.interner.Union(out)

	case types.KindIntersection:
		members := e.interner.TypeList(key.TypeList)
		out := make([]types.TypeID, len(members))
		for i, m := range members {
			out[i] = sub(m)
		}
		result = e.interner.Intersection(out)

	case types.KindArray:
		result = e.interner.Array(sub(key.Elem))

	case types.KindReadonly:
		result = e.interner.Readonly(sub(key.Elem))

	case types.KindStringIntrinsic:
		result = e.interner.StringIntrinsic(key.StringIntrinsic, sub(key.Elem))

	case types.KindKeyOf:
		result = e.interner.KeyOf(sub(key.Elem))

	case types.KindTypeQuery:
		result = e.interner.TypeQuery(sub(key.Elem))

	case types.KindIndexAccess:
		result = e.interner.IndexAccess(sub(key.Elem), sub(key.Elem2))

	case types.KindTuple:
		elems := e.interner.TupleList(key.TupleList)
		out := make([]types.TupleElement, len(elems))
		for i, el := range elems {
			out[i] = types.TupleElement{Type: sub(el.Type), Name: el.Name, Optional: el.Optional, Rest: el.Rest}
		}
		result = e.interner.Tuple(out)

	case types.KindObject:
		shape, _ := e.interner.ObjectShapeByID(key.ObjectShape)
		result = e.interner.Object(substituteProperties(shape.Properties, sub))

	case types.KindObjectWithIndex:
		shape, _ := e.interner.ObjectShapeByID(key.ObjectShape)
		newShape := types.ObjectShape{
			Properties:    substituteProperties(shape.Properties, sub),
			NominalOrigin: shape.NominalOrigin,
		}
		newShape.StringIndex = substituteIndexSig(shape.StringIndex, sub)
		newShape.NumberIndex = substituteIndexSig(shape.NumberIndex, sub)
		result = e.interner.ObjectWithIndex(newShape)

	case types.KindFunction:
		shape, _ := e.interner.FunctionShapeByID(key.FunctionSig)
		result = e.interner.Function(substituteFunctionShape(shape, sub))

	case types.KindCallable:
		shape, _ := e.interner.CallableShapeByID(key.CallableSig)
		newShape := types.CallableShape{Properties: substituteProperties(shape.Properties, sub)}
		for _, sigID := range shape.CallSignatures {
			if s, ok := e.interner.FunctionShapeByID(sigID); ok {
				newShape.CallSignatures = append(newShape.CallSignatures, e.interner.InternFunctionShape(substituteFunctionShape(s, sub)))
			}
		}
		for _, sigID := range shape.ConstructSignatures {
			if s, ok := e.interner.FunctionShapeByID(sigID); ok {
				newShape.ConstructSignatures = append(newShape.ConstructSignatures, e.interner.InternFunctionShape(substituteFunctionShape(s, sub)))
			}
		}
		newShape.StringIndex = substituteIndexSig(shape.StringIndex, sub)
		newShape.NumberIndex = substituteIndexSig(shape.NumberIndex, sub)
		result = e.interner.Callable(newShape)

	case types.KindConditional:
		c, _ := e.interner.ConditionalByID(key.Conditional)
		result = e.interner.Conditional(types.ConditionalType{
			Check: sub(c.Check), Extends: sub(c.Extends), True: sub(c.True), False: sub(c.False),
			InferParams: c.InferParams,
		})

	case types.KindMapped:
		m, _ := e.interner.MappedByID(key.Mapped)
		newM := types.MappedType{
			ParamName:     m.ParamName,
			Constraint:    sub(m.Constraint),
			Template:      sub(m.Template),
			OptionalMod:   m.OptionalMod,
			ReadonlyMod:   m.ReadonlyMod,
			IsHomomorphic: m.IsHomomorphic,
		}
		if m.NameType != 0 {
			newM.NameType = sub(m.NameType)
		}
		if m.HomomorphicSource != 0 {
			newM.HomomorphicSource = sub(m.HomomorphicSource)
		}
		result = e.interner.Mapped(newM)

	case types.KindApplication:
		app, _ := e.interner.ApplicationByID(key.Application)
		args := make([]types.TypeID, len(app.Args))
		for i, a := range app.Args {
			args[i] = sub(a)
		}
		result = e.interner.Application(sub(app.Base), args)

	case types.KindTemplateLiteral:
		spans := e.interner.TemplateByID(key.Template)
		out := make([]types.TemplateSpan, len(spans))
		for i, sp := range spans {
			if sp.Which == types.TemplateType {
				out[i] = types.TemplateSpan{Which: types.TemplateType, Type: sub(sp.Type)}
			} else {
				out[i] = sp
			}
		}
		result = e.interner.TemplateLiteral(out)

	default:
		// Leaves with nothing to substitute into: TypeParameter (a different
		// one, since t == paramID already returned above), Infer, Lazy, This,
		// UniqueSymbol, Recursive, BoundParameter, Error.
		result = t
	}

	memo[t] = result
	return result
}

func substituteProperties(props []types.PropertyInfo, sub func(types.TypeID) types.TypeID) []types.PropertyInfo {
	out := make([]types.PropertyInfo, len(props))
	for i, p := range props {
		out[i] = p
		out[i].ReadType = sub(p.ReadType)
		if p.WriteType != 0 {
			out[i].WriteType = sub(p.WriteType)
		}
	}
	return out
}

func substituteIndexSig(sig *types.IndexSignature, sub func(types.TypeID) types.TypeID) *types.IndexSignature {
	if sig == nil {
		return nil
	}
	return &types.IndexSignature{KeyType: sig.KeyType, ValueType: sub(sig.ValueType), Readonly: sig.Readonly}
}

func substituteFunctionShape(shape types.FunctionShape, sub func(types.TypeID) types.TypeID) types.FunctionShape {
	out := shape
	if shape.HasThis {
		out.This = sub(shape.This)
	}
	out.Params = make([]types.ParamInfo, len(shape.Params))
	for i, p := range shape.Params {
		out.Params[i] = p
		out.Params[i].Type = sub(p.Type)
	}
	out.Return = sub(shape.Return)
	if shape.Predicate.Kind != types.NoPredicate && shape.Predicate.AssertedType != 0 {
		out.Predicate.AssertedType = sub(shape.Predicate.AssertedType)
	}
	return out
}

// walkChildren visits every TypeID a composite TypeKey directly references,
// used by mappedIterationVar to locate the TypeParameter a mapped type's
// template binds its iteration variable to.
func (e *Evaluator) walkChildren(key types.TypeKey, visit func(types.TypeID)) {
	switch key.Kind {
	case types.KindUnion, types.KindIntersection:
		for _, m := range e.interner.TypeList(key.TypeList) {
			visit(m)
		}
	case types.KindArray, types.KindReadonly, types.KindStringIntrinsic, types.KindKeyOf, types.KindTypeQuery:
		visit(key.Elem)
	case types.KindIndexAccess:
		visit(key.Elem)
		visit(key.Elem2)
	case types.KindTuple:
		for _, el := range e.interner.TupleList(key.TupleList) {
			visit(el.Type)
		}
	case types.KindObject, types.KindObjectWithIndex:
		shape, _ := e.interner.ObjectShapeByID(key.ObjectShape)
		walkObjectShape(shape, visit)
	case types.KindFunction:
		shape, _ := e.interner.FunctionShapeByID(key.FunctionSig)
		walkFunctionShape(shape, visit)
	case types.KindCallable:
		shape, _ := e.interner.CallableShapeByID(key.CallableSig)
		for _, sigID := range shape.CallSignatures {
			if s, ok := e.interner.FunctionShapeByID(sigID); ok {
				walkFunctionShape(s, visit)
			}
		}
		for _, sigID := range shape.ConstructSignatures {
			if s, ok := e.interner.FunctionShapeByID(sigID); ok {
				walkFunctionShape(s, visit)
			}
		}
		walkObjectShape(types.ObjectShape{Properties: shape.Properties, StringIndex: shape.StringIndex, NumberIndex: shape.NumberIndex}, visit)
	case types.KindConditional:
		c, _ := e.interner.ConditionalByID(key.Conditional)
		visit(c.Check)
		visit(c.Extends)
		visit(c.True)
		visit(c.False)
	case types.KindMapped:
		m, _ := e.interner.MappedByID(key.Mapped)
		visit(m.Constraint)
		if m.NameType != 0 {
			visit(m.NameType)
		}
		visit(m.Template)
	case types.KindApplication:
		app, _ := e.interner.ApplicationByID(key.Application)
		visit(app.Base)
		for _, a := range app.Args {
			visit(a)
		}
	case types.KindTemplateLiteral:
		for _, sp := range e.interner.TemplateByID(key.Template) {
			if sp.Which == types.TemplateType {
				visit(sp.Type)
			}
		}
	}
}

func walkObjectShape(shape types.ObjectShape, visit func(types.TypeID)) {
	for _, p := range shape.Properties {
		visit(p.ReadType)
		if p.WriteType != 0 {
			visit(p.WriteType)
		}
	}
	if shape.StringIndex != nil {
		visit(shape.StringIndex.ValueType)
	}
	if shape.NumberIndex != nil {
		visit(shape.NumberIndex.ValueType)
	}
}

func walkFunctionShape(shape types.FunctionShape, visit func(types.TypeID)) {
	if shape.HasThis {
		visit(shape.This)
	}
	for _, p := range shape.Params {
		visit(p.Type)
	}
	visit(shape.Return)
	if shape.Predicate.Kind != types.NoPredicate && shape.Predicate.AssertedType != 0 {
		visit(shape.Predicate.AssertedType)
	}
}
