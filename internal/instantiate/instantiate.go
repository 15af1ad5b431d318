// Package instantiate substitutes concrete TypeIDs for type parameters
// throughout a structural type, the step that turns a generic declaration
// into the shape a particular call site or application sees. Grounded on
// original_source/src/solver/instantiate.rs's TypeInstantiator.
package instantiate

import (
	"tschecker/internal/atom"
	"tschecker/internal/evaluator"
	"tschecker/internal/types"
)

// MaxInstantiationDepth bounds recursive substitution (mirrors the
// original's MAX_INSTANTIATION_DEPTH).
const MaxInstantiationDepth = 50

// Substitution maps type parameter names to the concrete TypeID replacing
// them. Keyed by name (not TypeID), matching original_source's
// TypeSubstitution: a nested generic scope that redeclares the same name
// shadows the outer substitution for that name rather than colliding with
// it (see Instantiator.shadowed).
type Substitution struct {
	m map[atom.Atom]types.TypeID
}

// New returns an empty substitution.
func New() *Substitution {
	return &Substitution{m: make(map[atom.Atom]types.TypeID)}
}

// FromArgs zips declared type parameters against supplied type arguments
// positionally. A parameter with no corresponding argument (type_args
// shorter than type_params) is left unsubstituted, since TypeParamInfo in
// this package carries no default-type field to fall back to.
func FromArgs(params []types.TypeParamInfo, args []types.TypeID) *Substitution {
	s := New()
	for i, p := range params {
		if i >= len(args) {
			break
		}
		s.Insert(p.Name, args[i])
	}
	return s
}

// Insert adds or overwrites one substitution entry.
func (s *Substitution) Insert(name atom.Atom, id types.TypeID) {
	s.m[name] = id
}

// Get looks up name's substituted TypeID.
func (s *Substitution) Get(name atom.Atom) (types.TypeID, bool) {
	id, ok := s.m[name]
	return id, ok
}

// IsEmpty reports whether no substitutions are registered.
func (s *Substitution) IsEmpty() bool { return len(s.m) == 0 }

// clone returns an independent copy, used when distributing a conditional
// over a substituted union (each member needs its own substitution map with
// just that one member swapped in).
func (s *Substitution) clone() *Substitution {
	out := New()
	for k, v := range s.m {
		out.m[k] = v
	}
	return out
}

// Instantiator applies one Substitution to a type, recursively, tracking a
// shadowed-name stack so a nested generic's own type parameters of the same
// name are never substituted by an outer scope's map entry. Not safe for
// concurrent use; the driver creates one per instantiation call, mirroring
// internal/typelower.Lowering and internal/evaluator.Evaluator's one-per-
// worker ownership model.
type Instantiator struct {
	interner *types.Interner
	eval     *evaluator.Evaluator
	sub      *Substitution

	visiting map[types.TypeID]types.TypeID
	shadowed []atom.Atom

	substituteInfer bool

	depth         int
	depthExceeded bool
}

// NewInstantiator creates an Instantiator. eval may be nil; it is only
// consulted when a distributive conditional's check type is substituted
// with a union, to reduce each distributed branch the way
// original_source's instantiate_key calls back into evaluate::evaluate_type
// (a nil eval leaves each distributed branch as a deferred Conditional
// instead of evaluating it).
func NewInstantiator(interner *types.Interner, eval *evaluator.Evaluator, sub *Substitution) *Instantiator {
	return &Instantiator{
		interner: interner,
		eval:     eval,
		sub:      sub,
		visiting: make(map[types.TypeID]types.TypeID),
	}
}

// DepthExceeded reports whether the recursion cap was hit.
func (it *Instantiator) DepthExceeded() bool { return it.depthExceeded }

func (it *Instantiator) isShadowed(name atom.Atom) bool {
	for _, s := range it.shadowed {
		if s == name {
			return true
		}
	}
	return false
}

// Instantiate substitutes it.sub throughout t.
func (it *Instantiator) Instantiate(t types.TypeID) types.TypeID {
	if types.IsIntrinsic(t) {
		return t
	}
	if it.depthExceeded {
		return types.Error
	}
	if it.depth >= MaxInstantiationDepth {
		it.depthExceeded = true
		return types.Error
	}
	it.depth++
	result := it.instantiateInner(t)
	it.depth--
	return result
}

func (it *Instantiator) instantiateInner(t types.TypeID) types.TypeID {
	if cached, ok := it.visiting[t]; ok {
		return cached
	}
	key, ok := it.interner.Lookup(t)
	if !ok {
		return t
	}
	it.visiting[t] = t // cycle guard: a self-reference resolves to the original id
	result := it.instantiateKey(t, key)
	it.visiting[t] = result
	return result
}

func (it *Instantiator) instantiateKey(t types.TypeID, key types.TypeKey) types.TypeID {
	switch key.Kind {
	case types.KindTypeParameter:
		if it.isShadowed(key.Param.Name) {
			return t
		}
		if substituted, ok := it.sub.Get(key.Param.Name); ok {
			return substituted
		}
		return t

	case types.KindLiteralString, types.KindLiteralNumber, types.KindLiteralBoolean, types.KindLiteralBigInt,
		types.KindLazy, types.KindTypeQuery, types.KindUniqueSymbol, types.KindThis, types.KindError,
		types.KindRecursive, types.KindBoundParameter:
		return t

	case types.KindApplication:
		app, _ := it.interner.ApplicationByID(key.Application)
		base := it.Instantiate(app.Base)
		args := make([]types.TypeID, len(app.Args))
		for i, a := range app.Args {
			args[i] = it.Instantiate(a)
		}
		return it.interner.Application(base, args)

	case types.KindUnion:
		members := it.interner.TypeList(key.TypeList)
		out := make([]types.TypeID, len(members))
		for i, m := range members {
			out[i] = it.Instantiate(m)
		}
		return it.interner.Union(out)

	case types.KindIntersection:
		members := it.interner.TypeList(key.TypeList)
		out := make([]types.TypeID, len(members))
		for i, m := range members {
			out[i] = it.Instantiate(m)
		}
		return it.interner.Intersection(out)

	case types.KindArray:
		return it.interner.Array(it.Instantiate(key.Elem))

	case types.KindTuple:
		elems := it.interner.TupleList(key.TupleList)
		out := make([]types.TupleElement, len(elems))
		for i, el := range elems {
			out[i] = types.TupleElement{Type: it.Instantiate(el.Type), Name: el.Name, Optional: el.Optional, Rest: el.Rest}
		}
		return it.interner.Tuple(out)

	case types.KindObject:
		shape, _ := it.interner.ObjectShapeByID(key.ObjectShape)
		return it.interner.Object(it.instantiateProperties(shape.Properties))

	case types.KindObjectWithIndex:
		shape, _ := it.interner.ObjectShapeByID(key.ObjectShape)
		newShape := types.ObjectShape{
			Properties:    it.instantiateProperties(shape.Properties),
			NominalOrigin: shape.NominalOrigin,
		}
		newShape.StringIndex = it.instantiateIndexSig(shape.StringIndex)
		newShape.NumberIndex = it.instantiateIndexSig(shape.NumberIndex)
		return it.interner.ObjectWithIndex(newShape)

	case types.KindFunction:
		shape, _ := it.interner.FunctionShapeByID(key.FunctionSig)
		return it.interner.Function(it.instantiateFunctionShape(shape))

	case types.KindCallable:
		shape, _ := it.interner.CallableShapeByID(key.CallableSig)
		newShape := types.CallableShape{Properties: it.instantiateProperties(shape.Properties)}
		for _, sigID := range shape.CallSignatures {
			if s, ok := it.interner.FunctionShapeByID(sigID); ok {
				newShape.CallSignatures = append(newShape.CallSignatures, it.interner.InternFunctionShape(it.instantiateFunctionShape(s)))
			}
		}
		for _, sigID := range shape.ConstructSignatures {
			if s, ok := it.interner.FunctionShapeByID(sigID); ok {
				newShape.ConstructSignatures = append(newShape.ConstructSignatures, it.interner.InternFunctionShape(it.instantiateFunctionShape(s)))
			}
		}
		newShape.StringIndex = it.instantiateIndexSig(shape.StringIndex)
		newShape.NumberIndex = it.instantiateIndexSig(shape.NumberIndex)
		return it.interner.Callable(newShape)

	case types.KindConditional:
		return it.instantiateConditional(key.Conditional)

	case types.KindMapped:
		m, _ := it.interner.MappedByID(key.Mapped)
		shadowedLen := len(it.shadowed)
		it.shadowed = append(it.shadowed, m.ParamName)

		newM := types.MappedType{
			ParamName:     m.ParamName,
			Constraint:    it.Instantiate(m.Constraint),
			Template:      it.Instantiate(m.Template),
			OptionalMod:   m.OptionalMod,
			ReadonlyMod:   m.ReadonlyMod,
			IsHomomorphic: m.IsHomomorphic,
		}
		if m.NameType != 0 {
			newM.NameType = it.Instantiate(m.NameType)
		}
		if m.HomomorphicSource != 0 {
			newM.HomomorphicSource = it.Instantiate(m.HomomorphicSource)
		}

		it.shadowed = it.shadowed[:shadowedLen]
		return it.interner.Mapped(newM)

	case types.KindIndexAccess:
		return it.interner.IndexAccess(it.Instantiate(key.Elem), it.Instantiate(key.Elem2))

	case types.KindKeyOf:
		return it.interner.KeyOf(it.Instantiate(key.Elem))

	case types.KindReadonly:
		return it.interner.Readonly(it.Instantiate(key.Elem))

	case types.KindTemplateLiteral:
		spans := it.interner.TemplateByID(key.Template)
		out := make([]types.TemplateSpan, len(spans))
		for i, sp := range spans {
			if sp.Which == types.TemplateType {
				out[i] = types.TemplateSpan{Which: types.TemplateType, Type: it.Instantiate(sp.Type)}
			} else {
				out[i] = sp
			}
		}
		return it.interner.TemplateLiteral(out)

	case types.KindStringIntrinsic:
		return it.interner.StringIntrinsic(key.StringIntrinsic, it.Instantiate(key.Elem))

	case types.KindInfer:
		if it.substituteInfer && !it.isShadowed(key.Param.Name) {
			if substituted, ok := it.sub.Get(key.Param.Name); ok {
				return substituted
			}
		}
		return t

	default:
		return t
	}
}

// instantiateConditional implements the distributive-conditional special
// case: when Check names an (unshadowed) type parameter this substitution
// has an entry for, substituting `never` collapses the whole conditional to
// `never`, and substituting a union distributes the conditional over each
// member (each evaluated immediately, mirroring original_source calling
// straight through to evaluate::evaluate_type rather than leaving the
// per-member result deferred). Anything else falls through to instantiating
// all four parts in place, producing a (possibly still-deferred)
// Conditional for the caller to evaluate later.
func (it *Instantiator) instantiateConditional(condID types.ConditionalID) types.TypeID {
	cond, _ := it.interner.ConditionalByID(condID)

	if checkKey, ok := it.interner.Lookup(cond.Check); ok && checkKey.Kind == types.KindTypeParameter && !it.isShadowed(checkKey.Param.Name) {
		if substituted, ok := it.sub.Get(checkKey.Param.Name); ok {
			if substituted == types.Never {
				return types.Never
			}
			if substKey, ok := it.interner.Lookup(substituted); ok && substKey.Kind == types.KindUnion {
				members := it.interner.TypeList(substKey.TypeList)
				results := make([]types.TypeID, len(members))
				for i, member := range members {
					memberSub := it.sub.clone()
					memberSub.Insert(checkKey.Param.Name, member)
					memberIt := NewInstantiator(it.interner, it.eval, memberSub)
					instantiated := memberIt.Instantiate(it.interner.Conditional(cond))
					if it.eval != nil {
						instantiated = it.eval.EvaluateType(instantiated)
					}
					results[i] = instantiated
				}
				return it.interner.Union(results)
			}
		}
	}

	newCond := types.ConditionalType{
		Check:       it.Instantiate(cond.Check),
		Extends:     it.Instantiate(cond.Extends),
		True:        it.Instantiate(cond.True),
		False:       it.Instantiate(cond.False),
		InferParams: cond.InferParams,
	}
	return it.interner.Conditional(newCond)
}

func (it *Instantiator) instantiateProperties(props []types.PropertyInfo) []types.PropertyInfo {
	out := make([]types.PropertyInfo, len(props))
	for i, p := range props {
		out[i] = p
		out[i].ReadType = it.Instantiate(p.ReadType)
		if p.WriteType != 0 {
			out[i].WriteType = it.Instantiate(p.WriteType)
		}
	}
	return out
}

func (it *Instantiator) instantiateIndexSig(sig *types.IndexSignature) *types.IndexSignature {
	if sig == nil {
		return nil
	}
	return &types.IndexSignature{KeyType: sig.KeyType, ValueType: it.Instantiate(sig.ValueType), Readonly: sig.Readonly}
}

func (it *Instantiator) instantiateFunctionShape(shape types.FunctionShape) types.FunctionShape {
	shadowedLen := len(it.shadowed)
	for _, tp := range shape.TypeParams {
		it.shadowed = append(it.shadowed, tp.Name)
	}

	out := shape
	if shape.HasThis {
		out.This = it.Instantiate(shape.This)
	}
	out.Params = make([]types.ParamInfo, len(shape.Params))
	for i, p := range shape.Params {
		out.Params[i] = p
		out.Params[i].Type = it.Instantiate(p.Type)
	}
	out.Return = it.Instantiate(shape.Return)
	if shape.Predicate.Kind != types.NoPredicate && shape.Predicate.AssertedType != 0 {
		out.Predicate.AssertedType = it.Instantiate(shape.Predicate.AssertedType)
	}

	it.shadowed = it.shadowed[:shadowedLen]
	return out
}

// InstantiateType substitutes sub throughout t, returning t unchanged for an
// empty substitution (matching original_source's fast path).
func InstantiateType(interner *types.Interner, eval *evaluator.Evaluator, t types.TypeID, sub *Substitution) types.TypeID {
	if sub.IsEmpty() {
		return t
	}
	it := NewInstantiator(interner, eval, sub)
	result := it.Instantiate(t)
	if it.depthExceeded {
		return types.Error
	}
	return result
}

// InstantiateTypeWithInfer is InstantiateType but also substitutes `infer`
// bindings, for the inference engine's final resolved-type substitution
// pass once every inference variable has a resolved type.
func InstantiateTypeWithInfer(interner *types.Interner, eval *evaluator.Evaluator, t types.TypeID, sub *Substitution) types.TypeID {
	if sub.IsEmpty() {
		return t
	}
	it := NewInstantiator(interner, eval, sub)
	it.substituteInfer = true
	result := it.Instantiate(t)
	if it.depthExceeded {
		return types.Error
	}
	return result
}

// InstantiateGeneric substitutes type arguments for a generic declaration's
// type parameters positionally (the `Base<Args...>` application path).
func InstantiateGeneric(interner *types.Interner, eval *evaluator.Evaluator, t types.TypeID, params []types.TypeParamInfo, args []types.TypeID) types.TypeID {
	if len(params) == 0 || len(args) == 0 {
		return t
	}
	return InstantiateType(interner, eval, t, FromArgs(params, args))
}
