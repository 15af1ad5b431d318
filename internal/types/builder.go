package types

import (
	"math"
	"sort"

	"tschecker/internal/atom"
)

// LiteralString interns a string literal type.
func (in *Interner) LiteralString(s atom.Atom) TypeID {
	return in.intern(TypeKey{Kind: KindLiteralString, LitString: s})
}

// LiteralNumber interns a numeric literal type. NaN and -0/+0 each get their
// own distinct TypeID (see the comment on TypeKey.LitNumberBits).
func (in *Interner) LiteralNumber(v float64) TypeID {
	return in.intern(TypeKey{Kind: KindLiteralNumber, LitNumberBits: math.Float64bits(v)})
}

// LiteralBoolean returns the True/False intrinsic for v.
func (in *Interner) LiteralBoolean(v bool) TypeID {
	if v {
		return True
	}
	return False
}

// LiteralBigInt interns a bigint literal, keyed by its decimal-digit atom
// (sign folded into the stored text, matching how the lowering layer
// assembles it from a BigIntLiteral token).
func (in *Interner) LiteralBigInt(digits atom.Atom) TypeID {
	return in.intern(TypeKey{Kind: KindLiteralBigInt, LitBigInt: digits})
}

// Union builds a canonical union type: flattens nested unions, replaces any
// member with Any short-circuiting the whole union, drops Never members,
// deduplicates and sorts the remainder by TypeID, collapses to the sole
// member if only one remains, and returns Never for an empty union.
func (in *Interner) Union(members []TypeID) TypeID {
	flat := make([]TypeID, 0, len(members))
	in.flattenUnion(members, &flat)

	for _, m := range flat {
		if m == Any {
			return Any
		}
	}

	seen := make(map[TypeID]bool, len(flat))
	uniq := make([]TypeID, 0, len(flat))
	for _, m := range flat {
		if m == Never || seen[m] {
			continue
		}
		seen[m] = true
		uniq = append(uniq, m)
	}

	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })

	switch len(uniq) {
	case 0:
		return Never
	case 1:
		return uniq[0]
	}

	listID := in.internTypeList(uniq)
	return in.intern(TypeKey{Kind: KindUnion, TypeList: listID})
}

func (in *Interner) flattenUnion(members []TypeID, out *[]TypeID) {
	for _, m := range members {
		if key, ok := in.Lookup(m); ok && key.Kind == KindUnion {
			in.flattenUnion(in.TypeList(key.TypeList), out)
			continue
		}
		*out = append(*out, m)
	}
}

// Intersection builds a canonical intersection type: flattens nested
// intersections, drops Unknown members, collapses to Never if any member is
// Never, and separates callable members (order preserved, for overload
// resolution) from the remaining structural members (sorted, deduplicated).
func (in *Interner) Intersection(members []TypeID) TypeID {
	flat := make([]TypeID, 0, len(members))
	in.flattenIntersection(members, &flat)

	var callables []TypeID
	structural := make([]TypeID, 0, len(flat))
	seen := make(map[TypeID]bool, len(flat))
	for _, m := range flat {
		if m == Never {
			return Never
		}
		if m == Unknown || seen[m] {
			continue
		}
		seen[m] = true
		if key, ok := in.Lookup(m); ok && key.Kind == KindCallable {
			callables = append(callables, m)
			continue
		}
		structural = append(structural, m)
	}

	sort.Slice(structural, func(i, j int) bool { return structural[i] < structural[j] })
	all := append(callables, structural...)

	switch len(all) {
	case 0:
		return Unknown
	case 1:
		return all[0]
	}

	listID := in.internTypeList(all)
	return in.intern(TypeKey{Kind: KindIntersection, TypeList: listID})
}

func (in *Interner) flattenIntersection(members []TypeID, out *[]TypeID) {
	for _, m := range members {
		if key, ok := in.Lookup(m); ok && key.Kind == KindIntersection {
			in.flattenIntersection(in.TypeList(key.TypeList), out)
			continue
		}
		*out = append(*out, m)
	}
}

func (in *Interner) internTypeList(members []TypeID) TypeListID {
	return TypeListID(in.typeLists.intern(keyOf(members), members))
}

// Array interns an array type with the given element type.
func (in *Interner) Array(elem TypeID) TypeID {
	return in.intern(TypeKey{Kind: KindArray, Elem: elem})
}

// Tuple interns a tuple type. Elements are stored in declaration order;
// optional/rest flags are carried per-element, not canonicalized further.
func (in *Interner) Tuple(elements []TupleElement) TypeID {
	id := TupleListID(in.tupleLists.intern(keyOf(elements), elements))
	return in.intern(TypeKey{Kind: KindTuple, TupleList: id})
}

// sortedProperties returns a copy of props sorted by Name atom, the
// canonical property order spec.md §3.3 requires for object shapes.
func sortedProperties(props []PropertyInfo) []PropertyInfo {
	out := append([]PropertyInfo(nil), props...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Object interns a plain object type (properties only, no index signature).
func (in *Interner) Object(properties []PropertyInfo) TypeID {
	shape := ObjectShape{Properties: sortedProperties(properties)}
	id := ObjectShapeID(in.objShapes.intern(keyOf(shape), shape))
	return in.intern(TypeKey{Kind: KindObject, ObjectShape: id})
}

// ObjectWithIndex interns an object type carrying one or both index
// signatures alongside its properties.
func (in *Interner) ObjectWithIndex(shape ObjectShape) TypeID {
	shape.Properties = sortedProperties(shape.Properties)
	id := ObjectShapeID(in.objShapes.intern(keyOf(shape), shape))
	return in.intern(TypeKey{Kind: KindObjectWithIndex, ObjectShape: id})
}

// Function interns a single-signature function type.
func (in *Interner) Function(shape FunctionShape) TypeID {
	id := FunctionShapeID(in.funcShapes.intern(keyOf(shape), shape))
	return in.intern(TypeKey{Kind: KindFunction, FunctionSig: id})
}

// functionShapeID interns a FunctionShape without wrapping it in a standalone
// Function TypeID, for use by Callable's overload/construct signature lists.
func (in *Interner) functionShapeID(shape FunctionShape) FunctionShapeID {
	return FunctionShapeID(in.funcShapes.intern(keyOf(shape), shape))
}

// Callable interns an overload set plus optional construct signatures and
// attached properties/index signatures.
func (in *Interner) Callable(shape CallableShape) TypeID {
	shape.Properties = sortedProperties(shape.Properties)
	id := CallableShapeID(in.callShapes.intern(keyOf(shape), shape))
	return in.intern(TypeKey{Kind: KindCallable, CallableSig: id})
}

// InternFunctionShape exposes functionShapeID so that callers building a
// CallableShape's overload list can intern each signature individually.
func (in *Interner) InternFunctionShape(shape FunctionShape) FunctionShapeID {
	return in.functionShapeID(shape)
}

// TemplateLiteral interns a template literal type from its alternating
// text/type spans.
func (in *Interner) TemplateLiteral(spans []TemplateSpan) TypeID {
	id := TemplateLiteralID(in.templates.intern(keyOf(spans), spans))
	return in.intern(TypeKey{Kind: KindTemplateLiteral, Template: id})
}

// Conditional interns `Check extends Extends ? True : False`, with any
// `infer` parameters introduced within Extends scoped to True.
func (in *Interner) Conditional(c ConditionalType) TypeID {
	id := ConditionalID(in.conditionals.intern(keyOf(c), c))
	return in.intern(TypeKey{Kind: KindConditional, Conditional: id})
}

// Mapped interns a mapped type.
func (in *Interner) Mapped(m MappedType) TypeID {
	id := MappedID(in.mappeds.intern(keyOf(m), m))
	return in.intern(TypeKey{Kind: KindMapped, Mapped: id})
}

// IndexAccess interns a deferred or (after evaluation) resolved T[K] node.
// The evaluator, not the interner, decides whether this stays deferred.
func (in *Interner) IndexAccess(container, index TypeID) TypeID {
	return in.intern(TypeKey{Kind: KindIndexAccess, Elem: container, Elem2: index})
}

// KeyOf interns `keyof T`, deferred unless T is concrete.
func (in *Interner) KeyOf(operand TypeID) TypeID {
	return in.intern(TypeKey{Kind: KindKeyOf, Elem: operand})
}

// Application interns a generic instantiation `Base<Args...>`.
func (in *Interner) Application(base TypeID, args []TypeID) TypeID {
	app := TypeApplication{Base: base, Args: append([]TypeID(nil), args...)}
	id := ApplicationID(in.applications.intern(keyOf(app), app))
	return in.intern(TypeKey{Kind: KindApplication, Application: id})
}

// TypeParameter interns a free type parameter reference.
func (in *Interner) TypeParameter(p TypeParamInfo) TypeID {
	return in.intern(TypeKey{Kind: KindTypeParameter, Param: p})
}

// Infer interns an `infer R` binding.
func (in *Interner) Infer(p TypeParamInfo) TypeID {
	return in.intern(TypeKey{Kind: KindInfer, Param: p})
}

// StringIntrinsic interns one of the four built-in string-mapper types.
func (in *Interner) StringIntrinsic(kind StringIntrinsicKind, operand TypeID) TypeID {
	return in.intern(TypeKey{Kind: KindStringIntrinsic, StringIntrinsic: kind, Elem: operand})
}

// Lazy interns a reference to an externally-owned definition (interface,
// class, enum, or type-alias DefID not yet/never canonicalized).
func (in *Interner) Lazy(def DefID) TypeID {
	return in.intern(TypeKey{Kind: KindLazy, Def: def})
}

// Recursive interns a de Bruijn self-reference used only during
// canonicalization of structural (type-alias) recursion.
func (in *Interner) Recursive(depth uint32) TypeID {
	return in.intern(TypeKey{Kind: KindRecursive, DeBruijnDepth: depth})
}

// BoundParameter interns a de Bruijn type-parameter reference used only
// during canonicalization.
func (in *Interner) BoundParameter(depth uint32) TypeID {
	return in.intern(TypeKey{Kind: KindBoundParameter, DeBruijnDepth: depth})
}

// Readonly interns `readonly T` (meaningful over array/tuple types).
func (in *Interner) Readonly(operand TypeID) TypeID {
	return in.intern(TypeKey{Kind: KindReadonly, Elem: operand})
}

// This returns the ThisType singleton.
func (in *Interner) This() TypeID {
	return in.intern(TypeKey{Kind: KindThis})
}

// UniqueSymbol interns `unique symbol` tagged by its declaring name, so two
// distinct `declare const a: unique symbol` declarations never unify.
func (in *Interner) UniqueSymbol(name atom.Atom) TypeID {
	return in.intern(TypeKey{Kind: KindUniqueSymbol, UniqueSymbolName: name})
}

// TypeQuery interns `typeof expr`, deferred until the expression's static
// type is known to the caller (the lowering layer resolves it before
// calling this, so by the time it reaches the interner Elem is concrete).
func (in *Interner) TypeQuery(resolved TypeID) TypeID {
	return in.intern(TypeKey{Kind: KindTypeQuery, Elem: resolved})
}
