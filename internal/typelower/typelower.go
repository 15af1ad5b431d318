// Package typelower lowers type-position AST syntax into the TypeID
// representation internal/types owns. Grounded on
// original_source/src/solver/lower.rs's TypeLowering struct (scope
// stacking, the operation counter, and interface-merging shape); the scope
// stack itself follows the teacher's innermost-first symbol lookup idiom
// from internal/symbols.
package typelower

import (
	"tschecker/internal/atom"
	"tschecker/internal/diag"
	"tschecker/internal/extcore"
	"tschecker/internal/types"
)

// MaxLoweringOperations caps the number of AST nodes a single lowering call
// will visit, guarding against pathological recursive type aliases
// (spec.md §4.2). Matches the default the original project uses
// (MAX_LOWERING_OPERATIONS in solver/lower.rs).
const MaxLoweringOperations = 100_000

// builtinIntercept names the built-in generic/mapper types that are
// recognized before falling back to a nominal reference lookup (spec.md
// §4.2).
var builtinIntercept = map[string]bool{
	"Array":           true,
	"ReadonlyArray":   true,
	"Uppercase":       true,
	"Lowercase":       true,
	"Capitalize":      true,
	"Uncapitalize":    true,
}

// paramBinding is one entry of a stacked type-parameter scope.
type paramBinding struct {
	name atom.Atom
	id   types.TypeID
}

// Lowering lowers type-position syntax for a single source file (or
// declaration group, for interface merging) into TypeIDs. Not safe for
// concurrent use by multiple goroutines against the same Lowering value;
// the driver creates one per parallel worker (spec.md §5).
type Lowering struct {
	arena    extcore.ASTArena
	symbols  extcore.SymbolTable
	interner *types.Interner
	atoms    *atom.Interner
	reporter diag.Reporter

	// scopes is the stack of type-parameter scopes, innermost last.
	scopes [][]paramBinding

	operations    uint32
	limitExceeded bool

	ordinal uint32 // monotonically increasing TypeParamInfo.Ordinal source
}

// New creates a Lowering bound to one file's AST/symbol views.
func New(arena extcore.ASTArena, symbols extcore.SymbolTable, interner *types.Interner, atoms *atom.Interner, reporter diag.Reporter) *Lowering {
	return &Lowering{
		arena:    arena,
		symbols:  symbols,
		interner: interner,
		atoms:    atoms,
		reporter: reporter,
	}
}

// LimitExceeded reports whether the operation cap was hit at any point
// during this Lowering's lifetime.
func (l *Lowering) LimitExceeded() bool { return l.limitExceeded }

func (l *Lowering) tick() bool {
	l.operations++
	if l.operations > MaxLoweringOperations {
		l.limitExceeded = true
		return false
	}
	return true
}

func (l *Lowering) pushScope(bindings []paramBinding) {
	l.scopes = append(l.scopes, bindings)
}

func (l *Lowering) popScope() {
	l.scopes = l.scopes[:len(l.scopes)-1]
}

func (l *Lowering) lookupParam(name atom.Atom) (types.TypeID, bool) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		scope := l.scopes[i]
		for j := len(scope) - 1; j >= 0; j-- {
			if scope[j].name == name {
				return scope[j].id, true
			}
		}
	}
	return 0, false
}

func (l *Lowering) nextOrdinal() uint32 {
	l.ordinal++
	return l.ordinal
}

// LowerType lowers one type-position node to a TypeID. A zero/invalid node
// (a missing annotation) lowers to types.Error, per spec.md §4.2's
// "missing annotations lower to ERROR, not any" rule.
func (l *Lowering) LowerType(node extcore.NodeID) types.TypeID {
	if !node.IsValid() {
		return types.Error
	}
	if !l.tick() {
		return types.Error
	}

	switch l.arena.Kind(node) {
	case extcore.KindOmittedType:
		return types.Error

	case extcore.KindThisType:
		return l.interner.This()

	case extcore.KindTypeReference:
		return l.lowerReference(node)

	case extcore.KindUnionType:
		members := l.arena.UnionMembers(node)
		ids := make([]types.TypeID, len(members))
		for i, m := range members {
			ids[i] = l.LowerType(m)
		}
		return l.interner.Union(ids)

	case extcore.KindIntersectionType:
		members := l.arena.IntersectionMembers(node)
		ids := make([]types.TypeID, len(members))
		for i, m := range members {
			ids[i] = l.LowerType(m)
		}
		return l.interner.Intersection(ids)

	case extcore.KindArrayType:
		return l.interner.Array(l.LowerType(l.arena.ArrayElement(node)))

	case extcore.KindTupleType:
		elems := l.arena.TupleElements(node)
		out := make([]types.TupleElement, len(elems))
		for i, e := range elems {
			out[i] = types.TupleElement{
				Type:     l.LowerType(e.TypeNode),
				Name:     e.Name,
				Optional: e.Optional,
				Rest:     e.Rest,
			}
		}
		return l.interner.Tuple(out)

	case extcore.KindObjectType:
		return l.lowerObjectType(node)

	case extcore.KindFunctionType, extcore.KindConstructorType:
		shape := l.lowerFunctionSignature(node, l.arena.Kind(node) == extcore.KindConstructorType, false)
		return l.interner.Function(shape)

	case extcore.KindConditionalType:
		return l.lowerConditional(node)

	case extcore.KindMappedType:
		return l.lowerMapped(node)

	case extcore.KindIndexedAccessType:
		container, index := l.arena.IndexedAccessParts(node)
		return l.interner.IndexAccess(l.LowerType(container), l.LowerType(index))

	case extcore.KindTypeOperator:
		return l.lowerTypeOperator(node)

	case extcore.KindLiteralType:
		return l.lowerLiteral(l.arena.LiteralTypeValue(node))

	case extcore.KindTemplateLiteralType:
		return l.lowerTemplateLiteral(node)

	case extcore.KindInferType:
		// An infer node re-encountered within the scope collectInferBindings
		// already populated (the normal case, since lowerConditional pushes
		// that scope before lowering Extends) resolves to the binding that
		// scope recorded, so every occurrence of the same `infer R` shares
		// one TypeID; an infer node reached with no enclosing conditional
		// scope (a malformed extends clause outside any conditional) mints
		// its own.
		name := l.arena.InferParamName(node)
		if id, ok := l.lookupParam(name); ok {
			return id
		}
		p := types.TypeParamInfo{Name: name, Ordinal: l.nextOrdinal()}
		return l.interner.Infer(p)

	case extcore.KindTypeQuery:
		target := l.arena.TypeQueryTarget(node)
		sym, ok := l.symbols.ResolveValue(target)
		if !ok {
			l.reportUnresolved(target)
			return types.Error
		}
		return l.interner.TypeQuery(l.symbols.DeclaredTypeOf(sym))

	case extcore.KindParenthesizedType:
		return l.LowerType(l.arena.ParenthesizedInner(node))

	default:
		return types.Error
	}
}

func (l *Lowering) reportUnresolved(node extcore.NodeID) {
	if l.reporter == nil {
		return
	}
	l.reporter.Report(diag.ExtUnresolvedSymbol, diag.SevError, l.arena.Span(node), "identifier could not be resolved to a symbol", nil, nil)
}

// lowerReference handles a TypeReference node: built-in interception first,
// then type-parameter scope lookup, then nominal (Lazy) resolution via the
// symbol table.
func (l *Lowering) lowerReference(node extcore.NodeID) types.TypeID {
	nameNode, argNodes := l.arena.TypeReferenceTarget(node)
	name := l.arena.IdentifierName(nameNode)
	text := l.atoms.Resolve(name)

	if builtinIntercept[text] {
		return l.lowerBuiltin(text, argNodes)
	}

	if id, ok := l.lookupParam(name); ok {
		return id
	}

	def, ok := l.symbols.ResolveType(nameNode)
	if !ok {
		l.reportUnresolved(nameNode)
		return types.Error
	}

	base := l.interner.Lazy(def)
	if len(argNodes) == 0 {
		return base
	}
	args := make([]types.TypeID, len(argNodes))
	for i, a := range argNodes {
		args[i] = l.LowerType(a)
	}
	return l.interner.Application(base, args)
}

func (l *Lowering) lowerBuiltin(name string, argNodes []extcore.NodeID) types.TypeID {
	switch name {
	case "Array", "ReadonlyArray":
		var elem types.TypeID = types.Any
		if len(argNodes) > 0 {
			elem = l.LowerType(argNodes[0])
		}
		arr := l.interner.Array(elem)
		if name == "ReadonlyArray" {
			return l.interner.Readonly(arr)
		}
		return arr
	case "Uppercase", "Lowercase", "Capitalize", "Uncapitalize":
		var operand types.TypeID = types.String
		if len(argNodes) > 0 {
			operand = l.LowerType(argNodes[0])
		}
		kind := map[string]types.StringIntrinsicKind{
			"Uppercase":    types.StringUppercase,
			"Lowercase":    types.StringLowercase,
			"Capitalize":   types.StringCapitalize,
			"Uncapitalize": types.StringUncapitalize,
		}[name]
		return l.interner.StringIntrinsic(kind, operand)
	default:
		return types.Error
	}
}

func (l *Lowering) lowerObjectType(node extcore.NodeID) types.TypeID {
	members := l.arena.ObjectMembers(node)
	shape, callSigs, ctorSigs := l.buildObjectShape(members)
	if len(callSigs) > 0 || len(ctorSigs) > 0 {
		return l.interner.Callable(types.CallableShape{
			CallSignatures:      callSigs,
			ConstructSignatures: ctorSigs,
			Properties:          shape.Properties,
			StringIndex:         shape.StringIndex,
			NumberIndex:         shape.NumberIndex,
		})
	}
	if shape.StringIndex != nil || shape.NumberIndex != nil {
		return l.interner.ObjectWithIndex(shape)
	}
	return l.interner.Object(shape.Properties)
}

// buildObjectShape converts an object-type's member syntax into an
// ObjectShape plus any call/construct signatures found (returned
// separately, since those make the whole type a Callable rather than a
// plain Object/ObjectWithIndex — spec.md's TypeKey table has no "object
// with call signatures" variant distinct from Callable).
func (l *Lowering) buildObjectShape(members []extcore.ObjectTypeMember) (shape types.ObjectShape, callSigs, ctorSigs []types.FunctionShapeID) {
	for _, m := range members {
		switch m.Kind {
		case extcore.MemberProperty:
			shape.Properties = append(shape.Properties, types.PropertyInfo{
				Name:     m.Name,
				ReadType: l.LowerType(m.TypeNode),
				Optional: m.Optional,
				Readonly: m.Readonly,
			})
		case extcore.MemberMethod:
			shape.Properties = append(shape.Properties, types.PropertyInfo{
				Name:     m.Name,
				ReadType: l.lowerMethodType(m),
				Optional: m.Optional,
				Readonly: true,
				IsMethod: true,
			})
		case extcore.MemberCallSignature:
			callSigs = append(callSigs, l.interner.InternFunctionShape(l.lowerFunctionSignature(m.Node, false, false)))
		case extcore.MemberConstructSignature:
			ctorSigs = append(ctorSigs, l.interner.InternFunctionShape(l.lowerFunctionSignature(m.Node, true, false)))
		case extcore.MemberStringIndexSignature:
			sig := types.IndexSignature{KeyType: types.String, ValueType: l.LowerType(m.TypeNode), Readonly: m.Readonly}
			shape.StringIndex = &sig
		case extcore.MemberNumberIndexSignature:
			sig := types.IndexSignature{KeyType: types.Number, ValueType: l.LowerType(m.TypeNode), Readonly: m.Readonly}
			shape.NumberIndex = &sig
		}
	}
	return shape, callSigs, ctorSigs
}

func (l *Lowering) lowerMethodType(m extcore.ObjectTypeMember) types.TypeID {
	shape := l.lowerFunctionSignature(m.Node, false, true)
	return l.interner.Function(shape)
}

// lowerFunctionSignature lowers a FunctionType/ConstructorType/method
// declaration's full signature (type parameters, parameters, this
// parameter, return type) as one FunctionShape, pushing a fresh
// type-parameter scope for the signature's own generics.
func (l *Lowering) lowerFunctionSignature(node extcore.NodeID, isCtor, isMethod bool) types.FunctionShape {
	typeParams, params, thisParam, ret := l.arena.FunctionSignature(node)

	bindings := make([]paramBinding, len(typeParams))
	for i, tp := range typeParams {
		bindings[i] = paramBinding{name: tp.Name, id: l.interner.TypeParameter(types.TypeParamInfo{Name: tp.Name, Ordinal: l.nextOrdinal()})}
	}
	l.pushScope(bindings)
	defer l.popScope()

	shapeParams := make([]types.ParamInfo, len(params))
	for i, p := range params {
		shapeParams[i] = types.ParamInfo{
			Name:     p.Name,
			Type:     l.LowerType(p.TypeNode),
			Optional: p.Optional,
			Rest:     p.Rest,
		}
	}

	shape := types.FunctionShape{
		Params:   shapeParams,
		Return:   l.LowerType(ret),
		IsCtor:   isCtor,
		IsMethod: isMethod,
	}
	for _, b := range bindings {
		key, _ := l.interner.Lookup(b.id)
		shape.TypeParams = append(shape.TypeParams, key.Param)
	}
	if thisParam.IsValid() {
		shape.HasThis = true
		shape.This = l.LowerType(thisParam)
	}
	return shape
}

// lowerConditional lowers `Check extends Extends ? True : False`. Infer
// bindings introduced within Extends are scoped to True only (spec.md
// §4.2): the binding scope is computed (without lowering) and pushed before
// Extends itself is lowered, so every occurrence of the same `infer R`
// node — including the binder site inside Extends — resolves to one
// shared TypeID; the scope is popped before False is lowered in the outer
// scope.
func (l *Lowering) lowerConditional(node extcore.NodeID) types.TypeID {
	check, extends, whenTrue, whenFalse := l.arena.ConditionalParts(node)

	checkID := l.LowerType(check)

	inferBindings := l.collectInferBindings(extends)
	var inferParams []types.TypeParamInfo
	for _, b := range inferBindings {
		key, _ := l.interner.Lookup(b.id)
		inferParams = append(inferParams, key.Param)
	}

	l.pushScope(inferBindings)
	extendsID := l.LowerType(extends)
	trueID := l.LowerType(whenTrue)
	l.popScope()

	falseID := l.LowerType(whenFalse)

	return l.interner.Conditional(types.ConditionalType{
		Check:       checkID,
		Extends:     extendsID,
		True:        trueID,
		False:       falseID,
		InferParams: inferParams,
	})
}

// collectInferBindings walks an extends-clause subtree collecting every
// `infer R` node it contains, without lowering the subtree itself (that
// happens separately via LowerType so Infer nodes intern consistently).
func (l *Lowering) collectInferBindings(node extcore.NodeID) []paramBinding {
	if !node.IsValid() {
		return nil
	}
	var out []paramBinding
	var walk func(n extcore.NodeID)
	walk = func(n extcore.NodeID) {
		if !n.IsValid() {
			return
		}
		if l.arena.Kind(n) == extcore.KindInferType {
			name := l.arena.InferParamName(n)
			out = append(out, paramBinding{name: name, id: l.interner.Infer(types.TypeParamInfo{Name: name, Ordinal: l.nextOrdinal()})})
			return
		}
		for _, c := range l.arena.Children(n) {
			walk(c)
		}
	}
	walk(node)
	return out
}

// lowerMapped lowers `{ [K in Constraint as NameType]?/-?: Template }`,
// pushing a one-binding scope for K so Template and NameType can reference
// it, and detecting the homomorphic `{ [K in keyof Source]: Source[K] }`
// shape so instantiate/evaluator can apply per-key modifier inheritance.
func (l *Lowering) lowerMapped(node extcore.NodeID) types.TypeID {
	paramName, constraintNode, nameTypeNode, templateNode, optAdd, optRemove, roAdd, roRemove := l.arena.MappedParts(node)

	constraintID := l.LowerType(constraintNode)

	paramID := l.interner.TypeParameter(types.TypeParamInfo{Name: paramName, Ordinal: l.nextOrdinal()})
	l.pushScope([]paramBinding{{name: paramName, id: paramID}})
	defer l.popScope()

	var nameTypeID types.TypeID
	if nameTypeNode.IsValid() {
		nameTypeID = l.LowerType(nameTypeNode)
	}
	templateID := l.LowerType(templateNode)

	m := types.MappedType{
		ParamName:   paramName,
		Constraint:  constraintID,
		NameType:    nameTypeID,
		Template:    templateID,
		OptionalMod: modifierOf(optAdd, optRemove),
		ReadonlyMod: modifierOf(roAdd, roRemove),
	}

	if source, ok := l.homomorphicSource(constraintID, templateID, paramID); ok {
		m.IsHomomorphic = true
		m.HomomorphicSource = source
	}

	return l.interner.Mapped(m)
}

func modifierOf(add, remove bool) types.MappedModifier {
	switch {
	case add:
		return types.ModifierAdd
	case remove:
		return types.ModifierRemove
	default:
		return types.ModifierPreserve
	}
}

// homomorphicSource detects the `Source[K]` template pattern against a
// `keyof Source` constraint, the shape spec.md's mapped-type evaluation
// rule needs to inherit Source's per-key optional/readonly modifiers.
func (l *Lowering) homomorphicSource(constraint, template, paramID types.TypeID) (types.TypeID, bool) {
	ckey, ok := l.interner.Lookup(constraint)
	if !ok || ckey.Kind != types.KindKeyOf {
		return 0, false
	}
	source := ckey.Elem

	tkey, ok := l.interner.Lookup(template)
	if !ok || tkey.Kind != types.KindIndexAccess {
		return 0, false
	}
	if tkey.Elem != source || tkey.Elem2 != paramID {
		return 0, false
	}
	return source, true
}

func (l *Lowering) lowerTypeOperator(node extcore.NodeID) types.TypeID {
	op, operandNode := l.arena.TypeOperatorParts(node)
	switch op {
	case extcore.TypeOperatorReadonly:
		return l.interner.Readonly(l.LowerType(operandNode))
	case extcore.TypeOperatorKeyOf:
		return l.interner.KeyOf(l.LowerType(operandNode))
	case extcore.TypeOperatorUnique:
		// `unique symbol` is only meaningful on a `declare const` binding,
		// whose name would brand it via interner.UniqueSymbol; nothing in
		// this module makes that call. As a bare type-position occurrence
		// it has no declaring name to brand with, so it lowers to ERROR.
		return types.Error
	default:
		return types.Error
	}
}

func (l *Lowering) lowerLiteral(v extcore.LiteralValue) types.TypeID {
	switch v.Kind {
	case extcore.LiteralStringKind:
		return l.interner.LiteralString(v.Str)
	case extcore.LiteralNumberKind:
		return l.interner.LiteralNumber(v.Num)
	case extcore.LiteralBooleanKind:
		return l.interner.LiteralBoolean(v.Bool)
	case extcore.LiteralBigIntKind:
		return l.interner.LiteralBigInt(v.BigIntText)
	default:
		return types.Error
	}
}

func (l *Lowering) lowerTemplateLiteral(node extcore.NodeID) types.TypeID {
	texts, typeNodes := l.arena.TemplateLiteralParts(node)
	spans := make([]types.TemplateSpan, 0, len(texts)+len(typeNodes))
	// texts and typeNodes alternate text, type, text, type, ..., text
	// (len(texts) == len(typeNodes)+1); interleave them back together.
	for i, t := range texts {
		spans = append(spans, types.TemplateSpan{Which: types.TemplateText, Text: t})
		if i < len(typeNodes) {
			spans = append(spans, types.TemplateSpan{Which: types.TemplateType, Type: l.LowerType(typeNodes[i])})
		}
	}
	return l.interner.TemplateLiteral(spans)
}
