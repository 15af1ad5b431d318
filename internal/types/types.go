// Package types implements the structural type interner: dense TypeIDs for
// hash-consed TypeKeys, plus the side tables (type lists, tuple lists,
// object/function/callable shapes, conditionals, mapped types) each TypeKey
// variant points into.
package types

import "tschecker/internal/atom"

// TypeID is an opaque handle into the interner. Values below firstUserTypeID
// are intrinsics and require no table lookup.
type TypeID uint32

// Intrinsic TypeIDs. Compile-time constants, never looked up in a table.
const (
	Any TypeID = iota
	Unknown
	Never
	Void
	Undefined
	Null
	Boolean
	Number
	String
	BigInt
	SymbolIntrinsic
	Object
	FunctionIntrinsic
	True
	False
	Error

	firstUserTypeID
)

// Kind tags the variant a non-intrinsic TypeID's TypeKey holds.
type Kind uint8

const (
	KindIntrinsic Kind = iota
	KindLiteralString
	KindLiteralNumber
	KindLiteralBoolean
	KindLiteralBigInt
	KindUnion
	KindIntersection
	KindArray
	KindTuple
	KindObject
	KindObjectWithIndex
	KindFunction
	KindCallable
	KindConditional
	KindMapped
	KindIndexAccess
	KindKeyOf
	KindApplication
	KindTypeParameter
	KindInfer
	KindTemplateLiteral
	KindStringIntrinsic
	KindLazy
	KindRecursive
	KindBoundParameter
	KindReadonly
	KindThis
	KindUniqueSymbol
	KindTypeQuery
	KindError
)

// StringIntrinsicKind distinguishes the four built-in string mapper types.
type StringIntrinsicKind uint8

const (
	StringUppercase StringIntrinsicKind = iota
	StringLowercase
	StringCapitalize
	StringUncapitalize
)

// TypeParamInfo identifies a free type parameter or an infer binding by name
// and a uniqueness ordinal (distinct declarations of the same name, e.g. in
// nested generic scopes, must not collide).
type TypeParamInfo struct {
	Name    atom.Atom
	Ordinal uint32
}

// TypeKey is the tagged union every non-intrinsic TypeID resolves to. Only
// one group of fields is meaningful per Kind; see the builders in builder.go
// for the canonical way to construct one.
type TypeKey struct {
	Kind Kind

	// Literal payloads. Numeric literals are keyed by their raw IEEE-754 bit
	// pattern (via math.Float64bits) rather than float64 directly: Go's
	// built-in == (and therefore map-key equality) treats NaN != NaN and
	// +0 == -0, which would break hash-consing identity for exactly the two
	// cases spec.md §4.1 calls out ("NaN treated as a distinguished value,
	// -0 and 0 distinct").
	LitString     atom.Atom
	LitNumberBits uint64
	LitBool       bool
	LitBigInt     atom.Atom

	// Single-TypeID payloads (Array, IndexAccess container, KeyOf operand,
	// StringIntrinsic operand, Readonly operand).
	Elem TypeID

	// Secondary TypeID (IndexAccess index).
	Elem2 TypeID

	// Side-table references.
	TypeList     TypeListID
	TupleList    TupleListID
	ObjectShape  ObjectShapeID
	FunctionSig  FunctionShapeID
	CallableSig  CallableShapeID
	Conditional  ConditionalID
	Mapped       MappedID
	Template     TemplateLiteralID
	Application  ApplicationID

	StringIntrinsic StringIntrinsicKind

	Param TypeParamInfo

	Def DefID

	// De Bruijn payloads, canonicalization only.
	DeBruijnDepth uint32

	UniqueSymbolName atom.Atom
}

// DefID names an external (Lazy) definition, e.g. an interface or class
// declaration owned by the symbol table, not by this interner.
type DefID uint32

// TypeListID, TupleListID, ... are handles into the interner's side tables.
type (
	TypeListID         uint32
	TupleListID        uint32
	ObjectShapeID      uint32
	FunctionShapeID    uint32
	CallableShapeID    uint32
	ConditionalID      uint32
	MappedID           uint32
	TemplateLiteralID  uint32
	ApplicationID      uint32
)

// PropertyVisibility mirrors TypeScript's public/protected/private.
type PropertyVisibility uint8

const (
	Public PropertyVisibility = iota
	Protected
	Private
)

// PropertyInfo is one entry of an ObjectShape's property list.
type PropertyInfo struct {
	Name       atom.Atom
	ReadType   TypeID
	WriteType  TypeID
	Optional   bool
	Readonly   bool
	IsMethod   bool
	Visibility PropertyVisibility
	// Owner, when non-zero, names the declaring class/interface DefID; used
	// for private-brand matching in the subtype checker.
	Owner DefID
}

// IndexSignature is a string or number index signature on an object shape.
type IndexSignature struct {
	KeyType   TypeID // String or Number
	ValueType TypeID
	Readonly  bool
}

// ObjectShape is the read-through payload for Object/ObjectWithIndex.
// Properties are kept sorted by Name for deterministic canonicalization and
// binary-searchable property lookup.
type ObjectShape struct {
	Properties   []PropertyInfo
	StringIndex  *IndexSignature
	NumberIndex  *IndexSignature
	NominalOrigin DefID
}

// ParamInfo is one entry of a FunctionShape's parameter list.
type ParamInfo struct {
	Name     atom.Atom
	Type     TypeID
	Optional bool
	Rest     bool
}

// PredicateKind distinguishes `x is T` from `asserts x is T`.
type PredicateKind uint8

const (
	NoPredicate PredicateKind = iota
	TypePredicate
	AssertsPredicate
)

// TypePredicateInfo describes a user-defined type guard return annotation.
type TypePredicateInfo struct {
	Kind        PredicateKind
	ParamName   atom.Atom
	AssertedType TypeID // zero (Any-ish) for bare `asserts x`
}

// FunctionShape carries a single call signature.
type FunctionShape struct {
	TypeParams []TypeParamInfo
	Params     []ParamInfo
	This       TypeID // zero means "no explicit this type"
	HasThis    bool
	Return     TypeID
	Predicate  TypePredicateInfo
	IsCtor     bool
	IsMethod   bool
}

// CallableShape generalizes FunctionShape to an overload set plus optional
// construct signatures and an attached property/index-signature bag (e.g.
// for a namespace-like callable or a class's static side).
type CallableShape struct {
	CallSignatures      []FunctionShapeID
	ConstructSignatures []FunctionShapeID
	Properties          []PropertyInfo
	StringIndex         *IndexSignature
	NumberIndex         *IndexSignature
}

// TupleElement is one slot of a tuple type.
type TupleElement struct {
	Type     TypeID
	Name     atom.Atom // zero if unnamed
	Optional bool
	Rest     bool
}

// ConditionalType is `Check extends Extends ? True : False`.
type ConditionalType struct {
	Check    TypeID
	Extends  TypeID
	True     TypeID
	False    TypeID
	// InferParams lists the type parameters introduced by `infer` clauses
	// within Extends, scoped to True only.
	InferParams []TypeParamInfo
}

// MappedModifier is `+`, `-`, or absent (preserve/default).
type MappedModifier uint8

const (
	ModifierPreserve MappedModifier = iota
	ModifierAdd
	ModifierRemove
)

// MappedType is `{ [K in Constraint as NameType]?/-?: Template }`.
type MappedType struct {
	ParamName      atom.Atom
	Constraint     TypeID // a union of literals, or a KeyOf
	NameType       TypeID // zero if no `as` clause
	Template       TypeID
	OptionalMod    MappedModifier
	ReadonlyMod    MappedModifier
	// HomomorphicSource is set when Template is exactly `Source[K]` for some
	// Source, enabling per-key modifier inheritance.
	HomomorphicSource TypeID
	IsHomomorphic     bool
}

// TemplateSpanKind distinguishes a literal text run from an interpolated
// type within a template literal type.
type TemplateSpanKind uint8

const (
	TemplateText TemplateSpanKind = iota
	TemplateType
)

// TemplateSpan is one alternating text/type segment of a TemplateLiteral.
type TemplateSpan struct {
	Which TemplateSpanKind
	Text  atom.Atom // valid when Which == TemplateText
	Type  TypeID    // valid when Which == TemplateType
}

// TypeApplication is a generic instantiation, `Base<Args...>`.
type TypeApplication struct {
	Base TypeID
	Args []TypeID
}

func (k Kind) String() string {
	switch k {
	case KindIntrinsic:
		return "Intrinsic"
	case KindLiteralString:
		return "LiteralString"
	case KindLiteralNumber:
		return "LiteralNumber"
	case KindLiteralBoolean:
		return "LiteralBoolean"
	case KindLiteralBigInt:
		return "LiteralBigInt"
	case KindUnion:
		return "Union"
	case KindIntersection:
		return "Intersection"
	case KindArray:
		return "Array"
	case KindTuple:
		return "Tuple"
	case KindObject:
		return "Object"
	case KindObjectWithIndex:
		return "ObjectWithIndex"
	case KindFunction:
		return "Function"
	case KindCallable:
		return "Callable"
	case KindConditional:
		return "Conditional"
	case KindMapped:
		return "Mapped"
	case KindIndexAccess:
		return "IndexAccess"
	case KindKeyOf:
		return "KeyOf"
	case KindApplication:
		return "Application"
	case KindTypeParameter:
		return "TypeParameter"
	case KindInfer:
		return "Infer"
	case KindTemplateLiteral:
		return "TemplateLiteral"
	case KindStringIntrinsic:
		return "StringIntrinsic"
	case KindLazy:
		return "Lazy"
	case KindRecursive:
		return "Recursive"
	case KindBoundParameter:
		return "BoundParameter"
	case KindReadonly:
		return "Readonly"
	case KindThis:
		return "This"
	case KindUniqueSymbol:
		return "UniqueSymbol"
	case KindTypeQuery:
		return "TypeQuery"
	case KindError:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsIntrinsic reports whether id needs no table lookup.
func IsIntrinsic(id TypeID) bool {
	return id < firstUserTypeID
}
