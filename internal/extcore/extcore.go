// Package extcore declares the capability interfaces the solver core
// consumes from external collaborators (a scanner/parser/binder this repo
// does not implement) per spec.md §6: a read-only AST arena, a symbol
// table, an inheritance graph, and the immutable checker options. No
// example repo models this contract directly (it is a pure interface
// boundary); the shapes below are sized to §6's prose and to the accessor
// methods typelower and flowgraph actually call.
package extcore

import (
	"tschecker/internal/atom"
	"tschecker/internal/source"
	"tschecker/internal/types"
)

// NodeID is an opaque handle into the external AST arena. Zero is the
// sentinel "no node" value, matching the teacher's NodeID/FuncID idiom
// (internal/hir/ids.go).
type NodeID uint32

// NoNodeID is the sentinel "absent node" value.
const NoNodeID NodeID = 0

// IsValid reports whether n refers to a real node.
func (n NodeID) IsValid() bool { return n != NoNodeID }

// SymbolID is an opaque handle into the external symbol table.
type SymbolID uint32

// NoSymbolID is the sentinel "unresolved identifier" value.
const NoSymbolID SymbolID = 0

// IsValid reports whether s refers to a real symbol.
func (s SymbolID) IsValid() bool { return s != NoSymbolID }

// NodeKind tags the syntax form a NodeID names, for every form lowering
// and the flow graph builder care about (spec.md §6).
type NodeKind uint8

const (
	KindOther NodeKind = iota
	KindIdentifier

	// Type-position syntax.
	KindTypeReference
	KindUnionType
	KindIntersectionType
	KindArrayType
	KindTupleType
	KindObjectType
	KindFunctionType
	KindConstructorType
	KindConditionalType
	KindMappedType
	KindIndexedAccessType
	KindTypeOperator
	KindLiteralType
	KindTemplateLiteralType
	KindThisType
	KindInferType
	KindTypeQuery
	KindParenthesizedType
	KindOmittedType // a missing annotation: lowers to ERROR, not Any

	// Declarations.
	KindInterfaceDecl
	KindClassDecl
	KindTypeAliasDecl
	KindEnumDecl
	KindFunctionDecl
	KindVariableDecl
	KindTypeParameterDecl

	// Statements the flow graph builder inspects.
	KindIfStmt
	KindWhileStmt
	KindDoWhileStmt
	KindForStmt
	KindForInStmt
	KindForOfStmt
	KindSwitchStmt
	KindSwitchClause
	KindTryStmt
	KindCatchClause
	KindReturnStmt
	KindBreakStmt
	KindContinueStmt
	KindThrowStmt
	KindLabeledStmt
	KindBlockStmt
	KindExpressionStmt

	// Expressions the flow graph builder and narrowing care about.
	KindBinaryExpr
	KindUnaryExpr
	KindLogicalExpr
	KindConditionalExpr
	KindCallExpr
	KindAwaitExpr
	KindYieldExpr
	KindAssignmentExpr
	KindTypeofExpr
	KindInstanceofExpr
	KindInExpr
	KindAsExpr
	KindNonNullExpr
	KindArrayLiteralExpr
	KindMemberExpr
)

// TypeOperatorKind distinguishes `readonly T`, `keyof T`, and `unique
// symbol` type-operator syntax, which otherwise share one AST shape
// (operator + operand).
type TypeOperatorKind uint8

const (
	TypeOperatorReadonly TypeOperatorKind = iota
	TypeOperatorKeyOf
	TypeOperatorUnique
)

// ObjectMemberKind distinguishes the forms an ObjectType's member list can
// hold.
type ObjectMemberKind uint8

const (
	MemberProperty ObjectMemberKind = iota
	MemberMethod
	MemberCallSignature
	MemberConstructSignature
	MemberStringIndexSignature
	MemberNumberIndexSignature
)

// ObjectTypeMember is one entry of an ObjectType's member list.
type ObjectTypeMember struct {
	Kind     ObjectMemberKind
	Name     atom.Atom // zero for call/construct/index signatures
	TypeNode NodeID    // the member's type annotation (Property/index signatures)
	Node     NodeID    // the member's own node, decodable via FunctionSignature (Method/CallSignature/ConstructSignature)
	Optional bool
	Readonly bool
}

// TypeParam is one entry of a generic declaration's type parameter list.
type TypeParam struct {
	Name       atom.Atom
	Constraint NodeID // NoNodeID if absent
	Default    NodeID // NoNodeID if absent
}

// Param is one entry of a function/method/constructor type's parameter
// list.
type Param struct {
	Name     atom.Atom
	TypeNode NodeID
	Optional bool
	Rest     bool
}

// ASTArena is read-only access to the external syntax tree by node index.
// Every accessor is valid to call only when Kind(node) matches the form it
// decodes; arenas are expected to panic or return the zero value otherwise,
// matching how the teacher's own arenas only guarantee in-bounds access
// (internal/symbols/arena.go).
type ASTArena interface {
	Kind(node NodeID) NodeKind
	Span(node NodeID) source.Span

	// IdentifierName resolves an Identifier node's text atom.
	IdentifierName(node NodeID) atom.Atom

	// TypeReferenceTarget returns the identifier node a TypeReference names
	// and any generic arguments applied to it.
	TypeReferenceTarget(node NodeID) (name NodeID, args []NodeID)

	// UnionMembers / IntersectionMembers return a Union/IntersectionType's
	// member type nodes.
	UnionMembers(node NodeID) []NodeID
	IntersectionMembers(node NodeID) []NodeID

	// ArrayElement returns an ArrayType's element type node.
	ArrayElement(node NodeID) NodeID

	// TupleElements returns a TupleType's element type nodes, in
	// declaration order, plus per-element optional/rest/name metadata.
	TupleElements(node NodeID) []TupleElementSyntax

	// ObjectMembers returns an ObjectType's member list.
	ObjectMembers(node NodeID) []ObjectTypeMember

	// FunctionSignature decodes a FunctionType/ConstructorType/Method's
	// type parameters, parameters, and return type node.
	FunctionSignature(node NodeID) (typeParams []TypeParam, params []Param, thisParam NodeID, ret NodeID)

	// ConditionalParts decodes `Check extends Extends ? True : False`.
	ConditionalParts(node NodeID) (check, extends, whenTrue, whenFalse NodeID)

	// MappedParts decodes a mapped type's parameter name, constraint,
	// optional `as` name-remap type, template, and +/-?/readonly modifiers.
	MappedParts(node NodeID) (paramName atom.Atom, constraint, nameType, template NodeID, optionalAdd, optionalRemove, readonlyAdd, readonlyRemove bool)

	// IndexedAccessParts decodes `Container[Index]`.
	IndexedAccessParts(node NodeID) (container, index NodeID)

	// TypeOperatorParts decodes `readonly T` / `keyof T` / `unique symbol`.
	TypeOperatorParts(node NodeID) (op TypeOperatorKind, operand NodeID)

	// LiteralTypeValue decodes a string/number/boolean/bigint literal type
	// node into the concrete value it names.
	LiteralTypeValue(node NodeID) LiteralValue

	// TemplateLiteralParts decodes a template literal type's alternating
	// text runs and interpolated type nodes.
	TemplateLiteralParts(node NodeID) (texts []atom.Atom, typeNodes []NodeID)

	// InferParamName decodes an `infer R` node's introduced name.
	InferParamName(node NodeID) atom.Atom

	// TypeQueryTarget decodes a `typeof expr` node's operand identifier.
	TypeQueryTarget(node NodeID) NodeID

	// ParenthesizedInner unwraps a ParenthesizedType node.
	ParenthesizedInner(node NodeID) NodeID

	// DeclTypeParams returns a type-parameterized declaration's parameter
	// list (interface, class, type alias, function).
	DeclTypeParams(node NodeID) []TypeParam

	// InterfaceParts decodes an interface declaration's own member list
	// (ObjectType-shaped) and the type nodes of any `extends` clauses, for
	// declaration merging.
	InterfaceParts(node NodeID) (members []ObjectTypeMember, extends []NodeID)

	// TypeAliasTarget returns a type alias declaration's right-hand type
	// node.
	TypeAliasTarget(node NodeID) NodeID

	// Children lists a node's direct child nodes, for generic tree walks
	// (flow graph building over statements/expressions).
	Children(node NodeID) []NodeID
}

// TupleElementSyntax is one slot of a tuple type's syntax.
type TupleElementSyntax struct {
	TypeNode NodeID
	Name     atom.Atom
	Optional bool
	Rest     bool
}

// LiteralKind distinguishes the four literal-type forms.
type LiteralKind uint8

const (
	LiteralStringKind LiteralKind = iota
	LiteralNumberKind
	LiteralBooleanKind
	LiteralBigIntKind
)

// LiteralValue is the decoded payload of a literal type node.
type LiteralValue struct {
	Kind     LiteralKind
	Str      atom.Atom
	Num      float64
	Bool     bool
	BigIntText atom.Atom
}

// MemberVisibility mirrors types.PropertyVisibility at the symbol-table
// boundary (public/protected/private), queried independently of a
// property's resolved type.
type MemberVisibility uint8

const (
	VisPublic MemberVisibility = iota
	VisProtected
	VisPrivate
)

// SymbolTable maps identifier occurrences to symbol ids, for both
// value-position (`typeof` query) and type-position (reference) lookups,
// per spec.md §6.
type SymbolTable interface {
	// ResolveType looks up a type-position identifier node, returning the
	// DefID of the interface/class/enum/alias it names, or false if
	// unresolved (the caller lowers to ERROR).
	ResolveType(identifierNode NodeID) (types.DefID, bool)

	// ResolveValue looks up a value-position identifier node (used by
	// `typeof` and by flow analysis), returning its SymbolID, or false if
	// unresolved.
	ResolveValue(identifierNode NodeID) (SymbolID, bool)

	// DeclaredTypeOf returns a value symbol's declared (unnarrowed) type.
	DeclaredTypeOf(sym SymbolID) types.TypeID

	// IsAbstract reports whether a DefID names an abstract class/method
	// declaration (subtype and instantiate consult this when deciding
	// whether an abstract member may satisfy a structural check).
	IsAbstract(def types.DefID) bool

	// Visibility reports a class member's declared visibility, consulted by
	// the subtype checker's private-brand matching rule.
	Visibility(def types.DefID) MemberVisibility
}

// InheritanceGraph answers nominal subtyping queries for classes, so the
// subtype checker's fast path never has to structurally re-derive what a
// `class B extends A` declaration already states.
type InheritanceGraph interface {
	// IsDerivedFrom reports whether source's declaring class/interface is
	// target's, or a (possibly transitive) subclass/sub-interface of it.
	IsDerivedFrom(source, target types.DefID) bool
}

// CheckerOptions are the session-wide flags that must be honored
// consistently by the evaluator, subtype checker, and flow analyzer
// (spec.md §6). Immutable for the duration of a session.
type CheckerOptions struct {
	StrictNullChecks           bool
	StrictFunctionTypes        bool
	NoUncheckedIndexedAccess   bool
	ExactOptionalPropertyTypes bool
	AllowAnySuppression        bool
}
