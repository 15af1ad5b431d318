// Package fixture is a minimal concrete AST arena, symbol table, and
// inheritance graph implementing the internal/extcore capability
// interfaces, so the solver cores and internal/checker can be driven end
// to end without a real scanner/parser/binder (explicitly out of scope,
// spec.md §9). Grounded on the teacher's arena/ID idiom: internal/ast's
// generic Arena[T] (1-based indices, 0 as the absent-node sentinel, which
// lines up exactly with extcore.NoNodeID) and internal/symbols' Table
// shape (separate arenas for scopes/symbols behind one aggregating type).
// Callers build a program's AST through Builder's per-shape constructors,
// then hand the resulting *Arena to the evaluator/subtype/infer/flowgraph/
// flowanalysis constructors as both its extcore.ASTArena and
// extcore.FlowArena argument, mirroring FlowArena's own doc comment that
// "a real binder-backed arena implements both on one underlying type".
package fixture

import (
	"fmt"

	"fortio.org/safecast"

	"tschecker/internal/atom"
	"tschecker/internal/extcore"
	"tschecker/internal/types"
)

// arena is a generic typed arena for allocating elements, 1-based so that
// index 0 (extcore.NoNodeID) is never a valid handle. Ported from
// internal/ast/arena.go's Arena[T].
type arena[T any] struct {
	data []*T
}

func newArena[T any](capHint uint) *arena[T] {
	return &arena[T]{data: make([]*T, 0, capHint)}
}

func (a *arena[T]) allocate(value T) uint32 {
	elem := new(T)
	*elem = value
	a.data = append(a.data, elem)
	return a.len()
}

func (a *arena[T]) get(index uint32) *T {
	if index == 0 {
		return nil
	}
	return a.data[index-1]
}

func (a *arena[T]) len() uint32 {
	result, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("fixture arena len overflow: %w", err))
	}
	return result
}

// Node is the concrete, one-struct-tagged-by-Kind representation every
// fixture AST node is stored as. Only the field group matching Kind is
// meaningful; this mirrors the flat test-double Node shapes already used
// in internal/flowgraph/builder_test.go and
// internal/flowanalysis/analyzer_test.go, generalized to cover every shape
// extcore.ASTArena/FlowArena names rather than only the subset one test
// exercises.
type Node struct {
	Kind extcore.NodeKind

	// Identifier.
	Name atom.Atom

	// TypeReference.
	TypeRefName extcore.NodeID
	TypeRefArgs []extcore.NodeID

	// Union/IntersectionType.
	Members []extcore.NodeID

	// ArrayType.
	Elem extcore.NodeID

	// TupleType.
	TupleElems []extcore.TupleElementSyntax

	// ObjectType / InterfaceDecl.
	ObjectMembers []extcore.ObjectTypeMember
	Extends       []extcore.NodeID

	// FunctionType/ConstructorType/method signature.
	TypeParams []extcore.TypeParam
	Params     []extcore.Param
	ThisParam  extcore.NodeID
	Ret        extcore.NodeID

	// ConditionalType.
	Check, ExtendsNode, WhenTrue, WhenFalse extcore.NodeID

	// MappedType.
	MappedParam                                              atom.Atom
	Constraint, NameType, Template                            extcore.NodeID
	OptionalAdd, OptionalRemove, ReadonlyAdd, ReadonlyRemove bool

	// IndexedAccessType.
	Container, Index extcore.NodeID

	// TypeOperator.
	TypeOp  extcore.TypeOperatorKind
	Operand extcore.NodeID

	// LiteralType / value-position literal expression.
	Literal    extcore.LiteralValue
	HasLiteral bool

	// TemplateLiteralType.
	TemplateTexts []atom.Atom
	TemplateTypes []extcore.NodeID

	// InferType.
	InferName atom.Atom

	// TypeAliasDecl.
	AliasTarget extcore.NodeID

	// Block/children (generic statement list + tree-walk fallback).
	Stmts    []extcore.NodeID
	Children []extcore.NodeID

	// ExpressionStmt.
	Expr extcore.NodeID

	// IfStmt.
	Cond, Then, Else extcore.NodeID

	// While/DoWhile.
	Body extcore.NodeID

	// ForStmt.
	Init, Update extcore.NodeID

	// ForIn/ForOf.
	ForDecl, ForExpr extcore.NodeID

	// SwitchStmt.
	Discriminant extcore.NodeID
	Clauses      []extcore.NodeID

	// SwitchClause.
	Test      extcore.NodeID
	IsDefault bool

	// TryStmt.
	TryBlock, CatchClause, FinallyBlock extcore.NodeID

	// CatchClause.
	CatchParam extcore.NodeID

	// LabeledStmt, and Break/ContinueStmt (which reuse the same fields).
	Label    atom.Atom
	HasLabel bool

	// VariableDecl.
	BindingKind extcore.BindingKind
	Bindings    []extcore.VariableBinding

	// AssignmentExpr.
	AssignTarget, AssignValue extcore.NodeID
	AssignOp                 extcore.AssignmentOp

	// Binary/LogicalExpr, and UnaryExpr (which reuses Op/Operand).
	Op          string
	Left, Right extcore.NodeID

	// MemberExpr.
	MemberObject   extcore.NodeID
	MemberProperty atom.Atom
	MemberOptional bool

	// CallExpr.
	Callee          extcore.NodeID
	Args            []extcore.NodeID
	IsArrayMutation bool

	// Await/YieldExpr.
	Delegate bool

	// AsExpr.
	AsConst bool

	// ClassDecl.
	Heritage    []extcore.NodeID
	StaticInits []extcore.NodeID

	// Declaration linkage (let/const binding site for TDZ, mutability).
	DeclSite extcore.NodeID
	Mutable  bool

	// exprType is the statically computed (unnarrowed) type of this node
	// when it denotes an expression, set via Arena.SetExprType. Not part
	// of extcore: a fixture-built program has no separate type-checking
	// pass of its own to derive one from, so a builder/test/CLI caller
	// records it directly, and internal/checker wires Arena.ExprType
	// through as flowanalysis.ExprTypeFunc / evaluator input.
	exprType types.TypeID
}
