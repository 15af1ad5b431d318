package fixture

import (
	"tschecker/internal/atom"
	"tschecker/internal/extcore"
)

// Builder accumulates Nodes into an Arena through one constructor per
// syntax shape, mirroring the convenience-constructor style of this
// session's own test doubles (flowgraph/builder_test.go,
// flowanalysis/analyzer_test.go) generalized into a reusable, non-test
// package so internal/checker's own tests and cmd/tscheck's smoke mode
// can build small programs without a real parser.
type Builder struct {
	arena *Arena
	atoms *atom.Interner
}

// NewBuilder creates a Builder writing into a fresh Arena.
func NewBuilder(atoms *atom.Interner) *Builder {
	return &Builder{arena: NewArena(), atoms: atoms}
}

// Arena returns the Arena being populated. Safe to pass to the solver
// cores once building is done; further Builder calls keep mutating it.
func (b *Builder) Arena() *Arena { return b.arena }

func (b *Builder) name(s string) atom.Atom { return b.atoms.Intern(s) }

// --- Identifiers and type-position syntax ---

func (b *Builder) Identifier(name string) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindIdentifier, Name: b.name(name)})
}

func (b *Builder) TypeReference(nameNode extcore.NodeID, args ...extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindTypeReference, TypeRefName: nameNode, TypeRefArgs: args})
}

func (b *Builder) UnionType(members ...extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindUnionType, Members: members})
}

func (b *Builder) IntersectionType(members ...extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindIntersectionType, Members: members})
}

func (b *Builder) ArrayType(elem extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindArrayType, Elem: elem})
}

func (b *Builder) TupleType(elems ...extcore.TupleElementSyntax) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindTupleType, TupleElems: elems})
}

func (b *Builder) ObjectType(members ...extcore.ObjectTypeMember) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindObjectType, ObjectMembers: members})
}

// Property builds one plain property member for ObjectType/InterfaceDecl.
func (b *Builder) Property(name string, typeNode extcore.NodeID, optional, readonly bool) extcore.ObjectTypeMember {
	return extcore.ObjectTypeMember{
		Kind: extcore.MemberProperty, Name: b.name(name), TypeNode: typeNode,
		Optional: optional, Readonly: readonly,
	}
}

func (b *Builder) FunctionType(typeParams []extcore.TypeParam, params []extcore.Param, thisParam, ret extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindFunctionType, TypeParams: typeParams, Params: params, ThisParam: thisParam, Ret: ret})
}

// Param builds one parameter entry.
func (b *Builder) Param(name string, typeNode extcore.NodeID, optional, rest bool) extcore.Param {
	return extcore.Param{Name: b.name(name), TypeNode: typeNode, Optional: optional, Rest: rest}
}

func (b *Builder) ConditionalType(check, extends, whenTrue, whenFalse extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindConditionalType, Check: check, ExtendsNode: extends, WhenTrue: whenTrue, WhenFalse: whenFalse})
}

func (b *Builder) IndexedAccessType(container, index extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindIndexedAccessType, Container: container, Index: index})
}

func (b *Builder) TypeOperator(op extcore.TypeOperatorKind, operand extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindTypeOperator, TypeOp: op, Operand: operand})
}

func (b *Builder) StringLiteralType(s string) extcore.NodeID {
	return b.arena.add(Node{
		Kind:    extcore.KindLiteralType,
		Literal: extcore.LiteralValue{Kind: extcore.LiteralStringKind, Str: b.name(s)},
	})
}

func (b *Builder) NumberLiteralType(n float64) extcore.NodeID {
	return b.arena.add(Node{
		Kind:    extcore.KindLiteralType,
		Literal: extcore.LiteralValue{Kind: extcore.LiteralNumberKind, Num: n},
	})
}

func (b *Builder) TypeAliasDecl(target extcore.NodeID, typeParams ...extcore.TypeParam) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindTypeAliasDecl, AliasTarget: target, TypeParams: typeParams})
}

func (b *Builder) InterfaceDecl(members []extcore.ObjectTypeMember, extends []extcore.NodeID, typeParams ...extcore.TypeParam) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindInterfaceDecl, ObjectMembers: members, Extends: extends, TypeParams: typeParams})
}

func (b *Builder) ClassDecl(heritage, staticInits []extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindClassDecl, Heritage: heritage, StaticInits: staticInits})
}

// --- Statements ---

func (b *Builder) Block(stmts ...extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindBlockStmt, Stmts: stmts})
}

func (b *Builder) ExpressionStmt(expr extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindExpressionStmt, Expr: expr})
}

func (b *Builder) If(cond, then, elseBranch extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindIfStmt, Cond: cond, Then: then, Else: elseBranch})
}

func (b *Builder) While(cond, body extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindWhileStmt, Cond: cond, Body: body})
}

func (b *Builder) DoWhile(body, cond extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindDoWhileStmt, Body: body, Cond: cond})
}

func (b *Builder) For(init, cond, update, body extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindForStmt, Init: init, Cond: cond, Update: update, Body: body})
}

func (b *Builder) ForIn(decl, expr, body extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindForInStmt, ForDecl: decl, ForExpr: expr, Body: body})
}

func (b *Builder) ForOf(decl, expr, body extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindForOfStmt, ForDecl: decl, ForExpr: expr, Body: body})
}

func (b *Builder) Switch(discriminant extcore.NodeID, clauses ...extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindSwitchStmt, Discriminant: discriminant, Clauses: clauses})
}

func (b *Builder) SwitchClause(test extcore.NodeID, isDefault bool, stmts ...extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindSwitchClause, Test: test, IsDefault: isDefault, Stmts: stmts})
}

func (b *Builder) Try(tryBlock, catchClause, finallyBlock extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindTryStmt, TryBlock: tryBlock, CatchClause: catchClause, FinallyBlock: finallyBlock})
}

func (b *Builder) Catch(param, body extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindCatchClause, CatchParam: param, Body: body})
}

func (b *Builder) Return(expr extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindReturnStmt, Expr: expr})
}

func (b *Builder) Throw(expr extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindThrowStmt, Expr: expr})
}

func (b *Builder) Break(label string) extcore.NodeID {
	if label == "" {
		return b.arena.add(Node{Kind: extcore.KindBreakStmt})
	}
	return b.arena.add(Node{Kind: extcore.KindBreakStmt, Label: b.name(label), HasLabel: true})
}

func (b *Builder) Continue(label string) extcore.NodeID {
	if label == "" {
		return b.arena.add(Node{Kind: extcore.KindContinueStmt})
	}
	return b.arena.add(Node{Kind: extcore.KindContinueStmt, Label: b.name(label), HasLabel: true})
}

func (b *Builder) Labeled(label string, body extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindLabeledStmt, Label: b.name(label), Body: body})
}

// Binding builds one declarator of a variable declaration statement.
func (b *Builder) Binding(nameNode, typeNode, initializer extcore.NodeID, readonly bool) extcore.VariableBinding {
	return extcore.VariableBinding{NameNode: nameNode, TypeNode: typeNode, Initializer: initializer, Readonly: readonly}
}

func (b *Builder) VariableDecl(kind extcore.BindingKind, bindings ...extcore.VariableBinding) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindVariableDecl, BindingKind: kind, Bindings: bindings})
}

// --- Expressions ---

func (b *Builder) StringLiteral(s string) extcore.NodeID {
	return b.arena.add(Node{
		Kind: extcore.KindOther, HasLiteral: true,
		Literal: extcore.LiteralValue{Kind: extcore.LiteralStringKind, Str: b.name(s)},
	})
}

func (b *Builder) NumberLiteral(n float64) extcore.NodeID {
	return b.arena.add(Node{
		Kind: extcore.KindOther, HasLiteral: true,
		Literal: extcore.LiteralValue{Kind: extcore.LiteralNumberKind, Num: n},
	})
}

func (b *Builder) BooleanLiteral(v bool) extcore.NodeID {
	return b.arena.add(Node{
		Kind: extcore.KindOther, HasLiteral: true,
		Literal: extcore.LiteralValue{Kind: extcore.LiteralBooleanKind, Bool: v},
	})
}

func (b *Builder) Assignment(target, value extcore.NodeID, op extcore.AssignmentOp) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindAssignmentExpr, AssignTarget: target, AssignValue: value, AssignOp: op})
}

func (b *Builder) Binary(op string, left, right extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindBinaryExpr, Op: op, Left: left, Right: right})
}

func (b *Builder) Logical(op string, left, right extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindLogicalExpr, Op: op, Left: left, Right: right})
}

func (b *Builder) Unary(op string, operand extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindUnaryExpr, Op: op, Operand: operand})
}

func (b *Builder) Typeof(operand extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindTypeofExpr, Operand: operand})
}

func (b *Builder) Instanceof(left, right extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindInstanceofExpr, Left: left, Right: right})
}

// In builds a `prop in object` guard expression; prop is a NodeID (a
// string-literal expression, typically) rather than a bare atom, matching
// extcore.FlowArena.InParts' (prop, object NodeID) signature.
func (b *Builder) In(prop, object extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindInExpr, Left: prop, Right: object})
}

func (b *Builder) Member(object extcore.NodeID, property string, optional bool) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindMemberExpr, MemberObject: object, MemberProperty: b.name(property), MemberOptional: optional})
}

func (b *Builder) Call(callee extcore.NodeID, args ...extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindCallExpr, Callee: callee, Args: args})
}

// ArrayMutationCall builds a CallExpr flagged as one of the fixed mutating
// array methods (push/pop/splice/...), invoked on receiver.
func (b *Builder) ArrayMutationCall(receiver extcore.NodeID, method string, args ...extcore.NodeID) extcore.NodeID {
	callee := b.Member(receiver, method, false)
	return b.arena.add(Node{Kind: extcore.KindCallExpr, Callee: callee, Args: args, IsArrayMutation: true, MemberObject: receiver})
}

func (b *Builder) Await(operand extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindAwaitExpr, Operand: operand})
}

func (b *Builder) Yield(operand extcore.NodeID, delegate bool) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindYieldExpr, Operand: operand, Delegate: delegate})
}

func (b *Builder) Conditional(cond, whenTrue, whenFalse extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindConditionalExpr, Cond: cond, Then: whenTrue, Else: whenFalse})
}

func (b *Builder) NonNull(operand extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindNonNullExpr, Operand: operand})
}

func (b *Builder) ArrayLiteral(elems ...extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindArrayLiteralExpr, Children: elems})
}

// As builds `operand as typeNode`.
func (b *Builder) As(operand, typeNode extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindAsExpr, Operand: operand, AliasTarget: typeNode})
}

// AsConst builds `operand as const`.
func (b *Builder) AsConst(operand extcore.NodeID) extcore.NodeID {
	return b.arena.add(Node{Kind: extcore.KindAsExpr, Operand: operand, AsConst: true})
}

// DeclareIdentifier binds an Identifier node as the declaration site for a
// let/const/var binding, recording mutability for the flow analyzer's
// widening rule and TDZ bookkeeping.
func (b *Builder) DeclareIdentifier(ident extcore.NodeID, mutable bool) {
	n := b.arena.node(ident)
	n.Mutable = mutable
	n.DeclSite = ident
}
