package fixture

import (
	"tschecker/internal/atom"
	"tschecker/internal/extcore"
	"tschecker/internal/source"
	"tschecker/internal/types"
)

// Arena is a concrete extcore.ASTArena + extcore.FlowArena over Nodes
// allocated through a Builder. Not safe for concurrent writes (Builder
// methods mutate the underlying arena); once built, read-only access
// (every ASTArena/FlowArena method) is safe for concurrent use by multiple
// checker workers, matching how internal/types.Interner documents its own
// read/write split.
type Arena struct {
	nodes *arena[Node]
}

// NewArena creates an empty Arena, ready for a Builder to populate.
func NewArena() *Arena {
	return &Arena{nodes: newArena[Node](64)}
}

func (a *Arena) add(n Node) extcore.NodeID {
	return extcore.NodeID(a.nodes.allocate(n))
}

func (a *Arena) node(id extcore.NodeID) *Node {
	n := a.nodes.get(uint32(id))
	if n == nil {
		panic("fixture: invalid NodeID")
	}
	return n
}

// SetExprType and ExprType are not part of extcore: internal/checker needs
// a way to read an expression node's statically computed type when
// wiring flowanalysis.ExprTypeFunc, and a fixture-built program has no
// separate type-checking pass to compute one from, so a test/CLI caller
// records it directly on the node that denotes it.
func (a *Arena) SetExprType(id extcore.NodeID, ty types.TypeID) {
	a.node(id).exprType = ty
}

func (a *Arena) ExprType(id extcore.NodeID) types.TypeID {
	if !id.IsValid() {
		return types.Any
	}
	return a.node(id).exprType
}

// --- extcore.ASTArena ---

func (a *Arena) Kind(node extcore.NodeID) extcore.NodeKind { return a.node(node).Kind }

func (a *Arena) Span(node extcore.NodeID) source.Span { return source.Span{} }

func (a *Arena) IdentifierName(node extcore.NodeID) atom.Atom { return a.node(node).Name }

func (a *Arena) TypeReferenceTarget(node extcore.NodeID) (extcore.NodeID, []extcore.NodeID) {
	n := a.node(node)
	return n.TypeRefName, n.TypeRefArgs
}

func (a *Arena) UnionMembers(node extcore.NodeID) []extcore.NodeID { return a.node(node).Members }

func (a *Arena) IntersectionMembers(node extcore.NodeID) []extcore.NodeID {
	return a.node(node).Members
}

func (a *Arena) ArrayElement(node extcore.NodeID) extcore.NodeID { return a.node(node).Elem }

func (a *Arena) TupleElements(node extcore.NodeID) []extcore.TupleElementSyntax {
	return a.node(node).TupleElems
}

func (a *Arena) ObjectMembers(node extcore.NodeID) []extcore.ObjectTypeMember {
	return a.node(node).ObjectMembers
}

func (a *Arena) FunctionSignature(node extcore.NodeID) ([]extcore.TypeParam, []extcore.Param, extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.TypeParams, n.Params, n.ThisParam, n.Ret
}

func (a *Arena) ConditionalParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.Check, n.ExtendsNode, n.WhenTrue, n.WhenFalse
}

func (a *Arena) MappedParts(node extcore.NodeID) (atom.Atom, extcore.NodeID, extcore.NodeID, extcore.NodeID, bool, bool, bool, bool) {
	n := a.node(node)
	return n.MappedParam, n.Constraint, n.NameType, n.Template, n.OptionalAdd, n.OptionalRemove, n.ReadonlyAdd, n.ReadonlyRemove
}

func (a *Arena) IndexedAccessParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.Container, n.Index
}

func (a *Arena) TypeOperatorParts(node extcore.NodeID) (extcore.TypeOperatorKind, extcore.NodeID) {
	n := a.node(node)
	return n.TypeOp, n.Operand
}

func (a *Arena) LiteralTypeValue(node extcore.NodeID) extcore.LiteralValue { return a.node(node).Literal }

func (a *Arena) TemplateLiteralParts(node extcore.NodeID) ([]atom.Atom, []extcore.NodeID) {
	n := a.node(node)
	return n.TemplateTexts, n.TemplateTypes
}

func (a *Arena) InferParamName(node extcore.NodeID) atom.Atom { return a.node(node).InferName }

func (a *Arena) TypeQueryTarget(node extcore.NodeID) extcore.NodeID { return a.node(node).Operand }

func (a *Arena) ParenthesizedInner(node extcore.NodeID) extcore.NodeID { return a.node(node).Operand }

func (a *Arena) DeclTypeParams(node extcore.NodeID) []extcore.TypeParam { return a.node(node).TypeParams }

func (a *Arena) InterfaceParts(node extcore.NodeID) ([]extcore.ObjectTypeMember, []extcore.NodeID) {
	n := a.node(node)
	return n.ObjectMembers, n.Extends
}

func (a *Arena) TypeAliasTarget(node extcore.NodeID) extcore.NodeID { return a.node(node).AliasTarget }

// Children returns node's immediate structural children for a generic
// tree walk (internal/checker.CheckSourceFile's whole-file pass), derived
// from the field group Kind selects rather than a separately populated
// list — a Builder call only ever fills in the fields its own shape
// uses, so deriving children from Kind is the only way a walk sees past
// the nodes Builder happens to store under the generic Children field
// (array literal elements).
func (a *Arena) Children(node extcore.NodeID) []extcore.NodeID {
	n := a.node(node)
	var out []extcore.NodeID
	push := func(ids ...extcore.NodeID) {
		for _, id := range ids {
			if id.IsValid() {
				out = append(out, id)
			}
		}
	}
	pushAll := func(ids []extcore.NodeID) {
		for _, id := range ids {
			push(id)
		}
	}

	switch n.Kind {
	case extcore.KindBlockStmt:
		pushAll(n.Stmts)
	case extcore.KindExpressionStmt:
		push(n.Expr)
	case extcore.KindIfStmt:
		push(n.Cond, n.Then, n.Else)
	case extcore.KindWhileStmt:
		push(n.Cond, n.Body)
	case extcore.KindDoWhileStmt:
		push(n.Body, n.Cond)
	case extcore.KindForStmt:
		push(n.Init, n.Cond, n.Update, n.Body)
	case extcore.KindForInStmt, extcore.KindForOfStmt:
		push(n.ForDecl, n.ForExpr, n.Body)
	case extcore.KindSwitchStmt:
		push(n.Discriminant)
		pushAll(n.Clauses)
	case extcore.KindSwitchClause:
		push(n.Test)
		pushAll(n.Stmts)
	case extcore.KindTryStmt:
		push(n.TryBlock, n.CatchClause, n.FinallyBlock)
	case extcore.KindCatchClause:
		push(n.CatchParam, n.Body)
	case extcore.KindReturnStmt, extcore.KindThrowStmt:
		push(n.Expr)
	case extcore.KindLabeledStmt:
		push(n.Body)
	case extcore.KindVariableDecl:
		for _, b := range n.Bindings {
			push(b.NameNode, b.TypeNode, b.Initializer)
		}
	case extcore.KindAssignmentExpr:
		push(n.AssignTarget, n.AssignValue)
	case extcore.KindBinaryExpr, extcore.KindLogicalExpr, extcore.KindInstanceofExpr, extcore.KindInExpr:
		push(n.Left, n.Right)
	case extcore.KindUnaryExpr, extcore.KindTypeofExpr, extcore.KindAwaitExpr, extcore.KindNonNullExpr:
		push(n.Operand)
	case extcore.KindYieldExpr:
		push(n.Operand)
	case extcore.KindConditionalExpr:
		push(n.Cond, n.Then, n.Else)
	case extcore.KindCallExpr:
		push(n.Callee)
		pushAll(n.Args)
	case extcore.KindAsExpr:
		push(n.Operand)
	case extcore.KindArrayLiteralExpr:
		pushAll(n.Children)
	case extcore.KindMemberExpr:
		push(n.MemberObject)
	case extcore.KindClassDecl:
		pushAll(n.Heritage)
		pushAll(n.StaticInits)
	}
	return out
}
