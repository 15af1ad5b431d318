package fixture

import (
	"tschecker/internal/atom"
	"tschecker/internal/extcore"
)

// --- extcore.FlowArena ---

func (a *Arena) BlockStatements(node extcore.NodeID) []extcore.NodeID { return a.node(node).Stmts }

func (a *Arena) ExpressionOfStmt(node extcore.NodeID) extcore.NodeID { return a.node(node).Expr }

func (a *Arena) IfParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.Cond, n.Then, n.Else
}

func (a *Arena) WhileParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.Cond, n.Body
}

func (a *Arena) DoWhileParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.Body, n.Cond
}

func (a *Arena) ForParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.Init, n.Cond, n.Update, n.Body
}

func (a *Arena) ForInParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.ForDecl, n.ForExpr, n.Body
}

func (a *Arena) ForOfParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.ForDecl, n.ForExpr, n.Body
}

func (a *Arena) SwitchParts(node extcore.NodeID) (extcore.NodeID, []extcore.NodeID) {
	n := a.node(node)
	return n.Discriminant, n.Clauses
}

func (a *Arena) SwitchClauseParts(node extcore.NodeID) (extcore.NodeID, bool, []extcore.NodeID) {
	n := a.node(node)
	return n.Test, n.IsDefault, n.Stmts
}

func (a *Arena) TryParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.TryBlock, n.CatchClause, n.FinallyBlock
}

func (a *Arena) CatchParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.CatchParam, n.Body
}

func (a *Arena) LabeledParts(node extcore.NodeID) (atom.Atom, extcore.NodeID) {
	n := a.node(node)
	return n.Label, n.Body
}

func (a *Arena) ReturnExpr(node extcore.NodeID) extcore.NodeID { return a.node(node).Expr }

func (a *Arena) ThrowExpr(node extcore.NodeID) extcore.NodeID { return a.node(node).Expr }

func (a *Arena) BreakTarget(node extcore.NodeID) (atom.Atom, bool) {
	n := a.node(node)
	return n.Label, n.HasLabel
}

func (a *Arena) ContinueTarget(node extcore.NodeID) (atom.Atom, bool) {
	n := a.node(node)
	return n.Label, n.HasLabel
}

func (a *Arena) VariableDeclParts(node extcore.NodeID) (extcore.BindingKind, []extcore.VariableBinding) {
	n := a.node(node)
	return n.BindingKind, n.Bindings
}

func (a *Arena) AssignmentParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.AssignmentOp) {
	n := a.node(node)
	return n.AssignTarget, n.AssignValue, n.AssignOp
}

func (a *Arena) IsArrayMutationCall(node extcore.NodeID) bool { return a.node(node).IsArrayMutation }

func (a *Arena) ArrayMutationTarget(node extcore.NodeID) extcore.NodeID {
	return a.node(node).MemberObject
}

func (a *Arena) AwaitOperand(node extcore.NodeID) extcore.NodeID { return a.node(node).Operand }

func (a *Arena) YieldOperand(node extcore.NodeID) (extcore.NodeID, bool) {
	n := a.node(node)
	return n.Operand, n.Delegate
}

func (a *Arena) BinaryParts(node extcore.NodeID) (string, extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.Op, n.Left, n.Right
}

func (a *Arena) LogicalParts(node extcore.NodeID) (string, extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.Op, n.Left, n.Right
}

func (a *Arena) UnaryParts(node extcore.NodeID) (string, extcore.NodeID) {
	n := a.node(node)
	return n.Op, n.Operand
}

func (a *Arena) TypeofParts(node extcore.NodeID) extcore.NodeID { return a.node(node).Operand }

func (a *Arena) InstanceofParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.Left, n.Right
}

func (a *Arena) InParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID) {
	n := a.node(node)
	return n.Left, n.Right
}

func (a *Arena) MemberParts(node extcore.NodeID) (extcore.NodeID, atom.Atom, bool) {
	n := a.node(node)
	return n.MemberObject, n.MemberProperty, n.MemberOptional
}

func (a *Arena) LiteralValueOf(node extcore.NodeID) (extcore.LiteralValue, bool) {
	n := a.node(node)
	return n.Literal, n.HasLiteral
}

func (a *Arena) AsConstTarget(node extcore.NodeID) (extcore.NodeID, bool) {
	n := a.node(node)
	return n.Operand, n.AsConst
}

func (a *Arena) TypeOfAsExpr(node extcore.NodeID) extcore.NodeID { return a.node(node).AliasTarget }

func (a *Arena) CallParts(node extcore.NodeID) (extcore.NodeID, []extcore.NodeID) {
	n := a.node(node)
	return n.Callee, n.Args
}

func (a *Arena) ClassHeritageAndStatics(node extcore.NodeID) ([]extcore.NodeID, []extcore.NodeID) {
	n := a.node(node)
	return n.Heritage, n.StaticInits
}

func (a *Arena) IsMutableBinding(node extcore.NodeID) bool { return a.node(node).Mutable }

func (a *Arena) DeclarationSite(node extcore.NodeID) extcore.NodeID { return a.node(node).DeclSite }
