package extcore

import "tschecker/internal/atom"

// BindingKind distinguishes var/let/const declarations, which the flow
// analyzer's widening rule (spec.md §4.8) treats differently: a literal
// assigned to a `let`/`var` binding widens to its primitive, a `const`
// binding keeps the literal.
type BindingKind uint8

const (
	BindingVar BindingKind = iota
	BindingLet
	BindingConst
)

// VariableBinding is one declarator of a variable declaration statement
// (`let x = 1, y = 2`).
type VariableBinding struct {
	NameNode    NodeID // the bound Identifier node
	TypeNode    NodeID // NoNodeID if no annotation
	Initializer NodeID // NoNodeID if absent
	Readonly    bool   // `readonly` modifier (class property / const assertion site)
}

// AssignmentOp distinguishes a plain `=` from a compound assignment
// operator (`+=`, `&&=`, ...); flow graph construction treats both the same
// (one ASSIGNMENT node per bound reference) but the flow analyzer needs to
// know a compound assignment also reads the prior value.
type AssignmentOp uint8

const (
	AssignPlain AssignmentOp = iota
	AssignCompound
)

// FlowArena is the control-flow-relevant slice of the external AST: the
// statement and expression shapes the flow graph builder and flow analyzer
// (spec.md §4.7/§4.8) need to decode. Kept separate from ASTArena (which
// covers type-position syntax) since the two consumers (typelower vs.
// flowgraph/flowanalysis) touch disjoint node shapes; a real binder-backed
// arena implements both on one underlying type.
type FlowArena interface {
	// BlockStatements returns a Block's direct statement list in order.
	BlockStatements(node NodeID) []NodeID

	// ExpressionOfStmt unwraps an ExpressionStmt to its expression node.
	ExpressionOfStmt(node NodeID) NodeID

	// IfParts decodes `if (cond) then else elseBranch`; elseBranch is
	// NoNodeID when absent.
	IfParts(node NodeID) (cond, then, elseBranch NodeID)

	// WhileParts / DoWhileParts decode the loop's condition and body.
	WhileParts(node NodeID) (cond, body NodeID)
	DoWhileParts(node NodeID) (body, cond NodeID)

	// ForParts decodes a C-style for loop; init/cond/update are NoNodeID
	// when the corresponding clause is omitted.
	ForParts(node NodeID) (init, cond, update, body NodeID)

	// ForInParts / ForOfParts decode `for (decl in/of expr) body`.
	ForInParts(node NodeID) (decl, expr, body NodeID)
	ForOfParts(node NodeID) (decl, expr, body NodeID)

	// SwitchParts decodes a switch statement's discriminant and clause list.
	SwitchParts(node NodeID) (discriminant NodeID, clauses []NodeID)

	// SwitchClauseParts decodes one clause; test is NoNodeID for `default`.
	SwitchClauseParts(node NodeID) (test NodeID, isDefault bool, body []NodeID)

	// TryParts decodes try/catch/finally; catchClause and finallyBlock are
	// NoNodeID when absent.
	TryParts(node NodeID) (tryBlock, catchClause, finallyBlock NodeID)

	// CatchParts decodes a catch clause's bound parameter (NoNodeID if the
	// catch omits a binding) and body block.
	CatchParts(node NodeID) (param, body NodeID)

	// LabeledParts decodes a labeled statement's label atom and target
	// statement.
	LabeledParts(node NodeID) (label atom.Atom, body NodeID)

	// ReturnExpr / ThrowExpr return the returned/thrown expression;
	// ReturnExpr is NoNodeID for a bare `return;`.
	ReturnExpr(node NodeID) NodeID
	ThrowExpr(node NodeID) NodeID

	// BreakTarget / ContinueTarget decode an explicit label, if present.
	BreakTarget(node NodeID) (label atom.Atom, hasLabel bool)
	ContinueTarget(node NodeID) (label atom.Atom, hasLabel bool)

	// VariableDeclParts decodes a variable declaration statement's
	// var/let/const kind and declarator list.
	VariableDeclParts(node NodeID) (kind BindingKind, bindings []VariableBinding)

	// AssignmentParts decodes an assignment expression's target, value, and
	// whether the operator is compound (`+=` and friends read-then-write).
	AssignmentParts(node NodeID) (target, value NodeID, op AssignmentOp)

	// IsArrayMutationCall reports whether a CallExpr invokes one of the
	// fixed mutating array methods (push/pop/shift/unshift/splice/sort/
	// reverse/fill/copyWithin) on a non-optional property access, per
	// spec.md §4.7's ARRAY_MUTATION rule.
	IsArrayMutationCall(node NodeID) bool

	// ArrayMutationTarget returns the receiver reference a mutating call
	// was made on (the base of the member access).
	ArrayMutationTarget(node NodeID) NodeID

	// AwaitOperand / YieldOperand decode the suspended expression; delegate
	// is true for `yield*`.
	AwaitOperand(node NodeID) NodeID
	YieldOperand(node NodeID) (operand NodeID, delegate bool)

	// BinaryParts / LogicalParts decode a binary/logical expression's
	// operator token text (e.g. "===", "&&") and operands.
	BinaryParts(node NodeID) (op string, left, right NodeID)
	LogicalParts(node NodeID) (op string, left, right NodeID)

	// UnaryParts decodes a unary expression's operator (e.g. "!") and
	// operand.
	UnaryParts(node NodeID) (op string, operand NodeID)

	// TypeofParts / InstanceofParts / InParts decode the three built-in
	// narrowing guard forms.
	TypeofParts(node NodeID) (operand NodeID)
	InstanceofParts(node NodeID) (left, right NodeID)
	InParts(node NodeID) (prop, object NodeID)

	// MemberParts decodes a (non-computed) property access `obj.name`,
	// used to recognize discriminant-property guards (`x.tag === "a"`).
	MemberParts(node NodeID) (object NodeID, property atom.Atom, optional bool)

	// LiteralValueOf decodes a value-position literal expression (string,
	// number, boolean, null, or undefined), distinct from
	// ASTArena.LiteralTypeValue which only handles type-position syntax.
	LiteralValueOf(node NodeID) (LiteralValue, bool)

	// AsConstTarget decodes `expr as const`, returning the wrapped
	// expression and whether this `as` is specifically `as const` (as
	// opposed to `as SomeType`, which TypeOfAsExpr below handles).
	AsConstTarget(node NodeID) (operand NodeID, isConst bool)

	// TypeOfAsExpr returns the target type node of a non-const `as T`
	// assertion.
	TypeOfAsExpr(node NodeID) NodeID

	// CallParts decodes a call expression's callee and argument list, used
	// to recognize user-defined type predicate calls (`x is T`).
	CallParts(node NodeID) (callee NodeID, args []NodeID)

	// ClassHeritageAndStatics returns a class declaration's heritage clause
	// expressions (extends/implements) and its static initializer/static
	// block nodes, both of which execute at class-declaration flow position
	// per spec.md §4.7.
	ClassHeritageAndStatics(node NodeID) (heritage, staticInits []NodeID)

	// IsMutableBinding reports whether the symbol a reference node resolves
	// to was declared var/let (true) or const (false); used by the flow
	// analyzer's literal-widening rule.
	IsMutableBinding(node NodeID) bool

	// DeclarationSite returns the binding identifier node a let/const
	// declaration introduces, for TDZ comparison against a use site's
	// textual/flow position.
	DeclarationSite(node NodeID) NodeID
}
