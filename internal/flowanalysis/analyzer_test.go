package flowanalysis

import (
	"testing"

	"tschecker/internal/atom"
	"tschecker/internal/extcore"
	"tschecker/internal/flowgraph"
	"tschecker/internal/source"
	"tschecker/internal/types"
)

// testNode is a uniform fake-arena node: only the fields relevant to its own
// kind are populated. Mirrors flowgraph's own test double (builder_test.go).
type testNode struct {
	kind extcore.NodeKind

	// BinaryExpr / LogicalExpr
	op          string
	left, right extcore.NodeID

	// UnaryExpr
	unaryOperand extcore.NodeID

	// TypeofExpr
	typeofOperand extcore.NodeID

	// MemberExpr
	memberObject   extcore.NodeID
	memberProperty atom.Atom
	memberOptional bool

	// CallExpr
	callCallee extcore.NodeID
	callArgs   []extcore.NodeID

	// literal value-position node
	literal    extcore.LiteralValue
	hasLiteral bool

	// AsExpr
	asOperand extcore.NodeID
	isConst   bool

	// switch clause
	switchTest    extcore.NodeID
	switchDefault bool

	mutable bool
}

type testArena struct {
	nodes     map[extcore.NodeID]*testNode
	next      extcore.NodeID
	exprTypes map[extcore.NodeID]types.TypeID
}

func newTestArena() *testArena {
	return &testArena{
		nodes:     make(map[extcore.NodeID]*testNode),
		next:      1,
		exprTypes: make(map[extcore.NodeID]types.TypeID),
	}
}

func (a *testArena) add(n *testNode) extcore.NodeID {
	id := a.next
	a.next++
	a.nodes[id] = n
	return id
}

func (a *testArena) n(id extcore.NodeID) *testNode { return a.nodes[id] }

func (a *testArena) setExprType(id extcore.NodeID, ty types.TypeID) { a.exprTypes[id] = ty }

func (a *testArena) exprType(id extcore.NodeID) types.TypeID { return a.exprTypes[id] }

func (a *testArena) ident() extcore.NodeID {
	return a.add(&testNode{kind: extcore.KindIdentifier})
}

func (a *testArena) literalString(atoms *atom.Interner, s string) extcore.NodeID {
	return a.add(&testNode{hasLiteral: true, literal: extcore.LiteralValue{Kind: extcore.LiteralStringKind, Str: atoms.Intern(s)}})
}

func (a *testArena) binary(op string, left, right extcore.NodeID) extcore.NodeID {
	return a.add(&testNode{kind: extcore.KindBinaryExpr, op: op, left: left, right: right})
}

func (a *testArena) logical(op string, left, right extcore.NodeID) extcore.NodeID {
	return a.add(&testNode{kind: extcore.KindLogicalExpr, op: op, left: left, right: right})
}

func (a *testArena) typeofExpr(operand extcore.NodeID) extcore.NodeID {
	return a.add(&testNode{kind: extcore.KindTypeofExpr, typeofOperand: operand})
}

func (a *testArena) instanceofExpr(left, right extcore.NodeID) extcore.NodeID {
	return a.add(&testNode{kind: extcore.KindInstanceofExpr, left: left, right: right})
}

func (a *testArena) inExpr(prop, object extcore.NodeID) extcore.NodeID {
	return a.add(&testNode{kind: extcore.KindInExpr, left: prop, right: object})
}

func (a *testArena) member(object extcore.NodeID, property atom.Atom) extcore.NodeID {
	return a.add(&testNode{kind: extcore.KindMemberExpr, memberObject: object, memberProperty: property})
}

func (a *testArena) call(callee extcore.NodeID, args ...extcore.NodeID) extcore.NodeID {
	return a.add(&testNode{kind: extcore.KindCallExpr, callCallee: callee, callArgs: args})
}

func (a *testArena) asConst(operand extcore.NodeID) extcore.NodeID {
	return a.add(&testNode{kind: extcore.KindAsExpr, asOperand: operand, isConst: true})
}

// --- extcore.ASTArena ---

func (a *testArena) Kind(node extcore.NodeID) extcore.NodeKind { return a.n(node).kind }
func (a *testArena) Span(node extcore.NodeID) source.Span      { return source.Span{} }
func (a *testArena) IdentifierName(node extcore.NodeID) atom.Atom { return 0 }
func (a *testArena) TypeReferenceTarget(node extcore.NodeID) (extcore.NodeID, []extcore.NodeID) {
	return 0, nil
}
func (a *testArena) UnionMembers(node extcore.NodeID) []extcore.NodeID        { return nil }
func (a *testArena) IntersectionMembers(node extcore.NodeID) []extcore.NodeID { return nil }
func (a *testArena) ArrayElement(node extcore.NodeID) extcore.NodeID         { return 0 }
func (a *testArena) TupleElements(node extcore.NodeID) []extcore.TupleElementSyntax {
	return nil
}
func (a *testArena) ObjectMembers(node extcore.NodeID) []extcore.ObjectTypeMember { return nil }
func (a *testArena) FunctionSignature(node extcore.NodeID) ([]extcore.TypeParam, []extcore.Param, extcore.NodeID, extcore.NodeID) {
	return nil, nil, 0, 0
}
func (a *testArena) ConditionalParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.NodeID, extcore.NodeID) {
	return 0, 0, 0, 0
}
func (a *testArena) MappedParts(node extcore.NodeID) (atom.Atom, extcore.NodeID, extcore.NodeID, extcore.NodeID, bool, bool, bool, bool) {
	return 0, 0, 0, 0, false, false, false, false
}
func (a *testArena) IndexedAccessParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID) {
	return 0, 0
}
func (a *testArena) TypeOperatorParts(node extcore.NodeID) (extcore.TypeOperatorKind, extcore.NodeID) {
	return 0, 0
}
func (a *testArena) LiteralTypeValue(node extcore.NodeID) extcore.LiteralValue {
	return extcore.LiteralValue{}
}
func (a *testArena) TemplateLiteralParts(node extcore.NodeID) ([]atom.Atom, []extcore.NodeID) {
	return nil, nil
}
func (a *testArena) InferParamName(node extcore.NodeID) atom.Atom          { return 0 }
func (a *testArena) TypeQueryTarget(node extcore.NodeID) extcore.NodeID    { return 0 }
func (a *testArena) ParenthesizedInner(node extcore.NodeID) extcore.NodeID { return 0 }
func (a *testArena) DeclTypeParams(node extcore.NodeID) []extcore.TypeParam { return nil }
func (a *testArena) InterfaceParts(node extcore.NodeID) ([]extcore.ObjectTypeMember, []extcore.NodeID) {
	return nil, nil
}
func (a *testArena) TypeAliasTarget(node extcore.NodeID) extcore.NodeID { return 0 }
func (a *testArena) Children(node extcore.NodeID) []extcore.NodeID     { return nil }

// --- extcore.FlowArena ---

func (a *testArena) BlockStatements(node extcore.NodeID) []extcore.NodeID { return nil }
func (a *testArena) ExpressionOfStmt(node extcore.NodeID) extcore.NodeID  { return 0 }
func (a *testArena) IfParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.NodeID) {
	return 0, 0, 0
}
func (a *testArena) WhileParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID) { return 0, 0 }
func (a *testArena) DoWhileParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID) {
	return 0, 0
}
func (a *testArena) ForParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.NodeID, extcore.NodeID) {
	return 0, 0, 0, 0
}
func (a *testArena) ForInParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.NodeID) {
	return 0, 0, 0
}
func (a *testArena) ForOfParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.NodeID) {
	return 0, 0, 0
}
func (a *testArena) SwitchParts(node extcore.NodeID) (extcore.NodeID, []extcore.NodeID) {
	return 0, nil
}
func (a *testArena) SwitchClauseParts(node extcore.NodeID) (extcore.NodeID, bool, []extcore.NodeID) {
	n := a.n(node)
	return n.switchTest, n.switchDefault, nil
}
func (a *testArena) TryParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.NodeID) {
	return 0, 0, 0
}
func (a *testArena) CatchParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID) { return 0, 0 }
func (a *testArena) LabeledParts(node extcore.NodeID) (atom.Atom, extcore.NodeID)    { return 0, 0 }
func (a *testArena) ReturnExpr(node extcore.NodeID) extcore.NodeID                  { return 0 }
func (a *testArena) ThrowExpr(node extcore.NodeID) extcore.NodeID                   { return 0 }
func (a *testArena) BreakTarget(node extcore.NodeID) (atom.Atom, bool)              { return 0, false }
func (a *testArena) ContinueTarget(node extcore.NodeID) (atom.Atom, bool)           { return 0, false }
func (a *testArena) VariableDeclParts(node extcore.NodeID) (extcore.BindingKind, []extcore.VariableBinding) {
	return extcore.BindingVar, nil
}
func (a *testArena) AssignmentParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID, extcore.AssignmentOp) {
	return 0, 0, extcore.AssignPlain
}
func (a *testArena) IsArrayMutationCall(node extcore.NodeID) bool       { return false }
func (a *testArena) ArrayMutationTarget(node extcore.NodeID) extcore.NodeID { return 0 }
func (a *testArena) AwaitOperand(node extcore.NodeID) extcore.NodeID    { return 0 }
func (a *testArena) YieldOperand(node extcore.NodeID) (extcore.NodeID, bool) { return 0, false }

func (a *testArena) BinaryParts(node extcore.NodeID) (string, extcore.NodeID, extcore.NodeID) {
	n := a.n(node)
	return n.op, n.left, n.right
}
func (a *testArena) LogicalParts(node extcore.NodeID) (string, extcore.NodeID, extcore.NodeID) {
	n := a.n(node)
	return n.op, n.left, n.right
}
func (a *testArena) UnaryParts(node extcore.NodeID) (string, extcore.NodeID) {
	n := a.n(node)
	return n.op, n.unaryOperand
}
func (a *testArena) TypeofParts(node extcore.NodeID) extcore.NodeID { return a.n(node).typeofOperand }
func (a *testArena) InstanceofParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID) {
	n := a.n(node)
	return n.left, n.right
}
func (a *testArena) InParts(node extcore.NodeID) (extcore.NodeID, extcore.NodeID) {
	n := a.n(node)
	return n.left, n.right
}
func (a *testArena) MemberParts(node extcore.NodeID) (extcore.NodeID, atom.Atom, bool) {
	n := a.n(node)
	return n.memberObject, n.memberProperty, n.memberOptional
}
func (a *testArena) LiteralValueOf(node extcore.NodeID) (extcore.LiteralValue, bool) {
	n := a.n(node)
	return n.literal, n.hasLiteral
}
func (a *testArena) AsConstTarget(node extcore.NodeID) (extcore.NodeID, bool) {
	n := a.n(node)
	return n.asOperand, n.isConst
}
func (a *testArena) TypeOfAsExpr(node extcore.NodeID) extcore.NodeID { return 0 }
func (a *testArena) CallParts(node extcore.NodeID) (extcore.NodeID, []extcore.NodeID) {
	n := a.n(node)
	return n.callCallee, n.callArgs
}
func (a *testArena) ClassHeritageAndStatics(node extcore.NodeID) ([]extcore.NodeID, []extcore.NodeID) {
	return nil, nil
}
func (a *testArena) IsMutableBinding(node extcore.NodeID) bool        { return a.n(node).mutable }
func (a *testArena) DeclarationSite(node extcore.NodeID) extcore.NodeID { return node }

// testSymbols resolves every identifier node to whatever SymbolID was
// registered for it via bind; distinct identifier nodes can share a symbol
// (e.g. a declaration site and its later reference both naming sym 1).
type testSymbols struct {
	byNode map[extcore.NodeID]extcore.SymbolID
}

func newTestSymbols() *testSymbols {
	return &testSymbols{byNode: make(map[extcore.NodeID]extcore.SymbolID)}
}

func (s *testSymbols) bind(node extcore.NodeID, sym extcore.SymbolID) {
	s.byNode[node] = sym
}

func (s *testSymbols) ResolveType(node extcore.NodeID) (types.DefID, bool) { return 0, false }
func (s *testSymbols) ResolveValue(node extcore.NodeID) (extcore.SymbolID, bool) {
	sym, ok := s.byNode[node]
	return sym, ok
}
func (s *testSymbols) DeclaredTypeOf(sym extcore.SymbolID) types.TypeID { return types.Any }
func (s *testSymbols) IsAbstract(def types.DefID) bool                  { return false }
func (s *testSymbols) Visibility(def types.DefID) extcore.MemberVisibility {
	return extcore.VisPublic
}

// stubSubtype is a minimal assignability decider good enough for narrowing
// tests: identity, Never as bottom, Any/Unknown as top, and literal-to-base
// widening. Mirrors infer.stubSubtype's role standing in for
// internal/subtype.Checker.IsSubtype.
func stubSubtype(in *types.Interner) SubtypeFunc {
	return func(source, target types.TypeID) bool {
		if source == target || source == types.Never || target == types.Unknown || target == types.Any {
			return true
		}
		if source == types.True || source == types.False {
			source = types.Boolean
		}
		if key, ok := in.Lookup(source); ok {
			switch key.Kind {
			case types.KindLiteralString:
				if target == types.String {
					return true
				}
			case types.KindLiteralNumber:
				if target == types.Number {
					return true
				}
			case types.KindLiteralBoolean:
				if target == types.Boolean {
					return true
				}
			}
		}
		return false
	}
}

type fixture struct {
	ast   *testArena
	syms  *testSymbols
	in    *types.Interner
	atoms *atom.Interner
	a     *Analyzer
	g     *flowgraph.Graph
}

func newFixture() *fixture {
	ast := newTestArena()
	syms := newTestSymbols()
	in := types.New()
	atoms := atom.New()
	apparent := types.NewApparentTypes(in, atoms)
	g := flowgraph.NewGraph()
	an := New(ast, ast, syms, g, in, atoms, apparent, ast.exprType, stubSubtype(in))
	return &fixture{ast: ast, syms: syms, in: in, atoms: atoms, a: an, g: g}
}

func TestNarrowTypeofGuardNarrowsUnknownToString(t *testing.T) {
	f := newFixture()
	x := f.ast.ident()
	sym := extcore.SymbolID(1)
	f.syms.bind(x, sym)

	guard := f.ast.binary("===", f.ast.typeofExpr(x), f.ast.literalString(f.atoms, "string"))
	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)
	trueCond := f.g.NewNode(flowgraph.FlagTrueCondition, guard, start)

	got := f.a.NarrowedTypeOf(x, types.Unknown, trueCond)
	if got != types.String {
		t.Errorf("narrowed type = %v, want String (%v)", got, types.String)
	}
}

func TestNarrowInstanceofGuardSplitsUnionByBranch(t *testing.T) {
	f := newFixture()
	x := f.ast.ident()
	sym := extcore.SymbolID(1)
	f.syms.bind(x, sym)

	classA := f.in.Lazy(types.DefID(1))
	classB := f.in.Lazy(types.DefID(2))
	declared := f.in.Union([]types.TypeID{classA, classB})

	classRef := f.ast.ident()
	f.ast.setExprType(classRef, classA)
	guard := f.ast.instanceofExpr(x, classRef)

	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)
	trueCond := f.g.NewNode(flowgraph.FlagTrueCondition, guard, start)
	falseCond := f.g.NewNode(flowgraph.FlagFalseCondition, guard, start)

	if got := f.a.NarrowedTypeOf(x, declared, trueCond); got != classA {
		t.Errorf("true branch = %v, want classA (%v)", got, classA)
	}
	if got := f.a.NarrowedTypeOf(x, declared, falseCond); got != classB {
		t.Errorf("false branch = %v, want classB (%v)", got, classB)
	}
}

func TestNarrowDiscriminantPropertyEquality(t *testing.T) {
	f := newFixture()
	x := f.ast.ident()
	sym := extcore.SymbolID(1)
	f.syms.bind(x, sym)

	tag := f.atoms.Intern("tag")
	litA := f.in.LiteralString(f.atoms.Intern("a"))
	litB := f.in.LiteralString(f.atoms.Intern("b"))
	objA := f.in.Object([]types.PropertyInfo{{Name: tag, ReadType: litA}})
	objB := f.in.Object([]types.PropertyInfo{{Name: tag, ReadType: litB}})
	declared := f.in.Union([]types.TypeID{objA, objB})

	litNode := f.ast.literalString(f.atoms, "a")
	f.ast.setExprType(litNode, litA)
	guard := f.ast.binary("===", f.ast.member(x, tag), litNode)

	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)
	trueCond := f.g.NewNode(flowgraph.FlagTrueCondition, guard, start)

	if got := f.a.NarrowedTypeOf(x, declared, trueCond); got != objA {
		t.Errorf("narrowed type = %v, want objA (%v)", got, objA)
	}
}

func TestNarrowLogicalAndAppliesBothOperandsInOrder(t *testing.T) {
	f := newFixture()
	x := f.ast.ident()
	sym := extcore.SymbolID(1)
	f.syms.bind(x, sym)

	typeofGuard := f.ast.binary("===", f.ast.typeofExpr(x), f.ast.literalString(f.atoms, "string"))
	// An operand this analyzer doesn't know how to narrow by (op ">" isn't
	// one of the recognized equality operators): applyBinary's default case
	// returns base unchanged, so the combination narrows exactly as far as
	// the typeof guard alone does.
	irrelevant := f.ast.binary(">", f.ast.ident(), f.ast.ident())
	guard := f.ast.logical("&&", typeofGuard, irrelevant)

	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)
	trueCond := f.g.NewNode(flowgraph.FlagTrueCondition, guard, start)

	if got := f.a.NarrowedTypeOf(x, types.Unknown, trueCond); got != types.String {
		t.Errorf("narrowed type = %v, want String (%v)", got, types.String)
	}
}

func TestFilterByTruthinessDropsOnlyDecidableMembers(t *testing.T) {
	f := newFixture()
	x := f.ast.ident()
	sym := extcore.SymbolID(1)
	f.syms.bind(x, sym)

	declared := f.in.Union([]types.TypeID{types.String, types.Null, types.True})
	guard := x // bare reference guard: `if (x)`

	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)
	trueCond := f.g.NewNode(flowgraph.FlagTrueCondition, guard, start)
	falseCond := f.g.NewNode(flowgraph.FlagFalseCondition, guard, start)

	wantTrue := f.in.Union([]types.TypeID{types.String, types.True})
	if got := f.a.NarrowedTypeOf(x, declared, trueCond); got != wantTrue {
		t.Errorf("true branch = %v, want %v (string | true, null dropped)", got, wantTrue)
	}
	wantFalse := f.in.Union([]types.TypeID{types.String, types.Null})
	if got := f.a.NarrowedTypeOf(x, declared, falseCond); got != wantFalse {
		t.Errorf("false branch = %v, want %v (string | null, true dropped)", got, wantFalse)
	}
}

func TestNarrowUserDefinedTypePredicate(t *testing.T) {
	f := newFixture()
	x := f.ast.ident()
	sym := extcore.SymbolID(1)
	f.syms.bind(x, sym)

	paramName := f.atoms.Intern("value")
	shape := types.FunctionShape{
		Params: []types.ParamInfo{{Name: paramName}},
		Predicate: types.TypePredicateInfo{
			Kind:         types.TypePredicate,
			ParamName:    paramName,
			AssertedType: types.String,
		},
	}
	fnType := f.in.Function(shape)
	callee := f.ast.ident()
	f.ast.setExprType(callee, fnType)
	guard := f.ast.call(callee, x)

	declared := f.in.Union([]types.TypeID{types.String, types.Number})
	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)
	trueCond := f.g.NewNode(flowgraph.FlagTrueCondition, guard, start)
	falseCond := f.g.NewNode(flowgraph.FlagFalseCondition, guard, start)

	if got := f.a.NarrowedTypeOf(x, declared, trueCond); got != types.String {
		t.Errorf("true branch = %v, want String (%v)", got, types.String)
	}
	if got := f.a.NarrowedTypeOf(x, declared, falseCond); got != types.Number {
		t.Errorf("false branch = %v, want Number (%v)", got, types.Number)
	}
}

func TestNarrowAssertsPredicateOnlyConstrainsTruePath(t *testing.T) {
	f := newFixture()
	x := f.ast.ident()
	sym := extcore.SymbolID(1)
	f.syms.bind(x, sym)

	paramName := f.atoms.Intern("value")
	shape := types.FunctionShape{
		Params: []types.ParamInfo{{Name: paramName}},
		Predicate: types.TypePredicateInfo{
			Kind:         types.AssertsPredicate,
			ParamName:    paramName,
			AssertedType: types.String,
		},
	}
	fnType := f.in.Function(shape)
	callee := f.ast.ident()
	f.ast.setExprType(callee, fnType)
	guard := f.ast.call(callee, x)

	declared := f.in.Union([]types.TypeID{types.String, types.Number})
	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)
	trueCond := f.g.NewNode(flowgraph.FlagTrueCondition, guard, start)
	falseCond := f.g.NewNode(flowgraph.FlagFalseCondition, guard, start)

	if got := f.a.NarrowedTypeOf(x, declared, trueCond); got != types.String {
		t.Errorf("true branch = %v, want String (%v)", got, types.String)
	}
	if got := f.a.NarrowedTypeOf(x, declared, falseCond); got != declared {
		t.Errorf("false branch of an asserts-predicate call must stay unnarrowed, got %v want %v", got, declared)
	}
}

func TestWidenForAssignmentWidensLiteralOnMutableBinding(t *testing.T) {
	f := newFixture()
	target := f.ast.ident()
	f.ast.n(target).mutable = true
	sym := extcore.SymbolID(1)
	f.syms.bind(target, sym)

	value := f.ast.ident() // any non-AsExpr node stands in for the rhs expression
	litFoo := f.in.LiteralString(f.atoms.Intern("foo"))
	f.ast.setExprType(value, litFoo)

	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)
	assign := f.g.NewAssignmentNode(target, value, start)

	if got := f.a.NarrowedTypeOf(target, types.Any, assign); got != types.String {
		t.Errorf("narrowed type = %v, want String (widened from literal %v)", got, litFoo)
	}
}

func TestWidenForAssignmentKeepsLiteralOnConstBinding(t *testing.T) {
	f := newFixture()
	target := f.ast.ident()
	sym := extcore.SymbolID(1)
	f.syms.bind(target, sym)
	// f.ast.n(target).mutable left false: a const binding.

	value := f.ast.ident()
	litFoo := f.in.LiteralString(f.atoms.Intern("foo"))
	f.ast.setExprType(value, litFoo)

	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)
	assign := f.g.NewAssignmentNode(target, value, start)

	if got := f.a.NarrowedTypeOf(target, types.Any, assign); got != litFoo {
		t.Errorf("narrowed type = %v, want unwidened literal %v (const binding)", got, litFoo)
	}
}

func TestWidenForAssignmentKeepsLiteralUnderAsConstEvenOnMutableBinding(t *testing.T) {
	f := newFixture()
	target := f.ast.ident()
	f.ast.n(target).mutable = true
	sym := extcore.SymbolID(1)
	f.syms.bind(target, sym)

	inner := f.ast.ident()
	value := f.ast.asConst(inner)
	litFoo := f.in.LiteralString(f.atoms.Intern("foo"))
	f.ast.setExprType(value, litFoo)

	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)
	assign := f.g.NewAssignmentNode(target, value, start)

	if got := f.a.NarrowedTypeOf(target, types.Any, assign); got != litFoo {
		t.Errorf("narrowed type = %v, want unwidened literal %v (`as const` overrides mutability)", got, litFoo)
	}
}

func TestNarrowBranchLabelUnionsBothArmsAfterAssignment(t *testing.T) {
	f := newFixture()
	target := f.ast.ident()
	f.ast.n(target).mutable = true
	sym := extcore.SymbolID(1)
	f.syms.bind(target, sym)

	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)

	thenValue := f.ast.ident()
	litFoo := f.in.LiteralString(f.atoms.Intern("foo"))
	f.ast.setExprType(thenValue, litFoo)
	thenAssign := f.g.NewAssignmentNode(target, thenValue, start)

	elseValue := f.ast.ident()
	litBar := f.in.LiteralNumber(1)
	f.ast.setExprType(elseValue, litBar)
	elseAssign := f.g.NewAssignmentNode(target, elseValue, start)

	merge := f.g.NewNode(flowgraph.FlagBranchLabel, extcore.NoNodeID, thenAssign, elseAssign)

	want := f.in.Union([]types.TypeID{types.String, types.Number})
	if got := f.a.NarrowedTypeOf(target, types.Any, merge); got != want {
		t.Errorf("merged type = %v, want %v (string | number, both widened)", got, want)
	}
}

func TestIsDefinitelyAssignedRequiresEveryPath(t *testing.T) {
	f := newFixture()
	target := f.ast.ident()
	sym := extcore.SymbolID(1)
	f.syms.bind(target, sym)

	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)
	value := f.ast.ident()
	assigned := f.g.NewAssignmentNode(target, value, start)
	unassigned := f.g.NewNode(0, extcore.NoNodeID, start)

	partialMerge := f.g.NewNode(flowgraph.FlagBranchLabel, extcore.NoNodeID, assigned, unassigned)
	if f.a.IsDefinitelyAssigned(sym, partialMerge) {
		t.Errorf("IsDefinitelyAssigned should be false when only one of two branches assigns")
	}
	if !f.a.AnyPathAssigns(sym, partialMerge) {
		t.Errorf("AnyPathAssigns should be true when at least one branch assigns")
	}

	fullMerge := f.g.NewNode(flowgraph.FlagBranchLabel, extcore.NoNodeID, assigned, assigned)
	if !f.a.IsDefinitelyAssigned(sym, fullMerge) {
		t.Errorf("IsDefinitelyAssigned should be true when every branch assigns")
	}
}

func TestLoopBackEdgeFallsBackConservativelyToNotAssigned(t *testing.T) {
	f := newFixture()
	target := f.ast.ident()
	sym := extcore.SymbolID(1)
	f.syms.bind(target, sym)

	start := f.g.NewNode(flowgraph.FlagStart, extcore.NoNodeID)
	loop := f.g.NewNode(flowgraph.FlagLoopLabel, extcore.NoNodeID, start)
	f.g.AddAntecedent(loop, loop)

	if f.a.IsDefinitelyAssigned(sym, loop) {
		t.Errorf("a loop with no assignment along any straight-line path should not be definitely assigned")
	}
	if f.a.AnyPathAssigns(sym, loop) {
		t.Errorf("a loop with no assignment along any straight-line path should not report a possible assignment")
	}
}
