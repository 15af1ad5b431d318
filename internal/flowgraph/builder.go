package flowgraph

import (
	"tschecker/internal/atom"
	"tschecker/internal/extcore"
)

// contextKind distinguishes the flow contexts a break/continue/return/throw
// can unwind through. Mirrors flow_graph_builder.rs's FlowContextType
// (Loop, Switch, Try, AsyncFunction); AsyncFunction is tracked separately
// here via Builder.asyncDepth/generatorDepth rather than a stack frame,
// since nothing else about it is stack-scoped.
type contextKind uint8

const (
	ctxLoop contextKind = iota
	ctxSwitch
	ctxTry
	ctxLabeled
)

// flowContext is one entry of the builder's context stack, tracking where
// break/continue/return/throw jump to and which finally blocks they must
// run through on the way.
type flowContext struct {
	kind           contextKind
	label          atom.Atom
	hasLabel       bool
	breakTarget    NodeID // BRANCH_LABEL merging every break/fallthrough-exit
	continueTarget NodeID // LOOP_LABEL receiving the back edge; ctxLoop only
	finallyBlock   extcore.NodeID
}

// Builder walks a post-binding AST and produces a Graph. Mirrors
// flow_graph_builder.rs's FlowGraphBuilder/FlowContext structure; the
// underlying FlowNode/flag representation it builds into is grounded on
// spec.md §3.4 instead (see package doc).
type Builder struct {
	ast  extcore.ASTArena
	flow extcore.FlowArena
	g    *Graph

	current  NodeID
	contexts []flowContext

	asyncDepth     int
	generatorDepth int
}

// NewBuilder creates a builder over the given AST views.
func NewBuilder(ast extcore.ASTArena, flow extcore.FlowArena) *Builder {
	return &Builder{ast: ast, flow: flow, g: NewGraph()}
}

// BuildFunctionBody builds a flow graph for a function/method body (or any
// top-level statement list), returning the graph. The body's first
// statement is recorded against a freshly allocated START node.
func (b *Builder) BuildFunctionBody(body extcore.NodeID, isAsync, isGenerator bool) *Graph {
	if isAsync {
		b.asyncDepth++
		defer func() { b.asyncDepth-- }()
	}
	if isGenerator {
		b.generatorDepth++
		defer func() { b.generatorDepth-- }()
	}
	start := b.g.NewNode(FlagStart, extcore.NoNodeID)
	b.current = start
	b.buildStatement(body, atom.NONE, false)
	return b.g
}

// Graph returns the graph built so far.
func (b *Builder) Graph() *Graph { return b.g }

func (b *Builder) recordFlow(node extcore.NodeID) {
	if node.IsValid() {
		b.g.RecordFlowAt(node, b.current)
	}
}

// buildStatement dispatches on node's kind, threading a pending label (from
// an immediately enclosing LabeledStatement) into loop/switch construction.
func (b *Builder) buildStatement(node extcore.NodeID, label atom.Atom, hasLabel bool) {
	if !node.IsValid() {
		return
	}
	b.recordFlow(node)
	switch b.ast.Kind(node) {
	case extcore.KindBlockStmt:
		b.buildBlock(node)
	case extcore.KindIfStmt:
		b.buildIf(node)
	case extcore.KindWhileStmt:
		b.buildWhile(node, label, hasLabel)
	case extcore.KindDoWhileStmt:
		b.buildDoWhile(node, label, hasLabel)
	case extcore.KindForStmt:
		b.buildFor(node, label, hasLabel)
	case extcore.KindForInStmt:
		b.buildForIn(node, label, hasLabel)
	case extcore.KindForOfStmt:
		b.buildForOf(node, label, hasLabel)
	case extcore.KindSwitchStmt:
		b.buildSwitch(node, label, hasLabel)
	case extcore.KindTryStmt:
		b.buildTry(node)
	case extcore.KindLabeledStmt:
		b.buildLabeled(node)
	case extcore.KindReturnStmt:
		b.buildReturn(node)
	case extcore.KindThrowStmt:
		b.buildThrow(node)
	case extcore.KindBreakStmt:
		b.buildBreak(node)
	case extcore.KindContinueStmt:
		b.buildContinue(node)
	case extcore.KindVariableDecl:
		b.buildVariableDecl(node)
	case extcore.KindExpressionStmt:
		b.buildExpressionStatement(b.flow.ExpressionOfStmt(node))
	case extcore.KindClassDecl:
		b.buildClassDecl(node)
	default:
		// Declarations and statement forms with no control-flow effect
		// (interface/type-alias/enum/function declarations) leave current
		// flow untouched.
	}
}

func (b *Builder) buildBlock(node extcore.NodeID) {
	for _, stmt := range b.flow.BlockStatements(node) {
		b.buildStatement(stmt, 0, false)
	}
}

// buildIf mirrors spec.md §4.7's If rule.
func (b *Builder) buildIf(node extcore.NodeID) {
	cond, then, elseBranch := b.flow.IfParts(node)
	preCond := b.current
	trueCond := b.g.NewNode(FlagTrueCondition, cond, preCond)
	falseCond := b.g.NewNode(FlagFalseCondition, cond, preCond)

	b.current = trueCond
	b.buildStatement(then, 0, false)
	postThen := b.current

	var postElse NodeID
	if elseBranch.IsValid() {
		b.current = falseCond
		b.buildStatement(elseBranch, 0, false)
		postElse = b.current
	} else {
		postElse = falseCond
	}

	b.current = b.g.NewNode(FlagBranchLabel, extcore.NoNodeID, postThen, postElse)
}

// buildPreTestLoop implements the while/for/for-in/for-of shape: test,
// then body, back edge to the label. cond is NoNodeID for a for(;;) with no
// test clause.
func (b *Builder) buildPreTestLoop(cond, body extcore.NodeID, label atom.Atom, hasLabel bool) {
	preLoop := b.current
	loopLabel := b.g.NewNode(FlagLoopLabel, cond, preLoop)
	trueCond := b.g.NewNode(FlagTrueCondition, cond, loopLabel)
	falseCond := b.g.NewNode(FlagFalseCondition, cond, loopLabel)
	exit := b.g.NewNode(FlagBranchLabel, extcore.NoNodeID, falseCond)

	b.contexts = append(b.contexts, flowContext{
		kind: ctxLoop, label: label, hasLabel: hasLabel,
		breakTarget: exit, continueTarget: loopLabel,
	})

	b.current = trueCond
	b.buildStatement(body, 0, false)
	b.g.AddAntecedent(loopLabel, b.current)

	b.contexts = b.contexts[:len(b.contexts)-1]
	b.current = exit
}

func (b *Builder) buildWhile(node extcore.NodeID, label atom.Atom, hasLabel bool) {
	cond, body := b.flow.WhileParts(node)
	b.buildPreTestLoop(cond, body, label, hasLabel)
}

func (b *Builder) buildFor(node extcore.NodeID, label atom.Atom, hasLabel bool) {
	init, cond, update, body := b.flow.ForParts(node)
	if init.IsValid() {
		b.buildStatement(init, 0, false)
	}
	preLoop := b.current
	loopLabel := b.g.NewNode(FlagLoopLabel, cond, preLoop)
	trueCond := b.g.NewNode(FlagTrueCondition, cond, loopLabel)
	falseCond := b.g.NewNode(FlagFalseCondition, cond, loopLabel)
	exit := b.g.NewNode(FlagBranchLabel, extcore.NoNodeID, falseCond)

	b.contexts = append(b.contexts, flowContext{
		kind: ctxLoop, label: label, hasLabel: hasLabel,
		breakTarget: exit, continueTarget: loopLabel,
	})

	b.current = trueCond
	b.buildStatement(body, 0, false)
	if update.IsValid() {
		b.buildExpressionStatement(update)
	}
	b.g.AddAntecedent(loopLabel, b.current)

	b.contexts = b.contexts[:len(b.contexts)-1]
	b.current = exit
}

func (b *Builder) buildForIn(node extcore.NodeID, label atom.Atom, hasLabel bool) {
	decl, expr, body := b.flow.ForInParts(node)
	b.buildLoopBinding(decl, expr, body, label, hasLabel)
}

func (b *Builder) buildForOf(node extcore.NodeID, label atom.Atom, hasLabel bool) {
	decl, expr, body := b.flow.ForOfParts(node)
	b.buildLoopBinding(decl, expr, body, label, hasLabel)
}

// buildLoopBinding handles for-in/for-of: the iterated expr stands in for a
// boolean condition (there is no explicit test to narrow on), and each
// iteration implicitly assigns decl's bound name before the body runs.
func (b *Builder) buildLoopBinding(decl, expr, body extcore.NodeID, label atom.Atom, hasLabel bool) {
	preLoop := b.current
	loopLabel := b.g.NewNode(FlagLoopLabel, expr, preLoop)
	trueCond := b.g.NewNode(FlagTrueCondition, expr, loopLabel)
	falseCond := b.g.NewNode(FlagFalseCondition, expr, loopLabel)
	exit := b.g.NewNode(FlagBranchLabel, extcore.NoNodeID, falseCond)

	b.contexts = append(b.contexts, flowContext{
		kind: ctxLoop, label: label, hasLabel: hasLabel,
		breakTarget: exit, continueTarget: loopLabel,
	})

	b.current = trueCond
	if decl.IsValid() {
		b.buildStatement(decl, 0, false)
	}
	b.buildStatement(body, 0, false)
	b.g.AddAntecedent(loopLabel, b.current)

	b.contexts = b.contexts[:len(b.contexts)-1]
	b.current = exit
}

func (b *Builder) buildDoWhile(node extcore.NodeID, label atom.Atom, hasLabel bool) {
	body, cond := b.flow.DoWhileParts(node)
	preLoop := b.current
	loopLabel := b.g.NewNode(FlagLoopLabel, cond, preLoop)
	exit := b.g.NewNode(FlagBranchLabel, extcore.NoNodeID)

	b.contexts = append(b.contexts, flowContext{
		kind: ctxLoop, label: label, hasLabel: hasLabel,
		breakTarget: exit, continueTarget: loopLabel,
	})

	b.current = loopLabel
	b.buildStatement(body, 0, false)
	postBody := b.current
	trueCond := b.g.NewNode(FlagTrueCondition, cond, postBody)
	falseCond := b.g.NewNode(FlagFalseCondition, cond, postBody)
	b.g.AddAntecedent(loopLabel, trueCond)
	b.g.AddAntecedent(exit, falseCond)

	b.contexts = b.contexts[:len(b.contexts)-1]
	b.current = exit
}

// buildSwitch mirrors spec.md §4.7's Switch rule.
func (b *Builder) buildSwitch(node extcore.NodeID, label atom.Atom, hasLabel bool) {
	_, clauses := b.flow.SwitchParts(node)
	preSwitch := b.current
	exit := b.g.NewNode(FlagBranchLabel, extcore.NoNodeID)

	b.contexts = append(b.contexts, flowContext{
		kind: ctxSwitch, label: label, hasLabel: hasLabel, breakTarget: exit,
	})

	var prev NodeID
	hasPrev := false
	hasDefault := false
	for _, clause := range clauses {
		_, isDefault, body := b.flow.SwitchClauseParts(clause)
		antecedents := []NodeID{preSwitch}
		if hasPrev {
			antecedents = append(antecedents, prev)
		}
		clauseNode := b.g.NewNode(FlagSwitchClause, clause, antecedents...)
		b.current = clauseNode
		for _, stmt := range body {
			b.buildStatement(stmt, 0, false)
		}
		prev = b.current
		hasPrev = true
		if isDefault {
			hasDefault = true
			b.g.AddAntecedent(exit, b.current)
		}
	}
	if hasPrev {
		b.g.AddAntecedent(exit, prev)
	}
	if !hasDefault {
		b.g.AddAntecedent(exit, preSwitch)
	}

	b.contexts = b.contexts[:len(b.contexts)-1]
	b.current = exit
}

// buildTry mirrors spec.md §4.7's Try/catch/finally rule. See DESIGN.md for
// the documented simplification around repeated finally-block walks at
// each early-exit site, versus the teacher source's memoized
// pre/post-finally pair reused by every exit path.
func (b *Builder) buildTry(node extcore.NodeID) {
	tryBlock, catchClause, finallyBlock := b.flow.TryParts(node)
	preTry := b.current

	b.contexts = append(b.contexts, flowContext{kind: ctxTry, finallyBlock: finallyBlock})
	b.current = preTry
	b.buildStatement(tryBlock, 0, false)
	postTry := b.current

	var postCatch NodeID
	haveCatch := catchClause.IsValid()
	if haveCatch {
		b.current = preTry
		param, catchBody := b.flow.CatchParts(catchClause)
		if param.IsValid() {
			b.recordFlow(param)
		}
		b.buildStatement(catchBody, 0, false)
		postCatch = b.current
	}
	b.contexts = b.contexts[:len(b.contexts)-1]

	preFinallyAntecedents := []NodeID{postTry}
	if haveCatch {
		preFinallyAntecedents = append(preFinallyAntecedents, postCatch)
	}
	preFinally := b.g.NewNode(FlagBranchLabel, extcore.NoNodeID, preFinallyAntecedents...)

	b.current = preFinally
	if finallyBlock.IsValid() {
		b.buildStatement(finallyBlock, 0, false)
	}
}

func (b *Builder) buildLabeled(node extcore.NodeID) {
	label, body := b.flow.LabeledParts(node)
	b.recordFlow(body)
	switch b.ast.Kind(body) {
	case extcore.KindWhileStmt:
		b.buildWhile(body, label, true)
	case extcore.KindDoWhileStmt:
		b.buildDoWhile(body, label, true)
	case extcore.KindForStmt:
		b.buildFor(body, label, true)
	case extcore.KindForInStmt:
		b.buildForIn(body, label, true)
	case extcore.KindForOfStmt:
		b.buildForOf(body, label, true)
	case extcore.KindSwitchStmt:
		b.buildSwitch(body, label, true)
	default:
		target := b.g.NewNode(FlagBranchLabel, extcore.NoNodeID)
		b.contexts = append(b.contexts, flowContext{kind: ctxLabeled, label: label, hasLabel: true, breakTarget: target})
		b.buildStatement(body, 0, false)
		b.contexts = b.contexts[:len(b.contexts)-1]
		b.g.AddAntecedent(target, b.current)
		b.current = target
	}
}

// runFinallyChain walks every enclosing try context's finally block, from
// innermost to outermost, updating current flow through each. Used by
// return/throw (which unwind the whole stack) and, bounded to stopAt, by
// break/continue (which only unwind as far as their target context).
func (b *Builder) runFinallyChain(stopAt int) {
	for i := len(b.contexts) - 1; i > stopAt; i-- {
		c := b.contexts[i]
		if c.kind == ctxTry && c.finallyBlock.IsValid() {
			b.buildStatement(c.finallyBlock, 0, false)
		}
	}
}

func (b *Builder) buildReturn(node extcore.NodeID) {
	expr := b.flow.ReturnExpr(node)
	if expr.IsValid() {
		b.recordFlow(expr)
	}
	b.runFinallyChain(-1)
	b.current = b.g.Unreachable()
}

func (b *Builder) buildThrow(node extcore.NodeID) {
	expr := b.flow.ThrowExpr(node)
	b.recordFlow(expr)
	b.runFinallyChain(-1)
	b.current = b.g.Unreachable()
}

func (b *Builder) findBreakTarget(label atom.Atom, hasLabel bool) (int, bool) {
	for i := len(b.contexts) - 1; i >= 0; i-- {
		c := b.contexts[i]
		if hasLabel {
			if c.hasLabel && c.label == label {
				return i, true
			}
			continue
		}
		if c.kind == ctxLoop || c.kind == ctxSwitch {
			return i, true
		}
	}
	return 0, false
}

func (b *Builder) findContinueTarget(label atom.Atom, hasLabel bool) (int, bool) {
	for i := len(b.contexts) - 1; i >= 0; i-- {
		c := b.contexts[i]
		if c.kind != ctxLoop {
			continue
		}
		if !hasLabel || c.hasLabel && c.label == label {
			return i, true
		}
	}
	return 0, false
}

func (b *Builder) buildBreak(node extcore.NodeID) {
	label, hasLabel := b.flow.BreakTarget(node)
	idx, ok := b.findBreakTarget(label, hasLabel)
	if !ok {
		b.current = b.g.Unreachable()
		return
	}
	b.runFinallyChain(idx)
	b.g.AddAntecedent(b.contexts[idx].breakTarget, b.current)
	b.current = b.g.Unreachable()
}

func (b *Builder) buildContinue(node extcore.NodeID) {
	label, hasLabel := b.flow.ContinueTarget(node)
	idx, ok := b.findContinueTarget(label, hasLabel)
	if !ok {
		b.current = b.g.Unreachable()
		return
	}
	b.runFinallyChain(idx)
	b.g.AddAntecedent(b.contexts[idx].continueTarget, b.current)
	b.current = b.g.Unreachable()
}

func (b *Builder) buildVariableDecl(node extcore.NodeID) {
	_, bindings := b.flow.VariableDeclParts(node)
	for _, decl := range bindings {
		if decl.Initializer.IsValid() {
			b.recordFlow(decl.Initializer)
			b.current = b.g.NewAssignmentNode(decl.NameNode, decl.Initializer, b.current)
		}
	}
}

func (b *Builder) buildExpressionStatement(expr extcore.NodeID) {
	if !expr.IsValid() {
		return
	}
	switch b.ast.Kind(expr) {
	case extcore.KindAssignmentExpr:
		target, value, _ := b.flow.AssignmentParts(expr)
		b.recordFlow(value)
		b.current = b.g.NewAssignmentNode(target, value, b.current)
	case extcore.KindCallExpr:
		if b.flow.IsArrayMutationCall(expr) {
			target := b.flow.ArrayMutationTarget(expr)
			b.current = b.g.NewNode(FlagArrayMutation, target, b.current)
		}
		b.buildSuspensionPoints(expr)
	case extcore.KindAwaitExpr:
		operand := b.flow.AwaitOperand(expr)
		b.buildExpressionStatement(operand)
		b.current = b.g.NewNode(FlagAwaitPoint, expr, b.current)
	case extcore.KindYieldExpr:
		operand, _ := b.flow.YieldOperand(expr)
		if operand.IsValid() {
			b.buildExpressionStatement(operand)
		}
		b.current = b.g.NewNode(FlagYieldPoint, expr, b.current)
	case extcore.KindLogicalExpr:
		_, left, right := b.flow.LogicalParts(expr)
		b.buildExpressionStatement(left)
		b.buildExpressionStatement(right)
	case extcore.KindConditionalExpr:
		// Ternary short-circuiting isn't one of spec.md §4.7's enumerated
		// statement forms; its operands are still walked for nested
		// assignments/suspension points, but no TRUE_CONDITION/
		// FALSE_CONDITION pair is introduced for it.
		for _, child := range b.ast.Children(expr) {
			b.buildExpressionStatement(child)
		}
	default:
		b.buildSuspensionPoints(expr)
	}
}

// buildSuspensionPoints walks expr's children looking for nested
// await/yield/assignment/array-mutation forms without introducing control
// flow of its own, mirroring handle_expression_for_suspension_points /
// handle_expression_for_assignments.
func (b *Builder) buildSuspensionPoints(expr extcore.NodeID) {
	if !expr.IsValid() {
		return
	}
	for _, child := range b.ast.Children(expr) {
		switch b.ast.Kind(child) {
		case extcore.KindAwaitExpr, extcore.KindYieldExpr, extcore.KindAssignmentExpr, extcore.KindCallExpr:
			b.buildExpressionStatement(child)
		default:
			b.buildSuspensionPoints(child)
		}
	}
}

func (b *Builder) buildClassDecl(node extcore.NodeID) {
	heritage, staticInits := b.flow.ClassHeritageAndStatics(node)
	for _, h := range heritage {
		b.recordFlow(h)
		b.buildExpressionStatement(h)
	}
	for _, s := range staticInits {
		b.buildStatement(s, 0, false)
	}
}
