package checker

import (
	"fmt"

	"tschecker/internal/diag"
	"tschecker/internal/extcore"
	"tschecker/internal/typeprint"
	"tschecker/internal/types"
)

// statementKinds are the node kinds check_source_file's unreachability
// check reports against — every other kind shares its enclosing
// statement's flow position, so checking it too would just repeat the same
// diagnostic once per expression inside a dead statement.
var statementKinds = map[extcore.NodeKind]bool{
	extcore.KindExpressionStmt: true,
	extcore.KindReturnStmt:     true,
	extcore.KindThrowStmt:      true,
	extcore.KindBreakStmt:      true,
	extcore.KindContinueStmt:   true,
	extcore.KindVariableDecl:   true,
	extcore.KindIfStmt:         true,
	extcore.KindWhileStmt:      true,
	extcore.KindDoWhileStmt:    true,
	extcore.KindForStmt:        true,
	extcore.KindForInStmt:      true,
	extcore.KindForOfStmt:      true,
	extcore.KindSwitchStmt:     true,
	extcore.KindTryStmt:        true,
	extcore.KindLabeledStmt:    true,
}

// CheckSourceFile runs every assignability, definite-assignment, and
// unreachability check spec.md §6/§7 names over root's subtree: a single
// pass building one flow graph for the whole file (a top-level program
// body is itself a valid flowgraph.Builder.BuildFunctionBody input — a
// program has the same statement-sequencing semantics as a function body,
// just never async/generator) and walking every node through AST.Children,
// checking variable-declaration initializers and assignment expressions
// for assignability, and every reference for definite assignment, exactly
// the way internal/sema.Check drives one typeChecker over a file's whole
// AST in one pass. Diagnostics are reported into the Session's Bag; this
// method does not itself return them.
func (s *Session) CheckSourceFile(root extcore.NodeID) {
	fc := s.NewFunctionChecker(root, false, false)
	visited := make(map[extcore.NodeID]bool)
	s.checkNode(fc, root, visited)
}

func (s *Session) checkNode(fc *FunctionChecker, node extcore.NodeID, visited map[extcore.NodeID]bool) {
	if !node.IsValid() || visited[node] {
		return
	}
	visited[node] = true

	kind := s.AST.Kind(node)
	if statementKinds[kind] && fc.IsUnreachable(node) {
		s.report(diag.Unreachable, node, "statement is unreachable under every control-flow path")
	}

	switch kind {
	case extcore.KindVariableDecl:
		_, bindings := s.Flow.VariableDeclParts(node)
		for _, b := range bindings {
			if b.TypeNode.IsValid() && b.Initializer.IsValid() {
				s.checkAssignabilityAt(b.Initializer, s.TypeOf(b.Initializer), s.LowerType(b.TypeNode))
			}
		}
	case extcore.KindAssignmentExpr:
		target, value, _ := s.Flow.AssignmentParts(node)
		s.checkAssignabilityAt(value, s.TypeOf(value), s.TypeOf(target))
	case extcore.KindIdentifier:
		if node != s.Flow.DeclarationSite(node) {
			if !fc.IsDefinitelyAssigned(node) {
				s.report(diag.DefiniteAssignment, node, "variable used before it is definitely assigned")
			}
		}
	}

	for _, child := range s.AST.Children(node) {
		s.checkNode(fc, child, visited)
	}
}

// checkAssignabilityAt reports a TypeMismatch (or the FailureReason's own
// more specific code) if source is not assignable to target.
func (s *Session) checkAssignabilityAt(at extcore.NodeID, source, target types.TypeID) {
	ok, reason := s.CheckAssignability(source, target)
	if ok {
		return
	}
	code := diag.TypeMismatch
	if reason != nil {
		code = reason.Code
	}
	printer := typeprint.New(s.Interner, s.Atoms, nil)
	msg := fmt.Sprintf("type '%s' is not assignable to type '%s'", printer.Print(source), printer.Print(target))
	if reason != nil && reason.Property != 0 {
		msg = fmt.Sprintf("%s (property '%s')", msg, s.Atoms.Resolve(reason.Property))
	}

	if reason != nil && reason.Property != 0 {
		if fixTitle, newText, ok := propertyFixFor(code); ok {
			name := s.Atoms.Resolve(reason.Property)
			span := s.AST.Span(at)
			edit := diag.FixEdit{Span: span, NewText: fmt.Sprintf(newText, name)}
			s.reportWithFix(code, at, msg, fmt.Sprintf(fixTitle, name), edit)
			return
		}
	}
	s.report(code, at, msg)
}

// propertyFixFor returns the quick-fix title/edit templates (each taking
// one %s for the property name) for the property-shaped assignability
// failures internal/fix knows how to act on, or ok=false for every other
// code, which stays fix-less.
func propertyFixFor(code diag.Code) (fixTitle, newText string, ok bool) {
	switch code {
	case diag.MissingProperty:
		return "Add stub property '%s'", "%s: any;\n", true
	case diag.OptionalPropertyRequired:
		return "Mark property '%s' as optional", "%s?", true
	default:
		return "", "", false
	}
}
