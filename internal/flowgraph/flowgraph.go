// Package flowgraph builds and stores the per-function control flow graph
// the narrowing analysis in internal/flowanalysis walks backward over.
//
// Grounded on spec.md §3.4 (the FlowNode/FlowGraph data model) since the
// Rust binder module that actually defines FlowNode/FlowNodeArena/flow_flags
// (crate::binder, imported by original_source/src/checker/flow_graph_builder.rs)
// was never retrieved into this pack; the builder's own traversal shape
// (FlowGraphBuilder, FlowContext, FlowContextType, the statement-kind
// dispatch method list) is grounded on flow_graph_builder.rs directly.
package flowgraph

import "tschecker/internal/extcore"

// NodeID is a flow node handle into a FlowGraph's arena. Zero names the
// graph's single well-known UNREACHABLE node (spec.md §3.4: "a single
// well-known UNREACHABLE node exists per graph"), so every graph's arena is
// seeded with it at index 0 and NodeID itself never needs a separate
// "invalid" sentinel the way extcore.NodeID does.
type NodeID uint32

// Flags tags a FlowNode's kind(s); spec.md §3.4 lists these as a flag set
// rather than a closed enum because a node can be simultaneously e.g. an
// ASSIGNMENT and the loop-back edge of a LOOP_LABEL's antecedent list (the
// antecedent is itself just another node, not a combined flag), but within
// this arena a single node is always exactly one of these in practice; kept
// as bit flags to mirror the teacher-independent source's own flow_flags
// naming instead of inventing a different representation.
type Flags uint16

const (
	FlagStart Flags = 1 << iota
	FlagBranchLabel
	FlagLoopLabel
	FlagTrueCondition
	FlagFalseCondition
	FlagAssignment
	FlagSwitchClause
	FlagArrayMutation
	FlagAwaitPoint
	FlagYieldPoint
	FlagUnreachable
)

// Node is one arena entry: its flag set, the AST node index it is
// associated with, and its antecedent flow nodes. BRANCH_LABEL/LOOP_LABEL
// merge any number of antecedents; the one other kind with more than one
// is a SWITCH_CLAUSE after a preceding clause, whose antecedents are the
// pre-switch flow and the end of that preceding clause. ASTNode's meaning is flag-dependent: the guard expression for
// TRUE_CONDITION/FALSE_CONDITION, the clause for SWITCH_CLAUSE, the
// right-hand value expression for ASSIGNMENT (the builder decodes the
// assignment/declarator itself and stores just the value, so the analyzer
// never needs to re-decode an assignment expression to find it), the
// mutated reference for ARRAY_MUTATION, the await/yield expression for
// AWAIT_POINT/YIELD_POINT. Target additionally carries, for ASSIGNMENT
// nodes only, the bound reference the assignment writes.
type Node struct {
	Flags       Flags
	ASTNode     extcore.NodeID
	Target      extcore.NodeID
	Antecedents []NodeID
}

// Graph is a FlowGraph: the Node arena plus the side-table mapping an AST
// node index to the FlowNodeID active just before it.
type Graph struct {
	nodes         []Node
	nodeFlow      map[extcore.NodeID]NodeID
	unreachableID NodeID
}

// NewGraph creates an empty graph seeded with its single UNREACHABLE
// sentinel (index 0). The builder allocates a fresh START node per
// function body it processes.
func NewGraph() *Graph {
	g := &Graph{nodeFlow: make(map[extcore.NodeID]NodeID)}
	g.unreachableID = g.alloc(Node{Flags: FlagUnreachable, ASTNode: extcore.NoNodeID})
	return g
}

func (g *Graph) alloc(n Node) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return id
}

// Unreachable returns the graph's single well-known UNREACHABLE node.
func (g *Graph) Unreachable() NodeID { return g.unreachableID }

// IsUnreachable reports whether id names the UNREACHABLE sentinel.
func (g *Graph) IsUnreachable(id NodeID) bool { return id == g.unreachableID }

// Node returns the arena entry for id.
func (g *Graph) Node(id NodeID) Node { return g.nodes[id] }

// NewNode allocates a flow node with the given flags, associated AST node,
// and antecedents, honoring the unreachability-propagation rule (spec.md
// §4.7): if any antecedent is the UNREACHABLE sentinel, the propagation
// rule only actually applies when *every* antecedent is unreachable (a
// BRANCH_LABEL merging one live and one dead path stays live) — the single-
// antecedent call sites that want straight-through propagation pass exactly
// one antecedent, so the general rule "if all antecedents are unreachable,
// return UNREACHABLE" subsumes both the builder's own single-antecedent
// construction calls and any future multi-antecedent merge.
func (g *Graph) NewNode(flags Flags, astNode extcore.NodeID, antecedents ...NodeID) NodeID {
	if len(antecedents) > 0 {
		allUnreachable := true
		for _, a := range antecedents {
			if !g.IsUnreachable(a) {
				allUnreachable = false
				break
			}
		}
		if allUnreachable {
			return g.unreachableID
		}
	}
	return g.alloc(Node{Flags: flags, ASTNode: astNode, Target: extcore.NoNodeID, Antecedents: append([]NodeID(nil), antecedents...)})
}

// NewAssignmentNode allocates an ASSIGNMENT flow node keyed to target (the
// bound reference being written), with valueExpr (the right-hand
// expression actually assigned, already unwrapped by the builder) as its
// ASTNode.
func (g *Graph) NewAssignmentNode(target, valueExpr extcore.NodeID, antecedent NodeID) NodeID {
	id := g.NewNode(FlagAssignment, valueExpr, antecedent)
	if id != g.unreachableID {
		g.nodes[id].Target = target
	}
	return id
}

// AddAntecedent appends ant to node's antecedent list, refusing a
// self-referential antecedent unless node is a LOOP_LABEL (its back edge is
// the one sanctioned self-reference per spec.md §3.4's invariant).
func (g *Graph) AddAntecedent(node, ant NodeID) {
	if ant == node && g.nodes[node].Flags&FlagLoopLabel == 0 {
		return
	}
	g.nodes[node].Antecedents = append(g.nodes[node].Antecedents, ant)
}

// MarkUnreachable records that astNode's flow position is unreachable code
// (e.g. statements following a `return`); used by callers that want to
// distinguish "never visited" from "visited, but dead" when reporting
// unreachable-code diagnostics.
func (g *Graph) MarkUnreachable(astNode extcore.NodeID) {
	g.nodeFlow[astNode] = g.unreachableID
}

// RecordFlowAt associates astNode with the flow node active just before it.
func (g *Graph) RecordFlowAt(astNode extcore.NodeID, flow NodeID) {
	g.nodeFlow[astNode] = flow
}

// FlowAt returns the flow node recorded for astNode, if any.
func (g *Graph) FlowAt(astNode extcore.NodeID) (NodeID, bool) {
	id, ok := g.nodeFlow[astNode]
	return id, ok
}

// HasFlowAt reports whether astNode has a recorded flow position.
func (g *Graph) HasFlowAt(astNode extcore.NodeID) bool {
	_, ok := g.nodeFlow[astNode]
	return ok
}

// Len reports the number of allocated flow nodes, including the
// UNREACHABLE sentinel.
func (g *Graph) Len() int { return len(g.nodes) }
