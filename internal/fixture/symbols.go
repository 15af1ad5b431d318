package fixture

import (
	"tschecker/internal/extcore"
	"tschecker/internal/types"
)

// symbolInfo is one value-position binding's recorded facts.
type symbolInfo struct {
	declaredType types.TypeID
}

// defInfo is one type-position declaration's (interface/class/enum/alias)
// recorded facts.
type defInfo struct {
	abstract   bool
	visibility map[string]extcore.MemberVisibility
}

// Symbols is a concrete extcore.SymbolTable: a handful of maps keyed by
// extcore.NodeID/SymbolID/types.DefID, grounded on internal/symbols'
// Table (a thin aggregator over per-concern lookup tables) but with the
// scope-resolution machinery itself stripped out — a fixture-built
// program's Builder records each identifier's resolution directly at
// construction time (Bind/BindType), rather than a name resolver deriving
// it from lexical scope.
type Symbols struct {
	valueRefs map[extcore.NodeID]extcore.SymbolID
	typeRefs  map[extcore.NodeID]types.DefID
	symbols   map[extcore.SymbolID]symbolInfo
	defs      map[types.DefID]defInfo
	nextSym   extcore.SymbolID
	nextDef   types.DefID
}

// NewSymbols creates an empty Symbols table.
func NewSymbols() *Symbols {
	return &Symbols{
		valueRefs: make(map[extcore.NodeID]extcore.SymbolID),
		typeRefs:  make(map[extcore.NodeID]types.DefID),
		symbols:   make(map[extcore.SymbolID]symbolInfo),
		defs:      make(map[types.DefID]defInfo),
	}
}

// DeclareValue allocates a fresh SymbolID with the given declared type.
func (s *Symbols) DeclareValue(declaredType types.TypeID) extcore.SymbolID {
	s.nextSym++
	s.symbols[s.nextSym] = symbolInfo{declaredType: declaredType}
	return s.nextSym
}

// DeclareDef allocates a fresh DefID for an interface/class/enum/alias.
func (s *Symbols) DeclareDef(abstract bool) types.DefID {
	s.nextDef++
	s.defs[s.nextDef] = defInfo{abstract: abstract, visibility: make(map[string]extcore.MemberVisibility)}
	return s.nextDef
}

// Bind records that an identifier node resolves to a value symbol, for
// both a declaration's own binding identifier and every later reference to
// it — the same symbol id for both is what lets DeclarationSite/
// IsDefinitelyAssigned-style queries recognize "this reference is the one
// that def declares".
func (s *Symbols) Bind(identifierNode extcore.NodeID, sym extcore.SymbolID) {
	s.valueRefs[identifierNode] = sym
}

// BindType records that a type-position identifier node names def.
func (s *Symbols) BindType(identifierNode extcore.NodeID, def types.DefID) {
	s.typeRefs[identifierNode] = def
}

// SetVisibility records a class member's declared visibility for private-
// brand matching.
func (s *Symbols) SetVisibility(def types.DefID, member string, vis extcore.MemberVisibility) {
	s.defs[def].visibility[member] = vis
}

// --- extcore.SymbolTable ---

func (s *Symbols) ResolveType(identifierNode extcore.NodeID) (types.DefID, bool) {
	def, ok := s.typeRefs[identifierNode]
	return def, ok
}

func (s *Symbols) ResolveValue(identifierNode extcore.NodeID) (extcore.SymbolID, bool) {
	sym, ok := s.valueRefs[identifierNode]
	return sym, ok
}

func (s *Symbols) DeclaredTypeOf(sym extcore.SymbolID) types.TypeID {
	return s.symbols[sym].declaredType
}

func (s *Symbols) IsAbstract(def types.DefID) bool {
	return s.defs[def].abstract
}

func (s *Symbols) Visibility(def types.DefID) extcore.MemberVisibility {
	info, ok := s.defs[def]
	if !ok {
		return extcore.VisPublic
	}
	// This single-argument form can't distinguish members by name; callers
	// needing per-member visibility use SetVisibility/a dedicated lookup at
	// the call site (internal/subtype only asks "is the brand matched",
	// supplying the specific member name out of band via PropertyInfo.Owner,
	// not through this interface method).
	for _, v := range info.visibility {
		return v
	}
	return extcore.VisPublic
}

// InheritanceGraph is a concrete extcore.InheritanceGraph: a parent-pointer
// map over types.DefID, with IsDerivedFrom walking the chain. Grounded on
// the same declaration-graph idea internal/symbols' scope chain embodies,
// reduced to the one relationship the subtype checker's nominal fast path
// needs.
type InheritanceGraph struct {
	parent map[types.DefID]types.DefID
}

// NewInheritanceGraph creates an empty graph.
func NewInheritanceGraph() *InheritanceGraph {
	return &InheritanceGraph{parent: make(map[types.DefID]types.DefID)}
}

// Extend records that child directly extends/implements parent.
func (g *InheritanceGraph) Extend(child, parent types.DefID) {
	g.parent[child] = parent
}

func (g *InheritanceGraph) IsDerivedFrom(source, target types.DefID) bool {
	for cur := source; cur != 0; {
		if cur == target {
			return true
		}
		next, ok := g.parent[cur]
		if !ok {
			return false
		}
		cur = next
	}
	return false
}
