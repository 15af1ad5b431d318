package fixture

import (
	"encoding/json"
	"fmt"
	"os"

	"tschecker/internal/extcore"
	"tschecker/internal/types"
)

// Program is the on-disk JSON shape of a fixture source file: a flat list
// of `let`-style declarations. This is a minimal reference surface, not a
// real scanner/parser (spec.md places lexical/syntactic analysis out of
// scope; see the driver package's own note on this), just enough to drive
// check_source_file end to end from a file on disk rather than only from
// test code. Every declared type and initializer is a literal type/value,
// the same literal-type stand-in internal/checker's own tests use, since
// internal/typelower has no primitive-keyword interception path and a
// nominal `string`/`number` reference would need a pre-populated symbol
// table this loader doesn't have.
type Program struct {
	Declarations []Declaration `json:"declarations"`
}

// Declaration is one `let <Name>: <Type> = <Init>;`.
type Declaration struct {
	Name string  `json:"name"`
	Type Literal `json:"type"`
	Init Literal `json:"init"`
}

// Literal is a JSON-friendly literal type or value: Kind selects which of
// Num/Str is meaningful ("number" or "string").
type Literal struct {
	Kind string  `json:"kind"`
	Num  float64 `json:"num,omitempty"`
	Str  string  `json:"str,omitempty"`
}

// LoadProgram reads and decodes path's JSON into a Program.
func LoadProgram(path string) (Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Program{}, fmt.Errorf("%s: %w", path, err)
	}
	var prog Program
	if err := json.Unmarshal(data, &prog); err != nil {
		return Program{}, fmt.Errorf("%s: failed to parse fixture JSON: %w", path, err)
	}
	return prog, nil
}

// typeNode builds the type-position node for a Literal (a literal type, not
// a nominal reference — see the Program doc comment above).
func typeNode(b *Builder, lit Literal) (extcore.NodeID, error) {
	switch lit.Kind {
	case "number":
		return b.NumberLiteralType(lit.Num), nil
	case "string":
		return b.StringLiteralType(lit.Str), nil
	default:
		return extcore.NoNodeID, fmt.Errorf("unknown literal kind %q", lit.Kind)
	}
}

// exprNode builds the expression node for a Literal.
func exprNode(b *Builder, lit Literal) (extcore.NodeID, error) {
	switch lit.Kind {
	case "number":
		return b.NumberLiteral(lit.Num), nil
	case "string":
		return b.StringLiteral(lit.Str), nil
	default:
		return extcore.NoNodeID, fmt.Errorf("unknown literal kind %q", lit.Kind)
	}
}

// literalTypeID computes the TypeID a Literal hash-conses to, without
// building any node — the interner's hash-consing is content-addressed
// (same kind+value always collapses to the same TypeID, see
// types.Interner.LiteralNumber/LiteralString), so this agrees with
// whatever Session.LowerType later re-derives from a type node built from
// the same Literal.
func literalTypeID(b *Builder, interner *types.Interner, lit Literal) (types.TypeID, error) {
	switch lit.Kind {
	case "number":
		return interner.LiteralNumber(lit.Num), nil
	case "string":
		return interner.LiteralString(b.atoms.Intern(lit.Str)), nil
	default:
		return types.Error, fmt.Errorf("unknown literal kind %q", lit.Kind)
	}
}

// Build builds prog into a single Block statement over b/syms, declaring
// each name as a mutable value symbol (so definite-assignment checks treat
// the declaration site as already assigned) and returns the block's root
// node, ready to hand to checker.Session.CheckSourceFile. interner must be
// the same *types.Interner the eventual Session is built over, so the
// literal TypeIDs this loader hash-conses match what CheckSourceFile's own
// LowerType call re-derives.
func (prog Program) Build(b *Builder, syms *Symbols, interner *types.Interner) (extcore.NodeID, error) {
	var stmts []extcore.NodeID
	for _, d := range prog.Declarations {
		typeN, err := typeNode(b, d.Type)
		if err != nil {
			return extcore.NoNodeID, fmt.Errorf("declaration %q: %w", d.Name, err)
		}
		initN, err := exprNode(b, d.Init)
		if err != nil {
			return extcore.NoNodeID, fmt.Errorf("declaration %q: %w", d.Name, err)
		}
		initType, err := literalTypeID(b, interner, d.Init)
		if err != nil {
			return extcore.NoNodeID, fmt.Errorf("declaration %q: %w", d.Name, err)
		}
		b.Arena().SetExprType(initN, initType)

		name := b.Identifier(d.Name)
		b.DeclareIdentifier(name, true)
		declaredType, err := literalTypeID(b, interner, d.Type)
		if err != nil {
			return extcore.NoNodeID, fmt.Errorf("declaration %q: %w", d.Name, err)
		}
		sym := syms.DeclareValue(declaredType)
		syms.Bind(name, sym)

		binding := b.Binding(name, typeN, initN, false)
		stmts = append(stmts, b.VariableDecl(extcore.BindingLet, binding))
	}
	return b.Block(stmts...), nil
}
