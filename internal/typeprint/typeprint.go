// Package typeprint renders a types.TypeID as TypeScript declaration
// syntax, for diagnostic messages and the `tscheck print-type` CLI
// subcommand. Grounded on original_source/src/emitter/type_printer.rs's
// TypePrinter, ported member-for-member from its print_type dispatch over
// TypeKey. Two gaps the Rust source itself leaves as TODOs/placeholders
// are filled in here instead of carried over: atom names are resolved
// through the real atom.Interner (the Rust file's string_interner_cache
// is a literal `format!("<atom:{}>", ...)` placeholder it never replaces),
// and Lazy/DefID names are resolved through a caller-supplied DefNamer
// rather than left as "any" (print_lazy_type/print_enum are both `// TODO`
// stubs in the source).
package typeprint

import (
	"math"
	"strconv"
	"strings"

	"tschecker/internal/atom"
	"tschecker/internal/types"
)

// DefNamer resolves a Lazy type's DefID to the declared name it should
// print as (an interface, class, type alias, or enum name). The printer
// has no symbol-table access of its own, the same decoupling
// flowanalysis.ExprTypeFunc and infer.SubtypeFunc use elsewhere. Both
// in-repo callers (internal/checker's diagnostics and cmd/tscheck
// print-type) pass nil, so a Lazy type prints as "any" there.
type DefNamer func(def types.DefID) string

// Printer renders TypeIDs as TypeScript syntax against one shared
// interner/atom store. Stateless beyond those two references: safe for
// concurrent use by multiple goroutines, since print_type never mutates
// the interner.
type Printer struct {
	interner *types.Interner
	atoms    *atom.Interner
	defName  DefNamer
}

// New creates a Printer. defName may be nil, in which case a Lazy type
// prints as "any" — the identical fallback the Rust source's print_type
// uses for an interner miss.
func New(interner *types.Interner, atoms *atom.Interner, defName DefNamer) *Printer {
	return &Printer{interner: interner, atoms: atoms, defName: defName}
}

// Print renders id as TypeScript syntax.
func (p *Printer) Print(id types.TypeID) string {
	if types.IsIntrinsic(id) {
		return p.printIntrinsic(id)
	}

	key, ok := p.interner.Lookup(id)
	if !ok {
		return "any"
	}

	switch key.Kind {
	case types.KindIntrinsic:
		return "any"

	case types.KindLiteralString:
		return strconv.Quote(p.atoms.Resolve(key.LitString))
	case types.KindLiteralNumber:
		return formatNumber(key.LitNumberBits)
	case types.KindLiteralBoolean:
		if key.LitBool {
			return "true"
		}
		return "false"
	case types.KindLiteralBigInt:
		return p.atoms.Resolve(key.LitBigInt) + "n"

	case types.KindObject, types.KindObjectWithIndex:
		return p.printObject(key.ObjectShape)

	case types.KindUnion:
		return p.printJoinedTypeList(key.TypeList, " | ", "never")
	case types.KindIntersection:
		return p.printJoinedTypeList(key.TypeList, " & ", "unknown")

	case types.KindArray:
		return p.printArrayElement(key.Elem) + "[]"

	case types.KindTuple:
		return p.printTuple(key.TupleList)

	case types.KindFunction:
		return p.printFunction(key.FunctionSig)
	case types.KindCallable:
		return "Function"

	case types.KindTypeParameter:
		return p.atoms.Resolve(key.Param.Name)
	case types.KindInfer:
		return "infer " + p.atoms.Resolve(key.Param.Name)
	case types.KindBoundParameter:
		// Another de Bruijn canonicalization-only slot (types.Interner.
		// BoundParameter), carrying a depth rather than a name; like
		// KindRecursive, never expected to reach a printed position.
		return "any"

	case types.KindLazy:
		if p.defName == nil {
			return "any"
		}
		return p.defName(key.Def)

	case types.KindRecursive:
		// A de Bruijn self-reference, only ever produced mid-canonicalization
		// (types.Interner.Recursive) and never expected to reach a printed
		// diagnostic or declaration; "any" matches the Rust source's
		// equally unreachable TypeKey::Enum/TypeQuery fallback arms.
		return "any"

	case types.KindApplication:
		return p.printApplication(key.Application)

	case types.KindConditional:
		return p.printConditional(key.Conditional)

	case types.KindTemplateLiteral:
		return p.printTemplateLiteral(key.Template)

	case types.KindMapped:
		return p.printMapped(key.Mapped)

	case types.KindIndexAccess:
		return p.Print(key.Elem) + "[" + p.Print(key.Elem2) + "]"

	case types.KindKeyOf:
		return "keyof " + p.Print(key.Elem)

	case types.KindReadonly:
		return "readonly " + p.Print(key.Elem)

	case types.KindThis:
		return "this"

	case types.KindUniqueSymbol:
		return "unique symbol"

	case types.KindTypeQuery:
		// original_source leaves this "any" too (print_intrinsic_type has no
		// TypeQuery case and TypeKey::TypeQuery prints "any" directly).
		return "any"

	case types.KindStringIntrinsic:
		return p.printStringIntrinsic(key.StringIntrinsic, key.Elem)

	case types.KindError:
		return "any"

	default:
		return "any"
	}
}

func (p *Printer) printIntrinsic(id types.TypeID) string {
	switch id {
	case types.Error:
		return "any"
	case types.Never:
		return "never"
	case types.Unknown:
		return "unknown"
	case types.Any:
		return "any"
	case types.Void:
		return "void"
	case types.Undefined:
		return "undefined"
	case types.Null:
		return "null"
	case types.Boolean:
		return "boolean"
	case types.Number:
		return "number"
	case types.String:
		return "string"
	case types.BigInt:
		return "bigint"
	case types.SymbolIntrinsic:
		return "symbol"
	case types.Object:
		return "object"
	case types.FunctionIntrinsic:
		return "Function"
	case types.True:
		return "true"
	case types.False:
		return "false"
	default:
		return "any"
	}
}

func formatNumber(bits uint64) string {
	v := math.Float64frombits(bits)
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (p *Printer) printJoinedTypeList(id types.TypeListID, sep, empty string) string {
	members := p.interner.TypeList(id)
	if len(members) == 0 {
		return empty
	}
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = p.printUnionMember(m)
	}
	return strings.Join(parts, sep)
}

// printUnionMember parenthesizes a member whose own printed form would
// otherwise misparse when joined with "|"/"&" (a function type or another
// union/intersection/conditional).
func (p *Printer) printUnionMember(id types.TypeID) string {
	if types.IsIntrinsic(id) {
		return p.printIntrinsic(id)
	}
	key, ok := p.interner.Lookup(id)
	if !ok {
		return "any"
	}
	switch key.Kind {
	case types.KindFunction, types.KindUnion, types.KindIntersection, types.KindConditional:
		return "(" + p.Print(id) + ")"
	default:
		return p.Print(id)
	}
}

func (p *Printer) printArrayElement(id types.TypeID) string {
	if types.IsIntrinsic(id) {
		return p.printIntrinsic(id)
	}
	key, ok := p.interner.Lookup(id)
	if ok && (key.Kind == types.KindUnion || key.Kind == types.KindIntersection || key.Kind == types.KindFunction || key.Kind == types.KindConditional) {
		return "(" + p.Print(id) + ")"
	}
	return p.Print(id)
}

func (p *Printer) printObject(shapeID types.ObjectShapeID) string {
	shape, ok := p.interner.ObjectShapeByID(shapeID)
	if !ok {
		return "{}"
	}
	var members []string
	for _, prop := range shape.Properties {
		var b strings.Builder
		if prop.Readonly {
			b.WriteString("readonly ")
		}
		b.WriteString(p.atoms.Resolve(prop.Name))
		if prop.Optional {
			b.WriteByte('?')
		}
		b.WriteString(": ")
		b.WriteString(p.Print(prop.ReadType))
		members = append(members, b.String())
	}
	if shape.StringIndex != nil {
		members = append(members, "[key: string]: "+p.Print(shape.StringIndex.ValueType))
	}
	if shape.NumberIndex != nil {
		members = append(members, "[key: number]: "+p.Print(shape.NumberIndex.ValueType))
	}
	if len(members) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(members, "; ") + " }"
}

func (p *Printer) printTuple(id types.TupleListID) string {
	elements := p.interner.TupleList(id)
	if len(elements) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(elements))
	for _, elem := range elements {
		s := p.Print(elem.Type)
		if elem.Optional {
			s += "?"
		}
		if elem.Rest {
			s = "..." + s
		}
		if elem.Name != 0 {
			name := p.atoms.Resolve(elem.Name)
			prefix := name
			if elem.Optional {
				prefix += "?"
			}
			s = prefix + ": " + p.Print(elem.Type)
			if elem.Rest {
				s = "..." + s
			}
		}
		parts = append(parts, s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (p *Printer) printFunction(id types.FunctionShapeID) string {
	shape, ok := p.interner.FunctionShapeByID(id)
	if !ok {
		return "Function"
	}

	var typeParams string
	if len(shape.TypeParams) > 0 {
		parts := make([]string, len(shape.TypeParams))
		for i, tp := range shape.TypeParams {
			parts[i] = p.atoms.Resolve(tp.Name)
		}
		typeParams = "<" + strings.Join(parts, ", ") + ">"
	}

	params := make([]string, 0, len(shape.Params))
	for _, param := range shape.Params {
		var b strings.Builder
		if param.Rest {
			b.WriteString("...")
		}
		if param.Name != 0 {
			b.WriteString(p.atoms.Resolve(param.Name))
			if param.Optional {
				b.WriteByte('?')
			}
			b.WriteString(": ")
		}
		b.WriteString(p.Print(param.Type))
		params = append(params, b.String())
	}

	returnType := p.printReturn(shape)
	return typeParams + "(" + strings.Join(params, ", ") + ") => " + returnType
}

// printReturn renders a function's return position, folding in a
// predicate return type the way TypeScript prints `x is T`/`asserts x is T`
// instead of the predicate's asserted type on its own.
func (p *Printer) printReturn(shape types.FunctionShape) string {
	switch shape.Predicate.Kind {
	case types.TypePredicate:
		return p.atoms.Resolve(shape.Predicate.ParamName) + " is " + p.Print(shape.Predicate.AssertedType)
	case types.AssertsPredicate:
		if shape.Predicate.AssertedType == types.Any {
			return "asserts " + p.atoms.Resolve(shape.Predicate.ParamName)
		}
		return "asserts " + p.atoms.Resolve(shape.Predicate.ParamName) + " is " + p.Print(shape.Predicate.AssertedType)
	default:
		return p.Print(shape.Return)
	}
}

func (p *Printer) printApplication(id types.ApplicationID) string {
	app, ok := p.interner.ApplicationByID(id)
	if !ok {
		return "any"
	}
	if len(app.Args) == 0 {
		return p.Print(app.Base)
	}
	args := make([]string, len(app.Args))
	for i, a := range app.Args {
		args[i] = p.Print(a)
	}
	return p.Print(app.Base) + "<" + strings.Join(args, ", ") + ">"
}

func (p *Printer) printConditional(id types.ConditionalID) string {
	cond, ok := p.interner.ConditionalByID(id)
	if !ok {
		return "any"
	}
	return p.printUnionMember(cond.Check) + " extends " + p.printUnionMember(cond.Extends) +
		" ? " + p.Print(cond.True) + " : " + p.Print(cond.False)
}

func (p *Printer) printTemplateLiteral(id types.TemplateLiteralID) string {
	spans := p.interner.TemplateByID(id)
	var b strings.Builder
	b.WriteByte('`')
	for _, span := range spans {
		if span.Which == types.TemplateText {
			b.WriteString(p.atoms.Resolve(span.Text))
			continue
		}
		b.WriteString("${")
		b.WriteString(p.Print(span.Type))
		b.WriteByte('}')
	}
	b.WriteByte('`')
	return b.String()
}

func (p *Printer) printMapped(id types.MappedID) string {
	m, ok := p.interner.MappedByID(id)
	if !ok {
		return "any"
	}
	var b strings.Builder
	b.WriteString("{ ")
	b.WriteString(mappedModifierPrefix(m.ReadonlyMod, "readonly"))
	b.WriteString("[")
	b.WriteString(p.atoms.Resolve(m.ParamName))
	b.WriteString(" in ")
	b.WriteString(p.Print(m.Constraint))
	if m.NameType != 0 {
		b.WriteString(" as ")
		b.WriteString(p.Print(m.NameType))
	}
	b.WriteString("]")
	b.WriteString(mappedModifierSuffix(m.OptionalMod, "?"))
	b.WriteString(": ")
	b.WriteString(p.Print(m.Template))
	b.WriteString(" }")
	return b.String()
}

func mappedModifierPrefix(mod types.MappedModifier, keyword string) string {
	switch mod {
	case types.ModifierAdd:
		return "+" + keyword + " "
	case types.ModifierRemove:
		return "-" + keyword + " "
	default:
		return ""
	}
}

func mappedModifierSuffix(mod types.MappedModifier, marker string) string {
	switch mod {
	case types.ModifierAdd:
		return "+" + marker
	case types.ModifierRemove:
		return "-" + marker
	default:
		return ""
	}
}

func (p *Printer) printStringIntrinsic(kind types.StringIntrinsicKind, arg types.TypeID) string {
	var name string
	switch kind {
	case types.StringUppercase:
		name = "Uppercase"
	case types.StringLowercase:
		name = "Lowercase"
	case types.StringCapitalize:
		name = "Capitalize"
	case types.StringUncapitalize:
		name = "Uncapitalize"
	default:
		name = "Uppercase"
	}
	return name + "<" + p.Print(arg) + ">"
}
