package types

import "tschecker/internal/atom"

// ApparentTypes is the shared boxed-primitive prototype table consulted by
// both the subtype checker (property lookups against `string`, `number`,
// etc., spec.md §4.5) and the evaluator's keyof rule (spec.md §4.3). A
// single shared table avoids the two call sites building divergent member
// lists for the same prototype, grounded on
// original_source/src/solver/evaluate_rules/keyof.rs's
// `apparent_primitive_keyof` (which the retrieved source calls out by name
// but does not itself define the member list for).
type ApparentTypes struct {
	strings ObjectShape
	numbers ObjectShape
	bools   ObjectShape
	symbols ObjectShape
	bigints ObjectShape
}

// methodProp builds a read-only method property.
func methodProp(in *Interner, atoms *atom.Interner, name string, ret TypeID) PropertyInfo {
	return PropertyInfo{
		Name:     atoms.Intern(name),
		ReadType: ret,
		IsMethod: true,
		Readonly: true,
	}
}

// NewApparentTypes builds the boxed-primitive prototype tables. in is used
// to intern the method signatures' return/array types; atoms interns the
// member names.
func NewApparentTypes(in *Interner, atoms *atom.Interner) *ApparentTypes {
	stringArray := in.Array(String)

	stringMembers := []PropertyInfo{
		{Name: atoms.Intern("length"), ReadType: Number, Readonly: true},
		methodProp(in, atoms, "charAt", String),
		methodProp(in, atoms, "charCodeAt", Number),
		methodProp(in, atoms, "concat", String),
		methodProp(in, atoms, "includes", Boolean),
		methodProp(in, atoms, "indexOf", Number),
		methodProp(in, atoms, "lastIndexOf", Number),
		methodProp(in, atoms, "padStart", String),
		methodProp(in, atoms, "padEnd", String),
		methodProp(in, atoms, "repeat", String),
		methodProp(in, atoms, "replace", String),
		methodProp(in, atoms, "slice", String),
		methodProp(in, atoms, "split", stringArray),
		methodProp(in, atoms, "startsWith", Boolean),
		methodProp(in, atoms, "endsWith", Boolean),
		methodProp(in, atoms, "toLowerCase", String),
		methodProp(in, atoms, "toUpperCase", String),
		methodProp(in, atoms, "trim", String),
		methodProp(in, atoms, "toString", String),
		methodProp(in, atoms, "valueOf", String),
	}

	numberMembers := []PropertyInfo{
		methodProp(in, atoms, "toFixed", String),
		methodProp(in, atoms, "toPrecision", String),
		methodProp(in, atoms, "toExponential", String),
		methodProp(in, atoms, "toString", String),
		methodProp(in, atoms, "valueOf", Number),
	}

	boolMembers := []PropertyInfo{
		methodProp(in, atoms, "toString", String),
		methodProp(in, atoms, "valueOf", Boolean),
	}

	symbolMembers := []PropertyInfo{
		{Name: atoms.Intern("description"), ReadType: in.Union([]TypeID{String, Undefined}), Readonly: true},
		methodProp(in, atoms, "toString", String),
		methodProp(in, atoms, "valueOf", SymbolIntrinsic),
	}

	bigintMembers := []PropertyInfo{
		methodProp(in, atoms, "toString", String),
		methodProp(in, atoms, "toLocaleString", String),
		methodProp(in, atoms, "valueOf", BigInt),
	}

	return &ApparentTypes{
		strings: ObjectShape{Properties: sortedProperties(stringMembers)},
		numbers: ObjectShape{Properties: sortedProperties(numberMembers)},
		bools:   ObjectShape{Properties: sortedProperties(boolMembers)},
		symbols: ObjectShape{Properties: sortedProperties(symbolMembers)},
		bigints: ObjectShape{Properties: sortedProperties(bigintMembers)},
	}
}

// ShapeFor returns the prototype ObjectShape for a primitive intrinsic,
// or (ObjectShape{}, false) if id is not one of String/Number/Boolean/
// SymbolIntrinsic/BigInt.
func (a *ApparentTypes) ShapeFor(id TypeID) (ObjectShape, bool) {
	switch id {
	case String:
		return a.strings, true
	case Number:
		return a.numbers, true
	case Boolean:
		return a.bools, true
	case SymbolIntrinsic:
		return a.symbols, true
	case BigInt:
		return a.bigints, true
	default:
		return ObjectShape{}, false
	}
}
