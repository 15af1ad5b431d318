package subtype

import (
	"testing"

	"tschecker/internal/atom"
	"tschecker/internal/diag"
	"tschecker/internal/evaluator"
	"tschecker/internal/extcore"
	"tschecker/internal/types"
)

func newFixture(opts extcore.CheckerOptions) (*types.Interner, *atom.Interner, *Checker) {
	atoms := atom.New()
	interner := types.New()
	apparent := types.NewApparentTypes(interner, atoms)
	ev := evaluator.New(interner, atoms, apparent, opts)
	c := New(interner, atoms, apparent, ev, opts, nil)
	ev.WithSubtypeDecider(c.IsSubtype)
	return interner, atoms, c
}

func TestIdentityIsAlwaysSubtype(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})
	obj := in.Object([]types.PropertyInfo{{Name: atoms.Intern("x"), ReadType: types.Number}})
	union := in.Union([]types.TypeID{types.String, types.Number})

	for _, id := range []types.TypeID{types.String, types.Number, types.Any, types.Unknown, obj, union} {
		if !c.IsSubtype(id, id) {
			t.Fatalf("expected %v <= itself", id)
		}
	}
}

func TestTransitivityThroughWideningChain(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})
	lit := in.LiteralString(atoms.Intern("hello"))

	if !c.IsSubtype(lit, types.String) {
		t.Fatalf("expected literal <= string")
	}
	if !c.IsSubtype(types.String, types.Unknown) {
		t.Fatalf("expected string <= unknown")
	}
	if !c.IsSubtype(lit, types.Unknown) {
		t.Fatalf("expected transitivity: literal <= string <= unknown implies literal <= unknown")
	}
}

func TestLiteralAssignableToItsBaseIntrinsic(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})

	cases := []struct {
		name   string
		lit    types.TypeID
		target types.TypeID
	}{
		{"string", in.LiteralString(atoms.Intern("hi")), types.String},
		{"number", in.LiteralNumber(42), types.Number},
		{"true", types.True, types.Boolean},
		{"false", types.False, types.Boolean},
		{"bigint", in.LiteralBigInt(atoms.Intern("123")), types.BigInt},
	}
	for _, tc := range cases {
		if !c.IsSubtype(tc.lit, tc.target) {
			t.Errorf("%s: expected literal assignable to its base intrinsic", tc.name)
		}
	}
}

func TestLiteralNotAssignableToUnrelatedIntrinsic(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})
	lit := in.LiteralString(atoms.Intern("hi"))
	if c.IsSubtype(lit, types.Number) {
		t.Fatalf("expected a string literal not assignable to number")
	}
}

func TestObjectWidthSubtypingExtraPropertyAllowed(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})
	xName := atoms.Intern("x")
	yName := atoms.Intern("y")

	wide := in.Object([]types.PropertyInfo{{Name: xName, ReadType: types.Number, WriteType: types.Number}})
	narrow := in.Object([]types.PropertyInfo{
		{Name: xName, ReadType: types.Number, WriteType: types.Number},
		{Name: yName, ReadType: types.String, WriteType: types.String},
	})

	if !c.IsSubtype(narrow, wide) {
		t.Fatalf("expected an object with an extra property to be assignable to a narrower object type")
	}
}

func TestObjectMissingRequiredPropertyFails(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})
	xName := atoms.Intern("x")
	target := in.Object([]types.PropertyInfo{{Name: xName, ReadType: types.Number, WriteType: types.Number}})
	source := in.Object(nil)

	ok, reason := c.Check(source, target)
	if ok {
		t.Fatalf("expected an object missing a required property to fail")
	}
	if reason == nil || reason.Code != diag.MissingProperty {
		t.Fatalf("expected MissingProperty reason, got %+v", reason)
	}
}

func TestOptionalSourcePropertyCannotSatisfyRequiredTarget(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})
	name := atoms.Intern("x")
	target := in.Object([]types.PropertyInfo{{Name: name, ReadType: types.Number}})
	source := in.Object([]types.PropertyInfo{{Name: name, ReadType: types.Number, Optional: true}})

	if c.IsSubtype(source, target) {
		t.Fatalf("expected an optional source property not to satisfy a required target property")
	}
}

func TestReadonlySourcePropertyCannotSatisfyMutableTarget(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})
	name := atoms.Intern("x")
	target := in.Object([]types.PropertyInfo{{Name: name, ReadType: types.Number, WriteType: types.Number}})
	source := in.Object([]types.PropertyInfo{{Name: name, ReadType: types.Number, WriteType: types.Number, Readonly: true}})

	if c.IsSubtype(source, target) {
		t.Fatalf("expected a readonly source property not to satisfy a mutable target property")
	}
}

func TestSplitAccessorWriteTypeCheckedContravariantly(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})
	name := atoms.Intern("value")
	stringOrNumber := in.Union([]types.TypeID{types.String, types.Number})

	// source: read string (narrow), write string|number (accepts more)
	// target: read string|number (wide), write string (accepts less)
	source := in.Object([]types.PropertyInfo{{Name: name, ReadType: types.String, WriteType: stringOrNumber}})
	target := in.Object([]types.PropertyInfo{{Name: name, ReadType: stringOrNumber, WriteType: types.String}})

	if !c.IsSubtype(source, target) {
		t.Fatalf("expected a narrower-read/wider-write property to satisfy a wider-read/narrower-write one")
	}
	if c.IsSubtype(target, source) {
		t.Fatalf("expected the reverse not to hold: target's wider read can't satisfy source's narrower read")
	}
}

func TestFunctionParameterContravarianceUnderStrictFunctionTypes(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{StrictFunctionTypes: true})

	wideParam := types.FunctionShape{
		Params: []types.ParamInfo{{Name: atoms.Intern("x"), Type: in.Union([]types.TypeID{types.String, types.Number})}},
		Return: types.Void,
	}
	narrowParam := types.FunctionShape{
		Params: []types.ParamInfo{{Name: atoms.Intern("x"), Type: types.String}},
		Return: types.Void,
	}

	// fn(x: string|number) is assignable where fn(x: string) is expected:
	// a function that accepts more can be used wherever one accepting less is.
	source := in.Function(wideParam)
	target := in.Function(narrowParam)
	if !c.IsSubtype(source, target) {
		t.Fatalf("expected a wider-parameter function to be assignable to a narrower-parameter one")
	}

	// The reverse should fail: a function that only accepts string can't
	// stand in for one that must accept string|number.
	if c.IsSubtype(target, source) {
		t.Fatalf("expected a narrower-parameter function not to be assignable to a wider-parameter one")
	}
}

func TestFunctionParameterBivariantForMethods(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{StrictFunctionTypes: true})

	narrowParam := types.FunctionShape{
		IsMethod: true,
		Params:   []types.ParamInfo{{Name: atoms.Intern("x"), Type: types.String}},
		Return:   types.Void,
	}
	wideParam := types.FunctionShape{
		IsMethod: true,
		Params:   []types.ParamInfo{{Name: atoms.Intern("x"), Type: in.Union([]types.TypeID{types.String, types.Number})}},
		Return:   types.Void,
	}

	source := in.Function(narrowParam)
	target := in.Function(wideParam)
	if !c.IsSubtype(source, target) {
		t.Fatalf("expected method-position parameters to be checked bivariantly")
	}
}

func TestFunctionReturnTypeCovariant(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})

	narrowReturn := types.FunctionShape{Return: in.LiteralString(atoms.Intern("ok"))}
	wideReturn := types.FunctionShape{Return: types.String}

	source := in.Function(narrowReturn)
	target := in.Function(wideReturn)
	if !c.IsSubtype(source, target) {
		t.Fatalf("expected a function returning a narrower type to be assignable where a wider return is expected")
	}
	if c.IsSubtype(target, source) {
		t.Fatalf("expected the reverse not to hold")
	}
}

func TestTupleToArrayWidening(t *testing.T) {
	in, _, c := newFixture(extcore.CheckerOptions{})
	tup := in.Tuple([]types.TupleElement{{Type: types.Number}, {Type: types.Number}})
	arr := in.Array(types.Number)
	if !c.IsSubtype(tup, arr) {
		t.Fatalf("expected a tuple of numbers to be assignable to number[]")
	}
}

func TestTupleArityMismatchFails(t *testing.T) {
	in, _, c := newFixture(extcore.CheckerOptions{})
	source := in.Tuple([]types.TupleElement{{Type: types.Number}})
	target := in.Tuple([]types.TupleElement{{Type: types.Number}, {Type: types.String}})
	if c.IsSubtype(source, target) {
		t.Fatalf("expected a shorter tuple not to satisfy a longer required tuple")
	}
}

func TestTupleOptionalTrailingElement(t *testing.T) {
	in, _, c := newFixture(extcore.CheckerOptions{})
	source := in.Tuple([]types.TupleElement{{Type: types.Number}})
	target := in.Tuple([]types.TupleElement{{Type: types.Number}, {Type: types.String, Optional: true}})
	if !c.IsSubtype(source, target) {
		t.Fatalf("expected a shorter tuple to satisfy a tuple whose extra trailing element is optional")
	}
}

func TestUnionSourceRequiresEveryMember(t *testing.T) {
	in, _, c := newFixture(extcore.CheckerOptions{})
	union := in.Union([]types.TypeID{types.String, types.Number})
	if !c.IsSubtype(union, in.Union([]types.TypeID{types.String, types.Number, types.Boolean})) {
		t.Fatalf("expected string|number <= string|number|boolean")
	}
	if c.IsSubtype(union, types.String) {
		t.Fatalf("expected string|number not assignable to string alone")
	}
}

func TestUnionTargetRequiresSomeMember(t *testing.T) {
	in, _, c := newFixture(extcore.CheckerOptions{})
	target := in.Union([]types.TypeID{types.String, types.Number})
	if !c.IsSubtype(types.String, target) {
		t.Fatalf("expected string <= string|number")
	}
	if c.IsSubtype(types.Boolean, target) {
		t.Fatalf("expected boolean not assignable to string|number")
	}
}

func TestIntersectionSourceAnyMemberSuffices(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})
	name := atoms.Intern("x")
	objWithX := in.Object([]types.PropertyInfo{{Name: name, ReadType: types.Number}})
	inter := in.Intersection([]types.TypeID{objWithX, types.String})
	if !c.IsSubtype(inter, objWithX) {
		t.Fatalf("expected { x: number } & string <= { x: number }")
	}
}

func TestIntersectionTargetRequiresEveryMember(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})
	name := atoms.Intern("x")
	objWithX := in.Object([]types.PropertyInfo{{Name: name, ReadType: types.Number}})
	nameY := atoms.Intern("y")
	objWithY := in.Object([]types.PropertyInfo{{Name: nameY, ReadType: types.String}})

	source := in.Object([]types.PropertyInfo{
		{Name: name, ReadType: types.Number},
		{Name: nameY, ReadType: types.String},
	})
	target := in.Intersection([]types.TypeID{objWithX, objWithY})
	if !c.IsSubtype(source, target) {
		t.Fatalf("expected an object satisfying both members to satisfy their intersection")
	}
}

func TestTemplateLiteralMatchesLiteralString(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})
	template := in.TemplateLiteral([]types.TemplateSpan{
		{Which: types.TemplateText, Text: atoms.Intern("hello-")},
		{Which: types.TemplateType, Type: types.String},
	})

	match := in.LiteralString(atoms.Intern("hello-world"))
	nomatch := in.LiteralString(atoms.Intern("goodbye-world"))

	if !c.IsSubtype(match, template) {
		t.Fatalf("expected %q to match `hello-${string}`", "hello-world")
	}
	if c.IsSubtype(nomatch, template) {
		t.Fatalf("expected %q not to match `hello-${string}`", "goodbye-world")
	}
}

func TestTemplateLiteralMatchesNumericInterpolation(t *testing.T) {
	in, atoms, c := newFixture(extcore.CheckerOptions{})
	template := in.TemplateLiteral([]types.TemplateSpan{
		{Which: types.TemplateText, Text: atoms.Intern("v")},
		{Which: types.TemplateType, Type: types.Number},
	})
	match := in.LiteralString(atoms.Intern("v42"))
	if !c.IsSubtype(match, template) {
		t.Fatalf("expected %q to match `v${number}`", "v42")
	}
}

func TestErrorIsAbsorbingBothDirections(t *testing.T) {
	_, _, c := newFixture(extcore.CheckerOptions{})
	if !c.IsSubtype(types.Error, types.String) {
		t.Fatalf("expected ERROR <= string")
	}
	if !c.IsSubtype(types.String, types.Error) {
		t.Fatalf("expected string <= ERROR")
	}
}

func TestDeepRecursionMarksDepthExceeded(t *testing.T) {
	in, _, c := newFixture(extcore.CheckerOptions{})

	source := types.String
	target := types.Number
	for i := 0; i < MaxSubtypeDepth+10; i++ {
		source = in.Array(source)
		target = in.Array(target)
	}

	ok, reason := c.Check(source, target)
	if ok {
		t.Fatalf("expected a chain deeper than MaxSubtypeDepth to fail")
	}
	if reason == nil || reason.Code != diag.RecursionLimitExceeded {
		t.Fatalf("expected RecursionLimitExceeded, got %+v", reason)
	}
	if !c.DepthExceeded() {
		t.Fatalf("expected DepthExceeded to be set")
	}
}
