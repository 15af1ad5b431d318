package instantiate

import (
	"testing"

	"tschecker/internal/atom"
	"tschecker/internal/evaluator"
	"tschecker/internal/extcore"
	"tschecker/internal/types"
)

func newFixture() (*types.Interner, *atom.Interner, *evaluator.Evaluator) {
	atoms := atom.New()
	interner := types.New()
	apparent := types.NewApparentTypes(interner, atoms)
	ev := evaluator.New(interner, atoms, apparent, extcore.CheckerOptions{})
	return interner, atoms, ev
}

func TestInstantiateTypeParameterSubstitution(t *testing.T) {
	in, atoms, ev := newFixture()
	name := atoms.Intern("T")
	param := in.TypeParameter(types.TypeParamInfo{Name: name})

	sub := New()
	sub.Insert(name, types.String)
	got := InstantiateType(in, ev, param, sub)
	if got != types.String {
		t.Fatalf("expected String, got %v", got)
	}
}

func TestInstantiateEmptySubstitutionReturnsUnchanged(t *testing.T) {
	in, atoms, ev := newFixture()
	name := atoms.Intern("T")
	param := in.TypeParameter(types.TypeParamInfo{Name: name})
	got := InstantiateType(in, ev, param, New())
	if got != param {
		t.Fatalf("expected the original TypeID unchanged for an empty substitution, got %v", got)
	}
}

func TestInstantiateArrayOfTypeParameter(t *testing.T) {
	in, atoms, ev := newFixture()
	name := atoms.Intern("T")
	param := in.TypeParameter(types.TypeParamInfo{Name: name})
	arr := in.Array(param)

	sub := New()
	sub.Insert(name, types.Number)
	got := InstantiateType(in, ev, arr, sub)
	want := in.Array(types.Number)
	if got != want {
		t.Fatalf("expected Array<Number>, got %v want %v", got, want)
	}
}

func TestInstantiateObjectPropertiesSubstituted(t *testing.T) {
	in, atoms, ev := newFixture()
	tName := atoms.Intern("T")
	param := in.TypeParameter(types.TypeParamInfo{Name: tName})
	propName := atoms.Intern("value")
	obj := in.Object([]types.PropertyInfo{{Name: propName, ReadType: param}})

	sub := New()
	sub.Insert(tName, types.String)
	got := InstantiateType(in, ev, obj, sub)

	want := in.Object([]types.PropertyInfo{{Name: propName, ReadType: types.String}})
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestInstantiateFunctionOwnTypeParamsShadowOuterSubstitution(t *testing.T) {
	in, atoms, ev := newFixture()
	outerName := atoms.Intern("T")
	outerParam := in.TypeParameter(types.TypeParamInfo{Name: outerName})

	// fn<T>(x: T): T -- this T shadows the outer substitution for T.
	shape := types.FunctionShape{
		TypeParams: []types.TypeParamInfo{{Name: outerName}},
		Params:     []types.ParamInfo{{Name: atoms.Intern("x"), Type: outerParam}},
		Return:     outerParam,
	}
	fn := in.Function(shape)

	sub := New()
	sub.Insert(outerName, types.String)
	got := InstantiateType(in, ev, fn, sub)

	if got != fn {
		t.Fatalf("expected the function's own type parameter to shadow the outer substitution and return unchanged, got %v want %v", got, fn)
	}
}

func TestInstantiateConditionalNeverSubstitutionCollapses(t *testing.T) {
	in, atoms, ev := newFixture()
	name := atoms.Intern("T")
	param := in.TypeParameter(types.TypeParamInfo{Name: name})
	cond := in.Conditional(types.ConditionalType{Check: param, Extends: types.String, True: types.Number, False: types.Boolean})

	sub := New()
	sub.Insert(name, types.Never)
	got := InstantiateType(in, ev, cond, sub)
	if got != types.Never {
		t.Fatalf("expected Never, got %v", got)
	}
}

func TestInstantiateConditionalDistributesOverUnionSubstitution(t *testing.T) {
	in, atoms, ev := newFixture()
	ev.WithSubtypeDecider(func(source, target types.TypeID) bool {
		return source == types.String && target == types.String
	})
	name := atoms.Intern("T")
	param := in.TypeParameter(types.TypeParamInfo{Name: name})
	cond := in.Conditional(types.ConditionalType{
		Check: param, Extends: types.String,
		True: in.LiteralString(atoms.Intern("matched")), False: in.LiteralString(atoms.Intern("unmatched")),
	})

	sub := New()
	sub.Insert(name, in.Union([]types.TypeID{types.String, types.Number}))
	got := InstantiateType(in, ev, cond, sub)

	want := in.Union([]types.TypeID{in.LiteralString(atoms.Intern("matched")), in.LiteralString(atoms.Intern("unmatched"))})
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestInstantiateConditionalConcreteSubstitutionStaysDeferredWithoutDecider(t *testing.T) {
	in, atoms, ev := newFixture()
	name := atoms.Intern("T")
	param := in.TypeParameter(types.TypeParamInfo{Name: name})
	cond := in.Conditional(types.ConditionalType{Check: param, Extends: types.String, True: types.Number, False: types.Boolean})

	sub := New()
	sub.Insert(name, types.String)
	got := InstantiateType(in, ev, cond, sub)

	key, ok := in.Lookup(got)
	if !ok || key.Kind != types.KindConditional {
		t.Fatalf("expected a deferred Conditional (no subtype decider wired), got %v", got)
	}
	condKey, _ := in.ConditionalByID(key.Conditional)
	if condKey.Check != types.String {
		t.Fatalf("expected the deferred conditional's Check to be substituted to String, got %v", condKey.Check)
	}
}

func TestInstantiateGenericZipsPositionally(t *testing.T) {
	in, atoms, ev := newFixture()
	tName := atoms.Intern("T")
	uName := atoms.Intern("U")
	param := in.TypeParameter(types.TypeParamInfo{Name: tName})
	tup := in.Tuple([]types.TupleElement{{Type: param}, {Type: in.TypeParameter(types.TypeParamInfo{Name: uName})}})

	params := []types.TypeParamInfo{{Name: tName}, {Name: uName}}
	args := []types.TypeID{types.String} // U has no corresponding argument
	got := InstantiateGeneric(in, ev, tup, params, args)

	key, _ := in.Lookup(got)
	elems := in.TupleList(key.TupleList)
	if elems[0].Type != types.String {
		t.Fatalf("expected T substituted to String, got %v", elems[0].Type)
	}
	uParam := in.TypeParameter(types.TypeParamInfo{Name: uName})
	if elems[1].Type != uParam {
		t.Fatalf("expected U left unsubstituted (no argument supplied), got %v", elems[1].Type)
	}
}

func TestInstantiateDepthCapMarksDepthExceeded(t *testing.T) {
	in, atoms, ev := newFixture()
	name := atoms.Intern("T")
	param := in.TypeParameter(types.TypeParamInfo{Name: name})

	chain := param
	for i := 0; i < MaxInstantiationDepth+5; i++ {
		chain = in.Array(chain)
	}

	sub := New()
	sub.Insert(name, types.String)
	it := NewInstantiator(in, ev, sub)
	it.Instantiate(chain)
	if !it.DepthExceeded() {
		t.Fatalf("expected DepthExceeded after a chain deeper than MaxInstantiationDepth")
	}
}

func TestInstantiateInferLeftUntouchedWithoutSubstituteInferFlag(t *testing.T) {
	in, atoms, ev := newFixture()
	name := atoms.Intern("R")
	infer := in.Infer(types.TypeParamInfo{Name: name})

	sub := New()
	sub.Insert(name, types.String)
	got := InstantiateType(in, ev, infer, sub) // plain InstantiateType, not the WithInfer variant
	if got != infer {
		t.Fatalf("expected infer binding left unsubstituted by InstantiateType, got %v", got)
	}

	gotWithInfer := InstantiateTypeWithInfer(in, ev, infer, sub)
	if gotWithInfer != types.String {
		t.Fatalf("expected InstantiateTypeWithInfer to substitute the infer binding, got %v", gotWithInfer)
	}
}
