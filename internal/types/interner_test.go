package types

import (
	"testing"

	"tschecker/internal/atom"
)

func TestInterningIdentity(t *testing.T) {
	atoms := atom.New()
	in := New()

	fooA := atoms.Intern("foo")
	fooB := atoms.Intern("foo")

	t1 := in.LiteralString(fooA)
	t2 := in.LiteralString(fooB)
	if t1 != t2 {
		t.Errorf("intern(k1) != intern(k2) for equal canonical TypeKeys: %d != %d", t1, t2)
	}

	key, ok := in.Lookup(t1)
	if !ok {
		t.Fatalf("Lookup(%d) failed for a freshly interned literal", t1)
	}
	roundTripped := in.intern(key)
	if roundTripped != t1 {
		t.Errorf("intern(lookup(t)) did not round-trip: got %d, want %d", roundTripped, t1)
	}
}

func TestInterningIdentityIntrinsics(t *testing.T) {
	in := New()
	if _, ok := in.Lookup(Any); ok {
		t.Error("Lookup on an intrinsic TypeID should report not-found, not a table entry")
	}
	if !IsIntrinsic(String) || !IsIntrinsic(Error) {
		t.Error("String and Error must be recognized as intrinsics")
	}
}

func TestUnionSingleton(t *testing.T) {
	in := New()
	s := in.LiteralString(atom.New().Intern("x"))
	if got := in.Union([]TypeID{s}); got != s {
		t.Errorf("union([T]) = %d, want %d", got, s)
	}
}

func TestUnionDedup(t *testing.T) {
	in := New()
	s := in.LiteralString(atom.New().Intern("x"))
	if got := in.Union([]TypeID{s, s}); got != s {
		t.Errorf("union([T, T]) = %d, want %d", got, s)
	}
}

func TestUnionDropsNever(t *testing.T) {
	in := New()
	s := in.LiteralString(atom.New().Intern("x"))
	if got := in.Union([]TypeID{s, Never}); got != s {
		t.Errorf("union([T, never]) = %d, want %d", got, s)
	}
}

func TestUnionAbsorbsAny(t *testing.T) {
	in := New()
	s := in.LiteralString(atom.New().Intern("x"))
	if got := in.Union([]TypeID{s, Any}); got != Any {
		t.Errorf("union([T, any]) = %d, want Any (%d)", got, Any)
	}
}

func TestUnionEmptyIsNever(t *testing.T) {
	in := New()
	if got := in.Union(nil); got != Never {
		t.Errorf("union([]) = %d, want Never (%d)", got, Never)
	}
}

func TestUnionCommutative(t *testing.T) {
	in := New()
	atoms := atom.New()
	a := in.LiteralString(atoms.Intern("a"))
	b := in.LiteralString(atoms.Intern("b"))

	u1 := in.Union([]TypeID{a, b})
	u2 := in.Union([]TypeID{b, a})
	if u1 != u2 {
		t.Errorf("union is not commutative under canonical order: %d != %d", u1, u2)
	}
}

func TestUnionAssociativeAndFlattens(t *testing.T) {
	in := New()
	atoms := atom.New()
	a := in.LiteralString(atoms.Intern("a"))
	b := in.LiteralString(atoms.Intern("b"))
	c := in.LiteralString(atoms.Intern("c"))

	left := in.Union([]TypeID{in.Union([]TypeID{a, b}), c})
	right := in.Union([]TypeID{a, in.Union([]TypeID{b, c})})
	flat := in.Union([]TypeID{a, b, c})

	if left != right || left != flat {
		t.Errorf("union is not associative / does not flatten nested unions: left=%d right=%d flat=%d", left, right, flat)
	}
}

func TestIntersectionDropsUnknown(t *testing.T) {
	in := New()
	s := in.LiteralString(atom.New().Intern("x"))
	if got := in.Intersection([]TypeID{s, Unknown}); got != s {
		t.Errorf("intersection([T, unknown]) = %d, want %d", got, s)
	}
}

func TestIntersectionWithNeverIsNever(t *testing.T) {
	in := New()
	s := in.LiteralString(atom.New().Intern("x"))
	if got := in.Intersection([]TypeID{s, Never}); got != Never {
		t.Errorf("intersection([T, never]) = %d, want Never (%d)", got, Never)
	}
}

func TestIntersectionEmptyIsUnknown(t *testing.T) {
	in := New()
	if got := in.Intersection(nil); got != Unknown {
		t.Errorf("intersection([]) = %d, want Unknown (%d)", got, Unknown)
	}
}

func TestLiteralNumberDedupsNaNAndDistinguishesSignedZero(t *testing.T) {
	in := New()
	nan1 := in.LiteralNumber(nan())
	nan2 := in.LiteralNumber(nan())
	if nan1 != nan2 {
		t.Errorf("two interned NaN literals should still hash-cons to the same TypeID: %d != %d", nan1, nan2)
	}

	posZero := in.LiteralNumber(0.0)
	negZero := in.LiteralNumber(negZeroValue())
	if posZero == negZero {
		t.Error("+0 and -0 literal types must be distinct TypeIDs")
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func negZeroValue() float64 {
	var zero float64
	return -zero
}

func TestObjectShapePropertiesAreCanonicallySorted(t *testing.T) {
	in := New()
	atoms := atom.New()
	zName := atoms.Intern("z")
	aName := atoms.Intern("a")

	shape1 := []PropertyInfo{{Name: zName, ReadType: Number}, {Name: aName, ReadType: String}}
	shape2 := []PropertyInfo{{Name: aName, ReadType: String}, {Name: zName, ReadType: Number}}

	o1 := in.Object(shape1)
	o2 := in.Object(shape2)
	if o1 != o2 {
		t.Errorf("property declaration order should not affect object shape identity: %d != %d", o1, o2)
	}
}

func TestPropertyIndexCache(t *testing.T) {
	in := New()
	atoms := atom.New()
	props := make([]PropertyInfo, 0, 12)
	for i := range 12 {
		name := atoms.Intern(string(rune('a' + i)))
		props = append(props, PropertyInfo{Name: name, ReadType: Number})
	}
	objID := in.Object(props)
	key, _ := in.Lookup(objID)

	target := atoms.Intern("f")
	idx, ok := in.PropertyIndex(key.ObjectShape, uint32(target))
	if !ok {
		t.Fatal("expected to find property 'f'")
	}
	shape, _ := in.ObjectShapeByID(key.ObjectShape)
	if shape.Properties[idx].Name != target {
		t.Errorf("PropertyIndex returned wrong index %d", idx)
	}
}
