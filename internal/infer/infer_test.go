package infer

import (
	"testing"

	"tschecker/internal/atom"
	"tschecker/internal/diag"
	"tschecker/internal/types"
)

func newFixture() (*types.Interner, *atom.Interner, *Context) {
	interner := types.New()
	atoms := atom.New()
	return interner, atoms, New(interner)
}

// stubSubtype is a minimal assignability decider good enough for these
// tests: identity, Never as bottom, Any/Unknown as top, and literal-to-base
// widening. It stands in for internal/subtype.Checker.IsSubtype, which
// production callers wire in instead (see DESIGN.md).
func stubSubtype(in *types.Interner) SubtypeFunc {
	return func(source, target types.TypeID) bool {
		if source == target || source == types.Never || target == types.Unknown || target == types.Any {
			return true
		}
		if source == types.True || source == types.False {
			source = types.Boolean
		}
		if key, ok := in.Lookup(source); ok {
			switch key.Kind {
			case types.KindLiteralString:
				if target == types.String {
					return true
				}
			case types.KindLiteralNumber:
				if target == types.Number {
					return true
				}
			case types.KindLiteralBoolean:
				if target == types.Boolean {
					return true
				}
			}
		}
		if key, ok := in.Lookup(target); ok && key.Kind == types.KindUnion {
			for _, m := range in.TypeList(key.TypeList) {
				if source == m {
					return true
				}
			}
		}
		return false
	}
}

func TestUnifyVarTypeResolvesUnconstrainedVar(t *testing.T) {
	_, _, ctx := newFixture()
	v := ctx.FreshVar()
	if err := ctx.UnifyVarType(v, types.String); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ty, ok := ctx.Probe(v)
	if !ok || ty != types.String {
		t.Fatalf("expected var resolved to String, got %v (ok=%v)", ty, ok)
	}
}

func TestUnifyVarTypeConflictsOnIncompatibleSecondAssignment(t *testing.T) {
	_, _, ctx := newFixture()
	v := ctx.FreshVar()
	if err := ctx.UnifyVarType(v, types.String); err != nil {
		t.Fatalf("unexpected error on first unify: %v", err)
	}
	err := ctx.UnifyVarType(v, types.Number)
	if err == nil {
		t.Fatalf("expected a conflict error unifying String then Number")
	}
	ie, ok := err.(*Error)
	if !ok || ie.Code != diag.InferenceConflict {
		t.Fatalf("expected InferenceConflict, got %v", err)
	}
}

func TestUnifyVarTypeOccursCheckRejectsSelfReference(t *testing.T) {
	in, atoms, ctx := newFixture()
	name := atoms.Intern("T")
	v := ctx.FreshTypeParam(name)
	param := in.TypeParameter(types.TypeParamInfo{Name: name})
	arr := in.Array(param)

	err := ctx.UnifyVarType(v, arr)
	if err == nil {
		t.Fatalf("expected occurs-check error unifying T with T[]")
	}
	ie, ok := err.(*Error)
	if !ok || ie.Code != diag.OccursCheck {
		t.Fatalf("expected OccursCheck, got %v", err)
	}
}

func TestUnifyVarsMergesConstraintsIntoSharedRoot(t *testing.T) {
	_, _, ctx := newFixture()
	a := ctx.FreshVar()
	b := ctx.FreshVar()
	ctx.AddLowerBound(a, types.String)
	ctx.AddUpperBound(b, types.Number)

	if err := ctx.UnifyVars(a, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cs, ok := ctx.GetConstraints(a)
	if !ok {
		t.Fatalf("expected merged constraints to be visible from either variable")
	}
	if len(cs.Lower) != 1 || cs.Lower[0] != types.String {
		t.Fatalf("expected merged lower bound [String], got %v", cs.Lower)
	}
	if len(cs.Upper) != 1 || cs.Upper[0] != types.Number {
		t.Fatalf("expected merged upper bound [Number], got %v", cs.Upper)
	}
}

func TestInferFromTypeFindsTypeParamInArrayElement(t *testing.T) {
	in, atoms, ctx := newFixture()
	name := atoms.Intern("T")
	v := ctx.FreshTypeParam(name)
	param := in.TypeParameter(types.TypeParamInfo{Name: name})
	arr := in.Array(param)

	ctx.InferFromType(v, arr)

	// InferFromType alone doesn't add bounds for the bare type-parameter
	// occurrence (see the doc comment on InferFromType); it's the caller's
	// job to add the lower bound once it knows what flowed into the array
	// position. This test only confirms the occurs-check-gated recursion
	// actually reaches the array element without panicking or looping.
	if !ctx.occursIn(ctx.find(v), arr) {
		t.Fatalf("expected arr to be recognized as containing T")
	}
}

func TestResolveWithConstraintsPicksBestCommonTypeFromLowerBounds(t *testing.T) {
	in, atoms, ctx := newFixture()
	name := atoms.Intern("T")
	v := ctx.FreshTypeParam(name)
	hello := in.LiteralString(atoms.Intern("hello"))
	world := in.LiteralString(atoms.Intern("world"))
	ctx.AddLowerBound(v, hello)
	ctx.AddLowerBound(v, world)

	ty, err := ctx.ResolveWithConstraints(v, stubSubtype(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ty != types.String {
		t.Fatalf("expected literal lower bounds to widen to String, got %v", ty)
	}
}

func TestResolveWithConstraintsSingleLowerBoundIsExact(t *testing.T) {
	_, _, ctx := newFixture()
	v := ctx.FreshVar()
	ctx.AddLowerBound(v, types.String)

	ty, err := ctx.ResolveWithConstraints(v, stubSubtype(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ty != types.String {
		t.Fatalf("expected String, got %v", ty)
	}
}

func TestResolveWithConstraintsUsesUpperBoundWhenNoLowerBounds(t *testing.T) {
	_, _, ctx := newFixture()
	v := ctx.FreshVar()
	ctx.AddUpperBound(v, types.Number)

	ty, err := ctx.ResolveWithConstraints(v, stubSubtype(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ty != types.Number {
		t.Fatalf("expected sole upper bound Number, got %v", ty)
	}
}

func TestResolveWithConstraintsNoConstraintsResolvesUnknown(t *testing.T) {
	_, _, ctx := newFixture()
	v := ctx.FreshVar()
	ty, err := ctx.ResolveWithConstraints(v, stubSubtype(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ty != types.Unknown {
		t.Fatalf("expected Unknown for a totally unconstrained var, got %v", ty)
	}
}

func TestResolveWithConstraintsRejectsLowerBoundNotAssignableToUpperBound(t *testing.T) {
	_, _, ctx := newFixture()
	v := ctx.FreshVar()
	ctx.AddLowerBound(v, types.String)
	ctx.AddUpperBound(v, types.Number)

	_, err := ctx.ResolveWithConstraints(v, stubSubtype(nil))
	if err == nil {
		t.Fatalf("expected a bounds violation: String lower bound is not assignable to Number upper bound")
	}
	ie, ok := err.(*Error)
	if !ok || ie.Code != diag.BoundsViolation {
		t.Fatalf("expected BoundsViolation, got %v", err)
	}
}

func TestResolveWithConstraintsDropsTopTypeLowerBoundsOnceAnUpperBoundExists(t *testing.T) {
	_, _, ctx := newFixture()
	v := ctx.FreshVar()
	ctx.AddLowerBound(v, types.Any)
	ctx.AddUpperBound(v, types.String)

	ty, err := ctx.ResolveWithConstraints(v, stubSubtype(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ty != types.String {
		t.Fatalf("expected Any to be filtered out once an upper bound exists, leaving the upper bound itself (String), got %v", ty)
	}
}

func TestResolveAllWithConstraintsResolvesEveryRegisteredParam(t *testing.T) {
	_, atoms, ctx := newFixture()
	tName := atoms.Intern("T")
	uName := atoms.Intern("U")
	tVar := ctx.FreshTypeParam(tName)
	uVar := ctx.FreshTypeParam(uName)
	ctx.AddLowerBound(tVar, types.String)
	ctx.AddLowerBound(uVar, types.Number)

	results, err := ctx.ResolveAllWithConstraints(stubSubtype(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 || results[0].Type != types.String || results[1].Type != types.Number {
		t.Fatalf("expected [T=String, U=Number], got %v", results)
	}
}

func TestComputeVarianceCovariantInArrayElement(t *testing.T) {
	in, atoms, ctx := newFixture()
	name := atoms.Intern("T")
	param := in.TypeParameter(types.TypeParamInfo{Name: name})
	arr := in.Array(param)

	counts := ctx.ComputeVariance(arr, name)
	if counts.Covariant != 1 || counts.Contravariant != 0 {
		t.Fatalf("expected one covariant occurrence, got %+v", counts)
	}
	if ctx.GetVariance(arr, name) != "covariant" {
		t.Fatalf("expected GetVariance to report covariant")
	}
}

func TestComputeVarianceContravariantInFunctionParameter(t *testing.T) {
	in, atoms, ctx := newFixture()
	name := atoms.Intern("T")
	param := in.TypeParameter(types.TypeParamInfo{Name: name})
	fn := in.Function(types.FunctionShape{
		Params: []types.ParamInfo{{Name: atoms.Intern("x"), Type: param}},
		Return: types.Void,
	})

	counts := ctx.ComputeVariance(fn, name)
	if counts.Contravariant != 1 || counts.Covariant != 0 {
		t.Fatalf("expected one contravariant occurrence, got %+v", counts)
	}
	if ctx.GetVariance(fn, name) != "contravariant" {
		t.Fatalf("expected GetVariance to report contravariant")
	}
}

func TestComputeVarianceBothPositionsReportsInvariant(t *testing.T) {
	in, atoms, ctx := newFixture()
	name := atoms.Intern("T")
	param := in.TypeParameter(types.TypeParamInfo{Name: name})
	// A function parameter (contravariant) whose return type is also T
	// (covariant) exercises both polarities in one type.
	fn := in.Function(types.FunctionShape{
		Params: []types.ParamInfo{{Name: atoms.Intern("x"), Type: param}},
		Return: param,
	})

	if ctx.GetVariance(fn, name) != "invariant" {
		t.Fatalf("expected covariant+contravariant occurrences to report invariant")
	}
}

func TestComputeVarianceMutablePropertyReadTypeIsCovariant(t *testing.T) {
	in, atoms, ctx := newFixture()
	name := atoms.Intern("T")
	param := in.TypeParameter(types.TypeParamInfo{Name: name})
	obj := in.Object([]types.PropertyInfo{
		{Name: atoms.Intern("value"), ReadType: param, WriteType: types.String, Readonly: false},
	})

	counts := ctx.ComputeVariance(obj, name)
	if counts.Covariant != 1 {
		t.Fatalf("expected the read type occurrence to count as covariant, got %+v", counts)
	}
}

func TestValidateVarianceRejectsSelfReferentialResolution(t *testing.T) {
	in, atoms, ctx := newFixture()
	name := atoms.Intern("T")
	v := ctx.FreshTypeParam(name)
	param := in.TypeParameter(types.TypeParamInfo{Name: name})
	arr := in.Array(param)

	// Force-resolve v to an array of itself without going through
	// UnifyVarType (which would have caught this), to exercise
	// ValidateVariance's own independent occurs-check sweep.
	root := ctx.find(v)
	ctx.entries[root].value.resolved = true
	ctx.entries[root].value.ty = arr

	err := ctx.ValidateVariance()
	if err == nil {
		t.Fatalf("expected ValidateVariance to reject T resolved to T[]")
	}
	ie, ok := err.(*Error)
	if !ok || ie.Code != diag.OccursCheck {
		t.Fatalf("expected OccursCheck, got %v", err)
	}
}

func TestStrengthenConstraintsPropagatesUpperBoundThroughChainedParam(t *testing.T) {
	in, atoms, ctx := newFixture()
	tName := atoms.Intern("T")
	uName := atoms.Intern("U")
	tVar := ctx.FreshTypeParam(tName)
	uVar := ctx.FreshTypeParam(uName)
	tParam := in.TypeParameter(types.TypeParamInfo{Name: tName})

	// U's lower bound is T (as a type reference), and T itself has an
	// upper bound of String; after strengthening, U should also carry
	// String as an upper bound.
	ctx.AddLowerBound(uVar, tParam)
	ctx.AddUpperBound(tVar, types.String)

	ctx.StrengthenConstraints()

	cs, ok := ctx.GetConstraints(uVar)
	if !ok {
		t.Fatalf("expected U to have constraints")
	}
	found := false
	for _, u := range cs.Upper {
		if u == types.String {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected U's upper bounds to include String propagated from T, got %v", cs.Upper)
	}
}
