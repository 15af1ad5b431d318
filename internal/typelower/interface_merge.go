package typelower

import (
	"tschecker/internal/atom"
	"tschecker/internal/extcore"
	"tschecker/internal/types"
)

// propertyMerge accumulates every declaration site's contribution to one
// merged interface member, grounded on original_source/src/solver/lower.rs's
// PropertyMerge/MethodOverloads shape (spec.md §4.2, "interface merging").
type propertyMerge struct {
	name         atom.Atom
	nonMethod    []types.PropertyInfo   // non-method property declarations seen for this name
	overloads    []types.FunctionShapeID // method signatures seen for this name, declaration order
	isMethod     bool
	sawNonMethod bool
}

// LowerInterface merges every declaration of one interface name into a
// single ObjectShape (or ObjectWithIndex, if any declaration carries an
// index signature). Each repeated method name becomes an overload set
// represented as a Callable property; a name declared both as a method and
// as a non-method property in different declarations — or as two
// incompatibly-typed non-method properties — produces a sentinel
// ERROR-typed property rather than picking one arbitrarily, so the
// conflict surfaces once at the property rather than silently resolving it
// (spec.md §4.2).
func (l *Lowering) LowerInterface(decls []extcore.NodeID) types.TypeID {
	order := make([]atom.Atom, 0)
	merges := make(map[atom.Atom]*propertyMerge)
	var stringIndex, numberIndex *types.IndexSignature

	for _, decl := range decls {
		if !l.tick() {
			break
		}
		members, _ := l.arena.InterfaceParts(decl)
		for _, m := range members {
			switch m.Kind {
			case extcore.MemberStringIndexSignature:
				sig := types.IndexSignature{KeyType: types.String, ValueType: l.LowerType(m.TypeNode), Readonly: m.Readonly}
				stringIndex = &sig
				continue
			case extcore.MemberNumberIndexSignature:
				sig := types.IndexSignature{KeyType: types.Number, ValueType: l.LowerType(m.TypeNode), Readonly: m.Readonly}
				numberIndex = &sig
				continue
			}

			pm, ok := merges[m.Name]
			if !ok {
				pm = &propertyMerge{name: m.Name}
				merges[m.Name] = pm
				order = append(order, m.Name)
			}

			if m.Kind == extcore.MemberMethod {
				pm.isMethod = true
				pm.overloads = append(pm.overloads, l.interner.InternFunctionShape(l.lowerFunctionSignature(m.Node, false, true)))
				continue
			}

			pm.sawNonMethod = true
			pm.nonMethod = append(pm.nonMethod, types.PropertyInfo{
				Name:     m.Name,
				ReadType: l.LowerType(m.TypeNode),
				Optional: m.Optional,
				Readonly: m.Readonly,
			})
		}
	}

	properties := make([]types.PropertyInfo, 0, len(order))
	for _, name := range order {
		properties = append(properties, l.resolveMerge(merges[name]))
	}

	if stringIndex != nil || numberIndex != nil {
		return l.interner.ObjectWithIndex(types.ObjectShape{
			Properties:  properties,
			StringIndex: stringIndex,
			NumberIndex: numberIndex,
		})
	}
	return l.interner.Object(properties)
}

// resolveMerge decides one merged property's final shape: a pure method
// name becomes a Callable overload set; a pure non-method name must agree
// across every declaration site (by TypeID) or becomes an ERROR sentinel;
// mixing method and non-method declarations for the same name is always a
// conflict.
func (l *Lowering) resolveMerge(pm *propertyMerge) types.PropertyInfo {
	switch {
	case pm.isMethod && pm.sawNonMethod:
		return types.PropertyInfo{Name: pm.name, ReadType: types.Error}

	case pm.isMethod:
		if len(pm.overloads) == 1 {
			return types.PropertyInfo{Name: pm.name, ReadType: l.interner.Function(mustShape(l.interner, pm.overloads[0])), IsMethod: true, Readonly: true}
		}
		callable := l.interner.Callable(types.CallableShape{CallSignatures: pm.overloads})
		return types.PropertyInfo{Name: pm.name, ReadType: callable, IsMethod: true, Readonly: true}

	default:
		first := pm.nonMethod[0]
		for _, other := range pm.nonMethod[1:] {
			if other.ReadType != first.ReadType {
				return types.PropertyInfo{Name: pm.name, ReadType: types.Error}
			}
		}
		return first
	}
}

func mustShape(in *types.Interner, id types.FunctionShapeID) types.FunctionShape {
	shape, _ := in.FunctionShapeByID(id)
	return shape
}
