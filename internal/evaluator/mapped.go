package evaluator

import (
	"tschecker/internal/atom"
	"tschecker/internal/types"
)

// EvaluateMapped expands a mapped type's key set and, for each key,
// substitutes it into the template, applies the optional/readonly
// modifiers (inheriting per-key from the homomorphic source when
// applicable), and remaps the key via the `as` clause if present (spec.md
// §4.3).
func (e *Evaluator) EvaluateMapped(t types.TypeID) types.TypeID {
	key, ok := e.interner.Lookup(t)
	if !ok || key.Kind != types.KindMapped {
		return t
	}
	m, ok := e.interner.MappedByID(key.Mapped)
	if !ok {
		return types.Error
	}

	keys, keySetHasString, keySetHasNumber, concrete := e.mappedKeySet(m.Constraint)
	if !concrete {
		return e.interner.Mapped(m) // constraint not yet concrete: stays deferred
	}
	if len(keys) > MaxMappedKeySet {
		return types.Error
	}

	paramID := e.mappedIterationVar(m)

	var sourceShape types.ObjectShape
	haveSourceShape := false
	if m.IsHomomorphic {
		if sk, ok := e.interner.Lookup(m.HomomorphicSource); ok && (sk.Kind == types.KindObject || sk.Kind == types.KindObjectWithIndex) {
			sourceShape, _ = e.interner.ObjectShapeByID(sk.ObjectShape)
			haveSourceShape = true
		}
	}

	properties := make([]types.PropertyInfo, 0, len(keys))
	for _, k := range keys {
		propType := e.EvaluateType(e.substituteSingle(m.Template, paramID, e.interner.LiteralString(k)))

		name := k
		if m.NameType != 0 {
			remapped := e.EvaluateType(e.substituteSingle(m.NameType, paramID, e.interner.LiteralString(k)))
			if remapped == types.Never {
				continue // `as never` drops the key entirely
			}
			if rk, ok := e.interner.Lookup(remapped); ok && rk.Kind == types.KindLiteralString {
				name = rk.LitString
			}
		}

		optional := m.OptionalMod == types.ModifierAdd
		readonly := m.ReadonlyMod == types.ModifierAdd
		if haveSourceShape {
			for _, sp := range sourceShape.Properties {
				if sp.Name != k {
					continue
				}
				if m.OptionalMod == types.ModifierPreserve {
					optional = sp.Optional
				}
				if m.ReadonlyMod == types.ModifierPreserve {
					readonly = sp.Readonly
				}
				break
			}
		}
		if m.OptionalMod == types.ModifierRemove {
			optional = false
		}
		if m.ReadonlyMod == types.ModifierRemove {
			readonly = false
		}

		properties = append(properties, types.PropertyInfo{
			Name:     name,
			ReadType: propType,
			Optional: optional,
			Readonly: readonly,
		})
	}

	if !keySetHasString && !keySetHasNumber {
		return e.interner.Object(properties)
	}

	shape := types.ObjectShape{Properties: properties}
	if keySetHasString {
		shape.StringIndex = &types.IndexSignature{KeyType: types.String, ValueType: e.EvaluateType(e.substituteSingle(m.Template, paramID, types.String))}
	}
	if keySetHasNumber {
		shape.NumberIndex = &types.IndexSignature{KeyType: types.Number, ValueType: e.EvaluateType(e.substituteSingle(m.Template, paramID, types.Number))}
	}
	return e.interner.ObjectWithIndex(shape)
}

// mappedIterationVar recovers the TypeParameter TypeID the mapped type's
// Template/NameType reference for its iteration variable K. Lowering always
// constructs this as a fresh TypeParameter bound to m.ParamName within the
// mapped type's own scope, so scanning Template for the first TypeParameter
// matching that name recovers it; adequate because a mapped type's own
// scope introduces exactly one parameter name.
func (e *Evaluator) mappedIterationVar(m types.MappedType) types.TypeID {
	var found types.TypeID
	visited := make(map[types.TypeID]bool)
	var walk func(t types.TypeID)
	walk = func(t types.TypeID) {
		if found != 0 || visited[t] {
			return
		}
		visited[t] = true
		key, ok := e.interner.Lookup(t)
		if !ok {
			return
		}
		if key.Kind == types.KindTypeParameter && key.Param.Name == m.ParamName {
			found = t
			return
		}
		e.walkChildren(key, walk)
	}
	walk(m.Template)
	return found
}

// mappedKeySet extracts the constraint's concrete key set: a union (or
// singleton) of string literals, optionally augmented by bare
// `string`/`number` flags when the constraint is `keyof` of a type with an
// index signature. Returns concrete=false when the constraint isn't
// resolved enough yet to expand.
func (e *Evaluator) mappedKeySet(constraint types.TypeID) (keys []atom.Atom, hasString, hasNumber, concrete bool) {
	resolved := e.EvaluateType(constraint)

	var members []types.TypeID
	if key, ok := e.interner.Lookup(resolved); ok && key.Kind == types.KindUnion {
		members = e.interner.TypeList(key.TypeList)
	} else {
		members = []types.TypeID{resolved}
	}

	for _, mem := range members {
		switch mem {
		case types.String:
			hasString = true
			continue
		case types.Number:
			hasNumber = true
			continue
		}
		key, ok := e.interner.Lookup(mem)
		if !ok || key.Kind != types.KindLiteralString {
			return nil, false, false, false
		}
		keys = append(keys, key.LitString)
	}
	return keys, hasString, hasNumber, true
}
