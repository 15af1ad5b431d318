package subtype

import (
	"tschecker/internal/atom"
	"tschecker/internal/diag"
	"tschecker/internal/types"
)

// checkObjectSubtype validates that a source object shape is a subtype of a
// target object shape: nominal fast path, private brand compatibility,
// then per-property compatibility for every target property. Grounded on
// objects.rs's check_object_subtype. sourceShapeID/hasSourceShapeID let
// lookupProperty use the interner's cached property index when the source
// came from a real ObjectShapeID (an apparent-primitive shape has none).
func (c *Checker) checkObjectSubtype(source types.ObjectShape, sourceShapeID types.ObjectShapeID, hasSourceShapeID bool, target types.ObjectShape, sourceID, targetID types.TypeID) (bool, *FailureReason) {
	if source.NominalOrigin != 0 && target.NominalOrigin != 0 && c.graph != nil {
		if c.graph.IsDerivedFrom(source.NominalOrigin, target.NominalOrigin) {
			return true, nil
		}
	}

	if !c.checkPrivateBrandCompatibility(source.Properties, target.Properties) {
		return false, &FailureReason{Code: diag.TypeMismatch, Source: sourceID, Target: targetID}
	}

	for _, tProp := range target.Properties {
		sProp, found := c.lookupProperty(source.Properties, sourceShapeID, hasSourceShapeID, tProp.Name)
		if !found {
			if tProp.Optional {
				continue
			}
			return false, &FailureReason{Code: diag.MissingProperty, Source: sourceID, Target: targetID, Property: tProp.Name}
		}
		if ok, reason := c.checkPropertyCompatibility(sProp, tProp); !ok {
			return false, wrapPropertyMismatch(sourceID, targetID, tProp.Name, reason)
		}
	}

	return true, nil
}

// lookupProperty finds name within props, consulting the interner's
// property-index cache when a real shape id is available.
func (c *Checker) lookupProperty(props []types.PropertyInfo, shapeID types.ObjectShapeID, hasShapeID bool, name atom.Atom) (types.PropertyInfo, bool) {
	if hasShapeID {
		if idx, ok := c.interner.PropertyIndex(shapeID, uint32(name)); ok {
			return props[idx], true
		}
	}
	for _, p := range props {
		if p.Name == name {
			return p, true
		}
	}
	return types.PropertyInfo{}, false
}

// checkPrivateBrandCompatibility implements objects.rs's
// check_private_brand_compatibility: if both sides carry a synthetic
// private-brand property, their names must match; otherwise there's no
// conflict.
func (c *Checker) checkPrivateBrandCompatibility(source, target []types.PropertyInfo) bool {
	sBrand, sFound := c.findPrivateBrand(source)
	tBrand, tFound := c.findPrivateBrand(target)
	if sFound && tFound {
		return sBrand == tBrand
	}
	return true
}

func (c *Checker) findPrivateBrand(props []types.PropertyInfo) (atom.Atom, bool) {
	for _, p := range props {
		if hasPrefix(c.atoms.Resolve(p.Name), privateBrandPrefix) {
			return p.Name, true
		}
	}
	return 0, false
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// checkPropertyCompatibility implements Rule #26 (split accessor variance):
// reads are covariant, writes are contravariant for properties whose read
// and write types genuinely differ, and readonly targets skip the write
// check entirely since nothing can be written through them. Grounded on
// objects.rs's check_property_compatibility.
func (c *Checker) checkPropertyCompatibility(source, target types.PropertyInfo) (bool, *FailureReason) {
	if source.Optional && !target.Optional {
		return false, &FailureReason{Code: diag.OptionalPropertyRequired}
	}
	if source.Readonly && !target.Readonly {
		return false, &FailureReason{Code: diag.ReadonlyPropertyMismatch}
	}

	allowBivariant := source.IsMethod || target.IsMethod

	sourceRead := c.optionalPropertyType(source)
	targetRead := c.optionalPropertyType(target)
	if ok, reason := c.checkSubtypeWithMethodVariance(sourceRead, targetRead, allowBivariant); !ok {
		return false, reason
	}

	hasSplitAccessor := source.WriteType != source.ReadType || target.WriteType != target.ReadType
	if !target.Readonly && hasSplitAccessor {
		sourceWrite := c.optionalPropertyWriteType(source)
		targetWrite := c.optionalPropertyWriteType(target)
		if ok, reason := c.checkSubtypeWithMethodVariance(targetWrite, sourceWrite, allowBivariant); !ok {
			return false, reason
		}
	}

	return true, nil
}

// checkSubtypeWithMethodVariance checks source ≤ target, but bivariantly
// (either direction suffices) when allowBivariant is set — the relaxation
// TypeScript grants method-position parameters/returns (spec.md §4.5,
// "bivariant for method positions").
func (c *Checker) checkSubtypeWithMethodVariance(source, target types.TypeID, allowBivariant bool) (bool, *FailureReason) {
	ok, reason := c.checkSubtype(source, target)
	if ok {
		return true, nil
	}
	if !allowBivariant {
		return false, reason
	}
	return c.checkSubtype(target, source)
}

// optionalPropertyType adds undefined to an optional property's read type
// unless exactOptionalPropertyTypes suppresses the relaxation.
func (c *Checker) optionalPropertyType(p types.PropertyInfo) types.TypeID {
	if p.Optional && !c.opts.ExactOptionalPropertyTypes {
		return c.interner.Union([]types.TypeID{p.ReadType, types.Undefined})
	}
	return p.ReadType
}

func (c *Checker) optionalPropertyWriteType(p types.PropertyInfo) types.TypeID {
	if p.Optional && !c.opts.ExactOptionalPropertyTypes {
		return c.interner.Union([]types.TypeID{p.WriteType, types.Undefined})
	}
	return p.WriteType
}

// checkStringIndexCompatibility implements objects.rs's
// check_string_index_compatibility.
func (c *Checker) checkStringIndexCompatibility(source, target types.ObjectShape) (bool, *FailureReason) {
	if target.StringIndex == nil {
		return true, nil
	}
	if source.StringIndex != nil {
		if source.StringIndex.Readonly && !target.StringIndex.Readonly {
			return false, &FailureReason{Code: diag.IndexSignatureMismatch}
		}
		return c.checkSubtype(source.StringIndex.ValueType, target.StringIndex.ValueType)
	}
	for _, prop := range source.Properties {
		if !target.StringIndex.Readonly && prop.Readonly {
			return false, &FailureReason{Code: diag.IndexSignatureMismatch, Property: prop.Name}
		}
		if ok, reason := c.checkSubtype(c.optionalPropertyType(prop), target.StringIndex.ValueType); !ok {
			return false, reason
		}
	}
	return true, nil
}

// checkNumberIndexCompatibility implements objects.rs's
// check_number_index_compatibility.
func (c *Checker) checkNumberIndexCompatibility(source, target types.ObjectShape) (bool, *FailureReason) {
	if target.NumberIndex == nil {
		return true, nil
	}
	if source.NumberIndex != nil {
		if source.NumberIndex.Readonly && !target.NumberIndex.Readonly {
			return false, &FailureReason{Code: diag.IndexSignatureMismatch}
		}
		return c.checkSubtype(source.NumberIndex.ValueType, target.NumberIndex.ValueType)
	}
	return true, nil
}

// checkObjectWithIndexSubtype implements objects.rs's
// check_object_with_index_subtype: named properties, then both index
// signatures, then every source property against the target's index
// signatures, then (if source has both) a self-consistency check that its
// own number index narrows into its own string index.
func (c *Checker) checkObjectWithIndexSubtype(source types.ObjectShape, sourceShapeID types.ObjectShapeID, hasSourceShapeID bool, target types.ObjectShape, sourceID, targetID types.TypeID) (bool, *FailureReason) {
	if ok, reason := c.checkObjectSubtype(source, sourceShapeID, hasSourceShapeID, target, sourceID, targetID); !ok {
		return false, reason
	}
	if ok, reason := c.checkStringIndexCompatibility(source, target); !ok {
		return false, reason
	}
	if ok, reason := c.checkNumberIndexCompatibility(source, target); !ok {
		return false, reason
	}
	if ok, reason := c.checkPropertiesAgainstIndexSignatures(source.Properties, target); !ok {
		return false, reason
	}
	if source.StringIndex != nil && source.NumberIndex != nil {
		if ok, _ := c.checkSubtype(source.NumberIndex.ValueType, source.StringIndex.ValueType); !ok {
			return false, &FailureReason{Code: diag.IndexSignatureMismatch, Source: sourceID, Target: targetID}
		}
	}
	return true, nil
}

// checkObjectWithIndexToObject implements objects.rs's
// check_object_with_index_to_object: a source with index signatures
// against a target with only named properties.
func (c *Checker) checkObjectWithIndexToObject(source types.ObjectShape, sourceShapeID types.ObjectShapeID, target []types.PropertyInfo, sourceID, targetID types.TypeID) (bool, *FailureReason) {
	for _, tProp := range target {
		sProp, found := c.lookupProperty(source.Properties, sourceShapeID, true, tProp.Name)
		if found {
			if ok, reason := c.checkPropertyCompatibility(sProp, tProp); !ok {
				return false, wrapPropertyMismatch(sourceID, targetID, tProp.Name, reason)
			}
			continue
		}
		if ok, reason := c.checkMissingPropertyAgainstIndexSignatures(source, tProp); !ok {
			return false, reason
		}
	}
	return true, nil
}

// checkMissingPropertyAgainstIndexSignatures implements objects.rs's
// check_missing_property_against_index_signatures: a target property
// absent from source's named properties can still be satisfied by one of
// source's index signatures.
func (c *Checker) checkMissingPropertyAgainstIndexSignatures(source types.ObjectShape, target types.PropertyInfo) (bool, *FailureReason) {
	checked := false
	targetType := c.optionalPropertyType(target)

	if isNumericPropertyName(c.atoms, target.Name) && source.NumberIndex != nil {
		checked = true
		if source.NumberIndex.Readonly && !target.Readonly {
			return false, &FailureReason{Code: diag.IndexSignatureMismatch, Property: target.Name}
		}
		if ok, reason := c.checkSubtypeWithMethodVariance(source.NumberIndex.ValueType, targetType, target.IsMethod); !ok {
			return false, reason
		}
	}

	if source.StringIndex != nil {
		checked = true
		if source.StringIndex.Readonly && !target.Readonly {
			return false, &FailureReason{Code: diag.IndexSignatureMismatch, Property: target.Name}
		}
		if ok, reason := c.checkSubtypeWithMethodVariance(source.StringIndex.ValueType, targetType, target.IsMethod); !ok {
			return false, reason
		}
	}

	if checked || target.Optional {
		return true, nil
	}
	return false, &FailureReason{Code: diag.MissingProperty, Property: target.Name}
}

// checkPropertiesAgainstIndexSignatures implements objects.rs's
// check_properties_against_index_signatures: every source property must
// satisfy a target index signature matching its key kind.
func (c *Checker) checkPropertiesAgainstIndexSignatures(source []types.PropertyInfo, target types.ObjectShape) (bool, *FailureReason) {
	if target.StringIndex == nil && target.NumberIndex == nil {
		return true, nil
	}

	for _, prop := range source {
		propType := c.optionalPropertyType(prop)

		if target.NumberIndex != nil && isNumericPropertyName(c.atoms, prop.Name) {
			if ok, reason := c.checkSubtypeWithMethodVariance(propType, target.NumberIndex.ValueType, prop.IsMethod); !ok {
				return false, reason
			}
			if !target.NumberIndex.Readonly && prop.Readonly {
				return false, &FailureReason{Code: diag.IndexSignatureMismatch, Property: prop.Name}
			}
		}

		if target.StringIndex != nil {
			if !target.StringIndex.Readonly && prop.Readonly {
				return false, &FailureReason{Code: diag.IndexSignatureMismatch, Property: prop.Name}
			}
			if ok, reason := c.checkSubtypeWithMethodVariance(propType, target.StringIndex.ValueType, prop.IsMethod); !ok {
				return false, reason
			}
		}
	}

	return true, nil
}

// checkObjectToIndexed implements objects.rs's check_object_to_indexed: a
// source with only named properties against a target index signature.
func (c *Checker) checkObjectToIndexed(source []types.PropertyInfo, sourceShapeID types.ObjectShapeID, target types.ObjectShape, sourceID, targetID types.TypeID) (bool, *FailureReason) {
	sourceShape := types.ObjectShape{Properties: source}
	if ok, reason := c.checkObjectSubtype(sourceShape, sourceShapeID, true, target, sourceID, targetID); !ok {
		return false, reason
	}
	return c.checkPropertiesAgainstIndexSignatures(source, target)
}

// wrapPropertyMismatch nests reason beneath a PropertyTypeMismatch keyed to
// name, so a diagnostic can report both "property x is incompatible" and
// the innermost cause (spec.md §4.5, "PropertyTypeMismatch that can nest a
// cause").
func wrapPropertyMismatch(sourceID, targetID types.TypeID, name atom.Atom, reason *FailureReason) *FailureReason {
	return &FailureReason{Code: diag.PropertyTypeMismatch, Source: sourceID, Target: targetID, Property: name, Cause: reason}
}
