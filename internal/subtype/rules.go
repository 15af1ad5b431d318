package subtype

import (
	"tschecker/internal/diag"
	"tschecker/internal/types"
)

// checkUnionSource implements spec.md §4.5's "A|B ≤ T iff every member ≤ T":
// a union source widens the obligation to every one of its members.
func (c *Checker) checkUnionSource(members []types.TypeID, source, target types.TypeID) (bool, *FailureReason) {
	for _, m := range members {
		if ok, reason := c.checkSubtype(m, target); !ok {
			return false, reason
		}
	}
	return true, nil
}

// checkUnionTarget implements "S ≤ A|B iff some member matches": a union
// target only needs one compatible member.
func (c *Checker) checkUnionTarget(source types.TypeID, members []types.TypeID, target types.TypeID) (bool, *FailureReason) {
	var last *FailureReason
	for _, m := range members {
		if ok, reason := c.checkSubtype(source, m); ok {
			return true, nil
		} else {
			last = reason
		}
	}
	if last != nil {
		return false, last
	}
	return false, &FailureReason{Code: diag.TypeMismatch, Source: source, Target: target}
}

// checkIntersectionSource implements "A&B ≤ T iff some member ≤ T": any one
// intersection member satisfying the target is enough (the intersected
// value genuinely has every member's capabilities, so having just one of
// them suffice for T is sound).
func (c *Checker) checkIntersectionSource(members []types.TypeID, source, target types.TypeID) (bool, *FailureReason) {
	var last *FailureReason
	for _, m := range members {
		if ok, reason := c.checkSubtype(m, target); ok {
			return true, nil
		} else {
			last = reason
		}
	}
	if last != nil {
		return false, last
	}
	return false, &FailureReason{Code: diag.TypeMismatch, Source: source, Target: target}
}

// checkIntersectionTarget implements "S ≤ A&B iff every member of A&B is a
// supertype": to satisfy an intersection, source must satisfy each of its
// members independently.
func (c *Checker) checkIntersectionTarget(source types.TypeID, members []types.TypeID, target types.TypeID) (bool, *FailureReason) {
	for _, m := range members {
		if ok, reason := c.checkSubtype(source, m); !ok {
			return false, reason
		}
	}
	return true, nil
}

// checkTupleSubtype checks tuple-to-tuple assignability: arity (source must
// supply every target position the target requires, and may not have more
// elements than an unbounded target can accept), then each position
// element-wise, with a target rest element absorbing every remaining source
// position. Grounded on spec.md §4.5's tuple/rest-parameter prose (tuples
// aren't covered by the retrieved subtype_rules/ files).
func (c *Checker) checkTupleSubtype(source, target []types.TupleElement, sourceID, targetID types.TypeID) (bool, *FailureReason) {
	targetRequired := 0
	targetHasRest := false
	for _, e := range target {
		if e.Rest {
			targetHasRest = true
			break
		}
		if !e.Optional {
			targetRequired++
		}
	}
	sourceHasRest := len(source) > 0 && source[len(source)-1].Rest

	if len(source) < targetRequired {
		return false, &FailureReason{Code: diag.TupleElementMismatch, Source: sourceID, Target: targetID}
	}
	if !targetHasRest && !sourceHasRest && len(source) > len(target) {
		return false, &FailureReason{Code: diag.TupleElementMismatch, Source: sourceID, Target: targetID}
	}

	for i, tElem := range target {
		if tElem.Rest {
			for j := i; j < len(source); j++ {
				if ok, reason := c.checkSubtype(source[j].Type, tElem.Type); !ok {
					return false, wrapTupleElementMismatch(sourceID, targetID, reason)
				}
			}
			return true, nil
		}
		if i >= len(source) {
			if tElem.Optional {
				continue
			}
			return false, &FailureReason{Code: diag.TupleElementMismatch, Source: sourceID, Target: targetID}
		}
		sElem := source[i]
		if sElem.Optional && !tElem.Optional {
			return false, &FailureReason{Code: diag.TupleElementMismatch, Source: sourceID, Target: targetID}
		}
		if ok, reason := c.checkSubtype(sElem.Type, tElem.Type); !ok {
			return false, wrapTupleElementMismatch(sourceID, targetID, reason)
		}
	}
	return true, nil
}

func wrapTupleElementMismatch(sourceID, targetID types.TypeID, cause *FailureReason) *FailureReason {
	return &FailureReason{Code: diag.TupleElementTypeMismatch, Source: sourceID, Target: targetID, Cause: cause}
}

// checkTupleToArray checks a tuple source against an array target: every
// element's type must widen into the array's element type.
func (c *Checker) checkTupleToArray(source []types.TupleElement, targetElem, sourceID, targetID types.TypeID) (bool, *FailureReason) {
	for _, e := range source {
		if ok, reason := c.checkSubtype(e.Type, targetElem); !ok {
			return false, &FailureReason{Code: diag.ArrayElementMismatch, Source: sourceID, Target: targetID, Cause: reason}
		}
	}
	return true, nil
}

// checkFunctionSubtype implements spec.md §4.5's function rule: return type
// covariant, parameters contravariant (bivariant for method positions, or
// whenever strictFunctionTypes is off), rest parameters exchanged against
// the other side's fixed parameters via their element type, and `this`
// treated as a contravariant implicit parameter.
func (c *Checker) checkFunctionSubtype(source, target types.FunctionShape, sourceID, targetID types.TypeID) (bool, *FailureReason) {
	sourceRequired := 0
	for _, p := range source.Params {
		if p.Optional || p.Rest {
			break
		}
		sourceRequired++
	}
	targetHasRest := len(target.Params) > 0 && target.Params[len(target.Params)-1].Rest
	if !targetHasRest && len(target.Params) < sourceRequired {
		return false, &FailureReason{Code: diag.TooManyParameters, Source: sourceID, Target: targetID}
	}

	bivariant := source.IsMethod || target.IsMethod || !c.opts.StrictFunctionTypes

	fixed := len(source.Params)
	if len(target.Params) < fixed {
		fixed = len(target.Params)
	}
	for i := 0; i < fixed; i++ {
		sp, tp := source.Params[i], target.Params[i]
		if ok, reason := c.checkSubtypeWithMethodVariance(tp.Type, sp.Type, bivariant); !ok {
			return false, reason
		}
	}

	sourceHasRest := len(source.Params) > 0 && source.Params[len(source.Params)-1].Rest
	if sourceHasRest && len(target.Params) > fixed {
		restType := source.Params[len(source.Params)-1].Type
		for i := fixed; i < len(target.Params); i++ {
			tp := target.Params[i]
			if tp.Rest {
				if ok, reason := c.checkSubtypeWithMethodVariance(tp.Type, restType, bivariant); !ok {
					return false, reason
				}
				break
			}
			if ok, reason := c.checkSubtypeWithMethodVariance(tp.Type, restType, bivariant); !ok {
				return false, reason
			}
		}
	}

	if source.HasThis && target.HasThis {
		if ok, reason := c.checkSubtypeWithMethodVariance(target.This, source.This, bivariant); !ok {
			return false, reason
		}
	}

	return c.checkSubtype(source.Return, target.Return)
}

// checkCallableSubtype implements spec.md §4.5's callable rule: every
// target call/construct signature must be matched by at least one
// compatible source signature, and the attached property bag follows the
// same rule a plain object would.
func (c *Checker) checkCallableSubtype(sourceID, targetID types.CallableShapeID, srcType, tgtType types.TypeID) (bool, *FailureReason) {
	sShape, sOk := c.interner.CallableShapeByID(sourceID)
	tShape, tOk := c.interner.CallableShapeByID(targetID)
	if !sOk || !tOk {
		return false, &FailureReason{Code: diag.TypeMismatch, Source: srcType, Target: tgtType}
	}

	if ok, reason := c.checkSignatureSet(sShape.CallSignatures, tShape.CallSignatures, srcType, tgtType); !ok {
		return false, reason
	}
	if ok, reason := c.checkSignatureSet(sShape.ConstructSignatures, tShape.ConstructSignatures, srcType, tgtType); !ok {
		return false, reason
	}

	sourceObj := types.ObjectShape{Properties: sShape.Properties, StringIndex: sShape.StringIndex, NumberIndex: sShape.NumberIndex}
	targetObj := types.ObjectShape{Properties: tShape.Properties, StringIndex: tShape.StringIndex, NumberIndex: tShape.NumberIndex}
	if targetObj.StringIndex != nil || targetObj.NumberIndex != nil {
		return c.checkObjectWithIndexSubtype(sourceObj, 0, false, targetObj, srcType, tgtType)
	}
	return c.checkObjectSubtype(sourceObj, 0, false, targetObj, srcType, tgtType)
}

// checkSignatureSet requires every signature in target to be matched by at
// least one compatible signature in source.
func (c *Checker) checkSignatureSet(source, target []types.FunctionShapeID, srcType, tgtType types.TypeID) (bool, *FailureReason) {
	for _, tSigID := range target {
		tSig, ok := c.interner.FunctionShapeByID(tSigID)
		if !ok {
			continue
		}
		matched := false
		for _, sSigID := range source {
			sSig, ok := c.interner.FunctionShapeByID(sSigID)
			if !ok {
				continue
			}
			if ok, _ := c.checkFunctionSubtype(sSig, tSig, srcType, tgtType); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false, &FailureReason{Code: diag.NoMatchingSignature, Source: srcType, Target: tgtType}
		}
	}
	return true, nil
}
