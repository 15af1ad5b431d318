package subtype

import (
	"math"
	"strconv"
	"strings"

	"tschecker/internal/diag"
	"tschecker/internal/types"
)

// checkLiteralSource checks a literal source (string/number/boolean/bigint,
// including the True/False intrinsics a boolean literal widens from) against
// whatever target it's paired with: a matching template literal, or its base
// intrinsic. Grounded on literals.rs's check_literal_to_intrinsic and
// check_literal_matches_template_literal.
func (c *Checker) checkLiteralSource(sourceKey types.TypeKey, source, target types.TypeID, targetKey types.TypeKey, targetOK bool) (bool, *FailureReason) {
	if targetOK && targetKey.Kind == types.KindTemplateLiteral {
		str, ok := c.literalAsString(sourceKey)
		if ok {
			spans := c.interner.TemplateByID(targetKey.Template)
			if c.matchTemplateLiteralRecursive(str, spans, 0) {
				return true, nil
			}
		}
		return false, &FailureReason{Code: diag.LiteralTypeMismatch, Source: source, Target: target}
	}

	if target == c.literalBaseIntrinsic(sourceKey.Kind) {
		return true, nil
	}
	return false, &FailureReason{Code: diag.LiteralTypeMismatch, Source: source, Target: target}
}

// literalBaseIntrinsic is the widened intrinsic a literal of kind belongs to.
func (c *Checker) literalBaseIntrinsic(kind types.Kind) types.TypeID {
	switch kind {
	case types.KindLiteralString:
		return types.String
	case types.KindLiteralNumber:
		return types.Number
	case types.KindLiteralBoolean:
		return types.Boolean
	case types.KindLiteralBigInt:
		return types.BigInt
	default:
		return types.Error
	}
}

// literalAsString renders a literal TypeKey the way it appears when spliced
// into a template literal string.
func (c *Checker) literalAsString(key types.TypeKey) (string, bool) {
	switch key.Kind {
	case types.KindLiteralString:
		return c.atoms.Resolve(key.LitString), true
	case types.KindLiteralNumber:
		return formatNumberForTemplate(math.Float64frombits(key.LitNumberBits)), true
	case types.KindLiteralBigInt:
		return c.atoms.Resolve(key.LitBigInt), true
	case types.KindLiteralBoolean:
		if key.LitBool {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

// formatNumberForTemplate approximates JS's Number-to-string conversion for
// splicing a numeric literal into a template literal. literals.rs's own
// format_number_for_template wasn't part of the retrieved excerpt. A value
// whose magnitude is 0 or lies in [1e-6, 1e21) is written in plain decimal
// with shortest round-trip precision, as JS does; any other value uses Go's
// 'g' exponent form, whose exponent spelling ("1e-07") differs from JS's
// ("1e-7").
func formatNumberForTemplate(v float64) string {
	if abs := math.Abs(v); abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// matchTemplateLiteralRecursive implements literals.rs's
// match_template_literal_recursive: remaining is fully consumed once every
// span is, a Text span must literally prefix-match, and a Type span
// dispatches by the interpolated type's shape.
func (c *Checker) matchTemplateLiteralRecursive(remaining string, spans []types.TemplateSpan, spanIdx int) bool {
	if spanIdx == len(spans) {
		return remaining == ""
	}
	span := spans[spanIdx]
	if span.Which == types.TemplateText {
		text := c.atoms.Resolve(span.Text)
		if !strings.HasPrefix(remaining, text) {
			return false
		}
		return c.matchTemplateLiteralRecursive(remaining[len(text):], spans, spanIdx+1)
	}
	return c.matchTemplateSpanType(remaining, span.Type, spans, spanIdx)
}

// matchTemplateSpanType dispatches an interpolated Type span: a bare
// intrinsic gets its wildcard matcher, a literal gets an exact-prefix match,
// a union tries each member, and anything else is evaluated first in case it
// resolves down to one of those (literals.rs's apparent_primitive_kind_for_type
// fallback).
func (c *Checker) matchTemplateSpanType(remaining string, typ types.TypeID, spans []types.TemplateSpan, spanIdx int) bool {
	typ = c.eval.EvaluateType(typ)

	switch typ {
	case types.String:
		return c.matchStringWildcard(remaining, spans, spanIdx)
	case types.Number:
		return c.matchNumberPattern(remaining, spans, spanIdx)
	case types.BigInt:
		return c.matchBigintPattern(remaining, spans, spanIdx)
	case types.Boolean:
		return c.matchBooleanPattern(remaining, spans, spanIdx)
	case types.True:
		return matchExactThenRest(c, remaining, "true", spans, spanIdx)
	case types.False:
		return matchExactThenRest(c, remaining, "false", spans, spanIdx)
	}

	key, ok := c.interner.Lookup(typ)
	if !ok {
		return false
	}
	switch key.Kind {
	case types.KindLiteralString:
		return matchExactThenRest(c, remaining, c.atoms.Resolve(key.LitString), spans, spanIdx)
	case types.KindLiteralNumber:
		return matchExactThenRest(c, remaining, formatNumberForTemplate(math.Float64frombits(key.LitNumberBits)), spans, spanIdx)
	case types.KindLiteralBigInt:
		return matchExactThenRest(c, remaining, c.atoms.Resolve(key.LitBigInt), spans, spanIdx)
	case types.KindLiteralBoolean:
		if key.LitBool {
			return matchExactThenRest(c, remaining, "true", spans, spanIdx)
		}
		return matchExactThenRest(c, remaining, "false", spans, spanIdx)
	case types.KindUnion:
		return c.matchUnionPattern(remaining, c.interner.TypeList(key.TypeList), spans, spanIdx)
	default:
		return false
	}
}

func matchExactThenRest(c *Checker, remaining, text string, spans []types.TemplateSpan, spanIdx int) bool {
	if !strings.HasPrefix(remaining, text) {
		return false
	}
	return c.matchTemplateLiteralRecursive(remaining[len(text):], spans, spanIdx+1)
}

// matchUnionPattern implements literals.rs's match_union_pattern: the union
// matches if any member's own pattern matches at this position.
func (c *Checker) matchUnionPattern(remaining string, members []types.TypeID, spans []types.TemplateSpan, spanIdx int) bool {
	for _, m := range members {
		if c.matchTemplateSpanType(remaining, m, spans, spanIdx) {
			return true
		}
	}
	return false
}

// matchStringWildcard implements literals.rs's match_string_wildcard. A
// trailing `${string}` consumes everything left. Otherwise, when the very
// next span is literal text, it anchors on each occurrence of that text
// (plus the zero-length split); lacking an immediately adjacent text anchor,
// it brute-forces every split length, recursing through whatever span comes
// next (covers adjacent interpolations like `${string}${number}`, which
// find_next_text_span's single-hop lookahead can't anchor on directly).
func (c *Checker) matchStringWildcard(remaining string, spans []types.TemplateSpan, spanIdx int) bool {
	if spanIdx == len(spans)-1 {
		return true
	}

	if text, ok := c.findNextTextSpan(spans, spanIdx+1); ok {
		start := 0
		for {
			idx := strings.Index(remaining[start:], text)
			if idx < 0 {
				break
			}
			pos := start + idx
			if c.matchTemplateLiteralRecursive(remaining[pos:], spans, spanIdx+1) {
				return true
			}
			start = pos + 1
		}
		return c.matchTemplateLiteralRecursive(remaining, spans, spanIdx+1)
	}

	for l := 0; l <= len(remaining); l++ {
		if c.matchTemplateLiteralRecursive(remaining[l:], spans, spanIdx+1) {
			return true
		}
	}
	return false
}

func (c *Checker) findNextTextSpan(spans []types.TemplateSpan, idx int) (string, bool) {
	if idx < len(spans) && spans[idx].Which == types.TemplateText {
		return c.atoms.Resolve(spans[idx].Text), true
	}
	return "", false
}

// matchNumberPattern implements literals.rs's match_number_pattern: the
// longest valid numeric prefix of remaining, then progressively shorter
// valid prefixes, each recursing on the rest of the spans.
func (c *Checker) matchNumberPattern(remaining string, spans []types.TemplateSpan, spanIdx int) bool {
	maxLen := findNumberLength(remaining)
	for l := maxLen; l >= 1; l-- {
		if !isValidNumber(remaining[:l]) {
			continue
		}
		if c.matchTemplateLiteralRecursive(remaining[l:], spans, spanIdx+1) {
			return true
		}
	}
	return false
}

// matchBigintPattern implements literals.rs's match_bigint_pattern: same
// shape as matchNumberPattern, but over an integer-only (no decimal point,
// no exponent) prefix, since a bigint template interpolation never spells a
// fractional or exponent form.
func (c *Checker) matchBigintPattern(remaining string, spans []types.TemplateSpan, spanIdx int) bool {
	maxLen := findIntegerLength(remaining)
	for l := maxLen; l >= 1; l-- {
		if !isValidInteger(remaining[:l]) {
			continue
		}
		if c.matchTemplateLiteralRecursive(remaining[l:], spans, spanIdx+1) {
			return true
		}
	}
	return false
}

// matchBooleanPattern implements literals.rs's match_boolean_pattern: try
// "true" literally, then "false".
func (c *Checker) matchBooleanPattern(remaining string, spans []types.TemplateSpan, spanIdx int) bool {
	if matchExactThenRest(c, remaining, "true", spans, spanIdx) {
		return true
	}
	return matchExactThenRest(c, remaining, "false", spans, spanIdx)
}

// findNumberLength returns the length of the longest prefix of s that could
// form a JS numeric literal (optional leading '-', digits, optional
// fractional part, optional exponent), or 0 if s has no numeric prefix at
// all. find_number_length's own body wasn't part of the retrieved excerpt;
// this is a direct reimplementation of what its call sites require.
func findNumberLength(s string) int {
	n := len(s)
	i := 0
	if i < n && s[i] == '-' {
		i++
	}
	intStart := i
	for i < n && isDigit(s[i]) {
		i++
	}
	hasIntDigits := i > intStart

	longest := 0
	if hasIntDigits {
		longest = i
	}
	if i < n && s[i] == '.' {
		j := i + 1
		for j < n && isDigit(s[j]) {
			j++
		}
		if hasIntDigits || j > i+1 {
			longest = j
		}
	}
	if longest == 0 {
		return 0
	}

	if longest < n && (s[longest] == 'e' || s[longest] == 'E') {
		j := longest + 1
		if j < n && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < n && isDigit(s[k]) {
			k++
		}
		if k > j {
			longest = k
		}
	}
	return longest
}

// findIntegerLength returns the length of the longest digits-only (optional
// leading '-') prefix of s, or 0 if none.
func findIntegerLength(s string) int {
	n := len(s)
	i := 0
	if i < n && s[i] == '-' {
		i++
	}
	start := i
	for i < n && isDigit(s[i]) {
		i++
	}
	if i == start {
		return 0
	}
	return i
}

func isValidNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isValidInteger(s string) bool {
	i := 0
	if len(s) > 0 && s[0] == '-' {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
