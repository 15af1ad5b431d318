package diag

import "fmt"

// Code identifies the category of a diagnostic. The numeric ranges below
// mirror the taxonomy of spec.md §7.
type Code uint16

const (
	// UnknownCode is returned for a code with no registered description.
	UnknownCode Code = 0

	// External-collaborator errors (1000-1999): raised by the scanner,
	// parser or binder and forwarded as-is; the core treats the offending
	// node as ERROR-typed and does not re-diagnose it.
	ExtParseError       Code = 1000
	ExtUnresolvedSymbol Code = 1001

	// Assignability / subtype errors (2000-2999).
	TypeMismatch             Code = 2000
	MissingProperty          Code = 2001
	OptionalPropertyRequired Code = 2002
	ReadonlyPropertyMismatch Code = 2003
	TooManyParameters        Code = 2004
	TupleElementMismatch     Code = 2005
	TupleElementTypeMismatch Code = 2006
	ArrayElementMismatch     Code = 2007
	IndexSignatureMismatch   Code = 2008
	LiteralTypeMismatch      Code = 2009
	PropertyTypeMismatch     Code = 2010
	NoMatchingSignature      Code = 2011

	// Inference errors (3000-3999).
	BoundsViolation   Code = 3000
	OccursCheck       Code = 3001
	InferenceConflict Code = 3002
	InferenceUnresolved Code = 3003
	VarianceViolation Code = 3004

	// Safety-cap errors (4000-4999): a documented recursion/iteration
	// limit was exceeded in the evaluator, instantiator or subtype
	// checker.
	RecursionLimitExceeded Code = 4000

	// Flow-analysis errors (5000-5999).
	DefiniteAssignment Code = 5000
	TDZViolation       Code = 5001
	Unreachable        Code = 5002

	// Driver/IO errors (6000-6999).
	IOLoadFileError Code = 6000
	IOConfigError   Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:              "unknown error",
	ExtParseError:            "syntax error reported by the parser",
	ExtUnresolvedSymbol:      "identifier could not be resolved to a symbol",
	TypeMismatch:             "type is not assignable to target type",
	MissingProperty:          "required property is missing on source type",
	OptionalPropertyRequired: "optional property cannot satisfy a required target property",
	ReadonlyPropertyMismatch: "readonly property cannot satisfy a mutable target property",
	TooManyParameters:        "source function accepts fewer parameters than target requires",
	TupleElementMismatch:     "tuple arity or element kind mismatch",
	TupleElementTypeMismatch: "tuple element type mismatch",
	ArrayElementMismatch:     "array element type mismatch",
	IndexSignatureMismatch:   "property violates a target index signature",
	LiteralTypeMismatch:      "literal type is not assignable to target literal",
	PropertyTypeMismatch:     "property type mismatch",
	NoMatchingSignature:      "no call or construct signature is compatible",
	BoundsViolation:          "inferred type argument violates its constraint",
	OccursCheck:              "inference variable occurs within its own solution",
	InferenceConflict:        "two incompatible types were unified for the same inference variable",
	InferenceUnresolved:      "inference variable has no constraints to resolve it",
	VarianceViolation:        "inferred type argument does not respect the parameter's variance",
	RecursionLimitExceeded:   "recursion or iteration safety cap exceeded",
	DefiniteAssignment:       "variable used before it is definitely assigned",
	TDZViolation:             "let/const binding used within its temporal dead zone",
	Unreachable:              "statement is unreachable under every control-flow path",
	IOLoadFileError:          "failed to load source file",
	IOConfigError:            "failed to load checker configuration",
}

// ID returns the stable, human-facing identifier for the code (e.g. "TS2000").
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("TS-EXT%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("TS%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TS-INFER%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TS-LIMIT%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("TS-FLOW%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("TS-IO%04d", ic)
	}
	return "TS0000"
}

// Title returns the one-line human description registered for the code.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// LookupByID reverses Code.ID(), for tooling that takes a code as a
// command-line argument (cmd/tscheck's explain subcommand) rather than a
// numeric constant.
func LookupByID(id string) (Code, bool) {
	for c := range codeDescription {
		if c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
