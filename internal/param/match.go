package param

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/tinkerharness/internal/token"
)

// FromActual lifts a value produced by evaluating a traversal into a
// Parameter so it can be compared against an expectation.
//
// Token values (single or sequence) become Tokens; supported literals
// become Scalar. Anything else is an error.
func FromActual(v any) (Parameter, error) {
	switch a := v.(type) {
	case Parameter:
		return a, nil
	case token.Token:
		return NewTokens(a)
	case []token.Token:
		return NewTokens(a...)
	default:
		return NewScalar(v)
	}
}

// Match reports whether actual matches the expected parameter.
// Values that cannot be lifted into a Parameter never match.
func Match(expected Parameter, actual any) bool {
	if expected == nil {
		return false
	}
	a, err := FromActual(actual)
	if err != nil {
		return false
	}
	return expected.Equal(a)
}

// MatchSequence compares actual results positionally against the expected
// parameters. Returns a *MismatchError for the first difference.
func MatchSequence(expected []Parameter, actual []any) error {
	if len(expected) != len(actual) {
		return &MismatchError{
			Index:    -1,
			Expected: fmt.Sprintf("%d results", len(expected)),
			Actual:   fmt.Sprintf("%d results: %s", len(actual), Describe(actual)),
		}
	}

	for i, exp := range expected {
		if !Match(exp, actual[i]) {
			return &MismatchError{
				Index:    i,
				Expected: fmt.Sprintf("%s (%s)", exp, exp.Kind()),
				Actual:   Describe(actual[i]),
			}
		}
	}

	return nil
}

// Describe renders an actual value for diagnostics. Liftable values use
// their canonical form; others fall back to JSON, then %v.
func Describe(v any) string {
	if p, err := FromActual(v); err == nil {
		return string(p.Canonical())
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}
