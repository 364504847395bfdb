package param

import (
	"reflect"

	"github.com/roach88/tinkerharness/internal/token"
)

// Parameter is a sealed interface over the expected-argument variants.
// Only Scalar and Tokens implement it.
type Parameter interface {
	// Kind is the union tag.
	Kind() Kind

	// Value extracts the concrete literal. Fails with *NotSupportedError
	// for symbolic parameters.
	Value() (any, error)

	// Type is the type witness callers use to choose between a raw value
	// comparison and a symbolic one.
	Type() reflect.Type

	// Equal reports structural equality with another parameter.
	Equal(other Parameter) bool

	// Canonical returns the canonical form shared by Equal and Hash.
	Canonical() []byte

	// Hash returns a content hash consistent with Equal.
	Hash() string

	String() string

	parameter() // Sealed
}

// Kind tags the Parameter variant.
type Kind uint8

const (
	KindScalar Kind = iota + 1
	KindToken
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindToken:
		return "token"
	default:
		return "unknown"
	}
}

// TokenType is the type witness returned by every Tokens parameter.
var TokenType = reflect.TypeOf((*token.Token)(nil)).Elem()

// Equal compares two parameters. A nil parameter only equals nil.
func Equal(a, b Parameter) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
