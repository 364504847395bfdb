package param

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/tinkerharness/internal/token"
)

// Tokens is a Parameter naming a symbolic access path: an ordered,
// non-empty sequence of tokens such as [T.label] or [Column.values, Order.desc].
// It denotes a reference into the token domain, not a materialised value.
//
// The zero value is not a valid parameter and equals nothing, itself
// included. Build Tokens with NewTokens or Parse.
type Tokens struct {
	parts []token.Token
	canon string
}

func (Tokens) parameter() {}

// NewTokens builds a token parameter. The sequence must be non-empty and
// every element a valid token. The input slice is copied.
func NewTokens(parts ...token.Token) (Tokens, error) {
	if len(parts) == 0 {
		return Tokens{}, fmt.Errorf("token parameter requires at least one token")
	}
	for i, t := range parts {
		if !t.Valid() {
			return Tokens{}, fmt.Errorf("parts[%d]: invalid token %d", i, uint8(t))
		}
	}

	owned := slices.Clone(parts)
	return Tokens{parts: owned, canon: marshalCanonicalTokens(owned)}, nil
}

// MustTokens is like NewTokens but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTokens(parts ...token.Token) Tokens {
	t, err := NewTokens(parts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Parts returns a copy of the token sequence.
func (t Tokens) Parts() []token.Token {
	return slices.Clone(t.parts)
}

// Len returns the number of tokens.
func (t Tokens) Len() int {
	return len(t.parts)
}

// Kind returns KindToken.
func (Tokens) Kind() Kind { return KindToken }

// Value always fails: a symbolic path cannot be resolved without runtime
// context.
func (t Tokens) Value() (any, error) {
	return nil, &NotSupportedError{Op: "Value", Parameter: t.String()}
}

// MustValue is like Value but panics. Use it where reaching a token
// parameter is a programming error that should stop the step immediately.
func (t Tokens) MustValue() any {
	v, err := t.Value()
	if err != nil {
		panic(err)
	}
	return v
}

// Type returns TokenType regardless of the sequence contents.
func (Tokens) Type() reflect.Type {
	return TokenType
}

// Equal reports whether other is a Tokens with the same tokens in the same
// order.
func (t Tokens) Equal(other Parameter) bool {
	switch o := other.(type) {
	case Tokens:
		if len(t.parts) == 0 || len(o.parts) == 0 {
			return false
		}
		return t.canon == o.canon
	case Scalar:
		return false
	default:
		return false
	}
}

// Canonical returns the canonical form.
func (t Tokens) Canonical() []byte {
	return []byte(t.canon)
}

// Hash returns the content hash of the canonical form. Two instances built
// from equal sequences always hash equal.
func (t Tokens) Hash() string {
	return hashCanonical(t.canon)
}

// String renders the chain in the syntax accepted by Parse, e.g.
// "Column.values.Order.desc".
func (t Tokens) String() string {
	names := make([]string, len(t.parts))
	for i, p := range t.parts {
		names[i] = p.String()
	}
	return strings.Join(names, ".")
}
