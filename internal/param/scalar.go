package param

import (
	"reflect"
	"strconv"
)

// Scalar is a Parameter wrapping one literal value.
type Scalar struct {
	value any
	canon string
}

func (Scalar) parameter() {}

// NewScalar wraps a literal. Supported types are nil, string, bool, int,
// int32, int64, float32 and float64.
func NewScalar(v any) (Scalar, error) {
	canon, err := marshalCanonicalScalar(v)
	if err != nil {
		return Scalar{}, err
	}
	return Scalar{value: v, canon: canon}, nil
}

// MustScalar is like NewScalar but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustScalar(v any) Scalar {
	s, err := NewScalar(v)
	if err != nil {
		panic(err)
	}
	return s
}

// Kind returns KindScalar.
func (Scalar) Kind() Kind { return KindScalar }

// Value returns the wrapped literal. It never fails.
func (s Scalar) Value() (any, error) {
	return s.value, nil
}

// Type returns the literal's runtime type, or nil for the null literal.
func (s Scalar) Type() reflect.Type {
	return reflect.TypeOf(s.value)
}

// Equal reports whether other is a Scalar with the same type and value.
func (s Scalar) Equal(other Parameter) bool {
	switch o := other.(type) {
	case Scalar:
		return s.canon == o.canon
	case Tokens:
		return false
	default:
		return false
	}
}

// Canonical returns the canonical form.
func (s Scalar) Canonical() []byte {
	return []byte(s.canon)
}

// Hash returns the content hash of the canonical form.
func (s Scalar) Hash() string {
	return hashCanonical(s.canon)
}

// String renders the literal in the syntax accepted by Parse.
func (s Scalar) String() string {
	switch v := s.value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return "d[" + strconv.FormatInt(int64(v), 10) + "].i"
	case int64:
		return "d[" + strconv.FormatInt(v, 10) + "].l"
	case float32:
		return "d[" + canonicalFloat(float64(v), 32) + "].f"
	case float64:
		return "d[" + canonicalFloat(v, 64) + "].d"
	default:
		return s.canon
	}
}
