package param

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/tinkerharness/internal/token"
)

// Canonical form layout. Keys are always written in this fixed order:
//
//	{"kind":"scalar","type":"int32","value":29}
//	{"kind":"token","parts":["T.label","Order.desc"]}
//
// Strings are NOT Unicode-normalised: two literals match only if their code
// points match. Floats are written as JSON strings so NaN and infinities
// have a representation.

// scalarTypeName returns the canonical type tag for a supported literal.
func scalarTypeName(v any) (string, error) {
	switch v.(type) {
	case nil:
		return "null", nil
	case string:
		return "string", nil
	case bool:
		return "bool", nil
	case int:
		return "int", nil
	case int32:
		return "int32", nil
	case int64:
		return "int64", nil
	case float32:
		return "float32", nil
	case float64:
		return "float64", nil
	default:
		return "", fmt.Errorf("unsupported scalar type %T: only string, bool, int, int32, int64, float32, float64 and nil allowed", v)
	}
}

// marshalCanonicalScalar renders a scalar literal in canonical form.
func marshalCanonicalScalar(v any) (string, error) {
	typeName, err := scalarTypeName(v)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"kind":"scalar","type":"`)
	buf.WriteString(typeName)
	buf.WriteString(`","value":`)

	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		s, err := marshalCanonicalString(val)
		if err != nil {
			return "", err
		}
		buf.Write(s)
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case float32:
		buf.WriteString(strconv.Quote(canonicalFloat(float64(val), 32)))
	case float64:
		buf.WriteString(strconv.Quote(canonicalFloat(val, 64)))
	}

	buf.WriteByte('}')
	return buf.String(), nil
}

// marshalCanonicalTokens renders a token sequence in canonical form.
func marshalCanonicalTokens(parts []token.Token) string {
	var buf bytes.Buffer
	buf.WriteString(`{"kind":"token","parts":[`)
	for i, t := range parts {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(t.String())
		buf.WriteByte('"')
	}
	buf.WriteString("]}")
	return buf.String()
}

// marshalCanonicalString produces a JSON string without HTML escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}

	// json.Encoder adds trailing newline, remove it
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// canonicalFloat formats f as the shortest decimal that round-trips at the
// given bit size. -0 collapses to 0 and every NaN payload to "NaN".
func canonicalFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	case f == 0:
		return "0"
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}
