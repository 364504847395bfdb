package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/tinkerharness/internal/token"
)

// Element is a graph vertex or edge reduced to its identity.
type Element struct {
	Kind  string // "vertex" or "edge"
	ID    any
	Label string
}

func (e Element) String() string {
	return fmt.Sprintf("%s[%v]", e.Kind, e.ID)
}

// Property is a vertex property or edge property.
type Property struct {
	Key   string
	Value any
}

func (p Property) String() string {
	return fmt.Sprintf("p[%s->%v]", p.Key, p.Value)
}

// Traverser carries a value with its bulk count. Submit expands traversers
// into Bulk copies of Value.
type Traverser struct {
	Bulk  int64
	Value any
}

// Typed is a GraphSON value whose type has no Go mapping here.
type Typed struct {
	Type  string
	Value any
}

func (t Typed) String() string {
	return fmt.Sprintf("%s(%v)", t.Type, t.Value)
}

// DecodeGraphSON decodes a GraphSON v3 document into Go values.
func DecodeGraphSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse GraphSON: %w", err)
	}
	return decodeValue(raw)
}

func decodeValue(raw any) (any, error) {
	switch v := raw.(type) {
	case nil, string, bool:
		return v, nil
	case json.Number:
		return untypedNumber(v)
	case []any:
		return decodeList(v)
	case map[string]any:
		if typ, value, ok := typedEnvelope(v); ok {
			return decodeTyped(typ, value)
		}
		out := make(map[string]any, len(v))
		for k, elem := range v {
			d, err := decodeValue(elem)
			if err != nil {
				return nil, err
			}
			out[k] = d
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected JSON value %T", raw)
	}
}

// typedEnvelope recognises {"@type": ..., "@value": ...}.
func typedEnvelope(m map[string]any) (string, any, bool) {
	typ, ok := m["@type"].(string)
	if !ok {
		return "", nil, false
	}
	value, hasValue := m["@value"]
	if len(m) != 2 || !hasValue {
		if len(m) == 1 {
			return typ, nil, true
		}
		return "", nil, false
	}
	return typ, value, true
}

func decodeList(items []any) ([]any, error) {
	out := make([]any, 0, len(items))
	for i, item := range items {
		d, err := decodeValue(item)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func decodeTyped(typ string, value any) (any, error) {
	if token.IsGraphSONType(typ) {
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected string, got %T", typ, value)
		}
		return token.FromGraphSON(typ, s)
	}

	switch typ {
	case "g:Int32":
		n, err := integer(typ, value, 32)
		return int32(n), err
	case "g:Int64":
		return integer(typ, value, 64)
	case "g:Float":
		f, err := float(typ, value, 32)
		return float32(f), err
	case "g:Double":
		return float(typ, value, 64)
	case "g:List", "g:Set":
		items, ok := value.([]any)
		if !ok {
			if value == nil {
				return []any{}, nil
			}
			return nil, fmt.Errorf("%s: expected array, got %T", typ, value)
		}
		return decodeList(items)
	case "g:Map":
		return decodeMap(value)
	case "g:UUID":
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected string, got %T", typ, value)
		}
		return uuid.Parse(s)
	case "g:Date", "g:Timestamp":
		ms, err := integer(typ, value, 64)
		if err != nil {
			return nil, err
		}
		return time.UnixMilli(ms).UTC(), nil
	case "g:Vertex":
		return decodeElement("vertex", value)
	case "g:Edge":
		return decodeElement("edge", value)
	case "g:VertexProperty":
		return decodeProperty(typ, value, "label")
	case "g:Property":
		return decodeProperty(typ, value, "key")
	case "g:Traverser":
		return decodeTraverser(value)
	default:
		d, err := decodeValue(value)
		if err != nil {
			return nil, err
		}
		return Typed{Type: typ, Value: d}, nil
	}
}

func integer(typ string, value any, bits int) (int64, error) {
	num, ok := value.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%s: expected number, got %T", typ, value)
	}
	n, err := strconv.ParseInt(num.String(), 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", typ, err)
	}
	return n, nil
}

// float accepts JSON numbers and the special values the server writes as
// strings.
func float(typ string, value any, bits int) (float64, error) {
	switch v := value.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(v.String(), bits)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", typ, err)
		}
		return f, nil
	case string:
		switch v {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		return 0, fmt.Errorf("%s: unexpected value %q", typ, v)
	default:
		return 0, fmt.Errorf("%s: expected number, got %T", typ, value)
	}
}

func untypedNumber(num json.Number) (any, error) {
	if n, err := num.Int64(); err == nil {
		return n, nil
	}
	f, err := num.Float64()
	if err != nil {
		return nil, fmt.Errorf("bad number %q: %w", num, err)
	}
	return f, nil
}

// decodeMap reads a g:Map, whose value is a flat [k1, v1, k2, v2, ...] list.
// Keys that cannot be hashed are replaced by their JSON text.
func decodeMap(value any) (map[any]any, error) {
	items, ok := value.([]any)
	if !ok {
		if value == nil {
			return map[any]any{}, nil
		}
		return nil, fmt.Errorf("g:Map: expected array, got %T", value)
	}
	if len(items)%2 != 0 {
		return nil, fmt.Errorf("g:Map: odd number of entries (%d)", len(items))
	}

	out := make(map[any]any, len(items)/2)
	for i := 0; i < len(items); i += 2 {
		k, err := decodeValue(items[i])
		if err != nil {
			return nil, fmt.Errorf("g:Map key %d: %w", i/2, err)
		}
		v, err := decodeValue(items[i+1])
		if err != nil {
			return nil, fmt.Errorf("g:Map value %d: %w", i/2, err)
		}
		if !hashable(k) {
			text, err := json.Marshal(items[i])
			if err != nil {
				return nil, fmt.Errorf("g:Map key %d: %w", i/2, err)
			}
			k = string(text)
		}
		out[k] = v
	}
	return out, nil
}

// hashable reports whether v can be used as a map key. Struct types that
// wrap decoded values are comparable by type even when the wrapped value
// is a map or slice, so their fields are checked too.
func hashable(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case Element:
		return hashable(x.ID)
	case Property:
		return hashable(x.Value)
	case Typed:
		return hashable(x.Value)
	case Traverser:
		return hashable(x.Value)
	}
	return reflect.TypeOf(v).Comparable()
}

func decodeElement(kind string, value any) (Element, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return Element{}, fmt.Errorf("%s: expected object, got %T", kind, value)
	}
	id, err := decodeValue(fields["id"])
	if err != nil {
		return Element{}, fmt.Errorf("%s id: %w", kind, err)
	}
	label, _ := fields["label"].(string)
	return Element{Kind: kind, ID: id, Label: label}, nil
}

func decodeProperty(typ string, value any, keyField string) (Property, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return Property{}, fmt.Errorf("%s: expected object, got %T", typ, value)
	}
	key, _ := fields[keyField].(string)
	v, err := decodeValue(fields["value"])
	if err != nil {
		return Property{}, fmt.Errorf("%s value: %w", typ, err)
	}
	return Property{Key: key, Value: v}, nil
}

func decodeTraverser(value any) (Traverser, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return Traverser{}, fmt.Errorf("g:Traverser: expected object, got %T", value)
	}
	bulk := int64(1)
	if raw, ok := fields["bulk"]; ok {
		b, err := decodeValue(raw)
		if err != nil {
			return Traverser{}, err
		}
		switch n := b.(type) {
		case int64:
			bulk = n
		case int32:
			bulk = int64(n)
		default:
			return Traverser{}, fmt.Errorf("g:Traverser: bulk is %T", b)
		}
		if bulk < 1 {
			return Traverser{}, fmt.Errorf("g:Traverser: bulk %d is not positive", bulk)
		}
	}
	v, err := decodeValue(fields["value"])
	if err != nil {
		return Traverser{}, err
	}
	return Traverser{Bulk: bulk, Value: v}, nil
}

// MaxResults caps the number of results one Submit collects once
// traversers are expanded.
const MaxResults = 1 << 20

// flatten expands a decoded result payload into individual results and
// appends them to results.
func flatten(results []any, data any) ([]any, error) {
	appendOne := func(v any) error {
		t, ok := v.(Traverser)
		if !ok {
			if len(results) >= MaxResults {
				return fmt.Errorf("result count exceeds %d", MaxResults)
			}
			results = append(results, v)
			return nil
		}
		if t.Bulk > int64(MaxResults-len(results)) {
			return fmt.Errorf("traverser bulk %d exceeds the %d result limit", t.Bulk, MaxResults)
		}
		for i := int64(0); i < t.Bulk; i++ {
			results = append(results, t.Value)
		}
		return nil
	}

	switch v := data.(type) {
	case nil:
	case []any:
		for _, item := range v {
			if err := appendOne(item); err != nil {
				return nil, err
			}
		}
	default:
		if err := appendOne(v); err != nil {
			return nil, err
		}
	}
	return results, nil
}
