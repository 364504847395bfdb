package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Source supplies raw configuration values by key.
type Source interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)
}

// MapSource is an in-memory Source.
type MapSource map[string]string

// Get implements Source.
func (m MapSource) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// EnvSource reads keys from the process environment, optionally prefixed.
type EnvSource struct {
	Prefix string
}

// Get implements Source.
func (e EnvSource) Get(key string) (string, bool) {
	return os.LookupEnv(e.Prefix + key)
}

// Layered consults each source in order; the first one holding the key wins.
type Layered []Source

// Get implements Source.
func (l Layered) Get(key string) (string, bool) {
	for _, src := range l {
		if src == nil {
			continue
		}
		if v, ok := src.Get(key); ok {
			return v, true
		}
	}
	return "", false
}

// LoadFileSource reads a flat YAML mapping of configuration keys:
//
//	TestServerIpAddress: localhost
//	TestServerPort: 45940
//
// Scalar values are stringified; nested mappings and sequences are rejected.
func LoadFileSource(path string) (MapSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseFileSource(data)
}

func parseFileSource(data []byte) (MapSource, error) {
	var raw map[string]any
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	out := make(MapSource, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		case int:
			out[k] = strconv.Itoa(val)
		case bool:
			out[k] = strconv.FormatBool(val)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("key %q: expected a scalar value, got %T", k, v)
		}
	}
	return out, nil
}
