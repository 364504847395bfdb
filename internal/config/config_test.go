package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer(t *testing.T) {
	s, err := LoadServer(MapSource{
		KeyHost: "localhost",
		KeyPort: "45940",
	})
	require.NoError(t, err)
	assert.Equal(t, Server{Host: "localhost", Port: 45940}, s)
	assert.Equal(t, "localhost:45940", s.Address())
}

func TestLoadServerTrimsWhitespace(t *testing.T) {
	s, err := LoadServer(MapSource{
		KeyHost: "  127.0.0.1 ",
		KeyPort: " 8182\n",
	})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", s.Host)
	assert.Equal(t, 8182, s.Port)
}

func TestAddressBracketsIPv6(t *testing.T) {
	assert.Equal(t, "[::1]:8182", Server{Host: "::1", Port: 8182}.Address())
}

func TestLoadServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     MapSource
		missing bool
		key     string
	}{
		{"missing port", MapSource{KeyHost: "localhost"}, true, KeyPort},
		{"missing host", MapSource{KeyPort: "8182"}, true, KeyHost},
		{"blank host", MapSource{KeyHost: "  ", KeyPort: "8182"}, true, KeyHost},
		{"non-numeric port", MapSource{KeyHost: "localhost", KeyPort: "eighty"}, false, KeyPort},
		{"port zero", MapSource{KeyHost: "localhost", KeyPort: "0"}, false, KeyPort},
		{"port too large", MapSource{KeyHost: "localhost", KeyPort: "70000"}, false, KeyPort},
		{"host with space", MapSource{KeyHost: "local host", KeyPort: "8182"}, false, KeyHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadServer(tt.src)
			require.Error(t, err)

			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.key, ce.Key)
			assert.Equal(t, tt.missing, IsMissing(err))
			assert.Equal(t, !tt.missing, IsMalformed(err))
		})
	}
}

func TestMustLoadServerPanicsWhenPortMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadServer(MapSource{KeyHost: "localhost"})
	})
}

func TestErrorMessage(t *testing.T) {
	_, err := LoadServer(MapSource{KeyHost: "localhost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFIGURATION_MISSING")
	assert.Contains(t, err.Error(), "key=TestServerPort")
}

func TestLayeredFirstSourceWins(t *testing.T) {
	l := Layered{
		nil,
		MapSource{KeyHost: "override"},
		MapSource{KeyHost: "base", KeyPort: "8182"},
	}

	v, ok := l.Get(KeyHost)
	assert.True(t, ok)
	assert.Equal(t, "override", v)

	v, ok = l.Get(KeyPort)
	assert.True(t, ok)
	assert.Equal(t, "8182", v)

	_, ok = l.Get("absent")
	assert.False(t, ok)
}

func TestEnvSource(t *testing.T) {
	t.Setenv("TH_"+KeyPort, "9999")

	v, ok := EnvSource{Prefix: "TH_"}.Get(KeyPort)
	assert.True(t, ok)
	assert.Equal(t, "9999", v)

	_, ok = EnvSource{Prefix: "NOPE_"}.Get(KeyPort)
	assert.False(t, ok)
}

func TestParseFileSource(t *testing.T) {
	src, err := parseFileSource([]byte("TestServerIpAddress: gremlin-server\nTestServerPort: 45940\nEnabled: true\nUnset: ~\n"))
	require.NoError(t, err)
	assert.Equal(t, MapSource{
		KeyHost:   "gremlin-server",
		KeyPort:   "45940",
		"Enabled": "true",
	}, src)

	empty, err := parseFileSource(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = parseFileSource([]byte("TestServerPort: [1, 2]\n"))
	assert.ErrorContains(t, err, "expected a scalar value")

	_, err = parseFileSource([]byte("not: [valid"))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tinkerharness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoaderEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "TestServerIpAddress: file-host\nTestServerPort: 1111\n")

	s, err := NewLoader(discardLogger()).
		WithEnv(MapSource{KeyPort: "2222"}).
		Load(path)
	require.NoError(t, err)
	assert.Equal(t, Server{Host: "file-host", Port: 2222}, s)
}

func TestLoaderEnvOnly(t *testing.T) {
	s, err := NewLoader(discardLogger()).
		WithEnv(MapSource{KeyHost: "env-host", KeyPort: "8182"}).
		Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-host:8182", s.Address())
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := NewLoader(discardLogger()).
		WithEnv(MapSource{}).
		Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, IsMissing(err))
}

func TestLoaderMalformedFile(t *testing.T) {
	path := writeConfig(t, "TestServerPort: [nope]\n")

	_, err := NewLoader(discardLogger()).WithEnv(MapSource{}).Load(path)
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestLoaderMissingPortFailsBeforeAnythingElse(t *testing.T) {
	path := writeConfig(t, "TestServerIpAddress: localhost\n")

	_, err := NewLoader(discardLogger()).WithEnv(MapSource{}).Load(path)
	require.Error(t, err)
	assert.True(t, IsMissing(err))

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KeyPort, ce.Key)
}
