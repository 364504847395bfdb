package config

import (
	"log/slog"
	"os"
)

// Loader resolves the server endpoint with layered precedence:
// 1. Environment variables
// 2. YAML config file (optional)
type Loader struct {
	logger *slog.Logger
	env    Source
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, env: EnvSource{}}
}

// WithEnv replaces the environment layer. Used by tests.
func (l *Loader) WithEnv(src Source) *Loader {
	l.env = src
	return l
}

// Load resolves the server. path may be empty to use the environment only.
func (l *Loader) Load(path string) (Server, error) {
	layers := Layered{l.env}

	if path != "" {
		fileSrc, err := LoadFileSource(path)
		if err != nil {
			code := ErrCodeMalformed
			if os.IsNotExist(err) {
				code = ErrCodeMissing
			}
			return Server{}, &Error{Code: code, Message: "cannot read config file " + path, Err: err}
		}
		l.logger.Debug("Loaded config file", slog.String("path", path))
		layers = append(layers, fileSrc)
	}

	for _, key := range []string{KeyHost, KeyPort} {
		if _, ok := layers.Get(key); ok && l.env != nil {
			if _, fromEnv := l.env.Get(key); fromEnv {
				l.logger.Debug("Config key from environment", slog.String("key", key))
			}
		}
	}

	server, err := LoadServer(layers)
	if err != nil {
		return Server{}, err
	}

	l.logger.Debug("Resolved test server", slog.String("address", server.Address()))
	return server, nil
}
