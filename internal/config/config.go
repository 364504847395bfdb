// Package config resolves the endpoint of the traversal server under test.
//
// Configuration is read from a Source (environment, YAML file, or map) once,
// at process start, into an explicit Server value that is then injected
// into the connection provisioner. Missing or malformed keys fail loading;
// nothing is read lazily per connection.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Configuration keys required before any connection is requested.
const (
	KeyHost = "TestServerIpAddress"
	KeyPort = "TestServerPort"
)

// Server is the resolved endpoint of the traversal server.
type Server struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// Address returns host:port.
func (s Server) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Validate checks the server against the configuration schema.
func (s Server) Validate() error {
	return validateServer(s)
}

// ErrorCode categorizes configuration errors.
type ErrorCode string

const (
	// ErrCodeMissing indicates a required key is absent.
	ErrCodeMissing ErrorCode = "CONFIGURATION_MISSING"

	// ErrCodeMalformed indicates a key is present but unusable.
	ErrCodeMalformed ErrorCode = "CONFIGURATION_MALFORMED"
)

// Error is returned when configuration cannot be resolved. Either code is
// fatal at startup: no connection may be attempted with an unconfigured
// endpoint.
type Error struct {
	Code    ErrorCode
	Key     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Key != "" {
		msg = fmt.Sprintf("%s: %s (key=%s)", e.Code, e.Message, e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsMissing reports whether err is a missing-key configuration error.
func IsMissing(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeMissing
	}
	return false
}

// IsMalformed reports whether err is a malformed-value configuration error.
func IsMalformed(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeMalformed
	}
	return false
}

// LoadServer reads host and port from src and validates them.
func LoadServer(src Source) (Server, error) {
	host, err := requireKey(src, KeyHost)
	if err != nil {
		return Server{}, err
	}

	rawPort, err := requireKey(src, KeyPort)
	if err != nil {
		return Server{}, err
	}

	port, err := strconv.Atoi(rawPort)
	if err != nil {
		return Server{}, &Error{
			Code:    ErrCodeMalformed,
			Key:     KeyPort,
			Message: fmt.Sprintf("port %q is not numeric", rawPort),
		}
	}

	s := Server{Host: host, Port: port}
	if err := s.Validate(); err != nil {
		return Server{}, err
	}
	return s, nil
}

// MustLoadServer is like LoadServer but panics on error. Test drivers call
// it during package initialisation so an unconfigured run aborts before any
// scenario executes.
func MustLoadServer(src Source) Server {
	s, err := LoadServer(src)
	if err != nil {
		panic(err)
	}
	return s
}

// requireKey fetches a non-blank value for key.
func requireKey(src Source, key string) (string, error) {
	v, ok := src.Get(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", &Error{
			Code:    ErrCodeMissing,
			Key:     key,
			Message: "required configuration key is not set",
		}
	}
	return strings.TrimSpace(v), nil
}
