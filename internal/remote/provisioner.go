// Package remote provisions connections to the traversal server under test.
//
// A Provisioner is built once from an explicit config.Server and a Dialer
// (the session factory). Every CreateConnection call opens a fresh client
// and binds it to a traversal source alias; nothing is pooled or shared
// between calls, so concurrent test workers may call it freely.
//
// The caller owns each returned Connection and must Close it on every exit
// path.
package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/tinkerharness/internal/config"
)

// DefaultTraversalSource is the standard traversal source that the main
// body of scenarios runs against.
const DefaultTraversalSource = "gmodern"

// Client is an open session with the server, not yet bound to a source.
type Client interface {
	Close() error
}

// Connection is a client bound to a traversal source alias.
type Connection interface {
	// TraversalSource returns the alias this connection is bound to.
	TraversalSource() string

	// Submit evaluates a traversal and returns its results.
	Submit(ctx context.Context, traversal string) ([]any, error)

	// Close releases the connection and its client.
	Close() error
}

// Dialer opens clients and binds them to traversal sources.
type Dialer interface {
	Open(ctx context.Context, host string, port int) (Client, error)
	Bind(client Client, traversalSource string) (Connection, error)
}

// Provisioner creates connections to one configured server.
type Provisioner struct {
	server  config.Server
	dialer  Dialer
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provisioner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records provisioning outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(p *Provisioner) {
		p.metrics = m
	}
}

// NewProvisioner validates server and returns a provisioner bound to it.
// An invalid server is a configuration error: it fails here, at startup,
// never on a later CreateConnection call.
func NewProvisioner(server config.Server, dialer Dialer, opts ...Option) (*Provisioner, error) {
	if err := server.Validate(); err != nil {
		return nil, err
	}
	if dialer == nil {
		return nil, fmt.Errorf("provisioner requires a dialer")
	}

	p := &Provisioner{
		server: server,
		dialer: dialer,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Server returns the configured endpoint.
func (p *Provisioner) Server() config.Server {
	return p.server
}

// CreateConnection opens a connection bound to DefaultTraversalSource.
func (p *Provisioner) CreateConnection(ctx context.Context) (Connection, error) {
	return p.CreateConnectionFor(ctx, DefaultTraversalSource)
}

// CreateConnectionFor opens a fresh client and binds it to traversalSource.
// If binding fails the client is closed before the error is returned.
func (p *Provisioner) CreateConnectionFor(ctx context.Context, traversalSource string) (Connection, error) {
	if strings.TrimSpace(traversalSource) == "" {
		return nil, &Error{
			Code:    ErrCodeInvalidAlias,
			Message: "traversal source alias must not be empty",
			Address: p.server.Address(),
		}
	}

	address := p.server.Address()
	client, err := p.dialer.Open(ctx, p.server.Host, p.server.Port)
	if err != nil {
		p.metrics.connectionFailed("open")
		return nil, newConnectionError("open", address, traversalSource, err)
	}

	conn, err := p.dialer.Bind(client, traversalSource)
	if err != nil {
		p.metrics.connectionFailed("bind")
		if cerr := client.Close(); cerr != nil {
			p.logger.Debug("Close after failed bind", slog.String("address", address), slog.Any("error", cerr))
		}
		return nil, newConnectionError("bind", address, traversalSource, err)
	}

	p.metrics.connectionOpened(traversalSource)
	p.logger.Debug("Opened connection",
		slog.String("address", address),
		slog.String("traversal_source", traversalSource),
	)
	return conn, nil
}
