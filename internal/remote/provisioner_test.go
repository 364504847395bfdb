package remote

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tinkerharness/internal/config"
)

// fakeClient records whether it was closed.
type fakeClient struct {
	host   string
	port   int
	mu     sync.Mutex
	closed bool
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type fakeConnection struct {
	client *fakeClient
	source string
}

func (c *fakeConnection) TraversalSource() string { return c.source }

func (c *fakeConnection) Submit(ctx context.Context, traversal string) ([]any, error) {
	return []any{traversal}, nil
}

func (c *fakeConnection) Close() error { return c.client.Close() }

// fakeDialer hands out fakeClients and can be told to fail.
type fakeDialer struct {
	mu       sync.Mutex
	openErr  error
	bindErr  error
	opened   []*fakeClient
	openCall int
}

func (d *fakeDialer) Open(ctx context.Context, host string, port int) (Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openCall++
	if d.openErr != nil {
		return nil, d.openErr
	}
	c := &fakeClient{host: host, port: port}
	d.opened = append(d.opened, c)
	return c, nil
}

func (d *fakeDialer) Bind(client Client, traversalSource string) (Connection, error) {
	if d.bindErr != nil {
		return nil, d.bindErr
	}
	return &fakeConnection{client: client.(*fakeClient), source: traversalSource}, nil
}

var testServer = config.Server{Host: "localhost", Port: 45940}

func newTestProvisioner(t *testing.T, d Dialer, opts ...Option) *Provisioner {
	t.Helper()
	p, err := NewProvisioner(testServer, d, opts...)
	require.NoError(t, err)
	return p
}

func TestProvisionerServer(t *testing.T) {
	p := newTestProvisioner(t, &fakeDialer{})
	assert.Equal(t, testServer, p.Server())
	assert.Equal(t, "localhost:45940", p.Server().Address())
}

func TestCreateConnectionDefaultsToGModern(t *testing.T) {
	d := &fakeDialer{}
	p := newTestProvisioner(t, d)

	conn, err := p.CreateConnection(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "gmodern", conn.TraversalSource())
	assert.Equal(t, DefaultTraversalSource, conn.TraversalSource())
}

func TestCreateConnectionForNamedSource(t *testing.T) {
	d := &fakeDialer{}
	p := newTestProvisioner(t, d)

	modern, err := p.CreateConnection(context.Background())
	require.NoError(t, err)
	defer modern.Close()

	people, err := p.CreateConnectionFor(context.Background(), "gpeople")
	require.NoError(t, err)
	defer people.Close()

	assert.Equal(t, "gpeople", people.TraversalSource())

	require.Len(t, d.opened, 2, "each call opens a fresh client")
	for _, c := range d.opened {
		assert.Equal(t, "localhost", c.host)
		assert.Equal(t, 45940, c.port)
	}
	assert.NotSame(t, d.opened[0], d.opened[1])
}

func TestConnectionsAreIndependent(t *testing.T) {
	d := &fakeDialer{}
	p := newTestProvisioner(t, d)

	a, err := p.CreateConnection(context.Background())
	require.NoError(t, err)
	b, err := p.CreateConnection(context.Background())
	require.NoError(t, err)

	require.NoError(t, a.Close())
	assert.True(t, d.opened[0].isClosed())
	assert.False(t, d.opened[1].isClosed(), "closing one connection leaves others open")
	require.NoError(t, b.Close())
}

func TestOpenFailureIsConnectionFailure(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	d := &fakeDialer{openErr: cause}
	p := newTestProvisioner(t, d)

	conn, err := p.CreateConnection(context.Background())
	require.Error(t, err)
	assert.Nil(t, conn)
	assert.True(t, IsConnectionFailure(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "address=localhost:45940")
	assert.Contains(t, err.Error(), "source=gmodern")
	assert.Equal(t, 1, d.openCall, "no retry")
}

func TestBindFailureClosesClient(t *testing.T) {
	d := &fakeDialer{bindErr: errors.New("alias not configured")}
	p := newTestProvisioner(t, d)

	_, err := p.CreateConnectionFor(context.Background(), "gcrew")
	require.Error(t, err)
	assert.True(t, IsConnectionFailure(err))

	require.Len(t, d.opened, 1)
	assert.True(t, d.opened[0].isClosed(), "client released on bind failure")
}

func TestEmptyAliasRejectedBeforeDial(t *testing.T) {
	d := &fakeDialer{}
	p := newTestProvisioner(t, d)

	for _, alias := range []string{"", "   "} {
		_, err := p.CreateConnectionFor(context.Background(), alias)
		require.Error(t, err)
		assert.True(t, IsInvalidAlias(err))
		assert.False(t, IsConnectionFailure(err))
	}
	assert.Equal(t, 0, d.openCall)
}

func TestNewProvisionerRejectsInvalidServer(t *testing.T) {
	_, err := NewProvisioner(config.Server{Host: "localhost", Port: 0}, &fakeDialer{})
	require.Error(t, err)
	assert.True(t, config.IsMalformed(err))

	_, err = NewProvisioner(testServer, nil)
	assert.ErrorContains(t, err, "requires a dialer")
}

func TestMissingPortFailsBeforeAnyConnectionAttempt(t *testing.T) {
	d := &fakeDialer{}

	_, err := config.LoadServer(config.MapSource{config.KeyHost: "localhost"})
	require.Error(t, err)
	assert.True(t, config.IsMissing(err))

	assert.Equal(t, 0, d.openCall)
}

func TestConcurrentCreateConnection(t *testing.T) {
	d := &fakeDialer{}
	p := newTestProvisioner(t, d)

	var wg sync.WaitGroup
	sources := []string{"gmodern", "gcrew", "gpeople", "gsink"}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(source string) {
			defer wg.Done()
			conn, err := p.CreateConnectionFor(context.Background(), source)
			if err != nil {
				t.Error(err)
				return
			}
			if conn.TraversalSource() != source {
				t.Errorf("bound to %q, want %q", conn.TraversalSource(), source)
			}
			conn.Close()
		}(sources[i%len(sources)])
	}
	wg.Wait()

	assert.Len(t, d.opened, 20)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ok := newTestProvisioner(t, &fakeDialer{}, WithMetrics(m))
	for i := 0; i < 2; i++ {
		conn, err := ok.CreateConnectionFor(context.Background(), "gcrew")
		require.NoError(t, err)
		conn.Close()
	}

	failing := newTestProvisioner(t, &fakeDialer{openErr: errors.New("refused")}, WithMetrics(m))
	_, err := failing.CreateConnection(context.Background())
	require.Error(t, err)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.opened.WithLabelValues("gcrew")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.failures.WithLabelValues("open")))
	assert.Equal(t, 0.0, promtest.ToFloat64(m.failures.WithLabelValues("bind")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.connectionOpened("gmodern")
		m.connectionFailed("open")
	})
}
