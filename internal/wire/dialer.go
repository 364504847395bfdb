// Package wire speaks the traversal server's WebSocket protocol.
//
// Dialer implements remote.Dialer: Open establishes a WebSocket session and
// Bind attaches a traversal source alias to it. Requests are "eval"
// messages serialized as GraphSON v3; responses are decoded into Go values
// that the param package can compare against expectations.
package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/roach88/tinkerharness/internal/remote"
)

// DefaultPath is the server's WebSocket endpoint.
const DefaultPath = "/gremlin"

// Dialer opens WebSocket clients to a traversal server.
type Dialer struct {
	// Path is the endpoint path. Defaults to DefaultPath.
	Path string

	// HandshakeTimeout bounds the WebSocket handshake. Zero means no
	// limit beyond the context.
	HandshakeTimeout time.Duration

	logger *slog.Logger
}

var _ remote.Dialer = (*Dialer)(nil)

// NewDialer returns a Dialer for DefaultPath. A nil logger discards output.
func NewDialer(logger *slog.Logger) *Dialer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dialer{
		Path:             DefaultPath,
		HandshakeTimeout: 10 * time.Second,
		logger:           logger,
	}
}

// URL returns the WebSocket URL for host and port.
func (d *Dialer) URL(host string, port int) string {
	path := d.Path
	if path == "" {
		path = DefaultPath
	}
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   path,
	}
	return u.String()
}

// Open dials the server and returns an unbound client.
func (d *Dialer) Open(ctx context.Context, host string, port int) (remote.Client, error) {
	ws := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: d.HandshakeTimeout,
	}

	target := d.URL(host, port)
	conn, _, err := ws.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	d.log().Debug("WebSocket opened", slog.String("url", target))
	return &Client{conn: conn, logger: d.log()}, nil
}

// Bind attaches traversalSource to a client returned by Open.
func (d *Dialer) Bind(client remote.Client, traversalSource string) (remote.Connection, error) {
	c, ok := client.(*Client)
	if !ok {
		return nil, fmt.Errorf("cannot bind client of type %T", client)
	}
	if strings.TrimSpace(traversalSource) == "" {
		return nil, errors.New("traversal source alias must not be empty")
	}
	if c.isClosed() {
		return nil, ErrClosed
	}
	return &Connection{client: c, source: traversalSource}, nil
}

func (d *Dialer) log() *slog.Logger {
	if d.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d.logger
}

// ErrClosed is returned when using a client after Close or after an I/O
// error broke its connection.
var ErrClosed = errors.New("wire: client closed")

// Client is one WebSocket session.
type Client struct {
	conn   *websocket.Conn
	logger *slog.Logger

	// mu serialises request/response exchanges on conn.
	mu     sync.Mutex
	closed bool
}

// Close sends a close frame and releases the socket. Safe to call twice.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, deadline)
	return c.conn.Close()
}

// fail marks the client closed after an I/O error. A websocket connection
// cannot be reused once a read or write has failed. Callers hold mu.
func (c *Client) fail(err error) error {
	if !c.closed {
		c.closed = true
		_ = c.conn.Close()
		c.logger.Debug("Closed client after I/O error", slog.Any("error", err))
	}
	return err
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Connection is a Client bound to a traversal source alias.
type Connection struct {
	client *Client
	source string
}

var _ remote.Connection = (*Connection)(nil)

// TraversalSource returns the bound alias.
func (c *Connection) TraversalSource() string {
	return c.source
}

// Close closes the underlying client.
func (c *Connection) Close() error {
	return c.client.Close()
}

// Submit evaluates traversal against the bound source and collects every
// result across partial responses.
func (c *Connection) Submit(ctx context.Context, traversal string) ([]any, error) {
	cl := c.client
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.closed {
		return nil, ErrClosed
	}

	requestID := uuid.NewString()
	frame, err := encodeRequest(requestID, c.source, traversal)
	if err != nil {
		return nil, err
	}

	deadline, _ := ctx.Deadline()
	if err := cl.conn.SetWriteDeadline(deadline); err != nil {
		return nil, cl.fail(err)
	}
	if err := cl.conn.SetReadDeadline(deadline); err != nil {
		return nil, cl.fail(err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = cl.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := cl.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return nil, cl.fail(ctxOr(ctx, fmt.Errorf("write request: %w", err)))
	}

	cl.logger.Debug("Submitted traversal",
		slog.String("request_id", requestID),
		slog.String("traversal_source", c.source),
	)

	var results []any
	for {
		_, msg, err := cl.conn.ReadMessage()
		if err != nil {
			return nil, cl.fail(ctxOr(ctx, fmt.Errorf("read response: %w", err)))
		}

		resp, err := decodeResponse(msg)
		if err != nil {
			return nil, err
		}
		if resp.RequestID != requestID {
			cl.logger.Debug("Skipping response for another request",
				slog.String("request_id", resp.RequestID))
			continue
		}

		switch resp.Status.Code {
		case StatusNoContent:
			return results, nil
		case StatusSuccess, StatusPartialContent:
			data, err := decodeData(resp.Result.Data)
			if err != nil {
				return nil, err
			}
			results, err = flatten(results, data)
			if err != nil {
				return nil, err
			}
			if resp.Status.Code == StatusSuccess {
				return results, nil
			}
		default:
			return nil, &ResponseError{Code: resp.Status.Code, Message: resp.Status.Message}
		}
	}
}

func decodeData(raw []byte) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return DecodeGraphSON(raw)
}

// ctxOr prefers the context's error when it ended the exchange.
func ctxOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	// The socket deadline can fire just before the context's own timer.
	if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
		return context.DeadlineExceeded
	}
	return err
}
