package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/learnlive/server/internal/presence"
	"github.com/learnlive/server/internal/router"
	"github.com/learnlive/server/internal/session"
	"github.com/learnlive/server/internal/transfer"
	"github.com/learnlive/server/internal/wire"
	"github.com/learnlive/server/pkg/logger"
)

// Conn owns one client socket. Reads happen only on the connection goroutine;
// writes are serialized by writeMu because presence pushes arrive from other
// goroutines. The same lock covers a download's metadata frame and its raw
// byte phase, so a push can never land between them.
type Conn struct {
	id      string
	sock    net.Conn
	dec     *wire.Decoder
	writeMu sync.Mutex

	sessions *session.Registry
	presence *presence.Registry
	tracker  *transfer.Tracker
	routes   *router.Router

	readTimeout time.Duration

	mu    sync.Mutex
	bound *session.Session
}

func newConn(sock net.Conn, deps connDeps) *Conn {
	return &Conn{
		id:          uuid.New().String(),
		sock:        sock,
		dec:         wire.NewDecoder(sock),
		sessions:    deps.sessions,
		presence:    deps.presence,
		tracker:     deps.tracker,
		routes:      deps.routes,
		readTimeout: deps.readTimeout,
	}
}

type connDeps struct {
	sessions    *session.Registry
	presence    *presence.Registry
	tracker     *transfer.Tracker
	routes      *router.Router
	readTimeout time.Duration
}

// WriteFrame encodes payload as one frame and writes it. Safe for concurrent
// use; this is the handle the presence registry pushes through. A payload
// that fails to serialize is replaced with a generic server error envelope so
// the connection stays alive.
func (c *Conn) WriteFrame(payload any) error {
	frame, err := wire.Encode(payload)
	if err != nil {
		logger.Errorf("conn %s: encode response: %v", c.id, err)
		frame, err = wire.Encode(wire.Errorf("Internal server error"))
		if err != nil {
			return err
		}
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.sock.Write(frame); err != nil {
		return err
	}
	return nil
}

// writeBlob writes the metadata frame and the raw bytes under one lock
// acquisition.
func (c *Conn) writeBlob(b *wire.BlobResponse) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := wire.WriteFrame(c.sock, b.Payload); err != nil {
		return err
	}
	return wire.WriteBlob(c.sock, b.Data)
}

// ReadBlob consumes the bulk binary phase of an upload from the connection.
// Only the dispatching handler calls this, on the connection goroutine.
func (c *Conn) ReadBlob(size int64) ([]byte, error) {
	c.touchDeadline()
	return wire.ReadBlob(c.dec.Reader(), size)
}

// Drain discards size raw bytes of a rejected upload so the stream returns to
// a frame boundary.
func (c *Conn) Drain(size int64) error {
	c.touchDeadline()
	_, err := io.CopyN(io.Discard, c.dec.Reader(), size)
	return err
}

func (c *Conn) touchDeadline() {
	if c.readTimeout > 0 {
		c.sock.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
}

func (c *Conn) bindSession(s session.Session) {
	c.mu.Lock()
	prev := c.bound
	c.bound = &s
	c.mu.Unlock()
	if prev == nil || prev.Token == s.Token {
		return
	}
	// A fresh login on an already-authenticated connection replaces its
	// session; the old token would otherwise stay valid until the process
	// exits.
	c.sessions.Revoke(prev.Token)
	if prev.UserID != s.UserID {
		c.presence.UnregisterIf(prev.UserID, c)
	}
}

func (c *Conn) clearSession() {
	c.mu.Lock()
	c.bound = nil
	c.mu.Unlock()
}

func (c *Conn) boundSession() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bound
}

// serve runs the read, dispatch, write loop until the peer goes away or the
// context is canceled. Cleanup always runs: abandoned chunked transfers are
// discarded, the presence entry is dropped and the session revoked.
func (c *Conn) serve(ctx context.Context) {
	defer c.cleanup()
	logger.Debugf("conn %s: accepted from %s", c.id, c.sock.RemoteAddr())

	for {
		if ctx.Err() != nil {
			return
		}
		c.touchDeadline()
		env, err := c.dec.Next()
		if err != nil {
			var malformed *wire.MalformedFrameError
			if errors.As(err, &malformed) {
				// The stream is still framed correctly, so answer and
				// keep reading.
				logger.Debugf("conn %s: %v", c.id, err)
				if werr := c.WriteFrame(wire.Errorf("Malformed request")); werr != nil {
					return
				}
				continue
			}
			var tooLarge *wire.FrameTooLargeError
			if errors.As(err, &tooLarge) {
				// The declared payload is never read, so the stream cannot
				// be realigned. Answer and close.
				logger.Debugf("conn %s: %v", c.id, err)
				c.WriteFrame(wire.Errorf("Frame too large"))
				return
			}
			if !errors.Is(err, wire.ErrPeerClosed) {
				logger.Debugf("conn %s: read: %v", c.id, err)
			}
			return
		}

		req := &router.Request{
			Envelope:     env,
			ConnID:       c.id,
			Blob:         c,
			Pusher:       c,
			BindSession:  c.bindSession,
			ClearSession: c.clearSession,
		}
		resp := c.routes.Dispatch(ctx, req)
		if resp == nil {
			continue
		}

		var werr error
		if blob, ok := resp.(*wire.BlobResponse); ok {
			werr = c.writeBlob(blob)
		} else {
			werr = c.WriteFrame(resp)
		}
		if werr != nil {
			logger.Debugf("conn %s: write: %v", c.id, werr)
			return
		}
	}
}

func (c *Conn) cleanup() {
	c.tracker.ReleaseOwner(c.id)
	if s := c.boundSession(); s != nil {
		c.presence.UnregisterIf(s.UserID, c)
		c.sessions.Revoke(s.Token)
	}
	c.sock.Close()
	logger.Debugf("conn %s: closed", c.id)
}
