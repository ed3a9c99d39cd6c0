package router

import (
	"context"

	"github.com/learnlive/server/internal/session"
	"github.com/learnlive/server/internal/wire"
	"github.com/learnlive/server/pkg/logger"
)

// BlobReader gives bulk upload handlers access to the raw byte phase that
// follows their metadata frame on the same connection. Drain discards bytes
// of a rejected upload; the announced count must leave the stream either way
// before the next frame is read.
type BlobReader interface {
	ReadBlob(size int64) ([]byte, error)
	Drain(size int64) error
}

// Request carries one decoded envelope through dispatch. Session is set
// before gated handlers run; handlers must not re-authenticate. ConnID
// identifies the owning connection so transfer state can be released when it
// drops. Pusher is the live socket handle used to register presence.
type Request struct {
	Envelope wire.Envelope
	Session  *session.Session
	ConnID   string
	Blob     BlobReader
	Pusher   Pusher

	// BindSession is set by the connection layer. Login and signup handlers
	// call it with the session they established so the connection can revoke
	// it and drop the presence entry when the socket closes.
	BindSession func(s session.Session)
	// ClearSession undoes BindSession on logout.
	ClearSession func()
}

// Pusher is the write side of the connection, safe for concurrent use.
type Pusher interface {
	WriteFrame(payload any) error
}

// Handler processes one request and returns the response payload. A nil
// return means the handler already produced its response out of band (not
// used by any current handler, but tolerated).
type Handler func(ctx context.Context, req *Request) any

type route struct {
	handler      Handler
	requiresAuth bool
}

// Router maps envelope type tags to handlers and enforces token
// authentication for gated tags. The table is built once at startup and read
// concurrently by every connection goroutine, so Register must not be called
// after serving starts.
type Router struct {
	sessions *session.Registry
	routes   map[string]route
}

func New(sessions *session.Registry) *Router {
	return &Router{
		sessions: sessions,
		routes:   make(map[string]route),
	}
}

// Register binds a type tag to a handler. Tags registered with requiresAuth
// are dispatched only after the envelope token resolves to an active session.
func (r *Router) Register(tag string, h Handler, requiresAuth bool) {
	r.routes[tag] = route{handler: h, requiresAuth: requiresAuth}
}

// Dispatch routes one envelope. Unknown tags and failed auth return error
// envelopes without invoking any handler.
func (r *Router) Dispatch(ctx context.Context, req *Request) any {
	rt, ok := r.routes[req.Envelope.Type]
	if !ok {
		logger.Debugf("router: unknown message type %q", req.Envelope.Type)
		return wire.Errorf("Unknown message type")
	}

	if rt.requiresAuth {
		s, err := r.sessions.Lookup(req.Envelope.Token)
		if err != nil {
			return wire.Errorf("Unauthorized")
		}
		req.Session = &s
	}

	return rt.handler(ctx, req)
}
