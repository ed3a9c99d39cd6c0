package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/learnlive/server/internal/presence"
	"github.com/learnlive/server/internal/router"
	"github.com/learnlive/server/internal/session"
	"github.com/learnlive/server/internal/transfer"
	"github.com/learnlive/server/pkg/logger"
)

// Options configures the TCP listener.
type Options struct {
	Addr string
	// ReadTimeout bounds how long a connection may sit idle between frames.
	// Zero disables the deadline.
	ReadTimeout time.Duration
}

// Server accepts TCP clients and runs one goroutine per connection.
type Server struct {
	opts     Options
	sessions *session.Registry
	presence *presence.Registry
	tracker  *transfer.Tracker
	routes   *router.Router

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

func New(opts Options, sessions *session.Registry, pres *presence.Registry, tracker *transfer.Tracker, routes *router.Router) *Server {
	return &Server{
		opts:     opts,
		sessions: sessions,
		presence: pres,
		tracker:  tracker,
		routes:   routes,
	}
}

// ListenAndServe binds the address and accepts until the context is canceled
// or the listener fails. It blocks until every connection goroutine has
// returned.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.opts.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	logger.Infof("listening on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		sock, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			logger.Warnf("accept: %v", err)
			time.Sleep(100 * time.Millisecond)
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			// Unblock a pending read when the server shuts down.
			stop := context.AfterFunc(ctx, func() { sock.Close() })
			defer stop()
			c := newConn(sock, connDeps{
				sessions:    s.sessions,
				presence:    s.presence,
				tracker:     s.tracker,
				routes:      s.routes,
				readTimeout: s.opts.ReadTimeout,
			})
			c.serve(ctx)
		}()
	}

	s.wg.Wait()
	return nil
}

// Addr returns the bound listen address, or nil before ListenAndServe.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
