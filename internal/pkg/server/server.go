package server

import (
	"context"
	"net"
	"time"

	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/message"
	"github.com/Oldmacintosh/TypeSpeed/internal/pkg/wire"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// DefaultHandshakeTimeout is how long a new connection has to identify
// itself before it is dropped.
const DefaultHandshakeTimeout = 30 * time.Second

// ConnHandler takes ownership of a screened connection.
type ConnHandler interface {
	HandleConn(conn net.Conn)
}

// Server accepts TCP connections, screens out probes with the handshake
// byte, and hands legitimate clients to the handler.
type Server struct {
	addr             string
	handler          ConnHandler
	handshakeTimeout time.Duration
}

// Cfg configures a Server.
type Cfg func(*Server) error

// WithAddr sets the listen address.
func WithAddr(addr string) Cfg {
	return func(s *Server) error {
		s.addr = addr
		return nil
	}
}

// WithHandler sets the connection handler.
func WithHandler(handler ConnHandler) Cfg {
	return func(s *Server) error {
		s.handler = handler
		return nil
	}
}

// WithHandshakeTimeout sets the grace period for the handshake byte.
func WithHandshakeTimeout(timeout time.Duration) Cfg {
	return func(s *Server) error {
		if timeout <= 0 {
			return errors.New("handshake timeout must be positive")
		}
		s.handshakeTimeout = timeout
		return nil
	}
}

// NewServer creates a new Server with the given configuration.
func NewServer(cfgs ...Cfg) (*Server, error) {
	s := &Server{
		handshakeTimeout: DefaultHandshakeTimeout,
	}
	for _, cfg := range cfgs {
		if err := cfg(s); err != nil {
			return nil, errors.Wrap(err, "apply Server cfg failed")
		}
	}
	if s.handler == nil {
		return nil, errors.New("handler is required")
	}
	return s, nil
}

// ListenAndServe listens on the configured address and serves until the
// context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s failed", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until the context is cancelled. Accept
// failures are logged and the loop continues; they never bring the server
// down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	logger.WithField("addr", ln.Addr().String()).Info("server listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				logger.Info("server shutdown")
				return nil
			}
			logger.WithError(err).Warning("accept failed")
			continue
		}
		go s.screen(conn)
	}
}

// screen enforces the handshake: a legitimate client sends the reserved
// byte within the grace period; anything else is an incidental or probe
// connection and is closed.
func (s *Server) screen(conn net.Conn) {
	if err := conn.SetReadDeadline(time.Now().Add(s.handshakeTimeout)); err != nil {
		_ = conn.Close()
		return
	}
	buf := make([]byte, wire.HeaderSize)
	n, err := conn.Read(buf)
	if err != nil || string(buf[:n]) != message.Handshake {
		logger.WithField("remote", conn.RemoteAddr().String()).Info("dropped unidentified connection")
		_ = conn.Close()
		return
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		_ = conn.Close()
		return
	}
	logger.WithField("remote", conn.RemoteAddr().String()).Info("connection accepted")
	s.handler.HandleConn(conn)
}
