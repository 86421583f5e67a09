package net

import (
	"net"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ruyzb5645usejk/robinsr/internal/metrics"
	"github.com/ruyzb5645usejk/robinsr/internal/net/packet"
)

// Server accepts TCP connections and runs one dispatch goroutine per
// session. Sessions are independent: a slow or blocked player never
// stalls another player's command processing.
type Server struct {
	listener net.Listener
	nextID   atomic.Uint64
	reg      *packet.Registry
	opts     SessionOptions
	stats    *metrics.Collector // optional
	log      *zap.Logger
	closeCh  chan struct{}
}

func NewServer(bindAddr string, reg *packet.Registry, opts SessionOptions, stats *metrics.Collector, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: ln,
		reg:      reg,
		opts:     opts,
		stats:    stats,
		log:      log,
		closeCh:  make(chan struct{}),
	}, nil
}

// AcceptLoop runs in its own goroutine. It accepts connections, starts
// the session's I/O goroutines, and spawns the session's dispatch
// goroutine.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return // server shutting down
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		id := s.nextID.Add(1)
		sess := NewSession(conn, id, s.opts, s.log)
		sess.Start()
		s.log.Info("player connected", zap.Uint64("session", id), zap.String("ip", sess.IP))
		if s.stats != nil {
			s.stats.SessionOpened()
		}

		go s.serveSession(sess)
	}
}

// serveSession is the session's dispatch loop: it consumes decoded
// frames one at a time, which serializes all handling for this player.
// Any dispatch error is session-fatal; in-flight work for a session that
// disconnected mid-request is simply discarded with the queues.
func (s *Server) serveSession(sess *Session) {
	defer func() {
		sess.Close()
		if s.stats != nil {
			s.stats.SessionClosed()
		}
		s.log.Info("player disconnected", zap.Uint64("session", sess.ID), zap.Uint32("uid", sess.PlayerUID()))
	}()

	for {
		select {
		case f := <-sess.InQueue:
			if s.stats != nil {
				s.stats.CommandHandled(uint16(f.Cmd))
			}
			if err := s.reg.Dispatch(sess, sess.State(), f.Cmd, f.Body); err != nil {
				s.log.Warn("session terminated",
					zap.Uint64("session", sess.ID),
					zap.Uint16("cmd", uint16(f.Cmd)),
					zap.Error(err),
				)
				return
			}
		case <-sess.Done():
			return
		}
	}
}

// Shutdown stops accepting new connections.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
