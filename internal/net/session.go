package net

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ruyzb5645usejk/robinsr/internal/net/packet"
)

// ErrSessionClosed is returned by Send after the session has shut down.
var ErrSessionClosed = errors.New("session closed")

// Frame is one decoded command as it travels through the session queues.
type Frame struct {
	Cmd  packet.CmdID
	Body []byte
}

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; commands are handled one at a time by the
// session's dispatch goroutine, which serializes everything touching
// this player's state.
type Session struct {
	ID   uint64
	conn net.Conn

	state atomic.Int32 // packet.SessionState stored as int32

	InQueue  chan Frame // dispatch goroutine reads commands from here
	OutQueue chan Frame // writer goroutine reads responses from here

	IP string

	playerUID atomic.Uint32 // bound player identity, 0 until login

	// Movement-save throttle. Owned by this session alone: one deadline
	// per connection, never shared across sessions.
	throttleMu   sync.Mutex
	nextMoveSave time.Time

	maxFrame     uint32
	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// Per-second packet rate limiter (readLoop goroutine only, no lock needed)
	pktPerSec  int   // max packets/sec (0 = unlimited)
	pktCount   int   // packets received this second
	pktResetAt int64 // unix second of last counter reset

	log *zap.Logger
}

// SessionOptions bundles the per-connection tuning the server hands to
// each new session.
type SessionOptions struct {
	InQueueSize  int
	OutQueueSize int
	MaxFrameSize uint32
	WriteTimeout time.Duration
	PktPerSec    int
}

func NewSession(conn net.Conn, id uint64, opts SessionOptions, log *zap.Logger) *Session {
	s := &Session{
		ID:           id,
		conn:         conn,
		InQueue:      make(chan Frame, opts.InQueueSize),
		OutQueue:     make(chan Frame, opts.OutQueueSize),
		IP:           conn.RemoteAddr().String(),
		maxFrame:     opts.MaxFrameSize,
		writeTimeout: opts.WriteTimeout,
		closeCh:      make(chan struct{}),
		pktPerSec:    opts.PktPerSec,
		log:          log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateHandshake))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// PlayerUID returns the bound player identity, or 0 before login.
func (s *Session) PlayerUID() uint32 {
	return s.playerUID.Load()
}

// BindPlayer records the player identity this connection acts for.
func (s *Session) BindPlayer(uid uint32) {
	s.playerUID.Store(uid)
}

// AllowMoveSave implements the movement persistence throttle: the first
// call after the deadline wins and pushes the deadline out by interval;
// calls inside the window report false and the update is dropped, not
// queued.
func (s *Session) AllowMoveSave(now time.Time, interval time.Duration) bool {
	s.throttleMu.Lock()
	defer s.throttleMu.Unlock()
	if now.Before(s.nextMoveSave) {
		return false
	}
	s.nextMoveSave = now.Add(interval)
	return true
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send serializes a response payload and queues it for the writer
// goroutine. Failure is connection-fatal for the caller: a closed session
// or a full queue returns an error instead of blocking the dispatcher.
func (s *Session) Send(cmd packet.CmdID, payload any) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode cmd %d: %w", cmd, err)
	}
	select {
	case s.OutQueue <- Frame{Cmd: cmd, Body: body}:
		return nil
	default:
		s.log.Warn("output queue full, dropping slow connection")
		s.Close()
		return fmt.Errorf("send cmd %d: output queue full", cmd)
	}
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed when the session shuts down.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

// readLoop runs in its own goroutine. It reads frames from the TCP
// connection and pushes them onto InQueue for the dispatch goroutine.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		default:
		}

		cmd, body, err := ReadFrame(s.conn, s.maxFrame)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}

		// Per-second packet rate limiter
		if s.pktPerSec > 0 {
			now := time.Now().Unix()
			if now != s.pktResetAt {
				s.pktCount = 0
				s.pktResetAt = now
			}
			s.pktCount++
			if s.pktCount > s.pktPerSec {
				s.log.Warn("packet rate exceeded, disconnecting", zap.Int("pps", s.pktCount))
				return
			}
		}

		// Block until InQueue has space or the session closes. The
		// readLoop goroutine is per-session, so backpressure here only
		// stalls this client.
		select {
		case s.InQueue <- Frame{Cmd: cmd, Body: body}:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop runs in its own goroutine. It reads responses from OutQueue
// and writes them as framed data to the TCP connection.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case f := <-s.OutQueue:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := WriteFrame(s.conn, f.Cmd, f.Body); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
