package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// SessionState represents the session's current protocol phase.
type SessionState int

const (
	StateHandshake     SessionState = iota // connected, not yet bound to a player
	StateInGame                            // bound to a player uid
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateInGame:
		return "InGame"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for command handlers. The session
// pointer is passed as an opaque interface to avoid import cycles. A
// non-nil error is session-fatal: the dispatch loop stops and tears the
// session down.
type HandlerFunc func(sess any, body []byte) error

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[SessionState]bool
}

// Registry maps command ids to handlers with state-based access control.
type Registry struct {
	handlers map[CmdID]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[CmdID]*handlerEntry),
		log:      log,
	}
}

// Register maps a command id to a handler, restricted to the given
// session states.
func (reg *Registry) Register(cmd CmdID, states []SessionState, fn HandlerFunc) {
	allowed := make(map[SessionState]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[cmd] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Dispatch finds the handler for cmd, validates the session state, and
// calls the handler. Unknown command ids are ignored; a disallowed state
// or a handler error is returned to the caller.
func (reg *Registry) Dispatch(sess any, state SessionState, cmd CmdID, body []byte) error {
	reg.log.Debug("command received",
		zap.Uint16("cmd", uint16(cmd)),
		zap.Int("size", len(body)),
		zap.String("state", state.String()),
	)

	entry, ok := reg.handlers[cmd]
	if !ok {
		reg.log.Debug("unknown command id", zap.Uint16("cmd", uint16(cmd)), zap.String("state", state.String()))
		return nil // silently ignore unknown commands
	}

	if !entry.allowedStates[state] {
		reg.log.Warn("command not allowed in state",
			zap.Uint16("cmd", uint16(cmd)),
			zap.String("state", state.String()),
		)
		return fmt.Errorf("cmd %d not allowed in state %s", cmd, state)
	}

	return reg.safeCall(entry.fn, sess, body, cmd)
}

// safeCall executes a handler with panic recovery so one malformed
// command cannot crash the session goroutine with a bare panic.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, body []byte, cmd CmdID) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.Uint16("cmd", uint16(cmd)),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for cmd %d: %v", cmd, rec)
		}
	}()
	return fn(sess, body)
}
