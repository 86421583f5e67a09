package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ruyzb5645usejk/robinsr/internal/config"
	"github.com/ruyzb5645usejk/robinsr/internal/data"
	"github.com/ruyzb5645usejk/robinsr/internal/metrics"
	"github.com/ruyzb5645usejk/robinsr/internal/net"
	"github.com/ruyzb5645usejk/robinsr/internal/net/packet"
	"github.com/ruyzb5645usejk/robinsr/internal/player"
	"github.com/ruyzb5645usejk/robinsr/internal/scripting"
)

// PlayerStore is the persistence contract handlers depend on. The live
// implementation is persist.PlayerRepo; tests substitute an in-memory
// store.
type PlayerStore interface {
	Load(ctx context.Context, uid uint32) (*player.State, error)
	Save(ctx context.Context, st *player.State) error
	VerifyToken(ctx context.Context, uid uint32, token string) (bool, error)
}

// Deps holds shared dependencies injected into all command handlers.
type Deps struct {
	Store   PlayerStore
	Catalog *data.Catalog
	Config  *config.Config
	Log     *zap.Logger
	Notice  *scripting.Notice  // nil = heartbeats carry no download blob
	Stats   *metrics.Collector // optional
	Now     func() time.Time   // nil = time.Now
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) nowMs() uint64 {
	return uint64(d.now().UnixMilli())
}

const storeTimeout = 5 * time.Second

func (d *Deps) storeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

// RegisterAll registers all command handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	// Handshake phase: only session binding and heartbeats.
	reg.Register(packet.CmdPlayerGetTokenCsReq,
		[]packet.SessionState{packet.StateHandshake},
		func(sess any, body []byte) error {
			return HandleGetToken(sess.(*net.Session), body, deps)
		},
	)
	reg.Register(packet.CmdPlayerHeartBeatCsReq,
		[]packet.SessionState{packet.StateHandshake, packet.StateInGame},
		func(sess any, body []byte) error {
			return HandlePlayerHeartBeat(sess.(*net.Session), body, deps)
		},
	)

	// In-game phase
	inGame := []packet.SessionState{packet.StateInGame}

	reg.Register(packet.CmdGetBasicInfoCsReq, inGame,
		func(sess any, body []byte) error {
			return HandleGetBasicInfo(sess.(*net.Session), body, deps)
		},
	)
	reg.Register(packet.CmdGetCurSceneInfoCsReq, inGame,
		func(sess any, body []byte) error {
			return HandleGetCurSceneInfo(sess.(*net.Session), body, deps)
		},
	)
	reg.Register(packet.CmdSceneEntityMoveCsReq, inGame,
		func(sess any, body []byte) error {
			return HandleSceneEntityMove(sess.(*net.Session), body, deps)
		},
	)
}
