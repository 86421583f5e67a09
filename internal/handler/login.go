package handler

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ruyzb5645usejk/robinsr/internal/msg"
	"github.com/ruyzb5645usejk/robinsr/internal/net"
	"github.com/ruyzb5645usejk/robinsr/internal/net/packet"
	"github.com/ruyzb5645usejk/robinsr/internal/persist"
	"github.com/ruyzb5645usejk/robinsr/internal/player"
)

// HandleGetToken binds the connection to a player identity. A first-seen
// uid gets a default record; a known uid must present a token matching
// the stored hash. Binding failure terminates the connection; there is
// no error payload in this protocol.
func HandleGetToken(sess *net.Session, body []byte, deps *Deps) error {
	var req msg.PlayerGetTokenCsReq
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("decode get token: %w", err)
	}
	if req.UID == 0 {
		return errors.New("get token: missing uid")
	}

	ctx, cancel := deps.storeCtx()
	defer cancel()

	ok, err := deps.Store.VerifyToken(ctx, req.UID, req.Token)
	switch {
	case errors.Is(err, persist.ErrNotFound):
		st := player.Default(req.UID)
		if err := deps.Store.Save(ctx, st); err != nil {
			return fmt.Errorf("create player %d: %w", req.UID, err)
		}
		deps.Log.Info("new player record", zap.Uint32("uid", req.UID))
	case err != nil:
		return fmt.Errorf("verify token for %d: %w", req.UID, err)
	case !ok:
		deps.Log.Warn("token mismatch", zap.Uint32("uid", req.UID), zap.Uint64("session", sess.ID))
		return fmt.Errorf("token mismatch for %d", req.UID)
	}

	sess.BindPlayer(req.UID)
	sess.SetState(packet.StateInGame)
	deps.Log.Info("player bound", zap.Uint32("uid", req.UID), zap.Uint64("session", sess.ID))

	return sess.Send(packet.CmdPlayerGetTokenScRsp, msg.PlayerGetTokenScRsp{
		Retcode: msg.RetSucc,
		UID:     req.UID,
	})
}
