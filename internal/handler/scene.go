package handler

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ruyzb5645usejk/robinsr/internal/msg"
	"github.com/ruyzb5645usejk/robinsr/internal/net"
	"github.com/ruyzb5645usejk/robinsr/internal/net/packet"
	"github.com/ruyzb5645usejk/robinsr/internal/player"
	"github.com/ruyzb5645usejk/robinsr/internal/scene"
)

// HandleGetCurSceneInfo composes the player's current scene. A catalog
// miss degrades to the stub scene; the client always gets a valid
// response with retcode success, never a missing-resource error.
func HandleGetCurSceneInfo(sess *net.Session, _ []byte, deps *Deps) error {
	ctx, cancel := deps.storeCtx()
	defer cancel()

	st, err := deps.Store.Load(ctx, sess.PlayerUID())
	if err != nil {
		// Store failure is not locally recoverable: best-effort empty
		// response, then tear the session down.
		_ = sess.Send(packet.CmdGetCurSceneInfoScRsp, msg.GetCurSceneInfoScRsp{Retcode: msg.RetSucc})
		return fmt.Errorf("load player %d: %w", sess.PlayerUID(), err)
	}

	info, err := scene.Compose(st, deps.Catalog, scene.Options{
		WorldLevel: deps.Config.Gameplay.WorldLevel,
		Marker:     deps.Config.Gameplay.Marker,
	})
	if err != nil {
		var notFound *scene.ErrResourceNotFound
		if !errors.As(err, &notFound) {
			return fmt.Errorf("compose scene for %d: %w", st.UID, err)
		}
		deps.Log.Info("scene degraded to stub",
			zap.Uint32("uid", st.UID),
			zap.Uint32("entry", st.Scene.EntryID),
			zap.Error(err),
		)
		if deps.Stats != nil {
			deps.Stats.ComposeFailed()
		}
		info = scene.Stub(st)
	}

	return sess.Send(packet.CmdGetCurSceneInfoScRsp, msg.GetCurSceneInfoScRsp{
		Retcode: msg.RetSucc,
		Scene:   info,
	})
}

// HandleSceneEntityMove applies a movement batch with throttled
// persistence. Inside the save window the batch is dropped and only
// acknowledged, a debounce rather than a queue. Outside it, motions addressed
// to the player's own entity update the persisted position.
func HandleSceneEntityMove(sess *net.Session, body []byte, deps *Deps) error {
	var req msg.SceneEntityMoveCsReq
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("decode entity move: %w", err)
	}

	if !sess.AllowMoveSave(deps.now(), deps.Config.Gameplay.MoveSaveInterval) {
		return sess.Send(packet.CmdSceneEntityMoveScRsp, msg.SceneEntityMoveScRsp{Retcode: msg.RetSucc})
	}

	ctx, cancel := deps.storeCtx()
	defer cancel()

	st, err := deps.Store.Load(ctx, sess.PlayerUID())
	if err != nil {
		_ = sess.Send(packet.CmdSceneEntityMoveScRsp, msg.SceneEntityMoveScRsp{Retcode: msg.RetSucc})
		return fmt.Errorf("load player %d: %w", sess.PlayerUID(), err)
	}

	applied := false
	for _, em := range req.EntityMotionList {
		if em.EntityID != player.SelfEntityID || em.Motion == nil {
			continue
		}
		st.Position.X = em.Motion.Pos.X
		st.Position.Y = em.Motion.Pos.Y
		st.Position.Z = em.Motion.Pos.Z
		st.Position.RotY = em.Motion.Rot.Y
		applied = true
	}

	if applied {
		if err := deps.Store.Save(ctx, st); err != nil {
			_ = sess.Send(packet.CmdSceneEntityMoveScRsp, msg.SceneEntityMoveScRsp{Retcode: msg.RetSucc})
			return fmt.Errorf("save player %d: %w", st.UID, err)
		}
	}

	return sess.Send(packet.CmdSceneEntityMoveScRsp, msg.SceneEntityMoveScRsp{Retcode: msg.RetSucc})
}
