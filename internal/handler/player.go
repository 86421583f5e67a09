package handler

import (
	"encoding/json"
	"fmt"

	"github.com/ruyzb5645usejk/robinsr/internal/msg"
	"github.com/ruyzb5645usejk/robinsr/internal/net"
	"github.com/ruyzb5645usejk/robinsr/internal/net/packet"
)

// HandleGetBasicInfo returns static status fields. Day counter and
// recovery timer are instance constants, not player state.
func HandleGetBasicInfo(sess *net.Session, _ []byte, deps *Deps) error {
	return sess.Send(packet.CmdGetBasicInfoScRsp, msg.GetBasicInfoScRsp{
		Retcode:                 msg.RetSucc,
		CurDay:                  1,
		ExchangeTimes:           0,
		NextRecoverTime:         2281337,
		WeekCocoonFinishedCount: 0,
	})
}

// HandlePlayerHeartBeat echoes the client clock, reports server time,
// and attaches the operator notice blob when one is loaded. The blob's
// presence is a process-wide toggle, not per-session state.
func HandlePlayerHeartBeat(sess *net.Session, body []byte, deps *Deps) error {
	var req msg.PlayerHeartBeatCsReq
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("decode heartbeat: %w", err)
	}

	rsp := msg.PlayerHeartBeatScRsp{
		Retcode:      msg.RetSucc,
		ClientTimeMs: req.ClientTimeMs,
		ServerTimeMs: deps.nowMs(),
	}
	if deps.Notice != nil {
		rsp.DownloadData = &msg.ClientDownloadData{
			Version: deps.Notice.Version,
			Time:    int64(deps.nowMs()),
			Data:    deps.Notice.Data(),
		}
	}
	return sess.Send(packet.CmdPlayerHeartBeatScRsp, rsp)
}
