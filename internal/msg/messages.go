// Package msg defines the typed command payloads exchanged with the
// client. Payloads are JSON-encoded inside binary frames; field names
// follow the wire schema (snake_case).
package msg

// Retcode values. Handlers in this server always answer success; failure
// modes degrade the payload or terminate the connection instead.
const RetSucc uint32 = 0

type PlayerGetTokenCsReq struct {
	UID   uint32 `json:"uid"`
	Token string `json:"token"`
}

type PlayerGetTokenScRsp struct {
	Retcode uint32 `json:"retcode"`
	UID     uint32 `json:"uid"`
}

type PlayerHeartBeatCsReq struct {
	ClientTimeMs uint64 `json:"client_time_ms"`
}

type PlayerHeartBeatScRsp struct {
	Retcode      uint32              `json:"retcode"`
	ClientTimeMs uint64              `json:"client_time_ms"`
	ServerTimeMs uint64              `json:"server_time_ms"`
	DownloadData *ClientDownloadData `json:"download_data,omitempty"`
}

// ClientDownloadData is an operator-controlled blob passed through to the
// client. The server never interprets its content.
type ClientDownloadData struct {
	Version uint32 `json:"version"`
	Time    int64  `json:"time"`
	Data    []byte `json:"data"` // base64 on the wire
}

type GetBasicInfoCsReq struct{}

type GetBasicInfoScRsp struct {
	Retcode                 uint32 `json:"retcode"`
	CurDay                  uint32 `json:"cur_day"`
	ExchangeTimes           uint32 `json:"exchange_times"`
	NextRecoverTime         uint64 `json:"next_recover_time"`
	WeekCocoonFinishedCount uint32 `json:"week_cocoon_finished_count"`
}

type GetCurSceneInfoCsReq struct{}

type GetCurSceneInfoScRsp struct {
	Retcode uint32     `json:"retcode"`
	Scene   *SceneInfo `json:"scene,omitempty"`
}

type SceneEntityMoveCsReq struct {
	EntityMotionList []EntityMotion `json:"entity_motion_list"`
}

type EntityMotion struct {
	EntityID uint32      `json:"entity_id"`
	Motion   *MotionInfo `json:"motion,omitempty"`
}

type SceneEntityMoveScRsp struct {
	Retcode uint32 `json:"retcode"`
}

type Vector struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

type MotionInfo struct {
	Pos Vector `json:"pos"`
	Rot Vector `json:"rot"`
}
