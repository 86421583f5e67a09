package packet

// CmdID identifies a command on the wire. CS = client→server,
// SC = server→client.
type CmdID uint16

const (
	CmdPlayerGetTokenCsReq CmdID = 101
	CmdPlayerGetTokenScRsp CmdID = 102

	CmdPlayerHeartBeatCsReq CmdID = 103
	CmdPlayerHeartBeatScRsp CmdID = 104

	CmdGetBasicInfoCsReq CmdID = 105
	CmdGetBasicInfoScRsp CmdID = 106

	CmdGetCurSceneInfoCsReq CmdID = 1401
	CmdGetCurSceneInfoScRsp CmdID = 1402

	CmdSceneEntityMoveCsReq CmdID = 1403
	CmdSceneEntityMoveScRsp CmdID = 1404
)
