package packet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatchRoutesToHandler(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	var gotBody []byte
	reg.Register(CmdPlayerHeartBeatCsReq, []SessionState{StateHandshake, StateInGame},
		func(_ any, body []byte) error {
			gotBody = body
			return nil
		})

	err := reg.Dispatch(nil, StateInGame, CmdPlayerHeartBeatCsReq, []byte("ping"))
	require.NoError(t, err)
	require.Equal(t, []byte("ping"), gotBody)
}

func TestDispatchUnknownCommandIgnored(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	require.NoError(t, reg.Dispatch(nil, StateInGame, CmdID(9999), nil))
}

func TestDispatchStateGating(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	called := false
	reg.Register(CmdGetCurSceneInfoCsReq, []SessionState{StateInGame},
		func(any, []byte) error {
			called = true
			return nil
		})

	err := reg.Dispatch(nil, StateHandshake, CmdGetCurSceneInfoCsReq, nil)
	require.Error(t, err)
	require.False(t, called)

	require.NoError(t, reg.Dispatch(nil, StateInGame, CmdGetCurSceneInfoCsReq, nil))
	require.True(t, called)
}

func TestDispatchHandlerError(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	boom := errors.New("boom")
	reg.Register(CmdGetBasicInfoCsReq, []SessionState{StateInGame},
		func(any, []byte) error { return boom })

	require.ErrorIs(t, reg.Dispatch(nil, StateInGame, CmdGetBasicInfoCsReq, nil), boom)
}

func TestDispatchRecoversPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	reg.Register(CmdGetBasicInfoCsReq, []SessionState{StateInGame},
		func(any, []byte) error { panic("bad payload") })

	err := reg.Dispatch(nil, StateInGame, CmdGetBasicInfoCsReq, nil)
	require.ErrorContains(t, err, "handler panic")
}

func TestSessionStateString(t *testing.T) {
	require.Equal(t, "Handshake", StateHandshake.String())
	require.Equal(t, "InGame", StateInGame.String())
	require.Equal(t, "Disconnecting", StateDisconnecting.String())
	require.Equal(t, "Unknown(7)", SessionState(7).String())
}
