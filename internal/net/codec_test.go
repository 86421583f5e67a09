package net

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ruyzb5645usejk/robinsr/internal/net/packet"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	body := []byte(`{"uid":42}`)
	require.NoError(t, WriteFrame(&buf, packet.CmdPlayerGetTokenCsReq, body))

	cmd, got, err := ReadFrame(&buf, 0)
	require.NoError(t, err)
	require.Equal(t, packet.CmdPlayerGetTokenCsReq, cmd)
	require.Equal(t, body, got)
	require.Zero(t, buf.Len())
}

func TestFrameEmptyBody(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, packet.CmdGetBasicInfoCsReq, nil))

	cmd, body, err := ReadFrame(&buf, 0)
	require.NoError(t, err)
	require.Equal(t, packet.CmdGetBasicInfoCsReq, cmd)
	require.Empty(t, body)
}

func TestFrameLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, packet.CmdID(0x0203), []byte{0xAA, 0xBB}))

	raw := buf.Bytes()
	require.Len(t, raw, 8)
	// length covers cmd + payload, not itself
	require.Equal(t, uint32(4), binary.LittleEndian.Uint32(raw[0:4]))
	require.Equal(t, uint16(0x0203), binary.LittleEndian.Uint16(raw[4:6]))
	require.Equal(t, []byte{0xAA, 0xBB}, raw[6:])
}

func TestReadFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, packet.CmdPlayerHeartBeatCsReq, make([]byte, 100)))

	_, _, err := ReadFrame(&buf, 64)
	require.ErrorContains(t, err, "frame too large")
}

func TestReadFrameTooShort(t *testing.T) {
	head := make([]byte, 6)
	binary.LittleEndian.PutUint32(head[0:4], 1) // below the 2-byte cmd field
	_, _, err := ReadFrame(bytes.NewReader(head), 0)
	require.ErrorContains(t, err, "frame too short")
}

func TestReadFrameTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, packet.CmdPlayerHeartBeatCsReq, []byte("abcdef")))
	truncated := buf.Bytes()[:buf.Len()-3]

	_, _, err := ReadFrame(bytes.NewReader(truncated), 0)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
