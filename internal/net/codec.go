package net

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ruyzb5645usejk/robinsr/internal/net/packet"
)

// Frame layout: [4B LE total length][2B LE cmd id][payload]. The length
// covers the cmd field and the payload, not itself.
const (
	frameHeaderLen = 6
	cmdFieldLen    = 2
)

// ReadFrame reads one frame and returns its command id and payload.
// maxSize bounds the accepted payload to keep a hostile peer from forcing
// huge allocations.
func ReadFrame(r io.Reader, maxSize uint32) (packet.CmdID, []byte, error) {
	var head [frameHeaderLen]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return 0, nil, err
	}
	length := binary.LittleEndian.Uint32(head[0:4])
	if length < cmdFieldLen {
		return 0, nil, fmt.Errorf("frame too short: %d", length)
	}
	if maxSize > 0 && length > maxSize {
		return 0, nil, fmt.Errorf("frame too large: %d > %d", length, maxSize)
	}
	cmd := packet.CmdID(binary.LittleEndian.Uint16(head[4:6]))

	body := make([]byte, length-cmdFieldLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return cmd, body, nil
}

// WriteFrame writes one frame.
func WriteFrame(w io.Writer, cmd packet.CmdID, body []byte) error {
	buf := make([]byte, frameHeaderLen+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(cmdFieldLen+len(body)))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(cmd))
	copy(buf[frameHeaderLen:], body)
	_, err := w.Write(buf)
	return err
}
