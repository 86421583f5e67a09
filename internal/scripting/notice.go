// Package scripting loads operator-provided Lua delivered to clients.
package scripting

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Notice is the out-of-band payload attached to heartbeat responses. The
// content is operator configuration executed client-side; the server
// only checks at load time that the file is syntactically valid Lua, and
// passes the raw bytes through untouched afterwards.
type Notice struct {
	Version uint32
	data    []byte
}

// LoadNotice reads and compile-checks the notice script. A missing file
// is not an error: it returns (nil, nil) and heartbeats carry no blob.
func LoadNotice(path string, version uint32, log *zap.Logger) (*Notice, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Info("no client notice script", zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read notice %s: %w", path, err)
	}

	ls := lua.NewState()
	defer ls.Close()
	if _, err := ls.LoadString(string(raw)); err != nil {
		return nil, fmt.Errorf("compile notice %s: %w", path, err)
	}

	log.Info("client notice loaded",
		zap.String("path", path),
		zap.Uint32("version", version),
		zap.Int("bytes", len(raw)),
	)
	return &Notice{Version: version, data: raw}, nil
}

// Data returns the raw script bytes.
func (n *Notice) Data() []byte {
	return n.data
}
