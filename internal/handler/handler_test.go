package handler

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ruyzb5645usejk/robinsr/internal/config"
	"github.com/ruyzb5645usejk/robinsr/internal/data"
	gonet "github.com/ruyzb5645usejk/robinsr/internal/net"
	"github.com/ruyzb5645usejk/robinsr/internal/net/packet"
	"github.com/ruyzb5645usejk/robinsr/internal/persist"
	"github.com/ruyzb5645usejk/robinsr/internal/player"
)

// fakeStore is an in-memory PlayerStore. Records are copied on the way
// in and out so handler-side mutation never leaks into stored state.
type fakeStore struct {
	mu      sync.Mutex
	players map[uint32]*player.State
	tokens  map[uint32]string
	loadErr error
	saveErr error
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		players: make(map[uint32]*player.State),
		tokens:  make(map[uint32]string),
	}
}

func clone(st *player.State) *player.State {
	out := *st
	out.Lineups = append([]player.LineupSlot(nil), st.Lineups...)
	out.Avatars = make(map[uint32]bool, len(st.Avatars))
	for id := range st.Avatars {
		out.Avatars[id] = true
	}
	return &out
}

func (f *fakeStore) Load(_ context.Context, uid uint32) (*player.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	st, ok := f.players[uid]
	if !ok {
		return nil, persist.ErrNotFound
	}
	return clone(st), nil
}

func (f *fakeStore) Save(_ context.Context, st *player.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.players[st.UID] = clone(st)
	f.saves++
	return nil
}

func (f *fakeStore) VerifyToken(_ context.Context, uid uint32, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.players[uid]; !ok {
		return false, persist.ErrNotFound
	}
	stored := f.tokens[uid]
	return stored == "" || stored == token, nil
}

// testSession builds a session backed by a pipe. Neither end is started,
// so queued responses stay in OutQueue for the test to inspect.
func testSession(t *testing.T) *gonet.Session {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return gonet.NewSession(server, 1, gonet.SessionOptions{
		InQueueSize:  8,
		OutQueueSize: 8,
		MaxFrameSize: 64 * 1024,
		WriteTimeout: time.Second,
	}, zap.NewNop())
}

func testDeps(store *fakeStore, cat *data.Catalog) *Deps {
	return &Deps{
		Store:   store,
		Catalog: cat,
		Config:  config.Defaults(),
		Log:     zap.NewNop(),
	}
}

// takeRsp pops the next queued response and decodes it into out.
func takeRsp(t *testing.T, sess *gonet.Session, wantCmd packet.CmdID, out any) {
	t.Helper()
	select {
	case f := <-sess.OutQueue:
		require.Equal(t, wantCmd, f.Cmd)
		require.NoError(t, json.Unmarshal(f.Body, out))
	default:
		t.Fatalf("no response queued, want cmd %d", wantCmd)
	}
}

func requireNoRsp(t *testing.T, sess *gonet.Session) {
	t.Helper()
	select {
	case f := <-sess.OutQueue:
		t.Fatalf("unexpected response queued: cmd %d", f.Cmd)
	default:
	}
}

// defaultCatalog resolves player.Default's starting location with one
// populated group.
func defaultCatalog() *data.Catalog {
	st := player.Default(1)
	floor := &data.GroupConfig{
		PlaneID: st.Scene.PlaneID,
		FloorID: st.Scene.FloorID,
		Groups: []*data.GroupItem{{
			GroupID: 1,
			Props:   []data.PropSpec{{ID: 10, GroupID: 1, PropID: 5}},
			Npcs:    []data.NpcSpec{{ID: 11, GroupID: 1, NpcID: 77}},
		}},
	}
	return data.NewCatalog(
		[]data.MapEntrance{{ID: st.Scene.EntryID, PlaneID: st.Scene.PlaneID, FloorID: st.Scene.FloorID}},
		[]data.MazePlane{{PlaneID: st.Scene.PlaneID, StartFloorID: st.Scene.FloorID}},
		[]*data.GroupConfig{floor},
	)
}
