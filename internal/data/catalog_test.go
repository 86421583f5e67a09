package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const entranceYAML = `
entrances:
  - id: 2010101
    plane_id: 20101
    floor_id: 20101001
  - id: 2010201
    plane_id: 20102
    floor_id: 20102001
`

const planeYAML = `
planes:
  - plane_id: 20101
    world_id: 201
    start_floor_id: 20101001
  - plane_id: 20102
    world_id: 201
    start_floor_id: 20102001
`

const groupYAML = `
floors:
  - plane_id: 20101
    floor_id: 20101001
    groups:
      - group_id: 10
        props:
          - id: 1
            group_id: 10
            prop_id: 808
            pos_x: 1.5
            state: 2
            state_list: [2, 6]
        npcs:
          - id: 2
            group_id: 10
            npc_id: 77
      - group_id: 20
        monsters:
          - id: 3
            group_id: 20
            monster_id: 3001
            event_id: 9
        anchors:
          - id: 1
            pos_x: 10.0
            pos_z: -5.5
    teleports:
      - id: 55
        anchor_group_id: 20
        anchor_id: 1
`

func writeCatalogFiles(t *testing.T) (string, string, string) {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	return write("map_entrance.yaml", entranceYAML),
		write("maze_plane.yaml", planeYAML),
		write("level_group.yaml", groupYAML)
}

func TestLoadCatalog(t *testing.T) {
	ep, pp, gp := writeCatalogFiles(t)
	cat, err := Load(ep, pp, gp)
	require.NoError(t, err)

	require.Equal(t, 2, cat.EntranceCount())
	require.Equal(t, 2, cat.PlaneCount())
	require.Equal(t, 1, cat.FloorCount())

	entrance, ok := cat.Entrance(2010101)
	require.True(t, ok)
	require.Equal(t, uint32(20101), entrance.PlaneID)
	require.Equal(t, uint32(20101001), entrance.FloorID)

	plane, ok := cat.Plane(20102)
	require.True(t, ok)
	require.Equal(t, uint32(201), plane.WorldID)

	floor, ok := cat.GroupConfig(20101, 20101001)
	require.True(t, ok)
	require.Len(t, floor.Groups, 2)

	prop := floor.Groups[0].Props[0]
	require.Equal(t, uint32(808), prop.PropID)
	require.Equal(t, 1.5, prop.PosX)
	require.Equal(t, []uint32{PropStateClosed, PropStateCheckpointEnable}, prop.StateList)
	require.True(t, prop.HasState(PropStateCheckpointEnable))
	require.False(t, prop.HasState(PropStateOpen))
}

func TestCatalogLookupMisses(t *testing.T) {
	ep, pp, gp := writeCatalogFiles(t)
	cat, err := Load(ep, pp, gp)
	require.NoError(t, err)

	_, ok := cat.Entrance(9999)
	require.False(t, ok)
	_, ok = cat.Plane(9999)
	require.False(t, ok)
	_, ok = cat.GroupConfig(20101, 9999)
	require.False(t, ok)
}

func TestGroupConfigIndexes(t *testing.T) {
	ep, pp, gp := writeCatalogFiles(t)
	cat, err := Load(ep, pp, gp)
	require.NoError(t, err)

	floor, ok := cat.GroupConfig(20101, 20101001)
	require.True(t, ok)

	tele := floor.Teleport(55)
	require.NotNil(t, tele)
	require.Equal(t, uint32(20), tele.AnchorGroupID)

	group := floor.Group(tele.AnchorGroupID)
	require.NotNil(t, group)
	anchor := group.Anchor(tele.AnchorID)
	require.NotNil(t, anchor)
	require.Equal(t, 10.0, anchor.PosX)
	require.Equal(t, -5.5, anchor.PosZ)

	require.Nil(t, floor.Teleport(9999))
	require.Nil(t, floor.Group(9999))
	require.Nil(t, group.Anchor(9999))
}

func TestGroupOrderStable(t *testing.T) {
	ep, pp, gp := writeCatalogFiles(t)

	first, err := Load(ep, pp, gp)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		next, err := Load(ep, pp, gp)
		require.NoError(t, err)

		fc, _ := first.GroupConfig(20101, 20101001)
		nc, _ := next.GroupConfig(20101, 20101001)
		require.Equal(t, len(fc.Groups), len(nc.Groups))
		for j := range fc.Groups {
			require.Equal(t, fc.Groups[j].GroupID, nc.Groups[j].GroupID)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	ep, pp, _ := writeCatalogFiles(t)
	_, err := Load(ep, pp, filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
