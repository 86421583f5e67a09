// Package scene builds the full entity graph a client must render at its
// current map location. Compose is a pure function of the player record
// and the resource catalog: it allocates nothing shared, mutates nothing
// it is given, and produces identical output for identical input.
package scene

import (
	"fmt"

	"github.com/ruyzb5645usejk/robinsr/internal/config"
	"github.com/ruyzb5645usejk/robinsr/internal/data"
	"github.com/ruyzb5645usejk/robinsr/internal/msg"
	"github.com/ruyzb5645usejk/robinsr/internal/player"
)

// ErrResourceNotFound reports a required catalog lookup miss. Callers
// degrade to a stub scene instead of surfacing it to the client.
type ErrResourceNotFound struct {
	Table string
	Key   string
}

func (e *ErrResourceNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Table, e.Key)
}

// Synthetic id bases. Counters are pre-incremented, so the first prop is
// 1001, the first NPC 20001, the first monster 30001. Party entities use
// the reserved self id 0.
const (
	propEntityBase    uint32 = 1_000
	npcEntityBase     uint32 = 20_000
	monsterEntityBase uint32 = 30_000
)

const groupStateActive uint32 = 1

// Options carries composition inputs that are not part of the player
// record or the catalog.
type Options struct {
	// TeleportID requests repositioning onto a teleport anchor. Nothing
	// wires it from requests yet; it stays the single trigger point for
	// anchor-driven placement.
	TeleportID *uint32

	// WorldLevel is stamped on every monster entity.
	WorldLevel uint32

	// Marker identifies the per-group checkpoint marker entity. Zero
	// value means no marker is appended.
	Marker config.MarkerConfig
}

// fixed converts a catalog coordinate to fixed-point units, truncating
// toward zero.
func fixed(v float64) int32 {
	return int32(v * 1000)
}

func motionAt(x, y, z, rotY int32) msg.MotionInfo {
	return msg.MotionInfo{
		Pos: msg.Vector{X: x, Y: y, Z: z},
		Rot: msg.Vector{Y: rotY},
	}
}

// Compose resolves the player's location against the catalog and builds
// the scene graph. Any required lookup miss returns *ErrResourceNotFound.
func Compose(st *player.State, cat *data.Catalog, opts Options) (*msg.SceneInfo, error) {
	entrance, ok := cat.Entrance(st.Scene.EntryID)
	if !ok {
		return nil, &ErrResourceNotFound{Table: "map entrance", Key: fmt.Sprint(st.Scene.EntryID)}
	}
	if _, ok := cat.Plane(entrance.PlaneID); !ok {
		return nil, &ErrResourceNotFound{Table: "maze plane", Key: fmt.Sprint(entrance.PlaneID)}
	}
	groups, ok := cat.GroupConfig(entrance.PlaneID, entrance.FloorID)
	if !ok {
		return nil, &ErrResourceNotFound{
			Table: "group config",
			Key:   fmt.Sprintf("P%d_F%d", entrance.PlaneID, entrance.FloorID),
		}
	}

	pos := st.Position
	if opts.TeleportID != nil {
		// Anchor miss is non-fatal: keep the persisted position.
		if tele := groups.Teleport(*opts.TeleportID); tele != nil {
			if g := groups.Group(tele.AnchorGroupID); g != nil {
				if anchor := g.Anchor(tele.AnchorID); anchor != nil {
					pos.X = fixed(anchor.PosX)
					pos.Y = fixed(anchor.PosY)
					pos.Z = fixed(anchor.PosZ)
					pos.RotY = fixed(anchor.RotY)
				}
			}
		}
	}

	info := &msg.SceneInfo{
		PlaneID:      st.Scene.PlaneID,
		FloorID:      st.Scene.FloorID,
		EntryID:      st.Scene.EntryID,
		GameModeType: msg.GameModeExplore,
	}

	// Counters are local so concurrent compositions never interfere.
	propID := propEntityBase
	npcID := npcEntityBase
	monsterID := monsterEntityBase
	loadedNpc := make(map[uint32]bool)

	for _, group := range groups.Groups {
		gi := msg.SceneGroupInfo{
			GroupID: group.GroupID,
			State:   groupStateActive,
		}

		for i := range group.Props {
			prop := &group.Props[i]
			// A prop that can act as a checkpoint always reports the
			// checkpoint-enabled state, whatever is stored.
			state := prop.State
			if prop.HasState(data.PropStateCheckpointEnable) {
				state = data.PropStateCheckpointEnable
			}

			propID++
			gi.EntityList = append(gi.EntityList, msg.SceneEntityInfo{
				EntityID: propID,
				GroupID:  prop.GroupID,
				InstID:   prop.ID,
				Motion:   motionAt(fixed(prop.PosX), fixed(prop.PosY), fixed(prop.PosZ), fixed(prop.RotY)),
				Detail:   &msg.ScenePropInfo{PropID: prop.PropID, PropState: state},
			})
		}

		if opts.Marker != (config.MarkerConfig{}) {
			m := opts.Marker
			gi.EntityList = append(gi.EntityList, msg.SceneEntityInfo{
				EntityID: m.EntityID,
				GroupID:  m.GroupID,
				InstID:   m.InstID,
				Motion:   motionAt(pos.X+m.OffsetX, pos.Y, pos.Z+m.OffsetZ, 0),
				Detail:   &msg.ScenePropInfo{PropID: m.PropID, PropState: m.State},
			})
		}

		for i := range group.Npcs {
			npc := &group.Npcs[i]
			// Dedup across groups, and never spawn a generic NPC for a
			// character the player owns.
			if loadedNpc[npc.NpcID] || st.OwnsAvatar(npc.NpcID) {
				continue
			}
			loadedNpc[npc.NpcID] = true

			npcID++
			gi.EntityList = append(gi.EntityList, msg.SceneEntityInfo{
				EntityID: npcID,
				GroupID:  npc.GroupID,
				InstID:   npc.ID,
				Motion:   motionAt(fixed(npc.PosX), fixed(npc.PosY), fixed(npc.PosZ), fixed(npc.RotY)),
				Detail:   &msg.SceneNpcInfo{NpcID: npc.NpcID},
			})
		}

		for i := range group.Monsters {
			monster := &group.Monsters[i]
			monsterID++
			gi.EntityList = append(gi.EntityList, msg.SceneEntityInfo{
				EntityID: monsterID,
				GroupID:  monster.GroupID,
				InstID:   monster.ID,
				Motion:   motionAt(fixed(monster.PosX), fixed(monster.PosY), fixed(monster.PosZ), fixed(monster.RotY)),
				Detail: &msg.SceneNpcMonsterInfo{
					MonsterID:  monster.MonsterID,
					EventID:    monster.EventID,
					WorldLevel: opts.WorldLevel,
				},
			})
		}

		info.GroupList = append(info.GroupList, gi)
	}

	// Synthetic group 0: the player's party. Every member shares the
	// reserved entity id 0 and the raw persisted position.
	partyGroup := msg.SceneGroupInfo{
		GroupID: 0,
		State:   groupStateActive,
	}
	for _, slot := range st.Lineups {
		partyGroup.EntityList = append(partyGroup.EntityList, msg.SceneEntityInfo{
			EntityID: player.SelfEntityID,
			GroupID:  0,
			InstID:   0,
			Motion:   motionAt(pos.X, pos.Y, pos.Z, 0),
			Detail: &msg.SceneActorInfo{
				AvatarType:   msg.AvatarFormalType,
				BaseAvatarID: slot.AvatarID,
				MapLayer:     2,
				UID:          st.UID,
			},
		})
	}
	info.GroupList = append(info.GroupList, partyGroup)

	return info, nil
}

// Stub returns the minimal scene sent when composition fails: the
// player's raw location with an empty group list.
func Stub(st *player.State) *msg.SceneInfo {
	return &msg.SceneInfo{
		PlaneID:      st.Scene.PlaneID,
		FloorID:      st.Scene.FloorID,
		EntryID:      st.Scene.EntryID,
		GameModeType: msg.GameModeExplore,
	}
}
