package msg

import (
	"encoding/json"
	"fmt"
)

// Game mode carried by every composed scene.
const GameModeExplore uint32 = 1

type SceneInfo struct {
	PlaneID      uint32           `json:"plane_id"`
	FloorID      uint32           `json:"floor_id"`
	EntryID      uint32           `json:"entry_id"`
	GameModeType uint32           `json:"game_mode_type"`
	GroupList    []SceneGroupInfo `json:"scene_group_list,omitempty"`
}

type SceneGroupInfo struct {
	GroupID    uint32            `json:"group_id"`
	State      uint32            `json:"state"`
	EntityList []SceneEntityInfo `json:"entity_list,omitempty"`
}

// EntityDetail is the closed set of per-kind entity payloads. Exactly one
// detail is attached to each SceneEntityInfo; the unexported tag method
// keeps the set sealed to this package.
type EntityDetail interface {
	entityDetail()
}

type ScenePropInfo struct {
	PropID    uint32 `json:"prop_id"`
	PropState uint32 `json:"prop_state"`
}

type SceneNpcInfo struct {
	NpcID uint32 `json:"npc_id"`
}

type SceneNpcMonsterInfo struct {
	MonsterID  uint32 `json:"monster_id"`
	EventID    uint32 `json:"event_id"`
	WorldLevel uint32 `json:"world_level"`
}

type SceneActorInfo struct {
	AvatarType   uint32 `json:"avatar_type"`
	BaseAvatarID uint32 `json:"base_avatar_id"`
	MapLayer     uint32 `json:"map_layer"`
	UID          uint32 `json:"uid"`
}

func (*ScenePropInfo) entityDetail()       {}
func (*SceneNpcInfo) entityDetail()        {}
func (*SceneNpcMonsterInfo) entityDetail() {}
func (*SceneActorInfo) entityDetail()      {}

// Avatar type for party members in the composed scene.
const AvatarFormalType uint32 = 3

// SceneEntityInfo is one placeable object in a composed scene. EntityID is
// the synthetic runtime identifier, InstID the catalog's stored one.
type SceneEntityInfo struct {
	EntityID uint32
	GroupID  uint32
	InstID   uint32
	Motion   MotionInfo
	Detail   EntityDetail
}

type sceneEntityWire struct {
	EntityID   uint32               `json:"entity_id"`
	GroupID    uint32               `json:"group_id"`
	InstID     uint32               `json:"inst_id"`
	Motion     MotionInfo           `json:"motion"`
	Prop       *ScenePropInfo       `json:"prop,omitempty"`
	Npc        *SceneNpcInfo        `json:"npc,omitempty"`
	NpcMonster *SceneNpcMonsterInfo `json:"npc_monster,omitempty"`
	Actor      *SceneActorInfo      `json:"actor,omitempty"`
}

func (e SceneEntityInfo) MarshalJSON() ([]byte, error) {
	w := sceneEntityWire{
		EntityID: e.EntityID,
		GroupID:  e.GroupID,
		InstID:   e.InstID,
		Motion:   e.Motion,
	}
	switch d := e.Detail.(type) {
	case *ScenePropInfo:
		w.Prop = d
	case *SceneNpcInfo:
		w.Npc = d
	case *SceneNpcMonsterInfo:
		w.NpcMonster = d
	case *SceneActorInfo:
		w.Actor = d
	case nil:
		return nil, fmt.Errorf("scene entity %d has no detail", e.EntityID)
	}
	return json.Marshal(w)
}

func (e *SceneEntityInfo) UnmarshalJSON(data []byte) error {
	var w sceneEntityWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.EntityID = w.EntityID
	e.GroupID = w.GroupID
	e.InstID = w.InstID
	e.Motion = w.Motion
	switch {
	case w.Prop != nil:
		e.Detail = w.Prop
	case w.Npc != nil:
		e.Detail = w.Npc
	case w.NpcMonster != nil:
		e.Detail = w.NpcMonster
	case w.Actor != nil:
		e.Detail = w.Actor
	default:
		return fmt.Errorf("scene entity %d has no detail", w.EntityID)
	}
	return nil
}
