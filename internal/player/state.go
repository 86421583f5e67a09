// Package player defines the persisted per-player record. One record per
// player identity; loaded by handlers, mutated locally, and written back
// through the store in a single UPSERT.
package player

// Reserved entity id addressing the player's own party in the scene and
// in movement updates.
const SelfEntityID uint32 = 0

// SceneRef is the player's current map location. All three fields are
// required; EntryID must resolve in the entrance table or scene
// composition degrades to a stub.
type SceneRef struct {
	PlaneID uint32 `json:"plane_id"`
	FloorID uint32 `json:"floor_id"`
	EntryID uint32 `json:"entry_id"`
}

// Position holds fixed-point coordinates: source units ×1000, truncated
// toward zero.
type Position struct {
	X    int32 `json:"x"`
	Y    int32 `json:"y"`
	Z    int32 `json:"z"`
	RotY int32 `json:"rot_y"`
}

// LineupSlot is one active-party slot. Lineups are kept sorted by slot so
// composition order is reproducible.
type LineupSlot struct {
	Slot     uint32 `json:"slot"`
	AvatarID uint32 `json:"avatar_id"`
}

type State struct {
	UID      uint32
	Scene    SceneRef
	Position Position
	Lineups  []LineupSlot
	Avatars  map[uint32]bool // owned character ids
}

// OwnsAvatar reports whether the player owns the character with this id.
// Owned characters are suppressed when the catalog would spawn them as
// generic NPCs.
func (s *State) OwnsAvatar(id uint32) bool {
	return s.Avatars[id]
}

// Starting location for first-seen players.
var defaultScene = SceneRef{PlaneID: 20101, FloorID: 20101001, EntryID: 2010101}

// Default returns the record created for a player with no stored row.
func Default(uid uint32) *State {
	return &State{
		UID:   uid,
		Scene: defaultScene,
		Position: Position{
			X: 99,
			Y: 62,
			Z: -4000,
		},
		Lineups: []LineupSlot{{Slot: 0, AvatarID: 8001}},
		Avatars: map[uint32]bool{8001: true},
	}
}
