// Package data loads the static resource catalog: map entrances, maze
// planes, and per-floor spawn group configurations. Tables are populated
// once at boot and never mutated afterwards, so concurrent reads from
// session goroutines need no locking.
package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PropState values a prop can report in a composed scene.
const (
	PropStateDefault uint32 = iota
	PropStateOpen
	PropStateClosed
	PropStateLocked
	PropStateHidden
	PropStateCheckpointDisable
	PropStateCheckpointEnable
)

type MapEntrance struct {
	ID      uint32 `yaml:"id"`
	PlaneID uint32 `yaml:"plane_id"`
	FloorID uint32 `yaml:"floor_id"`
}

type MazePlane struct {
	PlaneID      uint32 `yaml:"plane_id"`
	WorldID      uint32 `yaml:"world_id"`
	StartFloorID uint32 `yaml:"start_floor_id"`
}

type PropSpec struct {
	ID        uint32   `yaml:"id"`
	GroupID   uint32   `yaml:"group_id"`
	PropID    uint32   `yaml:"prop_id"`
	PosX      float64  `yaml:"pos_x"`
	PosY      float64  `yaml:"pos_y"`
	PosZ      float64  `yaml:"pos_z"`
	RotY      float64  `yaml:"rot_y"`
	State     uint32   `yaml:"state"`
	StateList []uint32 `yaml:"state_list,omitempty"`
}

// HasState reports whether the prop's allowed-state list contains st.
func (p *PropSpec) HasState(st uint32) bool {
	for _, s := range p.StateList {
		if s == st {
			return true
		}
	}
	return false
}

type NpcSpec struct {
	ID      uint32  `yaml:"id"`
	GroupID uint32  `yaml:"group_id"`
	NpcID   uint32  `yaml:"npc_id"`
	PosX    float64 `yaml:"pos_x"`
	PosY    float64 `yaml:"pos_y"`
	PosZ    float64 `yaml:"pos_z"`
	RotY    float64 `yaml:"rot_y"`
}

type MonsterSpec struct {
	ID        uint32  `yaml:"id"`
	GroupID   uint32  `yaml:"group_id"`
	MonsterID uint32  `yaml:"monster_id"`
	EventID   uint32  `yaml:"event_id"`
	PosX      float64 `yaml:"pos_x"`
	PosY      float64 `yaml:"pos_y"`
	PosZ      float64 `yaml:"pos_z"`
	RotY      float64 `yaml:"rot_y"`
}

type Anchor struct {
	ID   uint32  `yaml:"id"`
	PosX float64 `yaml:"pos_x"`
	PosY float64 `yaml:"pos_y"`
	PosZ float64 `yaml:"pos_z"`
	RotY float64 `yaml:"rot_y"`
}

type Teleport struct {
	ID            uint32 `yaml:"id"`
	AnchorGroupID uint32 `yaml:"anchor_group_id"`
	AnchorID      uint32 `yaml:"anchor_id"`
}

// GroupItem is one spawn group: a cluster of props, NPCs, monsters and
// teleport anchors instantiated together.
type GroupItem struct {
	GroupID  uint32        `yaml:"group_id"`
	Props    []PropSpec    `yaml:"props,omitempty"`
	Npcs     []NpcSpec     `yaml:"npcs,omitempty"`
	Monsters []MonsterSpec `yaml:"monsters,omitempty"`
	Anchors  []Anchor      `yaml:"anchors,omitempty"`
}

// Anchor returns the anchor with the given id, or nil.
func (g *GroupItem) Anchor(id uint32) *Anchor {
	for i := range g.Anchors {
		if g.Anchors[i].ID == id {
			return &g.Anchors[i]
		}
	}
	return nil
}

// GroupConfig holds all groups of one floor. Groups keeps file order:
// composition assigns synthetic entity ids while walking it, so the order
// must be identical across runs.
type GroupConfig struct {
	PlaneID   uint32              `yaml:"plane_id"`
	FloorID   uint32              `yaml:"floor_id"`
	Groups    []*GroupItem        `yaml:"groups"`
	Teleports []Teleport          `yaml:"teleports,omitempty"`
	byGroup   map[uint32]*GroupItem
	byTele    map[uint32]*Teleport
}

// Group returns the group with the given id, or nil.
func (c *GroupConfig) Group(id uint32) *GroupItem {
	return c.byGroup[id]
}

// Teleport returns the teleport with the given id, or nil.
func (c *GroupConfig) Teleport(id uint32) *Teleport {
	return c.byTele[id]
}

func (c *GroupConfig) index() {
	c.byGroup = make(map[uint32]*GroupItem, len(c.Groups))
	for _, g := range c.Groups {
		c.byGroup[g.GroupID] = g
	}
	c.byTele = make(map[uint32]*Teleport, len(c.Teleports))
	for i := range c.Teleports {
		c.byTele[c.Teleports[i].ID] = &c.Teleports[i]
	}
}

// Catalog is the read-only lookup facade over all static tables.
type Catalog struct {
	entrances map[uint32]*MapEntrance
	planes    map[uint32]*MazePlane
	groups    map[string]*GroupConfig // keyed "P{plane}_F{floor}"
}

func groupKey(planeID, floorID uint32) string {
	return fmt.Sprintf("P%d_F%d", planeID, floorID)
}

// Entrance looks up a map entrance by entry id.
func (c *Catalog) Entrance(entryID uint32) (*MapEntrance, bool) {
	e, ok := c.entrances[entryID]
	return e, ok
}

// Plane looks up a maze plane by plane id.
func (c *Catalog) Plane(planeID uint32) (*MazePlane, bool) {
	p, ok := c.planes[planeID]
	return p, ok
}

// GroupConfig looks up the spawn groups for one floor.
func (c *Catalog) GroupConfig(planeID, floorID uint32) (*GroupConfig, bool) {
	g, ok := c.groups[groupKey(planeID, floorID)]
	return g, ok
}

func (c *Catalog) EntranceCount() int { return len(c.entrances) }
func (c *Catalog) PlaneCount() int    { return len(c.planes) }
func (c *Catalog) FloorCount() int    { return len(c.groups) }

type entranceFile struct {
	Entrances []MapEntrance `yaml:"entrances"`
}

type planeFile struct {
	Planes []MazePlane `yaml:"planes"`
}

type groupFile struct {
	Floors []*GroupConfig `yaml:"floors"`
}

// Load reads the three catalog tables from YAML files.
func Load(entrancePath, planePath, groupPath string) (*Catalog, error) {
	cat := &Catalog{
		entrances: make(map[uint32]*MapEntrance),
		planes:    make(map[uint32]*MazePlane),
		groups:    make(map[string]*GroupConfig),
	}

	var ef entranceFile
	if err := readYAML(entrancePath, &ef); err != nil {
		return nil, err
	}
	for i := range ef.Entrances {
		e := &ef.Entrances[i]
		cat.entrances[e.ID] = e
	}

	var pf planeFile
	if err := readYAML(planePath, &pf); err != nil {
		return nil, err
	}
	for i := range pf.Planes {
		p := &pf.Planes[i]
		cat.planes[p.PlaneID] = p
	}

	var gf groupFile
	if err := readYAML(groupPath, &gf); err != nil {
		return nil, err
	}
	for _, fc := range gf.Floors {
		fc.index()
		cat.groups[groupKey(fc.PlaneID, fc.FloorID)] = fc
	}

	return cat, nil
}

// NewCatalog builds a catalog from in-memory tables. Used by tests and by
// tools that synthesize catalog data.
func NewCatalog(entrances []MapEntrance, planes []MazePlane, floors []*GroupConfig) *Catalog {
	cat := &Catalog{
		entrances: make(map[uint32]*MapEntrance, len(entrances)),
		planes:    make(map[uint32]*MazePlane, len(planes)),
		groups:    make(map[string]*GroupConfig, len(floors)),
	}
	for i := range entrances {
		cat.entrances[entrances[i].ID] = &entrances[i]
	}
	for i := range planes {
		cat.planes[planes[i].PlaneID] = &planes[i]
	}
	for _, fc := range floors {
		fc.index()
		cat.groups[groupKey(fc.PlaneID, fc.FloorID)] = fc
	}
	return cat
}

func readYAML(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
