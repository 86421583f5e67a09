package msg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSceneEntityMarshalOneVariantKey(t *testing.T) {
	cases := []struct {
		name   string
		detail EntityDetail
		key    string
	}{
		{"prop", &ScenePropInfo{PropID: 808, PropState: 6}, "prop"},
		{"npc", &SceneNpcInfo{NpcID: 77}, "npc"},
		{"monster", &SceneNpcMonsterInfo{MonsterID: 3001, EventID: 9, WorldLevel: 6}, "npc_monster"},
		{"actor", &SceneActorInfo{AvatarType: AvatarFormalType, BaseAvatarID: 8001, MapLayer: 2, UID: 42}, "actor"},
	}

	variantKeys := []string{"prop", "npc", "npc_monster", "actor"}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := SceneEntityInfo{EntityID: 5, GroupID: 1, InstID: 9, Detail: tc.detail}
			raw, err := json.Marshal(e)
			require.NoError(t, err)

			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(raw, &fields))
			for _, key := range variantKeys {
				if key == tc.key {
					require.Contains(t, fields, key)
				} else {
					require.NotContains(t, fields, key)
				}
			}
		})
	}
}

func TestSceneEntityRoundTrip(t *testing.T) {
	in := SceneEntityInfo{
		EntityID: 20001,
		GroupID:  7,
		InstID:   401,
		Motion: MotionInfo{
			Pos: Vector{X: 1234, Y: -1234, Z: 0},
			Rot: Vector{Y: 179999},
		},
		Detail: &SceneNpcInfo{NpcID: 77},
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out SceneEntityInfo
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, in, out)
}

func TestSceneEntityMarshalNoDetail(t *testing.T) {
	_, err := json.Marshal(SceneEntityInfo{EntityID: 5})
	require.ErrorContains(t, err, "no detail")
}

func TestSceneEntityUnmarshalNoDetail(t *testing.T) {
	var e SceneEntityInfo
	err := json.Unmarshal([]byte(`{"entity_id":5,"group_id":1,"inst_id":2,"motion":{}}`), &e)
	require.ErrorContains(t, err, "no detail")
}
