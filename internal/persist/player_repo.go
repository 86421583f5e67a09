package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ruyzb5645usejk/robinsr/internal/player"
)

// ErrNotFound is returned by Load when no row exists for the uid.
var ErrNotFound = errors.New("player not found")

// PlayerRepo persists one aggregate row per player. Scene and position are
// scalar columns; lineups and owned avatars are JSONB payloads.
type PlayerRepo struct {
	db *DB
}

func NewPlayerRepo(db *DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

func (r *PlayerRepo) Load(ctx context.Context, uid uint32) (*player.State, error) {
	var (
		st         player.State
		lineupsRaw []byte
		avatarsRaw []byte
	)
	st.UID = uid
	err := r.db.Pool.QueryRow(ctx,
		`SELECT plane_id, floor_id, entry_id,
		        pos_x, pos_y, pos_z, rot_y,
		        lineups, avatars
		 FROM players WHERE uid = $1`, uid,
	).Scan(
		&st.Scene.PlaneID, &st.Scene.FloorID, &st.Scene.EntryID,
		&st.Position.X, &st.Position.Y, &st.Position.Z, &st.Position.RotY,
		&lineupsRaw, &avatarsRaw,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load player %d: %w", uid, err)
	}

	if err := json.Unmarshal(lineupsRaw, &st.Lineups); err != nil {
		return nil, fmt.Errorf("decode lineups for %d: %w", uid, err)
	}
	var owned []uint32
	if err := json.Unmarshal(avatarsRaw, &owned); err != nil {
		return nil, fmt.Errorf("decode avatars for %d: %w", uid, err)
	}
	st.Avatars = make(map[uint32]bool, len(owned))
	for _, id := range owned {
		st.Avatars[id] = true
	}
	sort.Slice(st.Lineups, func(i, j int) bool { return st.Lineups[i].Slot < st.Lineups[j].Slot })
	return &st, nil
}

func (r *PlayerRepo) Save(ctx context.Context, st *player.State) error {
	lineupsRaw, err := json.Marshal(st.Lineups)
	if err != nil {
		return fmt.Errorf("encode lineups for %d: %w", st.UID, err)
	}
	owned := make([]uint32, 0, len(st.Avatars))
	for id := range st.Avatars {
		owned = append(owned, id)
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i] < owned[j] })
	avatarsRaw, err := json.Marshal(owned)
	if err != nil {
		return fmt.Errorf("encode avatars for %d: %w", st.UID, err)
	}

	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO players (
			uid, plane_id, floor_id, entry_id,
			pos_x, pos_y, pos_z, rot_y,
			lineups, avatars, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
		ON CONFLICT (uid) DO UPDATE SET
			plane_id = EXCLUDED.plane_id,
			floor_id = EXCLUDED.floor_id,
			entry_id = EXCLUDED.entry_id,
			pos_x = EXCLUDED.pos_x,
			pos_y = EXCLUDED.pos_y,
			pos_z = EXCLUDED.pos_z,
			rot_y = EXCLUDED.rot_y,
			lineups = EXCLUDED.lineups,
			avatars = EXCLUDED.avatars,
			updated_at = now()`,
		st.UID, st.Scene.PlaneID, st.Scene.FloorID, st.Scene.EntryID,
		st.Position.X, st.Position.Y, st.Position.Z, st.Position.RotY,
		lineupsRaw, avatarsRaw,
	)
	if err != nil {
		return fmt.Errorf("save player %d: %w", st.UID, err)
	}
	return nil
}

// VerifyToken checks the client token against the stored bcrypt hash.
// A row with an empty hash accepts any token (open dev instance).
func (r *PlayerRepo) VerifyToken(ctx context.Context, uid uint32, token string) (bool, error) {
	var hash string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT token_hash FROM players WHERE uid = $1`, uid,
	).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("load token for %d: %w", uid, err)
	}
	if hash == "" {
		return true, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil, nil
}

// SetToken stores a bcrypt hash of the player's token.
func (r *PlayerRepo) SetToken(ctx context.Context, uid uint32, token string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash token: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx,
		`UPDATE players SET token_hash = $2, updated_at = now() WHERE uid = $1`,
		uid, hash,
	)
	if err != nil {
		return fmt.Errorf("store token for %d: %w", uid, err)
	}
	return nil
}
