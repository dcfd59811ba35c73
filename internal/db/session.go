package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("not found")

// Session summarises one analysed scene.
type Session struct {
	ID          string  `json:"id"`
	CreatedAtNs int64   `json:"created_at_ns"`
	Scene       string  `json:"scene,omitempty"`
	VoxelSize   float64 `json:"voxel_size"`
	Surfaces    int     `json:"surfaces"`
	Walls       int     `json:"walls"`
	Zones       int     `json:"zones"`
}

// Placement is one solved request of a session. Pos, Rot and Score are
// only meaningful when Placed is set. Rot is a quaternion (x, y, z, w).
type Placement struct {
	ID           string     `json:"id"`
	SessionID    string     `json:"session_id"`
	Seq          int        `json:"seq"`
	Name         string     `json:"name"`
	PositionType string     `json:"position_type"`
	Placed       bool       `json:"placed"`
	Pos          [3]float64 `json:"pos"`
	Rot          [4]float64 `json:"rot"`
	Size         [3]float64 `json:"size"`
	Universe     int8       `json:"universe"`
	Score        *float64   `json:"score,omitempty"`
}

// CreateSession inserts s. An empty ID is replaced by a new UUID and a zero
// creation time by the current time.
func (db *DB) CreateSession(s *Session) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAtNs == 0 {
		s.CreatedAtNs = time.Now().UnixNano()
	}

	_, err := db.Exec(`
		INSERT INTO sessions (id, created_at_ns, scene, voxel_size, surfaces, walls, zones)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.CreatedAtNs, s.Scene, s.VoxelSize, s.Surfaces, s.Walls, s.Zones,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession returns the session with the given ID.
func (db *DB) GetSession(id string) (*Session, error) {
	var s Session
	err := db.QueryRow(`
		SELECT id, created_at_ns, scene, voxel_size, surfaces, walls, zones
		FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.CreatedAtNs, &s.Scene, &s.VoxelSize, &s.Surfaces, &s.Walls, &s.Zones)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// ListSessions returns every session, newest first.
func (db *DB) ListSessions() ([]Session, error) {
	rows, err := db.Query(`
		SELECT id, created_at_ns, scene, voxel_size, surfaces, walls, zones
		FROM sessions ORDER BY created_at_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.CreatedAtNs, &s.Scene, &s.VoxelSize, &s.Surfaces, &s.Walls, &s.Zones); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteSession removes a session and its placements.
func (db *DB) DeleteSession(id string) error {
	res, err := db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return nil
}

// RecordPlacement inserts p. An empty ID is replaced by a new UUID.
func (db *DB) RecordPlacement(p *Placement) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	var score sql.NullFloat64
	if p.Score != nil {
		score = sql.NullFloat64{Float64: *p.Score, Valid: true}
	}

	_, err := db.Exec(`
		INSERT INTO placements (
			id, session_id, seq, name, position_type, placed,
			pos_x, pos_y, pos_z, rot_x, rot_y, rot_z, rot_w,
			size_x, size_y, size_z, universe, score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SessionID, p.Seq, p.Name, p.PositionType, p.Placed,
		p.Pos[0], p.Pos[1], p.Pos[2], p.Rot[0], p.Rot[1], p.Rot[2], p.Rot[3],
		p.Size[0], p.Size[1], p.Size[2], p.Universe, score,
	)
	if err != nil {
		return fmt.Errorf("insert placement %q: %w", p.Name, err)
	}
	return nil
}

// ListPlacements returns the placements of a session in request order.
func (db *DB) ListPlacements(sessionID string) ([]Placement, error) {
	rows, err := db.Query(`
		SELECT id, session_id, seq, name, position_type, placed,
		       pos_x, pos_y, pos_z, rot_x, rot_y, rot_z, rot_w,
		       size_x, size_y, size_z, universe, score
		FROM placements WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		var p Placement
		var score sql.NullFloat64
		if err := rows.Scan(
			&p.ID, &p.SessionID, &p.Seq, &p.Name, &p.PositionType, &p.Placed,
			&p.Pos[0], &p.Pos[1], &p.Pos[2], &p.Rot[0], &p.Rot[1], &p.Rot[2], &p.Rot[3],
			&p.Size[0], &p.Size[1], &p.Size[2], &p.Universe, &score,
		); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		if score.Valid {
			v := score.Float64
			p.Score = &v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
