package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kjarir/echosphere/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	topic        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	host_id      TEXT NOT NULL,
	capacity     INTEGER NOT NULL DEFAULT 0,
	is_private   BOOLEAN NOT NULL DEFAULT 0,
	is_live      BOOLEAN NOT NULL DEFAULT 0,
	scheduled_at DATETIME,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS room_participants (
	room_id   TEXT NOT NULL REFERENCES rooms(id),
	user_id   TEXT NOT NULL,
	role      TEXT NOT NULL DEFAULT 'listener',
	muted     BOOLEAN NOT NULL DEFAULT 0,
	joined_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (room_id, user_id)
);

CREATE TABLE IF NOT EXISTS profiles (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	avatar_url   TEXT NOT NULL DEFAULT '',
	bio          TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function after
// the schema is applied. Useful for tests to seed fixtures.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}
	if setup != nil {
		if err := setup(s.db); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== CatalogStore implementation ====

// CreateRoom inserts a catalog entry.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *store.Room) error {
	query := `
		INSERT INTO rooms (id, title, topic, description, host_id, capacity, is_private, is_live, scheduled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		room.ID, room.Title, room.Topic, room.Description,
		room.HostID, room.Capacity, room.IsPrivate, room.IsLive, room.ScheduledAt,
	)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

// GetRoom retrieves a catalog entry by id.
func (s *SQLiteStore) GetRoom(ctx context.Context, id string) (*store.Room, error) {
	query := `
		SELECT id, title, topic, description, host_id, capacity, is_private, is_live, scheduled_at, created_at
		FROM rooms
		WHERE id = ?
	`
	room, err := scanRoom(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("room %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query room: %w", err)
	}
	return room, nil
}

// ListLiveRooms lists rooms currently marked live, newest first.
func (s *SQLiteStore) ListLiveRooms(ctx context.Context) ([]*store.Room, error) {
	query := `
		SELECT id, title, topic, description, host_id, capacity, is_private, is_live, scheduled_at, created_at
		FROM rooms
		WHERE is_live = 1
		ORDER BY created_at DESC
	`
	return s.queryRooms(ctx, query)
}

// ListUpcomingRooms lists scheduled rooms ordered by start time.
func (s *SQLiteStore) ListUpcomingRooms(ctx context.Context) ([]*store.Room, error) {
	query := `
		SELECT id, title, topic, description, host_id, capacity, is_private, is_live, scheduled_at, created_at
		FROM rooms
		WHERE is_live = 0 AND scheduled_at IS NOT NULL
		ORDER BY scheduled_at ASC
	`
	return s.queryRooms(ctx, query)
}

func (s *SQLiteStore) queryRooms(ctx context.Context, query string, args ...any) ([]*store.Room, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	out := make([]*store.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*store.Room, error) {
	var room store.Room
	var scheduled sql.NullTime
	err := row.Scan(
		&room.ID,
		&room.Title,
		&room.Topic,
		&room.Description,
		&room.HostID,
		&room.Capacity,
		&room.IsPrivate,
		&room.IsLive,
		&scheduled,
		&room.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if scheduled.Valid {
		t := scheduled.Time
		room.ScheduledAt = &t
	}
	return &room, nil
}

// ListSeedParticipants lists the pre-populated members of a room.
func (s *SQLiteStore) ListSeedParticipants(ctx context.Context, roomID string) ([]*store.SeedParticipant, error) {
	query := `
		SELECT room_id, user_id, role, muted, joined_at
		FROM room_participants
		WHERE room_id = ?
		ORDER BY joined_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("query seed participants: %w", err)
	}
	defer rows.Close()

	out := make([]*store.SeedParticipant, 0)
	for rows.Next() {
		var p store.SeedParticipant
		if err := rows.Scan(&p.RoomID, &p.UserID, &p.Role, &p.Muted, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan seed participant: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// AddSeedParticipant attaches a pre-populated member to a room.
func (s *SQLiteStore) AddSeedParticipant(ctx context.Context, p *store.SeedParticipant) error {
	query := `
		INSERT INTO room_participants (room_id, user_id, role, muted, joined_at)
		VALUES (?, ?, ?, ?, ?)
	`
	joined := p.JoinedAt
	if joined.IsZero() {
		joined = time.Now()
	}
	if _, err := s.db.ExecContext(ctx, query, p.RoomID, p.UserID, p.Role, p.Muted, joined); err != nil {
		return fmt.Errorf("insert seed participant: %w", err)
	}
	return nil
}

// ==== ProfileStore implementation ====

// GetProfile retrieves a profile by id.
func (s *SQLiteStore) GetProfile(ctx context.Context, id string) (*store.Profile, error) {
	query := `
		SELECT id, display_name, avatar_url, bio, created_at
		FROM profiles
		WHERE id = ?
	`
	var p store.Profile
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.DisplayName,
		&p.AvatarURL,
		&p.Bio,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

// UpsertProfile inserts or updates a profile.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, p *store.Profile) error {
	query := `
		INSERT INTO profiles (id, display_name, avatar_url, bio)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			avatar_url   = excluded.avatar_url,
			bio          = excluded.bio
	`
	if _, err := s.db.ExecContext(ctx, query, p.ID, p.DisplayName, p.AvatarURL, p.Bio); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
