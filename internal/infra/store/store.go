// Package store implements the persistence adapter: a single-slot SQLite
// store holding the serialized UserState blob. The slot is read once at
// startup and rewritten on every ledger apply.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/coinquest/coinquest/internal/domain"
)

// Slot is the key the user state lives under (the original app's
// localStorage key).
const Slot = "cq_user"

// Migrations returns the schema statements, one per string.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS user_state (
			slot       TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
	}
}

// Store is a SQLite-backed single-slot state store.
type Store struct {
	db   *sql.DB
	slot string
}

// Open creates or opens the database under dir and applies migrations.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, "coinquest.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// The store is single-writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, stmt := range Migrations() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &Store{db: db, slot: Slot}, nil
}

var _ domain.StateStore = (*Store)(nil)

// Load reads and decodes the state slot. A missing slot returns
// ErrSlotNotFound; a malformed payload returns a decode error. Callers
// treat both the same way: fall back to the default seeded state.
func (s *Store) Load() (domain.UserState, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM user_state WHERE slot = ?`, s.slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserState{}, domain.ErrSlotNotFound
	}
	if err != nil {
		return domain.UserState{}, fmt.Errorf("read slot: %w", err)
	}

	var state domain.UserState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return domain.UserState{}, fmt.Errorf("decode slot: %w", err)
	}
	return state, nil
}

// Save serializes the state and upserts the slot.
func (s *Store) Save(state domain.UserState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO user_state (slot, payload, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(slot) DO UPDATE SET
			payload    = excluded.payload,
			updated_at = datetime('now')
	`, s.slot, string(payload))
	if err != nil {
		return fmt.Errorf("write slot: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
