// Package store persists named Ingot programs in a SQLite database.
// Programs are stored as wire-format CBOR blobs keyed by a generated id,
// with a unique human-readable name for lookup.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ingotvm/ingot/vm"
	"github.com/ingotvm/ingot/vm/wire"
)

// ErrProgramNotFound indicates the requested program doesn't exist.
var ErrProgramNotFound = errors.New("program not found")

// Store is a handle to an open program database.
type Store struct {
	db *sql.DB
}

// Entry describes one stored program.
type Entry struct {
	ID           string
	Name         string
	Instructions int
	CreatedAt    time.Time
}

// Open opens (creating if needed) the program database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		data BLOB NOT NULL,
		instructions INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores a program under name, replacing any existing program with
// that name.
func (s *Store) Save(name string, prog []vm.Instruction) error {
	data, err := wire.MarshalProgram(name, prog)
	if err != nil {
		return fmt.Errorf("encoding program: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO programs (id, name, data, instructions, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data,
			instructions = excluded.instructions,
			created_at = excluded.created_at`,
		uuid.NewString(), name, data, len(prog), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving program %q: %w", name, err)
	}
	return nil
}

// Load returns the program stored under name.
func (s *Store) Load(name string) ([]vm.Instruction, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM programs WHERE name = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", name, ErrProgramNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading program %q: %w", name, err)
	}

	_, prog, err := wire.UnmarshalProgram(data)
	if err != nil {
		return nil, fmt.Errorf("decoding program %q: %w", name, err)
	}
	return prog, nil
}

// List returns all stored programs ordered by name.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query("SELECT id, name, instructions, created_at FROM programs ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing programs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Name, &e.Instructions, &created); err != nil {
			return nil, fmt.Errorf("scanning program row: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the program stored under name.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec("DELETE FROM programs WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting program %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", name, ErrProgramNotFound)
	}
	return nil
}
