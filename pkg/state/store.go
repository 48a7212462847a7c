// Package state persists per-file view state (expanded nodes, last
// selection) across sessions, keyed by the absolute path of the opened file.
//
// Storage is a small sqlite database under the XDG state directory. Corrupt
// or missing state always degrades to defaults: persistence is a
// convenience, never a requirement to start.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Dicklesworthstone/hdf5_viewer/pkg/model"
	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS view_state (
	path       TEXT PRIMARY KEY,
	expanded   TEXT NOT NULL DEFAULT '[]',
	selected   TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL
);`

// ViewState is the persisted navigation state for one file.
type ViewState struct {
	Expanded []model.NodeID
	Selected model.NodeID
}

// Store is a handle to the view-state database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at the given directory.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("no state directory available")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing state db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the saved state for a file path, or ok=false when none is
// saved or the saved row cannot be decoded.
func (s *Store) Load(path string) (ViewState, bool) {
	var expandedJSON, selected string
	err := s.db.QueryRow(
		`SELECT expanded, selected FROM view_state WHERE path = ?`, path,
	).Scan(&expandedJSON, &selected)
	if err != nil {
		return ViewState{}, false
	}
	var expanded []model.NodeID
	if err := json.Unmarshal([]byte(expandedJSON), &expanded); err != nil {
		return ViewState{}, false
	}
	return ViewState{Expanded: expanded, Selected: model.NodeID(selected)}, true
}

// Save upserts the state for a file path.
func (s *Store) Save(path string, vs ViewState) error {
	expandedJSON, err := json.Marshal(vs.Expanded)
	if err != nil {
		return fmt.Errorf("encoding expanded set: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO view_state (path, expanded, selected, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   expanded = excluded.expanded,
		   selected = excluded.selected,
		   updated_at = excluded.updated_at`,
		path, string(expandedJSON), string(vs.Selected), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving view state: %w", err)
	}
	return nil
}

// Reset deletes the saved state for a file path.
func (s *Store) Reset(path string) error {
	_, err := s.db.Exec(`DELETE FROM view_state WHERE path = ?`, path)
	return err
}
