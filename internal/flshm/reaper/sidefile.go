package reaper

import (
	"encoding/json"
	"fmt"
	"os"
)

// Store persists the name->pid ownership table to a JSON file so a
// Reaper running in one process can reap entries Tracked by a Reaper in
// another: the in-memory ownerPID map alone only ever reflects what the
// current process itself tracked (see Reaper's doc comment), which makes
// a freestanding sweep process such as cmd/flshmreap otherwise unable to
// reap anything left behind by a different process. A plain JSON file is
// enough here — this is advisory cleanup, not a protocol change, and no
// third-party serialization library is warranted for a single small
// local map.
type Store struct {
	path string
}

// NewStore returns a Store backed by the file at path. The file is
// created on first Save; Load on a missing file returns an empty map.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted ownership table. A missing file is not an
// error: it means no Reaper has ever Tracked anything at this path yet.
func (s *Store) Load() (map[string]int, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reaper: read side file: %w", err)
	}
	if len(data) == 0 {
		return map[string]int{}, nil
	}
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("reaper: parse side file: %w", err)
	}
	return m, nil
}

// Save overwrites the persisted ownership table.
func (s *Store) Save(m map[string]int) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("reaper: encode side file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("reaper: write side file: %w", err)
	}
	return nil
}
