// Package store persists the session record set to durable storage.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"github.com/freemaltson/whiskynights/internal/session"
)

// State is the full persisted document: the order-significant session list
// plus the optional static member roster.
type State struct {
	Sessions []session.Record `json:"sessions"`
	Members  []string         `json:"members,omitempty"`
}

// Store loads and saves the complete state document. Implementations must
// treat Save as a full overwrite; there is no partial write.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, st State) error
}

// FileStore keeps the state in a single JSON file on disk.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the JSON file at path. The file is
// created on first Save; a missing file loads as the empty state.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the state file.
func (s *FileStore) Load(_ context.Context) (State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read state file: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode state file: %w", err)
	}
	return st, nil
}

// Save writes the state atomically: renameio handles temp file creation,
// fsync and rename, so a crash mid-write never leaves a torn file.
func (s *FileStore) Save(_ context.Context, st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(s.path)
	if err != nil {
		return fmt.Errorf("create pending state file: %w", err)
	}
	defer func() {
		_ = pendingFile.Cleanup()
	}()

	if _, err := pendingFile.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write state data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace state file: %w", err)
	}
	return nil
}
