package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
)

// FileStore keeps a single session in a JSON file. It backs the command line
// client, where one user is signed in per home directory.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

// Get returns the stored session. An empty id matches whatever session is stored.
func (f *FileStore) Get(_ context.Context, id string) (*Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}

	if id != "" && rec.ID != id {
		return nil, model.ErrSessionNotFound
	}

	return FromRecord(rec), nil
}

func (f *FileStore) Save(_ context.Context, s *Session) error {
	data, err := json.MarshalIndent(s.Record(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session file: %w", err)
	}

	return nil
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	if id != "" {
		current, err := f.Get(context.Background(), "")
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil
		}
		if err == nil && current.ID() != id {
			return nil
		}
	}

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
