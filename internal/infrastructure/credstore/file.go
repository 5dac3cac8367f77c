// Package credstore persists the operator's bearer token and cached identity
// between runs. It is the analog of the browser's fixed-key local storage:
// plain client-side persistence, not secure storage.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pharmawatch/ae-console/internal/core/domain"
)

// Fixed well-known keys inside the credentials file.
const (
	keyToken = "access_token"
	keyUser  = "user"
)

type FileStore struct {
	path string
}

func New(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("credstore: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create credentials dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads the stored session. A missing file is an empty session, not an
// error.
func (s *FileStore) Load() (domain.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("read credentials: %w", err)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return domain.Session{}, fmt.Errorf("parse credentials: %w", err)
	}

	var session domain.Session
	if raw, ok := entries[keyToken]; ok {
		if err := json.Unmarshal(raw, &session.Token); err != nil {
			return domain.Session{}, fmt.Errorf("parse stored token: %w", err)
		}
	}
	if raw, ok := entries[keyUser]; ok {
		var user domain.User
		if err := json.Unmarshal(raw, &user); err != nil {
			return domain.Session{}, fmt.Errorf("parse stored user: %w", err)
		}
		session.User = &user
	}
	return session, nil
}

// Save replaces both keys in one atomic rename so a crash can never leave a
// token without its identity or vice versa.
func (s *FileStore) Save(session domain.Session) error {
	entries := map[string]any{
		keyToken: session.Token,
	}
	if session.User != nil {
		entries[keyUser] = session.User
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}

// Clear removes token and identity together. Clearing an absent file is a
// no-op.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
