package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoSession indicates that no session file exists (signed out).
var ErrNoSession = errors.New("not signed in")

const sessionFileName = "session.json"

// SaveSession persists the session under dir, creating the directory if
// needed. The file is written with owner-only permissions: it holds a
// bearer token.
func SaveSession(dir string, s Session) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, sessionFileName), data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// LoadSession reads the persisted session. Returns ErrNoSession when the
// file does not exist.
func LoadSession(dir string) (Session, error) {
	data, err := os.ReadFile(filepath.Join(dir, sessionFileName))
	if os.IsNotExist(err) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// ClearSession removes the persisted session. Clearing an absent session is
// a no-op.
func ClearSession(dir string) error {
	err := os.Remove(filepath.Join(dir, sessionFileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
