// Package settings keeps user preferences in a small TOML file. Reads
// degrade to the caller's fallback on any problem; a broken preferences
// file must never take the switcher down with it.
package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/nikitaclicks/decky-multi-user/internal/atomicfile"
	"github.com/nikitaclicks/decky-multi-user/internal/ports"
)

const (
	settingsFileMode = 0o600
	settingsDirMode  = 0o700
)

type Store struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.SettingsStore = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path), mu: atomicfile.LockForPath(filepath.Clean(path))}
}

// Get returns the stored value for key, or fallback when the file, the
// key, or a decodable file is missing.
func (s *Store) Get(ctx context.Context, key string, fallback any) any {
	if ctx.Err() != nil {
		return fallback
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	values, err := s.read()
	if err != nil {
		return fallback
	}

	value, ok := values[key]
	if !ok {
		return fallback
	}
	return value
}

// Set stores value under key, keeping every other key. When the existing
// file cannot be decoded it is replaced rather than repaired; the stored
// preferences are always the last consistent write.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		values = map[string]any{}
	}
	values[key] = value

	data, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode settings file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), settingsDirMode); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	if err := atomicfile.WriteFile(s.path, data, settingsFileMode); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func (s *Store) read() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	values := map[string]any{}
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}
