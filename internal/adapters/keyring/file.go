package keyring

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nikitaclicks/decky-multi-user/internal/ports"
)

const (
	keyringDirMode  = 0o700
	keyringFileMode = 0o600
)

// FileStore keeps each credential in its own file under root, readable only
// by the owning user.
type FileStore struct {
	root string
	mu   sync.RWMutex
}

var _ ports.KeyStore = (*FileStore)(nil)

func NewFileStore(root string) *FileStore {
	return &FileStore{root: filepath.Clean(root)}
}

func (s *FileStore) Put(ctx context.Context, name string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), keyringDirMode); err != nil {
		return fmt.Errorf("create keyring directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(value), keyringFileMode); err != nil {
		return fmt.Errorf("write stored key %q: %w", name, err)
	}

	return nil
}

func (s *FileStore) Get(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.pathForName(name)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stored key %q not found: %w", name, err)
		}
		return "", fmt.Errorf("read stored key %q: %w", name, err)
	}

	return string(data), nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete stored key %q: %w", name, err)
	}

	return nil
}

// pathForName maps a key name to a file path, rejecting names that would
// escape the store root.
func (s *FileStore) pathForName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.New("key name is empty")
	}

	cleaned := filepath.Clean(trimmed)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") || cleaned == "." {
		return "", fmt.Errorf("invalid key name %q", name)
	}

	return filepath.Join(s.root, cleaned), nil
}
