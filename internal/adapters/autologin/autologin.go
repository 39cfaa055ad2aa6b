// Package autologin reads and rewrites registry.vdf, the file the Steam
// client consults on startup to decide which account to sign in as.
package autologin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/nikitaclicks/decky-multi-user/internal/atomicfile"
	"github.com/nikitaclicks/decky-multi-user/internal/ports"
	"github.com/nikitaclicks/decky-multi-user/internal/vdf"
)

const defaultFileMode = 0o644

// steamBranch is where the client keeps its login keys inside registry.vdf.
var steamBranch = []string{"Registry", "HKCU", "Software", "Valve", "Steam"}

type Store struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.AutoLoginStore = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: path, mu: atomicfile.LockForPath(path)}
}

// Target returns the account name the client will auto-login as, or "" when
// the file or the key is absent.
func (s *Store) Target(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	root, err := s.load()
	if err != nil {
		return "", err
	}

	target, _ := root.Leaf(append(steamBranch, "AutoLoginUser")...)
	return target, nil
}

// SetTarget points auto-login at accountName and forces the
// remember-password flag on, so the restarted client signs straight in. A
// missing file is bootstrapped with the minimal nested structure; in an
// existing file every key outside the Steam branch keeps its bytes.
func (s *Store) SetTarget(ctx context.Context, accountName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.load()
	if err != nil {
		return err
	}

	root.SetLeaf(accountName, append(steamBranch, "AutoLoginUser")...)
	root.SetLeaf("1", append(steamBranch, "RememberPassword")...)

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := atomicfile.WriteFile(s.path, root.Marshal(), fileMode(s.path)); err != nil {
		return fmt.Errorf("write registry file: %w", err)
	}

	return nil
}

func (s *Store) load() (*vdf.Object, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return vdf.NewObject(), nil
		}
		return nil, fmt.Errorf("read registry file: %w", err)
	}

	root, err := vdf.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decode registry file: %w", err)
	}

	return root, nil
}

func fileMode(path string) os.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return defaultFileMode
	}
	return info.Mode().Perm()
}
