// Package launch persists the pending-launch record: the one durable note
// that a game should start once the host is back up under the target
// account. The record lives in the system temp directory so a reboot,
// which voids the intent anyway, clears it naturally.
package launch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nikitaclicks/decky-multi-user/internal/atomicfile"
	"github.com/nikitaclicks/decky-multi-user/internal/domain"
	"github.com/nikitaclicks/decky-multi-user/internal/ports"
)

const (
	recordFileMode  = 0o600
	defaultFileName = "decky_multiuser_pending_launch.json"
)

type record struct {
	AppID         string `json:"appid"`
	TargetSteamID string `json:"target_steamid"`
	CreatedAt     int64  `json:"created_at"`
}

type Store struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.LaunchIntentStore = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: path, mu: atomicfile.LockForPath(path)}
}

// DefaultPath returns the stock record location under the system temp
// directory.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), defaultFileName)
}

// Put durably records intent, replacing any previous record. The write is
// synced to disk before Put returns so the record survives the host kill
// that follows.
func (s *Store) Put(ctx context.Context, intent domain.PendingLaunch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(record{
		AppID:         string(intent.AppID),
		TargetSteamID: string(intent.TargetSteamID),
		CreatedAt:     intent.CreatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode pending launch: %w", err)
	}

	if err := atomicfile.WriteFile(s.path, data, recordFileMode); err != nil {
		return fmt.Errorf("write pending launch: %w", err)
	}

	return nil
}

// Get reads the current record, reporting false when none is stored.
func (s *Store) Get(ctx context.Context) (domain.PendingLaunch, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.PendingLaunch{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.PendingLaunch{}, false, nil
		}
		return domain.PendingLaunch{}, false, fmt.Errorf("read pending launch: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.PendingLaunch{}, false, fmt.Errorf("decode pending launch: %w", err)
	}

	return domain.PendingLaunch{
		AppID:         domain.AppID(rec.AppID),
		TargetSteamID: domain.SteamID(rec.TargetSteamID),
		CreatedAt:     time.Unix(rec.CreatedAt, 0),
	}, true, nil
}

// Clear removes the record. Clearing an already-absent record is fine;
// consumption must be idempotent.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear pending launch: %w", err)
	}

	return nil
}
