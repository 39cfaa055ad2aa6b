// Package registry reads and rewrites loginusers.vdf, the roster of
// accounts that have logged in on this host.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/nikitaclicks/decky-multi-user/internal/atomicfile"
	"github.com/nikitaclicks/decky-multi-user/internal/domain"
	"github.com/nikitaclicks/decky-multi-user/internal/ports"
	"github.com/nikitaclicks/decky-multi-user/internal/vdf"
)

const (
	usersKey          = "users"
	accountNameKey    = "AccountName"
	personaNameKey    = "PersonaName"
	mostRecentKey     = "MostRecent"
	allowAutoLoginKey = "AllowAutoLogin"
	timestampKey      = "Timestamp"

	defaultFileMode = 0o644
)

type Store struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.AccountRegistry = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: path, mu: atomicfile.LockForPath(path)}
}

// List returns every roster entry, newest login first. A missing file is an
// empty roster.
func (s *Store) List(ctx context.Context) ([]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.list()
}

// Current returns the account the host is signed in as. With exactly one
// most-recent flag set that entry wins; with zero or several, the newest
// login wins.
func (s *Store) Current(ctx context.Context) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts, err := s.list()
	if err != nil {
		return domain.Account{}, err
	}
	if len(accounts) == 0 {
		return domain.Account{}, domain.ErrNoLoginAccounts
	}

	var flagged []domain.Account
	for _, account := range accounts {
		if account.MostRecent {
			flagged = append(flagged, account)
		}
	}
	if len(flagged) == 1 {
		return flagged[0], nil
	}

	// Zero or conflicting flags: accounts are sorted newest first, so the
	// head is the latest login either way.
	return accounts[0], nil
}

// MarkMostRecent makes id the roster's sole most-recent entry: every other
// entry's most-recent and auto-login flags are cleared, the target's are
// set, and the target's login timestamp becomes now. Untouched fields keep
// their bytes.
func (s *Store) MarkMostRecent(ctx context.Context, id domain.SteamID, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.load()
	if err != nil {
		return err
	}

	users, ok := root.Get(usersKey)
	if !ok || !users.IsObject() {
		return fmt.Errorf("mark most recent %s: %w", id, domain.ErrUnknownAccount)
	}

	target, ok := users.Object().Get(string(id))
	if !ok || !target.IsObject() {
		return fmt.Errorf("mark most recent %s: %w", id, domain.ErrUnknownAccount)
	}

	for _, key := range users.Object().Keys() {
		entry, _ := users.Object().Get(key)
		if !entry.IsObject() {
			continue
		}
		// Clear flags only where the client wrote them; adding keys to
		// other entries would disturb their bytes.
		clearIfPresent(entry.Object(), mostRecentKey)
		clearIfPresent(entry.Object(), allowAutoLoginKey)
	}

	target.Object().Set(mostRecentKey, vdf.String("1"))
	target.Object().Set(allowAutoLoginKey, vdf.String("1"))
	target.Object().Set(timestampKey, vdf.String(strconv.FormatInt(now.Unix(), 10)))

	if err := ctx.Err(); err != nil {
		return err
	}

	mode := fileMode(s.path)
	if err := atomicfile.WriteFile(s.path, root.Marshal(), mode); err != nil {
		return fmt.Errorf("write loginusers file: %w", err)
	}

	return nil
}

func (s *Store) list() ([]domain.Account, error) {
	root, err := s.load()
	if err != nil {
		return nil, err
	}

	users, ok := root.Get(usersKey)
	if !ok || !users.IsObject() {
		return []domain.Account{}, nil
	}

	accounts := make([]domain.Account, 0, users.Object().Len())
	for _, id := range users.Object().Keys() {
		entry, _ := users.Object().Get(id)
		if !entry.IsObject() || !isDigits(id) {
			continue
		}

		account := accountFromEntry(domain.SteamID(id), entry.Object())
		if account.AccountName == "" {
			continue
		}
		accounts = append(accounts, account)
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].Timestamp > accounts[j].Timestamp
	})

	return accounts, nil
}

func (s *Store) load() (*vdf.Object, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return vdf.NewObject(), nil
		}
		return nil, fmt.Errorf("read loginusers file: %w", err)
	}

	root, err := vdf.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decode loginusers file: %w", err)
	}

	return root, nil
}

func accountFromEntry(id domain.SteamID, entry *vdf.Object) domain.Account {
	account := domain.Account{SteamID: id}

	if name, ok := entry.Leaf(accountNameKey); ok {
		account.AccountName = name
	}
	account.PersonaName = account.AccountName
	if persona, ok := entry.Leaf(personaNameKey); ok && persona != "" {
		account.PersonaName = persona
	}
	if recent, ok := entry.Leaf(mostRecentKey); ok {
		account.MostRecent = recent == "1"
	}
	if raw, ok := entry.Leaf(timestampKey); ok {
		if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
			account.Timestamp = ts
		}
	}

	return account
}

func clearIfPresent(entry *vdf.Object, key string) {
	if _, ok := entry.Get(key); ok {
		entry.Set(key, vdf.String("0"))
	}
}

func fileMode(path string) os.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return defaultFileMode
	}
	return info.Mode().Perm()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
