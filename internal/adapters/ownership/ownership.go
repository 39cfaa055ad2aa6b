// Package ownership answers who owns and who plays an installed app. Owners
// come from the app manifest in whichever Steam library holds the install;
// local players come from per-account userdata directories.
package ownership

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
	"github.com/nikitaclicks/decky-multi-user/internal/ports"
	"github.com/nikitaclicks/decky-multi-user/internal/steampath"
	"github.com/nikitaclicks/decky-multi-user/internal/vdf"
)

type Index struct {
	steamApps    string
	libraryIndex string
	userData     string
	extra        []string
}

var _ ports.OwnershipIndex = (*Index)(nil)

func NewIndex(layout steampath.Layout) *Index {
	return &Index{
		steamApps:    layout.SteamApps,
		libraryIndex: layout.LibraryIndex,
		userData:     layout.UserData,
		extra:        layout.ExtraLibraries,
	}
}

// Owner locates appmanifest_<app>.acf across every known library and
// reports the ids its AppState block names. The first manifest found
// decides; a manifest naming neither id reports false.
func (i *Index) Owner(ctx context.Context, app domain.AppID) (domain.OwnershipRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.OwnershipRecord{}, false, err
	}

	libraries, err := i.libraries()
	if err != nil {
		return domain.OwnershipRecord{}, false, err
	}

	manifestName := fmt.Sprintf("appmanifest_%s.acf", app)
	for _, library := range libraries {
		data, err := os.ReadFile(filepath.Join(library, manifestName))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return domain.OwnershipRecord{}, false, fmt.Errorf("read app manifest: %w", err)
		}

		root, err := vdf.Parse(data)
		if err != nil {
			return domain.OwnershipRecord{}, false, fmt.Errorf("decode app manifest: %w", err)
		}

		record := domain.OwnershipRecord{AppID: app}
		if owner, ok := root.Leaf("AppState", "LastOwner"); ok && isDigits(owner) {
			record.LastOwner = domain.SteamID(owner)
		}
		if installer, ok := root.Leaf("AppState", "InstalledBy"); ok && isDigits(installer) {
			record.InstalledBy = domain.SteamID(installer)
		}

		if record.LastOwner == "" && record.InstalledBy == "" {
			return domain.OwnershipRecord{}, false, nil
		}
		return record, true, nil
	}

	return domain.OwnershipRecord{}, false, nil
}

// LocalPlayers returns the accounts whose userdata tree contains a
// directory for app, sorted ascending. Directory presence means the account
// has run the app on this host.
func (i *Index) LocalPlayers(ctx context.Context, app domain.AppID) ([]domain.SteamID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(i.userData)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.SteamID{}, nil
		}
		return nil, fmt.Errorf("read userdata directory: %w", err)
	}

	players := []domain.SteamID{}
	for _, entry := range entries {
		if !entry.IsDir() || !isDigits(entry.Name()) {
			continue
		}

		accountID, err := strconv.ParseUint(entry.Name(), 10, 32)
		if err != nil {
			continue
		}

		info, err := os.Stat(filepath.Join(i.userData, entry.Name(), string(app)))
		if err != nil || !info.IsDir() {
			continue
		}

		players = append(players, domain.SteamIDFromAccountID(uint32(accountID)))
	}

	sort.Slice(players, func(a, b int) bool { return players[a] < players[b] })

	return players, nil
}

// libraries returns every steamapps directory worth searching: the default
// one, each "path" entry from libraryfolders.vdf, and any extra roots from
// configuration.
func (i *Index) libraries() ([]string, error) {
	libraries := []string{i.steamApps}
	seen := map[string]bool{i.steamApps: true}

	add := func(root string) {
		dir := filepath.Join(root, "steamapps")
		if !seen[dir] {
			seen[dir] = true
			libraries = append(libraries, dir)
		}
	}

	data, err := os.ReadFile(i.libraryIndex)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read library index: %w", err)
	default:
		root, err := vdf.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("decode library index: %w", err)
		}
		for _, path := range collectPathLeaves(root) {
			add(path)
		}
	}

	for _, root := range i.extra {
		add(root)
	}

	return libraries, nil
}

// collectPathLeaves gathers every "path" leaf anywhere in the document,
// mirroring how the client scatters them across libraryfolders.vdf
// versions.
func collectPathLeaves(o *vdf.Object) []string {
	var paths []string
	for _, key := range o.Keys() {
		value, _ := o.Get(key)
		if value.IsObject() {
			paths = append(paths, collectPathLeaves(value.Object())...)
			continue
		}
		if strings.EqualFold(key, "path") {
			paths = append(paths, value.Leaf())
		}
	}
	return paths
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
