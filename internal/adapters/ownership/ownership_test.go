package ownership

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
	"github.com/nikitaclicks/decky-multi-user/internal/steampath"
)

func manifest(appid, lastOwner, installedBy string) string {
	content := "\"AppState\"\n{\n\t\"appid\"\t\t\"" + appid + "\"\n\t\"name\"\t\t\"Some Game\"\n"
	if lastOwner != "" {
		content += "\t\"LastOwner\"\t\t\"" + lastOwner + "\"\n"
	}
	if installedBy != "" {
		content += "\t\"InstalledBy\"\t\t\"" + installedBy + "\"\n"
	}
	return content + "}\n"
}

func newFixtureIndex(t *testing.T) (*Index, string) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "steamapps"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "userdata"), 0o755))

	layout := steampath.Layout{
		Root:         root,
		SteamApps:    filepath.Join(root, "steamapps"),
		LibraryIndex: filepath.Join(root, "config", "libraryfolders.vdf"),
		UserData:     filepath.Join(root, "userdata"),
	}
	return NewIndex(layout), root
}

func TestIndexOwnerFromDefaultLibrary(t *testing.T) {
	t.Parallel()

	index, root := newFixtureIndex(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "steamapps", "appmanifest_440.acf"),
		[]byte(manifest("440", "76561198000000001", "76561198000000002")),
		0o644,
	))

	record, found, err := index.Owner(context.Background(), "440")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.AppID("440"), record.AppID)
	assert.Equal(t, domain.SteamID("76561198000000001"), record.LastOwner)
	assert.Equal(t, domain.SteamID("76561198000000002"), record.InstalledBy)
}

func TestIndexOwnerSearchesLibraryIndexPaths(t *testing.T) {
	t.Parallel()

	index, root := newFixtureIndex(t)

	second := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(second, "steamapps"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(second, "steamapps", "appmanifest_730.acf"),
		[]byte(manifest("730", "76561198000000003", "")),
		0o644,
	))

	libraryIndex := "\"libraryfolders\"\n{\n" +
		"\t\"0\"\n\t{\n\t\t\"path\"\t\t\"" + root + "\"\n\t}\n" +
		"\t\"1\"\n\t{\n\t\t\"path\"\t\t\"" + second + "\"\n\t}\n" +
		"}\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "libraryfolders.vdf"), []byte(libraryIndex), 0o644))

	record, found, err := index.Owner(context.Background(), "730")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.SteamID("76561198000000003"), record.LastOwner)
	assert.Equal(t, domain.SteamID(""), record.InstalledBy)
}

func TestIndexOwnerUsesConfiguredExtraLibraries(t *testing.T) {
	t.Parallel()

	index, _ := newFixtureIndex(t)

	extra := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(extra, "steamapps"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(extra, "steamapps", "appmanifest_10.acf"),
		[]byte(manifest("10", "", "76561198000000004")),
		0o644,
	))
	index.extra = []string{extra}

	record, found, err := index.Owner(context.Background(), "10")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.SteamID("76561198000000004"), record.InstalledBy)
}

func TestIndexOwnerNoManifestReportsNotFound(t *testing.T) {
	t.Parallel()

	index, _ := newFixtureIndex(t)

	_, found, err := index.Owner(context.Background(), "999")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIndexOwnerManifestWithoutIDsReportsNotFound(t *testing.T) {
	t.Parallel()

	index, root := newFixtureIndex(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "steamapps", "appmanifest_440.acf"),
		[]byte(manifest("440", "", "")),
		0o644,
	))

	_, found, err := index.Owner(context.Background(), "440")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIndexOwnerMalformedManifestReturnsError(t *testing.T) {
	t.Parallel()

	index, root := newFixtureIndex(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "steamapps", "appmanifest_440.acf"),
		[]byte("\"AppState\"\n{\n"),
		0o644,
	))

	_, _, err := index.Owner(context.Background(), "440")
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode app manifest")
}

func TestIndexLocalPlayersDirectoryPresence(t *testing.T) {
	t.Parallel()

	index, root := newFixtureIndex(t)
	userdata := filepath.Join(root, "userdata")

	// Two accounts with the app dir, one without, one file impostor, and
	// one non-numeric entry.
	require.NoError(t, os.MkdirAll(filepath.Join(userdata, "1001", "440"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(userdata, "1000", "440"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(userdata, "1002", "730"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(userdata, "1003"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userdata, "1003", "440"), []byte("not a dir"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(userdata, "ac_backup", "440"), 0o755))

	players, err := index.LocalPlayers(context.Background(), "440")
	require.NoError(t, err)

	assert.Equal(t, []domain.SteamID{
		domain.SteamIDFromAccountID(1000),
		domain.SteamIDFromAccountID(1001),
	}, players)
}

func TestIndexLocalPlayersMissingUserdataIsEmpty(t *testing.T) {
	t.Parallel()

	index := NewIndex(steampath.Layout{UserData: filepath.Join(t.TempDir(), "missing")})

	players, err := index.LocalPlayers(context.Background(), "440")
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestIndexCanceledContext(t *testing.T) {
	t.Parallel()

	index, _ := newFixtureIndex(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := index.Owner(ctx, "440")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = index.LocalPlayers(ctx, "440")
	assert.ErrorIs(t, err, context.Canceled)
}
