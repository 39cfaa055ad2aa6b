package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
)

const (
	aliceID = "76561198000000001"
	bobID   = "76561198000000002"
)

func TestAccountsListShowsRoster(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "accounts: 2")
	assert.Contains(t, stdout, "Alice")
	assert.Contains(t, stdout, "(alice)")
	assert.Contains(t, stdout, "[current]")
	assert.Contains(t, stdout, "[auto-login]")
	assert.Contains(t, stdout, "Bob")
}

func TestAccountsListJSONOutput(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "accounts", "list", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"SteamID\": \""+aliceID+"\"")
	assert.Contains(t, stdout, "\"AccountName\": \"bob\"")
}

func TestAccountsCurrentShowsMostRecent(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "accounts", "current")
	require.NoError(t, err)
	assert.Contains(t, stdout, aliceID)
	assert.Contains(t, stdout, "alice")
}

func TestAccountsCurrentJSONOutput(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "accounts", "current", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"AccountName\": \"alice\"")
}

func TestSwitchUnknownAccountLeavesConfigUntouched(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	registryPath := filepath.Join(home, ".steam", "registry.vdf")
	before, err := os.ReadFile(registryPath)
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "switch", "76561198000000999", "--no-restart")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown account")

	after, err := os.ReadFile(registryPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSwitchRejectsNonNumericArgument(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	_, _, err := executeCLI(t, home, "switch", "bob", "--no-restart")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not numeric")
}

func TestSwitchNoRestartRewritesConfig(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "switch", bobID, "--no-restart")
	require.NoError(t, err)
	assert.Contains(t, stdout, "switched to bob")
	assert.Contains(t, stdout, "restart skipped")

	registryData, err := os.ReadFile(filepath.Join(home, ".steam", "registry.vdf"))
	require.NoError(t, err)
	assert.Contains(t, string(registryData), `"AutoLoginUser"		"bob"`)

	stdout, _, err = executeCLI(t, home, "accounts", "current")
	require.NoError(t, err)
	assert.Contains(t, stdout, bobID)
}

func TestSwitchAcceptsBareAccountNumber(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	accountID, ok := domain.SteamID(bobID).AccountID()
	require.True(t, ok)

	stdout, _, err := executeCLI(t, home, "switch", strconv.FormatUint(uint64(accountID), 10), "--no-restart")
	require.NoError(t, err)
	assert.Contains(t, stdout, "switched to bob")
}

func TestSwitchWithLaunchWritesPendingRecord(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "switch", bobID, "--launch", "440", "--no-restart")
	require.NoError(t, err)
	assert.Contains(t, stdout, "queued launch of app 440")

	record, err := os.ReadFile(filepath.Join(home, "pending_launch.json"))
	require.NoError(t, err)
	assert.Contains(t, string(record), `"appid":"440"`)
	assert.Contains(t, string(record), `"target_steamid":"`+bobID+`"`)
}

func TestResumeWithoutRecordIsNoOp(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "resume")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no pending launch")
}

func TestResumeDiscardsRecordForOtherAccount(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	// Pending record targets bob while alice is the current account.
	record := fmt.Sprintf(`{"appid":"440","target_steamid":"%s","created_at":1700000300}`, bobID)
	pendingPath := filepath.Join(home, "pending_launch.json")
	require.NoError(t, os.WriteFile(pendingPath, []byte(record), 0o600))

	stdout, _, err := executeCLI(t, home, "resume")
	require.NoError(t, err)
	assert.Contains(t, stdout, "discarded stale launch of app 440")

	_, err = os.Stat(pendingPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSwitchThenResumeLaunchesPendingApp(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	command, argsFile := writeFakeSteamScript(t, home)
	t.Setenv("DMU_STEAM_COMMAND", command)
	t.Setenv("DMU_LAUNCH_DELAY", "0s")

	_, _, err := executeCLI(t, home, "switch", bobID, "--launch", "440", "--no-restart")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "resume")
	require.NoError(t, err)
	assert.Contains(t, stdout, "launched app 440 for "+bobID)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "steam://rungameid/440")

	stdout, _, err = executeCLI(t, home, "resume")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no pending launch")
}

func TestOwnerShowsManifestAndLocalPlayers(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "owner", "440")
	require.NoError(t, err)
	assert.Contains(t, stdout, "last owner: "+aliceID)
	assert.Contains(t, stdout, "installed by: "+bobID)
	assert.Contains(t, stdout, "local players: "+aliceID)
}

func TestOwnerJSONOutput(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "owner", "440", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"LastOwner\": \""+aliceID+"\"")
}

func TestOwnerUnknownApp(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "owner", "999999")
	require.NoError(t, err)
	assert.Contains(t, stdout, "no install manifest found")
}

func TestSettingsSetThenGet(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	_, _, err := executeCLI(t, home, "settings", "set", "refresh_interval", "30")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "settings", "get", "refresh_interval")
	require.NoError(t, err)
	assert.Contains(t, stdout, "30")
}

func TestSettingsGetFallsBackToDefault(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "settings", "get", "missing_key", "--default", "fallback-value")
	require.NoError(t, err)
	assert.Contains(t, stdout, "fallback-value")
}

func TestWebKeySetShowClearRoundTrip(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "web-key", "set", "ABCDEF0123456789")
	require.NoError(t, err)
	assert.Contains(t, stdout, "web api key stored")

	stdout, _, err = executeCLI(t, home, "web-key", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ABCDEF0123456789")

	stdout, _, err = executeCLI(t, home, "web-key", "clear")
	require.NoError(t, err)
	assert.Contains(t, stdout, "web api key removed")

	_, _, err = executeCLI(t, home, "web-key", "show")
	require.Error(t, err)
}

func TestWebKeySetRejectsEmptyKey(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	_, _, err := executeCLI(t, home, "web-key", "set", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key must not be empty")
}

func TestVersionPrintsVersion(t *testing.T) {
	home := t.TempDir()
	writeSteamFixture(t, home)

	stdout, _, err := executeCLI(t, home, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dev")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("DMU_STEAM_ROOT", filepath.Join(home, "steam"))
	t.Setenv("DMU_LAUNCH_PATH", filepath.Join(home, "pending_launch.json"))
	t.Setenv("DMU_SETTINGS_PATH", filepath.Join(home, "settings.toml"))
	t.Setenv("DMU_LOG_LEVEL", "error")

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSteamFixture(t *testing.T, home string) {
	t.Helper()

	root := filepath.Join(home, "steam")
	configDir := filepath.Join(root, "config")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	loginusers := `"users"
{
	"` + aliceID + `"
	{
		"AccountName"		"alice"
		"PersonaName"		"Alice"
		"MostRecent"		"1"
		"AllowAutoLogin"		"1"
		"Timestamp"		"1700000100"
	}
	"` + bobID + `"
	{
		"AccountName"		"bob"
		"PersonaName"		"Bob"
		"Timestamp"		"1700000200"
	}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "loginusers.vdf"), []byte(loginusers), 0o644))

	steamDir := filepath.Join(home, ".steam")
	require.NoError(t, os.MkdirAll(steamDir, 0o755))
	registry := `"Registry"
{
	"HKCU"
	{
		"Software"
		{
			"Valve"
			{
				"Steam"
				{
					"AutoLoginUser"		"alice"
					"RememberPassword"		"1"
				}
			}
		}
	}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(steamDir, "registry.vdf"), []byte(registry), 0o644))

	steamApps := filepath.Join(root, "steamapps")
	require.NoError(t, os.MkdirAll(steamApps, 0o755))
	manifest := `"AppState"
{
	"appid"		"440"
	"name"		"Team Fortress 2"
	"LastOwner"		"` + aliceID + `"
	"InstalledBy"		"` + bobID + `"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(steamApps, "appmanifest_440.acf"), []byte(manifest), 0o644))

	accountID, ok := domain.SteamID(aliceID).AccountID()
	require.True(t, ok)
	appDir := filepath.Join(root, "userdata", strconv.FormatUint(uint64(accountID), 10), "440")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
}

// writeFakeSteamScript drops a stand-in for the steam binary that records
// its arguments. Deliberately not named "steam" so the restart path's
// killall can never reach a real client.
func writeFakeSteamScript(t *testing.T, dir string) (string, string) {
	t.Helper()

	argsFile := filepath.Join(dir, "steam_args")
	script := fmt.Sprintf("#!/bin/sh\necho \"$@\" >> %s\n", argsFile)

	path := filepath.Join(dir, "fakesteam")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path, argsFile
}
