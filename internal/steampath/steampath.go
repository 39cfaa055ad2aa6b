// Package steampath resolves where the host keeps its Steam installation.
// Every location can be overridden through configuration; the defaults match
// a stock Linux / Steam Deck install, where the client state lives under
// ~/.local/share/Steam except for registry.vdf, which sits in ~/.steam.
package steampath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	rootKey       = "steam.root"
	loginUsersKey = "steam.loginusers_path"
	autoLoginKey  = "steam.autologin_path"
	userdataKey   = "steam.userdata_dir"
	librariesKey  = "steam.library_dirs"
)

// Layout is the resolved set of files and directories the switcher reads
// and rewrites.
type Layout struct {
	Root           string
	LoginUsers     string
	AutoLogin      string
	LibraryIndex   string
	SteamApps      string
	UserData       string
	ExtraLibraries []string
}

// Resolve computes the layout from the given configuration, filling every
// unset key from the stock install locations.
func Resolve(cfg *viper.Viper) (Layout, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Layout{}, fmt.Errorf("resolve home directory: %w", err)
	}

	root := cfg.GetString(rootKey)
	if root == "" {
		root = filepath.Join(homeDir, ".local", "share", "Steam")
	}
	root = normalize(root, homeDir)

	layout := Layout{
		Root:         root,
		LoginUsers:   filepath.Join(root, "config", "loginusers.vdf"),
		AutoLogin:    filepath.Join(homeDir, ".steam", "registry.vdf"),
		LibraryIndex: filepath.Join(root, "config", "libraryfolders.vdf"),
		SteamApps:    filepath.Join(root, "steamapps"),
		UserData:     filepath.Join(root, "userdata"),
	}

	if p := cfg.GetString(loginUsersKey); p != "" {
		layout.LoginUsers = normalize(p, homeDir)
	}
	if p := cfg.GetString(autoLoginKey); p != "" {
		layout.AutoLogin = normalize(p, homeDir)
	}
	if p := cfg.GetString(userdataKey); p != "" {
		layout.UserData = normalize(p, homeDir)
	}
	for _, p := range cfg.GetStringSlice(librariesKey) {
		if p == "" {
			continue
		}
		layout.ExtraLibraries = append(layout.ExtraLibraries, normalize(p, homeDir))
	}

	return layout, nil
}

func normalize(path, homeDir string) string {
	if path == "~" {
		path = homeDir
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir, path[2:])
	}
	return filepath.Clean(path)
}
