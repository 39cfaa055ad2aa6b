package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/nikitaclicks/decky-multi-user/internal/adapters/autologin"
	"github.com/nikitaclicks/decky-multi-user/internal/adapters/keyring"
	"github.com/nikitaclicks/decky-multi-user/internal/adapters/launch"
	"github.com/nikitaclicks/decky-multi-user/internal/adapters/ownership"
	"github.com/nikitaclicks/decky-multi-user/internal/adapters/process"
	"github.com/nikitaclicks/decky-multi-user/internal/adapters/registry"
	accountsrender "github.com/nikitaclicks/decky-multi-user/internal/adapters/render/accounts"
	"github.com/nikitaclicks/decky-multi-user/internal/adapters/settings"
	"github.com/nikitaclicks/decky-multi-user/internal/adapters/steamweb"
	"github.com/nikitaclicks/decky-multi-user/internal/application"
	"github.com/nikitaclicks/decky-multi-user/internal/domain"
	"github.com/nikitaclicks/decky-multi-user/internal/ports"
	"github.com/nikitaclicks/decky-multi-user/internal/steampath"
)

const (
	configName      = "config"
	configType      = "toml"
	configDirName   = "dmu"
	envPrefix       = "DMU"
	steamCommandKey = "steam.command"
	dataDirKey      = "data.dir"
	launchPathKey   = "launch.path"
	launchDelayKey  = "launch.delay"
	settingsPathKey = "settings.path"
	webBaseURLKey   = "steamweb.base_url"
	webKeyKey       = "steamweb.key"
	logLevelKey     = "log.level"
	logFormatKey    = "log.format"
)

type app struct {
	switches       *application.SwitchService
	resume         *application.ResumeService
	queries        *application.Queries
	settings       ports.SettingsStore
	keys           ports.KeyStore
	personas       ports.PersonaDirectory
	webBaseURL     string
	renderAccounts func([]domain.Account, accountsrender.RenderOptions) (string, error)
	logger         zerolog.Logger
	now            func() time.Time
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg, err := loadConfig(homeDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(cfg.GetString(logLevelKey), cfg.GetString(logFormatKey))

	layout, err := steampath.Resolve(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve steam layout: %w", err)
	}

	settingsPath := cfg.GetString(settingsPathKey)
	if settingsPath == "" {
		settingsPath = filepath.Join(cfg.GetString(dataDirKey), "settings.toml")
	}

	keyStore, err := keyring.NewPassFirstWithFileFallback(filepath.Join(cfg.GetString(dataDirKey), "keys"))
	if err != nil {
		return nil, fmt.Errorf("wire key store chain: %w", err)
	}

	registryStore := registry.NewStore(layout.LoginUsers)
	autologinStore := autologin.NewStore(layout.AutoLogin)
	ownershipIndex := ownership.NewIndex(layout)
	launchStore := launch.NewStore(cfg.GetString(launchPathKey))
	settingsStore := settings.NewStore(settingsPath)
	runner := process.NewRunner(process.Config{Command: cfg.GetString(steamCommandKey)}, logger)

	var personas ports.PersonaDirectory
	if key := cfg.GetString(webKeyKey); key != "" {
		personas = &steamweb.Client{
			BaseURL: cfg.GetString(webBaseURLKey),
			Key:     key,
		}
	}

	return &app{
		switches:       application.NewSwitchService(registryStore, autologinStore, launchStore, runner, ports.SystemClock{}, logger),
		resume:         application.NewResumeService(registryStore, launchStore, runner, cfg.GetDuration(launchDelayKey), logger),
		queries:        application.NewQueries(registryStore, autologinStore, ownershipIndex),
		settings:       settingsStore,
		keys:           keyStore,
		personas:       personas,
		webBaseURL:     cfg.GetString(webBaseURLKey),
		renderAccounts: accountsrender.Render,
		logger:         logger,
		now:            time.Now,
	}, nil
}

func loadConfig(homeDir string) (*viper.Viper, error) {
	cfg := viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, ".config", configDirName))
	cfg.SetDefault(dataDirKey, filepath.Join(homeDir, ".config", configDirName))
	cfg.SetDefault(launchPathKey, launch.DefaultPath())
	cfg.SetDefault(launchDelayKey, application.DefaultStartDelay)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	err := cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return cfg, nil
}

func setupLogger(levelName, format string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch levelName {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Command output goes to stdout; log events stay on stderr.
	if format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
