// Package process controls the Steam client process: the hard restart that
// makes the client re-read its login configuration, and game launches
// through the steam:// URL scheme.
package process

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
	"github.com/nikitaclicks/decky-multi-user/internal/ports"
)

const (
	defaultCommand       = "steam"
	defaultSettleDelay   = 2 * time.Second
	defaultLaunchTimeout = 10 * time.Second

	helperProcess = "steamwebhelper"
)

type Config struct {
	// Command starts the client; also the process name the restart kills.
	Command string
	// SettleDelay is how long to wait between killing the client and
	// starting it again.
	SettleDelay time.Duration
	// LaunchTimeout bounds the rungameid subprocess.
	LaunchTimeout time.Duration
}

type Runner struct {
	config Config
	logger zerolog.Logger
}

var _ ports.HostProcess = (*Runner)(nil)

func NewRunner(config Config, logger zerolog.Logger) *Runner {
	if config.Command == "" {
		config.Command = defaultCommand
	}
	if config.SettleDelay <= 0 {
		config.SettleDelay = defaultSettleDelay
	}
	if config.LaunchTimeout <= 0 {
		config.LaunchTimeout = defaultLaunchTimeout
	}
	return &Runner{config: config, logger: logger}
}

// Restart kills the client and its web helper, waits for the processes to
// die, and starts the client again in its own session so it survives this
// process exiting. The kills ignore exit status; a client that is not
// running is not an error.
func (r *Runner) Restart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := filepath.Base(r.config.Command)
	r.logger.Info().Str("process", name).Msg("Restarting Steam client")

	_ = exec.CommandContext(ctx, "killall", "-9", name).Run()
	_ = exec.CommandContext(ctx, "killall", "-9", helperProcess).Run()

	select {
	case <-time.After(r.config.SettleDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	cmd := exec.Command(r.config.Command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start steam client: %w", err)
	}
	_ = cmd.Process.Release()

	r.logger.Info().Str("process", name).Msg("Steam client restart initiated")
	return nil
}

// Launch asks the running client to start app via its URL scheme and waits
// for the handoff subprocess to finish.
func (r *Runner) Launch(ctx context.Context, app domain.AppID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.LaunchTimeout)
	defer cancel()

	url := fmt.Sprintf("steam://rungameid/%s", app)
	r.logger.Info().Str("url", url).Msg("Triggering game launch")

	if err := exec.CommandContext(ctx, r.config.Command, url).Run(); err != nil {
		return fmt.Errorf("launch app %s: %w", app, err)
	}

	return nil
}
