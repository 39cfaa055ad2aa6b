package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
	"github.com/nikitaclicks/decky-multi-user/internal/ports"
)

// SwitchService carries out account switches in a fixed order: validate the
// target, durably record any launch intent, rewrite the login config, and
// only then signal the client restart. A crash at any point leaves files
// either untouched or fully written, and the restart is always last so a
// half-recorded switch can never take effect.
type SwitchService struct {
	registry  ports.AccountRegistry
	autologin ports.AutoLoginStore
	launches  ports.LaunchIntentStore
	host      ports.HostProcess
	clock     ports.Clock
	logger    zerolog.Logger
}

func NewSwitchService(
	registry ports.AccountRegistry,
	autologin ports.AutoLoginStore,
	launches ports.LaunchIntentStore,
	host ports.HostProcess,
	clock ports.Clock,
	logger zerolog.Logger,
) *SwitchService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &SwitchService{
		registry:  registry,
		autologin: autologin,
		launches:  launches,
		host:      host,
		clock:     clock,
		logger:    logger,
	}
}

// Switch moves the host to the target account. On success the intent is on
// disk, the config names the target, and the client restart has been
// requested; the post-restart world is never observed here. On failure the
// returned *SwitchError names the stage that failed.
func (s *SwitchService) Switch(ctx context.Context, cmd SwitchCommand) (SwitchAck, error) {
	accounts, err := s.registry.List(ctx)
	if err != nil {
		return SwitchAck{}, &SwitchError{Op: OpValidate, Err: fmt.Errorf("list accounts: %w", err)}
	}

	var target domain.Account
	found := false
	for _, account := range accounts {
		if account.SteamID == cmd.TargetID {
			target = account
			found = true
			break
		}
	}
	if !found {
		return SwitchAck{}, &SwitchError{Op: OpValidate, Err: fmt.Errorf("%s: %w", cmd.TargetID, domain.ErrUnknownAccount)}
	}

	accountName := cmd.AccountName
	if accountName == "" {
		accountName = target.AccountName
	}

	s.logger.Info().
		Str("steamid", string(target.SteamID)).
		Str("account", accountName).
		Msg("Switching account")

	ack := SwitchAck{Target: target}

	// The launch intent goes to disk before any config changes: after the
	// kill that follows, the record is all that remains of this call.
	if cmd.LaunchApp != "" {
		intent := domain.PendingLaunch{
			AppID:         cmd.LaunchApp,
			TargetSteamID: target.SteamID,
			CreatedAt:     s.clock.Now(),
		}
		if err := s.launches.Put(ctx, intent); err != nil {
			return SwitchAck{}, &SwitchError{Op: OpRecordIntent, Err: err}
		}
		ack.LaunchQueued = true
	}

	if err := s.registry.MarkMostRecent(ctx, target.SteamID, s.clock.Now()); err != nil {
		return SwitchAck{}, &SwitchError{Op: OpMarkRecent, Err: err}
	}

	if err := s.autologin.SetTarget(ctx, accountName); err != nil {
		return SwitchAck{}, &SwitchError{Op: OpAutoLogin, Err: err}
	}

	if cmd.NoRestart {
		return ack, nil
	}

	if err := s.host.Restart(ctx); err != nil {
		// The config is committed; a manual restart still honors it.
		return SwitchAck{}, &SwitchError{Op: OpRestart, Err: err}
	}
	ack.RestartIssued = true

	return ack, nil
}
