package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
	"github.com/nikitaclicks/decky-multi-user/internal/ports"
)

// DefaultStartDelay is how long resume waits after startup before handing
// the launch to the client, giving it time to finish signing in.
const DefaultStartDelay = 3 * time.Second

type ResumeAction string

const (
	// ResumeNone: no intent was pending.
	ResumeNone ResumeAction = "none"
	// ResumeLaunched: the pending app was started under the intended account.
	ResumeLaunched ResumeAction = "launched"
	// ResumeDiscarded: an intent was pending but the host is not signed in
	// as its target, so it was dropped unlaunched.
	ResumeDiscarded ResumeAction = "discarded"
)

type ResumeOutcome struct {
	Action ResumeAction
	Intent domain.PendingLaunch
}

// ResumeService completes a switch after the host restart: it consumes the
// pending-launch record and starts the app, but only when the host really
// came up as the intended account. Launching under the wrong identity is
// worse than not launching at all.
type ResumeService struct {
	registry ports.AccountRegistry
	launches ports.LaunchIntentStore
	host     ports.HostProcess
	delay    time.Duration
	logger   zerolog.Logger
}

func NewResumeService(
	registry ports.AccountRegistry,
	launches ports.LaunchIntentStore,
	host ports.HostProcess,
	delay time.Duration,
	logger zerolog.Logger,
) *ResumeService {
	if delay < 0 {
		delay = 0
	}

	return &ResumeService{
		registry: registry,
		launches: launches,
		host:     host,
		delay:    delay,
		logger:   logger,
	}
}

// OnStartup checks for a pending launch and resolves it. The record is
// consumed exactly once: launched, discarded as stale, or dropped as
// unreadable, it is gone when OnStartup returns. A second call is a no-op.
func (s *ResumeService) OnStartup(ctx context.Context) (ResumeOutcome, error) {
	intent, found, err := s.launches.Get(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ResumeOutcome{}, err
		}
		// An unreadable record cannot be trusted; drop it and move on.
		s.logger.Warn().Err(err).Msg("Discarding unreadable pending launch record")
		if clearErr := s.launches.Clear(ctx); clearErr != nil {
			return ResumeOutcome{}, fmt.Errorf("clear pending launch: %w", clearErr)
		}
		return ResumeOutcome{Action: ResumeNone}, nil
	}
	if !found {
		return ResumeOutcome{Action: ResumeNone}, nil
	}

	current, err := s.registry.Current(ctx)
	if err != nil && !errors.Is(err, domain.ErrNoLoginAccounts) {
		return ResumeOutcome{}, fmt.Errorf("resolve current account: %w", err)
	}

	if err != nil || current.SteamID != intent.TargetSteamID {
		s.logger.Warn().
			Str("target", string(intent.TargetSteamID)).
			Str("current", string(current.SteamID)).
			Str("appid", string(intent.AppID)).
			Msg("Discarding stale pending launch")
		if clearErr := s.launches.Clear(ctx); clearErr != nil {
			return ResumeOutcome{}, fmt.Errorf("clear pending launch: %w", clearErr)
		}
		return ResumeOutcome{Action: ResumeDiscarded, Intent: intent}, nil
	}

	// Give the client a moment to finish signing in. An interrupt here
	// leaves the record in place for the next startup.
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ResumeOutcome{}, ctx.Err()
		}
	}

	s.logger.Info().
		Str("appid", string(intent.AppID)).
		Str("steamid", string(intent.TargetSteamID)).
		Msg("Resuming pending launch")

	if err := s.host.Launch(ctx, intent.AppID); err != nil {
		if clearErr := s.launches.Clear(ctx); clearErr != nil {
			err = errors.Join(err, clearErr)
		}
		return ResumeOutcome{}, fmt.Errorf("launch pending app: %w", err)
	}

	if err := s.launches.Clear(ctx); err != nil {
		return ResumeOutcome{}, fmt.Errorf("clear pending launch: %w", err)
	}

	return ResumeOutcome{Action: ResumeLaunched, Intent: intent}, nil
}
