package ports

import (
	"context"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
)

type LaunchIntentStore interface {
	Put(ctx context.Context, intent domain.PendingLaunch) error
	// Get reports false when no intent is recorded.
	Get(ctx context.Context) (domain.PendingLaunch, bool, error)
	Clear(ctx context.Context) error
}
