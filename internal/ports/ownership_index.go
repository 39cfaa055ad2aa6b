package ports

import (
	"context"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
)

type OwnershipIndex interface {
	// Owner reports false when no manifest names an owner; that is a normal
	// outcome, not an error.
	Owner(ctx context.Context, app domain.AppID) (domain.OwnershipRecord, bool, error)
	LocalPlayers(ctx context.Context, app domain.AppID) ([]domain.SteamID, error)
}
