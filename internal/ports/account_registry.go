package ports

import (
	"context"
	"time"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
)

type AccountRegistry interface {
	List(ctx context.Context) ([]domain.Account, error)
	Current(ctx context.Context) (domain.Account, error)
	MarkMostRecent(ctx context.Context, id domain.SteamID, now time.Time) error
}
