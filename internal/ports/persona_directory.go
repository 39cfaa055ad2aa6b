package ports

import (
	"context"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
)

type PersonaDirectory interface {
	PersonaNames(ctx context.Context, ids []domain.SteamID) (map[domain.SteamID]string, error)
}
