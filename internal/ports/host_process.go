package ports

import (
	"context"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
)

type HostProcess interface {
	Restart(ctx context.Context) error
	Launch(ctx context.Context, app domain.AppID) error
}
