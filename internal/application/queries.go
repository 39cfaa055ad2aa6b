package application

import (
	"context"
	"fmt"

	"github.com/nikitaclicks/decky-multi-user/internal/domain"
	"github.com/nikitaclicks/decky-multi-user/internal/ports"
)

// AppOwnership is the full ownership picture for one app: what the install
// manifest says, and which accounts have played it locally.
type AppOwnership struct {
	AppID        domain.AppID
	Record       domain.OwnershipRecord
	Known        bool
	LocalPlayers []domain.SteamID
}

// Queries answers the read-only questions. Every answer is recomputed from
// the files on each call; the host rewrites them behind our back, so
// nothing here is worth caching.
type Queries struct {
	registry  ports.AccountRegistry
	autologin ports.AutoLoginStore
	ownership ports.OwnershipIndex
}

func NewQueries(registry ports.AccountRegistry, autologin ports.AutoLoginStore, ownership ports.OwnershipIndex) *Queries {
	return &Queries{registry: registry, autologin: autologin, ownership: ownership}
}

func (q *Queries) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := q.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (q *Queries) CurrentAccount(ctx context.Context) (domain.Account, error) {
	account, err := q.registry.Current(ctx)
	if err != nil {
		return domain.Account{}, fmt.Errorf("resolve current account: %w", err)
	}
	return account, nil
}

func (q *Queries) AutoLoginTarget(ctx context.Context) (string, error) {
	target, err := q.autologin.Target(ctx)
	if err != nil {
		return "", fmt.Errorf("read auto-login target: %w", err)
	}
	return target, nil
}

func (q *Queries) AppOwnership(ctx context.Context, app domain.AppID) (AppOwnership, error) {
	record, known, err := q.ownership.Owner(ctx, app)
	if err != nil {
		return AppOwnership{}, fmt.Errorf("resolve app owner: %w", err)
	}

	players, err := q.ownership.LocalPlayers(ctx, app)
	if err != nil {
		return AppOwnership{}, fmt.Errorf("scan local players: %w", err)
	}

	return AppOwnership{
		AppID:        app,
		Record:       record,
		Known:        known,
		LocalPlayers: players,
	}, nil
}
