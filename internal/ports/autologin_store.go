package ports

import "context"

type AutoLoginStore interface {
	Target(ctx context.Context) (string, error)
	SetTarget(ctx context.Context, accountName string) error
}
