// Package keyring stores the credentials this tool needs outside the Steam
// files, currently just the optional Steam Web API key. The preferred
// backend is the standard unix password manager; hosts without pass fall
// back to permission-restricted files under the data directory.
package keyring

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikitaclicks/decky-multi-user/internal/ports"
)

// Chain tries a primary backend and falls back to a second one when the
// primary fails for any reason other than context cancellation.
type Chain struct {
	primary  ports.KeyStore
	fallback ports.KeyStore
}

var _ ports.KeyStore = (*Chain)(nil)

var (
	errNilPrimaryStore  = errors.New("primary key store is nil")
	errNilFallbackStore = errors.New("fallback key store is nil")
)

func NewChain(primary ports.KeyStore, fallback ports.KeyStore) (*Chain, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Chain{primary: primary, fallback: fallback}, nil
}

// NewPassFirstWithFileFallback is the wiring every caller wants: pass when
// available, files under fileRoot otherwise.
func NewPassFirstWithFileFallback(fileRoot string) (*Chain, error) {
	return NewChain(NewPassStore(), NewFileStore(fileRoot))
}

func (c *Chain) Put(ctx context.Context, name string, value string) error {
	err := c.primary.Put(ctx, name, value)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := c.fallback.Put(ctx, name, value)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (c *Chain) Get(ctx context.Context, name string) (string, error) {
	value, err := c.primary.Get(ctx, name)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackValue, fallbackErr := c.fallback.Get(ctx, name)
	if fallbackErr == nil {
		return fallbackValue, nil
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

func (c *Chain) Delete(ctx context.Context, name string) error {
	err := c.primary.Delete(ctx, name)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := c.fallback.Delete(ctx, name)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
