package ports

import "context"

// KeyStore holds small named credentials, like the Steam Web API key, in
// whichever backend the host offers.
type KeyStore interface {
	Put(ctx context.Context, name string, value string) error
	Get(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, name string) error
}
