package ports

import "context"

type SettingsStore interface {
	// Get returns fallback when the key, the file, or a readable file is
	// missing. Settings degrade to defaults rather than fail.
	Get(ctx context.Context, key string, fallback any) any
	Set(ctx context.Context, key string, value any) error
}
