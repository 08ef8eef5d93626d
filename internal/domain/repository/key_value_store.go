package repository

import "context"

// KeyValueStore is a durable local slot store with string values
type KeyValueStore interface {
	// Get returns the value under key and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any prior value
	Set(ctx context.Context, key, value string) error
}
