package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when a slot has never been written or was removed.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore abstracts a persistent set of named string slots.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes the slot. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	Close() error
}
