package storage

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	TypeMemory = "memory"
	TypeFile   = "file"
	TypeSQLite = "sqlite"
	TypeRedis  = "redis"
	TypeS3     = "s3"
)

func NewKeyValueStore(ctx context.Context, storageType, connectionString string) (store KeyValueStore, err error) {
	switch storageType {
	case TypeMemory, "":
		store = NewMemoryStore()
	case TypeFile:
		store, err = NewFileStore(connectionString)
	case TypeSQLite:
		store, err = NewSQLiteStore(connectionString)
	case TypeRedis:
		store, err = NewRedisStore(ctx, connectionString)
	case TypeS3:
		store, err = NewS3Store(ctx, connectionString)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", storageType, err)
	}

	slog.Info("key-value storage initialized", "type", storageType)
	return store, nil
}
