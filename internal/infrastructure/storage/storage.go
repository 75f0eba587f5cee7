package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"jo3qma.com/bookswap_client/internal/config"
	"jo3qma.com/bookswap_client/internal/domain/repository"
)

// Store は閉じる必要のある CredentialStore です
type Store interface {
	repository.CredentialStore
	io.Closer
}

// Open は設定されたドライバの CredentialStore を返します
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverFile:
		return NewFileStore(cfg.Path), nil
	case config.DriverSQLite:
		return OpenSQLiteStore(ctx, cfg.Path)
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		s, err := NewRedisStore(ctx, client, cfg.KeyPrefix)
		if err != nil {
			client.Close()
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
}
