package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
)

var _ repository.CredentialStore = (*RedisStore)(nil)

// ErrIncompleteCredentials はトークンとユーザー情報の片方しか保存されていない状態です
var ErrIncompleteCredentials = errors.New("incomplete stored credentials")

// RedisStore は認証情報を "<prefix>token" と "<prefix>user" の2キーに保存します
// 2キーは常に MULTI/EXEC でまとめて書き込み・削除します
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore は接続を確認してからRedisStoreを返します
func NewRedisStore(ctx context.Context, client *redis.Client, prefix string) (*RedisStore, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) tokenKey() string { return s.prefix + "token" }
func (s *RedisStore) userKey() string  { return s.prefix + "user" }

func (s *RedisStore) Load(ctx context.Context) (*model.Credentials, error) {
	vals, err := s.client.MGet(ctx, s.tokenKey(), s.userKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	token, tokenOK := vals[0].(string)
	user, userOK := vals[1].(string)
	switch {
	case !tokenOK && !userOK:
		return nil, repository.ErrNoCredentials
	case !tokenOK || !userOK:
		return nil, ErrIncompleteCredentials
	}

	creds := model.Credentials{Token: token}
	if err := json.Unmarshal([]byte(user), &creds.User); err != nil {
		return nil, fmt.Errorf("failed to decode stored user: %w", err)
	}
	return &creds, nil
}

func (s *RedisStore) Save(ctx context.Context, creds model.Credentials) error {
	user, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(), creds.Token, 0)
		pipe.Set(ctx, s.userKey(), string(user), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.tokenKey(), s.userKey()).Err(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
