package repository

import (
	"context"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

// AuthRepository は認証APIを抽象化します。
type AuthRepository interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	// Me は現在のトークンに対応するユーザー情報を取得します
	Me(ctx context.Context) (*model.UserProfile, error)
}
