package repository

import (
	"context"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

// AdminRepository は管理者向けAPIを抽象化します。
type AdminRepository interface {
	Stats(ctx context.Context) (*model.AdminStats, error)
	Users(ctx context.Context, page, size int) (*model.Page[model.UserAnalytics], error)
	AllUsers(ctx context.Context) ([]model.UserAnalytics, error)
	// AdminDeleteItem は管理者権限で出品物を削除します
	// パスは DeleteItem と同じですが、サーバー側で管理者として認可されます
	AdminDeleteItem(ctx context.Context, id int64) error
}
