package repository

import (
	"context"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

// CategoryRepository はカテゴリの取得・管理方法を抽象化します。
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, in model.CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}
