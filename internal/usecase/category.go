package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
)

// CategoryUsecase はカテゴリ関連のビジネスロジックを担当します
// 作成・更新・削除は管理者のみがサーバー側で許可されます
type CategoryUsecase struct {
	repo   repository.CategoryRepository
	logger *zap.Logger
}

// NewCategoryUsecase は新しいCategoryUsecaseインスタンスを作成します
func NewCategoryUsecase(repo repository.CategoryRepository, logger *zap.Logger) *CategoryUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryUsecase{
		repo:   repo,
		logger: logger,
	}
}

// List はカテゴリ一覧を取得します
func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	return u.repo.ListCategories(ctx)
}

// Get は指定されたIDのカテゴリを取得します
func (u *CategoryUsecase) Get(ctx context.Context, id int64) (*model.Category, error) {
	if id <= 0 {
		return nil, invalid("Please select a valid category")
	}
	return u.repo.GetCategory(ctx, id)
}

// Create はカテゴリを作成します。名前は必須です
func (u *CategoryUsecase) Create(ctx context.Context, in model.CategoryInput) (*model.Category, error) {
	in, err := normalizeCategory(in)
	if err != nil {
		return nil, err
	}
	c, err := u.repo.CreateCategory(ctx, in)
	if err != nil {
		u.logger.Warn("failed to create category", zap.Int("status", model.StatusOf(err)), zap.Error(err))
		return nil, err
	}
	return c, nil
}

// Update はカテゴリを更新します
func (u *CategoryUsecase) Update(ctx context.Context, id int64, in model.CategoryInput) (*model.Category, error) {
	if id <= 0 {
		return nil, invalid("Please select a valid category")
	}
	in, err := normalizeCategory(in)
	if err != nil {
		return nil, err
	}
	c, err := u.repo.UpdateCategory(ctx, id, in)
	if err != nil {
		u.logger.Warn("failed to update category", zap.Int64("category_id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

// Delete はカテゴリを削除します
func (u *CategoryUsecase) Delete(ctx context.Context, id int64, confirm Confirmer) error {
	if id <= 0 {
		return invalid("Please select a valid category")
	}
	if confirm == nil || !confirm.Confirm("Delete this category? This action cannot be undone.") {
		return ErrCancelled
	}
	if err := u.repo.DeleteCategory(ctx, id); err != nil {
		u.logger.Warn("failed to delete category", zap.Int64("category_id", id), zap.Error(err))
		return err
	}
	return nil
}

func normalizeCategory(in model.CategoryInput) (model.CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return in, invalid("Category name is required")
	}
	return in, nil
}
