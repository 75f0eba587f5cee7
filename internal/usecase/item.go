package usecase

import (
	"context"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
)

// ItemUsecase は出品物の単体取得と自分の出品一覧を担当します
type ItemUsecase struct {
	repo     repository.ItemRepository
	sessions SessionReader
}

// NewItemUsecase は新しいItemUsecaseインスタンスを作成します
func NewItemUsecase(repo repository.ItemRepository, sessions SessionReader) *ItemUsecase {
	return &ItemUsecase{
		repo:     repo,
		sessions: sessions,
	}
}

// GetItem は指定されたIDの出品物を取得します
func (u *ItemUsecase) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	if id <= 0 {
		return nil, invalid("Invalid item id")
	}
	return u.repo.GetItem(ctx, id)
}

// MyItems はログイン中ユーザーの出品物を取得します
func (u *ItemUsecase) MyItems(ctx context.Context, page, size int) (*model.Page[model.Item], error) {
	if u.sessions.Current() == nil {
		return nil, ErrNotAuthenticated
	}
	if page < 0 {
		page = 0
	}
	return u.repo.MyItems(ctx, page, size)
}

// Conditions はAPIが受け付ける状態の一覧を返します
// 未知の値は無視し、取得に失敗した場合は既知の一覧を返します
func (u *ItemUsecase) Conditions(ctx context.Context) []model.Condition {
	raw, err := u.repo.Conditions(ctx)
	if err != nil || len(raw) == 0 {
		return append([]model.Condition(nil), model.Conditions...)
	}
	out := make([]model.Condition, 0, len(raw))
	for _, s := range raw {
		if c, ok := model.ParseCondition(s); ok {
			out = append(out, c)
		}
	}
	return out
}
