package repository

import (
	"context"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

// ItemRepository は出品物の取得・更新方法を抽象化します。
// 実装がリモートAPIなのか、テスト用のフェイクなのかはユースケース層は知りません。
// これにより、腐敗防止層（Anti-Corruption Layer）のパターンを実現します。
type ItemRepository interface {
	// ListItems はフィルタなしで出品物の一覧を取得します
	ListItems(ctx context.Context, q model.Query) (*model.Page[model.Item], error)
	// SearchItems はフィルタ付きで出品物を検索します
	SearchItems(ctx context.Context, q model.Query) (*model.Page[model.Item], error)
	// GetItem は指定されたIDの出品物を取得します
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	// CreateItem は出品物を作成します（要認証）
	CreateItem(ctx context.Context, in model.ItemInput) (*model.Item, error)
	// UpdateItem は出品者本人として出品物を更新します
	UpdateItem(ctx context.Context, id int64, in model.ItemUpdate) (*model.Item, error)
	// DeleteItem は出品者本人として出品物を削除します
	DeleteItem(ctx context.Context, id int64) error
	// MyItems はログイン中ユーザーの出品物を取得します
	MyItems(ctx context.Context, page, size int) (*model.Page[model.Item], error)
	// Conditions はAPIが受け付ける状態の一覧を取得します
	Conditions(ctx context.Context) ([]string, error)
}

// ImageUploader は画像ファイルをアップロードし、公開URLを返します
type ImageUploader interface {
	UploadImage(ctx context.Context, file model.LocalFile) (string, error)
}
