package repository

import "jo3qma.com/bookswap_client/internal/domain/model"

// PreviewStore はローカル画像のプレビューハンドルを管理します。
// Create したハンドルは、置き換え・クリア・破棄のすべての経路で Release しなければなりません。
type PreviewStore interface {
	Create(file model.LocalFile) (*model.Preview, error)
	Release(p *model.Preview)
}
