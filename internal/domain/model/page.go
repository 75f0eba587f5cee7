package model

// Page はリモートのコレクションの1ページ分を表す汎用エンベロープです
// Number は 0 始まりのページ番号で、リクエストしたページと一致します
type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Size             int   `json:"size"`
	Number           int   `json:"number"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	NumberOfElements int   `json:"numberOfElements"`
}

// Empty は Content が空かどうかを返します
func (p *Page[T]) Empty() bool {
	return p == nil || len(p.Content) == 0
}
