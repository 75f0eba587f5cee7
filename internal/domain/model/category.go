package model

// Category は出品物のカテゴリです
// 画面のライフタイム中はクライアントから見て不変として扱います
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// CategoryInput はカテゴリの作成・更新リクエストです
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
