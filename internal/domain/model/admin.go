package model

// AdminStats は管理画面のサマリーです
type AdminStats struct {
	TotalUsers      int64   `json:"totalUsers"`
	TotalItems      int64   `json:"totalItems"`
	TotalCategories int64   `json:"totalCategories"`
	TotalItemsValue float64 `json:"totalItemsValue"`
	ActiveUsers     int64   `json:"activeUsers"`
	AdminUsers      int64   `json:"adminUsers"`
}

// UserAnalytics はユーザーごとの出品状況です
type UserAnalytics struct {
	ID              int64     `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	CreatedAt       Timestamp `json:"createdAt"`
	ItemCount       int64     `json:"itemCount"`
	TotalItemsValue float64   `json:"totalItemsValue"`
}
