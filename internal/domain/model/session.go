package model

import "time"

// Role はユーザーの権限です
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Session は現在ログインしているユーザーの認証情報です
// CreatedAt は永続化されず、ログイン・登録・復元のたびに現在時刻で打ち直されます
type Session struct {
	UserID    int64
	FullName  string
	Email     string
	Role      Role
	Token     string
	CreatedAt time.Time
}

// IsAdmin は管理者セッションかどうかを返します
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// UserProjection は永続化するユーザー情報の最小射影です
type UserProjection struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// Credentials はトークンとユーザー射影の組です
// 半端なログイン状態を避けるため、常にひとまとまりで読み書きします
type Credentials struct {
	Token string         `json:"token"`
	User  UserProjection `json:"user"`
}

// AuthResponse は /auth/login, /auth/register のレスポンスです
type AuthResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// Credentials は永続化用の組に変換します
func (r *AuthResponse) Credentials() Credentials {
	return Credentials{
		Token: r.Token,
		User: UserProjection{
			ID:       r.UserID,
			Email:    r.Email,
			FullName: r.FullName,
			Role:     r.Role,
		},
	}
}

// LoginRequest はログインリクエストです
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest は新規登録リクエストです
type RegisterRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// UserProfile は /auth/me のレスポンスです
type UserProfile struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt Timestamp `json:"createdAt"`
}
