package repository

import (
	"context"
	"errors"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

// ErrNoCredentials は永続化された認証情報が存在しないことを表します
var ErrNoCredentials = errors.New("no stored credentials")

// CredentialStore は認証情報（トークンとユーザー射影の組）の永続化を抽象化します。
// ブラウザの localStorage に相当します。
// 実装はトークンとユーザー射影を必ずひとまとまりで読み書きしなければなりません。
type CredentialStore interface {
	// Load は保存された認証情報を返します。存在しない場合は ErrNoCredentials を返します
	Load(ctx context.Context) (*model.Credentials, error)
	// Save は認証情報をアトミックに保存します
	Save(ctx context.Context, creds model.Credentials) error
	// Clear は認証情報を削除します。存在しない場合もエラーにはなりません
	Clear(ctx context.Context) error
}
