package usecase

import (
	"errors"

	"jo3qma.com/bookswap_client/internal/domain/model"
)

var (
	// ErrNotAuthenticated はログインが必要な操作を未ログインで呼び出したことを表します
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotPermitted は権限のない操作（削除ボタンが表示されない操作）を表します
	ErrNotPermitted = errors.New("operation not permitted for this session")
	// ErrCancelled はユーザーが確認を拒否したことを表します
	ErrCancelled = errors.New("cancelled by user")
	// ErrSuperseded は後から開始したリクエストに結果が置き換えられたことを表します
	ErrSuperseded = errors.New("superseded by a newer request")
)

// ValidationError はネットワーク呼び出しの前に検出した入力エラーです
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// ErrorMessage は画面に表示するメッセージを返します
func ErrorMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Message
	}
	return model.MessageOf(err)
}

// Confirmer は破壊的な操作の前にユーザーへ確認を求めます
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc は関数を Confirmer として扱うためのアダプタです
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// SessionReader は現在のセッションを参照します
type SessionReader interface {
	Current() *model.Session
}
