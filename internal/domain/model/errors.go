package model

import (
	"errors"
	"fmt"
	"net/http"
)

// RemoteError はリモートAPI呼び出しの失敗を正規化したものです
// StatusCode が 0 の場合はHTTPレスポンスを受け取る前の失敗（ネットワークエラーなど）です
type RemoteError struct {
	StatusCode int
	Message    string
	Err        error // 元になったトランスポートエラー（あれば）
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// StatusOf はエラーに含まれるHTTPステータスを返します。該当しない場合は 0 です
func StatusOf(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// MessageOf はユーザーに見せるメッセージを返します
// サーバーが返したメッセージがあればそれを優先し、なければエラー文字列を使います
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return err.Error()
}

// IsAuthError は 401/403 かどうかを返します
func IsAuthError(err error) bool {
	switch StatusOf(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}
