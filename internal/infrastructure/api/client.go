package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"jo3qma.com/bookswap_client/internal/domain/model"
)

// maxErrorBody はエラーレスポンスとして読み込む本文の上限です
const maxErrorBody = 64 << 10

// TokenSource は現在のセッショントークンを返します。未認証の場合は空文字です
type TokenSource interface {
	Token() string
}

// TokenFunc は関数を TokenSource として扱うためのアダプタです
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client はリモートAPIへの唯一の出口（API Gateway Client）です
// 腐敗防止層として、HTTPの詳細（ヘッダー、ステータス、エラー本文の形）を
// ドメインモデルと model.RemoteError に変換する責務を持ちます
// 自動リトライは一切行いません
type Client struct {
	httpClient     *http.Client
	baseURL        string
	tokens         TokenSource
	onUnauthorized func()
	logger         *zap.Logger
}

// Option は Client の任意設定です
type Option func(*Client)

// WithUnauthorizedHandler はトークン付きリクエストが 401 を返したときに呼ばれる関数を設定します
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithLogger はロガーを設定します
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient は新しいClientインスタンスを作成します
// baseURL は "/api" などのプレフィックスを含めたURLです
func NewClient(httpClient *http.Client, baseURL string, tokens TokenSource, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:     tokens,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doJSON はJSON本文付きのリクエストを送信し、レスポンスを out にデコードします
// body, out はそれぞれ nil を許容します
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, query, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// send はリクエストにトークンを付与して送信し、結果を正規化します
func (c *Client) send(req *http.Request, out any) error {
	token := ""
	if c.tokens != nil {
		token = strings.TrimSpace(c.tokens.Token())
	}
	if token != "" {
		if !strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = "Bearer " + token
		}
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return &model.RemoteError{Message: transportMessage(err), Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", zap.Error(closeErr))
		}
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if errors.Is(err, io.EOF) {
				return &model.RemoteError{StatusCode: resp.StatusCode, Message: "empty response body"}
			}
			return &model.RemoteError{StatusCode: resp.StatusCode, Message: "failed to decode response: " + err.Error(), Err: err}
		}
		return nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := messageFromBody(resp.Header.Get("Content-Type"), b)
	if msg == "" {
		msg = genericMessage(resp.StatusCode)
	}

	c.logger.Debug("request rejected",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized && token != "" && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	return &model.RemoteError{StatusCode: resp.StatusCode, Message: msg}
}

// genericMessage はサーバーがメッセージを返さなかったときの汎用メッセージです
func genericMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("Request failed with status code %d (%s)", status, text)
	}
	return fmt.Sprintf("Request failed with status code %d", status)
}

// transportMessage はネットワークエラーのメッセージを返します
// url.Error の冗長な "Get \"http://...\":" 部分は取り除きます
func transportMessage(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	return err.Error()
}
