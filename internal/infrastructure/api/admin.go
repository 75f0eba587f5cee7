package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
)

var _ repository.AdminRepository = (*Client)(nil)

// Stats は GET /admin/stats を呼び出します
func (c *Client) Stats(ctx context.Context) (*model.AdminStats, error) {
	var out model.AdminStats
	if err := c.doJSON(ctx, http.MethodGet, "/admin/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users は GET /admin/users を呼び出します
func (c *Client) Users(ctx context.Context, page, size int) (*model.Page[model.UserAnalytics], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var out model.Page[model.UserAnalytics]
	if err := c.doJSON(ctx, http.MethodGet, "/admin/users", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllUsers は GET /admin/users/all を呼び出します
func (c *Client) AllUsers(ctx context.Context) ([]model.UserAnalytics, error) {
	var out []model.UserAnalytics
	if err := c.doJSON(ctx, http.MethodGet, "/admin/users/all", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminDeleteItem は管理者として DELETE /items/{id} を呼び出します
// パスは出品者による削除と同じで、認可はサーバー側で行われます
func (c *Client) AdminDeleteItem(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, itemPath(id), nil, nil, nil)
}
