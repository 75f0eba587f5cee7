package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
)

var (
	_ repository.ItemRepository = (*Client)(nil)
	_ repository.ImageUploader  = (*Client)(nil)
)

// ListItems は GET /items を呼び出します
func (c *Client) ListItems(ctx context.Context, q model.Query) (*model.Page[model.Item], error) {
	var out model.Page[model.Item]
	if err := c.doJSON(ctx, http.MethodGet, "/items", pagingValues(q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchItems は GET /items/search を呼び出します
// 空の条件はクエリに含めません
func (c *Client) SearchItems(ctx context.Context, q model.Query) (*model.Page[model.Item], error) {
	var out model.Page[model.Item]
	if err := c.doJSON(ctx, http.MethodGet, "/items/search", searchValues(q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetItem は GET /items/{id} を呼び出します
func (c *Client) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	var out model.Item
	if err := c.doJSON(ctx, http.MethodGet, itemPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateItem は POST /items を呼び出します（要認証）
func (c *Client) CreateItem(ctx context.Context, in model.ItemInput) (*model.Item, error) {
	var out model.Item
	if err := c.doJSON(ctx, http.MethodPost, "/items", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateItem は PUT /items/{id} を呼び出します
func (c *Client) UpdateItem(ctx context.Context, id int64, in model.ItemUpdate) (*model.Item, error) {
	var out model.Item
	if err := c.doJSON(ctx, http.MethodPut, itemPath(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteItem は出品者として DELETE /items/{id} を呼び出します
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, itemPath(id), nil, nil, nil)
}

// MyItems は GET /items/my-items を呼び出します
func (c *Client) MyItems(ctx context.Context, page, size int) (*model.Page[model.Item], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var out model.Page[model.Item]
	if err := c.doJSON(ctx, http.MethodGet, "/items/my-items", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Conditions は GET /items/conditions を呼び出します
func (c *Client) Conditions(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.doJSON(ctx, http.MethodGet, "/items/conditions", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func itemPath(id int64) string {
	return fmt.Sprintf("/items/%d", id)
}

// pagingValues はページングとソートのパラメータを組み立てます
func pagingValues(q model.Query) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortDir != "" {
		v.Set("sortDir", string(q.SortDir))
	}
	return v
}

// searchValues は検索条件を含むパラメータを組み立てます
func searchValues(q model.Query) url.Values {
	v := pagingValues(q)
	if s := strings.TrimSpace(q.Category); s != "" {
		v.Set("category", s)
	}
	if q.Condition != "" {
		v.Set("condition", string(q.Condition))
	}
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if s := strings.TrimSpace(q.SearchTerm); s != "" {
		v.Set("searchTerm", s)
	}
	return v
}
