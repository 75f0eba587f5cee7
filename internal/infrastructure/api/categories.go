package api

import (
	"context"
	"fmt"
	"net/http"

	"jo3qma.com/bookswap_client/internal/domain/model"
	"jo3qma.com/bookswap_client/internal/domain/repository"
)

var _ repository.CategoryRepository = (*Client)(nil)

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := c.doJSON(ctx, http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	var out model.Category
	if err := c.doJSON(ctx, http.MethodGet, categoryPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error) {
	var out model.Category
	if err := c.doJSON(ctx, http.MethodPost, "/categories", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in model.CategoryInput) (*model.Category, error) {
	var out model.Category
	if err := c.doJSON(ctx, http.MethodPut, categoryPath(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, categoryPath(id), nil, nil, nil)
}

func categoryPath(id int64) string {
	return fmt.Sprintf("/categories/%d", id)
}
