package gateway

import (
	"context"
	"net/http"

	"campus-rms-console/internal/model"
)

func (c *Client) ListResources(ctx context.Context) ([]model.Resource, error) {
	return list[model.Resource](ctx, c, "resources.list", "/resources/")
}

// ListAvailableResources lists resources whose status is AVAILABLE.
func (c *Client) ListAvailableResources(ctx context.Context) ([]model.Resource, error) {
	return list[model.Resource](ctx, c, "resources.available", "/resources/available/")
}

func (c *Client) GetResource(ctx context.Context, id int64) (*model.Resource, error) {
	var out model.Resource
	if err := c.do(ctx, "resources.get", http.MethodGet, idPath("resources", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateResource(ctx context.Context, in model.ResourceInput) (*model.Resource, error) {
	var out model.Resource
	if err := c.do(ctx, "resources.create", http.MethodPost, "/resources/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateResource(ctx context.Context, id int64, in model.ResourceInput) (*model.Resource, error) {
	var out model.Resource
	if err := c.do(ctx, "resources.update", http.MethodPut, idPath("resources", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteResource(ctx context.Context, id int64) error {
	return c.do(ctx, "resources.delete", http.MethodDelete, idPath("resources", id), nil, nil)
}
