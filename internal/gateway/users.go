package gateway

import (
	"context"
	"net/http"
	"net/url"

	"campus-rms-console/internal/model"
)

func (c *Client) ListUsers(ctx context.Context) ([]model.Identity, error) {
	return list[model.Identity](ctx, c, "users.list", "/users/")
}

// ListUsersByStatus lists identities with the given status.
func (c *Client) ListUsersByStatus(ctx context.Context, status model.IdentityStatus) ([]model.Identity, error) {
	q := url.Values{"status": {string(status)}}
	return list[model.Identity](ctx, c, "users.by_status", "/users/by_status/?"+q.Encode())
}

func (c *Client) GetUser(ctx context.Context, id int64) (*model.Identity, error) {
	var out model.Identity
	if err := c.do(ctx, "users.get", http.MethodGet, idPath("users", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, in model.IdentityInput) (*model.Identity, error) {
	var out model.Identity
	if err := c.do(ctx, "users.create", http.MethodPost, "/users/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser fully replaces identity id.
func (c *Client) UpdateUser(ctx context.Context, id int64, in model.IdentityInput) (*model.Identity, error) {
	var out model.Identity
	if err := c.do(ctx, "users.update", http.MethodPut, idPath("users", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, "users.delete", http.MethodDelete, idPath("users", id), nil, nil)
}
