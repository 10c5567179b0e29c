package gateway

import (
	"context"
	"errors"
	"net/http"

	"campus-rms-console/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string          `json:"message"`
	User    *model.Identity `json:"user"`
}

type logoutRequest struct {
	UserID int64 `json:"user_id"`
}

// Login checks credentials with the backend and returns the identity record.
func (c *Client) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	var out loginResponse
	if err := c.do(ctx, "auth.login", http.MethodPost, "/login/", loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, errors.New("auth.login: response carries no user")
	}
	return out.User, nil
}

// Logout tells the backend the identity left; the backend marks it INACTIVE.
func (c *Client) Logout(ctx context.Context, identityID int64) error {
	return c.do(ctx, "auth.logout", http.MethodPost, "/logout/", logoutRequest{UserID: identityID}, nil)
}
