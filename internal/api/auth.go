package api

import (
	"context"
	"net/http"

	"betpanel-client/internal/models"
)

// LoginResult is the token+profile pair issued by login and register. Either
// field may be absent when the server response is malformed; callers must
// check presence, a 2xx alone is not success.
type LoginResult struct {
	Token string              `json:"token"`
	User  *models.UserProfile `json:"user"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	var out LoginResult
	if err := c.request(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, payload models.SignupPayload) (*LoginResult, error) {
	var out LoginResult
	if err := c.request(ctx, http.MethodPost, "/auth/register", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*models.UserProfile, error) {
	var out struct {
		Data *models.UserProfile `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, "/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
