package api

import (
	"context"
	"net/http"
	"net/url"

	"betpanel-client/internal/models"
)

func (c *Client) Games(ctx context.Context, categoryID, providerID string) ([]models.Game, error) {
	query := url.Values{}
	if categoryID != "" {
		query.Set("category", categoryID)
	}
	if providerID != "" {
		query.Set("provider", providerID)
	}
	path := "/games"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var out struct {
		Data []models.Game `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GameCategories(ctx context.Context) ([]models.GameCategory, error) {
	var out struct {
		Data []models.GameCategory `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, "/games/categories", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GameProviders(ctx context.Context) ([]models.GameProvider, error) {
	var out struct {
		Data []models.GameProvider `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, "/games/providers", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// LaunchGame asks the backend for a playable URL. The result is either a
// redirect location or an embeddable URL; the provider decides which.
func (c *Client) LaunchGame(ctx context.Context, gameID string) (*models.GameLaunch, error) {
	body := map[string]string{"game_id": gameID}
	var out struct {
		Data *models.GameLaunch `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, "/games/launch", body, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
