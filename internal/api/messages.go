package api

import (
	"context"
	"fmt"
	"net/http"

	"betpanel-client/internal/models"
)

// Contacts returns the role-scoped contact list: the accounts the current
// user may message. Unread counts are whatever the server reports.
func (c *Client) Contacts(ctx context.Context) ([]models.Contact, error) {
	var out struct {
		Data []models.Contact `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, "/messages/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Messages returns the full history with one partner, ordered by the server.
func (c *Client) Messages(ctx context.Context, partnerID int64) ([]models.Message, error) {
	var out struct {
		Data []models.Message `json:"data"`
	}
	path := fmt.Sprintf("/messages?partner=%d", partnerID)
	if err := c.request(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// SendMessage posts a message and returns the server-confirmed copy,
// including the id used for de-duplication against later fetches.
func (c *Client) SendMessage(ctx context.Context, receiverID int64, body, attachment string) (*models.Message, error) {
	payload := map[string]interface{}{
		"receiver": receiverID,
		"body":     body,
	}
	if attachment != "" {
		payload["attachment"] = attachment
	}
	var out struct {
		Data *models.Message `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, "/messages", payload, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
