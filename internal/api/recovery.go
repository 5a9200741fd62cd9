package api

import (
	"context"
	"net/http"

	"betpanel-client/internal/models"
)

// OTP delivery channels for the forgot-password flow. Distinct from the
// realtime message channel.
const (
	ChannelPhone = "phone"
	ChannelEmail = "email"
)

// RecoverySearch looks up an account by phone, username or email and returns
// the ephemeral identity record the rest of the flow operates on.
func (c *Client) RecoverySearch(ctx context.Context, identifier string) (*models.IdentityMatch, error) {
	body := map[string]string{"identifier": identifier}
	var out struct {
		Data *models.IdentityMatch `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, "/auth/forgot-password/search", body, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) RecoverySendOTP(ctx context.Context, identityID int64, channel string) error {
	body := map[string]interface{}{"identity_id": identityID, "channel": channel}
	return c.request(ctx, http.MethodPost, "/auth/forgot-password/send-otp", body, nil)
}

// RecoveryReset verifies the OTP and sets the new password in one call. It
// does not establish a session; the user logs in afterwards.
func (c *Client) RecoveryReset(ctx context.Context, identityID int64, otp, newPassword string) error {
	body := map[string]interface{}{
		"identity_id":  identityID,
		"otp":          otp,
		"new_password": newPassword,
	}
	return c.request(ctx, http.MethodPost, "/auth/forgot-password/verify-reset", body, nil)
}
