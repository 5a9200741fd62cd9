package api

import (
	"context"
	"net/http"
)

// SignupCheckPhone reports whether an account already exists for the phone.
func (c *Client) SignupCheckPhone(ctx context.Context, phone string) (bool, error) {
	body := map[string]string{"phone": phone}
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := c.request(ctx, http.MethodPost, "/auth/signup/check-phone", body, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (c *Client) SignupSendOTP(ctx context.Context, phone string) error {
	body := map[string]string{"phone": phone}
	return c.request(ctx, http.MethodPost, "/auth/signup/send-otp", body, nil)
}

// SignupVerifyOTP exchanges the 6-digit code for a short-lived signup token.
// The token is only valid together with the phone it was issued for.
func (c *Client) SignupVerifyOTP(ctx context.Context, phone, otp string) (string, error) {
	body := map[string]string{"phone": phone, "otp": otp}
	var out struct {
		SignupToken string `json:"signup_token"`
	}
	if err := c.request(ctx, http.MethodPost, "/auth/signup/verify-otp", body, &out); err != nil {
		return "", err
	}
	return out.SignupToken, nil
}
