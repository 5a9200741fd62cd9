package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"betpanel-client/internal/models"
)

func (c *Client) PaymentModes(ctx context.Context) ([]models.PaymentMode, error) {
	var out struct {
		Data []models.PaymentMode `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, "/payment-modes", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) CreatePaymentMode(ctx context.Context, mode models.PaymentMode) (*models.PaymentMode, error) {
	var out struct {
		Data *models.PaymentMode `json:"data"`
	}
	if err := c.request(ctx, http.MethodPost, "/payment-modes", mode, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) UpdatePaymentMode(ctx context.Context, mode models.PaymentMode) error {
	path := fmt.Sprintf("/payment-modes/%d", mode.ID)
	return c.request(ctx, http.MethodPut, path, mode, nil)
}

func (c *Client) DeletePaymentMode(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/payment-modes/%d", id)
	return c.request(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) Transactions(ctx context.Context) ([]models.Transaction, error) {
	var out struct {
		Data []models.Transaction `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, "/wallet/transactions", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Deposit files a plain deposit request. Balances move only when the upline
// approves it server-side.
func (c *Client) Deposit(ctx context.Context, amount float64, paymentModeID int64, remark string) error {
	body := map[string]interface{}{
		"amount":          amount,
		"payment_mode_id": paymentModeID,
		"remark":          remark,
	}
	return c.request(ctx, http.MethodPost, "/wallet/deposit", body, nil)
}

// DepositWithScreenshot is the multipart variant carrying payment proof.
func (c *Client) DepositWithScreenshot(ctx context.Context, amount float64, paymentModeID int64, remark string, screenshot File) error {
	fields := map[string]string{
		"amount":          strconv.FormatFloat(amount, 'f', -1, 64),
		"payment_mode_id": strconv.FormatInt(paymentModeID, 10),
		"remark":          remark,
	}
	files := map[string]File{"screenshot": screenshot}
	return c.requestMultipart(ctx, http.MethodPost, "/wallet/deposit", fields, files, nil)
}

func (c *Client) Withdraw(ctx context.Context, amount float64, paymentModeID int64) error {
	body := map[string]interface{}{
		"amount":          amount,
		"payment_mode_id": paymentModeID,
	}
	return c.request(ctx, http.MethodPost, "/wallet/withdraw", body, nil)
}
