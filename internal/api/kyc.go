package api

import (
	"context"
	"net/http"

	"betpanel-client/internal/models"
)

func (c *Client) KYCStatus(ctx context.Context) (*models.KYCStatus, error) {
	var out struct {
		Data *models.KYCStatus `json:"data"`
	}
	if err := c.request(ctx, http.MethodGet, "/kyc/status", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// SubmitKYC uploads identity documents. Approval is entirely server-side; the
// client only resubmits on rejection.
func (c *Client) SubmitKYC(ctx context.Context, documentType, documentNumber string, front, back File) error {
	fields := map[string]string{
		"document_type":   documentType,
		"document_number": documentNumber,
	}
	files := map[string]File{
		"document_front": front,
		"document_back":  back,
	}
	return c.requestMultipart(ctx, http.MethodPost, "/kyc/submit", fields, files, nil)
}
