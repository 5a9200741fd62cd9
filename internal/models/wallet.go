package models

import "time"

// PaymentMode is a payout/deposit destination owned by the user (bank
// account, e-wallet, UPI handle).
type PaymentMode struct {
	ID      int64  `json:"id"`
	Kind    string `json:"kind"`
	Label   string `json:"label"`
	Account string `json:"account"`
	Holder  string `json:"holder_name"`
	Enabled bool   `json:"is_enabled"`
}

// Transaction is a wallet movement as reported by the backend. Amounts and
// statuses are server-authoritative.
type Transaction struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	Remark    string    `json:"remark,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// KYCStatus mirrors the backend's view of the account's verification state.
type KYCStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
