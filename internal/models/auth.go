package models

// IdentityMatch is the ephemeral identity record returned by the
// forgot-password search endpoint. It lives only for the page session.
type IdentityMatch struct {
	ID        int64  `json:"id"`
	HasPhone  bool   `json:"has_phone"`
	HasEmail  bool   `json:"has_email"`
	PhoneMask string `json:"phone_mask,omitempty"`
	EmailMask string `json:"email_mask,omitempty"`
	WhatsApp  string `json:"whatsapp_number,omitempty"`
}

// SignupPayload is the final registration request. Token must come from a
// prior OTP verification for the same phone; the client never synthesizes or
// caches one across restarts.
type SignupPayload struct {
	SignupToken  string `json:"signup_token"`
	Phone        string `json:"phone"`
	Name         string `json:"name"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code,omitempty"`
}
