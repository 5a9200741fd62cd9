package authflow

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"betpanel-client/internal/api"
	"betpanel-client/internal/models"
	"betpanel-client/internal/session"
)

// SignupStep is the registration wizard position.
type SignupStep string

const (
	SignupPhone      SignupStep = "phone"
	SignupOTP        SignupStep = "otp"
	SignupName       SignupStep = "name"
	SignupPassword   SignupStep = "password"
	SignupRegistered SignupStep = "registered"
)

var (
	// ErrPhoneExists means an account already holds this phone; the user
	// should log in instead. No OTP is sent.
	ErrPhoneExists  = errors.New("phone already registered, log in instead")
	ErrNameRequired = errors.New("name is required")
)

// Signup drives phone-verified registration. The signup token issued by OTP
// verification lives only in this struct; it is never cached across restarts
// and the final registration fails server-side without a valid one.
type Signup struct {
	client   *api.Client
	sessions *session.Store

	step        SignupStep
	phone       string
	signupToken string
	name        string
	referral    string
}

// NewSignup starts a fresh flow. referral, typically lifted from the entry
// URL, pre-fills the code but stays editable via SetReferral.
func NewSignup(client *api.Client, sessions *session.Store, referral string) *Signup {
	return &Signup{
		client:   client,
		sessions: sessions,
		step:     SignupPhone,
		referral: referral,
	}
}

func (s *Signup) Step() SignupStep { return s.step }

func (s *Signup) Referral() string { return s.referral }

func (s *Signup) SetReferral(code string) { s.referral = code }

// SubmitPhone gates on non-existence: an already-registered phone blocks the
// step without sending an OTP.
func (s *Signup) SubmitPhone(ctx context.Context, phone string) error {
	if s.step != SignupPhone {
		return ErrInvalidStep
	}
	exists, err := s.client.SignupCheckPhone(ctx, phone)
	if err != nil {
		return err
	}
	if exists {
		return ErrPhoneExists
	}
	if err := s.client.SignupSendOTP(ctx, phone); err != nil {
		return err
	}
	s.phone = phone
	s.step = SignupOTP
	return nil
}

// SubmitOTP verifies the 6-digit code and captures the short-lived signup
// token together with the verified phone. A rejection keeps the flow here.
func (s *Signup) SubmitOTP(ctx context.Context, otp string) error {
	if s.step != SignupOTP {
		return ErrInvalidStep
	}
	token, err := s.client.SignupVerifyOTP(ctx, s.phone, otp)
	if err != nil {
		return err
	}
	s.signupToken = token
	s.step = SignupName
	log.Debug().Msg("signup phone verified")
	return nil
}

// SubmitName is local-only; no network call.
func (s *Signup) SubmitName(name string) error {
	if s.step != SignupName {
		return ErrInvalidStep
	}
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	s.name = strings.TrimSpace(name)
	s.step = SignupPassword
	return nil
}

// SubmitPassword runs the local length gate, then registers. Success
// establishes the session exactly like login; failure stays on this step.
func (s *Signup) SubmitPassword(ctx context.Context, password string) (*models.UserProfile, error) {
	if s.step != SignupPassword {
		return nil, ErrInvalidStep
	}
	if len(password) < 6 {
		return nil, ErrPasswordTooShort
	}
	user, err := s.sessions.Register(ctx, models.SignupPayload{
		SignupToken:  s.signupToken,
		Phone:        s.phone,
		Name:         s.name,
		Password:     password,
		ReferralCode: s.referral,
	})
	if err != nil {
		return nil, err
	}
	s.step = SignupRegistered
	return user, nil
}
