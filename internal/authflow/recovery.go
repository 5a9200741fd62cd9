package authflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"betpanel-client/internal/api"
	"betpanel-client/internal/models"
)

// RecoveryStep is the forgot-password wizard position.
type RecoveryStep string

const (
	RecoverySearch  RecoveryStep = "search"
	RecoveryChannel RecoveryStep = "channel"
	RecoveryOTP     RecoveryStep = "otp"
	RecoveryDone    RecoveryStep = "done"
)

var (
	// ErrContactSupport means the account has no reachable contact channel at
	// all; the flow cannot continue in-app.
	ErrContactSupport = errors.New("no contact channel on file, contact support")
	// ErrPasswordTooShort is the local gate shared by reset and signup; it
	// never reaches the network.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	// ErrInvalidStep rejects an operation issued out of order.
	ErrInvalidStep = errors.New("operation not valid for current step")
)

// Recovery drives the forgot-password flow: search the identity, pick a
// delivery channel when there is a choice, then verify the OTP together with
// the new password. A successful reset does not establish a session; the
// caller redirects to login. No step auto-retries.
type Recovery struct {
	client *api.Client

	step     RecoveryStep
	identity *models.IdentityMatch
	channel  string
}

func NewRecovery(client *api.Client) *Recovery {
	return &Recovery{client: client, step: RecoverySearch}
}

func (r *Recovery) Step() RecoveryStep { return r.step }

// Identity returns the masked identity record after a successful search.
func (r *Recovery) Identity() *models.IdentityMatch { return r.identity }

// Channel returns the OTP delivery channel once one is fixed.
func (r *Recovery) Channel() string { return r.channel }

// WhatsAppOnly reports whether the only remaining exit is the external
// WhatsApp deep link.
func (r *Recovery) WhatsAppOnly() bool {
	return r.identity != nil && !r.identity.HasPhone && !r.identity.HasEmail && r.identity.WhatsApp != ""
}

// WhatsAppLink builds the external deep link for the WhatsApp-assisted exit.
// Following it ends the flow outside the app; no further state is tracked.
func (r *Recovery) WhatsAppLink() (string, bool) {
	if !r.WhatsAppOnly() {
		return "", false
	}
	number := strings.TrimLeft(r.identity.WhatsApp, "+")
	return "https://wa.me/" + number, true
}

// Search looks up the account by phone, username or email and routes on the
// available channels: exactly one channel sends its OTP immediately and skips
// the choice screen; two channels go to the choice screen; none with a
// WhatsApp contact goes to the WhatsApp-only screen; none at all fails with
// ErrContactSupport and no transition.
func (r *Recovery) Search(ctx context.Context, identifier string) error {
	if r.step != RecoverySearch {
		return ErrInvalidStep
	}
	identity, err := r.client.RecoverySearch(ctx, identifier)
	if err != nil {
		return err
	}
	if identity == nil {
		return fmt.Errorf("identity search returned no record")
	}

	switch {
	case !identity.HasPhone && !identity.HasEmail:
		if identity.WhatsApp == "" {
			return ErrContactSupport
		}
		r.identity = identity
		r.step = RecoveryChannel
	case identity.HasPhone != identity.HasEmail:
		channel := api.ChannelPhone
		if identity.HasEmail {
			channel = api.ChannelEmail
		}
		if err := r.client.RecoverySendOTP(ctx, identity.ID, channel); err != nil {
			return err
		}
		r.identity = identity
		r.channel = channel
		r.step = RecoveryOTP
		log.Debug().Str("channel", channel).Msg("recovery OTP sent, channel screen skipped")
	default:
		r.identity = identity
		r.step = RecoveryChannel
	}
	return nil
}

// ChooseChannel sends the OTP on the picked channel and advances to the OTP
// step. Only phone and email are selectable; the WhatsApp exit goes through
// WhatsAppLink instead.
func (r *Recovery) ChooseChannel(ctx context.Context, channel string) error {
	if r.step != RecoveryChannel {
		return ErrInvalidStep
	}
	switch channel {
	case api.ChannelPhone:
		if !r.identity.HasPhone {
			return ErrInvalidStep
		}
	case api.ChannelEmail:
		if !r.identity.HasEmail {
			return ErrInvalidStep
		}
	default:
		return fmt.Errorf("unknown channel: %s", channel)
	}
	if err := r.client.RecoverySendOTP(ctx, r.identity.ID, channel); err != nil {
		return err
	}
	r.channel = channel
	r.step = RecoveryOTP
	return nil
}

// SubmitReset validates locally, then verifies the OTP and sets the new
// password in one call. Local failures never issue a network call. A server
// rejection (wrong or expired OTP) keeps the flow on the OTP step; attempt
// limiting is the server's job.
func (r *Recovery) SubmitReset(ctx context.Context, otp, newPassword, confirm string) error {
	if r.step != RecoveryOTP {
		return ErrInvalidStep
	}
	if len(newPassword) < 6 {
		return ErrPasswordTooShort
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if err := r.client.RecoveryReset(ctx, r.identity.ID, otp, newPassword); err != nil {
		return err
	}
	r.step = RecoveryDone
	return nil
}
