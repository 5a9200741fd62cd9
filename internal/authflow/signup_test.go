package authflow

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betpanel-client/internal/api"
	"betpanel-client/internal/models"
	"betpanel-client/internal/session"
	"betpanel-client/internal/stubserver"
)

func newSignupFixture(t *testing.T) (*Signup, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(stubserver.New().Handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL+"/api/v1", 2*time.Second)
	sessions := session.NewStore(client, session.NewMemoryPersistence())
	return NewSignup(client, sessions, "REF42"), sessions
}

func TestSignupHappyPath(t *testing.T) {
	flow, sessions := newSignupFixture(t)
	ctx := context.Background()

	assert.Equal(t, SignupPhone, flow.Step())
	assert.Equal(t, "REF42", flow.Referral())

	require.NoError(t, flow.SubmitPhone(ctx, "9811111111"))
	assert.Equal(t, SignupOTP, flow.Step())

	require.NoError(t, flow.SubmitOTP(ctx, stubserver.FixedOTP))
	assert.Equal(t, SignupName, flow.Step())

	require.NoError(t, flow.SubmitName("  New Player  "))
	assert.Equal(t, SignupPassword, flow.Step())

	user, err := flow.SubmitPassword(ctx, "secret123")
	require.NoError(t, err)
	assert.Equal(t, SignupRegistered, flow.Step())
	assert.Equal(t, "New Player", user.DisplayName)
	assert.Equal(t, models.RolePlayer, user.Role)

	// Registration established the session exactly like a login.
	assert.NotEmpty(t, sessions.Token())
	require.NotNil(t, sessions.User())
	assert.Equal(t, user.ID, sessions.User().ID)
}

func TestSignupExistingPhoneBlocked(t *testing.T) {
	flow, _ := newSignupFixture(t)

	// 9800000004 is registered; no OTP goes out and the step does not advance.
	err := flow.SubmitPhone(context.Background(), "9800000004")
	assert.ErrorIs(t, err, ErrPhoneExists)
	assert.Equal(t, SignupPhone, flow.Step())

	// A different phone is still accepted afterwards.
	require.NoError(t, flow.SubmitPhone(context.Background(), "9822222222"))
	assert.Equal(t, SignupOTP, flow.Step())
}

func TestSignupWrongOTPStaysOnStep(t *testing.T) {
	flow, _ := newSignupFixture(t)
	ctx := context.Background()
	require.NoError(t, flow.SubmitPhone(ctx, "9811111111"))

	require.Error(t, flow.SubmitOTP(ctx, "000000"))
	assert.Equal(t, SignupOTP, flow.Step())

	require.NoError(t, flow.SubmitOTP(ctx, stubserver.FixedOTP))
	assert.Equal(t, SignupName, flow.Step())
}

func TestSignupNameValidationIsLocal(t *testing.T) {
	flow, _ := newSignupFixture(t)
	ctx := context.Background()
	require.NoError(t, flow.SubmitPhone(ctx, "9811111111"))
	require.NoError(t, flow.SubmitOTP(ctx, stubserver.FixedOTP))

	assert.ErrorIs(t, flow.SubmitName("   "), ErrNameRequired)
	assert.Equal(t, SignupName, flow.Step())
}

func TestSignupPasswordTooShortIsLocal(t *testing.T) {
	flow, sessions := newSignupFixture(t)
	ctx := context.Background()
	require.NoError(t, flow.SubmitPhone(ctx, "9811111111"))
	require.NoError(t, flow.SubmitOTP(ctx, stubserver.FixedOTP))
	require.NoError(t, flow.SubmitName("New Player"))

	_, err := flow.SubmitPassword(ctx, "12345")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Equal(t, SignupPassword, flow.Step())
	assert.Empty(t, sessions.Token())
}

func TestSignupStepGating(t *testing.T) {
	flow, _ := newSignupFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, flow.SubmitOTP(ctx, stubserver.FixedOTP), ErrInvalidStep)
	require.ErrorIs(t, flow.SubmitName("x"), ErrInvalidStep)
	_, err := flow.SubmitPassword(ctx, "secret123")
	require.ErrorIs(t, err, ErrInvalidStep)

	require.NoError(t, flow.SubmitPhone(ctx, "9811111111"))
	require.ErrorIs(t, flow.SubmitPhone(ctx, "9811111111"), ErrInvalidStep)
}

func TestSignupReferralEditable(t *testing.T) {
	flow, _ := newSignupFixture(t)
	flow.SetReferral("OTHER")
	assert.Equal(t, "OTHER", flow.Referral())
}
