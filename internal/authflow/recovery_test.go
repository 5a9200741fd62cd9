package authflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betpanel-client/internal/api"
	"betpanel-client/internal/models"
)

// recoveryServer serves the forgot-password endpoints for a configurable
// identity and counts hits per path.
type recoveryServer struct {
	srv      *httptest.Server
	identity models.IdentityMatch

	mu         sync.Mutex
	hits       map[string]int
	lastOTP    string
	lastChan   string
	resetFails bool
}

func newRecoveryServer(t *testing.T, identity models.IdentityMatch) *recoveryServer {
	t.Helper()
	rs := &recoveryServer{identity: identity, hits: make(map[string]int)}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/forgot-password/search", func(w http.ResponseWriter, r *http.Request) {
		rs.count(r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": rs.identity})
	})
	mux.HandleFunc("/auth/forgot-password/send-otp", func(w http.ResponseWriter, r *http.Request) {
		rs.count(r.URL.Path)
		var req struct {
			Channel string `json:"channel"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		rs.mu.Lock()
		rs.lastChan = req.Channel
		rs.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/auth/forgot-password/verify-reset", func(w http.ResponseWriter, r *http.Request) {
		rs.count(r.URL.Path)
		var req struct {
			OTP string `json:"otp"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		rs.mu.Lock()
		rs.lastOTP = req.OTP
		fail := rs.resetFails
		rs.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail":"invalid or expired OTP"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	rs.srv = httptest.NewServer(mux)
	t.Cleanup(rs.srv.Close)
	return rs
}

func (rs *recoveryServer) count(path string) {
	rs.mu.Lock()
	rs.hits[path]++
	rs.mu.Unlock()
}

func (rs *recoveryServer) hitCount(path string) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.hits[path]
}

func (rs *recoveryServer) client() *api.Client {
	return api.NewClient(rs.srv.URL, time.Second)
}

func TestSearchSingleChannelSkipsChoice(t *testing.T) {
	for name, identity := range map[string]models.IdentityMatch{
		"phone only": {ID: 1, HasPhone: true, PhoneMask: "******001"},
		"email only": {ID: 1, HasEmail: true, EmailMask: "******com"},
	} {
		t.Run(name, func(t *testing.T) {
			rs := newRecoveryServer(t, identity)
			r := NewRecovery(rs.client())

			require.NoError(t, r.Search(context.Background(), "player1"))
			assert.Equal(t, RecoveryOTP, r.Step())
			assert.Equal(t, 1, rs.hitCount("/auth/forgot-password/send-otp"))

			want := api.ChannelPhone
			if identity.HasEmail {
				want = api.ChannelEmail
			}
			assert.Equal(t, want, r.Channel())
		})
	}
}

func TestSearchBothChannelsGoesToChoice(t *testing.T) {
	rs := newRecoveryServer(t, models.IdentityMatch{ID: 1, HasPhone: true, HasEmail: true})
	r := NewRecovery(rs.client())

	require.NoError(t, r.Search(context.Background(), "player1"))
	assert.Equal(t, RecoveryChannel, r.Step())
	assert.Zero(t, rs.hitCount("/auth/forgot-password/send-otp"), "no OTP until a channel is chosen")

	require.NoError(t, r.ChooseChannel(context.Background(), api.ChannelEmail))
	assert.Equal(t, RecoveryOTP, r.Step())
	assert.Equal(t, api.ChannelEmail, r.Channel())
	assert.Equal(t, 1, rs.hitCount("/auth/forgot-password/send-otp"))
}

func TestSearchWhatsAppOnly(t *testing.T) {
	rs := newRecoveryServer(t, models.IdentityMatch{ID: 1, WhatsApp: "+9779800000001"})
	r := NewRecovery(rs.client())

	require.NoError(t, r.Search(context.Background(), "power1"))
	assert.Equal(t, RecoveryChannel, r.Step())
	assert.True(t, r.WhatsAppOnly())

	link, ok := r.WhatsAppLink()
	require.True(t, ok)
	assert.Equal(t, "https://wa.me/9779800000001", link)

	// Neither phone nor email is selectable on this screen.
	assert.ErrorIs(t, r.ChooseChannel(context.Background(), api.ChannelPhone), ErrInvalidStep)
	assert.ErrorIs(t, r.ChooseChannel(context.Background(), api.ChannelEmail), ErrInvalidStep)
}

func TestSearchNoChannelAtAll(t *testing.T) {
	rs := newRecoveryServer(t, models.IdentityMatch{ID: 1})
	r := NewRecovery(rs.client())

	assert.ErrorIs(t, r.Search(context.Background(), "ghost"), ErrContactSupport)
	// No transition: the flow stays on search and may try another identifier.
	assert.Equal(t, RecoverySearch, r.Step())
	assert.Nil(t, r.Identity())
}

func TestChooseChannelRequiresAvailability(t *testing.T) {
	rs := newRecoveryServer(t, models.IdentityMatch{ID: 1, HasPhone: true, HasEmail: true})
	r := NewRecovery(rs.client())
	require.NoError(t, r.Search(context.Background(), "player1"))

	err := r.ChooseChannel(context.Background(), "carrier-pigeon")
	require.Error(t, err)
	assert.Equal(t, RecoveryChannel, r.Step())
}

func TestSubmitResetLocalValidationSkipsNetwork(t *testing.T) {
	rs := newRecoveryServer(t, models.IdentityMatch{ID: 1, HasPhone: true})
	r := NewRecovery(rs.client())
	require.NoError(t, r.Search(context.Background(), "player1"))

	assert.ErrorIs(t, r.SubmitReset(context.Background(), "123456", "short", "short"), ErrPasswordTooShort)
	assert.ErrorIs(t, r.SubmitReset(context.Background(), "123456", "longenough", "different"), ErrPasswordMismatch)
	assert.Zero(t, rs.hitCount("/auth/forgot-password/verify-reset"), "local failures never reach the network")
	assert.Equal(t, RecoveryOTP, r.Step())
}

func TestSubmitResetServerRejectionStaysOnOTP(t *testing.T) {
	rs := newRecoveryServer(t, models.IdentityMatch{ID: 1, HasPhone: true})
	rs.resetFails = true
	r := NewRecovery(rs.client())
	require.NoError(t, r.Search(context.Background(), "player1"))

	require.Error(t, r.SubmitReset(context.Background(), "000000", "newpass123", "newpass123"))
	assert.Equal(t, RecoveryOTP, r.Step())

	// A corrected attempt succeeds without restarting the flow.
	rs.mu.Lock()
	rs.resetFails = false
	rs.mu.Unlock()
	require.NoError(t, r.SubmitReset(context.Background(), "123456", "newpass123", "newpass123"))
	assert.Equal(t, RecoveryDone, r.Step())
}

func TestRecoveryStepGating(t *testing.T) {
	rs := newRecoveryServer(t, models.IdentityMatch{ID: 1, HasPhone: true})
	r := NewRecovery(rs.client())

	assert.ErrorIs(t, r.ChooseChannel(context.Background(), api.ChannelPhone), ErrInvalidStep)
	assert.ErrorIs(t, r.SubmitReset(context.Background(), "123456", "newpass123", "newpass123"), ErrInvalidStep)

	require.NoError(t, r.Search(context.Background(), "player1"))
	assert.ErrorIs(t, r.Search(context.Background(), "player1"), ErrInvalidStep)
}
