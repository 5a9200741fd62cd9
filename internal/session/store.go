package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"betpanel-client/internal/api"
	"betpanel-client/internal/models"
)

var (
	// ErrInvalidCredentials wraps the backend's rejection of a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMalformedResponse means the server answered 2xx but omitted the
	// token or the user. Presence of both is part of the success condition.
	ErrMalformedResponse = errors.New("malformed auth response: missing token or user")
)

// Store owns the process-wide session: the auth token and the cached profile.
// Nothing else writes them; the HTTP client reads the token through the
// token source installed here, and the store is the single subscriber to the
// client's unauthorized hook.
type Store struct {
	client  *api.Client
	persist Persistence

	mu      sync.Mutex
	token   string
	user    *models.UserProfile
	loading bool
}

func NewStore(client *api.Client, persist Persistence) *Store {
	s := &Store{
		client:  client,
		persist: persist,
		loading: true,
	}
	client.SetTokenSource(s.Token)
	client.OnUnauthorized(s.teardown)
	return s
}

// Token returns the current auth token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the cached profile, or nil when logged out.
func (s *Store) User() *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Loading is true from construction until the initial hydrate settles. It
// keeps callers from treating a not-yet-validated session as logged out.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Hydrate restores the persisted session. With no stored token the store
// settles to logged-out immediately; with one, the profile is refreshed
// before loading clears.
func (s *Store) Hydrate(ctx context.Context) error {
	snap, err := s.persist.Load()
	if err != nil {
		log.Warn().Err(err).Msg("session load failed, starting logged out")
	}
	if snap == nil {
		s.mu.Lock()
		s.token = ""
		s.user = nil
		s.loading = false
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.token = snap.Token
	s.user = snap.User
	s.loading = true
	s.mu.Unlock()

	return s.RefreshUser(ctx)
}

// Login exchanges credentials for a session. A 2xx response missing the token
// or user fails with ErrMalformedResponse.
func (s *Store) Login(ctx context.Context, username, password string) (*models.UserProfile, error) {
	res, err := s.client.Login(ctx, username, password)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if res.Token == "" || res.User == nil {
		return nil, ErrMalformedResponse
	}
	s.establish(res.Token, res.User)
	log.Info().Str("username", res.User.Username).Str("role", string(res.User.Role)).Msg("logged in")
	return res.User, nil
}

// Register finalizes signup and establishes the session exactly like Login.
// A response missing token or user returns ErrMalformedResponse rather than
// silently leaving the store logged out.
func (s *Store) Register(ctx context.Context, payload models.SignupPayload) (*models.UserProfile, error) {
	res, err := s.client.Register(ctx, payload)
	if err != nil {
		return nil, err
	}
	if res.Token == "" || res.User == nil {
		return nil, ErrMalformedResponse
	}
	s.establish(res.Token, res.User)
	log.Info().Str("username", res.User.Username).Msg("registered")
	return res.User, nil
}

// RefreshUser re-fetches the profile for the stored token. Any failure,
// including 401, clears both token and profile. A refresh that completes
// after the session was torn down is discarded.
func (s *Store) RefreshUser(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		s.mu.Lock()
		s.user = nil
		s.loading = false
		s.mu.Unlock()
		return nil
	}

	user, err := s.client.Profile(ctx)

	s.mu.Lock()
	if s.token != token {
		// Torn down (or replaced) while the fetch was in flight.
		s.loading = false
		s.mu.Unlock()
		return nil
	}
	if err != nil || user == nil {
		s.token = ""
		s.user = nil
		s.loading = false
		s.mu.Unlock()
		if clearErr := s.persist.Clear(); clearErr != nil {
			log.Warn().Err(clearErr).Msg("session clear failed")
		}
		if err == nil {
			err = ErrMalformedResponse
		}
		log.Info().Err(err).Msg("session refresh failed, logged out")
		return err
	}
	s.user = user
	s.loading = false
	s.mu.Unlock()

	if saveErr := s.persist.Save(Snapshot{Token: token, User: user}); saveErr != nil {
		log.Warn().Err(saveErr).Msg("session save failed")
	}
	return nil
}

// Logout clears the persisted and in-memory session synchronously.
func (s *Store) Logout() {
	s.teardown()
	log.Info().Msg("logged out")
}

func (s *Store) establish(token string, user *models.UserProfile) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.loading = false
	s.mu.Unlock()

	if err := s.persist.Save(Snapshot{Token: token, User: user}); err != nil {
		log.Warn().Err(err).Msg("session save failed")
	}
}

// teardown is the forced-logout path, also invoked by the HTTP client on any
// 401. Safe to call repeatedly; clearing an already-cleared session is a
// no-op in effect.
func (s *Store) teardown() {
	s.mu.Lock()
	wasActive := s.token != ""
	s.token = ""
	s.user = nil
	s.loading = false
	s.mu.Unlock()

	if err := s.persist.Clear(); err != nil {
		log.Warn().Err(err).Msg("session clear failed")
	}
	if wasActive {
		log.Info().Msg("session torn down")
	}
}
