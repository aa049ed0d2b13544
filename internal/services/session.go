package services

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-scoreboard/internal/models"
	"github.com/stitts-dev/golf-scoreboard/internal/providers"
	"github.com/stitts-dev/golf-scoreboard/pkg/logger"
)

// SessionState is where the session sits in its lifecycle
type SessionState int

const (
	// SessionUnknown is the startup state while a persisted token is being validated
	SessionUnknown SessionState = iota
	SessionAuthenticated
	SessionAnonymous
)

func (s SessionState) String() string {
	switch s {
	case SessionUnknown:
		return "unknown"
	case SessionAuthenticated:
		return "authenticated"
	case SessionAnonymous:
		return "anonymous"
	default:
		return "invalid"
	}
}

// AuthAPI is the part of the tournament API the session needs
type AuthAPI interface {
	Me(ctx context.Context, token string) (*models.Team, error)
	Login(ctx context.Context, teamName, password string) (*models.LoginResponse, error)
}

// SessionStore is the single source of truth for which team is logged in.
// team is only ever set together with a token the API has accepted during
// this process lifetime.
type SessionStore struct {
	api    AuthAPI
	tokens TokenStore
	logger *logrus.Logger
	now    func() time.Time

	// persistMu orders writes to the token store with epoch changes. It is
	// always taken before mu.
	persistMu sync.Mutex

	mu      sync.RWMutex
	token   string
	team    *models.Team
	loading bool
	// epoch increments on every login/logout so a slow startup validation
	// cannot overwrite a newer session
	epoch uint64

	initOnce  sync.Once
	readyOnce sync.Once
	ready     chan struct{}
}

func NewSessionStore(api AuthAPI, tokens TokenStore, logger *logrus.Logger) *SessionStore {
	return &SessionStore{
		api:     api,
		tokens:  tokens,
		logger:  logger,
		now:     time.Now,
		loading: true,
		ready:   make(chan struct{}),
	}
}

// Initialize restores the session from the persisted token. It runs at most
// once; later calls return immediately.
func (s *SessionStore) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		defer s.markReady()
		s.restore(ctx)
	})
}

func (s *SessionStore) restore(ctx context.Context) {
	log := s.logger.WithFields(logrus.Fields{
		"component":   "session",
		"token_store": s.tokens.Name(),
	})

	s.mu.RLock()
	epoch := s.epoch
	s.mu.RUnlock()

	token, err := s.tokens.Load(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read persisted token, starting anonymous")
		return
	}
	if token == "" {
		log.Info("No persisted token, starting anonymous")
		return
	}

	if exp, ok := tokenExpiry(token); ok && !exp.After(s.now()) {
		log.WithField("expired_at", exp).Info("Persisted token has expired, discarding it")
		s.discardPersisted(ctx, epoch)
		return
	}

	team, err := s.api.Me(ctx, token)
	if err != nil {
		log.WithError(err).WithField("rejected", providers.IsUnauthorized(err)).
			Warn("Persisted token failed validation, discarding it")
		s.discardPersisted(ctx, epoch)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		log.Debug("Session changed during startup validation, keeping the newer session")
		return
	}
	s.token = token
	s.team = team
	logger.WithTeam(log, team.ID, team.Name).Info("Session restored")
}

// discardPersisted clears the stored token unless a login or logout has
// happened since epoch was read.
func (s *SessionStore) discardPersisted(ctx context.Context, epoch uint64) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	changed := s.epoch != epoch
	s.mu.RUnlock()
	if changed {
		s.logger.WithField("component", "session").Debug("Session changed during startup validation, keeping the stored token")
		return
	}
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.WithError(err).WithField("component", "session").Error("Failed to remove persisted token")
	}
}

func (s *SessionStore) markReady() {
	s.readyOnce.Do(func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		close(s.ready)
	})
}

// Login exchanges credentials for a token. On failure the previous session is
// left untouched and false is returned; the cause is only logged.
func (s *SessionStore) Login(ctx context.Context, teamName, password string) bool {
	log := s.logger.WithFields(logrus.Fields{
		"component": "session",
		"team_name": teamName,
	})

	resp, err := s.api.Login(ctx, teamName, password)
	if err != nil {
		log.WithError(err).WithField("rejected", providers.IsUnauthorized(err)).Warn("Login failed")
		return false
	}

	team := resp.Team
	s.persistMu.Lock()
	s.mu.Lock()
	s.token = resp.AccessToken
	s.team = &team
	s.epoch++
	s.mu.Unlock()

	// the in-memory session stays valid even if the durable copy could not be written
	err = s.tokens.Save(ctx, resp.AccessToken)
	s.persistMu.Unlock()
	if err != nil {
		log.WithError(err).Error("Failed to persist token")
	}

	logger.WithTeam(log, team.ID, "").Info("Team logged in")
	return true
}

// Logout clears the in-memory session and the persisted token. Safe to call
// when nobody is logged in.
func (s *SessionStore) Logout(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	var teamID int
	if s.team != nil {
		teamID = s.team.ID
	}
	s.token = ""
	s.team = nil
	s.epoch++
	s.mu.Unlock()

	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.WithError(err).WithField("component", "session").Error("Failed to remove persisted token")
	}

	logger.WithTeam(s.logger.WithField("component", "session"), teamID, "").Info("Team logged out")
}

// Revalidate asks the API whether the current token is still accepted. A
// rejected token ends the session; transport failures leave it alone.
func (s *SessionStore) Revalidate(ctx context.Context) SessionState {
	s.mu.RLock()
	token, epoch := s.token, s.epoch
	s.mu.RUnlock()

	if token == "" {
		return s.State()
	}

	team, err := s.api.Me(ctx, token)
	if err != nil {
		if !providers.IsUnauthorized(err) {
			s.logger.WithError(err).WithField("component", "session").Warn("Session revalidation failed")
			return s.State()
		}

		s.persistMu.Lock()
		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			s.persistMu.Unlock()
			return s.State()
		}
		s.token = ""
		s.team = nil
		s.epoch++
		s.mu.Unlock()

		if err := s.tokens.Clear(ctx); err != nil {
			s.logger.WithError(err).WithField("component", "session").Error("Failed to remove persisted token")
		}
		s.persistMu.Unlock()
		s.logger.WithField("component", "session").Info("Token no longer accepted, session ended")
		return SessionAnonymous
	}

	s.mu.Lock()
	if s.epoch == epoch {
		s.team = team
	}
	s.mu.Unlock()
	return s.State()
}

// State reports the lifecycle state
func (s *SessionStore) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.loading:
		return SessionUnknown
	case s.team != nil:
		return SessionAuthenticated
	default:
		return SessionAnonymous
	}
}

func (s *SessionStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Ready is closed once startup restoration has finished
func (s *SessionStore) Ready() <-chan struct{} {
	return s.ready
}

// Token returns the current bearer token, or "" when anonymous
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Team returns a copy of the logged-in team, or nil
func (s *SessionStore) Team() *models.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.team == nil {
		return nil
	}
	team := *s.team
	team.Players = append([]string(nil), s.team.Players...)
	return &team
}

// TokenExpiry returns the exp claim of the current token when it is a JWT
func (s *SessionStore) TokenExpiry() (time.Time, bool) {
	return tokenExpiry(s.Token())
}

// tokenExpiry reads exp without verifying the signature; the API stays the
// authority on whether a token is valid.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
