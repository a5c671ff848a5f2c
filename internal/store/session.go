package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/foxzi/wadesk/internal/models"
	"github.com/foxzi/wadesk/internal/persist"
)

type authState struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Session holds the authenticated user and token
type Session struct {
	api    AuthAPI
	mirror Mirror
	logger *slog.Logger

	mu      sync.RWMutex
	user    *models.User
	token   string
	err     error
	loading bool
}

// NewSession creates a session store
func NewSession(api AuthAPI, mirror Mirror, logger *slog.Logger) *Session {
	return &Session{
		api:    api,
		mirror: mirrorOrNoop(mirror),
		logger: loggerOrDefault(logger).With("component", "session"),
	}
}

// Restore loads the persisted user and token
func (s *Session) Restore() error {
	var st authState
	found, err := s.mirror.Load(persist.PartitionAuth, &st)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if !found || st.Token == "" || st.User == nil {
		return nil
	}

	s.mu.Lock()
	s.user = st.User
	s.token = st.Token
	s.mu.Unlock()
	return nil
}

// Login authenticates with email and password
func (s *Session) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, s.fail(errors.New("email and password are required"))
	}

	s.begin()
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, s.fail(fmt.Errorf("login: %w", err))
	}
	s.establish(res)
	return res, nil
}

// Register creates an account and signs in with it
func (s *Session) Register(ctx context.Context, name, email, password string) (*models.AuthResult, error) {
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, s.fail(errors.New("name, email and password are required"))
	}

	s.begin()
	res, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return nil, s.fail(fmt.Errorf("register: %w", err))
	}
	s.establish(res)
	return res, nil
}

func (s *Session) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.loading = false
	s.err = err
	s.mu.Unlock()
	s.logger.Warn("authentication failed", "error", err)
	return err
}

func (s *Session) establish(res *models.AuthResult) {
	user := res.User

	s.mu.Lock()
	s.loading = false
	s.user = &user
	s.token = res.Token
	s.mu.Unlock()

	if err := s.mirror.Save(persist.PartitionAuth, authState{User: &user, Token: res.Token}); err != nil {
		s.logger.Error("failed to persist session", "error", err)
	}
	s.logger.Info("signed in", "user", user.Email)
}

// Logout forgets the user and token
func (s *Session) Logout() {
	s.reset()
	s.logger.Info("signed out")
}

// Clear drops the session after the API rejected the token
func (s *Session) Clear() {
	if !s.CheckAuth() {
		return
	}
	s.reset()
	s.logger.Warn("session cleared after unauthorized response")
}

func (s *Session) reset() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.err = nil
	s.mu.Unlock()

	if err := s.mirror.Clear(persist.PartitionAuth); err != nil {
		s.logger.Error("failed to clear persisted session", "error", err)
	}
}

// CheckAuth reports whether a user is signed in
func (s *Session) CheckAuth() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Token returns the bearer token, or "" when signed out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Err returns the error of the last login or register attempt
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Loading reports whether a login or register call is in flight
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// FetchProfile reloads the current user from the API
func (s *Session) FetchProfile(ctx context.Context) (*models.User, error) {
	user, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Error("failed to fetch profile", "error", err)
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	s.replaceUser(user)
	return user, nil
}

// UpdateProfile changes the current user's profile
func (s *Session) UpdateProfile(ctx context.Context, patch models.ProfileUpdate) (*models.User, error) {
	user, err := s.api.UpdateMe(ctx, patch)
	if err != nil {
		s.logger.Error("failed to update profile", "error", err)
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.replaceUser(user)
	return user, nil
}

func (s *Session) replaceUser(user *models.User) {
	u := *user

	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.user = &u
	st := authState{User: &u, Token: s.token}
	s.mu.Unlock()

	if err := s.mirror.Save(persist.PartitionAuth, st); err != nil {
		s.logger.Error("failed to persist session", "error", err)
	}
}
