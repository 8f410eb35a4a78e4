// Package session keeps the signed-in user and token, mirrored to local storage.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"atelier/pkg/api"
	"atelier/pkg/database"
	"atelier/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	UserKey  = "session.user"
	TokenKey = "session.token"
)

// ErrNoSession is returned by Refresh when nobody is signed in
var ErrNoSession = errors.New("not logged in")

// Storage is the subset of local storage the session needs
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	GetJSON(key string, v any) error
	SetJSON(key string, v any) error
}

// Authenticator performs the login and refresh round trips
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.AuthResult, error)
	Refresh(ctx context.Context) (api.AuthResult, error)
}

// LoginResult reports a rejected login without making it an error
type LoginResult struct {
	OK      bool
	Message string
	User    models.User
}

type Session struct {
	mtx     sync.RWMutex
	user    *models.User
	token   string
	auth    Authenticator
	storage Storage
	log     *zap.Logger
}

// New creates an empty session. storage may be nil for an in-memory session.
func New(auth Authenticator, storage Storage, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{auth: auth, storage: storage, log: log}
}

// Hydrate loads the persisted user and token. Nothing persisted is not an error.
func (s *Session) Hydrate() error {
	if s.storage == nil {
		return nil
	}

	token, err := s.storage.Get(TokenKey)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading session token: %w", err)
	}
	var user models.User
	if err := s.storage.GetJSON(UserKey, &user); err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("loading session user: %w", err)
	}

	s.mtx.Lock()
	s.token = token
	if user.ID != "" || user.Email != "" {
		s.user = &user
	}
	s.mtx.Unlock()
	s.log.Debug("session restored", zap.String("email", user.Email))
	return nil
}

// Login authenticates. Rejected credentials give OK=false with the server's
// message; only transport failures are returned as errors.
func (s *Session) Login(ctx context.Context, email, password string) (LoginResult, error) {
	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Kind != api.KindServer {
			msg := apiErr.Message
			if msg == "" || msg == http.StatusText(apiErr.Status) {
				msg = "Invalid email or password"
			}
			return LoginResult{Message: msg}, nil
		}
		return LoginResult{}, err
	}

	if err := s.set(res); err != nil {
		s.log.Warn("persisting session", zap.Error(err))
	}
	s.log.Info("logged in", zap.String("email", res.User.Email))
	return LoginResult{OK: true, User: res.User}, nil
}

// Refresh exchanges the current token for a new one
func (s *Session) Refresh(ctx context.Context) error {
	if s.Token() == "" {
		return ErrNoSession
	}
	res, err := s.auth.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refreshing session: %w", err)
	}
	if err := s.set(res); err != nil {
		s.log.Warn("persisting session", zap.Error(err))
	}
	return nil
}

// Logout clears memory and the persisted copy
func (s *Session) Logout() error {
	s.mtx.Lock()
	s.user = nil
	s.token = ""
	s.mtx.Unlock()

	if s.storage == nil {
		return nil
	}
	return errors.Join(s.storage.Delete(UserKey), s.storage.Delete(TokenKey))
}

func (s *Session) Token() string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.token
}

// User returns the signed-in user, ok is false when nobody is
func (s *Session) User() (models.User, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// ExpiresAt reads the exp claim of the token without verifying its signature.
// ok is false for opaque tokens or tokens without exp.
func (s *Session) ExpiresAt() (time.Time, bool) {
	token := s.Token()
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

// NeedsRefresh reports whether the token expires within window of now
func (s *Session) NeedsRefresh(now time.Time, window time.Duration) bool {
	exp, ok := s.ExpiresAt()
	return ok && exp.Before(now.Add(window))
}

func (s *Session) set(res api.AuthResult) error {
	s.mtx.Lock()
	s.token = res.Token
	// refresh responses may omit the user
	if res.User != (models.User{}) {
		user := res.User
		s.user = &user
	}
	var user models.User
	if s.user != nil {
		user = *s.user
	}
	s.mtx.Unlock()

	if s.storage == nil {
		return nil
	}
	if err := s.storage.Set(TokenKey, res.Token); err != nil {
		return err
	}
	return s.storage.SetJSON(UserKey, user)
}
