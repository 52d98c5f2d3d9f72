// Package auth implements the mock sign-in session and API tokens.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"medstock/m/domain"
	"medstock/m/internal/latency"
	"medstock/m/internal/seed"
	"medstock/m/internal/storage"
)

// StorageKey is the single local-storage key holding the serialized user.
const StorageKey = "medstock_user"

// Option configures a Session.
type Option func(*Session)

// WithSignInLatency sets the simulated sign-in latency.
func WithSignInLatency(lat *latency.Simulator) Option {
	return func(s *Session) { s.latency = lat }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is the mock authentication state machine:
// Unauthenticated -> SignInWithGoogle -> Authenticated(role) -> SignOut -> Unauthenticated.
type Session struct {
	mu      sync.RWMutex
	user    *domain.User
	loading bool

	store   storage.LocalStorage
	latency *latency.Simulator
	now     func() time.Time
	logger  *zap.Logger
}

// NewSession rehydrates the session from store. Loading reports true until
// rehydration completes. An unreadable record is discarded.
func NewSession(ctx context.Context, store storage.LocalStorage, opts ...Option) (*Session, error) {
	s := &Session{
		store:   store,
		loading: true,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.rehydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) rehydrate(ctx context.Context) error {
	defer s.setLoading(false)

	raw, err := s.store.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("auth.Session.rehydrate: %w", err)
	}

	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || !u.Role.Valid() {
		s.logger.Warn("discarding unreadable persisted user", zap.Error(err))
		if err := s.store.Remove(ctx, StorageKey); err != nil {
			return fmt.Errorf("auth.Session.rehydrate: %w", err)
		}
		return nil
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	s.logger.Info("session rehydrated", zap.String("uid", u.UID), zap.Stringer("role", u.Role))
	return nil
}

// Current returns the signed-in user.
func (s *Session) Current() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SignInWithGoogle signs in the mock user after a simulated delay. A zero role means RoleUser.
func (s *Session) SignInWithGoogle(ctx context.Context, role domain.Role) (domain.User, error) {
	const op = "auth.Session.SignInWithGoogle"

	if role == 0 {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("%s: %w: invalid role", op, domain.ErrValidation)
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.latency.Wait(ctx); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u := domain.User{
		UID:       seed.MockUserUID,
		Phone:     seed.MockUserPhone,
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := s.persist(ctx, u); err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	s.logger.Info("signed in", zap.String("uid", u.UID), zap.Stringer("role", role))
	return u, nil
}

// SignOut clears the persisted and in-memory user immediately.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Remove(ctx, StorageKey); err != nil {
		return fmt.Errorf("auth.Session.SignOut: %w", err)
	}
	s.logger.Info("signed out")
	return nil
}

// SetUserRole changes the role of the signed-in user. It is a no-op, reporting
// false, when nobody is signed in.
func (s *Session) SetUserRole(ctx context.Context, role domain.Role) (domain.User, bool, error) {
	const op = "auth.Session.SetUserRole"

	if !role.Valid() {
		return domain.User{}, false, fmt.Errorf("%s: %w: invalid role", op, domain.ErrValidation)
	}

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return domain.User{}, false, nil
	}
	u := *s.user
	u.Role = role
	s.user = &u
	s.mu.Unlock()

	if err := s.persist(ctx, u); err != nil {
		return domain.User{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return u, true, nil
}

func (s *Session) persist(ctx context.Context, u domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, StorageKey, string(raw))
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
