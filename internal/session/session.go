// Package session holds the signed-in user and the credentials used for protected calls.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Durable storage keys
const (
	KeyUser         = "user"
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"

	// legacyTokenKey was written by older clients. It is never read, only purged.
	legacyTokenKey = "token"
)

var authKeys = []string{KeyUser, KeyAccessToken, KeyRefreshToken, legacyTokenKey}

var (
	// ErrCorruptSession is returned by Hydrate when persisted data could not be used.
	ErrCorruptSession = errors.New("persisted session is unusable")
	// ErrInvalidLogin is returned when Login is called without a user or token.
	ErrInvalidLogin = errors.New("login requires a user and an access token")
)

// User is the signed-in customer
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// Snapshot is an immutable copy of the session state
type Snapshot struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

// IsAuthenticated reports whether an access token is held
func (s Snapshot) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// UserID returns the user id or "" when signed out
func (s Snapshot) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// Listener is notified after every session transition
type Listener func(Snapshot)

// Store is the single source of truth for who is signed in.
// User and access token are always set and cleared together.
type Store struct {
	mu           sync.RWMutex
	user         *User
	accessToken  string
	refreshToken string

	storage Storage
	logger  *slog.Logger
	now     func() time.Time

	subMu     sync.Mutex
	nextSubID int
	listeners map[int]Listener
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for hydrate and persistence diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for token expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty, unauthenticated store backed by storage
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		logger:    slog.Default(),
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate loads the persisted session. Any inconsistency wipes every auth key and
// leaves the store unauthenticated; the returned error only describes why.
func (s *Store) Hydrate() error {
	user, access, refresh, err := s.readPersisted()
	if err != nil {
		s.logger.Warn("discarding persisted session", "error", err)
		if rmErr := s.storage.Remove(authKeys...); rmErr != nil {
			s.logger.Error("failed to purge persisted session", "error", rmErr)
		}
		s.set(nil, "", "")
		return err
	}

	// The legacy key is dropped even when the current keys are valid.
	if _, ok, _ := s.storage.Get(legacyTokenKey); ok {
		_ = s.storage.Remove(legacyTokenKey)
	}

	s.set(user, access, refresh)
	if user != nil {
		s.logger.Debug("session hydrated", "user_id", user.ID)
	}
	return nil
}

func (s *Store) readPersisted() (*User, string, string, error) {
	rawUser, hasUser, err := s.storage.Get(KeyUser)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	access, hasAccess, err := s.storage.Get(KeyAccessToken)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	refresh, _, err := s.storage.Get(KeyRefreshToken)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}

	hasUser = hasUser && rawUser != ""
	hasAccess = hasAccess && access != ""

	switch {
	case !hasUser && !hasAccess:
		if refresh != "" {
			return nil, "", "", fmt.Errorf("%w: refresh token without access token", ErrCorruptSession)
		}
		return nil, "", "", nil
	case hasUser != hasAccess:
		return nil, "", "", fmt.Errorf("%w: user and access token must be persisted together", ErrCorruptSession)
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, "", "", fmt.Errorf("%w: decoding user: %v", ErrCorruptSession, err)
	}
	if TokenExpired(access, s.now()) {
		return nil, "", "", fmt.Errorf("%w: access token expired", ErrCorruptSession)
	}
	return &user, access, refresh, nil
}

// Login sets user and tokens together and persists them immediately
func (s *Store) Login(user User, accessToken, refreshToken string) error {
	if accessToken == "" {
		return ErrInvalidLogin
	}

	u := user
	s.set(&u, accessToken, refreshToken)

	rawUser, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := s.storage.Set(KeyUser, string(rawUser)); err != nil {
		return fmt.Errorf("persisting user: %w", err)
	}
	if err := s.storage.Set(KeyAccessToken, accessToken); err != nil {
		return fmt.Errorf("persisting access token: %w", err)
	}
	if refreshToken != "" {
		if err := s.storage.Set(KeyRefreshToken, refreshToken); err != nil {
			return fmt.Errorf("persisting refresh token: %w", err)
		}
	} else if err := s.storage.Remove(KeyRefreshToken); err != nil {
		return fmt.Errorf("clearing refresh token: %w", err)
	}
	return nil
}

// Logout clears the session and purges storage. Calling it twice is harmless.
func (s *Store) Logout() error {
	s.set(nil, "", "")
	if err := s.storage.Remove(authKeys...); err != nil {
		return fmt.Errorf("purging session: %w", err)
	}
	return nil
}

// AuthHeader returns the headers needed for a protected call, or an empty map
func (s *Store) AuthHeader() map[string]string {
	token := s.AccessToken()
	if token == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// IsAuthenticated reports whether an access token is held
func (s *Store) IsAuthenticated() bool {
	return s.AccessToken() != ""
}

// AccessToken returns the current access token or ""
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the stored refresh token or ""
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// User returns a copy of the signed-in user, or nil
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Snapshot returns a consistent copy of the whole session
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{AccessToken: s.accessToken, RefreshToken: s.refreshToken}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Subscribe registers fn for every transition and returns its cancel func
func (s *Store) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.listeners, id)
		s.subMu.Unlock()
	}
}

func (s *Store) set(user *User, access, refresh string) {
	if access == "" {
		user, refresh = nil, ""
	}

	s.mu.Lock()
	changed := s.accessToken != access || s.refreshToken != refresh || !sameUser(s.user, user)
	s.user = user
	s.accessToken = access
	s.refreshToken = refresh
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func sameUser(a, b *User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// TokenExpired reports whether token is a JWT whose exp claim is before now.
// Opaque tokens are never considered expired; the backend decides with a 401.
func TokenExpired(token string, now time.Time) bool {
	claims, ok := ParseClaims(token)
	if !ok || claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// ParseClaims decodes JWT registered claims without verifying the signature.
// The client never holds the signing key, so this is for display and expiry only.
func ParseClaims(token string) (*jwt.RegisteredClaims, bool) {
	if token == "" {
		return nil, false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
