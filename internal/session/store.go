package session

import (
	"fmt"
	"sync"

	"github.com/trakjobs/trakjobs-go/internal/core/domain"
	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
)

// Durable entry keys.
const (
	TokenKey = "access_token"
	UserKey  = "user"
)

// Store is the process-wide authentication state.
//
// Reads fail soft: a backend error or an unparseable entry reads as
// absent and is logged, never returned. Writes are persisted before they
// return.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	logger  logger.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for fail-soft reads.
func WithLogger(l logger.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a store over backend.
func NewStore(backend Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		logger:  logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the bearer token.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token()
}

func (s *Store) token() (string, bool) {
	v, ok, err := s.backend.Get(TokenKey)
	if err != nil {
		s.logger.Warn("session token unreadable", "error", err)
		return "", false
	}
	if !ok || len(v) == 0 {
		return "", false
	}
	return string(v), true
}

// SetToken persists token. An empty token clears it.
func (s *Store) SetToken(token string) error {
	if token == "" {
		return s.ClearToken()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Set(map[string][]byte{TokenKey: []byte(token)}); err != nil {
		return fmt.Errorf("session: save token: %w", err)
	}
	return nil
}

// ClearToken erases the token and keeps the user record.
func (s *Store) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(TokenKey); err != nil {
		return fmt.Errorf("session: clear token: %w", err)
	}
	return nil
}

// User returns the stored user record.
func (s *Store) User() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user()
}

func (s *Store) user() (domain.User, bool) {
	v, ok, err := s.backend.Get(UserKey)
	if err != nil {
		s.logger.Warn("session user unreadable", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	u, err := domain.ParseUser(v)
	if err != nil {
		s.logger.Warn("session user record malformed", "error", err)
		return nil, false
	}
	return u, true
}

// SetUser persists the user record. A nil record removes it.
func (s *Store) SetUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u == nil {
		if err := s.backend.Delete(UserKey); err != nil {
			return fmt.Errorf("session: clear user: %w", err)
		}
		return nil
	}

	data, err := u.Marshal()
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	if err := s.backend.Set(map[string][]byte{UserKey: data}); err != nil {
		return fmt.Errorf("session: save user: %w", err)
	}
	return nil
}

// Replace stores sess wholesale. Token and user are written in one backend
// operation; an empty token or nil user removes that entry.
func (s *Store) Replace(sess domain.Session) error {
	set := map[string][]byte{}
	var del []string

	if sess.Token != "" {
		set[TokenKey] = []byte(sess.Token)
	} else {
		del = append(del, TokenKey)
	}
	if sess.User != nil {
		data, err := sess.User.Marshal()
		if err != nil {
			return fmt.Errorf("session: encode user: %w", err)
		}
		set[UserKey] = data
	} else {
		del = append(del, UserKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(del) > 0 {
		if err := s.backend.Delete(del...); err != nil {
			return fmt.Errorf("session: replace: %w", err)
		}
	}
	if len(set) > 0 {
		if err := s.backend.Set(set); err != nil {
			return fmt.Errorf("session: replace: %w", err)
		}
	}
	return nil
}

// Session returns the current token and user as one value.
func (s *Store) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, _ := s.token()
	user, _ := s.user()
	return domain.Session{Token: token, User: user}
}

// IsAuthenticated reports whether a token is held. Expiry and signature
// are not checked; the server reports those on the next request.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Token()
	return ok
}

// VendorID resolves the vendor scope from the stored user record.
func (s *Store) VendorID() (string, bool) {
	u, ok := s.User()
	if !ok {
		return "", false
	}
	return u.VendorID()
}

// Clear removes token and user in one backend operation.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(TokenKey, UserKey); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// Close closes the backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}
