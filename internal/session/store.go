// Package session holds the logged-in shopper's bearer token together with
// the user decoded from it.
package session

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"furnistore/storefront/internal/domain"
	"furnistore/storefront/internal/storage"

	log "github.com/sirupsen/logrus"
)

// StorageKey is where the token is persisted.
const StorageKey = "jwt"

const (
	defaultPersistTimeout = 5 * time.Second
	minPasswordLength     = 8
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Authenticator is the backend side of login and signup.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	Signup(ctx context.Context, req domain.SignupRequest) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req domain.PasswordReset) error
	ChangePassword(ctx context.Context, token string, req domain.PasswordChange) error
}

// Session is either empty or a token with the user decoded from it.
type Session struct {
	Token string
	User  *domain.User
}

func (s Session) LoggedIn() bool {
	return s.Token != "" && s.User != nil
}

type Listener func(Session)

type Store struct {
	// writeMu orders a storage write together with the in-memory change it
	// belongs to.
	writeMu sync.Mutex

	mu      sync.RWMutex
	current Session

	auth    Authenticator
	decoder TokenDecoder
	storage storage.Storage
	timeout time.Duration

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

func NewStore(auth Authenticator, decoder TokenDecoder, st storage.Storage, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultPersistTimeout
	}
	return &Store{
		auth:      auth,
		decoder:   decoder,
		storage:   st,
		timeout:   timeout,
		listeners: make(map[int]Listener),
	}
}

// Restore rebuilds the session from the persisted token. A token that no
// longer decodes (corrupt, expired) is discarded and the session stays empty.
func (s *Store) Restore(ctx context.Context) Session {
	token, err := s.storage.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warnf("⚠️ Could not read saved session: %v", err)
		}
		return s.Current()
	}

	token = strings.TrimSpace(token)
	user, err := s.decoder.Decode(token)
	if token == "" || err != nil {
		log.Warnf("⚠️ Discarding saved session token: %v", err)
		s.writeMu.Lock()
		if rmErr := s.storage.Remove(ctx, StorageKey); rmErr != nil {
			log.Warnf("⚠️ Failed to remove saved session token: %v", rmErr)
		}
		s.writeMu.Unlock()
		return s.Current()
	}

	return s.replace(Session{Token: token, User: &user}, nil)
}

// Login authenticates against the backend. On any failure the previous
// session is left exactly as it was.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	token, err := s.auth.Login(ctx, domain.Credentials{
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		return Session{}, authError(err, msgInvalidCredentials)
	}

	user, err := s.decoder.Decode(token)
	if err != nil {
		return Session{}, &AuthError{Message: msgBadToken, Err: err}
	}

	next := s.replace(Session{Token: token, User: &user}, func(ctx context.Context) error {
		return s.storage.Set(ctx, StorageKey, token)
	})
	log.Infof("🔑 Logged in as %s (%s)", user.Email, user.Role)
	return next, nil
}

// Signup creates the account and then logs straight in with it.
func (s *Store) Signup(ctx context.Context, name, email, password string) (Session, error) {
	req := domain.SignupRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := validateSignup(req); err != nil {
		return Session{}, err
	}

	if err := s.auth.Signup(ctx, req); err != nil {
		return Session{}, authError(err, msgSignupFailed)
	}

	return s.Login(ctx, req.Email, req.Password)
}

// Logout drops the token and user together and forgets the persisted token.
func (s *Store) Logout() {
	s.replace(Session{}, func(ctx context.Context) error {
		return s.storage.Remove(ctx, StorageKey)
	})
}

// ForgotPassword asks the backend to email a reset link.
func (s *Store) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return &AuthError{Message: msgInvalidEmail}
	}

	if err := s.auth.ForgotPassword(ctx, email); err != nil {
		return authError(err, msgRequestFailed)
	}
	return nil
}

// ResetPassword sets a new password using the token from the reset link. It
// does not log in.
func (s *Store) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	resetToken = strings.TrimSpace(resetToken)
	if resetToken == "" {
		return &AuthError{Message: msgBadResetLink}
	}
	if len(newPassword) < minPasswordLength {
		return &AuthError{Message: msgShortPassword}
	}

	err := s.auth.ResetPassword(ctx, domain.PasswordReset{Token: resetToken, NewPassword: newPassword})
	if err != nil {
		return fixedAuthError(err, msgBadResetLink)
	}
	return nil
}

// ChangePassword updates the logged-in user's password. confirm must repeat
// newPassword.
func (s *Store) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	current := s.Current()
	if !current.LoggedIn() {
		return &AuthError{Message: msgNotLoggedIn}
	}
	if newPassword != confirm {
		return &AuthError{Message: msgPasswordMismatch}
	}
	if newPassword == "" {
		return &AuthError{Message: msgShortPassword}
	}

	err := s.auth.ChangePassword(ctx, current.Token, domain.PasswordChange{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
	if err != nil {
		return fixedAuthError(err, msgWrongOldPassword)
	}
	log.Infof("🔑 Password changed for %s", current.User.Email)
	return nil
}

func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.current)
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.User != nil && s.current.User.Role == domain.RoleAdmin
}

// Subscribe registers fn to receive the session after every change. The
// returned func unregisters it.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// replace runs save (when non-nil) and swaps in next as one step, so the
// persisted token always matches the last session set. Listeners run after
// the lock is released.
func (s *Store) replace(next Session, save func(ctx context.Context) error) Session {
	s.writeMu.Lock()
	if save != nil {
		s.persist(save)
	}
	s.mu.Lock()
	s.current = copySession(next)
	out := copySession(s.current)
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.notify(out)
	return out
}

func (s *Store) persist(fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		log.Warnf("⚠️ Failed to save session, it will not survive a restart: %v", err)
	}
}

func (s *Store) notify(current Session) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(copySession(current))
	}
}

func copySession(s Session) Session {
	if s.User == nil {
		return Session{Token: s.Token}
	}
	user := *s.User
	return Session{Token: s.Token, User: &user}
}

func validateSignup(req domain.SignupRequest) error {
	switch {
	case req.Name == "":
		return &AuthError{Message: "Please enter your name"}
	case !emailPattern.MatchString(req.Email):
		return &AuthError{Message: msgInvalidEmail}
	case len(req.Password) < minPasswordLength:
		return &AuthError{Message: msgShortPassword}
	}
	return nil
}
