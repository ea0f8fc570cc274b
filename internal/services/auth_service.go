package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const (
	minPasswordLen = 8
	maxUsernameLen = 64
)

// errInvalidCredentials is the same for "no such user" and "wrong
// password" so that login attempts cannot probe for usernames.
var errInvalidCredentials = core.NewValidationError("credentials", "invalid username or password")

// defaultCategories is seeded for every new user at signup.
var defaultCategories = []struct {
	name     string
	isIncome bool
}{
	{"Salary", true},
	{"Food", false},
	{"Transport", false},
	{"Entertainment", false},
	{"Transfers", false},
	{"Household", false},
}

// AuthService owns signup, login and session resolution. Resolved sessions
// are cached for a short TTL to keep the auth middleware off the database
// on every request.
type AuthService struct {
	store      AuthStore
	logger     *log.Logger
	now        func() time.Time
	sessionTTL time.Duration
	sessions   *cache.LRUCache[string] // token -> user id
}

// NewAuthService wires the auth service. The session cache is owned by the
// caller so it can be registered with the cache manager for cleanup.
func NewAuthService(store AuthStore, logger *log.Logger, sessionTTL time.Duration, sessions *cache.LRUCache[string]) *AuthService {
	return &AuthService{
		store:      store,
		logger:     logger.WithComponent(log.ComponentAuth),
		now:        time.Now,
		sessionTTL: sessionTTL,
		sessions:   sessions,
	}
}

// Signup registers a user, seeds the default categories and opens a
// session. The returned token goes into the session cookie.
func (s *AuthService) Signup(ctx context.Context, username, password string) (core.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.User{}, "", core.NewValidationError("username", "username must not be empty")
	}
	if len(username) > maxUsernameLen {
		return core.User{}, "", core.NewValidationError("username", "username is too long")
	}
	if len(password) < minPasswordLen {
		return core.User{}, "", core.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return core.User{}, "", err
	}

	for _, dc := range defaultCategories {
		c := core.Category{UserID: user.ID, Name: dc.name, IsIncome: dc.isIncome}
		if err := s.store.CreateCategory(ctx, &c); err != nil {
			s.logger.WarnContext(ctx, "Failed to seed default category",
				log.FieldUserID, user.ID, "category", dc.name, log.FieldError, err)
		}
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return core.User{}, "", err
	}

	s.logger.InfoContext(ctx, "User signed up", log.FieldUserID, user.ID)
	return user, token, nil
}

// Login verifies the credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, core.ErrNotFound) {
		return "", errInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", errInvalidCredentials
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "User logged in", log.FieldUserID, user.ID)
	return token, nil
}

// Logout removes the session. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	s.sessions.Delete(token)
	return s.store.DeleteSession(ctx, token)
}

// Authenticate resolves a session token to a user id, consulting the cache
// first. Expired or unknown tokens report NotFound.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", core.ErrNotFound
	}
	if userID, ok := s.sessions.Get(token); ok {
		return userID, nil
	}

	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		return "", err
	}
	if session.ExpiresAt.Before(s.now()) {
		return "", core.ErrNotFound
	}

	s.sessions.Set(token, session.UserID)
	return session.UserID, nil
}

// PurgeExpiredSessions removes expired sessions from storage. The cron
// scheduler calls this daily.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "Expired sessions purged", "count", n, log.FieldOperation, log.OpPurge)
	}
	return n, nil
}

func (s *AuthService) openSession(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	err := s.store.CreateSession(ctx, storage.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.sessionTTL),
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	s.sessions.Set(token, userID)
	return token, nil
}
