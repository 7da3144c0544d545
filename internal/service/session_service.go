package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"bucketlist/internal/middleware"
	"bucketlist/internal/models"
	"bucketlist/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// tokenRetries bounds how often a session persist is retried after a
// unique-index collision on one of the token columns.
const tokenRetries = 3

// SessionService owns the credential and session token lifecycle. Tokens are
// opaque random values stored on the user row; the database unique indexes are
// the source of truth for token uniqueness.
type SessionService struct {
	userRepo   repository.UserRepository
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
}

// Session is the credential triple returned to clients after register, login
// or renewal.
type Session struct {
	User        *models.User
	Token       string
	ExpiresAt   time.Time
	UpdateToken string
}

// NewSessionService creates a session service with the given session TTL and bcrypt cost.
func NewSessionService(userRepo repository.UserRepository, ttl time.Duration, bcryptCost int) *SessionService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &SessionService{
		userRepo:   userRepo,
		ttl:        ttl,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Register creates a new account and issues its first session.
// The plaintext password is hashed immediately and never stored.
func (s *SessionService) Register(ctx context.Context, email, password string) (*Session, error) {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("An account with this email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hashedPassword),
	}

	for attempt := 0; attempt < tokenRetries; attempt++ {
		if err := s.stampSession(user); err != nil {
			return nil, err
		}
		createErr := s.userRepo.Create(ctx, user)
		if createErr == nil {
			middleware.SessionsIssued.WithLabelValues("register").Inc()
			return s.sessionFor(user), nil
		}
		if !errors.Is(createErr, repository.ErrDuplicateKey) {
			return nil, createErr
		}
		// A duplicate key here is either an email race or an (extremely
		// unlikely) token collision. Re-check the email, otherwise retry
		// with fresh randomness.
		existing, lookupErr := s.userRepo.GetByEmail(ctx, email)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing != nil {
			return nil, models.NewConflictError("An account with this email already exists")
		}
	}
	return nil, models.NewInternalError(fmt.Errorf("could not persist a unique session token after %d attempts", tokenRetries))
}

// Authenticate verifies the credentials and, on success, renews the session.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *SessionService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewInvalidCredentialsError()
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, models.NewInvalidCredentialsError()
	}

	if err := s.rotate(ctx, user); err != nil {
		return nil, err
	}
	middleware.SessionsIssued.WithLabelValues("login").Inc()
	return s.sessionFor(user), nil
}

// Renew exchanges a valid update token for a fresh session triple. The update
// token works regardless of whether the session itself has already expired.
func (s *SessionService) Renew(ctx context.Context, updateToken string) (*Session, error) {
	if updateToken == "" {
		return nil, models.NewInvalidTokenError("Update token required")
	}
	user, err := s.userRepo.GetByUpdateToken(ctx, updateToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewInvalidTokenError("Invalid update token")
	}

	if err := s.rotate(ctx, user); err != nil {
		return nil, err
	}
	middleware.SessionsIssued.WithLabelValues("renew").Inc()
	return s.sessionFor(user), nil
}

// Resolve maps a session token to its user. Expired sessions fail with a
// distinct error so clients know to renew rather than re-authenticate.
func (s *SessionService) Resolve(ctx context.Context, sessionToken string) (*models.User, error) {
	if sessionToken == "" {
		return nil, models.NewInvalidTokenError("Session token required")
	}
	user, err := s.userRepo.GetBySessionToken(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewInvalidTokenError("Invalid session token")
	}
	if !s.now().Before(user.SessionExpiresAt) {
		return nil, models.NewSessionExpiredError()
	}
	return user, nil
}

// Logout expires the session immediately. The token itself is not rotated;
// it simply stops resolving, so a second logout fails like any expired session.
func (s *SessionService) Logout(ctx context.Context, sessionToken string) error {
	user, err := s.Resolve(ctx, sessionToken)
	if err != nil {
		return err
	}
	user.SessionExpiresAt = s.now()
	return s.userRepo.Update(ctx, user)
}

// rotate replaces all three session artifacts and persists them, retrying
// with fresh randomness if a token collides with an existing row.
func (s *SessionService) rotate(ctx context.Context, user *models.User) error {
	for attempt := 0; attempt < tokenRetries; attempt++ {
		if err := s.stampSession(user); err != nil {
			return err
		}
		updateErr := s.userRepo.Update(ctx, user)
		if updateErr == nil {
			return nil
		}
		if !errors.Is(updateErr, repository.ErrDuplicateKey) {
			return updateErr
		}
	}
	return models.NewInternalError(fmt.Errorf("could not persist a unique session token after %d attempts", tokenRetries))
}

// stampSession sets a fresh token triple on the user without persisting it.
func (s *SessionService) stampSession(user *models.User) error {
	sessionToken, err := newToken()
	if err != nil {
		return models.NewInternalError(err)
	}
	updateToken, err := newToken()
	if err != nil {
		return models.NewInternalError(err)
	}
	user.SessionToken = sessionToken
	user.UpdateToken = updateToken
	user.SessionExpiresAt = s.now().Add(s.ttl)
	return nil
}

func (s *SessionService) sessionFor(user *models.User) *Session {
	return &Session{
		User:        user,
		Token:       user.SessionToken,
		ExpiresAt:   user.SessionExpiresAt,
		UpdateToken: user.UpdateToken,
	}
}

// newToken returns a 64-character hex token derived from 64 bytes of
// crypto/rand output. Hashing normalizes the length and keeps the raw
// entropy out of the database.
func newToken() (string, error) {
	raw := make([]byte, 64)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
