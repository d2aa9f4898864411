package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"auratask/internal/auth"
	apperrors "auratask/internal/errors"
	"auratask/internal/model"
	"auratask/internal/repository"
)

const bcryptCost = 10

var (
	// ErrDuplicateEmail is returned when signing up with a registered email.
	ErrDuplicateEmail = errors.New("email is already registered")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthResult bundles what a successful signup or signin produces.
type AuthResult struct {
	User    *model.User
	Session *model.Session
	Token   string
}

// AuthService handles signup, signin and session retrieval.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name string) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	GetSession(ctx context.Context, sessionID string) (*model.User, *model.Session, error)
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	codec    *auth.TokenCodec
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, codec *auth.TokenCodec) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		codec:    codec,
	}
}

// SignUp creates a user with a hashed password and issues its first session.
func (s *authService) SignUp(ctx context.Context, email, password, name string) (*AuthResult, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrDuplicateEmail
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	if name == "" {
		// The signup form lets the name be omitted; default to the
		// local part of the email.
		name = email
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashed),
		Name:         name,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Concurrent signups race at the unique index on email; the
		// loser must still surface as a duplicate, not a 500.
		if isDuplicateEntry(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issueSession(ctx, user)
}

// SignIn verifies credentials and issues a brand-new session. Prior sessions
// for the user are left intact and stay valid until they expire.
func (s *authService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(ctx, user)
}

// GetSession resolves a server-session cookie value to its user and session.
func (s *authService) GetSession(ctx context.Context, sessionID string) (*model.User, *model.Session, error) {
	if sessionID == "" {
		return nil, nil, apperrors.ErrUnauthenticated
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, apperrors.ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("find session: %w", err)
	}
	if session.Expired(time.Now()) {
		return nil, nil, apperrors.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, apperrors.ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("find session user: %w", err)
	}
	return user, session, nil
}

// issueSession creates a session row and mints a signed token sharing the
// same expiry instant.
func (s *authService) issueSession(ctx context.Context, user *model.User) (*AuthResult, error) {
	session := &model.Session{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(model.SessionLifetime),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.codec.Mint(user.ID, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}

	return &AuthResult{User: user, Session: session, Token: token}, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
