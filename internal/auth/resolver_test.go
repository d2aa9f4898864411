package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"auratask/internal/errors"
	"auratask/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockSessionRepository is a mock implementation of repository.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestResolver_BearerWinsOverSessionCookie(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)

	token, err := codec.Mint("user-a", time.Now().Add(time.Hour))
	assert.NoError(t, err)

	users.On("FindByID", mock.Anything, "user-a").Return(&model.User{ID: "user-a"}, nil)
	// No expectation on sessions: the session cookie belongs to a
	// different subject and must never be consulted.

	resolver := NewResolver(codec, users, sessions, nil)
	subject, err := resolver.Resolve(context.Background(), Credentials{
		Bearer:        token,
		SessionCookie: "session-of-user-b",
	})

	assert.NoError(t, err)
	assert.Equal(t, "user-a", subject)
	sessions.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestResolver_TokenCookie(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)

	token, err := codec.Mint("user-a", time.Now().Add(time.Hour))
	assert.NoError(t, err)

	users.On("FindByID", mock.Anything, "user-a").Return(&model.User{ID: "user-a"}, nil)

	resolver := NewResolver(codec, users, sessions, nil)
	subject, err := resolver.Resolve(context.Background(), Credentials{TokenCookie: token})

	assert.NoError(t, err)
	assert.Equal(t, "user-a", subject)
}

func TestResolver_UnknownSubjectFallsThrough(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)

	// Structurally valid token whose subject no longer exists.
	token, err := codec.Mint("deleted-user", time.Now().Add(time.Hour))
	assert.NoError(t, err)

	users.On("FindByID", mock.Anything, "deleted-user").Return(nil, gorm.ErrRecordNotFound)
	sessions.On("FindByID", mock.Anything, "session-1").Return(&model.Session{
		ID:        "session-1",
		UserID:    "user-b",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	resolver := NewResolver(codec, users, sessions, nil)
	subject, err := resolver.Resolve(context.Background(), Credentials{
		Bearer:        token,
		SessionCookie: "session-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "user-b", subject)
}

func TestResolver_MalformedBearerIsSkipped(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)

	sessions.On("FindByID", mock.Anything, "session-1").Return(&model.Session{
		ID:        "session-1",
		UserID:    "user-b",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	resolver := NewResolver(codec, users, sessions, nil)
	subject, err := resolver.Resolve(context.Background(), Credentials{
		Bearer:        "not-a-signed-token",
		SessionCookie: "session-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "user-b", subject)
	users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestResolver_ExpiredSessionNeverResolves(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)

	sessions.On("FindByID", mock.Anything, "session-1").Return(&model.Session{
		ID:        "session-1",
		UserID:    "user-b",
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)

	resolver := NewResolver(codec, users, sessions, nil)
	subject, err := resolver.Resolve(context.Background(), Credentials{SessionCookie: "session-1"})

	assert.Equal(t, errors.ErrUnauthenticated, err)
	assert.Empty(t, subject)
}

func TestResolver_ValidSession(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)

	sessions.On("FindByID", mock.Anything, "session-1").Return(&model.Session{
		ID:        "session-1",
		UserID:    "user-b",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	resolver := NewResolver(codec, users, sessions, nil)
	subject, err := resolver.Resolve(context.Background(), Credentials{SessionCookie: "session-1"})

	assert.NoError(t, err)
	assert.Equal(t, "user-b", subject)
}

func TestResolver_NoCredentials(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	resolver := NewResolver(codec, new(MockUserRepository), new(MockSessionRepository), nil)

	subject, err := resolver.Resolve(context.Background(), Credentials{})

	assert.Equal(t, errors.ErrUnauthenticated, err)
	assert.Empty(t, subject)
}

func TestResolver_ExpiredBearerFallsThrough(t *testing.T) {
	codec := NewTokenCodec("test-secret")
	users := new(MockUserRepository)
	sessions := new(MockSessionRepository)

	expired, err := codec.Mint("user-a", time.Now().Add(-time.Minute))
	assert.NoError(t, err)

	sessions.On("FindByID", mock.Anything, "session-1").Return(&model.Session{
		ID:        "session-1",
		UserID:    "user-a",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	resolver := NewResolver(codec, users, sessions, nil)
	subject, err := resolver.Resolve(context.Background(), Credentials{
		Bearer:        expired,
		SessionCookie: "session-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "user-a", subject)
	users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
