package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"auratask/internal/auth"
	apperrors "auratask/internal/errors"
	"auratask/internal/model"
	"auratask/internal/service"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, email, password, name string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) GetSession(ctx context.Context, sessionID string) (*model.User, *model.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.User), args.Get(1).(*model.Session), args.Error(2)
}

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func authResult() *service.AuthResult {
	now := time.Now()
	return &service.AuthResult{
		User: &model.User{
			ID:        "user-123",
			Email:     "test@example.com",
			Name:      "Test User",
			CreatedAt: now,
			UpdatedAt: now,
		},
		Session: &model.Session{
			ID:        "session-123",
			UserID:    "user-123",
			ExpiresAt: now.Add(model.SessionLifetime),
			CreatedAt: now,
		},
		Token: "header.payload.signature",
	}
}

func TestAuthHandler_SignUpSetsCookies(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("SignUp", mock.Anything, "test@example.com", "password123", "Test User").
		Return(authResult(), nil)

	c, rec := newTestContext(http.MethodPost, "/api/auth/sign-up/email",
		`{"email":"test@example.com","password":"password123","name":"Test User"}`)

	h := NewAuthHandler(svc)
	assert.NoError(t, h.SignUp(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	byName := make(map[string]*http.Cookie, len(cookies))
	for _, ck := range cookies {
		byName[ck.Name] = ck
	}

	sessionCookie := byName[auth.SessionCookieName]
	assert.NotNil(t, sessionCookie)
	assert.Equal(t, "session-123", sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly)
	assert.Equal(t, "/", sessionCookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, sessionCookie.SameSite)
	assert.Equal(t, 7*24*3600, sessionCookie.MaxAge)

	tokenCookie := byName[auth.TokenCookieName]
	assert.NotNil(t, tokenCookie)
	assert.Equal(t, "header.payload.signature", tokenCookie.Value)
	assert.False(t, tokenCookie.HttpOnly)

	var resp AuthResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user-123", resp.User.ID)
	assert.Equal(t, "session-123", resp.Session.ID)
	assert.Equal(t, "header.payload.signature", resp.Token)
}

func TestAuthHandler_SignUpDuplicateEmail(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("SignUp", mock.Anything, "existing@example.com", "password123", "").
		Return(nil, service.ErrDuplicateEmail)

	c, _ := newTestContext(http.MethodPost, "/api/auth/sign-up/email",
		`{"email":"existing@example.com","password":"password123"}`)

	h := NewAuthHandler(svc)
	err := h.SignUp(c)

	var httpErr *echo.HTTPError
	assert.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestAuthHandler_SignUpValidation(t *testing.T) {
	svc := new(MockAuthService)
	c, _ := newTestContext(http.MethodPost, "/api/auth/sign-up/email",
		`{"email":"not-an-email","password":"password123"}`)

	h := NewAuthHandler(svc)
	err := h.SignUp(c)

	var httpErr *echo.HTTPError
	assert.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	svc.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_SignInInvalidCredentials(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("SignIn", mock.Anything, "test@example.com", "wrong").
		Return(nil, service.ErrInvalidCredentials)

	c, _ := newTestContext(http.MethodPost, "/api/auth/sign-in/email",
		`{"email":"test@example.com","password":"wrong"}`)

	h := NewAuthHandler(svc)
	err := h.SignIn(c)

	var httpErr *echo.HTTPError
	assert.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestAuthHandler_GetSessionUsesSessionCookieOnly(t *testing.T) {
	svc := new(MockAuthService)
	result := authResult()
	svc.On("GetSession", mock.Anything, "session-123").
		Return(result.User, result.Session, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/get-session", nil)
	// The bearer header must be ignored by this endpoint.
	req.Header.Set(echo.HeaderAuthorization, "Bearer some.other.token")
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "session-123"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewAuthHandler(svc)
	assert.NoError(t, h.GetSession(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp SessionResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user-123", resp.User.ID)
	svc.AssertCalled(t, "GetSession", mock.Anything, "session-123")
}

func TestAuthHandler_GetSessionWithoutCookie(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("GetSession", mock.Anything, "").
		Return(nil, nil, apperrors.ErrUnauthenticated)

	c, _ := newTestContext(http.MethodGet, "/api/auth/get-session", "")

	h := NewAuthHandler(svc)
	err := h.GetSession(c)

	var httpErr *echo.HTTPError
	assert.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
