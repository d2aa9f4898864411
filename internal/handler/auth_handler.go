package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"auratask/internal/auth"
	"auratask/internal/errors"
	"auratask/internal/model"
	"auratask/internal/service"
)

// cookieMaxAge matches the session lifetime (7 days), in seconds.
const cookieMaxAge = int(model.SessionLifetime / time.Second)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUpRequest represents a signup request.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"omitempty,max=255"`
}

// SignInRequest represents a signin request.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserPayload is the better-auth user projection the frontend consumes.
type UserPayload struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EmailVerified *bool     `json:"emailVerified"`
	Image         *string   `json:"image"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SessionPayload is the better-auth session projection.
type SessionPayload struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	IPAddress *string   `json:"ipAddress"`
	UserAgent *string   `json:"userAgent"`
}

// AuthResponse represents a signup/signin response.
type AuthResponse struct {
	User    UserPayload    `json:"user"`
	Session SessionPayload `json:"session"`
	Token   string         `json:"token"`
}

// SessionResponse represents a get-session response.
type SessionResponse struct {
	User    UserPayload    `json:"user"`
	Session SessionPayload `json:"session"`
}

// SignUp godoc
// @Summary Sign up with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "Signup data"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/sign-up/email [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	result, err := h.authService.SignUp(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if err == service.ErrDuplicateEmail {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: err.Error(),
				Code:  "DUPLICATE_EMAIL",
			})
		}
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	setAuthCookies(c, result.Session, result.Token)
	return c.JSON(http.StatusOK, authResponse(result))
}

// SignIn godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Signin credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/sign-in/email [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	result, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: err.Error(),
				Code:  "INVALID_CREDENTIALS",
			})
		}
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	setAuthCookies(c, result.Session, result.Token)
	return c.JSON(http.StatusOK, authResponse(result))
}

// GetSession godoc
// @Summary Get the current session
// @Tags auth
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/get-session [get]
func (h *AuthHandler) GetSession(c echo.Context) error {
	// Only the server-session cookie counts here; bearer tokens and the
	// short-lived token cookie are not consulted.
	var sessionID string
	if ck, err := c.Cookie(auth.SessionCookieName); err == nil {
		sessionID = ck.Value
	}

	user, session, err := h.authService.GetSession(c.Request().Context(), sessionID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, SessionResponse{
		User:    userPayload(user),
		Session: sessionPayload(session),
	})
}

// setAuthCookies sets the two credential cookies: the httpOnly opaque session
// id for browser auth, and the signed token the frontend reads for API calls.
func setAuthCookies(c echo.Context, session *model.Session, token string) {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}

func authResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		User:    userPayload(result.User),
		Session: sessionPayload(result.Session),
		Token:   result.Token,
	}
}

func userPayload(user *model.User) UserPayload {
	return UserPayload{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func sessionPayload(session *model.Session) SessionPayload {
	return SessionPayload{
		ID:        session.ID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.CreatedAt,
	}
}
