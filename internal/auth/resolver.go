package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"auratask/internal/cache"
	"auratask/internal/errors"
	"auratask/internal/repository"
)

// subjectContextKey is where the middleware stores the resolved subject id.
const subjectContextKey = "auth.subject"

// userCacheTTL bounds how long a positive user lookup is reused.
const userCacheTTL = 30 * time.Second

// Credentials carries the raw values of the three credential channels.
// Any of them may be empty.
type Credentials struct {
	Bearer        string // Authorization: Bearer <token>
	TokenCookie   string // auth-token cookie (signed token)
	SessionCookie string // better-auth.session_token cookie (opaque id)
}

// CredentialsFromRequest extracts the credential channels from a request.
func CredentialsFromRequest(req *http.Request) Credentials {
	var creds Credentials
	if h := req.Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		creds.Bearer = strings.TrimPrefix(h, "Bearer ")
	}
	if ck, err := req.Cookie(TokenCookieName); err == nil {
		creds.TokenCookie = ck.Value
	}
	if ck, err := req.Cookie(SessionCookieName); err == nil {
		creds.SessionCookie = ck.Value
	}
	return creds
}

// Resolver turns request credentials into an authenticated subject id.
//
// Self-contained signed tokens are tried before the store-backed session
// cookie: they are cheap to verify and need no session row, while the
// session lookup stays the authoritative, revocable fallback.
type Resolver struct {
	codec    *TokenCodec
	users    repository.UserRepository
	sessions repository.SessionRepository
	cache    *cache.Client
}

// NewResolver creates a resolver over the given codec and stores.
func NewResolver(codec *TokenCodec, users repository.UserRepository, sessions repository.SessionRepository, cache *cache.Client) *Resolver {
	return &Resolver{
		codec:    codec,
		users:    users,
		sessions: sessions,
		cache:    cache,
	}
}

// Resolve tries each credential channel in precedence order and returns the
// first subject id found. A channel that fails for any reason simply yields
// nothing; only total failure across all channels is an error.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) (string, error) {
	attempts := []func(context.Context) string{
		func(ctx context.Context) string { return r.fromSignedToken(ctx, creds.Bearer) },
		func(ctx context.Context) string { return r.fromSignedToken(ctx, creds.TokenCookie) },
		func(ctx context.Context) string { return r.fromStoredSession(ctx, creds.SessionCookie) },
	}
	for _, attempt := range attempts {
		if subject := attempt(ctx); subject != "" {
			return subject, nil
		}
	}
	return "", errors.ErrUnauthenticated
}

// fromSignedToken decodes a structurally valid signed token and confirms the
// embedded subject still exists in the store.
func (r *Resolver) fromSignedToken(ctx context.Context, raw string) string {
	if raw == "" || !IsCompact(raw) {
		return ""
	}
	claims, err := r.codec.Decode(raw)
	if err != nil {
		return ""
	}
	if !r.userExists(ctx, claims.Subject) {
		return ""
	}
	return claims.Subject
}

// fromStoredSession looks up a server-session row by its opaque id.
// An expired row yields nothing; there is no weaker channel to fall to.
func (r *Resolver) fromStoredSession(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	session, err := r.sessions.FindByID(ctx, id)
	if err != nil {
		return ""
	}
	if session.Expired(time.Now()) {
		return ""
	}
	return session.UserID
}

func (r *Resolver) userExists(ctx context.Context, id string) bool {
	key := "auth:user:" + id
	if data, _ := r.cache.Get(ctx, key); data != nil {
		return true
	}
	user, err := r.users.FindByID(ctx, id)
	if err != nil || user == nil {
		return false
	}
	_ = r.cache.Set(ctx, key, []byte("1"), userCacheTTL)
	return true
}

// Middleware resolves the request identity and stores it in the echo context.
// Requests with no resolvable identity are rejected with 401.
func (r *Resolver) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			creds := CredentialsFromRequest(c.Request())
			subject, err := r.Resolve(c.Request().Context(), creds)
			if err != nil {
				httpErr := errors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			c.Set(subjectContextKey, subject)
			return next(c)
		}
	}
}

// SubjectID returns the subject id stored by Middleware, or "" when the
// request was not resolved.
func SubjectID(c echo.Context) string {
	subject, _ := c.Get(subjectContextKey).(string)
	return subject
}
