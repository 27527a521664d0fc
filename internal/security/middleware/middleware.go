package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yourorg/campusportal/internal/domain"
	"github.com/yourorg/campusportal/internal/observability/metrics"
	"github.com/yourorg/campusportal/internal/security/auth"
	"github.com/yourorg/campusportal/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// TokenCookieName is the cookie the login handler sets. The cookie and the
// Authorization header are two entry points into the same verification
// routine; there is no separate cookie pathway.
const TokenCookieName = "token"

// Authenticator resolves the caller's identity for protected routes.
type Authenticator struct {
	tokens      *auth.TokenManager
	revocations auth.RevocationStore
	logger      *slog.Logger
}

func NewAuthenticator(tm *auth.TokenManager, revocations auth.RevocationStore, log *slog.Logger) *Authenticator {
	if log == nil {
		log = slog.Default()
	}
	return &Authenticator{tokens: tm, revocations: revocations, logger: log}
}

// resolveToken extracts the raw token from the bearer header, falling back
// to the auth cookie.
func resolveToken(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		token, err := auth.ExtractToken(authHeader)
		if err != nil {
			return "", false
		}
		return token, true
	}
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// RequireAuth rejects requests without a valid token and attaches the
// verified claims to the request context.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := resolveToken(r)
		if !ok {
			metrics.ObserveAuthFailure("missing_token")
			unauthorized(w, "no token, authorization denied")
			return
		}

		claims, err := a.tokens.Verify(tokenString)
		if err != nil {
			metrics.ObserveAuthFailure("invalid_token")
			a.logger.Debug("token verification failed", slog.String("error", err.Error()))
			unauthorized(w, "token is not valid")
			return
		}

		if a.revocations != nil {
			revoked, err := a.revocations.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				// Fail closed: an unverifiable token never passes.
				metrics.ObserveAuthFailure("revocation_check")
				a.logger.Error("revocation check failed", slog.String("error", err.Error()))
				unauthorized(w, "token is not valid")
				return
			}
			if revoked {
				metrics.ObserveAuthFailure("revoked_token")
				unauthorized(w, "token has been revoked")
				return
			}
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin layers the elevated-role gate on top of RequireAuth.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaimsFromContext(r.Context())
		if claims == nil || claims.Role != domain.RoleAdmin {
			forbidden(w, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RateLimitMiddleware limits authenticated requests per user. Requests
// without resolved claims (public routes) pass through.
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				userID = claims.UserID
			}

			if !limiter.Allow(userID) {
				log.Warn("rate limit exceeded", slog.String("user_id", userID))
				http.Error(w, `{"message":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetClaimsFromContext returns the verified claims, or nil outside
// authenticated routes.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, `{"message":"`+msg+`"}`, http.StatusUnauthorized)
}

func forbidden(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, `{"message":"`+msg+`"}`, http.StatusForbidden)
}
