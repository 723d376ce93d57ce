package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"magizhquiz/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// UserIDContextKey carries the authenticated user's ID
const UserIDContextKey ContextKey = "userID"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens      *security.TokenManager
	rateLimiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.TokenManager, rateLimiter *security.RateLimiter) *Middleware {
	return &Middleware{
		tokens:      tokens,
		rateLimiter: rateLimiter,
	}
}

// tokenFromRequest reads the access token from the Authorization header
// or the cookie, in that order
func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return token
		}
	}
	if cookie, err := r.Cookie(security.AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth rejects requests without a valid access token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		userID, err := m.tokens.Verify(token)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, security.AccessTokenCookie))
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// OptionalAuth attaches the user ID when a valid token is present but
// lets anonymous requests through
func (m *Middleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := tokenFromRequest(r); token != "" {
			if userID, err := m.tokens.Verify(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), UserIDContextKey, userID))
			}
		}
		next(w, r)
	}
}

// RateLimit rejects requests from clients exceeding the limiter's budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}

// UserIDFromContext returns the authenticated user's ID, or 0 when the
// request is anonymous
func UserIDFromContext(ctx context.Context) int64 {
	if userID, ok := ctx.Value(UserIDContextKey).(int64); ok {
		return userID
	}
	return 0
}

// WithRequestLogging logs every request with its status and duration
func WithRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s -> %d (%s) from %s",
			r.Method, r.URL.RequestURI(), rec.status,
			time.Since(start).Truncate(time.Millisecond), security.GetClientIP(r))
	})
}

// WithCORS handles cross-origin requests from the frontend
func WithCORS(frontendOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", frontendOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
