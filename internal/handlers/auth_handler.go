package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"magizhquiz/internal/security"
	"magizhquiz/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService  *service.AuthService
	emailService *service.EmailService
	tokens       *security.TokenManager
	frontendURL  string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, emailService *service.EmailService, tokens *security.TokenManager, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		emailService: emailService,
		tokens:       tokens,
		frontendURL:  frontendURL,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := h.emailService.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}()

	h.setToken(w, r, token)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  user,
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.setToken(w, r, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so logout
// just clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, security.AccessTokenCookie))
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type completeSignupRequest struct {
	Username string `json:"username"`
}

// CompleteSignup handles POST /api/auth/complete-signup
func (h *AuthHandler) CompleteSignup(w http.ResponseWriter, r *http.Request) {
	var req completeSignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.CompleteSignup(UserIDFromContext(r.Context()), req.Username)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DemoLogin handles POST /api/auth/demo-login
func (h *AuthHandler) DemoLogin(w http.ResponseWriter, r *http.Request) {
	user, token, err := h.authService.DemoLogin()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.setToken(w, r, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

// GoogleStart handles GET /api/auth/google/start by redirecting to the
// Google consent screen
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	url, err := h.authService.GoogleAuthURL()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /api/auth/google/callback. On success the
// token cookie is set and the browser is sent back to the frontend.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, h.frontendURL+"/login?error=oauth_cancelled", http.StatusTemporaryRedirect)
		return
	}

	user, token, err := h.authService.GoogleCallback(r.Context(), state, code)
	if err != nil {
		log.Printf("Google callback failed: %v", err)
		http.Redirect(w, r, h.frontendURL+"/login?error=oauth_failed", http.StatusTemporaryRedirect)
		return
	}

	h.setToken(w, r, token)

	dest := h.frontendURL + "/"
	if !user.UsernameSet {
		dest = h.frontendURL + "/complete-signup"
	}
	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) setToken(w http.ResponseWriter, r *http.Request, token string) {
	expires := time.Now().Add(h.tokens.Duration())
	http.SetCookie(w, security.CreateTokenCookie(r, token, expires))
}
