package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"magizhquiz/internal/models"
	"magizhquiz/internal/repository"
	"magizhquiz/internal/security"
	"magizhquiz/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUsernameAlreadySet = errors.New("username already set")
	ErrOAuthNotConfigured = errors.New("google sign-in is not configured")
	ErrOAuthStateInvalid  = errors.New("invalid oauth state")
	ErrDemoLoginDisabled  = errors.New("demo login is disabled")
)

const (
	demoEmail = "demo@magizhquiz.app"
	demoName  = "Demo Learner"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo    *repository.UserRepository
	tokens      *security.TokenManager
	stateSigner *security.StateSigner
	oauthConfig *oauth2.Config
	demoEnabled bool
}

// NewAuthService creates a new auth service. The oauth config may be nil
// when Google sign-in is not configured.
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenManager, stateSigner *security.StateSigner, oauthConfig *oauth2.Config, demoEnabled bool) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		tokens:      tokens,
		stateSigner: stateSigner,
		oauthConfig: oauthConfig,
		demoEnabled: demoEnabled,
	}
}

// NewGoogleOAuthConfig builds the oauth2 config for Google sign-in.
// Returns nil when the client credentials are missing.
func NewGoogleOAuthConfig(clientID, clientSecret, redirectBase string) *oauth2.Config {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  strings.TrimSuffix(redirectBase, "/") + "/api/auth/google/callback",
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

// Register creates a new password-based account and returns the user with
// a signed access token
func (s *AuthService) Register(email, password, name string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, "", err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, "", err
	}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, passwordHash, name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates a password-based account
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, "", ErrInvalidCredentials
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// CompleteSignup assigns the chosen username. Allowed once per account.
func (s *AuthService) CompleteSignup(userID int64, username string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if user.UsernameSet {
		return nil, ErrUsernameAlreadySet
	}

	taken, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken != nil && taken.ID != userID {
		return nil, ErrUsernameTaken
	}

	if err := s.userRepo.SetUsername(userID, username); err != nil {
		return nil, err
	}
	return s.userRepo.GetUserByID(userID)
}

// GetUser returns the user for an authenticated request
func (s *AuthService) GetUser(userID int64) (*models.User, error) {
	return s.userRepo.GetUserByID(userID)
}

// DemoLogin signs in the shared demo account, creating it on first use
func (s *AuthService) DemoLogin() (*models.User, string, error) {
	if !s.demoEnabled {
		return nil, "", ErrDemoLoginDisabled
	}

	user, err := s.userRepo.GetUserByEmail(demoEmail)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up demo user: %w", err)
	}
	if user == nil {
		// Random password so the demo account cannot be logged into directly
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, "", fmt.Errorf("failed to generate demo password: %w", err)
		}
		hash, err := security.HashPassword(hex.EncodeToString(buf))
		if err != nil {
			return nil, "", err
		}
		user, err = s.userRepo.CreateUser(demoEmail, hash, demoName)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create demo user: %w", err)
		}
		if err := s.userRepo.SetUsername(user.ID, "demo"); err != nil {
			return nil, "", err
		}
		user, err = s.userRepo.GetUserByID(user.ID)
		if err != nil {
			return nil, "", err
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GoogleAuthURL builds the consent-screen URL with a signed state value
func (s *AuthService) GoogleAuthURL() (string, error) {
	if s.oauthConfig == nil {
		return "", ErrOAuthNotConfigured
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate oauth nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)
	sig, err := s.stateSigner.Sign(nonce)
	if err != nil {
		return "", err
	}
	state := nonce + "." + sig

	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

type googleProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleCallback exchanges the authorization code, fetches the Google
// profile and signs the user in, creating the account on first login.
// Accounts are linked by Google subject first, then by email.
func (s *AuthService) GoogleCallback(ctx context.Context, state, code string) (*models.User, string, error) {
	if s.oauthConfig == nil {
		return nil, "", ErrOAuthNotConfigured
	}

	nonce, sig, ok := strings.Cut(state, ".")
	if !ok || !s.stateSigner.Validate(nonce, sig) {
		return nil, "", ErrOAuthStateInvalid
	}

	oauthToken, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	client := s.oauthConfig.Client(ctx, oauthToken)
	resp, err := client.Get("https://openidconnect.googleapis.com/v1/userinfo")
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch google profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, "", fmt.Errorf("google profile request returned status %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, "", fmt.Errorf("failed to decode google profile: %w", err)
	}
	if profile.Sub == "" || profile.Email == "" {
		return nil, "", fmt.Errorf("google profile is missing required fields")
	}

	user, err := s.userRepo.GetUserByGoogleID(profile.Sub)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		email := strings.ToLower(profile.Email)
		user, err = s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, "", fmt.Errorf("failed to look up user by email: %w", err)
		}
		if user == nil {
			name := profile.Name
			if name == "" {
				name = email
			}
			user, err = s.userRepo.CreateOAuthUser(email, profile.Sub, name, profile.Picture)
			if err != nil {
				return nil, "", fmt.Errorf("failed to create oauth user: %w", err)
			}
		} else {
			// existing password account: persist the link so the next
			// Google login resolves by subject
			if err := s.userRepo.LinkGoogleID(user.ID, profile.Sub); err != nil {
				return nil, "", fmt.Errorf("failed to link google account: %w", err)
			}
			user.GoogleID = profile.Sub
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
