package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"alf-logistics/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// Lockout heuristic for the login form. This is a UX-level deterrent against
// casual brute forcing; the identity provider applies its own server-side
// throttling regardless.
const (
	lockoutThreshold = 5
	lockoutWindow    = 5 * time.Minute
	lockoutDuration  = 15 * time.Minute
)

const sessionTTL = 24 * time.Hour

// AdminChecker reports whether a signed-in user is on the admin allow-list.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// ServiceInterface defines the contract for the auth service.
type ServiceInterface interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

type attemptState struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
}

// Service signs admins in against the Firebase identity provider and mints
// the session token consumed by the admin middleware.
type Service struct {
	admins     AdminChecker
	logger     *zap.Logger
	httpClient *http.Client
	endpoint   string
	apiKey     string
	jwtSecret  []byte
	now        func() time.Time

	mu       sync.Mutex
	attempts map[string]*attemptState
}

// NewService creates a new auth service. apiKey is the Firebase web API key.
func NewService(admins AdminChecker, logger *zap.Logger, apiKey, jwtSecret string) *Service {
	return &Service{
		admins:     admins,
		logger:     logger,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   signInEndpoint,
		apiKey:     apiKey,
		jwtSecret:  []byte(jwtSecret),
		now:        time.Now,
		attempts:   make(map[string]*attemptState),
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// mapSignInError translates the identity provider's error codes into the
// sentinel errors handlers know how to present.
func mapSignInError(code string) error {
	switch {
	case code == "EMAIL_NOT_FOUND", code == "INVALID_PASSWORD",
		strings.HasPrefix(code, "INVALID_LOGIN_CREDENTIALS"):
		return models.ErrInvalidCredentials
	case code == "USER_DISABLED":
		return models.ErrAccountDisabled
	case strings.HasPrefix(code, "TOO_MANY_ATTEMPTS_TRY_LATER"):
		return models.ErrTooManyAttempts
	default:
		return fmt.Errorf("sign-in rejected: %s", code)
	}
}

func (s *Service) signIn(ctx context.Context, email, password string) (*signInResponse, error) {
	payload, err := json.Marshal(signInRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, fmt.Errorf("service.signIn: %w", err)
	}

	url := s.endpoint + "?key=" + s.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("service.signIn: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, models.ErrAuthUnavailable
	}
	defer resp.Body.Close()

	var body signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, models.ErrAuthUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		return nil, mapSignInError(body.Error.Message)
	}
	return &body, nil
}

func lockoutKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// checkLockout returns ErrAccountLocked while a lock is in force. The
// failure window resets once it elapses.
func (s *Service) checkLockout(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.attempts[lockoutKey(email)]
	if !ok {
		return nil
	}
	now := s.now()
	if now.Before(state.lockedUntil) {
		return models.ErrAccountLocked
	}
	if now.Sub(state.windowStart) > lockoutWindow {
		delete(s.attempts, lockoutKey(email))
	}
	return nil
}

func (s *Service) recordFailure(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := lockoutKey(email)
	now := s.now()
	state, ok := s.attempts[key]
	if !ok || now.Sub(state.windowStart) > lockoutWindow {
		state = &attemptState{windowStart: now}
		s.attempts[key] = state
	}
	state.failures++
	if state.failures >= lockoutThreshold {
		state.lockedUntil = now.Add(lockoutDuration)
		s.logger.Warn("login lockout engaged",
			zap.String("email", key), zap.Time("until", state.lockedUntil))
	}
}

func (s *Service) clearFailures(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, lockoutKey(email))
}

func (s *Service) mintToken(userID, email string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"adm":   true,
		"iat":   now.Unix(),
		"exp":   now.Add(sessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("service.mintToken: %w", err)
	}
	return signed, nil
}

// Login authenticates an admin. Non-admin accounts are rejected even when
// their credentials are valid: the admin allow-list is the authority, not
// the identity provider.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.checkLockout(req.Email); err != nil {
		return nil, err
	}

	signedIn, err := s.signIn(ctx, req.Email, req.Password)
	if err != nil {
		if err == models.ErrInvalidCredentials {
			s.recordFailure(req.Email)
		}
		return nil, err
	}

	isAdmin, err := s.admins.IsAdmin(ctx, signedIn.LocalID)
	if err != nil {
		return nil, fmt.Errorf("service.Login: admin check: %w", err)
	}
	if !isAdmin {
		s.logger.Warn("non-admin sign-in rejected", zap.String("userID", signedIn.LocalID))
		return nil, models.ErrForbidden
	}

	s.clearFailures(req.Email)

	token, err := s.mintToken(signedIn.LocalID, signedIn.Email)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{
		Token:   token,
		UserID:  signedIn.LocalID,
		Email:   signedIn.Email,
		IsAdmin: true,
	}, nil
}
