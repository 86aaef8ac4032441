package shop

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/swadbest/shopctl/internal/session"
)

// AuthService drives the account lifecycle endpoints
type AuthService struct {
	gw      Gateway
	session SessionManager
	logger  *slog.Logger
}

// NewAuthService creates an auth service that stores credentials in sess
func NewAuthService(gw Gateway, sess SessionManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{gw: gw, session: sess, logger: logger}
}

// RegisterRequest is the sign-up payload
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User         *session.User `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	Message      string        `json:"message,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login signs in and stores the returned session
func (s *AuthService) Login(ctx context.Context, email, password string) (*session.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	var resp authResponse
	if err := s.gw.Post(ctx, "/api/users/login", credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return s.establish(resp)
}

// Register creates an account. When the backend signs the user in directly the
// session is stored and the user returned; otherwise the user is nil.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*session.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("name, email and password are required")
	}

	var resp authResponse
	if err := s.gw.Post(ctx, "/api/users/register", req, &resp); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, nil
	}
	return s.establish(resp)
}

// ForgotPassword asks the backend to send a one-time code
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	if err := s.gw.Post(ctx, "/api/users/forgot-password", map[string]string{"email": email}, &resp); err != nil {
		return "", fmt.Errorf("password reset request failed: %w", err)
	}
	return resp.Message, nil
}

// VerifyOTP checks the one-time code sent by ForgotPassword
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	body := map[string]string{"email": email, "otp": otp}
	var resp messageResponse
	if err := s.gw.Post(ctx, "/api/users/verify-otp", body, &resp); err != nil {
		return "", fmt.Errorf("code verification failed: %w", err)
	}
	return resp.Message, nil
}

// ResetPassword sets a new password using a verified code
func (s *AuthService) ResetPassword(ctx context.Context, email, otp, password string) (string, error) {
	body := map[string]string{"email": email, "otp": otp, "password": password}
	var resp messageResponse
	if err := s.gw.Post(ctx, "/api/users/reset-password", body, &resp); err != nil {
		return "", fmt.Errorf("password reset failed: %w", err)
	}
	return resp.Message, nil
}

// Logout drops the local session. The backend keeps no session to revoke.
func (s *AuthService) Logout() error {
	return s.session.Logout()
}

func (s *AuthService) establish(resp authResponse) (*session.User, error) {
	if resp.User == nil || resp.AccessToken == "" {
		return nil, fmt.Errorf("login response is missing the user or token")
	}
	if err := s.session.Login(*resp.User, resp.AccessToken, resp.RefreshToken); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	s.logger.Info("signed in", "user_id", resp.User.ID)
	return s.session.User(), nil
}
