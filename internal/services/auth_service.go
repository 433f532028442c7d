package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/foodieshare/foodieshare-backend/internal/models"
	"github.com/foodieshare/foodieshare-backend/pkg/utils"
)

const (
	LogoutMessage         = "Logged out successfully"
	ForgotPasswordMessage = "OTP sent successfully (mocked)"
)

// dummyHash keeps login timing similar whether or not the email exists.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z1Z4CJvPZ1Qe/lK3eOZ7c3y6"

// ResetNotifier delivers a password reset link out of band.
type ResetNotifier interface {
	SendResetLink(ctx context.Context, email, link string) error
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// AuthResult is returned by every operation that authenticates a user.
type AuthResult struct {
	Token string
	User  models.AccountView
}

type AuthService struct {
	credentials *CredentialStore
	users       UserRepository
	tokens      *TokenIssuer
	notifier    ResetNotifier
	resetURL    string
	logger      *slog.Logger
}

// NewAuthService wires the auth flows. notifier may be nil, in which case
// ForgotPassword only acknowledges.
func NewAuthService(credentials *CredentialStore, users UserRepository, tokens *TokenIssuer, notifier ResetNotifier, resetURL string, logger *slog.Logger) *AuthService {
	return &AuthService{
		credentials: credentials,
		users:       users,
		tokens:      tokens,
		notifier:    notifier,
		resetURL:    resetURL,
		logger:      logger,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	if in.Email == "" || in.Password == "" {
		return nil, ErrMissingCredentials
	}
	if err := utils.ValidateEmail(in.Email); err != nil {
		return nil, validationError(err.Error())
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return nil, validationError(err.Error())
	}

	user, err := s.credentials.Create(ctx, in.Email, in.Password, in.DisplayName)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "uid", user.UID)
	return s.authenticate(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.credentials.FindByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			_, _ = utils.VerifyPassword(password, dummyHash)
			return nil, ErrUserNotFound
		}
		return nil, unexpected("Login failed", err)
	}

	if !s.credentials.VerifyPassword(user, password) {
		return nil, ErrInvalidCredentials
	}
	return s.authenticate(user)
}

// CurrentUser loads the account of an already authenticated caller.
func (s *AuthService) CurrentUser(ctx context.Context, uid string) (*models.AccountView, error) {
	user, err := s.users.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, unexpected("Failed to get user profile", err)
	}
	view := user.Account()
	return &view, nil
}

// Logout is an acknowledgement only. Tokens are stateless and are not revoked.
func (s *AuthService) Logout() string {
	return LogoutMessage
}

// ForgotPassword always answers with the same acknowledgement. When a notifier
// is configured and the account exists, a reset link is issued and handed to it.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", validationError("Please provide an email")
	}
	if s.notifier == nil {
		return ForgotPasswordMessage, nil
	}

	user, err := s.credentials.FindByEmail(ctx, email, false)
	if err != nil {
		if !errors.Is(err, ErrDocumentNotFound) {
			s.logger.Error("forgot password lookup failed", "error", err)
		}
		return ForgotPasswordMessage, nil
	}

	token, err := s.credentials.IssueResetToken(ctx, user)
	if err != nil {
		s.logger.Error("failed to issue reset token", "uid", user.UID, "error", err)
		return ForgotPasswordMessage, nil
	}
	if err := s.notifier.SendResetLink(ctx, user.Email, s.resetURL+token); err != nil {
		s.logger.Error("failed to deliver reset link", "uid", user.UID, "error", err)
	}
	return ForgotPasswordMessage, nil
}

// ResetPassword consumes a reset token and signs the user in with the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (*AuthResult, error) {
	if password == "" {
		return nil, validationError("Please provide a new password")
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, validationError(err.Error())
	}

	user, err := s.credentials.ConsumeResetToken(ctx, token, password)
	if err != nil {
		return nil, err
	}
	s.logger.Info("password reset", "uid", user.UID)
	return s.authenticate(user)
}

func (s *AuthService) authenticate(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.UID, user.Email)
	if err != nil {
		return nil, unexpected("Server error", err)
	}
	return &AuthResult{Token: token, User: user.Account()}, nil
}
