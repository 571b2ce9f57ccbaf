package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/algonet/backend/internal/auth"
	"github.com/algonet/backend/internal/domain"
	apperrors "github.com/algonet/backend/internal/errors"
	"github.com/algonet/backend/internal/mail"
	"github.com/algonet/backend/internal/pagination"
	"github.com/algonet/backend/internal/repository"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// resetCodeTTL is how long a password reset code stays valid.
const resetCodeTTL = 15 * time.Minute

// UserService implements the business logic for account and auth operations.
type UserService struct {
	users  repository.UserRepository
	tokens *auth.Manager
	sender mail.Sender
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, tokens *auth.Manager, sender mail.Sender, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
		sender: sender,
		logger: logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string
	Password string
}

// Register creates a new user account with a hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login verifies the credentials and issues an access/refresh token pair.
// An unknown email and a wrong password return the same error.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*domain.User, *auth.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.InvalidCredentials()
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, nil, apperrors.InvalidCredentials()
	}

	if user.Disabled {
		return nil, nil, apperrors.UserDisabled()
	}

	access, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("issue refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.Int64("user_id", user.ID))

	return user, &auth.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh mints a new access token from a valid refresh token. Access
// tokens are rejected here, so a leaked access token cannot renew itself.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", apperrors.InvalidToken()
	}

	userID, err := auth.SubjectID(claims)
	if err != nil {
		return "", apperrors.InvalidToken()
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.UserNotFound()
		}
		return "", err
	}

	if user.Disabled {
		return "", apperrors.UserDisabled()
	}

	access, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	return access, nil
}

// GetUser retrieves a user for an authenticated request. A token whose
// subject no longer exists maps to USER_NOT_FOUND.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.UserNotFound()
		}
		return nil, err
	}
	return user, nil
}

// ForgotPassword generates a reset code, stores it with a timestamp and
// emails it to the user. Delivery failures are logged but do not fail
// the request; the stored code remains usable once mail recovers.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.New(http.StatusBadRequest, apperrors.CodeUserNotFound, "user not found")
		}
		return err
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}

	now := time.Now().UTC()
	user.SecurityCode = &code
	user.SecurityCodeCreatedAt = &now

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Password Reset Code",
		Body:    fmt.Sprintf("Your password reset code is: %s\nThe code is valid for 15 minutes.", code),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to send reset code email",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset requested", slog.Int64("user_id", user.ID))

	return nil
}

// ResetPassword consumes a reset code and sets the new password. The code
// is compared before its age is checked; an expired code is cleared so
// the next attempt reports INVALID_CODE rather than EXPIRED_CODE.
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidRequest, "invalid request")
		}
		return err
	}

	if user.SecurityCode == nil || *user.SecurityCode != code {
		return apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidCode, "code is invalid or has expired")
	}

	if user.SecurityCodeCreatedAt == nil || time.Now().UTC().After(user.SecurityCodeCreatedAt.Add(resetCodeTTL)) {
		user.SecurityCode = nil
		user.SecurityCodeCreatedAt = nil
		if err := s.users.Update(ctx, user); err != nil {
			return err
		}
		return apperrors.New(http.StatusBadRequest, apperrors.CodeExpiredCode, "code has expired, request a new one")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.SecurityCode = nil
	user.SecurityCodeCreatedAt = nil

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset completed", slog.Int64("user_id", user.ID))

	return nil
}

// ListUsers returns the non-admin users at the given window with the
// total non-admin count.
func (s *UserService) ListUsers(ctx context.Context, w pagination.Window) ([]domain.User, int64, error) {
	return s.users.List(ctx, w)
}

// DeleteUser removes an account permanently. Graphs owned by the user
// are removed by the storage cascade.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.New(http.StatusNotFound, apperrors.CodeUserNotFound, "user not found")
		}
		return err
	}

	s.logger.InfoContext(ctx, "user deleted", slog.Int64("user_id", id))

	return nil
}

// SetDisabled flips the disabled flag on an account. A disabled user
// cannot log in or refresh tokens.
func (s *UserService) SetDisabled(ctx context.Context, id int64, disabled bool) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(http.StatusNotFound, apperrors.CodeUserNotFound, "user not found")
		}
		return nil, err
	}

	user.Disabled = disabled
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user disabled flag updated",
		slog.Int64("user_id", id),
		slog.Bool("disabled", disabled),
	)

	return user, nil
}

// UpdateFirstName changes the user's first name.
func (s *UserService) UpdateFirstName(ctx context.Context, id int64, firstName string) (*domain.User, error) {
	return s.updateName(ctx, id, func(u *domain.User) { u.FirstName = firstName })
}

// UpdateLastName changes the user's last name.
func (s *UserService) UpdateLastName(ctx context.Context, id int64, lastName string) (*domain.User, error) {
	return s.updateName(ctx, id, func(u *domain.User) { u.LastName = lastName })
}

func (s *UserService) updateName(ctx context.Context, id int64, apply func(*domain.User)) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(http.StatusNotFound, apperrors.CodeUserNotFound, "user not found")
		}
		return nil, err
	}

	apply(user)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// generateResetCode returns a random 6-digit code.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
