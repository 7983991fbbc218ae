package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/models"
	"github.com/ansaf01/fg-united/pkg/crypto"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
	"github.com/ansaf01/fg-united/pkg/metrics"
)

// AuthService authenticates accounts against the durable store. Session
// establishment is the caller's concern.
type AuthService struct {
	db *gorm.DB
}

// NewAuthService constructs an auth service.
func NewAuthService(db *gorm.DB) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	return &AuthService{db: db}, nil
}

// Login verifies a password credential. Accounts provisioned through OAuth
// only carry no password hash and fail as invalid credentials rather than
// revealing how they were created. Blocked accounts are refused with a
// distinct message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("find user: %w", err))
	}

	if !user.HasPassword() || !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.IsBlocked {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrAccountBlocked
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &user, nil
}

// AdminLogin verifies a password credential and additionally requires the
// admin role.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// LoginWithGoogle resolves a verified Google identity to an account. An
// existing account with the same email is linked by storing the Google
// subject; otherwise a password-less user is provisioned. Blocked accounts
// are refused.
func (s *AuthService) LoginWithGoogle(ctx context.Context, googleID, email, fullName string) (*models.User, error) {
	googleID = strings.TrimSpace(googleID)
	email = strings.TrimSpace(strings.ToLower(email))
	if googleID == "" || email == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("google_id = ? OR email = ?", googleID, email).
		First(&user).Error
	switch {
	case err == nil:
		if user.IsBlocked {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, apperrors.ErrAccountBlocked
		}
		if user.GoogleID == "" {
			if err := s.db.WithContext(ctx).
				Model(&user).
				Update("google_id", googleID).Error; err != nil {
				return nil, apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("link google account: %w", err))
			}
			user.GoogleID = googleID
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			FullName: strings.TrimSpace(fullName),
			Email:    email,
			GoogleID: googleID,
			Role:     models.RoleUser,
		}
		if user.FullName == "" {
			user.FullName = email
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			if isUniqueConstraintError(err) {
				// Concurrent provisioning for the same email; re-read the winner.
				return s.LoginWithGoogle(ctx, googleID, email, fullName)
			}
			return nil, apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("provision google user: %w", err))
		}
	default:
		return nil, apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("find user: %w", err))
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &user, nil
}
