package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/models"
	"github.com/ansaf01/fg-united/internal/session"
	"github.com/ansaf01/fg-united/pkg/crypto"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
	appmail "github.com/ansaf01/fg-united/pkg/mail"
	"github.com/ansaf01/fg-united/pkg/metrics"
)

// ResetOption customises the PasswordResetService.
type ResetOption func(*PasswordResetService)

// WithResetClock injects a custom time source.
func WithResetClock(clock func() time.Time) ResetOption {
	return func(s *PasswordResetService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithResetExpiry overrides the one-time code lifetime.
func WithResetExpiry(d time.Duration) ResetOption {
	return func(s *PasswordResetService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithResetCodeGenerator injects a custom code generator.
func WithResetCodeGenerator(gen func() (string, error)) ResetOption {
	return func(s *PasswordResetService) {
		if gen != nil {
			s.generateCode = gen
		}
	}
}

// PasswordResetService drives the forgot-password state machine: an emailed
// code is verified in-session before a new password may be committed. The
// durable store is untouched until Commit.
type PasswordResetService struct {
	db           *gorm.DB
	sessions     *session.Manager
	mailer       appmail.Mailer
	expiry       time.Duration
	now          func() time.Time
	generateCode func() (string, error)
}

// NewPasswordResetService constructs a reset service with the provided dependencies.
func NewPasswordResetService(db *gorm.DB, sessions *session.Manager, mailer appmail.Mailer, opts ...ResetOption) (*PasswordResetService, error) {
	if db == nil {
		return nil, errors.New("password reset service: db is required")
	}
	if sessions == nil {
		return nil, errors.New("password reset service: session manager is required")
	}

	service := &PasswordResetService{
		db:           db,
		sessions:     sessions,
		mailer:       mailer,
		expiry:       defaultOTPExpiry,
		now:          time.Now,
		generateCode: crypto.GenerateOTP,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Begin starts a reset for the given email. The caller-visible outcome is
// identical whether or not an account exists, so the endpoint cannot be used
// to enumerate registered addresses.
func (s *PasswordResetService) Begin(ctx context.Context, sessionID, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return apperrors.NewValidation(map[string]string{"email": "Email is required"})
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("find user: %w", err))
	}

	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("password reset service: generate code: %w", err)
	}

	reset := session.PasswordReset{
		Email:     email,
		OTP:       code,
		OTPExpiry: s.now().Add(s.expiry),
	}
	if err := s.sessions.SetPasswordReset(ctx, sessionID, reset); err != nil {
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("store reset state: %w", err))
	}

	if s.mailer != nil {
		message := appmail.Message{
			To:      []string{email},
			Subject: "Reset your FG United password",
			Body: fmt.Sprintf("Hi %s,\n\nYour FG United password reset code is %s. It expires in %d minutes.\n\nIf you did not request a reset, you can ignore this message.\n",
				user.FullName, code, int(s.expiry.Minutes())),
		}
		if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, appmail.ErrSMTPDisabled) {
			return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("send reset email: %w", err))
		}
	}

	metrics.OTPIssued.WithLabelValues("reset", "initial").Inc()
	return nil
}

// VerifyCode checks the emailed code and marks the reset session verified.
// The reset state survives an expired or mismatched code.
func (s *PasswordResetService) VerifyCode(ctx context.Context, sessionID, code string) error {
	reset, found, err := s.sessions.PasswordReset(ctx, sessionID)
	if err != nil {
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("load reset state: %w", err))
	}
	if !found {
		return apperrors.ErrSessionMissing
	}

	if s.now().After(reset.OTPExpiry) {
		metrics.OTPVerifications.WithLabelValues("reset", "expired").Inc()
		return apperrors.ErrOTPExpired
	}
	if strings.TrimSpace(code) != reset.OTP {
		metrics.OTPVerifications.WithLabelValues("reset", "mismatch").Inc()
		return apperrors.ErrOTPMismatch
	}

	reset.Verified = true
	if err := s.sessions.SetPasswordReset(ctx, sessionID, *reset); err != nil {
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("store reset state: %w", err))
	}

	metrics.OTPVerifications.WithLabelValues("reset", "success").Inc()
	return nil
}

// Commit persists the new password for a verified reset session and clears
// the reset state. If the account vanished since Begin, the state is retained
// so the caller can report the condition without restarting the flow.
func (s *PasswordResetService) Commit(ctx context.Context, sessionID, password, confirm string) error {
	reset, found, err := s.sessions.PasswordReset(ctx, sessionID)
	if err != nil {
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("load reset state: %w", err))
	}
	if !found || !reset.Verified {
		return apperrors.ErrSessionMissing
	}

	fields := map[string]string{}
	if len(password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	} else if password != confirm {
		fields["confirm_password"] = "Passwords do not match"
	}
	if len(fields) > 0 {
		return apperrors.NewValidation(fields)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", reset.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("find user: %w", err))
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("password reset service: hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&user).
		Update("password", hash).Error; err != nil {
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("update password: %w", err))
	}

	if err := s.sessions.ClearPasswordReset(ctx, sessionID); err != nil {
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("clear reset state: %w", err))
	}

	return nil
}
