package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/models"
	"github.com/ansaf01/fg-united/internal/session"
	"github.com/ansaf01/fg-united/pkg/crypto"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
	appmail "github.com/ansaf01/fg-united/pkg/mail"
	"github.com/ansaf01/fg-united/pkg/metrics"
	"github.com/ansaf01/fg-united/pkg/validator"
)

const (
	defaultOTPExpiry  = 10 * time.Minute
	minPasswordLength = 6
)

// SignupInput carries the registration form fields.
type SignupInput struct {
	FullName        string `json:"fullname"`
	Email           string `json:"email"`
	Mobile          string `json:"mobile"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	ReferralCode    string `json:"referral_code"`
}

// SignupOption customises the SignupService.
type SignupOption func(*SignupService)

// WithSignupClock injects a custom time source.
func WithSignupClock(clock func() time.Time) SignupOption {
	return func(s *SignupService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithSignupExpiry overrides the one-time code lifetime.
func WithSignupExpiry(d time.Duration) SignupOption {
	return func(s *SignupService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithSignupCodeGenerator injects a custom code generator.
func WithSignupCodeGenerator(gen func() (string, error)) SignupOption {
	return func(s *SignupService) {
		if gen != nil {
			s.generateCode = gen
		}
	}
}

// SignupService drives the signup-and-verify state machine. A registration is
// held as pending session state until the emailed code is confirmed; the user
// row is only created on a successful Verify.
type SignupService struct {
	db           *gorm.DB
	sessions     *session.Manager
	mailer       appmail.Mailer
	expiry       time.Duration
	now          func() time.Time
	generateCode func() (string, error)
}

// NewSignupService constructs a signup service with the provided dependencies.
func NewSignupService(db *gorm.DB, sessions *session.Manager, mailer appmail.Mailer, opts ...SignupOption) (*SignupService, error) {
	if db == nil {
		return nil, errors.New("signup service: db is required")
	}
	if sessions == nil {
		return nil, errors.New("signup service: session manager is required")
	}

	service := &SignupService{
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

// Begin validates the registration form, stores a pending registration in the
// session, and emails a one-time code. Re-submitting replaces any earlier
// pending registration for the session.
func (s *SignupService) Begin(ctx context.Context, sessionID string, input SignupInput) error {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Mobile = strings.TrimSpace(input.Mobile)
	input.ReferralCode = strings.TrimSpace(input.ReferralCode)

	if fields := validateSignupInput(input); len(fields) > 0 {
		return apperrors.NewValidation(fields)
	}

	if err := s.checkDuplicates(ctx, input.Email, input.Mobile); err != nil {
		return err
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return fmt.Errorf("signup service: hash password: %w", err)
	}

	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("signup service: generate code: %w", err)
	}

	pending := session.PendingRegistration{
		FullName:     input.FullName,
		Email:        input.Email,
		Mobile:       input.Mobile,
		PasswordHash: hash,
		ReferralCode: input.ReferralCode,
		OTP:          code,
		OTPExpiry:    s.now().Add(s.expiry),
	}
	if err := s.sessions.SetPendingRegistration(ctx, sessionID, pending); err != nil {
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("store pending registration: %w", err))
	}

	if err := s.sendCode(ctx, input.Email, input.FullName, code); err != nil {
		return err
	}

	metrics.OTPIssued.WithLabelValues("signup", "initial").Inc()
	return nil
}

// Verify confirms the emailed code and creates the account. The pending
// registration survives an expired or mismatched code so the user can resend
// or retry without re-entering the form.
func (s *SignupService) Verify(ctx context.Context, sessionID, code string) (*models.User, error) {
	pending, found, err := s.sessions.PendingRegistration(ctx, sessionID)
	if err != nil {
		return nil, apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("load pending registration: %w", err))
	}
	if !found {
		return nil, apperrors.ErrSessionMissing
	}

	if s.now().After(pending.OTPExpiry) {
		metrics.OTPVerifications.WithLabelValues("signup", "expired").Inc()
		return nil, apperrors.ErrOTPExpired
	}
	if strings.TrimSpace(code) != pending.OTP {
		metrics.OTPVerifications.WithLabelValues("signup", "mismatch").Inc()
		return nil, apperrors.ErrOTPMismatch
	}

	user := models.User{
		FullName:     pending.FullName,
		Email:        pending.Email,
		Mobile:       pending.Mobile,
		Password:     pending.PasswordHash,
		ReferralCode: pending.ReferralCode,
		Role:         models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Another session registered this email between Begin and Verify.
			_ = s.sessions.ClearPendingRegistration(ctx, sessionID)
			return nil, apperrors.NewConflict(map[string]string{
				"email": "An account with this email already exists",
			})
		}
		return nil, apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("create user: %w", err))
	}

	if err := s.sessions.ClearPendingRegistration(ctx, sessionID); err != nil {
		return nil, apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("clear pending registration: %w", err))
	}

	metrics.OTPVerifications.WithLabelValues("signup", "success").Inc()
	metrics.SignupsCompleted.Inc()
	return &user, nil
}

// Resend issues a fresh code for the pending registration. The previous code
// becomes permanently invalid.
func (s *SignupService) Resend(ctx context.Context, sessionID string) error {
	pending, found, err := s.sessions.PendingRegistration(ctx, sessionID)
	if err != nil {
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("load pending registration: %w", err))
	}
	if !found {
		return apperrors.ErrSessionMissing
	}

	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("signup service: generate code: %w", err)
	}

	pending.OTP = code
	pending.OTPExpiry = s.now().Add(s.expiry)
	if err := s.sessions.SetPendingRegistration(ctx, sessionID, *pending); err != nil {
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("store pending registration: %w", err))
	}

	if err := s.sendCode(ctx, pending.Email, pending.FullName, code); err != nil {
		return err
	}

	metrics.OTPIssued.WithLabelValues("signup", "resend").Inc()
	return nil
}

func (s *SignupService) checkDuplicates(ctx context.Context, email, mobile string) error {
	var existing []models.User
	if err := s.db.WithContext(ctx).
		Where("email = ? OR mobile = ?", email, mobile).
		Find(&existing).Error; err != nil {
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("check duplicates: %w", err))
	}

	fields := map[string]string{}
	for _, user := range existing {
		if user.Email == email {
			fields["email"] = "An account with this email already exists"
		}
		if mobile != "" && user.Mobile == mobile {
			fields["mobile"] = "An account with this mobile number already exists"
		}
	}
	if len(fields) > 0 {
		return apperrors.NewConflict(fields)
	}
	return nil
}

func (s *SignupService) sendCode(ctx context.Context, email, name, code string) error {
	if s.mailer == nil {
		return nil
	}

	message := appmail.Message{
		To:      []string{email},
		Subject: "Verify your FG United account",
		Body: fmt.Sprintf("Hi %s,\n\nYour FG United verification code is %s. It expires in %d minutes.\n\nIf you did not sign up, you can ignore this message.\n",
			name, code, int(s.expiry.Minutes())),
	}
	if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, appmail.ErrSMTPDisabled) {
		return apperrors.ErrDependencyFailure.WithInternal(fmt.Errorf("send verification email: %w", err))
	}
	return nil
}

func validateSignupInput(input SignupInput) map[string]string {
	fields := map[string]string{}

	if input.FullName == "" {
		fields["fullname"] = "Full name is required"
	} else if !validator.IsFullName(input.FullName) {
		fields["fullname"] = "Enter your first and last name using letters only"
	}

	if input.Email == "" {
		fields["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		fields["email"] = "Enter a valid email address"
	}

	if input.Mobile == "" {
		fields["mobile"] = "Mobile number is required"
	} else if !validator.IsMobile(input.Mobile) {
		fields["mobile"] = "Enter a valid 10 digit mobile number"
	}

	if len(input.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	} else if input.Password != input.ConfirmPassword {
		fields["confirm_password"] = "Passwords do not match"
	}

	return fields
}
