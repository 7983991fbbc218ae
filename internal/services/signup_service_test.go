package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ansaf01/fg-united/internal/models"
	apperrors "github.com/ansaf01/fg-united/pkg/errors"
)

func validSignupInput() SignupInput {
	return SignupInput{
		FullName:        "Asha Nair",
		Email:           "asha@example.com",
		Mobile:          "9876543210",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestSignupBeginValidation(t *testing.T) {
	db := openServicesTestDB(t)
	sessions := newTestSessions(t)
	mailer := &recordingMailer{}

	svc, err := NewSignupService(db, sessions, mailer)
	require.NoError(t, err)

	input := SignupInput{
		FullName:        "X",
		Email:           "not-an-email",
		Mobile:          "12345",
		Password:        "abc",
		ConfirmPassword: "abc",
	}
	err = svc.Begin(context.Background(), "sess-1", input)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
	require.Contains(t, appErr.Fields, "fullname")
	require.Contains(t, appErr.Fields, "email")
	require.Contains(t, appErr.Fields, "mobile")
	require.Contains(t, appErr.Fields, "password")
	require.Empty(t, mailer.messages)
}

func TestSignupBeginPasswordMismatch(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewSignupService(db, newTestSessions(t), nil)
	require.NoError(t, err)

	input := validSignupInput()
	input.ConfirmPassword = "different1"
	err = svc.Begin(context.Background(), "sess-1", input)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Contains(t, appErr.Fields, "confirm_password")
}

func TestSignupBeginDuplicateEmailAndMobile(t *testing.T) {
	db := openServicesTestDB(t)
	require.NoError(t, db.Create(&models.User{
		FullName: "Existing User",
		Email:    "asha@example.com",
		Mobile:   "9876543210",
		Role:     models.RoleUser,
	}).Error)

	svc, err := NewSignupService(db, newTestSessions(t), nil)
	require.NoError(t, err)

	err = svc.Begin(context.Background(), "sess-1", validSignupInput())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "CONFLICT", appErr.Code)
	require.Contains(t, appErr.Fields, "email")
	require.Contains(t, appErr.Fields, "mobile")
}

func TestSignupBeginStoresPendingAndSendsOneMail(t *testing.T) {
	db := openServicesTestDB(t)
	sessions := newTestSessions(t)
	mailer := &recordingMailer{}
	current := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	svc, err := NewSignupService(db, sessions, mailer,
		WithSignupClock(func() time.Time { return current }),
		WithSignupCodeGenerator(fixedCode("123456")),
	)
	require.NoError(t, err)

	require.NoError(t, svc.Begin(context.Background(), "sess-1", validSignupInput()))

	pending, found, err := sessions.PendingRegistration(context.Background(), "sess-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "asha@example.com", pending.Email)
	require.Equal(t, "123456", pending.OTP)
	require.Equal(t, current.Add(10*time.Minute), pending.OTPExpiry)
	require.NotEqual(t, "secret123", pending.PasswordHash)

	require.Len(t, mailer.messages, 1)
	require.Equal(t, []string{"asha@example.com"}, mailer.messages[0].To)
	require.Contains(t, mailer.messages[0].Body, "123456")

	// No account exists until the code is verified.
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSignupVerifyCreatesUserAndClearsPending(t *testing.T) {
	db := openServicesTestDB(t)
	sessions := newTestSessions(t)
	current := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	svc, err := NewSignupService(db, sessions, &recordingMailer{},
		WithSignupClock(func() time.Time { return current }),
		WithSignupCodeGenerator(fixedCode("123456")),
	)
	require.NoError(t, err)

	require.NoError(t, svc.Begin(context.Background(), "sess-1", validSignupInput()))

	current = current.Add(5 * time.Minute)
	user, err := svc.Verify(context.Background(), "sess-1", "123456")
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", user.Email)
	require.Equal(t, models.RoleUser, user.Role)
	require.True(t, user.HasPassword())

	var stored models.User
	require.NoError(t, db.Where("email = ?", "asha@example.com").First(&stored).Error)
	require.Equal(t, "Asha Nair", stored.FullName)

	_, found, err := sessions.PendingRegistration(context.Background(), "sess-1")
	require.NoError(t, err)
	require.False(t, found)
}

func TestSignupVerifyWithoutPendingState(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewSignupService(db, newTestSessions(t), nil)
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), "sess-1", "123456")
	require.ErrorIs(t, err, apperrors.ErrSessionMissing)
}

func TestSignupVerifyExpiredRetainsPending(t *testing.T) {
	db := openServicesTestDB(t)
	sessions := newTestSessions(t)
	current := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	svc, err := NewSignupService(db, sessions, nil,
		WithSignupClock(func() time.Time { return current }),
		WithSignupCodeGenerator(fixedCode("123456")),
	)
	require.NoError(t, err)

	require.NoError(t, svc.Begin(context.Background(), "sess-1", validSignupInput()))

	current = current.Add(11 * time.Minute)
	_, err = svc.Verify(context.Background(), "sess-1", "123456")
	require.ErrorIs(t, err, apperrors.ErrOTPExpired)

	_, found, err := sessions.PendingRegistration(context.Background(), "sess-1")
	require.NoError(t, err)
	require.True(t, found)
}

func TestSignupVerifyMismatchRetainsPending(t *testing.T) {
	db := openServicesTestDB(t)
	sessions := newTestSessions(t)

	svc, err := NewSignupService(db, sessions, nil,
		WithSignupCodeGenerator(fixedCode("123456")),
	)
	require.NoError(t, err)

	require.NoError(t, svc.Begin(context.Background(), "sess-1", validSignupInput()))

	_, err = svc.Verify(context.Background(), "sess-1", "654321")
	require.ErrorIs(t, err, apperrors.ErrOTPMismatch)

	// A correct retry still succeeds.
	user, err := svc.Verify(context.Background(), "sess-1", "123456")
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", user.Email)
}

func TestSignupVerifyDuplicateRace(t *testing.T) {
	db := openServicesTestDB(t)
	sessions := newTestSessions(t)

	svc, err := NewSignupService(db, sessions, nil,
		WithSignupCodeGenerator(fixedCode("123456")),
	)
	require.NoError(t, err)

	require.NoError(t, svc.Begin(context.Background(), "sess-1", validSignupInput()))

	// Another session claims the email between Begin and Verify.
	require.NoError(t, db.Create(&models.User{
		FullName: "Other Session",
		Email:    "asha@example.com",
		Role:     models.RoleUser,
	}).Error)

	_, err = svc.Verify(context.Background(), "sess-1", "123456")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "CONFLICT", appErr.Code)
}

func TestSignupResendReplacesCode(t *testing.T) {
	db := openServicesTestDB(t)
	sessions := newTestSessions(t)
	mailer := &recordingMailer{}
	code := "111111"

	svc, err := NewSignupService(db, sessions, mailer,
		WithSignupCodeGenerator(func() (string, error) { return code, nil }),
	)
	require.NoError(t, err)

	require.NoError(t, svc.Begin(context.Background(), "sess-1", validSignupInput()))

	code = "222222"
	require.NoError(t, svc.Resend(context.Background(), "sess-1"))
	require.Len(t, mailer.messages, 2)

	// The original code is permanently invalid.
	_, err = svc.Verify(context.Background(), "sess-1", "111111")
	require.ErrorIs(t, err, apperrors.ErrOTPMismatch)

	user, err := svc.Verify(context.Background(), "sess-1", "222222")
	require.NoError(t, err)
	require.NotNil(t, user)
}

func TestSignupResendWithoutPendingState(t *testing.T) {
	db := openServicesTestDB(t)
	svc, err := NewSignupService(db, newTestSessions(t), nil)
	require.NoError(t, err)

	err = svc.Resend(context.Background(), "sess-1")
	require.ErrorIs(t, err, apperrors.ErrSessionMissing)
}

func TestSignupBeginMailerFailure(t *testing.T) {
	db := openServicesTestDB(t)
	mailer := &recordingMailer{err: context.DeadlineExceeded}

	svc, err := NewSignupService(db, newTestSessions(t), mailer)
	require.NoError(t, err)

	err = svc.Begin(context.Background(), "sess-1", validSignupInput())
	require.ErrorIs(t, err, apperrors.ErrDependencyFailure)
}
