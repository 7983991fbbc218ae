package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ansaf01/fg-united/internal/cache"
)

const (
	principalKeySuffix = "principal"
	pendingKeySuffix   = "pending_signup"
	resetKeySuffix     = "password_reset"
	oauthKeySuffix     = "oauth_state"

	defaultSessionTTL = 7 * 24 * time.Hour
	defaultFlowTTL    = 30 * time.Minute
)

// Principal is the authenticated identity attached to a browser session.
type Principal struct {
	UserID   string `json:"user_id"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// PendingRegistration holds an unconfirmed signup awaiting OTP verification.
// The password is stored pre-hashed; at most one pending registration exists
// per session.
type PendingRegistration struct {
	FullName     string    `json:"fullname"`
	Email        string    `json:"email"`
	Mobile       string    `json:"mobile"`
	PasswordHash string    `json:"password_hash"`
	ReferralCode string    `json:"referral_code,omitempty"`
	OTP          string    `json:"otp"`
	OTPExpiry    time.Time `json:"otp_expiry"`
}

// PasswordReset tracks an in-progress password reset. Verified must be true
// before a new password may be committed.
type PasswordReset struct {
	Email     string    `json:"email"`
	OTP       string    `json:"otp"`
	OTPExpiry time.Time `json:"otp_expiry"`
	Verified  bool      `json:"verified"`
}

// OAuthState pins the state and nonce of an in-flight OAuth redirect to the
// session that started it.
type OAuthState struct {
	State string `json:"state"`
	Nonce string `json:"nonce"`
}

// Option customises the Manager.
type Option func(*Manager)

// WithSessionTTL overrides the authenticated-session lifetime.
func WithSessionTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.sessionTTL = d
		}
	}
}

// WithFlowTTL overrides the retention of pending signup/reset state.
func WithFlowTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.flowTTL = d
		}
	}
}

// Manager stores per-browser-session state in a pluggable cache.Store. All
// values are namespaced under the opaque session identifier carried by the
// session cookie.
type Manager struct {
	store      cache.Store
	sessionTTL time.Duration
	flowTTL    time.Duration
}

// NewManager constructs a Manager over the supplied store.
func NewManager(store cache.Store, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session: store is required")
	}

	manager := &Manager{
		store:      store,
		sessionTTL: defaultSessionTTL,
		flowTTL:    defaultFlowTTL,
	}
	for _, opt := range opts {
		opt(manager)
	}
	return manager, nil
}

// NewSessionID mints an opaque identifier for the session cookie.
func (m *Manager) NewSessionID() string {
	return uuid.NewString()
}

// Principal loads the authenticated identity, if any.
func (m *Manager) Principal(ctx context.Context, sessionID string) (*Principal, bool, error) {
	var principal Principal
	found, err := m.load(ctx, sessionID, principalKeySuffix, &principal)
	if err != nil || !found {
		return nil, false, err
	}
	return &principal, true, nil
}

// SetPrincipal marks the session authenticated.
func (m *Manager) SetPrincipal(ctx context.Context, sessionID string, principal Principal) error {
	return m.save(ctx, sessionID, principalKeySuffix, principal, m.sessionTTL)
}

// PendingRegistration loads the pending signup, if any.
func (m *Manager) PendingRegistration(ctx context.Context, sessionID string) (*PendingRegistration, bool, error) {
	var pending PendingRegistration
	found, err := m.load(ctx, sessionID, pendingKeySuffix, &pending)
	if err != nil || !found {
		return nil, false, err
	}
	return &pending, true, nil
}

// SetPendingRegistration stores the pending signup, replacing any prior one.
func (m *Manager) SetPendingRegistration(ctx context.Context, sessionID string, pending PendingRegistration) error {
	return m.save(ctx, sessionID, pendingKeySuffix, pending, m.flowTTL)
}

// ClearPendingRegistration removes the pending signup.
func (m *Manager) ClearPendingRegistration(ctx context.Context, sessionID string) error {
	return m.delete(ctx, sessionID, pendingKeySuffix)
}

// PasswordReset loads the in-progress reset, if any.
func (m *Manager) PasswordReset(ctx context.Context, sessionID string) (*PasswordReset, bool, error) {
	var reset PasswordReset
	found, err := m.load(ctx, sessionID, resetKeySuffix, &reset)
	if err != nil || !found {
		return nil, false, err
	}
	return &reset, true, nil
}

// SetPasswordReset stores the reset state, replacing any prior one.
func (m *Manager) SetPasswordReset(ctx context.Context, sessionID string, reset PasswordReset) error {
	return m.save(ctx, sessionID, resetKeySuffix, reset, m.flowTTL)
}

// ClearPasswordReset removes the reset state.
func (m *Manager) ClearPasswordReset(ctx context.Context, sessionID string) error {
	return m.delete(ctx, sessionID, resetKeySuffix)
}

// OAuthState loads the in-flight OAuth redirect state, if any.
func (m *Manager) OAuthState(ctx context.Context, sessionID string) (*OAuthState, bool, error) {
	var state OAuthState
	found, err := m.load(ctx, sessionID, oauthKeySuffix, &state)
	if err != nil || !found {
		return nil, false, err
	}
	return &state, true, nil
}

// SetOAuthState stores the OAuth redirect state.
func (m *Manager) SetOAuthState(ctx context.Context, sessionID string, state OAuthState) error {
	return m.save(ctx, sessionID, oauthKeySuffix, state, m.flowTTL)
}

// ClearOAuthState removes the OAuth redirect state.
func (m *Manager) ClearOAuthState(ctx context.Context, sessionID string) error {
	return m.delete(ctx, sessionID, oauthKeySuffix)
}

// Destroy removes everything held for the session. Used on logout.
func (m *Manager) Destroy(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	return m.store.Delete(ctx,
		sessionKey(sessionID, principalKeySuffix),
		sessionKey(sessionID, pendingKeySuffix),
		sessionKey(sessionID, resetKeySuffix),
		sessionKey(sessionID, oauthKeySuffix),
	)
}

func (m *Manager) save(ctx context.Context, sessionID, suffix string, value any, ttl time.Duration) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return errors.New("session: id is required")
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session: marshal %s: %w", suffix, err)
	}
	return m.store.Set(ctx, sessionKey(sessionID, suffix), payload, ttl)
}

func (m *Manager) load(ctx context.Context, sessionID, suffix string, dest any) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}

	data, found, err := m.store.Get(ctx, sessionKey(sessionID, suffix))
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("session: decode %s: %w", suffix, err)
	}
	return true, nil
}

func (m *Manager) delete(ctx context.Context, sessionID, suffix string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	return m.store.Delete(ctx, sessionKey(sessionID, suffix))
}

func sessionKey(sessionID, suffix string) string {
	return "session:" + sessionID + ":" + suffix
}
