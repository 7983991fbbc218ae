// Package auth integrates external identity providers. Google sign-in is the
// only federation the storefront offers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const defaultGoogleIssuer = "https://accounts.google.com"

// GoogleConfig carries the OAuth client registration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Issuer is overridable for tests against a fake discovery endpoint.
	Issuer     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Identity is the verified subset of Google ID token claims the storefront
// consumes.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// GoogleProvider runs the authorization code flow against Google and
// verifies returned ID tokens.
type GoogleProvider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	timeout     time.Duration
}

// NewGoogleProvider performs OIDC discovery and prepares the code flow.
func NewGoogleProvider(ctx context.Context, cfg GoogleConfig) (*GoogleProvider, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.New("google auth: client id is required")
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, errors.New("google auth: client secret is required")
	}
	if strings.TrimSpace(cfg.RedirectURL) == "" {
		return nil, errors.New("google auth: redirect url is required")
	}

	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = defaultGoogleIssuer
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, cfg.HTTPClient)
	}
	discoveryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	provider, err := oidc.NewProvider(discoveryCtx, issuer)
	if err != nil {
		return nil, fmt.Errorf("google auth: discovery failed: %w", err)
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &GoogleProvider{
		oauthConfig: oauthConfig,
		verifier:    provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		timeout:     timeout,
	}, nil
}

// AuthCodeURL builds the consent page redirect for the given state and nonce.
func (p *GoogleProvider) AuthCodeURL(state, nonce string) string {
	return p.oauthConfig.AuthCodeURL(state, oauth2.SetAuthURLParam("nonce", nonce))
}

// Exchange trades the authorization code for tokens and returns the verified
// identity. The nonce must match the one bound to the initiating session.
func (p *GoogleProvider) Exchange(ctx context.Context, code, nonce string) (*Identity, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("google auth: authorization code missing")
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	token, err := p.oauthConfig.Exchange(exchangeCtx, code)
	if err != nil {
		return nil, fmt.Errorf("google auth: exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("google auth: id token missing")
	}

	idToken, err := p.verifier.Verify(exchangeCtx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google auth: verify id token: %w", err)
	}
	if nonce != "" && idToken.Nonce != nonce {
		return nil, errors.New("google auth: nonce mismatch")
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("google auth: decode claims: %w", err)
	}

	return &Identity{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}
