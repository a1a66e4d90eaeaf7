package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"eventsync/core/config"
	"eventsync/core/constants"
	"eventsync/modules/auth/entity"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleRevokeURL = "https://oauth2.googleapis.com/revoke"

var (
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrNoAccessToken  = errors.New("identity provider returned no access token")
)

// Identity is the OAuth provider's login flow. Its protocol stays behind this interface.
type Identity interface {
	AuthURL(state string) string
	SignIn(ctx context.Context, code string) (entity.Credential, error)
	Refresh(ctx context.Context, cred entity.Credential) (entity.Credential, error)
	SignOut(ctx context.Context, cred entity.Credential) error
}

type GoogleIdentity struct {
	oauth      *oauth2.Config
	revokeURL  string
	httpClient *http.Client
}

func NewGoogleIdentity(cfg config.GoogleAPIConfig) *GoogleIdentity {
	return NewGoogleIdentityWithEndpoint(cfg, google.Endpoint, googleRevokeURL, nil)
}

// NewGoogleIdentityWithEndpoint lets tests point the flow at a fake token server.
func NewGoogleIdentityWithEndpoint(cfg config.GoogleAPIConfig, endpoint oauth2.Endpoint, revokeURL string, client *http.Client) *GoogleIdentity {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{constants.ScopeUserInfoEmail, constants.ScopeCalendar}
	}
	if client == nil {
		client = &http.Client{Timeout: constants.DefaultTimeout}
	}

	return &GoogleIdentity{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		revokeURL:  revokeURL,
		httpClient: client,
	}
}

func (g *GoogleIdentity) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

func (g *GoogleIdentity) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (g *GoogleIdentity) SignIn(ctx context.Context, code string) (entity.Credential, error) {
	token, err := g.oauth.Exchange(g.withClient(ctx), code)
	if err != nil {
		return entity.Credential{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	if token.AccessToken == "" {
		return entity.Credential{}, ErrNoAccessToken
	}
	cred := entity.CredentialFromToken(token, g.oauth.Scopes)
	cred.Email = emailFromIDToken(token)
	return cred, nil
}

func (g *GoogleIdentity) Refresh(ctx context.Context, cred entity.Credential) (entity.Credential, error) {
	if cred.RefreshToken == "" {
		return entity.Credential{}, ErrNoRefreshToken
	}

	source := g.oauth.TokenSource(g.withClient(ctx), &oauth2.Token{RefreshToken: cred.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return entity.Credential{}, fmt.Errorf("refresh token: %w", err)
	}
	if token.AccessToken == "" {
		return entity.Credential{}, ErrNoAccessToken
	}

	refreshed := entity.CredentialFromToken(token, cred.Scopes)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}
	refreshed.Email = emailFromIDToken(token)
	if refreshed.Email == "" {
		refreshed.Email = cred.Email
	}
	return refreshed, nil
}

// emailFromIDToken reads the email claim of the id_token returned with token.
// The token came straight from the provider's token endpoint over TLS, so its
// signature is not checked again.
func emailFromIDToken(token *oauth2.Token) string {
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}

// SignOut revokes the grant at the provider.
func (g *GoogleIdentity) SignOut(ctx context.Context, cred entity.Credential) error {
	token := cred.RefreshToken
	if token == "" {
		token = cred.AccessToken
	}
	if token == "" || g.revokeURL == "" {
		return nil
	}

	form := url.Values{}
	form.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("revoke token: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
