package zoho

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Region-specific OAuth token endpoints
var tokenEndpoints = map[string]string{
	"com": "https://accounts.zoho.com/oauth/v2/token",
	"eu":  "https://accounts.zoho.eu/oauth/v2/token",
	"in":  "https://accounts.zoho.in/oauth/v2/token",
	"au":  "https://accounts.zoho.com.au/oauth/v2/token",
	"jp":  "https://accounts.zoho.jp/oauth/v2/token",
}

// Base API endpoints by region
var apiEndpoints = map[string]string{
	"com": "https://www.zohoapis.com",
	"eu":  "https://www.zohoapis.eu",
	"in":  "https://www.zohoapis.in",
	"au":  "https://www.zohoapis.com.au",
	"jp":  "https://www.zohoapis.jp",
}

// APIEndpoint returns the base API URL for a region
func APIEndpoint(region string) (string, error) {
	endpoint, ok := apiEndpoints[region]
	if !ok {
		return "", fmt.Errorf("unsupported region %q", region)
	}
	return endpoint, nil
}

// expirySlack refreshes tokens a minute before Zoho's reported expiry
const expirySlack = 60 * time.Second

// TokenSource mints Zoho access tokens from a long-lived refresh token
// using the refresh_token grant. Tokens are cached in memory until
// shortly before expiry. Implements oauth2.TokenSource.
type TokenSource struct {
	mu           sync.Mutex
	conf         *oauth2.Config
	refreshToken string
	tok          *oauth2.Token
}

// NewTokenSource creates a token source for one tenant
func NewTokenSource(region, clientID, clientSecret, refreshToken string) (*TokenSource, error) {
	tokenURL, ok := tokenEndpoints[region]
	if !ok {
		return nil, fmt.Errorf("unsupported region %q", region)
	}
	return NewTokenSourceWithEndpoint(tokenURL, clientID, clientSecret, refreshToken), nil
}

// NewTokenSourceWithEndpoint creates a token source against an explicit
// token URL instead of a named region
func NewTokenSourceWithEndpoint(tokenURL, clientID, clientSecret, refreshToken string) *TokenSource {
	return &TokenSource{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		refreshToken: refreshToken,
	}
}

// Token returns a valid access token, refreshing if necessary
func (s *TokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tok.Valid() {
		return s.tok, nil
	}

	// Seed a fresh source with the refresh token; oauth2 performs the
	// refresh_token grant against the region endpoint.
	src := s.conf.TokenSource(context.Background(), &oauth2.Token{
		RefreshToken: s.refreshToken,
	})

	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	if !tok.Expiry.IsZero() {
		tok.Expiry = tok.Expiry.Add(-expirySlack)
	}
	s.tok = tok
	return tok, nil
}

// Invalidate drops the cached token so the next Token call refreshes.
// The HTTP client calls this when a request comes back 401 despite an
// unexpired token.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = nil
}
