package spapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/diillson/led-sales-tracker-go/pkg/errors"
)

// DefaultTokenURL is the Login with Amazon token endpoint.
const DefaultTokenURL = "https://api.amazon.com/auth/o2/token"

// tokenSource troca o refresh token por access tokens (grant refresh_token do LWA)
// e os reaproveita até margin antes de expirar.
type tokenSource struct {
	config *oauth2.Config
	// carrega o http.Client usado nas trocas
	ctx    context.Context
	margin time.Duration

	mu           sync.Mutex
	refreshToken string
	src          oauth2.TokenSource
}

func newTokenSource(httpClient *http.Client, tokenURL, appID, appSecret, refreshToken string, margin time.Duration) *tokenSource {
	s := &tokenSource{
		config: &oauth2.Config{
			ClientID:     appID,
			ClientSecret: appSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		ctx:          context.WithValue(context.Background(), oauth2.HTTPClient, httpClient),
		margin:       margin,
		refreshToken: refreshToken,
	}
	s.src = s.newSource()
	return s
}

func (s *tokenSource) newSource() oauth2.TokenSource {
	return oauth2.ReuseTokenSourceWithExpiry(nil, s.config.TokenSource(s.ctx, &oauth2.Token{RefreshToken: s.refreshToken}), s.margin)
}

// Token returns a cached access token or exchanges the refresh token for a new one.
func (s *tokenSource) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.src.Token()
	if err != nil {
		return "", mapTokenError(err)
	}
	// LWA pode rotacionar o refresh token; guardamos para o próximo Invalidate.
	if token.RefreshToken != "" {
		s.refreshToken = token.RefreshToken
	}
	return token.AccessToken, nil
}

// Invalidate drops the cached access token so the next call refreshes it.
func (s *tokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src = s.newSource()
}

func mapTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) || retrieveErr.Response == nil {
		return fmt.Errorf("requesting access token: %w", err)
	}

	status := retrieveErr.Response.StatusCode
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.Wrap(apperrors.CodeForbidden, err, fmt.Sprintf("token exchange rejected (%d): %s", status, describeRetrieveError(retrieveErr))).
			WithDetails(map[string]any{"status": status})
	default:
		return fmt.Errorf("token exchange failed with status %d: %s", status, describeRetrieveError(retrieveErr))
	}
}

func describeRetrieveError(e *oauth2.RetrieveError) string {
	switch {
	case e.ErrorCode != "" && e.ErrorDescription != "":
		return e.ErrorCode + ": " + e.ErrorDescription
	case e.ErrorCode != "":
		return e.ErrorCode
	case len(strings.TrimSpace(string(e.Body))) > 0:
		return strings.TrimSpace(string(e.Body))
	default:
		return "no error description"
	}
}
