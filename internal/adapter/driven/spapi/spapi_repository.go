package spapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
	"github.com/diillson/led-sales-tracker-go/internal/domain/repository"
	apperrors "github.com/diillson/led-sales-tracker-go/pkg/errors"
	"github.com/diillson/led-sales-tracker-go/pkg/version"
)

const (
	orderMetricsPath = "/sales/v1/orderMetrics"
	maxBodyBytes     = 4 << 20
	defaultTimeout   = 30 * time.Second
)

// Options configura o adaptador do SP-API.
type Options struct {
	Credentials entity.Credentials
	HTTPClient  *http.Client
	// TokenURL e Endpoint existem para apontar o cliente a um servidor de teste.
	TokenURL string
	Endpoint string
	// Signer is optional; when nil requests go out with the LWA token only.
	Signer RequestSigner
}

// SPAPIRepositoryImpl implementa repository.SalesAPI sobre HTTP.
type SPAPIRepositoryImpl struct {
	credentials entity.Credentials
	httpClient  *http.Client
	tokenURL    string
	endpoint    string
	signer      RequestSigner
}

// NewSPAPIRepository validates the credentials and returns the adapter.
func NewSPAPIRepository(opts Options) (repository.SalesAPI, error) {
	if !opts.Credentials.Complete() {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "app id, app secret and refresh token are required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &SPAPIRepositoryImpl{
		credentials: opts.Credentials,
		httpClient:  httpClient,
		tokenURL:    tokenURL,
		endpoint:    strings.TrimRight(opts.Endpoint, "/"),
		signer:      opts.Signer,
	}, nil
}

// NewSession builds a session with its own token cache, always starting from
// the refresh token loaded at startup.
func (r *SPAPIRepositoryImpl) NewSession(ctx context.Context, marketplace string) (repository.MarketplaceSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := LookupMarketplace(marketplace)
	if err != nil {
		return nil, err
	}

	endpoint := m.Endpoint
	if r.endpoint != "" {
		endpoint = r.endpoint
	}

	return &marketplaceSession{
		marketplace: m,
		endpoint:    endpoint,
		httpClient:  r.httpClient,
		signer:      r.signer,
		tokens: newTokenSource(
			r.httpClient,
			r.tokenURL,
			r.credentials.AppID,
			r.credentials.AppSecret,
			r.credentials.RefreshToken,
			r.credentials.EarlyRefreshMargin,
		),
	}, nil
}

type marketplaceSession struct {
	marketplace Marketplace
	endpoint    string
	httpClient  *http.Client
	signer      RequestSigner
	tokens      *tokenSource
}

func (s *marketplaceSession) Marketplace() string {
	return s.marketplace.Code
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

type orderMetricsResponse struct {
	Payload any        `json:"payload"`
	Errors  []apiError `json:"errors"`
}

// GetOrderMetrics performs one GET /sales/v1/orderMetrics call with daily granularity.
func (s *marketplaceSession) GetOrderMetrics(ctx context.Context, query entity.MetricsQuery) (repository.OrderMetricsPage, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return repository.OrderMetricsPage{}, err
	}

	req, err := s.newRequest(ctx, query, token)
	if err != nil {
		return repository.OrderMetricsPage{}, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return repository.OrderMetricsPage{}, fmt.Errorf("calling order metrics: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return repository.OrderMetricsPage{}, fmt.Errorf("reading order metrics response: %w", err)
	}

	var decoded orderMetricsResponse
	decodeErr := decodeJSON(body, &decoded)

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		s.tokens.Invalidate()
		return repository.OrderMetricsPage{}, apperrors.Newf(apperrors.CodeForbidden, "order metrics returned %d: %s", resp.StatusCode, describeErrors(decoded.Errors)).
			WithDetails(map[string]any{"status": resp.StatusCode, "marketplace": s.marketplace.Code})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return repository.OrderMetricsPage{}, fmt.Errorf("order metrics returned %d: %s", resp.StatusCode, describeErrors(decoded.Errors))
	}

	if decodeErr != nil {
		return repository.OrderMetricsPage{}, fmt.Errorf("decoding order metrics response: %w", decodeErr)
	}

	return repository.OrderMetricsPage{Payload: decoded.Payload, Raw: body}, nil
}

func (s *marketplaceSession) newRequest(ctx context.Context, query entity.MetricsQuery, token string) (*http.Request, error) {
	params := url.Values{}
	params.Set("marketplaceIds", s.marketplace.ID)
	params.Set("interval", query.Interval())
	params.Set("granularity", "Day")
	if tz := timeZoneName(query.Start); tz != "" {
		params.Set("granularityTimeZone", tz)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+orderMetricsPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building order metrics request: %w", err)
	}
	req.Header.Set("x-amz-access-token", token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("led-sales-tracker/%s (Language=Go)", version.Version))

	if s.signer != nil {
		if err := s.signer.Sign(ctx, req, s.marketplace.AWSRegion); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// timeZoneName returns the IANA name of t's location, or "" for fixed offsets.
func timeZoneName(t time.Time) string {
	name := t.Location().String()
	if name == "" || name == "Local" || strings.HasPrefix(name, "UTC") && name != "UTC" {
		return ""
	}
	return name
}

func decodeJSON(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}

func describeErrors(errs []apiError) string {
	if len(errs) == 0 {
		return "no error details"
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, strings.TrimSpace(e.Code+" "+e.Message))
	}
	return strings.Join(parts, "; ")
}
