package spapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
	apperrors "github.com/diillson/led-sales-tracker-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAmazon struct {
	mu             sync.Mutex
	tokenCalls     int
	refreshTokens  []string
	clientIDs      []string
	metricsCalls   int
	lastQuery      map[string]string
	lastToken      string
	lastAuthHeader string
	metricsStatus  []int
	tokenStatus    int
	expiresIn      int64
}

func (f *fakeAmazon) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/o2/token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = r.ParseForm()
		f.tokenCalls++
		f.clientIDs = append(f.clientIDs, r.PostForm.Get("client_id"))
		f.refreshTokens = append(f.refreshTokens, r.PostForm.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json;charset=UTF-8")
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"The request has an invalid grant parameter"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "Atza|token-" + string(rune('0'+f.tokenCalls)),
			"refresh_token": "Atzr|rotated",
			"token_type":    "bearer",
			"expires_in":    f.expiresIn,
		})
	})
	mux.HandleFunc(orderMetricsPath, func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.metricsCalls++
		f.lastToken = r.Header.Get("x-amz-access-token")
		f.lastAuthHeader = r.Header.Get("Authorization")
		f.lastQuery = map[string]string{}
		for k := range r.URL.Query() {
			f.lastQuery[k] = r.URL.Query().Get(k)
		}
		status := http.StatusOK
		if len(f.metricsStatus) > 0 {
			status = f.metricsStatus[0]
			f.metricsStatus = f.metricsStatus[1:]
		}
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"errors":[{"code":"Unauthorized","message":"Access to requested resource is denied."}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"payload":[{"interval":"2024-01-01T00:00:00-08:00--2024-01-02T00:00:00-08:00","unitCount":4,"totalSales":{"amount":"12.50","currencyCode":"USD"}}]}`))
	})
	return mux
}

func newTestRepo(t *testing.T, amazon *fakeAmazon, signer RequestSigner) *SPAPIRepositoryImpl {
	t.Helper()
	srv := httptest.NewServer(amazon.handler())
	t.Cleanup(srv.Close)

	repo, err := NewSPAPIRepository(Options{
		Credentials: entity.Credentials{
			AppID:              "amzn1.application-oa2-client.x",
			AppSecret:          "secret",
			RefreshToken:       "Atzr|original",
			EarlyRefreshMargin: time.Minute,
		},
		HTTPClient: srv.Client(),
		TokenURL:   srv.URL + "/auth/o2/token",
		Endpoint:   srv.URL,
		Signer:     signer,
	})
	require.NoError(t, err)
	return repo.(*SPAPIRepositoryImpl)
}

func testQuery(t *testing.T) entity.MetricsQuery {
	t.Helper()
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return entity.MetricsQuery{
		MetricType:  entity.MetricUnits,
		Days:        1,
		Marketplace: "US",
		Start:       time.Date(2024, 1, 1, 0, 0, 0, 0, la),
		End:         time.Date(2024, 1, 2, 9, 30, 0, 0, la),
	}
}

func TestNewSPAPIRepositoryRequiresCredentials(t *testing.T) {
	_, err := NewSPAPIRepository(Options{Credentials: entity.Credentials{AppID: "x"}})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidArgument))
}

func TestGetOrderMetricsSendsQueryAndDecodesPayload(t *testing.T) {
	amazon := &fakeAmazon{expiresIn: 3600}
	repo := newTestRepo(t, amazon, nil)

	session, err := repo.NewSession(context.Background(), "us")
	require.NoError(t, err)
	assert.Equal(t, "US", session.Marketplace())

	page, err := session.GetOrderMetrics(context.Background(), testQuery(t))
	require.NoError(t, err)

	assert.Equal(t, "ATVPDKIKX0DER", amazon.lastQuery["marketplaceIds"])
	assert.Equal(t, "Day", amazon.lastQuery["granularity"])
	assert.Equal(t, "America/Los_Angeles", amazon.lastQuery["granularityTimeZone"])
	assert.Equal(t, "2024-01-01T00:00:00-08:00--2024-01-02T09:30:00-08:00", amazon.lastQuery["interval"])
	assert.Equal(t, "Atza|token-1", amazon.lastToken)
	assert.Empty(t, amazon.lastAuthHeader)

	items, ok := page.Payload.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	record := items[0].(map[string]any)
	assert.Equal(t, json.Number("4"), record["unitCount"])
	assert.Contains(t, string(page.Raw), `"payload"`)
}

func TestAccessTokenIsCachedWhileValid(t *testing.T) {
	amazon := &fakeAmazon{expiresIn: 3600}
	repo := newTestRepo(t, amazon, nil)

	session, err := repo.NewSession(context.Background(), "US")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := session.GetOrderMetrics(context.Background(), testQuery(t))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, amazon.tokenCalls)
	assert.Equal(t, "Atza|token-1", amazon.lastToken)
	assert.Equal(t, []string{"amzn1.application-oa2-client.x"}, amazon.clientIDs, "client credentials go in the form body")
}

func TestAccessTokenRefreshedInsideEarlyMargin(t *testing.T) {
	// 30s token with a 60s margin: already due for refresh when it arrives.
	amazon := &fakeAmazon{expiresIn: 30}
	repo := newTestRepo(t, amazon, nil)

	session, err := repo.NewSession(context.Background(), "US")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := session.GetOrderMetrics(context.Background(), testQuery(t))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, amazon.tokenCalls)
	assert.Equal(t, []string{"Atzr|original", "Atzr|rotated"}, amazon.refreshTokens)
}

func TestInvalidateKeepsRotatedRefreshToken(t *testing.T) {
	amazon := &fakeAmazon{expiresIn: 3600, metricsStatus: []int{http.StatusOK, http.StatusForbidden}}
	repo := newTestRepo(t, amazon, nil)
	session, err := repo.NewSession(context.Background(), "US")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, _ = session.GetOrderMetrics(context.Background(), testQuery(t))
	}
	assert.Equal(t, []string{"Atzr|original", "Atzr|rotated"}, amazon.refreshTokens)
}

func TestForbiddenDropsTokenAndReturnsForbiddenCode(t *testing.T) {
	amazon := &fakeAmazon{expiresIn: 3600, metricsStatus: []int{http.StatusForbidden}}
	repo := newTestRepo(t, amazon, nil)
	session, err := repo.NewSession(context.Background(), "US")
	require.NoError(t, err)

	_, err = session.GetOrderMetrics(context.Background(), testQuery(t))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), "got %v", err)
	assert.Contains(t, err.Error(), "Access to requested resource is denied")

	_, err = session.GetOrderMetrics(context.Background(), testQuery(t))
	require.NoError(t, err)
	assert.Equal(t, 2, amazon.tokenCalls, "token is refreshed after a 403")
}

func TestNewSessionStartsFromOriginalRefreshToken(t *testing.T) {
	amazon := &fakeAmazon{expiresIn: 3600}
	repo := newTestRepo(t, amazon, nil)

	for i := 0; i < 2; i++ {
		session, err := repo.NewSession(context.Background(), "US")
		require.NoError(t, err)
		_, err = session.GetOrderMetrics(context.Background(), testQuery(t))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Atzr|original", "Atzr|original"}, amazon.refreshTokens)
}

func TestTokenExchangeRejectionIsForbidden(t *testing.T) {
	amazon := &fakeAmazon{tokenStatus: http.StatusBadRequest}
	repo := newTestRepo(t, amazon, nil)
	session, err := repo.NewSession(context.Background(), "US")
	require.NoError(t, err)

	_, err = session.GetOrderMetrics(context.Background(), testQuery(t))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), "got %v", err)
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Zero(t, amazon.metricsCalls)
}

func TestTokenExchangeServerErrorIsPlainError(t *testing.T) {
	amazon := &fakeAmazon{tokenStatus: http.StatusServiceUnavailable}
	repo := newTestRepo(t, amazon, nil)
	session, err := repo.NewSession(context.Background(), "US")
	require.NoError(t, err)

	_, err = session.GetOrderMetrics(context.Background(), testQuery(t))
	require.Error(t, err)
	assert.False(t, apperrors.IsCode(err, apperrors.CodeForbidden))
	assert.Contains(t, err.Error(), "503")
}

func TestServerErrorIsPlainError(t *testing.T) {
	amazon := &fakeAmazon{expiresIn: 3600, metricsStatus: []int{http.StatusInternalServerError}}
	repo := newTestRepo(t, amazon, nil)
	session, err := repo.NewSession(context.Background(), "US")
	require.NoError(t, err)

	_, err = session.GetOrderMetrics(context.Background(), testQuery(t))
	require.Error(t, err)
	assert.False(t, apperrors.IsCode(err, apperrors.CodeForbidden))
	assert.Contains(t, err.Error(), "500")
}

func TestNewSessionUnknownMarketplace(t *testing.T) {
	repo := newTestRepo(t, &fakeAmazon{}, nil)
	_, err := repo.NewSession(context.Background(), "XX")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidArgument))
}

func TestSigV4SignerAddsAuthorization(t *testing.T) {
	amazon := &fakeAmazon{expiresIn: 3600}
	signer := NewSigV4SignerWithProvider(aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret", Source: "test"}, nil
	})))
	repo := newTestRepo(t, amazon, signer)
	session, err := repo.NewSession(context.Background(), "DE")
	require.NoError(t, err)

	_, err = session.GetOrderMetrics(context.Background(), testQuery(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(amazon.lastAuthHeader, "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/"), amazon.lastAuthHeader)
	assert.Contains(t, amazon.lastAuthHeader, "/eu-west-1/execute-api/aws4_request")
}

func TestLookupMarketplace(t *testing.T) {
	m, err := LookupMarketplace("gb")
	require.NoError(t, err)
	assert.Equal(t, "A1F83G8C2ARO7P", m.ID)

	m, err = LookupMarketplace("A1VC38T7YXB528")
	require.NoError(t, err)
	assert.Equal(t, "JP", m.Code)

	assert.Contains(t, MarketplaceCodes(), "US")
	assert.Len(t, MarketplaceCodes(), len(marketplaces))
}

func TestTimeZoneName(t *testing.T) {
	assert.Equal(t, "UTC", timeZoneName(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Empty(t, timeZoneName(time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("UTC-8", -8*3600))))
}
