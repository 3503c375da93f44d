package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
	"github.com/diillson/led-sales-tracker-go/internal/domain/repository"
	apperrors "github.com/diillson/led-sales-tracker-go/pkg/errors"
	"github.com/diillson/led-sales-tracker-go/pkg/logger"
)

const (
	defaultMaxAttempts = 3
	defaultBackoffStep = 2 * time.Second
)

// SalesParams groups the collaborators of the sales use case.
type SalesParams struct {
	API      repository.SalesAPI
	Logger   *logger.Logger
	Location *time.Location
	Clock    Clock

	// Zero values fall back to 3 attempts and a 2s linear step.
	MaxAttempts int
	BackoffStep time.Duration
}

// SalesUseCase fetches normalized metrics and owns the per-marketplace session cache.
type SalesUseCase struct {
	api         repository.SalesAPI
	logg        *logger.Logger
	location    *time.Location
	clock       Clock
	maxAttempts int
	backoffStep time.Duration

	mu       sync.Mutex
	sessions map[string]repository.MarketplaceSession
}

// NewSalesUseCase creates a new sales use case.
func NewSalesUseCase(params SalesParams) (*SalesUseCase, error) {
	if params.API == nil {
		return nil, errors.New("sales api is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}

	location := params.Location
	if location == nil {
		location = time.Local
	}
	clock := params.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	step := params.BackoffStep
	if step <= 0 {
		step = defaultBackoffStep
	}

	return &SalesUseCase{
		api:         params.API,
		logg:        params.Logger,
		location:    location,
		clock:       clock,
		maxAttempts: maxAttempts,
		backoffStep: step,
		sessions:    make(map[string]repository.MarketplaceSession),
	}, nil
}

// GetSalesData returns the metric over the last days for marketplace.
//
// A forbidden answer is retried with the same session after attempt×step,
// up to maxAttempts; once exhausted the session is evicted and the call
// fails with CodeAuthorizationExpired. Any other failure is returned at once.
func (uc *SalesUseCase) GetSalesData(ctx context.Context, metric entity.MetricType, days int, marketplace string) (entity.MetricsResult, error) {
	return uc.FetchMetrics(ctx, uc.BuildQuery(metric, days, marketplace))
}

// FetchMetrics runs an already built query; callers that report the period
// use it so the period shown is the one that was queried.
func (uc *SalesUseCase) FetchMetrics(ctx context.Context, query entity.MetricsQuery) (entity.MetricsResult, error) {
	if query.Days <= 0 {
		return entity.MetricsResult{}, apperrors.Newf(apperrors.CodeInvalidArgument, "days must be a positive integer, got %d", query.Days)
	}
	if !query.MetricType.Valid() {
		return entity.MetricsResult{}, apperrors.Newf(apperrors.CodeInvalidArgument, "metric type must be one of sales, units, got %q", query.MetricType)
	}

	metric := query.MetricType
	marketplace := query.Marketplace
	ctx = uc.logg.WithMarketplace(ctx, marketplace)

	session, err := uc.session(ctx, marketplace)
	if err != nil {
		if apperrors.As(err) != nil {
			return entity.MetricsResult{}, err
		}
		return entity.MetricsResult{}, apperrors.Wrap(apperrors.CodeUpstream, err, "creating marketplace session")
	}

	retries := 0
	for retries < uc.maxAttempts {
		page, err := session.GetOrderMetrics(ctx, query)
		if err == nil {
			return uc.normalize(ctx, page, metric), nil
		}
		if !apperrors.IsCode(err, apperrors.CodeForbidden) {
			return entity.MetricsResult{}, apperrors.Wrap(apperrors.CodeUpstream, err, "fetching order metrics")
		}

		retries++
		if retries < uc.maxAttempts {
			backoff := time.Duration(retries) * uc.backoffStep
			uc.logg.Warn(uc.logg.WithFields(ctx, map[string]any{
				"attempt": retries,
				"backoff": backoff.String(),
			}), "authorization refused, retrying with the same session")
			if err := uc.clock.Sleep(ctx, backoff); err != nil {
				return entity.MetricsResult{}, err
			}
			continue
		}

		uc.evict(marketplace, session)
		uc.logg.Error(ctx, "authorization still refused, session evicted", err)
		return entity.MetricsResult{}, apperrors.Wrap(apperrors.CodeAuthorizationExpired, err,
			fmt.Sprintf("authorization refused after %d attempts", retries))
	}

	return entity.MetricsResult{}, apperrors.New(apperrors.CodeInternalInvariant, "retry loop exited without a result")
}

// BuildQuery computes [now-days at midnight, now] in the configured timezone.
func (uc *SalesUseCase) BuildQuery(metric entity.MetricType, days int, marketplace string) entity.MetricsQuery {
	end := uc.clock.Now().In(uc.location).Truncate(time.Second)
	startDay := end.AddDate(0, 0, -days)
	start := time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 0, 0, 0, 0, uc.location)

	return entity.MetricsQuery{
		MetricType:  metric,
		Days:        days,
		Marketplace: marketplace,
		Start:       start,
		End:         end,
	}
}

// CachedSessions reports how many marketplace sessions are alive.
func (uc *SalesUseCase) CachedSessions() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.sessions)
}

func (uc *SalesUseCase) session(ctx context.Context, marketplace string) (repository.MarketplaceSession, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if session, ok := uc.sessions[marketplace]; ok {
		return session, nil
	}

	session, err := uc.api.NewSession(ctx, marketplace)
	if err != nil {
		return nil, err
	}
	uc.sessions[marketplace] = session
	uc.logg.Debug(ctx, "marketplace session created")
	return session, nil
}

// evict drops the cached session, unless it was already replaced.
func (uc *SalesUseCase) evict(marketplace string, session repository.MarketplaceSession) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if current, ok := uc.sessions[marketplace]; ok && current == session {
		delete(uc.sessions, marketplace)
	}
}

func (uc *SalesUseCase) normalize(ctx context.Context, page repository.OrderMetricsPage, metric entity.MetricType) entity.MetricsResult {
	items, ok := page.Payload.([]any)
	if !ok {
		uc.logg.Warn(uc.logg.WithField(ctx, "payload_type", fmt.Sprintf("%T", page.Payload)),
			"order metrics payload missing or not a list, treating as empty")
		items = nil
	}
	return NormalizeMetrics(DecodeRawRecords(items), metric, page.Raw)
}
