package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
	"github.com/diillson/led-sales-tracker-go/internal/domain/repository"
	apperrors "github.com/diillson/led-sales-tracker-go/pkg/errors"
	"github.com/diillson/led-sales-tracker-go/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultRefreshInterval = 300 * time.Second
	defaultErrorCooldown   = 30 * time.Second

	textX      = 1
	textY      = 1
	seriesTopY = 9
)

var (
	seriesColour   = entity.ColourGreen
	textColour     = entity.ColourWhite
	progressColour = entity.ColourBlue
	errorColour    = entity.ColourRed
)

// salesFetcher é a parte do SalesUseCase que o tracker consome.
type salesFetcher interface {
	GetSalesData(ctx context.Context, metric entity.MetricType, days int, marketplace string) (entity.MetricsResult, error)
}

// TrackerParams groups the collaborators of the render-and-wait loop.
type TrackerParams struct {
	Sales    salesFetcher
	Display  repository.DisplayRepository
	Logger   *logger.Logger
	Clock    Clock
	Location *time.Location

	Marketplace     string
	Metric          entity.MetricType
	LookbackDays    int
	RefreshInterval time.Duration
	ErrorCooldown   time.Duration
}

// TrackerUseCase drives fetch → render → progress bar, forever.
type TrackerUseCase struct {
	sales    salesFetcher
	display  repository.DisplayRepository
	logg     *logger.Logger
	clock    Clock
	location *time.Location

	marketplace     string
	metric          entity.MetricType
	lookbackDays    int
	refreshInterval time.Duration
	errorCooldown   time.Duration
}

// NewTrackerUseCase creates a new tracker use case.
func NewTrackerUseCase(params TrackerParams) (*TrackerUseCase, error) {
	if params.Sales == nil {
		return nil, errors.New("sales client is required")
	}
	if params.Display == nil {
		return nil, errors.New("display is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Marketplace == "" {
		return nil, errors.New("marketplace is required")
	}

	clock := params.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	location := params.Location
	if location == nil {
		location = time.Local
	}
	metric := params.Metric
	if metric == "" {
		metric = entity.MetricUnits
	}
	lookback := params.LookbackDays
	if lookback <= 0 {
		lookback = params.Display.Width() - 1
	}
	interval := params.RefreshInterval
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	cooldown := params.ErrorCooldown
	if cooldown <= 0 {
		cooldown = defaultErrorCooldown
	}
	// O cooldown de erro precisa ser menor que o intervalo normal.
	if cooldown >= interval {
		cooldown = interval / 2
	}

	return &TrackerUseCase{
		sales:           params.Sales,
		display:         params.Display,
		logg:            params.Logger,
		clock:           clock,
		location:        location,
		marketplace:     params.Marketplace,
		metric:          metric,
		lookbackDays:    lookback,
		refreshInterval: interval,
		errorCooldown:   cooldown,
	}, nil
}

// Run blocks until ctx is cancelled. A failed cycle is logged, shown on the
// panel and followed by the error cooldown; it never ends the loop.
// The display is cleaned up before Run returns.
func (uc *TrackerUseCase) Run(ctx context.Context) error {
	if err := uc.display.Initialize(); err != nil {
		return fmt.Errorf("initializing display: %w", err)
	}
	defer func() {
		uc.logg.Info(ctx, "cleaning up display")
		if err := uc.display.Cleanup(); err != nil {
			uc.logg.Error(ctx, "display cleanup failed", err)
		}
	}()

	uc.logg.Info(uc.logg.WithFields(ctx, map[string]any{
		"marketplace":      uc.marketplace,
		"metric":           string(uc.metric),
		"lookback_days":    uc.lookbackDays,
		"refresh_interval": uc.refreshInterval.String(),
	}), "tracker started")

	for {
		if ctx.Err() != nil {
			return nil
		}

		cycleCtx := uc.logg.WithCycleID(ctx, uuid.NewString())
		err := uc.safeCycle(cycleCtx)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return nil
		}

		uc.logg.Error(cycleCtx, "cycle failed", err)
		uc.renderError(cycleCtx, err)
		if err := uc.clock.Sleep(ctx, uc.errorCooldown); err != nil {
			return nil
		}
	}
}

// safeCycle turns a panic inside fetch or render into an ordinary error.
func (uc *TrackerUseCase) safeCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Newf(apperrors.CodeInternalInvariant, "cycle panicked: %v", r)
		}
	}()
	return uc.RunCycle(ctx)
}

// RunCycle performs one fetch, one render and one full progress animation.
func (uc *TrackerUseCase) RunCycle(ctx context.Context) error {
	result, err := uc.sales.GetSalesData(ctx, uc.metric, uc.lookbackDays, uc.marketplace)
	if err != nil {
		return err
	}
	uc.logg.Info(uc.logg.WithFields(ctx, map[string]any{
		"total": result.Total,
		"days":  len(result.Daily),
	}), "metrics fetched")

	if err := uc.Render(result); err != nil {
		return err
	}
	return uc.AnimateProgress(ctx, uc.refreshInterval)
}

// Render draws the daily series and the "<total> <HH:MM>" line, then pushes.
func (uc *TrackerUseCase) Render(result entity.MetricsResult) error {
	uc.display.Clear()

	baseline := uc.display.Height() - 2
	heights := ScaleSeries(seriesValues(result), baseline-seriesTopY+1)
	if len(heights) > uc.display.Width() {
		heights = heights[len(heights)-uc.display.Width():]
	}
	uc.display.DrawSeries(heights, 0, baseline, seriesColour)

	uc.display.DrawText(uc.statusLine(result), textX, textY, textColour)

	if err := uc.display.Push(); err != nil {
		return fmt.Errorf("pushing frame: %w", err)
	}
	return nil
}

// AnimateProgress splits duration into Width() segments and lights one pixel
// of the bottom row at the end of each, so the loop paces itself to duration.
func (uc *TrackerUseCase) AnimateProgress(ctx context.Context, duration time.Duration) error {
	segments := uc.display.Width()
	if segments <= 0 {
		return uc.clock.Sleep(ctx, duration)
	}
	row := uc.display.Height() - 1
	segment := duration / time.Duration(segments)
	start := uc.clock.Now()

	for i := 0; i < segments; i++ {
		target := start.Add(time.Duration(i+1) * segment)
		if wait := target.Sub(uc.clock.Now()); wait > 0 {
			if err := uc.clock.Sleep(ctx, wait); err != nil {
				return err
			}
		}
		uc.display.SetPixel(i, row, progressColour)
		if err := uc.display.Push(); err != nil {
			return fmt.Errorf("pushing progress frame: %w", err)
		}
	}
	return nil
}

func (uc *TrackerUseCase) renderError(ctx context.Context, err error) {
	label := apperrors.MetadataFor(apperrors.CodeOf(err)).ShortLabel
	uc.display.Clear()
	uc.display.DrawText("ERR", textX, textY, errorColour)
	uc.display.DrawText(label, textX, textY+10, errorColour)
	if pushErr := uc.display.Push(); pushErr != nil {
		uc.logg.Error(ctx, "could not render error indicator", pushErr)
	}
}

func seriesValues(result entity.MetricsResult) []float64 {
	values := make([]float64, len(result.Daily))
	for i, day := range result.Daily {
		values[i] = day.Value(result.MetricType)
	}
	return values
}

// ScaleSeries maps values onto 0..maxHeight pixels, the largest value
// reaching maxHeight. Any non-zero value gets at least one pixel.
func ScaleSeries(values []float64, maxHeight int) []float64 {
	scaled := make([]float64, len(values))
	if maxHeight <= 0 {
		return scaled
	}
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak <= 0 {
		return scaled
	}
	for i, v := range values {
		if v <= 0 {
			continue
		}
		h := math.Round(v / peak * float64(maxHeight))
		scaled[i] = math.Max(1, h)
	}
	return scaled
}

// statusLine returns "<total> HH:MM", abbreviating the total when the full
// figure would run past the right edge.
func (uc *TrackerUseCase) statusLine(result entity.MetricsResult) string {
	clockText := uc.clock.Now().In(uc.location).Format("15:04")
	line := fmt.Sprintf("%s %s", panelTotal(result), clockText)
	if textX+uc.display.MeasureText(line) <= uc.display.Width() {
		return line
	}
	return fmt.Sprintf("%s %s", CompactTotal(result.Total), clockText)
}

// CompactTotal abbreviates n to at most four characters: 9999, 12K, 999K, 1.2M, 12M.
func CompactTotal(n float64) string {
	switch {
	case n < 10_000:
		return fmt.Sprintf("%.0f", n)
	case n < 1_000_000:
		return fmt.Sprintf("%dK", int64(n/1_000))
	case n < 10_000_000:
		return fmt.Sprintf("%.1fM", math.Floor(n/100_000)/10)
	default:
		return fmt.Sprintf("%dM", int64(n/1_000_000))
	}
}

func panelTotal(result entity.MetricsResult) string {
	if result.MetricType == entity.MetricSales {
		return fmt.Sprintf("%.0f", result.Total)
	}
	return fmt.Sprintf("%d", result.TotalUnits)
}
