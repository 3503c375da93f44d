package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
	"github.com/diillson/led-sales-tracker-go/internal/domain/repository"
	"github.com/diillson/led-sales-tracker-go/internal/shared/types"
)

// fakeClock advances its time only when Sleep is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
	// cancelAfter cancels the context once this many sleeps happened.
	cancelAfter int
	cancel      context.CancelFunc
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	count := len(c.sleeps)
	c.mu.Unlock()

	if c.cancel != nil && c.cancelAfter > 0 && count >= c.cancelAfter {
		c.cancel()
		return ctx.Err()
	}
	return nil
}

type fakeSession struct {
	marketplace string
	responses   []fakeResponse
	queries     []entity.MetricsQuery
}

type fakeResponse struct {
	page repository.OrderMetricsPage
	err  error
}

func (s *fakeSession) Marketplace() string { return s.marketplace }

func (s *fakeSession) GetOrderMetrics(ctx context.Context, query entity.MetricsQuery) (repository.OrderMetricsPage, error) {
	s.queries = append(s.queries, query)
	if len(s.responses) == 0 {
		return repository.OrderMetricsPage{}, fmt.Errorf("fake session: no response queued")
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp.page, resp.err
}

type fakeSalesAPI struct {
	created  []string
	sessions []*fakeSession
	// next builds the session returned by NewSession.
	next func(marketplace string) *fakeSession
	err  error
}

func (a *fakeSalesAPI) NewSession(ctx context.Context, marketplace string) (repository.MarketplaceSession, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.created = append(a.created, marketplace)
	session := a.next(marketplace)
	a.sessions = append(a.sessions, session)
	return session, nil
}

type pixel struct {
	X, Y   int
	Colour entity.Colour
}

type textCall struct {
	Text   string
	X, Y   int
	Colour entity.Colour
}

type fakeDisplay struct {
	width, height int
	initialized   bool
	cleaned       bool
	clears        int
	pushes        int
	pixels        []pixel
	texts         []textCall
	series        [][]float64
	pushErr       error
	ops           []string
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{width: entity.PanelWidth, height: entity.PanelHeight}
}

func (d *fakeDisplay) Initialize() error { d.initialized = true; return nil }
func (d *fakeDisplay) Cleanup() error    { d.cleaned = true; return nil }
func (d *fakeDisplay) Width() int        { return d.width }
func (d *fakeDisplay) Height() int       { return d.height }

func (d *fakeDisplay) Clear() {
	d.clears++
	d.ops = append(d.ops, "clear")
}

func (d *fakeDisplay) SetPixel(x, y int, colour entity.Colour) {
	d.pixels = append(d.pixels, pixel{X: x, Y: y, Colour: colour})
	d.ops = append(d.ops, "pixel")
}

func (d *fakeDisplay) DrawText(text string, x, y int, colour entity.Colour) {
	d.texts = append(d.texts, textCall{Text: text, X: x, Y: y, Colour: colour})
	d.ops = append(d.ops, "text")
}

// MeasureText mirrors the panel font: 6px per glyph.
func (d *fakeDisplay) MeasureText(text string) int {
	return 6 * utf8.RuneCountInString(text)
}

func (d *fakeDisplay) DrawSeries(points []float64, originX, originY int, colour entity.Colour) {
	d.series = append(d.series, append([]float64(nil), points...))
	d.ops = append(d.ops, "series")
}

func (d *fakeDisplay) Push() error {
	d.pushes++
	d.ops = append(d.ops, "push")
	return d.pushErr
}

type fakeStatus struct{}

func (fakeStatus) Update(string) {}
func (fakeStatus) Stop()         {}

type fakeTable struct {
	columns []string
	rows    [][]interface{}
}

func (t *fakeTable) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}
func (t *fakeTable) AddRow(cells ...interface{}) { t.rows = append(t.rows, cells) }
func (t *fakeTable) Render() string              { return fmt.Sprint(t.rows) }

type fakeConsole struct {
	table     *fakeTable
	bars      []types.DailyBar
	successes []string
	errors    []string
	warnings  []string
}

func (c *fakeConsole) Print(a ...interface{})                  {}
func (c *fakeConsole) Printf(format string, a ...interface{})  {}
func (c *fakeConsole) Println(a ...interface{})                {}
func (c *fakeConsole) LogInfo(format string, a ...interface{}) {}
func (c *fakeConsole) LogWarning(format string, a ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}
func (c *fakeConsole) LogError(format string, a ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf(format, a...))
}
func (c *fakeConsole) LogSuccess(format string, a ...interface{}) {
	c.successes = append(c.successes, fmt.Sprintf(format, a...))
}
func (c *fakeConsole) Status(message string) types.StatusHandle { return fakeStatus{} }
func (c *fakeConsole) CreateTable() types.TableInterface {
	c.table = &fakeTable{}
	return c.table
}
func (c *fakeConsole) DisplayDailyBars(days []types.DailyBar, title string) { c.bars = days }

type fakeExport struct {
	calls []string
	err   error
}

func (e *fakeExport) ExportMetricsToCSV(report entity.MetricsReport, filename, outputDir string) (string, error) {
	e.calls = append(e.calls, "csv")
	return outputDir + "/" + filename + ".csv", e.err
}

func (e *fakeExport) ExportMetricsToJSON(report entity.MetricsReport, filename, outputDir string) (string, error) {
	e.calls = append(e.calls, "json")
	return outputDir + "/" + filename + ".json", e.err
}

func (e *fakeExport) ExportMetricsToPDF(report entity.MetricsReport, filename, outputDir string) (string, error) {
	e.calls = append(e.calls, "pdf")
	return outputDir + "/" + filename + ".pdf", e.err
}

func strPtr(s string) *string { return &s }
func intPtr(n int64) *int64   { return &n }
