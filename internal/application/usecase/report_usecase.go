package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
	"github.com/diillson/led-sales-tracker-go/internal/domain/repository"
	"github.com/diillson/led-sales-tracker-go/internal/shared/types"
	"github.com/pterm/pterm"
)

// ReportUseCase fetches one result and prints or exports it.
type ReportUseCase struct {
	sales      *SalesUseCase
	exportRepo repository.ExportRepository
	console    types.ConsoleInterface
	clock      Clock
}

// NewReportUseCase creates a new report use case.
func NewReportUseCase(
	sales *SalesUseCase,
	exportRepo repository.ExportRepository,
	console types.ConsoleInterface,
) *ReportUseCase {
	return &ReportUseCase{
		sales:      sales,
		exportRepo: exportRepo,
		console:    console,
		clock:      SystemClock{},
	}
}

// RunReport executa a busca única e a exportação pedida.
func (uc *ReportUseCase) RunReport(ctx context.Context, args *types.CLIArgs) (*entity.MetricsReport, error) {
	if uc.sales == nil {
		return nil, errors.New("sales client is not configured")
	}

	metric := entity.MetricType(strings.ToLower(strings.TrimSpace(args.Metric)))
	query := uc.sales.BuildQuery(metric, args.Days, args.Marketplace)
	status := uc.console.Status(fmt.Sprintf("Fetching %s for %s (%d days)...", metric, args.Marketplace, args.Days))
	result, err := uc.sales.FetchMetrics(ctx, query)
	status.Stop()
	if err != nil {
		return nil, err
	}

	report := &entity.MetricsReport{
		Marketplace: args.Marketplace,
		Days:        args.Days,
		PeriodStart: query.Start,
		PeriodEnd:   query.End,
		GeneratedAt: uc.clock.Now(),
		Result:      result,
	}

	uc.printReport(report)

	if args.ReportName != "" {
		uc.exportReport(report, args)
	}
	return report, nil
}

func (uc *ReportUseCase) printReport(report *entity.MetricsReport) {
	result := report.Result

	table := uc.console.CreateTable()
	table.AddColumn("Date")
	table.AddColumn(metricColumn(result.MetricType))
	for _, day := range result.Daily {
		table.AddRow(day.Date, formatDay(day, result.MetricType))
	}
	table.AddRow(pterm.Bold.Sprint("Total"), pterm.Bold.Sprint(result.FormatTotal()))
	uc.console.Println(table.Render())

	bars := make([]types.DailyBar, len(result.Daily))
	for i, day := range result.Daily {
		bars[i] = types.DailyBar{
			Date:  day.Date,
			Value: day.Value(result.MetricType),
			Label: formatDay(day, result.MetricType),
		}
	}
	title := fmt.Sprintf("%s %s, %s to %s", report.Marketplace, result.MetricType,
		report.PeriodStart.Format(time.DateOnly), report.PeriodEnd.Format(time.DateOnly))
	uc.console.DisplayDailyBars(bars, title)
}

func (uc *ReportUseCase) exportReport(report *entity.MetricsReport, args *types.CLIArgs) {
	for _, reportType := range args.ReportType {
		var (
			path string
			err  error
		)
		switch strings.ToLower(reportType) {
		case "csv":
			path, err = uc.exportRepo.ExportMetricsToCSV(*report, args.ReportName, args.Dir)
		case "json":
			path, err = uc.exportRepo.ExportMetricsToJSON(*report, args.ReportName, args.Dir)
		case "pdf":
			path, err = uc.exportRepo.ExportMetricsToPDF(*report, args.ReportName, args.Dir)
		default:
			uc.console.LogWarning("Unsupported report type: %s", reportType)
			continue
		}
		if err != nil {
			uc.console.LogError("Failed to export report to %s: %s", strings.ToUpper(reportType), err)
			continue
		}
		uc.console.LogSuccess("Successfully exported report to %s: %s", strings.ToUpper(reportType), path)
	}
}

func metricColumn(metric entity.MetricType) string {
	if metric == entity.MetricSales {
		return "Sales"
	}
	return "Units"
}

func formatDay(day entity.DailyRecord, metric entity.MetricType) string {
	if metric == entity.MetricSales {
		return fmt.Sprintf("%.2f %s", day.Amount, day.Currency)
	}
	return fmt.Sprintf("%d", day.Units)
}
