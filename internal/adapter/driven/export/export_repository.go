package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
	"github.com/diillson/led-sales-tracker-go/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	now func() time.Time
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{now: time.Now}
}

func (r *ExportRepositoryImpl) ExportMetricsToCSV(report entity.MetricsReport, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	result := report.Result
	headers := []string{"Date", "Marketplace", "Metric", "Value"}
	if result.MetricType == entity.MetricSales {
		headers = append(headers, "Currency")
	}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, day := range result.Daily {
		record := []string{day.Date, report.Marketplace, string(result.MetricType), csvValue(day, result.MetricType)}
		if result.MetricType == entity.MetricSales {
			record = append(record, day.Currency)
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	total := []string{"Total", report.Marketplace, string(result.MetricType), csvTotal(result)}
	if result.MetricType == entity.MetricSales {
		total = append(total, result.Currency)
	}
	if err := writer.Write(total); err != nil {
		return "", fmt.Errorf("error writing CSV row: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportMetricsToJSON(report entity.MetricsReport, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportMetricsToPDF(report entity.MetricsReport, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}
	barColor := [3]int{40, 90, 255}

	result := report.Result
	metricName := metricTitle(result.MetricType)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by LED Sales Tracker | %s", report.GeneratedAt.Format("2006-01-02 15:04"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  %s %s", report.Marketplace, metricName)), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	period := fmt.Sprintf("  %s to %s (%d days)", report.PeriodStart.Format("2006-01-02"), report.PeriodEnd.Format("2006-01-02"), report.Days)
	pdf.CellFormat(0, 8, tr(period), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	drawSectionTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, title)
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
	}

	drawSectionTitle("Summary")
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 12, tr(result.FormatTotal()), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	if len(result.Daily) > 0 {
		drawSectionTitle("Daily " + metricName)

		// Gráfico de barras simples, uma barra por dia.
		chartHeight := 40.0
		chartWidth := 190.0
		maxValue := 0.0
		for _, day := range result.Daily {
			if v := day.Value(result.MetricType); v > maxValue {
				maxValue = v
			}
		}
		originX, originY := pdf.GetX(), pdf.GetY()+chartHeight
		barWidth := chartWidth / float64(len(result.Daily))
		pdf.SetFillColor(barColor[0], barColor[1], barColor[2])
		for i, day := range result.Daily {
			if maxValue <= 0 {
				break
			}
			h := day.Value(result.MetricType) / maxValue * chartHeight
			if h <= 0 {
				continue
			}
			pdf.Rect(originX+float64(i)*barWidth, originY-h, barWidth*0.8, h, "F")
		}
		pdf.SetY(originY + 6)

		colWidth := 95.0
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.CellFormat(colWidth, 7, "Date", "B", 0, "L", false, 0, "")
		pdf.CellFormat(colWidth, 7, tr(metricName), "B", 1, "R", false, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, day := range result.Daily {
			pdf.CellFormat(colWidth, 6, tr(day.Date), "", 0, "L", false, 0, "")
			pdf.CellFormat(colWidth, 6, tr(displayValue(day, result.MetricType)), "", 1, "R", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := r.now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

func metricTitle(metric entity.MetricType) string {
	if metric == entity.MetricSales {
		return "Sales"
	}
	return "Units"
}

// csvValue keeps numbers machine-readable: no currency suffix.
func csvValue(day entity.DailyRecord, metric entity.MetricType) string {
	if metric == entity.MetricSales {
		return strconv.FormatFloat(day.Amount, 'f', 2, 64)
	}
	return strconv.FormatInt(day.Units, 10)
}

func csvTotal(result entity.MetricsResult) string {
	if result.MetricType == entity.MetricSales {
		return strconv.FormatFloat(result.Total, 'f', 2, 64)
	}
	return strconv.FormatInt(result.TotalUnits, 10)
}

func displayValue(day entity.DailyRecord, metric entity.MetricType) string {
	if metric == entity.MetricSales {
		return strings.TrimSpace(fmt.Sprintf("%.2f %s", day.Amount, day.Currency))
	}
	return strconv.FormatInt(day.Units, 10)
}
