package repository

import (
	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
)

type ExportRepository interface {
	ExportMetricsToCSV(report entity.MetricsReport, filename string, outputDir string) (string, error)
	ExportMetricsToJSON(report entity.MetricsReport, filename string, outputDir string) (string, error)
	ExportMetricsToPDF(report entity.MetricsReport, filename string, outputDir string) (string, error)
}
