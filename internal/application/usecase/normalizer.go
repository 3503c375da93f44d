package usecase

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const intervalSeparator = "--"

// NormalizeMetrics turns raw per-interval records into an ascending daily
// series plus totals. It never fails: missing or malformed fields fall back
// to zero values.
func NormalizeMetrics(records []entity.RawRecord, metric entity.MetricType, raw []byte) entity.MetricsResult {
	result := entity.MetricsResult{
		MetricType: metric,
		Daily:      []entity.DailyRecord{},
		RawPayload: raw,
	}
	if metric == entity.MetricSales {
		result.Currency = entity.DefaultCurrency
	}
	if len(records) == 0 {
		return result
	}

	sorted := make([]entity.RawRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return intervalStart(sorted[i]) < intervalStart(sorted[j])
	})

	switch metric {
	case entity.MetricSales:
		total := decimal.Zero
		currency := entity.DefaultCurrency
		for _, rec := range sorted {
			amount := decimal.Zero
			if rec.TotalSales != nil {
				amount = parseAmount(rec.TotalSales.Amount)
				if code := strings.TrimSpace(rec.TotalSales.CurrencyCode); code != "" {
					currency = code
				}
			}
			total = total.Add(amount)
			result.Daily = append(result.Daily, entity.DailyRecord{
				Date:     extractDate(rec),
				Amount:   amount.Round(2).InexactFloat64(),
				Currency: currency,
			})
		}
		result.Total = total.Round(2).InexactFloat64()
		result.Currency = currency
	default:
		var total int64
		for _, rec := range sorted {
			var units int64
			if rec.UnitCount != nil {
				units = *rec.UnitCount
			}
			total += units
			result.Daily = append(result.Daily, entity.DailyRecord{
				Date:  extractDate(rec),
				Units: units,
			})
		}
		result.TotalUnits = total
		result.Total = float64(total)
	}

	return result
}

// intervalStart returns everything before the first "--", or "" without an interval.
func intervalStart(rec entity.RawRecord) string {
	if rec.Interval == nil {
		return ""
	}
	start, _, _ := strings.Cut(*rec.Interval, intervalSeparator)
	return start
}

func extractDate(rec entity.RawRecord) string {
	start := intervalStart(rec)
	date, _, found := strings.Cut(start, "T")
	if !found {
		return entity.UnknownDate
	}
	return date
}

func parseAmount(value string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// DecodeRawRecords converts a loosely typed payload into records. Items that
// are not objects, and fields of the wrong type, are treated as absent.
func DecodeRawRecords(items []any) []entity.RawRecord {
	records := make([]entity.RawRecord, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			records = append(records, entity.RawRecord{})
			continue
		}

		var rec entity.RawRecord
		if interval, ok := obj["interval"].(string); ok {
			rec.Interval = &interval
		}
		if sales, ok := obj["totalSales"].(map[string]any); ok {
			money := &entity.Money{Amount: stringify(sales["amount"])}
			if code, ok := sales["currencyCode"].(string); ok {
				money.CurrencyCode = code
			}
			rec.TotalSales = money
		}
		if units, ok := toInt64(obj["unitCount"]); ok {
			rec.UnitCount = &units
		}
		records = append(records, rec)
	}
	return records
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, true
		}
		if f, err := val.Float64(); err == nil {
			return int64(f), true
		}
	case float64:
		return int64(val), true
	case int64:
		return val, true
	case int:
		return int64(val), true
	}
	return 0, false
}
