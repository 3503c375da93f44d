package entity

import "time"

// MetricType identifica a métrica pedida ao SP-API.
type MetricType string

const (
	MetricSales MetricType = "sales"
	MetricUnits MetricType = "units"
)

// Valid reports whether m is one of the supported metric types.
func (m MetricType) Valid() bool {
	return m == MetricSales || m == MetricUnits
}

// UnknownDate is used when a record's interval carries no parseable date.
const UnknownDate = "unknown"

// DefaultCurrency is reported when no record names a currency.
const DefaultCurrency = "USD"

// MetricsQuery describes one upstream request, built fresh per call.
type MetricsQuery struct {
	MetricType  MetricType `json:"metric_type"`
	Days        int        `json:"days"`
	Marketplace string     `json:"marketplace"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
}

// Money is the nested amount object of an order metrics record.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// RawRecord is one per-interval record as returned by the order metrics API.
type RawRecord struct {
	Interval   *string `json:"interval,omitempty"`
	TotalSales *Money  `json:"totalSales,omitempty"`
	UnitCount  *int64  `json:"unitCount,omitempty"`
}

// DailyRecord is one normalized day. Amount is set for sales, Units for units.
type DailyRecord struct {
	Date     string  `json:"date"`
	Amount   float64 `json:"amount,omitempty"`
	Units    int64   `json:"units,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

// Value returns the magnitude plotted for the day.
func (d DailyRecord) Value(metric MetricType) float64 {
	if metric == MetricSales {
		return d.Amount
	}
	return float64(d.Units)
}

// MetricsResult is the only value handed from the sales client to its callers.
type MetricsResult struct {
	MetricType MetricType    `json:"metric_type"`
	Total      float64       `json:"total"`
	TotalUnits int64         `json:"total_units"`
	Currency   string        `json:"currency,omitempty"`
	Daily      []DailyRecord `json:"daily"`
	RawPayload []byte        `json:"-"`
}

// FormatTotal renders the total the way the panel and reports show it.
func (r MetricsResult) FormatTotal() string {
	if r.MetricType == MetricSales {
		return formatAmount(r.Total, r.Currency)
	}
	return formatInt(r.TotalUnits)
}

// MetricsReport wraps one result with the query it answered, for exports.
type MetricsReport struct {
	Marketplace string        `json:"marketplace"`
	Days        int           `json:"days"`
	PeriodStart time.Time     `json:"period_start"`
	PeriodEnd   time.Time     `json:"period_end"`
	GeneratedAt time.Time     `json:"generated_at"`
	Result      MetricsResult `json:"result"`
}

// IntervalLayout formats interval boundaries with a colon-separated offset.
const IntervalLayout = "2006-01-02T15:04:05-07:00"

// Interval renders the query window as "<start>--<end>".
func (q MetricsQuery) Interval() string {
	return q.Start.Format(IntervalLayout) + "--" + q.End.Format(IntervalLayout)
}
