package repository

import (
	"context"

	"github.com/diillson/led-sales-tracker-go/internal/domain/entity"
)

// OrderMetricsPage is the decoded answer of one order metrics call.
// Payload is whatever sat under "payload"; it may be nil or not a list.
type OrderMetricsPage struct {
	Payload any
	Raw     []byte
}

// MarketplaceSession holds the authorization state for one marketplace.
// Implementations refresh their own access tokens between calls.
type MarketplaceSession interface {
	Marketplace() string
	GetOrderMetrics(ctx context.Context, query entity.MetricsQuery) (OrderMetricsPage, error)
}

// SalesAPI defines the interface for Selling Partner API interactions.
type SalesAPI interface {
	// NewSession builds a session from the original credentials.
	NewSession(ctx context.Context, marketplace string) (MarketplaceSession, error)
}
