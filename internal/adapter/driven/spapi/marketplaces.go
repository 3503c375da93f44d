package spapi

import (
	"sort"
	"strings"

	apperrors "github.com/diillson/led-sales-tracker-go/pkg/errors"
)

// Marketplace liga um código de loja ao seu ID e ao endpoint regional.
type Marketplace struct {
	Code      string
	ID        string
	Endpoint  string
	AWSRegion string
}

const (
	endpointNA = "https://sellingpartnerapi-na.amazon.com"
	endpointEU = "https://sellingpartnerapi-eu.amazon.com"
	endpointFE = "https://sellingpartnerapi-fe.amazon.com"
)

var marketplaces = map[string]Marketplace{
	"US": {Code: "US", ID: "ATVPDKIKX0DER", Endpoint: endpointNA, AWSRegion: "us-east-1"},
	"CA": {Code: "CA", ID: "A2EUQ1WTGCTBG2", Endpoint: endpointNA, AWSRegion: "us-east-1"},
	"MX": {Code: "MX", ID: "A1AM78C64UM0Y8", Endpoint: endpointNA, AWSRegion: "us-east-1"},
	"BR": {Code: "BR", ID: "A2Q3Y263D00KWC", Endpoint: endpointNA, AWSRegion: "us-east-1"},
	"UK": {Code: "UK", ID: "A1F83G8C2ARO7P", Endpoint: endpointEU, AWSRegion: "eu-west-1"},
	"DE": {Code: "DE", ID: "A1PA6795UKMFR9", Endpoint: endpointEU, AWSRegion: "eu-west-1"},
	"FR": {Code: "FR", ID: "A13V1IB3VIYZZH", Endpoint: endpointEU, AWSRegion: "eu-west-1"},
	"IT": {Code: "IT", ID: "APJ6JRA9NG5V4", Endpoint: endpointEU, AWSRegion: "eu-west-1"},
	"ES": {Code: "ES", ID: "A1RKKUPIHCS9HS", Endpoint: endpointEU, AWSRegion: "eu-west-1"},
	"NL": {Code: "NL", ID: "A1805IZSGTT6HS", Endpoint: endpointEU, AWSRegion: "eu-west-1"},
	"SE": {Code: "SE", ID: "A2NODRKZP88ZB9", Endpoint: endpointEU, AWSRegion: "eu-west-1"},
	"PL": {Code: "PL", ID: "A1C3SOZRARQ6R3", Endpoint: endpointEU, AWSRegion: "eu-west-1"},
	"TR": {Code: "TR", ID: "A33AVAJ2PDY3EV", Endpoint: endpointEU, AWSRegion: "eu-west-1"},
	"AE": {Code: "AE", ID: "A2VIGQ35RCS4UG", Endpoint: endpointEU, AWSRegion: "eu-west-1"},
	"IN": {Code: "IN", ID: "A21TJRUUN4KGV", Endpoint: endpointEU, AWSRegion: "eu-west-1"},
	"JP": {Code: "JP", ID: "A1VC38T7YXB528", Endpoint: endpointFE, AWSRegion: "us-west-2"},
	"AU": {Code: "AU", ID: "A39IBJ37TRP1C6", Endpoint: endpointFE, AWSRegion: "us-west-2"},
	"SG": {Code: "SG", ID: "A19VAU5U5O7RUS", Endpoint: endpointFE, AWSRegion: "us-west-2"},
}

// LookupMarketplace accepts a country code ("US", "uk") or a raw marketplace ID.
func LookupMarketplace(key string) (Marketplace, error) {
	normalized := strings.ToUpper(strings.TrimSpace(key))
	if normalized == "GB" {
		normalized = "UK"
	}
	if m, ok := marketplaces[normalized]; ok {
		return m, nil
	}
	for _, m := range marketplaces {
		if m.ID == normalized {
			return m, nil
		}
	}
	return Marketplace{}, apperrors.Newf(apperrors.CodeInvalidArgument, "unknown marketplace %q", key)
}

// MarketplaceCodes lists the supported codes, sorted.
func MarketplaceCodes() []string {
	codes := make([]string, 0, len(marketplaces))
	for code := range marketplaces {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
